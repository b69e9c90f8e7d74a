package cmd

import (
	"fmt"

	"github.com/kerbaras/pocketdl/pkg/config"
	"github.com/kerbaras/pocketdl/pkg/services"
	"github.com/spf13/cobra"
)

func newTagCmd(c *cli) *cobra.Command {
	var refresh bool

	tagCmd := &cobra.Command{
		Use:   "tag",
		Short: "Update tags of downloaded episodes",
		Long:  "Reconcile the audio tags of every file recorded in the download history",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := *c.cfg
			cfg.Download.WriteTags = true
			cfg.Download.DryRun = false
			if refresh && cfg.Token == "" {
				return config.ErrMissingToken
			}

			ctrl, err := services.NewController(&cfg, c.logger)
			if err != nil {
				return err
			}
			defer ctrl.Close()

			summary, err := ctrl.Retag(cmd.Context(), refresh)
			if err != nil {
				return err
			}
			if summary.Total() == 0 {
				fmt.Fprintln(c.out, "📭 No downloads recorded yet.")
				return nil
			}

			printResults(c, summary, false)
			fmt.Fprintln(c.out)
			fmt.Fprintln(c.out, renderSummary(summary, "Tagging complete!"))
			return nil
		},
	}

	tagCmd.Flags().BoolVar(&refresh, "refresh", false, "fetch current episode details from Pocket Casts before tagging")
	return tagCmd
}
