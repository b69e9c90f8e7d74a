package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/kerbaras/pocketdl/pkg/app/components"
	"github.com/kerbaras/pocketdl/pkg/app/styles"
	"github.com/kerbaras/pocketdl/pkg/services"
	"github.com/spf13/cobra"
)

func newDownloadCmd(c *cli) *cobra.Command {
	var refreshArtwork bool

	downloadCmd := &cobra.Command{
		Use:   "download",
		Short: "Download starred episodes",
		Long:  "Download starred episodes published in a year (or all of them) and update their tags",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.cfg
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctrl, err := services.NewController(cfg, c.logger)
			if err != nil {
				return err
			}
			defer ctrl.Close()

			out := c.out
			fmt.Fprintln(out, styles.TitleStyle.Render("Pocket Casts Starred Episodes Downloader"))
			fmt.Fprintln(out, strings.Repeat("=", 50))
			if cfg.Download.ShowAll {
				fmt.Fprintln(out, "Year: all")
			} else {
				fmt.Fprintf(out, "Year: %d\n", cfg.Download.Year)
			}
			fmt.Fprintf(out, "Output directory: %s\n", cfg.Download.OutputDir)
			if !cfg.VerifySSL {
				fmt.Fprintln(out, styles.StatusSkipped.Render("SSL verification: DISABLED"))
			}
			if cfg.Download.DryRun {
				fmt.Fprintln(out, "Mode: DRY RUN (no files will be downloaded)")
			}
			fmt.Fprintln(out)

			all, err := ctrl.Starred(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(out, styles.StatusCompleted.Render(fmt.Sprintf("✓ Found %d starred episodes", len(all))))
			if len(all) == 0 {
				fmt.Fprintln(out, "No starred episodes found")
				return nil
			}
			printYearBreakdown(out, services.CountByYear(all))

			episodes := ctrl.Select(all)
			switch {
			case cfg.Download.ShowAll:
				fmt.Fprintf(out, "✓ Downloading all %d starred episodes\n\n", len(episodes))
			default:
				fmt.Fprintf(out, "✓ Found %d episodes published in %d\n\n", len(episodes), cfg.Download.Year)
			}
			if len(episodes) == 0 {
				if cfg.Download.ShowAll {
					fmt.Fprintln(out, "No episodes match the podcast filter.")
				} else {
					fmt.Fprintf(out, "No episodes found for %d.\n", cfg.Download.Year)
					fmt.Fprintln(out, "Try using --show-all to download all starred episodes.")
				}
				return nil
			}

			if cfg.Download.SaveMetadata {
				path, err := ctrl.ExportMetadata(episodes)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "✓ Saved metadata to %s\n\n", path)
			}

			if refreshArtwork && !cfg.Download.DryRun {
				if err := ctrl.ClearArtwork(); err != nil {
					return err
				}
				fmt.Fprintln(out, "✓ Cleared cached artwork")
			}

			done := make(chan struct{})
			go func() {
				defer close(done)
				renderProgress(cmd.Context(), c, ctrl.Downloader().Progress())
			}()

			summary, err := ctrl.Download(cmd.Context(), episodes)
			ctrl.Downloader().Close()
			<-done
			if err != nil {
				return err
			}

			printResults(c, summary, cfg.Download.DryRun)
			fmt.Fprintln(out)
			label := "Download complete!"
			if cfg.Download.DryRun {
				label = "Dry run complete!"
			}
			fmt.Fprintln(out, renderSummary(summary, label))
			return nil
		},
	}

	flags := downloadCmd.Flags()
	flags.StringP("output-dir", "o", "./downloads", "directory episodes are written to")
	flags.IntP("year", "y", time.Now().Year(), "only episodes published in this year")
	flags.Bool("show-all", false, "download all starred episodes regardless of year")
	flags.StringP("podcast", "p", "", "only episodes of podcasts fuzzily matching this name")
	flags.Bool("save-metadata", false, "save the episode records as metadata_<year>.json (metadata_all.json with --show-all)")
	flags.Bool("dry-run", false, "show what would be downloaded without downloading")
	flags.Bool("organize-by-podcast", false, "create one folder per podcast")
	flags.Bool("no-tags", false, "do not write audio tags")
	flags.BoolVar(&refreshArtwork, "refresh-artwork", false, "fetch podcast artwork again instead of using the cache")

	return downloadCmd
}

// renderProgress runs a progress view on a terminal and drains the channel
// otherwise.
func renderProgress(ctx context.Context, c *cli, updates <-chan services.DownloadProgress) {
	if !isTerminal(c.out) {
		for range updates {
		}
		return
	}

	p := tea.NewProgram(components.NewProgressModel(updates, 40),
		tea.WithContext(ctx),
		tea.WithInput(nil),
		tea.WithOutput(c.out),
	)
	if _, err := p.Run(); err != nil {
		c.logger.Debug("progress view stopped", "error", err)
		for range updates {
		}
	}
}

func printResults(c *cli, summary services.Summary, dryRun bool) {
	out := c.out
	if dryRun {
		fmt.Fprintln(out, "DRY RUN - Files that would be downloaded:")
		fmt.Fprintln(out)
	}
	total := summary.Total()
	for i, res := range summary.Results {
		status := string(res.Status)
		line := fmt.Sprintf("[%d/%d] %s %s", i+1, total, styles.StatusIcon(status), res.Path)
		fmt.Fprintln(out, styles.StatusStyle(status).Render(line))
		if res.Err != nil {
			fmt.Fprintln(out, styles.StatusError.Render("    "+res.Err.Error()))
		}
		if res.TagErr != nil {
			fmt.Fprintln(out, styles.StatusSkipped.Render("    tags not updated: "+res.TagErr.Error()))
		}
	}
}
