package cmd

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/kerbaras/pocketdl/pkg/app/styles"
	"github.com/kerbaras/pocketdl/pkg/data"
	"github.com/kerbaras/pocketdl/pkg/services"
	"github.com/spf13/cobra"
)

func newListCmd(c *cli) *cobra.Command {
	var (
		year    int
		podcast string
	)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List starred episodes",
		Long:  "Display starred episodes in a table, optionally filtered by year or podcast",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.cfg.Validate(); err != nil {
				return err
			}

			ctrl, err := services.NewController(c.cfg, c.logger)
			if err != nil {
				return err
			}
			defer ctrl.Close()

			episodes, err := ctrl.Starred(cmd.Context())
			if err != nil {
				return err
			}
			if len(episodes) == 0 {
				fmt.Fprintln(c.out, "No starred episodes found")
				return nil
			}

			printYearBreakdown(c.out, services.CountByYear(episodes))

			if year != 0 {
				episodes = services.FilterByYear(episodes, year)
			}
			episodes = services.FilterByPodcast(episodes, podcast)
			if len(episodes) == 0 {
				fmt.Fprintln(c.out, "No episodes match the filters.")
				return nil
			}

			podcasts := data.PodcastsOf(episodes)
			fmt.Fprintln(c.out, styles.TitleStyle.Render(fmt.Sprintf("⭐ Starred (%d episodes from %d podcasts)", len(episodes), len(podcasts))))
			fmt.Fprintln(c.out, episodeTable(episodes))
			return nil
		},
	}

	listCmd.Flags().IntVarP(&year, "year", "y", 0, "only episodes published in this year")
	listCmd.Flags().StringVarP(&podcast, "podcast", "p", "", "only episodes of podcasts fuzzily matching this name")
	return listCmd
}

func episodeTable(episodes []data.Episode) *table.Table {
	t := table.New().
		Border(lipgloss.HiddenBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(styles.Secondary)).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return styles.HeaderStyle
			default:
				return styles.CellStyle
			}
		}).
		Headers("#", "Published", "Podcast", "Episode", "Size", "Length")

	for i, ep := range episodes {
		published := "unknown"
		if !ep.PublishedAt.IsZero() {
			published = ep.PublishedAt.Format("2006-01-02")
		}
		size := "-"
		if ep.Size > 0 {
			size = humanize.Bytes(uint64(ep.Size))
		}
		length := "-"
		if ep.Duration > 0 {
			length = (time.Duration(ep.Duration) * time.Second).String()
		}
		t.Row(
			fmt.Sprintf("%d", i+1),
			published,
			truncateString(ep.PodcastTitle, 28),
			truncateString(ep.Title, 48),
			size,
			length,
		)
	}
	return t
}
