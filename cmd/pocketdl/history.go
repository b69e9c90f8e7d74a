package cmd

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/kerbaras/pocketdl/pkg/app/styles"
	"github.com/kerbaras/pocketdl/pkg/data"
	"github.com/kerbaras/pocketdl/pkg/services"
	"github.com/spf13/cobra"
)

func newHistoryCmd(c *cli) *cobra.Command {
	var forget string

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Show downloaded episodes",
		Long:  "Display the episodes recorded in the download history",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, err := services.NewController(c.cfg, c.logger)
			if err != nil {
				return err
			}
			defer ctrl.Close()

			if forget != "" {
				d, err := ctrl.Forget(forget)
				if err != nil {
					return err
				}
				fmt.Fprintf(c.out, "🗑  Removed %q from the history (%s stays on disk)\n", d.Title, d.FilePath)
				return nil
			}

			downloads, err := ctrl.History()
			if err != nil {
				return err
			}
			if len(downloads) == 0 {
				fmt.Fprintln(c.out, "📭 Nothing downloaded yet. Use 'pocketdl download' to fetch starred episodes.")
				return nil
			}

			fmt.Fprintln(c.out, styles.TitleStyle.Render(fmt.Sprintf("\n🎧 Downloads (%d episodes)\n", len(downloads))))
			fmt.Fprintln(c.out, historyTable(downloads).View())
			return nil
		},
	}

	historyCmd.Flags().StringVar(&forget, "forget", "", "remove the episode with this ID from the history")
	return historyCmd
}

func historyTable(downloads []*data.Download) table.Model {
	columns := []table.Column{
		{Title: "Podcast", Width: 28},
		{Title: "Episode", Width: 44},
		{Title: "Published", Width: 10},
		{Title: "Downloaded", Width: 14},
		{Title: "Tagged", Width: 6},
	}

	rows := []table.Row{}
	for _, d := range downloads {
		published := ""
		if !d.PublishedAt.IsZero() {
			published = d.PublishedAt.Format("2006-01-02")
		}
		tagged := "no"
		if d.Tagged {
			tagged = "yes"
		}
		rows = append(rows, table.Row{
			truncateString(d.PodcastTitle, 26),
			truncateString(d.Title, 42),
			published,
			humanize.Time(d.DownloadedAt),
			tagged,
		})
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(false),
		table.WithHeight(len(rows)),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(styles.Border).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.NoColor{}).
		Bold(false)
	t.SetStyles(s)
	return t
}
