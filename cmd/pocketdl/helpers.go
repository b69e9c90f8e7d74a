package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/kerbaras/pocketdl/pkg/app/styles"
	"github.com/kerbaras/pocketdl/pkg/services"
	"github.com/kerbaras/pocketdl/pkg/utils"
	"github.com/mattn/go-isatty"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := 0; i < columns; i++ {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			if i < len(row) {
				r[i] = row[i]
			}
		}
		tw.AppendRow(r)
	}

	columnConfigs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		columnConfigs = append(columnConfigs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(columnConfigs)

	return tw.Render()
}

// truncateString shortens s to at most max runes, marking the cut with an ellipsis.
func truncateString(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 1 {
		return string(runes[:max])
	}
	return string(runes[:max-1]) + "…"
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func yearLabel(year int) string {
	if year == 0 {
		return "unknown"
	}
	return strconv.Itoa(year)
}

func printYearBreakdown(w io.Writer, counts []services.YearCount) {
	fmt.Fprintln(w, styles.SubtitleStyle.Render("Starred episodes by published date:"))
	for _, yc := range counts {
		fmt.Fprintf(w, "  %s: %d episodes\n", yearLabel(yc.Year), yc.Count)
	}
	fmt.Fprintln(w)
}

func renderSummary(summary services.Summary, label string) string {
	rows := make([][]string, 0, len(summary.Results))
	for i, res := range summary.Results {
		tags := "-"
		switch {
		case res.TagErr != nil:
			tags = "error"
		case res.Tagged:
			tags = "ok"
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			truncateString(res.Episode.PodcastTitle, 30),
			truncateString(res.Episode.Title, 50),
			string(res.Status),
			tags,
		})
	}

	out := renderTable([]string{"#", "Podcast", "Episode", "Status", "Tags"}, rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft})

	totals := renderTable([]string{"Successful", "Failed", "Total"},
		[][]string{{strconv.Itoa(summary.Successful), strconv.Itoa(summary.Failed), strconv.Itoa(summary.Total())}},
		[]columnAlignment{alignRight, alignRight, alignRight})

	return out + "\n\n" + styles.TitleStyle.Render(label) + "\n" + totals
}

func printError(w io.Writer, err error) {
	fmt.Fprintln(w, styles.StatusError.Render("✗ "+err.Error()))
	switch {
	case errors.Is(err, utils.ErrUnauthorized):
		fmt.Fprintln(w, "\nPlease check your token is correct and not expired.")
	case errors.Is(err, services.ErrLocked):
		fmt.Fprintln(w, "\nWait for the other run to finish or pick another --output-dir.")
	}
}
