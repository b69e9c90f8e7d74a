package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/dustin/go-humanize"
	"github.com/kerbaras/pocketdl/pkg/app/styles"
	"github.com/kerbaras/pocketdl/pkg/services"
)

// ProgressTracker renders the episode currently being downloaded.
type ProgressTracker struct {
	current *services.DownloadProgress
	bar     progress.Model
	width   int
}

func NewProgressTracker(width int) *ProgressTracker {
	if width < 20 {
		width = 20
	}
	return &ProgressTracker{
		bar: progress.New(
			progress.WithGradient(string(styles.Primary), string(styles.Secondary)),
			progress.WithWidth(width),
		),
		width: width,
	}
}

func (p *ProgressTracker) Update(update services.DownloadProgress) {
	if update.Status == "complete" || update.Status == "error" {
		p.current = nil
		return
	}
	prog := update // Copy
	p.current = &prog
}

func (p *ProgressTracker) Clear() {
	p.current = nil
}

func (p *ProgressTracker) HasActive() bool {
	return p.current != nil
}

// Percent is the completed fraction of the active download, or -1 when the
// size is unknown.
func (p *ProgressTracker) Percent() float64 {
	if p.current == nil || p.current.Size <= 0 {
		return -1
	}
	return min(1, float64(p.current.Received)/float64(p.current.Size))
}

// View renders a single status line for the active download.
func (p *ProgressTracker) View() string {
	if p.current == nil {
		return ""
	}
	cur := p.current

	var b strings.Builder
	b.WriteString(styles.MutedStyle.Render(fmt.Sprintf("[%d/%d] ", cur.Index, cur.Total)))
	b.WriteString(styles.StatusStyle(cur.Status).Render(cur.Status))
	b.WriteString(" ")

	if pct := p.Percent(); pct >= 0 {
		b.WriteString(p.bar.ViewAs(pct))
		b.WriteString(" ")
		b.WriteString(styles.MutedStyle.Render(fmt.Sprintf("%s / %s",
			humanize.Bytes(uint64(cur.Received)), humanize.Bytes(uint64(cur.Size)))))
	} else if cur.Received > 0 {
		b.WriteString(styles.MutedStyle.Render(humanize.Bytes(uint64(cur.Received))))
	}
	return b.String()
}
