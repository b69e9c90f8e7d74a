package styles

import "github.com/charmbracelet/lipgloss"

var (
	// Color palette
	Primary    = lipgloss.Color("#FF6B9D")
	Secondary  = lipgloss.Color("#C792EA")
	Success    = lipgloss.Color("#C3E88D")
	Warning    = lipgloss.Color("#FFCB6B")
	Error      = lipgloss.Color("#F07178")
	Info       = lipgloss.Color("#82AAFF")
	Muted      = lipgloss.Color("#546E7A")
	Foreground = lipgloss.Color("#EEFFFF")
	Border     = lipgloss.Color("240")
)

var (
	// Title style for headings
	TitleStyle = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(Secondary).
			Italic(true)

	TextStyle = lipgloss.NewStyle().
			Foreground(Foreground)

	MutedStyle = lipgloss.NewStyle().
			Foreground(Muted)

	HeaderStyle = lipgloss.NewStyle().
			Foreground(Secondary).
			Bold(true).
			Align(lipgloss.Center)

	CellStyle = lipgloss.NewStyle().
			Padding(0, 1)

	// Status styles
	StatusDownloading = lipgloss.NewStyle().
				Foreground(Info).
				Bold(true)

	StatusCompleted = lipgloss.NewStyle().
			Foreground(Success).
			Bold(true)

	StatusSkipped = lipgloss.NewStyle().
			Foreground(Warning)

	StatusError = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)
)

// StatusStyle picks the style for an episode or progress status.
func StatusStyle(status string) lipgloss.Style {
	switch status {
	case "downloading", "tagging":
		return StatusDownloading
	case "downloaded", "complete", "planned":
		return StatusCompleted
	case "existing":
		return StatusSkipped
	case "failed", "error":
		return StatusError
	default:
		return MutedStyle
	}
}

// StatusIcon is the one-character marker printed before an episode line.
func StatusIcon(status string) string {
	switch status {
	case "downloaded", "complete":
		return "✓"
	case "existing":
		return "⊘"
	case "planned":
		return "→"
	case "failed", "error":
		return "✗"
	case "downloading":
		return "↓"
	default:
		return "•"
	}
}
