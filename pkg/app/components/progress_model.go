package components

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/kerbaras/pocketdl/pkg/services"
)

type progressMsg services.DownloadProgress

type progressDoneMsg struct{}

var titleStyle = lipgloss.NewStyle().MaxWidth(40)

// ProgressModel is a bubbletea model that follows a downloader's progress
// channel and quits once it is closed.
type ProgressModel struct {
	updates <-chan services.DownloadProgress
	tracker *ProgressTracker
	title   string
}

func NewProgressModel(updates <-chan services.DownloadProgress, width int) *ProgressModel {
	return &ProgressModel{
		updates: updates,
		tracker: NewProgressTracker(width),
	}
}

func (m *ProgressModel) Init() tea.Cmd {
	return m.waitForProgress()
}

func (m *ProgressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case progressMsg:
		update := services.DownloadProgress(msg)
		m.tracker.Update(update)
		m.title = update.Title
		return m, m.waitForProgress()

	case progressDoneMsg:
		m.tracker.Clear()
		return m, tea.Quit
	}
	return m, nil
}

func (m *ProgressModel) View() string {
	if !m.tracker.HasActive() {
		return ""
	}
	return titleStyle.Render(m.title) + " " + m.tracker.View()
}

func (m *ProgressModel) waitForProgress() tea.Cmd {
	return func() tea.Msg {
		update, ok := <-m.updates
		if !ok {
			return progressDoneMsg{}
		}
		return progressMsg(update)
	}
}
