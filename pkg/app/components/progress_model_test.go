package components

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/kerbaras/pocketdl/pkg/services"
)

func TestProgressModelFollowsChannel(t *testing.T) {
	updates := make(chan services.DownloadProgress, 2)
	updates <- services.DownloadProgress{Title: "News", Index: 1, Total: 2, Status: "downloading", Received: 10, Size: 40}
	close(updates)

	model := NewProgressModel(updates, 40)
	msg := model.Init()()
	if _, ok := msg.(progressMsg); !ok {
		t.Fatalf("Expected a progress message, got %T", msg)
	}

	_, cmd := model.Update(msg)
	if view := model.View(); !strings.Contains(view, "News") || !strings.Contains(view, "[1/2]") {
		t.Errorf("Expected view to show the active download, got %q", view)
	}
	if cmd == nil {
		t.Fatal("Expected the model to keep waiting for progress")
	}

	done := cmd()
	if _, ok := done.(progressDoneMsg); !ok {
		t.Fatalf("Expected done message after close, got %T", done)
	}

	_, cmd = model.Update(done)
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("Expected the model to quit once the channel is closed")
	}
	if model.View() != "" {
		t.Error("Expected an empty view after quitting")
	}
}

func TestProgressModelDropsFinished(t *testing.T) {
	model := NewProgressModel(make(chan services.DownloadProgress), 40)
	model.Update(progressMsg{Title: "News", Status: "downloading"})
	model.Update(progressMsg{Title: "News", Status: "complete"})

	if model.View() != "" {
		t.Errorf("Expected finished downloads to disappear, got %q", model.View())
	}
}
