package tui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func applyMsg(t *testing.T, m InstallModel, msg tea.Msg) InstallModel {
	t.Helper()
	updated, _ := m.Update(msg)
	model, ok := updated.(InstallModel)
	if !ok {
		t.Fatalf("update returned %T", updated)
	}
	return model
}

func TestInstallModelStepUpdates(t *testing.T) {
	m := NewInstallModel("Installing 3.11.0", []string{"download", "unpack", "register"})

	view := m.View()
	if strings.Count(view, "pending") != 3 {
		t.Fatalf("all steps should start pending:\n%s", view)
	}

	m = applyMsg(t, m, StepUpdateMsg{Step: "download", Status: "done", Detail: "12.3 MiB"})
	view = m.View()
	if !strings.Contains(view, "done") || !strings.Contains(view, "12.3 MiB") {
		t.Fatalf("step update not rendered:\n%s", view)
	}

	// Unknown steps are ignored.
	m = applyMsg(t, m, StepUpdateMsg{Step: "bogus", Status: "done"})
	if strings.Count(m.View(), "done") != 1 {
		t.Fatal("unknown step should not change the display")
	}
}

func TestInstallModelDownloadProgress(t *testing.T) {
	m := NewInstallModel("Installing", []string{"download"})
	m = applyMsg(t, m, StepUpdateMsg{Step: "download", Status: "downloading"})

	t.Run("known total renders bar", func(t *testing.T) {
		m := applyMsg(t, m, DownloadProgressMsg{Written: 50, Total: 100})
		if !m.hasPercent || m.percent != 0.5 {
			t.Fatalf("percent = %v (has %v)", m.percent, m.hasPercent)
		}
	})

	t.Run("unknown total renders byte count", func(t *testing.T) {
		m := applyMsg(t, m, DownloadProgressMsg{Written: 2048, Total: -1})
		if !strings.Contains(m.View(), "2.0 KiB") {
			t.Fatalf("byte counter missing:\n%s", m.View())
		}
	})
}

func TestInstallModelCompletion(t *testing.T) {
	t.Run("work done quits", func(t *testing.T) {
		m := NewInstallModel("x", []string{"download"})
		m = applyMsg(t, m, WorkDoneMsg{})
		if !m.Done() || m.Err() != nil {
			t.Fatalf("done=%v err=%v", m.Done(), m.Err())
		}
	})

	t.Run("error recorded", func(t *testing.T) {
		m := NewInstallModel("x", []string{"download"})
		wantErr := errors.New("boom")
		m = applyMsg(t, m, ErrorMsg{Err: wantErr})
		if !m.Done() || !errors.Is(m.Err(), wantErr) {
			t.Fatalf("done=%v err=%v", m.Done(), m.Err())
		}
		if !strings.Contains(m.View(), "boom") {
			t.Fatalf("error view:\n%s", m.View())
		}
	})
}

func TestFormatBytes(t *testing.T) {
	cases := []struct {
		n    int64
		want string
	}{
		{512, "512 B"},
		{2048, "2.0 KiB"},
		{3 << 20, "3.0 MiB"},
	}
	for _, tc := range cases {
		if got := formatBytes(tc.n); got != tc.want {
			t.Fatalf("formatBytes(%d) = %q, want %q", tc.n, got, tc.want)
		}
	}
}
