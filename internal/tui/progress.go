package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
)

const tickInterval = 150 * time.Millisecond

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// tickMsg drives the spinner animation.
type tickMsg time.Time

// step is one line of the install display.
type step struct {
	Name   string
	Status string
	Detail string
}

// InstallModel is a bubbletea model rendering the steps of one install:
// download (with a byte-progress bar), unpack, register.
type InstallModel struct {
	title     string
	steps     []step
	stepIndex map[string]int

	bar        progress.Model
	percent    float64
	hasPercent bool
	written    int64

	done bool
	err  error
	tick int
}

// NewInstallModel creates the model with the given title and ordered step
// names, all starting as pending.
func NewInstallModel(title string, stepNames []string) InstallModel {
	steps := make([]step, len(stepNames))
	index := make(map[string]int, len(stepNames))
	for i, name := range stepNames {
		steps[i] = step{Name: name, Status: "pending"}
		index[name] = i
	}
	return InstallModel{
		title:     title,
		steps:     steps,
		stepIndex: index,
		bar:       progress.New(progress.WithDefaultGradient()),
	}
}

func scheduleTick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Init satisfies the tea.Model interface.
func (m InstallModel) Init() tea.Cmd {
	return scheduleTick()
}

// Update satisfies the tea.Model interface.
func (m InstallModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		m.tick++
		if m.done {
			return m, nil
		}
		return m, scheduleTick()

	case StepUpdateMsg:
		if idx, ok := m.stepIndex[msg.Step]; ok {
			m.steps[idx].Status = msg.Status
			m.steps[idx].Detail = msg.Detail
		}
		return m, nil

	case DownloadProgressMsg:
		m.written = msg.Written
		if msg.Total > 0 {
			m.hasPercent = true
			m.percent = float64(msg.Written) / float64(msg.Total)
		}
		return m, nil

	case WorkDoneMsg:
		m.done = true
		return m, tea.Quit

	case ErrorMsg:
		m.err = msg.Err
		m.done = true
		return m, tea.Quit

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.done = true
			return m, tea.Quit
		}
	}
	return m, nil
}

// View satisfies the tea.Model interface.
func (m InstallModel) View() string {
	if m.done && m.err != nil {
		return fmt.Sprintf("Error: %v\n", m.err)
	}

	var b strings.Builder
	b.WriteString(TitleStyle.Render(m.title))
	b.WriteByte('\n')

	for _, st := range m.steps {
		marker := "·"
		switch st.Status {
		case "done":
			marker = "✓"
		case "failed":
			marker = "✗"
		case "downloading", "unpacking", "registering":
			marker = spinnerFrames[m.tick%len(spinnerFrames)]
		}
		line := fmt.Sprintf("%s %-10s %s", marker, st.Name, StatusStyle(st.Status).Render(st.Status))
		if st.Detail != "" {
			line += "  " + st.Detail
		}
		b.WriteString(line)
		b.WriteByte('\n')

		if st.Name == "download" && st.Status == "downloading" {
			if m.hasPercent {
				b.WriteString("  " + m.bar.ViewAs(m.percent))
			} else {
				fmt.Fprintf(&b, "  %s", formatBytes(m.written))
			}
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// Done reports whether the model has finished.
func (m InstallModel) Done() bool {
	return m.done
}

// Err returns any fatal error that occurred.
func (m InstallModel) Err() error {
	return m.err
}

func formatBytes(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MiB", float64(n)/float64(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KiB", float64(n)/float64(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}
