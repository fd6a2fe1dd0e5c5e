// Package tui renders live sync progress while a run is underway.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Brand color
var (
	primaryColor = lipgloss.Color("#0c7bd4")
	subtleColor  = lipgloss.Color("#626262")
	successColor = lipgloss.Color("#04B575")
	errorColor   = lipgloss.Color("#FF0000")

	titleStyle = lipgloss.NewStyle().
			Foreground(primaryColor).
			Bold(true).
			MarginBottom(1)

	phaseStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	activePhaseStyle = lipgloss.NewStyle().
				Foreground(primaryColor).
				Bold(true)

	donePhaseStyle = lipgloss.NewStyle().
			Foreground(successColor)

	errorPhaseStyle = lipgloss.NewStyle().
			Foreground(errorColor)
)

// StatusMsg indicates a status update from the engine.
type StatusMsg struct {
	Phase   string
	Status  string // "started", "success", "error", "progress"
	Message string
}

// ResultMsg indicates the final result.
type ResultMsg struct {
	Success bool
	Output  string
}

// Model for the TUI.
type Model struct {
	spinner    spinner.Model
	phases     []string
	current    int
	status     map[string]string // phase -> status
	logs       []string
	quitting   bool
	err        error
	statusChan <-chan StatusMsg
}

// NewModel creates a new TUI model.
func NewModel(phases []string, statusChan <-chan StatusMsg) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(primaryColor)

	return Model{
		spinner:    s,
		phases:     phases,
		current:    0,
		status:     make(map[string]string),
		statusChan: statusChan,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		m.waitForActivity(),
	)
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "q" || msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case StatusMsg:
		// Progress updates keep the phase active; the rest change its state.
		if msg.Status != "progress" {
			m.status[msg.Phase] = msg.Status
		}
		if msg.Message != "" {
			m.logs = append(m.logs, fmt.Sprintf("[%s] %s: %s", time.Now().Format("15:04:05"), msg.Phase, msg.Message))
		}

		for i, p := range m.phases {
			if p == msg.Phase {
				m.current = i
				break
			}
		}

		if msg.Status == "error" {
			m.err = fmt.Errorf("%s failed: %s", msg.Phase, msg.Message)
		}

		return m, m.waitForActivity()

	case ResultMsg:
		// Print the final report before quitting so the operator can see it
		if msg.Output != "" {
			fmt.Println("\n" + msg.Output)
		}
		m.quitting = true
		return m, tea.Quit
	}

	return m, nil
}

func (m Model) waitForActivity() tea.Cmd {
	return func() tea.Msg {
		select {
		case msg, ok := <-m.statusChan:
			if !ok {
				return ResultMsg{Success: true}
			}
			return msg
		case <-time.After(10 * time.Minute):
			// A stalled run: retries can legitimately take minutes, not more.
			return ResultMsg{
				Success: false,
				Output:  "sync timed out waiting for activity",
			}
		}
	}
}

// View renders the TUI.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var s strings.Builder

	s.WriteString(titleStyle.Render("yousync"))
	s.WriteString("\n\n")

	for i, phase := range m.phases {
		status := m.status[phase]

		prefix := "  "
		style := phaseStyle

		if i == m.current {
			prefix = m.spinner.View() + " "
			style = activePhaseStyle
		}

		switch status {
		case "success":
			prefix = "✓ "
			style = donePhaseStyle
		case "error":
			prefix = "✗ "
			style = errorPhaseStyle
		}

		s.WriteString(style.Render(fmt.Sprintf("%s%s\n", prefix, phase)))
	}

	s.WriteString("\nLog:\n")
	// Show last 8 entries
	start := 0
	if len(m.logs) > 8 {
		start = len(m.logs) - 8
	}
	for _, entry := range m.logs[start:] {
		s.WriteString(lipgloss.NewStyle().Foreground(subtleColor).Render(entry) + "\n")
	}

	if m.err != nil {
		s.WriteString("\n" + errorPhaseStyle.Render(fmt.Sprintf("Error: %v", m.err)) + "\n")
	}

	s.WriteString(lipgloss.NewStyle().Foreground(subtleColor).Render("\nPress q to quit\n"))

	return s.String()
}
