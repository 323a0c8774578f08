package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ekagra-app/ekagra/internal/countdown"
	"github.com/ekagra-app/ekagra/pkg/models"
)

// TimerModel renders the countdown for one session. All timer state lives
// in the countdown controller; the model only schedules ticks and maps
// keys to controller operations.
type TimerModel struct {
	width  int
	height int

	ctrl     *countdown.Controller
	total    int // planned seconds, for the progress bar
	kind     models.TimerKind
	progress progress.Model

	err  error
	done bool
}

// tickMsg is sent every second while a countdown may be running.
type tickMsg struct{}

// NewTimerModel creates a timer TUI model over an already-started
// controller.
func NewTimerModel(ctrl *countdown.Controller, kind models.TimerKind, durationMinutes int) TimerModel {
	return TimerModel{
		ctrl:     ctrl,
		total:    durationMinutes * 60,
		kind:     kind,
		progress: progress.New(progress.WithDefaultGradient()),
	}
}

// Init schedules the first tick.
func (m TimerModel) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg{}
	})
}

// Update handles messages.
func (m TimerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		if m.done {
			return m, nil
		}
		m.err = m.ctrl.Tick(context.Background())
		if m.ctrl.Active() == nil && m.err == nil {
			m.done = true
			return m, tea.Quit
		}
		return m, tick()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = min(msg.Width-12, 48)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case " ":
			if m.ctrl.Running() {
				m.ctrl.Pause()
			} else {
				m.ctrl.Resume()
			}
			return m, nil
		case "e":
			m.err = m.ctrl.End(context.Background())
			if m.err == nil {
				m.done = true
				return m, tea.Quit
			}
			return m, nil
		case "s":
			m.err = m.ctrl.Skip(context.Background())
			if m.err == nil {
				m.done = true
				return m, tea.Quit
			}
			return m, nil
		case "ctrl+c", "esc", "q":
			// Tear down the countdown without ending the session.
			m.done = true
			return m, tea.Quit
		}
	}

	return m, nil
}

// View renders the countdown panel.
func (m TimerModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}
	if m.done {
		return ""
	}

	var components []string

	headerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorAccentBright)).
		Bold(true).
		Align(lipgloss.Center).
		Width(m.width)
	components = append(components, headerStyle.Render(kindLabel(m.kind)))

	clockStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorPrimaryText)).
		Bold(true).
		Align(lipgloss.Center).
		Width(m.width)
	components = append(components, clockStyle.Render(formatRemaining(m.ctrl.RemainingSeconds())))

	elapsed := float64(m.total-m.ctrl.RemainingSeconds()) / float64(m.total)
	barStyle := lipgloss.NewStyle().Align(lipgloss.Center).Width(m.width)
	components = append(components, barStyle.Render(m.progress.ViewAs(elapsed)))

	if !m.ctrl.Running() && m.ctrl.Active() != nil {
		pausedStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorWarning)).
			Italic(true).
			Align(lipgloss.Center).
			Width(m.width)
		components = append(components, pausedStyle.Render("paused"))
	}

	if m.err != nil {
		errStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorError)).
			Align(lipgloss.Center).
			Width(m.width)
		components = append(components, errStyle.Render("Error: "+m.err.Error()))
	}

	components = append(components, m.renderHelpBar())

	content := strings.Join(components, "\n\n")
	return lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(content)
}

func (m TimerModel) renderHelpBar() string {
	helpStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorHelpText)).
		Italic(true).
		Align(lipgloss.Center).
		Width(m.width)
	return helpStyle.Render("space pause/resume · e end · s skip · q quit (keep running)")
}

func kindLabel(kind models.TimerKind) string {
	switch kind {
	case models.KindPomodoro:
		return "🍅  POMODORO"
	case models.KindShortBreak:
		return "☕  SHORT BREAK"
	case models.KindLongBreak:
		return "🌴  LONG BREAK"
	}
	return strings.ToUpper(string(kind))
}

func formatRemaining(seconds int) string {
	minutes := seconds / 60
	return fmt.Sprintf("%02d:%02d", minutes, seconds%60)
}

// RunTimerTUI starts a session on the controller and runs the countdown
// until it ends or the user quits.
func RunTimerTUI(ctrl *countdown.Controller, kind models.TimerKind, durationMinutes int, taskID *string) error {
	if err := ctrl.Start(context.Background(), kind, durationMinutes, taskID); err != nil {
		return err
	}

	model := NewTimerModel(ctrl, kind, durationMinutes)
	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}

	if active := ctrl.Active(); active != nil {
		fmt.Printf("\n💡 Session %s is still in progress. Run 'ekagra history' to see it.\n", active.ID)
	} else {
		fmt.Println("✅ Session ended.")
	}
	return nil
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
