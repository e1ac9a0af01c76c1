package ui

import (
	"context"
	"strings"
	"time"

	"github.com/Mohsinsiddi/w3mask/internal/bridge"
	tea "github.com/charmbracelet/bubbletea"
)

// StateFetcher reads the current session from the daemon.
type StateFetcher func(ctx context.Context) (bridge.State, error)

// dashboardModel is the Bubble Tea model for the live session view.
type dashboardModel struct {
	state      bridge.State
	loaded     bool
	lastUpdate time.Time
	interval   time.Duration
	timeout    time.Duration
	quitting   bool
	fetch      StateFetcher
	label      ChainLabeler
	err        string
}

type tickMsg time.Time
type stateFetchedMsg bridge.State
type stateErrorMsg struct{ err error }

// NewDashboard creates a Bubble Tea program that polls fetch every interval
// and shows the session. Each poll is bounded by timeout.
func NewDashboard(interval, timeout time.Duration, fetch StateFetcher, label ChainLabeler) *tea.Program {
	return tea.NewProgram(newDashboardModel(interval, timeout, fetch, label))
}

func newDashboardModel(interval, timeout time.Duration, fetch StateFetcher, label ChainLabeler) dashboardModel {
	return dashboardModel{
		interval: interval,
		timeout:  timeout,
		fetch:    fetch,
		label:    label,
	}
}

func (m dashboardModel) Init() tea.Cmd {
	return tea.Batch(m.fetchCmd(), tick(m.interval))
}

func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "r":
			return m, m.fetchCmd()
		}

	case tickMsg:
		return m, tea.Batch(m.fetchCmd(), tick(m.interval))

	case stateFetchedMsg:
		m.state = bridge.State(msg)
		m.loaded = true
		m.lastUpdate = time.Now()
		m.err = ""

	case stateErrorMsg:
		m.err = Notice(msg.err)
	}

	return m, nil
}

func (m dashboardModel) View() string {
	if m.quitting {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(StyleTitle.Render("w3mask session") + "\n")
	updated := "never"
	if !m.lastUpdate.IsZero() {
		updated = m.lastUpdate.Format("15:04:05")
	}
	sb.WriteString(Meta("Updated: "+updated+" · r to refresh · q to quit") + "\n\n")

	if m.err != "" {
		sb.WriteString(m.err + "\n\n")
	}

	if !m.loaded {
		sb.WriteString(Meta("Waiting for the daemon...") + "\n")
		return sb.String()
	}
	sb.WriteString(Session(m.state, m.label) + "\n")
	if !m.state.Installed {
		sb.WriteString(Hint("open the wallet page printed by `w3mask serve`") + "\n")
	} else if !m.state.Active {
		sb.WriteString(Hint("run `w3mask connect` to connect an account") + "\n")
	}
	return sb.String()
}

func (m dashboardModel) fetchCmd() tea.Cmd {
	fetch, timeout := m.fetch, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		s, err := fetch(ctx)
		if err != nil {
			return stateErrorMsg{err}
		}
		return stateFetchedMsg(s)
	}
}

func tick(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
