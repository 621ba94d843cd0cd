package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rocketscienceinc/chainreaction/internal/entity"
	"github.com/rocketscienceinc/chainreaction/internal/session"
)

const (
	celebrationFor = 3 * time.Second
	logHeight      = 10
)

type controller interface {
	Start()
	ClickCell(move entity.Move)
	RecoverFresh()
	RecoverFromLog()
	Shortcut(key string)
	Reset()
	Setup(edit func(s *session.Session) error) error
	Subscribe() (<-chan session.Snapshot, func())
}

type snapshotMsg struct {
	snap session.Snapshot
}

type celebrateMsg struct {
	effect session.CelebrateEffect
}

type tickMsg time.Time

// Model - the bubbletea front-end. It only renders snapshots and forwards user actions;
// every decision is made by the session.
type Model struct {
	ctrl         controller
	updates      <-chan session.Snapshot
	unsubscribe  func()
	celebrations chan session.CelebrateEffect

	snap    session.Snapshot
	cursor  entity.Move
	row     int
	editing entity.Side
	status  string
	now     time.Time

	celebration    string
	celebrateUntil time.Time

	width  int
	height int

	input   textinput.Model
	logView viewport.Model
	spinner spinner.Model
	theme   theme
}

func New(ctrl controller) Model {
	updates, unsubscribe := ctrl.Subscribe()

	input := textinput.New()
	input.Prompt = "name> "
	input.CharLimit = 24

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#05ffa1"))

	m := Model{
		ctrl:         ctrl,
		updates:      updates,
		unsubscribe:  unsubscribe,
		celebrations: make(chan session.CelebrateEffect, 1),
		snap:         <-updates,
		now:          time.Now(),
		input:        input,
		logView:      viewport.New(60, logHeight),
		spinner:      sp,
		theme:        newTheme(),
	}
	m.logView.SetContent(m.renderLog())

	return m
}

// Celebrate - hook for the runner; never blocks.
func (m Model) Celebrate(effect session.CelebrateEffect) {
	select {
	case m.celebrations <- effect:
	default:
	}
}

// Close - stops the snapshot subscription.
func (m Model) Close() {
	m.unsubscribe()
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		waitSnapshot(m.updates),
		waitCelebration(m.celebrations),
		m.spinner.Tick,
		tickEvery(time.Second),
	)
}

func waitSnapshot(ch <-chan session.Snapshot) tea.Cmd {
	return func() tea.Msg {
		snap, ok := <-ch
		if !ok {
			return nil
		}
		return snapshotMsg{snap: snap}
	}
}

func waitCelebration(ch <-chan session.CelebrateEffect) tea.Cmd {
	return func() tea.Msg {
		return celebrateMsg{effect: <-ch}
	}
}

func tickEvery(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.logView.Width = max(40, msg.Width-4)
		return m, nil
	case snapshotMsg:
		m.applySnapshot(msg.snap)
		return m, waitSnapshot(m.updates)
	case celebrateMsg:
		m.celebration = "*** " + msg.effect.Name + " (" + msg.effect.Winner.Label() + ") wins! ***"
		m.celebrateUntil = m.now.Add(celebrationFor)
		return m, waitCelebration(m.celebrations)
	case tickMsg:
		m.now = time.Time(msg)
		if !m.celebrateUntil.IsZero() && !m.now.Before(m.celebrateUntil) {
			m.celebration = ""
			m.celebrateUntil = time.Time{}
		}
		return m, tickEvery(time.Second)
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m *Model) applySnapshot(snap session.Snapshot) {
	m.snap = snap

	if snap.State != nil {
		m.cursor.Row = clamp(m.cursor.Row, 0, snap.State.Board.Height()-1)
		m.cursor.Col = clamp(m.cursor.Col, 0, snap.State.Board.Width()-1)
	}

	rows := setupRows(snap.Config)
	m.row = clamp(m.row, 0, len(rows)-1)

	atTop := m.logView.AtTop()
	m.logView.SetContent(m.renderLog())
	if atTop {
		m.logView.GotoTop()
	}
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" {
		m.unsubscribe()
		return m, tea.Quit
	}

	if m.editing != entity.SideNone {
		return m.handleNameInput(msg)
	}

	if key == "q" {
		m.unsubscribe()
		return m, tea.Quit
	}

	switch key {
	case "pgup", "pgdown":
		var cmd tea.Cmd
		m.logView, cmd = m.logView.Update(msg)
		return m, cmd
	}

	switch {
	case m.snap.Phase == session.PhaseSetup:
		return m.handleSetupKey(key)
	case m.snap.Phase.IsPlaying():
		return m.handlePlayKey(key)
	default:
		if key == "n" {
			m.ctrl.Reset()
		}
		return m, nil
	}
}

func (m Model) handlePlayKey(key string) (tea.Model, tea.Cmd) {
	var board entity.Board
	if m.snap.State != nil {
		board = m.snap.State.Board
	}

	switch key {
	case "up":
		m.cursor.Row = clamp(m.cursor.Row-1, 0, board.Height()-1)
	case "down":
		m.cursor.Row = clamp(m.cursor.Row+1, 0, board.Height()-1)
	case "left":
		m.cursor.Col = clamp(m.cursor.Col-1, 0, board.Width()-1)
	case "right":
		m.cursor.Col = clamp(m.cursor.Col+1, 0, board.Width()-1)
	case "enter", " ":
		m.ctrl.ClickCell(m.cursor)
	case "r":
		m.ctrl.RecoverFresh()
	case "g":
		m.ctrl.RecoverFromLog()
	case session.ShortcutFresh, session.ShortcutLog:
		m.ctrl.Shortcut(key)
	case "n":
		m.ctrl.Reset()
	}

	return m, nil
}

func clamp(value, lo, hi int) int {
	if hi < lo {
		return lo
	}
	return max(lo, min(value, hi))
}
