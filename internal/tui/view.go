package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/rocketscienceinc/chainreaction/internal/entity"
	"github.com/rocketscienceinc/chainreaction/internal/session"
)

var errorTitles = map[session.ErrorKind]string{
	session.ErrorSetup:    "Could not start",
	session.ErrorMove:     "Move rejected",
	session.ErrorAI:       "AI stopped",
	session.ErrorRecovery: "Recovery failed",
}

func (m Model) View() string {
	var body string

	switch {
	case m.snap.Phase == session.PhaseSetup:
		body = m.renderSetup()
		if banner := m.renderError(); banner != "" {
			body += "\n\n" + banner
		}
	case m.snap.Phase == session.PhaseFinished:
		body = m.renderFinished()
	default:
		body = m.renderPlay()
	}

	if m.snap.Phase != session.PhaseSetup {
		body = lipgloss.JoinVertical(lipgloss.Left, body, m.renderLogPanel())
	}

	return m.theme.root.Render(body)
}

func (m Model) renderPlay() string {
	header := m.theme.title.Render("Chain Reaction") + "  " + m.theme.helpText.Render(string(m.snap.Phase))

	side := lipgloss.JoinVertical(lipgloss.Left,
		m.renderScoreboard(),
		"",
		m.renderTurn(),
		m.renderError(),
		"",
		m.renderPlayHelp(),
	)

	board := m.theme.panel.Render(m.renderBoard(true))

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		lipgloss.JoinHorizontal(lipgloss.Top, board, "  ", side),
	)
}

func (m Model) renderFinished() string {
	state := m.snap.State
	if state == nil {
		return m.theme.title.Render("Game over")
	}

	cfg := m.snap.Config
	winner := cfg.Player(state.Winner)

	lines := []string{
		m.theme.title.Render("Game over!"),
		"",
		m.theme.sideStyle(state.Winner).Render(fmt.Sprintf("%s (%s) wins", winner.Name, state.Winner.Label())),
		fmt.Sprintf("Moves: %d", m.snap.MoveCount),
		"Elapsed: " + m.snap.Elapsed.Round(time.Second).String(),
		fmt.Sprintf("Orbs: Red %d, Blue %d", state.RedOrbs, state.BlueOrbs),
		"",
		m.theme.panelTitle.Render("Configuration"),
		fmt.Sprintf("Board: %dx%d", cfg.Width, cfg.Height),
		"Red: " + cfg.Red.Describe(),
		"Blue: " + cfg.Blue.Describe(),
		"",
		m.theme.helpText.Render("n new game, pgup/pgdown scroll log, q quit"),
	}

	if m.celebration != "" {
		lines = append([]string{m.theme.celebration.Render(m.celebration), ""}, lines...)
	}

	board := m.theme.panel.Render(m.renderBoard(false))

	return lipgloss.JoinHorizontal(lipgloss.Top, board, "  ", strings.Join(lines, "\n"))
}

func (m Model) renderBoard(withCursor bool) string {
	state := m.snap.State
	if state == nil {
		return m.theme.helpText.Render("waiting for the engine...")
	}

	var b strings.Builder

	for r, row := range state.Board {
		for c, cell := range row {
			text := " . "
			style := m.theme.cellEmpty

			if !cell.IsEmpty() {
				text = " " + strconv.Itoa(cell.Orbs) + " "
				style = m.theme.sideStyle(cell.Owner)
				if cell.Orbs >= cell.CriticalMass-1 {
					style = style.Underline(true)
				}
			}

			if withCursor && m.cursor.Row == r && m.cursor.Col == c {
				style = style.Inherit(m.theme.cellCursor)
			}

			b.WriteString(style.Render(text))
		}

		if r < len(state.Board)-1 {
			b.WriteString("\n")
		}
	}

	return b.String()
}

func (m Model) renderScoreboard() string {
	cfg := m.snap.Config
	state := m.snap.State

	lines := []string{m.theme.panelTitle.Render("Score")}

	for _, side := range []entity.Side{entity.SideRed, entity.SideBlue} {
		player := cfg.Player(side)

		orbs := 0
		if state != nil {
			orbs = state.OrbsOf(side)
		}

		lines = append(lines, m.theme.sideStyle(side).Render(
			fmt.Sprintf("%-5s %-12s %-5s %3d orbs", side.Label(), player.Name, player.Kind.Label(), orbs)))
	}

	lines = append(lines,
		fmt.Sprintf("Moves: %d", m.snap.MoveCount),
		"Elapsed: "+m.elapsed().Round(time.Second).String(),
	)

	return strings.Join(lines, "\n")
}

func (m Model) elapsed() time.Duration {
	if m.snap.StartedAt.IsZero() {
		return m.snap.Elapsed
	}
	return max(m.snap.Elapsed, m.now.Sub(m.snap.StartedAt))
}

func (m Model) renderTurn() string {
	state := m.snap.State
	if state == nil {
		return ""
	}

	player := m.snap.Config.Player(state.Turn)
	turn := m.theme.sideStyle(state.Turn).Render(player.Name + " (" + state.Turn.Label() + ")")

	switch {
	case m.snap.Recovering:
		return m.spinner.View() + " recovering state..."
	case !m.snap.Active:
		return m.theme.errorStatus.Render("Autonomous play stopped. Press n for a new game.")
	case m.snap.Phase == session.PhaseAIThinking:
		return m.spinner.View() + " " + turn + " is thinking"
	case m.snap.Phase == session.PhaseAnimating:
		return turn + " - chain reaction!"
	default:
		return turn + " to move"
	}
}

func (m Model) renderError() string {
	if m.snap.Error == nil {
		return ""
	}

	return m.theme.errorStatus.Render(errorTitles[m.snap.Error.Kind] + ": " + m.snap.Error.Message)
}

func (m Model) renderPlayHelp() string {
	lines := []string{
		"arrows move, enter place orb",
		"r fresh state, g rebuild from log",
	}

	if m.snap.Config.IsSpectation() {
		lines = append(lines, "f / l quick recovery")
	}

	return m.theme.helpText.Render(strings.Join(lines, "\n"))
}

func (m Model) renderLogPanel() string {
	title := m.theme.panelTitle.Render(fmt.Sprintf("Session log (%d)", len(m.snap.Log)))
	return m.theme.panel.Render(title + "\n" + m.logView.View())
}

func (m Model) renderLog() string {
	if len(m.snap.Log) == 0 {
		return m.theme.helpText.Render("Nothing yet.")
	}

	var b strings.Builder

	for _, entry := range m.snap.Log {
		stamp := m.theme.helpText.Render(entry.At.Format("15:04:05"))
		message := strings.ReplaceAll(entry.Message, "\n", "\n         ")
		b.WriteString(stamp + " " + message + "\n")
	}

	return strings.TrimRight(b.String(), "\n")
}
