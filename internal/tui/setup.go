package tui

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rocketscienceinc/chainreaction/internal/entity"
	"github.com/rocketscienceinc/chainreaction/internal/session"
)

type rowKind int

const (
	rowWidth rowKind = iota
	rowHeight
	rowName
	rowPlayerKind
	rowStrategy
	rowDepth
	rowTimeLimit
	rowHeuristic
	rowStart
)

const timeLimitStep = 500

type setupRow struct {
	kind      rowKind
	side      entity.Side
	heuristic entity.Heuristic
}

// setupRows - the form for the given configuration. AI rows only appear for AI players.
func setupRows(cfg entity.GameConfig) []setupRow {
	rows := []setupRow{{kind: rowWidth}, {kind: rowHeight}}

	for _, side := range []entity.Side{entity.SideRed, entity.SideBlue} {
		rows = append(rows, setupRow{kind: rowName, side: side}, setupRow{kind: rowPlayerKind, side: side})

		player := cfg.Player(side)
		if !player.IsAI() || player.AI == nil {
			continue
		}

		rows = append(rows,
			setupRow{kind: rowStrategy, side: side},
			setupRow{kind: rowDepth, side: side},
			setupRow{kind: rowTimeLimit, side: side},
		)
		for _, h := range entity.Heuristics {
			rows = append(rows, setupRow{kind: rowHeuristic, side: side, heuristic: h})
		}
	}

	return append(rows, setupRow{kind: rowStart})
}

func (m Model) handleSetupKey(key string) (tea.Model, tea.Cmd) {
	rows := setupRows(m.snap.Config)

	switch key {
	case "up":
		m.row = clamp(m.row-1, 0, len(rows)-1)
	case "down":
		m.row = clamp(m.row+1, 0, len(rows)-1)
	case "left", "-":
		m.edit(adjust(m.snap.Config, rows[m.row], -1))
	case "right", "+":
		m.edit(adjust(m.snap.Config, rows[m.row], 1))
	case "enter", " ":
		return m.activate(rows[m.row])
	case "s":
		m.status = ""
		m.ctrl.Start()
	}

	return m, nil
}

func (m Model) activate(row setupRow) (tea.Model, tea.Cmd) {
	switch row.kind {
	case rowStart:
		m.status = ""
		m.ctrl.Start()
		return m, nil
	case rowName:
		m.editing = row.side
		m.input.SetValue(m.snap.Config.Player(row.side).Name)
		m.input.CursorEnd()
		return m, m.input.Focus()
	default:
		m.edit(adjust(m.snap.Config, row, 1))
		return m, nil
	}
}

func (m *Model) edit(fn func(s *session.Session) error) {
	if fn == nil {
		return
	}

	if err := m.ctrl.Setup(fn); err != nil {
		m.status = err.Error()
		return
	}

	m.status = ""
}

// adjust - the session edit for moving a form row by delta. Rows without a numeric or
// cyclic value are toggled regardless of direction.
func adjust(cfg entity.GameConfig, row setupRow, delta int) func(s *session.Session) error {
	player := cfg.Player(row.side)

	switch row.kind {
	case rowWidth:
		return func(s *session.Session) error { return s.SetBoardSize(cfg.Width+delta, cfg.Height) }
	case rowHeight:
		return func(s *session.Session) error { return s.SetBoardSize(cfg.Width, cfg.Height+delta) }
	case rowPlayerKind:
		next := entity.KindAI
		if player.IsAI() {
			next = entity.KindHuman
		}
		return func(s *session.Session) error { return s.SetPlayerKind(row.side, next) }
	case rowHeuristic:
		return func(s *session.Session) error { return s.ToggleHeuristic(row.side, row.heuristic) }
	}

	if player.AI == nil {
		return nil
	}

	switch row.kind {
	case rowStrategy:
		idx := slices.Index(entity.Strategies, player.AI.Strategy)
		next := entity.Strategies[(max(idx, 0)+delta+len(entity.Strategies))%len(entity.Strategies)]
		return func(s *session.Session) error { return s.SetStrategy(row.side, next) }
	case rowDepth:
		return func(s *session.Session) error { return s.SetDepth(row.side, player.AI.Depth+delta) }
	case rowTimeLimit:
		return func(s *session.Session) error {
			return s.SetTimeLimit(row.side, player.AI.TimeLimitMS+delta*timeLimitStep)
		}
	default:
		return nil
	}
}

func (m Model) handleNameInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		side, name := m.editing, strings.TrimSpace(m.input.Value())
		m.editing = entity.SideNone
		m.input.Blur()

		if name != "" {
			m.edit(func(s *session.Session) error { return s.SetPlayerName(side, name) })
		}
		return m, nil
	case "esc":
		m.editing = entity.SideNone
		m.input.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m Model) rowLabel(row setupRow) (string, string) {
	cfg := m.snap.Config
	player := cfg.Player(row.side)

	switch row.kind {
	case rowWidth:
		return "Board width", strconv.Itoa(cfg.Width)
	case rowHeight:
		return "Board height", strconv.Itoa(cfg.Height)
	case rowName:
		return row.side.Label() + " name", player.Name
	case rowPlayerKind:
		return row.side.Label() + " player", player.Kind.Label()
	case rowStrategy:
		return "  strategy", string(player.AI.Strategy)
	case rowDepth:
		return "  depth", strconv.Itoa(player.AI.Depth)
	case rowTimeLimit:
		return "  time budget", fmt.Sprintf("%d ms", player.AI.TimeLimitMS)
	case rowHeuristic:
		mark := "[ ]"
		if player.AI.Has(row.heuristic) {
			mark = "[x]"
		}
		return "  " + string(row.heuristic), mark
	default:
		return "Start game", ""
	}
}

func (m Model) renderSetup() string {
	var b strings.Builder

	b.WriteString(m.theme.title.Render("Chain Reaction - new game"))
	b.WriteString("\n")
	b.WriteString(m.theme.helpText.Render("up/down select, left/right change, enter edit or toggle, s start, q quit"))
	b.WriteString("\n\n")

	for i, row := range setupRows(m.snap.Config) {
		label, value := m.rowLabel(row)

		labelStyle, valueStyle, prefix := m.theme.settingKey, m.theme.settingValue, "  "
		if i == m.row {
			labelStyle, valueStyle, prefix = m.theme.settingPick, m.theme.settingPick, "> "
		}

		if row.kind == rowName && m.editing == row.side {
			b.WriteString(prefix + labelStyle.Render(fmt.Sprintf("%-26s", label)) + " " + m.input.View() + "\n")
			continue
		}

		b.WriteString(prefix + labelStyle.Render(fmt.Sprintf("%-26s", label)) + " " + valueStyle.Render(value) + "\n")
	}

	if m.snap.Starting {
		b.WriteString("\n" + m.spinner.View() + " starting game...")
	}

	if m.status != "" {
		b.WriteString("\n" + m.theme.errorStatus.Render(m.status))
	}

	return strings.TrimRight(b.String(), "\n")
}
