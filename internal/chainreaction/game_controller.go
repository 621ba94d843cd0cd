package chainreaction

import (
	"errors"
	"fmt"
	"time"

	"github.com/rocketscienceinc/chainreaction/internal/apperror"
	"github.com/rocketscienceinc/chainreaction/internal/entity"
)

var ErrChainTimeout = errors.New("chain reaction timed out during simulation")

var neighbours = [4][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}}

// NewGame - an empty board with red to move.
func NewGame(width, height int) *entity.GameState {
	board := make(entity.Board, height)
	for r := range board {
		board[r] = make([]entity.Cell, width)
		for c := range board[r] {
			board[r][c] = entity.Cell{CriticalMass: CriticalMass(r, c, width, height)}
		}
	}

	return &entity.GameState{
		Board:  board,
		Turn:   entity.SideRed,
		Status: entity.StatusOngoing,
	}
}

// CriticalMass - the number of orthogonal neighbours of (row, col).
func CriticalMass(row, col, width, height int) int {
	mass := 4
	if row == 0 || row == height-1 {
		mass--
	}
	if col == 0 || col == width-1 {
		mass--
	}

	return mass
}

func ValidMoves(state *entity.GameState) []entity.Move {
	if !state.IsOngoing() {
		return nil
	}

	moves := make([]entity.Move, 0, state.Board.Width()*state.Board.Height())
	for r, row := range state.Board {
		for c, cell := range row {
			if cell.AcceptsOrbFrom(state.Turn) {
				moves = append(moves, entity.Move{Row: r, Col: c})
			}
		}
	}

	return moves
}

func ValidateMove(state *entity.GameState, move entity.Move) error {
	if err := state.ConfirmOngoingState(); err != nil {
		return err
	}

	if !state.Board.InBounds(move) {
		return apperror.ErrOutOfBounds
	}

	if !state.Board[move.Row][move.Col].AcceptsOrbFrom(state.Turn) {
		return apperror.ErrCellOwnedByOpponent
	}

	return nil
}

// MakeTurn - applies the move for the side to move and returns the cascade frames.
// The last frame always equals the resulting state.
func MakeTurn(state *entity.GameState, move entity.Move) ([]entity.GameState, error) {
	frames, err := apply(state, move, true, time.Time{})
	if err != nil {
		return nil, fmt.Errorf("invalid turn: %w", err)
	}

	return frames, nil
}

// Simulate - MakeTurn without frames, for search. A zero deadline never expires.
func Simulate(state *entity.GameState, move entity.Move, deadline time.Time) error {
	_, err := apply(state, move, false, deadline)
	return err
}

func apply(state *entity.GameState, move entity.Move, record bool, deadline time.Time) ([]entity.GameState, error) {
	if err := ValidateMove(state, move); err != nil {
		return nil, err
	}

	mover := state.Turn
	cell := &state.Board[move.Row][move.Col]
	cell.Owner = mover
	cell.Orbs++

	var frames []entity.GameState
	if record && cell.Orbs >= cell.CriticalMass {
		recount(state)
		frames = append(frames, *state.Clone())
	}

	if err := react(state, move, record, deadline, &frames); err != nil {
		return nil, err
	}

	recount(state)
	updateStatus(state)

	if state.IsOngoing() {
		state.Turn = mover.Opponent()
	}

	state.TotalMoves++

	if record {
		frames = append(frames, *state.Clone())
	}

	return frames, nil
}

// react - resolves explosions breadth first starting at the placed cell.
func react(state *entity.GameState, start entity.Move, record bool, deadline time.Time, frames *[]entity.GameState) error {
	board := state.Board
	queued := make([][]bool, board.Height())
	for r := range queued {
		queued[r] = make([]bool, board.Width())
	}

	queue := make([]entity.Move, 0, 8)
	enqueue := func(m entity.Move) {
		c := board[m.Row][m.Col]
		if c.Owner != entity.SideNone && c.Orbs >= c.CriticalMass && !queued[m.Row][m.Col] {
			queue = append(queue, m)
			queued[m.Row][m.Col] = true
		}
	}

	enqueue(start)

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if !deadline.IsZero() && !time.Now().Before(deadline) {
			return ErrChainTimeout
		}

		cell := &board[current.Row][current.Col]
		queued[current.Row][current.Col] = false
		if cell.Owner == entity.SideNone || cell.Orbs < cell.CriticalMass {
			continue
		}

		owner := cell.Owner
		cell.Orbs -= cell.CriticalMass
		if cell.Orbs == 0 {
			cell.Owner = entity.SideNone
		}

		for _, d := range neighbours {
			next := entity.Move{Row: current.Row + d[0], Col: current.Col + d[1]}
			if !board.InBounds(next) {
				continue
			}

			board[next.Row][next.Col].Owner = owner
			board[next.Row][next.Col].Orbs++
			enqueue(next)
		}

		enqueue(current)

		recount(state)
		if record {
			*frames = append(*frames, *state.Clone())
		}

		updateStatus(state)
		if !state.IsOngoing() {
			break
		}
	}

	return nil
}

func recount(state *entity.GameState) {
	state.RedOrbs, state.BlueOrbs = 0, 0
	for _, row := range state.Board {
		for _, cell := range row {
			switch cell.Owner {
			case entity.SideRed:
				state.RedOrbs += cell.Orbs
			case entity.SideBlue:
				state.BlueOrbs += cell.Orbs
			}
		}
	}
}

// updateStatus - a side wins once it holds every orb, but never before both sides have moved.
func updateStatus(state *entity.GameState) {
	if state.TotalMoves < 2 {
		return
	}

	switch {
	case state.RedOrbs > 0 && state.BlueOrbs == 0:
		state.Status = entity.StatusFinished
		state.Winner = entity.SideRed
	case state.BlueOrbs > 0 && state.RedOrbs == 0:
		state.Status = entity.StatusFinished
		state.Winner = entity.SideBlue
	}
}
