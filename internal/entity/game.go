package entity

import (
	"errors"
	"fmt"

	"github.com/rocketscienceinc/chainreaction/internal/apperror"
)

const (
	StatusOngoing  = "ongoing"
	StatusFinished = "finished"
)

type Side string

const (
	SideNone Side = ""
	SideRed  Side = "red"
	SideBlue Side = "blue"
)

var ErrUnknownGameStatus = errors.New("unknown game status")

func (that Side) Opponent() Side {
	switch that {
	case SideRed:
		return SideBlue
	case SideBlue:
		return SideRed
	default:
		return SideNone
	}
}

func (that Side) Label() string {
	switch that {
	case SideRed:
		return "Red"
	case SideBlue:
		return "Blue"
	default:
		return "None"
	}
}

// Cell - one square of the board. CriticalMass comes from the engine and is never computed here.
type Cell struct {
	Owner        Side `json:"owner,omitempty"`
	Orbs         int  `json:"orbs"`
	CriticalMass int  `json:"critical_mass"`
}

func (that Cell) IsEmpty() bool {
	return that.Owner == SideNone
}

// AcceptsOrbFrom - an orb can be placed on an empty cell or on a cell the side already owns.
func (that Cell) AcceptsOrbFrom(side Side) bool {
	return that.Owner == SideNone || that.Owner == side
}

// Board - rectangular grid indexed [row][col].
type Board [][]Cell

func (that Board) Height() int {
	return len(that)
}

func (that Board) Width() int {
	if len(that) == 0 {
		return 0
	}
	return len(that[0])
}

func (that Board) InBounds(move Move) bool {
	return move.Row >= 0 && move.Row < that.Height() && move.Col >= 0 && move.Col < that.Width()
}

func (that Board) Clone() Board {
	if that == nil {
		return nil
	}

	out := make(Board, len(that))
	for r, row := range that {
		out[r] = make([]Cell, len(row))
		copy(out[r], row)
	}

	return out
}

type Move struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (that Move) String() string {
	return fmt.Sprintf("(%d, %d)", that.Row, that.Col)
}

// GameState - the engine's view of a game. It is replaced wholesale, never patched.
type GameState struct {
	Board      Board  `json:"board"`
	Turn       Side   `json:"current_player"`
	Status     string `json:"game_status"`
	Winner     Side   `json:"winner,omitempty"`
	RedOrbs    int    `json:"red_orbs"`
	BlueOrbs   int    `json:"blue_orbs"`
	TotalMoves int    `json:"total_moves"`
}

func (that *GameState) IsFinished() bool {
	return that.Status == StatusFinished
}

func (that *GameState) IsOngoing() bool {
	return that.Status == StatusOngoing
}

func (that *GameState) ConfirmOngoingState() error {
	switch {
	case that.IsFinished():
		return apperror.ErrGameFinished
	case that.IsOngoing():
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnknownGameStatus, that.Status)
	}
}

func (that *GameState) OrbsOf(side Side) int {
	switch side {
	case SideRed:
		return that.RedOrbs
	case SideBlue:
		return that.BlueOrbs
	default:
		return 0
	}
}

// Fits - reports whether the board has exactly the configured dimensions.
func (that *GameState) Fits(cfg GameConfig) bool {
	return that.Board.Width() == cfg.Width && that.Board.Height() == cfg.Height
}

func (that *GameState) Clone() *GameState {
	if that == nil {
		return nil
	}

	out := *that
	out.Board = that.Board.Clone()

	return &out
}
