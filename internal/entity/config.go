package entity

import (
	"fmt"
	"slices"
	"strings"

	"github.com/rocketscienceinc/chainreaction/internal/apperror"
)

const (
	MinBoardSize   = 3
	MaxBoardSize   = 15
	MinDepth       = 1
	MaxDepth       = 10
	MinTimeLimitMS = 500
	MaxTimeLimitMS = 10000

	DefaultWidth       = 6
	DefaultHeight      = 9
	DefaultDepth       = 3
	DefaultTimeLimitMS = 2000
)

type PlayerKind string

const (
	KindHuman PlayerKind = "human"
	KindAI    PlayerKind = "ai"
)

func (that PlayerKind) Label() string {
	if that == KindAI {
		return "AI"
	}
	return "Human"
}

type Strategy string

const (
	StrategyRandom    Strategy = "Random"
	StrategyAlphaBeta Strategy = "AlphaBeta"
)

var Strategies = []Strategy{StrategyAlphaBeta, StrategyRandom}

type Heuristic string

const (
	HeuristicOrbDifference          Heuristic = "OrbDifference"
	HeuristicPeripheralControl      Heuristic = "PeripheralControl"
	HeuristicTerritoryControl       Heuristic = "TerritoryControl"
	HeuristicChainReactionPotential Heuristic = "ChainReactionPotential"
	HeuristicConversionPotential    Heuristic = "ConversionPotential"
	HeuristicCascadePotential       Heuristic = "CascadePotential"
	HeuristicSafeMobility           Heuristic = "SafeMobility"
)

var Heuristics = []Heuristic{
	HeuristicOrbDifference,
	HeuristicPeripheralControl,
	HeuristicTerritoryControl,
	HeuristicChainReactionPotential,
	HeuristicConversionPotential,
	HeuristicCascadePotential,
	HeuristicSafeMobility,
}

// DefaultHeuristics - the subset enabled when a player is switched to AI.
var DefaultHeuristics = []Heuristic{
	HeuristicOrbDifference,
	HeuristicPeripheralControl,
	HeuristicChainReactionPotential,
}

type AIConfig struct {
	Strategy    Strategy    `json:"strategy"`
	Depth       int         `json:"depth"`
	Heuristics  []Heuristic `json:"heuristics"`
	TimeLimitMS int         `json:"time_limit_ms"`
}

func DefaultAIConfig() *AIConfig {
	return &AIConfig{
		Strategy:    StrategyAlphaBeta,
		Depth:       DefaultDepth,
		Heuristics:  slices.Clone(DefaultHeuristics),
		TimeLimitMS: DefaultTimeLimitMS,
	}
}

func (that *AIConfig) Has(heuristic Heuristic) bool {
	return slices.Contains(that.Heuristics, heuristic)
}

// Toggle - flips one heuristic, keeping the canonical order of Heuristics.
func (that *AIConfig) Toggle(heuristic Heuristic) {
	enabled := !that.Has(heuristic)

	next := make([]Heuristic, 0, len(Heuristics))
	for _, h := range Heuristics {
		if h == heuristic {
			if enabled {
				next = append(next, h)
			}
			continue
		}
		if that.Has(h) {
			next = append(next, h)
		}
	}

	that.Heuristics = next
}

func (that *AIConfig) Clone() *AIConfig {
	if that == nil {
		return nil
	}

	out := *that
	out.Heuristics = slices.Clone(that.Heuristics)

	return &out
}

func (that *AIConfig) String() string {
	names := make([]string, 0, len(that.Heuristics))
	for _, h := range that.Heuristics {
		names = append(names, string(h))
	}

	enabled := "none"
	if len(names) > 0 {
		enabled = strings.Join(names, ", ")
	}

	return fmt.Sprintf("strategy=%s depth=%d time=%dms heuristics=%s", that.Strategy, that.Depth, that.TimeLimitMS, enabled)
}

func (that *AIConfig) Validate() error {
	if !slices.Contains(Strategies, that.Strategy) {
		return fmt.Errorf("%w: unknown strategy %q", apperror.ErrConfigRejected, that.Strategy)
	}

	if that.Depth < MinDepth || that.Depth > MaxDepth {
		return fmt.Errorf("%w: depth %d outside %d..%d", apperror.ErrConfigRejected, that.Depth, MinDepth, MaxDepth)
	}

	if that.TimeLimitMS < MinTimeLimitMS || that.TimeLimitMS > MaxTimeLimitMS {
		return fmt.Errorf("%w: time limit %dms outside %d..%d", apperror.ErrConfigRejected, that.TimeLimitMS, MinTimeLimitMS, MaxTimeLimitMS)
	}

	for _, h := range that.Heuristics {
		if !slices.Contains(Heuristics, h) {
			return fmt.Errorf("%w: unknown heuristic %q", apperror.ErrConfigRejected, h)
		}
	}

	return nil
}

type PlayerConfig struct {
	Name string     `json:"name"`
	Kind PlayerKind `json:"player_type"`
	AI   *AIConfig  `json:"ai_config,omitempty"`
}

func (that *PlayerConfig) IsAI() bool {
	return that.Kind == KindAI
}

// SetKind - switching to AI fills in the default AIConfig when none is present; switching to human drops it.
func (that *PlayerConfig) SetKind(kind PlayerKind) {
	that.Kind = kind

	if kind == KindAI {
		if that.AI == nil {
			that.AI = DefaultAIConfig()
		}
		return
	}

	that.AI = nil
}

// ToggleHeuristic - no-op for human players.
func (that *PlayerConfig) ToggleHeuristic(heuristic Heuristic) {
	if !that.IsAI() || that.AI == nil {
		return
	}

	that.AI.Toggle(heuristic)
}

func (that *PlayerConfig) Describe() string {
	if that.IsAI() && that.AI != nil {
		return fmt.Sprintf("%s (%s) %s", that.Name, that.Kind.Label(), that.AI)
	}

	return fmt.Sprintf("%s (%s)", that.Name, that.Kind.Label())
}

type GameConfig struct {
	Width  int          `json:"width"`
	Height int          `json:"height"`
	Red    PlayerConfig `json:"red_player"`
	Blue   PlayerConfig `json:"blue_player"`
}

func DefaultGameConfig() GameConfig {
	return GameConfig{
		Width:  DefaultWidth,
		Height: DefaultHeight,
		Red:    PlayerConfig{Name: "Red", Kind: KindHuman},
		Blue:   PlayerConfig{Name: "Blue", Kind: KindAI, AI: DefaultAIConfig()},
	}
}

func (that *GameConfig) Player(side Side) *PlayerConfig {
	if side == SideBlue {
		return &that.Blue
	}
	return &that.Red
}

// IsSpectation - both sides are AI controlled.
func (that *GameConfig) IsSpectation() bool {
	return that.Red.IsAI() && that.Blue.IsAI()
}

func (that *GameConfig) Clone() GameConfig {
	out := *that
	out.Red.AI = that.Red.AI.Clone()
	out.Blue.AI = that.Blue.AI.Clone()

	return out
}

// Validate - the engine's acceptance check. The session layer does not call it.
func (that *GameConfig) Validate() error {
	if that.Width < MinBoardSize || that.Width > MaxBoardSize || that.Height < MinBoardSize || that.Height > MaxBoardSize {
		return fmt.Errorf("%w: board %dx%d outside %d..%d", apperror.ErrConfigRejected, that.Width, that.Height, MinBoardSize, MaxBoardSize)
	}

	for _, side := range []Side{SideRed, SideBlue} {
		player := that.Player(side)

		switch player.Kind {
		case KindHuman:
		case KindAI:
			if player.AI == nil {
				return fmt.Errorf("%w: %s player is AI without AI configuration", apperror.ErrConfigRejected, side.Label())
			}
			if err := player.AI.Validate(); err != nil {
				return fmt.Errorf("%s player: %w", side.Label(), err)
			}
		default:
			return fmt.Errorf("%w: %s player has unknown kind %q", apperror.ErrConfigRejected, side.Label(), player.Kind)
		}
	}

	return nil
}

func ClampBoardSize(value int) int {
	return clamp(value, MinBoardSize, MaxBoardSize)
}

func ClampDepth(value int) int {
	return clamp(value, MinDepth, MaxDepth)
}

func ClampTimeLimit(value int) int {
	return clamp(value, MinTimeLimitMS, MaxTimeLimitMS)
}

func clamp(value, lo, hi int) int {
	return max(lo, min(value, hi))
}
