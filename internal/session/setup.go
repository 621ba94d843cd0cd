package session

import (
	"github.com/rocketscienceinc/chainreaction/internal/apperror"
	"github.com/rocketscienceinc/chainreaction/internal/entity"
)

// Configuration can only change in setup, and not while a start request is in flight.
// Ranges are clamped the way the setup form does; everything else is left to the engine to judge.

func (that *Session) Config() entity.GameConfig {
	return that.config.Clone()
}

func (that *Session) editable() error {
	if that.phase != PhaseSetup || that.starting {
		return apperror.ErrConfigLocked
	}
	return nil
}

func (that *Session) SetBoardSize(width, height int) error {
	if err := that.editable(); err != nil {
		return err
	}

	that.config.Width = entity.ClampBoardSize(width)
	that.config.Height = entity.ClampBoardSize(height)

	return nil
}

func (that *Session) SetPlayerName(side entity.Side, name string) error {
	if err := that.editable(); err != nil {
		return err
	}

	that.config.Player(side).Name = name

	return nil
}

// SetPlayerKind - switching to AI fills in the default AI configuration.
func (that *Session) SetPlayerKind(side entity.Side, kind entity.PlayerKind) error {
	if err := that.editable(); err != nil {
		return err
	}

	that.config.Player(side).SetKind(kind)

	return nil
}

// ToggleHeuristic - no-op for human players.
func (that *Session) ToggleHeuristic(side entity.Side, heuristic entity.Heuristic) error {
	if err := that.editable(); err != nil {
		return err
	}

	that.config.Player(side).ToggleHeuristic(heuristic)

	return nil
}

func (that *Session) SetStrategy(side entity.Side, strategy entity.Strategy) error {
	return that.editAI(side, func(ai *entity.AIConfig) {
		ai.Strategy = strategy
	})
}

func (that *Session) SetDepth(side entity.Side, depth int) error {
	return that.editAI(side, func(ai *entity.AIConfig) {
		ai.Depth = entity.ClampDepth(depth)
	})
}

func (that *Session) SetTimeLimit(side entity.Side, ms int) error {
	return that.editAI(side, func(ai *entity.AIConfig) {
		ai.TimeLimitMS = entity.ClampTimeLimit(ms)
	})
}

func (that *Session) editAI(side entity.Side, edit func(ai *entity.AIConfig)) error {
	if err := that.editable(); err != nil {
		return err
	}

	player := that.config.Player(side)
	if player.IsAI() && player.AI != nil {
		edit(player.AI)
	}

	return nil
}
