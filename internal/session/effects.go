package session

import (
	"context"
	"time"

	"github.com/rocketscienceinc/chainreaction/internal/entity"
)

// Engine - the rules and AI engine. Every call may block and may fail.
type Engine interface {
	StartSession(ctx context.Context, cfg entity.GameConfig) (entity.GameState, error)
	SubmitMove(ctx context.Context, move entity.Move) ([]entity.GameState, error)
	ComputeAIMove(ctx context.Context) (entity.Move, error)
	CurrentState(ctx context.Context) (entity.GameState, error)
	RecoverFromLog(ctx context.Context) (entity.GameState, error)
}

// Effect - work the Session asks its runtime to perform. The Session itself never blocks.
type Effect interface {
	effect()
}

// CallEffect - run Do against the engine off the session goroutine and feed its Msg back.
type CallEffect struct {
	Name string
	Do   func(ctx context.Context, engine Engine) Msg
}

// DelayEffect - feed Msg back after the given duration.
type DelayEffect struct {
	After time.Duration
	Msg   Msg
}

// ArmWatchdogEffect - start delivering watchdog ticks for Lease every Interval.
type ArmWatchdogEffect struct {
	Lease    uint64
	Interval time.Duration
}

type DisarmWatchdogEffect struct {
	Lease uint64
}

// CelebrateEffect - fire and forget.
type CelebrateEffect struct {
	Winner entity.Side
	Name   string
}

func (CallEffect) effect()           {}
func (DelayEffect) effect()          {}
func (ArmWatchdogEffect) effect()    {}
func (DisarmWatchdogEffect) effect() {}
func (CelebrateEffect) effect()      {}

// Msg - a result fed back into Session.Handle.
type Msg interface {
	msg()
}

type startedMsg struct {
	epoch uint64
	state entity.GameState
	err   error
}

type aiTurnMsg struct {
	tok token
}

type aiMoveMsg struct {
	tok  token
	move entity.Move
	err  error
}

type moveResultMsg struct {
	tok    token
	side   entity.Side
	move   entity.Move
	byAI   bool
	frames []entity.GameState
	err    error
}

type frameMsg struct {
	tok   token
	index int
}

type clearErrorMsg struct {
	seq int
}

type watchdogTickMsg struct {
	lease uint64
}

type recoveredMsg struct {
	tok   token
	kind  RecoveryKind
	state entity.GameState
	err   error
}

func (startedMsg) msg()      {}
func (aiTurnMsg) msg()       {}
func (aiMoveMsg) msg()       {}
func (moveResultMsg) msg()   {}
func (frameMsg) msg()        {}
func (clearErrorMsg) msg()   {}
func (watchdogTickMsg) msg() {}
func (recoveredMsg) msg()    {}

// WatchdogTick - the message a runtime delivers for an armed lease.
func WatchdogTick(lease uint64) Msg {
	return watchdogTickMsg{lease: lease}
}
