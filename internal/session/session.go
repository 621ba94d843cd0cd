package session

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rocketscienceinc/chainreaction/internal/entity"
)

type ErrorKind string

const (
	ErrorSetup    ErrorKind = "setup"
	ErrorMove     ErrorKind = "move"
	ErrorAI       ErrorKind = "ai"
	ErrorRecovery ErrorKind = "recovery"
)

type Banner struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

// Snapshot - an immutable copy of everything a front-end may show.
type Snapshot struct {
	Phase         Phase             `json:"phase"`
	Active        bool              `json:"active"`
	Starting      bool              `json:"starting"`
	Recovering    bool              `json:"recovering"`
	Config        entity.GameConfig `json:"config"`
	State         *entity.GameState `json:"state,omitempty"`
	MoveCount     int               `json:"move_count"`
	StartedAt     time.Time         `json:"started_at"`
	LastChange    time.Time         `json:"last_change"`
	Elapsed       time.Duration     `json:"elapsed"`
	WatchdogArmed bool              `json:"watchdog_armed"`
	Error         *Banner           `json:"error,omitempty"`
	Log           []entity.LogEntry `json:"log"`
}

// Session - the session model and turn orchestrator. It is a single-writer state machine:
// every method must be called from one goroutine, and none of them block.
// Blocking work is returned as Effects for a runtime such as Runner to execute.
type Session struct {
	logger *slog.Logger
	timing Timing
	clock  func() time.Time

	config entity.GameConfig
	phase  Phase
	active bool
	state  *entity.GameState

	moveCount  int
	startedAt  time.Time
	finishedAt time.Time
	lastChange time.Time

	tok             token
	starting        bool
	aiPending       *token
	movePending     bool
	recovering      *token
	recoveringSince time.Time
	anim            []entity.GameState
	animNext        int

	lease     uint64
	nextLease uint64

	banner *Banner
	errSeq int

	journal Journal
}

func New(logger *slog.Logger, cfg entity.GameConfig, timing Timing, clock func() time.Time) *Session {
	if clock == nil {
		clock = time.Now
	}

	return &Session{
		logger: logger.With("component", "session"),
		timing: timing,
		clock:  clock,
		config: cfg.Clone(),
		phase:  PhaseSetup,
	}
}

func (that *Session) Phase() Phase {
	return that.phase
}

func (that *Session) Snapshot() Snapshot {
	snap := Snapshot{
		Phase:         that.phase,
		Active:        that.active,
		Starting:      that.starting,
		Recovering:    that.recovering != nil,
		Config:        that.config.Clone(),
		State:         that.state.Clone(),
		MoveCount:     that.moveCount,
		StartedAt:     that.startedAt,
		LastChange:    that.lastChange,
		WatchdogArmed: that.lease != 0,
		Log:           that.journal.Entries(),
	}

	if that.banner != nil {
		banner := *that.banner
		snap.Error = &banner
	}

	switch {
	case that.phase == PhaseFinished:
		snap.Elapsed = that.finishedAt.Sub(that.startedAt)
	case that.phase.IsPlaying():
		snap.Elapsed = that.clock().Sub(that.startedAt)
	}

	return snap
}

// Start - asks the engine to start a game with the current configuration.
func (that *Session) Start() []Effect {
	if that.phase != PhaseSetup || that.starting {
		return nil
	}

	that.starting = true
	that.clearBanner(ErrorSetup)

	cfg := that.config.Clone()
	epoch := that.tok.Epoch

	that.logger.Debug("starting game", "config", cfg.Red.Describe()+" vs "+cfg.Blue.Describe())

	return []Effect{CallEffect{
		Name: "start_session",
		Do: func(ctx context.Context, engine Engine) Msg {
			state, err := engine.StartSession(ctx, cfg)
			return startedMsg{epoch: epoch, state: state, err: err}
		},
	}}
}

// Reset - back to setup. Allowed once finished, or while playing after autonomous play stopped.
func (that *Session) Reset() []Effect {
	if that.phase != PhaseFinished && (!that.phase.IsPlaying() || that.active) {
		return nil
	}

	that.tok = token{Epoch: that.tok.Epoch + 1}
	that.state = nil
	that.active = false
	that.moveCount = 0
	that.startedAt, that.finishedAt, that.lastChange = time.Time{}, time.Time{}, time.Time{}
	that.aiPending, that.recovering, that.movePending = nil, nil, false
	that.anim, that.animNext = nil, 0
	that.banner = nil

	effects := that.transition(PhaseSetup)
	that.record("Session reset")

	return effects
}

// Handle - feeds a result back into the state machine.
func (that *Session) Handle(msg Msg) []Effect {
	switch m := msg.(type) {
	case startedMsg:
		return that.onStarted(m)
	case aiTurnMsg:
		return that.onAITurn(m)
	case aiMoveMsg:
		return that.onAIMove(m)
	case moveResultMsg:
		return that.onMoveResult(m)
	case frameMsg:
		return that.onFrame(m)
	case clearErrorMsg:
		if that.banner != nil && that.banner.Kind == ErrorMove && that.errSeq == m.seq {
			that.banner = nil
		}
		return nil
	case watchdogTickMsg:
		return that.onWatchdogTick(m)
	case recoveredMsg:
		return that.onRecovered(m)
	default:
		that.logger.Warn("unknown message", "type", fmt.Sprintf("%T", msg))
		return nil
	}
}

func (that *Session) onStarted(m startedMsg) []Effect {
	log := that.logger.With("method", "onStarted")

	if m.epoch != that.tok.Epoch || that.phase != PhaseSetup {
		log.Debug("discarding stale start result")
		return nil
	}

	that.starting = false

	if m.err != nil {
		that.setBanner(ErrorSetup, m.err.Error())
		that.record("Failed to start game: " + m.err.Error())
		return nil
	}

	if !m.state.Fits(that.config) {
		msg := fmt.Sprintf("engine returned a %dx%d board for a %dx%d game",
			m.state.Board.Width(), m.state.Board.Height(), that.config.Width, that.config.Height)
		that.setBanner(ErrorSetup, msg)
		that.record("Failed to start game: " + msg)
		return nil
	}

	that.active = true
	that.moveCount = 0
	that.startedAt = that.clock()
	that.finishedAt = time.Time{}
	that.assign(m.state)

	that.record(fmt.Sprintf("Game started: %dx%d board, %s vs %s",
		that.config.Width, that.config.Height, that.config.Red.Describe(), that.config.Blue.Describe()))

	return that.evaluate()
}

// assign - the only place the displayed GameState changes.
func (that *Session) assign(state entity.GameState) {
	that.state = state.Clone()
	that.lastChange = that.clock()
	that.tok.Gen++
}

// transition - the only place the phase changes. The watchdog lease follows the phase.
func (that *Session) transition(to Phase) []Effect {
	if !CanTransition(that.phase, to) {
		that.logger.Error("illegal phase transition", "from", that.phase, "to", to)
		return nil
	}

	if that.phase != to {
		that.logger.Debug("phase transition", "from", that.phase, "to", to)
	}

	that.phase = to

	return that.syncWatchdog()
}

func (that *Session) record(message string) entity.LogEntry {
	entry := that.journal.Append(that.clock(), message)
	that.logger.Debug("session log", "seq", entry.Seq, "message", message)

	return entry
}

func (that *Session) setBanner(kind ErrorKind, message string) int {
	that.errSeq++
	that.banner = &Banner{Kind: kind, Message: message}

	return that.errSeq
}

func (that *Session) clearBanner(kind ErrorKind) {
	if that.banner != nil && that.banner.Kind == kind {
		that.banner = nil
	}
}
