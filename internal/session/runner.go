package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/rocketscienceinc/chainreaction/internal/apperror"
	"github.com/rocketscienceinc/chainreaction/internal/entity"
)

const inboxSize = 64

// Runner - drives a Session from a single goroutine and executes the effects it returns.
// Engine calls run on their own goroutines and post their results back through the inbox.
type Runner struct {
	logger  *slog.Logger
	engine  Engine
	session *Session

	inbox chan func()
	done  chan struct{}

	// loop goroutine only
	ctx       context.Context
	watchdogs map[uint64]context.CancelFunc

	mu          sync.RWMutex
	snapshot    Snapshot
	subscribers map[int]chan Snapshot
	nextSub     int
	onCelebrate func(CelebrateEffect)
}

func NewRunner(logger *slog.Logger, engine Engine, session *Session) *Runner {
	return &Runner{
		logger:      logger.With("component", "runner"),
		engine:      engine,
		session:     session,
		inbox:       make(chan func(), inboxSize),
		done:        make(chan struct{}),
		watchdogs:   make(map[uint64]context.CancelFunc),
		snapshot:    session.Snapshot(),
		subscribers: make(map[int]chan Snapshot),
	}
}

// Run - processes actions and results until ctx is cancelled.
func (that *Runner) Run(ctx context.Context) error {
	log := that.logger.With("method", "Run")

	that.ctx = ctx

	defer close(that.done)
	defer that.stopWatchdogs()

	log.Info("session runner started")

	for {
		select {
		case <-ctx.Done():
			log.Info("session runner stopped")
			return nil
		case fn := <-that.inbox:
			fn()
			that.publish()
		}
	}
}

// Done - closed once Run has returned.
func (that *Runner) Done() <-chan struct{} {
	return that.done
}

func (that *Runner) Start() {
	that.dispatch(func(s *Session) []Effect { return s.Start() })
}

func (that *Runner) ClickCell(move entity.Move) {
	that.dispatch(func(s *Session) []Effect { return s.ClickCell(move) })
}

func (that *Runner) RecoverFresh() {
	that.dispatch(func(s *Session) []Effect { return s.RecoverFresh() })
}

func (that *Runner) RecoverFromLog() {
	that.dispatch(func(s *Session) []Effect { return s.RecoverFromLog() })
}

func (that *Runner) Shortcut(key string) {
	that.dispatch(func(s *Session) []Effect { return s.Shortcut(key) })
}

func (that *Runner) Reset() {
	that.dispatch(func(s *Session) []Effect { return s.Reset() })
}

// Setup - runs a configuration edit on the loop goroutine and waits for its result.
func (that *Runner) Setup(edit func(s *Session) error) error {
	reply := make(chan error, 1)

	if !that.post(func() { reply <- edit(that.session) }) {
		return apperror.ErrRunnerStopped
	}

	select {
	case err := <-reply:
		return err
	case <-that.done:
		return apperror.ErrRunnerStopped
	}
}

func (that *Runner) Snapshot() Snapshot {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return that.snapshot
}

// Subscribe - the channel always holds the latest snapshot only; slow readers skip intermediate ones.
func (that *Runner) Subscribe() (<-chan Snapshot, func()) {
	that.mu.Lock()
	defer that.mu.Unlock()

	id := that.nextSub
	that.nextSub++

	ch := make(chan Snapshot, 1)
	ch <- that.snapshot
	that.subscribers[id] = ch

	return ch, func() {
		that.mu.Lock()
		defer that.mu.Unlock()

		if sub, ok := that.subscribers[id]; ok {
			delete(that.subscribers, id)
			close(sub)
		}
	}
}

func (that *Runner) OnCelebrate(fn func(CelebrateEffect)) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.onCelebrate = fn
}

func (that *Runner) dispatch(action func(s *Session) []Effect) {
	that.post(func() { that.apply(action(that.session)) })
}

func (that *Runner) deliver(msg Msg) {
	that.post(func() { that.apply(that.session.Handle(msg)) })
}

func (that *Runner) post(fn func()) bool {
	select {
	case that.inbox <- fn:
		return true
	case <-that.done:
		return false
	}
}

func (that *Runner) apply(effects []Effect) {
	log := that.logger.With("method", "apply")

	for _, effect := range effects {
		switch e := effect.(type) {
		case CallEffect:
			go that.call(that.ctx, e)
		case DelayEffect:
			msg := e.Msg
			time.AfterFunc(e.After, func() { that.deliver(msg) })
		case ArmWatchdogEffect:
			that.armWatchdog(e)
		case DisarmWatchdogEffect:
			that.disarmWatchdog(e.Lease)
		case CelebrateEffect:
			that.mu.RLock()
			fn := that.onCelebrate
			that.mu.RUnlock()

			if fn != nil {
				go fn(e)
			}
		default:
			log.Warn("unknown effect", "effect", effect)
		}
	}
}

func (that *Runner) call(ctx context.Context, e CallEffect) {
	log := that.logger.With("method", "call", "call", e.Name)

	started := time.Now()
	msg := e.Do(ctx, that.engine)

	log.Debug("engine call finished", "duration", time.Since(started))

	that.deliver(msg)
}

func (that *Runner) armWatchdog(e ArmWatchdogEffect) {
	ctx, cancel := context.WithCancel(that.ctx)
	that.watchdogs[e.Lease] = cancel

	that.logger.Debug("watchdog armed", "lease", e.Lease, "interval", e.Interval)

	go func() {
		ticker := time.NewTicker(e.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				that.deliver(WatchdogTick(e.Lease))
			}
		}
	}()
}

func (that *Runner) disarmWatchdog(lease uint64) {
	if cancel, ok := that.watchdogs[lease]; ok {
		cancel()
		delete(that.watchdogs, lease)
		that.logger.Debug("watchdog disarmed", "lease", lease)
	}
}

func (that *Runner) stopWatchdogs() {
	for lease := range that.watchdogs {
		that.disarmWatchdog(lease)
	}
}

func (that *Runner) publish() {
	snap := that.session.Snapshot()

	that.mu.Lock()
	defer that.mu.Unlock()

	that.snapshot = snap

	for _, ch := range that.subscribers {
		select {
		case <-ch:
		default:
		}
		ch <- snap
	}
}
