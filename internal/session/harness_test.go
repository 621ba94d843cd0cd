package session

import (
	"context"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/chainreaction/internal/entity"
	"github.com/rocketscienceinc/chainreaction/internal/repository"
	"github.com/rocketscienceinc/chainreaction/internal/service"
	"github.com/rocketscienceinc/chainreaction/testing/suite"
)

// scriptedEngine - the real in-process engine with injectable failures, keyed by effect name.
type scriptedEngine struct {
	inner service.GamePlayService
	fail  map[string]error
	calls map[string]int
}

func (that *scriptedEngine) hit(name string) error {
	that.calls[name]++
	return that.fail[name]
}

func (that *scriptedEngine) StartSession(ctx context.Context, cfg entity.GameConfig) (entity.GameState, error) {
	if err := that.hit("start_session"); err != nil {
		return entity.GameState{}, err
	}
	return that.inner.StartSession(ctx, cfg)
}

func (that *scriptedEngine) SubmitMove(ctx context.Context, move entity.Move) ([]entity.GameState, error) {
	if err := that.hit("submit_move"); err != nil {
		return nil, err
	}
	return that.inner.SubmitMove(ctx, move)
}

func (that *scriptedEngine) ComputeAIMove(ctx context.Context) (entity.Move, error) {
	if err := that.hit("compute_ai_move"); err != nil {
		return entity.Move{}, err
	}
	return that.inner.ComputeAIMove(ctx)
}

func (that *scriptedEngine) CurrentState(ctx context.Context) (entity.GameState, error) {
	if err := that.hit("recover_fresh"); err != nil {
		return entity.GameState{}, err
	}
	return that.inner.CurrentState(ctx)
}

func (that *scriptedEngine) RecoverFromLog(ctx context.Context) (entity.GameState, error) {
	if err := that.hit("recover_log"); err != nil {
		return entity.GameState{}, err
	}
	return that.inner.RecoverFromLog(ctx)
}

type scheduled struct {
	at  time.Time
	seq int
	msg Msg
}

type stall struct {
	name       string
	lastChange time.Time
}

// harness - runs a Session in virtual time. Engine calls execute when issued and their
// results are delivered after the configured latency; a stalled call never answers.
type harness struct {
	t       *testing.T
	now     time.Time
	session *Session
	engine  *scriptedEngine

	latency map[string]time.Duration
	stallAt map[string]int
	issued  map[string]int
	stalls  []stall

	queue []scheduled
	seq   int

	armed        map[uint64]time.Duration
	celebrations []CelebrateEffect
	phases       []Phase
}

func newHarness(t *testing.T, cfg entity.GameConfig) *harness {
	t.Helper()

	logger := suite.NewLogger()

	h := &harness{
		t:   t,
		now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		engine: &scriptedEngine{
			inner: service.NewGamePlayService(logger,
				service.NewGameService(repository.NewMemoryMoveLog()),
				service.NewSeededBotService(logger, 7)),
			fail:  make(map[string]error),
			calls: make(map[string]int),
		},
		latency: make(map[string]time.Duration),
		stallAt: make(map[string]int),
		issued:  make(map[string]int),
		armed:   make(map[uint64]time.Duration),
		phases:  []Phase{PhaseSetup},
	}

	h.session = New(logger, cfg, DefaultTiming(), func() time.Time { return h.now })

	return h
}

func (h *harness) do(effects []Effect) {
	h.t.Helper()

	for _, effect := range effects {
		switch e := effect.(type) {
		case CallEffect:
			h.issued[e.Name]++
			if h.stallAt[e.Name] == h.issued[e.Name] {
				h.stalls = append(h.stalls, stall{name: e.Name, lastChange: h.session.lastChange})
				continue
			}
			h.schedule(h.latency[e.Name], e.Do(context.Background(), h.engine))
		case DelayEffect:
			h.schedule(e.After, e.Msg)
		case ArmWatchdogEffect:
			h.armed[e.Lease] = e.Interval
			h.schedule(e.Interval, WatchdogTick(e.Lease))
		case DisarmWatchdogEffect:
			require.Contains(h.t, h.armed, e.Lease)
			delete(h.armed, e.Lease)
		case CelebrateEffect:
			h.celebrations = append(h.celebrations, e)
		}
	}

	h.check()
}

// check - invariants that must hold at every observable instant.
func (h *harness) check() {
	h.t.Helper()

	s := h.session

	require.Equal(h.t, s.phase.IsPlaying() && s.active, s.lease != 0,
		"watchdog lease in phase %s, active %v", s.phase, s.active)

	if s.lease != 0 {
		require.Len(h.t, h.armed, 1)
		require.Contains(h.t, h.armed, s.lease)
	} else {
		require.Empty(h.t, h.armed)
	}

	if h.phases[len(h.phases)-1] != s.phase {
		h.phases = append(h.phases, s.phase)
	}
}

func (h *harness) schedule(after time.Duration, msg Msg) {
	h.seq++
	h.queue = append(h.queue, scheduled{at: h.now.Add(after), seq: h.seq, msg: msg})
}

func (h *harness) next(limit time.Time) (scheduled, bool) {
	if len(h.queue) == 0 {
		return scheduled{}, false
	}

	idx := 0
	for i, item := range h.queue {
		first := h.queue[idx]
		if item.at.Before(first.at) || (item.at.Equal(first.at) && item.seq < first.seq) {
			idx = i
		}
	}

	item := h.queue[idx]
	if item.at.After(limit) {
		return scheduled{}, false
	}

	h.queue = slices.Delete(h.queue, idx, idx+1)

	return item, true
}

func (h *harness) deliver(item scheduled) {
	h.t.Helper()

	h.now = item.at

	if tick, ok := item.msg.(watchdogTickMsg); ok {
		interval, armed := h.armed[tick.lease]
		if !armed {
			return
		}
		h.schedule(interval, tick)
	}

	h.do(h.session.Handle(item.msg))
}

// advance - delivers everything due within d, then moves the clock to now+d.
func (h *harness) advance(d time.Duration) {
	h.t.Helper()

	limit := h.now.Add(d)

	for {
		item, ok := h.next(limit)
		if !ok {
			break
		}
		h.deliver(item)
	}

	h.now = limit
}

func (h *harness) flush() {
	h.t.Helper()
	h.advance(0)
}

func (h *harness) runUntil(done func() bool, limit time.Duration) bool {
	h.t.Helper()

	deadline := h.now.Add(limit)

	for !done() {
		item, ok := h.next(deadline)
		if !ok {
			h.now = deadline
			return done()
		}
		h.deliver(item)
	}

	return true
}

func (h *harness) start() {
	h.t.Helper()

	h.do(h.session.Start())
	h.flush()

	require.True(h.t, h.session.Phase().IsPlaying(), "phase %s", h.session.Phase())
}

func (h *harness) click(row, col int) {
	h.t.Helper()

	h.do(h.session.ClickCell(entity.Move{Row: row, Col: col}))
	h.flush()
}

func (h *harness) entries(prefix string) []entity.LogEntry {
	var out []entity.LogEntry

	for _, entry := range h.session.journal.Entries() {
		if strings.HasPrefix(entry.Message, prefix) {
			out = append(out, entry)
		}
	}

	return out
}

func humanVsHuman(width, height int) entity.GameConfig {
	cfg := entity.DefaultGameConfig()
	cfg.Width, cfg.Height = width, height
	cfg.Blue.SetKind(entity.KindHuman)

	return cfg
}

func aiVsAI(width, height int) entity.GameConfig {
	cfg := entity.DefaultGameConfig()
	cfg.Width, cfg.Height = width, height
	cfg.Red.Name, cfg.Blue.Name = "Ruby", "Sapphire"
	cfg.Red.SetKind(entity.KindAI)
	cfg.Red.AI.Strategy = entity.StrategyRandom
	cfg.Blue.AI.Strategy = entity.StrategyRandom

	return cfg
}
