package session

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/chainreaction/internal/entity"
)

func TestWatchdog_Thresholds(t *testing.T) {
	t.Run("Twenty seconds with a human in the game", func(t *testing.T) {
		// Given: a human game nobody plays
		h := newHarness(t, humanVsHuman(3, 3))
		h.start()

		// Then: nothing happens before twenty seconds
		h.advance(19 * time.Second)
		assert.Empty(t, h.entries("Watchdog:"))

		// Then: the twenty second check recovers
		h.advance(time.Second)
		assert.Len(t, h.entries("Watchdog: no state change for 20s"), 1)
		assert.Equal(t, 1, h.issued["recover_fresh"])

		// Then: the adopted state restarts the clock
		h.advance(19 * time.Second)
		assert.Len(t, h.entries("Watchdog:"), 1)
	})

	t.Run("Fifteen seconds in spectation", func(t *testing.T) {
		// Given: an AI-vs-AI game whose first AI call never answers
		h := newHarness(t, aiVsAI(3, 3))
		h.stallAt["compute_ai_move"] = 1
		h.start()

		h.advance(14 * time.Second)
		assert.Empty(t, h.entries("Watchdog:"))

		// When: the fifteen second check runs
		h.advance(time.Second)

		// Then: it recovers and autoplay resumes
		assert.Len(t, h.entries("Watchdog: no state change for 15s"), 1)

		h.advance(h.session.timing.AIMoveDelay)
		assert.Equal(t, 2, h.issued["compute_ai_move"])
	})
}

func TestWatchdog_RetriesUnansweredRecovery(t *testing.T) {
	// Given: a human game whose first fresh-state request never answers
	h := newHarness(t, humanVsHuman(3, 3))
	h.stallAt["recover_fresh"] = 1
	h.start()

	h.advance(20 * time.Second)
	require.Equal(t, 1, h.issued["recover_fresh"])
	require.NotNil(t, h.session.recovering)
	unanswered := *h.session.recovering

	// Then: the claim is held for less than a threshold
	h.advance(15 * time.Second)
	assert.Equal(t, 1, h.issued["recover_fresh"])
	assert.Empty(t, h.entries("Watchdog: recovery unanswered"))

	// When: a full threshold passes without an answer
	h.advance(5 * time.Second)

	// Then: the watchdog releases the claim and asks again
	assert.Len(t, h.entries("Watchdog: recovery unanswered for 20s, retrying"), 1)
	assert.Equal(t, 2, h.issued["recover_fresh"])
	assert.Nil(t, h.session.recovering)
	assert.Len(t, h.entries("Fresh-state recovery succeeded"), 1)

	// When: the first request answers late
	effects := h.session.Handle(recoveredMsg{tok: unanswered, kind: RecoveryFresh})

	// Then: it is dropped
	assert.Empty(t, effects)
	assert.Len(t, h.entries("Fresh-state recovery succeeded"), 1)
	assert.Equal(t, PhaseWaitingForHuman, h.session.Phase())
}

func TestWatchdog_IgnoresReleasedLease(t *testing.T) {
	h := newHarness(t, humanVsHuman(3, 3))
	h.start()
	h.advance(time.Minute)

	// When: a tick for a lease that was never handed out arrives
	effects := h.session.Handle(WatchdogTick(h.session.lease + 100))

	// Then: it does nothing
	assert.Empty(t, effects)
	assert.Nil(t, h.session.recovering)
}

func TestRecovery_Idempotent(t *testing.T) {
	// Given: a game with a few moves played
	h := cascadeReady(t)

	t.Run("Fresh twice yields the same state", func(t *testing.T) {
		h.do(h.session.RecoverFresh())
		h.flush()
		first := h.session.state.Clone()

		h.do(h.session.RecoverFresh())
		h.flush()

		assert.Equal(t, first, h.session.state)
		assert.Equal(t, PhaseWaitingForHuman, h.session.Phase())
		assert.Equal(t, 2, h.session.moveCount)
	})

	t.Run("Log then fresh yields the same state", func(t *testing.T) {
		h.do(h.session.RecoverFromLog())
		h.flush()
		fromLog := h.session.state.Clone()

		h.do(h.session.RecoverFresh())
		h.flush()

		assert.Equal(t, fromLog, h.session.state)
		assert.Len(t, h.entries("Log recovery succeeded"), 1)
	})
}

func TestRecovery_InFlight(t *testing.T) {
	// Given: a slow fresh-state recovery
	h := newHarness(t, humanVsHuman(3, 3))
	h.latency["recover_fresh"] = time.Second
	h.start()

	h.do(h.session.RecoverFresh())
	require.True(t, h.session.Snapshot().Recovering)

	// Then: a second request of either kind is refused
	assert.Empty(t, h.session.RecoverFresh())
	assert.Empty(t, h.session.RecoverFromLog())

	// Then: clicks wait for it
	assert.False(t, h.session.CanClick(entity.Move{Row: 0, Col: 0}))

	h.advance(time.Second)
	assert.False(t, h.session.Snapshot().Recovering)
	assert.True(t, h.session.CanClick(entity.Move{Row: 0, Col: 0}))
	assert.Equal(t, 1, h.engine.calls["recover_fresh"])
}

func TestRecovery_Failure(t *testing.T) {
	// Given: a game whose move log is unreadable
	h := cascadeReady(t)
	h.engine.fail["recover_log"] = errors.New("log corrupt")
	state := h.session.state.Clone()

	// When: log recovery is requested
	h.do(h.session.RecoverFromLog())
	h.flush()

	// Then: the error is shown and nothing else changes
	snap := h.session.Snapshot()
	require.NotNil(t, snap.Error)
	assert.Equal(t, ErrorRecovery, snap.Error.Kind)
	assert.Equal(t, "log corrupt", snap.Error.Message)
	assert.Equal(t, PhaseWaitingForHuman, snap.Phase)
	assert.Equal(t, state, snap.State)
	assert.Len(t, h.entries("Log recovery failed: log corrupt"), 1)

	// Then: it persists
	h.advance(10 * time.Second)
	assert.NotNil(t, h.session.Snapshot().Error)

	// When: a fresh-state recovery succeeds
	h.do(h.session.RecoverFresh())
	h.flush()

	// Then: the error is cleared
	assert.Nil(t, h.session.Snapshot().Error)
}

func TestRecovery_WhileInactive(t *testing.T) {
	// Given: an AI-vs-AI game stopped by an AI failure
	h := newHarness(t, aiVsAI(3, 3))
	h.engine.fail["compute_ai_move"] = errors.New("search exploded")
	h.start()
	h.advance(time.Second)
	require.False(t, h.session.Snapshot().Active)

	// When: the user recovers the state
	delete(h.engine.fail, "compute_ai_move")
	h.do(h.session.RecoverFresh())
	h.advance(time.Minute)

	// Then: the state is adopted, but play stays stopped
	snap := h.session.Snapshot()
	assert.Equal(t, PhaseAIThinking, snap.Phase)
	assert.False(t, snap.Active)
	assert.False(t, snap.WatchdogArmed)
	assert.Equal(t, 1, h.engine.calls["compute_ai_move"])
	require.NotNil(t, snap.Error)
	assert.Equal(t, ErrorAI, snap.Error.Kind)

	t.Run("A recovery answering after a reset is dropped", func(t *testing.T) {
		h.latency["recover_fresh"] = time.Second
		h.do(h.session.RecoverFresh())
		h.do(h.session.Reset())

		h.advance(time.Second)

		assert.Equal(t, PhaseSetup, h.session.Phase())
		assert.Nil(t, h.session.state)
		assert.Nil(t, h.session.recovering)
	})
}

func TestShortcut(t *testing.T) {
	t.Run("Inert outside spectation", func(t *testing.T) {
		h := newHarness(t, humanVsHuman(3, 3))
		h.start()

		assert.Empty(t, h.session.Shortcut(ShortcutFresh))
		assert.Empty(t, h.session.Shortcut(ShortcutLog))
	})

	t.Run("Inert during setup", func(t *testing.T) {
		h := newHarness(t, aiVsAI(3, 3))

		assert.Empty(t, h.session.Shortcut(ShortcutFresh))
	})

	t.Run("Unknown keys are inert", func(t *testing.T) {
		h := newHarness(t, aiVsAI(3, 3))
		h.start()

		assert.Empty(t, h.session.Shortcut("x"))
	})

	t.Run("Recovers while spectating", func(t *testing.T) {
		h := newHarness(t, aiVsAI(3, 3))
		h.start()

		h.do(h.session.Shortcut(ShortcutLog))
		h.flush()

		assert.Equal(t, 1, h.engine.calls["recover_log"])
		assert.Len(t, h.entries("Log recovery succeeded"), 1)

		h.do(h.session.Shortcut(ShortcutFresh))
		h.flush()

		assert.Equal(t, 1, h.engine.calls["recover_fresh"])
	})
}
