package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/chainreaction/internal/entity"
)

// cascadeReady - a 3x3 game where red's next orb in the corner explodes.
func cascadeReady(t *testing.T) *harness {
	t.Helper()

	h := newHarness(t, humanVsHuman(3, 3))
	h.start()

	h.click(0, 0)
	h.advance(time.Second)
	h.click(2, 2)
	h.advance(time.Second)

	require.Equal(t, PhaseWaitingForHuman, h.session.Phase())
	require.Equal(t, entity.SideRed, h.session.state.Turn)

	return h
}

func TestAnimator_ShowsEveryFrame(t *testing.T) {
	// Given: red is about to explode the corner
	h := cascadeReady(t)
	delay := h.session.timing.FrameDelay

	// When: red clicks the corner
	h.click(0, 0)

	// Then: the post-placement frame is shown first
	require.Equal(t, PhaseAnimating, h.session.Phase())
	assert.Equal(t, 2, h.session.state.Board[0][0].Orbs)
	assert.Equal(t, h.now, h.session.lastChange)
	assert.Equal(t, 3, h.session.moveCount)

	// Then: the explosion frame follows after one frame delay
	h.advance(delay)
	require.Equal(t, PhaseAnimating, h.session.Phase())
	assert.True(t, h.session.state.Board[0][0].IsEmpty())
	assert.Equal(t, entity.SideRed, h.session.state.Board[0][1].Owner)
	assert.Equal(t, entity.SideRed, h.session.state.Board[1][0].Owner)
	assert.Equal(t, h.now, h.session.lastChange)

	// Then: the settled frame is shown for a full delay too
	h.advance(delay)
	assert.Equal(t, PhaseAnimating, h.session.Phase())
	assert.Equal(t, entity.SideBlue, h.session.state.Turn)

	// Then: control returns to the orchestrator
	h.advance(delay)
	assert.Equal(t, PhaseWaitingForHuman, h.session.Phase())
	assert.Equal(t, 3, h.session.moveCount)
	assert.Equal(t, 3, h.session.state.TotalMoves)
}

func TestAnimator_RecoveryPreemptsCascade(t *testing.T) {
	// Given: a cascade is on its first frame
	h := cascadeReady(t)
	h.click(0, 0)
	require.Equal(t, PhaseAnimating, h.session.Phase())
	shown := h.session.state.Clone()

	// When: a fresh-state recovery is requested
	h.do(h.session.RecoverFresh())

	// Then: the frame on display is kept until the engine answers
	assert.Equal(t, shown, h.session.state)
	assert.Equal(t, PhaseAnimating, h.session.Phase())

	// When: the recovery answers and the old frame timers fire
	h.flush()
	h.advance(time.Second)

	// Then: the recovered state stands and the move is counted once
	settled, err := h.engine.inner.CurrentState(context.Background())
	require.NoError(t, err)
	assert.Equal(t, PhaseWaitingForHuman, h.session.Phase())
	assert.Equal(t, &settled, h.session.state)
	assert.Nil(t, h.session.anim)
	assert.Equal(t, 3, h.session.moveCount)
	assert.Len(t, h.entries("Fresh-state recovery succeeded"), 1)
	assertPhaseWalk(t, h.phases)
}

func TestAnimator_FailedRecoveryResumesCascade(t *testing.T) {
	// Given: a cascade on its first frame and an engine that cannot report its state
	h := cascadeReady(t)
	h.engine.fail["recover_fresh"] = errors.New("engine busy")
	delay := h.session.timing.FrameDelay

	h.click(0, 0)
	shown := h.session.state.Clone()

	// When: a fresh-state recovery is requested and fails
	h.do(h.session.RecoverFresh())
	h.flush()

	// Then: the phase and the frame on display are unchanged
	snap := h.session.Snapshot()
	require.NotNil(t, snap.Error)
	assert.Equal(t, ErrorRecovery, snap.Error.Kind)
	assert.Equal(t, PhaseAnimating, snap.Phase)
	assert.Equal(t, shown, h.session.state)

	// Then: the cascade carries on with the explosion frame
	h.advance(delay)
	assert.Equal(t, PhaseAnimating, h.session.Phase())
	assert.True(t, h.session.state.Board[0][0].IsEmpty())
	assert.Equal(t, entity.SideRed, h.session.state.Board[0][1].Owner)

	// Then: it settles as if nothing happened
	h.advance(2 * delay)
	assert.Equal(t, PhaseWaitingForHuman, h.session.Phase())
	assert.Equal(t, entity.SideBlue, h.session.state.Turn)
	assert.Equal(t, 3, h.session.moveCount)
	assert.Equal(t, 3, h.session.state.TotalMoves)
	assert.Len(t, h.entries("Fresh-state recovery failed: engine busy"), 1)
	assertPhaseWalk(t, h.phases)
}

func TestAnimator_StaleFrame(t *testing.T) {
	// Given: a game waiting for a human
	h := newHarness(t, humanVsHuman(3, 3))
	h.start()
	state := h.session.state.Clone()

	// When: a frame message from an older token arrives
	effects := h.session.Handle(frameMsg{tok: token{Epoch: 0, Gen: 0}, index: 1})

	// Then: it is ignored
	assert.Empty(t, effects)
	assert.Equal(t, state, h.session.state)
	assert.Equal(t, PhaseWaitingForHuman, h.session.Phase())
}
