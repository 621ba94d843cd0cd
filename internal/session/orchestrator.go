package session

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rocketscienceinc/chainreaction/internal/entity"
)

// CanClick - whether a human click on the cell would submit a move.
func (that *Session) CanClick(move entity.Move) bool {
	if !that.active || that.phase != PhaseWaitingForHuman || that.state == nil {
		return false
	}

	if that.movePending || that.recovering != nil {
		return false
	}

	if that.config.Player(that.state.Turn).IsAI() {
		return false
	}

	if !that.state.Board.InBounds(move) {
		return false
	}

	return that.state.Board[move.Row][move.Col].AcceptsOrbFrom(that.state.Turn)
}

// ClickCell - a human move. Clicks that fail CanClick are inert.
func (that *Session) ClickCell(move entity.Move) []Effect {
	if !that.CanClick(move) {
		return nil
	}

	return that.submit(that.state.Turn, move, false)
}

func (that *Session) submit(side entity.Side, move entity.Move, byAI bool) []Effect {
	that.movePending = true
	tok := that.tok

	return []Effect{CallEffect{
		Name: "submit_move",
		Do: func(ctx context.Context, engine Engine) Msg {
			frames, err := engine.SubmitMove(ctx, move)
			return moveResultMsg{tok: tok, side: side, move: move, byAI: byAI, frames: frames, err: err}
		},
	}}
}

// evaluate - decides what follows an accepted GameState.
func (that *Session) evaluate() []Effect {
	if that.state.IsFinished() {
		return that.finish()
	}

	if that.config.Player(that.state.Turn).IsAI() {
		effects := that.transition(PhaseAIThinking)
		return append(effects, that.resumeAutoplay()...)
	}

	return that.transition(PhaseWaitingForHuman)
}

// resumeAutoplay - schedules one AI invocation for the current token. A second request
// while one is pending under the same token is refused.
func (that *Session) resumeAutoplay() []Effect {
	if !that.active || that.phase != PhaseAIThinking {
		return nil
	}

	if that.aiPending != nil && *that.aiPending == that.tok {
		that.logger.Debug("autoplay already pending", "gen", that.tok.Gen)
		return nil
	}

	tok := that.tok
	that.aiPending = &tok

	return []Effect{DelayEffect{After: that.timing.AIMoveDelay, Msg: aiTurnMsg{tok: tok}}}
}

func (that *Session) stale(tok token) bool {
	return tok != that.tok
}

func (that *Session) onAITurn(m aiTurnMsg) []Effect {
	if that.stale(m.tok) || that.aiPending == nil || *that.aiPending != m.tok {
		that.logger.Debug("discarding stale AI turn", "gen", m.tok.Gen)
		return nil
	}

	tok := m.tok

	return []Effect{CallEffect{
		Name: "compute_ai_move",
		Do: func(ctx context.Context, engine Engine) Msg {
			move, err := engine.ComputeAIMove(ctx)
			return aiMoveMsg{tok: tok, move: move, err: err}
		},
	}}
}

func (that *Session) onAIMove(m aiMoveMsg) []Effect {
	if that.stale(m.tok) {
		that.logger.Debug("discarding stale AI move", "gen", m.tok.Gen, "move", m.move)
		return nil
	}

	if m.err != nil {
		return that.failAI(m.err)
	}

	return that.submit(that.state.Turn, m.move, true)
}

// failAI - autonomous play stops for good; only a reset leaves this state.
func (that *Session) failAI(err error) []Effect {
	that.aiPending = nil
	that.movePending = false
	that.active = false

	that.setBanner(ErrorAI, err.Error())
	that.record("AI failed: " + err.Error() + ". Autonomous play stopped.")

	return that.syncWatchdog()
}

func (that *Session) onMoveResult(m moveResultMsg) []Effect {
	if that.stale(m.tok) {
		that.logger.Debug("discarding stale move result", "gen", m.tok.Gen, "move", m.move)
		return nil
	}

	that.movePending = false

	if m.err != nil {
		if m.byAI {
			return that.failAI(m.err)
		}

		seq := that.setBanner(ErrorMove, m.err.Error())
		that.record(fmt.Sprintf("Move at %s rejected: %s", m.move, m.err))

		return []Effect{DelayEffect{After: that.timing.ErrorClearAfter, Msg: clearErrorMsg{seq: seq}}}
	}

	if len(m.frames) == 0 {
		if m.byAI {
			return that.failAI(fmt.Errorf("engine returned no frames for %s", m.move))
		}

		that.setBanner(ErrorMove, "engine returned no frames")
		return nil
	}

	that.aiPending = nil
	that.moveCount++
	that.clearBanner(ErrorMove)

	player := that.config.Player(m.side)
	that.record(fmt.Sprintf("%s (%s) placed an orb at %s", player.Name, player.Kind.Label(), m.move))

	effects := that.transition(PhaseAnimating)

	return append(effects, that.animate(m.frames)...)
}

func (that *Session) finish() []Effect {
	that.aiPending = nil
	that.finishedAt = that.clock()

	effects := that.transition(PhaseFinished)

	that.record(that.summary())

	winner := that.state.Winner

	return append(effects, CelebrateEffect{Winner: winner, Name: that.config.Player(winner).Name})
}

func (that *Session) summary() string {
	state := that.state
	winner := that.config.Player(state.Winner)

	var b strings.Builder
	fmt.Fprintf(&b, "Game over! %s (%s) wins.\n", winner.Name, state.Winner.Label())
	fmt.Fprintf(&b, "Moves: %d\n", that.moveCount)
	fmt.Fprintf(&b, "Elapsed: %s\n", that.finishedAt.Sub(that.startedAt).Round(time.Second))
	fmt.Fprintf(&b, "Orbs: Red %d, Blue %d\n", state.RedOrbs, state.BlueOrbs)
	fmt.Fprintf(&b, "Red: %s\n", that.config.Red.Describe())
	fmt.Fprintf(&b, "Blue: %s", that.config.Blue.Describe())

	return b.String()
}
