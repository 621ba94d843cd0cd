package session

import (
	"context"
	"fmt"
	"time"

	"github.com/rocketscienceinc/chainreaction/internal/entity"
)

type RecoveryKind string

const (
	RecoveryFresh RecoveryKind = "fresh"
	RecoveryLog   RecoveryKind = "log"
)

func (that RecoveryKind) Label() string {
	if that == RecoveryLog {
		return "Log recovery"
	}
	return "Fresh-state recovery"
}

const (
	ShortcutFresh = "f"
	ShortcutLog   = "l"
)

// syncWatchdog - holds a lease exactly while playing and active. Called from transition and
// whenever the active flag changes.
func (that *Session) syncWatchdog() []Effect {
	want := that.phase.IsPlaying() && that.active

	switch {
	case want && that.lease == 0:
		that.nextLease++
		that.lease = that.nextLease
		return []Effect{ArmWatchdogEffect{Lease: that.lease, Interval: that.timing.WatchdogInterval}}
	case !want && that.lease != 0:
		lease := that.lease
		that.lease = 0
		return []Effect{DisarmWatchdogEffect{Lease: lease}}
	default:
		return nil
	}
}

func (that *Session) stallThreshold() time.Duration {
	if that.config.IsSpectation() {
		return that.timing.SpectateStallThreshold
	}
	return that.timing.StallThreshold
}

func (that *Session) onWatchdogTick(m watchdogTickMsg) []Effect {
	if m.lease == 0 || m.lease != that.lease {
		return nil
	}

	if that.recovering != nil {
		waited := that.clock().Sub(that.recoveringSince)
		if waited < that.stallThreshold() {
			return nil
		}

		that.logger.Warn("recovery did not answer, retrying", "waited", waited, "gen", that.recovering.Gen)

		that.recovering = nil
		that.record(fmt.Sprintf("Watchdog: recovery unanswered for %s, retrying", waited.Round(time.Second)))

		return that.recover(RecoveryFresh, "Requesting fresh state from engine")
	}

	elapsed := that.clock().Sub(that.lastChange)
	if elapsed < that.stallThreshold() {
		return nil
	}

	that.logger.Warn("no state change, recovering", "elapsed", elapsed, "threshold", that.stallThreshold(), "phase", that.phase)

	return that.recover(RecoveryFresh, fmt.Sprintf("Watchdog: no state change for %s, requesting fresh state", elapsed.Round(time.Second)))
}

func (that *Session) RecoverFresh() []Effect {
	return that.recover(RecoveryFresh, "Requesting fresh state from engine")
}

func (that *Session) RecoverFromLog() []Effect {
	return that.recover(RecoveryLog, "Requesting state rebuilt from move log")
}

// Shortcut - recovery keys, live only while playing an AI-vs-AI game.
func (that *Session) Shortcut(key string) []Effect {
	if !that.phase.IsPlaying() || !that.config.IsSpectation() {
		return nil
	}

	switch key {
	case ShortcutFresh:
		return that.RecoverFresh()
	case ShortcutLog:
		return that.RecoverFromLog()
	default:
		return nil
	}
}

// recover - claims the writer slot: every pending move, AI or frame result becomes stale and a
// running cascade pauses on the frame it shows. An unanswered claim is released by the watchdog.
func (that *Session) recover(kind RecoveryKind, trigger string) []Effect {
	if !that.phase.IsPlaying() || that.recovering != nil {
		return nil
	}

	that.tok.Gen++
	that.aiPending = nil
	that.movePending = false

	tok := that.tok
	that.recovering = &tok
	that.recoveringSince = that.clock()

	that.record(trigger)

	return []Effect{CallEffect{
		Name: "recover_" + string(kind),
		Do: func(ctx context.Context, engine Engine) Msg {
			var (
				state entity.GameState
				err   error
			)

			if kind == RecoveryLog {
				state, err = engine.RecoverFromLog(ctx)
			} else {
				state, err = engine.CurrentState(ctx)
			}

			return recoveredMsg{tok: tok, kind: kind, state: state, err: err}
		},
	}}
}

func (that *Session) onRecovered(m recoveredMsg) []Effect {
	if that.recovering == nil || *that.recovering != m.tok {
		that.logger.Debug("discarding stale recovery", "kind", m.kind, "gen", m.tok.Gen)
		return nil
	}

	that.recovering = nil

	if that.stale(m.tok) {
		that.logger.Debug("discarding stale recovery", "kind", m.kind, "gen", m.tok.Gen)
		return nil
	}

	if m.err == nil && !m.state.Fits(that.config) {
		m.err = fmt.Errorf("engine returned a %dx%d board for a %dx%d game",
			m.state.Board.Width(), m.state.Board.Height(), that.config.Width, that.config.Height)
	}

	if m.err != nil {
		that.setBanner(ErrorRecovery, m.err.Error())
		that.record(fmt.Sprintf("%s failed: %s", m.kind.Label(), m.err))

		if that.anim != nil {
			return that.resumeAnimation()
		}

		return that.evaluate()
	}

	that.anim, that.animNext = nil, 0
	that.assign(m.state)
	that.clearBanner(ErrorRecovery)
	that.record(fmt.Sprintf("%s succeeded: Red %d orbs, Blue %d orbs, %s to move",
		m.kind.Label(), m.state.RedOrbs, m.state.BlueOrbs, m.state.Turn.Label()))

	return that.evaluate()
}
