package session

import (
	"slices"
	"time"
)

type Phase string

const (
	PhaseSetup           Phase = "setup"
	PhaseWaitingForHuman Phase = "playing.waiting_for_human"
	PhaseAIThinking      Phase = "playing.ai_thinking"
	PhaseAnimating       Phase = "playing.animating"
	PhaseFinished        Phase = "finished"
)

// transitions - every phase pair reachable in one step. Same-phase moves are no-ops and not listed.
// The playing phases reach Setup only through Reset, which refuses while autonomous play is active;
// it is the way out of a game an AI or engine failure stopped.
var transitions = map[Phase][]Phase{
	PhaseSetup:           {PhaseWaitingForHuman, PhaseAIThinking},
	PhaseWaitingForHuman: {PhaseAIThinking, PhaseAnimating, PhaseFinished, PhaseSetup},
	PhaseAIThinking:      {PhaseWaitingForHuman, PhaseAnimating, PhaseFinished, PhaseSetup},
	PhaseAnimating:       {PhaseWaitingForHuman, PhaseAIThinking, PhaseFinished, PhaseSetup},
	PhaseFinished:        {PhaseSetup},
}

func CanTransition(from, to Phase) bool {
	return from == to || slices.Contains(transitions[from], to)
}

func (that Phase) IsPlaying() bool {
	switch that {
	case PhaseWaitingForHuman, PhaseAIThinking, PhaseAnimating:
		return true
	default:
		return false
	}
}

// View - the coarse phase shown to the user: setup, playing or finished.
func (that Phase) View() string {
	if that.IsPlaying() {
		return "playing"
	}
	return string(that)
}

// token - write permission for the displayed GameState. Gen moves on every assignment and
// recovery claim, Epoch on every reset. A result issued under another token is discarded.
type token struct {
	Epoch uint64
	Gen   uint64
}

type Timing struct {
	WatchdogInterval       time.Duration
	StallThreshold         time.Duration
	SpectateStallThreshold time.Duration
	FrameDelay             time.Duration
	AIMoveDelay            time.Duration
	ErrorClearAfter        time.Duration
}

func DefaultTiming() Timing {
	return Timing{
		WatchdogInterval:       5 * time.Second,
		StallThreshold:         20 * time.Second,
		SpectateStallThreshold: 15 * time.Second,
		FrameDelay:             150 * time.Millisecond,
		AIMoveDelay:            200 * time.Millisecond,
		ErrorClearAfter:        3 * time.Second,
	}
}
