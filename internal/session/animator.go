package session

import (
	"github.com/rocketscienceinc/chainreaction/internal/entity"
)

// animate - shows each cascade frame for FrameDelay, then hands back to evaluate.
// Every frame is an assignment, so a recovery issued mid-cascade pauses the remaining frames.
func (that *Session) animate(frames []entity.GameState) []Effect {
	that.anim = frames
	return that.showFrame(0)
}

func (that *Session) showFrame(index int) []Effect {
	if index >= len(that.anim) {
		that.anim, that.animNext = nil, 0
		return that.evaluate()
	}

	that.assign(that.anim[index])
	that.animNext = index + 1

	return []Effect{DelayEffect{After: that.timing.FrameDelay, Msg: frameMsg{tok: that.tok, index: index + 1}}}
}

func (that *Session) onFrame(m frameMsg) []Effect {
	if that.stale(m.tok) || that.anim == nil {
		that.logger.Debug("discarding stale cascade frame", "gen", m.tok.Gen, "index", m.index)
		return nil
	}

	return that.showFrame(m.index)
}

// resumeAnimation - continues a paused cascade from the next unshown frame under the current token.
func (that *Session) resumeAnimation() []Effect {
	if that.anim == nil {
		return nil
	}

	return []Effect{DelayEffect{After: that.timing.FrameDelay, Msg: frameMsg{tok: that.tok, index: that.animNext}}}
}
