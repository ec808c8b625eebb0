// Package flow holds the night flow state machine. It decides which phase
// the night is in and which events are allowed to move it; it performs no
// I/O and owns no game state beyond the step cursor.
package flow

import "go.uber.org/zap"

// Phase is one audio-gated sub-phase of the night.
type Phase string

const (
	PhaseIdle             Phase = "idle"
	PhaseNightBeginAudio  Phase = "nightBeginAudio"
	PhaseRoleBeginAudio   Phase = "roleBeginAudio"
	PhaseWaitingForAction Phase = "waitingForAction"
	PhaseRoleEndAudio     Phase = "roleEndAudio"
	PhaseNightEndAudio    Phase = "nightEndAudio"
	PhaseDone             Phase = "done"
)

// Event drives the controller.
type Event string

const (
	EvStartNight          Event = "startNight"
	EvNightBeginAudioDone Event = "nightBeginAudioDone"
	EvRoleBeginAudioDone  Event = "roleBeginAudioDone"
	EvActionSubmitted     Event = "actionSubmitted"
	EvRoleEndAudioDone    Event = "roleEndAudioDone"
	EvNightEndAudioDone   Event = "nightEndAudioDone"
	EvReset               Event = "reset"
)

// Controller is the per-room night state machine. An event arriving in the
// wrong phase is a strict no-op: it logs at debug and changes nothing, so a
// duplicated audio callback can never corrupt progress.
type Controller struct {
	phase    Phase
	step     int
	numSteps int
	logger   *zap.Logger
}

// New returns an idle controller.
func New(logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{phase: PhaseIdle, logger: logger}
}

// Phase reports the current phase.
func (c *Controller) Phase() Phase { return c.phase }

// Step reports the current step index. It equals the step count once the
// night has moved past the last role.
func (c *Controller) Step() int { return c.step }

// Apply feeds one event into the machine and reports whether it moved.
func (c *Controller) Apply(ev Event) bool {
	if ev == EvReset {
		c.phase = PhaseIdle
		c.step = 0
		c.numSteps = 0
		return true
	}

	switch {
	case c.phase == PhaseIdle && ev == EvStartNight:
		// numSteps must be set through Start.
		c.noop(ev)
		return false
	case c.phase == PhaseNightBeginAudio && ev == EvNightBeginAudioDone:
		c.step = 0
		if c.numSteps == 0 {
			c.phase = PhaseNightEndAudio
		} else {
			c.phase = PhaseRoleBeginAudio
		}
		return true
	case c.phase == PhaseRoleBeginAudio && ev == EvRoleBeginAudioDone:
		c.phase = PhaseWaitingForAction
		return true
	case c.phase == PhaseWaitingForAction && ev == EvActionSubmitted:
		c.phase = PhaseRoleEndAudio
		return true
	case c.phase == PhaseRoleEndAudio && ev == EvRoleEndAudioDone:
		c.step++
		if c.step >= c.numSteps {
			c.phase = PhaseNightEndAudio
		} else {
			c.phase = PhaseRoleBeginAudio
		}
		return true
	case c.phase == PhaseNightEndAudio && ev == EvNightEndAudioDone:
		c.phase = PhaseDone
		return true
	default:
		c.noop(ev)
		return false
	}
}

// Start begins a night of numSteps role steps. No-op unless idle.
func (c *Controller) Start(numSteps int) bool {
	if c.phase != PhaseIdle {
		c.noop(EvStartNight)
		return false
	}
	c.numSteps = numSteps
	c.step = 0
	c.phase = PhaseNightBeginAudio
	return true
}

// Resume restores the machine after a host restart: the night re-enters
// the current step's begin-audio phase and the cue replays.
func (c *Controller) Resume(step, numSteps int) {
	c.numSteps = numSteps
	c.step = step
	if step >= numSteps {
		c.phase = PhaseNightEndAudio
	} else {
		c.phase = PhaseRoleBeginAudio
	}
}

// AdvancePastEmptyStep skips the current step without an action, used when
// every actor of the step is blocked or dead. Only legal in the step's
// begin-audio or waiting-for-action phase.
func (c *Controller) AdvancePastEmptyStep() bool {
	if c.phase != PhaseRoleBeginAudio && c.phase != PhaseWaitingForAction {
		c.noop("advancePastEmptyStep")
		return false
	}
	c.phase = PhaseRoleEndAudio
	return true
}

func (c *Controller) noop(ev Event) {
	c.logger.Debug("night flow event ignored",
		zap.String("event", string(ev)),
		zap.String("phase", string(c.phase)),
		zap.Int("step", c.step))
}
