package flow

import "testing"

func drive(t *testing.T, c *Controller, evs ...Event) {
	t.Helper()
	for _, ev := range evs {
		if !c.Apply(ev) {
			t.Fatalf("event %s refused in phase %s", ev, c.Phase())
		}
	}
}

func TestHappyPathTwoSteps(t *testing.T) {
	c := New(nil)
	if !c.Start(2) {
		t.Fatal("start refused")
	}
	if c.Phase() != PhaseNightBeginAudio {
		t.Fatalf("phase %s", c.Phase())
	}
	drive(t, c, EvNightBeginAudioDone, EvRoleBeginAudioDone, EvActionSubmitted, EvRoleEndAudioDone)
	if c.Phase() != PhaseRoleBeginAudio || c.Step() != 1 {
		t.Fatalf("phase=%s step=%d", c.Phase(), c.Step())
	}
	drive(t, c, EvRoleBeginAudioDone, EvActionSubmitted, EvRoleEndAudioDone)
	if c.Phase() != PhaseNightEndAudio {
		t.Fatalf("phase %s", c.Phase())
	}
	drive(t, c, EvNightEndAudioDone)
	if c.Phase() != PhaseDone {
		t.Fatalf("phase %s", c.Phase())
	}
}

func TestDuplicateRoleEndAudioIsNoOp(t *testing.T) {
	c := New(nil)
	c.Start(2)
	drive(t, c, EvNightBeginAudioDone, EvRoleBeginAudioDone, EvActionSubmitted, EvRoleEndAudioDone)
	step := c.Step()

	if c.Apply(EvRoleEndAudioDone) {
		t.Fatalf("duplicate end-audio callback must not move the machine")
	}
	if c.Step() != step {
		t.Fatalf("step advanced twice: %d -> %d", step, c.Step())
	}
}

func TestWrongPhaseEventsAreNoOps(t *testing.T) {
	c := New(nil)
	for _, ev := range []Event{EvNightBeginAudioDone, EvRoleBeginAudioDone, EvActionSubmitted, EvRoleEndAudioDone, EvNightEndAudioDone} {
		if c.Apply(ev) {
			t.Errorf("event %s should not move an idle machine", ev)
		}
	}
	if c.Phase() != PhaseIdle {
		t.Fatalf("phase %s", c.Phase())
	}
}

func TestResetFromAnywhereTwiceEqualsOnce(t *testing.T) {
	c := New(nil)
	c.Start(3)
	drive(t, c, EvNightBeginAudioDone, EvRoleBeginAudioDone)

	c.Apply(EvReset)
	if c.Phase() != PhaseIdle || c.Step() != 0 {
		t.Fatalf("reset: phase=%s step=%d", c.Phase(), c.Step())
	}
	c.Apply(EvReset)
	if c.Phase() != PhaseIdle || c.Step() != 0 {
		t.Fatalf("double reset diverged: phase=%s step=%d", c.Phase(), c.Step())
	}
}

func TestZeroStepNightSkipsToNightEnd(t *testing.T) {
	c := New(nil)
	c.Start(0)
	drive(t, c, EvNightBeginAudioDone)
	if c.Phase() != PhaseNightEndAudio {
		t.Fatalf("phase %s", c.Phase())
	}
}

func TestResume(t *testing.T) {
	c := New(nil)
	c.Resume(2, 4)
	if c.Phase() != PhaseRoleBeginAudio || c.Step() != 2 {
		t.Fatalf("phase=%s step=%d", c.Phase(), c.Step())
	}
	c.Resume(4, 4)
	if c.Phase() != PhaseNightEndAudio {
		t.Fatalf("phase %s", c.Phase())
	}
}
