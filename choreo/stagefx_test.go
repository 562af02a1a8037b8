package choreo

import (
	"testing"
	"time"

	"github.com/lixenwraith/battle-director/core"
)

func TestStageFxRunsStrictlyFIFO(t *testing.T) {
	h := newHarness(t, false)
	h.addCombatant(core.SlotP2, "Clodsire", stdClips())

	// Four rapid stage changes; the effect runner takes 200ms each
	h.d.RequestStageFx(core.SlotP2, "spd", 2)
	h.d.RequestStageFx(core.SlotP2, "def", 1)
	h.d.RequestStageFx(core.SlotP2, "atk", -1)
	h.d.RequestStageFx(core.SlotP2, "spe", -2)

	for i := 0; i < 4; i++ {
		h.tick(200 * time.Millisecond)
	}

	want := []string{
		"fx-start:spd:boost", "fx-complete:spd:boost",
		"fx-start:def:boost", "fx-complete:def:boost",
		"fx-start:atk:unboost", "fx-complete:atk:unboost",
		"fx-start:spe:unboost", "fx-complete:spe:unboost",
	}
	got := h.rec.snapshot()
	if len(got) != len(want) {
		t.Fatalf("trace = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("trace = %v, want %v", got, want)
		}
	}
}

func TestStageFxOneInFlight(t *testing.T) {
	h := newHarness(t, false)
	h.addCombatant(core.SlotP2, "Clodsire", stdClips())

	h.d.RequestStageFx(core.SlotP2, "spd", 2)
	h.d.RequestStageFx(core.SlotP2, "def", 1)

	// Mid-way through the first effect the second must not have started
	h.tick(100 * time.Millisecond)
	if got := h.rec.count("fx-start:def:boost"); got != 0 {
		t.Error("second effect started while the first was running")
	}
	if h.d.StageFxIdle(core.SlotP2) {
		t.Error("queue idle with an effect in flight")
	}

	h.tick(100 * time.Millisecond) // first completes, second starts
	h.tick(200 * time.Millisecond) // second completes
	if !h.d.StageFxIdle(core.SlotP2) {
		t.Error("queue not idle after both effects completed")
	}
}

func TestStageFxEmptySlotDrains(t *testing.T) {
	h := newHarness(t, false)

	// No actor in the slot: the effect completes immediately so the
	// queue can never wedge
	h.d.RequestStageFx(core.SlotP1, "atk", 1)
	if !h.d.StageFxIdle(core.SlotP1) {
		t.Error("effect on an empty slot did not drain")
	}
	if got := h.rec.count("fx-complete:atk:boost"); got != 1 {
		t.Errorf("completion published %d times", got)
	}
}

func TestStageFxHoldsSlotReadiness(t *testing.T) {
	h := newHarness(t, false)
	h.addCombatant(core.SlotP2, "Clodsire", stdClips())

	h.d.RequestStageFx(core.SlotP2, "spd", 2)
	if h.d.SlotReady(core.SlotP2) {
		t.Error("slot ready with stage effects in flight")
	}

	ready := h.d.AwaitSlotReady(core.SlotP2)
	h.tick(200 * time.Millisecond)
	select {
	case <-ready:
	default:
		t.Error("slot readiness not signaled after effects drained")
	}
}

func TestStageFxQueuesPerSlotIndependently(t *testing.T) {
	h := newHarness(t, false)
	h.addCombatant(core.SlotP1, "Garchomp", stdClips())
	h.addCombatant(core.SlotP2, "Clodsire", stdClips())

	h.d.RequestStageFx(core.SlotP1, "atk", 2)
	h.d.RequestStageFx(core.SlotP2, "spd", 2)

	// Both run concurrently; one queue never blocks the other
	if got := h.rec.count("fx-start:atk:boost"); got != 1 {
		t.Error("p1 effect did not start")
	}
	if got := h.rec.count("fx-start:spd:boost"); got != 1 {
		t.Error("p2 effect did not start")
	}
}
