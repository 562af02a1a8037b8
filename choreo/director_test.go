package choreo

import (
	"context"
	"testing"
	"time"

	"github.com/lixenwraith/battle-director/core"
	"github.com/lixenwraith/battle-director/vmath"
)

func TestSubmitWithoutCameraCompletesInline(t *testing.T) {
	h := newHarness(t, false)
	a := h.addCombatant(core.SlotP1, "Garchomp", stdClips())

	id := h.d.Submit(Request{
		Initiator: core.SlotP1,
		Label:     "reposition",
		Actions:   []Action{MoveActor{Actor: a, To: vmath.Vec3{X: 1}}},
	})

	if !behaviorDone(h.d, id) {
		t.Fatal("synchronous behavior did not complete inline")
	}
	if h.stage.Position(a) != (vmath.Vec3{X: 1}) {
		t.Errorf("actor position = %+v", h.stage.Position(a))
	}
	if got := h.rec.count("complete:reposition"); got != 1 {
		t.Errorf("completion published %d times", got)
	}
}

func TestSubmitWaitsForCameraSettle(t *testing.T) {
	h := newHarness(t, false)
	a := h.addCombatant(core.SlotP1, "Garchomp", stdClips())

	id := h.d.Submit(Request{
		Initiator: core.SlotP1,
		Label:     "framed",
		Camera:    &CameraMove{Position: vmath.Vec3{Z: 5}, Seconds: 0.35},
		Actions:   []Action{MoveActor{Actor: a, To: vmath.Vec3{X: 2}}},
	})

	if behaviorDone(h.d, id) {
		t.Fatal("behavior completed before the camera settled")
	}
	if h.stage.Position(a) == (vmath.Vec3{X: 2}) {
		t.Fatal("action ran before the camera settled")
	}

	h.cam.settle()
	if !behaviorDone(h.d, id) {
		t.Error("behavior did not complete after camera settle")
	}
	if h.stage.Position(a) != (vmath.Vec3{X: 2}) {
		t.Error("action never ran")
	}
}

func TestSubmitFallbackWhenCameraNeverSettles(t *testing.T) {
	h := newHarness(t, false)
	a := h.addCombatant(core.SlotP1, "Garchomp", stdClips())

	id := h.d.Submit(Request{
		Initiator: core.SlotP1,
		Label:     "stalled-camera",
		Camera:    &CameraMove{Position: vmath.Vec3{Z: 5}, Seconds: 0.35},
		Actions:   []Action{MoveActor{Actor: a, To: vmath.Vec3{X: 2}}},
	})

	// Fallback is the camera duration plus the settle pad
	h.tick(349*time.Millisecond + cameraSettlePad)
	if behaviorDone(h.d, id) {
		t.Fatal("fallback fired early")
	}
	h.tick(1 * time.Millisecond)
	if !behaviorDone(h.d, id) {
		t.Fatal("fallback did not force the behavior forward")
	}

	// A late settle must not double-run the actions
	h.cam.settle()
	if got := h.rec.count("complete:stalled-camera"); got != 1 {
		t.Errorf("completion published %d times", got)
	}
}

func TestSubmitSettleCancelsFallback(t *testing.T) {
	h := newHarness(t, false)
	a := h.addCombatant(core.SlotP1, "Garchomp", stdClips())

	h.d.Submit(Request{
		Initiator: core.SlotP1,
		Label:     "settled",
		Camera:    &CameraMove{Position: vmath.Vec3{Z: 5}, Seconds: 0.35},
		Actions:   []Action{MoveActor{Actor: a, To: vmath.Vec3{X: 2}}},
	})

	h.cam.settle()
	h.tick(10 * time.Second)
	if got := h.rec.count("complete:settled"); got != 1 {
		t.Errorf("completion published %d times after fallback window", got)
	}
}

func TestSubmitDefaultSettleWithoutCameraDuration(t *testing.T) {
	h := newHarness(t, false)
	a := h.addCombatant(core.SlotP1, "Garchomp", stdClips())

	id := h.d.Submit(Request{
		Initiator: core.SlotP1,
		Label:     "no-duration",
		Camera:    &CameraMove{Position: vmath.Vec3{Z: 5}},
		Actions:   []Action{MoveActor{Actor: a, To: vmath.Vec3{X: 2}}},
	})

	h.tick(defaultCameraSettle - time.Millisecond)
	if behaviorDone(h.d, id) {
		t.Fatal("default fallback fired early")
	}
	h.tick(time.Millisecond)
	if !behaviorDone(h.d, id) {
		t.Error("default fallback never fired")
	}
}

// Two behaviors on different slots run at the same time but each
// completes on its own clip's schedule
func TestIndependentBehaviorsCompleteIndependently(t *testing.T) {
	h := newHarness(t, false)
	a := h.addCombatant(core.SlotP1, "Garchomp", stdClips())
	b := h.addCombatant(core.SlotP2, "Clodsire", stdClips())

	short := h.d.Submit(Request{
		Initiator: core.SlotP1,
		Label:     "short",
		Actions:   []Action{PlayAnimation{Actor: a, Clip: "attack02"}}, // 800ms
	})
	long := h.d.Submit(Request{
		Initiator: core.SlotP2,
		Label:     "long",
		Actions:   []Action{PlayAnimation{Actor: b, Clip: "attack01"}}, // 1000ms
	})

	h.tick(800 * time.Millisecond)
	if !behaviorDone(h.d, short) {
		t.Fatal("short behavior did not complete on its own schedule")
	}
	if behaviorDone(h.d, long) {
		t.Fatal("long behavior completed with the short one")
	}

	h.tick(200 * time.Millisecond)
	if !behaviorDone(h.d, long) {
		t.Error("long behavior did not complete")
	}
	if h.rec.count("complete:short") != 1 || h.rec.count("complete:long") != 1 {
		t.Errorf("trace = %v, want one completion each", h.rec.snapshot())
	}
}

func TestAwaitBehaviorUnknownIDIsClosed(t *testing.T) {
	h := newHarness(t, false)
	select {
	case <-h.d.AwaitBehavior(999):
	default:
		t.Error("unknown behavior id should yield a closed channel")
	}
}

func TestSlotBusyDuringBehavior(t *testing.T) {
	h := newHarness(t, false)
	a := h.addCombatant(core.SlotP1, "Garchomp", stdClips())

	id := h.d.Submit(Request{
		Initiator: core.SlotP1,
		Label:     "attack",
		Actions:   []Action{PlayAnimation{Actor: a, Clip: "attack01"}},
	})

	if h.d.SlotReady(core.SlotP1) {
		t.Error("slot ready while a behavior is outstanding")
	}

	h.tick(time.Second)
	if !behaviorDone(h.d, id) {
		t.Fatal("behavior did not complete on clip finish")
	}
	if !h.d.SlotReady(core.SlotP1) {
		t.Error("slot still busy after completion")
	}
}

func TestOnDoneRunsBeforeCompletionEvent(t *testing.T) {
	h := newHarness(t, false)
	a := h.addCombatant(core.SlotP1, "Garchomp", stdClips())

	h.d.Submit(Request{
		Initiator: core.SlotP1,
		Label:     "with-done",
		Actions:   []Action{MoveActor{Actor: a, To: vmath.Vec3{}}},
		OnDone:    func() { h.rec.add("ondone") },
	})

	trace := h.rec.snapshot()
	want := []string{"start:with-done", "ondone", "complete:with-done"}
	if len(trace) != len(want) {
		t.Fatalf("trace = %v", trace)
	}
	for i := range want {
		if trace[i] != want[i] {
			t.Fatalf("trace = %v, want %v", trace, want)
		}
	}
}

func TestSleepResolvesThroughScheduler(t *testing.T) {
	h := newHarness(t, false)

	done := make(chan error, 1)
	go func() { done <- h.d.Sleep(context.Background(), 300*time.Millisecond) }()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case err := <-done:
			if err != nil {
				t.Fatalf("sleep: %v", err)
			}
			return
		case <-deadline:
			t.Fatal("sleep never resolved")
		default:
			h.tick(50 * time.Millisecond)
			time.Sleep(time.Millisecond)
		}
	}
}

func TestSleepAbortsOnContextCancel(t *testing.T) {
	h := newHarness(t, false)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- h.d.Sleep(ctx, time.Hour) }()

	cancel()
	select {
	case err := <-done:
		if err != context.Canceled {
			t.Errorf("err = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("cancelled sleep never returned")
	}
}

func TestPlayActorAnimationCompletesOnFinish(t *testing.T) {
	h := newHarness(t, false)
	h.addCombatant(core.SlotP1, "Garchomp", stdClips())

	id, ok := h.d.PlayActorAnimation(core.SlotP1, "attack01", "taunt")
	if !ok {
		t.Fatal("animation rejected")
	}
	h.tick(999 * time.Millisecond)
	if behaviorDone(h.d, id) {
		t.Fatal("completed before clip finish")
	}
	h.tick(time.Millisecond)
	if !behaviorDone(h.d, id) {
		t.Error("did not complete on clip finish")
	}
	// The grace timer must be gone; nothing should double-complete later
	h.tick(time.Minute)
	if got := h.rec.count("complete:taunt"); got != 1 {
		t.Errorf("completion published %d times", got)
	}
}

func TestPlayActorAnimationUnknownClip(t *testing.T) {
	h := newHarness(t, false)
	h.addCombatant(core.SlotP1, "Garchomp", stdClips())

	if _, ok := h.d.PlayActorAnimation(core.SlotP1, "backflip", "taunt"); ok {
		t.Error("unknown clip reported ok")
	}
	if !h.d.SlotReady(core.SlotP1) {
		t.Error("rejected animation left the slot busy")
	}
}
