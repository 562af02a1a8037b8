package actor

import (
	"fmt"
	"sync"
	"time"

	"github.com/lixenwraith/battle-director/core"
	"github.com/lixenwraith/battle-director/engine"
	"github.com/lixenwraith/battle-director/vmath"
)

// ClockSource resolves the pausable animation clock for an actor
type ClockSource interface {
	ClockFor(actor core.ActorID) engine.Clock
}

type headlessActor struct {
	clips    []Clip
	home     vmath.Vec3
	position vmath.Vec3

	cancelFinish engine.CancelFunc // pending natural-finish timer
	cancelMove   engine.CancelFunc // pending animated-move timer
}

// HeadlessStage is a renderer stand-in that honors clip durations through
// the scheduler without drawing anything. The demo binary and the test
// suite both run on it; a real 3D backend replaces it behind the Stage
// interface
type HeadlessStage struct {
	mu        sync.Mutex
	scheduler *engine.Scheduler
	clocks    ClockSource
	sink      FinishSink
	actors    map[core.ActorID]*headlessActor
}

// NewHeadlessStage creates a stage scheduling clip finishes on per-actor clocks
func NewHeadlessStage(scheduler *engine.Scheduler, clocks ClockSource) *HeadlessStage {
	return &HeadlessStage{
		scheduler: scheduler,
		clocks:    clocks,
		actors:    make(map[core.ActorID]*headlessActor),
	}
}

// SetSink wires the natural-finish receiver, must be set before playback
func (h *HeadlessStage) SetSink(sink FinishSink) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sink = sink
}

// AddActor registers an actor with its clip manifest and home position
func (h *HeadlessStage) AddActor(actor core.ActorID, clips []Clip, home vmath.Vec3) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.actors[actor] = &headlessActor{
		clips:    clips,
		home:     home,
		position: home,
	}
}

// RemoveActor drops an actor and cancels its pending timers
func (h *HeadlessStage) RemoveActor(actor core.ActorID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if a, ok := h.actors[actor]; ok {
		if a.cancelFinish != nil {
			a.cancelFinish()
		}
		if a.cancelMove != nil {
			a.cancelMove()
		}
		delete(h.actors, actor)
	}
}

// ListClips implements Stage
func (h *HeadlessStage) ListClips(actor core.ActorID) []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	a, ok := h.actors[actor]
	if !ok {
		return nil
	}
	names := make([]string, len(a.clips))
	for i, c := range a.clips {
		names[i] = c.Name
	}
	return names
}

// PlayClip implements Stage
// Starting a clip interrupts the previous one: the interrupted clip never
// finishes naturally, so its finish timer is cancelled
func (h *HeadlessStage) PlayClip(actor core.ActorID, clip string, fade time.Duration) (time.Duration, error) {
	h.mu.Lock()
	a, ok := h.actors[actor]
	if !ok {
		h.mu.Unlock()
		return 0, fmt.Errorf("unknown actor %q", actor)
	}
	var duration time.Duration
	found := false
	for _, c := range a.clips {
		if c.Name == clip {
			duration = c.Duration
			found = true
			break
		}
	}
	if !found {
		h.mu.Unlock()
		return 0, fmt.Errorf("actor %q has no clip %q", actor, clip)
	}

	if a.cancelFinish != nil {
		a.cancelFinish()
	}
	sink := h.sink
	clock := h.clocks.ClockFor(actor)
	a.cancelFinish = h.scheduler.AfterOn(clock, duration, func() {
		if sink != nil {
			sink.ClipFinished(actor, clip)
		}
	})
	h.mu.Unlock()

	return duration, nil
}

// Move implements Stage
func (h *HeadlessStage) Move(actor core.ActorID, pos vmath.Vec3) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if a, ok := h.actors[actor]; ok {
		a.position = pos
	}
}

// MoveAnimated implements Stage
// The tween itself is a rendering concern; headless playback only honors
// the timing: position lands and done fires after d on the actor's clock
func (h *HeadlessStage) MoveAnimated(actor core.ActorID, pos vmath.Vec3, d time.Duration, done func()) {
	h.mu.Lock()
	a, ok := h.actors[actor]
	if !ok {
		h.mu.Unlock()
		if done != nil {
			done()
		}
		return
	}
	if a.cancelMove != nil {
		a.cancelMove()
	}
	clock := h.clocks.ClockFor(actor)
	a.cancelMove = h.scheduler.AfterOn(clock, d, func() {
		h.Move(actor, pos)
		if done != nil {
			done()
		}
	})
	h.mu.Unlock()
}

// Home implements Stage
func (h *HeadlessStage) Home(actor core.ActorID) vmath.Vec3 {
	h.mu.Lock()
	defer h.mu.Unlock()
	if a, ok := h.actors[actor]; ok {
		return a.home
	}
	return vmath.Vec3{}
}

// Position implements Stage
func (h *HeadlessStage) Position(actor core.ActorID) vmath.Vec3 {
	h.mu.Lock()
	defer h.mu.Unlock()
	if a, ok := h.actors[actor]; ok {
		return a.position
	}
	return vmath.Vec3{}
}
