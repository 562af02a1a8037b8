package choreo

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/lixenwraith/battle-director/actor"
	"github.com/lixenwraith/battle-director/battle"
	"github.com/lixenwraith/battle-director/camera"
	"github.com/lixenwraith/battle-director/core"
	"github.com/lixenwraith/battle-director/engine"
	"github.com/lixenwraith/battle-director/event"
)

const (
	// cameraSettlePad is added to a camera transition's nominal duration
	// when deriving the fallback delay for action start
	cameraSettlePad = 200 * time.Millisecond

	// defaultCameraSettle is the fallback when a request carries no
	// camera duration to derive from
	defaultCameraSettle = 650 * time.Millisecond

	// finishGrace is how long past a clip's nominal duration the
	// executor waits for the natural finish before forcing progression
	finishGrace = 3 * time.Second
)

// Config wires a Director's collaborators
type Config struct {
	Scheduler *engine.Scheduler
	Provider  engine.TimeProvider
	Stage     actor.Stage
	Machine   *actor.Machine
	Camera    camera.Camera
	Effects   EffectRunner
	State     *battle.State
	Hub       *event.Hub
	Logger    *log.Logger
}

// Director owns all process-lifetime choreography state: behavior
// completion counts, freeze ref-counts, stage-FX queues, per-actor
// clocks, and slot busy-ness. Every map is mutated only under its lock
// through the operations below; callbacks re-enter through exported
// methods, never while the lock is held
type Director struct {
	mu sync.Mutex

	scheduler *engine.Scheduler
	provider  engine.TimeProvider
	stage     actor.Stage
	machine   *actor.Machine
	cam       camera.Camera
	effects   EffectRunner
	state     *battle.State
	hub       *event.Hub
	log       *log.Logger

	nextID core.BehaviorID

	counts map[core.BehaviorID]int          // outstanding actions per behavior
	labels map[core.BehaviorID]event.Action // completion event payloads

	busy   map[core.SlotID]int // outstanding behaviors per slot
	clocks map[core.ActorID]*engine.PausableClock
	frozen map[core.ActorID]int
	fx     map[core.SlotID]*fxQueue

	behaviorWaiters map[core.BehaviorID][]chan struct{}
	slotWaiters     map[core.SlotID][]chan struct{}
	doneFns         map[core.BehaviorID]func()
}

// NewDirector creates a director over the given collaborators
func NewDirector(cfg Config) *Director {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Director{
		scheduler:       cfg.Scheduler,
		provider:        cfg.Provider,
		stage:           cfg.Stage,
		machine:         cfg.Machine,
		cam:             cfg.Camera,
		effects:         cfg.Effects,
		state:           cfg.State,
		hub:             cfg.Hub,
		log:             logger,
		counts:          make(map[core.BehaviorID]int),
		labels:          make(map[core.BehaviorID]event.Action),
		busy:            make(map[core.SlotID]int),
		clocks:          make(map[core.ActorID]*engine.PausableClock),
		frozen:          make(map[core.ActorID]int),
		fx:              make(map[core.SlotID]*fxQueue),
		behaviorWaiters: make(map[core.BehaviorID][]chan struct{}),
		slotWaiters:     make(map[core.SlotID][]chan struct{}),
		doneFns:         make(map[core.BehaviorID]func()),
	}
}

// Hub returns the event hub for observer registration
func (d *Director) Hub() *event.Hub { return d.hub }

// State returns the battle presentation state
func (d *Director) State() *battle.State { return d.state }

// ClockFor implements actor.ClockSource; clocks are created lazily
func (d *Director) ClockFor(a core.ActorID) engine.Clock {
	return d.pausableClockFor(a)
}

func (d *Director) pausableClockFor(a core.ActorID) *engine.PausableClock {
	d.mu.Lock()
	defer d.mu.Unlock()
	c, ok := d.clocks[a]
	if !ok {
		c = engine.NewPausableClock(d.provider)
		d.clocks[a] = c
	}
	return c
}

// Submit dispatches a behavior request: publishes the start event, plays
// the camera move if any, and enqueues the actions once the camera
// settles (or the derived fallback delay elapses, whichever is first)
// Returns the behavior id used as the completion-tracking key
func (d *Director) Submit(req Request) core.BehaviorID {
	d.mu.Lock()
	d.nextID++
	id := d.nextID
	ev := event.Action{ID: id, Initiator: req.Initiator, Label: req.Label}
	d.labels[id] = ev
	if req.Initiator != core.SlotNone {
		d.busy[req.Initiator]++
	}
	// The submission itself holds one count until the actions are
	// enqueued, so a camera'd request cannot complete early
	d.counts[id] = 1
	if req.OnDone != nil {
		d.doneFns[id] = req.OnDone
	}
	d.mu.Unlock()

	d.hub.PublishActionStart(ev)

	start := func() {
		d.Enqueue(req.Actions, 0, id)
		d.finishOne(id)
	}

	if req.Camera == nil {
		start()
		return id
	}

	// First-wins: the settle callback and the fallback timer race, the
	// winner cancels the loser before starting the actions
	var once sync.Once
	var cancelFallback engine.CancelFunc
	proceed := func() {
		once.Do(func() {
			if cancelFallback != nil {
				cancelFallback()
			}
			start()
		})
	}
	fallback := defaultCameraSettle
	if req.Camera.Seconds > 0 {
		fallback = time.Duration(req.Camera.Seconds*float64(time.Second)) + cameraSettlePad
	}
	cancelFallback = d.scheduler.After(fallback, proceed)
	d.cam.Transition(req.Camera.Position, req.Camera.LookAt, req.Camera.Seconds, proceed)
	return id
}

// finishOne decrements a behavior's outstanding count and fires the
// completion event exactly once when it reaches zero
func (d *Director) finishOne(id core.BehaviorID) {
	d.mu.Lock()
	n, ok := d.counts[id]
	if !ok {
		// Already completed; a forced progression and a natural finish
		// both reporting is a bug upstream, keep it visible
		d.mu.Unlock()
		d.log.Printf("behavior %d: decrement after completion", id)
		return
	}
	n--
	if n > 0 {
		d.counts[id] = n
		d.mu.Unlock()
		return
	}
	delete(d.counts, id)
	ev := d.labels[id]
	delete(d.labels, id)
	if ev.Initiator != core.SlotNone {
		if d.busy[ev.Initiator] > 0 {
			d.busy[ev.Initiator]--
		}
	}
	waiters := d.behaviorWaiters[id]
	delete(d.behaviorWaiters, id)
	onDone := d.doneFns[id]
	delete(d.doneFns, id)
	slotReady := d.collectSlotWaitersLocked(ev.Initiator)
	d.mu.Unlock()

	if onDone != nil {
		onDone()
	}
	d.hub.PublishActionComplete(ev)
	for _, ch := range waiters {
		close(ch)
	}
	for _, ch := range slotReady {
		close(ch)
	}
}

// collectSlotWaitersLocked removes and returns the slot's waiters when
// the slot has become ready; caller closes them after unlocking
func (d *Director) collectSlotWaitersLocked(slot core.SlotID) []chan struct{} {
	if slot == core.SlotNone || !d.slotReadyLocked(slot) {
		return nil
	}
	waiters := d.slotWaiters[slot]
	delete(d.slotWaiters, slot)
	return waiters
}

func (d *Director) slotReadyLocked(slot core.SlotID) bool {
	if d.busy[slot] > 0 {
		return false
	}
	if q, ok := d.fx[slot]; ok && (q.running || len(q.entries) > 0) {
		return false
	}
	return true
}

// SlotReady reports whether the slot is neither mid-action nor has
// in-flight or queued stage-FX
func (d *Director) SlotReady(slot core.SlotID) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.slotReadyLocked(slot)
}

// AwaitSlotReady returns a channel closed when the slot next becomes
// ready; closed immediately if it already is
func (d *Director) AwaitSlotReady(slot core.SlotID) <-chan struct{} {
	ch := make(chan struct{})
	d.mu.Lock()
	if d.slotReadyLocked(slot) {
		d.mu.Unlock()
		close(ch)
		return ch
	}
	d.slotWaiters[slot] = append(d.slotWaiters[slot], ch)
	d.mu.Unlock()
	return ch
}

// AwaitBehavior returns a channel closed when the behavior completes
// A behavior id that is unknown (never submitted, or already completed)
// yields an already-closed channel so callers cannot hang on it
func (d *Director) AwaitBehavior(id core.BehaviorID) <-chan struct{} {
	ch := make(chan struct{})
	d.mu.Lock()
	if _, ok := d.counts[id]; !ok {
		d.mu.Unlock()
		close(ch)
		return ch
	}
	d.behaviorWaiters[id] = append(d.behaviorWaiters[id], ch)
	d.mu.Unlock()
	return ch
}

// Sleep blocks for d through the scheduler so fake clocks drive it
// Returns ctx.Err() when aborted first; the timer is torn down either way
func (d *Director) Sleep(ctx context.Context, dur time.Duration) error {
	ch := make(chan struct{})
	var once sync.Once
	cancel := d.scheduler.After(dur, func() {
		once.Do(func() { close(ch) })
	})
	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		cancel()
		return ctx.Err()
	}
}

// PlayActorAnimation requests a bare, non-behavior animation on a slot's
// actor. The pending action is matched against the clip that finishes to
// know when to signal completion; a grace timeout forces progression if
// the renderer never reports the finish
func (d *Director) PlayActorAnimation(slot core.SlotID, clipName, label string) (core.BehaviorID, bool) {
	actorID, ok := d.state.Actor(slot)
	if !ok {
		d.log.Printf("slot %s: no actor for animation %q", slot, clipName)
		return 0, false
	}
	matched, ok := actor.MatchClip(d.stage.ListClips(actorID), clipName)
	if !ok {
		d.log.Printf("slot %s: no clip matches %q", slot, clipName)
		return 0, false
	}
	dur, ok := d.machine.Play(actorID, matched)
	if !ok {
		return 0, false
	}

	d.mu.Lock()
	d.nextID++
	id := d.nextID
	ev := event.Action{ID: id, Initiator: slot, Label: label}
	d.labels[id] = ev
	d.counts[id] = 1
	d.busy[slot]++
	d.mu.Unlock()
	d.hub.PublishActionStart(ev)

	var once sync.Once
	var cancelObserve, cancelTimeout func()
	complete := func(forced bool) func() {
		return func() {
			once.Do(func() {
				cancelObserve()
				cancelTimeout()
				if forced {
					d.log.Printf("slot %s: clip %q finish timed out, forcing completion", slot, matched)
				}
				d.finishOne(id)
			})
		}
	}
	cancelObserve = d.machine.Observe(actorID, matched, complete(false))
	cancelTimeout = d.scheduler.After(dur+finishGrace, complete(true))
	return id, true
}
