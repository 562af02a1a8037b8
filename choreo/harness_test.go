package choreo

import (
	"fmt"
	"io"
	"log"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/lixenwraith/battle-director/actor"
	"github.com/lixenwraith/battle-director/battle"
	"github.com/lixenwraith/battle-director/core"
	"github.com/lixenwraith/battle-director/engine"
	"github.com/lixenwraith/battle-director/event"
	"github.com/lixenwraith/battle-director/vmath"
)

// fakeCamera records camera traffic; settle fires pending transition
// callbacks by hand unless auto is set
type fakeCamera struct {
	mu          sync.Mutex
	auto        bool
	pending     []func()
	transitions int
	shakes      int
	resets      int
}

func (f *fakeCamera) Position() vmath.Vec3 { return vmath.Vec3{} }
func (f *fakeCamera) LookAt() vmath.Vec3   { return vmath.Vec3{} }

func (f *fakeCamera) Transition(pos, look vmath.Vec3, seconds float64, done func()) {
	f.mu.Lock()
	f.transitions++
	auto := f.auto
	if !auto && done != nil {
		f.pending = append(f.pending, done)
	}
	f.mu.Unlock()
	if auto && done != nil {
		done()
	}
}

func (f *fakeCamera) Shake(seconds, intensity float64) {
	f.mu.Lock()
	f.shakes++
	f.mu.Unlock()
}

func (f *fakeCamera) Reset() {
	f.mu.Lock()
	f.resets++
	f.mu.Unlock()
}

func (f *fakeCamera) settle() {
	f.mu.Lock()
	pending := f.pending
	f.pending = nil
	f.mu.Unlock()
	for _, fn := range pending {
		fn()
	}
}

func (f *fakeCamera) counts() (transitions, shakes, resets int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.transitions, f.shakes, f.resets
}

// eventRecorder flattens hub traffic into an ordered trace
type eventRecorder struct {
	mu    sync.Mutex
	trace []string
}

func (r *eventRecorder) add(s string) {
	r.mu.Lock()
	r.trace = append(r.trace, s)
	r.mu.Unlock()
}

func (r *eventRecorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.trace...)
}

func (r *eventRecorder) count(s string) int {
	n := 0
	for _, e := range r.snapshot() {
		if e == s {
			n++
		}
	}
	return n
}

func (r *eventRecorder) ActionStart(ev event.Action) {
	r.add("start:" + ev.Label)
}
func (r *eventRecorder) ActionComplete(ev event.Action) {
	r.add("complete:" + ev.Label)
}
func (r *eventRecorder) StageFxStart(ev event.StageFx) {
	r.add(fmt.Sprintf("fx-start:%s:%s", ev.Stat, ev.Kind))
}
func (r *eventRecorder) StageFxComplete(ev event.StageFx) {
	r.add(fmt.Sprintf("fx-complete:%s:%s", ev.Stat, ev.Kind))
}
func (r *eventRecorder) HPDelta(ev event.HPDelta) {
	r.add(fmt.Sprintf("hp:%s:%d", ev.Slot, ev.Delta))
}
func (r *eventRecorder) SlotEmpty(ev event.SlotEmpty) {
	r.add("empty:" + string(ev.Slot))
}
func (r *eventRecorder) StatusChange(ev event.Status) {
	r.add(fmt.Sprintf("status:%s:%s", ev.Slot, ev.Condition))
}
func (r *eventRecorder) WeatherChange(ev event.Weather) {
	r.add("weather:" + ev.Name)
}
func (r *eventRecorder) SwapActive(ev event.Swap) {
	r.add(fmt.Sprintf("swap:%s:%s", ev.Slot, ev.Species))
}
func (r *eventRecorder) TurnStart(ev event.Turn) {
	r.add(fmt.Sprintf("turn:%d", ev.Number))
}
func (r *eventRecorder) BattleEnd(ev event.Win) {
	r.add("win:" + ev.Player)
}
func (r *eventRecorder) LogLine(ev event.Log) {}

type harness struct {
	provider  *engine.MockTimeProvider
	scheduler *engine.Scheduler
	stage     *actor.HeadlessStage
	machine   *actor.Machine
	cam       *fakeCamera
	state     *battle.State
	hub       *event.Hub
	rec       *eventRecorder
	d         *Director
}

type lateClocks struct {
	d *Director
}

func (l *lateClocks) ClockFor(a core.ActorID) engine.Clock {
	return l.d.ClockFor(a)
}

func newHarness(t *testing.T, autoCamera bool) *harness {
	t.Helper()
	logger := log.New(io.Discard, "", 0)
	provider := engine.NewMockTimeProvider(time.Unix(0, 0))
	scheduler := engine.NewScheduler(provider)

	clocks := &lateClocks{}
	stage := actor.NewHeadlessStage(scheduler, clocks)
	machine := actor.NewMachine(stage, logger, rand.New(rand.NewSource(1)))
	stage.SetSink(machine)

	cam := &fakeCamera{auto: autoCamera}
	state := battle.NewState()
	hub := event.NewHub()
	rec := &eventRecorder{}
	hub.OnAction(rec)
	hub.OnStageFx(rec)
	hub.OnBattle(rec)
	hub.OnLog(rec)

	d := NewDirector(Config{
		Scheduler: scheduler,
		Provider:  provider,
		Stage:     stage,
		Machine:   machine,
		Camera:    cam,
		Effects:   &TimedEffectRunner{Scheduler: scheduler, Delay: 200 * time.Millisecond},
		State:     state,
		Hub:       hub,
		Logger:    logger,
	})
	clocks.d = d

	return &harness{
		provider:  provider,
		scheduler: scheduler,
		stage:     stage,
		machine:   machine,
		cam:       cam,
		state:     state,
		hub:       hub,
		rec:       rec,
		d:         d,
	}
}

// tick advances mock time and fires due timers, like one loop pass
func (h *harness) tick(step time.Duration) {
	h.provider.Advance(step)
	h.scheduler.Update()
}

func stdClips() []actor.Clip {
	return []actor.Clip{
		{Name: "Idle01.glb", Duration: 2 * time.Second},
		{Name: "Attack01.glb", Duration: time.Second},
		{Name: "Attack02.glb", Duration: 800 * time.Millisecond},
		{Name: "Status01.glb", Duration: 1200 * time.Millisecond},
		{Name: "Faint.glb", Duration: 1500 * time.Millisecond},
	}
}

// addCombatant occupies a slot and materializes its actor on the stage
func (h *harness) addCombatant(slot core.SlotID, species string, clips []actor.Clip) core.ActorID {
	id := h.state.Occupy(slot, battle.Selection{Species: species}, 100, 100)
	home := vmath.Vec3{X: -3}
	if slot == core.SlotP2 {
		home = vmath.Vec3{X: 3}
	}
	h.stage.AddActor(id, clips, home)
	return id
}

func behaviorDone(d *Director, id core.BehaviorID) bool {
	select {
	case <-d.AwaitBehavior(id):
		return true
	default:
		return false
	}
}
