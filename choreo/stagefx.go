package choreo

import (
	"sync"
	"time"

	"github.com/lixenwraith/battle-director/core"
	"github.com/lixenwraith/battle-director/engine"
	"github.com/lixenwraith/battle-director/event"
)

// EffectRunner is the particle collaborator contract: run a stat effect
// on an actor and report completion through done exactly once
type EffectRunner interface {
	RunEffect(actor core.ActorID, kind string, done func())
}

type fxEntry struct {
	stat  string
	delta int
}

type fxQueue struct {
	entries []fxEntry
	running bool
}

func fxKind(delta int) string {
	if delta < 0 {
		return "unboost"
	}
	return "boost"
}

// RequestStageFx queues a stat buff/debuff visual for the slot's actor
// At most one effect is in flight per actor; queued entries run strictly
// FIFO, each bracketed by start and completion events
func (d *Director) RequestStageFx(slot core.SlotID, stat string, delta int) {
	d.mu.Lock()
	q, ok := d.fx[slot]
	if !ok {
		q = &fxQueue{}
		d.fx[slot] = q
	}
	q.entries = append(q.entries, fxEntry{stat: stat, delta: delta})
	start := !q.running
	if start {
		q.running = true
	}
	d.mu.Unlock()

	if start {
		d.startNextFx(slot)
	}
}

// startNextFx pops the head entry and runs it; called with the queue
// already marked running
func (d *Director) startNextFx(slot core.SlotID) {
	d.mu.Lock()
	q := d.fx[slot]
	if q == nil || len(q.entries) == 0 {
		if q != nil {
			q.running = false
		}
		waiters := d.collectSlotWaitersLocked(slot)
		d.mu.Unlock()
		for _, ch := range waiters {
			close(ch)
		}
		return
	}
	e := q.entries[0]
	q.entries = q.entries[1:]
	d.mu.Unlock()

	ev := event.StageFx{Slot: slot, Stat: e.stat, Kind: fxKind(e.delta)}
	d.hub.PublishStageFxStart(ev)

	actorID, ok := d.state.Actor(slot)
	if !ok {
		// No actor to decorate; complete the entry so the queue drains
		d.finishFx(slot, ev)
		return
	}

	var once sync.Once
	d.effects.RunEffect(actorID, ev.Kind, func() {
		once.Do(func() { d.finishFx(slot, ev) })
	})
}

func (d *Director) finishFx(slot core.SlotID, ev event.StageFx) {
	d.hub.PublishStageFxComplete(ev)
	d.startNextFx(slot)
}

// StageFxIdle reports whether the slot has no running or queued effects
func (d *Director) StageFxIdle(slot core.SlotID) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	q, ok := d.fx[slot]
	return !ok || (!q.running && len(q.entries) == 0)
}

// TimedEffectRunner is the headless particle stand-in: every effect
// completes after a fixed delay on the scheduler
type TimedEffectRunner struct {
	Scheduler *engine.Scheduler
	Delay     time.Duration
}

// RunEffect implements EffectRunner
func (r *TimedEffectRunner) RunEffect(_ core.ActorID, _ string, done func()) {
	r.Scheduler.After(r.Delay, done)
}
