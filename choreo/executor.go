package choreo

import (
	"sync"
	"time"

	"github.com/lixenwraith/battle-director/actor"
	"github.com/lixenwraith/battle-director/core"
)

// chain is one enqueued batch of actions draining in FIFO order
// Independent chains under the same behavior id share its completion
// count but interleave freely; within a chain, an asynchronous action
// suspends the drain until its own completion callback resumes it
type chain struct {
	id    core.BehaviorID
	queue []Action
}

// Enqueue stages actions under a behavior id, optionally after a delay,
// and returns how many were enqueued. The count is registered
// immediately so a delayed chain keeps its behavior alive; zero means
// the caller should short-circuit completion itself
func (d *Director) Enqueue(actions []Action, delay time.Duration, id core.BehaviorID) int {
	if len(actions) == 0 {
		return 0
	}

	d.mu.Lock()
	if _, ok := d.counts[id]; !ok {
		d.mu.Unlock()
		d.log.Printf("behavior %d: enqueue on completed behavior dropped", id)
		return 0
	}
	d.counts[id] += len(actions)
	d.mu.Unlock()

	c := &chain{id: id, queue: append([]Action(nil), actions...)}
	if delay > 0 {
		d.scheduler.After(delay, func() { d.drain(c) })
	} else {
		d.drain(c)
	}
	return len(actions)
}

// drain executes the chain front-to-back. Synchronous actions complete
// inline; an asynchronous action returns control here and the drain
// resumes from that action's completion callback, which prevents
// re-entrant queue corruption
func (d *Director) drain(c *chain) {
	for {
		d.mu.Lock()
		if len(c.queue) == 0 {
			d.mu.Unlock()
			return
		}
		a := c.queue[0]
		c.queue = c.queue[1:]
		d.mu.Unlock()

		if async := d.execute(a, c); async {
			return
		}
		d.finishOne(c.id)
	}
}

// resume finishes an asynchronous action and continues its chain
func (d *Director) resume(c *chain) {
	d.finishOne(c.id)
	d.drain(c)
}

// execute runs one action; returns true when the action is asynchronous
// and the chain is suspended until its callback fires
func (d *Director) execute(a Action, c *chain) bool {
	switch act := a.(type) {
	case MoveActor:
		d.stage.Move(act.Actor, act.To)
		return false

	case MoveActorAnimated:
		if act.Duration <= 0 {
			d.stage.Move(act.Actor, act.To)
			return false
		}
		d.stage.MoveAnimated(act.Actor, act.To, act.Duration, func() { d.resume(c) })
		return true

	case PlayIdleRandom:
		d.machine.PlayIdle(act.Actor)
		return false

	case ResetActorPosition:
		home := d.stage.Home(act.Actor)
		if act.Duration <= 0 {
			d.stage.Move(act.Actor, home)
			return false
		}
		d.stage.MoveAnimated(act.Actor, home, act.Duration, func() { d.resume(c) })
		return true

	case FreezeActors:
		if act.Duration <= 0 {
			// A zero-duration freeze has nothing to hold; complete inline
			return false
		}
		for _, id := range act.Actors {
			d.Freeze(id)
		}
		actors := append([]core.ActorID(nil), act.Actors...)
		d.scheduler.After(act.Duration, func() {
			for _, id := range actors {
				d.Unfreeze(id)
			}
			d.resume(c)
		})
		return true

	case ShakeCamera:
		d.cam.Shake(act.Duration.Seconds(), act.Intensity)
		return false

	case ResetCamera:
		d.cam.Reset()
		return false

	case PlayAnimation:
		return d.executePlayAnimation(act, c)
	}

	d.log.Printf("behavior %d: unknown action %T dropped", c.id, a)
	return false
}

// animState tracks one in-flight PlayAnimation: the clip itself plus one
// unit per mid-action trigger. The chain resumes when all units resolve
type animState struct {
	d         *Director
	c         *chain
	mu        sync.Mutex
	remaining int
}

func (s *animState) resolveOne() {
	s.mu.Lock()
	s.remaining--
	done := s.remaining == 0
	s.mu.Unlock()
	if done {
		s.d.resume(s.c)
	}
}

// executePlayAnimation runs the playAnimation sub-protocol
//
// Found clip: mid-actions are scheduled against the actor's clock at
// fraction*duration (or their absolute delay) and the OnComplete list is
// deferred to the clip's natural finish, raced against a grace timeout;
// first-wins-and-cancels-the-other. Missing clip: mid-actions and
// follow-ups enqueue immediately at their own delays and the action
// completes inline, so missing assets never deadlock a behavior
func (d *Director) executePlayAnimation(act PlayAnimation, c *chain) bool {
	matched, found := actor.MatchClip(d.stage.ListClips(act.Actor), act.Clip)
	var dur time.Duration
	if found {
		dur, found = d.machine.Play(act.Actor, matched)
	}

	if !found {
		d.log.Printf("behavior %d: actor %s clip %q unavailable, completing without playback",
			c.id, act.Actor, act.Clip)
		for _, mid := range act.Mid {
			delay := time.Duration(0)
			if !mid.AtFraction {
				delay = mid.Delay
			}
			d.Enqueue(mid.Actions, delay, c.id)
		}
		d.Enqueue(act.OnComplete, 0, c.id)
		return false
	}

	state := &animState{d: d, c: c, remaining: 1 + len(act.Mid)}
	clock := d.ClockFor(act.Actor)

	for _, mid := range act.Mid {
		delay := mid.Delay
		if mid.AtFraction {
			delay = time.Duration(mid.Fraction * float64(dur))
		}
		actions := mid.Actions
		d.scheduler.AfterOn(clock, delay, func() {
			d.Enqueue(actions, 0, c.id)
			state.resolveOne()
		})
	}

	// Natural finish and the grace timeout race for the clip unit;
	// whichever fires first cancels the other
	var once sync.Once
	var cancelFinish, cancelTimeout func()
	onComplete := act.OnComplete
	clipDone := func(forced bool) func() {
		return func() {
			once.Do(func() {
				cancelFinish()
				cancelTimeout()
				if forced {
					d.log.Printf("behavior %d: actor %s clip %q never finished, forcing progression",
						c.id, act.Actor, matched)
				}
				d.Enqueue(onComplete, 0, c.id)
				state.resolveOne()
			})
		}
	}
	if len(onComplete) > 0 {
		// A follow-up consumes the finish instead of the idle revert
		cancelFinish = d.machine.OnFinish(act.Actor, matched, clipDone(false))
	} else {
		cancelFinish = d.machine.Observe(act.Actor, matched, clipDone(false))
	}
	cancelTimeout = d.scheduler.After(dur+finishGrace, clipDone(true))
	return true
}
