package choreo

import (
	"log"
	"time"

	"github.com/lixenwraith/battle-director/actor"
	"github.com/lixenwraith/battle-director/battle"
	"github.com/lixenwraith/battle-director/core"
	"github.com/lixenwraith/battle-director/data"
	"github.com/lixenwraith/battle-director/event"
	"github.com/lixenwraith/battle-director/protocol"
	"github.com/lixenwraith/battle-director/vmath"
)

// Camera timing per shot kind, in seconds
const (
	contactCamSeconds = 0.35
	rangedCamSeconds  = 0.5
	statusCamSeconds  = 0.4
	faintCamSeconds   = 0.45
	swapCamSeconds    = 0.4
)

const (
	approachDuration = 300 * time.Millisecond
	retreatDuration  = 250 * time.Millisecond
	impactFreeze     = 220 * time.Millisecond
	approachGap      = 1.2 // how far from the target a contact move stops
)

// Animation variant candidates per move class, tried against the
// attacker's clip set in order; the first possessed wins and the first
// candidate is the graceful-degradation fallback
var attackVariants = map[data.MoveClass][]string{
	data.ClassContact: {"attack01", "melee", "attack"},
	data.ClassRanged:  {"attack02", "shoot", "attack"},
	data.ClassStatus:  {"status01", "charge", "attack02"},
}

var faintVariants = []string{"faint", "down", "ko"}

// Dispatcher maps parsed protocol tokens to behavior requests
// Pure mapping: beyond battle-state mutation and event publication its
// only side effect is submitting requests to the director
type Dispatcher struct {
	d      *Director
	tables *data.Store
	log    *log.Logger
}

// NewDispatcher creates a dispatcher over the director and data tables
func NewDispatcher(d *Director, tables *data.Store, logger *log.Logger) *Dispatcher {
	if logger == nil {
		logger = log.Default()
	}
	return &Dispatcher{d: d, tables: tables, log: logger}
}

// pickVariant returns the first candidate clip the actor possesses,
// falling back to the first candidate so clip resolution can fail
// gracefully later
func (dp *Dispatcher) pickVariant(actorID core.ActorID, candidates []string) string {
	available := dp.d.stage.ListClips(actorID)
	for _, want := range candidates {
		if _, ok := actor.MatchClip(available, want); ok {
			return want
		}
	}
	return candidates[0]
}

// Attack builds and submits the attack choreography for a move token
func (dp *Dispatcher) Attack(attacker, target core.SlotID, move string) (core.BehaviorID, bool) {
	attackerID, ok := dp.d.state.Actor(attacker)
	if !ok {
		dp.log.Printf("move %q: no actor in slot %s", move, attacker)
		return 0, false
	}
	targetID, haveTarget := dp.d.state.Actor(target)

	class := dp.tables.Current().Classify(move)
	clip := dp.pickVariant(attackerID, attackVariants[class])

	atkPos := dp.d.stage.Position(attackerID)
	tgtPos := atkPos
	if haveTarget {
		tgtPos = dp.d.stage.Position(targetID)
	}

	req := Request{
		Initiator: attacker,
		Label:     move,
	}

	switch class {
	case data.ClassContact:
		req.Camera = frameMidpoint(atkPos, tgtPos, contactCamSeconds)
		anim := PlayAnimation{
			Actor: attackerID,
			Clip:  clip,
			OnComplete: []Action{
				ResetActorPosition{Actor: attackerID, Duration: retreatDuration},
				PlayIdleRandom{Actor: attackerID},
			},
		}
		if haveTarget {
			anim.Mid = []MidAction{{
				AtFraction: true,
				Fraction:   0.45,
				Actions: []Action{
					FreezeActors{Actors: []core.ActorID{targetID}, Duration: impactFreeze},
					ShakeCamera{Duration: 300 * time.Millisecond, Intensity: 0.35},
				},
			}}
		}
		req.Actions = []Action{
			MoveActorAnimated{
				Actor:    attackerID,
				To:       approachPoint(atkPos, tgtPos),
				Duration: approachDuration,
			},
			anim,
		}

	case data.ClassStatus:
		req.Camera = frameActor(atkPos, statusCamSeconds)
		req.Actions = []Action{
			PlayAnimation{Actor: attackerID, Clip: clip},
		}

	default: // ranged
		req.Camera = frameMidpoint(atkPos, tgtPos, rangedCamSeconds)
		anim := PlayAnimation{Actor: attackerID, Clip: clip}
		if haveTarget {
			anim.Mid = []MidAction{{
				AtFraction: true,
				Fraction:   0.6,
				Actions: []Action{
					ShakeCamera{Duration: 250 * time.Millisecond, Intensity: 0.2},
				},
			}}
		}
		req.Actions = []Action{anim}
	}

	return dp.d.Submit(req), true
}

// Faint frames the fainting actor first; the faint clip starts only
// after the camera settles (or the derived fallback delay elapses)
// inside Submit. The follow-up resets the camera instead of the default
// idle revert, and completion empties the slot
func (dp *Dispatcher) Faint(slot core.SlotID) (core.BehaviorID, bool) {
	actorID, ok := dp.d.state.Actor(slot)
	if !ok {
		dp.log.Printf("faint: no actor in slot %s", slot)
		return 0, false
	}
	clip := dp.pickVariant(actorID, faintVariants)
	pos := dp.d.stage.Position(actorID)

	d := dp.d
	req := Request{
		Initiator: slot,
		Label:     "faint",
		Camera:    frameActor(pos, faintCamSeconds),
		Actions: []Action{
			PlayAnimation{
				Actor:      actorID,
				Clip:       clip,
				OnComplete: []Action{ResetCamera{}},
			},
		},
		OnDone: func() {
			d.hub.PublishSlotEmpty(event.SlotEmpty{Slot: slot})
		},
	}
	return d.Submit(req), true
}

// Swap flips the slot's active instance. A request for the selection
// already active is a no-op; the model swap itself belongs to the
// renderer, signaled only by the opaque swap event
func (dp *Dispatcher) Swap(slot core.SlotID, sel battle.Selection, hp protocol.HP, visuals bool) (core.BehaviorID, bool) {
	if dp.d.state.IsActive(slot, sel) {
		dp.log.Printf("swap: %s already active on %s, ignoring", sel.Species, slot)
		return 0, false
	}

	cur, max := hp.Current, hp.Max
	if max <= 0 {
		cur, max = 100, 100
	}
	dp.d.state.Occupy(slot, sel, cur, max)
	dp.d.hub.PublishSwap(event.Swap{Slot: slot, Species: sel.Species})

	if !visuals {
		return 0, false
	}
	actorID, _ := dp.d.state.Actor(slot)
	req := Request{
		Initiator: slot,
		Label:     "switch",
		Camera:    frameActor(dp.d.stage.Home(actorID), swapCamSeconds),
	}
	return dp.d.Submit(req), true
}

// Damage applies a health reading, publishes the delta, and chains the
// faint sequence when the reading says the actor is out
func (dp *Dispatcher) Damage(slot core.SlotID, hp protocol.HP) (core.BehaviorID, bool) {
	delta, ok := dp.d.state.SetHP(slot, hp.Current, hp.Max)
	if !ok {
		dp.log.Printf("damage: no actor in slot %s", slot)
		return 0, false
	}
	occ, _ := dp.d.state.Occupant(slot)
	dp.d.hub.PublishHPDelta(event.HPDelta{
		Slot:    slot,
		Delta:   delta,
		Current: occ.HPCurrent,
		Max:     occ.HPMax,
		Fainted: hp.Fainted,
	})

	if hp.Fainted && dp.d.state.MarkFainted(slot) {
		return dp.Faint(slot)
	}
	return 0, false
}

// FaintToken handles an explicit -faint command; idempotent against a
// faint already chained from a zero-hp damage reading
func (dp *Dispatcher) FaintToken(slot core.SlotID) (core.BehaviorID, bool) {
	if !dp.d.state.MarkFainted(slot) {
		return 0, false
	}
	return dp.Faint(slot)
}

// StageChange applies a stat stage delta and queues its visual effect
func (dp *Dispatcher) StageChange(slot core.SlotID, stat string, delta int) {
	if _, ok := dp.d.state.ApplyStage(slot, stat, delta); !ok {
		dp.log.Printf("stage change: no actor in slot %s", slot)
		return
	}
	dp.d.RequestStageFx(slot, stat, delta)
}

// Status records a status condition change and publishes it
func (dp *Dispatcher) Status(slot core.SlotID, condition string, cured bool) {
	if cured {
		condition = ""
	}
	if !dp.d.state.SetStatus(slot, condition) {
		dp.log.Printf("status: no actor in slot %s", slot)
		return
	}
	dp.d.hub.PublishStatus(event.Status{Slot: slot, Condition: condition, Cured: cured})
}

// Weather records the field weather and publishes it
func (dp *Dispatcher) Weather(name string) {
	dp.d.state.SetWeather(name)
	dp.d.hub.PublishWeather(event.Weather{Name: name})
}

// frameActor builds a close-up camera move on a single position
func frameActor(pos vmath.Vec3, seconds float64) *CameraMove {
	return &CameraMove{
		Position: pos.Add(vmath.Vec3{X: 0, Y: 1.6, Z: 3.2}),
		LookAt:   pos.Add(vmath.Vec3{Y: 0.8}),
		Seconds:  seconds,
	}
}

// frameMidpoint frames both combatants, pulling back with their spread
func frameMidpoint(a, b vmath.Vec3, seconds float64) *CameraMove {
	mid := vmath.Lerp(a, b, 0.5)
	spread := b.Sub(a).Length()
	return &CameraMove{
		Position: mid.Add(vmath.Vec3{X: 0, Y: 2.0, Z: 3.0 + spread*0.8}),
		LookAt:   mid.Add(vmath.Vec3{Y: 0.6}),
		Seconds:  seconds,
	}
}

// approachPoint stops a contact move one gap short of the target,
// on the attacker's side
func approachPoint(from, to vmath.Vec3) vmath.Vec3 {
	dir := to.Sub(from)
	length := dir.Length()
	if length <= approachGap {
		return from
	}
	return from.Add(dir.Scale((length - approachGap) / length))
}
