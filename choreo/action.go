package choreo

import (
	"time"

	"github.com/lixenwraith/battle-director/core"
	"github.com/lixenwraith/battle-director/vmath"
)

// Action is the closed set of behavior primitives the executor runs
// Adding a variant means extending the executor's switch; the marker
// method keeps the set closed to this package's callers
type Action interface {
	isAction()
}

// MoveActor teleports an actor, completing inline
type MoveActor struct {
	Actor core.ActorID
	To    vmath.Vec3
}

// MoveActorAnimated tweens an actor to a position over Duration
type MoveActorAnimated struct {
	Actor    core.ActorID
	To       vmath.Vec3
	Duration time.Duration
}

// PlayAnimation plays a clip with optional mid-actions and follow-ups
//
// Mid-action lists are enqueued partway through the clip; OnComplete is
// deferred until the clip's natural finish. A clip that cannot be
// resolved enqueues both immediately so the behavior never deadlocks
type PlayAnimation struct {
	Actor      core.ActorID
	Clip       string
	Mid        []MidAction
	OnComplete []Action
}

// MidAction triggers a sub-list of actions partway through a clip
// Exactly one of Fraction/Delay is meaningful: when AtFraction is set the
// trigger is Fraction of the actual clip duration, otherwise Delay is
// absolute from clip start
type MidAction struct {
	AtFraction bool
	Fraction   float64
	Delay      time.Duration
	Actions    []Action
}

// PlayIdleRandom crossfades into a random idle loop, completing inline
type PlayIdleRandom struct {
	Actor core.ActorID
}

// ResetActorPosition returns an actor to its home position
// Zero duration teleports and completes inline
type ResetActorPosition struct {
	Actor    core.ActorID
	Duration time.Duration
}

// FreezeActors pauses the actors' animation clocks for Duration
// Overlapping freezes compose through the ref-counter
type FreezeActors struct {
	Actors   []core.ActorID
	Duration time.Duration
}

// ShakeCamera starts an additive camera shake, completing inline
type ShakeCamera struct {
	Duration  time.Duration
	Intensity float64
}

// ResetCamera snaps the camera to its default framing, completing inline
type ResetCamera struct{}

func (MoveActor) isAction()          {}
func (MoveActorAnimated) isAction()  {}
func (PlayAnimation) isAction()      {}
func (PlayIdleRandom) isAction()     {}
func (ResetActorPosition) isAction() {}
func (FreezeActors) isAction()       {}
func (ShakeCamera) isAction()        {}
func (ResetCamera) isAction()        {}

// CameraMove frames a shot before a request's actions run
type CameraMove struct {
	Position vmath.Vec3
	LookAt   vmath.Vec3
	Seconds  float64
}

// Request is one logical, trackable unit of choreography: an optional
// camera move plus an ordered action list. Created by the dispatcher,
// consumed and discarded by the executor
type Request struct {
	Initiator core.SlotID // empty for global behaviors
	Label     string
	Camera    *CameraMove
	Actions   []Action

	// OnDone runs once when the behavior fully completes, before the
	// completion event is published. Used for chained presentation
	// effects like the slot-empty signal after a faint
	OnDone func()
}
