package actor

import (
	"time"

	"github.com/lixenwraith/battle-director/core"
	"github.com/lixenwraith/battle-director/vmath"
)

// Stage is the renderer collaborator contract
// The choreography engine only schedules and observes clip lifecycles;
// how a clip is drawn is entirely the stage's business
type Stage interface {
	// ListClips returns the clip names the actor possesses
	ListClips(actor core.ActorID) []string

	// PlayClip starts a clip with the given crossfade window and returns
	// the clip's actual duration. A missing clip returns an error
	PlayClip(actor core.ActorID, clip string, fade time.Duration) (time.Duration, error)

	// Move teleports the actor
	Move(actor core.ActorID, pos vmath.Vec3)

	// MoveAnimated tweens the actor to pos over d, then calls done
	MoveAnimated(actor core.ActorID, pos vmath.Vec3, d time.Duration, done func())

	// Home returns the actor's resting position
	Home(actor core.ActorID) vmath.Vec3

	// Position returns the actor's current position
	Position(actor core.ActorID) vmath.Vec3
}

// FinishSink receives natural clip-finish notifications from a stage
type FinishSink interface {
	ClipFinished(actor core.ActorID, clip string)
}
