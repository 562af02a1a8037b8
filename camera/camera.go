package camera

import "github.com/lixenwraith/battle-director/vmath"

// Camera is the camera collaborator contract
// The choreography engine frames shots and requests moves; projection and
// rendering stay on the other side of this interface
type Camera interface {
	// Position returns the current camera position
	Position() vmath.Vec3

	// LookAt returns the current look-at target
	LookAt() vmath.Vec3

	// Transition eases the camera to a new framing over the given seconds
	// done, if non-nil, fires once when the move settles. A non-positive
	// duration snaps immediately
	Transition(pos, look vmath.Vec3, seconds float64, done func())

	// Shake applies an additive offset for the given seconds
	Shake(seconds, intensity float64)

	// Reset snaps back to the default framing, cancelling any transition
	// and shake in flight
	Reset()
}
