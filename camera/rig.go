package camera

import (
	"math/rand"
	"sync"
	"time"

	"github.com/lixenwraith/battle-director/engine"
	"github.com/lixenwraith/battle-director/vmath"
)

type transition struct {
	fromPos, toPos   vmath.Vec3
	fromLook, toLook vmath.Vec3
	start            time.Time
	duration         time.Duration
	done             func()
}

type shake struct {
	until      time.Time
	duration   time.Duration
	intensity  float64
	prevOffset vmath.Vec3
}

// Rig is the in-process camera implementation
// Interpolation runs on loop ticks; transitions ease with smoothstep and
// shake stores its previous offset and subtracts it before applying a new
// one each tick, so repeated shakes never accumulate drift
type Rig struct {
	mu    sync.Mutex
	clock engine.Clock
	rng   *rand.Rand

	defaultPos  vmath.Vec3
	defaultLook vmath.Vec3
	pos         vmath.Vec3
	look        vmath.Vec3

	trans *transition
	shake *shake
}

// NewRig creates a rig at the default framing
// A nil rng falls back to a time-seeded source
func NewRig(clock engine.Clock, defaultPos, defaultLook vmath.Vec3, rng *rand.Rand) *Rig {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Rig{
		clock:       clock,
		rng:         rng,
		defaultPos:  defaultPos,
		defaultLook: defaultLook,
		pos:         defaultPos,
		look:        defaultLook,
	}
}

// Position implements Camera
func (r *Rig) Position() vmath.Vec3 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pos
}

// LookAt implements Camera
func (r *Rig) LookAt() vmath.Vec3 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.look
}

// Transition implements Camera
// A new transition replaces the one in flight; the replaced move never
// settles and its done callback is dropped
func (r *Rig) Transition(pos, look vmath.Vec3, seconds float64, done func()) {
	if seconds <= 0 {
		r.mu.Lock()
		r.removeShakeOffsetLocked()
		r.pos = pos
		r.look = look
		r.trans = nil
		r.mu.Unlock()
		if done != nil {
			done()
		}
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.removeShakeOffsetLocked()
	r.trans = &transition{
		fromPos:  r.pos,
		toPos:    pos,
		fromLook: r.look,
		toLook:   look,
		start:    r.clock.Now(),
		duration: time.Duration(seconds * float64(time.Second)),
		done:     done,
	}
}

// Shake implements Camera
func (r *Rig) Shake(seconds, intensity float64) {
	if seconds <= 0 || intensity <= 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removeShakeOffsetLocked()
	d := time.Duration(seconds * float64(time.Second))
	r.shake = &shake{
		until:     r.clock.Now().Add(d),
		duration:  d,
		intensity: intensity,
	}
}

// Reset implements Camera
func (r *Rig) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.trans = nil
	r.shake = nil
	r.pos = r.defaultPos
	r.look = r.defaultLook
}

// Update advances interpolation; registered on the engine loop
func (r *Rig) Update(now time.Time) {
	var settled func()

	r.mu.Lock()
	if t := r.trans; t != nil {
		frac := float64(now.Sub(t.start)) / float64(t.duration)
		if frac >= 1 {
			r.pos = t.toPos
			r.look = t.toLook
			settled = t.done
			r.trans = nil
		} else {
			e := vmath.SmoothStep(frac)
			r.pos = vmath.Lerp(t.fromPos, t.toPos, e)
			r.look = vmath.Lerp(t.fromLook, t.toLook, e)
		}
	}

	if s := r.shake; s != nil {
		r.pos = r.pos.Sub(s.prevOffset)
		if now.Before(s.until) {
			// Taper intensity toward the end of the shake
			remaining := float64(s.until.Sub(now)) / float64(s.duration)
			amp := s.intensity * remaining
			offset := vmath.Vec3{
				X: (r.rng.Float64()*2 - 1) * amp,
				Y: (r.rng.Float64()*2 - 1) * amp,
				Z: (r.rng.Float64()*2 - 1) * amp,
			}
			r.pos = r.pos.Add(offset)
			s.prevOffset = offset
		} else {
			r.shake = nil
		}
	}
	r.mu.Unlock()

	if settled != nil {
		settled()
	}
}

// removeShakeOffsetLocked backs the additive shake offset out of the
// position so framing math never sees it
func (r *Rig) removeShakeOffsetLocked() {
	if r.shake != nil {
		r.pos = r.pos.Sub(r.shake.prevOffset)
		r.shake.prevOffset = vmath.Vec3{}
	}
}
