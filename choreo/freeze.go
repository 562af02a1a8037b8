package choreo

import "github.com/lixenwraith/battle-director/core"

// Freeze increments the actor's freeze count; only the 0→1 transition
// pauses the animation clock, so overlapping freezes compose without
// double-pausing
func (d *Director) Freeze(a core.ActorID) {
	clock := d.pausableClockFor(a)

	d.mu.Lock()
	d.frozen[a]++
	first := d.frozen[a] == 1
	d.mu.Unlock()

	if first {
		clock.Pause()
	}
}

// Unfreeze decrements the actor's freeze count, floored at zero; only
// the 1→0 transition resumes the clock
func (d *Director) Unfreeze(a core.ActorID) {
	d.mu.Lock()
	n := d.frozen[a]
	if n == 0 {
		d.mu.Unlock()
		d.log.Printf("actor %s: unfreeze without matching freeze", a)
		return
	}
	n--
	last := n == 0
	if last {
		delete(d.frozen, a)
	} else {
		d.frozen[a] = n
	}
	clock := d.clocks[a]
	d.mu.Unlock()

	if last && clock != nil {
		clock.Resume()
	}
}

// FrozenCount returns the actor's current freeze depth
func (d *Director) FrozenCount(a core.ActorID) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.frozen[a]
}
