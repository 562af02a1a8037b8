package actor

import (
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/lixenwraith/battle-director/core"
)

// DefaultBlend is the crossfade window between clips
const DefaultBlend = 200 * time.Millisecond

type followKey struct {
	actor core.ActorID
	clip  string // normalized
}

type followEntry struct {
	seq uint64
	fn  func()
}

// Machine is the per-actor animation state machine
//
// States are Idle(defaultClip) and Playing(clip). Requesting a new clip
// crossfades over the blend window, except the very first clip for an
// actor (fades in from nothing) and a re-trigger of the identical
// currently-playing clip (restarts without crossfade). One-shot clips
// auto-revert to a random idle loop on natural finish unless a registered
// follow-up consumes that finish instead
type Machine struct {
	mu    sync.Mutex
	stage Stage
	log   *log.Logger
	rng   *rand.Rand
	blend time.Duration

	current   map[core.ActorID]string
	follows   map[followKey][]followEntry
	observers map[followKey][]followEntry
	nextSeq   uint64
}

// NewMachine creates a machine over the given stage
// A nil rng falls back to a time-seeded source
func NewMachine(stage Stage, logger *log.Logger, rng *rand.Rand) *Machine {
	if logger == nil {
		logger = log.Default()
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Machine{
		stage:     stage,
		log:       logger,
		rng:       rng,
		blend:     DefaultBlend,
		current:   make(map[core.ActorID]string),
		follows:   make(map[followKey][]followEntry),
		observers: make(map[followKey][]followEntry),
	}
}

// Play resolves a logical clip name and crossfades into it
// Returns the clip duration and whether a clip was found and started
func (m *Machine) Play(actor core.ActorID, name string) (time.Duration, bool) {
	matched, ok := MatchClip(m.stage.ListClips(actor), name)
	if !ok {
		m.log.Printf("actor %s: no clip matches %q", actor, name)
		return 0, false
	}

	m.mu.Lock()
	prev, hasPrev := m.current[actor]
	fade := m.blend
	switch {
	case !hasPrev:
		// First clip for this actor fades in from nothing
		fade = 0
	case NormalizeClip(prev) == NormalizeClip(matched):
		// Identical re-trigger restarts without crossfade
		fade = 0
	}
	m.current[actor] = matched
	m.mu.Unlock()

	d, err := m.stage.PlayClip(actor, matched, fade)
	if err != nil {
		m.log.Printf("actor %s: clip %q failed to start: %v", actor, matched, err)
		return 0, false
	}
	return d, true
}

// PlayIdle crossfades into a uniformly random idle loop clip
func (m *Machine) PlayIdle(actor core.ActorID) {
	var idles []string
	for _, c := range m.stage.ListClips(actor) {
		if IsIdleClip(c) {
			idles = append(idles, c)
		}
	}
	if len(idles) == 0 {
		m.log.Printf("actor %s: no idle clips available", actor)
		return
	}
	m.Play(actor, idles[m.rng.Intn(len(idles))])
}

// Current returns the clip the actor is playing, if any
func (m *Machine) Current(actor core.ActorID) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.current[actor]
	return c, ok
}

// OnFinish registers a one-shot follow-up fired when the exact clip
// finishes naturally on the actor. A pending follow-up takes precedence
// over the default idle revert. The returned cancel is idempotent
func (m *Machine) OnFinish(actor core.ActorID, clip string, fn func()) func() {
	key := followKey{actor: actor, clip: NormalizeClip(clip)}

	m.mu.Lock()
	m.nextSeq++
	seq := m.nextSeq
	m.follows[key] = append(m.follows[key], followEntry{seq: seq, fn: fn})
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		entries := m.follows[key]
		for i, e := range entries {
			if e.seq == seq {
				m.follows[key] = append(entries[:i], entries[i+1:]...)
				break
			}
		}
		if len(m.follows[key]) == 0 {
			delete(m.follows, key)
		}
	}
}

// Observe registers a one-shot listener fired when the exact clip
// finishes naturally on the actor, without consuming the finish: the
// default idle revert (or a registered follow-up) still runs
// The returned cancel is idempotent
func (m *Machine) Observe(actor core.ActorID, clip string, fn func()) func() {
	key := followKey{actor: actor, clip: NormalizeClip(clip)}

	m.mu.Lock()
	m.nextSeq++
	seq := m.nextSeq
	m.observers[key] = append(m.observers[key], followEntry{seq: seq, fn: fn})
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		entries := m.observers[key]
		for i, e := range entries {
			if e.seq == seq {
				m.observers[key] = append(entries[:i], entries[i+1:]...)
				break
			}
		}
		if len(m.observers[key]) == 0 {
			delete(m.observers, key)
		}
	}
}

// ClipFinished implements FinishSink; the stage calls it when a clip ends
// naturally (not when interrupted by another clip)
func (m *Machine) ClipFinished(actor core.ActorID, clip string) {
	key := followKey{actor: actor, clip: NormalizeClip(clip)}

	m.mu.Lock()
	var follow func()
	if entries := m.follows[key]; len(entries) > 0 {
		follow = entries[0].fn
		m.follows[key] = entries[1:]
		if len(m.follows[key]) == 0 {
			delete(m.follows, key)
		}
	}
	observers := m.observers[key]
	delete(m.observers, key)
	m.mu.Unlock()

	for _, o := range observers {
		o.fn()
	}
	if follow != nil {
		follow()
		return
	}
	if !IsIdleClip(clip) {
		m.PlayIdle(actor)
	}
}
