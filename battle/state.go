package battle

import (
	"fmt"
	"strings"
	"sync"

	"github.com/lixenwraith/battle-director/core"
)

// Stat stages are clamped to the conventional band
const (
	MinStage = -6
	MaxStage = 6
)

// Selection identifies a team member that can occupy a slot
// ID is the roster identity; Species+Variant is the fallback equality
// used when the simulator never assigned an id
type Selection struct {
	ID      string
	Species string
	Variant string
}

// SameAs reports whether two selections refer to the same team member
func (s Selection) SameAs(o Selection) bool {
	if s.ID != "" && o.ID != "" {
		return s.ID == o.ID
	}
	return strings.EqualFold(s.Species, o.Species) && strings.EqualFold(s.Variant, o.Variant)
}

// Occupant is the presentation state of one slot's active actor
type Occupant struct {
	Actor     core.ActorID
	Selection Selection
	HPCurrent int
	HPMax     int
	Status    string
	Stages    map[string]int
	Fainted   bool
}

// State is the process-lifetime battle presentation state
// Mutated only through its methods, all of which are lock-guarded;
// the choreography engine is the single writer
type State struct {
	mu      sync.RWMutex
	slots   map[core.SlotID]*Occupant
	weather string
	turn    int
}

// NewState creates an empty battle state
func NewState() *State {
	return &State{
		slots: make(map[core.SlotID]*Occupant),
	}
}

// Occupy places a selection into a slot at full presentation health
// Returns the actor id assigned to the occupant
func (s *State) Occupy(slot core.SlotID, sel Selection, hpCurrent, hpMax int) core.ActorID {
	s.mu.Lock()
	defer s.mu.Unlock()

	actor := actorIDFor(slot, sel)
	s.slots[slot] = &Occupant{
		Actor:     actor,
		Selection: sel,
		HPCurrent: hpCurrent,
		HPMax:     hpMax,
		Stages:    make(map[string]int),
	}
	return actor
}

func actorIDFor(slot core.SlotID, sel Selection) core.ActorID {
	name := strings.ToLower(sel.Species)
	name = strings.ReplaceAll(name, " ", "-")
	return core.ActorID(fmt.Sprintf("%s:%s", slot, name))
}

// Actor returns the actor id occupying the slot, if any
func (s *State) Actor(slot core.SlotID) (core.ActorID, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	occ, ok := s.slots[slot]
	if !ok {
		return "", false
	}
	return occ.Actor, true
}

// Occupant returns a copy of the slot's occupant state
func (s *State) Occupant(slot core.SlotID) (Occupant, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	occ, ok := s.slots[slot]
	if !ok {
		return Occupant{}, false
	}
	cp := *occ
	cp.Stages = make(map[string]int, len(occ.Stages))
	for k, v := range occ.Stages {
		cp.Stages[k] = v
	}
	return cp, true
}

// IsActive reports whether the given selection already occupies the slot
func (s *State) IsActive(slot core.SlotID, sel Selection) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	occ, ok := s.slots[slot]
	return ok && !occ.Fainted && occ.Selection.SameAs(sel)
}

// SetHP applies an absolute health reading and returns the signed delta
// A max of zero keeps the previously known denominator
func (s *State) SetHP(slot core.SlotID, current, max int) (delta int, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	occ, found := s.slots[slot]
	if !found {
		return 0, false
	}
	if max > 0 {
		occ.HPMax = max
	}
	delta = current - occ.HPCurrent
	occ.HPCurrent = current
	return delta, true
}

// MarkFainted flags the slot occupant as out of the battle
func (s *State) MarkFainted(slot core.SlotID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	occ, ok := s.slots[slot]
	if !ok || occ.Fainted {
		return false
	}
	occ.Fainted = true
	occ.HPCurrent = 0
	return true
}

// ApplyStage shifts a stat stage by delta, clamped to [-6, 6]
// Returns the resulting stage
func (s *State) ApplyStage(slot core.SlotID, stat string, delta int) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	occ, ok := s.slots[slot]
	if !ok {
		return 0, false
	}
	v := occ.Stages[stat] + delta
	if v > MaxStage {
		v = MaxStage
	}
	if v < MinStage {
		v = MinStage
	}
	occ.Stages[stat] = v
	return v, true
}

// SetStatus records a status condition; empty clears it
func (s *State) SetStatus(slot core.SlotID, condition string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	occ, ok := s.slots[slot]
	if !ok {
		return false
	}
	occ.Status = condition
	return true
}

// SetWeather records the field weather; empty clears it
func (s *State) SetWeather(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.weather = name
}

// Weather returns the current field weather
func (s *State) Weather() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.weather
}

// SetTurn records the current turn number
func (s *State) SetTurn(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turn = n
}

// Turn returns the current turn number
func (s *State) Turn() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.turn
}
