package data

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/lixenwraith/battle-director/actor"
)

// MoveClass selects the animation variant set and camera framing for an attack
type MoveClass int

const (
	// ClassRanged is the default when nothing better is known
	ClassRanged MoveClass = iota
	// ClassContact closes distance before the strike
	ClassContact
	// ClassStatus plays in place with no approach
	ClassStatus
)

// String returns a short label for logs
func (c MoveClass) String() string {
	switch c {
	case ClassContact:
		return "contact"
	case ClassStatus:
		return "status"
	}
	return "ranged"
}

// MoveInfo is one move table row
type MoveInfo struct {
	Category string `yaml:"category"` // Physical, Special, Status
	Contact  bool   `yaml:"contact"`
}

// ActorSpec is one actor manifest row: clip name to duration in milliseconds
type ActorSpec struct {
	Clips map[string]int `yaml:"clips"`
}

type tableFile struct {
	Moves  map[string]MoveInfo  `yaml:"moves"`
	Actors map[string]ActorSpec `yaml:"actors"`
}

// Tables holds the loaded move and clip data, immutable after load
// Hot reload replaces the whole value through a Store
type Tables struct {
	moves  map[string]MoveInfo // lowercased name
	actors map[string]ActorSpec
}

// Parse decodes yaml table data
func Parse(b []byte) (*Tables, error) {
	var f tableFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse tables: %w", err)
	}

	t := &Tables{
		moves:  make(map[string]MoveInfo, len(f.Moves)),
		actors: make(map[string]ActorSpec, len(f.Actors)),
	}
	for name, info := range f.Moves {
		t.moves[strings.ToLower(name)] = info
	}
	for name, spec := range f.Actors {
		t.actors[strings.ToLower(name)] = spec
	}
	return t, nil
}

// Load reads and decodes a yaml table file
func Load(path string) (*Tables, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load tables: %w", err)
	}
	return Parse(b)
}

// Classify returns the move class driving animation and camera choice
// Status category wins; then the contact flag; unknown moves play ranged
func (t *Tables) Classify(move string) MoveClass {
	info, ok := t.moves[strings.ToLower(move)]
	if !ok {
		return ClassRanged
	}
	if strings.EqualFold(info.Category, "Status") {
		return ClassStatus
	}
	if info.Contact {
		return ClassContact
	}
	return ClassRanged
}

// Clips returns the clip manifest for a species, sorted by name for
// deterministic variant selection
func (t *Tables) Clips(species string) []actor.Clip {
	spec, ok := t.actors[strings.ToLower(species)]
	if !ok {
		return nil
	}
	clips := make([]actor.Clip, 0, len(spec.Clips))
	for name, ms := range spec.Clips {
		clips = append(clips, actor.Clip{
			Name:     name,
			Duration: time.Duration(ms) * time.Millisecond,
		})
	}
	sort.Slice(clips, func(i, j int) bool { return clips[i].Name < clips[j].Name })
	return clips
}

// Store publishes the current Tables for lock-free readers
// The watcher replaces the value wholesale on reload
type Store struct {
	p atomic.Pointer[Tables]
}

// NewStore creates a store holding the given tables
func NewStore(t *Tables) *Store {
	s := &Store{}
	if t == nil {
		t = &Tables{
			moves:  make(map[string]MoveInfo),
			actors: make(map[string]ActorSpec),
		}
	}
	s.p.Store(t)
	return s
}

// Current returns the live tables
func (s *Store) Current() *Tables {
	return s.p.Load()
}

// Replace swaps in new tables
func (s *Store) Replace(t *Tables) {
	if t != nil {
		s.p.Store(t)
	}
}
