package engine

import (
	"sort"
	"sync"
	"time"
)

// Clock is any readable time source: a TimeProvider or a PausableClock
type Clock interface {
	Now() time.Time
}

// CancelFunc removes a scheduled timer. Idempotent; calling it after the
// timer fired (or after another cancel) is a no-op
type CancelFunc func()

type timerEntry struct {
	seq      uint64
	clock    Clock
	deadline time.Time
	fn       func()
}

// Scheduler is a deadline registry for choreography timers
//
// Architecture:
//   - Timers are bound to a Clock; a timer on a paused actor clock stalls
//     until the clock resumes (hit-stop extends clip-finish deadlines)
//   - Update fires due timers in (deadline, registration) order
//   - Callbacks run outside the scheduler lock and may schedule or cancel
//     other timers freely
//
// Nothing here sleeps; the owning loop (or a test) decides when time is
// observed by calling Update
type Scheduler struct {
	mu      sync.Mutex
	base    Clock
	entries map[uint64]*timerEntry
	nextSeq uint64
}

// NewScheduler creates a scheduler whose After timers use the base clock
func NewScheduler(base Clock) *Scheduler {
	return &Scheduler{
		base:    base,
		entries: make(map[uint64]*timerEntry),
	}
}

// After schedules fn to run once d has elapsed on the base clock
func (s *Scheduler) After(d time.Duration, fn func()) CancelFunc {
	return s.AfterOn(s.base, d, fn)
}

// AfterOn schedules fn against an arbitrary clock
// A non-positive delay fires on the next Update, never inline
func (s *Scheduler) AfterOn(clock Clock, d time.Duration, fn func()) CancelFunc {
	if clock == nil {
		clock = s.base
	}

	s.mu.Lock()
	s.nextSeq++
	seq := s.nextSeq
	s.entries[seq] = &timerEntry{
		seq:      seq,
		clock:    clock,
		deadline: clock.Now().Add(d),
		fn:       fn,
	}
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.entries, seq)
		s.mu.Unlock()
	}
}

// Update fires every timer whose clock has reached its deadline
// Loops until no timer is due so zero-delay chains resolve in one call
// Returns the number of timers fired
func (s *Scheduler) Update() int {
	fired := 0
	for {
		due := s.collectDue()
		if len(due) == 0 {
			return fired
		}
		for _, e := range due {
			e.fn()
			fired++
		}
	}
}

func (s *Scheduler) collectDue() []*timerEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	var due []*timerEntry
	for _, e := range s.entries {
		if !e.clock.Now().Before(e.deadline) {
			due = append(due, e)
		}
	}
	for _, e := range due {
		delete(s.entries, e.seq)
	}
	sort.Slice(due, func(i, j int) bool {
		if due[i].deadline.Equal(due[j].deadline) {
			return due[i].seq < due[j].seq
		}
		return due[i].deadline.Before(due[j].deadline)
	})
	return due
}

// Pending returns the number of registered timers
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
