package engine

import (
	"sync"
	"sync/atomic"
	"time"
)

// PausableClock provides pausable animation time with pause duration tracking
// Each actor owns one; the freeze ref-counter pauses it during hit-stop moments
// so clip-finish deadlines stall while the actor is frozen
type PausableClock struct {
	mu sync.RWMutex

	provider TimeProvider

	// Base time tracking
	realStartTime time.Time // Provider time when clock was created
	clockStart    time.Time // Clock epoch (adjusted for pauses)

	// Pause state
	isPaused        atomic.Bool
	pauseStartTime  time.Time     // Provider time when current pause started
	totalPausedTime time.Duration // Cumulative pause duration
}

// NewPausableClock creates a clock driven by the given provider
func NewPausableClock(provider TimeProvider) *PausableClock {
	now := provider.Now()
	return &PausableClock{
		provider:      provider,
		realStartTime: now,
		clockStart:    now,
	}
}

// Now returns current clock time (affected by pause)
func (pc *PausableClock) Now() time.Time {
	pc.mu.RLock()
	defer pc.mu.RUnlock()

	if pc.isPaused.Load() {
		// During pause: frozen at the pause point
		return pc.clockStart.Add(pc.pauseStartTime.Sub(pc.realStartTime) - pc.totalPausedTime)
	}

	realElapsed := pc.provider.Now().Sub(pc.realStartTime)
	return pc.clockStart.Add(realElapsed - pc.totalPausedTime)
}

// Pause stops clock advancement
func (pc *PausableClock) Pause() {
	if pc.isPaused.CompareAndSwap(false, true) {
		pc.mu.Lock()
		defer pc.mu.Unlock()
		pc.pauseStartTime = pc.provider.Now()
	}
}

// Resume continues clock advancement
func (pc *PausableClock) Resume() {
	if pc.isPaused.CompareAndSwap(true, false) {
		pc.mu.Lock()
		defer pc.mu.Unlock()

		if !pc.pauseStartTime.IsZero() {
			pc.totalPausedTime += pc.provider.Now().Sub(pc.pauseStartTime)
			pc.pauseStartTime = time.Time{}
		}
	}
}

// IsPaused returns current pause state
func (pc *PausableClock) IsPaused() bool {
	return pc.isPaused.Load()
}

// TotalPauseDuration returns cumulative pause time
func (pc *PausableClock) TotalPauseDuration() time.Duration {
	pc.mu.RLock()
	defer pc.mu.RUnlock()

	total := pc.totalPausedTime
	if pc.isPaused.Load() && !pc.pauseStartTime.IsZero() {
		total += pc.provider.Now().Sub(pc.pauseStartTime)
	}
	return total
}
