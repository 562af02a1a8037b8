package engine

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/lixenwraith/battle-director/core"
)

// Updater receives the frame tick with the current base-clock time
// Camera rigs and views register here for continuous interpolation work
type Updater interface {
	Update(now time.Time)
}

// Loop drives the scheduler and registered updaters on a fixed tick
// This is the single logical thread of the choreography engine: every
// timer callback and frame update runs from here
type Loop struct {
	scheduler *Scheduler
	provider  TimeProvider
	interval  time.Duration

	mu       sync.Mutex
	updaters []Updater

	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	running  atomic.Bool
}

// NewLoop creates a loop ticking at the given interval
func NewLoop(scheduler *Scheduler, provider TimeProvider, interval time.Duration) *Loop {
	return &Loop{
		scheduler: scheduler,
		provider:  provider,
		interval:  interval,
		stopChan:  make(chan struct{}),
	}
}

// Register adds an updater, must be called before Start()
func (l *Loop) Register(u Updater) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.updaters = append(l.updaters, u)
}

// Start begins the tick loop
func (l *Loop) Start() {
	if l.running.CompareAndSwap(false, true) {
		l.wg.Add(1)
		// Use core.Go for safe execution with centralized crash handling
		core.Go(l.run)
	}
}

// Stop halts the tick loop
func (l *Loop) Stop() {
	l.stopOnce.Do(func() {
		if l.running.CompareAndSwap(true, false) {
			close(l.stopChan)
			l.wg.Wait()
		}
	})
}

func (l *Loop) run() {
	defer l.wg.Done()

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-l.stopChan:
			return
		case <-ticker.C:
			l.tick()
		}
	}
}

func (l *Loop) tick() {
	l.scheduler.Update()

	now := l.provider.Now()
	l.mu.Lock()
	updaters := l.updaters
	l.mu.Unlock()
	for _, u := range updaters {
		u.Update(now)
	}
}
