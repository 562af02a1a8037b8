package audio

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
)

// Cue identifies a synthesized sound effect
type Cue int

const (
	CueWhoosh Cue = iota
	CueImpact
	CueBoost
	CueUnboost
	CueFaint
	CueHeal
)

// cueStreamer plays a mono sample buffer once at a fixed gain
type cueStreamer struct {
	buf  floatBuffer
	gain float64
	pos  int
}

func (s *cueStreamer) Stream(samples [][2]float64) (int, bool) {
	if s.pos >= len(s.buf) {
		return 0, false
	}
	n := 0
	for i := range samples {
		if s.pos >= len(s.buf) {
			break
		}
		v := s.buf[s.pos] * s.gain
		samples[i][0] = v
		samples[i][1] = v
		s.pos++
		n++
	}
	return n, true
}

func (s *cueStreamer) Err() error { return nil }

// Engine plays synthesized cues through the speaker
// All cue buffers are generated once up front; Play never allocates
// sample data
type Engine struct {
	cache map[Cue]floatBuffer
	gain  float64

	running atomic.Bool
	muted   atomic.Bool
	mu      sync.Mutex
}

// NewEngine creates an engine with all cues pre-generated
func NewEngine() *Engine {
	e := &Engine{
		cache: make(map[Cue]floatBuffer),
		gain:  0.5,
	}
	for _, c := range []Cue{CueWhoosh, CueImpact, CueBoost, CueUnboost, CueFaint, CueHeal} {
		e.cache[c] = generateCue(c)
	}
	return e
}

// Start initializes the speaker
func (e *Engine) Start() error {
	if e.running.Load() {
		return fmt.Errorf("audio engine already running")
	}
	sr := beep.SampleRate(sampleRate)
	if err := speaker.Init(sr, sr.N(50*time.Millisecond)); err != nil {
		return fmt.Errorf("speaker init: %w", err)
	}
	e.running.Store(true)
	return nil
}

// Stop closes the speaker, idempotent
func (e *Engine) Stop() {
	if !e.running.CompareAndSwap(true, false) {
		return
	}
	speaker.Close()
}

// Play queues a cue for playback
func (e *Engine) Play(c Cue) bool {
	if !e.running.Load() || e.muted.Load() {
		return false
	}
	buf, ok := e.cache[c]
	if !ok {
		return false
	}
	e.mu.Lock()
	gain := e.gain
	e.mu.Unlock()
	speaker.Play(&cueStreamer{buf: buf, gain: gain})
	return true
}

// ToggleMute toggles mute state, returns true if now audible
func (e *Engine) ToggleMute() bool {
	newMute := !e.muted.Load()
	e.muted.Store(newMute)
	return !newMute
}

// IsMuted returns current mute state
func (e *Engine) IsMuted() bool {
	return e.muted.Load()
}

// IsRunning returns true if the speaker is open
func (e *Engine) IsRunning() bool {
	return e.running.Load()
}

// SetVolume updates master gain (0.0-1.0)
func (e *Engine) SetVolume(gain float64) {
	if gain < 0 {
		gain = 0
	} else if gain > 1 {
		gain = 1
	}
	e.mu.Lock()
	e.gain = gain
	e.mu.Unlock()
}
