package engine

import (
	"testing"
	"time"
)

func TestPausableClockTracksProvider(t *testing.T) {
	provider := NewMockTimeProvider(time.Unix(100, 0))
	clock := NewPausableClock(provider)

	start := clock.Now()
	provider.Advance(500 * time.Millisecond)
	if got := clock.Now().Sub(start); got != 500*time.Millisecond {
		t.Errorf("expected 500ms elapsed, got %v", got)
	}
}

func TestPausableClockFreezesWhilePaused(t *testing.T) {
	provider := NewMockTimeProvider(time.Unix(100, 0))
	clock := NewPausableClock(provider)

	provider.Advance(200 * time.Millisecond)
	clock.Pause()
	frozen := clock.Now()

	provider.Advance(time.Hour)
	if !clock.Now().Equal(frozen) {
		t.Error("clock advanced while paused")
	}
	if !clock.IsPaused() {
		t.Error("IsPaused false after Pause")
	}

	clock.Resume()
	if !clock.Now().Equal(frozen) {
		t.Error("clock jumped on resume")
	}
	provider.Advance(300 * time.Millisecond)
	if got := clock.Now().Sub(frozen); got != 300*time.Millisecond {
		t.Errorf("expected 300ms after resume, got %v", got)
	}
}

func TestPausableClockDoublePauseIsNoOp(t *testing.T) {
	provider := NewMockTimeProvider(time.Unix(100, 0))
	clock := NewPausableClock(provider)

	clock.Pause()
	provider.Advance(time.Second)
	clock.Pause() // must not reset the pause start
	provider.Advance(time.Second)
	clock.Resume()
	clock.Resume() // must not double count

	if got := clock.TotalPauseDuration(); got != 2*time.Second {
		t.Errorf("expected 2s total pause, got %v", got)
	}
}

func TestPausableClockTotalPauseAccumulates(t *testing.T) {
	provider := NewMockTimeProvider(time.Unix(100, 0))
	clock := NewPausableClock(provider)

	clock.Pause()
	provider.Advance(100 * time.Millisecond)
	clock.Resume()

	clock.Pause()
	provider.Advance(250 * time.Millisecond)
	clock.Resume()

	if got := clock.TotalPauseDuration(); got != 350*time.Millisecond {
		t.Errorf("expected 350ms total pause, got %v", got)
	}
}
