package audio

import (
	"sync/atomic"

	"github.com/lixenwraith/battle-director/event"
)

// Service wraps Engine as a lifecycle service
// Handles graceful degradation when no audio backend is available
type Service struct {
	engine   *Engine
	disabled atomic.Bool
}

// NewService creates a new audio service
func NewService() *Service {
	return &Service{}
}

// Name implements service.Service
func (s *Service) Name() string {
	return "audio"
}

// Init implements service.Service
// args[0]: bool - initial mute state (true = muted)
func (s *Service) Init(args ...any) error {
	s.engine = NewEngine()
	if len(args) > 0 {
		if muted, ok := args[0].(bool); ok && muted {
			s.engine.ToggleMute()
		}
	}
	return nil
}

// Start implements service.Service
// Opens the speaker; sets disabled on failure (no error returned)
func (s *Service) Start() error {
	if s.engine == nil {
		s.disabled.Store(true)
		return nil
	}
	if err := s.engine.Start(); err != nil {
		s.disabled.Store(true)
		s.engine = nil
		return nil
	}
	return nil
}

// Stop implements service.Service
func (s *Service) Stop() error {
	if s.engine != nil && s.engine.IsRunning() {
		s.engine.Stop()
	}
	return nil
}

// IsDisabled returns true if audio is unavailable
func (s *Service) IsDisabled() bool {
	return s.disabled.Load()
}

// Engine returns the underlying engine (nil if disabled)
func (s *Service) Engine() *Engine {
	if s.disabled.Load() {
		return nil
	}
	return s.engine
}

func (s *Service) play(c Cue) {
	if s.disabled.Load() || s.engine == nil {
		return
	}
	s.engine.Play(c)
}

// Observer returns the hub observer that maps battle events to cues
func (s *Service) Observer() *CueObserver {
	return &CueObserver{svc: s}
}

// CueObserver plays a cue per battle event
// Safe to register even when audio is disabled; every hook degrades to
// a no-op
type CueObserver struct {
	svc *Service
}

// ActionStart implements event.ActionObserver
func (o *CueObserver) ActionStart(ev event.Action) {
	o.svc.play(CueWhoosh)
}

// ActionComplete implements event.ActionObserver
func (o *CueObserver) ActionComplete(ev event.Action) {}

// StageFxStart implements event.StageFxObserver
func (o *CueObserver) StageFxStart(ev event.StageFx) {
	if ev.Kind == "unboost" {
		o.svc.play(CueUnboost)
		return
	}
	o.svc.play(CueBoost)
}

// StageFxComplete implements event.StageFxObserver
func (o *CueObserver) StageFxComplete(ev event.StageFx) {}

// HPDelta implements event.BattleObserver
func (o *CueObserver) HPDelta(ev event.HPDelta) {
	switch {
	case ev.Delta < 0:
		o.svc.play(CueImpact)
	case ev.Delta > 0:
		o.svc.play(CueHeal)
	}
}

// SlotEmpty implements event.BattleObserver
func (o *CueObserver) SlotEmpty(ev event.SlotEmpty) {
	o.svc.play(CueFaint)
}

// StatusChange implements event.BattleObserver
func (o *CueObserver) StatusChange(ev event.Status) {}

// WeatherChange implements event.BattleObserver
func (o *CueObserver) WeatherChange(ev event.Weather) {}

// SwapActive implements event.BattleObserver
func (o *CueObserver) SwapActive(ev event.Swap) {}

// TurnStart implements event.BattleObserver
func (o *CueObserver) TurnStart(ev event.Turn) {}

// BattleEnd implements event.BattleObserver
func (o *CueObserver) BattleEnd(ev event.Win) {}
