package choreo

import (
	"context"
	"errors"
	"log"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lixenwraith/battle-director/battle"
	"github.com/lixenwraith/battle-director/core"
	"github.com/lixenwraith/battle-director/event"
	"github.com/lixenwraith/battle-director/protocol"
)

// ErrRunActive rejects a second Run while one is in flight
var ErrRunActive = errors.New("a playback run is already active")

// Completion waits per token kind
const (
	stageFxWait   = 3000 * time.Millisecond
	damageSettle  = 500 * time.Millisecond
	defaultSettle = 150 * time.Millisecond
)

// Sequencer plays protocol tokens in strict order against the director
//
// Token N+1 is never dispatched before token N's completion or timeout
// resolves, regardless of which actors they touch. Every wait runs
// through the scheduler, so timeouts force forward progress and the
// sequencer can never hang on a single token
type Sequencer struct {
	director   *Director
	dispatcher *Dispatcher
	log        *log.Logger
	running    atomic.Bool
}

// NewSequencer creates a sequencer over the director and dispatcher
func NewSequencer(d *Director, dp *Dispatcher, logger *log.Logger) *Sequencer {
	if logger == nil {
		logger = log.Default()
	}
	return &Sequencer{director: d, dispatcher: dp, log: logger}
}

// Running reports whether a run is active
func (s *Sequencer) Running() bool {
	return s.running.Load()
}

// Run plays the command list to completion or ctx cancellation
// Re-entrant calls are rejected; malformed tokens are logged and
// skipped, never aborting the run
func (s *Sequencer) Run(ctx context.Context, commands []string) error {
	if !s.running.CompareAndSwap(false, true) {
		return ErrRunActive
	}
	defer s.running.Store(false)

	for _, line := range commands {
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "||") {
			continue
		}
		tok, err := protocol.Parse(line)
		if err != nil {
			s.log.Printf("skipping malformed command: %v", err)
			continue
		}

		if tok.OwnsSlot() {
			if err := s.awaitSlotReady(ctx, tok.Slot); err != nil {
				return err
			}
		}

		s.director.Hub().PublishLog(event.Log{Line: describeToken(tok)})

		if err := s.play(ctx, tok); err != nil {
			return err
		}
	}
	return nil
}

// awaitSlotReady blocks until the slot is neither mid-action nor has
// in-flight stage-FX, re-awaiting whichever signal is still pending
func (s *Sequencer) awaitSlotReady(ctx context.Context, slot core.SlotID) error {
	for {
		if s.director.SlotReady(slot) {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.director.AwaitSlotReady(slot):
		}
	}
}

// play dispatches one token and awaits its completion per kind
func (s *Sequencer) play(ctx context.Context, tok protocol.Token) error {
	switch tok.Kind {
	case protocol.KindMove:
		id, ok := s.dispatcher.Attack(tok.Slot, tok.TargetSlot, tok.Move)
		if !ok {
			return s.director.Sleep(ctx, defaultSettle)
		}
		// No sequencer timeout here: the executor's internal fallbacks
		// bound how long a behavior can stay outstanding
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.director.AwaitBehavior(id):
			return nil
		}

	case protocol.KindBoost, protocol.KindUnboost:
		delta := tok.Amount
		if tok.Kind == protocol.KindUnboost {
			delta = -delta
		}
		s.dispatcher.StageChange(tok.Slot, tok.Stat, delta)
		return s.awaitStageFx(ctx, tok.Slot)

	case protocol.KindDamage, protocol.KindHeal:
		s.dispatcher.Damage(tok.Slot, tok.HP)
		return s.director.Sleep(ctx, damageSettle)

	case protocol.KindFaint:
		s.dispatcher.FaintToken(tok.Slot)
		return s.director.Sleep(ctx, damageSettle)

	case protocol.KindSwitch:
		sel := battle.Selection{Species: tok.Species}
		s.dispatcher.Swap(tok.Slot, sel, tok.HP, true)
		return s.director.Sleep(ctx, defaultSettle)

	case protocol.KindStatus:
		s.dispatcher.Status(tok.Slot, tok.Status, false)
		return s.director.Sleep(ctx, defaultSettle)

	case protocol.KindCureStatus:
		s.dispatcher.Status(tok.Slot, tok.Status, true)
		return s.director.Sleep(ctx, defaultSettle)

	case protocol.KindWeather:
		s.dispatcher.Weather(tok.Weather)
		return s.director.Sleep(ctx, defaultSettle)

	case protocol.KindTurn:
		s.director.State().SetTurn(tok.Number)
		s.director.Hub().PublishTurn(event.Turn{Number: tok.Number})
		return s.director.Sleep(ctx, defaultSettle)

	case protocol.KindWin:
		s.director.Hub().PublishWin(event.Win{Player: tok.Player})
		return s.director.Sleep(ctx, defaultSettle)
	}

	return s.director.Sleep(ctx, defaultSettle)
}

// awaitStageFx waits for the slot's effect queue to drain, bounded by
// the stage-FX timeout; timing out resolves forward, never an error
func (s *Sequencer) awaitStageFx(ctx context.Context, slot core.SlotID) error {
	deadline := make(chan struct{})
	var once sync.Once
	cancel := s.director.scheduler.After(stageFxWait, func() {
		once.Do(func() { close(deadline) })
	})
	defer cancel()

	for {
		if s.director.StageFxIdle(slot) {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline:
			s.log.Printf("slot %s: stage effects still running after %v, moving on", slot, stageFxWait)
			return nil
		case <-s.director.AwaitSlotReady(slot):
		}
	}
}

// describeToken renders a battle log line for the UI
func describeToken(tok protocol.Token) string {
	switch tok.Kind {
	case protocol.KindMove:
		return tok.Actor + " used " + tok.Move + "!"
	case protocol.KindSwitch:
		return "Go! " + tok.Species + "!"
	case protocol.KindDamage:
		return tok.Actor + " took damage"
	case protocol.KindHeal:
		return tok.Actor + " recovered health"
	case protocol.KindFaint:
		return tok.Actor + " fainted!"
	case protocol.KindBoost:
		return tok.Actor + "'s " + tok.Stat + " rose"
	case protocol.KindUnboost:
		return tok.Actor + "'s " + tok.Stat + " fell"
	case protocol.KindStatus:
		return tok.Actor + " is " + tok.Status
	case protocol.KindCureStatus:
		return tok.Actor + " recovered from " + tok.Status
	case protocol.KindWeather:
		if tok.Weather == "" || tok.Weather == "none" {
			return "The weather cleared"
		}
		return "The weather became " + tok.Weather
	case protocol.KindTurn:
		return "-- Turn " + strconv.Itoa(tok.Number) + " --"
	case protocol.KindWin:
		return tok.Player + " won the battle!"
	}
	return tok.Raw
}
