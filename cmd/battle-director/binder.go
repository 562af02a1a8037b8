package main

import (
	"log"

	"github.com/lixenwraith/battle-director/actor"
	"github.com/lixenwraith/battle-director/battle"
	"github.com/lixenwraith/battle-director/core"
	"github.com/lixenwraith/battle-director/data"
	"github.com/lixenwraith/battle-director/event"
	"github.com/lixenwraith/battle-director/vmath"
)

// slotHomes are the fixed stage positions per battle slot
var slotHomes = map[core.SlotID]vmath.Vec3{
	core.SlotP1: {X: -3, Z: 0},
	core.SlotP2: {X: 3, Z: 0},
}

// stageBinder materializes swapped-in combatants on the headless stage
// It watches swap events, loads the species clip manifest from the data
// tables, replaces the slot's previous stage actor, and starts an idle
// loop. The fainted corpse of the previous occupant leaves the stage
// only when its replacement arrives
type stageBinder struct {
	stage   *actor.HeadlessStage
	machine *actor.Machine
	state   *battle.State
	tables  *data.Store
	log     *log.Logger

	active map[core.SlotID]core.ActorID
}

func newStageBinder(stage *actor.HeadlessStage, machine *actor.Machine, state *battle.State, tables *data.Store, logger *log.Logger) *stageBinder {
	return &stageBinder{
		stage:   stage,
		machine: machine,
		state:   state,
		tables:  tables,
		log:     logger,
		active:  make(map[core.SlotID]core.ActorID),
	}
}

// SwapActive implements event.BattleObserver
func (b *stageBinder) SwapActive(ev event.Swap) {
	actorID, ok := b.state.Actor(ev.Slot)
	if !ok {
		return
	}
	if prev, ok := b.active[ev.Slot]; ok && prev != actorID {
		b.stage.RemoveActor(prev)
	}
	b.active[ev.Slot] = actorID

	clips := b.tables.Current().Clips(ev.Species)
	if len(clips) == 0 {
		b.log.Printf("no clip manifest for species %q", ev.Species)
	}
	b.stage.AddActor(actorID, clips, slotHomes[ev.Slot])
	b.machine.PlayIdle(actorID)
}

// HPDelta implements event.BattleObserver
func (b *stageBinder) HPDelta(ev event.HPDelta) {}

// SlotEmpty implements event.BattleObserver
func (b *stageBinder) SlotEmpty(ev event.SlotEmpty) {}

// StatusChange implements event.BattleObserver
func (b *stageBinder) StatusChange(ev event.Status) {}

// WeatherChange implements event.BattleObserver
func (b *stageBinder) WeatherChange(ev event.Weather) {}

// TurnStart implements event.BattleObserver
func (b *stageBinder) TurnStart(ev event.Turn) {}

// BattleEnd implements event.BattleObserver
func (b *stageBinder) BattleEnd(ev event.Win) {}
