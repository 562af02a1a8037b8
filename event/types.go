package event

import "github.com/lixenwraith/battle-director/core"

// Action marks the start or completion of one dispatched behavior request
type Action struct {
	ID        core.BehaviorID
	Initiator core.SlotID // empty for global behaviors
	Label     string      // human-readable, e.g. the move name
}

// StageFx marks the start or completion of a queued stat buff/debuff effect
type StageFx struct {
	Slot core.SlotID
	Stat string // stat identifier, e.g. "atk"
	Kind string // "boost" or "unboost"
}

// HPDelta reports an applied health change
type HPDelta struct {
	Slot    core.SlotID
	Delta   int
	Current int
	Max     int
	Fainted bool
}

// SlotEmpty reports a slot whose actor fainted out of the battle
type SlotEmpty struct {
	Slot core.SlotID
}

// Status reports a major status condition change
type Status struct {
	Slot      core.SlotID
	Condition string // "psn", "brn", ...; empty when cured
	Cured     bool
}

// Weather reports a field weather change; empty name clears it
type Weather struct {
	Name string
}

// Swap reports an active-instance change on a slot
// The actual model swap is the renderer's business; this is the opaque signal
type Swap struct {
	Slot    core.SlotID
	Species string
}

// Turn reports a turn boundary
type Turn struct {
	Number int
}

// Win reports the end of the battle
type Win struct {
	Player string
}

// Log is a presentation line for the battle log panel
type Log struct {
	Line string
}
