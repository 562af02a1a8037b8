package core

import "strings"

// SlotID identifies a battle side slot ("p1" or "p2")
type SlotID string

const (
	SlotP1   SlotID = "p1"
	SlotP2   SlotID = "p2"
	SlotNone SlotID = ""
)

// ActorID identifies a single on-stage actor instance
// Stable for the lifetime of the battle, unique per slot occupant
type ActorID string

// BehaviorID keys completion tracking for one dispatched behavior request
type BehaviorID uint64

// ParseSlot extracts the side slot from a protocol actor descriptor
// Descriptors look like "p1a: Clodsire"; only the side prefix matters here
func ParseSlot(descriptor string) (SlotID, bool) {
	d := strings.TrimSpace(descriptor)
	if len(d) < 2 || d[0] != 'p' {
		return SlotNone, false
	}
	switch d[1] {
	case '1':
		return SlotP1, true
	case '2':
		return SlotP2, true
	}
	return SlotNone, false
}

// ActorName extracts the display name from a descriptor like "p2a: Clodsire"
func ActorName(descriptor string) string {
	if i := strings.Index(descriptor, ":"); i >= 0 {
		return strings.TrimSpace(descriptor[i+1:])
	}
	return strings.TrimSpace(descriptor)
}
