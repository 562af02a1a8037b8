package protocol

import "github.com/lixenwraith/battle-director/core"

// Kind enumerates the protocol commands the choreography engine plays back
type Kind int

const (
	KindUnknown Kind = iota
	KindMove
	KindSwitch
	KindDamage
	KindHeal
	KindFaint
	KindBoost
	KindUnboost
	KindStatus
	KindCureStatus
	KindWeather
	KindTurn
	KindWin
)

// String returns the protocol spelling of the kind
func (k Kind) String() string {
	switch k {
	case KindMove:
		return "move"
	case KindSwitch:
		return "switch"
	case KindDamage:
		return "-damage"
	case KindHeal:
		return "-heal"
	case KindFaint:
		return "-faint"
	case KindBoost:
		return "-boost"
	case KindUnboost:
		return "-unboost"
	case KindStatus:
		return "-status"
	case KindCureStatus:
		return "-curestatus"
	case KindWeather:
		return "-weather"
	case KindTurn:
		return "turn"
	case KindWin:
		return "win"
	}
	return "unknown"
}

// HP is a parsed health field: "50/100", bare "73", or "0 fnt"
type HP struct {
	Current int
	Max     int // 0 when the field carried no denominator
	Fainted bool
}

// Token is one parsed protocol line. Parsed per command, never retained
type Token struct {
	Kind Kind
	Raw  string

	// Slot owning the presentation of this command: the attacker for move,
	// the target for damage/faint/boost-style commands, none for globals
	Slot  core.SlotID
	Actor string // display name from the slot descriptor

	Move       string      // move name (move)
	TargetSlot core.SlotID // move target
	Target     string      // move target display name

	Species string // switch-in species
	Stat    string // boost/unboost stat id
	Amount  int    // boost/unboost stages
	Status  string // status condition id
	Weather string // weather name
	HP      HP     // damage/heal/switch health field
	Number  int    // turn number
	Player  string // win player name
}

// OwnsSlot reports whether this token is anchored to a specific actor slot
// Global effects (weather, turn, win) return false
func (t Token) OwnsSlot() bool {
	return t.Slot != core.SlotNone
}
