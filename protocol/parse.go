package protocol

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lixenwraith/battle-director/core"
)

// Parse turns one protocol line into a Token
// Lines are pipe-delimited with an empty leading field: "|move|p1a: X|Tackle|p2a: Y"
// The leading pipe is optional so pre-split streams parse the same way
//
// Malformed lines return an error; callers log and skip, they never abort
func Parse(line string) (Token, error) {
	raw := line
	line = strings.TrimSpace(line)
	line = strings.TrimPrefix(line, "|")
	if line == "" {
		return Token{}, fmt.Errorf("empty command")
	}

	fields := strings.Split(line, "|")
	tok := Token{Raw: raw}

	switch fields[0] {
	case "move":
		if len(fields) < 3 {
			return Token{}, fmt.Errorf("move: want attacker and move name: %q", raw)
		}
		tok.Kind = KindMove
		slot, ok := core.ParseSlot(fields[1])
		if !ok {
			return Token{}, fmt.Errorf("move: bad attacker descriptor %q", fields[1])
		}
		tok.Slot = slot
		tok.Actor = core.ActorName(fields[1])
		tok.Move = fields[2]
		if len(fields) > 3 {
			if target, ok := core.ParseSlot(fields[3]); ok {
				tok.TargetSlot = target
				tok.Target = core.ActorName(fields[3])
			}
		}

	case "switch":
		if len(fields) < 3 {
			return Token{}, fmt.Errorf("switch: want slot and details: %q", raw)
		}
		tok.Kind = KindSwitch
		slot, ok := core.ParseSlot(fields[1])
		if !ok {
			return Token{}, fmt.Errorf("switch: bad slot descriptor %q", fields[1])
		}
		tok.Slot = slot
		tok.Actor = core.ActorName(fields[1])
		// Details field is "Species, L50, F"; only the species matters here
		details := fields[2]
		if i := strings.Index(details, ","); i >= 0 {
			details = details[:i]
		}
		tok.Species = strings.TrimSpace(details)
		if len(fields) > 3 {
			hp, err := ParseHP(fields[3])
			if err != nil {
				return Token{}, fmt.Errorf("switch: %w", err)
			}
			tok.HP = hp
		}

	case "-damage", "-heal":
		if len(fields) < 3 {
			return Token{}, fmt.Errorf("%s: want target and hp: %q", fields[0], raw)
		}
		if fields[0] == "-damage" {
			tok.Kind = KindDamage
		} else {
			tok.Kind = KindHeal
		}
		slot, ok := core.ParseSlot(fields[1])
		if !ok {
			return Token{}, fmt.Errorf("%s: bad target descriptor %q", fields[0], fields[1])
		}
		tok.Slot = slot
		tok.Actor = core.ActorName(fields[1])
		hp, err := ParseHP(fields[2])
		if err != nil {
			return Token{}, fmt.Errorf("%s: %w", fields[0], err)
		}
		tok.HP = hp

	// The simulator emits the undashed form; the dashed one shows up in
	// some replay dumps
	case "faint", "-faint":
		if len(fields) < 2 {
			return Token{}, fmt.Errorf("faint: want target: %q", raw)
		}
		tok.Kind = KindFaint
		slot, ok := core.ParseSlot(fields[1])
		if !ok {
			return Token{}, fmt.Errorf("faint: bad target descriptor %q", fields[1])
		}
		tok.Slot = slot
		tok.Actor = core.ActorName(fields[1])

	case "-boost", "-unboost":
		if len(fields) < 4 {
			return Token{}, fmt.Errorf("%s: want target, stat, amount: %q", fields[0], raw)
		}
		if fields[0] == "-boost" {
			tok.Kind = KindBoost
		} else {
			tok.Kind = KindUnboost
		}
		slot, ok := core.ParseSlot(fields[1])
		if !ok {
			return Token{}, fmt.Errorf("%s: bad target descriptor %q", fields[0], fields[1])
		}
		tok.Slot = slot
		tok.Actor = core.ActorName(fields[1])
		tok.Stat = fields[2]
		amount, err := strconv.Atoi(fields[3])
		if err != nil {
			return Token{}, fmt.Errorf("%s: bad amount %q", fields[0], fields[3])
		}
		tok.Amount = amount

	case "-status", "-curestatus":
		if len(fields) < 3 {
			return Token{}, fmt.Errorf("%s: want target and condition: %q", fields[0], raw)
		}
		if fields[0] == "-status" {
			tok.Kind = KindStatus
		} else {
			tok.Kind = KindCureStatus
		}
		slot, ok := core.ParseSlot(fields[1])
		if !ok {
			return Token{}, fmt.Errorf("%s: bad target descriptor %q", fields[0], fields[1])
		}
		tok.Slot = slot
		tok.Actor = core.ActorName(fields[1])
		tok.Status = fields[2]

	case "-weather":
		if len(fields) < 2 {
			return Token{}, fmt.Errorf("-weather: want name: %q", raw)
		}
		tok.Kind = KindWeather
		tok.Weather = fields[1]

	case "turn":
		if len(fields) < 2 {
			return Token{}, fmt.Errorf("turn: want number: %q", raw)
		}
		n, err := strconv.Atoi(fields[1])
		if err != nil {
			return Token{}, fmt.Errorf("turn: bad number %q", fields[1])
		}
		tok.Kind = KindTurn
		tok.Number = n

	case "win":
		if len(fields) < 2 {
			return Token{}, fmt.Errorf("win: want player: %q", raw)
		}
		tok.Kind = KindWin
		tok.Player = fields[1]

	default:
		return Token{}, fmt.Errorf("unknown command %q", fields[0])
	}

	return tok, nil
}

// ParseHP parses a health field: "50/100", bare "73", either optionally
// suffixed with a condition like "fnt" or "psn" after a space
func ParseHP(field string) (HP, error) {
	field = strings.TrimSpace(field)
	var hp HP

	if i := strings.IndexByte(field, ' '); i >= 0 {
		cond := strings.TrimSpace(field[i+1:])
		if cond == "fnt" {
			hp.Fainted = true
		}
		field = field[:i]
	}

	if field == "0" {
		// "0 fnt" and bare "0" both mean the actor is out
		hp.Fainted = true
	}

	if i := strings.IndexByte(field, '/'); i >= 0 {
		cur, err := strconv.Atoi(field[:i])
		if err != nil {
			return HP{}, fmt.Errorf("bad hp %q", field)
		}
		max, err := strconv.Atoi(field[i+1:])
		if err != nil {
			return HP{}, fmt.Errorf("bad hp %q", field)
		}
		hp.Current = cur
		hp.Max = max
		return hp, nil
	}

	cur, err := strconv.Atoi(field)
	if err != nil {
		return HP{}, fmt.Errorf("bad hp %q", field)
	}
	hp.Current = cur
	return hp, nil
}
