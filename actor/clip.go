package actor

import (
	"strings"
	"time"
)

// Clip describes one animation clip an actor possesses
type Clip struct {
	Name     string
	Duration time.Duration
}

// clipSuffix is the conventional asset suffix treated as noise when matching
const clipSuffix = ".glb"

// NormalizeClip lowercases a clip identifier and strips the conventional
// asset suffix so exported names and logical names compare equal
func NormalizeClip(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.TrimSuffix(name, clipSuffix)
}

// MatchClip resolves a requested clip name against an actor's available clips
//
// Matching is case-insensitive and suffix-tolerant, tried in priority order:
//  1. exact equality after normalization
//  2. requested name as an underscore-prefixed suffix of a candidate
//     (covers per-form prefixes like "clodsire_attack01")
//  3. requested name as a plain suffix of a candidate
//
// First match wins. No match returns ok=false; that is a documented failure
// the caller logs, never an error that stops a behavior
func MatchClip(available []string, want string) (string, bool) {
	want = NormalizeClip(want)
	if want == "" {
		return "", false
	}

	for _, c := range available {
		if NormalizeClip(c) == want {
			return c, true
		}
	}
	for _, c := range available {
		if strings.HasSuffix(NormalizeClip(c), "_"+want) {
			return c, true
		}
	}
	for _, c := range available {
		if strings.HasSuffix(NormalizeClip(c), want) {
			return c, true
		}
	}
	return "", false
}

// IsIdleClip reports whether a clip belongs to the idle/default loop set
func IsIdleClip(name string) bool {
	return strings.Contains(NormalizeClip(name), "idle")
}
