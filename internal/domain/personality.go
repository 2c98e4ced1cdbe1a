package domain

import (
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"
)

// Personality is a closed enumeration of communication-style modifiers.
// Unknown values are rejected; an empty value falls back to DefaultPersonality.
type Personality string

const (
	PersonalityZenCoach   Personality = "zen_coach"
	PersonalityToughLove  Personality = "tough_love"
	PersonalitySupportive Personality = "supportive"
	PersonalityToThePoint Personality = "to_the_point"
	PersonalityNoBS       Personality = "no_bs"

	DefaultPersonality = PersonalitySupportive
)

// AllPersonalities lists every valid personality in a stable order.
func AllPersonalities() []Personality {
	return []Personality{
		PersonalityZenCoach,
		PersonalityToughLove,
		PersonalitySupportive,
		PersonalityToThePoint,
		PersonalityNoBS,
	}
}

// personalityAliases maps informal spellings onto canonical values.
var personalityAliases = map[string]Personality{
	"zen_coach":    PersonalityZenCoach,
	"zen":          PersonalityZenCoach,
	"coach":        PersonalityZenCoach,
	"tough_love":   PersonalityToughLove,
	"tough":        PersonalityToughLove,
	"strict":       PersonalityToughLove,
	"firm":         PersonalityToughLove,
	"supportive":   PersonalitySupportive,
	"support":      PersonalitySupportive,
	"encouraging":  PersonalitySupportive,
	"kind":         PersonalitySupportive,
	"to_the_point": PersonalityToThePoint,
	"to the point": PersonalityToThePoint,
	"brief":        PersonalityToThePoint,
	"concise":      PersonalityToThePoint,
	"no_bs":        PersonalityNoBS,
	"no bs":        PersonalityNoBS,
	"nobs":         PersonalityNoBS,
	"direct":       PersonalityNoBS,
	"blunt":        PersonalityNoBS,
}

// ParsePersonality normalizes raw input to a canonical Personality.
// An empty string yields the default; anything unrecognized is an error that
// names the closest valid value so clients can correct typos.
func ParsePersonality(raw string) (Personality, error) {
	if strings.TrimSpace(raw) == "" {
		return DefaultPersonality, nil
	}
	key := strings.ToLower(strings.TrimSpace(raw))
	if p, ok := personalityAliases[key]; ok {
		return p, nil
	}
	return "", fmt.Errorf("unknown personality %q (did you mean %q?)", raw, closestPersonality(key))
}

// closestPersonality picks the canonical value with the smallest edit
// distance to the input. Ties resolve to the first in AllPersonalities order,
// so the suggestion is deterministic.
func closestPersonality(input string) Personality {
	best := DefaultPersonality
	bestDist := -1
	for _, p := range AllPersonalities() {
		d := levenshtein.ComputeDistance(input, string(p))
		if bestDist < 0 || d < bestDist {
			best = p
			bestDist = d
		}
	}
	return best
}
