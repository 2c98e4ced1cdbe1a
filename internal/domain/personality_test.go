package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePersonality(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Personality
	}{
		{"canonical", "zen_coach", PersonalityZenCoach},
		{"empty defaults", "", DefaultPersonality},
		{"whitespace defaults", "   ", DefaultPersonality},
		{"uppercase", "TOUGH_LOVE", PersonalityToughLove},
		{"alias zen", "zen", PersonalityZenCoach},
		{"alias strict", "strict", PersonalityToughLove},
		{"alias kind", "kind", PersonalitySupportive},
		{"alias with spaces", "to the point", PersonalityToThePoint},
		{"alias nobs", "nobs", PersonalityNoBS},
		{"alias blunt", "blunt", PersonalityNoBS},
		{"trimmed", "  direct  ", PersonalityNoBS},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePersonality(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParsePersonalityUnknown(t *testing.T) {
	_, err := ParsePersonality("aggressive")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown personality "aggressive"`)

	// A near-miss suggests the intended value.
	_, err = ParsePersonality("zen_couch")
	require.Error(t, err)
	assert.Contains(t, err.Error(), string(PersonalityZenCoach))
}

func TestAllPersonalitiesParse(t *testing.T) {
	for _, p := range AllPersonalities() {
		got, err := ParsePersonality(string(p))
		require.NoError(t, err)
		assert.Equal(t, p, got)
	}
}
