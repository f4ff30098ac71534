package emission

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/axo-lotto/dae-hyphae/internal/nexus"
	"github.com/axo-lotto/dae-hyphae/internal/organs"
)

func TestAssembleSinglePhraseCapitalizedAndPunctuated(t *testing.T) {
	out := assemble("", []string{"i'm here with you"}, nexus.StanceWitness)
	assert.True(t, strings.HasPrefix(out, "I"))
	assert.True(t, strings.HasSuffix(out, "."))
}

func TestAssembleJoinsMultiplePhrasesWithAnd(t *testing.T) {
	out := assemble("", []string{"hold this fiercely with you", "sit with what's true here", "name the pattern gently"}, nexus.StanceHold)
	assert.Contains(t, out, ", and ")
}

func TestAssembleMinimalStanceCollapsesToOnePhrase(t *testing.T) {
	out := assemble("", []string{"hold this fiercely with you", "sit with what's true here"}, nexus.StanceMinimal)
	assert.NotContains(t, out, ", and ")
}

func TestAssembleCapsAtFivePhrases(t *testing.T) {
	phrases := []string{"a", "b", "c", "d", "e", "f", "g"}
	out := assemble("", phrases, nexus.StanceHold)
	assert.NotContains(t, out, "f")
	assert.NotContains(t, out, "g")
}

func TestEntityOpenerEmptyWhenNoEntities(t *testing.T) {
	assert.Equal(t, "", entityOpener(organs.EntityPrehension{}))
}

func TestEntityOpenerSuppressedAtHighUrgency(t *testing.T) {
	assert.Equal(t, "", entityOpener(organs.EntityPrehension{Entities: []string{"mom"}, TypicalUrgency: 0.8}))
}

func TestEntityOpenerNamesEntity(t *testing.T) {
	out := entityOpener(organs.EntityPrehension{Entities: []string{"mom"}, TypicalUrgency: 0.1})
	assert.Contains(t, out, "mom")
}
