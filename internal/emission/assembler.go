package emission

import (
	"strings"

	"github.com/axo-lotto/dae-hyphae/internal/nexus"
	"github.com/axo-lotto/dae-hyphae/internal/organs"
)

// maxAssembledPhrases bounds the fusion path to at most five ordered
// phrases before grammatical joining (spec.md §4.9).
const maxAssembledPhrases = 5

// assemble joins an optional entity-aware opener with up to five ordered
// phrases using grammatical glue, then applies the stance safety clamp:
// a minimal stance collapses everything to a single short sentence.
func assemble(opener string, phrases []string, stance nexus.Stance) string {
	if stance == nexus.StanceMinimal && len(phrases) > 0 {
		phrases = phrases[:1]
	}
	if len(phrases) > maxAssembledPhrases {
		phrases = phrases[:maxAssembledPhrases]
	}

	var parts []string
	if opener != "" {
		parts = append(parts, opener)
	}
	parts = append(parts, phrases...)
	if len(parts) == 0 {
		return ""
	}

	joined := join(parts)
	return joined
}

// join applies the fixed grammatical glue between phrase fragments: a
// comma between all but the last two, and ", and " before the last.
func join(parts []string) string {
	if len(parts) == 1 {
		return capitalizeFirst(ensureTerminalPunctuation(parts[0]))
	}
	trimmed := make([]string, len(parts))
	for i, p := range parts {
		trimmed[i] = strings.TrimRight(strings.TrimSpace(p), ".?!")
	}
	head := trimmed[:len(trimmed)-1]
	tail := trimmed[len(trimmed)-1]
	sentence := strings.Join(head, ", ") + ", and " + tail
	return capitalizeFirst(ensureTerminalPunctuation(sentence))
}

func ensureTerminalPunctuation(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	last := s[len(s)-1]
	if last == '.' || last == '?' || last == '!' {
		return s
	}
	return s + "."
}

func capitalizeFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// entityOpener returns a short, high-confidence entity-aware opener when
// the prehended entity context is strong enough to name, or "" otherwise
// (spec.md §6 entity_prehension feeding C9).
func entityOpener(entity organs.EntityPrehension) string {
	if len(entity.Entities) == 0 {
		return ""
	}
	if entity.TypicalUrgency >= 0.6 {
		return ""
	}
	name := entity.Entities[0]
	return "Thinking about " + name + " with you"
}
