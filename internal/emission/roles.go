package emission

import "github.com/axo-lotto/dae-hyphae/internal/atoms"

// roleOrder is the semantic-role ordering used by the fusion path and the
// assembler (spec.md §4.9): LISTENING -> EMPATHY -> PRESENCE -> WISDOM ->
// AUTHENTICITY, with every other organ placed after.
var roleOrder = map[atoms.Organ]int{
	atoms.Listening:    0,
	atoms.Empathy:      1,
	atoms.Presence:     2,
	atoms.Wisdom:       3,
	atoms.Authenticity: 4,
}

// roleRank returns o's position in the fixed role ordering, or a large
// value for organs outside the ordered set so they sort last.
func roleRank(o atoms.Organ) int {
	if r, ok := roleOrder[o]; ok {
		return r
	}
	return len(roleOrder) + 1
}

// primaryParticipant returns the participant with the lowest (most
// senior) role rank, used to order fused phrase fragments.
func primaryParticipant(participants []atoms.Organ) atoms.Organ {
	best := participants[0]
	bestRank := roleRank(best)
	for _, p := range participants[1:] {
		if r := roleRank(p); r < bestRank {
			best, bestRank = p, r
		}
	}
	return best
}
