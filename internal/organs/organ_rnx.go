package organs

import (
	"strings"

	"github.com/axo-lotto/dae-hyphae/internal/atoms"
)

// rnxOrgan implements RNX, the temporal-perception organ (suspended time,
// rumination loops, repeating topics across recent turns).
type rnxOrgan struct {
	catalog *atoms.Catalog
}

// NewRNX constructs the RNX organ.
func NewRNX(cat *atoms.Catalog) Organ { return rnxOrgan{cat} }

func (r rnxOrgan) Name() atoms.Organ { return atoms.Rnx }

func (r rnxOrgan) Process(c Context) Result {
	res := baseResult(atoms.Rnx, r.catalog, c)

	a := res.AtomActivations
	suspended := a["suspended_time"]
	rumination := a["rumination_loop"]
	repetitionMarker := a["repetition_marker"]

	repeating := recentlyRepeated(c.UserInput, c.RecentInputs)

	state := TemporalNormal
	switch {
	case suspended > 0.3:
		state = TemporalSuspended
	case repeating:
		state = TemporalRepeating
	case rumination > 0.3 || repetitionMarker > 0.3:
		state = TemporalLooped
	}

	res.RNX = &RNXDetail{TemporalState: state}
	return res
}

// recentlyRepeated reports whether input closely matches any of the last
// few recent inputs (bounded ring kept by internal/turn), a cheap proxy for
// "the conversation is looping on the same topic."
func recentlyRepeated(input string, recent []string) bool {
	cur := normalizeForRepeat(input)
	if cur == "" {
		return false
	}
	for _, r := range recent {
		if normalizeForRepeat(r) == cur {
			return true
		}
	}
	return false
}

func normalizeForRepeat(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.Trim(s, ".!?")
	return s
}
