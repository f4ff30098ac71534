package organs

import "github.com/axo-lotto/dae-hyphae/internal/atoms"

// bondOrgan implements BOND, the IFS-flavored organ tracking distance from
// SELF and which "part" (manager/firefighter/exile/SELF) is active.
type bondOrgan struct {
	catalog *atoms.Catalog
}

// NewBond constructs the BOND organ.
func NewBond(cat *atoms.Catalog) Organ { return bondOrgan{cat} }

func (b bondOrgan) Name() atoms.Organ { return atoms.Bond }

func (b bondOrgan) Process(c Context) Result {
	res := baseResult(atoms.Bond, b.catalog, c)

	a := res.AtomActivations
	selfEnergy := a["self_energy"]
	manager := a["manager_part"]
	firefighter := a["firefighter_part"]
	exile := a["exile_part"]
	protective := a["unburdening"] + a["self_leadership"] + a["compassionate_curiosity"]

	part, partScore := PartSelf, selfEnergy
	for _, cand := range []struct {
		p DominantPart
		v float64
	}{
		{PartManager, manager},
		{PartFirefighter, firefighter},
		{PartExile, exile},
	} {
		if cand.v > partScore {
			part, partScore = cand.p, cand.v
		}
	}

	// self_distance is a continuous estimate in [0,1]: exile/firefighter
	// signal pushes it up toward the Z4/Z5 range, self-energy and
	// protective-dialogue signal pulls it down toward Z1/Z2.
	raw := 0.15 + 0.55*exile + 0.40*firefighter + 0.20*manager - 0.45*selfEnergy - 0.10*protective
	selfDistance := raw
	if selfDistance < 0 {
		selfDistance = 0
	}
	if selfDistance > 1 {
		selfDistance = 1
	}

	res.Bond = &BondDetail{SelfDistance: selfDistance, DominantPart: part}
	return res
}
