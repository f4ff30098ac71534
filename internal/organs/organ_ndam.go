package organs

import "github.com/axo-lotto/dae-hyphae/internal/atoms"

// ndamOrgan implements NDAM, the urgency/crisis-appraisal organ.
type ndamOrgan struct {
	catalog *atoms.Catalog
}

// NewNDAM constructs the NDAM organ.
func NewNDAM(cat *atoms.Catalog) Organ { return ndamOrgan{cat} }

func (n ndamOrgan) Name() atoms.Organ { return atoms.Ndam }

func (n ndamOrgan) Process(c Context) Result {
	res := baseResult(atoms.Ndam, n.catalog, c)

	a := res.AtomActivations
	urgency := 0.30*a["threat_appraisal"] + 0.25*a["urgency_spike"] +
		0.25*a["overwhelm_marker"] + 0.35*a["crisis_language"] +
		0.15*a["escalation_pattern"] - 0.20*a["safety_seeking"]
	if entityUrgency := c.Entity.TypicalUrgency; entityUrgency > 0 {
		urgency = urgency*0.85 + entityUrgency*0.15
	}
	if urgency < 0 {
		urgency = 0
	}
	if urgency > 1 {
		urgency = 1
	}

	res.NDAM = &NDAMDetail{UrgencyLevel: urgency}
	return res
}
