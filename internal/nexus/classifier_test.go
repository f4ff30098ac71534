package nexus

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/axo-lotto/dae-hyphae/internal/atoms"
	"github.com/axo-lotto/dae-hyphae/internal/organs"
)

func resultsWith(bond *organs.BondDetail, eo *organs.EODetail, ndam *organs.NDAMDetail, rnx *organs.RNXDetail) map[atoms.Organ]organs.Result {
	out := make(map[atoms.Organ]organs.Result, len(atoms.All))
	for _, o := range atoms.All {
		out[o] = organs.Result{Organ: o}
	}
	b := out[atoms.Bond]
	b.Bond = bond
	out[atoms.Bond] = b
	e := out[atoms.Eo]
	e.EO = eo
	out[atoms.Eo] = e
	n := out[atoms.Ndam]
	n.NDAM = ndam
	out[atoms.Ndam] = n
	r := out[atoms.Rnx]
	r.RNX = rnx
	out[atoms.Rnx] = r
	return out
}

func TestClassifyHighUrgencyIsCrisis(t *testing.T) {
	n := &Nexus{Participants: []atoms.Organ{atoms.Ndam, atoms.Eo}}
	results := resultsWith(
		&organs.BondDetail{SelfDistance: 0.5, DominantPart: organs.PartFirefighter},
		&organs.EODetail{PolyvagalState: organs.Sympathetic},
		&organs.NDAMDetail{UrgencyLevel: 0.9},
		&organs.RNXDetail{TemporalState: organs.TemporalNormal},
	)
	Classify(n, results)
	assert.Equal(t, CrisisOriented, n.NexusCategory)
	assert.Equal(t, TypeUrgency, n.NexusType)
}

func TestClassifyDorsalIsDissociative(t *testing.T) {
	n := &Nexus{Participants: []atoms.Organ{atoms.Eo, atoms.Bond}}
	results := resultsWith(
		&organs.BondDetail{SelfDistance: 0.7, DominantPart: organs.PartExile},
		&organs.EODetail{PolyvagalState: organs.Dorsal},
		&organs.NDAMDetail{UrgencyLevel: 0.6},
		&organs.RNXDetail{TemporalState: organs.TemporalNormal},
	)
	Classify(n, results)
	assert.Equal(t, CrisisOriented, n.NexusCategory)
	assert.Equal(t, TypeDissociative, n.NexusType)
}

func TestClassifyConstitutionalPreExisting(t *testing.T) {
	n := &Nexus{Participants: []atoms.Organ{atoms.Listening, atoms.Presence}}
	results := resultsWith(
		&organs.BondDetail{SelfDistance: 0.05, DominantPart: organs.PartSelf},
		&organs.EODetail{PolyvagalState: organs.Ventral},
		&organs.NDAMDetail{UrgencyLevel: 0.1},
		&organs.RNXDetail{TemporalState: organs.TemporalNormal},
	)
	Classify(n, results)
	assert.Equal(t, Constitutional, n.NexusCategory)
	assert.Equal(t, TypePreExisting, n.NexusType)
}

func TestClassifyDeterministic(t *testing.T) {
	n1 := &Nexus{Participants: []atoms.Organ{atoms.Wisdom, atoms.Authenticity}}
	n2 := &Nexus{Participants: []atoms.Organ{atoms.Wisdom, atoms.Authenticity}}
	results := resultsWith(
		&organs.BondDetail{SelfDistance: 0.4, DominantPart: organs.PartManager},
		&organs.EODetail{PolyvagalState: organs.Ventral},
		&organs.NDAMDetail{UrgencyLevel: 0.2},
		&organs.RNXDetail{TemporalState: organs.TemporalNormal},
	)
	Classify(n1, results)
	Classify(n2, results)
	assert.Equal(t, n1.NexusType, n2.NexusType)
	assert.Equal(t, n1.ClassificationConfidence, n2.ClassificationConfidence)
}
