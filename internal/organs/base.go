package organs

import (
	"github.com/axo-lotto/dae-hyphae/internal/atoms"
)

// baseResult runs the shared pattern+embedding prehension pipeline for an
// organ and returns everything except the organ-specific detail fields,
// which individual organs attach afterward.
func baseResult(name atoms.Organ, catalog *atoms.Catalog, c Context) Result {
	catalogAtoms := catalog.AtomsFor(name)
	names := atomNamesOf(catalogAtoms)

	pattern := patternActivations(c.UserInput, names)
	emb := sentenceEmbedding(c.UserInput, EmbeddingDim)
	embActivations := embeddingActivations(emb, catalogAtoms)

	field := lureField(pattern, embActivations, names)

	// Atom activations are NOT the lure field: they are the raw,
	// unnormalized per-atom signal (spec.md §4.2): the same 0.7*pattern +
	// 0.3*embedding blend, without the lure field's renormalization.
	rawActivations := make(map[string]float64, len(names))
	for _, n := range names {
		rawActivations[n] = 0.7*pattern[n] + 0.3*embActivations[n]
	}

	// Coherence is the organ's quality-of-fit: its strongest raw
	// activation. A single strongly-triggered atom yields high coherence; a
	// weak signal yields low coherence.
	strongest := maxValue(rawActivations)
	coherence := strongest
	if boost, ok := c.Entity.OrganBoost[name]; ok {
		coherence = coherence*(1-0.3) + boost*0.3
	}
	if coherence > 1 {
		coherence = 1
	}
	if coherence < 0 {
		coherence = 0
	}

	return Result{
		Organ:           name,
		Coherence:       coherence,
		Lure:            maxValue(field),
		LureField:       field,
		AtomActivations: rawActivations,
	}
}

// Safe wraps an organ's Process call so that any panic becomes a neutral
// result instead of aborting the turn (spec.md §4.2 OrganFailure policy).
// catalog supplies the organ's own atom names so the recovered Neutral
// result still carries a uniform lure field summing to 1 (invariant 1)
// instead of an empty one.
func Safe(o Organ, catalog *atoms.Catalog, c Context) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			res = Neutral(o.Name(), atomNamesOf(catalog.AtomsFor(o.Name())))
		}
	}()
	return o.Process(c)
}
