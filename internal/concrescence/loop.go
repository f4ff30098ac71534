// Package concrescence implements the V0 Concrescence Loop (C5): the
// multi-cycle energy descent across 2-5 cycles that re-runs organ
// prehension, semantic-field extraction and meta-atom activation each
// cycle, tracking field coherence K and terminating on kairos, energy
// stabilization or morphogenetic crystallization.
package concrescence

import (
	"github.com/axo-lotto/dae-hyphae/internal/atoms"
	"github.com/axo-lotto/dae-hyphae/internal/config"
	"github.com/axo-lotto/dae-hyphae/internal/field"
	"github.com/axo-lotto/dae-hyphae/internal/hebbian"
	"github.com/axo-lotto/dae-hyphae/internal/organs"
	"github.com/axo-lotto/dae-hyphae/internal/prehension"
	"github.com/axo-lotto/dae-hyphae/internal/vecmath"
)

// catalog dependency is injected via Run's catalog parameter rather than
// stored in organs.Context, which stays a pure per-turn/per-cycle value.

// SubjectiveAim is the occasion's lure direction, intensity and ethical
// constraints (spec.md §3).
type SubjectiveAim struct {
	LureDirection     atoms.Organ
	Intensity         float64
	CoherenceTarget   float64
	SatisfactionGoal  float64
	EthicalWeight     float64
	SafetyConstrained bool
}

// Occasion is one cycle's full snapshot (spec.md §3).
type Occasion struct {
	CycleIndex     int
	OrganResults   map[atoms.Organ]organs.Result
	Fields         map[atoms.Organ]*field.SemanticField
	V0             float64
	FieldCoherence float64
	Satisfaction   float64
	KairosDetected bool
	SubjectiveAim  SubjectiveAim
}

// Outcome is the loop's final result, handed to nexus composition.
type Outcome struct {
	Occasions          []Occasion
	FinalFields        map[atoms.Organ]*field.SemanticField
	FinalOrganResults  map[atoms.Organ]organs.Result
	ConvergenceReason  string // "kairos", "energy_stable", "crystallization", "max_cycles"
	ActivationThreshold float64 // post tiered-reduction threshold for C6
}

// Run executes the multi-cycle loop for one turn.
func Run(cfg config.Config, roster []organs.Organ, cat *atoms.Catalog, rMatrix *hebbian.Matrix, base organs.Context) Outcome {
	var occasions []Occasion
	v0 := 1.0
	prevV0 := 1.0

	var (
		finalFields       map[atoms.Organ]*field.SemanticField
		finalOrganResults map[atoms.Organ]organs.Result
		reason            = "max_cycles"
		fieldCoherence    float64
	)

	for cycle := 1; cycle <= cfg.MaxCycles; cycle++ {
		cycleCtx := base
		cycleCtx.CycleIndex = cycle
		if len(occasions) > 0 {
			prior := occasions[len(occasions)-1]
			priorCoh := make(map[atoms.Organ]float64, len(prior.OrganResults))
			for o, r := range prior.OrganResults {
				priorCoh[o] = r.Coherence
			}
			cycleCtx.PriorCoherence = priorCoh
		}

		results := prehension.Run(roster, cat, cycleCtx)
		fields := field.Extract(results)
		field.ActivateMetaAtoms(fields, cat, cfg.BridgeThreshold, cfg.BridgeMinContribution)

		coherences := coherenceSlice(results)
		fieldCoherence = 1 - vecmath.StdDev(coherences)

		satisfaction := fieldCoherence
		meanPriorSatisfaction := meanSatisfaction(occasions)

		deltaE := v0 - prevV0
		agreement := fieldCoherence
		rWeighted := rMatrixWeightedCoherence(results, rMatrix)
		salience := salienceOf(results)
		lureContribution := rMatrixWeightedLure(results, rMatrix)

		e := cfg.Energy.Alpha*(1-meanPriorSatisfaction) +
			cfg.Energy.Beta*absf(deltaE) +
			cfg.Energy.Gamma*(1-agreement) +
			cfg.Energy.Delta*(1-rWeighted) +
			cfg.Energy.Zeta*salience +
			cfg.Energy.Eta*lureContribution

		prevV0 = v0
		v0 = vecmath.Clip(e, 0, 1)

		kairos := v0 >= cfg.KairosLow && v0 <= cfg.KairosHigh

		aim := buildSubjectiveAim(results, cfg, satisfaction)

		occasions = append(occasions, Occasion{
			CycleIndex:     cycle,
			OrganResults:   results,
			Fields:         fields,
			V0:             v0,
			FieldCoherence: fieldCoherence,
			Satisfaction:   satisfaction,
			KairosDetected: kairos,
			SubjectiveAim:  aim,
		})

		finalFields = fields
		finalOrganResults = results

		if kairos {
			reason = "kairos"
			break
		}
		if absf(v0-prevV0) < cfg.EnergyDeltaFloor {
			reason = "energy_stable"
			break
		}
		if salience >= cfg.CrystallizationFloor {
			reason = "crystallization"
			break
		}
	}

	return Outcome{
		Occasions:           occasions,
		FinalFields:         finalFields,
		FinalOrganResults:   finalOrganResults,
		ConvergenceReason:   reason,
		ActivationThreshold: tieredThreshold(cfg.ActivationThreshold, fieldCoherence),
	}
}

// tieredThreshold applies spec.md §4.5/§4.6's tiered nexus-threshold
// modulation: K>=0.70 -> 40% reduction, 0.50<=K<0.70 -> 20%, else none.
func tieredThreshold(base, k float64) float64 {
	switch {
	case k >= 0.70:
		return base * 0.60
	case k >= 0.50:
		return base * 0.80
	default:
		return base
	}
}

func coherenceSlice(results map[atoms.Organ]organs.Result) []float64 {
	out := make([]float64, 0, len(results))
	for _, o := range atoms.All {
		out = append(out, results[o].Coherence)
	}
	return out
}

func meanSatisfaction(occasions []Occasion) float64 {
	if len(occasions) == 0 {
		return 0
	}
	sum := 0.0
	for _, o := range occasions {
		sum += o.Satisfaction
	}
	return sum / float64(len(occasions))
}

func rMatrixWeightedCoherence(results map[atoms.Organ]organs.Result, m *hebbian.Matrix) float64 {
	var weightedSum, weightSum float64
	for i, oi := range atoms.All {
		for j, oj := range atoms.All {
			if j <= i {
				continue
			}
			ci, cj := results[oi].Coherence, results[oj].Coherence
			w := ci * cj
			if w == 0 {
				continue
			}
			weightedSum += m.Get(oi, oj) * w
			weightSum += w
		}
	}
	if weightSum == 0 {
		return 0
	}
	return weightedSum / weightSum
}

func rMatrixWeightedLure(results map[atoms.Organ]organs.Result, m *hebbian.Matrix) float64 {
	var weightedSum, weightSum float64
	for _, oi := range atoms.All {
		rowSum := 0.0
		for _, oj := range atoms.All {
			if oi == oj {
				continue
			}
			rowSum += m.Get(oi, oj)
		}
		w := rowSum / float64(len(atoms.All)-1)
		weightedSum += w * results[oi].Lure
		weightSum += w
	}
	if weightSum == 0 {
		return 0
	}
	return weightedSum / weightSum
}

// salienceOf is the morphogenetic-pressure input φ(I): spec.md §4.5 cites
// "morphogenetic pressure from salience" without fixing a formula; this
// deployment derives it from NDAM urgency and EO activation intensity,
// the two organs whose domain is "how much does this moment demand
// attention" (documented as an Open-Question resolution in DESIGN.md).
func salienceOf(results map[atoms.Organ]organs.Result) float64 {
	urgency := 0.0
	if ndam := results[atoms.Ndam].NDAM; ndam != nil {
		urgency = ndam.UrgencyLevel
	}
	eoCoherence := results[atoms.Eo].Coherence
	return vecmath.Clip(0.6*urgency+0.4*eoCoherence, 0, 1)
}

func buildSubjectiveAim(results map[atoms.Organ]organs.Result, cfg config.Config, satisfaction float64) SubjectiveAim {
	var lureOrgan atoms.Organ
	maxLure := -1.0
	sumLure := 0.0
	for _, o := range atoms.All {
		l := results[o].Lure
		sumLure += l
		if l > maxLure {
			maxLure, lureOrgan = l, o
		}
	}
	safety := false
	if ndam := results[atoms.Ndam].NDAM; ndam != nil && ndam.UrgencyLevel >= 0.5 {
		safety = true
	}
	if eo := results[atoms.Eo].EO; eo != nil && eo.PolyvagalState == organs.Dorsal {
		safety = true
	}
	return SubjectiveAim{
		LureDirection:     lureOrgan,
		Intensity:         sumLure / float64(len(atoms.All)),
		CoherenceTarget:   cfg.RegimeByName("CONVERGING").Tau,
		SatisfactionGoal:  satisfaction,
		EthicalWeight:     1.0,
		SafetyConstrained: safety,
	}
}

func absf(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
