// Package emission implements the Emission Generator and Response
// Assembler (C9): direct / fusion / learned-fallback phrase emission
// selected by confidence, then assembled into the final response text.
package emission

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/axo-lotto/dae-hyphae/internal/atoms"
	"github.com/axo-lotto/dae-hyphae/internal/llmclient"
	"github.com/axo-lotto/dae-hyphae/internal/nexus"
	"github.com/axo-lotto/dae-hyphae/internal/organs"
)

// Path is the chosen emission strategy.
type Path string

const (
	PathDirect  Path = "direct"
	PathFusion  Path = "fusion"
	PathLearned Path = "learned"
	PathMinimal Path = "minimal"
)

// Result is the final emission handed back to the caller.
type Result struct {
	Text       string
	Confidence float64
	Path       Path
}

// Thresholds are the confidence cut points from config, passed in rather
// than imported from internal/config to keep this package decoupled from
// the tunable-loading mechanism.
type Thresholds struct {
	Direct  float64
	Fusion  float64
	Minimal float64
}

// Generate selects a strategy from the top (already sorted, classified,
// governed) nexuses and produces the emission text (spec.md §4.9).
func Generate(ctx context.Context, top []nexus.Nexus, zone string, safety nexus.SafetyLevel, v0 float64, entity organs.EntityPrehension, temporal organs.TemporalContext, organResults map[atoms.Organ]organs.Result, llm llmclient.Client, timeout time.Duration, th Thresholds) Result {
	if len(top) == 0 {
		return Result{Text: pickMinimal(safety), Confidence: 0, Path: PathMinimal}
	}

	confidence := top[0].EmissionReadiness
	breach := safety == nexus.SafetyBreach || zone == "Z5_exile_collapse"

	if confidence < th.Minimal || breach {
		return Result{Text: pickMinimal(safety), Confidence: confidence, Path: PathMinimal}
	}

	intensity := intensityFor(v0, safety)
	opener := entityOpener(entity)

	switch {
	case confidence >= th.Direct:
		phrase := directPhrase(top[0], intensity)
		return Result{Text: assemble(opener, []string{phrase}, top[0].TherapeuticStance), Confidence: confidence, Path: PathDirect}

	case confidence >= th.Fusion:
		phrases := fusionPhrases(top, organResults)
		return Result{Text: assemble(opener, phrases, top[0].TherapeuticStance), Confidence: confidence, Path: PathFusion}

	default:
		prompt := learnedPrompt(top, zone, temporal, entity)
		text, ok := llm.Generate(ctx, prompt, 96, timeout)
		if !ok || strings.TrimSpace(text) == "" {
			return Result{Text: pickMinimal(safety), Confidence: confidence, Path: PathMinimal}
		}
		return Result{Text: assemble(opener, []string{text}, top[0].TherapeuticStance), Confidence: confidence, Path: PathLearned}
	}
}

func intensityFor(v0 float64, safety nexus.SafetyLevel) Intensity {
	switch {
	case safety == nexus.SafetyBreach:
		return IntensityLow
	case v0 > 0.7 && safety == nexus.SafetySafe:
		return IntensityHigh
	default:
		return IntensityMedium
	}
}

func directPhrase(n nexus.Nexus, intensity Intensity) string {
	if variants, ok := canonicalPhrases[n.Atom]; ok {
		if p, ok := variants[intensity]; ok {
			return p
		}
	}
	return humanize(n.Atom) + "."
}

func fusionPhrases(top []nexus.Nexus, organResults map[atoms.Organ]organs.Result) []string {
	n := top
	if len(n) > 3 {
		n = n[:3]
	}
	grief := organResults[atoms.Empathy].AtomActivations["grief_resonance"]

	type ranked struct {
		rank int
		text string
	}
	var fragments []ranked
	for _, nx := range n {
		frag, ok := fusionFragments[nx.Atom]
		if !ok {
			frag = humanize(nx.Atom)
		}
		if grief > 0.4 {
			if gfrag, ok := fusionFragments["grief_resonance"]; ok {
				frag = gfrag
			}
		}
		fragments = append(fragments, ranked{rank: roleRank(primaryParticipant(nx.Participants)), text: frag})
	}
	for i := 0; i < len(fragments); i++ {
		for j := i + 1; j < len(fragments); j++ {
			if fragments[j].rank < fragments[i].rank {
				fragments[i], fragments[j] = fragments[j], fragments[i]
			}
		}
	}
	out := make([]string, len(fragments))
	for i, f := range fragments {
		out[i] = f.text
	}
	return out
}

func learnedPrompt(top []nexus.Nexus, zone string, temporal organs.TemporalContext, entity organs.EntityPrehension) string {
	var types []string
	for _, n := range top {
		if len(types) >= 3 {
			break
		}
		types = append(types, string(n.NexusType))
	}
	return fmt.Sprintf(
		"Respond as a trauma-aware companion. Top nexus types: %s. SELF zone: %s. Time of day: %s. Known entities: %v. Keep it short, warm, and non-prescriptive.",
		strings.Join(types, ", "), zone, temporal.TimeOfDay, entity.Entities,
	)
}

func pickMinimal(safety nexus.SafetyLevel) string {
	idx := 0
	if safety == nexus.SafetyBreach {
		idx = 2 // "Let's just breathe together for a second." — most grounding of the set
	}
	return minimalHoldingPhrases[idx%len(minimalHoldingPhrases)]
}

func humanize(atomName string) string {
	return strings.ReplaceAll(atomName, "_", " ")
}
