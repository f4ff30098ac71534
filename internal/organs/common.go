package organs

import (
	"strings"

	"github.com/axo-lotto/dae-hyphae/internal/atoms"
	"github.com/axo-lotto/dae-hyphae/internal/vecmath"
)

// EmbeddingDim is the fixed prototype/sentence-embedding width (spec.md §3:
// "one prototype embedding per atom (384-D)").
const EmbeddingDim = 384

// keywordTable maps each atom name to a small bag of trigger words used by
// the pattern-based lure path. Kept alongside the catalog's atom names
// rather than inside the catalog itself: the catalog only owns immutable
// atom identity, not organ-specific detection heuristics.
var keywordTable = map[string][]string{
	"reflective_echo":       {"hear", "listening", "i hear", "sounds like"},
	"clarifying_question":   {"what do you mean", "can you say more", "clarify"},
	"silence_holding":       {"...", "pause", "i don't know what to say"},
	"paraphrase":            {"so what you're saying", "in other words"},
	"attentive_presence":    {"i'm here", "listening closely"},
	"tracking_detail":       {"specifically", "detail", "exactly"},
	"open_invitation":       {"tell me more", "go on", "what else"},

	"grief_resonance":       {"died", "loss", "grief", "miss", "gone"},
	"joy_resonance":         {"happy", "joy", "excited", "wonderful"},
	"shame_attunement":      {"ashamed", "humiliated", "worthless"},
	"fear_attunement":       {"afraid", "scared", "terrified", "anxious"},
	"compassionate_witness": {"i understand", "that sounds hard"},
	"emotional_mirroring":   {"feel", "feeling", "felt"},
	"tender_validation":     {"makes sense", "valid", "okay to feel"},
	"felt_sense_naming":     {"in my body", "i feel it in"},

	"pattern_naming":        {"always", "every time", "pattern"},
	"values_clarification":  {"what matters", "important to me", "value"},
	"perspective_widening":  {"another way", "consider", "perspective"},
	"paradox_holding":       {"both true", "at the same time", "paradox"},
	"meaning_making":        {"means", "meaning", "why did this happen"},
	"long_view":             {"over time", "years from now", "eventually"},

	"honest_naming":         {"honestly", "truth is", "i have to say"},
	"boundary_honoring":     {"boundary", "i need space", "not okay with"},
	"vulnerability_modeling": {"i'm scared to say", "vulnerable"},
	"congruence_check":      {"does that match", "consistent"},
	"truth_gentle":          {"gently", "i want to be honest"},
	"non_performance":       {"no agenda", "not performing"},

	"grounding_now":         {"right now", "in this moment", "present"},
	"body_awareness":        {"body", "tension", "chest", "stomach"},
	"breath_anchor":         {"breathe", "breath", "inhale"},
	"sensory_orienting":     {"look around", "notice", "see", "hear", "feel the"},
	"stillness":             {"still", "quiet", "calm"},
	"here_and_now":          {"today", "this moment"},

	"self_energy":           {"calm", "curious", "compassionate", "clear"},
	"manager_part":          {"control", "perfect", "plan everything"},
	"firefighter_part":      {"numb it", "escape", "shut down", "rage"},
	"exile_part":            {"little", "small", "helpless", "alone", "abandoned"},
	"unburdening":           {"let go of", "release", "unburden"},
	"self_leadership":       {"i can lead", "i trust myself"},
	"protector_dialogue":    {"protecting me", "protector"},
	"compassionate_curiosity": {"curious about", "wonder why"},

	"narrative_coherence":   {"the story of", "makes sense now"},
	"sense_repair":          {"doesn't make sense", "confused about what happened"},
	"timeline_stitching":    {"then", "after that", "before that"},
	"identity_thread":       {"who i am", "my identity"},
	"story_gap":             {"i don't remember", "blank", "missing piece"},
	"meaning_restoration":   {"now it makes sense", "understand why"},

	"threat_appraisal":      {"danger", "threat", "unsafe"},
	"urgency_spike":         {"right now", "emergency", "can't wait"},
	"overwhelm_marker":      {"overwhelmed", "too much", "falling apart"},
	"safety_seeking":        {"need help", "am i safe", "keep me safe"},
	"crisis_language":       {"can't go on", "give up", "end it"},
	"escalation_pattern":    {"getting worse", "escalating", "spiraling"},

	"temporal_anchor":       {"today", "yesterday", "two months ago"},
	"rumination_loop":       {"keep thinking about", "over and over"},
	"suspended_time":        {"time stopped", "frozen", "stuck in time"},
	"repetition_marker":     {"again and again", "same thing happens"},
	"future_orientation":    {"going to", "will happen", "future"},
	"past_intrusion":        {"back then", "flashback", "reminds me of"},

	"ventral_cue":           {"safe", "connected", "at ease"},
	"sympathetic_cue":       {"racing heart", "on edge", "can't sit still"},
	"dorsal_cue":            {"numb", "nothing", "can't feel anything", "shut down"},
	"co_regulation_bid":     {"can you stay with me", "help me calm down"},
	"neuroception_shift":    {"suddenly felt", "something shifted"},
	"mobilization_marker":   {"need to move", "pacing", "can't stop moving"},

	"scale_micro":           {"right this second", "tiny step"},
	"scale_session":         {"this conversation", "today's talk"},
	"scale_relationship":    {"our relationship", "between us"},
	"scale_systemic":        {"the whole system", "everyone involved"},
	"pacing_signal":         {"slow down", "too fast"},
	"dosing_signal":         {"a little at a time", "small dose"},

	"emergent_convergence":  {"everything connects", "it all fits"},
	"cross_organ_resonance": {"resonates", "echoes across"},
	"integration_point":     {"bringing it together", "integrate"},
	"synthesis_marker":      {"synthesis", "all of this means"},
	"field_crystallization": {"crystal clear", "suddenly clear"},
	"holonic_bridge":        {"part of a larger", "bigger picture"},
	"whole_pattern":         {"whole pattern", "the whole thing"},
}

// patternActivations returns, per atom name in names, the fraction of that
// atom's keyword triggers that appear (case-insensitively) in text.
func patternActivations(text string, names []string) map[string]float64 {
	lower := strings.ToLower(text)
	out := make(map[string]float64, len(names))
	for _, n := range names {
		triggers := keywordTable[n]
		if len(triggers) == 0 {
			out[n] = 0
			continue
		}
		hits := 0
		for _, t := range triggers {
			if strings.Contains(lower, t) {
				hits++
			}
		}
		out[n] = float64(hits) / float64(len(triggers))
	}
	return out
}

// sentenceEmbedding derives a deterministic bag-of-words embedding for text.
// This stands in for the external sentence-embedding model spec.md assumes;
// the organ's contract (cosine similarity against atom prototypes, then
// softmax) is what matters, not the embedding's provenance.
func sentenceEmbedding(text string, dim int) []float64 {
	v := make([]float64, dim)
	words := strings.Fields(strings.ToLower(text))
	if len(words) == 0 {
		return v
	}
	for _, w := range words {
		var h uint32 = 2166136261
		for i := 0; i < len(w); i++ {
			h ^= uint32(w[i])
			h *= 16777619
		}
		for i := range v {
			h = h*1103515245 + 12345
			v[i] += float64((h>>8)%2000)/1000.0 - 1.0
		}
	}
	scale := 1.0 / float64(len(words))
	for i := range v {
		v[i] *= scale
	}
	return v
}

// embeddingActivations returns cosine-similarity-softmax scores of the
// input embedding against each atom's prototype.
func embeddingActivations(inputEmbedding []float64, catalogAtoms []atoms.Atom) map[string]float64 {
	sims := make([]float64, len(catalogAtoms))
	for i, a := range catalogAtoms {
		sims[i] = vecmath.CosineSimilarity(inputEmbedding, a.Prototype)
	}
	soft := vecmath.Softmax(sims)
	out := make(map[string]float64, len(catalogAtoms))
	for i, a := range catalogAtoms {
		out[a.Name] = soft[i]
	}
	return out
}

// lureField combines the pattern-based and embedding-based lure paths per
// spec.md §4.2: 0.7*pattern + 0.3*embedding, renormalized to sum to 1.
func lureField(pattern, embedding map[string]float64, names []string) map[string]float64 {
	combined := make(map[string]float64, len(names))
	sum := 0.0
	for _, n := range names {
		v := 0.7*pattern[n] + 0.3*embedding[n]
		combined[n] = v
		sum += v
	}
	if sum == 0 {
		u := 1.0 / float64(len(names))
		for _, n := range names {
			combined[n] = u
		}
		return combined
	}
	for _, n := range names {
		combined[n] /= sum
	}
	return combined
}

func maxValue(m map[string]float64) float64 {
	max := 0.0
	for _, v := range m {
		if v > max {
			max = v
		}
	}
	return max
}

func atomNamesOf(catalogAtoms []atoms.Atom) []string {
	out := make([]string, len(catalogAtoms))
	for i, a := range catalogAtoms {
		out[i] = a.Name
	}
	return out
}
