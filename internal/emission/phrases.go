package emission

// Intensity is the emission register chosen by V0 and safety (spec.md
// §4.9): high when V0>0.7 and safety=safe, low when safety=breach,
// medium otherwise.
type Intensity string

const (
	IntensityLow    Intensity = "low"
	IntensityMedium Intensity = "medium"
	IntensityHigh   Intensity = "high"
)

// canonicalPhrases holds, per atom/meta-atom name, the direct-path
// canonical phrase at each intensity. Entries cover the meta-atom library
// (bridged, emotionally legible phrases) plus the handful of
// constitutional/crisis atoms most likely to be a lone top nexus.
var canonicalPhrases = map[string]map[Intensity]string{
	"fierce_holding": {
		IntensityLow:    "I'm here with you.",
		IntensityMedium: "I'm staying close to this with you, as fiercely as you need.",
		IntensityHigh:   "I'm holding this with you fiercely, all the way through.",
	},
	"grounded_witnessing": {
		IntensityLow:    "I see you.",
		IntensityMedium: "I'm here, grounded, and I see what you're carrying.",
		IntensityHigh:   "I'm fully here, grounded, witnessing everything you're bringing.",
	},
	"embodied_truth": {
		IntensityLow:    "That's real.",
		IntensityMedium: "What you just said sounds true, and it matters.",
		IntensityHigh:   "That truth lands, fully, and I want to stay with it.",
	},
	"wise_compassion": {
		IntensityLow:    "That makes sense.",
		IntensityMedium: "There's a pattern here worth naming gently.",
		IntensityHigh:   "I can see the larger pattern here, and I want to hold it with real compassion.",
	},
	"protective_urgency": {
		IntensityLow:    "Let's slow down together.",
		IntensityMedium: "This feels urgent — let's find your footing together.",
		IntensityHigh:   "This is urgent, and I'm right here helping you find solid ground right now.",
	},
	"narrative_grounding": {
		IntensityLow:    "That timeline makes sense.",
		IntensityMedium: "It sounds like this is still close, even with time passing.",
		IntensityHigh:   "However much time has passed, what you're feeling right now is still valid.",
	},
	"safety_signaling": {
		IntensityLow:    "You're safe right now.",
		IntensityMedium: "Let's check in on how safe this moment feels for you.",
		IntensityHigh:   "I want to help you find safety in your body, right now.",
	},
	"relational_repair": {
		IntensityLow:    "I'm still with you.",
		IntensityMedium: "Let's repair this thread together, one piece at a time.",
		IntensityHigh:   "I want to help repair this with you, carefully and fully.",
	},
	"timed_attunement": {
		IntensityLow:    "One small step at a time.",
		IntensityMedium: "Let's take this at whatever pace feels right for you.",
		IntensityHigh:   "We can slow all the way down and take this one breath at a time.",
	},
	"integrative_emergence": {
		IntensityLow:    "Something's coming together.",
		IntensityMedium: "It feels like the pieces are starting to connect.",
		IntensityHigh:   "Everything you've shared is coming together into something whole.",
	},
	"grief_resonance": {
		IntensityLow:    "That's a real loss.",
		IntensityMedium: "That grief makes complete sense, however long it's been.",
		IntensityHigh:   "That loss is real, and there's no timeline for how long it should ache.",
	},
	"dorsal_cue": {
		IntensityLow:    "You're here. I'm here.",
		IntensityMedium: "Let's just notice this moment together.",
		IntensityHigh:   "Let's just notice this moment together.",
	},
}

// fusionFragments are shorter noun/clause fragments used to build a fused
// sentence from up to three top nexuses, keyed the same way as
// canonicalPhrases.
var fusionFragments = map[string]string{
	"fierce_holding":        "hold this fiercely with you",
	"grounded_witnessing":   "witness what you're carrying",
	"embodied_truth":        "sit with what's true here",
	"wise_compassion":       "name the pattern gently",
	"protective_urgency":    "find your footing",
	"narrative_grounding":   "make sense of the timeline",
	"safety_signaling":      "check in on your safety",
	"relational_repair":     "repair this thread",
	"timed_attunement":      "take this at your pace",
	"integrative_emergence": "bring the pieces together",
	"grief_resonance":       "sit with this grief",
	"joy_resonance":         "celebrate this with you",
	"shame_attunement":      "hold this without judgment",
	"fear_attunement":       "stay close while this feels scary",
	"threat_appraisal":      "check what feels unsafe",
	"self_energy":           "trust what's steady in you",
}

// minimalHoldingPhrases is the curated minimal-holding set (spec.md §4.9):
// a single short sentence, never composed from a nexus, used below 0.50
// confidence in Z5 or safety=breach.
var minimalHoldingPhrases = []string{
	"I'm right here with you.",
	"You're not alone in this moment.",
	"Let's just breathe together for a second.",
	"I'm not going anywhere.",
	"You're safe with me right now.",
}
