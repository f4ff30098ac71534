package atoms

// organAtomNames is the static per-organ atom vocabulary (6–11 atoms per
// organ, 7 for NEXUS per spec.md §4.1). Names double as the pattern-path
// keyword anchors consumed by internal/organs.
var organAtomNames = map[Organ][]string{
	Listening: {
		"reflective_echo", "clarifying_question", "silence_holding",
		"paraphrase", "attentive_presence", "tracking_detail",
		"open_invitation",
	},
	Empathy: {
		"grief_resonance", "joy_resonance", "shame_attunement",
		"fear_attunement", "compassionate_witness", "emotional_mirroring",
		"tender_validation", "felt_sense_naming",
	},
	Wisdom: {
		"pattern_naming", "values_clarification", "perspective_widening",
		"paradox_holding", "meaning_making", "long_view",
	},
	Authenticity: {
		"honest_naming", "boundary_honoring", "vulnerability_modeling",
		"congruence_check", "truth_gentle", "non_performance",
	},
	Presence: {
		"grounding_now", "body_awareness", "breath_anchor",
		"sensory_orienting", "stillness", "here_and_now",
	},
	Bond: {
		"self_energy", "manager_part", "firefighter_part", "exile_part",
		"unburdening", "self_leadership", "protector_dialogue",
		"compassionate_curiosity",
	},
	Sans: {
		"narrative_coherence", "sense_repair", "timeline_stitching",
		"identity_thread", "story_gap", "meaning_restoration",
	},
	Ndam: {
		"threat_appraisal", "urgency_spike", "overwhelm_marker",
		"safety_seeking", "crisis_language", "escalation_pattern",
	},
	Rnx: {
		"temporal_anchor", "rumination_loop", "suspended_time",
		"repetition_marker", "future_orientation", "past_intrusion",
	},
	Eo: {
		"ventral_cue", "sympathetic_cue", "dorsal_cue", "co_regulation_bid",
		"neuroception_shift", "mobilization_marker",
	},
	Card: {
		"scale_micro", "scale_session", "scale_relationship",
		"scale_systemic", "pacing_signal", "dosing_signal",
	},
	NexusOrgan: {
		"emergent_convergence", "cross_organ_resonance", "integration_point",
		"synthesis_marker", "field_crystallization", "holonic_bridge",
		"whole_pattern",
	},
}

type metaAtomDef struct {
	name   string
	organs []Organ
}

// metaAtomDefs are the 10 meta-atoms bridging 2–3 organs each (spec.md
// §4.1), named for the compound semantics they represent.
var metaAtomDefs = []metaAtomDef{
	{"fierce_holding", []Organ{Empathy, Authenticity, Bond}},
	{"grounded_witnessing", []Organ{Presence, Listening, Empathy}},
	{"embodied_truth", []Organ{Authenticity, Presence}},
	{"wise_compassion", []Organ{Wisdom, Empathy}},
	{"protective_urgency", []Organ{Ndam, Bond}},
	{"narrative_grounding", []Organ{Sans, Rnx, Presence}},
	{"safety_signaling", []Organ{Eo, Ndam}},
	{"relational_repair", []Organ{Bond, Empathy, Sans}},
	{"timed_attunement", []Organ{Card, Rnx}},
	{"integrative_emergence", []Organ{NexusOrgan, Wisdom, Bond}},
}
