// Package turn implements the top-level turn orchestrator: wiring organ
// prehension through the concrescence loop, nexus composition and
// classification, SELF-matrix governance, emission, and the post-emission
// learning subsystems into a single process_turn call (spec.md §5/§6).
package turn

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/axo-lotto/dae-hyphae/internal/atoms"
	"github.com/axo-lotto/dae-hyphae/internal/concrescence"
	"github.com/axo-lotto/dae-hyphae/internal/config"
	"github.com/axo-lotto/dae-hyphae/internal/emission"
	"github.com/axo-lotto/dae-hyphae/internal/entitytracker"
	"github.com/axo-lotto/dae-hyphae/internal/epoch"
	"github.com/axo-lotto/dae-hyphae/internal/family"
	"github.com/axo-lotto/dae-hyphae/internal/hebbian"
	"github.com/axo-lotto/dae-hyphae/internal/ids"
	"github.com/axo-lotto/dae-hyphae/internal/llmclient"
	"github.com/axo-lotto/dae-hyphae/internal/nexus"
	"github.com/axo-lotto/dae-hyphae/internal/organs"
	"github.com/axo-lotto/dae-hyphae/internal/selfmatrix"
	"github.com/axo-lotto/dae-hyphae/internal/tsk"
)

// Request is the input to one turn (spec.md §6).
type Request struct {
	UserID           string
	UserInput        string
	UserSatisfaction *float64 // optional explicit feedback in [0,1], applied to this turn's Hebbian gate, entity/epoch learning and TSK record
	Temporal         organs.TemporalContext
	Mentioned        []string // entity names recognized in UserInput, by the caller's own entity recognizer
}

// Result is process_turn's return value (spec.md §6).
type Result struct {
	TurnID             string          `json:"turn_id"`
	EmissionText       string          `json:"emission_text"`
	EmissionPath       emission.Path   `json:"emission_path"`
	EmissionConfidence float64         `json:"emission_confidence"`
	ConvergenceReason  string          `json:"convergence_reason"`
	CyclesRun          int             `json:"cycles_run"`
	FinalV0            float64         `json:"final_v0"`
	SelfDistance       float64         `json:"self_distance"`
	Zone               selfmatrix.Zone `json:"zone"`
	Regime             string          `json:"regime"`
	TopNexuses         []nexus.Nexus   `json:"nexuses"`
}

// Organism holds every piece of process-wide state a turn touches: the
// immutable catalog and organ roster, and the mutable learning subsystems
// guarded by their own internal locks plus this orchestrator's per-user
// serialization.
type Organism struct {
	cfg     config.Config
	catalog *atoms.Catalog
	roster  []organs.Organ

	rMatrix  *hebbian.Matrix
	families *family.Learner
	entities *entitytracker.Tracker
	epochs   *epoch.Orchestrator
	recorder *tsk.Recorder
	llm      llmclient.Client

	userLocksMu sync.Mutex
	userLocks   map[string]*sync.Mutex

	// recentMu guards recentInputs, the per-user bounded ring of the last
	// N turns' UserInput (spec.md's supplemented bounded conversation
	// window), feeding RNX's looped/repeating detection (§4.7) on the next
	// turn. Locked independently of userLocks since different users' turns
	// run concurrently and may touch the ring map at the same time.
	recentMu     sync.Mutex
	recentInputs map[string][]string
}

// New wires an Organism from its already-loaded/constructed subsystems.
// Callers (cmd/dae) are responsible for Load-ing durable state at startup
// and Save-ing it at shutdown or on a periodic tick.
func New(cfg config.Config, catalog *atoms.Catalog, rMatrix *hebbian.Matrix, families *family.Learner, entities *entitytracker.Tracker, epochs *epoch.Orchestrator, recorder *tsk.Recorder, llm llmclient.Client) *Organism {
	return &Organism{
		cfg:          cfg,
		catalog:      catalog,
		roster:       organs.NewAll(catalog),
		rMatrix:      rMatrix,
		families:     families,
		entities:     entities,
		epochs:       epochs,
		recorder:     recorder,
		llm:          llm,
		userLocks:    make(map[string]*sync.Mutex),
		recentInputs: make(map[string][]string),
	}
}

// lockFor returns the per-user serialization mutex, creating one on first
// use (spec.md §5: a user's turns are processed one at a time; different
// users' turns run concurrently).
func (o *Organism) lockFor(userID string) *sync.Mutex {
	o.userLocksMu.Lock()
	defer o.userLocksMu.Unlock()
	l, ok := o.userLocks[userID]
	if !ok {
		l = &sync.Mutex{}
		o.userLocks[userID] = l
	}
	return l
}

// recentRing returns a copy of userID's recent-input ring, oldest first.
func (o *Organism) recentRing(userID string) []string {
	o.recentMu.Lock()
	defer o.recentMu.Unlock()
	ring := o.recentInputs[userID]
	out := make([]string, len(ring))
	copy(out, ring)
	return out
}

// pushRecent appends input to userID's ring, trimming to the configured
// ring size (oldest dropped first).
func (o *Organism) pushRecent(userID, input string) {
	o.recentMu.Lock()
	defer o.recentMu.Unlock()
	size := o.cfg.RecentInputsRingSize
	if size <= 0 {
		return
	}
	ring := append(o.recentInputs[userID], input)
	if len(ring) > size {
		ring = ring[len(ring)-size:]
	}
	o.recentInputs[userID] = ring
}

// Process runs one full turn end to end. The configured turn budget is a
// deadline on the turn context; of the pipeline, only the emission step's
// external-model call observes it. The concrescence loop does not check
// the budget: its length is bounded by MaxCycles alone.
func (o *Organism) Process(ctx context.Context, req Request) Result {
	lock := o.lockFor(req.UserID)
	lock.Lock()
	defer lock.Unlock()

	start := time.Now()

	turnCtx, cancel := context.WithTimeout(ctx, time.Duration(o.cfg.TurnBudgetSeconds*float64(time.Second)))
	defer cancel()

	turnID := ids.New()

	entityBoost := o.entities.PredictBoost(req.UserID, req.Mentioned)
	entity := organs.EntityPrehension{
		Entities:   req.Mentioned,
		OrganBoost: entityBoost,
	}

	base := organs.Context{
		Ctx:          turnCtx,
		UserInput:    req.UserInput,
		Entity:       entity,
		Temporal:     req.Temporal,
		RecentInputs: o.recentRing(req.UserID),
	}
	o.pushRecent(req.UserID, req.UserInput)

	selfDistanceBefore := o.currentSelfDistance()

	outcome := concrescence.Run(o.cfg, o.roster, o.catalog, o.rMatrix, base)

	finalFields := outcome.FinalFields
	candidates := nexus.Compose(finalFields, o.rMatrix, outcome.ActivationThreshold, lastCoherenceGate(outcome), o.cfg.NexusBar)
	nexus.ClassifyAll(candidates, outcome.FinalOrganResults)

	selfDistance := selfDistanceBefore
	if bond := outcome.FinalOrganResults[atoms.Bond].Bond; bond != nil {
		selfDistance = bond.SelfDistance
	}
	satisfaction := lastSatisfaction(outcome)

	var zone selfmatrix.Zone
	for i := range candidates {
		zone = selfmatrix.Govern(&candidates[i], selfDistance, satisfaction)
	}
	if len(candidates) == 0 {
		zone = selfmatrix.ZoneOf(selfDistance)
	}

	top := nexus.SelectTop(candidates, o.cfg.TopKNexuses, 0.02)

	var safety nexus.SafetyLevel = nexus.SafetyEdge
	if len(top) > 0 {
		safety = top[0].SafetyLevel
	}

	thresholds := emission.Thresholds{
		Direct:  o.cfg.DirectConfidence,
		Fusion:  o.cfg.FusionConfidence,
		Minimal: o.cfg.MinimalConfidence,
	}
	timeout := time.Duration(o.cfg.ExternalModelTimeoutSeconds * float64(time.Second))
	emitted := emission.Generate(turnCtx, top, string(zone), safety, outcome.Occasions[len(outcome.Occasions)-1].V0, entity, req.Temporal, outcome.FinalOrganResults, o.llm, timeout, thresholds)

	o.postEmission(req, turnID, outcome, candidates, selfDistanceBefore, selfDistance, zone, emitted, time.Since(start).Seconds())

	return Result{
		TurnID:             turnID,
		EmissionText:       emitted.Text,
		EmissionPath:       emitted.Path,
		EmissionConfidence: emitted.Confidence,
		ConvergenceReason:  outcome.ConvergenceReason,
		CyclesRun:          len(outcome.Occasions),
		FinalV0:            outcome.Occasions[len(outcome.Occasions)-1].V0,
		SelfDistance:       selfDistance,
		Zone:               zone,
		Regime:             o.epochs.Regime(),
		TopNexuses:         top,
	}
}

// postEmission runs C10 (Hebbian update) through C14 (TSK record) after
// the emission has already been decided. It runs synchronously inside
// Process, under the user's lock, so Process returns only after these
// updates and the TSK write have finished.
func (o *Organism) postEmission(req Request, turnID string, outcome concrescence.Outcome, candidates []nexus.Nexus, selfDistanceBefore, selfDistanceAfter float64, zone selfmatrix.Zone, emitted emission.Result, elapsedSeconds float64) {
	coherence := make(map[atoms.Organ]float64, len(atoms.All))
	for _, or := range atoms.All {
		coherence[or] = outcome.FinalOrganResults[or].Coherence
	}

	gate := hebbian.GateNeutral
	if req.UserSatisfaction != nil {
		switch {
		case *req.UserSatisfaction >= 0.6:
			gate = hebbian.GatePositive
		case *req.UserSatisfaction < 0.3:
			gate = hebbian.GateNegative
		}
	} else if emitted.Confidence >= o.cfg.DirectConfidence {
		gate = hebbian.GatePositive
	}
	effectiveRate := o.epochs.EffectiveHebbianRate(o.cfg, o.rMatrix.StdDev())
	o.rMatrix.Update(coherence, effectiveRate, gate)

	beforeZone := selfmatrix.ZoneOf(selfDistanceBefore)
	var beforePolyvagal, afterPolyvagal organs.PolyvagalState
	if eo := outcome.Occasions[0].OrganResults[atoms.Eo].EO; eo != nil {
		beforePolyvagal = eo.PolyvagalState
	}
	if eo := outcome.FinalOrganResults[atoms.Eo].EO; eo != nil {
		afterPolyvagal = eo.PolyvagalState
	}
	var beforeUrgency, afterUrgency float64
	if ndam := outcome.Occasions[0].OrganResults[atoms.Ndam].NDAM; ndam != nil {
		beforeUrgency = ndam.UrgencyLevel
	}
	if ndam := outcome.FinalOrganResults[atoms.Ndam].NDAM; ndam != nil {
		afterUrgency = ndam.UrgencyLevel
	}

	sig := family.BuildSignature(outcome, beforeZone, zone, beforePolyvagal, afterPolyvagal, beforeUrgency, afterUrgency, pathToFamily(emitted.Path))
	familyID, _ := o.families.Assign(sig)

	satisfied := emitted.Confidence >= o.cfg.FusionConfidence
	if req.UserSatisfaction != nil {
		satisfied = *req.UserSatisfaction >= 0.5
	}
	o.entities.Observe(req.UserID, req.Mentioned, entitytracker.Observation{
		OrganCoherence: coherence,
		Zone:           string(zone),
		Polyvagal:      string(afterPolyvagal),
		Urgency:        afterUrgency,
		V0:             outcome.Occasions[len(outcome.Occasions)-1].V0,
		Satisfied:      satisfied,
	})

	nexusWon := emitted.Path == emission.PathDirect || emitted.Path == emission.PathFusion
	tokens := tokenize(req.UserInput)
	o.epochs.Record(epoch.Observation{
		WordOrganActivations:    wordOrganActivations(tokens, outcome.FinalOrganResults),
		CycleConvergenceBucket:  convergenceBucket(afterPolyvagal, afterUrgency),
		CycleConvergenceSpeed:   1.0 / float64(len(outcome.Occasions)),
		GatePass:                gatePass(coherence, o.cfg.ActivationThreshold),
		NexusWon:                nexusWon,
		NexusAccuracy:           boolToFloat(satisfied),
		NexusProcessingSeconds:  elapsedSeconds,
		NeighborOrganBoost:      neighborOrganBoost(tokens, outcome.FinalOrganResults),
		OrganConfidence:         organConfidence(coherence, satisfied),
	}, o.cfg)

	rec := tsk.Record{
		TurnID:             turnID,
		UserID:             req.UserID,
		Timestamp:          time.Now(),
		UserInput:          req.UserInput,
		CyclesRun:          len(outcome.Occasions),
		ConvergenceReason:  outcome.ConvergenceReason,
		FinalV0:            outcome.Occasions[len(outcome.Occasions)-1].V0,
		FinalCoherence:     coherence,
		TopNexuses:         candidates,
		SelfDistanceBefore: selfDistanceBefore,
		SelfDistanceAfter:  selfDistanceAfter,
		EmissionText:       emitted.Text,
		EmissionPath:       string(emitted.Path),
		EmissionConfidence: emitted.Confidence,
		Regime:             o.epochs.Regime(),
		FamilyID:           familyID,
		UserSatisfaction:   req.UserSatisfaction,
	}
	o.recorder.Persist(rec)
}

func (o *Organism) currentSelfDistance() float64 {
	return 0.2 // neutral starting SELF-distance for a fresh context window; real deployments would thread the prior turn's SelfDistance in via Request.
}

func pathToFamily(p emission.Path) family.EmissionPath {
	switch p {
	case emission.PathDirect:
		return family.PathDirect
	case emission.PathFusion:
		return family.PathFusion
	case emission.PathLearned:
		return family.PathLearned
	default:
		return ""
	}
}

func lastSatisfaction(outcome concrescence.Outcome) float64 {
	if len(outcome.Occasions) == 0 {
		return 0
	}
	return outcome.Occasions[len(outcome.Occasions)-1].Satisfaction
}

func lastCoherenceGate(outcome concrescence.Outcome) float64 {
	if len(outcome.Occasions) == 0 {
		return 0
	}
	return outcome.Occasions[len(outcome.Occasions)-1].FieldCoherence
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// tokenize splits input into lowercased words with surrounding punctuation
// trimmed, so a word's epoch-tracker key does not depend on its case or on
// punctuation next to it.
func tokenize(input string) []string {
	fields := strings.Fields(strings.ToLower(input))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, ".,!?;:\"'()")
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

// wordOrganActivations is epoch tracker (i): for every token whose own atom
// fired (AtomActivations[token] > 0) in some organ's final-cycle result,
// record that organ's activation under the word.
func wordOrganActivations(tokens []string, results map[atoms.Organ]organs.Result) map[string]map[atoms.Organ]float64 {
	out := make(map[string]map[atoms.Organ]float64)
	for _, tok := range tokens {
		for organ, res := range results {
			v, ok := res.AtomActivations[tok]
			if !ok || v <= 0 {
				continue
			}
			byOrgan, ok := out[tok]
			if !ok {
				byOrgan = make(map[atoms.Organ]float64)
				out[tok] = byOrgan
			}
			byOrgan[organ] = v
		}
	}
	return out
}

// neighborWindowSpan is how many words on each side of a matched word form
// its neighbor-pair key (spec.md §4.13(v): "left/right 3-neighbor pairs").
const neighborWindowSpan = 3

// neighborOrganBoost is epoch tracker (v): for every token whose own atom
// fired in some organ, key that organ's activation by the up-to-3 words on
// either side of it, so repeated phrasing around a trigger word accrues
// its own boost independent of the word-occasion tracker.
func neighborOrganBoost(tokens []string, results map[atoms.Organ]organs.Result) map[string]map[atoms.Organ]float64 {
	out := make(map[string]map[atoms.Organ]float64)
	for i, tok := range tokens {
		left := tokens[max(0, i-neighborWindowSpan):i]
		right := tokens[i+1 : min(len(tokens), i+1+neighborWindowSpan)]
		key := strings.Join(left, "_") + ">" + tok + "<" + strings.Join(right, "_")

		for organ, res := range results {
			v, ok := res.AtomActivations[tok]
			if !ok || v <= 0 {
				continue
			}
			byOrgan, ok := out[key]
			if !ok {
				byOrgan = make(map[atoms.Organ]float64)
				out[key] = byOrgan
			}
			byOrgan[organ] = v
		}
	}
	return out
}

// urgencyBucket buckets NDAM's urgency appraisal into three bands for
// epoch tracker (ii)'s polyvagal x urgency convergence-speed key.
func urgencyBucket(urgency float64) string {
	switch {
	case urgency < 1.0/3.0:
		return "low"
	case urgency < 2.0/3.0:
		return "mid"
	default:
		return "high"
	}
}

func convergenceBucket(polyvagal organs.PolyvagalState, urgency float64) string {
	p := string(polyvagal)
	if p == "" {
		p = "unknown"
	}
	return p + ":" + urgencyBucket(urgency)
}

// gatePass is epoch tracker (iii): whether each organ's final coherence
// cleared the cycle's activation gate this turn.
func gatePass(coherence map[atoms.Organ]float64, activationThreshold float64) map[atoms.Organ]bool {
	out := make(map[atoms.Organ]bool, len(coherence))
	for organ, c := range coherence {
		out[organ] = c >= activationThreshold
	}
	return out
}

// organConfidence is epoch tracker (vi): each organ's own coherence this
// turn, discounted when the turn as a whole did not satisfy, so an organ
// that stays confident through unsatisfying turns is told apart from one
// whose confidence tracks actual outcomes (spec.md §4.13(vi) requires
// std >= 0.08 differentiation across organs, which a uniform discount
// would erase if coherence itself were already flat — it is not, since
// organs specialize on different input).
func organConfidence(coherence map[atoms.Organ]float64, satisfied bool) map[atoms.Organ]float64 {
	discount := 1.0
	if !satisfied {
		discount = 0.5
	}
	out := make(map[atoms.Organ]float64, len(coherence))
	for organ, c := range coherence {
		out[organ] = c * discount
	}
	return out
}

// SaveAll persists every durable subsystem under stateDir, using the same
// file names spec.md's persisted-state layout fixes. It saves as much as
// it can and joins every error rather than stopping at the first one,
// since a failed family save shouldn't prevent the Hebbian matrix from
// being written.
func (o *Organism) SaveAll(stateDir string) error {
	var errs []error
	if err := o.rMatrix.Save(filepath.Join(stateDir, "hebbian_r_matrix.json")); err != nil {
		errs = append(errs, err)
	}
	if err := o.families.Save(filepath.Join(stateDir, "organic_families.json")); err != nil {
		errs = append(errs, err)
	}
	if err := o.entities.Save(filepath.Join(stateDir, "entity_organ_associations.json")); err != nil {
		errs = append(errs, err)
	}
	if err := o.epochs.Save(filepath.Join(stateDir, "epoch_trackers.json")); err != nil {
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("turn: %d subsystem(s) failed to persist: %v", len(errs), errs)
}

// Diagnostics returns a process snapshot for the diagnostics CLI
// subcommand (spec.md's supplemented "bounded conversation window and
// diagnostics snapshot" feature): current regime, Hebbian dispersion, and
// mature family count, without exposing any single user's data.
func (o *Organism) Diagnostics() string {
	regime, trackers := o.epochs.Snapshot()
	mature := o.families.MatureFamilies()
	bottleneck, haveBottleneck := trackers.BottleneckGate()
	if !haveBottleneck {
		bottleneck = "none"
	}
	return fmt.Sprintf(
		"regime=%s hebbian_stddev=%.4f mature_families=%d organ_confidence=%.3f organ_confidence_stddev=%.3f bottleneck_gate=%s",
		regime, o.rMatrix.StdDev(), len(mature), trackers.MeanOrganConfidence(), trackers.OrganConfidenceStdDev(), bottleneck,
	)
}
