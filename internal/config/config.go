// Package config loads the organism's tunables: concrescence weights,
// kairos window profile, regime table, and learning rates. It follows the
// viper-backed layering used by jubicudis-github-mcp-server's pkg/translations
// config loader: defaults, then an optional YAML file, then environment
// overrides for the keys that file sets.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// KairosProfile names one of the two windows documented in spec.md §9 Open
// Questions: the conversational window this spec fixes, or the ARC-AGI
// window kept selectable for alternate deployments.
type KairosProfile string

const (
	ProfileConversational KairosProfile = "conversational"
	ProfileARCAGI         KairosProfile = "arc_agi"
)

// EnergyWeights are the coefficients of E(t) in spec.md §4.5.
type EnergyWeights struct {
	Alpha float64 `mapstructure:"alpha" yaml:"alpha"`
	Beta  float64 `mapstructure:"beta" yaml:"beta"`
	Gamma float64 `mapstructure:"gamma" yaml:"gamma"`
	Delta float64 `mapstructure:"delta" yaml:"delta"`
	Zeta  float64 `mapstructure:"zeta" yaml:"zeta"`
	Eta   float64 `mapstructure:"eta" yaml:"eta"`
}

// Regime is one row of the regime table in spec.md §4.13.
type Regime struct {
	Name              string  `mapstructure:"name" yaml:"name"`
	Tau               float64 `mapstructure:"tau" yaml:"tau"`
	ExplorationEntropy float64 `mapstructure:"exploration_entropy" yaml:"exploration_entropy"`
	MinIterations     int     `mapstructure:"min_iterations" yaml:"min_iterations"`
	MaxIterations     int     `mapstructure:"max_iterations" yaml:"max_iterations"`
	HebbianRate       float64 `mapstructure:"hebbian_rate" yaml:"hebbian_rate"`
	V0LearningRate    float64 `mapstructure:"v0_learning_rate" yaml:"v0_learning_rate"`
	PromotionFloor    float64 `mapstructure:"promotion_floor" yaml:"promotion_floor"`
	RegressionFloor   float64 `mapstructure:"regression_floor" yaml:"regression_floor"`
}

// Config is the full set of tunables consumed by the core pipeline.
type Config struct {
	KairosProfile        KairosProfile `mapstructure:"kairos_profile" yaml:"kairos_profile"`
	KairosLow            float64       `mapstructure:"kairos_low" yaml:"kairos_low"`
	KairosHigh           float64       `mapstructure:"kairos_high" yaml:"kairos_high"`
	MaxCycles            int           `mapstructure:"max_cycles" yaml:"max_cycles"`
	EnergyDeltaFloor      float64      `mapstructure:"energy_delta_floor" yaml:"energy_delta_floor"`
	CrystallizationFloor float64       `mapstructure:"crystallization_floor" yaml:"crystallization_floor"`
	Energy               EnergyWeights `mapstructure:"energy" yaml:"energy"`
	ActivationThreshold  float64       `mapstructure:"activation_threshold" yaml:"activation_threshold"`
	BridgeThreshold      float64       `mapstructure:"bridge_threshold" yaml:"bridge_threshold"`
	BridgeMinContribution float64      `mapstructure:"bridge_min_contribution" yaml:"bridge_min_contribution"`
	TopKNexuses          int           `mapstructure:"top_k_nexuses" yaml:"top_k_nexuses"`
	NexusBar             float64       `mapstructure:"nexus_bar" yaml:"nexus_bar"`
	HebbianRate          float64       `mapstructure:"hebbian_rate" yaml:"hebbian_rate"`
	HebbianRMax          float64       `mapstructure:"hebbian_r_max" yaml:"hebbian_r_max"`
	FamilySimilarityInitial float64    `mapstructure:"family_similarity_initial" yaml:"family_similarity_initial"`
	FamilySimilarityMid     float64    `mapstructure:"family_similarity_mid" yaml:"family_similarity_mid"`
	FamilySimilarityMature  float64    `mapstructure:"family_similarity_mature" yaml:"family_similarity_mature"`
	FamilyEMAAlpha       float64       `mapstructure:"family_ema_alpha" yaml:"family_ema_alpha"`
	MinFamilySize        int           `mapstructure:"min_family_size" yaml:"min_family_size"`
	EntityEMAAlpha       float64       `mapstructure:"entity_ema_alpha" yaml:"entity_ema_alpha"`
	EpochEMAAlpha        float64       `mapstructure:"epoch_ema_alpha" yaml:"epoch_ema_alpha"`
	DirectConfidence     float64       `mapstructure:"direct_confidence" yaml:"direct_confidence"`
	FusionConfidence     float64       `mapstructure:"fusion_confidence" yaml:"fusion_confidence"`
	MinimalConfidence    float64       `mapstructure:"minimal_confidence" yaml:"minimal_confidence"`
	TurnBudgetSeconds    float64       `mapstructure:"turn_budget_seconds" yaml:"turn_budget_seconds"`
	ExternalModelTimeoutSeconds float64 `mapstructure:"external_model_timeout_seconds" yaml:"external_model_timeout_seconds"`
	RecentInputsRingSize int           `mapstructure:"recent_inputs_ring_size" yaml:"recent_inputs_ring_size"`
	Regimes              []Regime      `mapstructure:"regimes" yaml:"regimes"`
}

// Default returns the tunables fixed by spec.md, suitable as the base layer
// before any file/env overrides are applied.
func Default() Config {
	return Config{
		KairosProfile: ProfileConversational,
		KairosLow:     0.30,
		KairosHigh:    0.50,
		MaxCycles:     5,
		EnergyDeltaFloor:     0.1,
		CrystallizationFloor: 0.85,
		Energy: EnergyWeights{
			Alpha: 0.35, Beta: 0.10, Gamma: 0.15, Delta: 0.10, Zeta: 0.10, Eta: 0.20,
		},
		ActivationThreshold:   0.30,
		BridgeThreshold:       0.5,
		BridgeMinContribution: 0.3,
		TopKNexuses:           10,
		NexusBar:              0.10,
		HebbianRate:           0.05,
		HebbianRMax:           1.0,
		FamilySimilarityInitial: 0.55,
		FamilySimilarityMid:     0.65,
		FamilySimilarityMature:  0.75,
		FamilyEMAAlpha:        0.20,
		MinFamilySize:         3,
		EntityEMAAlpha:        0.15,
		EpochEMAAlpha:         0.10,
		DirectConfidence:      0.85,
		FusionConfidence:      0.70,
		MinimalConfidence:     0.50,
		TurnBudgetSeconds:     3.0,
		ExternalModelTimeoutSeconds: 5.0,
		RecentInputsRingSize:  5,
		Regimes: []Regime{
			{Name: "EXPLORING", Tau: 0.30, ExplorationEntropy: 0.30, MinIterations: 2, MaxIterations: 3, HebbianRate: 0.08, V0LearningRate: 0.15, PromotionFloor: 0.55, RegressionFloor: 0.20},
			{Name: "CONVERGING", Tau: 0.50, ExplorationEntropy: 0.15, MinIterations: 3, MaxIterations: 4, HebbianRate: 0.05, V0LearningRate: 0.10, PromotionFloor: 0.65, RegressionFloor: 0.35},
			{Name: "STABLE", Tau: 0.65, ExplorationEntropy: 0.05, MinIterations: 4, MaxIterations: 5, HebbianRate: 0.03, V0LearningRate: 0.08, PromotionFloor: 0.75, RegressionFloor: 0.45},
			{Name: "COMMITTED", Tau: 0.75, ExplorationEntropy: 0.00, MinIterations: 5, MaxIterations: 5, HebbianRate: 0.02, V0LearningRate: 0.05, PromotionFloor: 1.01, RegressionFloor: 0.55},
		},
	}
}

// Load reads defaults, then, when path is non-empty, merges the YAML file
// at path over them, using viper the way jubicudis-github-mcp-server's
// config loader layers defaults/file/env. A non-empty path whose file
// cannot be read is an error. DAE_-prefixed environment variables override
// only keys that the file itself sets; with an empty path the defaults are
// returned unchanged.
func Load(path string) (Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetEnvPrefix("DAE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return cfg, fmt.Errorf("config: reading %s: %w", path, err)
		}
		if err := v.Unmarshal(&cfg); err != nil {
			return cfg, fmt.Errorf("config: unmarshalling %s: %w", path, err)
		}
	}

	if cfg.KairosProfile == ProfileARCAGI {
		cfg.KairosLow, cfg.KairosHigh = 0.45, 0.70
	}

	return cfg, nil
}

// RegimeByName returns the regime row with the given name, or the first
// regime (EXPLORING) if not found.
func (c Config) RegimeByName(name string) Regime {
	for _, r := range c.Regimes {
		if r.Name == name {
			return r
		}
	}
	return c.Regimes[0]
}
