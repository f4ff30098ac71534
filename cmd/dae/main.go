// Command dae runs the organism's process/diagnostics CLI: a thin cobra
// wrapper over internal/turn, following the way o9nn-echo.go's cmd/echo.go
// wraps its embodied-cognition core in cobra subcommands.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/axo-lotto/dae-hyphae/internal/atoms"
	"github.com/axo-lotto/dae-hyphae/internal/config"
	"github.com/axo-lotto/dae-hyphae/internal/entitytracker"
	"github.com/axo-lotto/dae-hyphae/internal/epoch"
	"github.com/axo-lotto/dae-hyphae/internal/family"
	"github.com/axo-lotto/dae-hyphae/internal/hebbian"
	"github.com/axo-lotto/dae-hyphae/internal/ids"
	"github.com/axo-lotto/dae-hyphae/internal/llmclient"
	"github.com/axo-lotto/dae-hyphae/internal/obs"
	"github.com/axo-lotto/dae-hyphae/internal/organs"
	"github.com/axo-lotto/dae-hyphae/internal/tsk"
	"github.com/axo-lotto/dae-hyphae/internal/turn"
)

const appName = "dae-hyphae"

func main() {
	root := &cobra.Command{
		Use:   appName,
		Short: "DAE_HYPHAE conversational organism",
		Long:  "Run, inspect, and exercise a turn of the trauma-aware DAE_HYPHAE organism.",
	}

	var (
		stateDir   string
		configPath string
		verbose    bool
	)
	root.PersistentFlags().StringVar(&stateDir, "state-dir", defaultStateDir(), "directory for persisted learning state")
	root.PersistentFlags().StringVar(&configPath, "config", "", "optional YAML config file overriding tunables")
	root.PersistentFlags().BoolVar(&verbose, "verbose", false, "enable debug logging")

	root.AddCommand(newProcessCmd(&stateDir, &configPath, &verbose))
	root.AddCommand(newDiagnosticsCmd(&stateDir, &configPath, &verbose))

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func defaultStateDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./.dae-hyphae"
	}
	return filepath.Join(home, ".dae-hyphae")
}

func newProcessCmd(stateDir, configPath *string, verbose *bool) *cobra.Command {
	var userID string
	var satisfaction float64
	var haveSatisfaction bool
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "process USER_INPUT",
		Short: "Process one turn of user input and print the emitted response",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			applyVerbosity(*verbose)
			org, cfg, err := bootstrap(*stateDir, *configPath)
			if err != nil {
				return err
			}
			defer persistAll(org, *stateDir)

			req := turn.Request{
				UserID:    userID,
				UserInput: args[0],
				Temporal:  currentTemporalContext(),
			}
			if haveSatisfaction {
				req.UserSatisfaction = &satisfaction
			}

			result := org.Process(context.Background(), req)
			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				if err := enc.Encode(result); err != nil {
					return fmt.Errorf("dae: encoding result: %w", err)
				}
			} else {
				fmt.Println(result.EmissionText)
			}
			if *verbose {
				fmt.Fprintf(os.Stderr, "turn=%s path=%s confidence=%.2f cycles=%d reason=%s zone=%s regime=%s\n",
					result.TurnID, result.EmissionPath, result.EmissionConfidence, result.CyclesRun,
					result.ConvergenceReason, result.Zone, result.Regime)
			}
			_ = cfg
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "local", "user identifier for per-user learning state")
	cmd.Flags().Float64Var(&satisfaction, "satisfaction", 0, "optional explicit satisfaction signal in [0,1] for this turn")
	cmd.Flags().BoolVar(&haveSatisfaction, "have-satisfaction", false, "set to apply --satisfaction to this turn's Hebbian gate")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full TurnResult as JSON instead of just the emission text")
	return cmd
}

func newDiagnosticsCmd(stateDir, configPath *string, verbose *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "diagnostics",
		Short: "Print a process-wide snapshot: regime, Hebbian dispersion, mature families",
		RunE: func(cmd *cobra.Command, args []string) error {
			applyVerbosity(*verbose)
			org, _, err := bootstrap(*stateDir, *configPath)
			if err != nil {
				return err
			}
			fmt.Println(org.Diagnostics())
			return nil
		},
	}
}

func applyVerbosity(verbose bool) {
	if verbose {
		obs.SetLevel(slog.LevelDebug)
	}
}

// bootstrap loads the catalog and every durable subsystem from stateDir,
// wiring a fresh Organism. Missing state files are not an error — the Load
// functions in internal/{family,entitytracker,epoch} treat "never
// persisted" as a valid starting point, and loadOrNewHebbian does the same
// for the Hebbian matrix, whose own Load reports a missing file as an error.
func bootstrap(stateDir, configPath string) (*turn.Organism, config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, cfg, fmt.Errorf("dae: loading config: %w", err)
	}

	catalog, err := atoms.Load(organs.EmbeddingDim)
	if err != nil {
		return nil, cfg, fmt.Errorf("dae: loading catalog: %w", err)
	}

	if err := os.MkdirAll(stateDir, 0o755); err != nil {
		return nil, cfg, fmt.Errorf("dae: creating state dir: %w", err)
	}

	rMatrix, err := loadOrNewHebbian(filepath.Join(stateDir, "hebbian_r_matrix.json"), cfg.HebbianRMax)
	if err != nil {
		return nil, cfg, err
	}

	families, err := family.Load(filepath.Join(stateDir, "organic_families.json"),
		cfg.FamilyEMAAlpha, cfg.FamilySimilarityInitial, cfg.FamilySimilarityMid, cfg.FamilySimilarityMature,
		cfg.MinFamilySize, ids.New)
	if err != nil {
		return nil, cfg, fmt.Errorf("dae: loading families: %w", err)
	}

	entities, err := entitytracker.Load(filepath.Join(stateDir, "entity_organ_associations.json"), cfg.EntityEMAAlpha)
	if err != nil {
		return nil, cfg, fmt.Errorf("dae: loading entity tracker: %w", err)
	}

	epochs, err := epoch.Load(filepath.Join(stateDir, "epoch_trackers.json"), cfg.EpochEMAAlpha)
	if err != nil {
		return nil, cfg, fmt.Errorf("dae: loading epoch orchestrator: %w", err)
	}

	recorder := tsk.New(filepath.Join(stateDir, "tsk_records"))

	var llm llmclient.Client = llmclient.Unavailable{}

	org := turn.New(cfg, catalog, rMatrix, families, entities, epochs, recorder, llm)
	return org, cfg, nil
}

func loadOrNewHebbian(path string, rMax float64) (*hebbian.Matrix, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return hebbian.New(rMax), nil
	}
	m, err := hebbian.Load(path)
	if err != nil {
		return nil, fmt.Errorf("dae: loading hebbian matrix: %w", err)
	}
	return m, nil
}

// persistAll saves every durable subsystem back to stateDir at the end of
// a process invocation. A long-running deployment (the webserver variant
// implied by spec.md's turn-budget/timeout language) would instead save
// on a periodic tick; the one-shot CLI saves once per invocation.
func persistAll(org *turn.Organism, stateDir string) {
	if err := org.SaveAll(stateDir); err != nil {
		obs.L().Error("dae: failed to persist state", "error", err)
	}
}

func currentTemporalContext() organs.TemporalContext {
	return organs.TemporalContext{
		TimeOfDay: "unspecified",
	}
}
