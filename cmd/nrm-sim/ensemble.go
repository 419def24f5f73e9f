package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/daniacca/nextreaction/internal/nrm"
	"github.com/daniacca/nextreaction/internal/store"
)

// newEnsembleCommand runs many independent trajectories and reports the
// mean final state.
func newEnsembleCommand(root *rootOptions) *cobra.Command {
	var (
		modelFile string
		runs      int
		endTime   float64
		seed      int64
		dbPath    string
	)

	cmd := &cobra.Command{
		Use:   "ensemble",
		Short: "Simulate an ensemble of independent trajectories",
		RunE: func(cmd *cobra.Command, args []string) error {
			if runs <= 0 {
				return fmt.Errorf("--runs must be positive, got %d", runs)
			}
			logger := NewLogger(root.LogLevel)

			model, opts, err := loadModelAndOptions(modelFile, logger)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("end-time") {
				opts.EndTime = endTime
			}
			if cmd.Flags().Changed("seed") {
				opts.Seed = seed
			}

			manager := nrm.NewEnsembleManager(model, opts)
			trajectories, err := manager.RunMany(runs)
			if err != nil {
				return err
			}

			if dbPath != "" {
				db, err := store.New(dbPath)
				if err != nil {
					return err
				}
				defer db.Close()
				for _, traj := range trajectories {
					if err := db.SaveTrajectory(traj); err != nil {
						return fmt.Errorf("persisting trajectory %s: %w", traj.RunID, err)
					}
				}
				logger.Infof("%d trajectories saved to %s", len(trajectories), dbPath)
			}

			mean := nrm.MeanFinalState(trajectories)
			totalJumps := 0
			for _, traj := range trajectories {
				totalJumps += traj.Jumps
			}

			if root.Format == "json" {
				out, err := json.MarshalIndent(map[string]any{
					"model":            model.Name,
					"runs":             runs,
					"base_seed":        opts.Seed,
					"total_jumps":      totalJumps,
					"mean_final_state": mean,
				}, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(out))
				return nil
			}

			fmt.Fprintf(cmd.OutOrStdout(), "ensemble of %d runs (model %s, base seed %d)\n", runs, model.Name, opts.Seed)
			fmt.Fprintf(cmd.OutOrStdout(), "total jumps: %d\n", totalJumps)
			fmt.Fprintf(cmd.OutOrStdout(), "mean final state: %v\n", mean)
			return nil
		},
	}

	cmd.Flags().StringVar(&modelFile, "model", "", "path to model YAML file (required)")
	cmd.Flags().IntVar(&runs, "runs", 100, "number of independent trajectories")
	cmd.Flags().Float64Var(&endTime, "end-time", 0, "simulation horizon (overrides model file)")
	cmd.Flags().Int64Var(&seed, "seed", 0, "base RNG seed, split per run (overrides model file)")
	cmd.Flags().StringVar(&dbPath, "db", "", "optional SQLite database to persist all trajectories")
	cmd.MarkFlagRequired("model")
	return cmd
}
