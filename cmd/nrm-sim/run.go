package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/daniacca/nextreaction/internal/nrm"
	"github.com/daniacca/nextreaction/internal/store"
)

// newRunCommand simulates one trajectory of a model file.
func newRunCommand(root *rootOptions) *cobra.Command {
	var (
		modelFile string
		endTime   float64
		seed      int64
		save      string
		maxJumps  int
		dbPath    string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Simulate a single trajectory",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := NewLogger(root.LogLevel)

			model, opts, err := loadModelAndOptions(modelFile, logger)
			if err != nil {
				return err
			}
			if err := applyRunFlags(cmd, &opts, endTime, seed, save, maxJumps); err != nil {
				return err
			}

			sim, err := nrm.NewSimulator(model, opts)
			if err != nil {
				return err
			}
			traj, err := sim.Run()
			if err != nil {
				return err
			}

			if dbPath != "" {
				db, err := store.New(dbPath)
				if err != nil {
					return err
				}
				defer db.Close()
				if err := db.SaveTrajectory(traj); err != nil {
					return fmt.Errorf("persisting trajectory: %w", err)
				}
				logger.Infof("trajectory %s saved to %s", traj.RunID, dbPath)
			}

			return printTrajectory(cmd, root, traj)
		},
	}

	cmd.Flags().StringVar(&modelFile, "model", "", "path to model YAML file (required)")
	cmd.Flags().Float64Var(&endTime, "end-time", 0, "simulation horizon (overrides model file)")
	cmd.Flags().Int64Var(&seed, "seed", 0, "RNG seed (overrides model file)")
	cmd.Flags().StringVar(&save, "save", "", "trajectory saves: none, pre, post, both (overrides model file)")
	cmd.Flags().IntVar(&maxJumps, "max-jumps", 0, "stop after this many jumps (overrides model file)")
	cmd.Flags().StringVar(&dbPath, "db", "", "optional SQLite database to persist the trajectory")
	cmd.MarkFlagRequired("model")
	return cmd
}

// loadModelAndOptions loads, validates, and builds a model file along with
// its bundled run options.
func loadModelAndOptions(path string, logger nrm.Logger) (*nrm.Model, nrm.SimulatorOptions, error) {
	cfg, err := nrm.LoadModelConfig(path)
	if err != nil {
		return nil, nrm.SimulatorOptions{}, err
	}
	model, err := nrm.BuildModelFromConfig(cfg)
	if err != nil {
		return nil, nrm.SimulatorOptions{}, err
	}
	opts, err := nrm.SimulatorOptionsFromConfig(cfg.Simulation)
	if err != nil {
		return nil, nrm.SimulatorOptions{}, err
	}
	opts.Logger = logger
	return model, opts, nil
}

// applyRunFlags layers explicit CLI flags over the model file's defaults.
func applyRunFlags(cmd *cobra.Command, opts *nrm.SimulatorOptions, endTime float64, seed int64, save string, maxJumps int) error {
	if cmd.Flags().Changed("end-time") {
		opts.EndTime = endTime
	}
	if cmd.Flags().Changed("seed") {
		opts.Seed = seed
	}
	if cmd.Flags().Changed("save") {
		sp, err := nrm.SavePositionsFromConfig(save)
		if err != nil {
			return err
		}
		opts.Save = sp
	}
	if cmd.Flags().Changed("max-jumps") {
		opts.MaxJumps = maxJumps
	}
	return nil
}

func printTrajectory(cmd *cobra.Command, root *rootOptions, traj *nrm.Trajectory) error {
	if root.Format == "json" {
		data, err := nrm.EncodeTrajectoryJSON(traj)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}

	fmt.Fprintf(cmd.OutOrStdout(), "run %s (model %s, seed %d)\n", traj.RunID, traj.Model, traj.Seed)
	fmt.Fprintf(cmd.OutOrStdout(), "jumps: %d, final time: %g\n", traj.Jumps, traj.FinalTime)
	if final := traj.FinalState(); final != nil {
		fmt.Fprintf(cmd.OutOrStdout(), "final state: %v\n", final)
	}
	return nil
}
