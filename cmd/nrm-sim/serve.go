package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/daniacca/nextreaction/internal/nrm"
	"github.com/daniacca/nextreaction/internal/nrm/notifiers"
)

// newServeCommand exposes a model over HTTP: connected WebSocket clients
// watch jump events stream as trajectories are triggered.
func newServeCommand(root *rootOptions) *cobra.Command {
	var (
		modelFile string
		addr      string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a model with live WebSocket event streaming",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := NewLogger(root.LogLevel)

			model, opts, err := loadModelAndOptions(modelFile, logger)
			if err != nil {
				return err
			}

			wsNotifier := notifiers.NewWebSocketNotifier("live")
			notifMgr := nrm.NewNotificationManager(logger)
			if err := notifMgr.RegisterNotifier(wsNotifier); err != nil {
				return err
			}
			defer notifMgr.Close()

			opts.Notifications = notifMgr
			opts.NotifierIDs = []string{"live"}
			manager := nrm.NewEnsembleManager(model, opts)

			mux := http.NewServeMux()
			mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				fmt.Fprintln(w, "ok")
			})
			mux.HandleFunc("/stream", func(w http.ResponseWriter, r *http.Request) {
				upgrader := wsNotifier.Upgrader()
				conn, err := upgrader.Upgrade(w, r, nil)
				if err != nil {
					logger.Errorf("websocket upgrade failed: %v", err)
					return
				}
				wsNotifier.RegisterClient(conn)
			})
			mux.HandleFunc("/run", func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
					return
				}
				handleRun(w, r, model, opts, manager, logger)
			})
			mux.HandleFunc("/runs", func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, map[string]any{"runs": manager.ListRuns()})
			})

			logger.Infof("serving model %s on %s", model.Name, addr)
			return http.ListenAndServe(addr, mux)
		},
	}

	cmd.Flags().StringVar(&modelFile, "model", "", "path to model YAML file (required)")
	cmd.Flags().StringVar(&addr, "addr", ":8080", "HTTP listen address")
	cmd.MarkFlagRequired("model")
	return cmd
}

// handleRun triggers one trajectory, streaming its events to connected
// clients, and returns the trajectory metadata.
func handleRun(w http.ResponseWriter, r *http.Request, model *nrm.Model, opts nrm.SimulatorOptions, manager *nrm.EnsembleManager, logger nrm.Logger) {
	runOpts := opts
	if raw := r.URL.Query().Get("seed"); raw != "" {
		seed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			http.Error(w, fmt.Sprintf("invalid seed %q", raw), http.StatusBadRequest)
			return
		}
		runOpts.Seed = seed
	}

	sim, err := nrm.NewSimulator(model, runOpts)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	traj, err := sim.Run()
	if err != nil {
		logger.Errorf("run failed: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	manager.Retain(traj)
	writeJSON(w, map[string]any{
		"run_id":     traj.RunID,
		"seed":       traj.Seed,
		"jumps":      traj.Jumps,
		"final_time": traj.FinalTime,
	})
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
