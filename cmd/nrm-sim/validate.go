package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/daniacca/nextreaction/internal/nrm"
)

// newValidateCommand checks a model file and prints its resolved summary.
func newValidateCommand(root *rootOptions) *cobra.Command {
	var modelFile string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a model file and print its channel layout",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := nrm.LoadModelConfig(modelFile)
			if err != nil {
				return err
			}
			model, err := nrm.BuildModelFromConfig(cfg)
			if err != nil {
				return err
			}

			if root.Format == "json" {
				out, err := json.MarshalIndent(map[string]any{
					"name":     model.Name,
					"species":  model.NumSpecies(),
					"channels": model.NumChannels(),
					"valid":    true,
				}, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(out))
				return nil
			}

			fmt.Fprint(cmd.OutOrStdout(), model.Summary())
			return nil
		},
	}

	cmd.Flags().StringVar(&modelFile, "model", "", "path to model YAML file (required)")
	cmd.MarkFlagRequired("model")
	return cmd
}
