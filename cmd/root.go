package cmd

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gesturetrain",
		Short: "ASL gesture dataset preparation and model training tool",
		Long: `Gesturetrain prepares class-labeled image datasets for ASL gesture recognition
and trains a gesture classification model on them.

The prepare command samples images from source datasets into a directory-per-class
layout and synthesizes a "None" (no gesture) background class. The train command
loads the assembled dataset, trains a model, evaluates it, and exports the artifact.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
		},
	}

	// Add subcommands
	cmd.AddCommand(newPrepareCmd())
	cmd.AddCommand(newTrainCmd())
	cmd.AddCommand(newFetchCmd())
	cmd.AddCommand(newInspectCmd())

	return cmd
}
