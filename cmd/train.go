package cmd

import (
	"fmt"

	"github.com/signlab-io/gesturetrain/internal/trainer"
	"github.com/spf13/cobra"
)

func newTrainCmd() *cobra.Command {
	var dataDir string
	var outputDir string
	var epochs int
	var batchSize int
	var learningRate float64
	var resourceDir string
	var seed int64

	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train the gesture recognition model on an assembled dataset",
		Long: `Train loads a directory-per-class image dataset (as produced by prepare),
splits it 80/10/10 into train/validation/test partitions, trains a gesture
classification model, evaluates it on the test partition, and exports the
trained artifact to the output directory.

If --resource-dir points at an existing directory, the artifact is also
copied there so a development checkout of the consuming application picks
it up.`,
		Example: `  # Train with defaults on the assembled dataset
  gesturetrain train --data-dir ./data

  # Shorter run with a larger batch
  gesturetrain train --data-dir ./data --epochs 10 --batch-size 64`,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine := trainer.NewGomlxEngine(seed)

			report, err := trainer.Run(engine, trainer.Options{
				DataDir:      dataDir,
				OutputDir:    outputDir,
				Epochs:       epochs,
				BatchSize:    batchSize,
				LearningRate: learningRate,
				ResourceDir:  resourceDir,
			})
			if err != nil {
				return err
			}

			fmt.Printf("\nTraining complete!\n")
			fmt.Printf("  Classes: %d\n", report.NumClasses)
			fmt.Printf("  Examples: %d train / %d validation / %d test\n",
				report.TrainExamples, report.ValidationExamples, report.TestExamples)
			fmt.Printf("  Artifact: %s\n", report.ArtifactPath)
			if report.ResourceCopyPath != "" {
				fmt.Printf("  Copied to resources: %s\n", report.ResourceCopyPath)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dataDir, "data-dir", "", "Path to the assembled training data directory (required)")
	cmd.Flags().StringVar(&outputDir, "output-dir", "./output", "Output directory for the trained artifact")
	cmd.Flags().IntVar(&epochs, "epochs", 30, "Training epochs")
	cmd.Flags().IntVar(&batchSize, "batch-size", 32, "Batch size")
	cmd.Flags().Float64Var(&learningRate, "learning-rate", 0.005, "Learning rate")
	cmd.Flags().StringVar(&resourceDir, "resource-dir", "", "Existing directory to copy the artifact into (skipped if absent)")
	cmd.Flags().Int64Var(&seed, "seed", 42, "Random seed for the dataset shuffle before partitioning")

	_ = cmd.MarkFlagRequired("data-dir")

	return cmd
}
