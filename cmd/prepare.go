package cmd

import (
	"github.com/signlab-io/gesturetrain/internal/assemble"
	"github.com/signlab-io/gesturetrain/internal/classes"
	"github.com/spf13/cobra"
)

func newPrepareCmd() *cobra.Command {
	var alphabetSource string
	var numbersSource string
	var output string
	var samplesPerClass int
	var seed int64
	var validate bool

	cmd := &cobra.Command{
		Use:   "prepare",
		Short: "Assemble a training dataset from the source image collections",
		Long: `Prepare samples images from the alphabet and numbers source datasets into a
directory-per-class layout, and synthesizes a "None" background class of
random-noise images.

Any existing directory at the output path is removed first. Missing source
classes are skipped with a warning. A manifest of every emitted file is
written into the output tree.`,
		Example: `  # Sample 200 images per class with the default seed
  gesturetrain prepare --alphabet-source ./asl_alphabet_train --numbers-source ./Train_Nums

  # Smaller reproducible sample into a custom directory
  gesturetrain prepare --alphabet-source ./letters --numbers-source ./nums \
    --output ./data --samples-per-class 50 --seed 7`,
		RunE: func(cmd *cobra.Command, args []string) error {
			assembler := assemble.New(assemble.Config{
				AlphabetDir:     alphabetSource,
				NumbersDir:      numbersSource,
				OutputDir:       output,
				SamplesPerClass: samplesPerClass,
				Seed:            seed,
				Classes:         classes.Default(),
				Validate:        validate,
			})

			summaries, err := assembler.Run()
			if err != nil {
				return err
			}

			assemble.PrintSummary(summaries, output)
			return nil
		},
	}

	cmd.Flags().StringVar(&alphabetSource, "alphabet-source", "", "Path to the alphabet training data (required)")
	cmd.Flags().StringVar(&numbersSource, "numbers-source", "", "Path to the numbers training data (required)")
	cmd.Flags().StringVar(&output, "output", "./data", "Output directory for the assembled dataset")
	cmd.Flags().IntVar(&samplesPerClass, "samples-per-class", 200, "Number of images to sample per class")
	cmd.Flags().Int64Var(&seed, "seed", 42, "Random seed for reproducible sampling")
	cmd.Flags().BoolVar(&validate, "validate", false, "Decode each sampled image and skip unreadable files")

	_ = cmd.MarkFlagRequired("alphabet-source")
	_ = cmd.MarkFlagRequired("numbers-source")

	return cmd
}
