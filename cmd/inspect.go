package cmd

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/signlab-io/gesturetrain/internal/classes"
	"github.com/signlab-io/gesturetrain/internal/manifest"
	"github.com/spf13/cobra"
)

func newInspectCmd() *cobra.Command {
	var manifestPath string

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Print per-class statistics from a dataset manifest",
		Example: `  # Inspect an assembled dataset
  gesturetrain inspect --manifest ./data/manifest.parquet`,
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := manifest.Load(manifestPath)
			if err != nil {
				return err
			}

			stats := manifest.Summarize(records)

			totalFiles := 0
			var totalBytes int64
			present := make([]string, 0, len(stats))
			fmt.Printf("%-8s %8s %12s %10s\n", "CLASS", "FILES", "SIZE", "SYNTHETIC")
			for _, s := range stats {
				fmt.Printf("%-8s %8d %12s %10d\n", s.Class, s.Files, humanize.Bytes(uint64(s.Bytes)), s.Synthetic)
				totalFiles += s.Files
				totalBytes += s.Bytes
				present = append(present, s.Class)
			}
			fmt.Printf("\nTotal: %d files across %d classes, %s\n", totalFiles, len(stats), humanize.Bytes(uint64(totalBytes)))

			unknown, missing := classes.Default().Audit(present)
			if len(unknown) > 0 {
				fmt.Printf("Warning: classes outside the catalog: %s\n", strings.Join(unknown, ", "))
			}
			if len(missing) > 0 {
				fmt.Printf("Warning: catalog classes with no examples: %s\n", strings.Join(missing, ", "))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&manifestPath, "manifest", "", "Path to the dataset manifest (required)")
	_ = cmd.MarkFlagRequired("manifest")

	return cmd
}
