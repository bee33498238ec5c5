package assemble

import (
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/dustin/go-humanize"
	"github.com/signlab-io/gesturetrain/internal/classes"
	"github.com/signlab-io/gesturetrain/internal/manifest"
	"github.com/signlab-io/gesturetrain/internal/noise"
)

// DefaultManifestName is the manifest file written into the output tree.
const DefaultManifestName = "manifest.parquet"

// imageExtensions are the source file extensions recognized as images,
// matched case-insensitively.
var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".bmp":  true,
}

// Config holds everything one assembly run needs. Classes must be set by the
// caller; there are no package-level defaults to mutate.
type Config struct {
	AlphabetDir     string
	NumbersDir      string
	OutputDir       string
	SamplesPerClass int
	Seed            int64
	Classes         classes.Catalog

	// Validate decodes every sampled image before copying and skips
	// unreadable files with a warning.
	Validate bool

	// ManifestName overrides the manifest file name relative to OutputDir.
	// The extension selects the format (.parquet or .jsonl).
	ManifestName string
}

// ClassSummary reports what one class ended up with after assembly.
type ClassSummary struct {
	Class     string
	Files     int
	Available int
	Bytes     int64
	Synthetic bool
}

// Assembler samples class-labeled images from source trees into a unified
// directory-per-class output tree and synthesizes the negative class.
type Assembler struct {
	cfg Config
	rng *rand.Rand
}

// New creates an Assembler. All randomness (sampling and noise pixels) comes
// from a generator seeded with cfg.Seed, so runs over identical inputs are
// reproducible.
func New(cfg Config) *Assembler {
	if cfg.ManifestName == "" {
		cfg.ManifestName = DefaultManifestName
	}
	return &Assembler{
		cfg: cfg,
		rng: rand.New(rand.NewSource(cfg.Seed)),
	}
}

// Run executes the full assembly: destroys any pre-existing output tree,
// samples the letter and number classes, generates the negative class, and
// writes the manifest. Missing or empty source classes are warned about and
// skipped; the run still completes.
func (a *Assembler) Run() ([]ClassSummary, error) {
	if _, err := os.Stat(a.cfg.OutputDir); err == nil {
		slog.Info("Removing existing output directory", "path", a.cfg.OutputDir)
		if err := os.RemoveAll(a.cfg.OutputDir); err != nil {
			return nil, fmt.Errorf("failed to remove output directory: %w", err)
		}
	}
	if err := os.MkdirAll(a.cfg.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	var summaries []ClassSummary
	var records []manifest.Record

	slog.Info("Collecting letter classes", "source", a.cfg.AlphabetDir)
	for _, class := range a.cfg.Classes.Letters {
		summary, classRecords, err := a.collectClass(a.cfg.AlphabetDir, class)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, summary)
		records = append(records, classRecords...)
	}

	slog.Info("Collecting number classes", "source", a.cfg.NumbersDir)
	for _, class := range a.cfg.Classes.Numbers {
		summary, classRecords, err := a.collectClass(a.cfg.NumbersDir, class)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, summary)
		records = append(records, classRecords...)
	}

	negative := a.cfg.Classes.Negative
	slog.Info("Generating background class", "class", negative)
	gen := noise.NewGenerator(a.rng)
	paths, err := gen.Generate(filepath.Join(a.cfg.OutputDir, negative), a.cfg.SamplesPerClass)
	if err != nil {
		return nil, fmt.Errorf("failed to generate %s class: %w", negative, err)
	}
	summary := ClassSummary{Class: negative, Synthetic: true}
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("failed to stat noise image: %w", err)
		}
		summary.Files++
		summary.Bytes += info.Size()
		records = append(records, manifest.Record{
			Class:     negative,
			FileName:  filepath.Base(path),
			SizeBytes: info.Size(),
			Synthetic: true,
		})
	}
	summaries = append(summaries, summary)

	manifestPath := filepath.Join(a.cfg.OutputDir, a.cfg.ManifestName)
	if err := manifest.Write(manifestPath, records); err != nil {
		return nil, fmt.Errorf("failed to write manifest: %w", err)
	}
	slog.Info("Wrote dataset manifest", "path", manifestPath, "records", len(records))

	return summaries, nil
}

// collectClass samples one class from srcRoot into the output tree. A missing
// or empty class directory is non-fatal: the returned summary has zero files
// and no output directory is created. Any other filesystem error aborts the
// run.
func (a *Assembler) collectClass(srcRoot, class string) (ClassSummary, []manifest.Record, error) {
	summary := ClassSummary{Class: class}

	src := filepath.Join(srcRoot, class)
	info, err := os.Stat(src)
	if err != nil || !info.IsDir() {
		slog.Warn("Class directory not found", "class", class, "path", src)
		return summary, nil, nil
	}

	images, err := listImages(src)
	if err != nil {
		return summary, nil, fmt.Errorf("failed to list class directory %s: %w", src, err)
	}
	if len(images) == 0 {
		slog.Warn("No images found in class directory", "class", class, "path", src)
		return summary, nil, nil
	}
	summary.Available = len(images)

	sampleSize := a.cfg.SamplesPerClass
	if len(images) < sampleSize {
		sampleSize = len(images)
	}
	sampled := sampleWithoutReplacement(a.rng, images, sampleSize)

	dst := filepath.Join(a.cfg.OutputDir, class)
	if err := os.MkdirAll(dst, 0755); err != nil {
		return summary, nil, fmt.Errorf("failed to create class output directory %s: %w", dst, err)
	}

	var records []manifest.Record
	for _, name := range sampled {
		srcPath := filepath.Join(src, name)

		if a.cfg.Validate {
			if _, err := imaging.Open(srcPath); err != nil {
				slog.Warn("Skipping unreadable image", "class", class, "file", name, "error", err)
				continue
			}
		}

		written, err := copyFile(srcPath, filepath.Join(dst, name))
		if err != nil {
			return summary, records, err
		}
		summary.Files++
		summary.Bytes += written
		records = append(records, manifest.Record{
			Class:      class,
			FileName:   name,
			SourcePath: srcPath,
			SizeBytes:  written,
		})
	}

	slog.Info("Sampled class", "class", class, "copied", summary.Files, "available", summary.Available)
	return summary, records, nil
}

// listImages returns the names of recognized image files directly under dir,
// in the sorted order os.ReadDir guarantees.
func listImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if imageExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			names = append(names, entry.Name())
		}
	}
	return names, nil
}

// sampleWithoutReplacement draws n distinct items from items using rng.
// items is not modified.
func sampleWithoutReplacement(rng *rand.Rand, items []string, n int) []string {
	perm := rng.Perm(len(items))
	sampled := make([]string, n)
	for i := 0; i < n; i++ {
		sampled[i] = items[perm[i]]
	}
	return sampled
}

// copyFile copies src to dst byte-for-byte and preserves the source
// modification time. Returns the number of bytes copied.
func copyFile(src, dst string) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return 0, fmt.Errorf("failed to stat %s: %w", src, err)
	}

	out, err := os.Create(dst)
	if err != nil {
		return 0, fmt.Errorf("failed to create %s: %w", dst, err)
	}

	written, err := io.Copy(out, in)
	if err != nil {
		out.Close()
		return written, fmt.Errorf("failed to copy %s: %w", src, err)
	}
	if err := out.Close(); err != nil {
		return written, fmt.Errorf("failed to close %s: %w", dst, err)
	}

	if err := os.Chtimes(dst, info.ModTime(), info.ModTime()); err != nil {
		return written, fmt.Errorf("failed to preserve mtime on %s: %w", dst, err)
	}
	return written, nil
}

// PrintSummary writes the per-class result table to stdout.
func PrintSummary(summaries []ClassSummary, outputDir string) {
	totalFiles := 0
	var totalBytes int64

	fmt.Printf("\n--- Summary ---\n")
	for _, s := range summaries {
		label := fmt.Sprintf("%d files", s.Files)
		if s.Synthetic {
			label += " (synthetic)"
		} else {
			label += fmt.Sprintf(" (from %d available)", s.Available)
		}
		fmt.Printf("  %-6s %s, %s\n", s.Class+":", label, humanize.Bytes(uint64(s.Bytes)))
		totalFiles += s.Files
		totalBytes += s.Bytes
	}

	absPath, err := filepath.Abs(outputDir)
	if err != nil {
		absPath = outputDir
	}
	fmt.Printf("\nTotal: %d files across %d classes, %s\n", totalFiles, len(summaries), humanize.Bytes(uint64(totalBytes)))
	fmt.Printf("Output: %s\n", absPath)
}
