package assemble

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"math/rand"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"testing"
	"time"

	"github.com/signlab-io/gesturetrain/internal/classes"
	"github.com/signlab-io/gesturetrain/internal/manifest"
)

var testCatalog = classes.Catalog{
	Letters:  []string{"A", "B"},
	Numbers:  []string{"1"},
	Negative: "None",
}

// writeSourceTree creates a source root with the given classes and file
// counts. File contents are unique per file.
func writeSourceTree(t *testing.T, root string, counts map[string]int) {
	t.Helper()
	for class, n := range counts {
		dir := filepath.Join(root, class)
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatalf("Failed to create source dir: %v", err)
		}
		for i := 0; i < n; i++ {
			path := filepath.Join(dir, fmt.Sprintf("img_%03d.jpg", i))
			content := []byte(fmt.Sprintf("image %s/%d", class, i))
			if err := os.WriteFile(path, content, 0644); err != nil {
				t.Fatalf("Failed to write source file: %v", err)
			}
		}
	}
}

func newTestConfig(t *testing.T, samplesPerClass int) Config {
	t.Helper()
	base := t.TempDir()
	return Config{
		AlphabetDir:     filepath.Join(base, "alphabet"),
		NumbersDir:      filepath.Join(base, "numbers"),
		OutputDir:       filepath.Join(base, "out"),
		SamplesPerClass: samplesPerClass,
		Seed:            42,
		Classes:         testCatalog,
		ManifestName:    "manifest.jsonl",
	}
}

func listNames(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("Failed to read %s: %v", dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestRunSamplesAtMostAvailable(t *testing.T) {
	cfg := newTestConfig(t, 5)
	writeSourceTree(t, cfg.AlphabetDir, map[string]int{"A": 3, "B": 10})
	writeSourceTree(t, cfg.NumbersDir, map[string]int{"1": 7})

	summaries, err := New(cfg).Run()
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	want := map[string]int{"A": 3, "B": 5, "1": 5, "None": 5}
	for _, s := range summaries {
		if s.Files != want[s.Class] {
			t.Errorf("Class %s has %d files, want %d", s.Class, s.Files, want[s.Class])
		}
	}

	if got := len(listNames(t, filepath.Join(cfg.OutputDir, "A"))); got != 3 {
		t.Errorf("Output class A has %d files, want 3", got)
	}
}

func TestRunDeterministicForFixedSeed(t *testing.T) {
	cfg1 := newTestConfig(t, 4)
	writeSourceTree(t, cfg1.AlphabetDir, map[string]int{"A": 20, "B": 20})
	writeSourceTree(t, cfg1.NumbersDir, map[string]int{"1": 20})

	cfg2 := cfg1
	cfg2.OutputDir = filepath.Join(t.TempDir(), "out2")

	if _, err := New(cfg1).Run(); err != nil {
		t.Fatalf("First run failed: %v", err)
	}
	if _, err := New(cfg2).Run(); err != nil {
		t.Fatalf("Second run failed: %v", err)
	}

	for _, class := range []string{"A", "B", "1"} {
		first := listNames(t, filepath.Join(cfg1.OutputDir, class))
		second := listNames(t, filepath.Join(cfg2.OutputDir, class))
		if !reflect.DeepEqual(first, second) {
			t.Errorf("Class %s differs between runs:\n%v\n%v", class, first, second)
		}
	}
}

func TestRunCopiesAreByteIdentical(t *testing.T) {
	cfg := newTestConfig(t, 3)
	writeSourceTree(t, cfg.AlphabetDir, map[string]int{"A": 3, "B": 3})
	writeSourceTree(t, cfg.NumbersDir, map[string]int{"1": 3})

	// Backdate one source file to check mtime preservation.
	backdated := filepath.Join(cfg.AlphabetDir, "A", "img_000.jpg")
	past := time.Date(2020, 6, 1, 12, 0, 0, 0, time.UTC)
	if err := os.Chtimes(backdated, past, past); err != nil {
		t.Fatalf("Failed to backdate source file: %v", err)
	}

	if _, err := New(cfg).Run(); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	for _, name := range listNames(t, filepath.Join(cfg.OutputDir, "A")) {
		src, err := os.ReadFile(filepath.Join(cfg.AlphabetDir, "A", name))
		if err != nil {
			t.Fatalf("Failed to read source: %v", err)
		}
		dst, err := os.ReadFile(filepath.Join(cfg.OutputDir, "A", name))
		if err != nil {
			t.Fatalf("Failed to read copy: %v", err)
		}
		if !bytes.Equal(src, dst) {
			t.Errorf("Copy of %s is not byte-identical", name)
		}
	}

	info, err := os.Stat(filepath.Join(cfg.OutputDir, "A", "img_000.jpg"))
	if err != nil {
		t.Fatalf("Failed to stat copy: %v", err)
	}
	if !info.ModTime().Equal(past) {
		t.Errorf("Copy mtime = %v, want %v", info.ModTime(), past)
	}
}

func TestRunMissingClassIsNonFatal(t *testing.T) {
	cfg := newTestConfig(t, 3)
	// Class "B" is absent from the alphabet tree.
	writeSourceTree(t, cfg.AlphabetDir, map[string]int{"A": 3})
	writeSourceTree(t, cfg.NumbersDir, map[string]int{"1": 3})

	summaries, err := New(cfg).Run()
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	for _, s := range summaries {
		if s.Class == "B" && s.Files != 0 {
			t.Errorf("Missing class B reported %d files", s.Files)
		}
	}

	// No output directory is created for an absent class.
	if _, err := os.Stat(filepath.Join(cfg.OutputDir, "B")); !os.IsNotExist(err) {
		t.Errorf("Expected no output directory for missing class B, stat err = %v", err)
	}
}

func TestRunEmptyClassIsNonFatal(t *testing.T) {
	cfg := newTestConfig(t, 3)
	writeSourceTree(t, cfg.AlphabetDir, map[string]int{"A": 3, "B": 0})
	writeSourceTree(t, cfg.NumbersDir, map[string]int{"1": 3})

	// Non-image files are not eligible.
	if err := os.WriteFile(filepath.Join(cfg.AlphabetDir, "B", "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatalf("Failed to write non-image file: %v", err)
	}

	summaries, err := New(cfg).Run()
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	for _, s := range summaries {
		if s.Class == "B" && s.Files != 0 {
			t.Errorf("Empty class B reported %d files", s.Files)
		}
	}
}

func TestRunGeneratesNegativeClass(t *testing.T) {
	cfg := newTestConfig(t, 4)
	writeSourceTree(t, cfg.AlphabetDir, map[string]int{"A": 2, "B": 2})
	writeSourceTree(t, cfg.NumbersDir, map[string]int{"1": 2})

	if _, err := New(cfg).Run(); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	names := listNames(t, filepath.Join(cfg.OutputDir, "None"))
	if len(names) != 4 {
		t.Fatalf("Negative class has %d files, want 4", len(names))
	}
	for _, name := range names {
		info, err := os.Stat(filepath.Join(cfg.OutputDir, "None", name))
		if err != nil {
			t.Fatalf("Failed to stat %s: %v", name, err)
		}
		if info.Size() != 120054 {
			t.Errorf("%s is %d bytes, want 120054", name, info.Size())
		}
	}
}

func TestRunDestroysPreExistingOutput(t *testing.T) {
	cfg := newTestConfig(t, 2)
	writeSourceTree(t, cfg.AlphabetDir, map[string]int{"A": 2, "B": 2})
	writeSourceTree(t, cfg.NumbersDir, map[string]int{"1": 2})

	stale := filepath.Join(cfg.OutputDir, "stale")
	if err := os.MkdirAll(stale, 0755); err != nil {
		t.Fatalf("Failed to create stale dir: %v", err)
	}

	if _, err := New(cfg).Run(); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Error("Pre-existing output content survived the run")
	}
}

func TestRunWritesManifest(t *testing.T) {
	cfg := newTestConfig(t, 2)
	writeSourceTree(t, cfg.AlphabetDir, map[string]int{"A": 3, "B": 3})
	writeSourceTree(t, cfg.NumbersDir, map[string]int{"1": 3})

	if _, err := New(cfg).Run(); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	records, err := manifest.Load(filepath.Join(cfg.OutputDir, "manifest.jsonl"))
	if err != nil {
		t.Fatalf("Failed to load manifest: %v", err)
	}

	// 2 per sampled class (A, B, 1) + 2 synthetic.
	if len(records) != 8 {
		t.Fatalf("Manifest has %d records, want 8", len(records))
	}
	synthetic := 0
	for _, r := range records {
		if r.Synthetic {
			synthetic++
			if r.Class != "None" {
				t.Errorf("Synthetic record in class %s", r.Class)
			}
		}
	}
	if synthetic != 2 {
		t.Errorf("Manifest has %d synthetic records, want 2", synthetic)
	}
}

// writePNG writes a small but genuinely decodable image.
func writePNG(t *testing.T, path string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create %s: %v", path, err)
	}
	if err := png.Encode(f, image.NewRGBA(image.Rect(0, 0, 4, 4))); err != nil {
		t.Fatalf("Failed to encode PNG: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("Failed to close %s: %v", path, err)
	}
}

func TestRunCopyFailureIsFatal(t *testing.T) {
	cfg := newTestConfig(t, 3)
	writeSourceTree(t, cfg.AlphabetDir, map[string]int{"A": 2, "B": 2})
	writeSourceTree(t, cfg.NumbersDir, map[string]int{"1": 2})

	// A dangling symlink lists as an image but cannot be opened for copying.
	classDir := filepath.Join(cfg.AlphabetDir, "A")
	if err := os.Symlink(filepath.Join(classDir, "gone.jpg"), filepath.Join(classDir, "img_900.jpg")); err != nil {
		t.Skipf("Symlinks not supported: %v", err)
	}

	if _, err := New(cfg).Run(); err == nil {
		t.Fatal("Expected copy failure to abort the run, got nil")
	}
}

func TestRunValidateSkipsUnreadableImages(t *testing.T) {
	cfg := newTestConfig(t, 5)
	cfg.Validate = true

	classDir := filepath.Join(cfg.AlphabetDir, "A")
	if err := os.MkdirAll(classDir, 0755); err != nil {
		t.Fatalf("Failed to create source dir: %v", err)
	}
	writePNG(t, filepath.Join(classDir, "img_000.png"))
	writePNG(t, filepath.Join(classDir, "img_001.png"))
	if err := os.WriteFile(filepath.Join(classDir, "img_002.png"), []byte("not a PNG"), 0644); err != nil {
		t.Fatalf("Failed to write corrupt image: %v", err)
	}

	summaries, err := New(cfg).Run()
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	for _, s := range summaries {
		if s.Class == "A" {
			if s.Files != 2 {
				t.Errorf("Class A copied %d files, want 2", s.Files)
			}
			if s.Available != 3 {
				t.Errorf("Class A reported %d available, want 3", s.Available)
			}
		}
	}

	names := listNames(t, filepath.Join(cfg.OutputDir, "A"))
	for _, name := range names {
		if name == "img_002.png" {
			t.Error("Corrupt image was copied despite validation")
		}
	}
	if len(names) != 2 {
		t.Errorf("Output class A has %d files, want 2", len(names))
	}
}

func TestSampleWithoutReplacement(t *testing.T) {
	items := []string{"a", "b", "c", "d", "e"}

	rng := rand.New(rand.NewSource(1))
	sampled := sampleWithoutReplacement(rng, items, 3)
	if len(sampled) != 3 {
		t.Fatalf("Sampled %d items, want 3", len(sampled))
	}

	seen := map[string]bool{}
	for _, s := range sampled {
		if seen[s] {
			t.Errorf("Item %q sampled twice", s)
		}
		seen[s] = true
	}

	// Full draw is a permutation of the input.
	rng = rand.New(rand.NewSource(2))
	all := sampleWithoutReplacement(rng, items, len(items))
	sort.Strings(all)
	if !reflect.DeepEqual(all, items) {
		t.Errorf("Full sample is not a permutation: %v", all)
	}
}
