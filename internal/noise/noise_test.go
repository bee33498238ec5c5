package noise

import (
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/signlab-io/gesturetrain/internal/bmp"
)

func TestGenerateCountAndSizes(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "None")

	gen := NewGenerator(rand.New(rand.NewSource(42)))
	paths, err := gen.Generate(dir, 10)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if len(paths) != 10 {
		t.Fatalf("Expected 10 paths, got %d", len(paths))
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("Failed to read output dir: %v", err)
	}
	if len(entries) != 10 {
		t.Fatalf("Expected 10 files, got %d", len(entries))
	}

	// 200x200 24-bit: 54 header bytes + 600 bytes/row * 200 rows.
	wantSize := int64(bmp.FileSize(DefaultWidth, DefaultHeight))
	if wantSize != 120054 {
		t.Fatalf("Expected file size 120054, computed %d", wantSize)
	}
	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil {
			t.Fatalf("Failed to stat %s: %v", entry.Name(), err)
		}
		if info.Size() != wantSize {
			t.Errorf("%s is %d bytes, want %d", entry.Name(), info.Size(), wantSize)
		}
	}
}

func TestGenerateNaming(t *testing.T) {
	dir := t.TempDir()

	gen := NewGenerator(rand.New(rand.NewSource(1)))
	paths, err := gen.Generate(dir, 3)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	expected := []string{"none_0000.bmp", "none_0001.bmp", "none_0002.bmp"}
	for i, want := range expected {
		if got := filepath.Base(paths[i]); got != want {
			t.Errorf("Path %d = %s, want %s", i, got, want)
		}
	}
}

func TestGenerateMagicBytes(t *testing.T) {
	dir := t.TempDir()

	gen := NewGenerator(rand.New(rand.NewSource(3)))
	paths, err := gen.Generate(dir, 1)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	data, err := os.ReadFile(paths[0])
	if err != nil {
		t.Fatalf("Failed to read generated file: %v", err)
	}
	if string(data[0:2]) != bmp.Magic {
		t.Errorf("First two bytes = %q, want %q", data[0:2], bmp.Magic)
	}
}
