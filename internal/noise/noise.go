package noise

import (
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"github.com/signlab-io/gesturetrain/internal/bmp"
)

const (
	// DefaultWidth and DefaultHeight match the dimensions the gesture
	// recognizer was originally trained against.
	DefaultWidth  = 200
	DefaultHeight = 200

	filePrefix = "none_"
)

// Generator writes random-noise bitmap images used to populate the "None"
// (no gesture) background class. Each image is independent; pixel data is
// drawn from the injected random source.
type Generator struct {
	Width  int
	Height int
	rng    *rand.Rand
}

// NewGenerator returns a Generator producing images of the default
// dimensions from the given random source.
func NewGenerator(rng *rand.Rand) *Generator {
	return &Generator{
		Width:  DefaultWidth,
		Height: DefaultHeight,
		rng:    rng,
	}
}

// Generate writes count noise images into dir, creating it if needed.
// Files are named with a fixed prefix and zero-padded sequential index
// (none_0000.bmp, none_0001.bmp, ...). The .bmp extension reflects the
// uncompressed bitmap format actually written. Returns the created paths.
func (g *Generator) Generate(dir string, count int) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	slog.Info("Generating noise images", "dir", dir, "count", count, "width", g.Width, "height", g.Height)

	bar := progressbar.Default(int64(count), "generating noise images")
	paths := make([]string, 0, count)
	for i := 0; i < count; i++ {
		img := bmp.NewNoise(g.Width, g.Height, g.rng)
		path := filepath.Join(dir, fmt.Sprintf("%s%04d.bmp", filePrefix, i))
		if err := img.WriteFile(path); err != nil {
			return paths, fmt.Errorf("failed to write noise image: %w", err)
		}
		paths = append(paths, path)
		_ = bar.Add(1)
	}
	_ = bar.Finish()

	return paths, nil
}
