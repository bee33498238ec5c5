package manifest

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/parquet-go/parquet-go"
)

// Record describes one file emitted into the assembled dataset tree.
type Record struct {
	Class      string `parquet:"class" json:"class"`
	FileName   string `parquet:"file_name" json:"file_name"`
	SourcePath string `parquet:"source_path" json:"source_path"`
	SizeBytes  int64  `parquet:"size_bytes" json:"size_bytes"`
	Synthetic  bool   `parquet:"synthetic" json:"synthetic"`
}

// Write saves records to path. The format follows the extension:
// .parquet or .jsonl/.json.
func Write(path string, records []Record) error {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".parquet":
		return writeParquet(path, records)
	case ".jsonl", ".json":
		return writeJSONL(path, records)
	default:
		return fmt.Errorf("unsupported manifest format: %s (supported: .parquet, .jsonl)", ext)
	}
}

// Load reads records from path, detecting the format by extension.
func Load(path string) ([]Record, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".parquet":
		return loadParquet(path)
	case ".jsonl", ".json":
		return loadJSONL(path)
	default:
		return nil, fmt.Errorf("unsupported manifest format: %s (supported: .parquet, .jsonl)", ext)
	}
}

func writeParquet(path string, records []Record) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create manifest file: %w", err)
	}

	writer := parquet.NewGenericWriter[Record](file)
	if _, err := writer.Write(records); err != nil {
		file.Close()
		return fmt.Errorf("failed to write parquet rows: %w", err)
	}
	if err := writer.Close(); err != nil {
		file.Close()
		return fmt.Errorf("failed to close parquet writer: %w", err)
	}
	return file.Close()
}

func writeJSONL(path string, records []Record) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create manifest file: %w", err)
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	enc := json.NewEncoder(w)
	for _, record := range records {
		if err := enc.Encode(record); err != nil {
			return fmt.Errorf("failed to encode manifest record: %w", err)
		}
	}
	return w.Flush()
}

func loadParquet(path string) ([]Record, error) {
	slog.Debug("Opening parquet manifest", "path", path)

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open manifest file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat manifest file: %w", err)
	}

	pf, err := parquet.OpenFile(file, info.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet: %w", err)
	}

	reader := parquet.NewGenericReader[Record](pf)
	defer reader.Close()

	var records []Record
	rows := make([]Record, 128) // Read in batches
	for {
		n, err := reader.Read(rows)
		if n > 0 {
			records = append(records, rows[:n]...)
		}
		if err != nil {
			break
		}
	}

	slog.Debug("Finished reading parquet manifest", "records", len(records))
	return records, nil
}

func loadJSONL(path string) ([]Record, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open manifest file: %w", err)
	}
	defer file.Close()

	var records []Record
	scanner := bufio.NewScanner(file)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var record Record
		if err := json.Unmarshal(line, &record); err != nil {
			return nil, fmt.Errorf("failed to parse JSON at line %d: %w", lineNum, err)
		}
		records = append(records, record)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading manifest: %w", err)
	}
	return records, nil
}

// ClassStats aggregates manifest records per class.
type ClassStats struct {
	Class     string
	Files     int
	Bytes     int64
	Synthetic int
}

// Summarize groups records by class, sorted by class label.
func Summarize(records []Record) []ClassStats {
	byClass := make(map[string]*ClassStats)
	for _, r := range records {
		stats, ok := byClass[r.Class]
		if !ok {
			stats = &ClassStats{Class: r.Class}
			byClass[r.Class] = stats
		}
		stats.Files++
		stats.Bytes += r.SizeBytes
		if r.Synthetic {
			stats.Synthetic++
		}
	}

	out := make([]ClassStats, 0, len(byClass))
	for _, stats := range byClass {
		out = append(out, *stats)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Class < out[j].Class })
	return out
}
