package trainer

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// ArtifactName is the base name of the exported model artifact.
	ArtifactName = "gesture_recognizer"

	// DefaultReportName is the YAML training report written next to the
	// artifact.
	DefaultReportName = "training_report.yaml"

	trainFraction      = 0.8
	validationFraction = 0.5 // of the remainder after the train split
)

// Options configure one training run.
type Options struct {
	DataDir      string
	OutputDir    string
	Epochs       int
	BatchSize    int
	LearningRate float64

	// ResourceDir, if it exists, receives a copy of the exported artifact.
	// A missing directory is skipped silently.
	ResourceDir string

	// ReportName overrides DefaultReportName.
	ReportName string
}

// ReportConfig is the configuration section of the training report.
type ReportConfig struct {
	DataDir      string  `yaml:"datadir"`
	Epochs       int     `yaml:"epochs"`
	BatchSize    int     `yaml:"batchsize"`
	LearningRate float64 `yaml:"learningrate"`
	Timestamp    string  `yaml:"timestamp"`
}

// Report summarizes a completed training run.
type Report struct {
	Config             ReportConfig `yaml:"config"`
	NumClasses         int          `yaml:"numclasses"`
	TrainExamples      int          `yaml:"trainexamples"`
	ValidationExamples int          `yaml:"validationexamples"`
	TestExamples       int          `yaml:"testexamples"`
	ArtifactPath       string       `yaml:"artifactpath"`
	ResourceCopyPath   string       `yaml:"resourcecopypath,omitempty"`
}

// Run executes the full training pipeline against the given engine: load the
// assembled dataset, split 80/10/10 into train/validation/test, fit,
// evaluate, export, and optionally copy the artifact to the resource
// directory. The report is also written as YAML into the output directory.
func Run(engine Engine, opts Options) (*Report, error) {
	info, err := os.Stat(opts.DataDir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("data directory not found: %s", opts.DataDir)
	}
	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	if opts.ReportName == "" {
		opts.ReportName = DefaultReportName
	}

	data, err := engine.LoadDataset(opts.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load dataset: %w", err)
	}

	trainData, restData, err := data.Split(trainFraction)
	if err != nil {
		return nil, fmt.Errorf("failed to split dataset: %w", err)
	}
	validationData, testData, err := restData.Split(validationFraction)
	if err != nil {
		return nil, fmt.Errorf("failed to split holdout data: %w", err)
	}

	slog.Info("Dataset loaded",
		"classes", data.NumClasses(),
		"train", trainData.NumExamples(),
		"validation", validationData.NumExamples(),
		"test", testData.NumExamples())

	model, err := engine.Train(trainData, validationData, Params{
		Epochs:       opts.Epochs,
		BatchSize:    opts.BatchSize,
		LearningRate: opts.LearningRate,
		ExportDir:    opts.OutputDir,
	})
	if err != nil {
		return nil, fmt.Errorf("training failed: %w", err)
	}

	if err := model.Evaluate(testData); err != nil {
		return nil, fmt.Errorf("evaluation failed: %w", err)
	}

	artifactPath, err := model.Export(ArtifactName)
	if err != nil {
		return nil, fmt.Errorf("failed to export model: %w", err)
	}
	slog.Info("Model exported", "path", artifactPath)

	report := &Report{
		Config: ReportConfig{
			DataDir:      opts.DataDir,
			Epochs:       opts.Epochs,
			BatchSize:    opts.BatchSize,
			LearningRate: opts.LearningRate,
			Timestamp:    time.Now().Format("2006-01-02_15-04-05"),
		},
		NumClasses:         data.NumClasses(),
		TrainExamples:      trainData.NumExamples(),
		ValidationExamples: validationData.NumExamples(),
		TestExamples:       testData.NumExamples(),
		ArtifactPath:       artifactPath,
	}

	if opts.ResourceDir != "" {
		copied, err := copyToResources(artifactPath, opts.ResourceDir)
		if err != nil {
			return nil, err
		}
		report.ResourceCopyPath = copied
	}

	reportPath := filepath.Join(opts.OutputDir, opts.ReportName)
	if err := report.Save(reportPath); err != nil {
		return nil, err
	}
	slog.Info("Training report written", "path", reportPath)

	return report, nil
}

// Save writes the report to path as YAML.
func (r *Report) Save(path string) error {
	data, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// copyToResources duplicates the artifact into resourceDir if that directory
// exists. A missing directory is not an error: the copy is a convenience for
// development checkouts of the consuming application.
func copyToResources(artifactPath, resourceDir string) (string, error) {
	info, err := os.Stat(resourceDir)
	if err != nil || !info.IsDir() {
		slog.Debug("Resource directory not present, skipping copy", "dir", resourceDir)
		return "", nil
	}

	dest := filepath.Join(resourceDir, filepath.Base(artifactPath))
	if err := copyPath(artifactPath, dest); err != nil {
		return "", fmt.Errorf("failed to copy artifact to resources: %w", err)
	}
	slog.Info("Copied artifact to resources", "path", dest)
	return dest, nil
}

// copyPath copies a file, or a directory recursively. Checkpoint-style
// artifacts are directories; single-file artifacts also work.
func copyPath(src, dest string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}

	if !info.IsDir() {
		return copyFileContents(src, dest)
	}

	if err := os.MkdirAll(dest, 0755); err != nil {
		return err
	}
	entries, err := os.ReadDir(src)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if err := copyPath(filepath.Join(src, entry.Name()), filepath.Join(dest, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}

func copyFileContents(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
