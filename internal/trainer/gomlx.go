package trainer

import (
	"fmt"
	"image"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/gomlx/gomlx/backends"
	_ "github.com/gomlx/gomlx/backends/default"
	"github.com/gomlx/gomlx/pkg/core/graph"
	"github.com/gomlx/gomlx/pkg/core/tensors"
	timage "github.com/gomlx/gomlx/pkg/core/tensors/images"
	"github.com/gomlx/gomlx/pkg/ml/context"
	"github.com/gomlx/gomlx/pkg/ml/context/checkpoints"
	"github.com/gomlx/gomlx/pkg/ml/datasets"
	"github.com/gomlx/gomlx/pkg/ml/train"
	"github.com/gomlx/gomlx/pkg/ml/train/losses"
	"github.com/gomlx/gomlx/pkg/ml/train/metrics"
	"github.com/gomlx/gomlx/pkg/ml/train/optimizers"
	"github.com/gomlx/gomlx/ui/commandline"
	"github.com/gomlx/gopjrt/dtypes"
)

// TrainImageSize is the square edge length every image is resized to before
// being fed to the model.
const TrainImageSize = 64

var trainableExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".bmp":  true,
}

// GomlxEngine implements Engine on top of the GoMLX training framework.
type GomlxEngine struct {
	backend backends.Backend
	rng     *rand.Rand
}

// NewGomlxEngine creates the engine and its computation backend. The seed
// controls the dataset shuffle that precedes partitioning.
func NewGomlxEngine(seed int64) *GomlxEngine {
	return &GomlxEngine{
		backend: backends.MustNew(),
		rng:     rand.New(rand.NewSource(seed)),
	}
}

// imageDataset holds decoded, resized images with integer labels. Splits
// share the underlying slices.
type imageDataset struct {
	engine     *GomlxEngine
	images     []image.Image
	labels     []int32
	classNames []string
}

func (d *imageDataset) NumExamples() int { return len(d.images) }
func (d *imageDataset) NumClasses() int  { return len(d.classNames) }

func (d *imageDataset) Split(fraction float64) (Dataset, Dataset, error) {
	if fraction <= 0 || fraction >= 1 {
		return nil, nil, fmt.Errorf("split fraction must be in (0, 1), got %g", fraction)
	}
	n := int(float64(len(d.images)) * fraction)
	left := &imageDataset{engine: d.engine, images: d.images[:n], labels: d.labels[:n], classNames: d.classNames}
	right := &imageDataset{engine: d.engine, images: d.images[n:], labels: d.labels[n:], classNames: d.classNames}
	return left, right, nil
}

// labelColumn returns labels shaped [numExamples, 1], as expected by the
// sparse categorical cross-entropy loss.
func (d *imageDataset) labelColumn() [][]int32 {
	column := make([][]int32, len(d.labels))
	for i, label := range d.labels {
		column[i] = []int32{label}
	}
	return column
}

// LoadDataset reads a directory-per-class tree: every subdirectory name
// becomes a class label, every recognized image inside it an example.
// Unreadable images are skipped with a warning. Examples are shuffled once
// so later fraction splits are not biased by class order.
func (e *GomlxEngine) LoadDataset(dir string) (Dataset, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read data directory: %w", err)
	}

	var classNames []string
	for _, entry := range entries {
		if entry.IsDir() {
			classNames = append(classNames, entry.Name())
		}
	}
	if len(classNames) == 0 {
		return nil, fmt.Errorf("no class subdirectories in %s", dir)
	}

	ds := &imageDataset{engine: e, classNames: classNames}
	for classIdx, class := range classNames {
		classDir := filepath.Join(dir, class)
		files, err := os.ReadDir(classDir)
		if err != nil {
			return nil, fmt.Errorf("failed to read class directory %s: %w", classDir, err)
		}

		loaded := 0
		for _, file := range files {
			if file.IsDir() || !trainableExtensions[strings.ToLower(filepath.Ext(file.Name()))] {
				continue
			}
			path := filepath.Join(classDir, file.Name())
			img, err := imaging.Open(path)
			if err != nil {
				slog.Warn("Skipping unreadable image", "path", path, "error", err)
				continue
			}
			ds.images = append(ds.images, imaging.Resize(img, TrainImageSize, TrainImageSize, imaging.Linear))
			ds.labels = append(ds.labels, int32(classIdx))
			loaded++
		}
		slog.Debug("Loaded class", "class", class, "examples", loaded)
	}
	if len(ds.images) == 0 {
		return nil, fmt.Errorf("no readable images found under %s", dir)
	}

	e.rng.Shuffle(len(ds.images), func(i, j int) {
		ds.images[i], ds.images[j] = ds.images[j], ds.images[i]
		ds.labels[i], ds.labels[j] = ds.labels[j], ds.labels[i]
	})

	slog.Info("Dataset read", "classes", len(classNames), "examples", len(ds.images))
	return ds, nil
}

// Train fits the gesture CNN on trainData, reporting validation metrics at
// the end.
func (e *GomlxEngine) Train(trainData, validationData Dataset, p Params) (Model, error) {
	tds, ok := trainData.(*imageDataset)
	if !ok {
		return nil, fmt.Errorf("train dataset was not loaded by this engine")
	}
	vds, ok := validationData.(*imageDataset)
	if !ok {
		return nil, fmt.Errorf("validation dataset was not loaded by this engine")
	}

	ctx := context.New()
	ctx.SetParams(map[string]any{
		optimizers.ParamOptimizer:    "adam",
		optimizers.ParamLearningRate: p.LearningRate,
	})

	trainDS, err := e.inMemory("training", tds, p.BatchSize, true)
	if err != nil {
		return nil, err
	}
	validationDS, err := e.inMemory("validation", vds, p.BatchSize, false)
	if err != nil {
		return nil, err
	}

	numClasses := tds.NumClasses()
	modelFn := func(ctx *context.Context, spec any, inputs []*graph.Node) []*graph.Node {
		return []*graph.Node{gestureModelGraph(ctx, inputs[0], numClasses)}
	}

	movingAccuracy := metrics.NewMovingAverageSparseCategoricalAccuracy("Moving Average Accuracy", "~acc", 0.01)
	meanAccuracy := metrics.NewSparseCategoricalAccuracy("Mean Accuracy", "#acc")

	trainer := train.NewTrainer(e.backend, ctx.In("model"), modelFn,
		losses.SparseCategoricalCrossEntropyLogits,
		optimizers.FromContext(ctx),
		[]metrics.Interface{movingAccuracy},
		[]metrics.Interface{meanAccuracy})

	loop := train.NewLoop(trainer)
	commandline.AttachProgressBar(loop)

	slog.Info("Training model",
		"epochs", p.Epochs, "batch_size", p.BatchSize, "learning_rate", p.LearningRate,
		"classes", numClasses, "examples", tds.NumExamples())
	if _, err := loop.RunEpochs(trainDS, p.Epochs); err != nil {
		return nil, fmt.Errorf("training loop failed: %w", err)
	}

	if err := commandline.ReportEval(trainer, validationDS); err != nil {
		return nil, fmt.Errorf("validation eval failed: %w", err)
	}

	return &gomlxModel{
		engine:    e,
		ctx:       ctx,
		trainer:   trainer,
		exportDir: p.ExportDir,
		batchSize: p.BatchSize,
	}, nil
}

// inMemory uploads the dataset to the backend as a batched in-memory
// dataset. Training datasets reshuffle every epoch and drop the incomplete
// tail batch; evaluation datasets keep every example.
func (e *GomlxEngine) inMemory(name string, d *imageDataset, batchSize int, forTraining bool) (train.Dataset, error) {
	inputs := timage.ToTensor(dtypes.Float32).Batch(d.images)
	labels := tensors.FromValue(d.labelColumn())

	mds, err := datasets.InMemoryFromData(e.backend, name, []any{inputs}, []any{labels})
	if err != nil {
		return nil, fmt.Errorf("failed to build %s dataset: %w", name, err)
	}
	if forTraining {
		mds.Shuffle().BatchSize(batchSize, true)
	} else {
		mds.BatchSize(batchSize, false)
	}
	return mds, nil
}

// gomlxModel is a trained model bound to the context holding its weights.
type gomlxModel struct {
	engine    *GomlxEngine
	ctx       *context.Context
	trainer   *train.Trainer
	exportDir string
	batchSize int
}

// Evaluate prints loss and accuracy over the test partition.
func (m *gomlxModel) Evaluate(testData Dataset) error {
	tds, ok := testData.(*imageDataset)
	if !ok {
		return fmt.Errorf("test dataset was not loaded by this engine")
	}
	testDS, err := m.engine.inMemory("testing", tds, m.batchSize, false)
	if err != nil {
		return err
	}
	return commandline.ReportEval(m.trainer, testDS)
}

// Export saves the trained weights and hyperparameters as a checkpoint
// directory named after the artifact under the export directory.
func (m *gomlxModel) Export(name string) (string, error) {
	artifactDir := filepath.Join(m.exportDir, name)
	checkpoint, err := checkpoints.Build(m.ctx).Dir(artifactDir).Keep(1).Done()
	if err != nil {
		return "", fmt.Errorf("failed to prepare checkpoint: %w", err)
	}
	if err := checkpoint.Save(); err != nil {
		return "", fmt.Errorf("failed to save checkpoint: %w", err)
	}
	return artifactDir, nil
}
