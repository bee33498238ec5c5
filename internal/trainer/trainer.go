// Package trainer drives gesture model training on an assembled
// directory-per-class image dataset. The actual machine learning is
// delegated to an external library behind the Engine interface; the rest of
// the pipeline only depends on the interface, so it can be tested against a
// stub engine.
package trainer

// Params are the hyperparameters handed to the training engine.
type Params struct {
	Epochs       int
	BatchSize    int
	LearningRate float64

	// ExportDir is where the engine writes the trained artifact.
	ExportDir string
}

// Dataset is a loaded, class-labeled dataset ready for partitioning.
type Dataset interface {
	NumExamples() int
	NumClasses() int

	// Split partitions the dataset in two; the first part receives the
	// given fraction of examples.
	Split(fraction float64) (Dataset, Dataset, error)
}

// Engine abstracts the external model-training library: loading a
// directory-per-class dataset, fitting a model, and nothing else.
type Engine interface {
	LoadDataset(dir string) (Dataset, error)
	Train(trainData, validationData Dataset, p Params) (Model, error)
}

// Model is a trained model ready for evaluation and export.
type Model interface {
	// Evaluate runs the model over testData and reports its metrics.
	Evaluate(testData Dataset) error

	// Export writes the trained artifact under the export directory using
	// the given base name and returns the artifact path.
	Export(name string) (string, error)
}
