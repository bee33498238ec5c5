package trainer

import (
	"github.com/gomlx/gomlx/pkg/core/graph"
	"github.com/gomlx/gomlx/pkg/ml/context"
	"github.com/gomlx/gomlx/pkg/ml/layers"
	"github.com/gomlx/gomlx/pkg/ml/layers/activations"
)

// gestureModelGraph builds the classification CNN and returns the logits
// node. Input is a batch of TrainImageSize x TrainImageSize RGB images in
// channels-last layout.
func gestureModelGraph(ctx *context.Context, batchedImages *graph.Node, numClasses int) *graph.Node {
	batchSize := batchedImages.Shape().Dimensions[0]
	logits := batchedImages

	layerIdx := 0
	nextCtx := func(name string) *context.Context {
		newCtx := ctx.Inf("%03d_%s", layerIdx, name)
		layerIdx++
		return newCtx
	}

	logits = layers.Convolution(nextCtx("conv"), logits).Channels(32).KernelSize(3).PadSame().Done()
	logits = activations.Relu(logits)
	logits = graph.MaxPool(logits).Window(2).Done()
	logits.AssertDims(batchSize, TrainImageSize/2, TrainImageSize/2, 32)

	logits = layers.Convolution(nextCtx("conv"), logits).Channels(64).KernelSize(3).PadSame().Done()
	logits = activations.Relu(logits)
	logits = graph.MaxPool(logits).Window(2).Done()
	logits.AssertDims(batchSize, TrainImageSize/4, TrainImageSize/4, 64)

	logits = layers.Convolution(nextCtx("conv"), logits).Channels(128).KernelSize(3).PadSame().Done()
	logits = activations.Relu(logits)
	logits = graph.MaxPool(logits).Window(2).Done()
	logits.AssertDims(batchSize, TrainImageSize/8, TrainImageSize/8, 128)

	logits = graph.Reshape(logits, batchSize, -1)
	logits = layers.Dense(nextCtx("dense"), logits, true, 128)
	logits = activations.Relu(logits)
	logits = layers.Dense(nextCtx("dense"), logits, true, numClasses)
	return logits
}
