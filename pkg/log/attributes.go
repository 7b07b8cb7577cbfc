// Package log configures structured logging for the rvm module, built on
// log/slog with cockroachdb/errors-aware stack trace formatting.
package log

// Standard attribute keys, kept consistent across the rvm package's
// diagnostic logging so records can be filtered/aggregated by tooling.
const (
	// ModelNameKey identifies the model type, e.g. "rvm.Model".
	ModelNameKey = "model.name"

	// OperationKey names the operation in progress: "train", "predict".
	OperationKey = "ml.operation"

	// AlgorithmKey names the selected training strategy.
	AlgorithmKey = "ml.algorithm"

	// IterationKey is the current outer-loop iteration number.
	IterationKey = "ml.iteration"

	// ActiveSetSizeKey is the current |A|.
	ActiveSetSizeKey = "ml.active_set_size"

	// SamplesKey is N, the observation count.
	SamplesKey = "data.samples"

	// BasisCountKey is nBasis, the candidate basis count.
	BasisCountKey = "data.n_basis"
)
