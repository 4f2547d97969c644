package log

// Standard attribute keys. Using the same keys everywhere keeps training
// logs filterable across components.
const (
	// ComponentKey identifies the package emitting the log line.
	ComponentKey = "component"

	// OperationKey names the operation: "train", "evaluate", "oob", "load".
	OperationKey = "operation"

	// SamplesKey is the number of instances being processed.
	SamplesKey = "samples"

	// FeaturesKey is the number of features in the instance definition.
	FeaturesKey = "features"

	// TreesKey is the number of trees in an ensemble.
	TreesKey = "trees"

	// IterationKey is the 1-based boosting iteration.
	IterationKey = "iteration"

	// WorkerKey is the forest build worker index.
	WorkerKey = "worker"

	// DurationMsKey is elapsed wall time in milliseconds.
	DurationMsKey = "duration_ms"
)
