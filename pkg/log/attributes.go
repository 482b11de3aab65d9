// Package log defines standard attribute keys for pipeline operations.
//
// Keys follow a hierarchical naming convention (e.g., "model.name",
// "data.samples") so logs from fit, evaluation and prediction can be
// filtered the same way.

package log

// Model and Operation Context
const (
	// ModelNameKey identifies the type of component.
	// Examples: "SDCARegressor", "OneHotEncoder", "Pipeline"
	ModelNameKey = "model.name"

	// EstimatorIDKey identifies a specific fitted pipeline instance.
	EstimatorIDKey = "estimator.id"

	// OperationKey specifies the operation being performed.
	// Standard values: "fit", "predict", "transform", "score"
	OperationKey = "ml.operation"

	// ComponentKey identifies which package is performing the operation.
	ComponentKey = "ml.component"

	// PhaseKey indicates the phase of the pipeline lifecycle.
	PhaseKey = "ml.phase"
)

// Data Shape and Characteristics
const (
	// SamplesKey indicates the number of samples (rows).
	SamplesKey = "data.samples"

	// FeaturesKey indicates the width of the assembled feature vector.
	FeaturesKey = "data.features"

	// TrainSamplesKey and TestSamplesKey record the split sizes.
	TrainSamplesKey = "data.train_samples"
	TestSamplesKey  = "data.test_samples"

	// FieldKey names the record field a message refers to.
	FieldKey = "data.field"

	// ValueKey carries the offending or notable field value.
	ValueKey = "data.value"
)

// Performance Metrics
const (
	// DurationMsKey records the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"

	// R2ScoreKey records R² coefficient of determination for regression.
	// Range [-∞, 1.0], NaN when undefined.
	R2ScoreKey = "metrics.r2_score"

	// RMSEKey records root mean squared error.
	RMSEKey = "metrics.rmse"

	// LossKey records the objective value (primal loss) during training.
	LossKey = "metrics.loss"

	// DualityGapKey records the SDCA duality gap.
	DualityGapKey = "metrics.duality_gap"

	// IterationKey records the number of completed solver passes.
	IterationKey = "training.iteration"

	// ConvergedKey records whether the solver met its tolerance.
	ConvergedKey = "training.converged"
)

// Prediction Context
const (
	// PredsKey indicates the number of predictions made.
	PredsKey = "preds.count"

	// PredictionKey records a single predicted value.
	PredictionKey = "preds.value"
)

// Error Context
const (
	// ErrorTypeKey categorizes the type of error encountered.
	ErrorTypeKey = "error.type"

	// StacktraceKey contains stack trace information for debugging.
	StacktraceKey = "error.stacktrace"
)

// Hyperparameters and Configuration
const (
	// MaxIterationsKey records the solver iteration cap.
	MaxIterationsKey = "hyperparams.max_iterations"

	// RegularizationKey records L2 regularization strength.
	RegularizationKey = "hyperparams.regularization"

	// TestFractionKey records the held-out fraction.
	TestFractionKey = "config.test_fraction"

	// RandomSeedKey records the random seed for reproducibility.
	RandomSeedKey = "config.random_seed"
)

// Standard attribute values.
const (
	OperationFit       = "fit"
	OperationPredict   = "predict"
	OperationTransform = "transform"
	OperationScore     = "score"

	PhaseTraining      = "training"
	PhaseTesting       = "testing"
	PhaseInference     = "inference"
	PhasePreprocessing = "preprocessing"
)
