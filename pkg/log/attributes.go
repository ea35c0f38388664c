// Package log defines standard attribute keys for training and inference logs.
//
// Keys follow a hierarchical naming convention ("model.name", "data.samples")
// so that log pipelines can filter on them.

package log

// Model and Operation Context
const (
	// ModelNameKey identifies the type of model, e.g. "SGDRegressor".
	ModelNameKey = "model.name"

	// OperationKey specifies the operation being performed.
	// Standard values: "fit", "predict", "score"
	OperationKey = "ml.operation"

	// ComponentKey identifies which package is logging.
	ComponentKey = "ml.component"

	// PhaseKey indicates the phase of model lifecycle.
	PhaseKey = "ml.phase"
)

// Data Shape
const (
	SamplesKey   = "data.samples"
	FeaturesKey  = "data.features"
	BatchSizeKey = "data.batch_size"
	// BatchesKey is the number of mini-batches in one epoch.
	BatchesKey = "data.batches"
)

// Performance Metrics
const (
	// DurationMsKey records the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"

	// LossKey records the training loss of an epoch.
	LossKey = "metrics.loss"

	// ValLossKey records the validation loss of an epoch.
	ValLossKey = "metrics.val_loss"

	// LossStdKey records the spread of the early-stopping window.
	LossStdKey = "metrics.loss_std"

	// R2ScoreKey records R² coefficient of determination for regression.
	R2ScoreKey = "metrics.r2_score"

	// EpochKey records the current epoch number (1-based) during training.
	EpochKey = "training.epoch"

	// EpochsKey records the configured maximum number of epochs.
	EpochsKey = "training.epochs"
)

// Prediction Context
const (
	// PredsKey indicates the number of predictions made.
	PredsKey = "preds.count"
)

// Error and Warning Context
const (
	ErrorCodeKey = "error.code"
	ErrorTypeKey = "error.type"
)

// Hyperparameters and Configuration
const (
	LearningRateKey = "hyperparams.learning_rate"
	RandomSeedKey   = "config.random_seed"
)

// Standard attribute values.
const (
	OperationFit     = "fit"
	OperationPredict = "predict"
	OperationScore   = "score"

	PhaseTraining   = "training"
	PhaseValidation = "validation"
	PhaseInference  = "inference"

	ErrorNotFitted         = "NOT_FITTED"
	ErrorDimensionMismatch = "DIMENSION_MISMATCH"
	ErrorInvalidInput      = "INVALID_INPUT"
	ErrorZeroVariance      = "ZERO_VARIANCE"
)
