// Package log defines standard attribute keys for probabilistic-model operations.
//
// Using these keys consistently across warping, energy evaluation, and
// hyperparameter search makes the emitted JSON records filterable by
// operation, model, and search progress.
package log

// Model and operation context.
const (
	// ProcessNameKey identifies the type of process being operated on.
	// Examples: "GPRegression", "WarpedProcess"
	ProcessNameKey = "process.name"

	// OperationKey specifies the operation being performed.
	// Examples: "fit", "energy", "predict", "compute_landscape", "sample"
	OperationKey = "operation"

	// MapNameKey identifies the pushforward map involved in a warp operation.
	// Examples: "identity", "exp", "affine"
	MapNameKey = "map.name"
)

// Data shape and search characteristics.
const (
	// PointsKey is the number of training points of a process.
	PointsKey = "data.points"

	// BlocksKey is the number of blocks of a partitioned vector or matrix.
	BlocksKey = "data.blocks"

	// ConfigurationsKey is the number of configurations in a landscape sweep.
	ConfigurationsKey = "search.configurations"

	// SamplesKey is the number of prior-guided samples drawn.
	SamplesKey = "search.samples"

	// GridSizeKey is the per-dimension grid size of a grid search.
	GridSizeKey = "search.grid_size"
)

// Numeric results.
const (
	// EnergyKey is a scalar energy (negative log-evidence-like) value.
	EnergyKey = "result.energy"

	// DeterminantKey is a Jacobian determinant correction factor.
	DeterminantKey = "result.determinant"

	// AcceptanceRateKey is the acceptance rate of a Metropolis-Hastings chain.
	AcceptanceRateKey = "result.acceptance_rate"
)
