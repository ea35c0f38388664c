// Package gdlinear trains linear regression models with mini-batch gradient
// descent on the mean squared error.
//
// The library is built on gonum matrices and keeps the training loop small
// and observable: every Fit call returns the per-epoch loss history, stops
// early once the recent losses flatten out, and can hand the curves to a
// plotter.
//
// # Packages
//
//   - linear: SGDRegressor, the trainer (Fit, Predict, Score, CalculateGradient, CalculateLoss)
//   - batch: shuffled mini-batch partitioning of a training set
//   - metrics: MSE, RMSE and R² over gonum vectors
//   - lossplot: gonum/plot renderer for loss histories
//   - preprocessing: StandardScaler
//   - core/model: estimator lifecycle, interfaces and weight persistence
//   - pkg/errors, pkg/log: error taxonomy and structured logging
//
// # Quick Start
//
//	X := mat.NewDense(4, 1, []float64{-1, 0, 1, 2})
//	y := mat.NewDense(4, 1, []float64{-1, 2, 5, 8})
//
//	reg := linear.NewSGDRegressor(
//	    linear.WithLearningRate(0.05),
//	    linear.WithBatchSize(2),
//	    linear.WithRandomState(42),
//	)
//	history, err := reg.Fit(X, y, linear.WithEpochs(200), linear.WithTolerance(1e-6))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(reg.Coef(), reg.Intercept(), history.Epochs())
//
// # Early stopping
//
// After every epoch the monitored loss (validation loss when validation data
// is given, training loss otherwise) is written into a five-slot window that
// starts out as zeros. Training stops once the population standard deviation
// of the window is at most the tolerance, 1.0 by default. The tolerance is an
// absolute value, so standardise the target with preprocessing.StandardScaler
// when its scale is arbitrary.
//
// # Error Handling
//
// Errors carry stack traces from github.com/cockroachdb/errors and can be
// inspected with errors.As:
//
//	var nfe *errors.NotFittedError
//	if errors.As(err, &nfe) {
//	    // call Fit first
//	}
//
// Numerical problems during training never abort Fit; they are reported
// through errors.Warn.
package gdlinear
