package linear

import (
	"context"
	"fmt"
	"io"
	"math"
	"math/rand/v2"
	"os"
	"sync"
	"time"

	"github.com/YuminosukeSato/gdlinear/batch"
	"github.com/YuminosukeSato/gdlinear/core/model"
	"github.com/YuminosukeSato/gdlinear/core/parallel"
	"github.com/YuminosukeSato/gdlinear/metrics"
	"github.com/YuminosukeSato/gdlinear/pkg/errors"
	"github.com/YuminosukeSato/gdlinear/pkg/log"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

const (
	// DefaultLearningRate is the step size used when none is configured.
	DefaultLearningRate = 0.01
	// DefaultBatchSize is the mini-batch size used when none is configured.
	DefaultBatchSize = 16
	// DefaultEpochs is the maximum number of epochs of a Fit call.
	DefaultEpochs = 50
	// DefaultTolerance is the early-stopping threshold. It is absolute, so it
	// only means something relative to the scale of the target.
	DefaultTolerance = 1.0

	modelName      = "SGDRegressor"
	weightsVersion = "1.0.0"
)

// LossPlotter renders training and validation loss curves. val is empty when
// no validation data was used.
type LossPlotter interface {
	PlotLosses(train, val []float64) error
}

// History is the per-epoch loss record of one Fit call.
type History struct {
	// Train holds the mean mini-batch loss of every completed epoch.
	Train []float64
	// Validation holds the validation loss of every completed epoch, or is
	// empty when Fit ran without validation data.
	Validation []float64
	// StoppedEarly is true when the loss window flattened before the epoch
	// budget ran out.
	StoppedEarly bool
}

// Epochs returns the number of epochs that ran.
func (h *History) Epochs() int {
	return len(h.Train)
}

// SGDRegressor is a linear regression model y = X·w + b trained by
// mini-batch gradient descent on the mean squared error.
//
// Fit re-initialises the parameters from a standard normal draw, then
// shuffles the training set into mini-batches every epoch and takes one
// gradient step per batch. Training stops after the configured number of
// epochs or earlier, once the standard deviation of the last five epoch
// losses drops to the tolerance.
//
// Fit, Predict and Score may be called from several goroutines; Fit is
// exclusive.
type SGDRegressor struct {
	mu    sync.RWMutex
	state *model.StateManager

	weights   *mat.VecDense
	intercept float64

	learningRate float64
	batchSize    int
	randomState  *uint64
	rng          *rand.Rand

	logger  log.Logger
	out     io.Writer
	plotter LossPlotter
}

var (
	_ model.Regressor      = (*SGDRegressor)(nil)
	_ model.WeightExporter = (*SGDRegressor)(nil)
)

// NewSGDRegressor creates an unfitted regressor.
//
// 使用例:
//
//	reg := linear.NewSGDRegressor(
//	    linear.WithLearningRate(0.01),
//	    linear.WithBatchSize(16),
//	    linear.WithRandomState(42),
//	)
//	history, err := reg.Fit(X, y, linear.WithEpochs(100))
func NewSGDRegressor(opts ...Option) *SGDRegressor {
	m := &SGDRegressor{
		state:        model.NewStateManager(),
		learningRate: DefaultLearningRate,
		batchSize:    DefaultBatchSize,
		out:          os.Stdout,
	}
	for _, opt := range opts {
		opt(m)
	}

	if m.rng == nil {
		m.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if m.logger == nil {
		m.logger = log.GetLoggerWithName("linear")
	}
	m.logger = m.logger.With(log.ModelNameKey, modelName)
	if m.out == nil {
		m.out = io.Discard
	}
	return m
}

// Fit trains the model on X (N×D) and y (N×1) and returns the loss history.
//
// Inputs are validated before anything changes, so a failed call leaves a
// previously fitted model intact. If drawing is requested and the plotter
// fails or panics, the model is trained and the history is returned together
// with the plotter's error. A run that uses every epoch without the loss
// window settling emits an errors.ConvergenceWarning through errors.Warn.
func (m *SGDRegressor) Fit(X, y mat.Matrix, opts ...FitOption) (_ *History, err error) {
	defer errors.Recover(&err, "SGDRegressor.Fit")

	m.mu.Lock()
	defer m.mu.Unlock()

	cfg := fitConfig{
		epochs:       DefaultEpochs,
		learningRate: m.learningRate,
		batchSize:    m.batchSize,
		tolerance:    DefaultTolerance,
		debug:        true,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	yVec, yVal, err := m.validateFit(X, y, &cfg)
	if err != nil {
		return nil, err
	}

	batcher, err := batch.New(cfg.batchSize, m.rng)
	if err != nil {
		return nil, err
	}

	nSamples, nFeatures := X.Dims()
	m.initParams(nFeatures)
	m.state.MarkFitted(nFeatures, nSamples)

	logger := m.logger.With(log.OperationKey, log.OperationFit)
	logger.Info("Training started",
		log.SamplesKey, nSamples,
		log.FeaturesKey, nFeatures,
		log.BatchSizeKey, batcher.BatchSize(),
		log.LearningRateKey, cfg.learningRate,
		log.EpochsKey, cfg.epochs,
	)
	start := time.Now()

	history := &History{
		Train:      make([]float64, 0, cfg.epochs),
		Validation: []float64{},
	}
	stopper := newEarlyStopper(cfg.tolerance)
	warned := false

	for epoch := 0; epoch < cfg.epochs; epoch++ {
		if err := batcher.Batch(X, yVec); err != nil {
			return nil, err
		}

		batchLosses := make([]float64, 0, batcher.Len())
		for mb := range batcher.All() {
			loss, err := m.step(mb, cfg.learningRate)
			if err != nil {
				return nil, err
			}
			batchLosses = append(batchLosses, loss)
		}

		trainLoss := stat.Mean(batchLosses, nil)
		history.Train = append(history.Train, trainLoss)
		monitored := trainLoss

		if cfg.hasValidation() {
			valLoss, err := metrics.MSE(yVal, m.predict(cfg.xVal))
			if err != nil {
				return nil, err
			}
			history.Validation = append(history.Validation, valLoss)
			monitored = valLoss
		}

		if !warned {
			if err := errors.CheckScalar("SGDRegressor.Fit", monitored, epoch+1); err != nil {
				errors.Warn(err)
				warned = true
			}
		}

		stopper.Record(epoch, monitored)

		if cfg.debug {
			fmt.Fprintf(m.out, "Loss of epoch %d: %v\n", epoch+1, trainLoss)
		}
		if logger.Enabled(context.Background(), log.LevelDebug) {
			fields := []any{
				log.PhaseKey, log.PhaseTraining,
				log.EpochKey, epoch + 1,
				log.BatchesKey, len(batchLosses),
				log.LossKey, trainLoss,
				log.LossStdKey, stopper.Std(),
			}
			if cfg.hasValidation() {
				fields = append(fields, log.ValLossKey, monitored)
			}
			logger.Debug("Epoch completed", fields...)
		}

		if stopper.Stable() {
			history.StoppedEarly = true
			if cfg.debug {
				fmt.Fprintln(m.out, "No obvious improvement is observed.")
			}
			logger.Info("Early stopping",
				log.EpochKey, epoch+1,
				log.LossStdKey, stopper.Std(),
			)
			break
		}
	}

	if !history.StoppedEarly && cfg.epochs > 0 {
		errors.Warn(errors.NewConvergenceWarning(modelName, history.Epochs(), ""))
	}

	logger.Info("Training completed",
		log.EpochKey, history.Epochs(),
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)

	if cfg.draw {
		// The history survives a panicking plotter.
		err := errors.SafeExecute("SGDRegressor.Fit.draw", func() error {
			return m.plotter.PlotLosses(history.Train, history.Validation)
		})
		if err != nil {
			return history, errors.Wrap(err, "SGDRegressor.Fit: draw loss curves")
		}
	}
	return history, nil
}

// validateFit checks every input of Fit and converts the targets to vectors.
// It must not touch the model.
func (m *SGDRegressor) validateFit(X, y mat.Matrix, cfg *fitConfig) (yVec, yVal *mat.VecDense, err error) {
	const op = "SGDRegressor.Fit"

	nSamples, nFeatures := X.Dims()
	if nSamples == 0 || nFeatures == 0 {
		return nil, nil, errors.NewModelError(op, "empty data", errors.ErrEmptyData)
	}
	if yVec, err = columnVector(op, y, nSamples); err != nil {
		return nil, nil, err
	}

	if cfg.epochs < 0 {
		return nil, nil, errors.NewValidationError("epochs", "must be non-negative", cfg.epochs)
	}
	if !(cfg.learningRate > 0) || math.IsInf(cfg.learningRate, 0) {
		return nil, nil, errors.NewValidationError("learning_rate", "must be a positive finite number", cfg.learningRate)
	}
	if cfg.batchSize < 1 {
		return nil, nil, errors.NewValidationError("batch_size", "must be at least 1", cfg.batchSize)
	}
	if !(cfg.tolerance >= 0) {
		return nil, nil, errors.NewValidationError("tolerance", "must be non-negative", cfg.tolerance)
	}
	if cfg.draw && m.plotter == nil {
		return nil, nil, errors.NewValidationError("draw", "no LossPlotter configured", cfg.draw)
	}

	if (cfg.xVal == nil) != (cfg.yVal == nil) {
		return nil, nil, errors.NewValidationError("validation_data", "X_val and y_val must be given together", nil)
	}
	if cfg.hasValidation() {
		valSamples, valFeatures := cfg.xVal.Dims()
		if valSamples == 0 || valFeatures == 0 {
			return nil, nil, errors.NewModelError(op, "empty validation data", errors.ErrEmptyData)
		}
		if valFeatures != nFeatures {
			return nil, nil, errors.NewDimensionError(op, nFeatures, valFeatures, 1)
		}
		if yVal, err = columnVector(op, cfg.yVal, valSamples); err != nil {
			return nil, nil, err
		}
	}
	return yVec, yVal, nil
}

// initParams draws w and b from a standard normal distribution.
func (m *SGDRegressor) initParams(nFeatures int) {
	w := make([]float64, nFeatures)
	for j := range w {
		w[j] = m.rng.NormFloat64()
	}
	m.weights = mat.NewVecDense(nFeatures, w)
	m.intercept = m.rng.NormFloat64()
}

// step takes one gradient step on mb and returns the batch loss measured
// before the update.
func (m *SGDRegressor) step(mb batch.Batch, lr float64) (float64, error) {
	yPred := m.predict(mb.X)
	loss, err := metrics.MSE(mb.Y, yPred)
	if err != nil {
		return 0, err
	}

	gradW, gradB := gradient(mb.X, mb.Y, yPred)
	m.weights.AddScaledVec(m.weights, -lr, gradW)
	m.intercept -= lr * gradB
	return loss, nil
}

// gradient returns the MSE gradient with respect to w and b:
// (2/n)·Xᵀ(yPred−y) and 2·mean(yPred−y).
func gradient(X mat.Matrix, y, yPred mat.Vector) (*mat.VecDense, float64) {
	n, d := X.Dims()

	residual := mat.NewVecDense(n, nil)
	residual.SubVec(yPred, y)

	gradW := mat.NewVecDense(d, nil)
	gradW.MulVec(X.T(), residual)
	gradW.ScaleVec(2/float64(n), gradW)

	gradB := 2 * mat.Sum(residual) / float64(n)
	return gradW, gradB
}

// CalculateGradient returns the gradient of the mean squared error between y
// and yPred with respect to the weights and the intercept, for the rows of X.
func (m *SGDRegressor) CalculateGradient(X mat.Matrix, y, yPred mat.Vector) (gradW *mat.VecDense, gradB float64, err error) {
	defer errors.Recover(&err, "SGDRegressor.CalculateGradient")

	n, d := X.Dims()
	if n == 0 || d == 0 {
		return nil, 0, errors.NewModelError("SGDRegressor.CalculateGradient", "empty data", errors.ErrEmptyData)
	}
	if y.Len() != n {
		return nil, 0, errors.NewDimensionError("SGDRegressor.CalculateGradient", n, y.Len(), 0)
	}
	if yPred.Len() != n {
		return nil, 0, errors.NewDimensionError("SGDRegressor.CalculateGradient", n, yPred.Len(), 0)
	}

	gradW, gradB = gradient(X, y, yPred)
	return gradW, gradB, nil
}

// CalculateLoss returns the mean squared error between y and yPred.
func (m *SGDRegressor) CalculateLoss(y, yPred mat.Vector) (float64, error) {
	return metrics.MSE(y, yPred)
}

// Predict returns X·w + b for every row of X.
func (m *SGDRegressor) Predict(X mat.Matrix) (_ *mat.VecDense, err error) {
	defer errors.Recover(&err, "SGDRegressor.Predict")

	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := m.checkPredictInput("Predict", X); err != nil {
		return nil, err
	}
	return m.predict(X), nil
}

func (m *SGDRegressor) checkPredictInput(method string, X mat.Matrix) error {
	if err := m.state.RequireFitted(modelName, method); err != nil {
		m.logger.Debug("Model not fitted", log.ErrorCodeKey, log.ErrorNotFitted)
		return err
	}
	nFeatures, _ := m.state.GetDimensions()
	if _, c := X.Dims(); c != nFeatures {
		m.logger.Debug("Feature count mismatch", log.ErrorCodeKey, log.ErrorDimensionMismatch)
		return errors.NewDimensionError(modelName+"."+method, nFeatures, c, 1)
	}
	return nil
}

// predict computes X·w + b without any checks. Rows are split across
// goroutines above parallel.DefaultThreshold.
func (m *SGDRegressor) predict(X mat.Matrix) *mat.VecDense {
	r, c := X.Dims()
	preds := mat.NewVecDense(r, nil)

	parallel.ParallelizeWithThreshold(r, parallel.DefaultThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			pred := m.intercept
			for j := 0; j < c; j++ {
				pred += X.At(i, j) * m.weights.AtVec(j)
			}
			preds.SetVec(i, pred)
		}
	})
	return preds
}

// Score returns the coefficient of determination R² of the predictions for X
// against y, rounded to 5 decimal places. A constant y has no defined R²; the
// returned error then wraps errors.ErrZeroVariance.
func (m *SGDRegressor) Score(X, y mat.Matrix) (_ float64, err error) {
	defer errors.Recover(&err, "SGDRegressor.Score")

	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := m.checkPredictInput("Score", X); err != nil {
		return 0, err
	}
	nSamples, _ := X.Dims()
	yVec, err := columnVector("SGDRegressor.Score", y, nSamples)
	if err != nil {
		return 0, err
	}

	r2, err := metrics.R2Score(yVec, m.predict(X))
	if err != nil {
		if errors.Is(err, errors.ErrZeroVariance) {
			m.logger.Debug("Score undefined", log.ErrorCodeKey, log.ErrorZeroVariance)
		}
		return 0, errors.Wrap(err, "SGDRegressor.Score")
	}

	score := math.Round(r2*1e5) / 1e5
	m.logger.Debug("Score computed",
		log.OperationKey, log.OperationScore,
		log.SamplesKey, nSamples,
		log.R2ScoreKey, score,
	)
	return score, nil
}

// Coef returns a copy of the learned weights, or nil before Fit.
func (m *SGDRegressor) Coef() []float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.weights == nil {
		return nil
	}
	coef := make([]float64, m.weights.Len())
	for i := range coef {
		coef[i] = m.weights.AtVec(i)
	}
	return coef
}

// Intercept returns the learned bias, or 0 before Fit.
func (m *SGDRegressor) Intercept() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.intercept
}

// IsFitted reports whether Fit or ImportWeights has completed.
func (m *SGDRegressor) IsFitted() bool {
	return m.state.IsFitted()
}

// GetParams returns the hyper-parameters of the model.
func (m *SGDRegressor) GetParams() map[string]interface{} {
	params := map[string]interface{}{
		"learning_rate": m.learningRate,
		"batch_size":    m.batchSize,
		"random_state":  nil,
	}
	if m.randomState != nil {
		params["random_state"] = *m.randomState
	}
	return params
}

// ExportWeights returns a serializable snapshot of the model.
func (m *SGDRegressor) ExportWeights() (*model.ModelWeights, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	state := m.state.GetState()
	mw := &model.ModelWeights{
		ModelType:       modelName,
		Version:         weightsVersion,
		Hyperparameters: m.GetParams(),
		Metadata:        map[string]interface{}{},
		IsFitted:        state.Fitted,
	}
	if state.Fitted {
		mw.Coefficients = make([]float64, m.weights.Len())
		for i := range mw.Coefficients {
			mw.Coefficients[i] = m.weights.AtVec(i)
		}
		mw.Intercept = m.intercept
		mw.Metadata["n_samples"] = state.NSamples
	}
	return mw, nil
}

// ImportWeights replaces the model parameters with weights. Hyper-parameters
// are left as configured.
func (m *SGDRegressor) ImportWeights(weights *model.ModelWeights) error {
	if weights == nil {
		return errors.NewValidationError("weights", "must not be nil", nil)
	}
	if err := weights.Validate(); err != nil {
		return err
	}
	if weights.ModelType != modelName {
		return errors.NewValidationError("model_type", "must be "+modelName, weights.ModelType)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if !weights.IsFitted {
		m.weights = nil
		m.intercept = 0
		m.state.Reset()
		return nil
	}

	coef := make([]float64, len(weights.Coefficients))
	copy(coef, weights.Coefficients)
	m.weights = mat.NewVecDense(len(coef), coef)
	m.intercept = weights.Intercept
	m.state.MarkFitted(len(coef), metadataInt(weights.Metadata, "n_samples"))
	return nil
}

// metadataInt reads an integer that may have been decoded from JSON as float64.
func metadataInt(meta map[string]interface{}, key string) int {
	switch v := meta[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	default:
		return 0
	}
}

// columnVector checks that y is rows×1 and returns it as a vector.
func columnVector(op string, y mat.Matrix, rows int) (*mat.VecDense, error) {
	r, c := y.Dims()
	if r != rows {
		return nil, errors.NewDimensionError(op, rows, r, 0)
	}
	if c != 1 {
		return nil, errors.NewValueError(op, "y must be a column vector")
	}
	if v, ok := y.(*mat.VecDense); ok {
		return v, nil
	}
	return mat.NewVecDense(r, mat.Col(nil, 0, y)), nil
}
