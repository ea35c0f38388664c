package linear

import (
	"io"
	"math/rand/v2"

	"github.com/YuminosukeSato/gdlinear/pkg/log"
	"gonum.org/v1/gonum/mat"
)

// Option is a function that configures an SGDRegressor.
type Option func(*SGDRegressor)

// WithLearningRate sets the default step size used by Fit.
func WithLearningRate(lr float64) Option {
	return func(m *SGDRegressor) {
		m.learningRate = lr
	}
}

// WithBatchSize sets the default mini-batch size used by Fit.
func WithBatchSize(n int) Option {
	return func(m *SGDRegressor) {
		m.batchSize = n
	}
}

// WithRandomState seeds the source used for parameter initialisation and
// shuffling, making training reproducible.
func WithRandomState(seed uint64) Option {
	return func(m *SGDRegressor) {
		m.rng = rand.New(rand.NewPCG(seed, seed))
		m.randomState = &seed
	}
}

// WithRand uses r as the random source. When combined with WithRandomState
// the later option wins.
func WithRand(r *rand.Rand) Option {
	return func(m *SGDRegressor) {
		m.rng = r
		m.randomState = nil
	}
}

// WithLogger replaces the structured logger.
func WithLogger(l log.Logger) Option {
	return func(m *SGDRegressor) {
		m.logger = l
	}
}

// WithDiagnosticWriter sets where per-epoch loss lines are written when
// debug output is on.
func WithDiagnosticWriter(w io.Writer) Option {
	return func(m *SGDRegressor) {
		m.out = w
	}
}

// WithLossPlotter sets the collaborator that renders loss curves when Fit is
// called with WithDraw(true).
func WithLossPlotter(p LossPlotter) Option {
	return func(m *SGDRegressor) {
		m.plotter = p
	}
}

// fitConfig holds the per-call settings of Fit.
type fitConfig struct {
	epochs       int
	learningRate float64
	batchSize    int
	tolerance    float64
	draw         bool
	debug        bool

	xVal mat.Matrix
	yVal mat.Matrix
}

func (c *fitConfig) hasValidation() bool {
	return c.xVal != nil
}

// FitOption configures a single call to Fit.
type FitOption func(*fitConfig)

// WithEpochs sets the maximum number of passes over the training set.
func WithEpochs(n int) FitOption {
	return func(c *fitConfig) {
		c.epochs = n
	}
}

// WithValidationData evaluates the model on (X, y) after every epoch. The
// validation loss then drives early stopping instead of the training loss.
func WithValidationData(X, y mat.Matrix) FitOption {
	return func(c *fitConfig) {
		c.xVal = X
		c.yVal = y
	}
}

// WithFitLearningRate overrides the instance learning rate for this call.
func WithFitLearningRate(lr float64) FitOption {
	return func(c *fitConfig) {
		c.learningRate = lr
	}
}

// WithFitBatchSize overrides the instance batch size for this call.
func WithFitBatchSize(n int) FitOption {
	return func(c *fitConfig) {
		c.batchSize = n
	}
}

// WithTolerance sets the early-stopping threshold on the standard deviation
// of the last five monitored losses. Zero only stops on a perfectly flat
// window.
func WithTolerance(tol float64) FitOption {
	return func(c *fitConfig) {
		c.tolerance = tol
	}
}

// WithDraw hands the loss histories to the configured LossPlotter after
// training. With zero epochs the plotter receives empty histories.
func WithDraw(draw bool) FitOption {
	return func(c *fitConfig) {
		c.draw = draw
	}
}

// WithDebug toggles the per-epoch loss lines on the diagnostic writer.
func WithDebug(debug bool) FitOption {
	return func(c *fitConfig) {
		c.debug = debug
	}
}
