package linear

import (
	"gonum.org/v1/gonum/stat"
)

// earlyStopWindow is the number of recent epoch losses compared.
const earlyStopWindow = 5

// earlyStopper keeps the monitored loss of the last earlyStopWindow epochs in
// a circular buffer. Slots start at zero, so the first epochs compare real
// losses against zeros.
type earlyStopper struct {
	losses    [earlyStopWindow]float64
	tolerance float64
}

func newEarlyStopper(tolerance float64) *earlyStopper {
	return &earlyStopper{tolerance: tolerance}
}

// Record stores loss in the slot of epoch (0-based).
func (s *earlyStopper) Record(epoch int, loss float64) {
	s.losses[epoch%earlyStopWindow] = loss
}

// Std returns the population standard deviation of the window.
func (s *earlyStopper) Std() float64 {
	_, std := stat.PopMeanStdDev(s.losses[:], nil)
	return std
}

// Stable reports whether the window has flattened out. A NaN in the window is
// never stable.
func (s *earlyStopper) Stable() bool {
	return s.Std() <= s.tolerance
}
