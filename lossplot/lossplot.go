// Package lossplot renders per-epoch loss histories as line charts.
//
// A Renderer satisfies linear.LossPlotter, so a regressor configured with
// one hands over its histories when Fit is called with drawing enabled:
//
//	reg := linear.NewSGDRegressor(linear.WithLossPlotter(lossplot.New("loss.png")))
//	_, err := reg.Fit(X, y, linear.WithDraw(true))
package lossplot

import (
	"github.com/YuminosukeSato/gdlinear/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// Renderer draws loss curves and saves them to a file. The image format
// follows the file extension (png, svg, pdf, ...).
type Renderer struct {
	path   string
	title  string
	width  vg.Length
	height vg.Length
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithTitle sets the chart title.
func WithTitle(title string) Option {
	return func(r *Renderer) {
		r.title = title
	}
}

// WithSize sets the image size.
func WithSize(width, height vg.Length) Option {
	return func(r *Renderer) {
		r.width = width
		r.height = height
	}
}

// New returns a Renderer saving to path.
func New(path string, opts ...Option) *Renderer {
	r := &Renderer{
		path:   path,
		title:  "Training loss",
		width:  6 * vg.Inch,
		height: 4 * vg.Inch,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Path returns the output file path.
func (r *Renderer) Path() string {
	return r.path
}

// Plot builds the chart: one line for each non-empty history. Epochs are
// numbered from 1 on the x axis. Two empty histories give empty axes.
func (r *Renderer) Plot(train, val []float64) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = r.title
	p.X.Label.Text = "Epoch"
	p.Y.Label.Text = "MSE"
	p.Add(plotter.NewGrid())

	series := []struct {
		name   string
		losses []float64
	}{
		{"train", train},
		{"validation", val},
	}
	for i, s := range series {
		if len(s.losses) == 0 {
			continue
		}
		line, err := plotter.NewLine(epochPoints(s.losses))
		if err != nil {
			return nil, errors.Wrapf(err, "lossplot: %s history", s.name)
		}
		line.Color = plotutil.Color(i)
		line.Dashes = plotutil.Dashes(i)
		line.Width = vg.Points(1.5)
		p.Add(line)
		p.Legend.Add(s.name, line)
	}
	p.Legend.Top = true

	return p, nil
}

// PlotLosses renders the histories and saves the image.
func (r *Renderer) PlotLosses(train, val []float64) error {
	p, err := r.Plot(train, val)
	if err != nil {
		return err
	}
	if err := p.Save(r.width, r.height, r.path); err != nil {
		return errors.Wrapf(err, "lossplot: save %s", r.path)
	}
	return nil
}

func epochPoints(losses []float64) plotter.XYs {
	pts := make(plotter.XYs, len(losses))
	for i, l := range losses {
		pts[i].X = float64(i + 1)
		pts[i].Y = l
	}
	return pts
}
