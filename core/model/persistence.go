package model

import (
	"io"

	"github.com/YuminosukeSato/gdlinear/pkg/errors"
)

// SaveWeights exports the weights of m and writes them to w as indented JSON.
//
// 使用例:
//
//	var buf bytes.Buffer
//	err := model.SaveWeights(reg, &buf)
func SaveWeights(m WeightExporter, w io.Writer) error {
	weights, err := m.ExportWeights()
	if err != nil {
		return err
	}

	data, err := weights.ToJSON()
	if err != nil {
		return errors.Wrap(err, "encode model weights")
	}

	if _, err := w.Write(data); err != nil {
		return errors.Wrap(err, "write model weights")
	}
	return nil
}

// LoadWeights reads JSON weights from r, validates them and imports them
// into m.
func LoadWeights(m WeightExporter, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return errors.Wrap(err, "read model weights")
	}

	weights := &ModelWeights{}
	if err := weights.FromJSON(data); err != nil {
		return err
	}

	if err := weights.Validate(); err != nil {
		return err
	}

	return m.ImportWeights(weights)
}
