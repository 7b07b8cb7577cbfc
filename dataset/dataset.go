// Package dataset provides the observation-matrix-plus-labels abstraction
// the rvm package consumes. It plays the role of the "dataset abstraction"
// collaborator named in the spec as out of the RVM core's scope — kept as a
// small, concrete in-memory implementation here since a Go module has no
// external placeholder for an unimported collaborator.
package dataset

import (
	"gonum.org/v1/gonum/mat"

	"github.com/sparsebayes/rvm/pkg/errors"
)

// Dataset is the observation-matrix-plus-labels collaborator the rvm
// package trains against.
type Dataset interface {
	// NObservations returns N, the number of rows.
	NObservations() int

	// NFeatures returns D, the number of columns.
	NFeatures() int

	// Observations returns the rows named by indices as an N'×D matrix. A
	// nil indices slice returns all rows in original order.
	Observations(indices []int) (*mat.Dense, error)

	// TargetsBinary returns an N×2 one-hot matrix: row i is [1,0] if
	// observation i belongs to the negative class, [0,1] if positive.
	TargetsBinary() (*mat.Dense, error)

	// IsBinary reports whether the dataset has exactly two distinct class
	// labels.
	IsBinary() bool
}

// Dense is an in-memory Dataset backed by a dense observation matrix and an
// arbitrary comparable label per row; it accepts any two-valued label set
// (not just ±1) and maps them to the dataset's own negative/positive
// convention internally.
type Dense struct {
	x       *mat.Dense
	labels  []float64
	classes []float64 // classes[0] = negative, classes[1] = positive (sorted)
}

// NewDense builds a Dataset from an N×D observation matrix and a length-N
// label slice. Labels may take any two distinct float64 values; the smaller
// is treated as the negative class and the larger as the positive class.
// Datasets with fewer or more than two distinct labels are still
// constructed (so that IsBinary can report false and the caller can surface
// NonBinaryInputError), but TargetsBinary will fail on them.
func NewDense(x *mat.Dense, labels []float64) (*Dense, error) {
	n, _ := x.Dims()
	if n == 0 {
		return nil, errors.NewValueError("dataset.NewDense", "empty observation matrix")
	}
	if len(labels) != n {
		return nil, errors.NewDimensionError("dataset.NewDense", n, len(labels), 0)
	}

	seen := make(map[float64]bool)
	var classes []float64
	for _, l := range labels {
		if !seen[l] {
			seen[l] = true
			classes = append(classes, l)
		}
	}
	// Keep classes sorted so the mapping negative/positive is deterministic.
	for i := 1; i < len(classes); i++ {
		for j := i; j > 0 && classes[j-1] > classes[j]; j-- {
			classes[j-1], classes[j] = classes[j], classes[j-1]
		}
	}

	return &Dense{x: x, labels: labels, classes: classes}, nil
}

func (d *Dense) NObservations() int {
	n, _ := d.x.Dims()
	return n
}

func (d *Dense) NFeatures() int {
	_, c := d.x.Dims()
	return c
}

func (d *Dense) Observations(indices []int) (*mat.Dense, error) {
	n, cols := d.x.Dims()
	if indices == nil {
		out := mat.NewDense(n, cols, nil)
		out.Copy(d.x)
		return out, nil
	}
	out := mat.NewDense(len(indices), cols, nil)
	for i, idx := range indices {
		if idx < 0 || idx >= n {
			return nil, errors.NewValidationError("indices", "out of range", idx)
		}
		out.SetRow(i, mat.Row(nil, idx, d.x))
	}
	return out, nil
}

func (d *Dense) IsBinary() bool {
	return len(d.classes) == 2
}

func (d *Dense) TargetsBinary() (*mat.Dense, error) {
	if !d.IsBinary() {
		return nil, errors.NewNonBinaryInputError(len(d.classes))
	}
	n := len(d.labels)
	out := mat.NewDense(n, 2, nil)
	for i, l := range d.labels {
		if l == d.classes[0] {
			out.Set(i, 0, 1)
		} else {
			out.Set(i, 1, 1)
		}
	}
	return out, nil
}

// LabelsPM1AndZeroOne converts the N×2 one-hot matrix produced by
// TargetsBinary into the ±1 and {0,1} label encodings the rvm package needs:
// y[i] = -1/+1, y01[i] = 0/1, consistent with TargetsBinary's negative/
// positive column convention.
func LabelsPM1AndZeroOne(binary *mat.Dense) (y, y01 []float64, err error) {
	n, c := binary.Dims()
	if c != 2 {
		return nil, nil, errors.NewDimensionError("dataset.LabelsPM1AndZeroOne", 2, c, 1)
	}
	y = make([]float64, n)
	y01 = make([]float64, n)
	for i := 0; i < n; i++ {
		if binary.At(i, 1) > binary.At(i, 0) {
			y[i] = 1
			y01[i] = 1
		} else {
			y[i] = -1
			y01[i] = 0
		}
	}
	return y, y01, nil
}
