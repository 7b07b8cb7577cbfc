// Package kernel provides the basis-function descriptors the rvm package
// centers on a dataset to produce concrete basis functions, and the Gram
// matrix builder that evaluates them over a design matrix.
package kernel

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/sparsebayes/rvm/core/parallel"
	"github.com/sparsebayes/rvm/dataset"
	"github.com/sparsebayes/rvm/pkg/errors"
)

// Instance is a single concrete basis function, ready to be evaluated at an
// arbitrary feature vector.
type Instance interface {
	// Evaluate returns φ(x) for the feature vector x.
	Evaluate(x []float64) float64

	// String names the instance for diagnostics, e.g. "rbf@12" or "bias".
	String() string
}

// Template describes a family of basis functions before it has been
// centered on a concrete dataset. Centering a Template against a Dataset
// yields the Instances that make up the candidate basis set; an RBF
// Template typically yields one Instance per observation, while a bias
// (DC) Template yields exactly one constant Instance.
type Template interface {
	// Center returns the Instances this Template contributes once bound to
	// ds.
	Center(ds dataset.Dataset) ([]Instance, error)

	// String names the template family, e.g. "rbf" or "dc".
	String() string
}

// biasInstance is the constant basis function used to give the model an
// intercept term.
type biasInstance struct{}

func (biasInstance) Evaluate(_ []float64) float64 { return 1 }
func (biasInstance) String() string                { return "bias" }

// DC is the bias (intercept) Template: it always centers to a single
// constant-1 Instance regardless of the dataset.
type DC struct{}

// NewDC creates a bias Template.
func NewDC() DC { return DC{} }

func (DC) Center(_ dataset.Dataset) ([]Instance, error) {
	return []Instance{biasInstance{}}, nil
}

func (DC) String() string { return "dc" }

// rbfInstance is a Gaussian radial basis function centered at a fixed
// training point.
type rbfInstance struct {
	center []float64
	gamma  float64
	label  string
}

func (r *rbfInstance) Evaluate(x []float64) float64 {
	sq := 0.0
	for i, c := range r.center {
		d := x[i] - c
		sq += d * d
	}
	return math.Exp(-r.gamma * sq)
}

func (r *rbfInstance) String() string { return r.label }

// RBF is the Gaussian radial basis function Template. Centering it on a
// dataset with N observations yields N Instances, one per row, each sharing
// the same bandwidth gamma.
type RBF struct {
	// Gamma is the RBF bandwidth parameter. If zero, Center computes a
	// default of 1/sqrt(D) from the dataset's feature count, matching the
	// configuration default documented for WithKernels.
	Gamma float64
}

// NewRBF creates an RBF Template with the given bandwidth. A gamma of 0
// defers to the dataset-derived default at centering time.
func NewRBF(gamma float64) RBF { return RBF{Gamma: gamma} }

func (k RBF) Center(ds dataset.Dataset) ([]Instance, error) {
	n := ds.NObservations()
	d := ds.NFeatures()
	if n == 0 || d == 0 {
		return nil, errors.NewValueError("kernel.RBF.Center", "cannot center on an empty dataset")
	}
	gamma := k.Gamma
	if gamma == 0 {
		gamma = 1 / math.Sqrt(float64(d))
	}
	x, err := ds.Observations(nil)
	if err != nil {
		return nil, errors.Wrap(err, "kernel.RBF.Center")
	}
	out := make([]Instance, n)
	for i := 0; i < n; i++ {
		center := make([]float64, d)
		mat.Row(center, i, x)
		out[i] = &rbfInstance{center: center, gamma: gamma, label: instanceLabel("rbf", i)}
	}
	return out, nil
}

func (k RBF) String() string {
	return "rbf"
}

func instanceLabel(family string, i int) string {
	const digits = "0123456789"
	if i == 0 {
		return family + "@0"
	}
	buf := make([]byte, 0, 8)
	n := i
	for n > 0 {
		buf = append(buf, digits[n%10])
		n /= 10
	}
	for l, r := 0, len(buf)-1; l < r; l, r = l+1, r-1 {
		buf[l], buf[r] = buf[r], buf[l]
	}
	return family + "@" + string(buf)
}

// Builder evaluates a set of Instances over a design matrix to produce a
// Gram (design) matrix.
type Builder struct {
	// ParallelThreshold is the minimum row count above which Gram
	// evaluation is parallelized across CPU cores; below it, evaluation
	// runs sequentially in the calling goroutine.
	ParallelThreshold int
}

// NewBuilder creates a Builder with a sensible default parallelization
// threshold.
func NewBuilder() *Builder {
	return &Builder{ParallelThreshold: 256}
}

// Gram evaluates every instance at every row of X, returning an N×len(instances)
// matrix.
func (b *Builder) Gram(x mat.Matrix, instances []Instance) (*mat.Dense, error) {
	return b.GramBlock(x, instances, 0, len(instances))
}

// GramBlock evaluates instances[start:end] at every row of X, returning an
// N×(end-start) matrix. This is the primitive the Sequential streaming
// trainer uses to acquire Gram columns in chunks without materializing the
// full candidate basis set at once.
func (b *Builder) GramBlock(x mat.Matrix, instances []Instance, start, end int) (*mat.Dense, error) {
	if start < 0 || end > len(instances) || start > end {
		return nil, errors.NewValidationError("start/end", "out of range", []int{start, end})
	}
	n, d := x.Dims()
	k := end - start
	out := mat.NewDense(n, k, nil)
	if n == 0 || k == 0 {
		return out, nil
	}

	row := make([][]float64, n)
	for i := 0; i < n; i++ {
		row[i] = make([]float64, d)
		mat.Row(row[i], i, x)
	}

	threshold := b.ParallelThreshold
	if threshold <= 0 {
		threshold = 256
	}

	parallel.ParallelizeWithThreshold(n, threshold, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			for j := 0; j < k; j++ {
				out.Set(i, j, instances[start+j].Evaluate(row[i]))
			}
		}
	})

	return out, nil
}
