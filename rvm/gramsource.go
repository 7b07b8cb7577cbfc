package rvm

import (
	"gonum.org/v1/gonum/mat"

	"github.com/sparsebayes/rvm/kernel"
	"github.com/sparsebayes/rvm/pkg/errors"
)

// gramSource abstracts how the Sequential trainer acquires Gram matrix
// columns: the streaming variant evaluates kernel instances on demand in
// blocks, while the in-memory variant slices a matrix it already holds in
// full. sequentialCore is written against this interface so both variants
// share every line of move-selection logic.
type gramSource interface {
	// NBasis returns the total candidate basis count.
	NBasis() int

	// Block returns columns [start,end) as an N×(end-start) matrix.
	Block(start, end int) (*mat.Dense, error)

	// Columns gathers an arbitrary (typically small) set of columns as an
	// N×len(indices) matrix, in the order given.
	Columns(indices []int) (*mat.Dense, error)

	// PreferredBlockSize is the column-block width sufficientStatistics and
	// seedBasis should use when scanning every candidate basis.
	PreferredBlockSize() int
}

// streamingGramSource evaluates kernel instances against X on demand,
// never materializing the full Gram matrix. This is what backs
// Algorithm Sequential.
type streamingGramSource struct {
	builder   *kernel.Builder
	x         mat.Matrix
	instances []kernel.Instance
	blockSize int
}

func (s *streamingGramSource) NBasis() int { return len(s.instances) }

func (s *streamingGramSource) PreferredBlockSize() int {
	if s.blockSize <= 0 {
		return len(s.instances)
	}
	return s.blockSize
}

func (s *streamingGramSource) Block(start, end int) (*mat.Dense, error) {
	return s.builder.GramBlock(s.x, s.instances, start, end)
}

func (s *streamingGramSource) Columns(indices []int) (*mat.Dense, error) {
	subset := make([]kernel.Instance, len(indices))
	for i, j := range indices {
		if j < 0 || j >= len(s.instances) {
			return nil, errors.NewValidationError("index", "out of range", j)
		}
		subset[i] = s.instances[j]
	}
	return s.builder.Gram(s.x, subset)
}

// inMemoryGramSource slices a single precomputed Gram matrix. This is what
// backs Algorithm SequentialInMemory (and the Figueiredo trainer, via
// gramSym directly rather than through this interface).
type inMemoryGramSource struct {
	phi *mat.Dense
}

func (s *inMemoryGramSource) NBasis() int {
	_, k := s.phi.Dims()
	return k
}

func (s *inMemoryGramSource) PreferredBlockSize() int {
	return s.NBasis()
}

func (s *inMemoryGramSource) Block(start, end int) (*mat.Dense, error) {
	n, k := s.phi.Dims()
	if start < 0 || end > k || start > end {
		return nil, errors.NewValidationError("start/end", "out of range", []int{start, end})
	}
	out := mat.NewDense(n, end-start, nil)
	out.Copy(s.phi.Slice(0, n, start, end))
	return out, nil
}

func (s *inMemoryGramSource) Columns(indices []int) (*mat.Dense, error) {
	n, k := s.phi.Dims()
	out := mat.NewDense(n, len(indices), nil)
	for col, j := range indices {
		if j < 0 || j >= k {
			return nil, errors.NewValidationError("index", "out of range", j)
		}
		for row := 0; row < n; row++ {
			out.Set(row, col, s.phi.At(row, j))
		}
	}
	return out, nil
}
