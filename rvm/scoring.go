package rvm

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/sparsebayes/rvm/kernel"
)

// scoreBlockRows bounds peak memory during prediction: queries are
// processed scoreBlockRows at a time rather than all at once (spec §4.4).
const scoreBlockRows = 1000

// score evaluates the probit-link positive-class probability for every row
// of x against the trained sparse basis.
func score(builder *kernel.Builder, x *mat.Dense, sparseKernels []kernel.Instance, sparseBeta *mat.VecDense) (*mat.VecDense, error) {
	n, _ := x.Dims()
	out := mat.NewVecDense(n, nil)

	if len(sparseKernels) == 0 {
		for i := 0; i < n; i++ {
			out.SetVec(i, math.NaN())
		}
		return out, nil
	}

	_, d := x.Dims()
	for start := 0; start < n; start += scoreBlockRows {
		end := start + scoreBlockRows
		if end > n {
			end = n
		}
		block := x.Slice(start, end, 0, d)

		gamma, err := builder.Gram(block, sparseKernels)
		if err != nil {
			return nil, err
		}

		rows, _ := gamma.Dims()
		for i := 0; i < rows; i++ {
			linear := mat.Dot(gamma.RowView(i), sparseBeta)
			out.SetVec(start+i, stdNormal.CDF(linear))
		}
	}

	return out, nil
}
