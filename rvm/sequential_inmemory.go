package rvm

import (
	"gonum.org/v1/gonum/mat"

	"github.com/sparsebayes/rvm/kernel"
	"github.com/sparsebayes/rvm/pkg/errors"
)

// sequentialInMemoryTrain runs the Tipping-Faul trainer against a single
// precomputed Gram matrix (spec §4.3, in-memory variant). Sufficient
// statistics are still computed one "block" at a time internally, but that
// block is the entire candidate basis set.
func sequentialInMemoryTrain(cfg *config, warn *errors.WarningSink, builder *kernel.Builder, x mat.Matrix, instances []kernel.Instance, y01, yPM1 []float64) (*trainResult, error) {
	phi, err := builder.Gram(x, instances)
	if err != nil {
		return nil, errors.Wrap(err, "rvm.sequentialInMemoryTrain")
	}
	src := &inMemoryGramSource{phi: phi}
	return sequentialCore(cfg, warn, string(SequentialInMemory), src, y01, yPM1)
}
