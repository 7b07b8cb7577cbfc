package rvm

import (
	"gonum.org/v1/gonum/mat"

	"github.com/sparsebayes/rvm/kernel"
	"github.com/sparsebayes/rvm/pkg/errors"
)

// sequentialStreamingTrain runs the Tipping-Faul trainer without ever
// materializing the full Gram matrix: Gram columns are evaluated on demand
// in blocks of cfg.sequentialBlockSize (spec §4.3, streaming variant).
func sequentialStreamingTrain(cfg *config, warn *errors.WarningSink, builder *kernel.Builder, x mat.Matrix, instances []kernel.Instance, y01, yPM1 []float64) (*trainResult, error) {
	src := &streamingGramSource{
		builder:   builder,
		x:         x,
		instances: instances,
		blockSize: cfg.sequentialBlockSize,
	}
	return sequentialCore(cfg, warn, string(Sequential), src, y01, yPM1)
}
