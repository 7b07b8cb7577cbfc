package rvm

import (
	"github.com/sparsebayes/rvm/kernel"
	"github.com/sparsebayes/rvm/pkg/errors"
)

// Algorithm selects which training strategy Model.Train uses.
type Algorithm string

const (
	// Figueiredo runs the EM-style Jeffreys-prior trainer (figueiredo.go).
	Figueiredo Algorithm = "Figueiredo"

	// Sequential runs the Tipping-Faul fast marginal-likelihood trainer,
	// acquiring Gram columns in blocks rather than materializing the full
	// Gram matrix (sequential_streaming.go).
	Sequential Algorithm = "Sequential"

	// SequentialInMemory runs the same Tipping-Faul trainer against a
	// single precomputed Gram matrix (sequential_inmemory.go).
	SequentialInMemory Algorithm = "SequentialInMemory"
)

func validAlgorithms() []string {
	return []string{string(Figueiredo), string(Sequential), string(SequentialInMemory)}
}

// config holds the model's resolved hyperparameters. It is unexported;
// callers configure a Model exclusively through Option values passed to
// New.
type config struct {
	kernels   []kernel.Template
	algorithm Algorithm

	maxIterations               int
	betaConvergedTolerance      float64
	betaRelevantTolerance       float64
	likelihoodIncreaseThreshold float64
	sequentialBlockSize         int
	text                        bool
}

func defaultConfig() *config {
	return &config{
		kernels:                     nil, // resolved against a dataset's feature count in Train
		algorithm:                  Figueiredo,
		maxIterations:               1000,
		betaConvergedTolerance:      1e-3,
		betaRelevantTolerance:       1e-3,
		likelihoodIncreaseThreshold: 1e-6,
		sequentialBlockSize:         1000,
		text:                        false,
	}
}

// Option configures a Model at construction time.
type Option func(*config) error

// WithKernels sets the ordered candidate basis templates. If omitted, New
// defaults to a DC bias template plus an RBF template whose bandwidth is
// resolved at Train time as 1/sqrt(D).
func WithKernels(templates ...kernel.Template) Option {
	return func(c *config) error {
		c.kernels = templates
		return nil
	}
}

// WithAlgorithm selects the training strategy. Values outside
// {Figueiredo, Sequential, SequentialInMemory} are rejected immediately.
func WithAlgorithm(algo Algorithm) Option {
	return func(c *config) error {
		switch algo {
		case Figueiredo, Sequential, SequentialInMemory:
			c.algorithm = algo
			return nil
		default:
			return errors.NewInvalidAlgorithmError(string(algo), validAlgorithms())
		}
	}
}

// WithMaxIterations caps the outer training loop.
func WithMaxIterations(n int) Option {
	return func(c *config) error {
		if n <= 0 {
			return errors.NewValidationError("LearningMaxIterations", "must be positive", n)
		}
		c.maxIterations = n
		return nil
	}
}

// WithBetaConvergedTolerance sets the relative-change-in-beta (Figueiredo)
// or log-alpha-drift (Sequential) convergence threshold.
func WithBetaConvergedTolerance(tol float64) Option {
	return func(c *config) error {
		if tol <= 0 {
			return errors.NewValidationError("LearningBetaConvergedTolerance", "must be positive", tol)
		}
		c.betaConvergedTolerance = tol
		return nil
	}
}

// WithBetaRelevantTolerance sets the Figueiredo pruning threshold,
// expressed as a fraction of the largest |beta|.
func WithBetaRelevantTolerance(tol float64) Option {
	return func(c *config) error {
		if tol <= 0 {
			return errors.NewValidationError("LearningBetaRelevantTolerance", "must be positive", tol)
		}
		c.betaRelevantTolerance = tol
		return nil
	}
}

// WithLikelihoodIncreaseThreshold sets the Sequential trainer's stopping
// threshold on the best available move's change in marginal log-likelihood.
func WithLikelihoodIncreaseThreshold(threshold float64) Option {
	return func(c *config) error {
		if threshold <= 0 {
			return errors.NewValidationError("LearningLikelihoodIncreaseThreshold", "must be positive", threshold)
		}
		c.likelihoodIncreaseThreshold = threshold
		return nil
	}
}

// WithSequentialBlockSize sets the column-block size the streaming
// Sequential trainer uses when acquiring Gram columns.
func WithSequentialBlockSize(n int) Option {
	return func(c *config) error {
		if n <= 0 {
			return errors.NewValidationError("LearningSequentialBlockSize", "must be positive", n)
		}
		c.sequentialBlockSize = n
		return nil
	}
}

// WithText enables verbose progress diagnostics via the model's logger.
func WithText(enabled bool) Option {
	return func(c *config) error {
		c.text = enabled
		return nil
	}
}
