// Package rvm implements a Relevance Vector Machine binary classifier with
// a probit prediction link: a sparse linear combination of kernel basis
// functions, learned under a zero-mean Gaussian weight prior whose
// per-basis precision hyperparameters are optimized either by the
// Figueiredo EM-style trainer or the Tipping-Faul fast marginal-likelihood
// ("Sequential") trainer.
//
// The Sequential trainer's inner IRLS loop fits a logistic link, while
// prediction always scores through the standard normal CDF. This asymmetry
// is inherited rather than a bug in this package; see DESIGN.md.
package rvm

import (
	"log/slog"

	"gonum.org/v1/gonum/mat"

	"github.com/sparsebayes/rvm/core/model"
	"github.com/sparsebayes/rvm/dataset"
	"github.com/sparsebayes/rvm/kernel"
	"github.com/sparsebayes/rvm/metrics"
	"github.com/sparsebayes/rvm/pkg/errors"
	"github.com/sparsebayes/rvm/pkg/log"
)

// LearningResults reports why training stopped.
type LearningResults struct {
	ExitReason string
	ExitValue  float64
}

// Model is a trained (or trainable) RVM binary classifier.
type Model struct {
	cfg   *config
	state *model.StateManager
	warn  *errors.WarningSink

	builder *kernel.Builder

	sparseBeta    *mat.VecDense
	sparseKernels []kernel.Instance
	betaFull      []float64
	sigma         *mat.SymDense

	learningConverged bool
	learningResults   LearningResults
}

// New constructs a Model. Options apply in order; the first error returned
// by an Option aborts construction.
func New(opts ...Option) (*Model, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}
	if cfg.text {
		log.SetupLogger("debug")
	}
	return &Model{
		cfg:     cfg,
		state:   model.NewStateManager(),
		warn:    errors.NewWarningSink(),
		builder: kernel.NewBuilder(),
	}, nil
}

// SetWarningHandler overrides how this Model reports non-fatal warnings
// (IllConditionedGram, NoRelevantFeatures, Convergence). The default forwards to the
// package-global errors.Warn.
func (m *Model) SetWarningHandler(handle func(err error)) {
	m.warn.SetHandler(handle)
}

// IsFitted reports whether Train has completed successfully.
func (m *Model) IsFitted() bool { return m.state.IsFitted() }

// LearningConverged reports whether the last Train call's trainer declared
// convergence, as opposed to exhausting LearningMaxIterations.
func (m *Model) LearningConverged() bool { return m.learningConverged }

// LearningResults reports the last Train call's exit reason and exit
// value (the relative beta change for Figueiredo, or the alpha-drift /
// likelihood-increase value for Sequential).
func (m *Model) LearningResults() LearningResults { return m.learningResults }

// SparseBeta returns the trained compact weight vector, aligned to
// SparseKernels. It is nil before Train or if training ended with an
// empty active set.
func (m *Model) SparseBeta() []float64 {
	if m.sparseBeta == nil {
		return nil
	}
	out := make([]float64, m.sparseBeta.Len())
	for i := range out {
		out[i] = m.sparseBeta.AtVec(i)
	}
	return out
}

// SparseKernels returns the basis descriptors Train selected into the
// active set, in the same order as SparseBeta. It is nil before Train or
// if training ended with an empty active set.
func (m *Model) SparseKernels() []kernel.Instance { return m.sparseKernels }

// Beta returns the trained weight vector, zero-padded to the full
// candidate basis count.
func (m *Model) Beta() []float64 { return m.betaFull }

// Sigma returns the posterior covariance for the active set. It is nil for
// Figueiredo-trained models and for models trained to an empty active set.
func (m *Model) Sigma() mat.Symmetric {
	if m.sigma == nil {
		return nil
	}
	return m.sigma
}

func kernelsOrDefault(templates []kernel.Template) []kernel.Template {
	if len(templates) > 0 {
		return templates
	}
	return []kernel.Template{kernel.NewDC(), kernel.NewRBF(0)}
}

// Train fits the model against ds using the configured algorithm. It
// mutates the Model exclusively during this call; afterward the Model is
// read-only for Predict/Score.
func (m *Model) Train(ds dataset.Dataset) error {
	binary, err := ds.TargetsBinary()
	if err != nil {
		return err
	}
	yPM1, y01, err := dataset.LabelsPM1AndZeroOne(binary)
	if err != nil {
		return err
	}

	x, err := ds.Observations(nil)
	if err != nil {
		return errors.Wrap(err, "rvm.Model.Train")
	}

	templates := kernelsOrDefault(m.cfg.kernels)
	var instances []kernel.Instance
	for _, tpl := range templates {
		centered, err := tpl.Center(ds)
		if err != nil {
			return errors.Wrapf(err, "rvm.Model.Train: centering %s", tpl.String())
		}
		instances = append(instances, centered...)
	}

	fields := loggerFields(string(m.cfg.algorithm), ds.NObservations(), len(instances))
	if m.cfg.text {
		fields.Info("training started")
	}

	var result *trainResult
	switch m.cfg.algorithm {
	case Figueiredo:
		result, err = figueiredoTrain(m.cfg, m.warn, m.builder, x, instances, yPM1)
	case Sequential:
		result, err = sequentialStreamingTrain(m.cfg, m.warn, m.builder, x, instances, y01, yPM1)
	case SequentialInMemory:
		result, err = sequentialInMemoryTrain(m.cfg, m.warn, m.builder, x, instances, y01, yPM1)
	default:
		return errors.NewInvalidAlgorithmError(string(m.cfg.algorithm), validAlgorithms())
	}
	if err != nil {
		return err
	}

	m.sparseBeta = result.SparseBeta
	m.betaFull = result.BetaFull
	m.sigma = result.Sigma
	m.learningConverged = result.Converged
	m.learningResults = LearningResults{ExitReason: result.ExitReason, ExitValue: result.ExitValue}

	if len(result.SparseIndices) == 0 {
		m.sparseKernels = nil
	} else {
		m.sparseKernels = make([]kernel.Instance, len(result.SparseIndices))
		for i, j := range result.SparseIndices {
			m.sparseKernels[i] = instances[j]
		}
	}

	m.state.SetDimensions(ds.NFeatures(), ds.NObservations())
	m.state.SetFitted()

	if m.cfg.text {
		fields.Info("training finished", "converged", result.Converged, "exit_reason", result.ExitReason, "active_set_size", len(result.SparseIndices))
	}

	return nil
}

// Predict returns the positive-class probit score for each row of X. If
// training ended with an empty active set, every score is NaN.
func (m *Model) Predict(x mat.Matrix) (mat.Matrix, error) {
	if err := m.state.RequireFitted("rvm.Model", "Predict"); err != nil {
		return nil, err
	}
	dense, ok := x.(*mat.Dense)
	if !ok {
		var d mat.Dense
		d.CloneFrom(x)
		dense = &d
	}
	return score(m.builder, dense, m.sparseKernels, m.sparseBeta)
}

// Score reports the classification accuracy of the model's predictions
// (thresholded at 0.5) against y, a binary {0,1} or {-1,+1} column vector.
func (m *Model) Score(x, y mat.Matrix) (float64, error) {
	predictions, err := m.Predict(x)
	if err != nil {
		return 0, err
	}
	rows, _ := predictions.Dims()
	yRows, _ := y.Dims()
	if rows != yRows {
		return 0, errors.NewDimensionError("rvm.Model.Score", rows, yRows, 0)
	}

	predLabels := mat.NewVecDense(rows, nil)
	trueLabels := mat.NewVecDense(rows, nil)
	for i := 0; i < rows; i++ {
		if predictions.At(i, 0) >= 0.5 {
			predLabels.SetVec(i, 1)
		} else {
			predLabels.SetVec(i, 0)
		}
		if y.At(i, 0) > 0 {
			trueLabels.SetVec(i, 1)
		} else {
			trueLabels.SetVec(i, 0)
		}
	}
	return metrics.Accuracy(trueLabels, predLabels)
}

func loggerFields(algorithm string, nSamples, nBasis int) *logFields {
	return &logFields{algorithm: algorithm, nSamples: nSamples, nBasis: nBasis}
}

// logFields adapts this package's training-progress messages to
// structured slog attributes, named per pkg/log's attribute keys.
type logFields struct {
	algorithm string
	nSamples  int
	nBasis    int
}

func (f *logFields) Info(msg string, extra ...interface{}) {
	args := []interface{}{
		log.ModelNameKey, "rvm.Model",
		log.OperationKey, "train",
		log.AlgorithmKey, f.algorithm,
		log.SamplesKey, f.nSamples,
		log.BasisCountKey, f.nBasis,
	}
	args = append(args, extra...)
	slog.Default().Info(msg, args...)
}
