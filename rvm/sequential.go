package rvm

import (
	"log/slog"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/sparsebayes/rvm/linalg"
	"github.com/sparsebayes/rvm/pkg/errors"
	"github.com/sparsebayes/rvm/pkg/log"
)

// moveKind names the three candidate basis-set mutations the Sequential
// trainer chooses among each outer iteration.
type moveKind int

const (
	moveAdd moveKind = iota
	moveRemove
	moveModify
)

// sequentialCore runs the Tipping-Faul fast marginal-likelihood iteration
// (spec §4.3) against any gramSource, so the streaming and in-memory
// variants differ only in how they construct that source.
func sequentialCore(cfg *config, warn *errors.WarningSink, algorithm string, src gramSource, y01, yPM1 []float64) (*trainResult, error) {
	const op = "rvm.sequentialCore"

	n := len(y01)
	nBasis := src.NBasis()
	blockSize := src.PreferredBlockSize()
	if blockSize <= 0 || blockSize > nBasis {
		blockSize = nBasis
	}

	j0, err := seedBasis(src, yPM1, blockSize)
	if err != nil {
		return nil, err
	}

	phiJ0, err := src.Columns([]int{j0})
	if err != nil {
		return nil, err
	}
	mu0 := initialSeedMu(phiJ0, yPM1)
	alpha0 := 1 / (mu0 * mu0)

	active := newActiveSet(nBasis, j0)
	alpha := make([]float64, nBasis)
	for j := range alpha {
		alpha[j] = math.Inf(1)
	}
	alpha[j0] = alpha0

	irlsRes, err := penalizedIRLS(op, phiJ0, y01, mat.NewVecDense(1, []float64{mu0}), []float64{alpha0})
	if err != nil {
		return nil, err
	}

	converged := false
	exitReason := "Max Iterations"
	var exitValue float64
	iteration := 0

	for iteration = 1; iteration <= cfg.maxIterations; iteration++ {
		phiA, err := src.Columns(active.Indices())
		if err != nil {
			return nil, err
		}

		resid := make([]float64, n)
		for i := 0; i < n; i++ {
			resid[i] = y01[i] - irlsRes.YHat[i]
		}

		s, q, theta, capS, capQ, err := sufficientStatistics(src, blockSize, phiA, irlsRes.ObsNoiseVar, resid, irlsRes.Chol, active, alpha)
		if err != nil {
			return nil, err
		}

		kind, idx, delta := selectMove(iteration, active, alpha, s, q, theta, capS, capQ)

		if delta < cfg.likelihoodIncreaseThreshold {
			converged = true
			exitReason = "No Good Actions"
			exitValue = delta
			break
		}

		alphaPrev := append([]float64{}, alpha...)

		muWarm, alphaWarm, newActive, err := applyMove(kind, idx, active, alpha, irlsRes, phiA, src, s, q, theta)
		if err != nil {
			return nil, err
		}

		phiANew, err := src.Columns(newActive.Indices())
		if err != nil {
			return nil, err
		}
		alphaANew := make([]float64, newActive.Len())
		for i, j := range newActive.Indices() {
			alphaANew[i] = alphaWarm[j]
		}

		irlsRes, err = penalizedIRLS(op, phiANew, y01, muWarm, alphaANew)
		if err != nil {
			return nil, err
		}

		active = newActive
		alpha = alphaWarm

		if cfg.text {
			slog.Default().Debug("sequential iteration",
				log.OperationKey, "train", log.IterationKey, iteration, log.ActiveSetSizeKey, active.Len())
		}

		if iteration > 1 {
			maxTau := 0.0
			for j := 0; j < nBasis; j++ {
				tau := logAlphaDrift(alphaPrev[j], alpha[j])
				if tau > maxTau {
					maxTau = tau
				}
			}
			exitValue = maxTau
			if maxTau < cfg.betaConvergedTolerance {
				converged = true
				exitReason = "Alpha Not Changing"
				iteration++
				break
			}
		}
	}

	if iteration > cfg.maxIterations {
		iteration = cfg.maxIterations
	}

	if exitReason == "Max Iterations" {
		warn.EmitOnce(algorithm+"-no-convergence", errors.NewConvergenceWarning(algorithm, iteration, ""))
	}

	betaFull := make([]float64, nBasis)
	for i, j := range active.Indices() {
		betaFull[j] = irlsRes.Mu.AtVec(i)
	}

	if active.Len() == 0 {
		warn.EmitOnce("no-relevant-features", errors.NewNoRelevantFeaturesWarning("Sequential"))
		return &trainResult{
			BetaFull:   betaFull,
			Converged:  converged,
			ExitReason: exitReason,
			ExitValue:  exitValue,
			Iterations: iteration,
		}, nil
	}

	sparseBeta := mat.NewVecDense(active.Len(), nil)
	for i := 0; i < active.Len(); i++ {
		sparseBeta.SetVec(i, irlsRes.Mu.AtVec(i))
	}

	return &trainResult{
		SparseIndices: active.Indices(),
		SparseBeta:    sparseBeta,
		BetaFull:      betaFull,
		Sigma:         linalgCovariance(irlsRes),
		Converged:     converged,
		ExitReason:    exitReason,
		ExitValue:     exitValue,
		Iterations:    iteration,
	}, nil
}

func linalgCovariance(res *irlsResult) *mat.SymDense {
	if res == nil || res.Chol == nil {
		return nil
	}
	return linalg.CovarianceFromCholesky(res.Chol)
}

// logAlphaDrift computes |log(a) - log(b)|, treating "both infinite" as no
// drift (the spec's "treat inf-inf = 0" rule) rather than NaN.
func logAlphaDrift(a, b float64) float64 {
	if math.IsInf(a, 1) && math.IsInf(b, 1) {
		return 0
	}
	return math.Abs(math.Log(a) - math.Log(b))
}

// seedBasis normalizes each candidate column to unit L2 norm and scores it
// by |<normalized column, ±1 labels>|, returning the index of the best
// scoring column.
func seedBasis(src gramSource, yPM1 []float64, blockSize int) (int, error) {
	nBasis := src.NBasis()
	bestIdx := -1
	bestScore := math.Inf(-1)

	for start := 0; start < nBasis; start += blockSize {
		end := start + blockSize
		if end > nBasis {
			end = nBasis
		}
		block, err := src.Block(start, end)
		if err != nil {
			return 0, err
		}
		n, width := block.Dims()
		for col := 0; col < width; col++ {
			var normSq, dot float64
			for row := 0; row < n; row++ {
				v := block.At(row, col)
				normSq += v * v
				dot += v * yPM1[row]
			}
			norm := math.Sqrt(normSq)
			if norm == 0 {
				continue
			}
			score := math.Abs(dot / norm)
			if score > bestScore {
				bestScore = score
				bestIdx = start + col
			}
		}
	}
	if bestIdx < 0 {
		return 0, errors.NewValueError("rvm.seedBasis", "every candidate basis column is identically zero")
	}
	return bestIdx, nil
}

// initialSeedMu performs ordinary least squares of the logit of a
// shrunk label onto the single seed column.
func initialSeedMu(phiJ0 *mat.Dense, yPM1 []float64) float64 {
	n, _ := phiJ0.Dims()
	var num, den float64
	for i := 0; i < n; i++ {
		shrunk := (yPM1[i]*0.9 + 1) / 2
		target := math.Log(shrunk / (1 - shrunk))
		v := phiJ0.At(i, 0)
		num += v * target
		den += v * v
	}
	if den == 0 {
		return 1
	}
	return num / den
}
