package rvm

import (
	"log/slog"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/sparsebayes/rvm/kernel"
	"github.com/sparsebayes/rvm/linalg"
	"github.com/sparsebayes/rvm/pkg/errors"
	"github.com/sparsebayes/rvm/pkg/log"
)

var stdNormal = distuv.UnitNormal

// figueiredoTrain runs the EM-style fixed-point iteration derived from the
// Jeffreys-prior sparse linear model, adapted to the probit likelihood via
// surrogate responses (spec §4.2).
func figueiredoTrain(cfg *config, warn *errors.WarningSink, builder *kernel.Builder, x mat.Matrix, instances []kernel.Instance, yPM1 []float64) (*trainResult, error) {
	n, _ := x.Dims()
	nBasis := len(instances)

	phi, err := builder.Gram(x, instances)
	if err != nil {
		return nil, errors.Wrap(err, "rvm.figueiredoTrain")
	}

	g := gramSym(phi)
	g, _ = regularizeUntilWellConditioned("rvm.figueiredoTrain", g, warn)

	yVec := mat.NewVecDense(n, yPM1)
	rhs := mat.NewVecDense(nBasis, nil)
	rhs.MulVec(phi.T(), yVec)

	beta0, _, err := linalg.SolveSPD("rvm.figueiredoTrain", g, rhs)
	if err != nil {
		return nil, err
	}
	beta := make([]float64, nBasis)
	for j := 0; j < nBasis; j++ {
		beta[j] = beta0.AtVec(j)
	}

	active := nonZeroIndices(beta)

	converged := false
	exitReason := "Max Iterations"
	var exitValue float64
	iter := 0

	for ; iter < cfg.maxIterations; iter++ {
		if len(active) == 0 {
			break
		}

		betaPrev := append([]float64{}, beta...)

		s := surrogateScores(phi, beta, yPM1)

		k := len(active)
		phiA := mat.NewDense(n, k, nil)
		for col, j := range active {
			for row := 0; row < n; row++ {
				phiA.Set(row, col, phi.At(row, j))
			}
		}
		uA := make([]float64, k)
		for i, j := range active {
			uA[i] = math.Abs(beta[j])
		}

		gAA := gramSym(phiA)
		m := mat.NewSymDense(k, nil)
		for i := 0; i < k; i++ {
			for j := i; j < k; j++ {
				val := uA[i] * gAA.At(i, j) * uA[j]
				if i == j {
					val += 1
				}
				m.SetSym(i, j, val)
			}
		}

		sVec := mat.NewVecDense(n, s)
		phiAtS := mat.NewVecDense(k, nil)
		phiAtS.MulVec(phiA.T(), sVec)
		rhsA := mat.NewVecDense(k, nil)
		for i := 0; i < k; i++ {
			rhsA.SetVec(i, uA[i]*phiAtS.AtVec(i))
		}

		z, _, err := linalg.SolveSPD("rvm.figueiredoTrain", m, rhsA)
		if err != nil {
			return nil, err
		}

		beta = make([]float64, nBasis)
		for i, j := range active {
			beta[j] = uA[i] * z.AtVec(i)
		}

		maxAbs := 0.0
		for _, v := range beta {
			if a := math.Abs(v); a > maxAbs {
				maxAbs = a
			}
		}
		if maxAbs == 0 {
			active = nil
			break
		}

		var newActive []int
		threshold := maxAbs * cfg.betaRelevantTolerance
		for _, j := range active {
			if math.Abs(beta[j]) > threshold {
				newActive = append(newActive, j)
			} else {
				beta[j] = 0
			}
		}
		active = newActive

		if cfg.text {
			slog.Default().Debug("figueiredo iteration",
				log.OperationKey, "train", log.IterationKey, iter+1, log.ActiveSetSizeKey, len(active))
		}

		prevNorm := l2Norm(betaPrev)
		if prevNorm > 0 {
			diffNorm := l2NormDiff(beta, betaPrev)
			exitValue = diffNorm / prevNorm
			if exitValue < cfg.betaConvergedTolerance {
				converged = true
				exitReason = "Beta Converged"
				iter++
				break
			}
		}
	}

	if exitReason == "Max Iterations" {
		warn.EmitOnce("figueiredo-no-convergence", errors.NewConvergenceWarning(string(Figueiredo), iter, ""))
	}

	if len(active) == 0 {
		warn.EmitOnce("no-relevant-features", errors.NewNoRelevantFeaturesWarning(string(Figueiredo)))
		return &trainResult{
			SparseIndices: nil,
			SparseBeta:    nil,
			BetaFull:      beta,
			Converged:     converged,
			ExitReason:    exitReason,
			ExitValue:     exitValue,
			Iterations:    iter,
		}, nil
	}

	sparseBeta := mat.NewVecDense(len(active), nil)
	for i, j := range active {
		sparseBeta.SetVec(i, beta[j])
	}

	return &trainResult{
		SparseIndices: active,
		SparseBeta:    sparseBeta,
		BetaFull:      beta,
		Converged:     converged,
		ExitReason:    exitReason,
		ExitValue:     exitValue,
		Iterations:    iter,
	}, nil
}

// surrogateScores computes the probit surrogate response S used in place of
// the raw linear score Phi*beta, per spec §4.2 step 4.
func surrogateScores(phi *mat.Dense, beta []float64, yPM1 []float64) []float64 {
	n, nBasis := phi.Dims()
	betaVec := mat.NewVecDense(nBasis, beta)
	s := mat.NewVecDense(n, nil)
	s.MulVec(phi, betaVec)

	out := make([]float64, n)
	for i := 0; i < n; i++ {
		si := s.AtVec(i)
		if yPM1[i] > 0 {
			out[i] = si + stdNormal.Prob(si)/(1-stdNormal.CDF(-si))
		} else {
			out[i] = si - stdNormal.Prob(si)/stdNormal.CDF(-si)
		}
	}
	return out
}

// regularizeUntilWellConditioned adds growing diagonal jitter to g until its
// reciprocal condition number clears 1e-6 or the jitter-attempt ceiling is
// reached, emitting a one-shot IllConditionedGramWarning the first time
// regularization is needed.
func regularizeUntilWellConditioned(op string, g *mat.SymDense, warn *errors.WarningSink) (*mat.SymDense, int) {
	const rcondThreshold = 1e-6
	attempts := 0
	sigma2 := 0.0

	for attempts < linalg.MaxJitterAttempts {
		rc := linalg.Rcond(g)
		if rc >= rcondThreshold {
			return g, attempts
		}
		if sigma2 == 0 {
			sigma2 = math.Nextafter(1, 2) - 1
		} else {
			sigma2 *= 2
		}
		attempts++
		warn.EmitOnce("ill-conditioned-gram", errors.NewIllConditionedGramWarning(linalg.Rcond(g), sigma2, attempts))
		g = linalg.AddDiagonal(g, sigma2)
	}
	return g, attempts
}

func gramSym(phi *mat.Dense) *mat.SymDense {
	_, k := phi.Dims()
	var prod mat.Dense
	prod.Mul(phi.T(), phi)
	sym := mat.NewSymDense(k, nil)
	for i := 0; i < k; i++ {
		for j := i; j < k; j++ {
			sym.SetSym(i, j, prod.At(i, j))
		}
	}
	return sym
}

func nonZeroIndices(v []float64) []int {
	var out []int
	for j, val := range v {
		if val != 0 {
			out = append(out, j)
		}
	}
	return out
}

func l2Norm(v []float64) float64 {
	sum := 0.0
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}

func l2NormDiff(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}
