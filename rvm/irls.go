package rvm

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/sparsebayes/rvm/linalg"
)

// irlsMaxIterations bounds the inner Newton loop. This is independent of
// LearningMaxIterations, which bounds the outer Figueiredo/Sequential loop;
// IRLS is expected to converge in a handful of steps regardless of the
// outer algorithm's progress.
const irlsMaxIterations = 50

// irlsGradientTolerance is the L2-norm-of-gradient stopping threshold for
// the inner Newton loop.
const irlsGradientTolerance = 1e-8

// irlsResult holds the Laplace approximation a penalizedIRLS call produces:
// the MAP estimate mu, the Cholesky factor of the penalized Hessian (used
// both to recover the posterior covariance and, in the Sequential trainer,
// to compute sufficient statistics), and the final IRLS weights.
type irlsResult struct {
	Mu          *mat.VecDense
	Chol        *mat.Cholesky
	ObsNoiseVar []float64 // w_n = yhat_n(1-yhat_n), final Newton step
	YHat        []float64 // sigma(Phi_A mu), final Newton step
	Iterations  int
}

// penalizedIRLS runs Newton's method on the penalized log-posterior of a
// logistic-link GLM (a Laplace approximation standing in for the probit
// likelihood used elsewhere in this package — see the package doc for why
// this mismatch is preserved rather than fixed). phiA is the N×k matrix of
// active basis columns, y01 the {0,1}-encoded labels, muInit the Newton
// starting point, and alphaA the active basis precisions (the diagonal of
// the Gaussian prior's precision matrix).
func penalizedIRLS(op string, phiA *mat.Dense, y01 []float64, muInit *mat.VecDense, alphaA []float64) (*irlsResult, error) {
	n, k := phiA.Dims()

	mu := mat.NewVecDense(k, nil)
	mu.CopyVec(muInit)

	yHat := make([]float64, n)
	w := make([]float64, n)

	var chol *mat.Cholesky
	iter := 0
	for ; iter < irlsMaxIterations; iter++ {
		z := mat.NewVecDense(n, nil)
		z.MulVec(phiA, mu)
		for i := 0; i < n; i++ {
			yHat[i] = sigmoid(z.AtVec(i))
			w[i] = yHat[i] * (1 - yHat[i])
		}

		h := weightedGramSym(phiA, w)
		for j := 0; j < k; j++ {
			h.SetSym(j, j, h.At(j, j)+alphaA[j])
		}

		grad := mat.NewVecDense(k, nil)
		resid := mat.NewVecDense(n, nil)
		for i := 0; i < n; i++ {
			resid.SetVec(i, y01[i]-yHat[i])
		}
		grad.MulVec(phiA.T(), resid)
		for j := 0; j < k; j++ {
			grad.SetVec(j, grad.AtVec(j)-alphaA[j]*mu.AtVec(j))
		}

		gradNorm := mat.Norm(grad, 2)

		delta, factor, err := linalg.SolveSPD(op, h, grad)
		if err != nil {
			return nil, err
		}
		chol = factor
		mu.AddVec(mu, delta)

		if gradNorm < irlsGradientTolerance {
			iter++
			break
		}
	}

	return &irlsResult{
		Mu:          mu,
		Chol:        chol,
		ObsNoiseVar: w,
		YHat:        append([]float64{}, yHat...),
		Iterations:  iter,
	}, nil
}

// sigmoid is the logistic link used internally by IRLS.
func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}

// weightedGramSym computes PhiAᵀ diag(w) PhiA as a symmetric matrix.
func weightedGramSym(phiA *mat.Dense, w []float64) *mat.SymDense {
	n, k := phiA.Dims()
	weighted := mat.NewDense(n, k, nil)
	weighted.Copy(phiA)
	for i := 0; i < n; i++ {
		sw := math.Sqrt(w[i])
		for j := 0; j < k; j++ {
			weighted.Set(i, j, weighted.At(i, j)*sw)
		}
	}
	var h mat.Dense
	h.Mul(weighted.T(), weighted)

	sym := mat.NewSymDense(k, nil)
	for i := 0; i < k; i++ {
		for j := i; j < k; j++ {
			sym.SetSym(i, j, h.At(i, j))
		}
	}
	return sym
}
