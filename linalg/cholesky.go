// Package linalg wraps gonum's matrix decompositions with the numerical
// policy the rvm package's trainers need: jitter-and-retry on Cholesky
// failure, a reciprocal-condition-number check, and diagonal regularization
// for maintaining a posterior covariance as the active set mutates.
package linalg

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/sparsebayes/rvm/pkg/errors"
)

// MaxJitterAttempts bounds how many times CholeskySPD doubles its diagonal
// jitter before giving up and reporting a numerical breakdown.
const MaxJitterAttempts = 30

// CholeskySPD factorizes the symmetric matrix H, retrying with a growing
// diagonal jitter (starting at machine epsilon and doubling) if the
// factorization fails because H is not (numerically) positive definite.
// It returns the factor, the total jitter ultimately added to H's diagonal
// (0 if none was needed), and the number of attempts taken.
func CholeskySPD(op string, h *mat.SymDense) (chol *mat.Cholesky, jitter float64, attempts int, err error) {
	n := h.SymmetricDim()
	work := mat.NewSymDense(n, nil)
	work.CopySym(h)

	jitter = 0
	for attempts = 1; attempts <= MaxJitterAttempts; attempts++ {
		chol = &mat.Cholesky{}
		if chol.Factorize(work) {
			return chol, jitter, attempts, nil
		}
		if attempts == MaxJitterAttempts {
			break
		}
		if jitter == 0 {
			jitter = math.Nextafter(1, 2) - 1 // machine epsilon
		} else {
			jitter *= 2
		}
		for i := 0; i < n; i++ {
			work.SetSym(i, i, h.At(i, i)+jitter)
		}
	}
	return nil, jitter, attempts, errors.NewNumericalBreakdownError(op, attempts, jitter)
}

// SolveSPD solves H x = rhs for x via CholeskySPD, returning the factor so
// callers can also extract the posterior covariance Σ = H⁻¹.
func SolveSPD(op string, h *mat.SymDense, rhs *mat.VecDense) (x *mat.VecDense, chol *mat.Cholesky, err error) {
	chol, _, _, err = CholeskySPD(op, h)
	if err != nil {
		return nil, nil, err
	}
	x = mat.NewVecDense(rhs.Len(), nil)
	if err := chol.SolveVecTo(x, rhs); err != nil {
		return nil, nil, errors.Wrapf(err, "%s: triangular solve failed", op)
	}
	return x, chol, nil
}

// CovarianceFromCholesky materializes Σ = H⁻¹ from a Cholesky factor of H.
func CovarianceFromCholesky(chol *mat.Cholesky) *mat.SymDense {
	var sigma mat.SymDense
	if err := chol.InverseTo(&sigma); err != nil {
		// Cholesky already succeeded in CholeskySPD; InverseTo can only fail
		// if the factor itself were singular, which Factorize already ruled out.
		panic(errors.Wrap(err, "linalg: inverse of a verified-PD Cholesky factor failed"))
	}
	return &sigma
}

// Rcond returns the reciprocal condition number of the symmetric matrix g,
// using its Cholesky factorization when g is positive definite and falling
// back to gonum's general-purpose estimator otherwise (reporting 0, i.e.
// "singular", when neither succeeds).
func Rcond(g *mat.SymDense) float64 {
	var chol mat.Cholesky
	if chol.Factorize(g) {
		cond := chol.Cond()
		if cond == 0 || math.IsInf(cond, 1) {
			return 0
		}
		return 1 / cond
	}
	var lu mat.LU
	lu.Factorize(g)
	cond := lu.Cond()
	if cond == 0 || math.IsInf(cond, 1) {
		return 0
	}
	return 1 / cond
}

// AddDiagonal returns a copy of g with lambda added to every diagonal entry.
func AddDiagonal(g *mat.SymDense, lambda float64) *mat.SymDense {
	n := g.SymmetricDim()
	out := mat.NewSymDense(n, nil)
	out.CopySym(g)
	for i := 0; i < n; i++ {
		out.SetSym(i, i, g.At(i, i)+lambda)
	}
	return out
}
