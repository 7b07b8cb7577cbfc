package rvm

import "gonum.org/v1/gonum/mat"

// trainResult is the common output shape every trainer (Figueiredo,
// Sequential streaming, Sequential in-memory) produces. Model.Train copies
// the relevant fields into the Model itself once training finishes.
type trainResult struct {
	// SparseIndices is sorted(A): the selected basis indices, in the order
	// SparseBeta's entries correspond to.
	SparseIndices []int

	// SparseBeta is the compact posterior mean, aligned to SparseIndices.
	// Its length equals len(SparseIndices).
	SparseBeta *mat.VecDense

	// BetaFull is the full, zero-padded weight vector (length nBasis),
	// kept for inspection per the Sequential algorithm's "store beta" step.
	BetaFull []float64

	// Sigma is the posterior covariance for the active set. Populated by
	// the Sequential trainers; nil for Figueiredo, which does not maintain
	// an explicit Laplace covariance across outer iterations.
	Sigma *mat.SymDense

	Converged  bool
	ExitReason string
	ExitValue  float64
	Iterations int
}
