package rvm

import "testing"

func TestNew_Defaults(t *testing.T) {
	m, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if m.cfg.algorithm != Figueiredo {
		t.Errorf("default algorithm = %v, want Figueiredo", m.cfg.algorithm)
	}
	if m.cfg.maxIterations != 1000 {
		t.Errorf("default maxIterations = %d, want 1000", m.cfg.maxIterations)
	}
	if m.cfg.sequentialBlockSize != 1000 {
		t.Errorf("default sequentialBlockSize = %d, want 1000", m.cfg.sequentialBlockSize)
	}
}

func TestWithAlgorithm_Valid(t *testing.T) {
	for _, algo := range []Algorithm{Figueiredo, Sequential, SequentialInMemory} {
		m, err := New(WithAlgorithm(algo))
		if err != nil {
			t.Fatalf("New(WithAlgorithm(%v)) error = %v", algo, err)
		}
		if m.cfg.algorithm != algo {
			t.Errorf("algorithm = %v, want %v", m.cfg.algorithm, algo)
		}
	}
}

func TestWithAlgorithm_Invalid(t *testing.T) {
	_, err := New(WithAlgorithm(Algorithm("Bogus")))
	if err == nil {
		t.Fatal("New(WithAlgorithm(\"Bogus\")) error = nil, want InvalidAlgorithmError")
	}
}

func TestWithMaxIterations_Invalid(t *testing.T) {
	for _, n := range []int{0, -1} {
		if _, err := New(WithMaxIterations(n)); err == nil {
			t.Errorf("New(WithMaxIterations(%d)) error = nil, want a validation error", n)
		}
	}
}

func TestWithBetaConvergedTolerance_Invalid(t *testing.T) {
	if _, err := New(WithBetaConvergedTolerance(0)); err == nil {
		t.Fatal("New(WithBetaConvergedTolerance(0)) error = nil, want a validation error")
	}
	if _, err := New(WithBetaConvergedTolerance(-1)); err == nil {
		t.Fatal("New(WithBetaConvergedTolerance(-1)) error = nil, want a validation error")
	}
}

func TestWithBetaRelevantTolerance_Invalid(t *testing.T) {
	if _, err := New(WithBetaRelevantTolerance(0)); err == nil {
		t.Fatal("New(WithBetaRelevantTolerance(0)) error = nil, want a validation error")
	}
}

func TestWithLikelihoodIncreaseThreshold_Invalid(t *testing.T) {
	if _, err := New(WithLikelihoodIncreaseThreshold(0)); err == nil {
		t.Fatal("New(WithLikelihoodIncreaseThreshold(0)) error = nil, want a validation error")
	}
}

func TestWithSequentialBlockSize_Invalid(t *testing.T) {
	if _, err := New(WithSequentialBlockSize(0)); err == nil {
		t.Fatal("New(WithSequentialBlockSize(0)) error = nil, want a validation error")
	}
}

func TestNew_FirstErrorAborts(t *testing.T) {
	// The second option is never applied once the first one fails, and
	// construction itself returns nil.
	m, err := New(WithMaxIterations(-1), WithAlgorithm(Sequential))
	if err == nil {
		t.Fatal("New() with a failing first option: error = nil, want an error")
	}
	if m != nil {
		t.Fatalf("New() with a failing option returned a non-nil Model: %+v", m)
	}
}
