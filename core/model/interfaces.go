package model

import "gonum.org/v1/gonum/mat"

// Predictor is implemented by models that can score new observations.
type Predictor interface {
	// Predict returns the positive-class score for each row of X.
	Predict(X mat.Matrix) (mat.Matrix, error)
}

// Scorer is implemented by models that can self-evaluate against labeled
// data.
type Scorer interface {
	Score(X, y mat.Matrix) (float64, error)
}

// Classifier combines the interfaces a binary classifier in this repository
// is expected to satisfy.
type Classifier interface {
	Predictor
	Scorer
	IsFitted() bool
}
