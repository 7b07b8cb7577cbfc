package metrics

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/sparsebayes/rvm/pkg/errors"
)

// logLossEpsilon bounds predicted probabilities away from 0 and 1 so
// BinaryLogLoss never evaluates log(0).
const logLossEpsilon = 1e-15

func validateBinaryLabels(op string, y *mat.VecDense) error {
	for i := 0; i < y.Len(); i++ {
		v := y.AtVec(i)
		if v != 0 && v != 1 {
			return errors.NewValueError(op, "labels must be 0 or 1")
		}
	}
	return nil
}

// AUC computes the area under the ROC curve via the Mann-Whitney U
// statistic: the fraction of positive/negative score pairs the classifier
// ranks correctly, with ties counted as half-correct. Datasets containing
// only one class have an undefined AUC and report 0.5 rather than an error.
func AUC(yTrue, yPred *mat.VecDense) (float64, error) {
	if yTrue == nil || yPred == nil || yTrue.Len() == 0 {
		return 0, errors.NewValueError("AUC", "empty vector")
	}
	n := yTrue.Len()
	if yPred.Len() != n {
		return 0, errors.NewDimensionError("AUC", n, yPred.Len(), 0)
	}
	if err := validateBinaryLabels("AUC", yTrue); err != nil {
		return 0, err
	}

	var posScores, negScores []float64
	for i := 0; i < n; i++ {
		if yTrue.AtVec(i) == 1 {
			posScores = append(posScores, yPred.AtVec(i))
		} else {
			negScores = append(negScores, yPred.AtVec(i))
		}
	}
	if len(posScores) == 0 || len(negScores) == 0 {
		return 0.5, nil
	}

	sort.Float64s(negScores)
	var rankSum float64
	for _, p := range posScores {
		lo := sort.SearchFloat64s(negScores, p)
		hi := lo
		for hi < len(negScores) && negScores[hi] == p {
			hi++
		}
		rankSum += float64(lo) + 0.5*float64(hi-lo)
	}

	return rankSum / float64(len(posScores)*len(negScores)), nil
}

// AUCMatrix applies AUC to the first column of yTrue/yPred.
func AUCMatrix(yTrue, yPred mat.Matrix) (float64, error) {
	if yTrue == nil || yPred == nil {
		return 0, errors.NewValueError("AUCMatrix", "nil matrix")
	}
	rTrue, cTrue := yTrue.Dims()
	rPred, _ := yPred.Dims()
	if rTrue == 0 || cTrue == 0 {
		return 0, errors.NewValueError("AUCMatrix", "empty matrix")
	}
	if rTrue != rPred {
		return 0, errors.NewDimensionError("AUCMatrix", rTrue, rPred, 0)
	}

	yTrueVec := mat.NewVecDense(rTrue, nil)
	yPredVec := mat.NewVecDense(rTrue, nil)
	for i := 0; i < rTrue; i++ {
		yTrueVec.SetVec(i, yTrue.At(i, 0))
		yPredVec.SetVec(i, yPred.At(i, 0))
	}
	return AUC(yTrueVec, yPredVec)
}

// BinaryLogLoss computes the mean clipped binary cross-entropy between
// predicted probabilities yPred and 0/1 labels yTrue.
func BinaryLogLoss(yTrue, yPred *mat.VecDense) (float64, error) {
	if yTrue == nil || yPred == nil || yTrue.Len() == 0 {
		return 0, errors.NewValueError("BinaryLogLoss", "empty vector")
	}
	n := yTrue.Len()
	if yPred.Len() != n {
		return 0, errors.NewDimensionError("BinaryLogLoss", n, yPred.Len(), 0)
	}
	if err := validateBinaryLabels("BinaryLogLoss", yTrue); err != nil {
		return 0, err
	}

	var sum float64
	for i := 0; i < n; i++ {
		p := clip(yPred.AtVec(i), logLossEpsilon, 1-logLossEpsilon)
		y := yTrue.AtVec(i)
		sum -= y*math.Log(p) + (1-y)*math.Log(1-p)
	}
	return sum / float64(n), nil
}

func clip(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ClassificationError returns the fraction of entries where yTrue and yPred
// disagree. Labels need not be binary.
func ClassificationError(yTrue, yPred *mat.VecDense) (float64, error) {
	if yTrue == nil || yPred == nil || yTrue.Len() == 0 {
		return 0, errors.NewValueError("ClassificationError", "empty vector")
	}
	n := yTrue.Len()
	if yPred.Len() != n {
		return 0, errors.NewDimensionError("ClassificationError", n, yPred.Len(), 0)
	}
	var wrong float64
	for i := 0; i < n; i++ {
		if yTrue.AtVec(i) != yPred.AtVec(i) {
			wrong++
		}
	}
	return wrong / float64(n), nil
}

// Accuracy returns the fraction of entries where yTrue and yPred agree.
func Accuracy(yTrue, yPred *mat.VecDense) (float64, error) {
	errRate, err := ClassificationError(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return 1 - errRate, nil
}
