package rvm

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/sparsebayes/rvm/linalg"
)

// selectMove scores the Add/Remove/Modify candidates for every basis and
// picks the one to apply this iteration, per spec §4.3 steps 2-3.
func selectMove(iteration int, active *activeSet, alpha, s, q, theta, capS, capQ []float64) (moveKind, int, float64) {
	nBasis := active.nBasis
	mask := active.Mask()

	addDelta := make([]float64, nBasis)
	remDelta := make([]float64, nBasis)
	modDelta := make([]float64, nBasis)

	for m := 0; m < nBasis; m++ {
		if mask[m] {
			if active.Len() > 1 {
				remDelta[m] = -0.5 * (q[m]*q[m]/(s[m]+alpha[m]) - math.Log(1+s[m]/alpha[m]))
			}
			if theta[m] > 0 {
				modDelta[m] = modifyDelta(m, alpha, theta, s, capS, capQ)
			}
		} else if theta[m] > 0 {
			addDelta[m] = 0.5 * (theta[m]/s[m] + math.Log(s[m]/(q[m]*q[m])))
		}
	}

	addChange, jA := argmax(addDelta)
	remChange, jR := argmax(remDelta)
	modChange, jM := argmax(modDelta)

	if iteration == 1 {
		if addChange >= modChange {
			return moveAdd, jA, addChange
		}
		return moveModify, jM, modChange
	}

	if remChange > 0 {
		modAtJR := 0.0
		if theta[jR] > 0 {
			modAtJR = modifyDelta(jR, alpha, theta, s, capS, capQ)
		}
		if remChange >= modAtJR {
			return moveRemove, jR, remChange
		}
		return moveModify, jR, modAtJR
	}

	kind, idx, best := moveAdd, jA, addChange
	if remChange > best {
		kind, idx, best = moveRemove, jR, remChange
	}
	if modChange > best {
		kind, idx, best = moveModify, jM, modChange
	}
	return kind, idx, best
}

func modifyDelta(m int, alpha, theta, s, capS, capQ []float64) float64 {
	alphaStar := s[m] * s[m] / theta[m]
	delta := 1/alphaStar - 1/alpha[m]
	return 0.5 * (delta*capQ[m]*capQ[m]/(delta*capS[m]+1) - math.Log(1+capS[m]*delta))
}

func argmax(v []float64) (float64, int) {
	best, idx := v[0], 0
	for i := 1; i < len(v); i++ {
		if v[i] > best {
			best, idx = v[i], i
		}
	}
	return best, idx
}

// applyMove mutates a warm-start (mu, alpha, active) according to the
// chosen move, using the pre-move Laplace approximation in irlsRes. The
// result seeds the next IRLS call; per spec §9, that call immediately
// overwrites mu and the covariance, so this need only be a reasonable
// starting point, not an exact posterior update.
func applyMove(kind moveKind, idx int, active *activeSet, alpha []float64, irlsRes *irlsResult, phiA *mat.Dense, src gramSource, s, q, theta []float64) (*mat.VecDense, []float64, *activeSet, error) {
	alphaOut := append([]float64{}, alpha...)

	switch kind {
	case moveAdd:
		return applyAdd(idx, active, alphaOut, irlsRes, phiA, src, s, q, theta)
	case moveRemove:
		return applyRemove(idx, active, alphaOut, irlsRes)
	default:
		return applyModify(idx, active, alphaOut, irlsRes, s, theta)
	}
}

func applyAdd(idx int, active *activeSet, alphaOut []float64, irlsRes *irlsResult, phiA *mat.Dense, src gramSource, s, q, theta []float64) (*mat.VecDense, []float64, *activeSet, error) {
	phiIdx, err := src.Columns([]int{idx})
	if err != nil {
		return nil, nil, nil, err
	}
	n, k := phiA.Dims()

	v := mat.NewVecDense(k, nil)
	weighted := make([]float64, n)
	for i := 0; i < n; i++ {
		weighted[i] = irlsRes.ObsNoiseVar[i] * phiIdx.At(i, 0)
	}
	weightedVec := mat.NewVecDense(n, weighted)
	v.MulVec(phiA.T(), weightedVec)

	sigmaV := mat.NewVecDense(k, nil)
	if k > 0 {
		if err := irlsRes.Chol.SolveVecTo(sigmaV, v); err != nil {
			return nil, nil, nil, err
		}
	}

	alphaStar := s[idx] * s[idx] / theta[idx]
	sigmaJJ := 1 / (alphaStar + s[idx])
	muNew := sigmaJJ * q[idx]

	newActive := active.Clone()
	pos := newActive.Add(idx)

	muWarm := mat.NewVecDense(newActive.Len(), nil)
	oldIdx := 0
	for i := 0; i < newActive.Len(); i++ {
		if i == pos {
			muWarm.SetVec(i, muNew)
			continue
		}
		shifted := irlsRes.Mu.AtVec(oldIdx) - muNew*sigmaV.AtVec(oldIdx)
		muWarm.SetVec(i, shifted)
		oldIdx++
	}

	alphaOut[idx] = alphaStar
	return muWarm, alphaOut, newActive, nil
}

func applyRemove(idx int, active *activeSet, alphaOut []float64, irlsRes *irlsResult) (*mat.VecDense, []float64, *activeSet, error) {
	pos, _ := active.Position(idx)
	sigma := linalg.CovarianceFromCholesky(irlsRes.Chol)
	sigmaJJ := sigma.At(pos, pos)
	muJ := irlsRes.Mu.AtVec(pos)

	newActive := active.Clone()
	newActive.Remove(idx)

	muWarm := mat.NewVecDense(newActive.Len(), nil)
	out := 0
	for i := 0; i < active.Len(); i++ {
		if i == pos {
			continue
		}
		adjusted := irlsRes.Mu.AtVec(i) + muJ*sigma.At(i, pos)/sigmaJJ
		muWarm.SetVec(out, adjusted)
		out++
	}

	alphaOut[idx] = math.Inf(1)
	return muWarm, alphaOut, newActive, nil
}

func applyModify(idx int, active *activeSet, alphaOut []float64, irlsRes *irlsResult, s, theta []float64) (*mat.VecDense, []float64, *activeSet, error) {
	pos, _ := active.Position(idx)
	alphaStar := s[idx] * s[idx] / theta[idx]
	sigma := linalg.CovarianceFromCholesky(irlsRes.Chol)
	sigmaJJ := sigma.At(pos, pos)
	kappa := 1 / (sigmaJJ + 1/(alphaStar-alphaOut[idx]))
	muJ := irlsRes.Mu.AtVec(pos)

	newActive := active.Clone()
	muWarm := mat.NewVecDense(active.Len(), nil)
	for i := 0; i < active.Len(); i++ {
		muWarm.SetVec(i, irlsRes.Mu.AtVec(i)-muJ*kappa*sigma.At(i, pos))
	}

	alphaOut[idx] = alphaStar
	return muWarm, alphaOut, newActive, nil
}
