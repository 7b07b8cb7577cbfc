package rvm

import "gonum.org/v1/gonum/mat"

// sufficientStatistics computes S_m, Q_m (raw, as observed against the
// current active set) and the corrected s_m, q_m, theta_m for every
// candidate basis m, per spec §3. phiA/w/resid/chol describe the current
// Laplace approximation; src supplies Gram columns in blocks so the
// streaming variant never materializes the full Gram matrix.
func sufficientStatistics(src gramSource, blockSize int, phiA *mat.Dense, w, resid []float64, chol *mat.Cholesky, active *activeSet, alpha []float64) (s, q, theta, capS, capQ []float64, err error) {
	nBasis := src.NBasis()
	n, k := phiA.Dims()

	capS = make([]float64, nBasis)
	capQ = make([]float64, nBasis)

	weightedPhiAT := mat.NewDense(k, n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < k; j++ {
			weightedPhiAT.Set(j, i, phiA.At(i, j)*w[i])
		}
	}
	residVec := mat.NewVecDense(n, resid)

	for start := 0; start < nBasis; start += blockSize {
		end := start + blockSize
		if end > nBasis {
			end = nBasis
		}
		block, blockErr := src.Block(start, end)
		if blockErr != nil {
			return nil, nil, nil, nil, nil, blockErr
		}
		bw := end - start

		var v mat.Dense
		if k > 0 {
			v.Mul(weightedPhiAT, block)
		}

		var z mat.Dense
		if k > 0 {
			if err := chol.SolveTo(&z, &v); err != nil {
				return nil, nil, nil, nil, nil, err
			}
		}

		qBlock := mat.NewVecDense(bw, nil)
		qBlock.MulVec(block.T(), residVec)

		for col := 0; col < bw; col++ {
			base := 0.0
			for row := 0; row < n; row++ {
				val := block.At(row, col)
				base += w[row] * val * val
			}
			quad := 0.0
			for row := 0; row < k; row++ {
				quad += v.At(row, col) * z.At(row, col)
			}
			capS[start+col] = base - quad
			capQ[start+col] = qBlock.AtVec(col)
		}
	}

	s = make([]float64, nBasis)
	q = make([]float64, nBasis)
	theta = make([]float64, nBasis)
	mask := active.Mask()
	for m := 0; m < nBasis; m++ {
		if mask[m] {
			am := alpha[m]
			denom := am - capS[m]
			s[m] = am * capS[m] / denom
			q[m] = am * capQ[m] / denom
		} else {
			s[m] = capS[m]
			q[m] = capQ[m]
		}
		theta[m] = q[m]*q[m] - s[m]
	}
	return s, q, theta, capS, capQ, nil
}
