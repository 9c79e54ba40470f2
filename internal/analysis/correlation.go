package analysis

import (
	"math"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"taguchi/domain/oa"
	domainStats "taguchi/domain/stats"
)

// machineEpsilon is the float64 unit roundoff gap (2^-52).
const machineEpsilon = 0x1p-52

// CorrelationMatrix computes the Pearson coefficient between every ordered pair
// of factors. Each pair is computed on its own; the diagonal is fixed at 1.0.
// Cost is O(factors² · runs).
func CorrelationMatrix(a *oa.Array) domainStats.CorrelationMatrix {
	factors := a.Factors()

	centered := make([][]float64, factors)
	for col := range centered {
		centered[col] = center(a.Column(col))
	}

	m := mat.NewDense(factors, factors, nil)
	for i := 0; i < factors; i++ {
		for j := 0; j < factors; j++ {
			if i == j {
				m.Set(i, j, 1.0)
				continue
			}
			m.Set(i, j, pearson(centered[i], centered[j]))
		}
	}

	rows := make([][]float64, factors)
	for i := range rows {
		rows[i] = mat.Row(nil, i, m)
	}

	return domainStats.CorrelationMatrix{Matrix: rows, Factors: factors}
}

// center subtracts the mean from every value in place and returns the slice
func center(x []float64) []float64 {
	mean, err := stats.Mean(x)
	if err != nil {
		return x
	}
	floats.AddConst(-mean, x)
	return x
}

// pearson expects mean-centered inputs. A degenerate (constant) column yields
// 0 rather than NaN.
func pearson(xi, xj []float64) float64 {
	cov := floats.Dot(xi, xj)
	varI := floats.Dot(xi, xi)
	varJ := floats.Dot(xj, xj)

	denom := math.Sqrt(varI * varJ)
	if denom < machineEpsilon {
		return 0.0
	}

	r := cov / denom
	// Clamp to [-1, 1] range (due to floating point precision)
	if r > 1.0 {
		r = 1.0
	} else if r < -1.0 {
		r = -1.0
	}
	return r
}
