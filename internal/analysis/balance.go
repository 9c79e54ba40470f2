package analysis

import (
	"taguchi/domain/oa"
	"taguchi/domain/stats"
)

// BalanceReport tallies how often each level occurs in each factor. A factor
// is balanced when every observed level occurs runs/levels times, where levels
// is that factor's own level count, so mixed-level arrays are judged per factor.
func BalanceReport(a *oa.Array) stats.BalanceReport {
	factors := a.Factors()
	report := stats.BalanceReport{
		FactorBalance:  make([]bool, factors),
		LevelCounts:    make([]map[int]int, factors),
		ExpectedCounts: make([]int, factors),
	}

	for col := 0; col < factors; col++ {
		counts := make(map[int]int, a.LevelsFor(col))
		for row := 0; row < a.Runs(); row++ {
			counts[a.At(row, col)]++
		}

		expected := a.Runs() / a.LevelsFor(col)
		balanced := true
		for _, c := range counts {
			if c != expected {
				balanced = false
				break
			}
		}

		report.FactorBalance[col] = balanced
		report.LevelCounts[col] = counts
		report.ExpectedCounts[col] = expected
	}

	// Factor 0's expectation, kept for consumers that read a single value
	report.ExpectedCount = report.ExpectedCounts[0]

	return report
}

// UnbalancedFactors returns the zero-based indices of unbalanced factors.
func UnbalancedFactors(r stats.BalanceReport) []int {
	var out []int
	for col, ok := range r.FactorBalance {
		if !ok {
			out = append(out, col)
		}
	}
	return out
}
