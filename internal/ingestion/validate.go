package ingestion

import (
	"fmt"

	"taguchi/domain/oa"
	"taguchi/internal/analysis"
)

const (
	minComfortableRuns    = 4
	maxComfortableFactors = 50
)

// ValidateImport checks an imported matrix and summarizes its shape. Shape
// errors are fatal; imbalance and unusual sizes are reported as warnings.
func ValidateImport(matrix [][]int) (*oa.ImportValidation, error) {
	a, err := oa.FromMatrix(matrix)
	if err != nil {
		return nil, err
	}
	return Summarize(a), nil
}

// Summarize describes an already validated array.
func Summarize(a *oa.Array) *oa.ImportValidation {
	return &oa.ImportValidation{
		Runs:              a.Runs(),
		Factors:           a.Factors(),
		Levels:            a.Levels(),
		IsMixed:           a.IsMixed(),
		EstimatedStrength: EstimateStrength(a),
		Warnings:          Warnings(a),
	}
}

// EstimateStrength guesses strength from run count alone: an array needs at
// least L^t runs for strength t, where L is the largest level count. This is a
// quick heuristic, not a verification.
func EstimateStrength(a *oa.Array) int {
	runs := a.Runs()
	l := a.MaxLevel()

	switch {
	case runs >= l*l*l:
		return 3
	case runs >= l*l:
		return 2
	default:
		return 1
	}
}

// Warnings lists non-fatal observations about an array.
func Warnings(a *oa.Array) []string {
	warnings := []string{}

	report := analysis.BalanceReport(a)
	for _, col := range analysis.UnbalancedFactors(report) {
		warnings = append(warnings, fmt.Sprintf("Factor %d may not be balanced", col+1))
	}

	if a.Runs() < minComfortableRuns {
		warnings = append(warnings, "Array has very few runs")
	}
	if a.Factors() > maxComfortableFactors {
		warnings = append(warnings, "Array has many factors - analysis may be slow")
	}

	return warnings
}
