package stats

import "taguchi/domain/oa"

// ============================================================================
// BALANCE & CORRELATION
// ============================================================================

// BalanceReport tallies level occurrences per factor.
// INVARIANTS:
// - len(FactorBalance) == len(LevelCounts) == len(ExpectedCounts) == factors
// - FactorBalance[c] is true iff every observed count equals ExpectedCounts[c]
type BalanceReport struct {
	FactorBalance  []bool        `json:"factorBalance"`
	LevelCounts    []map[int]int `json:"levelCounts"`
	ExpectedCount  int           `json:"expectedCount"`  // runs / levels[0]
	ExpectedCounts []int         `json:"expectedCounts"` // runs / levels[c]
}

// Balanced reports whether every factor is balanced.
func (r BalanceReport) Balanced() bool {
	for _, ok := range r.FactorBalance {
		if !ok {
			return false
		}
	}
	return true
}

// CorrelationMatrix holds pairwise Pearson coefficients between factors.
// INVARIANTS:
// - Matrix is Factors x Factors
// - diagonal entries are exactly 1.0
// - off-diagonal entries are finite and in [-1, 1]
type CorrelationMatrix struct {
	Matrix  [][]float64 `json:"matrix"`
	Factors int         `json:"factors"`
}

// MaxAbsOffDiagonal returns the largest absolute correlation between two
// distinct factors, or 0 for a single-factor matrix.
func (m CorrelationMatrix) MaxAbsOffDiagonal() float64 {
	worst := 0.0
	for i, row := range m.Matrix {
		for j, v := range row {
			if i == j {
				continue
			}
			if v < 0 {
				v = -v
			}
			worst = max(worst, v)
		}
	}
	return worst
}

// ============================================================================
// VERIFICATION
// ============================================================================

// IssueKind classifies a verification issue.
type IssueKind string

const (
	IssueValueOutOfRange  IssueKind = "Value Out of Range"
	IssueBalanceViolation IssueKind = "Balance Violation"
)

// IssueLocation points at the cells or columns an issue refers to.
type IssueLocation struct {
	Row     *int  `json:"row"`
	Col     *int  `json:"col"`
	Columns []int `json:"columns"`
}

// Issue is one classified verification finding. Description always carries
// the verifier's own text.
type Issue struct {
	Kind        IssueKind      `json:"issueType"`
	Description string         `json:"description"`
	Location    *IssueLocation `json:"location"`
}

// VerificationResult is the outcome of checking an array's claimed strength.
type VerificationResult struct {
	IsValid         bool    `json:"isValid"`
	ClaimedStrength int     `json:"claimedStrength"`
	ActualStrength  int     `json:"actualStrength"`
	Issues          []Issue `json:"issues"`
}

// ============================================================================
// INSPECTION
// ============================================================================

// ColumnSummary describes the level codes of one factor.
type ColumnSummary struct {
	Factor int     `json:"factor"`
	Levels int     `json:"levels"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"stdDev"`
	Min    int     `json:"min"`
	Max    int     `json:"max"`
}

// Inspection gathers every read-only analysis of one array.
type Inspection struct {
	Name           string                  `json:"name,omitempty"`
	Summary        oa.ImportValidation     `json:"summary"`
	Algorithm      string                  `json:"algorithm"`
	Columns        []ColumnSummary         `json:"columns"`
	Balance        BalanceReport           `json:"balance"`
	Correlation    CorrelationMatrix       `json:"correlation"`
	MaxCorrelation float64                 `json:"maxCorrelation"`
	Verification   *VerificationResult     `json:"verification,omitempty"`
	Suggestions    []oa.ConstructionOption `json:"suggestions"`
}
