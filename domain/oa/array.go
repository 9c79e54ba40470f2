package oa

import (
	"fmt"
	"math"

	"taguchi/domain/core"
)

// DefaultStrength is the strength declared for arrays ingested without metadata.
const DefaultStrength = 2

// Array is a validated, rectangular orthogonal array. Entries of factor c lie in
// [0, levels[c]). The declared strength is not verified.
type Array struct {
	data     [][]int
	levels   []int
	strength int
}

// FromMatrix validates a raw matrix and infers each factor's level count as one
// more than its largest value. Level codes must be 0-based and dense: gaps shrink
// the inferred level space silently.
func FromMatrix(matrix [][]int) (*Array, error) {
	if err := checkShape(matrix); err != nil {
		return nil, err
	}

	factors := len(matrix[0])
	levels := make([]int, factors)
	for _, row := range matrix {
		for c, v := range row {
			if v+1 > levels[c] {
				levels[c] = v + 1
			}
		}
	}

	return &Array{data: copyRows(matrix), levels: levels, strength: DefaultStrength}, nil
}

// NewArray builds an array with explicit per-factor levels and strength, checking
// every entry against its factor's level range.
func NewArray(matrix [][]int, levels []int, strength int) (*Array, error) {
	if err := checkShape(matrix); err != nil {
		return nil, err
	}

	factors := len(matrix[0])
	if len(levels) != factors {
		return nil, core.NewParameterError("levels", fmt.Sprintf("got %d level counts for %d factors", len(levels), factors))
	}
	for r, row := range matrix {
		for c, v := range row {
			if v >= levels[c] {
				return nil, fmt.Errorf("%w: row %d factor %d has value %d, levels %d", core.ErrLevelOutOfRange, r, c, v, levels[c])
			}
		}
	}

	return &Array{data: copyRows(matrix), levels: append([]int(nil), levels...), strength: strength}, nil
}

func checkShape(matrix [][]int) error {
	if len(matrix) == 0 {
		return core.ErrEmptyInput
	}
	factors := len(matrix[0])
	if factors == 0 {
		return core.ErrEmptyFactors
	}
	for r, row := range matrix {
		if len(row) != factors {
			return core.NewRaggedRowError(r, len(row), factors)
		}
		for c, v := range row {
			if v < 0 {
				return fmt.Errorf("%w: row %d factor %d has value %d", core.ErrNegativeLevel, r, c, v)
			}
			if v > math.MaxInt32 {
				return fmt.Errorf("%w: row %d factor %d has value %d", core.ErrLevelTooLarge, r, c, v)
			}
		}
	}
	return nil
}

func copyRows(matrix [][]int) [][]int {
	out := make([][]int, len(matrix))
	for i, row := range matrix {
		out[i] = append([]int(nil), row...)
	}
	return out
}

// Runs returns the number of rows.
func (a *Array) Runs() int { return len(a.data) }

// Factors returns the number of columns.
func (a *Array) Factors() int { return len(a.levels) }

// Strength returns the declared strength.
func (a *Array) Strength() int { return a.strength }

// At returns the level of factor col in run row.
func (a *Array) At(row, col int) int { return a.data[row][col] }

// LevelsFor returns the level count of one factor.
func (a *Array) LevelsFor(col int) int { return a.levels[col] }

// Levels returns a copy of the per-factor level counts.
func (a *Array) Levels() []int { return append([]int(nil), a.levels...) }

// MaxLevel returns the largest level count across factors; for symmetric
// arrays this is the common level count.
func (a *Array) MaxLevel() int {
	m := 0
	for _, l := range a.levels {
		m = max(m, l)
	}
	return m
}

// IsMixed reports whether factors differ in level count.
func (a *Array) IsMixed() bool {
	for _, l := range a.levels[1:] {
		if l != a.levels[0] {
			return true
		}
	}
	return false
}

// Row returns a copy of one run.
func (a *Array) Row(row int) []int { return append([]int(nil), a.data[row]...) }

// Rows returns a copy of the whole matrix.
func (a *Array) Rows() [][]int { return copyRows(a.data) }

// Column returns one factor as a numeric series.
func (a *Array) Column(col int) []float64 {
	out := make([]float64, len(a.data))
	for r, row := range a.data {
		out[r] = float64(row[col])
	}
	return out
}

// DistinctLevels counts the distinct values observed in each factor.
func (a *Array) DistinctLevels() []int {
	counts := make([]int, a.Factors())
	for c := range counts {
		seen := make(map[int]struct{}, a.levels[c])
		for _, row := range a.data {
			seen[row[c]] = struct{}{}
		}
		counts[c] = len(seen)
	}
	return counts
}

// WithStrength returns a copy of the array declaring a different strength.
func (a *Array) WithStrength(strength int) *Array {
	return &Array{data: a.data, levels: a.levels, strength: strength}
}
