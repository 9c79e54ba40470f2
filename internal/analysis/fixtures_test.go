package analysis

import (
	"testing"

	"github.com/stretchr/testify/require"

	"taguchi/domain/oa"
)

var l8 = [][]int{
	{0, 0, 0, 0, 0, 0, 0},
	{0, 0, 0, 1, 1, 1, 1},
	{0, 1, 1, 0, 0, 1, 1},
	{0, 1, 1, 1, 1, 0, 0},
	{1, 0, 1, 0, 1, 0, 1},
	{1, 0, 1, 1, 0, 1, 0},
	{1, 1, 0, 0, 1, 1, 0},
	{1, 1, 0, 1, 0, 0, 1},
}

var l9 = [][]int{
	{0, 0, 0, 0},
	{0, 1, 1, 1},
	{0, 2, 2, 2},
	{1, 0, 1, 2},
	{1, 1, 2, 0},
	{1, 2, 0, 1},
	{2, 0, 2, 1},
	{2, 1, 0, 2},
	{2, 2, 1, 0},
}

func mustArray(t *testing.T, matrix [][]int) *oa.Array {
	t.Helper()
	a, err := oa.FromMatrix(matrix)
	require.NoError(t, err)
	return a
}
