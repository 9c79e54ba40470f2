package oa

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelSpecJSON(t *testing.T) {
	var req BuildRequest
	require.NoError(t, json.Unmarshal([]byte(`{"levels": 3, "factors": 4, "strength": 2}`), &req))
	assert.False(t, req.Levels.IsMixed())
	assert.Equal(t, 3, req.Levels.Symmetric)
	assert.Nil(t, req.MinRuns)

	require.NoError(t, json.Unmarshal([]byte(`{"levels": [2, 3, 3], "factors": 3, "strength": 2, "minRuns": 18}`), &req))
	assert.True(t, req.Levels.IsMixed())
	assert.Equal(t, []int{2, 3, 3}, req.Levels.Mixed)
	require.NotNil(t, req.MinRuns)
	assert.Equal(t, 18, *req.MinRuns)

	require.NoError(t, json.Unmarshal([]byte(`{"levels": []}`), &req))
	assert.True(t, req.Levels.IsMixed())
	assert.Empty(t, req.Levels.Mixed)

	assert.Error(t, json.Unmarshal([]byte(`{"levels": "three"}`), &req))
}

func TestLevelSpecMarshal(t *testing.T) {
	b, err := json.Marshal(Symmetric(5))
	require.NoError(t, err)
	assert.JSONEq(t, `5`, string(b))

	b, err = json.Marshal(Mixed(2, 3))
	require.NoError(t, err)
	assert.JSONEq(t, `[2,3]`, string(b))
}

func TestOADataRoundTripsArray(t *testing.T) {
	a, err := NewArray([][]int{{0, 0}, {0, 1}, {1, 0}, {1, 1}}, []int{2, 2}, 2)
	require.NoError(t, err)

	data := NewOAData("id-1", a, OAMetadata{Algorithm: "Hadamard-Sylvester"})
	assert.Equal(t, 4, data.Runs)
	assert.Equal(t, 2, data.Factors)

	back, err := data.Array()
	require.NoError(t, err)
	assert.Equal(t, a.Rows(), back.Rows())
	assert.Equal(t, a.Levels(), back.Levels())
}

func TestOADataArrayWithoutLevels(t *testing.T) {
	data := OAData{Strength: 3, Data: [][]int{{0, 1}, {1, 0}}}

	a, err := data.Array()
	require.NoError(t, err)
	assert.Equal(t, []int{2, 2}, a.Levels())
	assert.Equal(t, 3, a.Strength())
}
