package catalogue

import (
	"context"
	"strings"

	"taguchi/domain/core"
	"taguchi/domain/oa"
	"taguchi/ports"
)

type standardArray struct {
	levels   []int
	strength int
	data     [][]int
}

// standardArrays holds the catalogue arrays small enough to embed, 0-based.
var standardArrays = map[string]standardArray{
	"L4": {
		levels:   []int{2, 2, 2},
		strength: 2,
		data: [][]int{
			{0, 0, 0},
			{0, 1, 1},
			{1, 0, 1},
			{1, 1, 0},
		},
	},
	"L8": {
		levels:   []int{2, 2, 2, 2, 2, 2, 2},
		strength: 2,
		data: [][]int{
			{0, 0, 0, 0, 0, 0, 0},
			{0, 0, 0, 1, 1, 1, 1},
			{0, 1, 1, 0, 0, 1, 1},
			{0, 1, 1, 1, 1, 0, 0},
			{1, 0, 1, 0, 1, 0, 1},
			{1, 0, 1, 1, 0, 1, 0},
			{1, 1, 0, 0, 1, 1, 0},
			{1, 1, 0, 1, 0, 0, 1},
		},
	},
	"L9": {
		levels:   []int{3, 3, 3, 3},
		strength: 2,
		data: [][]int{
			{0, 0, 0, 0},
			{0, 1, 1, 1},
			{0, 2, 2, 2},
			{1, 0, 1, 2},
			{1, 1, 2, 0},
			{1, 2, 0, 1},
			{2, 0, 2, 1},
			{2, 1, 0, 2},
			{2, 2, 1, 0},
		},
	},
}

// EmbeddedArrays serves the standard arrays compiled into the binary
type EmbeddedArrays struct{}

// NewEmbeddedArrays creates the embedded standard-array source
func NewEmbeddedArrays() *EmbeddedArrays {
	return &EmbeddedArrays{}
}

var _ ports.StandardArraySourcePort = (*EmbeddedArrays)(nil)

// StandardArray returns a copy of the named array. Names are case-insensitive.
func (s *EmbeddedArrays) StandardArray(ctx context.Context, name string) (*oa.Array, error) {
	std, ok := standardArrays[strings.ToUpper(strings.TrimSpace(name))]
	if !ok {
		return nil, core.NewNotFoundError("standard array", name)
	}
	return oa.NewArray(std.data, std.levels, std.strength)
}

// Names lists the embedded array names
func (s *EmbeddedArrays) Names() []string {
	return []string{"L4", "L8", "L9"}
}
