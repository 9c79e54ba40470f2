package ports

import (
	"context"

	"taguchi/domain/oa"
)

// ArrayBuilderPort constructs orthogonal arrays. Construction algorithms live
// behind this port.
type ArrayBuilderPort interface {
	// Build returns an array satisfying spec or an infeasibility error
	Build(ctx context.Context, spec BuildSpec) (*oa.Array, error)
}

// BuildSpec defines the array the builder should construct
type BuildSpec struct {
	Levels   oa.LevelSpec
	Factors  int
	Strength int
	MinRuns  int // 0 means no lower bound
}
