package ports

import (
	"context"
	"fmt"

	"taguchi/domain/oa"
	"taguchi/domain/stats"
)

// StrengthVerifierPort checks the orthogonality of an array
type StrengthVerifierPort interface {
	// VerifyStrength checks claimed against every column subset of that size
	VerifyStrength(ctx context.Context, a *oa.Array, claimed int) (*StrengthReport, error)

	// ComputeStrength returns the largest strength found, searching up to maxCheck
	ComputeStrength(ctx context.Context, a *oa.Array, maxCheck int) (int, error)
}

// StrengthReport is the verifier's raw verdict
type StrengthReport struct {
	IsValid        bool
	ActualStrength int
	Issues         []RawIssue
}

// RawIssue is a verifier finding known only by its rendered text
type RawIssue interface {
	fmt.Stringer
}

// TaggedIssue is a verifier finding that carries its own kind and location.
// Verifiers should prefer returning these over bare RawIssue values.
type TaggedIssue interface {
	RawIssue
	Kind() stats.IssueKind
	Location() *stats.IssueLocation
}
