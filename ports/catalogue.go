package ports

import (
	"context"

	"taguchi/domain/oa"
)

// ConstructionCataloguePort lists construction methods and answers the
// number-theoretic questions they depend on
type ConstructionCataloguePort interface {
	// AvailableConstructions returns candidate methods for a level count and strength
	AvailableConstructions(levels, strength int) []Construction

	IsPrimePower(n int) bool
	IsPrime(n int) bool
}

// Construction is one catalogue entry
type Construction struct {
	Name       string
	Runs       int
	MaxFactors int
}

// StandardArraySourcePort returns predefined arrays by name (L4, L8, ...)
type StandardArraySourcePort interface {
	StandardArray(ctx context.Context, name string) (*oa.Array, error)
}
