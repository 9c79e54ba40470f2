package catalogue

import (
	"cmp"
	"math"
	"slices"

	"taguchi/domain/oa"
	"taguchi/ports"
)

const (
	maxRaoHammingRuns = 4096
	maxHadamardRuns   = 256
)

// StaticCatalogue is an in-process ConstructionCataloguePort. It knows the
// parameter ranges of the classical constructions; it does not build arrays.
type StaticCatalogue struct{}

// NewStaticCatalogue creates the static construction catalogue
func NewStaticCatalogue() *StaticCatalogue {
	return &StaticCatalogue{}
}

var _ ports.ConstructionCataloguePort = (*StaticCatalogue)(nil)

// AvailableConstructions lists the methods able to produce a strength-t array
// with q levels, ordered by run count. Strength below 2 is served by strength-2
// methods.
func (c *StaticCatalogue) AvailableConstructions(levels, strength int) []ports.Construction {
	q := levels
	t := max(strength, 2)
	out := []ports.Construction{}
	if q < 2 || q > math.MaxInt32 {
		return out
	}

	if c.IsPrimePower(q) {
		if t == 2 {
			out = append(out, ports.Construction{Name: oa.MethodBose, Runs: q * q, MaxFactors: q + 1})

			for runs := q * q; runs <= maxRaoHammingRuns/q; {
				runs *= q
				out = append(out, ports.Construction{Name: oa.MethodRaoHamming, Runs: runs, MaxFactors: (runs - 1) / (q - 1)})
			}

			if q%2 == 1 {
				out = append(out, ports.Construction{Name: oa.MethodAddelmanKempthorne, Runs: 2 * q * q, MaxFactors: 2*q + 1})
			}
		}

		if t >= 3 && t <= q {
			if runs, ok := pow(q, t); ok {
				out = append(out, ports.Construction{Name: oa.MethodBush, Runs: runs, MaxFactors: q + 1})
			}
		}
	}

	if q == 2 && t == 2 {
		out = append(out, ports.Construction{Name: oa.MethodBoseBush, Runs: 8, MaxFactors: 5})

		for runs := 4; runs <= maxHadamardRuns; runs *= 2 {
			out = append(out, ports.Construction{Name: oa.MethodHadamardSylvester, Runs: runs, MaxFactors: runs - 1})
		}

		for p := 3; p+1 <= maxHadamardRuns; p += 4 {
			runs := p + 1
			if c.IsPrime(p) && runs&(runs-1) != 0 {
				out = append(out, ports.Construction{Name: oa.MethodHadamardPaley, Runs: runs, MaxFactors: runs - 1})
			}
		}
	}

	slices.SortStableFunc(out, func(a, b ports.Construction) int {
		return cmp.Or(cmp.Compare(a.Runs, b.Runs), cmp.Compare(a.Name, b.Name))
	})
	return out
}

// IsPrime reports whether n is prime
func (c *StaticCatalogue) IsPrime(n int) bool {
	if n < 2 {
		return false
	}
	for d := 2; d*d <= n; d++ {
		if n%d == 0 {
			return false
		}
	}
	return true
}

// IsPrimePower reports whether n = p^k for a prime p and k >= 1
func (c *StaticCatalogue) IsPrimePower(n int) bool {
	if n < 2 {
		return false
	}
	p := smallestFactor(n)
	for n%p == 0 {
		n /= p
	}
	return n == 1
}

func smallestFactor(n int) int {
	for d := 2; d*d <= n; d++ {
		if n%d == 0 {
			return d
		}
	}
	return n
}

// pow returns base^exp, or false when the result does not fit in an int
func pow(base, exp int) (int, bool) {
	out := 1
	for i := 0; i < exp; i++ {
		if out > math.MaxInt/base {
			return 0, false
		}
		out *= base
	}
	return out, true
}
