package construction

import (
	"math/bits"

	"taguchi/domain/oa"
)

// fingerprint is the structural signature the classifier looks at
type fingerprint struct {
	runs    int
	factors int
	levels  int
}

// rule labels arrays whose fingerprint satisfies match
type rule struct {
	label string
	match func(f fingerprint, isPrime func(int) bool) bool
}

// classificationRules are evaluated top to bottom; the first match wins.
var classificationRules = []rule{
	{oa.MethodHadamardSylvester, func(f fingerprint, _ func(int) bool) bool {
		return f.levels == 2 && isPowerOfTwo(f.runs)
	}},
	{oa.MethodHadamardPaley, func(f fingerprint, isPrime func(int) bool) bool {
		return f.levels == 2 && f.runs > 1 && isPrime(f.runs-1)
	}},
	{oa.MethodBose, func(f fingerprint, _ func(int) bool) bool {
		return f.runs == f.levels*f.levels && f.factors <= f.levels+1
	}},
	{oa.MethodBoseBush, func(f fingerprint, _ func(int) bool) bool {
		return f.levels == 2 && f.runs == 2*f.levels*f.levels && f.factors <= 2*f.levels+1
	}},
	{oa.MethodAddelmanKempthorne, func(f fingerprint, _ func(int) bool) bool {
		return f.runs == 2*f.levels*f.levels && f.factors <= 2*f.levels+1
	}},
}

// ClassifyConstruction guesses which method produced an array from its run,
// factor and level counts. The result is advisory and never affects validity.
func (a *Advisor) ClassifyConstruction(arr *oa.Array) string {
	f := fingerprint{runs: arr.Runs(), factors: arr.Factors(), levels: arr.MaxLevel()}
	for _, r := range classificationRules {
		if r.match(f, a.catalogue.IsPrime) {
			return r.label
		}
	}
	return oa.MethodUnknown
}

func isPowerOfTwo(n int) bool {
	return n > 0 && bits.OnesCount(uint(n)) == 1
}
