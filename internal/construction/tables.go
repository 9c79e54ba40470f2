package construction

import (
	"fmt"

	"taguchi/domain/oa"
)

const genericDescription = "Construction method"

var descriptions = map[string]string{
	oa.MethodBose:               "Primary construction for strength 2 arrays",
	oa.MethodBush:               "Higher strength arrays (t >= 2)",
	oa.MethodBoseBush:           "Extended Bose for binary (2 level) arrays",
	oa.MethodHadamardSylvester:  "Binary arrays from Hadamard matrices",
	oa.MethodHadamardPaley:      "Binary arrays using Paley construction",
	oa.MethodAddelmanKempthorne: "Extended construction for odd prime powers",
	oa.MethodRaoHamming:         "Arrays from linear codes",
}

var constraints = map[string]func(levels int) []string{
	oa.MethodBose: func(levels int) []string {
		return []string{
			fmt.Sprintf("Requires %d to be a prime power", levels),
			fmt.Sprintf("Max %d factors", levels+1),
		}
	},
	oa.MethodBush: func(levels int) []string {
		return []string{fmt.Sprintf("Requires %d to be a prime power", levels)}
	},
	oa.MethodBoseBush: func(int) []string {
		return []string{"Only for 2 levels"}
	},
	oa.MethodHadamardSylvester: func(int) []string {
		return []string{"Only for 2 levels", "Runs must be power of 2"}
	},
	oa.MethodHadamardPaley: func(int) []string {
		return []string{"Only for 2 levels", "Requires (runs-1) to be prime ≡ 3 (mod 4)"}
	},
	oa.MethodAddelmanKempthorne: func(int) []string {
		return []string{"Requires odd prime power levels"}
	},
}

// Describe returns the description of a construction method. Unknown names get
// a generic description.
func Describe(name string) string {
	if d, ok := descriptions[name]; ok {
		return d
	}
	return genericDescription
}

// Constraints returns the requirements a method places on its parameters.
// Unknown names have none.
func Constraints(name string, levels int) []string {
	if f, ok := constraints[name]; ok {
		return f(levels)
	}
	return []string{}
}
