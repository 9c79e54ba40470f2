package files

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"taguchi/domain/core"
	"taguchi/domain/oa"
)

// LaTeX renders an array as a tabular environment followed by comment lines
// giving its OA(runs, factors, levels, strength) notation, name and algorithm.
func LaTeX(data oa.OAData) string {
	var b strings.Builder

	fmt.Fprintf(&b, "\\begin{tabular}{|%s}\n", strings.Repeat("c|", data.Factors))
	b.WriteString("\\hline\n")

	cols := make([]string, data.Factors)
	for i := range cols {
		cols[i] = fmt.Sprintf("$F_{%d}$", i+1)
	}
	b.WriteString(strings.Join(cols, " & "))
	b.WriteString(" \\\\\n\\hline\n")

	for _, row := range data.Data {
		b.WriteString(strings.Join(formatRow(row), " & "))
		b.WriteString(" \\\\\n")
	}
	b.WriteString("\\hline\n\\end{tabular}\n")

	fmt.Fprintf(&b, "\n%% OA(%d, %d, %s, %d)\n", data.Runs, data.Factors, levelNotation(data.Levels), data.Strength)
	if data.Metadata.Name != nil {
		fmt.Fprintf(&b, "%% Name: %s\n", *data.Metadata.Name)
	}
	fmt.Fprintf(&b, "%% Algorithm: %s\n", data.Metadata.Algorithm)

	return b.String()
}

// WriteLaTeX writes the LaTeX rendering of an array
func WriteLaTeX(w io.Writer, data oa.OAData) error {
	if _, err := io.WriteString(w, LaTeX(data)); err != nil {
		return core.NewIOError("write latex", err)
	}
	return nil
}

// levelNotation prints a single count for symmetric arrays and a
// parenthesized list otherwise
func levelNotation(levels []int) string {
	if len(levels) == 0 {
		return "0"
	}
	for _, l := range levels[1:] {
		if l != levels[0] {
			return "(" + strings.Join(formatRow(levels), ",") + ")"
		}
	}
	return strconv.Itoa(levels[0])
}
