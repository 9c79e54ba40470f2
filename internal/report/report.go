package report

import (
	"fmt"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"taguchi/domain/doe"
	"taguchi/domain/stats"
)

// Markdown renders an inspection as a markdown document
func Markdown(in stats.Inspection) string {
	var b strings.Builder

	title := in.Name
	if title == "" {
		title = "Orthogonal array"
	}
	fmt.Fprintf(&b, "# %s\n\n", title)

	s := in.Summary
	b.WriteString("| Runs | Factors | Levels | Mixed | Estimated strength | Construction |\n")
	b.WriteString("|---:|---:|---|---|---:|---|\n")
	fmt.Fprintf(&b, "| %d | %d | %s | %t | %d | %s |\n\n",
		s.Runs, s.Factors, joinInts(s.Levels), s.IsMixed, s.EstimatedStrength, in.Algorithm)

	if len(s.Warnings) > 0 {
		b.WriteString("## Warnings\n\n")
		for _, w := range s.Warnings {
			fmt.Fprintf(&b, "- %s\n", w)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Balance\n\n")
	b.WriteString("| Factor | Levels | Expected | Counts | Mean | Std dev | Balanced |\n")
	b.WriteString("|---:|---:|---:|---|---:|---:|---|\n")
	for col, balanced := range in.Balance.FactorBalance {
		var levels int
		var mean, sd float64
		if col < len(in.Columns) {
			levels, mean, sd = in.Columns[col].Levels, in.Columns[col].Mean, in.Columns[col].StdDev
		}
		fmt.Fprintf(&b, "| %d | %d | %d | %s | %.3f | %.3f | %s |\n",
			col+1, levels, in.Balance.ExpectedCounts[col], formatCounts(in.Balance.LevelCounts[col], levels),
			mean, sd, yesNo(balanced))
	}
	b.WriteString("\n")

	b.WriteString("## Correlation\n\n")
	fmt.Fprintf(&b, "Largest absolute off-diagonal correlation: %.4f\n\n", in.MaxCorrelation)
	writeMatrix(&b, in.Correlation)

	if v := in.Verification; v != nil {
		b.WriteString("## Strength verification\n\n")
		verdict := "invalid"
		if v.IsValid {
			verdict = "valid"
		}
		fmt.Fprintf(&b, "Claimed strength %d, actual strength %d: %s\n\n", v.ClaimedStrength, v.ActualStrength, verdict)
		for _, issue := range v.Issues {
			fmt.Fprintf(&b, "- **%s**: `%s`\n", issue.Kind, issue.Description)
		}
		if len(v.Issues) > 0 {
			b.WriteString("\n")
		}
	}

	if len(in.Suggestions) > 0 {
		b.WriteString("## Alternative constructions\n\n")
		b.WriteString("| Method | Runs | Max factors | Description |\n")
		b.WriteString("|---|---:|---:|---|\n")
		for _, o := range in.Suggestions {
			fmt.Fprintf(&b, "| %s | %d | %d | %s |\n", o.Name, o.Runs, o.MaxFactors, o.Description)
		}
		b.WriteString("\n")
	}

	return b.String()
}

// AnalysisMarkdown renders a DOE analysis as a markdown document
func AnalysisMarkdown(a doe.Analysis) string {
	var b strings.Builder

	b.WriteString("# DOE analysis\n\n")
	fmt.Fprintf(&b, "Grand mean %.4f, S/N grand mean %.4f dB\n\n", a.GrandMean, a.SNGrandMean)

	b.WriteString("## Main effects\n\n")
	b.WriteString("| Rank | Factor | Level means | Range |\n")
	b.WriteString("|---:|---|---|---:|\n")
	for _, e := range a.MainEffects {
		fmt.Fprintf(&b, "| %d | %s | %s | %.4f |\n", e.Rank, e.FactorName, joinFloats(e.LevelMeans), e.Range)
	}
	b.WriteString("\n")

	b.WriteString("## ANOVA\n\n")
	b.WriteString("| Factor | SS | DF | MS | F | p | Contribution % | Pooled |\n")
	b.WriteString("|---|---:|---:|---:|---:|---:|---:|---|\n")
	for _, e := range a.ANOVA.Entries {
		fmt.Fprintf(&b, "| %s | %.4f | %d | %.4f | %s | %s | %.2f | %s |\n",
			e.FactorName, e.SumOfSquares, e.DegreesOfFreedom, e.MeanSquare,
			optional(e.FRatio), optional(e.PValue), e.ContributionPercent, yesNo(e.Pooled))
	}
	fmt.Fprintf(&b, "| Error | %.4f | %d | %.4f | | | | |\n", a.ANOVA.ErrorSS, a.ANOVA.ErrorDF, a.ANOVA.ErrorMS)
	fmt.Fprintf(&b, "| Total | %.4f | %d | | | | | |\n\n", a.ANOVA.TotalSS, a.ANOVA.TotalDF)

	o := a.OptimalSettings
	b.WriteString("## Optimal settings\n\n")
	for _, e := range a.MainEffects {
		if level, ok := o.FactorLevels[e.FactorID]; ok {
			fmt.Fprintf(&b, "- %s: level %d\n", e.FactorName, level)
		}
	}
	fmt.Fprintf(&b, "\nPredicted mean %.4f, predicted S/N %.4f dB", o.PredictedMean, o.PredictedSNRatio)
	if ci := o.ConfidenceInterval; ci != nil {
		fmt.Fprintf(&b, ", %.0f%% interval [%.4f, %.4f]", ci.Level*100, ci.Lower, ci.Upper)
	}
	b.WriteString("\n")

	return b.String()
}

// HTML converts a markdown document into an HTML fragment
func HTML(md string) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	return markdown.ToHTML([]byte(md), p, renderer)
}

func writeMatrix(b *strings.Builder, m stats.CorrelationMatrix) {
	b.WriteString("|   |")
	for j := 0; j < m.Factors; j++ {
		fmt.Fprintf(b, " F%d |", j+1)
	}
	b.WriteString("\n|---|")
	b.WriteString(strings.Repeat("---:|", m.Factors))
	b.WriteString("\n")
	for i, row := range m.Matrix {
		fmt.Fprintf(b, "| **F%d** |", i+1)
		for _, v := range row {
			fmt.Fprintf(b, " %.3f |", v)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

func formatCounts(counts map[int]int, levels int) string {
	parts := make([]string, 0, len(counts))
	for level := 0; level < levels; level++ {
		parts = append(parts, fmt.Sprintf("%d:%d", level, counts[level]))
	}
	return strings.Join(parts, " ")
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprint(v)
	}
	return strings.Join(parts, ",")
}

func joinFloats(values []float64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprintf("%.4f", v)
	}
	return strings.Join(parts, ", ")
}

func optional(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.4f", *v)
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
