package analysis

import (
	"github.com/montanaflynn/stats"

	"taguchi/domain/oa"
	domainStats "taguchi/domain/stats"
)

// ColumnSummaries describes the level distribution of each factor. Level codes
// are treated as numbers, so a balanced factor with L levels has mean (L-1)/2.
func ColumnSummaries(a *oa.Array) []domainStats.ColumnSummary {
	out := make([]domainStats.ColumnSummary, a.Factors())
	for col := range out {
		data := stats.Float64Data(a.Column(col))

		mean, _ := data.Mean()
		sd, _ := data.StandardDeviationPopulation()
		lo, _ := data.Min()
		hi, _ := data.Max()

		out[col] = domainStats.ColumnSummary{
			Factor: col,
			Levels: a.LevelsFor(col),
			Mean:   mean,
			StdDev: sd,
			Min:    int(lo),
			Max:    int(hi),
		}
	}
	return out
}
