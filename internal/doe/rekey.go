package doe

import (
	"fmt"

	"taguchi/domain/core"
	domainDoe "taguchi/domain/doe"
	"taguchi/ports"
)

// factorKeys maps engine column indices to caller IDs and names
type factorKeys struct {
	ids   []string
	names []string
}

func (k factorKeys) lookup(index int) (string, string, error) {
	if index < 0 || index >= len(k.ids) {
		return "", "", core.NewExternalEngineError("analyze",
			fmt.Errorf("factor index %d outside %d factors", index, len(k.ids)))
	}
	return k.ids[index], k.names[index], nil
}

// rekey converts an index-keyed engine result into an Analysis. Numeric
// fields pass through unchanged.
func rekey(r *ports.EffectsResult, ids, names []string) (*domainDoe.Analysis, error) {
	keys := factorKeys{ids: ids, names: names}

	mainEffects := make([]domainDoe.MainEffect, 0, len(r.MainEffects))
	for _, e := range r.MainEffects {
		id, name, err := keys.lookup(e.FactorIndex)
		if err != nil {
			return nil, err
		}
		mainEffects = append(mainEffects, domainDoe.MainEffect{
			FactorID:     id,
			FactorName:   name,
			LevelMeans:   e.LevelMeans,
			LevelEffects: e.LevelEffects,
			Range:        e.Range,
			Rank:         e.Rank,
		})
	}

	snEffects := make([]domainDoe.SNRatioEffect, 0, len(r.SNRatioEffects))
	for _, e := range r.SNRatioEffects {
		id, name, err := keys.lookup(e.FactorIndex)
		if err != nil {
			return nil, err
		}
		snEffects = append(snEffects, domainDoe.SNRatioEffect{
			FactorID:      id,
			FactorName:    name,
			LevelSNRatios: e.LevelSNRatios,
			OptimalLevel:  e.OptimalLevel,
		})
	}

	entries := make([]domainDoe.ANOVAEntry, 0, len(r.ANOVA.Entries))
	for _, e := range r.ANOVA.Entries {
		id, name, err := keys.lookup(e.FactorIndex)
		if err != nil {
			return nil, err
		}
		entries = append(entries, domainDoe.ANOVAEntry{
			FactorID:            id,
			FactorName:          name,
			SumOfSquares:        e.SumOfSquares,
			DegreesOfFreedom:    e.DegreesOfFreedom,
			MeanSquare:          e.MeanSquare,
			FRatio:              e.FRatio,
			PValue:              e.PValue,
			ContributionPercent: e.ContributionPercent,
			Pooled:              e.Pooled,
		})
	}

	levels := make(map[string]int, len(r.OptimalSettings.FactorLevels))
	for idx, level := range r.OptimalSettings.FactorLevels {
		id, _, err := keys.lookup(idx)
		if err != nil {
			return nil, err
		}
		levels[id] = level
	}

	var interval *domainDoe.ConfidenceInterval
	if ci := r.OptimalSettings.ConfidenceInterval; ci != nil {
		interval = &domainDoe.ConfidenceInterval{Lower: ci.Lower, Upper: ci.Upper, Level: ci.Level}
	}

	return &domainDoe.Analysis{
		GrandMean:      r.GrandMean,
		SNGrandMean:    r.SNGrandMean,
		MainEffects:    mainEffects,
		SNRatioEffects: snEffects,
		ANOVA: domainDoe.ANOVAResult{
			Entries: entries,
			ErrorSS: r.ANOVA.ErrorSS,
			ErrorDF: r.ANOVA.ErrorDF,
			ErrorMS: r.ANOVA.ErrorMS,
			TotalSS: r.ANOVA.TotalSS,
			TotalDF: r.ANOVA.TotalDF,
		},
		OptimalSettings: domainDoe.OptimalSettings{
			FactorLevels:       levels,
			PredictedMean:      r.OptimalSettings.PredictedMean,
			PredictedSNRatio:   r.OptimalSettings.PredictedSNRatio,
			ConfidenceInterval: interval,
		},
	}, nil
}
