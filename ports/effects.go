package ports

import (
	"context"

	"taguchi/domain/oa"
)

// EffectsEnginePort computes main effects, S/N ratios, ANOVA and optimal settings.
// Results are keyed by zero-based factor (column) index.
type EffectsEnginePort interface {
	Analyze(ctx context.Context, a *oa.Array, responses [][]float64, cfg AnalysisConfig) (*EffectsResult, error)
}

// Objective is the engine's optimization goal
type Objective int

const (
	ObjectiveLargerIsBetter Objective = iota
	ObjectiveSmallerIsBetter
	ObjectiveNominalIsBest
)

func (o Objective) String() string {
	switch o {
	case ObjectiveLargerIsBetter:
		return "LargerIsBetter"
	case ObjectiveSmallerIsBetter:
		return "SmallerIsBetter"
	case ObjectiveNominalIsBest:
		return "NominalIsBest"
	}
	return "Unknown"
}

// AnalysisConfig tunes one engine run
type AnalysisConfig struct {
	Objective          Objective
	TargetValue        *float64
	PoolingThreshold   float64 // F-ratio below which a factor is pooled into error
	EnablePooling      bool
	MinUnpooledFactors int
	ConfidenceLevel    float64
}

// EffectsResult is the engine's raw output
type EffectsResult struct {
	GrandMean       float64
	SNGrandMean     float64
	MainEffects     []IndexedMainEffect
	SNRatioEffects  []IndexedSNRatioEffect
	ANOVA           IndexedANOVA
	OptimalSettings IndexedOptimalSettings
}

type IndexedMainEffect struct {
	FactorIndex  int
	LevelMeans   []float64
	LevelEffects []float64
	Range        float64
	Rank         int
}

type IndexedSNRatioEffect struct {
	FactorIndex   int
	LevelSNRatios []float64
	OptimalLevel  int
}

type IndexedANOVAEntry struct {
	FactorIndex         int
	SumOfSquares        float64
	DegreesOfFreedom    int
	MeanSquare          float64
	FRatio              *float64
	PValue              *float64
	ContributionPercent float64
	Pooled              bool
}

type IndexedANOVA struct {
	Entries []IndexedANOVAEntry
	ErrorSS float64
	ErrorDF int
	ErrorMS float64
	TotalSS float64
	TotalDF int
}

// IndexedOptimalSettings lists the optimal level for factor i at FactorLevels[i]
type IndexedOptimalSettings struct {
	FactorLevels       []int
	PredictedMean      float64
	PredictedSNRatio   float64
	ConfidenceInterval *Interval
}

type Interval struct {
	Lower float64
	Upper float64
	Level float64
}
