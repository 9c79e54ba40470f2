package doe

import (
	"encoding/json"
	"fmt"
	"time"
)

// OptimizationType is the goal for the response variable.
type OptimizationType string

const (
	LargerIsBetter  OptimizationType = "larger-is-better"
	SmallerIsBetter OptimizationType = "smaller-is-better"
	NominalIsBest   OptimizationType = "nominal-is-best"
)

// Valid reports whether t is one of the known goals.
func (t OptimizationType) Valid() bool {
	switch t {
	case LargerIsBetter, SmallerIsBetter, NominalIsBest:
		return true
	}
	return false
}

func (t *OptimizationType) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if !OptimizationType(s).Valid() {
		return fmt.Errorf("unknown optimization type %q", s)
	}
	*t = OptimizationType(s)
	return nil
}

// AnalysisRequest carries an array, its responses and the analysis options.
// Nil options fall back to the configured defaults.
type AnalysisRequest struct {
	ArrayData          [][]int          `json:"arrayData"`
	ResponseData       [][]float64      `json:"responseData"` // runs x replicates
	FactorIDs          []string         `json:"factorIds"`
	FactorNames        []string         `json:"factorNames"`
	OptimizationType   OptimizationType `json:"optimizationType"`
	TargetValue        *float64         `json:"targetValue,omitempty"`
	PoolingThreshold   *float64         `json:"poolingThreshold,omitempty"`
	EnablePooling      *bool            `json:"enablePooling,omitempty"`
	MinUnpooledFactors *int             `json:"minUnpooledFactors,omitempty"`
	ConfidenceLevel    *float64         `json:"confidenceLevel,omitempty"`
}

// MainEffect is the response mean per level of one factor.
type MainEffect struct {
	FactorID     string    `json:"factorId"`
	FactorName   string    `json:"factorName"`
	LevelMeans   []float64 `json:"levelMeans"`
	LevelEffects []float64 `json:"levelEffects"` // level mean - grand mean
	Range        float64   `json:"range"`
	Rank         int       `json:"rank"` // 1 = most important
}

// SNRatioEffect is the signal-to-noise ratio per level of one factor, in dB.
type SNRatioEffect struct {
	FactorID      string    `json:"factorId"`
	FactorName    string    `json:"factorName"`
	LevelSNRatios []float64 `json:"levelSnRatios"`
	OptimalLevel  int       `json:"optimalLevel"`
}

// ANOVAEntry is one factor row of the ANOVA table.
type ANOVAEntry struct {
	FactorID            string   `json:"factorId"`
	FactorName          string   `json:"factorName"`
	SumOfSquares        float64  `json:"sumOfSquares"`
	DegreesOfFreedom    int      `json:"degreesOfFreedom"`
	MeanSquare          float64  `json:"meanSquare"`
	FRatio              *float64 `json:"fRatio"`
	PValue              *float64 `json:"pValue"`
	ContributionPercent float64  `json:"contributionPercent"`
	Pooled              bool     `json:"pooled"`
}

// ANOVAResult is the full ANOVA table.
type ANOVAResult struct {
	Entries []ANOVAEntry `json:"entries"`
	ErrorSS float64      `json:"errorSs"`
	ErrorDF int          `json:"errorDf"`
	ErrorMS float64      `json:"errorMs"`
	TotalSS float64      `json:"totalSs"`
	TotalDF int          `json:"totalDf"`
}

// ConfidenceInterval bounds a prediction.
type ConfidenceInterval struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Level float64 `json:"level"`
}

// OptimalSettings is the predicted best level per factor, keyed by factor ID.
type OptimalSettings struct {
	FactorLevels       map[string]int      `json:"factorLevels"`
	PredictedMean      float64             `json:"predictedMean"`
	PredictedSNRatio   float64             `json:"predictedSnRatio"`
	ConfidenceInterval *ConfidenceInterval `json:"confidenceInterval"`
}

// Analysis is a complete factor-effect analysis keyed by caller factor IDs.
type Analysis struct {
	ConfigID        string          `json:"configId"`
	GrandMean       float64         `json:"grandMean"`
	SNGrandMean     float64         `json:"snGrandMean"`
	MainEffects     []MainEffect    `json:"mainEffects"`
	SNRatioEffects  []SNRatioEffect `json:"snRatioEffects"`
	ANOVA           ANOVAResult     `json:"anova"`
	OptimalSettings OptimalSettings `json:"optimalSettings"`
	AnalyzedAt      time.Time       `json:"analyzedAt"`
}
