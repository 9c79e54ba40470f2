package doe

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"taguchi/domain/core"
	domainDoe "taguchi/domain/doe"
	"taguchi/domain/oa"
	"taguchi/ports"
)

// MockEngine implements ports.EffectsEnginePort for testing
type MockEngine struct {
	mock.Mock
}

func (m *MockEngine) Analyze(ctx context.Context, a *oa.Array, responses [][]float64, cfg ports.AnalysisConfig) (*ports.EffectsResult, error) {
	args := m.Called(ctx, a, responses, cfg)
	r, _ := args.Get(0).(*ports.EffectsResult)
	return r, args.Error(1)
}

var l4 = [][]int{{0, 0, 0}, {0, 1, 1}, {1, 0, 1}, {1, 1, 0}}

func validRequest() domainDoe.AnalysisRequest {
	return domainDoe.AnalysisRequest{
		ArrayData:        l4,
		ResponseData:     [][]float64{{10, 11}, {12, 12}, {9, 8}, {14, 15}},
		FactorIDs:        []string{"f-temp", "f-time", "f-press"},
		FactorNames:      []string{"Temperature", "Time", "Pressure"},
		OptimizationType: domainDoe.LargerIsBetter,
	}
}

func ptr[T any](v T) *T { return &v }

func engineResult() *ports.EffectsResult {
	return &ports.EffectsResult{
		GrandMean:   11.375,
		SNGrandMean: 20.9,
		MainEffects: []ports.IndexedMainEffect{
			{FactorIndex: 2, LevelMeans: []float64{12.5, 10.25}, LevelEffects: []float64{1.125, -1.125}, Range: 2.25, Rank: 1},
			{FactorIndex: 0, LevelMeans: []float64{11.25, 11.5}, LevelEffects: []float64{-0.125, 0.125}, Range: 0.25, Rank: 2},
		},
		SNRatioEffects: []ports.IndexedSNRatioEffect{
			{FactorIndex: 1, LevelSNRatios: []float64{19.8, 22.1}, OptimalLevel: 1},
		},
		ANOVA: ports.IndexedANOVA{
			Entries: []ports.IndexedANOVAEntry{
				{FactorIndex: 2, SumOfSquares: 10.1, DegreesOfFreedom: 1, MeanSquare: 10.1, FRatio: ptr(7.5), PValue: ptr(0.03), ContributionPercent: 61.2},
				{FactorIndex: 0, SumOfSquares: 0.1, DegreesOfFreedom: 1, MeanSquare: 0.1, ContributionPercent: 0.6, Pooled: true},
			},
			ErrorSS: 2.4, ErrorDF: 4, ErrorMS: 0.6, TotalSS: 16.5, TotalDF: 7,
		},
		OptimalSettings: ports.IndexedOptimalSettings{
			FactorLevels:       []int{1, 1, 0},
			PredictedMean:      14.2,
			PredictedSNRatio:   23.0,
			ConfidenceInterval: &ports.Interval{Lower: 12.9, Upper: 15.5, Level: 0.95},
		},
	}
}

func TestRunAnalysis_RekeysEngineResult(t *testing.T) {
	engine := new(MockEngine)
	engine.On("Analyze", mock.Anything, mock.AnythingOfType("*oa.Array"), validRequest().ResponseData, ports.AnalysisConfig{
		Objective:          ports.ObjectiveLargerIsBetter,
		PoolingThreshold:   2.0,
		EnablePooling:      true,
		MinUnpooledFactors: 1,
		ConfidenceLevel:    0.95,
	}).Return(engineResult(), nil)

	stamp := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	bridge := NewBridge(engine, WithClock(func() time.Time { return stamp }))

	analysis, err := bridge.RunAnalysis(context.Background(), validRequest())
	require.NoError(t, err)

	assert.Empty(t, analysis.ConfigID)
	assert.Equal(t, stamp, analysis.AnalyzedAt)
	assert.Equal(t, 11.375, analysis.GrandMean)
	assert.Equal(t, 20.9, analysis.SNGrandMean)

	require.Len(t, analysis.MainEffects, 2)
	assert.Equal(t, "f-press", analysis.MainEffects[0].FactorID)
	assert.Equal(t, "Pressure", analysis.MainEffects[0].FactorName)
	assert.Equal(t, []float64{12.5, 10.25}, analysis.MainEffects[0].LevelMeans)
	assert.Equal(t, 1, analysis.MainEffects[0].Rank)
	assert.Equal(t, "f-temp", analysis.MainEffects[1].FactorID)

	require.Len(t, analysis.SNRatioEffects, 1)
	assert.Equal(t, "Time", analysis.SNRatioEffects[0].FactorName)
	assert.Equal(t, 1, analysis.SNRatioEffects[0].OptimalLevel)

	require.Len(t, analysis.ANOVA.Entries, 2)
	assert.Equal(t, "f-press", analysis.ANOVA.Entries[0].FactorID)
	assert.Equal(t, 7.5, *analysis.ANOVA.Entries[0].FRatio)
	assert.Nil(t, analysis.ANOVA.Entries[1].FRatio)
	assert.True(t, analysis.ANOVA.Entries[1].Pooled)
	assert.Equal(t, 4, analysis.ANOVA.ErrorDF)
	assert.Equal(t, 16.5, analysis.ANOVA.TotalSS)

	assert.Equal(t, map[string]int{"f-temp": 1, "f-time": 1, "f-press": 0}, analysis.OptimalSettings.FactorLevels)
	assert.Equal(t, 14.2, analysis.OptimalSettings.PredictedMean)
	require.NotNil(t, analysis.OptimalSettings.ConfidenceInterval)
	assert.Equal(t, 0.95, analysis.OptimalSettings.ConfidenceInterval.Level)

	engine.AssertExpectations(t)
}

func TestRunAnalysis_RequestOptionsOverrideDefaults(t *testing.T) {
	req := validRequest()
	req.OptimizationType = domainDoe.NominalIsBest
	req.TargetValue = ptr(12.0)
	req.PoolingThreshold = ptr(1.5)
	req.EnablePooling = ptr(false)
	req.MinUnpooledFactors = ptr(2)
	req.ConfidenceLevel = ptr(0.9)

	engine := new(MockEngine)
	engine.On("Analyze", mock.Anything, mock.Anything, mock.Anything, ports.AnalysisConfig{
		Objective:          ports.ObjectiveNominalIsBest,
		TargetValue:        ptr(12.0),
		PoolingThreshold:   1.5,
		EnablePooling:      false,
		MinUnpooledFactors: 2,
		ConfidenceLevel:    0.9,
	}).Return(engineResult(), nil)

	_, err := NewBridge(engine).RunAnalysis(context.Background(), req)
	require.NoError(t, err)
	engine.AssertExpectations(t)
}

func TestRunAnalysis_ConfiguredDefaults(t *testing.T) {
	engine := new(MockEngine)
	engine.On("Analyze", mock.Anything, mock.Anything, mock.Anything, ports.AnalysisConfig{
		Objective:          ports.ObjectiveSmallerIsBetter,
		PoolingThreshold:   3.0,
		EnablePooling:      false,
		MinUnpooledFactors: 2,
		ConfidenceLevel:    0.99,
	}).Return(engineResult(), nil)

	req := validRequest()
	req.OptimizationType = domainDoe.SmallerIsBetter

	bridge := NewBridge(engine, WithDefaults(Defaults{
		PoolingThreshold: 3.0, EnablePooling: false, MinUnpooledFactors: 2, ConfidenceLevel: 0.99,
	}))
	_, err := bridge.RunAnalysis(context.Background(), req)
	require.NoError(t, err)
	engine.AssertExpectations(t)
}

func TestRunAnalysis_Preconditions(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domainDoe.AnalysisRequest)
		want   error
	}{
		{"empty array", func(r *domainDoe.AnalysisRequest) { r.ArrayData = nil; r.ResponseData = nil }, core.ErrEmptyInput},
		{"empty response", func(r *domainDoe.AnalysisRequest) { r.ResponseData = nil }, core.ErrEmptyResponse},
		{"row count mismatch", func(r *domainDoe.AnalysisRequest) { r.ResponseData = r.ResponseData[:3] }, core.ErrRowCountMismatch},
		{"factor ids", func(r *domainDoe.AnalysisRequest) { r.FactorIDs = r.FactorIDs[:2] }, core.ErrFactorCountMismatch},
		{"factor names", func(r *domainDoe.AnalysisRequest) { r.FactorNames = append(r.FactorNames, "Extra") }, core.ErrFactorCountMismatch},
		{"ragged rows", func(r *domainDoe.AnalysisRequest) {
			r.ArrayData = [][]int{{0, 0, 0}, {0, 1}, {1, 0, 1}, {1, 1, 0}}
		}, core.ErrRaggedRows},
		{"sparse level codes", func(r *domainDoe.AnalysisRequest) {
			r.ArrayData = [][]int{{0, 0, 0}, {0, 1, 1}, {2, 0, 1}, {2, 1, 0}}
		}, core.ErrInputShape},
		{"nominal without target", func(r *domainDoe.AnalysisRequest) { r.OptimizationType = domainDoe.NominalIsBest }, core.ErrParameter},
		{"unknown objective", func(r *domainDoe.AnalysisRequest) { r.OptimizationType = "bigger" }, core.ErrParameter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := new(MockEngine)
			req := validRequest()
			tt.mutate(&req)

			analysis, err := NewBridge(engine).RunAnalysis(context.Background(), req)
			assert.ErrorIs(t, err, tt.want)
			assert.Nil(t, analysis)
			engine.AssertNotCalled(t, "Analyze", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestRunAnalysis_PreconditionOrder(t *testing.T) {
	req := validRequest()
	req.ResponseData = req.ResponseData[:2]
	req.FactorIDs = nil

	_, err := NewBridge(new(MockEngine)).RunAnalysis(context.Background(), req)
	assert.ErrorIs(t, err, core.ErrRowCountMismatch)
	assert.NotErrorIs(t, err, core.ErrFactorCountMismatch)
	assert.Contains(t, err.Error(), "4 array runs, 2 response runs")
}

func TestRunAnalysis_EngineFailure(t *testing.T) {
	engine := new(MockEngine)
	cause := errors.New("singular design matrix")
	engine.On("Analyze", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil, cause)

	analysis, err := NewBridge(engine).RunAnalysis(context.Background(), validRequest())
	assert.Nil(t, analysis)
	assert.ErrorIs(t, err, core.ErrExternalEngine)
	assert.ErrorIs(t, err, cause)
}

func TestRunAnalysis_EngineIndexOutOfRange(t *testing.T) {
	result := engineResult()
	result.MainEffects[0].FactorIndex = 3

	engine := new(MockEngine)
	engine.On("Analyze", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(result, nil)

	analysis, err := NewBridge(engine).RunAnalysis(context.Background(), validRequest())
	assert.Nil(t, analysis)
	assert.ErrorIs(t, err, core.ErrExternalEngine)
}

func TestRunAnalysis_NoEngine(t *testing.T) {
	_, err := NewBridge(nil).RunAnalysis(context.Background(), validRequest())
	assert.ErrorIs(t, err, core.ErrEngineUnavailable)
}

func TestRunAnalysis_NoConfidenceInterval(t *testing.T) {
	result := engineResult()
	result.OptimalSettings.ConfidenceInterval = nil

	engine := new(MockEngine)
	engine.On("Analyze", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(result, nil)

	analysis, err := NewBridge(engine).RunAnalysis(context.Background(), validRequest())
	require.NoError(t, err)
	assert.Nil(t, analysis.OptimalSettings.ConfidenceInterval)
}
