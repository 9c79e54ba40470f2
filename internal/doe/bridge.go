package doe

import (
	"context"
	"fmt"
	"log/slog"

	"taguchi/domain/core"
	domainDoe "taguchi/domain/doe"
	"taguchi/domain/oa"
	"taguchi/ports"
)

// Defaults fills analysis options a request leaves unset
type Defaults struct {
	PoolingThreshold   float64
	EnablePooling      bool
	MinUnpooledFactors int
	ConfidenceLevel    float64
}

// DefaultSettings returns the stock analysis options
func DefaultSettings() Defaults {
	return Defaults{
		PoolingThreshold:   2.0,
		EnablePooling:      true,
		MinUnpooledFactors: 1,
		ConfidenceLevel:    0.95,
	}
}

// Bridge validates DOE requests, runs them through the effects engine and
// re-keys the engine's index-based results by the caller's factor IDs.
type Bridge struct {
	engine   ports.EffectsEnginePort
	defaults Defaults
	clock    core.Clock
	logger   *slog.Logger
}

// Option configures a Bridge
type Option func(*Bridge)

// WithDefaults overrides the stock analysis options
func WithDefaults(d Defaults) Option {
	return func(b *Bridge) { b.defaults = d }
}

// WithClock overrides the clock used for AnalyzedAt
func WithClock(clock core.Clock) Option {
	return func(b *Bridge) { b.clock = clock }
}

// WithLogger sets the bridge's logger
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bridge) { b.logger = logger }
}

// NewBridge creates a bridge over an effects engine. A nil engine makes
// RunAnalysis fail with core.ErrEngineUnavailable after input validation.
func NewBridge(engine ports.EffectsEnginePort, opts ...Option) *Bridge {
	b := &Bridge{
		engine:   engine,
		defaults: DefaultSettings(),
		clock:    core.SystemClock,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// RunAnalysis checks the request, runs the engine and returns the analysis
// keyed by factor ID. Nothing is returned on any failure.
func (b *Bridge) RunAnalysis(ctx context.Context, req domainDoe.AnalysisRequest) (*domainDoe.Analysis, error) {
	a, err := checkRequest(req)
	if err != nil {
		return nil, err
	}

	cfg, err := b.config(req)
	if err != nil {
		return nil, err
	}

	if b.engine == nil {
		return nil, core.ErrEngineUnavailable
	}

	result, err := b.engine.Analyze(ctx, a, req.ResponseData, cfg)
	if err != nil {
		b.logger.Warn("effects engine failed", "runs", a.Runs(), "factors", a.Factors(), "err", err)
		return nil, core.NewExternalEngineError("analyze", err)
	}

	analysis, err := rekey(result, req.FactorIDs, req.FactorNames)
	if err != nil {
		return nil, err
	}
	analysis.AnalyzedAt = b.clock()

	b.logger.Debug("doe analysis complete",
		"runs", a.Runs(), "factors", a.Factors(), "objective", cfg.Objective.String())
	return analysis, nil
}

// checkRequest applies the request preconditions in order and ingests the array
func checkRequest(req domainDoe.AnalysisRequest) (*oa.Array, error) {
	if len(req.ArrayData) == 0 {
		return nil, core.ErrEmptyInput
	}
	if len(req.ResponseData) == 0 {
		return nil, core.ErrEmptyResponse
	}
	if len(req.ArrayData) != len(req.ResponseData) {
		return nil, fmt.Errorf("%w: %d array runs, %d response runs",
			core.ErrRowCountMismatch, len(req.ArrayData), len(req.ResponseData))
	}

	factors := len(req.ArrayData[0])
	if len(req.FactorIDs) != factors {
		return nil, fmt.Errorf("%w: got %d factor IDs for %d columns",
			core.ErrFactorCountMismatch, len(req.FactorIDs), factors)
	}
	if len(req.FactorNames) != factors {
		return nil, fmt.Errorf("%w: got %d factor names for %d columns",
			core.ErrFactorCountMismatch, len(req.FactorNames), factors)
	}

	a, err := oa.FromMatrix(req.ArrayData)
	if err != nil {
		return nil, err
	}

	// The engine indexes level means by code, so codes must be dense.
	for col, distinct := range a.DistinctLevels() {
		if distinct != a.LevelsFor(col) {
			return nil, fmt.Errorf("%w: factor %d uses %d distinct levels but codes reach %d",
				core.ErrInputShape, col, distinct, a.LevelsFor(col)-1)
		}
	}

	return a, nil
}

func (b *Bridge) config(req domainDoe.AnalysisRequest) (ports.AnalysisConfig, error) {
	objective, err := objectiveFor(req.OptimizationType)
	if err != nil {
		return ports.AnalysisConfig{}, err
	}
	if objective == ports.ObjectiveNominalIsBest && req.TargetValue == nil {
		return ports.AnalysisConfig{}, core.NewParameterError("targetValue", "required for nominal-is-best")
	}

	cfg := ports.AnalysisConfig{
		Objective:          objective,
		TargetValue:        req.TargetValue,
		PoolingThreshold:   b.defaults.PoolingThreshold,
		EnablePooling:      b.defaults.EnablePooling,
		MinUnpooledFactors: b.defaults.MinUnpooledFactors,
		ConfidenceLevel:    b.defaults.ConfidenceLevel,
	}
	if req.PoolingThreshold != nil {
		cfg.PoolingThreshold = *req.PoolingThreshold
	}
	if req.EnablePooling != nil {
		cfg.EnablePooling = *req.EnablePooling
	}
	if req.MinUnpooledFactors != nil {
		cfg.MinUnpooledFactors = *req.MinUnpooledFactors
	}
	if req.ConfidenceLevel != nil {
		cfg.ConfidenceLevel = *req.ConfidenceLevel
	}
	return cfg, nil
}

func objectiveFor(t domainDoe.OptimizationType) (ports.Objective, error) {
	switch t {
	case domainDoe.LargerIsBetter:
		return ports.ObjectiveLargerIsBetter, nil
	case domainDoe.SmallerIsBetter:
		return ports.ObjectiveSmallerIsBetter, nil
	case domainDoe.NominalIsBest:
		return ports.ObjectiveNominalIsBest, nil
	}
	return 0, core.NewParameterError("optimizationType", fmt.Sprintf("unknown value %q", t))
}
