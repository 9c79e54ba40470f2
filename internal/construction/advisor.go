package construction

import (
	"context"
	"fmt"
	"log/slog"

	"taguchi/domain/core"
	"taguchi/domain/oa"
	"taguchi/ports"
)

// Advisor suggests construction methods, checks build parameters and labels
// arrays with their likely construction.
type Advisor struct {
	catalogue ports.ConstructionCataloguePort
	builder   ports.ArrayBuilderPort
	clock     core.Clock
	logger    *slog.Logger
}

// Option configures an Advisor
type Option func(*Advisor)

// WithBuilder attaches the array construction service used by Build
func WithBuilder(builder ports.ArrayBuilderPort) Option {
	return func(a *Advisor) { a.builder = builder }
}

// WithClock overrides the clock used to stamp built arrays
func WithClock(clock core.Clock) Option {
	return func(a *Advisor) { a.clock = clock }
}

// WithLogger sets the advisor's logger
func WithLogger(logger *slog.Logger) Option {
	return func(a *Advisor) { a.logger = logger }
}

// NewAdvisor creates an advisor backed by a construction catalogue
func NewAdvisor(catalogue ports.ConstructionCataloguePort, opts ...Option) *Advisor {
	a := &Advisor{
		catalogue: catalogue,
		clock:     core.SystemClock,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// SuggestConstructions lists catalogue methods for a level count and strength
// with their descriptions and constraints attached. It never fails.
func (a *Advisor) SuggestConstructions(levels, strength int) []oa.ConstructionOption {
	return a.options(levels, a.catalogue.AvailableConstructions(levels, strength))
}

func (a *Advisor) options(levels int, found []ports.Construction) []oa.ConstructionOption {
	out := make([]oa.ConstructionOption, 0, len(found))
	for _, c := range found {
		out = append(out, oa.ConstructionOption{
			Name:        c.Name,
			Runs:        c.Runs,
			MaxFactors:  c.MaxFactors,
			Description: Describe(c.Name),
			Constraints: Constraints(c.Name, levels),
		})
	}
	return out
}

// ValidateBuildParameters checks a build request without building anything.
// Problems are accumulated; only an empty mixed-level list stops the checks
// early. Mixed levels are looked up by their maximum, an approximation since
// catalogue entries are keyed on symmetric levels.
func (a *Advisor) ValidateBuildParameters(req oa.BuildRequest) oa.ValidationResult {
	errs := []string{}
	warnings := []string{}

	levels := req.Levels.Symmetric
	if req.Levels.IsMixed() {
		if len(req.Levels.Mixed) == 0 {
			return oa.ValidationResult{
				Valid:       false,
				Errors:      []string{"At least one level must be specified"},
				Warnings:    warnings,
				Suggestions: []oa.ConstructionOption{},
			}
		}
		levels = maxOf(req.Levels.Mixed)
		if len(req.Levels.Mixed) != req.Factors {
			warnings = append(warnings, fmt.Sprintf(
				"Mixed levels list has %d entries but %d factors requested", len(req.Levels.Mixed), req.Factors))
		}
	}

	if levels < 2 {
		errs = append(errs, "Levels must be at least 2")
	}
	if req.Factors < 1 {
		errs = append(errs, "Factors must be at least 1")
	}
	if req.Strength > req.Factors {
		errs = append(errs, fmt.Sprintf("Strength %d cannot exceed factors %d", req.Strength, req.Factors))
	}

	// levels below 2 get the error above only, never the prime power warning too
	if levels >= 2 && !a.catalogue.IsPrimePower(levels) {
		warnings = append(warnings, fmt.Sprintf(
			"Levels %d is not a prime power - limited constructions available", levels))
	}

	suggestions := []oa.ConstructionOption{}
	if len(errs) == 0 {
		var fitting []ports.Construction
		for _, c := range a.catalogue.AvailableConstructions(levels, req.Strength) {
			if c.MaxFactors >= req.Factors {
				fitting = append(fitting, c)
			}
		}
		suggestions = a.options(levels, fitting)

		if len(suggestions) == 0 {
			errs = append(errs, fmt.Sprintf(
				"No construction available for %d levels, %d factors, strength %d",
				levels, req.Factors, req.Strength))
		}
	}

	return oa.ValidationResult{
		Valid:       len(errs) == 0,
		Errors:      errs,
		Warnings:    warnings,
		Suggestions: suggestions,
	}
}

// Build asks the construction service for an array and wraps it with an ID,
// the classified algorithm and a creation timestamp.
func (a *Advisor) Build(ctx context.Context, req oa.BuildRequest) (*oa.OAData, error) {
	if a.builder == nil {
		return nil, core.ErrEngineUnavailable
	}

	spec := ports.BuildSpec{
		Levels:   req.Levels,
		Factors:  req.Factors,
		Strength: req.Strength,
	}
	if req.MinRuns != nil {
		spec.MinRuns = *req.MinRuns
	}

	arr, err := a.builder.Build(ctx, spec)
	if err != nil {
		a.logger.Warn("array construction refused",
			"levels", req.Levels.String(), "factors", req.Factors, "strength", req.Strength, "err", err)
		return nil, fmt.Errorf("%w: %v", core.ErrInfeasibleConstruction, err)
	}

	algorithm := a.ClassifyConstruction(arr)
	a.logger.Debug("array constructed",
		"runs", arr.Runs(), "factors", arr.Factors(), "algorithm", algorithm)

	data := oa.NewOAData(core.NewID().String(), arr, oa.OAMetadata{
		Algorithm: algorithm,
		CreatedAt: a.clock(),
	})
	return &data, nil
}

func maxOf(values []int) int {
	m := values[0]
	for _, v := range values[1:] {
		m = max(m, v)
	}
	return m
}
