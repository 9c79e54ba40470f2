package app

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"taguchi/domain/core"
	domainDoe "taguchi/domain/doe"
	"taguchi/domain/oa"
	"taguchi/domain/stats"
	"taguchi/internal/analysis"
	"taguchi/internal/catalogue"
	"taguchi/internal/construction"
	"taguchi/internal/doe"
	"taguchi/internal/ingestion"
	"taguchi/internal/metrics"
	"taguchi/internal/report"
	"taguchi/internal/verification"
	"taguchi/ports"
)

// Dependencies are the collaborators a DesignService is built from. Only
// Catalogue is required; missing engines make their operations fail with
// core.ErrEngineUnavailable.
type Dependencies struct {
	Catalogue  ports.ConstructionCataloguePort
	Standards  ports.StandardArraySourcePort
	Builder    ports.ArrayBuilderPort
	Verifier   ports.StrengthVerifierPort
	Engine     ports.EffectsEnginePort
	Repository ports.ArrayRepository

	Metrics          *metrics.Recorder
	Logger           *slog.Logger
	Clock            core.Clock
	DOEDefaults      *doe.Defaults
	MaxStrengthCheck int
}

// DesignService is the single entry point for the CLI and HTTP surfaces
type DesignService struct {
	orchestrator *verification.Orchestrator
	advisor      *construction.Advisor
	bridge       *doe.Bridge
	catalogue    *catalogue.Service
	repository   ports.ArrayRepository
	clock        core.Clock

	metrics          *metrics.Recorder
	logger           *slog.Logger
	maxStrengthCheck int
}

// InspectOptions controls the optional parts of an inspection
type InspectOptions struct {
	Name string
	// ClaimedStrength > 0 adds a strength verification when a verifier is configured
	ClaimedStrength int
}

// NewDesignService wires the engine components around deps
func NewDesignService(deps Dependencies) *DesignService {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	clock := deps.Clock
	if clock == nil {
		clock = core.SystemClock
	}
	maxCheck := deps.MaxStrengthCheck
	if maxCheck <= 0 {
		maxCheck = 4
	}

	advisorOpts := []construction.Option{construction.WithClock(clock), construction.WithLogger(logger)}
	if deps.Builder != nil {
		advisorOpts = append(advisorOpts, construction.WithBuilder(deps.Builder))
	}

	bridgeOpts := []doe.Option{doe.WithClock(clock), doe.WithLogger(logger)}
	if deps.DOEDefaults != nil {
		bridgeOpts = append(bridgeOpts, doe.WithDefaults(*deps.DOEDefaults))
	}

	return &DesignService{
		orchestrator:     verification.NewOrchestrator(deps.Verifier),
		advisor:          construction.NewAdvisor(deps.Catalogue, advisorOpts...),
		bridge:           doe.NewBridge(deps.Engine, bridgeOpts...),
		catalogue:        catalogue.NewService(deps.Standards, clock),
		repository:       deps.Repository,
		clock:            clock,
		metrics:          deps.Metrics,
		logger:           logger,
		maxStrengthCheck: maxCheck,
	}
}

// ValidateImport checks a raw matrix and summarizes it
func (s *DesignService) ValidateImport(matrix [][]int) (result *oa.ImportValidation, err error) {
	defer s.observe("validate_import", time.Now(), &err)
	return ingestion.ValidateImport(matrix)
}

// Balance tallies level occurrences per factor
func (s *DesignService) Balance(matrix [][]int) (result *stats.BalanceReport, err error) {
	defer s.observe("balance", time.Now(), &err)
	a, err := oa.FromMatrix(matrix)
	if err != nil {
		return nil, err
	}
	r := analysis.BalanceReport(a)
	return &r, nil
}

// Correlation computes the factor correlation matrix
func (s *DesignService) Correlation(matrix [][]int) (result *stats.CorrelationMatrix, err error) {
	defer s.observe("correlation", time.Now(), &err)
	a, err := oa.FromMatrix(matrix)
	if err != nil {
		return nil, err
	}
	m := analysis.CorrelationMatrix(a)
	return &m, nil
}

// Classify names the construction that most likely produced a matrix
func (s *DesignService) Classify(matrix [][]int) (method string, err error) {
	defer s.observe("classify", time.Now(), &err)
	a, err := oa.FromMatrix(matrix)
	if err != nil {
		return "", err
	}
	return s.advisor.ClassifyConstruction(a), nil
}

// Verify checks a matrix against a claimed strength
func (s *DesignService) Verify(ctx context.Context, matrix [][]int, claimed int) (result *stats.VerificationResult, err error) {
	defer s.observe("verify", time.Now(), &err)
	return s.orchestrator.Verify(ctx, matrix, claimed)
}

// ComputeStrength finds the largest strength up to maxCheck; 0 uses the
// configured ceiling
func (s *DesignService) ComputeStrength(ctx context.Context, matrix [][]int, maxCheck int) (strength int, err error) {
	defer s.observe("compute_strength", time.Now(), &err)
	if maxCheck <= 0 {
		maxCheck = s.maxStrengthCheck
	}
	return s.orchestrator.ComputeStrength(ctx, matrix, maxCheck)
}

// SuggestConstructions lists construction methods for a level count and strength
func (s *DesignService) SuggestConstructions(levels, strength int) []oa.ConstructionOption {
	defer s.observe("suggest", time.Now(), nil)
	return s.advisor.SuggestConstructions(levels, strength)
}

// ValidateBuildParameters checks a build request without building
func (s *DesignService) ValidateBuildParameters(req oa.BuildRequest) oa.ValidationResult {
	defer s.observe("validate_build", time.Now(), nil)
	return s.advisor.ValidateBuildParameters(req)
}

// Build constructs an array and stores it when persistence is configured
func (s *DesignService) Build(ctx context.Context, req oa.BuildRequest) (data *oa.OAData, err error) {
	defer s.observe("build", time.Now(), &err)
	data, err = s.advisor.Build(ctx, req)
	if err != nil {
		return nil, err
	}
	if s.repository != nil {
		if err := s.repository.SaveArray(ctx, *data); err != nil {
			return nil, err
		}
	}
	return data, nil
}

// RunAnalysis runs a DOE analysis
func (s *DesignService) RunAnalysis(ctx context.Context, req domainDoe.AnalysisRequest) (result *domainDoe.Analysis, err error) {
	defer s.observe("analyze", time.Now(), &err)
	s.metrics.ObserveArray(len(req.ArrayData))
	return s.bridge.RunAnalysis(ctx, req)
}

// ListStandardArrays returns the standard-array catalogue
func (s *DesignService) ListStandardArrays() []oa.StandardArrayInfo {
	return s.catalogue.List()
}

// SearchStandardArrays filters the standard-array catalogue
func (s *DesignService) SearchStandardArrays(f catalogue.Filter) []oa.StandardArrayInfo {
	return s.catalogue.Search(f)
}

// GetStandardArray loads a standard array by name
func (s *DesignService) GetStandardArray(ctx context.Context, name string) (data *oa.OAData, err error) {
	defer s.observe("catalogue_get", time.Now(), &err)
	return s.catalogue.Get(ctx, name)
}

// Inspect runs every read-only analysis of a matrix concurrently
func (s *DesignService) Inspect(ctx context.Context, matrix [][]int, opts InspectOptions) (result *stats.Inspection, err error) {
	defer s.observe("inspect", time.Now(), &err)

	a, err := oa.FromMatrix(matrix)
	if err != nil {
		return nil, err
	}

	in := &stats.Inspection{Name: opts.Name}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		in.Summary = *ingestion.Summarize(a)
		return nil
	})
	g.Go(func() error {
		in.Balance = analysis.BalanceReport(a)
		return nil
	})
	g.Go(func() error {
		in.Correlation = analysis.CorrelationMatrix(a)
		in.MaxCorrelation = in.Correlation.MaxAbsOffDiagonal()
		return nil
	})
	g.Go(func() error {
		in.Columns = analysis.ColumnSummaries(a)
		return nil
	})
	g.Go(func() error {
		in.Algorithm = s.advisor.ClassifyConstruction(a)
		in.Suggestions = s.advisor.SuggestConstructions(a.MaxLevel(), a.Strength())
		return nil
	})
	if opts.ClaimedStrength > 0 {
		g.Go(func() error {
			v, err := s.orchestrator.VerifyArray(gctx, a, opts.ClaimedStrength)
			if errors.Is(err, core.ErrEngineUnavailable) {
				s.logger.Warn("inspection skipped strength verification", "err", err)
				return nil
			}
			in.Verification = v
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return in, nil
}

// Report renders an inspection as markdown
func (s *DesignService) Report(ctx context.Context, matrix [][]int, opts InspectOptions) (string, error) {
	in, err := s.Inspect(ctx, matrix, opts)
	if err != nil {
		return "", err
	}
	return report.Markdown(*in), nil
}

// ReportHTML renders an inspection as an HTML fragment
func (s *DesignService) ReportHTML(ctx context.Context, matrix [][]int, opts InspectOptions) ([]byte, error) {
	md, err := s.Report(ctx, matrix, opts)
	if err != nil {
		return nil, err
	}
	return report.HTML(md), nil
}

// SaveArray validates and stores an array, assigning an id when it has none
func (s *DesignService) SaveArray(ctx context.Context, data oa.OAData) (string, error) {
	if s.repository == nil {
		return "", core.ErrEngineUnavailable
	}
	arr, err := data.Array()
	if err != nil {
		return "", err
	}
	id := core.NewID()
	if data.ID != "" {
		if id, err = core.ParseID(data.ID); err != nil {
			return "", err
		}
	}
	meta := data.Metadata
	if meta.CreatedAt.IsZero() {
		meta.CreatedAt = s.clock()
	}
	if err := s.repository.SaveArray(ctx, oa.NewOAData(id.String(), arr, meta)); err != nil {
		return "", err
	}
	return id.String(), nil
}

// GetArray loads a stored array
func (s *DesignService) GetArray(ctx context.Context, id string) (*oa.OAData, error) {
	if s.repository == nil {
		return nil, core.ErrEngineUnavailable
	}
	parsed, err := core.ParseID(id)
	if err != nil {
		return nil, err
	}
	return s.repository.GetArray(ctx, parsed.String())
}

// ListArrays lists stored arrays, newest first
func (s *DesignService) ListArrays(ctx context.Context, limit int) ([]oa.OAData, error) {
	if s.repository == nil {
		return nil, core.ErrEngineUnavailable
	}
	return s.repository.ListArrays(ctx, limit)
}

// AnalyzeStored runs a DOE analysis on a stored array and stores the result
func (s *DesignService) AnalyzeStored(ctx context.Context, arrayID string, req domainDoe.AnalysisRequest) (*domainDoe.Analysis, error) {
	if s.repository == nil {
		return nil, core.ErrEngineUnavailable
	}
	parsed, err := core.ParseID(arrayID)
	if err != nil {
		return nil, err
	}
	stored, err := s.repository.GetArray(ctx, parsed.String())
	if err != nil {
		return nil, err
	}

	req.ArrayData = stored.Data
	result, err := s.RunAnalysis(ctx, req)
	if err != nil {
		return nil, err
	}

	id, err := s.repository.SaveAnalysis(ctx, parsed.String(), *result)
	if err != nil {
		return nil, err
	}
	result.ConfigID = id
	return result, nil
}

// ListAnalyses lists the stored analyses of an array
func (s *DesignService) ListAnalyses(ctx context.Context, arrayID string) ([]domainDoe.Analysis, error) {
	if s.repository == nil {
		return nil, core.ErrEngineUnavailable
	}
	parsed, err := core.ParseID(arrayID)
	if err != nil {
		return nil, err
	}
	return s.repository.ListAnalyses(ctx, parsed.String())
}

func (s *DesignService) observe(operation string, start time.Time, err *error) {
	var e error
	if err != nil {
		e = *err
	}
	if e != nil {
		s.logger.Debug("operation failed", "operation", operation, "err", e)
	}
	s.metrics.Observe(operation, start, e)
}
