package app

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"taguchi/adapters/catalogue"
	"taguchi/domain/core"
	domainDoe "taguchi/domain/doe"
	"taguchi/domain/oa"
	"taguchi/internal/logging"
	"taguchi/internal/metrics"
	"taguchi/ports"
)

var (
	l4 = [][]int{{0, 0, 0}, {0, 1, 1}, {1, 0, 1}, {1, 1, 0}}
	l9 = [][]int{
		{0, 0, 0, 0}, {0, 1, 1, 1}, {0, 2, 2, 2},
		{1, 0, 1, 2}, {1, 1, 2, 0}, {1, 2, 0, 1},
		{2, 0, 2, 1}, {2, 1, 0, 2}, {2, 2, 1, 0},
	}
	stamp = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	arrayID = "0192f4a8-7c3e-7b1a-9d2e-4f5a6b7c8d9e"
)

// MockVerifier implements ports.StrengthVerifierPort for testing
type MockVerifier struct {
	mock.Mock
}

func (m *MockVerifier) VerifyStrength(ctx context.Context, a *oa.Array, claimed int) (*ports.StrengthReport, error) {
	args := m.Called(ctx, a, claimed)
	report, _ := args.Get(0).(*ports.StrengthReport)
	return report, args.Error(1)
}

func (m *MockVerifier) ComputeStrength(ctx context.Context, a *oa.Array, maxCheck int) (int, error) {
	args := m.Called(ctx, a, maxCheck)
	return args.Int(0), args.Error(1)
}

// MockRepository implements ports.ArrayRepository for testing
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) SaveArray(ctx context.Context, data oa.OAData) error {
	return m.Called(ctx, data).Error(0)
}

func (m *MockRepository) GetArray(ctx context.Context, id string) (*oa.OAData, error) {
	args := m.Called(ctx, id)
	data, _ := args.Get(0).(*oa.OAData)
	return data, args.Error(1)
}

func (m *MockRepository) ListArrays(ctx context.Context, limit int) ([]oa.OAData, error) {
	args := m.Called(ctx, limit)
	arrays, _ := args.Get(0).([]oa.OAData)
	return arrays, args.Error(1)
}

func (m *MockRepository) SaveAnalysis(ctx context.Context, arrayID string, analysis domainDoe.Analysis) (string, error) {
	args := m.Called(ctx, arrayID, analysis)
	return args.String(0), args.Error(1)
}

func (m *MockRepository) ListAnalyses(ctx context.Context, arrayID string) ([]domainDoe.Analysis, error) {
	args := m.Called(ctx, arrayID)
	analyses, _ := args.Get(0).([]domainDoe.Analysis)
	return analyses, args.Error(1)
}

// MockEngine implements ports.EffectsEnginePort for testing
type MockEngine struct {
	mock.Mock
}

func (m *MockEngine) Analyze(ctx context.Context, a *oa.Array, responses [][]float64, cfg ports.AnalysisConfig) (*ports.EffectsResult, error) {
	args := m.Called(ctx, a, responses, cfg)
	result, _ := args.Get(0).(*ports.EffectsResult)
	return result, args.Error(1)
}

func newService(deps Dependencies) *DesignService {
	deps.Catalogue = catalogue.NewStaticCatalogue()
	deps.Standards = catalogue.NewEmbeddedArrays()
	deps.Logger = logging.NewNop()
	deps.Clock = func() time.Time { return stamp }
	return NewDesignService(deps)
}

func TestInspect_CombinesAnalyses(t *testing.T) {
	svc := newService(Dependencies{})

	in, err := svc.Inspect(context.Background(), l9, InspectOptions{Name: "L9"})
	require.NoError(t, err)

	assert.Equal(t, "L9", in.Name)
	assert.Equal(t, 9, in.Summary.Runs)
	assert.Equal(t, 4, in.Summary.Factors)
	assert.Equal(t, oa.MethodBose, in.Algorithm)
	assert.True(t, in.Balance.Balanced())
	assert.InDelta(t, 0, in.MaxCorrelation, 1e-9)
	assert.Len(t, in.Columns, 4)
	assert.NotEmpty(t, in.Suggestions)
	assert.Nil(t, in.Verification)
}

func TestInspect_VerifiesClaimedStrength(t *testing.T) {
	verifier := new(MockVerifier)
	verifier.On("VerifyStrength", mock.Anything, mock.Anything, 2).
		Return(&ports.StrengthReport{IsValid: true, ActualStrength: 2}, nil)
	svc := newService(Dependencies{Verifier: verifier})

	in, err := svc.Inspect(context.Background(), l4, InspectOptions{ClaimedStrength: 2})
	require.NoError(t, err)
	require.NotNil(t, in.Verification)
	assert.True(t, in.Verification.IsValid)
	verifier.AssertExpectations(t)
}

func TestInspect_SkipsVerificationWithoutVerifier(t *testing.T) {
	svc := newService(Dependencies{})

	in, err := svc.Inspect(context.Background(), l4, InspectOptions{ClaimedStrength: 2})
	require.NoError(t, err)
	assert.Nil(t, in.Verification)
}

func TestInspect_VerifierFailureFails(t *testing.T) {
	verifier := new(MockVerifier)
	verifier.On("VerifyStrength", mock.Anything, mock.Anything, 2).Return(nil, errors.New("boom"))
	svc := newService(Dependencies{Verifier: verifier})

	_, err := svc.Inspect(context.Background(), l4, InspectOptions{ClaimedStrength: 2})
	assert.ErrorIs(t, err, core.ErrExternalEngine)
}

func TestInspect_RejectsBadInput(t *testing.T) {
	svc := newService(Dependencies{})

	_, err := svc.Inspect(context.Background(), [][]int{{0, 1}, {1}}, InspectOptions{})
	assert.ErrorIs(t, err, core.ErrRaggedRows)
}

func TestMatrixOperations(t *testing.T) {
	svc := newService(Dependencies{})

	balance, err := svc.Balance(l4)
	require.NoError(t, err)
	assert.True(t, balance.Balanced())

	corr, err := svc.Correlation(l4)
	require.NoError(t, err)
	assert.InDelta(t, 0, corr.MaxAbsOffDiagonal(), 1e-9)

	method, err := svc.Classify(l4)
	require.NoError(t, err)
	assert.Equal(t, oa.MethodHadamardSylvester, method)

	validation, err := svc.ValidateImport(l9)
	require.NoError(t, err)
	assert.Equal(t, 2, validation.EstimatedStrength)

	_, err = svc.Balance(nil)
	assert.ErrorIs(t, err, core.ErrEmptyInput)
}

func TestComputeStrength_UsesConfiguredCeiling(t *testing.T) {
	verifier := new(MockVerifier)
	verifier.On("ComputeStrength", mock.Anything, mock.Anything, 3).Return(2, nil)
	svc := newService(Dependencies{Verifier: verifier, MaxStrengthCheck: 3})

	strength, err := svc.ComputeStrength(context.Background(), l4, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, strength)
	verifier.AssertExpectations(t)
}

func TestVerify_NoVerifier(t *testing.T) {
	svc := newService(Dependencies{})

	_, err := svc.Verify(context.Background(), l4, 2)
	assert.ErrorIs(t, err, core.ErrEngineUnavailable)
}

func TestGetStandardArray(t *testing.T) {
	svc := newService(Dependencies{})

	data, err := svc.GetStandardArray(context.Background(), "l9")
	require.NoError(t, err)
	assert.Equal(t, l9, data.Data)
	assert.Equal(t, stamp, data.Metadata.CreatedAt)

	_, err = svc.GetStandardArray(context.Background(), "L27")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestSaveArray(t *testing.T) {
	repo := new(MockRepository)
	repo.On("SaveArray", mock.Anything, mock.MatchedBy(func(d oa.OAData) bool {
		return d.ID != "" && d.Runs == 4 && d.Factors == 3 && d.Metadata.CreatedAt.Equal(stamp)
	})).Return(nil)
	svc := newService(Dependencies{Repository: repo})

	id, err := svc.SaveArray(context.Background(), oa.OAData{Data: l4, Strength: 2})
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	repo.AssertExpectations(t)
}

func TestSaveArray_CanonicalisesCallerID(t *testing.T) {
	repo := new(MockRepository)
	repo.On("SaveArray", mock.Anything, mock.MatchedBy(func(d oa.OAData) bool {
		return d.ID == arrayID
	})).Return(nil)
	svc := newService(Dependencies{Repository: repo})

	id, err := svc.SaveArray(context.Background(), oa.OAData{ID: strings.ToUpper(arrayID), Data: l4})
	require.NoError(t, err)
	assert.Equal(t, arrayID, id)
	repo.AssertExpectations(t)
}

func TestStoredArrays_RejectMalformedID(t *testing.T) {
	repo := new(MockRepository)
	svc := newService(Dependencies{Repository: repo})
	ctx := context.Background()

	_, err := svc.SaveArray(ctx, oa.OAData{ID: "screening-1", Data: l4})
	assert.ErrorIs(t, err, core.ErrParameter)
	_, err = svc.GetArray(ctx, "screening-1")
	assert.ErrorIs(t, err, core.ErrParameter)
	_, err = svc.ListAnalyses(ctx, "screening-1")
	assert.ErrorIs(t, err, core.ErrParameter)
	_, err = svc.AnalyzeStored(ctx, "screening-1", domainDoe.AnalysisRequest{})
	assert.ErrorIs(t, err, core.ErrParameter)

	repo.AssertNotCalled(t, "SaveArray", mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "GetArray", mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "ListAnalyses", mock.Anything, mock.Anything)
}

func TestSaveArray_RejectsInvalidData(t *testing.T) {
	repo := new(MockRepository)
	svc := newService(Dependencies{Repository: repo})

	_, err := svc.SaveArray(context.Background(), oa.OAData{Data: l4, Levels: []int{2, 2}})
	assert.ErrorIs(t, err, core.ErrParameter)
	repo.AssertNotCalled(t, "SaveArray", mock.Anything, mock.Anything)
}

func TestPersistence_RequiresRepository(t *testing.T) {
	svc := newService(Dependencies{})
	ctx := context.Background()

	_, err := svc.SaveArray(ctx, oa.OAData{Data: l4})
	assert.ErrorIs(t, err, core.ErrEngineUnavailable)
	_, err = svc.GetArray(ctx, "x")
	assert.ErrorIs(t, err, core.ErrEngineUnavailable)
	_, err = svc.ListArrays(ctx, 10)
	assert.ErrorIs(t, err, core.ErrEngineUnavailable)
	_, err = svc.ListAnalyses(ctx, "x")
	assert.ErrorIs(t, err, core.ErrEngineUnavailable)
}

func TestAnalyzeStored(t *testing.T) {
	repo := new(MockRepository)
	engine := new(MockEngine)
	stored := &oa.OAData{ID: arrayID, Data: l4}
	repo.On("GetArray", mock.Anything, arrayID).Return(stored, nil)
	engine.On("Analyze", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(&ports.EffectsResult{}, nil)
	repo.On("SaveAnalysis", mock.Anything, arrayID, mock.Anything).Return("an-1", nil)
	svc := newService(Dependencies{Repository: repo, Engine: engine})

	result, err := svc.AnalyzeStored(context.Background(), arrayID, domainDoe.AnalysisRequest{
		ResponseData:     [][]float64{{1}, {2}, {3}, {4}},
		FactorIDs:        []string{"a", "b", "c"},
		FactorNames:      []string{"A", "B", "C"},
		OptimizationType: domainDoe.LargerIsBetter,
	})
	require.NoError(t, err)
	assert.Equal(t, "an-1", result.ConfigID)
	assert.Equal(t, stamp, result.AnalyzedAt)
	repo.AssertExpectations(t)
	engine.AssertExpectations(t)
}

func TestBuild_Persists(t *testing.T) {
	builder := new(MockBuilder)
	arr, err := oa.NewArray(l4, []int{2, 2, 2}, 2)
	require.NoError(t, err)
	builder.On("Build", mock.Anything, mock.Anything).Return(arr, nil)
	repo := new(MockRepository)
	repo.On("SaveArray", mock.Anything, mock.Anything).Return(nil)
	svc := newService(Dependencies{Builder: builder, Repository: repo})

	data, err := svc.Build(context.Background(), oa.BuildRequest{Levels: oa.Symmetric(2), Factors: 3, Strength: 2})
	require.NoError(t, err)
	assert.Equal(t, 4, data.Runs)
	repo.AssertExpectations(t)
}

func TestMetricsRecorded(t *testing.T) {
	recorder := metrics.NewRecorder()
	svc := newService(Dependencies{Metrics: recorder})

	_, _ = svc.Balance(l4)
	_, _ = svc.Balance(nil)

	rec := httptest.NewRecorder()
	recorder.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()
	assert.Contains(t, body, `taguchi_operations_total{code="OK",operation="balance"} 1`)
	assert.Contains(t, body, `taguchi_operations_total{code="INPUT_SHAPE",operation="balance"} 1`)
}

// MockBuilder implements ports.ArrayBuilderPort for testing
type MockBuilder struct {
	mock.Mock
}

func (m *MockBuilder) Build(ctx context.Context, spec ports.BuildSpec) (*oa.Array, error) {
	args := m.Called(ctx, spec)
	a, _ := args.Get(0).(*oa.Array)
	return a, args.Error(1)
}
