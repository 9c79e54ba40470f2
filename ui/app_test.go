package ui

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"taguchi/adapters/catalogue"
	"taguchi/app"
	domainDoe "taguchi/domain/doe"
	"taguchi/domain/oa"
	"taguchi/internal/logging"
	"taguchi/internal/metrics"
)

const arrayID = "0192f4a8-7c3e-7b1a-9d2e-4f5a6b7c8d9e"

var l9 = [][]int{
	{0, 0, 0, 0}, {0, 1, 1, 1}, {0, 2, 2, 2},
	{1, 0, 1, 2}, {1, 1, 2, 0}, {1, 2, 0, 1},
	{2, 0, 2, 1}, {2, 1, 0, 2}, {2, 2, 1, 0},
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

func newTestApp(t *testing.T, deps app.Dependencies) http.Handler {
	t.Helper()
	deps.Catalogue = catalogue.NewStaticCatalogue()
	deps.Standards = catalogue.NewEmbeddedArrays()
	deps.Logger = logging.NewNop()
	if deps.Metrics == nil {
		deps.Metrics = metrics.NewRecorder()
	}

	a, err := NewApp(app.NewDesignService(deps), Config{
		GinMode: gin.TestMode,
		Metrics: deps.Metrics,
		Logger:  deps.Logger,
	})
	require.NoError(t, err)
	return a.Handler()
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestHealth(t *testing.T) {
	h := newTestApp(t, app.Dependencies{})

	rec := do(t, h, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestBalanceEndpoint(t *testing.T) {
	h := newTestApp(t, app.Dependencies{})

	rec := do(t, h, http.MethodPost, "/api/balance", map[string]any{"matrix": l9})
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, true, body["balanced"])
	assert.Empty(t, body["unbalanced"])
}

func TestErrorMapping(t *testing.T) {
	h := newTestApp(t, app.Dependencies{})

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
		code   string
	}{
		{"ragged rows", http.MethodPost, "/api/balance", map[string]any{"matrix": [][]int{{0, 1}, {1}}}, http.StatusBadRequest, "INPUT_SHAPE"},
		{"negative level", http.MethodPost, "/api/correlation", map[string]any{"matrix": [][]int{{0, -1}}}, http.StatusBadRequest, "INPUT_SHAPE"},
		{"oversized level", http.MethodPost, "/api/balance", map[string]any{"matrix": [][]int{{0, math.MaxInt}}}, http.StatusBadRequest, "INPUT_SHAPE"},
		{"malformed body", http.MethodPost, "/api/classify", "{not json", http.StatusBadRequest, "INVALID_INPUT"},
		{"no verifier", http.MethodPost, "/api/verify", map[string]any{"matrix": l9, "claimedStrength": 2}, http.StatusServiceUnavailable, "ENGINE_UNAVAILABLE"},
		{"no engine", http.MethodPost, "/api/analyze", domainDoe.AnalysisRequest{
			ArrayData:        l9,
			ResponseData:     [][]float64{{1}, {2}, {3}, {4}, {5}, {6}, {7}, {8}, {9}},
			FactorIDs:        []string{"a", "b", "c", "d"},
			FactorNames:      []string{"A", "B", "C", "D"},
			OptimizationType: domainDoe.LargerIsBetter,
		}, http.StatusServiceUnavailable, "ENGINE_UNAVAILABLE"},
		{"unknown standard array", http.MethodGet, "/api/catalogue/L16", nil, http.StatusNotFound, "NOT_FOUND"},
		{"no repository", http.MethodGet, "/api/arrays", nil, http.StatusServiceUnavailable, "ENGINE_UNAVAILABLE"},
		{"bad levels query", http.MethodGet, "/api/constructions?levels=x", nil, http.StatusBadRequest, "INVALID_INPUT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.code, decode(t, rec)["code"])
		})
	}
}

func TestCatalogueEndpoints(t *testing.T) {
	h := newTestApp(t, app.Dependencies{})

	rec := do(t, h, http.MethodGet, "/api/catalogue?levels=3&maxRuns=9", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Arrays []oa.StandardArrayInfo `json:"arrays"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list.Arrays, 1)
	assert.Equal(t, "L9", list.Arrays[0].Name)

	rec = do(t, h, http.MethodGet, "/api/catalogue/L9", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var data oa.OAData
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &data))
	assert.Equal(t, l9, data.Data)
}

func TestConstructionsEndpoint(t *testing.T) {
	h := newTestApp(t, app.Dependencies{})

	rec := do(t, h, http.MethodGet, "/api/constructions?levels=3", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var out struct {
		Constructions []oa.ConstructionOption `json:"constructions"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.NotEmpty(t, out.Constructions)
	assert.Equal(t, oa.MethodBose, out.Constructions[0].Name)
}

func TestValidateBuildEndpoint(t *testing.T) {
	h := newTestApp(t, app.Dependencies{})

	rec := do(t, h, http.MethodPost, "/api/build/validate", map[string]any{"levels": 6, "factors": 3, "strength": 2})
	require.Equal(t, http.StatusOK, rec.Code)
	var result oa.ValidationResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.False(t, result.Valid)
	assert.NotEmpty(t, result.Errors)
}

func TestSaveArrayEndpoint(t *testing.T) {
	repo := new(MockRepository)
	repo.On("SaveArray", mock.Anything, mock.Anything).Return(nil)
	h := newTestApp(t, app.Dependencies{Repository: repo})

	rec := do(t, h, http.MethodPost, "/api/arrays", map[string]any{"data": l9, "strength": 2})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.NotEmpty(t, decode(t, rec)["id"])
	repo.AssertExpectations(t)
}

func TestStoredArrayEndpoints_RejectMalformedID(t *testing.T) {
	repo := new(MockRepository)
	h := newTestApp(t, app.Dependencies{Repository: repo})

	for _, path := range []string{"/api/arrays/screening-1", "/api/arrays/screening-1/analyses"} {
		rec := do(t, h, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, path)
		assert.Equal(t, "PARAMETER", decode(t, rec)["code"], path)
	}

	rec := do(t, h, http.MethodPost, "/api/arrays", map[string]any{"id": "screening-1", "data": l9})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "PARAMETER", decode(t, rec)["code"])

	repo.AssertNotCalled(t, "GetArray", mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "SaveArray", mock.Anything, mock.Anything)
}

func TestReportPages(t *testing.T) {
	repo := new(MockRepository)
	name := "Screening"
	repo.On("GetArray", mock.Anything, arrayID).Return(&oa.OAData{ID: arrayID, Data: l9, Metadata: oa.OAMetadata{Name: &name}}, nil)
	h := newTestApp(t, app.Dependencies{Repository: repo})

	rec := do(t, h, http.MethodPost, "/reports", map[string]any{"matrix": l9, "name": "Posted"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "<title>Posted</title>")
	assert.Contains(t, rec.Body.String(), "<table>")

	rec = do(t, h, http.MethodGet, "/reports/arrays/"+arrayID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<title>Screening</title>")

	rec = do(t, h, http.MethodGet, "/reports/catalogue/L9", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Bose")

	rec = do(t, h, http.MethodPost, "/reports", map[string]any{"matrix": [][]int{}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	h := newTestApp(t, app.Dependencies{})

	do(t, h, http.MethodPost, "/api/balance", map[string]any{"matrix": l9})
	rec := do(t, h, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `taguchi_operations_total{code="OK",operation="balance"} 1`)
}
