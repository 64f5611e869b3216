package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"dream-tool/internal/assessment"
	"dream-tool/internal/assessor"
	"dream-tool/internal/metrics"
	"dream-tool/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const clinicJSON = `{
	"name": "Kisumu clinic",
	"daily_usage_kwh": 240,
	"peak_sun_hours": 5,
	"panel_efficiency": 0.18,
	"battery_efficiency": 0.9,
	"equipment": [{"name": "fridge", "power_watts": 100, "hours_per_day": 10, "efficiency": 0.9}]
}`

func newTestServer(t *testing.T, withStorage bool) *Server {
	t.Helper()

	cfg := assessor.AssessorConfig{Assumptions: assessment.DefaultAssumptions()}
	srvCfg := ServerConfig{Metrics: metrics.New()}
	if withStorage {
		db, err := storage.NewDatabase(storage.Config{Driver: "sqlite", Path: filepath.Join(t.TempDir(), "api.db")})
		require.NoError(t, err)
		t.Cleanup(func() { _ = db.Close() })
		cfg.Store = db
		srvCfg.Database = db
	}
	cfg.Metrics = srvCfg.Metrics
	srvCfg.Assessor = assessor.NewAssessor(cfg)

	return NewServer(srvCfg)
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(bytes.NewReader(rec.Body.Bytes())).Decode(v))
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, false)
	rec := do(t, s, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	decode(t, rec, &body)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, false, body["storage"])
}

func TestAssumptions(t *testing.T) {
	s := newTestServer(t, false)
	rec := do(t, s, http.MethodGet, "/api/v1/assumptions", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var a assessment.Assumptions
	decode(t, rec, &a)
	assert.Equal(t, assessment.DefaultAssumptions(), a)
}

func TestCreateGetAndListAssessments(t *testing.T) {
	s := newTestServer(t, true)

	rec := do(t, s, http.MethodPost, "/api/v1/assessments", clinicJSON)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created assessor.Record
	decode(t, rec, &created)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Kisumu clinic", created.FacilityName)
	assert.Equal(t, 2.0, created.Result.PV.Sizing.PVSizeKw)
	assert.Equal(t, 10.0, created.Result.Diesel.Sizing.GeneratorSizeKw)

	rec = do(t, s, http.MethodGet, "/api/v1/assessments/"+created.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var got assessor.Record
	decode(t, rec, &got)
	assert.Equal(t, created.Result, got.Result)

	rec = do(t, s, http.MethodGet, "/api/v1/assessments/latest", "")
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &got)
	assert.Equal(t, created.ID, got.ID)

	require.Equal(t, http.StatusCreated, do(t, s, http.MethodPost, "/api/v1/assessments", clinicJSON).Code)

	rec = do(t, s, http.MethodGet, "/api/v1/assessments?limit=1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Assessments []assessor.Record `json:"assessments"`
		Count       int               `json:"count"`
	}
	decode(t, rec, &list)
	assert.Equal(t, 1, list.Count)
	assert.NotEqual(t, created.ID, list.Assessments[0].ID)

	rec = do(t, s, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `dream_assessments_total{lower_lifecycle_cost="pv"} 2`)
}

func TestCreateAssessmentAssumptionOverrides(t *testing.T) {
	s := newTestServer(t, false)

	body := strings.TrimSuffix(strings.TrimSpace(clinicJSON), "}") +
		`, "assumptions": {"diesel_generator_cost_per_kw": 800}}`
	rec := do(t, s, http.MethodPost, "/api/v1/assessments", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created assessor.Record
	decode(t, rec, &created)
	assert.Equal(t, 8000.0, created.Result.Diesel.InitialCost)
	assert.Equal(t, 0.12, created.Assumptions.DiscountRate)
}

func TestCreateAssessmentValidationProblems(t *testing.T) {
	s := newTestServer(t, false)

	rec := do(t, s, http.MethodPost, "/api/v1/assessments",
		`{"name": "bad", "daily_usage_kwh": 10, "peak_sun_hours": 0, "panel_efficiency": 0, "battery_efficiency": 0.9}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body struct {
		Error    string `json:"error"`
		Problems []struct {
			Field string `json:"field"`
		} `json:"problems"`
	}
	decode(t, rec, &body)
	assert.Contains(t, body.Error, "invalid energy profile")
	require.Len(t, body.Problems, 2)
	assert.Equal(t, "peak_sun_hours", body.Problems[0].Field)
	assert.Equal(t, "panel_efficiency", body.Problems[1].Field)
}

func TestCreateAssessmentOverflowIsBadRequest(t *testing.T) {
	s := newTestServer(t, false)

	rec := do(t, s, http.MethodPost, "/api/v1/assessments", `{
		"name": "furnace", "daily_usage_kwh": 1, "peak_sun_hours": 5,
		"panel_efficiency": 0.18, "battery_efficiency": 0.9,
		"equipment": [{"name": "furnace", "power_watts": 1e300, "hours_per_day": 1e10, "efficiency": 1}]
	}`)
	require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())

	var body struct {
		Error    string `json:"error"`
		Problems []struct {
			Field string `json:"field"`
			Value string `json:"value"`
		} `json:"problems"`
	}
	decode(t, rec, &body)
	assert.Contains(t, body.Error, "numeric overflow")
	require.NotEmpty(t, body.Problems)
	assert.Equal(t, "+Inf", body.Problems[0].Value)

	rec = do(t, s, http.MethodGet, "/metrics", "")
	assert.Contains(t, rec.Body.String(), `dream_assessment_failures_total{reason="numeric_overflow"} 1`)
}

func TestCreateAssessmentMalformedBody(t *testing.T) {
	s := newTestServer(t, false)
	assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodPost, "/api/v1/assessments", `{"name":`).Code)
}

func TestGetAssessmentNotFound(t *testing.T) {
	s := newTestServer(t, true)
	rec := do(t, s, http.MethodGet, "/api/v1/assessments/does-not-exist", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, s, http.MethodGet, "/api/v1/assessments/latest", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListWithoutStorage(t *testing.T) {
	s := newTestServer(t, false)
	assert.Equal(t, http.StatusServiceUnavailable, do(t, s, http.MethodGet, "/api/v1/assessments", "").Code)

	require.Equal(t, http.StatusCreated, do(t, s, http.MethodPost, "/api/v1/assessments", clinicJSON).Code)
	assert.Equal(t, http.StatusOK, do(t, s, http.MethodGet, "/api/v1/assessments/latest", "").Code)
}

func TestListInvalidLimit(t *testing.T) {
	s := newTestServer(t, true)
	assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodGet, "/api/v1/assessments?limit=abc", "").Code)
	assert.Equal(t, http.StatusOK, do(t, s, http.MethodGet, "/api/v1/assessments?limit=5000", "").Code)
}

func TestNPVIRR(t *testing.T) {
	s := newTestServer(t, false)

	rec := do(t, s, http.MethodPost, "/api/v1/finance/npv-irr", `{"cash_flows": [-100, 110], "rate": 0}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		NPV float64 `json:"npv"`
		IRR struct {
			Rate   float64 `json:"rate"`
			Status string  `json:"status"`
		} `json:"irr"`
	}
	decode(t, rec, &body)
	assert.InDelta(t, 10.0, body.NPV, 1e-9)
	assert.Equal(t, "converged", body.IRR.Status)
	assert.InDelta(t, 0.10, body.IRR.Rate, 1e-6)

	rec = do(t, s, http.MethodPost, "/api/v1/finance/npv-irr", `{"cash_flows": [-1000, -50, -50]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &body)
	assert.Equal(t, "undefined", body.IRR.Status)

	assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodPost, "/api/v1/finance/npv-irr", `{"cash_flows": []}`).Code)
	assert.Equal(t, http.StatusBadRequest,
		do(t, s, http.MethodPost, "/api/v1/finance/npv-irr", `{"cash_flows": [-1, 2], "rate": -1}`).Code)

	rec = do(t, s, http.MethodPost, "/api/v1/finance/npv-irr", `{"cash_flows": [1e308, 1e308], "rate": 0}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "NPV overflows")
}
