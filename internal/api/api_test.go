package api

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"

	"github.com/mucalc/mucalc/dose"
	"github.com/mucalc/mucalc/internal/config"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	engine, err := dose.NewEngine(dose.DefaultBeamData())
	if err != nil {
		t.Fatal(err)
	}
	cfg := config.New()
	cfg.RateLimitRPS = 0 // disabled in tests
	return NewServer(engine, cfg, prometheus.NewRegistry())
}

func postJSON(t *testing.T, s *Server, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestCalculate_ReferenceScenario(t *testing.T) {
	s := testServer(t)
	rec := postJSON(t, s, "/api/v1/calculate", `{
		"dose": 200, "field_size": 10, "mu_rate": 100,
		"energy": "6 MV", "depth": 5, "geometry": "SAD"
	}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp calculationResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	assert.True(t, resp.Result.Defined)
	assert.Equal(t, 83.0, resp.Result.PercentDD)
	assert.InDelta(t, 2.41, resp.Result.MU, 0.005)
	assert.NotEmpty(t, resp.RequestID)
}

func TestCalculate_OmittedFactorsDefaultToIdentity(t *testing.T) {
	s := testServer(t)
	rec := postJSON(t, s, "/api/v1/calculate", `{
		"dose": 200, "field_size": 10, "mu_rate": 100,
		"energy": "6 MV", "depth": 5
	}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp calculationResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, 1.0, resp.Result.WedgeFactor)
}

func TestCalculate_ExplicitZeroFactorIsUndefined(t *testing.T) {
	s := testServer(t)
	rec := postJSON(t, s, "/api/v1/calculate", `{
		"dose": 200, "field_size": 10, "mu_rate": 100,
		"energy": "6 MV", "depth": 5, "wedge_factor": 0
	}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422; body = %s", rec.Code, rec.Body.String())
	}
	var resp calculationResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	assert.False(t, resp.Result.Defined)
	assert.Contains(t, resp.Message, "cannot calculate MU")
}

func TestCalculate_BadRequests(t *testing.T) {
	s := testServer(t)
	cases := map[string]string{
		"malformed json": `{"dose": `,
		"bad geometry":   `{"dose": 200, "field_size": 10, "mu_rate": 100, "energy": "6 MV", "geometry": "diagonal"}`,
		"unknown energy": `{"dose": 200, "field_size": 10, "mu_rate": 100, "energy": "4 MV", "depth": 5}`,
		"negative dose":  `{"dose": -1, "field_size": 10, "mu_rate": 100, "energy": "6 MV", "depth": 5}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			rec := postJSON(t, s, "/api/v1/calculate", body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400; body = %s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestSensitivity_Endpoint(t *testing.T) {
	s := testServer(t)
	rec := postJSON(t, s, "/api/v1/sensitivity", `{
		"variable": "mu_rate", "increment": 10,
		"inputs": {"dose": 200, "field_size": 10, "mu_rate": 100, "energy": "6 MV", "depth": 5}
	}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var sens dose.Sensitivity
	if err := json.Unmarshal(rec.Body.Bytes(), &sens); err != nil {
		t.Fatal(err)
	}
	assert.True(t, sens.Defined)
	assert.Negative(t, sens.PctUp)
	assert.Positive(t, sens.PctDown)
}

func TestSensitivity_RejectsNonPositiveIncrement(t *testing.T) {
	s := testServer(t)
	rec := postJSON(t, s, "/api/v1/sensitivity", `{
		"variable": "dose", "increment": 0,
		"inputs": {"dose": 200, "field_size": 10, "mu_rate": 100, "energy": "6 MV", "depth": 5}
	}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestSweep_DefaultsRangeAndSamples(t *testing.T) {
	s := testServer(t)
	rec := postJSON(t, s, "/api/v1/sweep", `{
		"variable": "dose",
		"inputs": {"dose": 200, "field_size": 10, "mu_rate": 100, "energy": "6 MV", "depth": 5}
	}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp sweepResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	assert.Len(t, resp.Points, dose.DefaultSweepSamples)
	assert.Equal(t, 100.0, resp.Points[0].Value)
	assert.Equal(t, 300.0, resp.Points[len(resp.Points)-1].Value)
}

func TestReport_ReturnsPDF(t *testing.T) {
	s := testServer(t)
	rec := postJSON(t, s, "/api/v1/report", `{
		"meta": {"institution": "General Hospital"},
		"inputs": {"dose": 200, "field_size": 10, "mu_rate": 100, "energy": "6 MV", "depth": 5}
	}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")))
}

func TestBeamDataInfo_SummarizesDataset(t *testing.T) {
	s := testServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/beamdata", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var summary beamDataSummary
	if err := json.Unmarshal(rec.Body.Bytes(), &summary); err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, 100.0, summary.SAD)
	assert.Contains(t, summary.Energies, dose.Energy6MV)
	assert.True(t, summary.HasWedge)
}

func TestBeamDataImport_RequiresFile(t *testing.T) {
	s := testServer(t)
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/beamdata/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHealthz(t *testing.T) {
	s := testServer(t)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestRateLimit_Exceeded(t *testing.T) {
	engine, err := dose.NewEngine(dose.DefaultBeamData())
	if err != nil {
		t.Fatal(err)
	}
	cfg := config.New()
	cfg.RateLimitRPS = 0.001
	cfg.RateLimitBurst = 1
	s := NewServer(engine, cfg, prometheus.NewRegistry())

	body := `{"dose": 200, "field_size": 10, "mu_rate": 100, "energy": "6 MV", "depth": 5}`
	first := postJSON(t, s, "/api/v1/calculate", body)
	if first.Code != http.StatusOK {
		t.Fatalf("first request: status = %d", first.Code)
	}
	second := postJSON(t, s, "/api/v1/calculate", body)
	if second.Code != http.StatusTooManyRequests {
		t.Errorf("second request: status = %d, want 429", second.Code)
	}
}
