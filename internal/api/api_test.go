package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tutu-network/numgen/internal/app"
	"github.com/tutu-network/numgen/internal/app/builder"
	"github.com/tutu-network/numgen/internal/app/generator"
	"github.com/tutu-network/numgen/internal/health"
	"github.com/tutu-network/numgen/internal/logger"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	svc := app.NewService(logger.Nop())
	svc.SetBuilderFactory(func() generator.LocalBuilder { return builder.NewSeeded(7, 11) })

	srv := NewServer(svc, logger.Nop(), 100, 16)
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, srv *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	return body.Error.Message
}

// ─── Health Check ───────────────────────────────────────────────────────────

func TestAPI_Health(t *testing.T) {
	srv := newTestServer(t)
	w := do(t, srv, "GET", "/health", "")

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
	var body map[string]string
	json.NewDecoder(w.Body).Decode(&body)
	if body["status"] != "ok" {
		t.Errorf("status = %q, want ok", body["status"])
	}
}

func TestAPI_Version(t *testing.T) {
	srv := newTestServer(t)
	srv.SetVersion("1.2.3")
	w := do(t, srv, "GET", "/api/version", "")

	var body map[string]string
	json.NewDecoder(w.Body).Decode(&body)
	if body["version"] != "1.2.3" {
		t.Errorf("version = %q, want 1.2.3", body["version"])
	}
}

// ─── /api/resolve ───────────────────────────────────────────────────────────

func TestAPI_Resolve(t *testing.T) {
	tests := []struct {
		query  string
		region string
		code   int
	}{
		{"PK", "PK", 92},
		{"pakistan", "PK", 92},
		{"%2B1", "US", 1},
		{"44", "GB", 44},
	}
	srv := newTestServer(t)
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			w := do(t, srv, "GET", "/api/resolve?country="+tt.query, "")
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())

			var body struct {
				RegionCode  string `json:"region_code"`
				CallingCode int    `json:"calling_code"`
			}
			require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
			assert.Equal(t, tt.region, body.RegionCode)
			assert.Equal(t, tt.code, body.CallingCode)
		})
	}
}

func TestAPI_Resolve_NotFound(t *testing.T) {
	srv := newTestServer(t)
	w := do(t, srv, "GET", "/api/resolve?country=Qqqxz", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestAPI_Resolve_Cached(t *testing.T) {
	srv := newTestServer(t)
	first, err := srv.resolve("GB")
	require.NoError(t, err)
	second, err := srv.resolve("  gb ")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

// ─── /api/regions and /api/lengths ──────────────────────────────────────────

func TestAPI_Regions_SharedCode(t *testing.T) {
	srv := newTestServer(t)
	w := do(t, srv, "GET", "/api/regions/1", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Regions []struct {
			RegionCode string `json:"region_code"`
		} `json:"regions"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	require.Greater(t, len(body.Regions), 1)
	assert.Equal(t, "US", body.Regions[0].RegionCode)
}

func TestAPI_Regions_Invalid(t *testing.T) {
	srv := newTestServer(t)
	if w := do(t, srv, "GET", "/api/regions/abc", ""); w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
	if w := do(t, srv, "GET", "/api/regions/800", ""); w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestAPI_Lengths(t *testing.T) {
	srv := newTestServer(t)
	w := do(t, srv, "GET", "/api/lengths/gb", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Region  string `json:"region"`
		Lengths []int  `json:"possible_lengths"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, "GB", body.Region)
	assert.Contains(t, body.Lengths, 10)

	if w := do(t, srv, "GET", "/api/lengths/XX", ""); w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

// ─── /api/generate ──────────────────────────────────────────────────────────

func TestAPI_Generate(t *testing.T) {
	srv := newTestServer(t)
	w := do(t, srv, "POST", "/api/generate", `{"country":"GB","count":5,"local_length":10}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp generateResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.NotEmpty(t, resp.RunID)
	assert.Equal(t, 5, resp.Requested)
	assert.LessOrEqual(t, resp.Attempts, 5*generator.AttemptFactor)
	assert.Len(t, resp.Records, resp.Accepted)
	assert.Equal(t, resp.Accepted < 5, resp.Exhausted)

	seen := map[string]bool{}
	for _, r := range resp.Records {
		assert.True(t, strings.HasPrefix(r.E164Number, "+44"), r.E164Number)
		assert.Equal(t, "GB", r.CountryISO)
		assert.False(t, seen[r.E164Number], "duplicate %s", r.E164Number)
		seen[r.E164Number] = true
	}
}

func TestAPI_Generate_CSV(t *testing.T) {
	srv := newTestServer(t)
	w := do(t, srv, "POST", "/api/generate?format=csv", `{"country":"GB","count":3,"local_length":10}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	assert.NotEmpty(t, w.Header().Get("X-Numgen-Run-Id"))
	firstLine, _, _ := strings.Cut(w.Body.String(), "\n")
	assert.Equal(t, "e164_number,national_number,country_iso,country_calling_code,generation_timestamp",
		strings.TrimSpace(firstLine))
}

func TestAPI_Generate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"bad json", `{"country":`, http.StatusBadRequest},
		{"zero count", `{"country":"GB","count":0,"local_length":10}`, http.StatusBadRequest},
		{"over max count", `{"country":"GB","count":101,"local_length":10}`, http.StatusBadRequest},
		{"local length too long", `{"country":"GB","count":1,"local_length":18}`, http.StatusBadRequest},
		{"huge local length", `{"country":"GB","count":100,"local_length":1000000000}`, http.StatusBadRequest},
		{"unknown country", `{"country":"Qqqxz","count":1,"local_length":10}`, http.StatusNotFound},
		{"strict length", `{"country":"GB","count":1,"local_length":3,"strict_length":true}`, http.StatusBadRequest},
		{"bad placement", `{"country":"GB","count":1,"local_length":10,"serial":{"enabled":true,"placement":"middle"}}`, http.StatusBadRequest},
		{"serial too long", `{"country":"GB","count":1,"local_length":4,"serial":{"enabled":true,"start":123456}}`, http.StatusUnprocessableEntity},
		{"fixed prefix too long", `{"country":"GB","count":1,"local_length":10,"serial":{"enabled":true,"start":30,"fixed_prefix_len":5}}`, http.StatusUnprocessableEntity},
	}
	srv := newTestServer(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, srv, "POST", "/api/generate", tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			assert.NotEmpty(t, errorMessage(t, w))
		})
	}
}

// ─── Middleware ─────────────────────────────────────────────────────────────

func TestAPI_CORS(t *testing.T) {
	srv := newTestServer(t)
	srv.SetCORSOrigins([]string{"https://example.com"})

	req := httptest.NewRequest("OPTIONS", "/api/resolve", nil)
	req.Header.Set("Origin", "https://example.com")
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://example.com" {
		t.Errorf("Allow-Origin = %q, want https://example.com", got)
	}
}

func TestAPI_Metrics(t *testing.T) {
	srv := newTestServer(t)
	if w := do(t, srv, "GET", "/metrics", ""); w.Code != http.StatusNotFound {
		t.Errorf("metrics disabled: status = %d, want %d", w.Code, http.StatusNotFound)
	}

	srv.EnableMetrics()
	do(t, srv, "GET", "/api/resolve?country=PK", "")
	w := do(t, srv, "GET", "/metrics", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if !strings.Contains(w.Body.String(), "numgen_resolutions_total") {
		t.Error("metrics output missing numgen_resolutions_total")
	}
}

func TestAPI_Health_Checks(t *testing.T) {
	srv := newTestServer(t)
	checker := health.NewChecker(srv.svc.Plan, t.TempDir())
	checker.RunOnce(context.Background())
	srv.SetHealth(checker)

	w := do(t, srv, "GET", "/health", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Status string          `json:"status"`
		Checks []health.Status `json:"checks"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, "ok", body.Status)
	assert.Len(t, body.Checks, 2)
}
