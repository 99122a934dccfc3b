package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/MikeSquared-Agency/Playground/internal/config"
	"github.com/MikeSquared-Agency/Playground/internal/rankings"
	"github.com/MikeSquared-Agency/Playground/internal/web"
)

type mockRankings struct {
	mock.Mock
}

func (m *mockRankings) PowerRankings(ctx context.Context, req rankings.PowerRankingsRequest) (*rankings.PowerRankingsResponse, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*rankings.PowerRankingsResponse)
	return resp, args.Error(1)
}

type published struct {
	subject string
	data    interface{}
}

type mockHermes struct {
	mu     sync.Mutex
	events []published
}

func (m *mockHermes) Publish(_ context.Context, subject string, data interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, published{subject, data})
	return nil
}
func (m *mockHermes) Close() {}

func (m *mockHermes) subjects() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, e := range m.events {
		out = append(out, e.subject)
	}
	return out
}

func sampleResponse() *rankings.PowerRankingsResponse {
	return &rankings.PowerRankingsResponse{
		Teams:            []string{"Lions", "Bears", "Packers"},
		Wins:             []int{10, 7, 3},
		Losses:           []int{2, 5, 8},
		Ties:             []int{0, 0, 1},
		Scores:           []float64{0.45, 0.35, 0.2},
		PointsFor:        []float64{320, 280, 190},
		PointsAgainst:    []float64{200, 240, 300},
		NetPoints:        []float64{120, 40, -110},
		PointsForFit:     &rankings.Fit{0.0019, -0.17, 0.93},
		PointsAgainstFit: &rankings.Fit{-0.0024, 0.93, 0.97},
		NetPointsFit:     &rankings.Fit{0.0011, 0.32, 0.99},
	}
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Server.RateLimitPerMinute = 1000
	return cfg
}

func setupRouter(t *testing.T, cfg *config.Config) (http.Handler, *mockRankings, *mockHermes) {
	t.Helper()
	renderer, err := web.NewRenderer()
	require.NoError(t, err)
	rc := &mockRankings{}
	h := &mockHermes{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewRouter(rc, h, renderer, cfg, logger), rc, h
}

func postForm(router http.Handler, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func postJSON(router http.Handler, body string, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/power_rankings", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestShowPage(t *testing.T) {
	router, rc, _ := setupRouter(t, testConfig())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "Step 1. Choose Parameters")
	rc.AssertNotCalled(t, "PowerRankings", mock.Anything, mock.Anything)
}

func TestSubmit_RunSendsPayloadOnce(t *testing.T) {
	router, rc, h := setupRouter(t, testConfig())

	want := rankings.PowerRankingsRequest{
		P:                     0.15,
		BMode:                 0,
		AdjacencyMode:         0,
		BWinsPower:            1,
		AdjacencyWinPoints:    1,
		AdjacencyTiePoints:    0.5,
		AdjacencyMarginPower:  1,
		AdjacencyMarginTiers:  []float64{},
		AdjacencyMarginValues: []float64{0, 0},
	}
	rc.On("PowerRankings", mock.Anything, want).Return(sampleResponse(), nil).Once()

	w := postForm(router, url.Values{"op": {"run"}})

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, " 1. Lions (10-2) (0.4500)")
	assert.Contains(t, body, " 3. Packers (3-8-1) (0.2000)")
	assert.Contains(t, body, "&#34;Points For&#34; Correlation")
	assert.Contains(t, body, "R ² = 0.99")
	rc.AssertNumberOfCalls(t, "PowerRankings", 1)

	subjects := h.subjects()
	require.Len(t, subjects, 1)
	assert.True(t, strings.HasSuffix(subjects[0], ".completed"), subjects[0])
}

func TestSubmit_ValidationBlocksBackend(t *testing.T) {
	router, rc, h := setupRouter(t, testConfig())

	w := postForm(router, url.Values{"op": {"run"}, "p": {"1.5"}})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid input: p must be a value between 0 and 1")
	assert.Contains(t, w.Body.String(), `id="alert"`)
	rc.AssertNotCalled(t, "PowerRankings", mock.Anything, mock.Anything)

	subjects := h.subjects()
	require.Len(t, subjects, 1)
	assert.True(t, strings.HasSuffix(subjects[0], ".rejected"), subjects[0])
}

func TestSubmit_UnparseableNumber(t *testing.T) {
	router, rc, _ := setupRouter(t, testConfig())

	w := postForm(router, url.Values{"op": {"run"}, "p": {"abc"}})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid input: p must be a number")
	rc.AssertNotCalled(t, "PowerRankings", mock.Anything, mock.Anything)
}

func TestSubmit_AdjacencyModeChangeResets(t *testing.T) {
	router, rc, _ := setupRouter(t, testConfig())

	w := postForm(router, url.Values{
		"op":                   {"adjacency_mode"},
		"adjacency_mode":       {"2"},
		"adjacency_win_points": {"7"},
		"p":                    {"0.3"},
	})

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `<option value="2" selected>Margin of victory tiers</option>`)
	assert.Contains(t, body, `name="adjacency_num_tier" data-op="num_tiers" value="2"`)
	assert.Contains(t, body, `value="0.3"`)
	rc.AssertNotCalled(t, "PowerRankings", mock.Anything, mock.Anything)
}

func TestSubmit_TierCountChangeZeroesEditor(t *testing.T) {
	router, _, _ := setupRouter(t, testConfig())

	w := postForm(router, url.Values{
		"op":                      {"num_tiers"},
		"adjacency_mode":          {"2"},
		"adjacency_num_tier":      {"4"},
		"adjacency_margin_values": {"5", "5"},
	})

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Equal(t, 4, strings.Count(body, `name="adjacency_margin_values" step="any" value="0"`))
	assert.Equal(t, 2, strings.Count(body, `name="adjacency_margin_tiers" step="any" value="0"`))
}

func TestSubmit_BackendError(t *testing.T) {
	router, rc, h := setupRouter(t, testConfig())
	rc.On("PowerRankings", mock.Anything, mock.Anything).
		Return(nil, &rankings.BackendError{StatusCode: 400, Detail: "Invalid b_mode"}).Once()

	w := postForm(router, url.Values{"op": {"run"}})

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid b_mode")
	assert.NotContains(t, w.Body.String(), `class="ranking"`)

	subjects := h.subjects()
	require.Len(t, subjects, 1)
	assert.True(t, strings.HasSuffix(subjects[0], ".failed"), subjects[0])
}

func TestPowerRankingsAPI(t *testing.T) {
	router, rc, _ := setupRouter(t, testConfig())
	rc.On("PowerRankings", mock.Anything, mock.MatchedBy(func(req rankings.PowerRankingsRequest) bool {
		return req.AdjacencyMode == 2 && len(req.AdjacencyMarginValues) == 3 && req.AdjacencyMarginTiers[0] == 7
	})).Return(sampleResponse(), nil).Once()

	w := postJSON(router, `{"p":0.2,"b_mode":0,"adjacency_mode":2,"b_wins_power":1,
		"adjacency_win_points":1,"adjacency_tie_points":0.5,"adjacency_margin_power":1,
		"adjacency_margin_tiers":[7],"adjacency_margin_values":[0.5,1,2]}`, "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Run-ID"))

	var out struct {
		RunID     string              `json:"run_id"`
		Teams     []string            `json:"teams"`
		Standings []rankings.Standing `json:"standings"`
		NetFit    []float64           `json:"net_points_fit"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.Equal(t, w.Header().Get("X-Run-ID"), out.RunID)
	assert.Equal(t, []string{"Lions", "Bears", "Packers"}, out.Teams)
	require.Len(t, out.Standings, 3)
	assert.Equal(t, 1, out.Standings[0].Rank)
	assert.Equal(t, []float64{0.0011, 0.32, 0.99}, out.NetFit)
	rc.AssertExpectations(t)
}

func TestPowerRankingsAPI_ValidationError(t *testing.T) {
	router, rc, _ := setupRouter(t, testConfig())

	w := postJSON(router, `{"p":0.2,"adjacency_mode":2,"adjacency_tie_points":-1,
		"adjacency_margin_tiers":[],"adjacency_margin_values":[0,0]}`, "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var out map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.Equal(t, "Invalid input: adjacencyTiePoints must be non-negative", out["error"])
	rc.AssertNotCalled(t, "PowerRankings", mock.Anything, mock.Anything)
}

func TestPowerRankingsAPI_BadBodies(t *testing.T) {
	router, rc, _ := setupRouter(t, testConfig())

	w := postJSON(router, `{not json`, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = postJSON(router, `{"p":0.2,"adjacency_margin_tiers":[1,2],"adjacency_margin_values":[0,0]}`, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "intervals need")

	rc.AssertNotCalled(t, "PowerRankings", mock.Anything, mock.Anything)
}

func TestPowerRankingsAPI_BackendFailure(t *testing.T) {
	router, rc, _ := setupRouter(t, testConfig())
	rc.On("PowerRankings", mock.Anything, mock.Anything).
		Return(nil, &rankings.BackendError{StatusCode: 500, Detail: "boom"}).Once()

	w := postJSON(router, `{"p":0.2,"adjacency_margin_tiers":[],"adjacency_margin_values":[0,0]}`, "")

	assert.Equal(t, http.StatusBadGateway, w.Code)
	var out backendErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.Equal(t, 500, out.BackendStatus)
	assert.Equal(t, "boom", out.Detail)
}

func TestPowerRankingsAPI_TransportFailure(t *testing.T) {
	router, rc, _ := setupRouter(t, testConfig())
	rc.On("PowerRankings", mock.Anything, mock.Anything).
		Return(nil, errors.New("connection refused")).Once()

	w := postJSON(router, `{"p":0.2,"adjacency_margin_tiers":[],"adjacency_margin_values":[0,0]}`, "")

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.NotContains(t, w.Body.String(), "connection refused")
}

func TestPowerRankingsAPI_Token(t *testing.T) {
	cfg := testConfig()
	cfg.Server.APIToken = "secret"
	router, rc, _ := setupRouter(t, cfg)
	rc.On("PowerRankings", mock.Anything, mock.Anything).Return(sampleResponse(), nil)

	body := `{"p":0.2,"adjacency_margin_tiers":[],"adjacency_margin_values":[0,0]}`

	w := postJSON(router, body, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = postJSON(router, body, "wrong")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = postJSON(router, body, "secret")
	assert.Equal(t, http.StatusOK, w.Code)

	// the page is never token-guarded
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestStaticAssets(t *testing.T) {
	router, _, _ := setupRouter(t, testConfig())

	req := httptest.NewRequest(http.MethodGet, "/static/app.js", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "data-op")
}

func TestMetricsRouter(t *testing.T) {
	router, rc, _ := setupRouter(t, testConfig())
	rc.On("PowerRankings", mock.Anything, mock.Anything).Return(sampleResponse(), nil)
	postForm(router, url.Values{"op": {"run"}})

	metrics := NewMetricsRouter()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	metrics.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w = httptest.NewRecorder()
	metrics.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `playground_runs_total{outcome="completed"}`)
	assert.Contains(t, body, "playground_backend_request_duration_seconds")
	assert.Contains(t, body, `playground_http_requests_total{method="POST",route="/",status="200"}`)
}

func TestUnmatchedPathsShareOneSeries(t *testing.T) {
	router, _, _ := setupRouter(t, testConfig())

	for _, path := range []string{"/nope-a", "/nope-b", "/wp-admin/x"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNotFound, w.Code, path)
	}

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	NewMetricsRouter().ServeHTTP(w, req)
	body := w.Body.String()

	assert.Contains(t, body, `playground_http_requests_total{method="GET",route="unmatched",status="404"}`)
	assert.NotContains(t, body, "/nope-a")
	assert.NotContains(t, body, "/wp-admin/x")
}

func TestSubmit_UnparseableNumberIsRejectedRun(t *testing.T) {
	router, rc, h := setupRouter(t, testConfig())

	postForm(router, url.Values{"op": {"run"}, "adjacency_win_points": {"lots"}})

	rc.AssertNotCalled(t, "PowerRankings", mock.Anything, mock.Anything)
	subjects := h.subjects()
	require.Len(t, subjects, 1)
	assert.True(t, strings.HasSuffix(subjects[0], ".rejected"), subjects[0])
}

func TestSubmit_UnparseableTransitionIsNotARun(t *testing.T) {
	router, _, h := setupRouter(t, testConfig())

	w := postForm(router, url.Values{"op": {"b_mode"}, "p": {"abc"}})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, h.subjects())
}

func TestPowerRankingsAPI_TierCountMismatchIsRejectedRun(t *testing.T) {
	router, _, h := setupRouter(t, testConfig())

	w := postJSON(router, `{"p":0.2,"adjacency_margin_tiers":[1,2],"adjacency_margin_values":[0,0]}`, "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Run-ID"))
	subjects := h.subjects()
	require.Len(t, subjects, 1)
	assert.Equal(t, "rankings.run."+w.Header().Get("X-Run-ID")+".rejected", subjects[0])
}

func TestPowerRankingsAPI_BodyTooLarge(t *testing.T) {
	router, rc, _ := setupRouter(t, testConfig())

	values := strings.Repeat("0,", maxRequestBytes)
	w := postJSON(router, `{"p":0.2,"adjacency_margin_values":[`+values+`0]}`, "")

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	rc.AssertNotCalled(t, "PowerRankings", mock.Anything, mock.Anything)
}
