package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm-cable/avoid/policy"
	"github.com/pthm-cable/avoid/telemetry"
)

var (
	allClear  = []float64{1, 1, 1, 1, 1, 1, 1, 1}
	blocked   = []float64{1, 1, 1, 0.1, 0.1, 1, 1, 1}
	noRuleHit = []float64{0.6, 0.6, 0.6, 0.25, 0.85, 0.6, 0.6, 0.6}
)

func newTestRouter(t *testing.T, fallback policy.Fallback, metrics *telemetry.Metrics) http.Handler {
	t.Helper()
	sys, err := policy.Build(policy.DefaultParams())
	require.NoError(t, err)
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewRouter(Options{
		System:     sys,
		Controller: policy.Options{Fallback: fallback, Logger: quiet},
		Metrics:    metrics,
		Logger:     quiet,
	})
}

func postAvoid(t *testing.T, h http.Handler, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(body))
	req := httptest.NewRequest(http.MethodPost, "/v1/avoid", &buf)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	h := newTestRouter(t, policy.FallbackStop, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))
}

func TestRequestIDIsEchoed(t *testing.T) {
	h := newTestRouter(t, policy.FallbackStop, nil)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
}

func TestAvoid(t *testing.T) {
	h := newTestRouter(t, policy.FallbackStop, nil)
	sys, err := policy.Build(policy.DefaultParams())
	require.NoError(t, err)
	turnVar, ok := sys.Variable(policy.AngularVel)
	require.True(t, ok)

	tests := []struct {
		name      string
		sonar     []float64
		wantVel   float64
		wantTurn  float64
		turnLabel string
		straight  bool
	}{
		{name: "all clear", sonar: allClear, wantVel: 1.1286, wantTurn: 0.005, turnLabel: policy.Recto, straight: true},
		{name: "blocked ahead", sonar: blocked, wantVel: -0.17, wantTurn: -0.13, turnLabel: policy.DerechaLigero},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postAvoid(t, h, avoidRequest{Sonar: tt.sonar})
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

			var resp avoidResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
			assert.False(t, resp.Fallback)
			assert.InDelta(t, tt.wantVel, resp.Velocidad, 0.01)
			assert.InDelta(t, tt.wantTurn, resp.AngularVel, 0.01)

			label, _, ok := turnVar.Classify(resp.AngularVel)
			require.True(t, ok)
			assert.Equal(t, tt.turnLabel, label)

			if tt.straight {
				assert.Equal(t, resp.Left, resp.Right)
			} else {
				// Outside the deadband a right turn feeds angularVel to the right wheel.
				assert.Equal(t, resp.Velocidad, resp.Left)
				assert.Equal(t, resp.AngularVel, resp.Right)
			}
			assert.Nil(t, resp.Strengths)
		})
	}
}

func TestAvoidStrengths(t *testing.T) {
	h := newTestRouter(t, policy.FallbackStop, nil)
	rec := postAvoid(t, h, avoidRequest{Sonar: allClear, Strengths: true})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp avoidResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Len(t, resp.Strengths, len(policy.Rules()))
}

func TestAvoidNoRuleFired(t *testing.T) {
	t.Run("stop fallback", func(t *testing.T) {
		h := newTestRouter(t, policy.FallbackStop, nil)
		rec := postAvoid(t, h, avoidRequest{Sonar: noRuleHit})
		require.Equal(t, http.StatusOK, rec.Code)

		var resp avoidResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.True(t, resp.Fallback)
		assert.Zero(t, resp.Left)
		assert.Zero(t, resp.Right)
		assert.NotEmpty(t, resp.Unfired)
	})

	t.Run("hold behaves like stop", func(t *testing.T) {
		h := newTestRouter(t, policy.FallbackHold, nil)
		require.Equal(t, http.StatusOK, postAvoid(t, h, avoidRequest{Sonar: allClear}).Code)

		rec := postAvoid(t, h, avoidRequest{Sonar: noRuleHit})
		var resp avoidResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.True(t, resp.Fallback)
		assert.Zero(t, resp.Left)
	})

	t.Run("no fallback", func(t *testing.T) {
		h := newTestRouter(t, policy.FallbackNone, nil)
		rec := postAvoid(t, h, avoidRequest{Sonar: noRuleHit})
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

		var resp errorResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.NotEmpty(t, resp.Unfired)
	})
}

func TestAvoidBadInput(t *testing.T) {
	h := newTestRouter(t, policy.FallbackStop, nil)

	tests := []struct {
		name string
		body string
	}{
		{"not json", "{"},
		{"unknown field", `{"sonar":[1,1,1,1,1,1,1,1],"speed":2}`},
		{"too few readings", `{"sonar":[1,1,1]}`},
		{"out of range", `{"sonar":[1,1,1,1.5,1,1,1,1]}`},
		{"negative", `{"sonar":[1,1,1,-0.1,1,1,1,1]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/v1/avoid", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestRules(t *testing.T) {
	h := newTestRouter(t, policy.FallbackStop, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/rules", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp rulesResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Len(t, resp.Inputs, 8)
	assert.Equal(t, []string{policy.Velocidad, policy.AngularVel}, resp.Outputs)
	require.Len(t, resp.Rules, 32)
	assert.Contains(t, resp.Rules[0].Text, "sensor3")
	assert.Equal(t, 1.0, resp.Rules[0].Weight)
}

func TestMetricsEndpoint(t *testing.T) {
	h := newTestRouter(t, policy.FallbackStop, telemetry.NewMetrics())
	postAvoid(t, h, avoidRequest{Sonar: allClear})
	postAvoid(t, h, avoidRequest{Sonar: noRuleHit})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "avoid_inference_duration_seconds_count 2")
	assert.Contains(t, body, "avoid_fallback_commands_total 1")
	assert.Contains(t, body, `avoid_http_requests_total{code="200",route="/v1/avoid"} 2`)
}

func TestMetricsDisabled(t *testing.T) {
	h := newTestRouter(t, policy.FallbackStop, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRateLimit(t *testing.T) {
	sys, err := policy.Build(policy.DefaultParams())
	require.NoError(t, err)
	h := NewRouter(Options{
		System:    sys,
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		RateLimit: 1,
		Burst:     2,
	})

	codes := make([]int, 3)
	for i := range codes {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		codes[i] = rec.Code
	}
	assert.Equal(t, []int{200, 200, 429}, codes)
}

func TestRateLimiterKeysByClient(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	assert.True(t, rl.Allow("a"))
	assert.False(t, rl.Allow("a"))
	assert.True(t, rl.Allow("b"))
}
