package app

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"distresscli/internal/config"
	apperrors "distresscli/internal/errors"
	"distresscli/internal/infrastructure"
	"distresscli/internal/shared/testutil"
	api "distresscli/pkg/contracts/api/v1"
	"distresscli/pkg/contracts/domain"
)

func newTestApp(t *testing.T, mutate func(*config.Config)) *Application {
	t.Helper()

	cfg := config.Default()
	cfg.Server.RateLimit.Enabled = false
	cfg.Telemetry.MetricsEnabled = true
	if mutate != nil {
		mutate(cfg)
	}

	logger, _ := testutil.NewTestLogger(t)
	providers, err := infrastructure.InitializeOTel(cfg.Telemetry, io.Discard, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = providers.Shutdown(context.Background()) })

	app, err := NewApplication(cfg, logger, providers)
	require.NoError(t, err)
	return app
}

func do(t *testing.T, app *Application, method, path, contentType string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func TestNewApplicationRequiresDependencies(t *testing.T) {
	_, err := NewApplication(nil, nil, &infrastructure.OTelProviders{})
	assert.Error(t, err)

	_, err = NewApplication(config.Default(), nil, nil)
	assert.Error(t, err)
}

func TestHealthz(t *testing.T) {
	app := newTestApp(t, nil)

	rec := do(t, app, http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	var health api.HealthResponse
	decode(t, rec, &health)
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, "2024-06-30", health.AssessmentDate)
	require.Len(t, health.Quarters, 8)
	assert.Equal(t, "Q3 2022", health.Quarters[0])
	assert.Equal(t, "Q2 2024", health.Quarters[7])
}

func TestCalendarEndpoint(t *testing.T) {
	app := newTestApp(t, nil)

	rec := do(t, app, http.MethodGet, "/api/v1/distress/calendar", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		AssessmentDate string `json:"assessment_date"`
		Quarters       []struct {
			Label     string `json:"label"`
			PeriodEnd string `json:"period_end"`
		} `json:"quarters"`
	}
	decode(t, rec, &body)
	assert.Equal(t, "2024-06-30", body.AssessmentDate)
	require.Len(t, body.Quarters, 8)
	assert.Equal(t, "2022-09-30", body.Quarters[0].PeriodEnd)
}

func TestScoreEndpoint(t *testing.T) {
	app := newTestApp(t, nil)
	fixtures := testutil.NewStatementFixtures(t.TempDir())

	t.Run("scored", func(t *testing.T) {
		rec := do(t, app, http.MethodPost, "/api/v1/distress/score", "application/json", fixtures.SteadySet("TASC"))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var report domain.DistressReport
		decode(t, rec, &report)
		assert.Equal(t, "TASC", report.Ticker)
		assert.Equal(t, domain.ScoreStatusScored, report.Status)
		assert.InDelta(t, testutil.SteadyScore, report.DistressScore, 0.05)
		assert.Equal(t, "2024-06-30", report.AssessmentDate.Format("2006-01-02"))
		require.NotNil(t, report.Diagnostics)
		assert.Equal(t, 8, report.Diagnostics.QuartersUsed)
	})

	t.Run("insufficient data is neutral", func(t *testing.T) {
		rec := do(t, app, http.MethodPost, "/api/v1/distress/score", "application/json", fixtures.EmptySet("BMFI"))
		require.Equal(t, http.StatusOK, rec.Code)

		var report domain.DistressReport
		decode(t, rec, &report)
		assert.Equal(t, domain.ScoreStatusInsufficient, report.Status)
		assert.Equal(t, 50.0, report.DistressScore)
		assert.NotEmpty(t, report.Reason)
	})

	t.Run("invalid json", func(t *testing.T) {
		rec := do(t, app, http.MethodPost, "/api/v1/distress/score", "application/json", `{"ticker":`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("validation failure lists fields", func(t *testing.T) {
		set := fixtures.SteadySet("not a ticker!")
		set.Income[0].PeriodEnding = ""

		rec := do(t, app, http.MethodPost, "/api/v1/distress/score", "application/json", set)
		require.Equal(t, http.StatusBadRequest, rec.Code)

		var problem struct {
			Type   string `json:"type"`
			Errors []struct {
				Field string `json:"field"`
			} `json:"errors"`
		}
		decode(t, rec, &problem)
		assert.Equal(t, apperrors.TypeValidation, problem.Type)

		fields := make([]string, 0, len(problem.Errors))
		for _, e := range problem.Errors {
			fields = append(fields, e.Field)
		}
		assert.Contains(t, fields, "ticker")
		assert.Contains(t, fields, "income[0].period_ending")
	})

	t.Run("wrong content type", func(t *testing.T) {
		rec := do(t, app, http.MethodPost, "/api/v1/distress/score", "text/plain", "{}")
		assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
	})
}

func TestBatchEndpoint(t *testing.T) {
	fixtures := testutil.NewStatementFixtures(t.TempDir())

	t.Run("reports keep request order", func(t *testing.T) {
		app := newTestApp(t, nil)
		req := api.BatchScoreRequest{Sets: []domain.StatementSet{
			fixtures.EmptySet("ZZZ"),
			fixtures.SteadySet("AAA"),
			fixtures.SteadySet("MMM"),
		}}

		rec := do(t, app, http.MethodPost, "/api/v1/distress/batch", "application/json", req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp api.BatchScoreResponse
		decode(t, rec, &resp)
		require.Len(t, resp.Reports, 3)
		assert.Equal(t, "ZZZ", resp.Reports[0].Ticker)
		assert.Equal(t, "AAA", resp.Reports[1].Ticker)
		assert.Equal(t, "MMM", resp.Reports[2].Ticker)
		assert.Equal(t, 3, resp.Summary.Total)
		assert.Equal(t, 2, resp.Summary.Scored)
		assert.Equal(t, 1, resp.Summary.Insufficient)
		assert.InDelta(t, (50+2*testutil.SteadyScore)/3, resp.Summary.MeanScore, 0.05)
	})

	t.Run("empty batch", func(t *testing.T) {
		app := newTestApp(t, nil)
		rec := do(t, app, http.MethodPost, "/api/v1/distress/batch", "application/json", api.BatchScoreRequest{})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("batch too large", func(t *testing.T) {
		app := newTestApp(t, func(c *config.Config) { c.Server.MaxBatchSize = 1 })
		req := api.BatchScoreRequest{Sets: []domain.StatementSet{
			fixtures.SteadySet("AAA"),
			fixtures.SteadySet("BBB"),
		}}

		rec := do(t, app, http.MethodPost, "/api/v1/distress/batch", "application/json", req)
		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	})

	t.Run("body over limit", func(t *testing.T) {
		app := newTestApp(t, func(c *config.Config) { c.Server.MaxBodyBytes = 64 })
		req := api.BatchScoreRequest{Sets: []domain.StatementSet{fixtures.SteadySet("AAA")}}

		rec := do(t, app, http.MethodPost, "/api/v1/distress/batch", "application/json", req)
		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	})
}

func TestRouterProblems(t *testing.T) {
	app := newTestApp(t, nil)

	tests := []struct {
		name       string
		method     string
		path       string
		wantStatus int
		wantType   string
	}{
		{"unknown route", http.MethodGet, "/nope", http.StatusNotFound, apperrors.TypeNotFound},
		{"wrong method", http.MethodGet, "/api/v1/distress/score", http.StatusMethodNotAllowed, apperrors.TypeMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, app, tt.method, tt.path, "", nil)
			require.Equal(t, tt.wantStatus, rec.Code)

			var problem map[string]interface{}
			decode(t, rec, &problem)
			assert.Equal(t, tt.wantType, problem["type"])
			assert.NotEmpty(t, problem["trace_id"])
		})
	}
}

func TestRateLimitedRouter(t *testing.T) {
	app := newTestApp(t, func(c *config.Config) {
		c.Server.RateLimit.Enabled = true
		c.Server.RateLimit.RPS = 0.001
		c.Server.RateLimit.Burst = 1
	})

	assert.Equal(t, http.StatusOK, do(t, app, http.MethodGet, "/healthz", "", nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, do(t, app, http.MethodGet, "/healthz", "", nil).Code)
}

func TestMetricsEndpoint(t *testing.T) {
	app := newTestApp(t, nil)
	fixtures := testutil.NewStatementFixtures(t.TempDir())

	rec := do(t, app, http.MethodPost, "/api/v1/distress/score", "application/json", fixtures.SteadySet("TASC"))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, app, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "distress_scoring_runs_total")
	assert.Contains(t, body, "http_requests_total")
}

func TestMetricsDisabled(t *testing.T) {
	app := newTestApp(t, func(c *config.Config) { c.Telemetry.MetricsEnabled = false })

	rec := do(t, app, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStartStop(t *testing.T) {
	app := newTestApp(t, func(c *config.Config) { c.Server.Port = 0 })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, app.Start(ctx, cancel))
	require.NoError(t, app.Stop(ctx))
}
