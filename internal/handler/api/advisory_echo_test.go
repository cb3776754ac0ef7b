package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"FinAdvise/internal/domain/models"
	domrepo "FinAdvise/internal/domain/repository"
	"FinAdvise/internal/repository"
	"FinAdvise/internal/service/ratelimit"
	"FinAdvise/internal/usecase"
	xhttp "FinAdvise/pkg/http"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newTestServer(t *testing.T, opts ...xhttp.ServerOption) *echo.Echo {
	t.Helper()
	ds, err := repository.NewFixtureDataset()
	require.NoError(t, err)
	chain := usecase.NewFallbackChain(domrepo.FallbackSource(), ds, nil, nil)
	svc := usecase.NewAdvisoryService(chain, usecase.NewDriftCalculator(5),
		usecase.WithClock(func() time.Time { return time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC) }))

	opts = append([]xhttp.ServerOption{xhttp.WithMetrics(false, ""), xhttp.WithCORS(false)}, opts...)
	return xhttp.NewServer(NewAdvisoryEchoHandler(nil, svc), nil, opts...).Echo()
}

func call(t *testing.T, e *echo.Echo, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec, env
}

func TestAdvisoryEcho_ResolveClients(t *testing.T) {
	e := newTestServer(t)

	rec, env := call(t, e, http.MethodPost, "/api/tools/resolveClients", `{"query":"Smith"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))

	var res models.ResolveClientsResult
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.True(t, res.Success)
	assert.Equal(t, models.SourceMock, res.Source)
	assert.Equal(t, "2024-12-31", res.AsOfDate)
	require.Len(t, res.Results, 1)
	assert.Equal(t, "John Smith", res.Results[0].Name)
}

func TestAdvisoryEcho_ValidationRejected(t *testing.T) {
	e := newTestServer(t)

	tests := []struct {
		path, body, field, code string
	}{
		{"/api/tools/resolveClients", `{}`, "query", "ERR_REQUIRED"},
		{"/api/tools/resolveClients", `{"query":"x","status":"vip"}`, "status", "ERR_ONEOF"},
		{"/api/tools/resolveClients", `{"query":"x","limit":500}`, "limit", "ERR_LTE"},
		{"/api/tools/aggregateHoldings", `{"accountId":"acc-001","groupBy":"custodian"}`, "groupBy", "ERR_ONEOF"},
		{"/api/tools/aggregateHoldings", `{"accountId":"   "}`, "accountId", "ERR_NOTBLANK"},
		{"/api/tools/getClientProfile", `{"clientId":""}`, "clientId", "ERR_REQUIRED"},
		{"/api/tools/computeAllocationDrift", `{}`, "clientId", "ERR_REQUIRED"},
		{"/api/tools/getPortfolioPerformance", `{}`, "clientId", "ERR_REQUIRED"},
	}
	for _, tt := range tests {
		t.Run(tt.path+" "+tt.field, func(t *testing.T) {
			rec, env := call(t, e, http.MethodPost, tt.path, tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)

			var verr []xhttp.ValidationError
			require.NoError(t, json.Unmarshal(env.Data, &verr))
			require.NotEmpty(t, verr)
			assert.Equal(t, tt.field, verr[0].Field)
			assert.Equal(t, tt.code, verr[0].Code)
		})
	}
}

func TestAdvisoryEcho_NotFoundIsEnvelope(t *testing.T) {
	e := newTestServer(t)

	rec, env := call(t, e, http.MethodPost, "/api/tools/aggregateHoldings", `{"accountId":"acc-404"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var res models.HoldingsResult
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.False(t, res.Success)
	assert.Equal(t, `No holdings found for account "acc-404"`, res.Error)
	assert.Nil(t, res.Summary)
}

func TestAdvisoryEcho_DefaultsApplied(t *testing.T) {
	e := newTestServer(t)

	_, env := call(t, e, http.MethodPost, "/api/tools/getPortfolioPerformance", `{"clientId":"client-002"}`)
	var res models.PerformanceResult
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.True(t, res.Success)
	assert.Equal(t, "S&P 500", res.Benchmark)
	require.NotNil(t, res.Summary)
	assert.Equal(t, 7.7, res.Summary.YTDExcess)
}

func TestAdvisoryEcho_Catalog(t *testing.T) {
	e := newTestServer(t)

	rec, env := call(t, e, http.MethodGet, "/api/tools", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var list struct {
		Rows  []models.ToolDefinition `json:"rows"`
		Total int64                   `json:"total"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.EqualValues(t, 5, list.Total)

	routed := map[string]bool{}
	for _, r := range e.Routes() {
		routed[r.Method+" "+r.Path] = true
	}
	for _, tool := range list.Rows {
		assert.True(t, routed[tool.Method+" "+tool.Path], "catalog entry %s has no route", tool.Name)
		assert.NotEmpty(t, tool.Description)
	}
}

func TestAdvisoryEcho_RateLimited(t *testing.T) {
	e := newTestServer(t, xhttp.WithRateLimiter(ratelimit.New(1, 0.001)))

	rec, _ := call(t, e, http.MethodPost, "/api/tools/resolveClients", `{"query":"Smith"}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, env := call(t, e, http.MethodPost, "/api/tools/resolveClients", `{"query":"Smith"}`)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, http.StatusTooManyRequests, env.Status)
}

func TestHealthz(t *testing.T) {
	e := newTestServer(t, xhttp.WithHealth(func(_ context.Context) map[string]string {
		return map[string]string{"store": "fallback"}
	}))

	rec, env := call(t, e, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var checks map[string]string
	require.NoError(t, json.Unmarshal(env.Data, &checks))
	assert.Equal(t, "ok", checks["service"])
	assert.Equal(t, "fallback", checks["store"])
}
