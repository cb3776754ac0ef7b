package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	applogger "FinAdvise/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type routes func(g *echo.Group)

func (r routes) RegisterRoutes(g *echo.Group) { r(g) }

type errorEnvelope struct {
	Status  int        `json:"status"`
	Message string     `json:"message"`
	Data    []AppError `json:"data"`
}

func serve(t *testing.T, method, path string) (*httptest.ResponseRecorder, errorEnvelope) {
	t.Helper()
	h := routes(func(g *echo.Group) {
		g.GET("/boom", func(c echo.Context) error { panic("boom") })
		g.GET("/missing", func(c echo.Context) error {
			return NotFoundError("client not found")
		})
		g.GET("/opaque", func(c echo.Context) error {
			return errors.New("dial tcp 10.0.0.1:5432: connection refused")
		})
	})
	e := NewServer(h, applogger.Nop(), WithMetrics(false, ""), WithCORS(false)).Echo()

	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var env errorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec, env
}

func TestErrorHandler(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		status int
		code   string
	}{
		{name: "app error", path: "/api/missing", status: http.StatusNotFound, code: "ERR_NOT_FOUND"},
		{name: "unknown route", path: "/api/nope", status: http.StatusNotFound, code: "ERR_NOT_FOUND"},
		{name: "panic", path: "/api/boom", status: http.StatusInternalServerError, code: "ERR_INTERNAL"},
		{name: "plain error", path: "/api/opaque", status: http.StatusInternalServerError, code: "ERR_INTERNAL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, env := serve(t, http.MethodGet, tt.path)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.status, env.Status)
			require.Len(t, env.Data, 1)
			assert.Equal(t, tt.code, env.Data[0].Code)
			assert.NotContains(t, rec.Body.String(), "10.0.0.1")
		})
	}
}

func TestErrorHandler_WrongMethod(t *testing.T) {
	// Top-level routes answer 405; the /api group's catch-all answers 404.
	rec, env := serve(t, http.MethodPost, "/healthz")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	require.Len(t, env.Data, 1)
	assert.Equal(t, "ERR_HTTP", env.Data[0].Code)

	rec, env = serve(t, http.MethodPost, "/api/missing")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	require.Len(t, env.Data, 1)
	assert.Equal(t, "ERR_NOT_FOUND", env.Data[0].Code)
}
