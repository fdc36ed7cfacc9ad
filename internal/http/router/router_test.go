package router

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	apphttp "koppara_backend/internal/http"
	"koppara_backend/platform/logger"

	"github.com/gin-gonic/gin"
)

type testConfig struct {
	allowAll bool
	origins  []string
}

func (c testConfig) GetHTTPAddr() string        { return ":0" }
func (c testConfig) GetCORSAllowAll() bool      { return c.allowAll }
func (c testConfig) GetCORSOrigins() []string   { return c.origins }
func (c testConfig) GetCORSAllowCreds() bool    { return !c.allowAll }
func (c testConfig) GetJWTAccessSecret() string { return "test-secret" }

type fakeHealth struct{ err error }

func (f fakeHealth) Ping(context.Context) error { return f.err }

type pingModule struct{}

func (pingModule) Name() string { return "ping" }

func (pingModule) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.V1.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	ctx.Protected.GET("/secret", func(c *gin.Context) { c.Status(http.StatusOK) })
	ctx.Admin.GET("/panel", func(c *gin.Context) { c.Status(http.StatusOK) })
}

func init() {
	gin.SetMode(gin.TestMode)
}

func newEngine(health apphttp.HealthChecker) *gin.Engine {
	return New(&apphttp.App{
		Config:  testConfig{origins: []string{"https://app.example.com"}},
		Logger:  logger.New("test"),
		Health:  health,
		Modules: []apphttp.Module{pingModule{}},
	})
}

func serve(engine *gin.Engine, method, path string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	if rec := serve(newEngine(fakeHealth{}), http.MethodGet, "/api/health", nil); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec := serve(newEngine(fakeHealth{err: errors.New("down")}), http.MethodGet, "/api/health", nil); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func TestModuleGroups(t *testing.T) {
	engine := newEngine(fakeHealth{})

	rec := serve(engine, http.MethodGet, "/api/v1/ping", nil)
	if rec.Code != http.StatusOK || rec.Body.String() != "pong" {
		t.Fatalf("expected public route, got %d %q", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Fatalf("expected a request id header")
	}
	if rec := serve(engine, http.MethodGet, "/api/v1/secret", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 on protected route, got %d", rec.Code)
	}
	if rec := serve(engine, http.MethodGet, "/api/v1/admin/panel", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 on admin route, got %d", rec.Code)
	}
}

func TestRequestIDIsPropagated(t *testing.T) {
	rec := serve(newEngine(nil), http.MethodGet, "/api/v1/ping", http.Header{"X-Request-Id": {"abc-123"}})
	if got := rec.Header().Get("X-Request-ID"); got != "abc-123" {
		t.Fatalf("expected propagated request id, got %q", got)
	}
}

func TestCORSAllowedOrigin(t *testing.T) {
	rec := serve(newEngine(nil), http.MethodGet, "/api/v1/ping", http.Header{"Origin": {"https://app.example.com"}})
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example.com" {
		t.Fatalf("expected allowed origin header, got %q", got)
	}
}
