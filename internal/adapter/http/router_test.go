package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/finpipe/statement-ledger/internal/adapter/http/handler"
	apimiddleware "github.com/finpipe/statement-ledger/internal/adapter/http/middleware"
	"github.com/finpipe/statement-ledger/internal/usecase"
)

func TestNewRouter_HealthEndpointAvailable(t *testing.T) {
	router := NewRouter(newRouterConfig())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected /health to return 200, got %d", rec.Code)
	}
}

func TestNewRouter_RateLimiterBlocksExcessAsks(t *testing.T) {
	rl := apimiddleware.NewRateLimiter(1, 1)
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.RateLimiter = rl
	}))

	ask := func() int {
		req := httptest.NewRequest(http.MethodPost, "/ask", strings.NewReader(`{"question":"total?"}`))
		req.RemoteAddr = "1.2.3.4:1234"
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec.Code
	}

	if code := ask(); code != http.StatusOK {
		t.Fatalf("expected first request to succeed, got %d", code)
	}
	if code := ask(); code != http.StatusTooManyRequests {
		t.Fatalf("expected second request to be throttled, got %d", code)
	}

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.RemoteAddr = "1.2.3.4:1234"
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected health to bypass the ask limiter, got %d", rec.Code)
	}
}

func TestNewRouter_CORSOnAsk(t *testing.T) {
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.CORSAllowedOrigins = []string{"https://dash.example"}
	}))

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/ask", nil)
	req.Header.Set("Origin", "https://dash.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://dash.example" {
		t.Fatalf("expected CORS origin header, got %q", got)
	}
}

func TestNewRouter_RegistersKeyRoutes(t *testing.T) {
	router := NewRouter(newRouterConfig())

	chiRoutes, ok := router.(chi.Router)
	if !ok {
		t.Fatal("router does not implement chi.Routes")
	}

	seen := map[string]bool{}
	if err := chi.Walk(chiRoutes, func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		seen[method+" "+route] = true
		return nil
	}); err != nil {
		t.Fatalf("walk failed: %v", err)
	}

	expected := []string{
		"GET /health",
		"GET /ready",
		"GET /",
		"POST /",
		"GET /analyst",
		"POST /ask",
		"POST /api/v1/ask",
		"POST /api/v1/statements",
		"POST /api/v1/transform",
	}

	for _, route := range expected {
		if !seen[route] {
			t.Fatalf("expected route %s to be registered", route)
		}
	}
}

func TestNewRouter_MetricsEndpoint(t *testing.T) {
	router := NewRouter(newRouterConfig())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "http_requests_in_flight") {
		t.Fatalf("expected prometheus output, got %d", rec.Code)
	}
}

func newRouterConfig(opts ...func(*RouterConfig)) RouterConfig {
	uploadHandler := handler.NewUploadHandler(stubIngester{}, stubTransformer{}, &stubFlashStore{}, handler.UploadConfig{Dir: "uploads"}, zerolog.Nop())
	analystHandler := handler.NewAnalystHandler(stubAnalyst{}, zerolog.Nop())

	cfg := RouterConfig{
		HealthHandler:      &handler.HealthHandler{},
		UploadHandler:      uploadHandler,
		AnalystHandler:     analystHandler,
		CORSAllowedOrigins: []string{"*"},
		Logger:             zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	return cfg
}

type stubIngester struct{}

func (stubIngester) CheckConnection(ctx context.Context) error { return nil }

func (stubIngester) IngestFile(ctx context.Context, path, sourceFile string) (*usecase.IngestResult, error) {
	return &usecase.IngestResult{SourceFile: sourceFile}, nil
}

type stubTransformer struct{}

func (stubTransformer) Run(ctx context.Context) (*usecase.ClassifyResult, error) {
	return &usecase.ClassifyResult{}, nil
}

type stubAnalyst struct{}

func (stubAnalyst) Ask(ctx context.Context, question string) (*usecase.Answer, error) {
	return &usecase.Answer{}, nil
}

type stubFlashStore struct{}

func (*stubFlashStore) Push(ctx context.Context, session string, flashes []usecase.Flash) error {
	return nil
}

func (*stubFlashStore) Pop(ctx context.Context, session string) ([]usecase.Flash, error) {
	return nil, nil
}
