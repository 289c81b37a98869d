package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidtube/backend/internal/config"
	"github.com/vidtube/backend/internal/handlers"
)

type fakePool struct{}

func (fakePool) Acquire(context.Context) (*pgxpool.Conn, error) {
	return nil, errors.New("not implemented")
}

func (fakePool) Ping(context.Context) error { return nil }

func (fakePool) Close() {}

func testConfig(store string) config.Config {
	return config.Config{
		Store:          store,
		CORSOrigin:     "*",
		RequestTimeout: time.Second,
		Auth: config.AuthConfig{
			AccessSecret:  "access",
			AccessTTL:     time.Minute,
			RefreshSecret: "refresh",
			RefreshTTL:    time.Hour,
		},
		ObjectStore:   config.ObjectStoreConfig{Bucket: "test-bucket", Endpoint: "http://localhost:9000", Region: "us-east-1"},
		RateLimit:     config.RateLimitConfig{Requests: 10, Window: time.Minute, Burst: 5},
		Janitor:       config.JanitorConfig{Workers: 1, QueueSize: 4},
		FFProbePath:   "ffprobe",
		StatsCacheTTL: time.Minute,
	}
}

func TestBuildDependencies(t *testing.T) {
	t.Setenv("AWS_ACCESS_KEY_ID", "test")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "test")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	deps, cleanup, err := buildDependencies(context.Background(), fakePool{}, testConfig("postgres"), logger)
	require.NoError(t, err)
	require.NotNil(t, cleanup)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		assert.NoError(t, cleanup(ctx))
	}()

	require.NotNil(t, deps.Services)
	assert.NotNil(t, deps.Services.Users)
	assert.NotNil(t, deps.Services.Videos)
	assert.NotNil(t, deps.Tokens)
	assert.NotNil(t, deps.Accounts)
	assert.NotNil(t, deps.Limiter)
	assert.NotNil(t, deps.Metrics)
	require.NotNil(t, deps.Health, "postgres pool backs the healthcheck")
	assert.NoError(t, deps.Health.Ping(context.Background()))
}

func TestBuildDependenciesRequiresPoolForPostgres(t *testing.T) {
	_, _, err := buildDependencies(context.Background(), nil, testConfig("postgres"), slog.Default())
	assert.Error(t, err)
}

func TestMemoryStoreServesHealthcheck(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	deps, cleanup, err := buildDependencies(context.Background(), nil, testConfig("memory"), logger)
	require.NoError(t, err)
	defer func() { _ = cleanup(context.Background()) }()

	router := handlers.NewRouter(deps)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/healthcheck", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "vidtube_http_requests_total")
}
