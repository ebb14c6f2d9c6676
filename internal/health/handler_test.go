package health_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/serroba/shurl-web/internal/health"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockChecker struct {
	err error
}

func (m *mockChecker) Ping(_ context.Context) error {
	return m.err
}

func TestNewHandler(t *testing.T) {
	handler := health.NewHandler(&mockChecker{}, nil)

	assert.NotNil(t, handler)
}

func TestHandler_Check(t *testing.T) {
	t.Run("returns ok when everything is healthy", func(t *testing.T) {
		handler := health.NewHandler(&mockChecker{}, &mockChecker{})

		resp, err := handler.Check(context.Background(), nil)

		require.NoError(t, err)
		assert.Equal(t, "ok", resp.Body.Status)
		assert.Equal(t, "healthy", resp.Body.API)
		assert.Equal(t, "healthy", resp.Body.Events)
	})

	t.Run("reports in-process events without a checker", func(t *testing.T) {
		handler := health.NewHandler(&mockChecker{}, nil)

		resp, err := handler.Check(context.Background(), nil)

		require.NoError(t, err)
		assert.Equal(t, "ok", resp.Body.Status)
		assert.Equal(t, "in-process", resp.Body.Events)
	})

	t.Run("returns degraded when the api is unreachable", func(t *testing.T) {
		handler := health.NewHandler(&mockChecker{err: errors.New("connection refused")}, nil)

		resp, err := handler.Check(context.Background(), nil)

		require.NoError(t, err)
		assert.Equal(t, "degraded", resp.Body.Status)
		assert.Equal(t, "unhealthy", resp.Body.API)
	})

	t.Run("returns degraded when redis is unhealthy", func(t *testing.T) {
		handler := health.NewHandler(&mockChecker{}, &mockChecker{err: errors.New("connection refused")})

		resp, err := handler.Check(context.Background(), nil)

		require.NoError(t, err)
		assert.Equal(t, "degraded", resp.Body.Status)
		assert.Equal(t, "unhealthy", resp.Body.Events)
	})
}

func TestRegisterRoutes(t *testing.T) {
	router := chi.NewMux()
	api := humachi.New(router, huma.DefaultConfig("Test", "1.0.0"))
	health.RegisterRoutes(api, health.NewHandler(&mockChecker{}, nil))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestRedisChecker(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available at %s: %v", addr, err)
	}

	t.Run("NewRedisChecker creates checker", func(t *testing.T) {
		checker := health.NewRedisChecker(client)

		assert.NotNil(t, checker)
	})

	t.Run("Ping returns nil when redis is available", func(t *testing.T) {
		checker := health.NewRedisChecker(client)

		err := checker.Ping(context.Background())

		assert.NoError(t, err)
	})
}

func TestRedisChecker_Shutdown(t *testing.T) {
	checker := health.NewRedisChecker(redis.NewClient(&redis.Options{Addr: "localhost:1"}))

	require.NoError(t, checker.Shutdown())

	assert.ErrorIs(t, checker.Ping(context.Background()), redis.ErrClosed)
}
