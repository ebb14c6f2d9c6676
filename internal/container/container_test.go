package container_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/serroba/shurl-web/internal/activity"
	"github.com/serroba/shurl-web/internal/api"
	"github.com/serroba/shurl-web/internal/container"
	"github.com/serroba/shurl-web/internal/fakeapi"
	"github.com/serroba/shurl-web/internal/health"
	"github.com/serroba/shurl-web/internal/messaging"
	"github.com/serroba/shurl-web/internal/view"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func newInjector(t *testing.T, apiURL string) (*do.Injector, *observer.ObservedLogs) {
	t.Helper()

	core, logs := observer.New(zap.InfoLevel)

	injector := do.New()
	do.ProvideValue(injector, &container.Options{APIURL: apiURL, SessionTTL: 30})
	do.ProvideValue(injector, zap.New(core))
	container.RedisPackage(injector)
	container.PubSubPackage(injector)
	container.ConsumerGroupPackage(injector)
	container.APIPackage(injector)
	container.SessionPackage(injector)
	container.HTTPPackage(injector)

	t.Cleanup(func() { _ = injector.Shutdown() })

	return injector, logs
}

func TestOptions_InProcessEvents(t *testing.T) {
	assert.True(t, (&container.Options{}).InProcessEvents())
	assert.False(t, (&container.Options{RedisAddr: "localhost:6379"}).InProcessEvents())
}

func TestLoggerPackage(t *testing.T) {
	for _, format := range []string{"console", "json"} {
		t.Run(format, func(t *testing.T) {
			injector := do.New()
			do.ProvideValue(injector, &container.Options{LogFormat: format})
			container.LoggerPackage(injector)

			logger, err := do.Invoke[*zap.Logger](injector)

			require.NoError(t, err)
			assert.NotNil(t, logger)
		})
	}
}

func TestAPIPackage(t *testing.T) {
	injector := do.New()
	do.ProvideValue(injector, &container.Options{APIURL: "http://api.internal:8080/"})
	container.APIPackage(injector)

	client := do.MustInvoke[*api.Client](injector)

	assert.Equal(t, "http://api.internal:8080", client.BaseURL())
}

func TestRedisPackage_RequiresAddress(t *testing.T) {
	injector := do.New()
	do.ProvideValue(injector, &container.Options{})
	container.RedisPackage(injector)

	_, err := do.Invoke[*redis.Options](injector)

	assert.Error(t, err)
}

func TestWiring_InProcess(t *testing.T) {
	_, upstream := fakeapi.Start()
	defer upstream.Close()

	injector, logs := newInjector(t, upstream.URL)

	router := do.MustInvoke[*chi.Mux](injector)
	_ = do.MustInvoke[huma.API](injector)

	group := do.MustInvoke[*messaging.ConsumerGroup](injector)
	require.NoError(t, group.Start(context.Background()))

	server := httptest.NewServer(router)
	defer server.Close()

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	browser := &http.Client{Jar: jar}

	t.Run("health reports the api and in-process events", func(t *testing.T) {
		resp, err := browser.Get(server.URL + "/health")
		require.NoError(t, err)
		defer resp.Body.Close()

		var body struct {
			Status string `json:"status"`
			API    string `json:"api"`
			Events string `json:"events"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))

		assert.Equal(t, "ok", body.Status)
		assert.Equal(t, "healthy", body.API)
		assert.Equal(t, "in-process", body.Events)
	})

	t.Run("shorten reaches the api and the activity log", func(t *testing.T) {
		resp, err := browser.Post(server.URL+"/view/shorten", "application/json",
			strings.NewReader(`{"url":"http://www.example.com"}`))
		require.NoError(t, err)
		defer resp.Body.Close()

		var state view.State
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&state))

		assert.Len(t, state.ShortURLView, fakeapi.CodeLength)
		assert.False(t, state.ShortenError)

		assert.Eventually(t, func() bool {
			return logs.FilterMessage("view action").Len() == 1
		}, time.Second, 10*time.Millisecond)

		entry := logs.FilterMessage("view action").All()[0]
		assert.Equal(t, "shorten", entry.ContextMap()["action"])
	})
}

func TestShutdown_RedisMode(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available at %s: %v", addr, err)
	}

	_, upstream := fakeapi.Start()
	defer upstream.Close()

	injector := do.New()
	do.ProvideValue(injector, &container.Options{APIURL: upstream.URL, RedisAddr: addr, SessionTTL: 30})
	do.ProvideValue(injector, zap.NewNop())
	container.RedisPackage(injector)
	container.PubSubPackage(injector)
	container.ConsumerGroupPackage(injector)
	container.APIPackage(injector)
	container.SessionPackage(injector)
	container.HTTPPackage(injector)

	_ = do.MustInvoke[huma.API](injector)

	checker := do.MustInvoke[*health.RedisChecker](injector)
	require.NoError(t, checker.Ping(ctx))

	group := do.MustInvoke[*messaging.ConsumerGroup](injector)
	require.NoError(t, group.Start(context.Background()))

	publisher := do.MustInvoke[*activity.Publisher](injector)
	require.NoError(t, publisher.Publish(context.Background(),
		&activity.ActionEvent{SessionID: "s1", Action: view.ActionShorten, OccurredAt: time.Now()}))

	assert.NoError(t, injector.Shutdown())
}
