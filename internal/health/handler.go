package health

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
	"github.com/redis/go-redis/v9"
)

// Checker defines the interface for checking a dependency.
type Checker interface {
	Ping(ctx context.Context) error
}

// RedisChecker adapts redis.Client to Checker interface. It owns the client.
type RedisChecker struct {
	client *redis.Client
}

// NewRedisChecker creates a new Redis health checker.
func NewRedisChecker(client *redis.Client) *RedisChecker {
	return &RedisChecker{client: client}
}

// Ping checks Redis connectivity.
func (r *RedisChecker) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Shutdown closes the client.
func (r *RedisChecker) Shutdown() error {
	return r.client.Close()
}

// Handler handles health check operations.
type Handler struct {
	api    Checker
	events Checker
}

// NewHandler creates a new health handler. events may be nil when activity
// events stay in process.
func NewHandler(api Checker, events Checker) *Handler {
	return &Handler{api: api, events: events}
}

// Response is the response for health check endpoint.
type Response struct {
	Body struct {
		Status string `json:"status"`
		API    string `json:"api"`
		Events string `json:"events"`
	}
}

// Check reports the state of the shortener API and the event transport.
func (h *Handler) Check(ctx context.Context, _ *struct{}) (*Response, error) {
	resp := &Response{}
	resp.Body.Status = "ok"
	resp.Body.API = probe(ctx, h.api)
	resp.Body.Events = "in-process"

	if h.events != nil {
		resp.Body.Events = probe(ctx, h.events)
	}

	if resp.Body.API == "unhealthy" || resp.Body.Events == "unhealthy" {
		resp.Body.Status = "degraded"
	}

	return resp, nil
}

func probe(ctx context.Context, c Checker) string {
	if err := c.Ping(ctx); err != nil {
		return "unhealthy"
	}

	return "healthy"
}

// RegisterRoutes registers health check routes.
func RegisterRoutes(api huma.API, h *Handler) {
	huma.Get(api, "/health", h.Check)
}
