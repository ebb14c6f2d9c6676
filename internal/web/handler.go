// Package web renders the shortener page and exposes the view actions over HTTP.
package web

import (
	"context"
	"errors"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/shurl-web/internal/activity"
	"github.com/serroba/shurl-web/internal/middleware"
	"github.com/serroba/shurl-web/internal/session"
	"github.com/serroba/shurl-web/internal/view"
	"go.uber.org/zap"
)

// EventPublisher publishes activity events.
type EventPublisher interface {
	Publish(ctx context.Context, event *activity.ActionEvent) error
}

// Handler runs view actions for the caller's session.
type Handler struct {
	sessions  *session.Manager
	publisher EventPublisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewHandler creates a new view handler.
func NewHandler(sessions *session.Manager, publisher EventPublisher, logger *zap.Logger) *Handler {
	return &Handler{
		sessions:  sessions,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// GetView returns the current view state of the session. Reading never
// creates a session: one that has not acted yet sees the empty state.
func (h *Handler) GetView(ctx context.Context, _ *struct{}) (*ViewResponse, error) {
	id, err := sessionID(ctx)
	if err != nil {
		return nil, err
	}

	binder, err := h.sessions.Get(id)
	if errors.Is(err, session.ErrNotFound) {
		return &ViewResponse{}, nil
	}

	if err != nil {
		return nil, err
	}

	return &ViewResponse{Body: binder.State()}, nil
}

// Shorten binds the URL and runs the shorten action.
func (h *Handler) Shorten(ctx context.Context, req *ShortenViewRequest) (*ViewResponse, error) {
	binder, err := h.binder(ctx)
	if err != nil {
		return nil, err
	}

	binder.SetOriginalURL(req.Body.URL)
	out := binder.OnShortenRequested(detached(ctx))
	h.publish(ctx, out)

	return &ViewResponse{Body: out.State}, nil
}

// Lookup binds the short code and runs the lookup action.
func (h *Handler) Lookup(ctx context.Context, req *LookupViewRequest) (*ViewResponse, error) {
	binder, err := h.binder(ctx)
	if err != nil {
		return nil, err
	}

	binder.SetShortURL(req.Body.Code)
	out := binder.OnLookupRequested(detached(ctx))
	h.publish(ctx, out)

	return &ViewResponse{Body: out.State}, nil
}

// detached keeps ctx values but not its cancellation: a browser that navigates
// away must not turn an answered upstream call into a transport error.
func detached(ctx context.Context) context.Context {
	return context.WithoutCancel(ctx)
}

func (h *Handler) binder(ctx context.Context) (*view.Binder, error) {
	id, err := sessionID(ctx)
	if err != nil {
		return nil, err
	}

	return h.sessions.Open(id), nil
}

func sessionID(ctx context.Context) (string, error) {
	id := middleware.SessionIDFromContext(ctx)
	if id == "" {
		return "", huma.Error400BadRequest("missing session")
	}

	return id, nil
}

// publish reports the outcome; failures are logged and never reach the view.
func (h *Handler) publish(ctx context.Context, out view.Outcome) {
	event := activity.NewActionEvent(
		middleware.SessionIDFromContext(ctx),
		out,
		activity.RequestMetaFromContext(ctx),
		h.now(),
	)

	if err := h.publisher.Publish(detached(ctx), event); err != nil {
		h.logger.Error("failed to publish activity event",
			zap.String("action", string(event.Action)),
			zap.String("sessionId", event.SessionID),
			zap.Error(err),
		)
	}
}
