// Package view binds the two shortener forms to the API client.
package view

import (
	"context"
	"sync"

	"github.com/serroba/shurl-web/internal/api"
	"go.uber.org/zap"
)

// API is the part of the shortener client the binder needs.
type API interface {
	Shorten(ctx context.Context, url string) (*api.ShortenResponse, error)
	Lookup(ctx context.Context, code string) (*api.LookupResponse, error)
}

// Binder owns one page's State and runs the actions that mutate it.
// Network calls run without the lock held; a response is applied only if
// no newer call of the same action was started meanwhile.
type Binder struct {
	mu         sync.Mutex
	state      State
	shortenGen uint64
	lookupGen  uint64
	api        API
	logger     *zap.Logger
}

// NewBinder creates a binder with an empty state.
func NewBinder(client API, logger *zap.Logger) *Binder {
	return &Binder{
		api:    client,
		logger: logger,
	}
}

// State returns a snapshot of the current view state.
func (b *Binder) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.state
}

// SetOriginalURL binds the shorten form input.
func (b *Binder) SetOriginalURL(url string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.state.OriginalURL = url
}

// SetShortURL binds the lookup form input.
func (b *Binder) SetShortURL(code string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.state.ShortURL = code
}

// OnShortenRequested shortens the bound original URL and writes the link,
// or the error message, into ShortURLView.
func (b *Binder) OnShortenRequested(ctx context.Context) Outcome {
	b.mu.Lock()
	b.shortenGen++
	gen := b.shortenGen
	input := b.state.OriginalURL
	b.mu.Unlock()

	resp, err := b.api.Shorten(ctx, input)

	b.mu.Lock()
	defer b.mu.Unlock()

	out := Outcome{Action: ActionShorten, Input: input, Sent: true}

	if gen != b.shortenGen {
		b.logger.Debug("dropping stale shorten response", zap.String("url", input))

		out.Stale = true
		out.State = b.state

		return out
	}

	if err != nil {
		b.logger.Warn("shorten failed", zap.String("url", input), zap.Error(err))

		b.state.ShortURLView = api.MessageOf(err)
		b.state.ShortenError = true
	} else {
		b.state.ShortURLView = resp.Link
		b.state.ShortenError = false
	}

	out.State = b.state

	return out
}

// OnLookupRequested resolves the bound short code and writes the original
// URL, or the error message, into OriginalURLView. An empty code is a no-op.
func (b *Binder) OnLookupRequested(ctx context.Context) Outcome {
	b.mu.Lock()
	input := b.state.ShortURL

	if input == "" {
		defer b.mu.Unlock()

		b.logger.Debug("skipping lookup of empty short url")

		return Outcome{Action: ActionLookup, State: b.state}
	}

	b.lookupGen++
	gen := b.lookupGen
	b.mu.Unlock()

	resp, err := b.api.Lookup(ctx, input)

	b.mu.Lock()
	defer b.mu.Unlock()

	out := Outcome{Action: ActionLookup, Input: input, Sent: true}

	if gen != b.lookupGen {
		b.logger.Debug("dropping stale lookup response", zap.String("code", input))

		out.Stale = true
		out.State = b.state

		return out
	}

	if err != nil {
		b.logger.Warn("lookup failed", zap.String("code", input), zap.Error(err))

		b.state.OriginalURLView = api.MessageOf(err)
		b.state.LookupError = true
	} else {
		b.state.OriginalURLView = resp.URL
		b.state.LookupError = false
	}

	out.State = b.state

	return out
}
