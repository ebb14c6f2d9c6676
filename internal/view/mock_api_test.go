package view_test

import (
	"context"
	"errors"
	"sync"

	"github.com/serroba/shurl-web/internal/api"
)

var errMock = errors.New("mock error")

// mockAPI is a test double for view.API that records calls.
type mockAPI struct {
	mu          sync.Mutex
	shortenResp *api.ShortenResponse
	shortenErr  error
	lookupResp  *api.LookupResponse
	lookupErr   error
	shortenArgs []string
	lookupArgs  []string
}

func (m *mockAPI) Shorten(_ context.Context, url string) (*api.ShortenResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.shortenArgs = append(m.shortenArgs, url)

	return m.shortenResp, m.shortenErr
}

func (m *mockAPI) Lookup(_ context.Context, code string) (*api.LookupResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lookupArgs = append(m.lookupArgs, code)

	return m.lookupResp, m.lookupErr
}

// gatedAPI blocks each call until its response is released, so tests can
// finish calls out of order.
type gatedAPI struct {
	started chan string
	release map[string]chan struct{}
}

func newGatedAPI(inputs ...string) *gatedAPI {
	g := &gatedAPI{
		started: make(chan string, len(inputs)),
		release: make(map[string]chan struct{}, len(inputs)),
	}

	for _, in := range inputs {
		g.release[in] = make(chan struct{})
	}

	return g
}

func (g *gatedAPI) Shorten(_ context.Context, url string) (*api.ShortenResponse, error) {
	g.started <- url
	<-g.release[url]

	return &api.ShortenResponse{Link: "link-for-" + url}, nil
}

func (g *gatedAPI) Lookup(_ context.Context, code string) (*api.LookupResponse, error) {
	g.started <- code
	<-g.release[code]

	return &api.LookupResponse{URL: "url-for-" + code}, nil
}
