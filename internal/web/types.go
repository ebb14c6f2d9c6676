package web

import "github.com/serroba/shurl-web/internal/view"

// ViewResponse carries the session's view state.
type ViewResponse struct {
	Body view.State
}

// ShortenViewRequest binds the shorten input and runs the shorten action.
type ShortenViewRequest struct {
	Body struct {
		URL string `doc:"The URL to shorten" example:"http://www.example.com" json:"url" required:"false"`
	}
}

// LookupViewRequest binds the lookup input and runs the lookup action.
type LookupViewRequest struct {
	Body struct {
		Code string `doc:"The short code to resolve; empty skips the call" example:"abcdefg" json:"code" required:"false"`
	}
}
