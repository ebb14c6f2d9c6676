// Package fakeapi is an in-memory stand-in for the external shortener API.
// It answers the same routes and error messages as the real service.
package fakeapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/jaevor/go-nanoid"
)

// CodeLength is the length of every short code the API hands out.
const CodeLength = 7

var validURL = regexp.MustCompile(`[-a-zA-Z0-9@:%._\+~#=]{1,256}\.[a-zA-Z0-9()]{1,6}\b([-a-zA-Z0-9()@:%_\+.~#?&\/=]*)?`)

// Server is an in-memory shortener API.
type Server struct {
	mu           sync.RWMutex
	urls         map[string]string // code -> original url
	generateCode func() string
	hits         map[string]int // route pattern -> request count
	failWith     int
}

// New creates an empty fake API.
func New() *Server {
	gen, err := nanoid.Standard(CodeLength)
	if err != nil {
		panic(err)
	}

	return &Server{
		urls:         make(map[string]string),
		generateCode: gen,
		hits:         make(map[string]int),
	}
}

// Start serves the fake API on a local listener until the returned server is closed.
func Start() (*Server, *httptest.Server) {
	s := New()

	return s, httptest.NewServer(s.Router())
}

// Router returns the API routes.
func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()

	r.Route("/api", func(r chi.Router) {
		r.Post("/shorten", s.shorten)
		r.Get("/url/{code}", s.lookup)
	})

	return r
}

// Put stores code -> url directly.
func (s *Server) Put(code, url string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.urls[code] = url
}

// FailWith makes every following request answer status with a generic message.
// Zero restores normal behaviour.
func (s *Server) FailWith(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.failWith = status
}

// Hits returns how many requests reached the given route ("shorten" or "lookup").
func (s *Server) Hits(route string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.hits[route]
}

func (s *Server) enter(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.hits[route]++

	return s.failWith
}

func (s *Server) shorten(w http.ResponseWriter, r *http.Request) {
	if status := s.enter("shorten"); status != 0 {
		writeJSON(w, status, map[string]string{"message": "error has occurred"})
		return
	}

	var req struct {
		URL string `json:"url"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
		return
	}

	if !validURL.MatchString(req.URL) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid url"})
		return
	}

	s.mu.Lock()

	code := s.generateCode()
	for _, taken := s.urls[code]; taken; _, taken = s.urls[code] {
		code = s.generateCode()
	}

	s.urls[code] = req.URL
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]string{"link": code})
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) {
	if status := s.enter("lookup"); status != 0 {
		writeJSON(w, status, map[string]string{"message": "error has occurred"})
		return
	}

	code := chi.URLParam(r, "code")
	if len(code) != CodeLength {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid short url"})
		return
	}

	s.mu.RLock()
	url, ok := s.urls[code]
	s.mu.RUnlock()

	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "url not found"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
