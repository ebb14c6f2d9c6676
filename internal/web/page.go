package web

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"github.com/serroba/shurl-web/internal/middleware"
	"go.uber.org/zap"
)

//go:embed templates/index.html
var templates embed.FS

var pageTemplate = template.Must(template.ParseFS(templates, "templates/index.html"))

const pagePath = "/web"

// Page serves the HTML front end backed by the same session binders.
type Page struct {
	views  *Handler
	logger *zap.Logger
}

// NewPage creates the HTML page handlers.
func NewPage(views *Handler, logger *zap.Logger) *Page {
	return &Page{views: views, logger: logger}
}

// RedirectRoot sends the bare root to the page.
func (p *Page) RedirectRoot(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, pagePath, http.StatusMovedPermanently)
}

// Render writes the page for the caller's session.
func (p *Page) Render(w http.ResponseWriter, r *http.Request) {
	resp, err := p.views.GetView(r.Context(), nil)
	if err != nil {
		http.Error(w, "missing session", http.StatusBadRequest)
		return
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, resp.Body); err != nil {
		p.logger.Error("failed to render page",
			zap.String("sessionId", middleware.SessionIDFromContext(r.Context())),
			zap.Error(err),
		)
		http.Error(w, "failed to render page", http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = buf.WriteTo(w)
}

// SubmitShorten handles the shorten form.
func (p *Page) SubmitShorten(w http.ResponseWriter, r *http.Request) {
	req := &ShortenViewRequest{}
	req.Body.URL = r.PostFormValue("url")

	if _, err := p.views.Shorten(r.Context(), req); err != nil {
		http.Error(w, "missing session", http.StatusBadRequest)
		return
	}

	http.Redirect(w, r, pagePath, http.StatusSeeOther)
}

// SubmitLookup handles the lookup form.
func (p *Page) SubmitLookup(w http.ResponseWriter, r *http.Request) {
	req := &LookupViewRequest{}
	req.Body.Code = r.PostFormValue("code")

	if _, err := p.views.Lookup(r.Context(), req); err != nil {
		http.Error(w, "missing session", http.StatusBadRequest)
		return
	}

	http.Redirect(w, r, pagePath, http.StatusSeeOther)
}
