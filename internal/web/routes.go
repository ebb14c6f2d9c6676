package web

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers the HTML page on router and the JSON view operations on api.
func RegisterRoutes(router chi.Router, api huma.API, views *Handler, page *Page) {
	router.Get("/", page.RedirectRoot)
	router.Get(pagePath, page.Render)
	router.Post(pagePath+"/shorten", page.SubmitShorten)
	router.Post(pagePath+"/lookup", page.SubmitLookup)

	huma.Register(api, huma.Operation{
		OperationID: "get-view",
		Method:      http.MethodGet,
		Path:        "/view",
		Summary:     "Get view state",
		Description: "Returns the view state of the caller's session.",
		Tags:        []string{"View"},
	}, views.GetView)

	huma.Register(api, huma.Operation{
		OperationID:   "shorten",
		Method:        http.MethodPost,
		Path:          "/view/shorten",
		Summary:       "Shorten a URL",
		Description:   "Binds the original URL, asks the shortener API for a link and returns the updated view.",
		Tags:          []string{"View"},
		DefaultStatus: http.StatusOK,
	}, views.Shorten)

	huma.Register(api, huma.Operation{
		OperationID:   "lookup",
		Method:        http.MethodPost,
		Path:          "/view/lookup",
		Summary:       "Look up a short code",
		Description:   "Binds the short code, resolves it through the shortener API and returns the updated view. An empty code sends nothing.",
		Tags:          []string{"View"},
		DefaultStatus: http.StatusOK,
	}, views.Lookup)
}
