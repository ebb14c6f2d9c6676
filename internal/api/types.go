package api

// ShortenRequest is the request body for creating a short link.
type ShortenRequest struct {
	URL string `json:"url"`
}

// ShortenResponse is the body returned for a successfully created short link.
type ShortenResponse struct {
	Link string `json:"link"`
}

// LookupResponse is the body returned when a short code resolves.
type LookupResponse struct {
	URL string `json:"url"`
}

// errorBody is the shape of every non-2xx response from the shortener API.
type errorBody struct {
	Message string `json:"message"`
}
