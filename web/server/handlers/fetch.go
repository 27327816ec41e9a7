package handlers

import (
	"log/slog"
	"net/http"

	"go.hackfix.me/hello/models"
)

// DefaultFetchURL is the upstream URL of the delayed fetch example.
const DefaultFetchURL = "http://httpbin.org/delay/3"

// Fetch forwards the body of a single upstream GET request.
type Fetch struct {
	Handler
	fetcher models.Fetcher
	url     string
}

// NewFetch returns a new Fetch handler for url.
func NewFetch(fetcher models.Fetcher, url string, logger *slog.Logger, debug bool) *Fetch {
	return &Fetch{
		Handler: Handler{logger: logger, debug: debug},
		fetcher: fetcher,
		url:     url,
	}
}

// Get writes the upstream body unchanged.
func (h *Fetch) Get(w http.ResponseWriter, r *http.Request) {
	resp, err := h.fetcher.Fetch(r.Context(), h.url)
	if err != nil {
		h.renderErr(w, r, err)
		return
	}

	if resp.ContentType != "" {
		w.Header().Set("Content-Type", resp.ContentType)
	}
	_, _ = w.Write(resp.Body)
}
