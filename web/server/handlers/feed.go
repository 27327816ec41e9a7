package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"go.hackfix.me/hello/models"
)

// DefaultFeedURL is the upstream URL of the feed example.
const DefaultFeedURL = "http://httpbin.org/delay/1"

// Feed renders the feed model as JSON. Handlers are thin; fetching and
// decoding live in the models package.
type Feed struct {
	Handler
	fetcher models.Fetcher
	url     string
}

// NewFeed returns a new Feed handler for the feed at url.
func NewFeed(fetcher models.Fetcher, url string, logger *slog.Logger, debug bool) *Feed {
	return &Feed{
		Handler: Handler{logger: logger, debug: debug},
		fetcher: fetcher,
		url:     url,
	}
}

// Get fetches the feed and writes it back as JSON.
func (h *Feed) Get(w http.ResponseWriter, r *http.Request) {
	feed, err := models.FetchFeed(r.Context(), h.fetcher, h.url)
	if err != nil {
		h.renderErr(w, r, err)
		return
	}

	render.JSON(w, r, feed)
}
