package cli

import (
	"time"

	"github.com/go-chi/chi/v5"

	actx "go.hackfix.me/hello/app/context"
	"go.hackfix.me/hello/web/client"
	"go.hackfix.me/hello/web/server"
	"go.hackfix.me/hello/web/server/handlers"
)

// ServeFlags are shared by all commands that start a web server.
type ServeFlags struct {
	Debug   bool `help:"Include error details in 500 responses."`
	Metrics bool `help:"Expose Prometheus metrics at /metrics."`
}

// UpstreamFlags are shared by commands that fetch an upstream URL.
type UpstreamFlags struct {
	UpstreamTimeout time.Duration `default:"20s" help:"Timeout of a whole upstream request."`
}

func (f ServeFlags) serve(appCtx *actx.Context, addr string, opts ...server.Option) error {
	opts = append(opts, server.WithMetrics(f.Metrics))
	return server.New(appCtx, addr, opts...).ListenAndServe()
}

// The Async command serves the raw body of a slow upstream URL.
type Async struct {
	Address     string `default:":8888" help:"[host]:port to listen on."`
	UpstreamURL string `default:"${fetch_url}" help:"The URL whose body is returned."`

	UpstreamFlags `embed:""`
	ServeFlags    `embed:""`
}

// Run the async command.
func (c *Async) Run(appCtx *actx.Context) error {
	h := handlers.NewFetch(client.New(c.UpstreamTimeout), c.UpstreamURL,
		appCtx.Logger, c.Debug)

	return c.serve(appCtx, c.Address, server.WithRoutes(func(r chi.Router) {
		r.Get("/", h.Get)
	}))
}

// The Feed command serves an upstream JSON object re-encoded by the server.
type Feed struct {
	Address     string `default:":8888" help:"[host]:port to listen on."`
	UpstreamURL string `default:"${feed_url}" help:"The URL of the JSON object feed."`

	UpstreamFlags `embed:""`
	ServeFlags    `embed:""`
}

// Run the feed command.
func (c *Feed) Run(appCtx *actx.Context) error {
	h := handlers.NewFeed(client.New(c.UpstreamTimeout), c.UpstreamURL,
		appCtx.Logger, c.Debug)

	return c.serve(appCtx, c.Address, server.WithRoutes(func(r chi.Router) {
		r.Get("/", h.Get)
	}))
}

// The Multi command serves a key-value store round trip, run on a loop
// separate from the request goroutines.
type Multi struct {
	Address string `default:"127.0.0.1:8888" help:"[host]:port to listen on."`

	ServeFlags `embed:""`
}

// Run the multi command.
func (c *Multi) Run(appCtx *actx.Context) error {
	loop := server.NewLoop(appCtx.Logger)
	h := handlers.NewMulti(appCtx.Store, loop, appCtx.Logger, c.Debug)

	return c.serve(appCtx, c.Address,
		server.WithLoop(loop),
		server.WithRoutes(func(r chi.Router) {
			r.Handle("/", h)
		}),
	)
}
