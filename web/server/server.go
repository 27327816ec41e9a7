package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	actx "go.hackfix.me/hello/app/context"
	"go.hackfix.me/hello/web/metrics"
	"go.hackfix.me/hello/web/server/types"
)

// shutdownTimeout bounds how long in-flight requests are given to complete
// once the server is asked to stop.
const shutdownTimeout = 30 * time.Second

// Server is a wrapper around http.Server with some custom behavior.
type Server struct {
	*http.Server
	appCtx  *actx.Context
	loop    *Loop
	routes  func(chi.Router)
	metrics bool
}

// Option is a function that allows configuring the server.
type Option func(*Server)

// WithRoutes sets the function that registers the example routes.
func WithRoutes(fn func(chi.Router)) Option {
	return func(s *Server) {
		s.routes = fn
	}
}

// WithLoop sets the loop that is drained when the server shuts down.
func WithLoop(l *Loop) Option {
	return func(s *Server) {
		s.loop = l
	}
}

// WithMetrics enables the /metrics endpoint.
func WithMetrics(enabled bool) Option {
	return func(s *Server) {
		s.metrics = enabled
	}
}

// New returns a new Server instance.
func New(appCtx *actx.Context, addr string, opts ...Option) *Server {
	s := &Server{
		appCtx: appCtx,
		Server: &http.Server{
			Addr:              addr,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      10 * time.Minute,
		},
	}

	for _, opt := range opts {
		opt(s)
	}

	s.Handler = s.setupRouter()

	return s
}

// ListenAndServe is a replacement of http.ListenAndServe to ensure we set the
// correct server address to be used in logs and tests.
// This is needed when starting the server with address ':0'.
// The server is gracefully shut down when the application context is done,
// in which case nil is returned.
func (s *Server) ListenAndServe() error {
	ln, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return err
	}

	s.Addr = ln.Addr().String()
	s.appCtx.Logger.Info("started web server", "address", s.Addr)

	shutdownErr := make(chan error, 1)
	go func() {
		<-s.appCtx.Ctx.Done()
		shutdownErr <- s.shutdown()
	}()

	err = s.Serve(ln)
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return <-shutdownErr
}

func (s *Server) shutdown() error {
	s.appCtx.Logger.Info("stopping web server", "address", s.Addr)

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err := s.Shutdown(ctx)
	if s.loop != nil {
		err = errors.Join(err, s.loop.Close(ctx))
	}

	return err
}

func (s *Server) setupRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.appCtx.Logger))
	r.Use(middleware.Heartbeat("/ping"))
	r.Use(middleware.Recoverer)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		_ = render.Render(w, r, types.ErrNotFound())
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		_ = render.Render(w, r, types.ErrMethodNotAllowed())
	})

	if s.metrics {
		r.Method(http.MethodGet, "/metrics", metrics.Handler())
	}

	if s.routes != nil {
		s.routes(r)
	}

	return r
}
