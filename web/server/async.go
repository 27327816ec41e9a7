package server

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync/atomic"

	"github.com/felixge/httpsnoop"
	"github.com/go-chi/render"

	"go.hackfix.me/hello/web/server/types"
)

// AsyncFunc handles a single request on a Loop. It may write the response;
// the request goroutine doesn't return until it does.
type AsyncFunc func(ctx context.Context, w http.ResponseWriter, r *http.Request) error

// AsyncHandler is an http.Handler that runs per-method AsyncFuncs on a Loop.
// Methods without an AsyncFunc are answered with 405 Method Not Allowed.
type AsyncHandler struct {
	Loop *Loop
	Get  AsyncFunc
	Post AsyncFunc

	// OnError is called on the request goroutine when an AsyncFunc fails
	// before writing any part of the response.
	OnError func(w http.ResponseWriter, r *http.Request, err error)
}

var _ http.Handler = &AsyncHandler{}

func (h *AsyncHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	fn := h.method(r.Method)
	if fn == nil {
		w.Header().Set("Allow", strings.Join(h.allowed(), ", "))
		_ = render.Render(w, r, types.ErrMethodNotAllowed())
		return
	}

	// The request context is passed along so that the coroutine stops when the
	// client goes away. Waiting unconditionally ensures w isn't used after
	// ServeHTTP returns.
	ww, started := trackStarted(w)
	err := h.Loop.Go(r.Context(), func(ctx context.Context) error {
		return fn(ctx, ww, r)
	}).Wait()
	if err != nil {
		if started.Load() {
			// Too late for an error response.
			h.Loop.logger.Error("failed handling request after response started",
				"method", r.Method, "path", r.URL.Path, "error", err.Error())
			return
		}
		if h.OnError != nil {
			h.OnError(w, r, err)
			return
		}
		_ = render.Render(w, r, types.ErrInternal(err))
	}
}

func (h *AsyncHandler) method(m string) AsyncFunc {
	switch m {
	case http.MethodGet:
		return h.Get
	case http.MethodPost:
		return h.Post
	}
	return nil
}

func (h *AsyncHandler) allowed() []string {
	var methods []string
	if h.Get != nil {
		methods = append(methods, http.MethodGet)
	}
	if h.Post != nil {
		methods = append(methods, http.MethodPost)
	}
	return methods
}

// trackStarted wraps w, and reports whether the response header or any part
// of the body has been written.
func trackStarted(w http.ResponseWriter) (http.ResponseWriter, *atomic.Bool) {
	started := &atomic.Bool{}
	ww := httpsnoop.Wrap(w, httpsnoop.Hooks{
		WriteHeader: func(next httpsnoop.WriteHeaderFunc) httpsnoop.WriteHeaderFunc {
			return func(code int) {
				started.Store(true)
				next(code)
			}
		},
		Write: func(next httpsnoop.WriteFunc) httpsnoop.WriteFunc {
			return func(b []byte) (int, error) {
				started.Store(true)
				return next(b)
			}
		},
		ReadFrom: func(next httpsnoop.ReadFromFunc) httpsnoop.ReadFromFunc {
			return func(src io.Reader) (int64, error) {
				started.Store(true)
				return next(src)
			}
		},
	})

	return ww, started
}
