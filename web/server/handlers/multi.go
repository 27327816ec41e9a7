package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"go.hackfix.me/hello/store"
	"go.hackfix.me/hello/web/server"
)

// The key and value written and read back on every request.
const (
	MultiKey   = "my-key"
	MultiValue = "OK"
)

// Multi performs a store round trip on a separate loop. Only GET is
// implemented, so other methods are answered with 405.
type Multi struct {
	Handler
	store store.Store
}

// NewMulti returns an http.Handler that runs the Multi example on loop.
func NewMulti(s store.Store, loop *server.Loop, logger *slog.Logger, debug bool) http.Handler {
	h := &Multi{Handler: Handler{logger: logger, debug: debug}, store: s}
	return &server.AsyncHandler{
		Loop:    loop,
		Get:     h.Get,
		OnError: h.renderErr,
	}
}

// Get writes MultiKey, reads it back, and replies with the value read.
func (h *Multi) Get(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	if err := h.store.Set(ctx, store.DefaultNamespace, MultiKey, []byte(MultiValue)); err != nil {
		return fmt.Errorf("failed setting key: %w", err)
	}

	ok, val, err := h.store.Get(ctx, store.DefaultNamespace, MultiKey)
	if err != nil {
		return fmt.Errorf("failed getting key: %w", err)
	}
	if !ok {
		return store.KeyNotFoundError{Namespace: store.DefaultNamespace, Key: MultiKey}
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, err = fmt.Fprintf(w, "Hello from the loop: %s", val)

	return err
}
