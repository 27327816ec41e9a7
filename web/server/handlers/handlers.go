package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"go.hackfix.me/hello/web/server/types"
)

// Handler holds what every example handler needs to report failures.
type Handler struct {
	logger *slog.Logger
	// debug exposes error details in 500 responses.
	debug bool
}

// renderErr logs err and renders a 500 response.
func (h *Handler) renderErr(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Error("failed handling request",
		"method", r.Method, "path", r.URL.Path, "error", err.Error())

	if !h.debug {
		err = errors.New(http.StatusText(http.StatusInternalServerError))
	}
	_ = render.Render(w, r, types.ErrInternal(err))
}
