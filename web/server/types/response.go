package types

import (
	"net/http"

	"github.com/go-chi/render"
)

// Response is the JSON body of every non-raw response.
type Response struct {
	StatusCode int    `json:"statusCode"`
	Status     string `json:"status"`
	Error      string `json:"error,omitempty"`
}

// Render implements render.Renderer.
func (e *Response) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.StatusCode)
	if e.Status == "" {
		e.Status = http.StatusText(e.StatusCode)
	}
	return nil
}

func ErrInternal(err error) render.Renderer {
	return &Response{
		StatusCode: http.StatusInternalServerError,
		Error:      err.Error(),
	}
}

func ErrMethodNotAllowed() render.Renderer {
	return &Response{StatusCode: http.StatusMethodNotAllowed}
}

func ErrNotFound() render.Renderer {
	return &Response{StatusCode: http.StatusNotFound}
}
