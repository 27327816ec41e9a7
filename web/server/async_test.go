package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAsyncHandler(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name       string
		method     string
		get        AsyncFunc
		expCode    int
		expBody    string
		expOnError bool
	}{
		{
			name: "ok/get", method: http.MethodGet,
			get: func(_ context.Context, w http.ResponseWriter, _ *http.Request) error {
				_, err := io.WriteString(w, "hello")
				return err
			},
			expCode: http.StatusOK, expBody: "hello",
		},
		{
			name: "err/before_write", method: http.MethodGet,
			get: func(context.Context, http.ResponseWriter, *http.Request) error {
				return errors.New("store unavailable")
			},
			expCode: http.StatusInternalServerError, expBody: "failed",
			expOnError: true,
		},
		{
			name: "err/after_write", method: http.MethodGet,
			get: func(_ context.Context, w http.ResponseWriter, _ *http.Request) error {
				_, _ = io.WriteString(w, "partial")
				return errors.New("connection reset")
			},
			expCode: http.StatusOK, expBody: "partial",
		},
		{
			name: "err/after_header", method: http.MethodGet,
			get: func(_ context.Context, w http.ResponseWriter, _ *http.Request) error {
				w.WriteHeader(http.StatusAccepted)
				return errors.New("connection reset")
			},
			expCode: http.StatusAccepted,
		},
		{
			name: "err/method", method: http.MethodDelete,
			get: func(context.Context, http.ResponseWriter, *http.Request) error {
				return nil
			},
			expCode: http.StatusMethodNotAllowed,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			loop := NewLoop(testLogger)
			var onErrorCalled bool
			h := &AsyncHandler{
				Loop: loop,
				Get:  tc.get,
				OnError: func(w http.ResponseWriter, _ *http.Request, _ error) {
					onErrorCalled = true
					w.WriteHeader(http.StatusInternalServerError)
					_, _ = io.WriteString(w, "failed")
				},
			}

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(tc.method, "/", nil))
			require.NoError(t, loop.Close(context.Background()))

			assert.Equal(t, tc.expCode, rec.Code)
			if tc.expCode == http.StatusMethodNotAllowed {
				assert.Equal(t, "GET", rec.Header().Get("Allow"))
			} else {
				assert.Equal(t, tc.expBody, rec.Body.String())
			}
			assert.Equal(t, tc.expOnError, onErrorCalled)
		})
	}
}
