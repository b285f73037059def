package handler_test

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/paymybuddy/handler"
	"github.com/dmitrymomot/paymybuddy/pkg/apiclient"
	"github.com/dmitrymomot/paymybuddy/pkg/authguard"
)

// apiError performs a real call against a stub API so the error carries the
// client's own types.
func apiError(t *testing.T, status int, body string) error {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)

	_, err := apiclient.Fetch[struct{}](context.Background(), apiclient.New(srv.URL), apiclient.Request{URL: "x", Anonymous: true})
	require.Error(t, err)
	return err
}

func errorPage(p handler.ErrorPageParams) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, "%d:%s", p.StatusCode, p.Error)
		return err
	})
}

func TestNewErrorHandler(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		err    func(t *testing.T) error
		status int
	}{
		{"access denied", func(t *testing.T) error {
			return apiError(t, http.StatusForbidden, `{"type":"CLIENT","code":"ACCESS_DENIED","message":"no"}`)
		}, http.StatusForbidden},
		{"client exception", func(t *testing.T) error {
			return apiError(t, http.StatusBadRequest, `{"type":"CLIENT","code":"BAD_REQUEST","message":"bad"}`)
		}, http.StatusBadRequest},
		{"upstream failure", func(t *testing.T) error {
			return apiError(t, http.StatusInternalServerError, `oops`)
		}, http.StatusBadGateway},
		{"unhandled service error", func(t *testing.T) error {
			return apiclient.Unhandled(&apiclient.APIError{Type: apiclient.ErrorTypeService, Code: "NOT_ENOUGH_FUNDS"})
		}, http.StatusInternalServerError},
		{"validation", func(t *testing.T) error {
			verr := handler.NewValidationError()
			verr.Add("email", "required")
			return verr
		}, http.StatusBadRequest},
		{"http error", func(t *testing.T) error { return handler.ErrNotFound }, http.StatusNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			var logs bytes.Buffer
			eh := handler.NewErrorHandler(slog.New(slog.NewJSONHandler(&logs, nil)), handler.ErrorHandlerConfig{ErrorPage: errorPage})

			rec := httptest.NewRecorder()
			eh(handler.NewContext(rec, httptest.NewRequest(http.MethodGet, "/summary", nil)), tc.err(t))

			assert.Equal(t, tc.status, rec.Code)
			assert.Contains(t, rec.Body.String(), fmt.Sprintf("%d:", tc.status))
			assert.Contains(t, logs.String(), `"component":"error_handler"`)
		})
	}

	t.Run("invalid token redirects to login and clears the guard", func(t *testing.T) {
		t.Parallel()
		guard := authguard.New(apiclient.New("http://127.0.0.1:0/"),
			authguard.WithSession(&authguard.Session{Token: "T", User: &authguard.User{ID: 1}}))
		err := apiError(t, http.StatusForbidden, `{"type":"CLIENT","code":"ACCESS_DENIED","message":"expired","metadata":{"invalidToken":true}}`)

		req := httptest.NewRequest(http.MethodGet, "/contacts?page=2", nil)
		req = req.WithContext(authguard.WithGuard(req.Context(), guard))
		rec := httptest.NewRecorder()
		handler.NewErrorHandler(slog.New(slog.DiscardHandler), handler.ErrorHandlerConfig{})(handler.NewContext(rec, req), err)

		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/login?to=%2Fcontacts%3Fpage%3D2", rec.Header().Get("Location"))
		assert.False(t, guard.Authenticated())
	})

	t.Run("plain text fallback", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()
		eh := handler.NewErrorHandler(slog.New(slog.DiscardHandler), handler.ErrorHandlerConfig{})
		eh(handler.NewContext(rec, httptest.NewRequest(http.MethodGet, "/", nil)), handler.ErrForbidden)

		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Contains(t, rec.Body.String(), "forbidden")
	})
}
