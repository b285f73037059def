package account_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/paymybuddy/handler"
	"github.com/dmitrymomot/paymybuddy/modules/account"
	"github.com/dmitrymomot/paymybuddy/pkg/apiclient"
	"github.com/dmitrymomot/paymybuddy/pkg/cookie"
	"github.com/dmitrymomot/paymybuddy/pkg/paymybuddy"
	"github.com/dmitrymomot/paymybuddy/pkg/ratelimiter"
	"github.com/dmitrymomot/paymybuddy/pkg/ssr"
)

const secret = "this-is-a-very-long-secret-key-32-chars-long"

func fakeAPI(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	switch r.URL.Path {
	case "/auth/login":
		var creds struct{ Email, Password string }
		_ = json.NewDecoder(r.Body).Decode(&creds)
		if creds.Password != "secret" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"type":"SERVICE","code":"INVALID_CREDENTIALS","message":"bad"}`))
			return
		}
		_, _ = w.Write([]byte(`{"token":"tok","user":{"id":1,"name":"Ann","email":"ann@example.com"}}`))
	case "/auth/remember":
		if r.Header.Get(apiclient.HeaderAuthToken) != "tok" {
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"type":"CLIENT","code":"ACCESS_DENIED","message":"x","metadata":{"invalidToken":true}}`))
			return
		}
		_, _ = w.Write([]byte(`{"user":{"id":1,"name":"Ann","email":"ann@example.com"}}`))
	case "/auth/logout":
		w.WriteHeader(http.StatusNoContent)
	case "/auth/register":
		var req paymybuddy.RegisterRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Email == "taken@example.com" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"type":"SERVICE","code":"INVALID_EMAIL","message":"taken","metadata":{"alreadyExists":true}}`))
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

type site struct {
	url    string
	client *http.Client
}

func newSite(t *testing.T, opts ...account.PasswordOption) *site {
	t.Helper()

	api := httptest.NewServer(http.HandlerFunc(fakeAPI))
	t.Cleanup(api.Close)

	cookies, err := cookie.New([]string{secret})
	require.NoError(t, err)
	client := apiclient.New(api.URL + "/")

	svc := account.NewPasswordService(account.DefaultConfig(), paymybuddy.New(client), nil, cookies, nil,
		handler.NewErrorHandler(nil, handler.ErrorHandlerConfig{}), opts...)

	r := chi.NewRouter()
	r.Use(ssr.New(client, cookies).Middleware)
	r.Mount("/", account.Router(account.RouterOptions{Password: svc}))

	web := httptest.NewServer(r)
	t.Cleanup(web.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &site{
		url: web.URL,
		client: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

func (s *site) get(t *testing.T, path string) (*http.Response, string) {
	t.Helper()
	resp, err := s.client.Get(s.url + path)
	require.NoError(t, err)
	return resp, body(t, resp)
}

func (s *site) post(t *testing.T, path string, form url.Values) (*http.Response, string) {
	t.Helper()
	resp, err := s.client.PostForm(s.url+path, form)
	require.NoError(t, err)
	return resp, body(t, resp)
}

func body(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func TestLogin(t *testing.T) {
	t.Parallel()
	s := newSite(t)

	resp, page := s.get(t, "/login?to=/contacts")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, page, `id="login-form"`)
	assert.Contains(t, page, `value="/contacts"`)

	resp, page = s.post(t, "/login", url.Values{"email": {"ann@example.com"}, "password": {"nope"}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, page, "Invalid email or password")
	assert.Contains(t, page, `value="ann@example.com"`)

	resp, _ = s.post(t, "/login", url.Values{"email": {"ann@example.com"}, "password": {"secret"}, "to": {"/contacts"}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/contacts", resp.Header.Get("Location"))

	// The session cookie now resolves, so the anonymous only page bounces.
	resp, _ = s.get(t, "/login")
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/summary", resp.Header.Get("Location"))

	resp, _ = s.post(t, "/logout", nil)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))

	resp, _ = s.get(t, "/login")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestLoginRejectsForeignReturnPath(t *testing.T) {
	t.Parallel()
	s := newSite(t)

	resp, _ := s.post(t, "/login", url.Values{"email": {"ann@example.com"}, "password": {"secret"}, "to": {"//evil.example.com"}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/summary", resp.Header.Get("Location"))
}

func TestRegister(t *testing.T) {
	t.Parallel()
	s := newSite(t)

	resp, page := s.get(t, "/register")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, page, `<option value="EUR" selected>`)

	_, page = s.post(t, "/register", url.Values{"name": {""}, "email": {"nope"}, "password": {"pw"}, "currency": {"EUR"}})
	assert.Contains(t, page, "Enter your name")
	assert.Contains(t, page, "Enter a valid email address")

	_, page = s.post(t, "/register", url.Values{"name": {"Ann"}, "email": {"ann@example.com"}, "password": {" "}, "currency": {"BTC"}})
	assert.Contains(t, page, "Choose a password")
	assert.Contains(t, page, "Choose one of the listed currencies")
	assert.NotContains(t, page, "Enter your name")

	_, page = s.post(t, "/register", url.Values{"name": {strings.Repeat("a", 101)}, "email": {"ann@example.com"}, "password": {"pw"}, "currency": {"EUR"}})
	assert.Contains(t, page, "Use at most 100 characters")

	_, page = s.post(t, "/register", url.Values{"name": {"Ann"}, "email": {"taken@example.com"}, "password": {"pw"}, "currency": {"EUR"}})
	assert.Contains(t, page, "This email is already registered")

	resp, _ = s.post(t, "/register", url.Values{"name": {"Ann"}, "email": {"new@example.com"}, "password": {"pw"}, "currency": {"USD"}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))

	_, page = s.get(t, "/login")
	assert.Contains(t, page, "Your account is ready")

	_, page = s.get(t, "/login")
	assert.False(t, strings.Contains(page, "Your account is ready"), "flash is shown once")
}

func newLimiter(t *testing.T) *ratelimiter.Bucket {
	t.Helper()
	store := ratelimiter.NewMemoryStore(ratelimiter.WithCleanupInterval(0))
	t.Cleanup(store.Close)
	limiter, err := ratelimiter.NewBucket(store, ratelimiter.Config{
		Capacity:       2,
		RefillRate:     1,
		RefillInterval: time.Hour,
	})
	require.NoError(t, err)
	return limiter
}

func TestLoginThrottle(t *testing.T) {
	t.Parallel()

	t.Run("denies after the burst", func(t *testing.T) {
		t.Parallel()
		s := newSite(t, account.WithLoginLimiter(newLimiter(t)))

		for range 2 {
			_, page := s.post(t, "/login", url.Values{"email": {"ann@example.com"}, "password": {"nope"}})
			assert.Contains(t, page, "Invalid email or password")
		}

		resp, page := s.post(t, "/login", url.Values{"email": {"ann@example.com"}, "password": {"secret"}})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, page, "Too many attempts")
		assert.NotEmpty(t, resp.Header.Get("Retry-After"))
	})

	t.Run("successful login resets the bucket", func(t *testing.T) {
		t.Parallel()
		limiter := newLimiter(t)
		s := newSite(t, account.WithLoginLimiter(limiter))

		_, page := s.post(t, "/login", url.Values{"email": {"ann@example.com"}, "password": {"nope"}})
		assert.Contains(t, page, "Invalid email or password")

		resp, _ := s.post(t, "/login", url.Values{"email": {"ann@example.com"}, "password": {"secret"}})
		require.Equal(t, http.StatusSeeOther, resp.StatusCode)

		res, err := limiter.Status(context.Background(), "login:127.0.0.1")
		require.NoError(t, err)
		assert.Equal(t, 2, res.Remaining)
	})
}
