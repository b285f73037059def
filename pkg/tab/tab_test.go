package tab_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/paymybuddy/pkg/apiclient"
	"github.com/dmitrymomot/paymybuddy/pkg/authguard"
	"github.com/dmitrymomot/paymybuddy/pkg/authsync"
	"github.com/dmitrymomot/paymybuddy/pkg/pageguard"
	"github.com/dmitrymomot/paymybuddy/pkg/tab"
	"github.com/dmitrymomot/paymybuddy/pkg/webstorage"
)

var userA = authguard.User{ID: 1, Name: "A", Email: "a@a.com", DefaultCurrency: "EUR"}

type fakeAPI struct {
	remembers atomic.Int32
	release   chan struct{}
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	token := r.Header.Get(apiclient.HeaderAuthToken)
	switch r.URL.Path {
	case "/auth/login":
		var creds struct{ Email, Password string }
		_ = json.NewDecoder(r.Body).Decode(&creds)
		if creds.Password != "secret" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"type":"SERVICE","code":"INVALID_CREDENTIALS","message":"bad"}`))
			return
		}
		_ = json.NewEncoder(w).Encode(authguard.Session{Token: "abc", User: &userA})
	case "/auth/remember":
		f.remembers.Add(1)
		if token != "abc" {
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"type":"CLIENT","code":"ACCESS_DENIED","message":"x","metadata":{"invalidToken":true}}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"user": userA})
	case "/auth/logout":
		w.WriteHeader(http.StatusNoContent)
	case "/whoami":
		_ = json.NewEncoder(w).Encode(token)
	case "/slow":
		select {
		case <-r.Context().Done():
		case <-f.release:
		}
	case "/invalidated":
		w.WriteHeader(apiclient.StatusSessionInvalidated)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

type fixture struct {
	api  *fakeAPI
	url  string
	area *webstorage.MemoryArea
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	api := &fakeAPI{release: make(chan struct{})}
	srv := httptest.NewServer(api)
	t.Cleanup(func() {
		close(api.release)
		srv.Close()
	})
	area := webstorage.NewMemoryArea()
	t.Cleanup(func() { _ = area.Close() })
	return &fixture{api: api, url: srv.URL, area: area}
}

func (f *fixture) open(t *testing.T, hydrated *authguard.Session, reloader func()) *tab.Tab {
	t.Helper()
	storage := f.area.Open()
	tb, err := tab.Open(context.Background(), tab.Config{BaseURL: f.url, Storage: storage, Reloader: reloader}, hydrated)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = tb.Close()
		_ = storage.Close()
	})
	return tb
}

func (f *fixture) persist(t *testing.T, token string) {
	t.Helper()
	storage := f.area.Open()
	defer storage.Close()
	require.NoError(t, authsync.NewStorageTokenStore(storage, "").SaveToken(context.Background(), token))
}

func TestOpen(t *testing.T) {
	t.Parallel()

	_, err := tab.Open(context.Background(), tab.Config{}, nil)
	assert.ErrorIs(t, err, tab.ErrNoStorage)
}

func TestMount(t *testing.T) {
	t.Parallel()

	t.Run("hydrated session matches persisted token", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.persist(t, "abc")

		tb := f.open(t, &authguard.Session{Token: "abc", User: &userA}, nil)
		assert.Equal(t, authguard.Authenticated, tb.Guard().State())

		require.NoError(t, tb.Mount(context.Background()))
		assert.Equal(t, authguard.Authenticated, tb.Guard().State())
		assert.Zero(t, f.api.remembers.Load())
		assert.Zero(t, tb.Reloads())
	})

	t.Run("persisted token is remembered", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.persist(t, "abc")

		tb := f.open(t, nil, nil)
		assert.Equal(t, authguard.Authenticating, tb.Guard().State())

		require.NoError(t, tb.Mount(context.Background()))
		assert.Equal(t, authguard.Authenticated, tb.Guard().State())
		assert.Equal(t, int32(1), f.api.remembers.Load())
		assert.Equal(t, 1, tb.Reloads(), "identity changed from anonymous")
	})

	t.Run("stale persisted token", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.persist(t, "stale")

		tb := f.open(t, nil, nil)
		require.NoError(t, tb.Mount(context.Background()))
		assert.Equal(t, authguard.Anonymous, tb.Guard().State())
	})

	t.Run("missing persisted token clears hydrated session", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		tb := f.open(t, &authguard.Session{Token: "abc", User: &userA}, nil)
		assert.Equal(t, authguard.Authenticating, tb.Guard().State())

		require.NoError(t, tb.Mount(context.Background()))
		assert.Equal(t, authguard.Anonymous, tb.Guard().State())
		assert.Equal(t, 1, tb.Reloads())
	})

	t.Run("mount twice", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		tb := f.open(t, nil, nil)
		require.NoError(t, tb.Mount(context.Background()))
		assert.ErrorIs(t, tb.Mount(context.Background()), tab.ErrAlreadyMounted)
	})
}

func TestCrossTab(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	var reloadsB atomic.Int32
	tabA := f.open(t, nil, nil)
	tabB := f.open(t, nil, func() { reloadsB.Add(1) })
	ctx := context.Background()
	require.NoError(t, tabA.Mount(ctx))
	require.NoError(t, tabB.Mount(ctx))

	ok, err := tabA.Guard().Login(ctx, "a@a.com", "secret")
	require.NoError(t, err)
	require.True(t, ok)

	require.Eventually(t, tabB.Guard().Authenticated, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, tabA.Guard().Serialize(), tabB.Guard().Serialize())
	require.Eventually(t, func() bool { return reloadsB.Load() == 1 }, 2*time.Second, 5*time.Millisecond)

	// A tab opened later resolves the shared token on mount.
	tabC := f.open(t, nil, nil)
	require.NoError(t, tabC.Mount(ctx))
	assert.Equal(t, "abc", tabC.Guard().Token())

	tabB.Guard().Logout(ctx)
	require.Eventually(t, func() bool {
		return !tabA.Guard().Authenticated() && !tabC.Guard().Authenticated()
	}, 2*time.Second, 5*time.Millisecond)
}

func TestAPI(t *testing.T) {
	t.Parallel()

	t.Run("requests use the tab session", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		tb := f.open(t, nil, nil)
		ctx := context.Background()

		res, err := apiclient.Fetch[string](ctx, tb.API(), apiclient.Request{URL: "whoami"})
		require.NoError(t, err)
		assert.Equal(t, apiclient.AnonymousToken, res.Result)

		tb.Guard().Deserialize(&authguard.Session{Token: "abc", User: &userA})
		res, err = apiclient.Fetch[string](ctx, tb.API(), apiclient.Request{URL: "whoami"})
		require.NoError(t, err)
		assert.Equal(t, "abc", res.Result)
	})

	t.Run("navigation aborts pending requests", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		tb := f.open(t, nil, nil)

		done := make(chan apiclient.Response[struct{}], 1)
		go func() {
			res, err := apiclient.Fetch[struct{}](context.Background(), tb.API(), apiclient.Request{URL: "slow"})
			assert.NoError(t, err)
			done <- res
		}()

		time.Sleep(50 * time.Millisecond)
		tb.Navigate("/contacts")

		select {
		case res := <-done:
			assert.True(t, apiclient.IsAborted(res))
		case <-time.After(2 * time.Second):
			t.Fatal("request was not aborted")
		}
		assert.Equal(t, "/contacts", tb.Path())
	})

	t.Run("invalidated session reloads", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		var reloaded atomic.Int32
		tb := f.open(t, nil, func() { reloaded.Add(1) })

		res, err := apiclient.Fetch[struct{}](context.Background(), tb.API(), apiclient.Request{URL: "invalidated"})
		require.NoError(t, err)
		assert.True(t, apiclient.IsAborted(res))
		assert.Equal(t, int32(1), reloaded.Load())
		assert.Equal(t, 1, tb.Reloads())
	})
}

func TestVisit(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	tb := f.open(t, nil, nil)
	require.NoError(t, tb.Mount(context.Background()))

	d := tb.Visit("/summary", pageguard.IsAuthenticated)
	assert.Equal(t, pageguard.Redirect, d.Outcome)
	assert.Equal(t, "/login?to=%2Fsummary", tb.Path())

	d = tb.Visit("/login", pageguard.IsAnonymous)
	assert.Equal(t, pageguard.Allow, d.Outcome)
	assert.Equal(t, "/login", tb.Path())

	tb.Guard().Deserialize(&authguard.Session{Token: "abc", User: &userA})
	d = tb.Visit("/login", pageguard.IsAnonymous)
	assert.Equal(t, pageguard.Redirect, d.Outcome)
	assert.Equal(t, "/summary", tb.Path())
}
