package authsync_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/paymybuddy/pkg/apiclient"
	"github.com/dmitrymomot/paymybuddy/pkg/authguard"
	"github.com/dmitrymomot/paymybuddy/pkg/authsync"
	"github.com/dmitrymomot/paymybuddy/pkg/webstorage"
)

type tabUnderTest struct {
	guard   *authguard.Guard
	storage webstorage.Storage
	syncer  *authsync.Syncer
}

func openTab(t *testing.T, area *webstorage.MemoryArea) *tabUnderTest {
	t.Helper()
	storage := area.Open()
	guard := authguard.New(apiclient.New("http://127.0.0.1:0/"))
	syncer := authsync.New(guard, storage)
	require.NoError(t, syncer.Start(context.Background()))
	t.Cleanup(func() {
		_ = syncer.Stop()
		_ = storage.Close()
	})
	return &tabUnderTest{guard: guard, storage: storage, syncer: syncer}
}

// observer records every storage event of the area.
type observer struct {
	mu     sync.Mutex
	events []webstorage.Event
}

func observe(t *testing.T, area *webstorage.MemoryArea) *observer {
	t.Helper()
	handle := area.Open()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	events, err := handle.Watch(ctx)
	require.NoError(t, err)

	o := &observer{}
	go func() {
		for ev := range events {
			o.mu.Lock()
			o.events = append(o.events, ev)
			o.mu.Unlock()
		}
	}()
	return o
}

func (o *observer) snapshot() []webstorage.Event {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]webstorage.Event(nil), o.events...)
}

func TestSyncer(t *testing.T) {
	t.Parallel()

	t.Run("peer update is applied without echo", func(t *testing.T) {
		t.Parallel()
		area := webstorage.NewMemoryArea()
		defer area.Close()

		tabA := openTab(t, area)
		tabB := openTab(t, area)
		watcher := observe(t, area)

		var updatesA []authguard.Update
		var mu sync.Mutex
		tabA.guard.Subscribe(func(u authguard.Update) {
			mu.Lock()
			updatesA = append(updatesA, u)
			mu.Unlock()
		})

		session := &authguard.Session{Token: "T", User: &authguard.User{ID: 1, Name: "A", Email: "a@a.com"}}
		tabB.guard.Deserialize(session)

		require.Eventually(t, func() bool { return tabA.guard.Token() == "T" }, 2*time.Second, 5*time.Millisecond)
		assert.Equal(t, tabB.guard.Serialize(), tabA.guard.Serialize())
		assert.True(t, tabA.guard.Authenticated())

		// Give an echo the time to show up before counting.
		time.Sleep(100 * time.Millisecond)

		events := watcher.snapshot()
		require.Len(t, events, 3)
		for _, ev := range events {
			assert.Equal(t, tabB.storage.Origin(), ev.Origin, "only tab B writes")
		}
		assert.Equal(t, authsync.DefaultTokenKey, events[0].Key)
		assert.Equal(t, authsync.SyncKey, events[1].Key)
		assert.False(t, events[1].Removed())
		assert.True(t, events[2].Removed())

		mu.Lock()
		require.Len(t, updatesA, 1)
		assert.Equal(t, authguard.OriginPeer, updatesA[0].Origin)
		assert.True(t, updatesA[0].IdentityChanged())
		mu.Unlock()
	})

	t.Run("token slot follows the guard", func(t *testing.T) {
		t.Parallel()
		area := webstorage.NewMemoryArea()
		defer area.Close()

		tab := openTab(t, area)
		ctx := context.Background()

		tab.guard.Deserialize(&authguard.Session{Token: "T", User: &authguard.User{ID: 1}})
		token, err := tab.syncer.Tokens().LoadToken(ctx)
		require.NoError(t, err)
		assert.Equal(t, "T", token)

		tab.guard.Deserialize(nil)
		token, err = tab.syncer.Tokens().LoadToken(ctx)
		require.NoError(t, err)
		assert.Empty(t, token)

		_, ok, err := tab.storage.Get(ctx, authsync.SyncKey)
		require.NoError(t, err)
		assert.False(t, ok, "sync key is cleared right after the broadcast")
	})

	t.Run("logout in one tab clears the other", func(t *testing.T) {
		t.Parallel()
		area := webstorage.NewMemoryArea()
		defer area.Close()

		tabA := openTab(t, area)
		tabB := openTab(t, area)

		tabA.guard.Deserialize(&authguard.Session{Token: "T", User: &authguard.User{ID: 1}})
		require.Eventually(t, tabB.guard.Authenticated, 2*time.Second, 5*time.Millisecond)

		tabB.guard.Deserialize(nil)
		require.Eventually(t, func() bool { return !tabA.guard.Authenticated() }, 2*time.Second, 5*time.Millisecond)
		assert.Empty(t, tabA.guard.Token())
	})

	t.Run("malformed broadcast is ignored", func(t *testing.T) {
		t.Parallel()
		area := webstorage.NewMemoryArea()
		defer area.Close()

		tab := openTab(t, area)
		tab.guard.Deserialize(&authguard.Session{Token: "T", User: &authguard.User{ID: 1}}, authguard.WithoutEmit())
		peer := area.Open()
		defer peer.Close()

		require.NoError(t, peer.Set(context.Background(), authsync.SyncKey, "{not json"))
		require.NoError(t, peer.Set(context.Background(), "other", `{}`))
		time.Sleep(50 * time.Millisecond)

		assert.Equal(t, "T", tab.guard.Token())
	})

	t.Run("null broadcast clears", func(t *testing.T) {
		t.Parallel()
		area := webstorage.NewMemoryArea()
		defer area.Close()

		tab := openTab(t, area)
		tab.guard.Deserialize(&authguard.Session{Token: "T", User: &authguard.User{ID: 1}}, authguard.WithoutEmit())
		peer := area.Open()
		defer peer.Close()

		require.NoError(t, peer.Set(context.Background(), authsync.SyncKey, "null"))
		require.Eventually(t, func() bool { return tab.guard.Token() == "" }, 2*time.Second, 5*time.Millisecond)
	})

	t.Run("start twice", func(t *testing.T) {
		t.Parallel()
		area := webstorage.NewMemoryArea()
		defer area.Close()

		tab := openTab(t, area)
		assert.ErrorIs(t, tab.syncer.Start(context.Background()), authsync.ErrAlreadyStarted)
	})
}

func TestStorageTokenStore(t *testing.T) {
	t.Parallel()

	area := webstorage.NewMemoryArea()
	defer area.Close()
	store := authsync.NewStorageTokenStore(area.Open(), "")
	ctx := context.Background()

	token, err := store.LoadToken(ctx)
	require.NoError(t, err)
	assert.Empty(t, token)

	require.NoError(t, store.SaveToken(ctx, "abc"))
	token, err = store.LoadToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, "abc", token)

	require.NoError(t, store.SaveToken(ctx, ""))
	token, err = store.LoadToken(ctx)
	require.NoError(t, err)
	assert.Empty(t, token)
}
