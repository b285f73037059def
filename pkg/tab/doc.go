// Package tab is the client-side runtime of a browser tab.
//
// A tab owns a navigation (cancelling the requests of the previous page), an
// API client whose default session is the tab's auth guard, and a syncer that
// keeps the guard in step with the other tabs sharing the same storage.
//
//	t, err := tab.Open(ctx, tab.Config{BaseURL: apiURL, Storage: storage}, hydrated)
//	...
//	defer t.Close()
//	if err := t.Mount(ctx); err != nil { ... }
//
//	ok, err := t.Guard().Login(ctx, email, password)
//	balances, err := paymybuddy.New(t.API()).Balances(ctx)
//
// Open hydrates the guard from the server rendered session. Mount reconciles
// it with the token persisted in the shared storage, remembering it when the
// server did not. Whenever the session identity changes afterwards, locally
// or in another tab, the tab reloads.
package tab
