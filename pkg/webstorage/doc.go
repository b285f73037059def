// Package webstorage provides the key/value area shared by the tabs of one
// user agent, together with change notifications between tabs.
//
// A write through one handle notifies the watchers of every other handle of
// the same area, never the writer itself. Two backends are available: an
// in-process MemoryArea and Redis, which shares the area across processes
// through keys and a pub/sub channel.
//
//	area := webstorage.NewMemoryArea()
//	tabA, tabB := area.Open(), area.Open()
//
//	events, _ := tabA.Watch(ctx)
//	_ = tabB.Set(ctx, "sync:auth.update", `{"token":"T"}`)
//	ev := <-events // ev.Key == "sync:auth.update"
package webstorage
