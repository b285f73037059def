// Package broadcast fans typed messages out to in-process subscribers.
//
// Unlike a lossy pub/sub, the memory broadcaster never drops a message and
// never blocks the publisher: each subscriber owns an unbounded queue drained
// into its receive channel, so a consumer may itself publish while handling a
// message. Delivery order per subscriber is the broadcast order.
//
// Basic usage:
//
//	b := broadcast.NewMemoryBroadcaster[string]()
//	defer b.Close()
//
//	sub := b.Subscribe(ctx)
//	defer sub.Close()
//
//	_ = b.Broadcast(ctx, broadcast.Message[string]{Sender: "tab-1", Data: "hello"})
package broadcast
