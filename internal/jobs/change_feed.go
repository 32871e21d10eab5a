// Package jobs holds long-running background loops started by the server.
package jobs

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"luxeleads/internal/store"
)

// Listener blocks delivering notification payloads on a channel until ctx is done
// or the connection fails. *db.DB implements it.
type Listener interface {
	Listen(ctx context.Context, channel string, ready func(), handle func(payload string)) error
}

// ChangeFeed fans database change notifications out to per-collection callbacks.
// Payloads are table names. It implements store.Notifier.
type ChangeFeed struct {
	listener Listener
	channel  string
	retry    time.Duration
	logger   *slog.Logger

	mu     sync.Mutex
	subs   map[store.Collection]map[uint64]func()
	nextID uint64
}

// NewChangeFeed creates a feed over channel. retry is the wait between reconnects.
func NewChangeFeed(listener Listener, channel string, retry time.Duration, logger *slog.Logger) *ChangeFeed {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChangeFeed{
		listener: listener,
		channel:  channel,
		retry:    retry,
		logger:   logger,
		subs:     make(map[store.Collection]map[uint64]func()),
	}
}

// Subscribe registers onChange for notifications about c. Callbacks run on the feed
// goroutine and must not block.
func (f *ChangeFeed) Subscribe(c store.Collection, onChange func()) (store.Subscription, error) {
	if _, err := store.Lookup(c); err != nil {
		return nil, err
	}

	f.mu.Lock()
	f.nextID++
	id := f.nextID
	if f.subs[c] == nil {
		f.subs[c] = make(map[uint64]func())
	}
	f.subs[c][id] = onChange
	f.mu.Unlock()

	var once sync.Once
	return store.SubscriptionFunc(func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.subs[c], id)
			f.mu.Unlock()
		})
	}), nil
}

// Start runs the listen loop until ctx is cancelled, reconnecting after failures.
// After a reconnect every subscriber is signalled once, since changes made while
// disconnected were not observed.
func (f *ChangeFeed) Start(ctx context.Context) {
	f.logger.Info("change feed started", "channel", f.channel, "retry", f.retry)

	reconnecting := false
	for {
		err := f.listener.Listen(ctx, f.channel, func() {
			if reconnecting {
				f.logger.Info("change feed reconnected", "channel", f.channel)
				f.broadcast()
			}
		}, f.dispatch)
		if ctx.Err() != nil {
			f.logger.Info("change feed stopped")
			return
		}
		if err != nil {
			f.logger.Error("change feed disconnected", "error", err, "retry_in", f.retry)
		}
		reconnecting = true

		timer := time.NewTimer(f.retry)
		select {
		case <-ctx.Done():
			timer.Stop()
			f.logger.Info("change feed stopped")
			return
		case <-timer.C:
		}
	}
}

func (f *ChangeFeed) dispatch(payload string) {
	for _, fn := range f.callbacks(store.Collection(payload)) {
		fn()
	}
}

func (f *ChangeFeed) broadcast() {
	f.mu.Lock()
	collections := make([]store.Collection, 0, len(f.subs))
	for c := range f.subs {
		collections = append(collections, c)
	}
	f.mu.Unlock()

	for _, c := range collections {
		for _, fn := range f.callbacks(c) {
			fn()
		}
	}
}

func (f *ChangeFeed) callbacks(c store.Collection) []func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]func(), 0, len(f.subs[c]))
	for _, fn := range f.subs[c] {
		out = append(out, fn)
	}
	return out
}
