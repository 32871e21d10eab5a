package analytics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"luxeleads/internal/models"
	"luxeleads/internal/store"
)

// State is the lifecycle position of a Controller.
type State string

const (
	StateIdle         State = "idle"
	StateLoading      State = "loading"
	StateReady        State = "ready"
	StateError        State = "error"
	StateUnsubscribed State = "unsubscribed"
)

// Cycle outcomes reported to an Observer.
const (
	OutcomeReady     = "ready"
	OutcomeError     = "error"
	OutcomeDiscarded = "discarded"
)

// ErrStopped is returned by Start on a controller that has been stopped.
var ErrStopped = errors.New("controller stopped")

// watchedCollections are the collections whose changes invalidate the view.
var watchedCollections = []store.Collection{store.Leads, store.LeadStatuses}

// Snapshot is the published controller state. View is set only in StateReady and
// Error only in StateError.
type Snapshot struct {
	State State                 `json:"state"`
	View  *models.AggregateView `json:"view,omitempty"`
	Error string                `json:"error,omitempty"`
}

// Observer receives controller events. Implementations must not block.
type Observer interface {
	CycleCompleted(outcome string, elapsed time.Duration)
	NotificationCoalesced()
}

// Config configures a Controller.
type Config struct {
	Options
	WindowDays int
	Observer   Observer
	Logger     *slog.Logger
}

// Controller keeps an AggregateView current. It runs one fetch cycle at a time;
// change notifications that arrive while a cycle is running collapse into a single
// follow-up cycle.
type Controller struct {
	client   store.Notifier
	fetcher  *Fetcher
	opts     Options
	observer Observer
	logger   *slog.Logger

	mu       sync.Mutex
	ctx      context.Context
	snapshot Snapshot
	started  bool
	stopped  bool
	loading  bool
	pending  bool
	subs     []store.Subscription
	watchers map[chan Snapshot]struct{}

	wg sync.WaitGroup
}

// NewController creates an idle controller over client.
func NewController(client store.Client, cfg Config) *Controller {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		client:   client,
		fetcher:  NewFetcher(client, cfg.WindowDays),
		opts:     cfg.Options,
		observer: cfg.Observer,
		logger:   logger,
		snapshot: Snapshot{State: StateIdle},
		watchers: make(map[chan Snapshot]struct{}),
	}
}

// Start subscribes to lead and status changes and begins the initial cycle. Calling
// it again is a no-op. ctx is used for every fetch; Stop does not cancel it.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stopped {
		return ErrStopped
	}
	if c.started {
		return nil
	}

	subs := make([]store.Subscription, 0, len(watchedCollections))
	for _, coll := range watchedCollections {
		sub, err := c.client.Subscribe(coll, c.notify)
		if err != nil {
			for _, s := range subs {
				s.Unsubscribe()
			}
			return fmt.Errorf("subscribe to %s: %w", coll, err)
		}
		subs = append(subs, sub)
	}

	c.subs = subs
	c.started = true
	c.ctx = ctx
	c.triggerLocked()
	return nil
}

// Refresh forces a cycle. If one is running, a follow-up is scheduled instead. It
// does nothing before Start or after Stop.
func (c *Controller) Refresh() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.triggerLocked()
}

// Stop releases the subscriptions and moves to StateUnsubscribed. A cycle that is in
// flight runs to completion but its result is dropped. Stop closes every watch
// channel.
func (c *Controller) Stop() {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return
	}
	c.stopped = true
	c.pending = false
	subs := c.subs
	c.subs = nil
	c.publishLocked(Snapshot{State: StateUnsubscribed})
	for ch := range c.watchers {
		close(ch)
	}
	c.watchers = nil
	c.mu.Unlock()

	for _, s := range subs {
		s.Unsubscribe()
	}
}

// Wait blocks until no cycle is running.
func (c *Controller) Wait() {
	c.wg.Wait()
}

// View returns the current snapshot.
func (c *Controller) View() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot
}

// Watch returns a channel that holds the latest snapshot, starting with the current
// one. Intermediate snapshots may be skipped by a slow reader. The channel is closed
// by Stop or by calling cancel.
func (c *Controller) Watch() (updates <-chan Snapshot, cancel func()) {
	ch := make(chan Snapshot, 1)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stopped {
		ch <- c.snapshot
		close(ch)
		return ch, func() {}
	}
	ch <- c.snapshot
	c.watchers[ch] = struct{}{}

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			if _, ok := c.watchers[ch]; ok {
				delete(c.watchers, ch)
				close(ch)
			}
		})
	}
}

// notify is the change callback handed to the store.
func (c *Controller) notify() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.triggerLocked()
}

func (c *Controller) triggerLocked() {
	if !c.started || c.stopped {
		return
	}
	if c.loading {
		if !c.pending && c.observer != nil {
			c.observer.NotificationCoalesced()
		}
		c.pending = true
		return
	}
	c.loading = true
	c.publishLocked(Snapshot{State: StateLoading})
	c.wg.Add(1)
	go c.run(c.ctx)
}

// run executes cycles until no follow-up is pending.
func (c *Controller) run(ctx context.Context) {
	defer c.wg.Done()

	for {
		start := time.Now()
		view, err := c.load(ctx)
		elapsed := time.Since(start)

		c.mu.Lock()
		if c.stopped {
			c.loading = false
			c.mu.Unlock()
			c.observe(OutcomeDiscarded, elapsed)
			return
		}

		if err != nil {
			c.logger.Warn("lead analytics cycle failed", "error", err, "elapsed", elapsed)
			c.publishLocked(Snapshot{State: StateError, Error: "Failed to load lead analytics: " + err.Error()})
			c.observe(OutcomeError, elapsed)
		} else {
			c.publishLocked(Snapshot{State: StateReady, View: view})
			c.observe(OutcomeReady, elapsed)
		}

		if !c.pending {
			c.loading = false
			c.mu.Unlock()
			return
		}
		c.pending = false
		c.publishLocked(Snapshot{State: StateLoading})
		c.mu.Unlock()
	}
}

func (c *Controller) load(ctx context.Context) (*models.AggregateView, error) {
	in, err := c.fetcher.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	return Aggregate(in, c.opts), nil
}

func (c *Controller) observe(outcome string, elapsed time.Duration) {
	if c.observer != nil {
		c.observer.CycleCompleted(outcome, elapsed)
	}
}

// publishLocked stores s and hands it to every watcher, replacing any unread value.
func (c *Controller) publishLocked(s Snapshot) {
	c.snapshot = s
	for ch := range c.watchers {
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- s:
		default:
		}
	}
}
