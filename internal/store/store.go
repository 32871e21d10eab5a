// Package store defines the record store boundary the lead features are built on:
// filtered reads, inserts, in-place updates and payload-free change notifications
// over a small set of named collections.
package store

import (
	"context"
	"errors"
)

// Collection names a table of records.
type Collection string

// Known collections.
const (
	Leads        Collection = "leads"
	LeadStatuses Collection = "lead_statuses"
	LeadScores   Collection = "lead_scores"
)

var (
	ErrUnknownCollection = errors.New("unknown collection")
	ErrUnknownColumn     = errors.New("unknown column")
	ErrUnsupportedFilter = errors.New("unsupported filter")
	ErrInvalidValue      = errors.New("invalid value")
	ErrDuplicate         = errors.New("duplicate record")
	ErrClosed            = errors.New("store closed")
)

// Order sorts query results by a column.
type Order struct {
	Column string
	Desc   bool
}

// Query describes a read against one collection. Empty Columns selects every column.
type Query struct {
	Collection Collection
	Columns    []string
	Filters    []Filter
	OrderBy    []Order
	Limit      int
}

// Records is the read/write half of a record store.
type Records interface {
	Count(ctx context.Context, c Collection, filters ...Filter) (int64, error)
	Query(ctx context.Context, q Query) ([]Record, error)
	Insert(ctx context.Context, c Collection, rec Record) (Record, error)
	Update(ctx context.Context, c Collection, filters []Filter, patch Record) (int64, error)
}

// Subscription is a registered change callback.
type Subscription interface {
	Unsubscribe()
}

// SubscriptionFunc adapts a plain function to Subscription.
type SubscriptionFunc func()

// Unsubscribe calls f.
func (f SubscriptionFunc) Unsubscribe() { f() }

// Notifier delivers a signal whenever rows in a collection are inserted, updated or
// deleted. The signal carries no row data.
type Notifier interface {
	Subscribe(c Collection, onChange func()) (Subscription, error)
}

// Client is the full record store capability.
type Client interface {
	Records
	Notifier
}

type joined struct {
	Records
	Notifier
}

// Join combines a record backend and a change notifier into a Client.
func Join(r Records, n Notifier) Client {
	return joined{Records: r, Notifier: n}
}
