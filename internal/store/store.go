// Package store is the backing-store boundary: a hierarchical collection store with
// push/set/update/remove and live full-snapshot subscriptions. The application only
// depends on the interfaces here; SQL and in-memory adapters implement them.
package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"pharmstock/m/domain"
)

// ErrNotFound is returned when a keyed record does not exist.
var ErrNotFound = errors.New("store: not found")

// Items holds inventory items keyed under a scope.
type Items interface {
	List(ctx context.Context, scope domain.Scope) ([]domain.Item, error)
	Get(ctx context.Context, scope domain.Scope, id string) (domain.Item, error)
	// Push stores item under a new store-generated id and returns the stored record.
	Push(ctx context.Context, scope domain.Scope, item domain.Item) (domain.Item, error)
	// Set overwrites the record at item.ID, creating it if missing.
	Set(ctx context.Context, scope domain.Scope, item domain.Item) error
	Update(ctx context.Context, scope domain.Scope, id string, patch domain.ItemPatch) error
	Remove(ctx context.Context, scope domain.Scope, id string) error
	// RemoveScope deletes every item under scope.
	RemoveScope(ctx context.Context, scope domain.Scope) error
}

// Categories holds drug categories.
type Categories interface {
	List(ctx context.Context) ([]domain.Category, error)
	Get(ctx context.Context, id string) (domain.Category, error)
	Push(ctx context.Context, c domain.Category) (domain.Category, error)
	Set(ctx context.Context, c domain.Category) error
	Remove(ctx context.Context, id string) error
}

// Activities is the append-only admin log.
type Activities interface {
	Append(ctx context.Context, a domain.Activity) (domain.Activity, error)
	List(ctx context.Context) ([]domain.Activity, error)
}

// Shortages holds the shared shortage list.
type Shortages interface {
	List(ctx context.Context) ([]domain.Shortage, error)
	Get(ctx context.Context, id string) (domain.Shortage, error)
	Push(ctx context.Context, s domain.Shortage) (domain.Shortage, error)
	Remove(ctx context.Context, id string) error
}

// Backend bundles the collections of one store together with its change notifier.
type Backend struct {
	Items      Items
	Categories Categories
	Activities Activities
	Shortages  Shortages
	Notifier   *Notifier
}

// NewKey returns a fresh push key.
func NewKey() string {
	return uuid.NewString()
}

var (
	seqMu   sync.Mutex
	lastSeq int64
)

// nextSeq returns a strictly increasing arrival sequence so listings keep push order.
func nextSeq() int64 {
	seqMu.Lock()
	defer seqMu.Unlock()
	n := time.Now().UnixNano()
	if n <= lastSeq {
		n = lastSeq + 1
	}
	lastSeq = n
	return n
}
