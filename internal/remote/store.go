// Package remote adapts the authoritative document store behind a small
// per-kind interface. The capability of an adapter is decided once, at
// construction; callers never re-derive it before individual calls.
package remote

import (
	"context"
	"errors"

	"wedding-guestbook/internal/models"
)

var (
	ErrUnavailable = errors.New("remote store is not configured")
	ErrNotFound    = errors.New("remote document not found")
)

// Status reports whether an adapter can reach its backing store.
type Status int

const (
	StatusUnavailable Status = iota
	StatusConnected
)

func (s Status) String() string {
	if s == StatusConnected {
		return "connected"
	}
	return "unavailable"
}

// Store is the remote document collection for one record kind. All
// operations are best effort from the engine's point of view: errors are
// logged by the caller, the local write stays authoritative for the session,
// and the stores converge on the next reconcile.
type Store[R models.Record[R]] interface {
	// FetchAll returns every document in the collection.
	FetchAll(ctx context.Context) ([]R, error)
	// Create writes a new document and returns the server-assigned id.
	Create(ctx context.Context, record R) (string, error)
	// Update overwrites the document identified by remoteID.
	Update(ctx context.Context, remoteID string, record R) error
	// Delete removes the document identified by remoteID.
	Delete(ctx context.Context, remoteID string) error
	Status() Status
}

// Unavailable is the adapter used when no remote endpoint is configured.
// Fetches return an empty snapshot, so reconciliation is a no-op and the
// local cache stays authoritative.
type Unavailable[R models.Record[R]] struct{}

func (Unavailable[R]) FetchAll(context.Context) ([]R, error)     { return nil, nil }
func (Unavailable[R]) Create(context.Context, R) (string, error) { return "", ErrUnavailable }
func (Unavailable[R]) Update(context.Context, string, R) error   { return ErrUnavailable }
func (Unavailable[R]) Delete(context.Context, string) error      { return ErrUnavailable }
func (Unavailable[R]) Status() Status                            { return StatusUnavailable }
