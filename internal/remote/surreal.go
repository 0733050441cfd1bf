package remote

import (
	"context"
	"fmt"

	"github.com/surrealdb/surrealdb.go"

	"wedding-guestbook/internal/models"
)

// Table names, one collection per record kind.
const (
	RSVPTable    = "rsvps"
	MessageTable = "messages"
)

// SurrealConfig carries the connection parameters for the remote database.
type SurrealConfig struct {
	URL       string
	Namespace string
	Database  string
	User      string
	Pass      string
}

// Surreal is an authenticated connection to the remote SurrealDB instance,
// shared by the per-kind stores.
type Surreal struct {
	db *surrealdb.DB
}

// Dial connects, signs in and selects the namespace/database. This is the
// one place the remote capability is decided: a handle either works or the
// caller falls back to an Unavailable store.
func Dial(cfg SurrealConfig) (*Surreal, error) {
	db, err := surrealdb.New(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to surrealdb: %w", err)
	}
	if _, err := db.Signin(map[string]interface{}{"user": cfg.User, "pass": cfg.Pass}); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to sign in to surrealdb: %w", err)
	}
	if _, err := db.Use(cfg.Namespace, cfg.Database); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to select surrealdb database: %w", err)
	}
	return &Surreal{db: db}, nil
}

// Close closes the underlying connection.
func (s *Surreal) Close() { s.db.Close() }

// SurrealStore is a Store backed by one SurrealDB table. Documents carry the
// full record payload; the server assigns the thing id returned as remoteId.
type SurrealStore[R models.Record[R]] struct {
	db    *surrealdb.DB
	table string
}

// NewSurrealStore binds a record kind to its table on an open connection.
func NewSurrealStore[R models.Record[R]](conn *Surreal, table string) *SurrealStore[R] {
	return &SurrealStore[R]{db: conn.db, table: table}
}

func (s *SurrealStore[R]) Status() Status { return StatusConnected }

// thingID captures the server-assigned id of a document.
type thingID struct {
	ID string `json:"id"`
}

func (s *SurrealStore[R]) FetchAll(_ context.Context) ([]R, error) {
	raw, err := s.db.Select(s.table)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s collection: %w", s.table, err)
	}
	if raw == nil {
		return nil, nil
	}
	var records []R
	if err := surrealdb.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("failed to decode %s collection: %w", s.table, err)
	}
	var ids []thingID
	if err := surrealdb.Unmarshal(raw, &ids); err != nil {
		return nil, fmt.Errorf("failed to decode %s ids: %w", s.table, err)
	}
	for i := range records {
		if i < len(ids) {
			records[i].Meta().RemoteID = ids[i].ID
		}
	}
	return records, nil
}

func (s *SurrealStore[R]) Create(_ context.Context, record R) (string, error) {
	raw, err := s.db.Create(s.table, record)
	if err != nil {
		return "", fmt.Errorf("failed to create %s document: %w", s.table, err)
	}
	var ids []thingID
	if err := surrealdb.Unmarshal(raw, &ids); err == nil && len(ids) > 0 && ids[0].ID != "" {
		return ids[0].ID, nil
	}
	var one thingID
	if err := surrealdb.Unmarshal(raw, &one); err == nil && one.ID != "" {
		return one.ID, nil
	}
	return "", fmt.Errorf("create response for %s carried no id", s.table)
}

func (s *SurrealStore[R]) Update(_ context.Context, remoteID string, record R) error {
	if _, err := s.db.Change(remoteID, record); err != nil {
		return fmt.Errorf("failed to update %s: %w", remoteID, err)
	}
	return nil
}

func (s *SurrealStore[R]) Delete(_ context.Context, remoteID string) error {
	if _, err := s.db.Delete(remoteID); err != nil {
		return fmt.Errorf("failed to delete %s: %w", remoteID, err)
	}
	return nil
}
