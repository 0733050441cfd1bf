package remote

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"wedding-guestbook/internal/models"
)

// Memory is an in-process Store. It backs development runs without a remote
// endpoint and substitutes for SurrealDB in tests.
type Memory[R models.Record[R]] struct {
	mu    sync.Mutex
	table string
	docs  map[string]R
}

// NewMemory creates an empty in-memory collection named like its remote
// counterpart.
func NewMemory[R models.Record[R]](table string) *Memory[R] {
	return &Memory[R]{table: table, docs: make(map[string]R)}
}

func (m *Memory[R]) Status() Status { return StatusConnected }

func (m *Memory[R]) FetchAll(_ context.Context) ([]R, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	records := make([]R, 0, len(m.docs))
	for id, doc := range m.docs {
		c := doc.Clone()
		c.Meta().RemoteID = id
		records = append(records, c)
	}
	// newest first, like the remote collection's timestamp ordering
	sort.Slice(records, func(i, j int) bool {
		return records[i].Meta().CreatedAt.After(records[j].Meta().CreatedAt)
	})
	return records, nil
}

func (m *Memory[R]) Create(_ context.Context, record R) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.table + ":" + uuid.NewString()
	doc := record.Clone()
	doc.Meta().RemoteID = id
	m.docs[id] = doc
	return id, nil
}

func (m *Memory[R]) Update(_ context.Context, remoteID string, record R) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.docs[remoteID]; !ok {
		return ErrNotFound
	}
	doc := record.Clone()
	doc.Meta().RemoteID = remoteID
	m.docs[remoteID] = doc
	return nil
}

func (m *Memory[R]) Delete(_ context.Context, remoteID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.docs, remoteID)
	return nil
}

// Len reports the number of stored documents.
func (m *Memory[R]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.docs)
}

// Seed inserts documents directly, bypassing id assignment when the record
// already carries a remote id. Intended for tests.
func (m *Memory[R]) Seed(records ...R) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, rec := range records {
		id := rec.Meta().RemoteID
		if id == "" {
			id = m.table + ":" + uuid.NewString()
		}
		doc := rec.Clone()
		doc.Meta().RemoteID = id
		m.docs[id] = doc
	}
}
