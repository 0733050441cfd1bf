// Package engine keeps guest records consistent across the local cache and
// the remote store. Local writes complete synchronously; remote writes
// happen in the background, serialized per identity key, and the two stores
// converge on reconcile.
package engine

import (
	"context"
	"errors"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"wedding-guestbook/internal/cache"
	"wedding-guestbook/internal/csvcodec"
	"wedding-guestbook/internal/dedup"
	"wedding-guestbook/internal/models"
	"wedding-guestbook/internal/remote"
)

var ErrNotFound = errors.New("record not found")

// ImportPolicy decides what a CSV import does to the existing set.
type ImportPolicy int

const (
	// ImportReplace treats the CSV as a restore: the whole set is replaced.
	ImportReplace ImportPolicy = iota
	// ImportReconcile matches rows to existing records by identity key,
	// overwriting matches and adding the rest.
	ImportReconcile
)

// ImportResult summarizes a CSV import.
type ImportResult struct {
	Added   int `json:"added"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
}

// Config tunes an engine for one record kind.
type Config struct {
	CacheKey string
	Policy   ImportPolicy
}

// Engine is the sync core for one record kind. The adapters are injected at
// construction so tests can substitute in-memory fakes.
type Engine[R models.Record[R]] struct {
	mu      sync.Mutex
	records []R
	lastID  int64

	cache    *cache.Cache
	cacheKey string
	store    remote.Store[R]
	codec    csvcodec.Codec[R]
	policy   ImportPolicy

	queue   *opQueue
	pending sync.WaitGroup
	log     zerolog.Logger
	now     func() time.Time
}

// New builds an engine on top of the given adapters, warming the canonical
// set from the local cache.
func New[R models.Record[R]](c *cache.Cache, store remote.Store[R], codec csvcodec.Codec[R], cfg Config) *Engine[R] {
	e := &Engine[R]{
		cache:    c,
		cacheKey: cfg.CacheKey,
		store:    store,
		codec:    codec,
		policy:   cfg.Policy,
		queue:    newOpQueue(),
		log: zerolog.New(os.Stdout).With().
			Str("component", "engine").Str("kind", cfg.CacheKey).Logger(),
		now: time.Now,
	}
	e.records = cache.Load[R](c, cfg.CacheKey)
	sortNewestFirst(e.records)
	e.bumpLastIDLocked()
	e.log.Info().
		Int("records", len(e.records)).
		Str("remote", store.Status().String()).
		Msg("engine ready")
	return e
}

// Now returns the engine clock's current time.
func (e *Engine[R]) Now() time.Time { return e.now() }

// Records returns the canonical set, newest first. Callers get clones.
func (e *Engine[R]) Records() []R {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]R, len(e.records))
	for i, rec := range e.records {
		out[i] = rec.Clone()
	}
	return out
}

// Get returns the record with the given local id.
func (e *Engine[R]) Get(id int64) (R, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if rec, ok := e.findByID(id); ok {
		return rec.Clone(), nil
	}
	var zero R
	return zero, ErrNotFound
}

// Submit stores a guest submission. The local write completes before Submit
// returns; the remote write happens in the background. A submission whose
// identity key already exists is folded into the existing record as an
// update, which sends a once-approved record back to review.
func (e *Engine[R]) Submit(incoming R) (R, error) {
	var zero R
	if err := incoming.Validate(); err != nil {
		return zero, err
	}

	e.mu.Lock()
	now := e.now()
	meta := incoming.Meta()
	if meta.LocalID == 0 {
		meta.LocalID = e.nextLocalID(now)
	}
	if meta.CreatedAt.IsZero() || meta.CreatedAt.After(now) {
		// a future createdAt would break updatedAt >= createdAt and pin
		// the record at the top of the newest-first order
		meta.CreatedAt = now
	}
	meta.UpdatedAt = now
	key := meta.IdentityKey()

	if existing, ok := e.findByKey(key); ok {
		existing.ApplyUpdate(incoming, now)
		e.persistLocked()
		result := existing.Clone()
		e.mu.Unlock()
		e.pushUpdate(key)
		return result, nil
	}

	rec := incoming.Clone()
	e.records = append(e.records, rec)
	sortNewestFirst(e.records)
	e.persistLocked()
	result := rec.Clone()
	e.mu.Unlock()
	e.pushCreate(key)
	return result, nil
}

// Mutate applies an admin edit to the record with the given local id and
// pushes the change out. Admin edits do not trigger the re-review
// transition; only guest resubmissions do.
func (e *Engine[R]) Mutate(id int64, fn func(R) error) (R, error) {
	var zero R
	e.mu.Lock()
	rec, ok := e.findByID(id)
	if !ok {
		e.mu.Unlock()
		return zero, ErrNotFound
	}
	if err := fn(rec); err != nil {
		e.mu.Unlock()
		return zero, err
	}
	key := rec.Meta().IdentityKey()
	e.persistLocked()
	result := rec.Clone()
	e.mu.Unlock()
	e.pushUpdate(key)
	return result, nil
}

// Delete removes the record locally and asks the remote store to forget it.
// The local removal is guaranteed; the remote one is best effort, so a
// failed remote delete can resurface the record on a later reconcile.
func (e *Engine[R]) Delete(id int64) error {
	e.mu.Lock()
	idx := -1
	for i, rec := range e.records {
		if rec.Meta().LocalID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		e.mu.Unlock()
		return ErrNotFound
	}
	rec := e.records[idx]
	e.records = append(e.records[:idx], e.records[idx+1:]...)
	e.persistLocked()
	key, remoteID := rec.Meta().IdentityKey(), rec.Meta().RemoteID
	e.mu.Unlock()
	e.pushDelete(key, remoteID)
	return nil
}

// ClearAll wipes the local set and attempts to clear the remote collection.
// Only the local wipe is guaranteed.
func (e *Engine[R]) ClearAll() int {
	e.mu.Lock()
	old := e.records
	e.records = nil
	e.persistLocked()
	e.mu.Unlock()
	for _, rec := range old {
		e.pushDelete(rec.Meta().IdentityKey(), rec.Meta().RemoteID)
	}
	return len(old)
}

// Reconcile folds the remote snapshot into the canonical set and pushes
// records the remote has never seen. A failed fetch is a no-op: the local
// cache stays authoritative for the session and the remote is retried on
// the next reconcile. An empty snapshot skips the merge but still pushes.
func (e *Engine[R]) Reconcile(ctx context.Context) {
	remoteRecords, err := e.store.FetchAll(ctx)
	if err != nil {
		e.log.Warn().Err(err).Msg("remote fetch failed, serving local cache")
		return
	}
	defer e.pushUnsynced()
	if len(remoteRecords) == 0 {
		return
	}

	e.mu.Lock()
	merged, discarded := e.merge(e.records, remoteRecords)
	e.records = merged
	e.bumpLastIDLocked()
	keptRemoteIDs := make(map[string]struct{}, len(merged))
	for _, rec := range merged {
		if rid := rec.Meta().RemoteID; rid != "" {
			keptRemoteIDs[rid] = struct{}{}
		}
	}
	snapshot := make([]R, len(merged))
	for i, rec := range merged {
		snapshot[i] = rec.Clone()
	}
	e.mu.Unlock()

	// refresh the fast path without blocking the caller
	e.pending.Add(1)
	go func() {
		defer e.pending.Done()
		cache.Save(e.cache, e.cacheKey, snapshot)
	}()

	for _, dup := range discarded {
		meta := dup.Meta()
		if meta.RemoteID == "" {
			continue
		}
		if _, ok := keptRemoteIDs[meta.RemoteID]; ok {
			// same remote document as a survivor, not a real duplicate
			continue
		}
		e.pushDelete(meta.IdentityKey(), meta.RemoteID)
	}
}

// merge builds the canonical list: local records first, remote records
// overwrite by identity key. Remote wins on conflict because it is the
// durable store other devices read; local-only records have no remote
// counterpart yet and are preserved. Each replica is collapsed first so the
// key-uniqueness invariant holds even if a replica internally contained
// duplicates.
func (e *Engine[R]) merge(local, remoteSet []R) (canonical, discarded []R) {
	localKept, localDups := dedup.Collapse(local)
	remoteKept, remoteDups := dedup.Collapse(remoteSet)
	discarded = append(localDups, remoteDups...)

	byKey := make(map[string]R, len(localKept)+len(remoteKept))
	var order []string
	for _, rec := range localKept {
		key := rec.Meta().IdentityKey()
		byKey[key] = rec
		order = append(order, key)
	}
	for _, rec := range remoteKept {
		key := rec.Meta().IdentityKey()
		if prev, ok := byKey[key]; ok {
			// keep the local id so synthetic identities stay stable
			if rec.Meta().LocalID == 0 {
				rec.Meta().LocalID = prev.Meta().LocalID
			}
		} else {
			order = append(order, key)
		}
		byKey[key] = rec
	}

	canonical = make([]R, 0, len(order))
	for _, key := range order {
		canonical = append(canonical, byKey[key])
	}
	sortNewestFirst(canonical)
	return canonical, discarded
}

// Diagnose reports duplicate identities without changing anything.
func (e *Engine[R]) Diagnose() dedup.Report {
	e.mu.Lock()
	defer e.mu.Unlock()
	return dedup.Diagnose(e.records)
}

// Dedup collapses duplicate identities, keeping the newest record per key,
// and issues best-effort remote deletes for the discarded remote-backed
// copies. It returns the number of records removed.
func (e *Engine[R]) Dedup() int {
	e.mu.Lock()
	kept, discarded := dedup.Collapse(e.records)
	sortNewestFirst(kept)
	e.records = kept
	e.persistLocked()
	keptRemoteIDs := make(map[string]struct{}, len(kept))
	for _, rec := range kept {
		if rid := rec.Meta().RemoteID; rid != "" {
			keptRemoteIDs[rid] = struct{}{}
		}
	}
	e.mu.Unlock()

	for _, dup := range discarded {
		meta := dup.Meta()
		if meta.RemoteID == "" {
			continue
		}
		if _, ok := keptRemoteIDs[meta.RemoteID]; ok {
			continue
		}
		e.pushDelete(meta.IdentityKey(), meta.RemoteID)
	}
	return len(discarded)
}

// ExportCSV renders the canonical set in the portable flat-file format.
func (e *Engine[R]) ExportCSV() string {
	return e.codec.Export(e.Records())
}

// ImportCSV parses the CSV text and applies it according to the engine's
// import policy. A CSV with zero parseable rows fails without touching the
// existing set.
func (e *Engine[R]) ImportCSV(content string) (ImportResult, error) {
	parsed, skipped, err := e.codec.Parse(content)
	if err != nil {
		return ImportResult{Skipped: skipped}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	res := ImportResult{Skipped: skipped}
	now := e.now()

	switch e.policy {
	case ImportReconcile:
		for _, rec := range parsed {
			meta := rec.Meta()
			if meta.LocalID == 0 {
				meta.LocalID = e.nextLocalID(now)
			}
			if idx, ok := e.findIndexByKey(meta.IdentityKey()); ok {
				// full overwrite from the file, keeping the stored identity
				existing := e.records[idx].Meta()
				meta.LocalID = existing.LocalID
				meta.RemoteID = existing.RemoteID
				meta.CreatedAt = existing.CreatedAt
				if meta.UpdatedAt.Before(meta.CreatedAt) {
					meta.UpdatedAt = meta.CreatedAt
				}
				e.records[idx] = rec
				res.Updated++
			} else {
				e.records = append(e.records, rec)
				res.Added++
			}
		}
	default: // ImportReplace: a restore, not a merge
		for _, rec := range parsed {
			if rec.Meta().LocalID == 0 {
				rec.Meta().LocalID = e.nextLocalID(now)
			}
		}
		e.records = parsed
		res.Added = len(parsed)
	}

	sortNewestFirst(e.records)
	e.bumpLastIDLocked()
	e.persistLocked()
	return res, nil
}

// Flush waits for all background remote operations to settle.
func (e *Engine[R]) Flush() { e.pending.Wait() }

// Close flushes background work.
func (e *Engine[R]) Close() { e.Flush() }

// ---- internals ----

// nextLocalID returns a monotonic timestamp-based id.
func (e *Engine[R]) nextLocalID(now time.Time) int64 {
	id := now.UnixMilli()
	if id <= e.lastID {
		id = e.lastID + 1
	}
	e.lastID = id
	return id
}

func (e *Engine[R]) bumpLastIDLocked() {
	for _, rec := range e.records {
		if id := rec.Meta().LocalID; id > e.lastID {
			e.lastID = id
		}
	}
}

func (e *Engine[R]) findByID(id int64) (R, bool) {
	for _, rec := range e.records {
		if rec.Meta().LocalID == id {
			return rec, true
		}
	}
	var zero R
	return zero, false
}

func (e *Engine[R]) findByKey(key string) (R, bool) {
	if idx, ok := e.findIndexByKey(key); ok {
		return e.records[idx], true
	}
	var zero R
	return zero, false
}

func (e *Engine[R]) findIndexByKey(key string) (int, bool) {
	for i, rec := range e.records {
		if rec.Meta().IdentityKey() == key {
			return i, true
		}
	}
	return 0, false
}

func (e *Engine[R]) persistLocked() {
	cache.Save(e.cache, e.cacheKey, e.records)
}

// pushCreate asks the remote store for a document id in the background. On
// success only remoteId is patched back, so local edits made while the
// create was in flight are preserved.
func (e *Engine[R]) pushCreate(key string) {
	e.queue.run(key, &e.pending, func() {
		e.mu.Lock()
		rec, ok := e.findByKey(key)
		if !ok || rec.Meta().RemoteID != "" {
			e.mu.Unlock()
			return
		}
		snapshot := rec.Clone()
		e.mu.Unlock()

		remoteID, err := e.store.Create(context.Background(), snapshot)
		if err != nil {
			e.log.Warn().Err(err).Str("key", key).Msg("remote create failed, keeping local copy")
			return
		}
		e.mu.Lock()
		if rec, ok := e.findByKey(key); ok {
			rec.Meta().RemoteID = remoteID
			e.persistLocked()
		}
		e.mu.Unlock()
	})
}

func (e *Engine[R]) pushUpdate(key string) {
	e.queue.run(key, &e.pending, func() {
		e.mu.Lock()
		rec, ok := e.findByKey(key)
		if !ok {
			e.mu.Unlock()
			return
		}
		remoteID := rec.Meta().RemoteID
		snapshot := rec.Clone()
		e.mu.Unlock()

		if remoteID == "" {
			// never synced; a queued create or the next reconcile carries
			// the current payload
			return
		}
		if err := e.store.Update(context.Background(), remoteID, snapshot); err != nil {
			e.log.Warn().Err(err).Str("key", key).Msg("remote update failed, keeping local copy")
		}
	})
}

// pushUnsynced queues creates for records that never reached the remote:
// submissions whose create failed during an outage, or records brought in
// via CSV import.
func (e *Engine[R]) pushUnsynced() {
	if e.store.Status() != remote.StatusConnected {
		return
	}
	e.mu.Lock()
	var keys []string
	for _, rec := range e.records {
		if rec.Meta().RemoteID == "" {
			keys = append(keys, rec.Meta().IdentityKey())
		}
	}
	e.mu.Unlock()
	for _, key := range keys {
		e.pushCreate(key)
	}
}

func (e *Engine[R]) pushDelete(key, remoteID string) {
	if remoteID == "" {
		return
	}
	e.queue.run(key, &e.pending, func() {
		if err := e.store.Delete(context.Background(), remoteID); err != nil {
			e.log.Warn().Err(err).Str("remoteId", remoteID).
				Msg("remote delete failed, record may resurface on reconcile")
		}
	})
}

func sortNewestFirst[R models.Record[R]](records []R) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i].Meta(), records[j].Meta()
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.LocalID > b.LocalID
	})
}
