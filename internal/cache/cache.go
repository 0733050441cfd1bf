package cache

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"

	"wedding-guestbook/internal/models"
)

// Keys under which each record kind stores its set.
const (
	RSVPKey    = "rsvps"
	MessageKey = "messages"
)

const schema = `CREATE TABLE IF NOT EXISTS kv (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
)`

// Cache is the fast local key-value store backing the session's read path.
// One key per record kind holds that kind's full record set as a JSON array
// with RFC 3339 timestamps. Read and write failures never reach callers:
// they are logged and treated as an empty cache.
type Cache struct {
	db  *sql.DB
	log zerolog.Logger
}

// Open creates or opens the cache database at path.
func Open(path string) (*Cache, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create cache directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to cache: %w", err)
	}

	// SQLite supports a single writer; keep one connection to avoid
	// SQLITE_BUSY errors.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply cache schema: %w", err)
	}

	logger := zerolog.New(os.Stdout).With().Str("component", "cache").Logger()
	return &Cache{db: db, log: logger}, nil
}

// Close closes the underlying database.
func (c *Cache) Close() error { return c.db.Close() }

func (c *Cache) get(key string) (string, bool) {
	var value string
	err := c.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false
	}
	if err != nil {
		c.log.Error().Err(err).Str("key", key).Msg("cache read failed")
		return "", false
	}
	return value, true
}

func (c *Cache) put(key, value string) bool {
	_, err := c.db.Exec(
		`INSERT INTO kv (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		c.log.Error().Err(err).Str("key", key).Msg("cache write failed")
		return false
	}
	return true
}

func (c *Cache) remove(key string) {
	if _, err := c.db.Exec(`DELETE FROM kv WHERE key = ?`, key); err != nil {
		c.log.Error().Err(err).Str("key", key).Msg("cache delete failed")
	}
}

// placeholderNames guards against demo seed data reaching production: a
// cached set containing any of these is discarded wholesale on load.
var placeholderNames = map[string]struct{}{
	"john doe":        {},
	"jane doe":        {},
	"sample guest":    {},
	"guest example":   {},
	"test user":       {},
	"maría ejemplo":   {},
	"invitado demo":   {},
	"mensaje ejemplo": {},
}

// Load reads the record set stored under key. Failures are logged and
// surface as an empty cache, never as an error.
func Load[R models.Record[R]](c *Cache, key string) []R {
	raw, ok := c.get(key)
	if !ok {
		return nil
	}
	var records []R
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		c.log.Error().Err(err).Str("key", key).Msg("discarding unreadable cache entry")
		c.remove(key)
		return nil
	}
	for _, rec := range records {
		name := strings.ToLower(strings.TrimSpace(rec.Meta().Name))
		if _, stale := placeholderNames[name]; stale {
			c.log.Warn().Str("key", key).Str("name", rec.Meta().Name).
				Msg("placeholder record in cache, discarding the whole set")
			c.remove(key)
			return nil
		}
	}
	return records
}

// Save writes the record set under key and reports success.
func Save[R models.Record[R]](c *Cache, key string, records []R) bool {
	if records == nil {
		records = []R{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		c.log.Error().Err(err).Str("key", key).Msg("cache marshal failed")
		return false
	}
	return c.put(key, string(data))
}

// Clear drops the record set stored under key.
func Clear(c *Cache, key string) { c.remove(key) }
