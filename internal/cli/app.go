// Package cli implements the guestsync command tree.
package cli

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"wedding-guestbook/internal/cache"
	"wedding-guestbook/internal/config"
	"wedding-guestbook/internal/engine"
	"wedding-guestbook/internal/models"
	"wedding-guestbook/internal/remote"
)

const (
	kindRSVP    = "rsvp"
	kindMessage = "message"
)

// app bundles the wired components every command works against.
type app struct {
	cfg      *config.Config
	cache    *cache.Cache
	surreal  *remote.Surreal
	rsvps    *engine.RSVPEngine
	messages *engine.MessageEngine
	log      zerolog.Logger
}

// newApp wires the cache, the remote store and both engines from the
// environment. Without SURREAL_URL, or when the remote endpoint cannot be
// reached, the app runs on the local cache alone.
func newApp() (*app, error) {
	cfg := config.LoadConfig()
	log := zerolog.New(os.Stdout).With().Str("component", "cli").Logger()

	c, err := cache.Open(cfg.CachePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}

	a := &app{cfg: cfg, cache: c, log: log}
	var rsvpStore remote.Store[*models.RSVP] = remote.Unavailable[*models.RSVP]{}
	var messageStore remote.Store[*models.Message] = remote.Unavailable[*models.Message]{}
	if cfg.SurrealURL != "" {
		conn, err := remote.Dial(remote.SurrealConfig{
			URL:       cfg.SurrealURL,
			Namespace: cfg.SurrealNamespace,
			Database:  cfg.SurrealDatabase,
			User:      cfg.SurrealUser,
			Pass:      cfg.SurrealPass,
		})
		if err != nil {
			log.Warn().Err(err).Str("url", cfg.SurrealURL).
				Msg("remote store unreachable, running on local cache")
		} else {
			a.surreal = conn
			rsvpStore = remote.NewSurrealStore[*models.RSVP](conn, remote.RSVPTable)
			messageStore = remote.NewSurrealStore[*models.Message](conn, remote.MessageTable)
		}
	}

	a.rsvps = engine.NewRSVPEngine(c, rsvpStore)
	a.messages = engine.NewMessageEngine(c, messageStore)
	return a, nil
}

// close flushes pending sync work and releases the stores.
func (a *app) close() {
	a.rsvps.Close()
	a.messages.Close()
	if a.surreal != nil {
		a.surreal.Close()
	}
	if err := a.cache.Close(); err != nil {
		a.log.Warn().Err(err).Msg("failed to close cache")
	}
}

func validKind(kind string) error {
	switch kind {
	case kindRSVP, kindMessage:
		return nil
	default:
		return fmt.Errorf("invalid kind %q: must be %q or %q", kind, kindRSVP, kindMessage)
	}
}
