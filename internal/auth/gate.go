// Package auth guards the admin surface. A shared secret is exchanged once
// for a session token; every admin call after that presents the token.
package auth

import (
	"crypto/subtle"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var ErrBadCredential = errors.New("bad credential")

// DefaultTTL bounds how long an issued session stays valid.
const DefaultTTL = 12 * time.Hour

// SessionToken is an opaque admin session handle.
type SessionToken string

// Config carries the gate's secret material. SecretHash takes precedence
// over the plaintext Secret when both are set.
type Config struct {
	Secret     string
	SecretHash string
	TTL        time.Duration
}

// Gate verifies admin credentials and tracks issued sessions.
type Gate struct {
	mu     sync.Mutex
	cfg    Config
	tokens map[SessionToken]time.Time
	now    func() time.Time
}

// NewGate builds a gate from the given config. A gate with no secret
// configured rejects every credential.
func NewGate(cfg Config) *Gate {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	return &Gate{
		cfg:    cfg,
		tokens: make(map[SessionToken]time.Time),
		now:    time.Now,
	}
}

// Verify exchanges the shared secret for a session token.
func (g *Gate) Verify(credential string) (SessionToken, error) {
	if !g.check(credential) {
		return "", ErrBadCredential
	}
	token := SessionToken(uuid.NewString())
	g.mu.Lock()
	g.tokens[token] = g.now().Add(g.cfg.TTL)
	g.mu.Unlock()
	return token, nil
}

func (g *Gate) check(credential string) bool {
	if g.cfg.SecretHash != "" {
		return bcrypt.CompareHashAndPassword([]byte(g.cfg.SecretHash), []byte(credential)) == nil
	}
	if g.cfg.Secret == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(g.cfg.Secret), []byte(credential)) == 1
}

// Check reports whether the token identifies a live session. Expired
// sessions are forgotten on sight.
func (g *Gate) Check(token SessionToken) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	expiry, ok := g.tokens[token]
	if !ok {
		return false
	}
	if g.now().After(expiry) {
		delete(g.tokens, token)
		return false
	}
	return true
}

// Revoke ends the session for the given token.
func (g *Gate) Revoke(token SessionToken) {
	g.mu.Lock()
	delete(g.tokens, token)
	g.mu.Unlock()
}

// HashSecret derives a bcrypt hash suitable for Config.SecretHash.
func HashSecret(secret string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
