package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrMissingName   = errors.New("guest name is required")
	ErrEmptyMessage  = errors.New("message text is required")
	ErrEmptyReply    = errors.New("reply text is required")
	ErrBadAttendance = errors.New("attendance must be yes or no")
	ErrBadLanguage   = errors.New("language must be es or en")
)

// RecordMeta holds the fields shared by every guest record kind.
type RecordMeta struct {
	LocalID   int64     `json:"localId"`
	RemoteID  string    `json:"remoteId,omitempty"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Meta exposes the shared metadata. It is promoted through embedding so every
// record kind satisfies Record.
func (m *RecordMeta) Meta() *RecordMeta { return m }

// IdentityKey returns the normalized identity used to recognize the same
// guest across replicas and resubmissions: the lowercased email, or a
// synthetic guest-<slug>-<localId> key when no email was supplied. Synthetic
// keys include the local id, so two email-less guests with the same name
// never collide.
func (m *RecordMeta) IdentityKey() string {
	if email := strings.ToLower(strings.TrimSpace(m.Email)); email != "" {
		return email
	}
	return fmt.Sprintf("guest-%s-%d", Slug(m.Name), m.LocalID)
}

// Record is the contract every guest record kind implements with pointer
// receivers.
type Record[R any] interface {
	Meta() *RecordMeta
	Validate() error
	// ApplyUpdate folds a guest resubmission under the same identity key into
	// the record. Non-empty incoming fields overwrite existing ones and
	// updatedAt is bumped.
	ApplyUpdate(incoming R, now time.Time)
	Clone() R
}
