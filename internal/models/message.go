package models

import (
	"strings"
	"time"
)

// Language of a guest-book message.
type Language string

const (
	LanguageES Language = "es"
	LanguageEN Language = "en"
)

// Reply is one entry in a message's reply thread.
type Reply struct {
	Text       string    `json:"text"`
	IsFromHost bool      `json:"isFromHost"`
	AuthorName string    `json:"authorName,omitempty"`
	Date       time.Time `json:"date"`
}

// Message is a guest-book entry.
type Message struct {
	RecordMeta
	Message  string   `json:"message"`
	Likes    int      `json:"likes"`
	Language Language `json:"language,omitempty"`
	Replies  []Reply  `json:"replies,omitempty"`
}

func (m *Message) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return ErrMissingName
	}
	if strings.TrimSpace(m.Message) == "" {
		return ErrEmptyMessage
	}
	switch m.Language {
	case "", LanguageES, LanguageEN:
		return nil
	default:
		return ErrBadLanguage
	}
}

// ApplyUpdate folds a resubmission into the message. Likes and the reply
// thread belong to the existing record, not the resubmission, so they are
// kept as they are.
func (m *Message) ApplyUpdate(in *Message, now time.Time) {
	if in.Name != "" {
		m.Name = in.Name
	}
	if in.Email != "" {
		m.Email = in.Email
	}
	if strings.TrimSpace(in.Message) != "" {
		m.Message = in.Message
	}
	if in.Language != "" {
		m.Language = in.Language
	}
	m.UpdatedAt = now
}

// Like increments the like counter. The count only ever goes up.
func (m *Message) Like() { m.Likes++ }

// AddReply appends to the reply thread, stamping the reply when it carries no
// date of its own.
func (m *Message) AddReply(reply Reply, now time.Time) {
	if reply.Date.IsZero() {
		reply.Date = now
	}
	m.Replies = append(m.Replies, reply)
	m.UpdatedAt = now
}

func (m *Message) Clone() *Message {
	c := *m
	if len(m.Replies) > 0 {
		c.Replies = append([]Reply(nil), m.Replies...)
	}
	return &c
}
