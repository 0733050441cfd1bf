package engine

import (
	"fmt"
	"strings"

	"wedding-guestbook/internal/cache"
	"wedding-guestbook/internal/csvcodec"
	"wedding-guestbook/internal/models"
	"wedding-guestbook/internal/remote"
)

// MessageEngine adds the guest-book surface on top of the generic engine.
// Message imports replace the whole set: they are restores, not merges.
type MessageEngine struct {
	*Engine[*models.Message]
}

func NewMessageEngine(c *cache.Cache, store remote.Store[*models.Message]) *MessageEngine {
	return &MessageEngine{New(c, store, csvcodec.MessageCodec{}, Config{
		CacheKey: cache.MessageKey,
		Policy:   ImportReplace,
	})}
}

// Like increments the like counter and returns the new count.
func (e *MessageEngine) Like(id int64) (int, error) {
	rec, err := e.Mutate(id, func(m *models.Message) error {
		m.Like()
		m.UpdatedAt = e.Now()
		return nil
	})
	if err != nil {
		return 0, err
	}
	return rec.Likes, nil
}

// AddReply appends a reply to the message's thread.
func (e *MessageEngine) AddReply(id int64, reply models.Reply) error {
	if strings.TrimSpace(reply.Text) == "" {
		return models.ErrEmptyReply
	}
	_, err := e.Mutate(id, func(m *models.Message) error {
		m.AddReply(reply, e.Now())
		return nil
	})
	return err
}

// EditField sets one editable field by name.
func (e *MessageEngine) EditField(id int64, field, value string) error {
	_, err := e.Mutate(id, func(m *models.Message) error {
		switch field {
		case "name":
			m.Name = value
		case "email":
			m.Email = value
		case "message":
			if strings.TrimSpace(value) == "" {
				return models.ErrEmptyMessage
			}
			m.Message = value
		case "language":
			switch lang := models.Language(value); lang {
			case models.LanguageES, models.LanguageEN:
				m.Language = lang
			default:
				return models.ErrBadLanguage
			}
		default:
			return fmt.Errorf("%w: %s", ErrUnknownField, field)
		}
		m.UpdatedAt = e.Now()
		return nil
	})
	return err
}
