package engine

import (
	"errors"
	"fmt"

	"wedding-guestbook/internal/cache"
	"wedding-guestbook/internal/csvcodec"
	"wedding-guestbook/internal/models"
	"wedding-guestbook/internal/remote"
)

var ErrUnknownField = errors.New("unknown field")

// RSVPEngine adds the attendance-specific admin surface on top of the
// generic engine. RSVP imports reconcile by identity key rather than
// replacing the set, so a re-imported sheet reports added and updated counts
// separately.
type RSVPEngine struct {
	*Engine[*models.RSVP]
}

func NewRSVPEngine(c *cache.Cache, store remote.Store[*models.RSVP]) *RSVPEngine {
	return &RSVPEngine{New(c, store, csvcodec.RSVPCodec{}, Config{
		CacheKey: cache.RSVPKey,
		Policy:   ImportReconcile,
	})}
}

// Approve grants approval, clearing any re-review marker.
func (e *RSVPEngine) Approve(id int64) error {
	_, err := e.Mutate(id, func(r *models.RSVP) error {
		r.Approve(e.Now())
		return nil
	})
	return err
}

// Unapprove returns the record to pending review.
func (e *RSVPEngine) Unapprove(id int64) error {
	_, err := e.Mutate(id, func(r *models.RSVP) error {
		r.Unapprove(e.Now())
		return nil
	})
	return err
}

// ToggleAttendance flips the guest's answer without touching the approval
// flags.
func (e *RSVPEngine) ToggleAttendance(id int64) error {
	_, err := e.Mutate(id, func(r *models.RSVP) error {
		r.ToggleAttendance(e.Now())
		return nil
	})
	return err
}

// EditField sets one editable field by name.
func (e *RSVPEngine) EditField(id int64, field, value string) error {
	_, err := e.Mutate(id, func(r *models.RSVP) error {
		switch field {
		case "name":
			r.Name = value
		case "email":
			r.Email = value
		case "phone":
			r.Phone = value
		case "attendance":
			switch a := models.Attendance(value); a {
			case models.AttendanceYes, models.AttendanceNo:
				r.Attendance = a
			default:
				return models.ErrBadAttendance
			}
		case "plusOne":
			if value == "" {
				r.PlusOne = nil
			} else if r.PlusOne != nil {
				r.PlusOne.Name = value
			} else {
				r.PlusOne = &models.PlusOne{Name: value}
			}
		case "dietary":
			r.Dietary = value
		case "accessibility":
			r.Accessibility = value
		case "transport":
			r.Transport = value
		case "specialNotes":
			r.SpecialNotes = value
		default:
			return fmt.Errorf("%w: %s", ErrUnknownField, field)
		}
		r.UpdatedAt = e.Now()
		return nil
	})
	return err
}

// Pending returns the records awaiting review, newest first. Pending and
// previously-approved both count.
func (e *RSVPEngine) Pending() []*models.RSVP {
	var out []*models.RSVP
	for _, r := range e.Records() {
		if r.NeedsReview() {
			out = append(out, r)
		}
	}
	return out
}
