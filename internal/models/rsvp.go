package models

import (
	"strings"
	"time"
)

// Attendance is the guest's answer to the invitation.
type Attendance string

const (
	AttendanceYes Attendance = "yes"
	AttendanceNo  Attendance = "no"
)

// PlusOne is an optional companion attached to an RSVP.
type PlusOne struct {
	Name    string `json:"name"`
	Dietary string `json:"dietary,omitempty"`
}

// RSVP is a guest's attendance record.
type RSVP struct {
	RecordMeta
	Attendance         Attendance `json:"attendance"`
	Phone              string     `json:"phone,omitempty"`
	Approved           bool       `json:"approved"`
	PreviouslyApproved bool       `json:"previouslyApproved"`
	PlusOne            *PlusOne   `json:"plusOne,omitempty"`
	Dietary            string     `json:"dietary,omitempty"`
	Accessibility      string     `json:"accessibility,omitempty"`
	Transport          string     `json:"transport,omitempty"`
	SpecialNotes       string     `json:"specialNotes,omitempty"`
}

func (r *RSVP) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return ErrMissingName
	}
	switch r.Attendance {
	case AttendanceYes, AttendanceNo:
		return nil
	default:
		return ErrBadAttendance
	}
}

// ApplyUpdate folds a resubmission into the record. Overwrite is
// last-writer-wins for non-empty incoming values, and a record that was
// already approved drops back to needs-review.
func (r *RSVP) ApplyUpdate(in *RSVP, now time.Time) {
	if in.Name != "" {
		r.Name = in.Name
	}
	if in.Email != "" {
		r.Email = in.Email
	}
	if in.Phone != "" {
		r.Phone = in.Phone
	}
	if in.Attendance != "" {
		r.Attendance = in.Attendance
	}
	if in.PlusOne != nil {
		p := *in.PlusOne
		r.PlusOne = &p
	}
	if in.Dietary != "" {
		r.Dietary = in.Dietary
	}
	if in.Accessibility != "" {
		r.Accessibility = in.Accessibility
	}
	if in.Transport != "" {
		r.Transport = in.Transport
	}
	if in.SpecialNotes != "" {
		r.SpecialNotes = in.SpecialNotes
	}
	r.UpdatedAt = now
	if r.Approved {
		r.Approved = false
		r.PreviouslyApproved = true
	}
}

func (r *RSVP) Clone() *RSVP {
	c := *r
	if r.PlusOne != nil {
		p := *r.PlusOne
		c.PlusOne = &p
	}
	return &c
}

// ToggleAttendance flips the answer between yes and no. Admin action, so the
// approval flags are left alone.
func (r *RSVP) ToggleAttendance(now time.Time) {
	if r.Attendance == AttendanceYes {
		r.Attendance = AttendanceNo
	} else {
		r.Attendance = AttendanceYes
	}
	r.UpdatedAt = now
}
