package models

import "time"

// ApprovalState describes where an RSVP sits in the admin review flow.
type ApprovalState string

const (
	ApprovalPending  ApprovalState = "pending"
	ApprovalApproved ApprovalState = "approved"
	// ApprovalPreviouslyApproved marks a record that was approved once and
	// then edited by the guest: it needs re-review, but the UI can tell it
	// apart from a first-time pending record.
	ApprovalPreviouslyApproved ApprovalState = "previously_approved"
)

// ApprovalState derives the review state from the two flags.
func (r *RSVP) ApprovalState() ApprovalState {
	switch {
	case r.Approved:
		return ApprovalApproved
	case r.PreviouslyApproved:
		return ApprovalPreviouslyApproved
	default:
		return ApprovalPending
	}
}

// Approve grants (or re-grants) approval and clears the re-review marker.
func (r *RSVP) Approve(now time.Time) {
	r.Approved = true
	r.PreviouslyApproved = false
	r.UpdatedAt = now
}

// Unapprove returns the record to plain pending.
func (r *RSVP) Unapprove(now time.Time) {
	r.Approved = false
	r.PreviouslyApproved = false
	r.UpdatedAt = now
}

// NeedsReview reports whether the record awaits admin action. Pending and
// previously-approved count the same for filtering.
func (r *RSVP) NeedsReview() bool { return !r.Approved }
