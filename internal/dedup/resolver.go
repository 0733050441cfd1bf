// Package dedup collapses records that share an identity key down to one.
// The policy is last-writer-wins for the whole record: the copy with the
// newest updatedAt survives, and fields present only on a discarded
// duplicate are not backfilled.
package dedup

import (
	"sort"
	"time"

	"wedding-guestbook/internal/models"
)

// Member describes one record inside a duplicate group.
type Member struct {
	LocalID   int64     `json:"localId"`
	RemoteID  string    `json:"remoteId,omitempty"`
	Name      string    `json:"name"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Group is a set of records sharing one identity key, newest first.
type Group struct {
	Key     string   `json:"key"`
	Members []Member `json:"members"`
}

// Report is the read-only output of Diagnose.
type Report struct {
	Total  int     `json:"total"`
	Unique int     `json:"unique"`
	Groups []Group `json:"groups,omitempty"`
}

// Duplicates reports whether a destructive collapse would remove anything.
func (r Report) Duplicates() int { return r.Total - r.Unique }

// Diagnose reports duplicate identity groups without mutating anything. Run
// it before committing a destructive Collapse.
func Diagnose[R models.Record[R]](records []R) Report {
	byKey := make(map[string][]Member, len(records))
	var order []string
	for _, rec := range records {
		meta := rec.Meta()
		key := meta.IdentityKey()
		if _, seen := byKey[key]; !seen {
			order = append(order, key)
		}
		byKey[key] = append(byKey[key], Member{
			LocalID:   meta.LocalID,
			RemoteID:  meta.RemoteID,
			Name:      meta.Name,
			UpdatedAt: meta.UpdatedAt,
		})
	}

	report := Report{Total: len(records), Unique: len(byKey)}
	for _, key := range order {
		members := byKey[key]
		if len(members) < 2 {
			continue
		}
		sort.Slice(members, func(i, j int) bool {
			if !members[i].UpdatedAt.Equal(members[j].UpdatedAt) {
				return members[i].UpdatedAt.After(members[j].UpdatedAt)
			}
			return members[i].LocalID > members[j].LocalID
		})
		report.Groups = append(report.Groups, Group{Key: key, Members: members})
	}
	return report
}

// Collapse removes duplicate identities, keeping the newest updatedAt per
// key. It returns the surviving set in first-seen key order and the
// discarded records, so the caller can issue remote deletes for the
// remote-backed ones.
func Collapse[R models.Record[R]](records []R) (kept, discarded []R) {
	winners := make(map[string]R, len(records))
	var order []string
	for _, rec := range records {
		key := rec.Meta().IdentityKey()
		current, seen := winners[key]
		if !seen {
			winners[key] = rec
			order = append(order, key)
			continue
		}
		if newer(rec.Meta(), current.Meta()) {
			discarded = append(discarded, current)
			winners[key] = rec
		} else {
			discarded = append(discarded, rec)
		}
	}

	kept = make([]R, 0, len(order))
	for _, key := range order {
		kept = append(kept, winners[key])
	}
	return kept, discarded
}

func newer(a, b *models.RecordMeta) bool {
	if !a.UpdatedAt.Equal(b.UpdatedAt) {
		return a.UpdatedAt.After(b.UpdatedAt)
	}
	// stable tie-break so Collapse converges on repeated runs
	return a.LocalID > b.LocalID
}
