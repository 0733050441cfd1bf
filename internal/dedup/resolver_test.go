package dedup

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wedding-guestbook/internal/models"
)

func rsvpAt(id int64, email string, updated time.Time) *models.RSVP {
	return &models.RSVP{
		RecordMeta: models.RecordMeta{
			LocalID:   id,
			Name:      "Guest",
			Email:     email,
			CreatedAt: updated.Add(-time.Hour),
			UpdatedAt: updated,
		},
		Attendance: models.AttendanceYes,
	}
}

func TestCollapseKeepsNewestPerKey(t *testing.T) {
	base := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	records := []*models.RSVP{
		rsvpAt(1, "a@x.com", base),
		rsvpAt(2, "a@x.com", base.Add(2*time.Second)),
		rsvpAt(3, "a@x.com", base.Add(time.Second)),
		rsvpAt(4, "b@x.com", base),
	}

	kept, discarded := Collapse(records)
	require.Len(t, kept, 2)
	require.Len(t, discarded, 2)

	// the a@x.com survivor is the one with the maximum updatedAt
	assert.Equal(t, int64(2), kept[0].LocalID)
	assert.Equal(t, int64(4), kept[1].LocalID)
	for _, d := range discarded {
		assert.NotEqual(t, int64(2), d.LocalID)
	}
}

func TestCollapseConvergence(t *testing.T) {
	base := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	var records []*models.RSVP
	for i := 0; i < 5; i++ {
		records = append(records, rsvpAt(int64(i+1), "a@x.com", base.Add(time.Duration(i)*time.Second)))
	}

	kept, _ := Collapse(records)
	require.Len(t, kept, 1)
	assert.Equal(t, int64(5), kept[0].LocalID)

	// collapsing an already collapsed set changes nothing
	again, discarded := Collapse(kept)
	assert.Equal(t, kept, again)
	assert.Empty(t, discarded)
}

func TestCollapseDoesNotBackfillFields(t *testing.T) {
	base := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	older := rsvpAt(1, "a@x.com", base)
	older.Phone = "+34 600 000 000"
	newest := rsvpAt(2, "a@x.com", base.Add(time.Second))

	kept, _ := Collapse([]*models.RSVP{older, newest})
	require.Len(t, kept, 1)
	// last writer wins wholesale: the older duplicate's phone is gone
	assert.Empty(t, kept[0].Phone)
}

func TestCollapseSyntheticKeysNeverMerge(t *testing.T) {
	base := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	// two guests named Ana, no email, created a second apart
	first := &models.Message{
		RecordMeta: models.RecordMeta{LocalID: 100, Name: "Ana", CreatedAt: base, UpdatedAt: base},
		Message:    "felicidades",
	}
	second := &models.Message{
		RecordMeta: models.RecordMeta{LocalID: 101, Name: "Ana", CreatedAt: base.Add(time.Second), UpdatedAt: base.Add(time.Second)},
		Message:    "enhorabuena",
	}

	kept, discarded := Collapse([]*models.Message{first, second})
	assert.Len(t, kept, 2)
	assert.Empty(t, discarded)
}

func TestDiagnoseIsReadOnly(t *testing.T) {
	base := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	records := []*models.RSVP{
		rsvpAt(1, "a@x.com", base),
		rsvpAt(2, "a@x.com", base.Add(time.Second)),
		rsvpAt(3, "b@x.com", base),
	}

	report := Diagnose(records)
	assert.Equal(t, 3, report.Total)
	assert.Equal(t, 2, report.Unique)
	assert.Equal(t, 1, report.Duplicates())
	require.Len(t, report.Groups, 1)
	assert.Equal(t, "a@x.com", report.Groups[0].Key)
	require.Len(t, report.Groups[0].Members, 2)
	// members are reported newest first
	assert.Equal(t, int64(2), report.Groups[0].Members[0].LocalID)

	// the input set is untouched
	assert.Len(t, records, 3)
}
