package csvcodec

import (
	"strings"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wedding-guestbook/internal/models"
)

func fixtureMessages() []*models.Message {
	return []*models.Message{
		{
			RecordMeta: models.RecordMeta{
				LocalID:   1700000000001,
				Name:      "Ana María",
				Email:     "ana@example.com",
				CreatedAt: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
				UpdatedAt: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
			},
			Message:  `Felicidades! Nos vemos, "pronto".`,
			Likes:    3,
			Language: models.LanguageES,
		},
		{
			RecordMeta: models.RecordMeta{
				LocalID:   1700000000002,
				Name:      "Uncle Bob",
				CreatedAt: time.Date(2025, 6, 2, 11, 30, 0, 0, time.UTC),
				UpdatedAt: time.Date(2025, 6, 2, 11, 30, 0, 0, time.UTC),
			},
			Message:  "See you there",
			Language: models.LanguageEN,
		},
	}
}

func fixtureRSVPs() []*models.RSVP {
	return []*models.RSVP{
		{
			RecordMeta: models.RecordMeta{
				LocalID:   1700000000010,
				Name:      "Carlos Pérez",
				Email:     "carlos@example.com",
				CreatedAt: time.Date(2025, 5, 20, 9, 0, 0, 0, time.UTC),
				UpdatedAt: time.Date(2025, 5, 20, 9, 0, 0, 0, time.UTC),
			},
			Attendance:   models.AttendanceYes,
			Phone:        "+34 600 000 001",
			Approved:     true,
			PlusOne:      &models.PlusOne{Name: "Lucía Pérez", Dietary: "vegetarian"},
			Transport:    "bus",
			SpecialNotes: "Allergic to nuts, please check",
		},
		{
			RecordMeta: models.RecordMeta{
				LocalID:   1700000000011,
				Name:      "Dana",
				CreatedAt: time.Date(2025, 5, 21, 9, 30, 0, 0, time.UTC),
				UpdatedAt: time.Date(2025, 5, 21, 9, 30, 0, 0, time.UTC),
			},
			Attendance:         models.AttendanceNo,
			PreviouslyApproved: true,
		},
	}
}

func TestMessageExportGolden(t *testing.T) {
	out := MessageCodec{}.Export(fixtureMessages())
	g := goldie.New(t, goldie.WithFixtureDir("testdata/golden"))
	g.Assert(t, "messages_export", []byte(out))
}

func TestRSVPExportGolden(t *testing.T) {
	out := RSVPCodec{}.Export(fixtureRSVPs())
	g := goldie.New(t, goldie.WithFixtureDir("testdata/golden"))
	g.Assert(t, "rsvps_export", []byte(out))
}

func TestMessageRoundTrip(t *testing.T) {
	in := fixtureMessages()
	out, skipped, err := MessageCodec{}.Parse(MessageCodec{}.Export(in))
	require.NoError(t, err)
	assert.Zero(t, skipped)
	require.Len(t, out, len(in))

	for i := range in {
		assert.Equal(t, in[i].IdentityKey(), out[i].IdentityKey())
		assert.Equal(t, in[i].Message, out[i].Message)
		assert.Equal(t, in[i].Likes, out[i].Likes)
		assert.Equal(t, in[i].Language, out[i].Language)
		assert.True(t, in[i].CreatedAt.Truncate(time.Second).Equal(out[i].CreatedAt))
	}
}

func TestRSVPRoundTrip(t *testing.T) {
	in := fixtureRSVPs()
	out, skipped, err := RSVPCodec{}.Parse(RSVPCodec{}.Export(in))
	require.NoError(t, err)
	assert.Zero(t, skipped)
	require.Len(t, out, len(in))

	for i := range in {
		assert.Equal(t, in[i].IdentityKey(), out[i].IdentityKey())
		assert.Equal(t, in[i].Attendance, out[i].Attendance)
		assert.Equal(t, in[i].Approved, out[i].Approved)
		assert.Equal(t, in[i].PreviouslyApproved, out[i].PreviouslyApproved)
		assert.Equal(t, in[i].SpecialNotes, out[i].SpecialNotes)
		assert.True(t, in[i].CreatedAt.Truncate(time.Second).Equal(out[i].CreatedAt))
	}
	require.NotNil(t, out[0].PlusOne)
	assert.Equal(t, "Lucía Pérez", out[0].PlusOne.Name)
	assert.Equal(t, "vegetarian", out[0].PlusOne.Dietary)
}

func TestParseSkipsShortRows(t *testing.T) {
	content := strings.Join([]string{
		"ID,Name,Email,Message,Date,Likes,Language",
		"1,Ana,a@x.com,hola,2025-06-01T10:00:00Z,2,es",
		"2,too,short", // 3 columns where at least 5 are required
		"3,Bob,,hey,2025-06-02T10:00:00Z,0,en",
	}, "\n")

	out, skipped, err := MessageCodec{}.Parse(content)
	require.NoError(t, err)
	assert.Equal(t, 1, skipped)
	require.Len(t, out, 2)
	assert.Equal(t, "hola", out[0].Message)
	assert.Equal(t, "hey", out[1].Message)
}

func TestParseZeroRowsFails(t *testing.T) {
	_, _, err := MessageCodec{}.Parse("ID,Name,Email,Message,Date,Likes,Language\n")
	assert.ErrorIs(t, err, ErrEmptyImport)

	_, skipped, err := MessageCodec{}.Parse("ID,Name,Email,Message,Date,Likes,Language\nonly,three,cols\n")
	assert.ErrorIs(t, err, ErrEmptyImport)
	assert.Equal(t, 1, skipped)
}

func TestParseFallbacks(t *testing.T) {
	content := strings.Join([]string{
		"ID,Name,Email,Message,Date,Likes,Language",
		"not-a-number,Ana,,hola,not-a-date,not-a-number,de",
	}, "\n")

	out, skipped, err := MessageCodec{}.Parse(content)
	require.NoError(t, err)
	assert.Zero(t, skipped)
	require.Len(t, out, 1)

	assert.NotZero(t, out[0].LocalID, "broken id falls back to a fresh timestamp id")
	assert.False(t, out[0].CreatedAt.IsZero())
	assert.Zero(t, out[0].Likes)
	assert.Equal(t, models.LanguageES, out[0].Language, "unknown language falls back to the default")
}

func TestRSVPParseSkipsUnknownAttendance(t *testing.T) {
	content := strings.Join([]string{
		strings.Join(rsvpColumns, ","),
		"1,Ana,a@x.com,,maybe,,,,,,,false,false,2025-05-20T09:00:00Z",
		"2,Bob,b@x.com,,yes,,,,,,,false,false,2025-05-20T09:00:00Z",
	}, "\n")

	out, skipped, err := RSVPCodec{}.Parse(content)
	require.NoError(t, err)
	assert.Equal(t, 1, skipped)
	require.Len(t, out, 1)
	assert.Equal(t, "b@x.com", out[0].Email)
}

func TestQuotedFieldsSurviveRoundTrip(t *testing.T) {
	in := []*models.Message{{
		RecordMeta: models.RecordMeta{
			LocalID:   1,
			Name:      "Ana",
			CreatedAt: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
		},
		Message: "line one\nline two, with \"quotes\"",
	}}

	out, _, err := MessageCodec{}.Parse(MessageCodec{}.Export(in))
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, in[0].Message, out[0].Message)
}
