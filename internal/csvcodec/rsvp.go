package csvcodec

import (
	"strconv"
	"strings"
	"time"

	"wedding-guestbook/internal/models"
)

// rsvpColumns is the fixed export order for attendance records.
var rsvpColumns = []string{
	"ID", "Name", "Email", "Phone", "Attendance",
	"PlusOneName", "PlusOneDietary", "Dietary", "Accessibility", "Transport",
	"SpecialNotes", "Approved", "PreviouslyApproved", "Date",
}

// Rows need at least ID through Attendance; the rest have defaults.
const minRSVPColumns = 5

// RSVPCodec implements Codec for attendance records.
type RSVPCodec struct{}

func (RSVPCodec) Export(records []*models.RSVP) string {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		var plusOneName, plusOneDietary string
		if r.PlusOne != nil {
			plusOneName = r.PlusOne.Name
			plusOneDietary = r.PlusOne.Dietary
		}
		rows = append(rows, []string{
			strconv.FormatInt(r.LocalID, 10),
			r.Name,
			r.Email,
			r.Phone,
			string(r.Attendance),
			plusOneName,
			plusOneDietary,
			r.Dietary,
			r.Accessibility,
			r.Transport,
			r.SpecialNotes,
			strconv.FormatBool(r.Approved),
			strconv.FormatBool(r.PreviouslyApproved),
			formatTime(r.CreatedAt),
		})
	}
	return writeAll(rsvpColumns, rows)
}

func (RSVPCodec) Parse(content string) ([]*models.RSVP, int, error) {
	rows, skipped, err := readRows(content, minRSVPColumns)
	if err != nil {
		return nil, skipped, err
	}

	records := make([]*models.RSVP, 0, len(rows))
	for i, row := range rows {
		attendance := models.Attendance(strings.ToLower(strings.TrimSpace(row[4])))
		if attendance != models.AttendanceYes && attendance != models.AttendanceNo {
			skipped++
			continue
		}

		fallbackID := time.Now().UnixMilli() + int64(i)
		r := &models.RSVP{
			RecordMeta: models.RecordMeta{
				LocalID: parseInt64(row[0], fallbackID),
				Name:    row[1],
				Email:   row[2],
			},
			Phone:      row[3],
			Attendance: attendance,
		}
		if len(row) > 5 && row[5] != "" {
			r.PlusOne = &models.PlusOne{Name: row[5]}
			if len(row) > 6 {
				r.PlusOne.Dietary = row[6]
			}
		}
		if len(row) > 7 {
			r.Dietary = row[7]
		}
		if len(row) > 8 {
			r.Accessibility = row[8]
		}
		if len(row) > 9 {
			r.Transport = row[9]
		}
		if len(row) > 10 {
			r.SpecialNotes = row[10]
		}
		if len(row) > 11 {
			r.Approved = parseBool(row[11])
		}
		if len(row) > 12 {
			r.PreviouslyApproved = parseBool(row[12])
		}
		if r.Approved {
			// the pending-review marker never survives an approval
			r.PreviouslyApproved = false
		}
		if len(row) > 13 {
			r.CreatedAt = parseTime(row[13])
		} else {
			r.CreatedAt = time.Now().UTC().Truncate(time.Second)
		}
		r.UpdatedAt = r.CreatedAt
		records = append(records, r)
	}
	if len(records) == 0 {
		return nil, skipped, ErrEmptyImport
	}
	return records, skipped, nil
}
