package csvcodec

import (
	"strconv"
	"time"

	"wedding-guestbook/internal/models"
)

// messageColumns is the fixed export order for guest-book messages.
var messageColumns = []string{"ID", "Name", "Email", "Message", "Date", "Likes", "Language"}

// Rows need at least ID through Date; likes and language have defaults.
const minMessageColumns = 5

// MessageCodec implements Codec for guest-book messages.
type MessageCodec struct{}

func (MessageCodec) Export(records []*models.Message) string {
	rows := make([][]string, 0, len(records))
	for _, m := range records {
		rows = append(rows, []string{
			strconv.FormatInt(m.LocalID, 10),
			m.Name,
			m.Email,
			m.Message,
			formatTime(m.CreatedAt),
			strconv.Itoa(m.Likes),
			string(m.Language),
		})
	}
	return writeAll(messageColumns, rows)
}

func (MessageCodec) Parse(content string) ([]*models.Message, int, error) {
	rows, skipped, err := readRows(content, minMessageColumns)
	if err != nil {
		return nil, skipped, err
	}

	records := make([]*models.Message, 0, len(rows))
	for i, row := range rows {
		// offset fallback ids per row so broken ids never collide
		fallbackID := time.Now().UnixMilli() + int64(i)
		m := &models.Message{
			RecordMeta: models.RecordMeta{
				LocalID:   parseInt64(row[0], fallbackID),
				Name:      row[1],
				Email:     row[2],
				CreatedAt: parseTime(row[4]),
			},
			Message:  row[3],
			Language: models.LanguageES,
		}
		m.UpdatedAt = m.CreatedAt
		if len(row) > 5 {
			m.Likes = parseInt(row[5], 0)
		}
		if len(row) > 6 {
			switch lang := models.Language(row[6]); lang {
			case models.LanguageES, models.LanguageEN:
				m.Language = lang
			}
		}
		records = append(records, m)
	}
	return records, skipped, nil
}
