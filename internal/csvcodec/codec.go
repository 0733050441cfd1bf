// Package csvcodec serializes record sets to the portable flat-file format
// and parses them back into validated records.
package csvcodec

import (
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrEmptyImport is returned when not a single row could be parsed; the
// caller leaves the existing record set untouched.
var ErrEmptyImport = errors.New("csv contains no parseable rows")

// Codec turns one record kind into CSV and back.
type Codec[R any] interface {
	// Export renders a header row plus one row per record. Free-text fields
	// are quoted with internal quotes doubled; timestamps are full ISO-8601.
	Export(records []R) string
	// Parse reads CSV content, skipping rows shorter than the kind's minimum
	// column count. It returns the parsed records, the number of skipped
	// rows, and an error only when nothing could be parsed.
	Parse(content string) ([]R, int, error)
}

func writeAll(header []string, rows [][]string) string {
	var b strings.Builder
	w := csv.NewWriter(&b)
	_ = w.Write(header)
	_ = w.WriteAll(rows) // WriteAll flushes
	return b.String()
}

// readRows splits content into data rows, dropping the header and counting
// rows below the minimum column width instead of failing on them.
func readRows(content string, minColumns int) (rows [][]string, skipped int, err error) {
	r := csv.NewReader(strings.NewReader(content))
	r.FieldsPerRecord = -1 // column count is validated per row below
	all, err := r.ReadAll()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read csv: %w", err)
	}
	if len(all) > 0 {
		all = all[1:] // header row
	}
	for _, row := range all {
		if len(row) < minColumns {
			skipped++
			continue
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil, skipped, ErrEmptyImport
	}
	return rows, skipped, nil
}

func parseInt64(s string, fallback int64) int64 {
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return fallback
	}
	return v
}

func parseInt(s string, fallback int) int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || v < 0 {
		return fallback
	}
	return v
}

func parseBool(s string) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(s))
	return err == nil && v
}

// parseTime accepts full ISO-8601 timestamps, falling back to the current
// time for unparseable values so an imported row never carries a zero date.
func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, strings.TrimSpace(s))
	if err != nil {
		return time.Now().UTC().Truncate(time.Second)
	}
	return t
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
