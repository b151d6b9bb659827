package export

import (
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"alt-text-pipeline/models"
)

var header = []string{"filename", "alt_text", "char_count", "model", "created_at"}

// WriteCSV projects results to delimited text: one header line followed
// by one line per result. Fields containing commas, quotes or newlines
// are quoted with inner quotes doubled, so a standard reader round-trips
// the values exactly. Thumbnails are never emitted.
func WriteCSV(results []models.Result) (string, error) {
	var sb strings.Builder
	w := csv.NewWriter(&sb)

	if err := w.Write(header); err != nil {
		return "", fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, r := range results {
		record := []string{
			r.Filename,
			r.AltText,
			strconv.Itoa(r.CharCount),
			r.Model,
			r.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := w.Write(record); err != nil {
			return "", fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("failed to flush CSV: %w", err)
	}

	return sb.String(), nil
}

// ParseDateRange converts "YYYY-MM-DD" boundaries into the inclusive
// [from, to] instants handed to the store. The to boundary is pushed to
// the end of its day so the entire end date is included.
func ParseDateRange(fromStr, toStr string) (time.Time, time.Time, error) {
	if fromStr == "" || toStr == "" {
		return time.Time{}, time.Time{}, fmt.Errorf("both 'from' and 'to' date parameters are required")
	}

	from, err := time.ParseInLocation("2006-01-02", fromStr, time.UTC)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid 'from' date %q: %w", fromStr, err)
	}

	to, err := time.ParseInLocation("2006-01-02", toStr, time.UTC)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid 'to' date %q: %w", toStr, err)
	}

	to = to.Add(24*time.Hour - time.Nanosecond)

	if to.Before(from) {
		return time.Time{}, time.Time{}, fmt.Errorf("'to' date %q precedes 'from' date %q", toStr, fromStr)
	}

	return from, to, nil
}

// Filename builds the attachment name for an export download
func Filename(fromStr, toStr string) string {
	return fmt.Sprintf("alt-texts-%s-to-%s.csv", fromStr, toStr)
}
