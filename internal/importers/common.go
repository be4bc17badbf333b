// Package importers reads workout history exported from other fitness apps
// (Strong, Hevy) or fitcoach's own CSV and turns it into workout log entries.
package importers

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/carpenike/fitcoach/internal/stats"
)

// ErrUnknownFormat is returned when the header matches no supported export.
var ErrUnknownFormat = errors.New("importers: unknown file format")

// Format identifies the source format of an import file.
type Format string

const (
	FormatStrongCSV   Format = "strong"
	FormatHevyCSV     Format = "hevy"
	FormatFitcoachCSV Format = "fitcoach"
)

// ParseFormat accepts a format name as given on the command line. "auto" and
// "" return the empty Format, meaning detect from content.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "", "auto":
		return "", nil
	case FormatStrongCSV, FormatHevyCSV, FormatFitcoachCSV:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// ParsedSet is one set (or one log row) as it appears in the source file.
type ParsedSet struct {
	Date     string // YYYY-MM-DD
	Exercise string // name as written in the file
	Reps     int
	Seconds  int
}

// ParsedFile is the unified output from any parser.
type ParsedFile struct {
	Format Format
	Sets   []ParsedSet
	// Skipped counts data rows dropped for a missing or unparseable date or
	// exercise name.
	Skipped int
}

// Parse reads an export in the given format, detecting it from the header
// when format is empty.
func Parse(r io.Reader, format Format) (*ParsedFile, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("importers: read: %w", err)
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	if format == "" {
		format = DetectFormat(data)
	}
	switch format {
	case FormatStrongCSV:
		return ParseStrongCSV(bytes.NewReader(data))
	case FormatHevyCSV:
		return ParseHevyCSV(bytes.NewReader(data))
	case FormatFitcoachCSV:
		return ParseFitcoachCSV(bytes.NewReader(data))
	default:
		return nil, ErrUnknownFormat
	}
}

// DetectFormat guesses the export format from the header row. Returns the
// empty Format if unknown.
func DetectFormat(data []byte) Format {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	header := strings.ToLower(firstLineOf(bytes.TrimLeft(data, " \t\r\n")))

	switch {
	case containsAll(header, "exercise name", "set order", "reps"):
		return FormatStrongCSV
	case containsAll(header, "exercise_title", "set_index", "reps"):
		return FormatHevyCSV
	case containsAll(header, "date", "exercise", "amount"):
		return FormatFitcoachCSV
	}
	return ""
}

// readRecords reads a CSV with a header row and returns a case-insensitive
// column index and the data rows.
func readRecords(r io.Reader, source string, required ...string) (map[string]int, [][]string, error) {
	cr := csv.NewReader(r)
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("importers: read %s csv: %w", source, err)
	}
	if len(records) < 2 {
		return nil, nil, fmt.Errorf("importers: %s csv has no data rows", source)
	}

	idx := make(map[string]int, len(records[0]))
	for i, col := range records[0] {
		idx[strings.ToLower(strings.TrimSpace(col))] = i
	}
	for _, col := range required {
		if _, ok := idx[col]; !ok {
			return nil, nil, fmt.Errorf("importers: %s csv missing required column %q", source, col)
		}
	}
	return idx, records[1:], nil
}

// colVal safely gets a column value from a CSV row.
func colVal(row []string, idx map[string]int, col string) string {
	i, ok := idx[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

var dateFormats = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	stats.DateLayout,
	"2 Jan 2006, 15:04",
	"2006 Jan 02",
	"2006 Jan 2",
	"Jan 2, 2006",
	"01/02/2006",
	time.RFC3339,
}

// parseDate normalizes the date formats seen in app exports to YYYY-MM-DD.
func parseDate(s string) (string, bool) {
	s = strings.TrimSpace(s)
	for _, f := range dateFormats {
		if t, err := time.Parse(f, s); err == nil {
			return t.Format(stats.DateLayout), true
		}
	}
	return "", false
}

func firstLineOf(data []byte) string {
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		return string(data[:i])
	}
	return string(data)
}

func containsAll(s string, substrings ...string) bool {
	for _, sub := range substrings {
		if !strings.Contains(s, sub) {
			return false
		}
	}
	return true
}
