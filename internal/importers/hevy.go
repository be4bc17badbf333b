package importers

import (
	"io"
	"strconv"
)

// Hevy CSV columns.
const (
	hevyColStartTime       = "start_time"
	hevyColExerciseTitle   = "exercise_title"
	hevyColSetType         = "set_type"
	hevyColReps            = "reps"
	hevyColDurationSeconds = "duration_seconds"
)

// ParseHevyCSV parses sets from a Hevy app CSV export. Warmup sets are
// skipped.
func ParseHevyCSV(r io.Reader) (*ParsedFile, error) {
	idx, rows, err := readRecords(r, "hevy", hevyColStartTime, hevyColExerciseTitle)
	if err != nil {
		return nil, err
	}

	pf := &ParsedFile{Format: FormatHevyCSV}
	for _, row := range rows {
		if colVal(row, idx, hevyColSetType) == "warmup" {
			continue
		}
		date, ok := parseDate(colVal(row, idx, hevyColStartTime))
		name := colVal(row, idx, hevyColExerciseTitle)
		if !ok || name == "" {
			pf.Skipped++
			continue
		}

		set := ParsedSet{Date: date, Exercise: name}
		set.Reps, _ = strconv.Atoi(colVal(row, idx, hevyColReps))
		if secs, err := strconv.ParseFloat(colVal(row, idx, hevyColDurationSeconds), 64); err == nil && secs > 0 {
			set.Seconds = int(secs)
		}
		pf.Sets = append(pf.Sets, set)
	}
	return pf, nil
}
