package importers

import (
	"io"
	"strconv"
)

// Strong CSV columns, lowercased.
// Date,Workout Name,Duration,Exercise Name,Set Order,Weight,Reps,Distance,Seconds,Notes,Workout Notes,RPE
const (
	strongColDate         = "date"
	strongColExerciseName = "exercise name"
	strongColReps         = "reps"
	strongColSeconds      = "seconds"
)

// ParseStrongCSV parses sets from a Strong app CSV export.
func ParseStrongCSV(r io.Reader) (*ParsedFile, error) {
	idx, rows, err := readRecords(r, "strong", strongColDate, strongColExerciseName)
	if err != nil {
		return nil, err
	}

	pf := &ParsedFile{Format: FormatStrongCSV}
	for _, row := range rows {
		date, ok := parseDate(colVal(row, idx, strongColDate))
		name := colVal(row, idx, strongColExerciseName)
		if !ok || name == "" {
			pf.Skipped++
			continue
		}

		set := ParsedSet{Date: date, Exercise: name}
		set.Reps, _ = strconv.Atoi(colVal(row, idx, strongColReps))
		if secs, err := strconv.ParseFloat(colVal(row, idx, strongColSeconds), 64); err == nil && secs > 0 {
			set.Seconds = int(secs)
		}
		pf.Sets = append(pf.Sets, set)
	}
	return pf, nil
}
