package importers

import (
	"io"
	"strconv"
)

// fitcoach CSV columns: date,exercise,amount. The exercise is a code
// ("squat") or a Korean label ("스쿼트"); amount is in the exercise's unit.
const (
	fitcoachColDate     = "date"
	fitcoachColExercise = "exercise"
	fitcoachColAmount   = "amount"
)

// ParseFitcoachCSV parses a plain date,exercise,amount file. The amount is
// carried in Reps and used as-is.
func ParseFitcoachCSV(r io.Reader) (*ParsedFile, error) {
	idx, rows, err := readRecords(r, "fitcoach", fitcoachColDate, fitcoachColExercise, fitcoachColAmount)
	if err != nil {
		return nil, err
	}

	pf := &ParsedFile{Format: FormatFitcoachCSV}
	for _, row := range rows {
		date, ok := parseDate(colVal(row, idx, fitcoachColDate))
		name := colVal(row, idx, fitcoachColExercise)
		amount, err := strconv.Atoi(colVal(row, idx, fitcoachColAmount))
		if !ok || name == "" || err != nil || amount <= 0 {
			pf.Skipped++
			continue
		}
		pf.Sets = append(pf.Sets, ParsedSet{Date: date, Exercise: name, Reps: amount})
	}
	return pf, nil
}
