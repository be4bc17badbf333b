// Package reference loads the static lookup tables used for coaching
// commentary: fitness norms by age group and sex, and sports facilities by
// address. Both tables are optional. A nil table is valid and every method
// on it returns an empty result.
package reference

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/korean"
)

// ErrMissingColumn is returned when a table lacks a required column.
var ErrMissingColumn = errors.New("reference: missing column")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// table is a parsed CSV file with a case-insensitive header index.
type table struct {
	index map[string]int
	rows  [][]string
}

// column returns the index of the first header matching one of names.
func (t *table) column(names ...string) (int, bool) {
	for _, n := range names {
		if i, ok := t.index[strings.ToLower(n)]; ok {
			return i, true
		}
	}
	return -1, false
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func readTableFile(path string) (*table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reference: open %s: %w", path, err)
	}
	defer f.Close()
	return readTable(f)
}

// readTable parses a CSV document. Public datasets are often published in
// EUC-KR with a BOM-less header, so anything that is not valid UTF-8 is
// decoded as EUC-KR first.
func readTable(r io.Reader) (*table, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reference: read: %w", err)
	}
	raw = bytes.TrimPrefix(raw, utf8BOM)
	if !utf8.Valid(raw) {
		decoded, err := korean.EUCKR.NewDecoder().Bytes(raw)
		if err != nil {
			return nil, fmt.Errorf("reference: decode euc-kr: %w", err)
		}
		raw = decoded
	}

	cr := csv.NewReader(bytes.NewReader(raw))
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reference: parse csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("reference: empty table")
	}

	t := &table{index: make(map[string]int), rows: records[1:]}
	for i, h := range records[0] {
		key := strings.ToLower(strings.TrimSpace(h))
		if _, dup := t.index[key]; !dup {
			t.index[key] = i
		}
	}
	return t, nil
}
