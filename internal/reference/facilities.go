package reference

import (
	"fmt"
	"io"
	"strings"
)

// MaxHints caps the number of facility lines returned by Hint.
const MaxHints = 5

var (
	facilityNameColumns = []string{"name", "시설명", "FCLTY_NM"}
	facilityTypeColumns = []string{"type", "시설유형", "FCLTY_TY_NM", "INDUTY_NM"}
	facilityAddrColumns = []string{
		"address", "road_address", "lot_address",
		"주소", "도로명주소", "지번주소",
		"RDNMADR_NM", "LNM_ADDR", "FCLTY_ADDR",
	}
)

// Facility is one sports facility row.
type Facility struct {
	Name      string
	Type      string
	Addresses []string
}

// Address returns the first non-empty address field.
func (f Facility) Address() string {
	for _, a := range f.Addresses {
		if a != "" {
			return a
		}
	}
	return ""
}

// Line renders the facility as "name (type) · address", omitting absent parts.
func (f Facility) Line() string {
	var b strings.Builder
	b.WriteString(f.Name)
	if f.Type != "" {
		fmt.Fprintf(&b, " (%s)", f.Type)
	}
	if addr := f.Address(); addr != "" {
		fmt.Fprintf(&b, " · %s", addr)
	}
	return b.String()
}

func (f Facility) matches(location string) bool {
	for _, a := range f.Addresses {
		if a != "" && strings.Contains(a, location) {
			return true
		}
	}
	return false
}

// FacilityTable holds facility rows in file order.
type FacilityTable struct {
	rows []Facility
}

// LoadFacilityTable reads facilities from a CSV file.
func LoadFacilityTable(path string) (*FacilityTable, error) {
	t, err := readTableFile(path)
	if err != nil {
		return nil, err
	}
	return buildFacilityTable(t)
}

// ParseFacilityTable reads facilities from r.
func ParseFacilityTable(r io.Reader) (*FacilityTable, error) {
	t, err := readTable(r)
	if err != nil {
		return nil, err
	}
	return buildFacilityTable(t)
}

func buildFacilityTable(t *table) (*FacilityTable, error) {
	nameCol, ok := t.column(facilityNameColumns...)
	if !ok {
		return nil, fmt.Errorf("%w: name", ErrMissingColumn)
	}
	typeCol, _ := t.column(facilityTypeColumns...)

	var addrCols []int
	for _, c := range facilityAddrColumns {
		if i, ok := t.column(c); ok {
			addrCols = append(addrCols, i)
		}
	}
	if len(addrCols) == 0 {
		return nil, fmt.Errorf("%w: address", ErrMissingColumn)
	}

	ft := &FacilityTable{}
	for _, rec := range t.rows {
		f := Facility{Name: cell(rec, nameCol), Type: cell(rec, typeCol)}
		if f.Name == "" {
			continue
		}
		for _, c := range addrCols {
			f.Addresses = append(f.Addresses, cell(rec, c))
		}
		ft.rows = append(ft.rows, f)
	}
	return ft, nil
}

// Len returns the number of facilities. A nil table has none.
func (t *FacilityTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rows)
}

// Search returns up to limit facilities whose address contains location.
func (t *FacilityTable) Search(location string, limit int) []Facility {
	location = strings.TrimSpace(location)
	if t == nil || location == "" || limit <= 0 {
		return nil
	}
	var out []Facility
	for _, f := range t.rows {
		if f.matches(location) {
			out = append(out, f)
			if len(out) == limit {
				break
			}
		}
	}
	return out
}

// Hint returns at most MaxHints rendered facility lines near location.
func (t *FacilityTable) Hint(location string) []string {
	found := t.Search(location, MaxHints)
	if len(found) == 0 {
		return nil
	}
	lines := make([]string, len(found))
	for i, f := range found {
		lines[i] = f.Line()
	}
	return lines
}
