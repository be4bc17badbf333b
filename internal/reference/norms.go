package reference

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/carpenike/fitcoach/internal/profile"
)

// AgeGroup is the norm table's age bracket. Values match the dataset labels.
type AgeGroup string

const (
	AgeGroupChild  AgeGroup = "유소년"
	AgeGroupTeen   AgeGroup = "청소년"
	AgeGroupAdult  AgeGroup = "성인"
	AgeGroupSenior AgeGroup = "어르신"
)

// AgeGroupOf maps an age to its bracket: <13 child, <20 teen, <65 adult,
// otherwise senior. Negative ages fall into the child bracket.
func AgeGroupOf(age int) AgeGroup {
	switch {
	case age < 13:
		return AgeGroupChild
	case age < 20:
		return AgeGroupTeen
	case age < 65:
		return AgeGroupAdult
	default:
		return AgeGroupSenior
	}
}

// Canonical metric names as they appear in the norm dataset.
const (
	MetricTrunkCurl  = "윗몸말아올리기(회)"
	MetricLongJump   = "제자리 멀리뛰기(cm)"
	MetricShuttleRun = "왕복오래달리기(회)"
)

// metricKeywords is scanned in order; the first keyword contained in an
// exercise name decides the metric.
var metricKeywords = []struct {
	keyword string
	metric  string
}{
	{"윗몸일으키기", MetricTrunkCurl},
	{"윗몸", MetricTrunkCurl},
	{"situp", MetricTrunkCurl},
	{"sit-up", MetricTrunkCurl},
	{"제자리 멀리뛰기", MetricLongJump},
	{"멀리뛰기", MetricLongJump},
	{"broad jump", MetricLongJump},
	{"왕복오래달리기", MetricShuttleRun},
	{"shuttle run", MetricShuttleRun},
}

// MetricFor returns the canonical metric for an exercise name.
func MetricFor(exerciseName string) (string, bool) {
	name := strings.ToLower(exerciseName)
	for _, k := range metricKeywords {
		if strings.Contains(name, k.keyword) {
			return k.metric, true
		}
	}
	return "", false
}

// Level is the tri-level classification against the p30/p70 bands.
type Level string

const (
	LevelLow  Level = "low"
	LevelMid  Level = "mid"
	LevelHigh Level = "high"
)

// Label is the Korean description shown to the user.
func (l Level) Label() string {
	switch l {
	case LevelLow:
		return "하 (하위 30% 이하)"
	case LevelHigh:
		return "상 (상위 30% 수준)"
	default:
		return "중 (중간 수준)"
	}
}

// NormRow is one line of the norm dataset.
type NormRow struct {
	AgeGroup AgeGroup
	Sex      profile.Sex
	Metric   string
	Mean     float64
	P30      float64
	P70      float64
}

// Classify places value in the row's bands. Values equal to p30 or p70 are mid.
func (r NormRow) Classify(value float64) Level {
	switch {
	case value < r.P30:
		return LevelLow
	case value > r.P70:
		return LevelHigh
	default:
		return LevelMid
	}
}

type normKey struct {
	group  AgeGroup
	sex    profile.Sex
	metric string
}

// NormTable indexes norm rows by (age group, sex, metric).
type NormTable struct {
	rows map[normKey]NormRow
}

// LoadNormTable reads the norm dataset from a CSV file.
func LoadNormTable(path string) (*NormTable, error) {
	t, err := readTableFile(path)
	if err != nil {
		return nil, err
	}
	return buildNormTable(t)
}

// ParseNormTable reads the norm dataset from r.
func ParseNormTable(r io.Reader) (*NormTable, error) {
	t, err := readTable(r)
	if err != nil {
		return nil, err
	}
	return buildNormTable(t)
}

func buildNormTable(t *table) (*NormTable, error) {
	cols := map[string][]string{
		"age_group": {"AGRDE_FLAG_NM", "age_group"},
		"sex":       {"sex", "SEXDSTN_FLAG_CD"},
		"metric":    {"metric"},
		"mean":      {"mean"},
		"p30":       {"p30"},
		"p70":       {"p70"},
	}
	idx := make(map[string]int, len(cols))
	for name, aliases := range cols {
		i, ok := t.column(aliases...)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, name)
		}
		idx[name] = i
	}

	nt := &NormTable{rows: make(map[normKey]NormRow)}
	for _, rec := range t.rows {
		row, ok := parseNormRow(rec, idx)
		if !ok {
			continue
		}
		key := normKey{row.AgeGroup, row.Sex, row.Metric}
		if _, exists := nt.rows[key]; exists {
			continue // first row wins
		}
		nt.rows[key] = row
	}
	return nt, nil
}

func parseNormRow(rec []string, idx map[string]int) (NormRow, bool) {
	sex := profile.ParseSex(cell(rec, idx["sex"]))
	if sex == profile.SexUnknown {
		return NormRow{}, false
	}
	row := NormRow{
		AgeGroup: AgeGroup(cell(rec, idx["age_group"])),
		Sex:      sex,
		Metric:   cell(rec, idx["metric"]),
	}
	for _, f := range []struct {
		col string
		dst *float64
	}{
		{"mean", &row.Mean},
		{"p30", &row.P30},
		{"p70", &row.P70},
	} {
		v, err := strconv.ParseFloat(cell(rec, idx[f.col]), 64)
		if err != nil {
			return NormRow{}, false
		}
		*f.dst = v
	}
	return row, row.AgeGroup != "" && row.Metric != ""
}

// Len returns the number of indexed rows. A nil table has none.
func (t *NormTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rows)
}

// Lookup finds the row for a bracket, sex and metric.
func (t *NormTable) Lookup(group AgeGroup, sex profile.Sex, metric string) (NormRow, bool) {
	if t == nil {
		return NormRow{}, false
	}
	row, ok := t.rows[normKey{group, sex, metric}]
	return row, ok
}

// Comparison is a classified result with the reference values it used.
type Comparison struct {
	Row   NormRow
	Value float64
	Level Level
}

// Comment renders the two-line commentary passed to the coach prompt.
func (c Comparison) Comment() string {
	return fmt.Sprintf(
		"- 기준: %s %s의 '%s' 평균은 약 %.1f, 30%% 지점 %.1f, 70%% 지점 %.1f야.\n"+
			"- 네 기록 %.1f → **%s** 정도로 볼 수 있어.\n",
		c.Row.AgeGroup, c.Row.Sex.Label(), c.Row.Metric, c.Row.Mean, c.Row.P30, c.Row.P70,
		c.Value, c.Level.Label(),
	)
}

// Classify compares a raw result against the norms for the user's age group
// and sex. It returns false when the table is absent, the exercise has no
// metric, or no row matches.
func (t *NormTable) Classify(age int, sex profile.Sex, exerciseName string, value float64) (Comparison, bool) {
	if t == nil {
		return Comparison{}, false
	}
	metric, ok := MetricFor(exerciseName)
	if !ok {
		return Comparison{}, false
	}
	row, ok := t.Lookup(AgeGroupOf(age), sex, metric)
	if !ok {
		return Comparison{}, false
	}
	return Comparison{Row: row, Value: value, Level: row.Classify(value)}, true
}

// Comment is Classify rendered as text, or "" when nothing matched.
func (t *NormTable) Comment(age int, sex profile.Sex, exerciseName string, value float64) string {
	c, ok := t.Classify(age, sex, exerciseName, value)
	if !ok {
		return ""
	}
	return c.Comment()
}
