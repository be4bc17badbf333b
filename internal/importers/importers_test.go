package importers

import (
	"database/sql"
	"errors"
	"strings"
	"testing"

	"github.com/carpenike/fitcoach/internal/database"
	"github.com/carpenike/fitcoach/internal/models"
)

const (
	strongHeader = "Date,Workout Name,Duration,Exercise Name,Set Order,Weight,Reps,Distance,Seconds,Notes,Workout Notes,RPE\n"
	hevyHeader   = "title,start_time,end_time,description,exercise_title,superset_id,exercise_notes,set_index,set_type,weight_lbs,reps,rpe,duration_seconds,distance_km\n"
)

func testDB(t testing.TB) *sql.DB {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if _, err := database.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("run migrations: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name string
		data string
		want Format
	}{
		{"strong", strongHeader, FormatStrongCSV},
		{"hevy", hevyHeader, FormatHevyCSV},
		{"fitcoach", "date,exercise,amount\n", FormatFitcoachCSV},
		{"fitcoach with bom", "\xef\xbb\xbfDate,Exercise,Amount\r\n", FormatFitcoachCSV},
		{"leading blank lines", "\n\n" + strongHeader, FormatStrongCSV},
		{"unknown", "some random text\n", ""},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectFormat([]byte(tt.data)); got != tt.want {
				t.Errorf("DetectFormat = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": "", "auto": "", "Strong": FormatStrongCSV, " hevy ": FormatHevyCSV, "fitcoach": FormatFitcoachCSV} {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseFormat("garmin"); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("ParseFormat(garmin) err = %v, want ErrUnknownFormat", err)
	}
}

func TestParseStrongCSV(t *testing.T) {
	data := strongHeader +
		"2024-01-15 08:00:00,Morning,30m,Push Up,1,,20,,,,,\n" +
		"2024-01-15 08:00:00,Morning,30m,Push Up,2,,15,,,,,\n" +
		"2024-01-15 08:00:00,Morning,30m,Plank,1,,,,45.5,,,\n" +
		"not a date,Morning,30m,Squat,1,,10,,,,,\n" +
		"2024-01-16 08:00:00,Morning,30m,,1,,10,,,,,\n"

	pf, err := ParseStrongCSV(strings.NewReader(data))
	if err != nil {
		t.Fatalf("ParseStrongCSV: %v", err)
	}
	if pf.Format != FormatStrongCSV {
		t.Errorf("format = %q", pf.Format)
	}
	if len(pf.Sets) != 3 {
		t.Fatalf("sets = %d, want 3", len(pf.Sets))
	}
	if pf.Skipped != 2 {
		t.Errorf("skipped = %d, want 2", pf.Skipped)
	}
	if s := pf.Sets[0]; s.Date != "2024-01-15" || s.Exercise != "Push Up" || s.Reps != 20 {
		t.Errorf("first set = %+v", s)
	}
	if s := pf.Sets[2]; s.Seconds != 45 || s.Reps != 0 {
		t.Errorf("plank set = %+v", s)
	}
}

func TestParseStrongCSV_MissingColumn(t *testing.T) {
	_, err := ParseStrongCSV(strings.NewReader("Date,Reps\n2024-01-15,5\n"))
	if err == nil || !strings.Contains(err.Error(), "exercise name") {
		t.Errorf("err = %v, want missing column error", err)
	}
}

func TestParseHevyCSV(t *testing.T) {
	data := hevyHeader +
		`Morning,"15 Jan 2024, 08:00","15 Jan 2024, 09:00",,Squat (Bodyweight),,,0,warmup,,5,,,` + "\n" +
		`Morning,"15 Jan 2024, 08:00","15 Jan 2024, 09:00",,Squat (Bodyweight),,,1,normal,,12,,,` + "\n" +
		`Morning,"15 Jan 2024, 08:00","15 Jan 2024, 09:00",,Running,,,0,normal,,,,1530,5` + "\n"

	pf, err := ParseHevyCSV(strings.NewReader(data))
	if err != nil {
		t.Fatalf("ParseHevyCSV: %v", err)
	}
	if len(pf.Sets) != 2 {
		t.Fatalf("sets = %d, want 2 (warmup skipped)", len(pf.Sets))
	}
	if s := pf.Sets[0]; s.Date != "2024-01-15" || s.Reps != 12 {
		t.Errorf("squat set = %+v", s)
	}
	if s := pf.Sets[1]; s.Seconds != 1530 {
		t.Errorf("running set = %+v", s)
	}
}

func TestParseFitcoachCSV(t *testing.T) {
	data := "date,exercise,amount\n" +
		"2024-05-01,squat,30\n" +
		"2024-05-01,팔굽혀펴기,15\n" +
		"2024-05-02,squat,0\n" +
		"2024-05-02,squat,abc\n"

	pf, err := ParseFitcoachCSV(strings.NewReader(data))
	if err != nil {
		t.Fatalf("ParseFitcoachCSV: %v", err)
	}
	if len(pf.Sets) != 2 || pf.Skipped != 2 {
		t.Fatalf("sets = %d skipped = %d, want 2 and 2", len(pf.Sets), pf.Skipped)
	}
}

func TestParse_NoDataRows(t *testing.T) {
	if _, err := Parse(strings.NewReader("date,exercise,amount\n"), ""); err == nil {
		t.Error("expected error for header-only file")
	}
	if _, err := Parse(strings.NewReader("hello\nworld\n"), ""); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("err = %v, want ErrUnknownFormat", err)
	}
}

func TestMapExercise(t *testing.T) {
	tests := map[string]models.Exercise{
		"squat":              models.ExerciseSquat,
		"스쿼트":                models.ExerciseSquat,
		"Squat (Bodyweight)": models.ExerciseSquat,
		"Push-Up":            models.ExercisePushUp,
		"Chin Up":            models.ExercisePullUp,
		"Crunch":             models.ExerciseSitUp,
		"Plank":              models.ExercisePlankSeconds,
		"Treadmill":          models.ExerciseRunningMinutes,
		"조깅":                 models.ExerciseRunningMinutes,
		"Run":                models.ExerciseRunningMinutes,
		"5K Run (Outdoor)":   models.ExerciseRunningMinutes,
		"Morning Jog":        models.ExerciseRunningMinutes,
		"Grunt Row":          models.ExerciseOther,
		"Brunch Walk":        models.ExerciseOther,
		"Prune Stretch":      models.ExerciseOther,
		"Bench Press":        models.ExerciseOther,
		"기타":                 models.ExerciseOther,
	}
	for name, want := range tests {
		if got := MapExercise(name); got != want {
			t.Errorf("MapExercise(%q) = %q, want %q", name, got, want)
		}
	}
}

func TestBuild(t *testing.T) {
	pf := &ParsedFile{
		Format:  FormatStrongCSV,
		Skipped: 1,
		Sets: []ParsedSet{
			{Date: "2024-01-15", Exercise: "Push Up", Reps: 20},
			{Date: "2024-01-15", Exercise: "Push Up", Reps: 15},
			{Date: "2024-01-15", Exercise: "Running", Seconds: 601},
			{Date: "2024-01-14", Exercise: "Plank", Seconds: 60},
			{Date: "2024-01-14", Exercise: "Plank", Reps: 1},
			{Date: "2024-01-14", Exercise: "Bench Press", Reps: 5},
			{Date: "2024-01-14", Exercise: "Running"},
			{Date: "2024-01-13", Exercise: "Squat", Reps: 9000},
			{Date: "2024-01-13", Exercise: "Squat", Reps: 9000},
		},
	}

	plan := Build(pf)

	want := []Entry{
		{"2024-01-13", models.ExerciseSquat, models.MaxAmount},
		{"2024-01-14", models.ExerciseOther, 5},
		{"2024-01-14", models.ExercisePlankSeconds, 61},
		{"2024-01-15", models.ExercisePushUp, 35},
		{"2024-01-15", models.ExerciseRunningMinutes, 11},
	}
	if len(plan.Entries) != len(want) {
		t.Fatalf("entries = %+v, want %+v", plan.Entries, want)
	}
	for i, e := range want {
		if plan.Entries[i] != e {
			t.Errorf("entry %d = %+v, want %+v", i, plan.Entries[i], e)
		}
	}
	if plan.Skipped != 2 {
		t.Errorf("skipped = %d, want 2", plan.Skipped)
	}
	if len(plan.Unmapped) != 1 || plan.Unmapped[0] != "Bench Press" {
		t.Errorf("unmapped = %v", plan.Unmapped)
	}
	if plan.Total() != models.MaxAmount+5+61+35+11 {
		t.Errorf("total = %d", plan.Total())
	}
}

func TestBuild_FitcoachAmountsUsedAsIs(t *testing.T) {
	pf, err := Parse(strings.NewReader("date,exercise,amount\n2024-05-01,running-minutes,25\n"), "")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	plan := Build(pf)
	if len(plan.Entries) != 1 || plan.Entries[0].Amount != 25 {
		t.Errorf("entries = %+v", plan.Entries)
	}
}

func TestPlanApply(t *testing.T) {
	db := testDB(t)
	u, err := models.CreateUser(db, "runner", "password123")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	pf, err := Parse(strings.NewReader(strongHeader+
		"2024-01-15 08:00:00,Morning,30m,Push Up,1,,20,,,,,\n"+
		"2024-01-16 08:00:00,Morning,30m,Squat,1,,30,,,,,\n"), "")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	n, err := Build(pf).Apply(db, u.ID)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if n != 2 {
		t.Errorf("applied = %d, want 2", n)
	}

	logs, err := models.ListLogs(db, u.ID)
	if err != nil {
		t.Fatalf("ListLogs: %v", err)
	}
	if len(logs) != 2 || logs[0].Exercise != models.ExerciseSquat || logs[0].Amount != 30 {
		t.Errorf("logs = %+v", logs)
	}
}
