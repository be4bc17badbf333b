package models

import (
	"errors"
	"testing"
	"time"

	"github.com/carpenike/fitcoach/internal/stats"
)

func TestCreateLog(t *testing.T) {
	db := testDB(t)
	u := testUser(t, db, "minsu")

	l, err := CreateLog(db, u.ID, "2024-05-01", ExerciseSquat, 30)
	if err != nil {
		t.Fatalf("create log: %v", err)
	}
	if l.ID == 0 {
		t.Error("expected non-zero id")
	}

	logs, err := ListLogs(db, u.ID)
	if err != nil {
		t.Fatalf("list logs: %v", err)
	}
	if len(logs) != 1 {
		t.Fatalf("logs = %d, want 1", len(logs))
	}
	got := logs[0]
	if got.Date != "2024-05-01" || got.Exercise != ExerciseSquat || got.Amount != 30 {
		t.Errorf("log = %+v", got)
	}
}

func TestCreateLog_Validation(t *testing.T) {
	db := testDB(t)
	u := testUser(t, db, "minsu")

	tests := []struct {
		name   string
		date   string
		ex     Exercise
		amount int
	}{
		{"zero amount", "2024-05-01", ExerciseSquat, 0},
		{"negative amount", "2024-05-01", ExerciseSquat, -5},
		{"too large", "2024-05-01", ExerciseSquat, MaxAmount + 1},
		{"bad date", "05/01/2024", ExerciseSquat, 10},
		{"unknown exercise", "2024-05-01", Exercise("yoga"), 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CreateLog(db, u.ID, tt.date, tt.ex, tt.amount)
			if !errors.Is(err, ErrInvalidLog) {
				t.Errorf("err = %v, want ErrInvalidLog", err)
			}
		})
	}

	logs, _ := ListLogs(db, u.ID)
	if len(logs) != 0 {
		t.Errorf("invalid entries were written: %d", len(logs))
	}
}

func TestListLogs_Ordering(t *testing.T) {
	db := testDB(t)
	u := testUser(t, db, "minsu")
	other := testUser(t, db, "jiwoo")

	CreateLog(db, u.ID, "2024-05-01", ExerciseSquat, 10)
	CreateLog(db, u.ID, "2024-05-03", ExercisePushUp, 20)
	CreateLog(db, u.ID, "2024-05-01", ExerciseSitUp, 30)
	CreateLog(db, other.ID, "2024-05-02", ExerciseSquat, 99)

	logs, err := ListLogs(db, u.ID)
	if err != nil {
		t.Fatalf("list logs: %v", err)
	}
	if len(logs) != 3 {
		t.Fatalf("logs = %d, want 3", len(logs))
	}
	if logs[0].Date != "2024-05-03" {
		t.Errorf("first date = %s, want 2024-05-03", logs[0].Date)
	}
	// Same date: most recently inserted first.
	if logs[1].Exercise != ExerciseSitUp || logs[2].Exercise != ExerciseSquat {
		t.Errorf("same-date order = %s, %s", logs[1].Exercise, logs[2].Exercise)
	}
}

func TestStatsEntries(t *testing.T) {
	db := testDB(t)
	u := testUser(t, db, "minsu")
	CreateLog(db, u.ID, "2024-05-01", ExerciseSquat, 30)
	CreateLog(db, u.ID, "2024-05-02", ExerciseSquat, 20)

	logs, _ := ListLogs(db, u.ID)
	today := time.Date(2024, 5, 31, 12, 0, 0, 0, time.UTC)
	s := stats.Compute(StatsEntries(logs), 30, today)
	if s.ActiveDays != 2 || s.TopExercise != string(ExerciseSquat) || s.TotalAmount != 50 {
		t.Errorf("stats = %+v", s)
	}
}

func TestParseExercise(t *testing.T) {
	tests := []struct {
		in   string
		want Exercise
		ok   bool
	}{
		{"squat", ExerciseSquat, true},
		{"Push-Up", ExercisePushUp, true},
		{"달리기(분)", ExerciseRunningMinutes, true},
		{"플랭크(초)", ExercisePlankSeconds, true},
		{"yoga", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseExercise(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseExercise(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestExerciseLabel(t *testing.T) {
	if ExerciseLabel("situp") != "윗몸일으키기" {
		t.Errorf("label = %q", ExerciseLabel("situp"))
	}
	if ExerciseLabel("mystery") != "mystery" {
		t.Errorf("unknown label = %q", ExerciseLabel("mystery"))
	}
}

func TestCreateLogs(t *testing.T) {
	db := testDB(t)
	u := testUser(t, db, "minsu")

	err := CreateLogs(db, u.ID,
		NewLog{Date: "2024-05-01", Exercise: ExerciseSquat, Amount: 30},
		NewLog{Date: "2024-05-02", Exercise: ExercisePushUp, Amount: 15},
	)
	if err != nil {
		t.Fatalf("create logs: %v", err)
	}
	logs, err := ListLogs(db, u.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(logs) != 2 || logs[0].Date != "2024-05-02" {
		t.Errorf("unexpected logs: %+v", logs)
	}
}

func TestCreateLogs_InvalidEntryWritesNothing(t *testing.T) {
	db := testDB(t)
	u := testUser(t, db, "minsu")

	err := CreateLogs(db, u.ID,
		NewLog{Date: "2024-05-01", Exercise: ExerciseSquat, Amount: 30},
		NewLog{Date: "2024-05-02", Exercise: ExercisePushUp, Amount: 0},
	)
	if !errors.Is(err, ErrInvalidLog) {
		t.Fatalf("err = %v, want ErrInvalidLog", err)
	}
	if logs, _ := ListLogs(db, u.ID); len(logs) != 0 {
		t.Errorf("expected no logs, got %d", len(logs))
	}
}
