package models

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/carpenike/fitcoach/internal/stats"
)

// ErrInvalidLog is returned when a workout log fails validation.
var ErrInvalidLog = errors.New("invalid workout log")

// MaxAmount is the largest amount accepted for a single log entry.
const MaxAmount = 10000

// Exercise is the enumerated kind of a workout log entry.
type Exercise string

const (
	ExercisePushUp         Exercise = "push-up"
	ExerciseSitUp          Exercise = "situp"
	ExerciseSquat          Exercise = "squat"
	ExerciseRunningMinutes Exercise = "running-minutes"
	ExercisePullUp         Exercise = "pull-up"
	ExercisePlankSeconds   Exercise = "plank-seconds"
	ExerciseOther          Exercise = "other"
)

// Exercises lists every exercise in form display order.
var Exercises = []Exercise{
	ExercisePushUp,
	ExerciseSitUp,
	ExerciseSquat,
	ExerciseRunningMinutes,
	ExercisePullUp,
	ExercisePlankSeconds,
	ExerciseOther,
}

var exerciseLabels = map[Exercise]string{
	ExercisePushUp:         "팔굽혀펴기",
	ExerciseSitUp:          "윗몸일으키기",
	ExerciseSquat:          "스쿼트",
	ExerciseRunningMinutes: "달리기(분)",
	ExercisePullUp:         "턱걸이",
	ExercisePlankSeconds:   "플랭크(초)",
	ExerciseOther:          "기타",
}

// Label returns the Korean display name, or the raw code if unknown.
func (e Exercise) Label() string {
	if l, ok := exerciseLabels[e]; ok {
		return l
	}
	return string(e)
}

// Valid reports whether e is one of the enumerated exercises.
func (e Exercise) Valid() bool {
	_, ok := exerciseLabels[e]
	return ok
}

// ParseExercise accepts a code ("squat") or a display label ("스쿼트").
func ParseExercise(s string) (Exercise, bool) {
	s = strings.TrimSpace(s)
	if e := Exercise(strings.ToLower(s)); e.Valid() {
		return e, true
	}
	for e, l := range exerciseLabels {
		if l == s {
			return e, true
		}
	}
	return "", false
}

// ExerciseLabel maps a stored exercise code to its display name.
func ExerciseLabel(code string) string {
	return Exercise(code).Label()
}

// WorkoutLog is one immutable workout entry.
type WorkoutLog struct {
	ID         int64
	UserID     int64
	Date       string // YYYY-MM-DD
	Exercise   Exercise
	Amount     int
	RecordedAt time.Time
}

// validateLog checks the fields of a new entry.
func validateLog(date string, ex Exercise, amount int) error {
	if _, err := time.Parse(stats.DateLayout, date); err != nil {
		return fmt.Errorf("%w: date %q", ErrInvalidLog, date)
	}
	if !ex.Valid() {
		return fmt.Errorf("%w: exercise %q", ErrInvalidLog, ex)
	}
	if amount < 1 || amount > MaxAmount {
		return fmt.Errorf("%w: amount %d", ErrInvalidLog, amount)
	}
	return nil
}

// CreateLog appends a workout entry for a user. The date may be in the past.
func CreateLog(db *sql.DB, userID int64, date string, ex Exercise, amount int) (*WorkoutLog, error) {
	if err := validateLog(date, ex, amount); err != nil {
		return nil, err
	}

	recordedAt := time.Now().UTC()
	result, err := db.Exec(
		`INSERT INTO workout_logs (user_id, log_date, exercise, amount, recorded_at) VALUES (?, ?, ?, ?, ?)`,
		userID, date, string(ex), amount, recordedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("models: create log for user %d: %w", userID, err)
	}

	id, _ := result.LastInsertId()
	return &WorkoutLog{
		ID:         id,
		UserID:     userID,
		Date:       date,
		Exercise:   ex,
		Amount:     amount,
		RecordedAt: recordedAt,
	}, nil
}

// NewLog is an unsaved entry passed to CreateLogs.
type NewLog struct {
	Date     string
	Exercise Exercise
	Amount   int
}

// CreateLogs appends several entries for a user atomically. Every entry is
// validated before anything is written.
func CreateLogs(db *sql.DB, userID int64, logs ...NewLog) error {
	if len(logs) == 0 {
		return nil
	}
	for _, l := range logs {
		if err := validateLog(l.Date, l.Exercise, l.Amount); err != nil {
			return err
		}
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("models: begin create logs: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		`INSERT INTO workout_logs (user_id, log_date, exercise, amount, recorded_at) VALUES (?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return fmt.Errorf("models: prepare create logs: %w", err)
	}
	defer stmt.Close()

	recordedAt := time.Now().UTC()
	for _, l := range logs {
		if _, err := stmt.Exec(userID, l.Date, string(l.Exercise), l.Amount, recordedAt); err != nil {
			return fmt.Errorf("models: create log for user %d: %w", userID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("models: commit create logs: %w", err)
	}
	return nil
}

// ListLogs returns every entry for a user, newest log date first. Entries on
// the same date are ordered by insertion, newest first.
func ListLogs(db *sql.DB, userID int64) ([]*WorkoutLog, error) {
	rows, err := db.Query(`
		SELECT id, user_id, log_date, exercise, amount, recorded_at
		FROM workout_logs
		WHERE user_id = ?
		ORDER BY log_date DESC, recorded_at DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("models: list logs for user %d: %w", userID, err)
	}
	defer rows.Close()

	var logs []*WorkoutLog
	for rows.Next() {
		l := &WorkoutLog{}
		var ex string
		if err := rows.Scan(&l.ID, &l.UserID, &l.Date, &ex, &l.Amount, &l.RecordedAt); err != nil {
			return nil, fmt.Errorf("models: scan log: %w", err)
		}
		l.Date = normalizeDate(l.Date)
		l.Exercise = Exercise(ex)
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

// StatsEntries converts stored logs into statistics inputs.
func StatsEntries(logs []*WorkoutLog) []stats.Entry {
	entries := make([]stats.Entry, len(logs))
	for i, l := range logs {
		entries[i] = stats.Entry{Date: l.Date, Exercise: string(l.Exercise), Amount: l.Amount}
	}
	return entries
}
