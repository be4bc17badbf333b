// Package stats computes workout aggregates over a user's log entries.
package stats

import (
	"sort"
	"time"
)

// DefaultWindowDays is the trailing window used for coaching summaries.
const DefaultWindowDays = 30

// DateLayout is the calendar-date layout used for log dates.
const DateLayout = "2006-01-02"

// Entry is the minimal view of a workout log entry the engine needs.
type Entry struct {
	Date     string // YYYY-MM-DD
	Exercise string
	Amount   int
}

// RollingStats summarizes the entries inside a trailing window.
type RollingStats struct {
	WindowDays        int
	ActiveDays        int
	TopExercise       string // empty when there are no entries
	TopExerciseAmount int
	TotalAmount       int
}

// HasTopExercise reports whether any exercise was logged in the window.
func (s RollingStats) HasTopExercise() bool { return s.TopExercise != "" }

// Compute aggregates the entries whose date falls within windowDays of
// today. The lower bound is inclusive: an entry dated exactly
// today-windowDays counts. Entries with unparseable dates are ignored.
func Compute(entries []Entry, windowDays int, today time.Time) RollingStats {
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}
	out := RollingStats{WindowDays: windowDays}

	cutoff := dateOnly(today).AddDate(0, 0, -windowDays)

	days := make(map[string]struct{})
	perExercise := make(map[string]int)

	for _, e := range entries {
		d, err := time.Parse(DateLayout, e.Date)
		if err != nil || d.Before(cutoff) {
			continue
		}
		days[d.Format(DateLayout)] = struct{}{}
		perExercise[e.Exercise] += e.Amount
		out.TotalAmount += e.Amount
	}

	out.ActiveDays = len(days)

	names := make([]string, 0, len(perExercise))
	for name := range perExercise {
		names = append(names, name)
	}
	sort.Strings(names)

	// Strictly greater keeps the alphabetically first exercise on ties.
	for _, name := range names {
		if perExercise[name] > out.TopExerciseAmount {
			out.TopExercise = name
			out.TopExerciseAmount = perExercise[name]
		}
	}

	return out
}

// DailyTotal is the summed amount for one calendar date.
type DailyTotal struct {
	Date   string
	Amount int
}

// DailyTotals sums amounts per date over all entries, oldest date first.
func DailyTotals(entries []Entry) []DailyTotal {
	sums := make(map[string]int)
	for _, e := range entries {
		d, err := time.Parse(DateLayout, e.Date)
		if err != nil {
			continue
		}
		sums[d.Format(DateLayout)] += e.Amount
	}

	out := make([]DailyTotal, 0, len(sums))
	for date, amount := range sums {
		out = append(out, DailyTotal{Date: date, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// Summary is the all-time view shown on the summary page.
type Summary struct {
	Days        int
	TotalAmount int
	Daily       []DailyTotal
	Message     string
}

// Summarize builds the all-time summary with its encouragement tier.
func Summarize(entries []Entry) Summary {
	daily := DailyTotals(entries)
	s := Summary{Days: len(daily), Daily: daily}
	for _, d := range daily {
		s.TotalAmount += d.Amount
	}
	s.Message = Encouragement(s.Days)
	return s
}

// Encouragement picks the summary message tier for a number of active days.
func Encouragement(activeDays int) string {
	switch {
	case activeDays <= 0:
		return "이제 막 시작 단계야! 오늘 가볍게 5분만이라도 움직여볼까? 😊"
	case activeDays < 3:
		return "좋아, 시동이 걸리고 있어. 이번 주 3일만 채워보자 💪"
	case activeDays < 7:
		return "꾸준함이 보인다. 주 3~4일 운동이면 이미 상위권이야 🤫"
	default:
		return "와… 이 정도면 주변 사람들한테 건강 전도사 해도 될 수준이야 🔥 계속 가보자!"
	}
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
