package importers

import (
	"database/sql"
	"slices"
	"sort"
	"strings"
	"unicode"

	"github.com/carpenike/fitcoach/internal/models"
)

// exerciseKeywords maps exercise names from other apps onto the enumerated
// exercises. Keywords match inside the name after lowercasing and removing
// spaces and hyphens; words must match a whole word of the lowercased name.
// The first matching rule wins.
var exerciseKeywords = []struct {
	exercise models.Exercise
	keywords []string
	words    []string
}{
	{exercise: models.ExercisePushUp, keywords: []string{"pushup", "팔굽혀펴기", "푸시업"}},
	{exercise: models.ExercisePullUp, keywords: []string{"pullup", "chinup", "턱걸이", "풀업"}},
	{exercise: models.ExerciseSitUp, keywords: []string{"situp", "crunch", "윗몸일으키기", "크런치"}},
	{exercise: models.ExercisePlankSeconds, keywords: []string{"plank", "플랭크"}},
	{exercise: models.ExerciseSquat, keywords: []string{"squat", "스쿼트"}},
	{
		exercise: models.ExerciseRunningMinutes,
		keywords: []string{"running", "jogging", "treadmill", "달리기", "러닝", "조깅"},
		words:    []string{"run", "jog"},
	},
}

// MapExercise resolves an imported exercise name. Codes and Korean labels map
// exactly; anything unrecognized maps to ExerciseOther.
func MapExercise(name string) models.Exercise {
	if ex, ok := models.ParseExercise(name); ok {
		return ex
	}
	lower := strings.ToLower(name)
	key := strings.NewReplacer(" ", "", "-", "", "_", "").Replace(lower)
	words := strings.FieldsFunc(lower, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, rule := range exerciseKeywords {
		for _, kw := range rule.keywords {
			if strings.Contains(key, kw) {
				return rule.exercise
			}
		}
		for _, w := range rule.words {
			if slices.Contains(words, w) {
				return rule.exercise
			}
		}
	}
	return models.ExerciseOther
}

// Entry is one workout log entry to be created.
type Entry struct {
	Date     string
	Exercise models.Exercise
	Amount   int
}

// Plan is the set of entries an import would create.
type Plan struct {
	Format  Format
	Entries []Entry
	// Unmapped lists source exercise names that fell back to "other".
	Unmapped []string
	// Skipped counts rows or sets that produced no amount.
	Skipped int
}

// Build sums the parsed sets per date and exercise. App exports contribute
// reps, except running (minutes, rounded up from seconds) and plank
// (seconds). Amounts above models.MaxAmount are capped.
func Build(pf *ParsedFile) *Plan {
	type key struct {
		date string
		ex   models.Exercise
	}
	sums := make(map[key]int)
	unmapped := make(map[string]bool)
	plan := &Plan{Format: pf.Format, Skipped: pf.Skipped}

	for _, set := range pf.Sets {
		ex := MapExercise(set.Exercise)
		if ex == models.ExerciseOther && !strings.EqualFold(set.Exercise, string(models.ExerciseOther)) {
			unmapped[set.Exercise] = true
		}
		amount := setAmount(pf.Format, ex, set)
		if amount <= 0 {
			plan.Skipped++
			continue
		}
		sums[key{set.Date, ex}] += amount
	}

	for k, amount := range sums {
		plan.Entries = append(plan.Entries, Entry{Date: k.date, Exercise: k.ex, Amount: min(amount, models.MaxAmount)})
	}
	sort.Slice(plan.Entries, func(i, j int) bool {
		a, b := plan.Entries[i], plan.Entries[j]
		if a.Date != b.Date {
			return a.Date < b.Date
		}
		return a.Exercise < b.Exercise
	})
	for name := range unmapped {
		plan.Unmapped = append(plan.Unmapped, name)
	}
	sort.Strings(plan.Unmapped)
	return plan
}

func setAmount(format Format, ex models.Exercise, set ParsedSet) int {
	if format == FormatFitcoachCSV {
		return set.Reps
	}
	switch ex {
	case models.ExerciseRunningMinutes:
		if set.Seconds > 0 {
			return (set.Seconds + 59) / 60
		}
		return 0
	case models.ExercisePlankSeconds:
		if set.Seconds > 0 {
			return set.Seconds
		}
		return set.Reps
	default:
		return set.Reps
	}
}

// Total is the summed amount of all entries.
func (p *Plan) Total() int {
	total := 0
	for _, e := range p.Entries {
		total += e.Amount
	}
	return total
}

// Apply stores the plan's entries for a user in one transaction and returns
// how many were written.
func (p *Plan) Apply(db *sql.DB, userID int64) (int, error) {
	logs := make([]models.NewLog, len(p.Entries))
	for i, e := range p.Entries {
		logs[i] = models.NewLog{Date: e.Date, Exercise: e.Exercise, Amount: e.Amount}
	}
	if err := models.CreateLogs(db, userID, logs...); err != nil {
		return 0, err
	}
	return len(logs), nil
}
