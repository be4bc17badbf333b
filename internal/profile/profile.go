// Package profile infers a user's fitness profile from free-text chat
// utterances and merges the inferred fields into the stored profile.
//
// Everything in this package is pure: no I/O, no clock, no globals that
// change after init. Persistence lives in internal/models.
package profile

import "strings"

// Sex is the self-reported sex of a user. The zero value means unknown.
type Sex string

const (
	SexUnknown Sex = ""
	SexMale    Sex = "male"
	SexFemale  Sex = "female"
)

// Label returns the short Korean label used in prompts and the norm table.
func (s Sex) Label() string {
	switch s {
	case SexMale:
		return "남"
	case SexFemale:
		return "여"
	default:
		return ""
	}
}

// ParseSex accepts the stored form ("male"), the Korean labels and common
// single-letter codes. Unrecognized input returns SexUnknown.
func ParseSex(v string) Sex {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "male", "m", "남", "남자", "남성":
		return SexMale
	case "female", "f", "여", "여자", "여성":
		return SexFemale
	default:
		return SexUnknown
	}
}

// Field names one tracked profile attribute.
type Field string

const (
	FieldAge        Field = "age"
	FieldSex        Field = "sex"
	FieldLocation   Field = "location"
	FieldRunLevel   Field = "run_level"
	FieldSquatLevel Field = "squat_level"
)

// TrackedFields lists every field that counts towards profile completeness,
// in display order.
var TrackedFields = []Field{FieldAge, FieldSex, FieldLocation, FieldRunLevel, FieldSquatLevel}

// Profile holds the inferred attributes of a user. Empty strings and a nil
// Age mean "not known yet".
type Profile struct {
	Age        *int
	Sex        Sex
	Location   string
	RunLevel   string
	SquatLevel string
}

// Has reports whether the given field is populated.
func (p Profile) Has(f Field) bool {
	switch f {
	case FieldAge:
		return p.Age != nil
	case FieldSex:
		return p.Sex != SexUnknown
	case FieldLocation:
		return p.Location != ""
	case FieldRunLevel:
		return p.RunLevel != ""
	case FieldSquatLevel:
		return p.SquatLevel != ""
	}
	return false
}

// Complete reports whether every tracked field is populated.
func (p Profile) Complete() bool {
	for _, f := range TrackedFields {
		if !p.Has(f) {
			return false
		}
	}
	return true
}

// HasBasics reports whether age, sex and location are all known. The coach
// switches from onboarding questions to a progress summary once they are.
func (p Profile) HasBasics() bool {
	return p.Has(FieldAge) && p.Has(FieldSex) && p.Has(FieldLocation)
}

// Equal compares two profiles field by field.
func (p Profile) Equal(o Profile) bool {
	if (p.Age == nil) != (o.Age == nil) {
		return false
	}
	if p.Age != nil && *p.Age != *o.Age {
		return false
	}
	return p.Sex == o.Sex &&
		p.Location == o.Location &&
		p.RunLevel == o.RunLevel &&
		p.SquatLevel == o.SquatLevel
}

// IntPtr is a convenience for building profiles with a known age.
func IntPtr(v int) *int { return &v }
