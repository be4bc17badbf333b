package profile

import "fmt"

// Policy decides how an extracted value interacts with an already stored one.
// A deployment uses exactly one policy for every user.
type Policy string

const (
	// PolicyOverwrite applies any non-empty extracted value that differs
	// from the stored one.
	PolicyOverwrite Policy = "overwrite"
	// PolicyFillEmpty applies an extracted value only to empty fields.
	PolicyFillEmpty Policy = "fill-empty"
)

// ParsePolicy validates a configured policy name.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case PolicyOverwrite, PolicyFillEmpty:
		return Policy(s), nil
	case "":
		return PolicyOverwrite, nil
	}
	return "", fmt.Errorf("profile: unknown merge policy %q", s)
}

// Merge folds an extraction into the stored profile and reports whether any
// field changed. The running level is captured once and never replaced,
// whatever the policy.
func Merge(stored Profile, ext Extraction, policy Policy) (Profile, bool) {
	next := stored

	for f := range ext.Provenance {
		if !ext.Fields.Has(f) {
			continue
		}
		if stored.Has(f) && (policy == PolicyFillEmpty || f == FieldRunLevel) {
			continue
		}
		copyField(&next, ext.Fields, f)
	}

	return next, !next.Equal(stored)
}

func copyField(dst *Profile, src Profile, f Field) {
	switch f {
	case FieldAge:
		dst.Age = IntPtr(*src.Age)
	case FieldSex:
		dst.Sex = src.Sex
	case FieldLocation:
		dst.Location = src.Location
	case FieldRunLevel:
		dst.RunLevel = src.RunLevel
	case FieldSquatLevel:
		dst.SquatLevel = src.SquatLevel
	}
}
