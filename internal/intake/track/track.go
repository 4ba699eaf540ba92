// Package track decides which applicant track a submission belongs to.
package track

import (
	"strings"

	"bitable-intake/internal/intake/fieldmap"
)

// Track is the applicant category. The zero value means "undetermined".
type Track string

const (
	None      Track = ""
	Visionary Track = "Visionary"
	Mentor    Track = "Mentor"
)

var (
	// IndicatorKeys carry an explicit track label.
	IndicatorKeys = []string{"Track", "track", "type", "Type"}
	// VisionaryKeys only appear on the Visionary form.
	VisionaryKeys = []string{"Full Name", "fullName", "Role Selection", "roleSelection"}
	// MentorKeys only appear on the Mentor form.
	MentorKeys = []string{"Handle", "handle", "Superpower", "superpower", "Tools", "tools"}
)

// Parse matches a label exactly after trimming and lowercasing.
func Parse(label string) (Track, bool) {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "visionary":
		return Visionary, true
	case "mentor":
		return Mentor, true
	}
	return None, false
}

// Detect classifies fields. An explicit label wins; otherwise the presence of
// Visionary-only keys is checked before Mentor-only keys. When both key sets
// are present without a label the Visionary check wins by order alone.
func Detect(fields fieldmap.FieldMap) (Track, bool) {
	if raw, ok := fieldmap.Pick(fields, IndicatorKeys...); ok {
		if label, isString := raw.(string); isString {
			if t, matched := Parse(label); matched {
				return t, true
			}
		}
	}
	if _, ok := fieldmap.Pick(fields, VisionaryKeys...); ok {
		return Visionary, true
	}
	if _, ok := fieldmap.Pick(fields, MentorKeys...); ok {
		return Mentor, true
	}
	return None, false
}

func (t Track) String() string {
	if t == None {
		return "none"
	}
	return string(t)
}
