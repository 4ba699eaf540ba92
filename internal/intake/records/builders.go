// Package records turns a Field Map into the column maps written to the
// Applications table and the per-track detail tables.
package records

import (
	"fmt"

	"bitable-intake/internal/intake/fieldmap"
	"bitable-intake/internal/intake/track"
)

// Fields is a destination row keyed by column name.
type Fields map[string]interface{}

// BuildApplicationsFields builds the parent Application row.
func BuildApplicationsFields(t track.Track, fields fieldmap.FieldMap) Fields {
	out := Fields{
		FieldTrack:  string(t),
		FieldStatus: DefaultStatus,
	}
	if status, ok := fieldmap.Pick(fields, statusSources...); ok {
		out[FieldStatus] = status
	}
	apply(out, fields, ApplicationRules)
	return out
}

// BuildVisionaryFields builds the Visionary detail row linked to applicationID.
func BuildVisionaryFields(applicationID string, fields fieldmap.FieldMap) Fields {
	out := Fields{FieldApplicationID: applicationID}
	apply(out, fields, VisionaryRules)
	return out
}

// BuildMentorFields builds the Mentor detail row linked to applicationID.
func BuildMentorFields(applicationID string, fields fieldmap.FieldMap) Fields {
	out := Fields{FieldApplicationID: applicationID}
	apply(out, fields, MentorRules)
	return out
}

// BuildDetailFields dispatches to the builder for t.
func BuildDetailFields(t track.Track, applicationID string, fields fieldmap.FieldMap) (Fields, error) {
	switch t {
	case track.Visionary:
		return BuildVisionaryFields(applicationID, fields), nil
	case track.Mentor:
		return BuildMentorFields(applicationID, fields), nil
	}
	return nil, fmt.Errorf("no detail schema for track %q", t.String())
}

func apply(out Fields, fields fieldmap.FieldMap, rules []FieldRule) {
	for _, rule := range rules {
		value, ok := fieldmap.Pick(fields, rule.Sources...)
		if !ok {
			continue
		}
		if rule.Transform != nil {
			if value, ok = rule.Transform(value); !ok {
				continue
			}
		}
		out[rule.Target] = value
	}
}
