package track

import (
	"testing"

	"bitable-intake/internal/intake/fieldmap"

	"github.com/stretchr/testify/assert"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name      string
		fields    fieldmap.FieldMap
		want      Track
		wantFound bool
	}{
		{name: "explicit visionary", fields: fieldmap.FieldMap{"Track": "Visionary"}, want: Visionary, wantFound: true},
		{name: "explicit lowercase mentor", fields: fieldmap.FieldMap{"Track": "mentor"}, want: Mentor, wantFound: true},
		{name: "padded type alias", fields: fieldmap.FieldMap{"type": "  MENTOR "}, want: Mentor, wantFound: true},
		{
			name:      "label beats mentor-only fields",
			fields:    fieldmap.FieldMap{"Track": "Visionary", "Handle": "x", "Superpower": "y"},
			want:      Visionary,
			wantFound: true,
		},
		{
			name:      "inexact label falls through to heuristic",
			fields:    fieldmap.FieldMap{"type": "Vision", "Handle": "x"},
			want:      Mentor,
			wantFound: true,
		},
		{
			name:      "non-string label is ignored",
			fields:    fieldmap.FieldMap{"Track": []interface{}{"Mentor"}, "fullName": "A"},
			want:      Visionary,
			wantFound: true,
		},
		{name: "visionary by role selection", fields: fieldmap.FieldMap{"roleSelection": "Builder"}, want: Visionary, wantFound: true},
		{name: "mentor by tools", fields: fieldmap.FieldMap{"tools": "Figma"}, want: Mentor, wantFound: true},
		{name: "empty values do not count", fields: fieldmap.FieldMap{"Full Name": "", "Handle": nil}, want: None, wantFound: false},
		{name: "empty map", fields: fieldmap.FieldMap{}, want: None, wantFound: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := Detect(tt.fields)
			assert.Equal(t, tt.wantFound, found)
			assert.Equal(t, tt.want, got)
		})
	}
}

// Both key sets present with no label: Visionary wins only because it is
// checked first. This pins current behaviour; the overlap is most likely a
// form bug rather than a deliberate priority.
func TestDetect_AmbiguousPayloadResolvesByCheckOrder(t *testing.T) {
	got, found := Detect(fieldmap.FieldMap{"Full Name": "A", "Handle": "b"})

	assert.True(t, found)
	assert.Equal(t, Visionary, got)
}

func TestParse(t *testing.T) {
	got, ok := Parse("Visionary")
	assert.True(t, ok)
	assert.Equal(t, Visionary, got)

	_, ok = Parse("visionaries")
	assert.False(t, ok)

	assert.Equal(t, "none", None.String())
	assert.Equal(t, "Mentor", Mentor.String())
}
