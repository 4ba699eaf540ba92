package schema

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sampleTables = []Table{
	{
		Key: "APPLICATIONS_TABLE_ID",
		ID:  "tblApps",
		Fields: []Field{
			{ID: "fld1", Name: "Track", Type: 3, UIType: "SingleSelect"},
			{ID: "fld2", Name: "Notes | internal\nonly", Type: 1},
		},
	},
	{Key: "MENTOR_TABLE_ID", ID: "tblMentor"},
}

func TestRenderMarkdown(t *testing.T) {
	want := "# Bitable Schema\n" +
		"\n" +
		"## APPLICATIONS_TABLE_ID (tblApps)\n" +
		"\n" +
		"| Field | Type | Field ID |\n" +
		"| --- | --- | --- |\n" +
		"| Track | 3 (ui_type SingleSelect) | fld1 |\n" +
		"| Notes \\| internal only | 1 | fld2 |\n" +
		"\n" +
		"## MENTOR_TABLE_ID (tblMentor)\n" +
		"\n" +
		"| Field | Type | Field ID |\n" +
		"| --- | --- | --- |\n"

	assert.Equal(t, want, RenderMarkdown(sampleTables))
}

func TestRenderTSV(t *testing.T) {
	assert.Equal(t,
		"Track\t3 (ui_type SingleSelect)\tfld1\nNotes | internal\nonly\t1\tfld2\n",
		RenderTSV(sampleTables[0].Fields),
	)
}

func TestSnapshotRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema.json")
	snap := &Snapshot{AppToken: "bascnApp", GeneratedAt: "2026-03-01T12:00:00Z", Tables: sampleTables}

	require.NoError(t, SaveSnapshot(path, snap))

	loaded, err := LoadSnapshot(path)
	require.NoError(t, err)
	assert.Equal(t, snap.Tables[0], loaded.Tables[0])
	assert.Equal(t, "bascnApp", loaded.AppToken)
}
