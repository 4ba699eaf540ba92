package schema

import (
	"fmt"
	"strings"
)

var mdEscaper = strings.NewReplacer("|", `\|`, "\n", " ")

// TypeLabel renders the numeric type, with the UI type when known.
func TypeLabel(f Field) string {
	if f.UIType == "" {
		return fmt.Sprint(f.Type)
	}
	return fmt.Sprintf("%d (ui_type %s)", f.Type, f.UIType)
}

// RenderMarkdown renders one section per table with a field table each.
func RenderMarkdown(tables []Table) string {
	var b strings.Builder
	b.WriteString("# Bitable Schema\n\n")

	for _, t := range tables {
		fmt.Fprintf(&b, "## %s (%s)\n\n", t.Key, t.ID)
		b.WriteString("| Field | Type | Field ID |\n")
		b.WriteString("| --- | --- | --- |\n")
		for _, f := range t.Fields {
			fmt.Fprintf(&b, "| %s | %s | %s |\n",
				mdEscaper.Replace(f.Name),
				mdEscaper.Replace(TypeLabel(f)),
				mdEscaper.Replace(f.ID),
			)
		}
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n") + "\n"
}

// RenderTSV renders name, type label and id, one field per line.
func RenderTSV(fields []Field) string {
	var b strings.Builder
	for _, f := range fields {
		fmt.Fprintf(&b, "%s\t%s\t%s\n", f.Name, TypeLabel(f), f.ID)
	}
	return b.String()
}
