// pkg/schema/schema.go
package schema

// Snapshot is a point-in-time listing of the destination tables.
type Snapshot struct {
	AppToken    string  `json:"appToken"`
	GeneratedAt string  `json:"generatedAt"`
	Tables      []Table `json:"tables"`
}

// Table is one bitable table, labelled by the config key it came from.
type Table struct {
	Key    string  `json:"key"`
	ID     string  `json:"id"`
	Fields []Field `json:"fields"`
}

// Field is one column of a table.
type Field struct {
	ID     string `json:"fieldId"`
	Name   string `json:"fieldName"`
	Type   int    `json:"type"`
	UIType string `json:"uiType,omitempty"`
}
