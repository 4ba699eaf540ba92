package records

import (
	"strings"

	"bitable-intake/internal/intake/fieldmap"
)

// Transform normalizes a picked source value. Returning false drops the field.
type Transform func(value interface{}) (interface{}, bool)

// FieldRule maps a destination column to its candidate source keys.
type FieldRule struct {
	Target    string
	Sources   []string
	Transform Transform
}

// Link is the structured value of a URL column.
type Link struct {
	Link string `json:"link"`
	Text string `json:"text"`
}

// Destination column names.
const (
	FieldTrack         = "Track"
	FieldStatus        = "Status"
	FieldApplicationID = "Application ID"

	DefaultStatus = "Submitted"
)

// HeadshotKeys are the Field Map keys a headshot file arrives under and
// the keys its uploaded reference is spliced back into.
var HeadshotKeys = []string{"Headshot", "headshot"}

var statusSources = []string{"Status", "status"}

// ApplicationRules are the optional Application columns.
var ApplicationRules = []FieldRule{
	{Target: "Reviewer", Sources: []string{"Reviewer", "reviewer"}},
	{Target: "Reviewer Notes", Sources: []string{"Reviewer Notes", "reviewerNotes"}},
}

// VisionaryRules are the optional Visionary detail columns.
var VisionaryRules = []FieldRule{
	{Target: "Full Name", Sources: []string{"Full Name", "fullName", "name"}},
	{Target: "Title", Sources: []string{"Title", "title", "Title / Role", "titleRole", "role"}},
	{Target: "Professional Link", Sources: []string{"Professional Link", "professionalLink", "portfolio"}},
	{Target: "Role Selection", Sources: []string{"Role Selection", "roleSelection"}},
	{Target: "SF Availability", Sources: []string{"SF Availability", "sfAvailability"}},
	{Target: "Soul over Slop", Sources: []string{"Soul over Slop", "soulOverSlop"}},
}

// MentorRules are the optional Mentor detail columns.
var MentorRules = []FieldRule{
	{Target: "Handle", Sources: []string{"Handle", "handle"}},
	{Target: "Primary Platform", Sources: []string{"Primary Platform", "primaryPlatform"}},
	{Target: "Follower Count", Sources: []string{"Follower Count", "followerCount"}, Transform: number},
	{Target: "Portfolio Link", Sources: []string{"Portfolio Link", "portfolioLink"}, Transform: link},
	{Target: "Superpower", Sources: []string{"Superpower", "superpower"}},
	{Target: "Mission Card", Sources: []string{"Mission Card", "missionCard"}},
	{Target: "Proud Work Link", Sources: []string{"Proud Work Link", "proudWorkLink"}, Transform: link},
	{Target: "Tools", Sources: []string{"Tools", "tools", "Tool", "tool"}, Transform: stringList},
}

func number(value interface{}) (interface{}, bool) {
	n, ok := fieldmap.Number(value)
	if !ok {
		return nil, false
	}
	return n, true
}

func link(value interface{}) (interface{}, bool) {
	url := strings.TrimSpace(fieldmap.String(value))
	return Link{Link: url, Text: url}, true
}

func stringList(value interface{}) (interface{}, bool) {
	items := fieldmap.ToStringArray(value)
	if len(items) == 0 {
		return nil, false
	}
	return items, true
}
