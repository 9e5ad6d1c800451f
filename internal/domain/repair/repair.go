// Package repair holds the repair-guide records used as generation context.
package repair

import (
	"fmt"
	"strings"
)

// Appliance tags a repair record.
type Appliance string

const (
	Refrigerator Appliance = "refrigerator"
	Dishwasher   Appliance = "dishwasher"
)

// Valid reports whether a is a known appliance.
func (a Appliance) Valid() bool {
	return a == Refrigerator || a == Dishwasher
}

// Kind discriminates the record variant.
type Kind string

const (
	KindOverview Kind = "overview"
	KindSymptom  Kind = "symptom"
	KindVideo    Kind = "video"
)

// Metadata field names as stored in the repairs collection.
const (
	FieldAppliance   = "appliance"
	FieldType        = "type"
	FieldText        = "text"
	FieldSymptom     = "symptom"
	FieldDescription = "description"
	FieldReportedBy  = "reported_by"
	FieldTitle       = "title"
	FieldURL         = "url"
)

// Record is one repair item. Only the fields of its Kind are set.
type Record struct {
	ID        string    `json:"id"`
	Appliance Appliance `json:"appliance"`
	Kind      Kind      `json:"type"`

	// overview
	Text string `json:"text,omitempty"`

	// symptom
	Symptom     string `json:"symptom,omitempty"`
	Description string `json:"description,omitempty"`
	ReportedBy  string `json:"reported_by,omitempty"`

	// video
	Title string `json:"title,omitempty"`
	URL   string `json:"url,omitempty"`
}

// OverviewID is the identity of an appliance's overview record.
func OverviewID(a Appliance) string {
	return string(a) + "_overview"
}

// SymptomID is the identity of a symptom record: the lowercased name with spaces as underscores.
func SymptomID(a Appliance, symptom string) string {
	return string(a) + "_" + strings.ReplaceAll(strings.ToLower(symptom), " ", "_")
}

// VideoID is the identity of a video record. n is the item's position in the appliance's item list.
func VideoID(a Appliance, n int) string {
	return fmt.Sprintf("%s_video_%d", a, n)
}

// InferFunc picks the appliance a query is about.
type InferFunc func(query string) Appliance

// InferAppliance is a keyword heuristic: any mention of a fridge means refrigerator,
// everything else is treated as a dishwasher question.
func InferAppliance(query string) Appliance {
	q := strings.ToLower(query)
	if strings.Contains(q, "fridge") || strings.Contains(q, "refrigerator") {
		return Refrigerator
	}
	return Dishwasher
}
