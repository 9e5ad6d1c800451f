package ingest

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/kailas-cloud/partsupport/internal/domain/repair"
)

type repairGuide struct {
	Overview struct {
		Description string `json:"description"`
	} `json:"overview"`
	CommonSymptoms []struct {
		Symptom     string      `json:"symptom"`
		Description string      `json:"description"`
		ReportedBy  looseString `json:"reported_by"`
	} `json:"common_symptoms"`
	TroubleshootingVideos []struct {
		Title string `json:"title"`
		URL   string `json:"url"`
	} `json:"troubleshooting_videos"`
}

// ReadRepairs decodes one appliance's repair guide into records: the overview first,
// then symptoms, then videos. A video's number is the count of items before it.
func ReadRepairs(r io.Reader, appliance repair.Appliance) ([]repair.Record, error) {
	if !appliance.Valid() {
		return nil, fmt.Errorf("unknown appliance %q", appliance)
	}

	var g repairGuide
	if err := json.NewDecoder(r).Decode(&g); err != nil {
		return nil, fmt.Errorf("decode %s repair guide: %w", appliance, err)
	}

	items := make([]repair.Record, 0, 1+len(g.CommonSymptoms)+len(g.TroubleshootingVideos))
	items = append(items, repair.Record{
		ID:        repair.OverviewID(appliance),
		Appliance: appliance,
		Kind:      repair.KindOverview,
		Text:      g.Overview.Description,
	})
	for _, s := range g.CommonSymptoms {
		items = append(items, repair.Record{
			ID:          repair.SymptomID(appliance, s.Symptom),
			Appliance:   appliance,
			Kind:        repair.KindSymptom,
			Symptom:     s.Symptom,
			Description: s.Description,
			ReportedBy:  string(s.ReportedBy),
		})
	}
	for _, v := range g.TroubleshootingVideos {
		items = append(items, repair.Record{
			ID:        repair.VideoID(appliance, len(items)),
			Appliance: appliance,
			Kind:      repair.KindVideo,
			Title:     v.Title,
			URL:       v.URL,
		})
	}
	return items, nil
}

// RepairSearchText is the text embedded for a repair item.
func RepairSearchText(r repair.Record) string {
	prefix := fmt.Sprintf("%s %s ", r.Appliance, r.Kind)
	switch r.Kind {
	case repair.KindSymptom:
		return prefix + r.Symptom + " " + r.Description + " "
	case repair.KindVideo:
		return prefix + r.Title + " "
	default:
		return prefix + r.Text
	}
}

// RepairItems pairs each record with its search text.
func RepairItems(records []repair.Record) []Item[repair.Record] {
	items := make([]Item[repair.Record], len(records))
	for i, r := range records {
		items[i] = Item[repair.Record]{ID: r.ID, Record: r, Text: RepairSearchText(r)}
	}
	return items
}
