package render

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/partsupport/internal/domain"
	"github.com/kailas-cloud/partsupport/internal/domain/repair"
)

// Section headers of the repairs block.
const (
	SymptomsHeader = "Common Symptoms:"
	VideosHeader   = "Troubleshooting Videos:"
)

var overviews = map[repair.Appliance]string{
	repair.Refrigerator: "Refrigerator Repair Overview: Most refrigerator problems trace back to a " +
		"small set of parts. Cooling issues usually involve the evaporator fan, condenser coils, " +
		"start relay or defrost system, while leaks and ice problems point to the water inlet " +
		"valve, water filter or ice maker assembly. Unplug the refrigerator before inspecting or " +
		"replacing any part.",
	repair.Dishwasher: "Dishwasher Repair Overview: Most dishwasher problems trace back to a small " +
		"set of parts. Leaks usually come from the door gasket, pump seals or water inlet valve, " +
		"poor cleaning points to the spray arms, filters or wash pump, and drainage trouble to the " +
		"drain pump or a clogged drain hose. Turn off power and water before inspecting or " +
		"replacing any part.",
}

// Repairs returns a renderer for repair records that picks the overview with infer.
// A nil infer uses repair.InferAppliance.
func Repairs(infer repair.InferFunc) func(ctx context.Context, query string, records []repair.Record) string {
	if infer == nil {
		infer = repair.InferAppliance
	}
	return func(ctx context.Context, query string, records []repair.Record) string {
		return renderRepairs(ctx, infer(query), records)
	}
}

func renderRepairs(ctx context.Context, appliance repair.Appliance, records []repair.Record) string {
	var b strings.Builder

	overview, ok := overviews[appliance]
	if !ok {
		overview = overviews[repair.Dishwasher]
	}
	b.WriteString(overview)
	b.WriteString("\n\n")

	b.WriteString(SymptomsHeader)
	b.WriteString("\n")
	for i := range records {
		r := &records[i]
		if r.Kind != repair.KindSymptom {
			continue
		}
		if strings.TrimSpace(r.Symptom) == "" {
			skipRecord(ctx, &domain.MissingFieldError{Record: "repair", Field: repair.FieldSymptom},
				zap.String("id", r.ID))
			continue
		}
		fmt.Fprintf(&b, "- %s", r.Symptom)
		if r.Description != "" {
			fmt.Fprintf(&b, ": %s", r.Description)
		}
		if r.ReportedBy != "" {
			fmt.Fprintf(&b, " (Reported by: %s)", r.ReportedBy)
		}
		b.WriteString("\n")
	}

	if mentionsVideo(records) {
		b.WriteString("\n")
		b.WriteString(VideosHeader)
		b.WriteString("\n")
		for i := range records {
			if title := strings.TrimSpace(records[i].Title); title != "" {
				fmt.Fprintf(&b, "- %s\n", title)
			}
		}
	}

	return b.String()
}

// mentionsVideo reports whether any record's serialized form contains "video".
func mentionsVideo(records []repair.Record) bool {
	for i := range records {
		raw, err := json.Marshal(&records[i])
		if err != nil {
			continue
		}
		if strings.Contains(strings.ToLower(string(raw)), "video") {
			return true
		}
	}
	return false
}
