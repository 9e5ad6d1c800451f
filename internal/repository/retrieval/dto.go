package retrieval

import (
	"strings"

	"github.com/kailas-cloud/partsupport/internal/domain/part"
	"github.com/kailas-cloud/partsupport/internal/domain/repair"
)

// listSeparator joins list metadata (compatible models, replaced numbers) into one hash field.
const listSeparator = ","

var partFields = []string{
	part.FieldTitle,
	part.FieldCategory,
	part.FieldBrand,
	part.FieldPartSelectNumber,
	part.FieldManufacturerPartNumber,
	part.FieldDescription,
	part.FieldPrice,
	part.FieldImageURL,
	part.FieldTroubleshooting,
	part.FieldCompatibleModels,
	part.FieldReplaces,
	part.FieldRating,
	part.FieldInstallationVideoURL,
}

var repairFields = []string{
	repair.FieldAppliance,
	repair.FieldType,
	repair.FieldText,
	repair.FieldSymptom,
	repair.FieldDescription,
	repair.FieldReportedBy,
	repair.FieldTitle,
	repair.FieldURL,
}

func encodePart(p part.Record) map[string]string {
	return map[string]string{
		part.FieldTitle:                  p.Title,
		part.FieldCategory:               p.Category,
		part.FieldBrand:                  p.Brand,
		part.FieldPartSelectNumber:       p.PartSelectNumber,
		part.FieldManufacturerPartNumber: p.ManufacturerPartNumber,
		part.FieldDescription:            p.Description,
		part.FieldPrice:                  p.Price,
		part.FieldImageURL:               p.ImageURL,
		part.FieldTroubleshooting:        p.Troubleshooting,
		part.FieldCompatibleModels:       strings.Join(p.CompatibleModels, listSeparator),
		part.FieldReplaces:               strings.Join(p.Replaces, listSeparator),
		part.FieldRating:                 p.Rating,
		part.FieldInstallationVideoURL:   p.InstallationVideoURL,
	}
}

// decodePart is lenient: absent fields stay empty and are reported later by part.Record.Validate.
// An absent list field decodes to nil, a present empty one to an empty slice.
func decodePart(_ string, m map[string]string) part.Record {
	return part.Record{
		Title:                  m[part.FieldTitle],
		Category:               m[part.FieldCategory],
		Brand:                  m[part.FieldBrand],
		PartSelectNumber:       m[part.FieldPartSelectNumber],
		ManufacturerPartNumber: m[part.FieldManufacturerPartNumber],
		Description:            m[part.FieldDescription],
		Price:                  m[part.FieldPrice],
		ImageURL:               m[part.FieldImageURL],
		Troubleshooting:        m[part.FieldTroubleshooting],
		CompatibleModels:       splitList(m, part.FieldCompatibleModels),
		Replaces:               splitList(m, part.FieldReplaces),
		Rating:                 m[part.FieldRating],
		InstallationVideoURL:   m[part.FieldInstallationVideoURL],
	}
}

func splitList(m map[string]string, key string) []string {
	v, ok := m[key]
	if !ok {
		return nil
	}
	out := []string{}
	for _, s := range strings.Split(v, listSeparator) {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// encodeRepair writes only the variant's own fields.
func encodeRepair(r repair.Record) map[string]string {
	m := map[string]string{
		repair.FieldAppliance: string(r.Appliance),
		repair.FieldType:      string(r.Kind),
	}
	set := func(k, v string) {
		if v != "" {
			m[k] = v
		}
	}
	set(repair.FieldText, r.Text)
	set(repair.FieldSymptom, r.Symptom)
	set(repair.FieldDescription, r.Description)
	set(repair.FieldReportedBy, r.ReportedBy)
	set(repair.FieldTitle, r.Title)
	set(repair.FieldURL, r.URL)
	return m
}

func decodeRepair(id string, m map[string]string) repair.Record {
	return repair.Record{
		ID:          id,
		Appliance:   repair.Appliance(m[repair.FieldAppliance]),
		Kind:        repair.Kind(m[repair.FieldType]),
		Text:        m[repair.FieldText],
		Symptom:     m[repair.FieldSymptom],
		Description: m[repair.FieldDescription],
		ReportedBy:  m[repair.FieldReportedBy],
		Title:       m[repair.FieldTitle],
		URL:         m[repair.FieldURL],
	}
}
