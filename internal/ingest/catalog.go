// Package ingest turns JSON catalogs into indexed records.
package ingest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/kailas-cloud/partsupport/internal/domain/part"
)

// catalogPart is one entry of a scraped parts catalog.
type catalogPart struct {
	Title                  looseString `json:"title"`
	Category               looseString `json:"category"`
	Brand                  looseString `json:"brand"`
	PartSelectNumber       looseString `json:"partSelectNumber"`
	ManufacturerPartNumber looseString `json:"manufacturerPartNumber"`
	Description            looseString `json:"description"`
	Price                  looseString `json:"price"`
	ImageURL               looseString `json:"imageURL"`
	Troubleshooting        looseString `json:"troubleShooting"`
	CompatibleModels       looseList   `json:"compatibleModels"`
	Replaces               looseList   `json:"replaces"`
	Rating                 looseString `json:"rating"`
	InstallationVideoURL   looseString `json:"installationVideoURL"`
}

// ReadParts decodes a catalog file: a JSON array of parts.
func ReadParts(r io.Reader) ([]part.Record, error) {
	var raw []catalogPart
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode parts catalog: %w", err)
	}

	out := make([]part.Record, 0, len(raw))
	for _, p := range raw {
		models := []string(p.CompatibleModels)
		if models == nil {
			models = []string{}
		}
		out = append(out, part.Record{
			Title:                  string(p.Title),
			Category:               string(p.Category),
			Brand:                  string(p.Brand),
			PartSelectNumber:       string(p.PartSelectNumber),
			ManufacturerPartNumber: string(p.ManufacturerPartNumber),
			Description:            string(p.Description),
			Price:                  string(p.Price),
			ImageURL:               string(p.ImageURL),
			Troubleshooting:        string(p.Troubleshooting),
			CompatibleModels:       models,
			Replaces:               []string(p.Replaces),
			Rating:                 string(p.Rating),
			InstallationVideoURL:   string(p.InstallationVideoURL),
		})
	}
	return out, nil
}

// PartID is the identity of the i-th part across all loaded catalogs.
func PartID(i int) string {
	return fmt.Sprintf("part_%d", i)
}

// PartSearchText is the text embedded for a part.
func PartSearchText(r part.Record) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Title: %s\n", r.Title)
	fmt.Fprintf(&b, "Category: %s\n", r.Category)
	fmt.Fprintf(&b, "Brand: %s\n", r.Brand)
	fmt.Fprintf(&b, "Description: %s\n", r.Description)
	fmt.Fprintf(&b, "Part Number: %s\n", r.PartSelectNumber)
	fmt.Fprintf(&b, "Manufacturer Part Number: %s\n", r.ManufacturerPartNumber)
	fmt.Fprintf(&b, "Troubleshooting: %s\n", r.Troubleshooting)
	fmt.Fprintf(&b, "Compatible Models: %s", strings.Join(r.CompatibleModels, ", "))
	return b.String()
}

// looseString accepts a JSON string, number or null. Scraped catalogs mix them for price and rating.
type looseString string

func (s *looseString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*s = ""
	case len(data) > 0 && data[0] == '"':
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = looseString(v)
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("expected string or number, got %s", data)
		}
		*s = looseString(n.String())
	}
	return nil
}

// looseList accepts a JSON array of strings or a single comma-separated string.
type looseList []string

func (l *looseList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*l = nil
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		out := []string{}
		for _, s := range strings.Split(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
		*l = out
		return nil
	}
	var v []string
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("expected string list: %w", err)
	}
	if v == nil {
		v = []string{}
	}
	*l = v
	return nil
}

// PartItems numbers records from offset so ids stay unique across several catalogs.
func PartItems(records []part.Record, offset int) []Item[part.Record] {
	items := make([]Item[part.Record], len(records))
	for i, r := range records {
		items[i] = Item[part.Record]{ID: PartID(offset + i), Record: r, Text: PartSearchText(r)}
	}
	return items
}
