package part

import (
	"errors"
	"testing"

	"github.com/kailas-cloud/partsupport/internal/domain"
)

func validRecord() Record {
	return Record{
		Title:            "Refrigerator Door Shelf Bin",
		Category:         "Refrigerator",
		Brand:            "Whirlpool",
		PartSelectNumber: "PS11752778",
		Description:      "Clear door bin",
		Price:            "$36.08",
		Troubleshooting:  "Cracked or broken bin",
		CompatibleModels: []string{"WRS325SDHZ"},
	}
}

func TestValidate_Valid(t *testing.T) {
	r := validRecord()
	if err := r.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_OptionalFieldsMayBeEmpty(t *testing.T) {
	r := validRecord()
	r.ManufacturerPartNumber = ""
	r.InstallationVideoURL = ""
	r.ImageURL = ""
	r.Replaces = nil
	r.Rating = ""
	r.CompatibleModels = []string{}
	if err := r.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_MissingRequired(t *testing.T) {
	tests := []struct {
		name  string
		mut   func(r *Record)
		field string
	}{
		{"title", func(r *Record) { r.Title = "" }, FieldTitle},
		{"brand blank", func(r *Record) { r.Brand = "  " }, FieldBrand},
		{"part number", func(r *Record) { r.PartSelectNumber = "" }, FieldPartSelectNumber},
		{"price", func(r *Record) { r.Price = "" }, FieldPrice},
		{"troubleshooting", func(r *Record) { r.Troubleshooting = "" }, FieldTroubleshooting},
		{"compatible models absent", func(r *Record) { r.CompatibleModels = nil }, FieldCompatibleModels},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validRecord()
			tt.mut(&r)

			err := r.Validate()
			if !errors.Is(err, domain.ErrDataIntegrity) {
				t.Fatalf("expected ErrDataIntegrity, got %v", err)
			}
			var mf *domain.MissingFieldError
			if !errors.As(err, &mf) || mf.Field != tt.field {
				t.Errorf("expected missing field %q, got %v", tt.field, err)
			}
		})
	}
}

func TestIsAllowedCategory(t *testing.T) {
	tests := []struct {
		category string
		want     bool
	}{
		{"Refrigerator", true},
		{"Dishwasher", true},
		{"dishwasher", true},
		{"Microwave", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsAllowedCategory(tt.category); got != tt.want {
			t.Errorf("IsAllowedCategory(%q) = %v, want %v", tt.category, got, tt.want)
		}
	}
}

func TestHasInstallationGuide(t *testing.T) {
	r := validRecord()
	if r.HasInstallationGuide() {
		t.Error("expected no guide")
	}
	r.InstallationVideoURL = "https://www.youtube.com/watch?v=abc"
	if !r.HasInstallationGuide() {
		t.Error("expected guide")
	}
}
