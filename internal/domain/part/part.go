// Package part holds the catalog record returned to callers.
package part

import (
	"strings"

	"github.com/kailas-cloud/partsupport/internal/domain"
)

// Allowed categories. Records in any other category never reach the context.
const (
	CategoryRefrigerator = "Refrigerator"
	CategoryDishwasher   = "Dishwasher"
)

// Metadata field names as stored in the parts collection.
const (
	FieldTitle                  = "title"
	FieldCategory               = "category"
	FieldBrand                  = "brand"
	FieldPartSelectNumber       = "part_select_number"
	FieldManufacturerPartNumber = "manufacturer_part_number"
	FieldDescription            = "description"
	FieldPrice                  = "price"
	FieldImageURL               = "image_url"
	FieldTroubleshooting        = "troubleshooting"
	FieldCompatibleModels       = "compatible_models"
	FieldReplaces               = "replaces"
	FieldRating                 = "rating"
	FieldInstallationVideoURL   = "installation_video_url"
)

// Record is one catalog part. Identity is PartSelectNumber.
type Record struct {
	Title                  string   `json:"title"`
	Category               string   `json:"category"`
	Brand                  string   `json:"brand"`
	PartSelectNumber       string   `json:"part_select_number"`
	ManufacturerPartNumber string   `json:"manufacturer_part_number"`
	Description            string   `json:"description"`
	Price                  string   `json:"price"`
	ImageURL               string   `json:"image_url"`
	Troubleshooting        string   `json:"troubleshooting"`
	CompatibleModels       []string `json:"compatible_models"`
	Replaces               []string `json:"replaces"`
	Rating                 string   `json:"rating"`
	InstallationVideoURL   string   `json:"installation_video_url"`
}

// IsAllowedCategory reports whether category is one of the supported appliance domains.
func IsAllowedCategory(category string) bool {
	return strings.EqualFold(category, CategoryRefrigerator) ||
		strings.EqualFold(category, CategoryDishwasher)
}

// Validate returns a *domain.MissingFieldError for the first absent required field.
// Empty strings count as absent. CompatibleModels must be present but may be empty.
func (r *Record) Validate() error {
	required := []struct {
		name  string
		value string
	}{
		{FieldTitle, r.Title},
		{FieldCategory, r.Category},
		{FieldBrand, r.Brand},
		{FieldPartSelectNumber, r.PartSelectNumber},
		{FieldPrice, r.Price},
		{FieldDescription, r.Description},
		{FieldTroubleshooting, r.Troubleshooting},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return &domain.MissingFieldError{Record: "part", Field: f.name}
		}
	}
	if r.CompatibleModels == nil {
		return &domain.MissingFieldError{Record: "part", Field: FieldCompatibleModels}
	}
	return nil
}

// HasInstallationGuide reports whether an installation video is linked.
func (r *Record) HasInstallationGuide() bool {
	return strings.TrimSpace(r.InstallationVideoURL) != ""
}
