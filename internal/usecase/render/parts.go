// Package render turns retrieved records into the text blocks handed to the model.
package render

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/partsupport/internal/domain"
	"github.com/kailas-cloud/partsupport/internal/domain/part"
	"github.com/kailas-cloud/partsupport/internal/logger"
	"github.com/kailas-cloud/partsupport/internal/metrics"
)

// PartsHeader opens the parts block.
const PartsHeader = "Here are the relevant parts information:"

// Skip reasons reported in metrics.
const (
	reasonCategory     = "category"
	reasonMissingField = "missing_field"
)

// Parts renders part records in retrieval order. Records outside the allowed categories are
// dropped silently; records missing a required field are skipped with a warning. Kept records
// are numbered consecutively.
func Parts(ctx context.Context, _ string, records []part.Record) string {
	var b strings.Builder
	b.WriteString(PartsHeader)
	b.WriteString("\n\n")

	n := 0
	for i := range records {
		p := &records[i]
		// a blank category is a missing field, not a foreign one
		if strings.TrimSpace(p.Category) != "" && !part.IsAllowedCategory(p.Category) {
			metrics.RenderSkippedTotal.WithLabelValues(reasonCategory).Inc()
			continue
		}
		if err := p.Validate(); err != nil {
			skipRecord(ctx, err, zap.String("part_select_number", p.PartSelectNumber))
			continue
		}

		n++
		fmt.Fprintf(&b, "Part %d:\n", n)
		fmt.Fprintf(&b, "Title: %s\n", p.Title)
		fmt.Fprintf(&b, "Category: %s\n", p.Category)
		fmt.Fprintf(&b, "Brand: %s\n", p.Brand)
		fmt.Fprintf(&b, "Part Number: %s\n", p.PartSelectNumber)
		if p.ManufacturerPartNumber != "" {
			fmt.Fprintf(&b, "Manufacturer Part Number: %s\n", p.ManufacturerPartNumber)
		}
		fmt.Fprintf(&b, "Price: %s\n", p.Price)
		fmt.Fprintf(&b, "Description: %s\n", p.Description)
		fmt.Fprintf(&b, "Troubleshooting: %s\n", p.Troubleshooting)
		fmt.Fprintf(&b, "Compatible Models: %s\n", strings.Join(p.CompatibleModels, ", "))
		fmt.Fprintf(&b, "Installation Guide Available: %s\n", yesNo(p.HasInstallationGuide()))
		b.WriteString("\n")
	}

	return b.String()
}

func skipRecord(ctx context.Context, err error, fields ...zap.Field) {
	metrics.RenderSkippedTotal.WithLabelValues(reasonMissingField).Inc()

	var mf *domain.MissingFieldError
	if errors.As(err, &mf) {
		fields = append(fields, zap.String("record", mf.Record), zap.String("field", mf.Field))
	}
	logger.FromContext(ctx).Warn("skipping record with missing field", append(fields, zap.Error(err))...)
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}
