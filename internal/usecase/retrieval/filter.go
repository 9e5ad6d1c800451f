package retrieval

import (
	"github.com/kailas-cloud/partsupport/internal/domain/filter"
	"github.com/kailas-cloud/partsupport/internal/domain/part"
	"github.com/kailas-cloud/partsupport/internal/domain/reference"
)

// PartsFilter builds the part-number filter: one equality when a single reference is found,
// otherwise an OR of the distributor and manufacturer numbers. A distributor number also
// matches the manufacturer pattern; when both detections are the same token only the
// distributor equality is kept.
func PartsFilter(query string) (filter.Expression, error) {
	refs := reference.Detect(query)

	var conds []filter.Condition
	if refs.Distributor != "" {
		c, err := filter.NewMatch(part.FieldPartSelectNumber, refs.Distributor)
		if err != nil {
			return filter.Expression{}, err
		}
		conds = append(conds, c)
	}
	if refs.Manufacturer != "" && refs.Manufacturer != refs.Distributor {
		c, err := filter.NewMatch(part.FieldManufacturerPartNumber, refs.Manufacturer)
		if err != nil {
			return filter.Expression{}, err
		}
		conds = append(conds, c)
	}

	switch len(conds) {
	case 0:
		return filter.Expression{}, nil
	case 1:
		return filter.NewExpression(conds, nil)
	default:
		return filter.NewExpression(nil, conds)
	}
}
