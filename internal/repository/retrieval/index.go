package retrieval

import (
	"fmt"

	"github.com/kailas-cloud/partsupport/internal/db"
	"github.com/kailas-cloud/partsupport/internal/domain/part"
	"github.com/kailas-cloud/partsupport/internal/domain/repair"
)

// HNSWConfig holds HNSW index parameters.
type HNSWConfig struct {
	M           int
	EFConstruct int
}

// Layout is the key and index layout shared by the server and the loader.
type Layout struct {
	KeyPrefix    string
	PartsIndex   string
	RepairsIndex string
	VectorDim    int
	HNSW         HNSWConfig
}

// partsPrefix and repairsPrefix: {prefix}parts:{id}, {prefix}repairs:{id}
func (l Layout) partsPrefix() string   { return l.KeyPrefix + "parts:" }
func (l Layout) repairsPrefix() string { return l.KeyPrefix + "repairs:" }

// Parts describes the parts collection. Part numbers are case-sensitive tags so a
// detected reference matches only its literal text.
func Parts(l Layout) (Collection[part.Record], error) {
	idx, err := db.NewIndex(l.PartsIndex).
		Prefix(l.partsPrefix()).
		ExactTag(part.FieldPartSelectNumber).
		ExactTag(part.FieldManufacturerPartNumber).
		Tag(part.FieldCategory).
		VectorHNSW(VectorField, l.VectorDim, db.DistanceCosine, l.HNSW.M, l.HNSW.EFConstruct).
		Build()
	if err != nil {
		return Collection[part.Record]{}, fmt.Errorf("parts index: %w", err)
	}

	return Collection[part.Record]{
		Name:         "parts",
		KeyPrefix:    l.partsPrefix(),
		Index:        idx,
		ReturnFields: partFields,
		Encode:       encodePart,
		Decode:       decodePart,
	}, nil
}

// Repairs describes the repairs collection.
func Repairs(l Layout) (Collection[repair.Record], error) {
	idx, err := db.NewIndex(l.RepairsIndex).
		Prefix(l.repairsPrefix()).
		Tag(repair.FieldAppliance).
		Tag(repair.FieldType).
		VectorHNSW(VectorField, l.VectorDim, db.DistanceCosine, l.HNSW.M, l.HNSW.EFConstruct).
		Build()
	if err != nil {
		return Collection[repair.Record]{}, fmt.Errorf("repairs index: %w", err)
	}

	return Collection[repair.Record]{
		Name:         "repairs",
		KeyPrefix:    l.repairsPrefix(),
		Index:        idx,
		ReturnFields: repairFields,
		Encode:       encodeRepair,
		Decode:       decodeRepair,
	}, nil
}
