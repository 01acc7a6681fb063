package ingestion

import (
	"github.com/shopspring/decimal"

	"github.com/varejo/backend/internal/domain/catalog"
)

// SourceFormat identifies where an ingested line came from
type SourceFormat string

const (
	SourceFormatTabular  SourceFormat = "tabular"
	SourceFormatDocument SourceFormat = "document"
)

// NormalizedItem is one well-formed line ready for catalog resolution
type NormalizedItem struct {
	Line        int
	Barcode     string
	RawBarcode  string
	RawQuantity string
	Quantity    decimal.Decimal
	UnitCost    *decimal.Decimal
	Description string
	Source      SourceFormat
}

// ResolutionStatus classifies the outcome of matching one item against the catalog
type ResolutionStatus string

const (
	StatusResolved   ResolutionStatus = "resolved"
	StatusUnresolved ResolutionStatus = "unresolved"
	StatusInvalid    ResolutionStatus = "invalid"
)

// Resolution pairs a normalized item with its catalog match, if any
type Resolution struct {
	Item    NormalizedItem
	Product *catalog.Product
	Status  ResolutionStatus
	Reason  string
}

// Resolve resolves the full set of normalized items against the given
// barcode→product map produced by one bulk catalog lookup. Resolution is
// read-only; items absent from the map come back unresolved. Input order is
// preserved.
func Resolve(items []NormalizedItem, products map[string]*catalog.Product) []Resolution {
	resolutions := make([]Resolution, 0, len(items))
	for _, item := range items {
		if product, ok := products[item.Barcode]; ok {
			resolutions = append(resolutions, Resolution{
				Item:    item,
				Product: product,
				Status:  StatusResolved,
			})
			continue
		}
		resolutions = append(resolutions, Resolution{
			Item:   item,
			Status: StatusUnresolved,
			Reason: "barcode not found in catalog",
		})
	}
	return resolutions
}

// Barcodes returns the distinct barcodes of the given items, preserving
// first-seen order
func Barcodes(items []NormalizedItem) []string {
	seen := make(map[string]bool, len(items))
	barcodes := make([]string, 0, len(items))
	for _, item := range items {
		if !seen[item.Barcode] {
			seen[item.Barcode] = true
			barcodes = append(barcodes, item.Barcode)
		}
	}
	return barcodes
}
