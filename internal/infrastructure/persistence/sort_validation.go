package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed
// fields. Returns the defaultField if the input is invalid, empty, or not in
// the whitelist. Sort fields are interpolated into ORDER BY, so everything
// not whitelisted is rejected.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// ProductSortFields contains allowed sort fields for products
var ProductSortFields = map[string]bool{
	"id":             true,
	"created_at":     true,
	"updated_at":     true,
	"barcode":        true,
	"name":           true,
	"unit":           true,
	"cost_price":     true,
	"sale_price":     true,
	"stock_quantity": true,
	"status":         true,
}

// IngestionRunSortFields contains allowed sort fields for ingestion runs
var IngestionRunSortFields = map[string]bool{
	"id":             true,
	"created_at":     true,
	"updated_at":     true,
	"mode":           true,
	"adjustment":     true,
	"source":         true,
	"status":         true,
	"total_rows":     true,
	"valid_rows":     true,
	"invalid_rows":   true,
	"updated_rows":   true,
	"not_found_rows": true,
	"started_at":     true,
	"completed_at":   true,
}

// ReceivingDocumentSortFields contains allowed sort fields for receiving documents
var ReceivingDocumentSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"supplier":   true,
	"access_key": true,
}
