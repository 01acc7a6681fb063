package catalog

import (
	"context"

	"github.com/varejo/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	// FindByID finds a product by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// FindByIDForTenant finds a product by ID within a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Product, error)

	// FindByBarcode finds a product by its barcode within a tenant
	FindByBarcode(ctx context.Context, tenantID uuid.UUID, barcode string) (*Product, error)

	// FindByBarcodes finds multiple products by their barcodes in one query.
	// The result map contains only the barcodes that matched.
	FindByBarcodes(ctx context.Context, tenantID uuid.UUID, barcodes []string) (map[string]*Product, error)

	// FindAllForTenant finds all products for a tenant
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Product, error)

	// Save creates or updates a product
	Save(ctx context.Context, product *Product) error

	// UpsertByBarcode creates the product, or updates the existing entry
	// carrying the same barcode within the tenant. Repeated upserts for the
	// same barcode converge to a single entry.
	UpsertByBarcode(ctx context.Context, product *Product) (*Product, error)

	// AdjustStock sets the stock quantity of each product identified by
	// barcode to the given value, as a single bulk write
	AdjustStock(ctx context.Context, tenantID uuid.UUID, quantities map[string]decimal.Decimal) error

	// CountForTenant counts products for a tenant
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)

	// DeleteForTenant deletes a product within a tenant
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error
}
