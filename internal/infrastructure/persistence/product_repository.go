package persistence

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/varejo/backend/internal/domain/catalog"
	"github.com/varejo/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormProductRepository implements ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindByID finds a product by its ID
func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	var product catalog.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

// FindByIDForTenant finds a product by ID within a tenant
func (r *GormProductRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*catalog.Product, error) {
	var product catalog.Product
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

// FindByBarcode finds a product by its barcode within a tenant
func (r *GormProductRepository) FindByBarcode(ctx context.Context, tenantID uuid.UUID, barcode string) (*catalog.Product, error) {
	if barcode == "" {
		return nil, shared.NewDomainError("INVALID_BARCODE", "Barcode cannot be empty")
	}
	var product catalog.Product
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND barcode = ?", tenantID, barcode).
		First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

// FindByBarcodes loads all products matching the given barcodes in a single
// query. Barcodes with no matching product are simply absent from the
// returned map.
func (r *GormProductRepository) FindByBarcodes(ctx context.Context, tenantID uuid.UUID, barcodes []string) (map[string]*catalog.Product, error) {
	result := make(map[string]*catalog.Product, len(barcodes))
	if len(barcodes) == 0 {
		return result, nil
	}

	var products []catalog.Product
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND barcode IN ?", tenantID, barcodes).
		Find(&products).Error; err != nil {
		return nil, err
	}

	for i := range products {
		result[products[i].Barcode] = &products[i]
	}
	return result, nil
}

// FindAllForTenant finds all products for a tenant
func (r *GormProductRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]catalog.Product, error) {
	var products []catalog.Product
	query := r.applyFilter(r.db.WithContext(ctx).Model(&catalog.Product{}).Where("tenant_id = ?", tenantID), filter)

	if err := query.Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// Save saves a product
func (r *GormProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	return r.db.WithContext(ctx).Save(product).Error
}

// UpsertByBarcode inserts the product or, when a product with the same
// tenant and barcode already exists, updates its descriptive fields. The
// existing stock quantity is preserved on conflict; the initial stock only
// applies to newly created products. Returns the persisted row.
func (r *GormProductRepository) UpsertByBarcode(ctx context.Context, product *catalog.Product) (*catalog.Product, error) {
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "tenant_id"}, {Name: "barcode"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"name", "description", "unit", "cost_price", "sale_price", "status", "updated_at",
		}),
	}).Create(product).Error; err != nil {
		return nil, err
	}

	// The upsert does not report which branch ran, so reload to observe the
	// persisted stock quantity and version.
	return r.FindByBarcode(ctx, product.TenantID, product.Barcode)
}

// AdjustStock sets the stock quantity of each product identified by barcode
// to the given value, as a single bulk UPDATE.
func (r *GormProductRepository) AdjustStock(ctx context.Context, tenantID uuid.UUID, quantities map[string]decimal.Decimal) error {
	if len(quantities) == 0 {
		return nil
	}

	barcodes := make([]string, 0, len(quantities))
	for barcode := range quantities {
		barcodes = append(barcodes, barcode)
	}
	sort.Strings(barcodes)

	var caseExpr strings.Builder
	args := make([]interface{}, 0, len(barcodes)*2+2)
	caseExpr.WriteString("CASE barcode")
	for _, barcode := range barcodes {
		caseExpr.WriteString(" WHEN ? THEN ?")
		args = append(args, barcode, quantities[barcode])
	}
	caseExpr.WriteString(" END")
	args = append(args, tenantID, barcodes)

	return r.db.WithContext(ctx).Exec(
		"UPDATE products SET stock_quantity = "+caseExpr.String()+", updated_at = NOW() WHERE tenant_id = ? AND barcode IN ?",
		args...,
	).Error
}

// CountForTenant counts products for a tenant
func (r *GormProductRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applySearch(r.db.WithContext(ctx).Model(&catalog.Product{}).Where("tenant_id = ?", tenantID), filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// DeleteForTenant deletes a product within a tenant
func (r *GormProductRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Delete(&catalog.Product{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// applyFilter applies search, ordering and pagination to a query
func (r *GormProductRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applySearch(query, filter)

	sortField := ValidateSortField(filter.OrderBy, ProductSortFields, "name")
	sortOrder := ValidateSortOrder(filter.OrderDir)
	query = query.Order(sortField + " " + sortOrder)

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	return query
}

func (r *GormProductRepository) applySearch(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("name ILIKE ? OR barcode ILIKE ?", searchPattern, searchPattern)
	}
	return query
}
