package catalog

import (
	"strings"
	"time"

	"github.com/varejo/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductStatus represents the status of a product
type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "active"
	ProductStatusInactive ProductStatus = "inactive"
)

// Product represents a catalog entry keyed by its barcode.
// It is the aggregate root for catalog operations; the ingestion subsystem
// mutates only its stock quantity.
type Product struct {
	shared.TenantAggregateRoot
	Barcode       string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_product_tenant_barcode,priority:2"`
	Name          string          `gorm:"type:varchar(200);not null"`
	Description   string          `gorm:"type:text"`
	Unit          string          `gorm:"type:varchar(20);not null;default:'un'"`
	CostPrice     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	SalePrice     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	StockQuantity decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Status        ProductStatus   `gorm:"type:varchar(20);not null;default:'active'"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a new product keyed by a normalized barcode
func NewProduct(tenantID uuid.UUID, barcode, name string) (*Product, error) {
	normalized, err := NormalizeBarcode(barcode)
	if err != nil {
		return nil, err
	}
	if err := validateProductName(name); err != nil {
		return nil, err
	}

	return &Product{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Barcode:             normalized,
		Name:                name,
		Unit:                "un",
		CostPrice:           decimal.Zero,
		SalePrice:           decimal.Zero,
		StockQuantity:       decimal.Zero,
		Status:              ProductStatusActive,
	}, nil
}

// Update updates the product's descriptive information
func (p *Product) Update(name, description string) error {
	if err := validateProductName(name); err != nil {
		return err
	}

	p.Name = name
	p.Description = description
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	return nil
}

// SetUnit sets the base unit (e.g., "un", "kg", "cx")
func (p *Product) SetUnit(unit string) error {
	unit = strings.TrimSpace(unit)
	if unit == "" {
		return nil
	}
	if len(unit) > 20 {
		return shared.NewDomainError("INVALID_UNIT", "Unit cannot exceed 20 characters")
	}
	p.Unit = unit
	p.UpdatedAt = time.Now()
	return nil
}

// SetPrices sets cost and sale prices
func (p *Product) SetPrices(costPrice, salePrice decimal.Decimal) error {
	if costPrice.IsNegative() || salePrice.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Prices cannot be negative")
	}
	p.CostPrice = costPrice
	p.SalePrice = salePrice
	p.UpdatedAt = time.Now()
	return nil
}

// ReplaceStock overwrites the stock quantity with the given value
func (p *Product) ReplaceStock(quantity decimal.Decimal) error {
	if quantity.IsNegative() {
		return shared.NewDomainError("INVALID_QUANTITY", "Stock quantity cannot be negative")
	}
	p.StockQuantity = quantity
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// AddStock increments the stock quantity
func (p *Product) AddStock(quantity decimal.Decimal) error {
	if quantity.IsNegative() {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity to add cannot be negative")
	}
	p.StockQuantity = p.StockQuantity.Add(quantity)
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// SubtractStock decrements the stock quantity, flooring at zero
func (p *Product) SubtractStock(quantity decimal.Decimal) error {
	if quantity.IsNegative() {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity to subtract cannot be negative")
	}
	next := p.StockQuantity.Sub(quantity)
	if next.IsNegative() {
		next = decimal.Zero
	}
	p.StockQuantity = next
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// Deactivate marks the product as inactive
func (p *Product) Deactivate() {
	p.Status = ProductStatusInactive
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

// Activate marks the product as active
func (p *Product) Activate() {
	p.Status = ProductStatusActive
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

// IsActive returns true if the product is active
func (p *Product) IsActive() bool {
	return p.Status == ProductStatusActive
}

func validateProductName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_PRODUCT_NAME", "Product name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_PRODUCT_NAME", "Product name cannot exceed 200 characters")
	}
	return nil
}
