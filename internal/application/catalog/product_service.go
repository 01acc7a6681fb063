package catalogapp

import (
	"context"

	"github.com/varejo/backend/internal/domain/catalog"
	"github.com/varejo/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductResponse is the application-level representation of a product
type ProductResponse struct {
	ID            uuid.UUID       `json:"id"`
	Barcode       string          `json:"barcode"`
	Name          string          `json:"name"`
	Description   string          `json:"description,omitempty"`
	Unit          string          `json:"unit"`
	CostPrice     decimal.Decimal `json:"cost_price"`
	SalePrice     decimal.Decimal `json:"sale_price"`
	StockQuantity decimal.Decimal `json:"stock_quantity"`
	Status        string          `json:"status"`
}

// ProductService serves catalog queries for the ingestion surfaces
type ProductService struct {
	productRepo catalog.ProductRepository
}

// NewProductService creates a new ProductService
func NewProductService(productRepo catalog.ProductRepository) *ProductService {
	return &ProductService{productRepo: productRepo}
}

// GetByID retrieves a product by ID within a tenant
func (s *ProductService) GetByID(ctx context.Context, tenantID, productID uuid.UUID) (*ProductResponse, error) {
	product, err := s.productRepo.FindByIDForTenant(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}
	return NewProductResponse(product), nil
}

// GetByBarcode retrieves a product by its normalized barcode
func (s *ProductService) GetByBarcode(ctx context.Context, tenantID uuid.UUID, barcode string) (*ProductResponse, error) {
	normalized, err := catalog.NormalizeBarcode(barcode)
	if err != nil {
		return nil, err
	}

	product, err := s.productRepo.FindByBarcode(ctx, tenantID, normalized)
	if err != nil {
		return nil, err
	}
	return NewProductResponse(product), nil
}

// List retrieves products for a tenant with pagination
func (s *ProductService) List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]ProductResponse, int64, error) {
	products, err := s.productRepo.FindAllForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.productRepo.CountForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]ProductResponse, len(products))
	for i := range products {
		responses[i] = *NewProductResponse(&products[i])
	}
	return responses, total, nil
}

// Delete removes a product from the tenant's catalog
func (s *ProductService) Delete(ctx context.Context, tenantID, productID uuid.UUID) error {
	return s.productRepo.DeleteForTenant(ctx, tenantID, productID)
}

// NewProductResponse maps a domain product to its API representation
func NewProductResponse(product *catalog.Product) *ProductResponse {
	return &ProductResponse{
		ID:            product.ID,
		Barcode:       product.Barcode,
		Name:          product.Name,
		Description:   product.Description,
		Unit:          product.Unit,
		CostPrice:     product.CostPrice,
		SalePrice:     product.SalePrice,
		StockQuantity: product.StockQuantity,
		Status:        string(product.Status),
	}
}
