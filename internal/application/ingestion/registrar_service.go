package ingestionapp

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/varejo/backend/internal/domain/catalog"
	"github.com/varejo/backend/internal/domain/shared"
)

// RegisterItemRequest carries the fields for registering one catalog entry
// surfaced by an ingestion run as not found
type RegisterItemRequest struct {
	TenantID    uuid.UUID
	Barcode     string
	Name        string
	Description string
	Unit        string
	CostPrice   *decimal.Decimal
	SalePrice   *decimal.Decimal
	// InitialStock, when set, seeds the stock of the new entry with the
	// quantity that was pending on the originating run line
	InitialStock *decimal.Decimal
}

// RegistrarService registers catalog entries for identifiers an ingestion
// run could not resolve. Registration is an upsert keyed on the normalized
// barcode: re-registering the same identifier converges to a single entry.
type RegistrarService struct {
	productRepo catalog.ProductRepository
	logger      *zap.Logger
}

// NewRegistrarService creates a new RegistrarService
func NewRegistrarService(productRepo catalog.ProductRepository, logger *zap.Logger) *RegistrarService {
	return &RegistrarService{
		productRepo: productRepo,
		logger:      logger,
	}
}

// Register upserts one catalog entry by barcode. A description (name) is
// required; registration without one is refused so the catalog never
// accumulates nameless entries.
func (s *RegistrarService) Register(ctx context.Context, req RegisterItemRequest) (*catalog.Product, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, shared.NewDomainError("MISSING_REQUIRED_FIELD", "Product name is required")
	}

	product, err := catalog.NewProduct(req.TenantID, req.Barcode, name)
	if err != nil {
		return nil, err
	}
	if desc := strings.TrimSpace(req.Description); desc != "" {
		if err := product.Update(name, desc); err != nil {
			return nil, err
		}
	}
	if unit := strings.TrimSpace(req.Unit); unit != "" {
		if err := product.SetUnit(unit); err != nil {
			return nil, err
		}
	}
	if req.CostPrice != nil || req.SalePrice != nil {
		cost, sale := decimal.Zero, decimal.Zero
		if req.CostPrice != nil {
			cost = *req.CostPrice
		}
		if req.SalePrice != nil {
			sale = *req.SalePrice
		}
		if err := product.SetPrices(cost, sale); err != nil {
			return nil, err
		}
	}
	if req.InitialStock != nil {
		if err := product.ReplaceStock(*req.InitialStock); err != nil {
			return nil, err
		}
	}

	saved, err := s.productRepo.UpsertByBarcode(ctx, product)
	if err != nil {
		return nil, fmt.Errorf("failed to register product: %w", err)
	}

	s.logger.Info("product registered",
		zap.String("tenant_id", req.TenantID.String()),
		zap.String("barcode", saved.Barcode),
		zap.String("product_id", saved.ID.String()))

	return saved, nil
}

// RegisterAndApply registers the entry and immediately applies the pending
// quantity from the originating run line, incrementing stock. The rest of
// that run is untouched; no second resolution pass happens.
func (s *RegistrarService) RegisterAndApply(ctx context.Context, req RegisterItemRequest, pending decimal.Decimal) (*catalog.Product, error) {
	product, err := s.Register(ctx, req)
	if err != nil {
		return nil, err
	}

	if err := product.AddStock(pending); err != nil {
		return nil, err
	}
	quantities := map[string]decimal.Decimal{product.Barcode: product.StockQuantity}
	if err := s.productRepo.AdjustStock(ctx, req.TenantID, quantities); err != nil {
		return nil, fmt.Errorf("failed to apply pending quantity: %w", err)
	}

	return product, nil
}
