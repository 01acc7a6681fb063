package ingestionapp

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/varejo/backend/internal/domain/catalog"
	"github.com/varejo/backend/internal/domain/ingestion"
	"github.com/varejo/backend/internal/domain/shared"
)

// MockProductRepository is a mock implementation of catalog.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindByBarcode(ctx context.Context, tenantID uuid.UUID, barcode string) (*catalog.Product, error) {
	args := m.Called(ctx, tenantID, barcode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindByBarcodes(ctx context.Context, tenantID uuid.UUID, barcodes []string) (map[string]*catalog.Product, error) {
	args := m.Called(ctx, tenantID, barcodes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]catalog.Product, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) UpsertByBarcode(ctx context.Context, product *catalog.Product) (*catalog.Product, error) {
	args := m.Called(ctx, product)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) AdjustStock(ctx context.Context, tenantID uuid.UUID, quantities map[string]decimal.Decimal) error {
	args := m.Called(ctx, tenantID, quantities)
	return args.Error(0)
}

func (m *MockProductRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProductRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

// MockRunRepository is a mock implementation of ingestion.RunRepository
type MockRunRepository struct {
	mock.Mock
}

func (m *MockRunRepository) Create(ctx context.Context, run *ingestion.Run) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

func (m *MockRunRepository) Update(ctx context.Context, run *ingestion.Run) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

func (m *MockRunRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*ingestion.Run, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ingestion.Run), args.Error(1)
}

func (m *MockRunRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]ingestion.Run, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]ingestion.Run), args.Error(1)
}

func (m *MockRunRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).(int64), args.Error(1)
}

// MockReceivingDocumentRepository is a mock implementation of
// ingestion.ReceivingDocumentRepository
type MockReceivingDocumentRepository struct {
	mock.Mock
}

func (m *MockReceivingDocumentRepository) Create(ctx context.Context, doc *ingestion.ReceivingDocument) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

func (m *MockReceivingDocumentRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*ingestion.ReceivingDocument, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ingestion.ReceivingDocument), args.Error(1)
}

func (m *MockReceivingDocumentRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]ingestion.ReceivingDocument, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]ingestion.ReceivingDocument), args.Error(1)
}

func (m *MockReceivingDocumentRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).(int64), args.Error(1)
}
