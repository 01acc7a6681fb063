package ingestion

import (
	"context"
	"strings"
	"time"

	"github.com/varejo/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReceivingDocument is the append-only record of one received delivery.
// It is created once with its lines and never mutated afterwards.
type ReceivingDocument struct {
	shared.TenantAggregateRoot
	Supplier  string
	AccessKey string
	Note      string
	Lines     []DocumentLine
}

// DocumentLine is one received line item. Every line is persisted regardless
// of whether its stock mutation succeeded, preserving a complete receiving
// trail.
type DocumentLine struct {
	shared.BaseEntity
	DocumentID  uuid.UUID
	Barcode     string
	Description string
	Quantity    decimal.Decimal
	UnitCost    *decimal.Decimal
	ProductID   *uuid.UUID
}

// NewReceivingDocument creates a receiving document header
func NewReceivingDocument(tenantID uuid.UUID, supplier, accessKey, note string) (*ReceivingDocument, error) {
	if len(supplier) > 200 {
		return nil, shared.NewDomainError("INVALID_SUPPLIER", "Supplier name cannot exceed 200 characters")
	}

	return &ReceivingDocument{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Supplier:            strings.TrimSpace(supplier),
		AccessKey:           strings.TrimSpace(accessKey),
		Note:                strings.TrimSpace(note),
		Lines:               make([]DocumentLine, 0),
	}, nil
}

// AddLine appends a line item. Lines may only be added before the document
// is persisted; the record is append-only.
func (d *ReceivingDocument) AddLine(barcode, description string, quantity decimal.Decimal, unitCost *decimal.Decimal, productID *uuid.UUID) error {
	if barcode == "" {
		return shared.NewDomainError("INVALID_LINE", "Line barcode cannot be empty")
	}
	if !quantity.IsPositive() {
		return shared.NewDomainError("INVALID_LINE", "Line quantity must be positive")
	}

	line := DocumentLine{
		BaseEntity:  shared.NewBaseEntity(),
		DocumentID:  d.ID,
		Barcode:     barcode,
		Description: strings.TrimSpace(description),
		Quantity:    quantity,
		UnitCost:    unitCost,
		ProductID:   productID,
	}
	d.Lines = append(d.Lines, line)
	d.UpdatedAt = time.Now()

	return nil
}

// TotalQuantity returns the sum of line quantities
func (d *ReceivingDocument) TotalQuantity() decimal.Decimal {
	total := decimal.Zero
	for _, line := range d.Lines {
		total = total.Add(line.Quantity)
	}
	return total
}

// ReceivingDocumentRepository defines the interface for receiving document
// persistence. Documents are append-only: there is no update or delete.
type ReceivingDocumentRepository interface {
	// Create persists the document header and all its lines
	Create(ctx context.Context, doc *ReceivingDocument) error

	// FindByIDForTenant loads a document with its lines
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*ReceivingDocument, error)

	// FindAllForTenant lists documents for a tenant, newest first
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]ReceivingDocument, error)

	// CountForTenant counts documents for a tenant
	CountForTenant(ctx context.Context, tenantID uuid.UUID) (int64, error)
}
