package ingestionapp

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/varejo/backend/internal/domain/catalog"
	"github.com/varejo/backend/internal/domain/ingestion"
	"github.com/varejo/backend/internal/domain/shared"
	"github.com/varejo/backend/internal/infrastructure/fiscalxml"
)

// DocumentIngestRequest carries one receiving document payload
type DocumentIngestRequest struct {
	TenantID uuid.UUID
	Payload  []byte
	// Supplier overrides the issuer name from the document when set
	Supplier string
	// Note is free-form operator text attached to the receiving record
	Note string
	// Source labels the run for the audit trail
	Source string
}

// DocumentIngestResult is the report of one document run
type DocumentIngestResult struct {
	Run      *ingestion.Run
	Document *ingestion.ReceivingDocument
}

// DocumentIngestionService receives supplier trade documents: extracts the
// line items, resolves them against the catalog, increments stock for the
// matches, and persists the receiving record with every extracted line.
type DocumentIngestionService struct {
	productRepo  catalog.ProductRepository
	runRepo      ingestion.RunRepository
	documentRepo ingestion.ReceivingDocumentRepository
	logger       *zap.Logger
}

// NewDocumentIngestionService creates a new DocumentIngestionService
func NewDocumentIngestionService(
	productRepo catalog.ProductRepository,
	runRepo ingestion.RunRepository,
	documentRepo ingestion.ReceivingDocumentRepository,
	logger *zap.Logger,
) *DocumentIngestionService {
	return &DocumentIngestionService{
		productRepo:  productRepo,
		runRepo:      runRepo,
		documentRepo: documentRepo,
		logger:       logger,
	}
}

// Ingest processes one trade document. Receiving always increments stock;
// there is no mode choice on this path. The receiving record is persisted
// with all extracted lines, matched or not, so nothing the supplier shipped
// silently disappears.
func (s *DocumentIngestionService) Ingest(ctx context.Context, req DocumentIngestRequest) (*DocumentIngestResult, error) {
	run, err := ingestion.NewRun(req.TenantID, ingestion.RunModeDocument, ingestion.AdjustmentAdd, req.Source)
	if err != nil {
		return nil, err
	}
	if err := s.runRepo.Create(ctx, run); err != nil {
		return nil, fmt.Errorf("failed to create ingestion run: %w", err)
	}

	extracted, err := fiscalxml.Extract(req.Payload)
	if err != nil {
		return nil, s.failRun(ctx, run, err)
	}

	if err := run.Start(len(extracted.Items)); err != nil {
		return nil, err
	}

	items := s.normalizeItems(run, extracted.Items)
	if !run.HasValidRows() {
		return nil, s.failRun(ctx, run,
			shared.NewDomainError("NO_VALID_ROWS", "Document contains no usable line items"))
	}

	products, err := s.productRepo.FindByBarcodes(ctx, req.TenantID, ingestion.Barcodes(items))
	if err != nil {
		return nil, s.failRun(ctx, run, fmt.Errorf("catalog lookup failed: %w", err))
	}
	resolutions := ingestion.Resolve(items, products)

	supplier := strings.TrimSpace(req.Supplier)
	if supplier == "" {
		supplier = extracted.Issuer
	}
	document, err := ingestion.NewReceivingDocument(req.TenantID, supplier, extracted.AccessKey, req.Note)
	if err != nil {
		return nil, s.failRun(ctx, run, err)
	}

	// Every line unconditionally increments, so repeated barcodes are
	// summed before the single stock write.
	additions := make(map[string]decimal.Decimal)
	for i := range resolutions {
		res := &resolutions[i]

		var productID *uuid.UUID
		if res.Status == ingestion.StatusResolved {
			id := res.Product.ID
			productID = &id
			additions[res.Item.Barcode] = additions[res.Item.Barcode].Add(res.Item.Quantity)
			run.RecordUpdated()
		} else {
			run.RecordNotFound(ingestion.NotFoundItem{
				Line:     res.Item.Line,
				Barcode:  res.Item.Barcode,
				Quantity: res.Item.Quantity.String(),
			})
		}

		if err := document.AddLine(res.Item.Barcode, res.Item.Description, res.Item.Quantity, res.Item.UnitCost, productID); err != nil {
			return nil, s.failRun(ctx, run, err)
		}
	}

	// Persist the receiving record before mutating stock: a failed stock
	// write must not lose the document lines.
	if err := s.documentRepo.Create(ctx, document); err != nil {
		return nil, s.failRun(ctx, run, fmt.Errorf("failed to persist receiving document: %w", err))
	}

	quantities := make(map[string]decimal.Decimal, len(additions))
	for barcode, added := range additions {
		quantities[barcode] = products[barcode].StockQuantity.Add(added)
	}
	if len(quantities) > 0 {
		if err := s.productRepo.AdjustStock(ctx, req.TenantID, quantities); err != nil {
			return nil, s.failRun(ctx, run, fmt.Errorf("stock write failed: %w", err))
		}
	}

	if err := run.Complete(); err != nil {
		return nil, err
	}
	if err := s.runRepo.Update(ctx, run); err != nil {
		return nil, fmt.Errorf("failed to persist ingestion run: %w", err)
	}

	s.logger.Info("document ingestion completed",
		zap.String("run_id", run.ID.String()),
		zap.String("tenant_id", req.TenantID.String()),
		zap.String("supplier", supplier),
		zap.Int("total_lines", run.TotalRows),
		zap.Int("updated_lines", run.UpdatedRows),
		zap.Int("not_found_lines", run.NotFoundRows))

	return &DocumentIngestResult{Run: run, Document: document}, nil
}

// GetDocument retrieves one receiving record with its lines
func (s *DocumentIngestionService) GetDocument(ctx context.Context, tenantID, documentID uuid.UUID) (*ingestion.ReceivingDocument, error) {
	return s.documentRepo.FindByIDForTenant(ctx, tenantID, documentID)
}

// ListDocuments retrieves receiving records for a tenant, newest first, with
// the total count for pagination
func (s *DocumentIngestionService) ListDocuments(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]ingestion.ReceivingDocument, int64, error) {
	documents, err := s.documentRepo.FindAllForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.documentRepo.CountForTenant(ctx, tenantID)
	if err != nil {
		return nil, 0, err
	}
	return documents, total, nil
}

// normalizeItems converts extracted document lines into normalized items.
// Document quantities keep their fractional part; a shipment of 2.5 kg must
// not round to 3.
func (s *DocumentIngestionService) normalizeItems(run *ingestion.Run, lines []fiscalxml.LineItem) []ingestion.NormalizedItem {
	items := make([]ingestion.NormalizedItem, 0, len(lines))
	for _, line := range lines {
		barcode, err := catalog.NormalizeBarcode(line.Code)
		if err != nil {
			run.RecordInvalid(ingestion.InvalidItem{
				Line:        line.Number,
				RawBarcode:  line.Code,
				RawQuantity: line.Quantity,
				Reason:      err.Error(),
			})
			continue
		}

		quantity, err := ingestion.ParseQuantity(line.Quantity)
		if err == nil && !quantity.IsPositive() {
			err = shared.NewDomainError("NON_POSITIVE_QUANTITY", "Received quantity must be positive")
		}
		if err != nil {
			run.RecordInvalid(ingestion.InvalidItem{
				Line:        line.Number,
				RawBarcode:  line.Code,
				RawQuantity: line.Quantity,
				Reason:      err.Error(),
			})
			continue
		}

		var unitCost *decimal.Decimal
		if cost, err := ingestion.ParseQuantity(line.UnitCost); err == nil {
			unitCost = &cost
		}

		items = append(items, ingestion.NormalizedItem{
			Line:        line.Number,
			Barcode:     barcode,
			RawBarcode:  line.Code,
			RawQuantity: line.Quantity,
			Quantity:    quantity,
			UnitCost:    unitCost,
			Description: line.Description,
			Source:      ingestion.SourceFormatDocument,
		})
	}
	return items
}

func (s *DocumentIngestionService) failRun(ctx context.Context, run *ingestion.Run, cause error) error {
	if err := run.Fail(); err != nil {
		s.logger.Warn("could not mark run failed",
			zap.String("run_id", run.ID.String()), zap.Error(err))
	}
	if err := s.runRepo.Update(ctx, run); err != nil {
		s.logger.Error("could not persist failed run",
			zap.String("run_id", run.ID.String()), zap.Error(err))
	}
	return cause
}
