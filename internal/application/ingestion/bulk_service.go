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
	"github.com/varejo/backend/internal/infrastructure/tabular"
)

// BulkIngestRequest carries one tabular stock payload
type BulkIngestRequest struct {
	TenantID   uuid.UUID
	Payload    []byte
	Adjustment ingestion.AdjustmentMode
	// Source labels the run for the audit trail (file name or channel)
	Source string
	// Delimiter, when non-zero, skips delimiter detection
	Delimiter rune
}

// BulkIngestResult is the report of one bulk run
type BulkIngestResult struct {
	Run *ingestion.Run
	// Positional is true when no recognizable header was found and the
	// payload shape was guessed as column 0 = identifier, column 1 = quantity
	Positional bool
}

// BulkIngestionService runs the full bulk pipeline: parse, normalize,
// resolve against the catalog in one lookup, mutate stock in one write,
// and persist the run report.
type BulkIngestionService struct {
	productRepo catalog.ProductRepository
	runRepo     ingestion.RunRepository
	logger      *zap.Logger
}

// NewBulkIngestionService creates a new BulkIngestionService
func NewBulkIngestionService(
	productRepo catalog.ProductRepository,
	runRepo ingestion.RunRepository,
	logger *zap.Logger,
) *BulkIngestionService {
	return &BulkIngestionService{
		productRepo: productRepo,
		runRepo:     runRepo,
		logger:      logger,
	}
}

// Ingest processes one bulk payload. Row-level problems never abort the
// run; they are recorded on the run report. Only a payload with zero
// usable rows, or an infrastructure failure, returns an error.
func (s *BulkIngestionService) Ingest(ctx context.Context, req BulkIngestRequest) (*BulkIngestResult, error) {
	run, err := ingestion.NewRun(req.TenantID, ingestion.RunModeBulk, req.Adjustment, req.Source)
	if err != nil {
		return nil, err
	}
	if err := s.runRepo.Create(ctx, run); err != nil {
		return nil, fmt.Errorf("failed to create ingestion run: %w", err)
	}

	var opts []tabular.Option
	if req.Delimiter != 0 {
		opts = append(opts, tabular.WithDelimiter(req.Delimiter))
	}
	table, err := tabular.NewParser(opts...).Parse(req.Payload)
	if err != nil {
		return nil, s.failRun(ctx, run, err)
	}

	if err := run.Start(len(table.Rows)); err != nil {
		return nil, err
	}

	items := s.normalizeRows(run, table)
	if !run.HasValidRows() {
		return nil, s.failRun(ctx, run,
			shared.NewDomainError("NO_VALID_ROWS", "Payload contains no usable rows"))
	}

	products, err := s.productRepo.FindByBarcodes(ctx, req.TenantID, ingestion.Barcodes(items))
	if err != nil {
		return nil, s.failRun(ctx, run, fmt.Errorf("catalog lookup failed: %w", err))
	}

	resolutions := ingestion.Resolve(items, products)
	quantities := s.computeMutations(run, resolutions, run.Adjustment)

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

	s.logger.Info("bulk ingestion completed",
		zap.String("run_id", run.ID.String()),
		zap.String("tenant_id", req.TenantID.String()),
		zap.String("adjustment", string(run.Adjustment)),
		zap.Int("total_rows", run.TotalRows),
		zap.Int("updated_rows", run.UpdatedRows),
		zap.Int("invalid_rows", run.InvalidRows),
		zap.Int("not_found_rows", run.NotFoundRows))

	return &BulkIngestResult{Run: run, Positional: table.Columns.Positional}, nil
}

// normalizeRows walks the parsed rows in order, recording malformed ones on
// the run and returning the well-formed items
func (s *BulkIngestionService) normalizeRows(run *ingestion.Run, table *tabular.Table) []ingestion.NormalizedItem {
	items := make([]ingestion.NormalizedItem, 0, len(table.Rows))
	for _, row := range table.Rows {
		rawBarcode := strings.TrimSpace(row.Get(table.Columns.Barcode))
		rawQuantity := strings.TrimSpace(row.Get(table.Columns.Quantity))

		barcode, err := catalog.NormalizeBarcode(rawBarcode)
		if err != nil {
			run.RecordInvalid(ingestion.InvalidItem{
				Line:        row.LineNumber,
				RawBarcode:  rawBarcode,
				RawQuantity: rawQuantity,
				Reason:      err.Error(),
			})
			continue
		}

		// Bulk payloads carry stock counts: whole units, floored at zero.
		quantity, err := ingestion.ParseWholeQuantity(rawQuantity)
		if err != nil {
			run.RecordInvalid(ingestion.InvalidItem{
				Line:        row.LineNumber,
				RawBarcode:  rawBarcode,
				RawQuantity: rawQuantity,
				Reason:      err.Error(),
			})
			continue
		}

		items = append(items, ingestion.NormalizedItem{
			Line:        row.LineNumber,
			Barcode:     barcode,
			RawBarcode:  rawBarcode,
			RawQuantity: rawQuantity,
			Quantity:    quantity,
			Source:      ingestion.SourceFormatTabular,
		})
	}
	return items
}

// computeMutations derives the final stock value per barcode from the
// products fetched at run start. Values are computed against that snapshot,
// so within one run a repeated barcode is last-write-wins rather than
// cumulative. Unresolved items go to the run's not-found list.
func (s *BulkIngestionService) computeMutations(
	run *ingestion.Run,
	resolutions []ingestion.Resolution,
	adjustment ingestion.AdjustmentMode,
) map[string]decimal.Decimal {
	quantities := make(map[string]decimal.Decimal)
	for i := range resolutions {
		res := &resolutions[i]
		if res.Status != ingestion.StatusResolved {
			run.RecordNotFound(ingestion.NotFoundItem{
				Line:     res.Item.Line,
				Barcode:  res.Item.Barcode,
				Quantity: res.Item.Quantity.String(),
			})
			continue
		}

		current := res.Product.StockQuantity
		var next decimal.Decimal
		switch adjustment {
		case ingestion.AdjustmentAdd:
			next = current.Add(res.Item.Quantity)
		case ingestion.AdjustmentSubtract:
			next = current.Sub(res.Item.Quantity)
			if next.IsNegative() {
				next = decimal.Zero
			}
		default:
			next = res.Item.Quantity
		}
		quantities[res.Item.Barcode] = next
		run.RecordUpdated()
	}
	return quantities
}

// failRun marks the run failed and persists it before surfacing the error.
// Failed runs stay on record so the operator can see what was submitted.
func (s *BulkIngestionService) failRun(ctx context.Context, run *ingestion.Run, cause error) error {
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
