package ingestionapp

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/google/uuid"

	"github.com/varejo/backend/internal/domain/ingestion"
	"github.com/varejo/backend/internal/domain/shared"
)

// RunHistoryService retrieves past ingestion runs and renders their
// correction artifacts
type RunHistoryService struct {
	runRepo ingestion.RunRepository
}

// NewRunHistoryService creates a new RunHistoryService
func NewRunHistoryService(runRepo ingestion.RunRepository) *RunHistoryService {
	return &RunHistoryService{runRepo: runRepo}
}

// GetRun retrieves one run by ID within a tenant
func (s *RunHistoryService) GetRun(ctx context.Context, tenantID, runID uuid.UUID) (*ingestion.Run, error) {
	return s.runRepo.FindByIDForTenant(ctx, tenantID, runID)
}

// ListRuns retrieves runs for a tenant, newest first, with the total count
// for pagination
func (s *RunHistoryService) ListRuns(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]ingestion.Run, int64, error) {
	runs, err := s.runRepo.FindAllForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.runRepo.CountForTenant(ctx, tenantID)
	if err != nil {
		return nil, 0, err
	}
	return runs, total, nil
}

// WriteInvalidItemsCSV renders a run's rejected rows as CSV, in input line
// order, for offline correction and resubmission
func (s *RunHistoryService) WriteInvalidItemsCSV(ctx context.Context, w io.Writer, tenantID, runID uuid.UUID) error {
	run, err := s.runRepo.FindByIDForTenant(ctx, tenantID, runID)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"line", "identifier", "raw_quantity", "error"}); err != nil {
		return err
	}
	for _, item := range run.InvalidItems {
		record := []string{strconv.Itoa(item.Line), item.RawBarcode, item.RawQuantity, item.Reason}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to write invalid items export: %w", err)
	}
	return nil
}

// WriteNotFoundItemsCSV renders a run's unmatched identifiers as CSV, in
// input line order, ready to feed the registrar
func (s *RunHistoryService) WriteNotFoundItemsCSV(ctx context.Context, w io.Writer, tenantID, runID uuid.UUID) error {
	run, err := s.runRepo.FindByIDForTenant(ctx, tenantID, runID)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"identifier", "quantity"}); err != nil {
		return err
	}
	for _, item := range run.NotFoundItems {
		if err := cw.Write([]string{item.Barcode, item.Quantity}); err != nil {
			return err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to write not-found items export: %w", err)
	}
	return nil
}
