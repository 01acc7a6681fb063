package ingestion

import (
	"context"

	"github.com/varejo/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// RunRepository defines the interface for ingestion run persistence
type RunRepository interface {
	// Create persists a run record
	Create(ctx context.Context, run *Run) error

	// Update persists run state changes (status, totals, exception lists)
	Update(ctx context.Context, run *Run) error

	// FindByIDForTenant finds a run by ID within a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Run, error)

	// FindAllForTenant lists runs for a tenant, newest first
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Run, error)

	// CountForTenant counts runs for a tenant
	CountForTenant(ctx context.Context, tenantID uuid.UUID) (int64, error)
}
