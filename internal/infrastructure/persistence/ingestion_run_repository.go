package persistence

import (
	"context"
	"errors"

	"github.com/varejo/backend/internal/domain/ingestion"
	"github.com/varejo/backend/internal/domain/shared"
	"github.com/varejo/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormIngestionRunRepository implements RunRepository using GORM
type GormIngestionRunRepository struct {
	db *gorm.DB
}

// NewGormIngestionRunRepository creates a new GormIngestionRunRepository
func NewGormIngestionRunRepository(db *gorm.DB) *GormIngestionRunRepository {
	return &GormIngestionRunRepository{db: db}
}

// Create persists a run record
func (r *GormIngestionRunRepository) Create(ctx context.Context, run *ingestion.Run) error {
	model := models.IngestionRunModelFromDomain(run)
	return r.db.WithContext(ctx).Create(model).Error
}

// Update persists run state changes (status, totals, exception lists)
func (r *GormIngestionRunRepository) Update(ctx context.Context, run *ingestion.Run) error {
	model := models.IngestionRunModelFromDomain(run)
	result := r.db.WithContext(ctx).
		Model(&models.IngestionRunModel{}).
		Where("id = ? AND tenant_id = ?", model.ID, model.TenantID).
		Updates(map[string]interface{}{
			"status":          model.Status,
			"total_rows":      model.TotalRows,
			"valid_rows":      model.ValidRows,
			"invalid_rows":    model.InvalidRows,
			"updated_rows":    model.UpdatedRows,
			"not_found_rows":  model.NotFoundRows,
			"invalid_items":   model.InvalidItems,
			"not_found_items": model.NotFoundItems,
			"started_at":      model.StartedAt,
			"completed_at":    model.CompletedAt,
			"updated_at":      model.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// FindByIDForTenant finds a run by ID within a tenant
func (r *GormIngestionRunRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*ingestion.Run, error) {
	var model models.IngestionRunModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain()
}

// FindAllForTenant lists runs for a tenant, newest first
func (r *GormIngestionRunRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]ingestion.Run, error) {
	var mods []models.IngestionRunModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.IngestionRunModel{}).Where("tenant_id = ?", tenantID),
		filter,
	)

	if err := query.Find(&mods).Error; err != nil {
		return nil, err
	}

	runs := make([]ingestion.Run, len(mods))
	for i := range mods {
		run, err := mods[i].ToDomain()
		if err != nil {
			return nil, err
		}
		runs[i] = *run
	}
	return runs, nil
}

// CountForTenant counts runs for a tenant
func (r *GormIngestionRunRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.IngestionRunModel{}).
		Where("tenant_id = ?", tenantID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormIngestionRunRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("source ILIKE ?", searchPattern)
	}

	sortField := ValidateSortField(filter.OrderBy, IngestionRunSortFields, "created_at")
	sortOrder := ValidateSortOrder(filter.OrderDir)
	query = query.Order(sortField + " " + sortOrder)

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	return query
}
