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

// GormReceivingDocumentRepository implements ReceivingDocumentRepository
// using GORM
type GormReceivingDocumentRepository struct {
	db *gorm.DB
}

// NewGormReceivingDocumentRepository creates a new GormReceivingDocumentRepository
func NewGormReceivingDocumentRepository(db *gorm.DB) *GormReceivingDocumentRepository {
	return &GormReceivingDocumentRepository{db: db}
}

// Create persists the document header and all its lines in one transaction.
// The connection runs with SkipDefaultTransaction, so the wrap is explicit.
func (r *GormReceivingDocumentRepository) Create(ctx context.Context, doc *ingestion.ReceivingDocument) error {
	model := models.ReceivingDocumentModelFromDomain(doc)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(model).Error
	})
}

// FindByIDForTenant loads a document with its lines
func (r *GormReceivingDocumentRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*ingestion.ReceivingDocument, error) {
	var model models.ReceivingDocumentModel
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForTenant lists documents for a tenant, newest first
func (r *GormReceivingDocumentRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]ingestion.ReceivingDocument, error) {
	var mods []models.ReceivingDocumentModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.ReceivingDocumentModel{}).Where("tenant_id = ?", tenantID),
		filter,
	).Preload("Lines")

	if err := query.Find(&mods).Error; err != nil {
		return nil, err
	}

	docs := make([]ingestion.ReceivingDocument, len(mods))
	for i := range mods {
		docs[i] = *mods[i].ToDomain()
	}
	return docs, nil
}

// CountForTenant counts documents for a tenant
func (r *GormReceivingDocumentRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.ReceivingDocumentModel{}).
		Where("tenant_id = ?", tenantID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormReceivingDocumentRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("supplier ILIKE ? OR access_key ILIKE ?", searchPattern, searchPattern)
	}

	sortField := ValidateSortField(filter.OrderBy, ReceivingDocumentSortFields, "created_at")
	sortOrder := ValidateSortOrder(filter.OrderDir)
	query = query.Order(sortField + " " + sortOrder)

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	return query
}
