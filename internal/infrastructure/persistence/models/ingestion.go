package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/varejo/backend/internal/domain/ingestion"
)

// IngestionRunModel is the persistence model for the ingestion Run aggregate.
// The per-row exception lists flatten to jsonb columns.
type IngestionRunModel struct {
	TenantAggregateModel
	Mode          ingestion.RunMode        `gorm:"type:varchar(20);not null"`
	Adjustment    ingestion.AdjustmentMode `gorm:"type:varchar(20);not null"`
	Source        string                   `gorm:"type:varchar(255)"`
	Status        ingestion.RunStatus      `gorm:"type:varchar(20);not null;default:'pending'"`
	TotalRows     int                      `gorm:"not null;default:0"`
	ValidRows     int                      `gorm:"not null;default:0"`
	InvalidRows   int                      `gorm:"not null;default:0"`
	UpdatedRows   int                      `gorm:"not null;default:0"`
	NotFoundRows  int                      `gorm:"not null;default:0"`
	InvalidItems  string                   `gorm:"type:jsonb;default:'[]'"`
	NotFoundItems string                   `gorm:"type:jsonb;default:'[]'"`
	StartedAt     *time.Time               `gorm:"type:timestamptz"`
	CompletedAt   *time.Time               `gorm:"type:timestamptz"`
}

// TableName returns the table name for GORM
func (IngestionRunModel) TableName() string {
	return "ingestion_runs"
}

// ToDomain converts the persistence model to a domain Run. A jsonb exception
// column that fails to parse is reported, not read back as an empty list: the
// lists are the audit record.
func (m *IngestionRunModel) ToDomain() (*ingestion.Run, error) {
	run := &ingestion.Run{
		Mode:         m.Mode,
		Adjustment:   m.Adjustment,
		Source:       m.Source,
		Status:       m.Status,
		TotalRows:    m.TotalRows,
		ValidRows:    m.ValidRows,
		InvalidRows:  m.InvalidRows,
		UpdatedRows:  m.UpdatedRows,
		NotFoundRows: m.NotFoundRows,
		StartedAt:    m.StartedAt,
		CompletedAt:  m.CompletedAt,
	}
	m.PopulateTenantAggregateRoot(&run.TenantAggregateRoot)

	if m.InvalidItems != "" {
		if err := run.SetInvalidItemsFromJSON(m.InvalidItems); err != nil {
			return nil, fmt.Errorf("failed to parse invalid items for run %s: %w", m.ID, err)
		}
	}
	if m.NotFoundItems != "" {
		if err := run.SetNotFoundItemsFromJSON(m.NotFoundItems); err != nil {
			return nil, fmt.Errorf("failed to parse not-found items for run %s: %w", m.ID, err)
		}
	}

	return run, nil
}

// FromDomain populates the persistence model from a domain Run
func (m *IngestionRunModel) FromDomain(r *ingestion.Run) {
	m.FromDomainTenantAggregateRoot(r.TenantAggregateRoot)
	m.Mode = r.Mode
	m.Adjustment = r.Adjustment
	m.Source = r.Source
	m.Status = r.Status
	m.TotalRows = r.TotalRows
	m.ValidRows = r.ValidRows
	m.InvalidRows = r.InvalidRows
	m.UpdatedRows = r.UpdatedRows
	m.NotFoundRows = r.NotFoundRows
	m.StartedAt = r.StartedAt
	m.CompletedAt = r.CompletedAt

	if itemsJSON, err := r.InvalidItemsJSON(); err == nil {
		m.InvalidItems = itemsJSON
	} else {
		m.InvalidItems = "[]"
	}
	if itemsJSON, err := r.NotFoundItemsJSON(); err == nil {
		m.NotFoundItems = itemsJSON
	} else {
		m.NotFoundItems = "[]"
	}
}

// IngestionRunModelFromDomain creates a persistence model from a domain Run
func IngestionRunModelFromDomain(r *ingestion.Run) *IngestionRunModel {
	m := &IngestionRunModel{}
	m.FromDomain(r)
	return m
}

// ReceivingDocumentModel is the persistence model for the ReceivingDocument
// aggregate header
type ReceivingDocumentModel struct {
	TenantAggregateModel
	Supplier  string              `gorm:"type:varchar(255);not null"`
	AccessKey string              `gorm:"type:varchar(64);index"`
	Note      string              `gorm:"type:text"`
	Lines     []DocumentLineModel `gorm:"foreignKey:DocumentID;references:ID"`
}

// TableName returns the table name for GORM
func (ReceivingDocumentModel) TableName() string {
	return "receiving_documents"
}

// DocumentLineModel is the persistence model for one received line
type DocumentLineModel struct {
	BaseModel
	DocumentID  uuid.UUID        `gorm:"type:uuid;not null;index"`
	Barcode     string           `gorm:"type:varchar(50);not null;index"`
	Description string           `gorm:"type:varchar(255)"`
	Quantity    decimal.Decimal  `gorm:"type:decimal(18,4);not null"`
	UnitCost    *decimal.Decimal `gorm:"type:decimal(18,4)"`
	ProductID   *uuid.UUID       `gorm:"type:uuid;index"`
}

// TableName returns the table name for GORM
func (DocumentLineModel) TableName() string {
	return "receiving_document_lines"
}

// ToDomain converts the persistence model to a domain ReceivingDocument
func (m *ReceivingDocumentModel) ToDomain() *ingestion.ReceivingDocument {
	doc := &ingestion.ReceivingDocument{
		Supplier:  m.Supplier,
		AccessKey: m.AccessKey,
		Note:      m.Note,
	}
	m.PopulateTenantAggregateRoot(&doc.TenantAggregateRoot)

	doc.Lines = make([]ingestion.DocumentLine, len(m.Lines))
	for i, line := range m.Lines {
		doc.Lines[i] = ingestion.DocumentLine{
			BaseEntity:  line.ToDomain(),
			DocumentID:  line.DocumentID,
			Barcode:     line.Barcode,
			Description: line.Description,
			Quantity:    line.Quantity,
			UnitCost:    line.UnitCost,
			ProductID:   line.ProductID,
		}
	}

	return doc
}

// FromDomain populates the persistence model from a domain ReceivingDocument
func (m *ReceivingDocumentModel) FromDomain(d *ingestion.ReceivingDocument) {
	m.FromDomainTenantAggregateRoot(d.TenantAggregateRoot)
	m.Supplier = d.Supplier
	m.AccessKey = d.AccessKey
	m.Note = d.Note

	m.Lines = make([]DocumentLineModel, len(d.Lines))
	for i, line := range d.Lines {
		lm := DocumentLineModel{
			DocumentID:  line.DocumentID,
			Barcode:     line.Barcode,
			Description: line.Description,
			Quantity:    line.Quantity,
			UnitCost:    line.UnitCost,
			ProductID:   line.ProductID,
		}
		lm.FromDomainBaseEntity(line.BaseEntity)
		m.Lines[i] = lm
	}
}

// ReceivingDocumentModelFromDomain creates a persistence model from a domain
// ReceivingDocument
func ReceivingDocumentModelFromDomain(d *ingestion.ReceivingDocument) *ReceivingDocumentModel {
	m := &ReceivingDocumentModel{}
	m.FromDomain(d)
	return m
}
