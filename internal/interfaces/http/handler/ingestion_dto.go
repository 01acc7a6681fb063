package handler

import (
	"time"

	"github.com/varejo/backend/internal/domain/ingestion"
	"github.com/google/uuid"
)

// InvalidItemResponse is one rejected row on a run report
type InvalidItemResponse struct {
	Line        int    `json:"line"`
	Barcode     string `json:"barcode"`
	RawQuantity string `json:"raw_quantity"`
	Reason      string `json:"reason"`
}

// NotFoundItemResponse is one well-formed row with no catalog match
type NotFoundItemResponse struct {
	Line     int    `json:"line"`
	Barcode  string `json:"barcode"`
	Quantity string `json:"quantity"`
}

// RunResponse is the API representation of an ingestion run
type RunResponse struct {
	ID            uuid.UUID              `json:"id"`
	Mode          string                 `json:"mode"`
	Adjustment    string                 `json:"adjustment"`
	Source        string                 `json:"source,omitempty"`
	Status        string                 `json:"status"`
	TotalRows     int                    `json:"total_rows"`
	ValidRows     int                    `json:"valid_rows"`
	InvalidRows   int                    `json:"invalid_rows"`
	UpdatedRows   int                    `json:"updated_rows"`
	NotFoundRows  int                    `json:"not_found_rows"`
	InvalidItems  []InvalidItemResponse  `json:"invalid_items"`
	NotFoundItems []NotFoundItemResponse `json:"not_found_items"`
	StartedAt     *time.Time             `json:"started_at,omitempty"`
	CompletedAt   *time.Time             `json:"completed_at,omitempty"`
	CreatedAt     time.Time              `json:"created_at"`
}

// RunSummaryResponse is the list representation of a run, without the
// per-row exception lists
type RunSummaryResponse struct {
	ID           uuid.UUID  `json:"id"`
	Mode         string     `json:"mode"`
	Adjustment   string     `json:"adjustment"`
	Source       string     `json:"source,omitempty"`
	Status       string     `json:"status"`
	TotalRows    int        `json:"total_rows"`
	ValidRows    int        `json:"valid_rows"`
	InvalidRows  int        `json:"invalid_rows"`
	UpdatedRows  int        `json:"updated_rows"`
	NotFoundRows int        `json:"not_found_rows"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// BulkIngestResponse is the report returned by the bulk endpoint
type BulkIngestResponse struct {
	Run        RunResponse `json:"run"`
	Positional bool        `json:"positional"`
}

// DocumentLineResponse is one received line on a document
type DocumentLineResponse struct {
	Barcode     string     `json:"barcode"`
	Description string     `json:"description,omitempty"`
	Quantity    string     `json:"quantity"`
	UnitCost    *string    `json:"unit_cost,omitempty"`
	ProductID   *uuid.UUID `json:"product_id,omitempty"`
}

// ReceivingDocumentResponse is the API representation of a receiving record
type ReceivingDocumentResponse struct {
	ID        uuid.UUID              `json:"id"`
	Supplier  string                 `json:"supplier"`
	AccessKey string                 `json:"access_key,omitempty"`
	Note      string                 `json:"note,omitempty"`
	Lines     []DocumentLineResponse `json:"lines"`
	CreatedAt time.Time              `json:"created_at"`
}

// DocumentSummaryResponse is the list representation of a receiving record,
// without the per-line detail
type DocumentSummaryResponse struct {
	ID            uuid.UUID `json:"id"`
	Supplier      string    `json:"supplier"`
	AccessKey     string    `json:"access_key,omitempty"`
	LineCount     int       `json:"line_count"`
	TotalQuantity string    `json:"total_quantity"`
	CreatedAt     time.Time `json:"created_at"`
}

// DocumentIngestResponse is the report returned by the document endpoint
type DocumentIngestResponse struct {
	Run      RunResponse               `json:"run"`
	Document ReceivingDocumentResponse `json:"document"`
}

func toRunResponse(run *ingestion.Run) RunResponse {
	invalid := make([]InvalidItemResponse, len(run.InvalidItems))
	for i, item := range run.InvalidItems {
		invalid[i] = InvalidItemResponse{
			Line:        item.Line,
			Barcode:     item.RawBarcode,
			RawQuantity: item.RawQuantity,
			Reason:      item.Reason,
		}
	}

	notFound := make([]NotFoundItemResponse, len(run.NotFoundItems))
	for i, item := range run.NotFoundItems {
		notFound[i] = NotFoundItemResponse{
			Line:     item.Line,
			Barcode:  item.Barcode,
			Quantity: item.Quantity,
		}
	}

	return RunResponse{
		ID:            run.ID,
		Mode:          string(run.Mode),
		Adjustment:    string(run.Adjustment),
		Source:        run.Source,
		Status:        string(run.Status),
		TotalRows:     run.TotalRows,
		ValidRows:     run.ValidRows,
		InvalidRows:   run.InvalidRows,
		UpdatedRows:   run.UpdatedRows,
		NotFoundRows:  run.NotFoundRows,
		InvalidItems:  invalid,
		NotFoundItems: notFound,
		StartedAt:     run.StartedAt,
		CompletedAt:   run.CompletedAt,
		CreatedAt:     run.CreatedAt,
	}
}

func toRunSummaryResponse(run *ingestion.Run) RunSummaryResponse {
	return RunSummaryResponse{
		ID:           run.ID,
		Mode:         string(run.Mode),
		Adjustment:   string(run.Adjustment),
		Source:       run.Source,
		Status:       string(run.Status),
		TotalRows:    run.TotalRows,
		ValidRows:    run.ValidRows,
		InvalidRows:  run.InvalidRows,
		UpdatedRows:  run.UpdatedRows,
		NotFoundRows: run.NotFoundRows,
		CompletedAt:  run.CompletedAt,
		CreatedAt:    run.CreatedAt,
	}
}

func toDocumentSummaryResponse(doc *ingestion.ReceivingDocument) DocumentSummaryResponse {
	return DocumentSummaryResponse{
		ID:            doc.ID,
		Supplier:      doc.Supplier,
		AccessKey:     doc.AccessKey,
		LineCount:     len(doc.Lines),
		TotalQuantity: doc.TotalQuantity().String(),
		CreatedAt:     doc.CreatedAt,
	}
}

func toDocumentResponse(doc *ingestion.ReceivingDocument) ReceivingDocumentResponse {
	lines := make([]DocumentLineResponse, len(doc.Lines))
	for i, line := range doc.Lines {
		lr := DocumentLineResponse{
			Barcode:     line.Barcode,
			Description: line.Description,
			Quantity:    line.Quantity.String(),
			ProductID:   line.ProductID,
		}
		if line.UnitCost != nil {
			cost := line.UnitCost.String()
			lr.UnitCost = &cost
		}
		lines[i] = lr
	}

	return ReceivingDocumentResponse{
		ID:        doc.ID,
		Supplier:  doc.Supplier,
		AccessKey: doc.AccessKey,
		Note:      doc.Note,
		Lines:     lines,
		CreatedAt: doc.CreatedAt,
	}
}
