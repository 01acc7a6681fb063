package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"unicode/utf8"

	ingestionapp "github.com/varejo/backend/internal/application/ingestion"
	"github.com/varejo/backend/internal/domain/ingestion"
	"github.com/varejo/backend/internal/domain/shared"
	"github.com/varejo/backend/internal/infrastructure/fiscalxml"
	"github.com/varejo/backend/internal/infrastructure/tabular"
	"github.com/varejo/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// IngestionHandler serves the stock ingestion endpoints: bulk payload
// upload, trade document receiving, and the run history with its CSV
// exception exports.
type IngestionHandler struct {
	BaseHandler
	bulkService     *ingestionapp.BulkIngestionService
	documentService *ingestionapp.DocumentIngestionService
	historyService  *ingestionapp.RunHistoryService
	maxPayloadSize  int64
}

// NewIngestionHandler creates a new IngestionHandler
func NewIngestionHandler(
	bulkService *ingestionapp.BulkIngestionService,
	documentService *ingestionapp.DocumentIngestionService,
	historyService *ingestionapp.RunHistoryService,
	maxPayloadSize int64,
) *IngestionHandler {
	return &IngestionHandler{
		bulkService:     bulkService,
		documentService: documentService,
		historyService:  historyService,
		maxPayloadSize:  maxPayloadSize,
	}
}

// RegisterRoutes registers the ingestion routes
func (h *IngestionHandler) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group("/ingestion")
	{
		group.POST("/bulk", h.IngestBulk)
		group.POST("/documents", h.IngestDocument)
		group.GET("/documents", h.ListDocuments)
		group.GET("/documents/:id", h.GetDocument)
		group.GET("/runs", h.ListRuns)
		group.GET("/runs/:id", h.GetRun)
		group.GET("/runs/:id/invalid-items.csv", h.DownloadInvalidItems)
		group.GET("/runs/:id/not-found-items.csv", h.DownloadNotFoundItems)
	}
}

// IngestBulk processes one tabular stock payload.
// Accepts multipart/form-data with a "file" part plus optional "adjustment"
// (replace, add, subtract - default replace), "delimiter" and "source" fields.
func (h *IngestionHandler) IngestBulk(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	payload, source, ok := h.readPayload(c)
	if !ok {
		return
	}

	adjustment := ingestion.AdjustmentReplace
	if raw := c.PostForm("adjustment"); raw != "" {
		adjustment = ingestion.AdjustmentMode(raw)
		if !adjustment.IsValid() {
			h.BadRequest(c, "Adjustment must be one of: replace, add, subtract")
			return
		}
	}

	var delimiter rune
	if raw := c.PostForm("delimiter"); raw != "" {
		delimiter, _ = utf8.DecodeRuneInString(raw)
	}

	if s := c.PostForm("source"); s != "" {
		source = s
	}

	result, err := h.bulkService.Ingest(c.Request.Context(), ingestionapp.BulkIngestRequest{
		TenantID:   tenantID,
		Payload:    payload,
		Adjustment: adjustment,
		Source:     source,
		Delimiter:  delimiter,
	})
	if err != nil {
		h.handleIngestError(c, err)
		return
	}

	h.Success(c, BulkIngestResponse{
		Run:        toRunResponse(result.Run),
		Positional: result.Positional,
	})
}

// IngestDocument receives one supplier trade document.
// Accepts multipart/form-data with a "file" part plus optional "supplier"
// (overrides the document issuer), "note" and "source" fields.
func (h *IngestionHandler) IngestDocument(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	payload, source, ok := h.readPayload(c)
	if !ok {
		return
	}

	if s := c.PostForm("source"); s != "" {
		source = s
	}

	result, err := h.documentService.Ingest(c.Request.Context(), ingestionapp.DocumentIngestRequest{
		TenantID: tenantID,
		Payload:  payload,
		Supplier: c.PostForm("supplier"),
		Note:     c.PostForm("note"),
		Source:   source,
	})
	if err != nil {
		h.handleIngestError(c, err)
		return
	}

	h.Success(c, DocumentIngestResponse{
		Run:      toRunResponse(result.Run),
		Document: toDocumentResponse(result.Document),
	})
}

// GetDocument returns one receiving record with all its lines
func (h *IngestionHandler) GetDocument(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	documentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid document ID format")
		return
	}

	document, err := h.documentService.GetDocument(c.Request.Context(), tenantID, documentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toDocumentResponse(document))
}

// ListDocuments returns the paginated receiving history, newest first
func (h *IngestionHandler) ListDocuments(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	req.Normalize()

	documents, total, err := h.documentService.ListDocuments(c.Request.Context(), tenantID, shared.Filter{
		Page:     req.Page,
		PageSize: req.PageSize,
		OrderBy:  req.OrderBy,
		OrderDir: req.OrderDir,
		Search:   req.Search,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	summaries := make([]DocumentSummaryResponse, len(documents))
	for i := range documents {
		summaries[i] = toDocumentSummaryResponse(&documents[i])
	}

	h.SuccessWithMeta(c, summaries, total, req.Page, req.PageSize)
}

// GetRun returns one run with its full exception lists
func (h *IngestionHandler) GetRun(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	runID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid run ID format")
		return
	}

	run, err := h.historyService.GetRun(c.Request.Context(), tenantID, runID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toRunResponse(run))
}

// ListRuns returns the paginated run history, newest first
func (h *IngestionHandler) ListRuns(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	req.Normalize()

	runs, total, err := h.historyService.ListRuns(c.Request.Context(), tenantID, shared.Filter{
		Page:     req.Page,
		PageSize: req.PageSize,
		OrderBy:  req.OrderBy,
		OrderDir: req.OrderDir,
		Search:   req.Search,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	summaries := make([]RunSummaryResponse, len(runs))
	for i := range runs {
		summaries[i] = toRunSummaryResponse(&runs[i])
	}

	h.SuccessWithMeta(c, summaries, total, req.Page, req.PageSize)
}

// DownloadInvalidItems streams the run's rejected rows as a CSV file
func (h *IngestionHandler) DownloadInvalidItems(c *gin.Context) {
	h.downloadCSV(c, "invalid-items", h.historyService.WriteInvalidItemsCSV)
}

// DownloadNotFoundItems streams the run's unmatched rows as a CSV file
func (h *IngestionHandler) DownloadNotFoundItems(c *gin.Context) {
	h.downloadCSV(c, "not-found-items", h.historyService.WriteNotFoundItemsCSV)
}

func (h *IngestionHandler) downloadCSV(
	c *gin.Context,
	name string,
	write func(ctx context.Context, w io.Writer, tenantID, runID uuid.UUID) error,
) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	runID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid run ID format")
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="`+name+`-`+runID.String()+`.csv"`)

	if err := write(c.Request.Context(), c.Writer, tenantID, runID); err != nil {
		// Headers may already be written; only clean responses get a JSON body
		if !c.Writer.Written() {
			h.HandleError(c, err)
		}
		return
	}
}

// readPayload pulls the uploaded file from the multipart form. The file
// name doubles as the default run source label.
func (h *IngestionHandler) readPayload(c *gin.Context) ([]byte, string, bool) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		h.BadRequest(c, "file is required")
		return nil, "", false
	}
	defer file.Close()

	if h.maxPayloadSize > 0 && header.Size > h.maxPayloadSize {
		h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodePayloadTooLarge, "Payload exceeds maximum allowed size")
		return nil, "", false
	}

	var reader io.Reader = file
	if h.maxPayloadSize > 0 {
		reader = io.LimitReader(file, h.maxPayloadSize+1)
	}
	payload, err := io.ReadAll(reader)
	if err != nil {
		h.InternalError(c, "Failed to read payload")
		return nil, "", false
	}
	if h.maxPayloadSize > 0 && int64(len(payload)) > h.maxPayloadSize {
		h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodePayloadTooLarge, "Payload exceeds maximum allowed size")
		return nil, "", false
	}

	return payload, header.Filename, true
}

// handleIngestError maps parse and extraction failures, which are plain
// errors rather than domain errors, onto client-facing statuses
func (h *IngestionHandler) handleIngestError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, tabular.ErrEmptyPayload):
		h.BadRequest(c, "Payload is empty")
	case errors.Is(err, tabular.ErrNoRows):
		h.BadRequest(c, "Payload contains no data rows")
	case errors.Is(err, tabular.ErrInvalidEncoding):
		h.BadRequest(c, "Payload must be valid UTF-8")
	case errors.Is(err, fiscalxml.ErrNoItems):
		h.UnprocessableEntity(c, dto.ErrCodeBusinessRule, "No items recognized in document")
	default:
		h.HandleError(c, err)
	}
}
