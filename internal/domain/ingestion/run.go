package ingestion

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/varejo/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// RunMode identifies which ingestion path produced a run
type RunMode string

const (
	RunModeBulk     RunMode = "bulk"
	RunModeDocument RunMode = "document"
)

// IsValid checks if the run mode is valid
func (m RunMode) IsValid() bool {
	return m == RunModeBulk || m == RunModeDocument
}

// AdjustmentMode defines how a bulk run mutates stock quantities
type AdjustmentMode string

const (
	AdjustmentReplace  AdjustmentMode = "replace"
	AdjustmentAdd      AdjustmentMode = "add"
	AdjustmentSubtract AdjustmentMode = "subtract"
)

// IsValid checks if the adjustment mode is valid
func (m AdjustmentMode) IsValid() bool {
	switch m {
	case AdjustmentReplace, AdjustmentAdd, AdjustmentSubtract:
		return true
	}
	return false
}

// RunStatus represents the lifecycle state of a run
type RunStatus string

const (
	RunStatusPending    RunStatus = "pending"
	RunStatusProcessing RunStatus = "processing"
	RunStatusCompleted  RunStatus = "completed"
	RunStatusFailed     RunStatus = "failed"
)

// IsTerminal returns true if this is a terminal state
func (s RunStatus) IsTerminal() bool {
	return s == RunStatusCompleted || s == RunStatusFailed
}

// InvalidItem is one row rejected during normalization, kept in input order
// so the operator can cross-reference and resubmit corrections
type InvalidItem struct {
	Line        int    `json:"line"`
	RawBarcode  string `json:"barcode"`
	RawQuantity string `json:"raw_quantity"`
	Reason      string `json:"reason"`
}

// NotFoundItem is one well-formed row whose barcode had no catalog match
type NotFoundItem struct {
	Line     int    `json:"line"`
	Barcode  string `json:"barcode"`
	Quantity string `json:"quantity"`
}

// Run is the audit record of one complete ingestion invocation.
// It is immutable after reaching a terminal status.
type Run struct {
	shared.TenantAggregateRoot
	Mode          RunMode
	Adjustment    AdjustmentMode
	Source        string
	Status        RunStatus
	TotalRows     int
	ValidRows     int
	InvalidRows   int
	UpdatedRows   int
	NotFoundRows  int
	InvalidItems  []InvalidItem
	NotFoundItems []NotFoundItem
	StartedAt     *time.Time
	CompletedAt   *time.Time
}

// NewRun creates a pending ingestion run
func NewRun(tenantID uuid.UUID, mode RunMode, adjustment AdjustmentMode, source string) (*Run, error) {
	if !mode.IsValid() {
		return nil, shared.NewDomainError("INVALID_RUN_MODE", fmt.Sprintf("Invalid run mode: %s", mode))
	}
	if mode == RunModeBulk && !adjustment.IsValid() {
		return nil, shared.NewDomainError("INVALID_ADJUSTMENT_MODE", fmt.Sprintf("Invalid adjustment mode: %s", adjustment))
	}
	if mode == RunModeDocument {
		// Document runs always add; there is no mode parameter on that path.
		adjustment = AdjustmentAdd
	}

	return &Run{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Mode:                mode,
		Adjustment:          adjustment,
		Source:              source,
		Status:              RunStatusPending,
		InvalidItems:        make([]InvalidItem, 0),
		NotFoundItems:       make([]NotFoundItem, 0),
	}, nil
}

// Start marks the run as processing
func (r *Run) Start(totalRows int) error {
	if r.Status != RunStatusPending {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot start run from state: %s", r.Status))
	}
	if totalRows < 0 {
		return shared.NewDomainError("INVALID_TOTAL_ROWS", "Total rows cannot be negative")
	}

	r.Status = RunStatusProcessing
	r.TotalRows = totalRows
	now := time.Now()
	r.StartedAt = &now
	r.UpdatedAt = now
	r.IncrementVersion()

	return nil
}

// RecordInvalid records one row that failed normalization
func (r *Run) RecordInvalid(item InvalidItem) {
	r.InvalidRows++
	r.InvalidItems = append(r.InvalidItems, item)
}

// RecordNotFound records one well-formed row absent from the catalog
func (r *Run) RecordNotFound(item NotFoundItem) {
	r.NotFoundRows++
	r.NotFoundItems = append(r.NotFoundItems, item)
}

// RecordUpdated records one row whose stock mutation was applied
func (r *Run) RecordUpdated() {
	r.UpdatedRows++
}

// Complete marks the run as completed; the record is immutable afterwards
func (r *Run) Complete() error {
	if r.Status != RunStatusProcessing {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot complete run from state: %s", r.Status))
	}

	r.ValidRows = r.TotalRows - r.InvalidRows
	r.Status = RunStatusCompleted
	now := time.Now()
	r.CompletedAt = &now
	r.UpdatedAt = now
	r.IncrementVersion()

	return nil
}

// Fail marks the run as failed before any mutation happened
func (r *Run) Fail() error {
	if r.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot fail run from terminal state: %s", r.Status))
	}

	r.Status = RunStatusFailed
	now := time.Now()
	r.CompletedAt = &now
	r.UpdatedAt = now
	r.IncrementVersion()

	return nil
}

// HasValidRows returns true if at least one row survived normalization
func (r *Run) HasValidRows() bool {
	return r.TotalRows-r.InvalidRows > 0
}

// Duration returns how long the run took
func (r *Run) Duration() time.Duration {
	if r.StartedAt == nil {
		return 0
	}
	end := time.Now()
	if r.CompletedAt != nil {
		end = *r.CompletedAt
	}
	return end.Sub(*r.StartedAt)
}

// InvalidItemsJSON returns the invalid rows as a JSON string
func (r *Run) InvalidItemsJSON() (string, error) {
	return marshalList(r.InvalidItems)
}

// NotFoundItemsJSON returns the not-found rows as a JSON string
func (r *Run) NotFoundItemsJSON() (string, error) {
	return marshalList(r.NotFoundItems)
}

// SetInvalidItemsFromJSON parses invalid rows from a JSON string
func (r *Run) SetInvalidItemsFromJSON(jsonStr string) error {
	return unmarshalList(jsonStr, &r.InvalidItems)
}

// SetNotFoundItemsFromJSON parses not-found rows from a JSON string
func (r *Run) SetNotFoundItemsFromJSON(jsonStr string) error {
	return unmarshalList(jsonStr, &r.NotFoundItems)
}

func marshalList[T any](items []T) (string, error) {
	if len(items) == 0 {
		return "[]", nil
	}
	data, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("failed to marshal items: %w", err)
	}
	return string(data), nil
}

func unmarshalList[T any](jsonStr string, into *[]T) error {
	if jsonStr == "" || jsonStr == "[]" {
		*into = make([]T, 0)
		return nil
	}
	if err := json.Unmarshal([]byte(jsonStr), into); err != nil {
		return fmt.Errorf("failed to unmarshal items: %w", err)
	}
	return nil
}
