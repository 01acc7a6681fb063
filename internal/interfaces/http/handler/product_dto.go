package handler

// RegisterProductRequest is the payload for registering a catalog entry,
// typically for an identifier an ingestion run reported as not found
type RegisterProductRequest struct {
	Barcode     string   `json:"barcode" binding:"required"`
	Name        string   `json:"name" binding:"required"`
	Description string   `json:"description"`
	Unit        string   `json:"unit"`
	CostPrice   *float64 `json:"cost_price" binding:"omitempty,gte=0"`
	SalePrice   *float64 `json:"sale_price" binding:"omitempty,gte=0"`
	// InitialStock seeds the stock of a newly created entry
	InitialStock *float64 `json:"initial_stock" binding:"omitempty,gte=0"`
	// PendingQuantity, when set, is applied to the entry's stock right
	// after registration, resolving a not-found run line in one call
	PendingQuantity *float64 `json:"pending_quantity" binding:"omitempty,gt=0"`
}
