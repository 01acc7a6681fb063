package handler

import (
	catalogapp "github.com/varejo/backend/internal/application/catalog"
	ingestionapp "github.com/varejo/backend/internal/application/ingestion"
	"github.com/varejo/backend/internal/domain/shared"
	"github.com/varejo/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ProductHandler serves the catalog endpoints: registering entries for
// unresolved identifiers and browsing the catalog
type ProductHandler struct {
	BaseHandler
	registrar      *ingestionapp.RegistrarService
	productService *catalogapp.ProductService
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(
	registrar *ingestionapp.RegistrarService,
	productService *catalogapp.ProductService,
) *ProductHandler {
	return &ProductHandler{
		registrar:      registrar,
		productService: productService,
	}
}

// RegisterRoutes registers the product routes
func (h *ProductHandler) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group("/products")
	{
		group.POST("", h.Register)
		group.GET("", h.List)
		group.GET("/:id", h.GetByID)
		group.GET("/barcode/:barcode", h.GetByBarcode)
		group.DELETE("/:id", h.Delete)
	}
}

// Register upserts a catalog entry keyed by its normalized barcode.
// When pending_quantity is set, the quantity is applied to the entry's
// stock immediately after registration.
func (h *ProductHandler) Register(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req RegisterProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	appReq := ingestionapp.RegisterItemRequest{
		TenantID:    tenantID,
		Barcode:     req.Barcode,
		Name:        req.Name,
		Description: req.Description,
		Unit:        req.Unit,
	}
	if req.CostPrice != nil {
		appReq.CostPrice = toDecimalPtr(*req.CostPrice)
	}
	if req.SalePrice != nil {
		appReq.SalePrice = toDecimalPtr(*req.SalePrice)
	}
	if req.InitialStock != nil {
		appReq.InitialStock = toDecimalPtr(*req.InitialStock)
	}

	if req.PendingQuantity != nil {
		product, err := h.registrar.RegisterAndApply(c.Request.Context(), appReq, toDecimal(*req.PendingQuantity))
		if err != nil {
			h.HandleError(c, err)
			return
		}
		h.Created(c, catalogapp.NewProductResponse(product))
		return
	}

	product, err := h.registrar.Register(c.Request.Context(), appReq)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, catalogapp.NewProductResponse(product))
}

// List returns the tenant's catalog with pagination
func (h *ProductHandler) List(c *gin.Context) {
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

	products, total, err := h.productService.List(c.Request.Context(), tenantID, shared.Filter{
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

	h.SuccessWithMeta(c, products, total, req.Page, req.PageSize)
}

// GetByID returns one product
func (h *ProductHandler) GetByID(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid product ID format")
		return
	}

	product, err := h.productService.GetByID(c.Request.Context(), tenantID, productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, product)
}

// GetByBarcode returns one product looked up by its barcode
func (h *ProductHandler) GetByBarcode(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	product, err := h.productService.GetByBarcode(c.Request.Context(), tenantID, c.Param("barcode"))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, product)
}

// Delete removes a product from the catalog
func (h *ProductHandler) Delete(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid product ID format")
		return
	}

	if err := h.productService.Delete(c.Request.Context(), tenantID, productID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}
