package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	catalogapp "github.com/varejo/backend/internal/application/catalog"
	ingestionapp "github.com/varejo/backend/internal/application/ingestion"
	"github.com/varejo/backend/internal/domain/catalog"
	"github.com/varejo/backend/internal/domain/shared"
	"github.com/varejo/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testTenantID = uuid.MustParse("00000000-0000-0000-0000-000000000001")

// setupTestRouter returns an engine that resolves every request to the
// given tenant, mimicking the tenant middleware
func setupTestRouter(tenantID uuid.UUID) *gin.Engine {
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(middleware.TenantIDKey, tenantID)
		c.Next()
	})
	return router
}

func setupProductHandler(productRepo *MockProductRepository) *ProductHandler {
	registrar := ingestionapp.NewRegistrarService(productRepo, zap.NewNop())
	productService := catalogapp.NewProductService(productRepo)
	return NewProductHandler(registrar, productService)
}

func newTestProduct(t *testing.T, barcode, name string) *catalog.Product {
	t.Helper()
	product, err := catalog.NewProduct(testTenantID, barcode, name)
	require.NoError(t, err)
	return product
}

func TestProductHandler_Register_Success(t *testing.T) {
	productRepo := new(MockProductRepository)
	handler := setupProductHandler(productRepo)

	saved := newTestProduct(t, "7891000100103", "Leite Integral 1L")
	productRepo.On("UpsertByBarcode", mock.Anything, mock.AnythingOfType("*catalog.Product")).Return(saved, nil)

	router := setupTestRouter(testTenantID)
	router.POST("/products", handler.Register)

	reqBody := RegisterProductRequest{
		Barcode: "7891000100103",
		Name:    "Leite Integral 1L",
		Unit:    "un",
	}
	body, _ := json.Marshal(reqBody)

	req := httptest.NewRequest(http.MethodPost, "/products", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	productRepo.AssertExpectations(t)
}

func TestProductHandler_Register_WithPendingQuantity(t *testing.T) {
	productRepo := new(MockProductRepository)
	handler := setupProductHandler(productRepo)

	saved := newTestProduct(t, "7891000100103", "Leite Integral 1L")
	productRepo.On("UpsertByBarcode", mock.Anything, mock.AnythingOfType("*catalog.Product")).Return(saved, nil)
	productRepo.On("AdjustStock", mock.Anything, testTenantID, mock.Anything).Return(nil)

	router := setupTestRouter(testTenantID)
	router.POST("/products", handler.Register)

	pending := 12.0
	reqBody := RegisterProductRequest{
		Barcode:         "7891000100103",
		Name:            "Leite Integral 1L",
		PendingQuantity: &pending,
	}
	body, _ := json.Marshal(reqBody)

	req := httptest.NewRequest(http.MethodPost, "/products", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	productRepo.AssertExpectations(t)

	var resp struct {
		Success bool                       `json:"success"`
		Data    catalogapp.ProductResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.True(t, decimal.NewFromInt(12).Equal(resp.Data.StockQuantity))
}

func TestProductHandler_Register_MissingName(t *testing.T) {
	productRepo := new(MockProductRepository)
	handler := setupProductHandler(productRepo)

	router := setupTestRouter(testTenantID)
	router.POST("/products", handler.Register)

	req := httptest.NewRequest(http.MethodPost, "/products", bytes.NewBufferString(`{"barcode":"7891000100103"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	productRepo.AssertNotCalled(t, "UpsertByBarcode")
}

func TestProductHandler_Register_ShortBarcode(t *testing.T) {
	productRepo := new(MockProductRepository)
	handler := setupProductHandler(productRepo)

	router := setupTestRouter(testTenantID)
	router.POST("/products", handler.Register)

	req := httptest.NewRequest(http.MethodPost, "/products", bytes.NewBufferString(`{"barcode":"1234567","name":"Produto"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	productRepo.AssertNotCalled(t, "UpsertByBarcode")
}

func TestProductHandler_Register_MissingTenant(t *testing.T) {
	productRepo := new(MockProductRepository)
	handler := setupProductHandler(productRepo)

	router := gin.New()
	router.POST("/products", handler.Register)

	req := httptest.NewRequest(http.MethodPost, "/products", bytes.NewBufferString(`{"barcode":"7891000100103","name":"Produto"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProductHandler_GetByID_Success(t *testing.T) {
	productRepo := new(MockProductRepository)
	handler := setupProductHandler(productRepo)

	product := newTestProduct(t, "7891000100103", "Leite Integral 1L")
	productRepo.On("FindByIDForTenant", mock.Anything, testTenantID, product.ID).Return(product, nil)

	router := setupTestRouter(testTenantID)
	router.GET("/products/:id", handler.GetByID)

	req := httptest.NewRequest(http.MethodGet, "/products/"+product.ID.String(), nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	productRepo.AssertExpectations(t)
}

func TestProductHandler_GetByID_NotFound(t *testing.T) {
	productRepo := new(MockProductRepository)
	handler := setupProductHandler(productRepo)

	productID := uuid.New()
	productRepo.On("FindByIDForTenant", mock.Anything, testTenantID, productID).Return(nil, shared.ErrNotFound)

	router := setupTestRouter(testTenantID)
	router.GET("/products/:id", handler.GetByID)

	req := httptest.NewRequest(http.MethodGet, "/products/"+productID.String(), nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProductHandler_GetByID_InvalidID(t *testing.T) {
	productRepo := new(MockProductRepository)
	handler := setupProductHandler(productRepo)

	router := setupTestRouter(testTenantID)
	router.GET("/products/:id", handler.GetByID)

	req := httptest.NewRequest(http.MethodGet, "/products/invalid-uuid", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProductHandler_GetByBarcode_NormalizesInput(t *testing.T) {
	productRepo := new(MockProductRepository)
	handler := setupProductHandler(productRepo)

	product := newTestProduct(t, "7891000100103", "Leite Integral 1L")
	// The handler must look up the normalized form, digits only
	productRepo.On("FindByBarcode", mock.Anything, testTenantID, "7891000100103").Return(product, nil)

	router := setupTestRouter(testTenantID)
	router.GET("/products/barcode/:barcode", handler.GetByBarcode)

	req := httptest.NewRequest(http.MethodGet, "/products/barcode/789-1000-100103", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	productRepo.AssertExpectations(t)
}

func TestProductHandler_List_Success(t *testing.T) {
	productRepo := new(MockProductRepository)
	handler := setupProductHandler(productRepo)

	products := []catalog.Product{
		*newTestProduct(t, "7891000100103", "Leite Integral 1L"),
		*newTestProduct(t, "7896004400019", "Arroz Branco 5kg"),
	}
	productRepo.On("FindAllForTenant", mock.Anything, testTenantID, mock.Anything).Return(products, nil)
	productRepo.On("CountForTenant", mock.Anything, testTenantID, mock.Anything).Return(int64(2), nil)

	router := setupTestRouter(testTenantID)
	router.GET("/products", handler.List)

	req := httptest.NewRequest(http.MethodGet, "/products?page=1&page_size=20", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool                         `json:"success"`
		Data    []catalogapp.ProductResponse `json:"data"`
		Meta    struct {
			Total int64 `json:"total"`
		} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Len(t, resp.Data, 2)
	assert.Equal(t, int64(2), resp.Meta.Total)
}

func TestProductHandler_Delete_Success(t *testing.T) {
	productRepo := new(MockProductRepository)
	handler := setupProductHandler(productRepo)

	productID := uuid.New()
	productRepo.On("DeleteForTenant", mock.Anything, testTenantID, productID).Return(nil)

	router := setupTestRouter(testTenantID)
	router.DELETE("/products/:id", handler.Delete)

	req := httptest.NewRequest(http.MethodDelete, "/products/"+productID.String(), nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	productRepo.AssertExpectations(t)
}

func TestProductHandler_Delete_NotFound(t *testing.T) {
	productRepo := new(MockProductRepository)
	handler := setupProductHandler(productRepo)

	productID := uuid.New()
	productRepo.On("DeleteForTenant", mock.Anything, testTenantID, productID).Return(shared.ErrNotFound)

	router := setupTestRouter(testTenantID)
	router.DELETE("/products/:id", handler.Delete)

	req := httptest.NewRequest(http.MethodDelete, "/products/"+productID.String(), nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
