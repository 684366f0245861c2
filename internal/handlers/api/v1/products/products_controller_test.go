package products

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"telar/internal/models"
	"telar/internal/response"
	"telar/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// mockProductService is a simplified mock implementation for testing
type mockProductService struct {
	lastQuery *models.ProductQuery
}

func (m *mockProductService) GetMarketplaceProducts(ctx context.Context, query *models.ProductQuery) (*models.ListResponse[*models.MarketplaceProduct], error) {
	m.lastQuery = query
	return &models.ListResponse[*models.MarketplaceProduct]{
		Data: []*models.MarketplaceProduct{
			{
				Product:     models.Product{ID: "p1", Name: "Ruana de lana"},
				IsNew:       true,
				CanPurchase: true,
				StoreName:   "Tejidos del Valle",
			},
		},
		Total: 1,
		Page:  1,
		Limit: 20,
	}, nil
}

func (m *mockProductService) GetMarketplaceProductByID(ctx context.Context, id string) (*models.MarketplaceProduct, error) {
	if id != "p1" {
		return nil, services.EntityNotFoundError("Product", id)
	}
	return &models.MarketplaceProduct{
		Product: models.Product{ID: "p1", Name: "Ruana de lana"},
	}, nil
}

// Implement the remaining methods from services.ProductService
func (m *mockProductService) Create(ctx context.Context, req *services.CreateProductRequest) (*models.Product, error) {
	return nil, nil
}

func (m *mockProductService) GetByID(ctx context.Context, id string) (*models.Product, error) {
	return nil, nil
}

func (m *mockProductService) Update(ctx context.Context, id string, req *services.UpdateProductRequest) (*models.Product, error) {
	return nil, nil
}

func (m *mockProductService) Delete(ctx context.Context, id string) error {
	return nil
}

func (m *mockProductService) GetAll(ctx context.Context, query *models.ProductQuery) (*models.ListResponse[*models.Product], error) {
	return nil, nil
}

func (m *mockProductService) GetFeaturedProducts(ctx context.Context, limit int) ([]*models.MarketplaceProduct, error) {
	return nil, nil
}

func (m *mockProductService) GetProductsByShop(ctx context.Context, shopID string) ([]*models.MarketplaceProduct, error) {
	return nil, nil
}

func (m *mockProductService) GetProductsByUser(ctx context.Context, userID string) ([]*models.MarketplaceProduct, error) {
	return nil, nil
}

func newTestController() (*Controller, *mockProductService) {
	mockSvc := &mockProductService{}
	builder := response.NewBuilder(
		&response.Config{
			PrettyJSON:         false,
			IncludeRequestID:   true,
			IncludeTimestamp:   true,
			IncludeVersion:     true,
			APIVersion:         "v1",
			MaskInternalErrors: false,
		},
		zap.NewNop(),
	)

	controller := NewController(
		&services.ServiceCollection{Product: mockSvc},
		builder,
		zap.NewNop(),
	)
	return controller, mockSvc
}

func TestController_ListMarketplace(t *testing.T) {
	controller, mockSvc := newTestController()

	t.Run("successful request passes filters through", func(t *testing.T) {
		req, err := http.NewRequest("GET", "/api/v1/products/marketplace?category=Textiles&minPrice=10000&featured=true", nil)
		require.NoError(t, err)

		rr := httptest.NewRecorder()
		http.HandlerFunc(controller.ListMarketplace).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		assert.Equal(t, true, body["success"])

		data, ok := body["data"].(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, float64(1), data["total"])

		items, ok := data["data"].([]interface{})
		require.True(t, ok)
		require.Len(t, items, 1)

		require.NotNil(t, mockSvc.lastQuery)
		assert.Equal(t, "Textiles", mockSvc.lastQuery.Category)
		require.NotNil(t, mockSvc.lastQuery.MinPrice)
		assert.Equal(t, 10000.0, *mockSvc.lastQuery.MinPrice)
		require.NotNil(t, mockSvc.lastQuery.Featured)
		assert.True(t, *mockSvc.lastQuery.Featured)
	})

	t.Run("malformed numeric filter is rejected", func(t *testing.T) {
		req, err := http.NewRequest("GET", "/api/v1/products/marketplace?limit=abc", nil)
		require.NoError(t, err)

		rr := httptest.NewRecorder()
		http.HandlerFunc(controller.ListMarketplace).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)

		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		assert.Equal(t, false, body["success"])
		assert.Contains(t, body, "error")
	})

	t.Run("malformed boolean filter is rejected", func(t *testing.T) {
		req, err := http.NewRequest("GET", "/api/v1/products/marketplace?isNew=maybe", nil)
		require.NoError(t, err)

		rr := httptest.NewRecorder()
		http.HandlerFunc(controller.ListMarketplace).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestController_GetMarketplaceByID(t *testing.T) {
	controller, _ := newTestController()

	serve := func(id string) *httptest.ResponseRecorder {
		req := httptest.NewRequest("GET", "/api/v1/products/marketplace/"+id, nil)

		routeCtx := chi.NewRouteContext()
		routeCtx.URLParams.Add("id", id)
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))

		rr := httptest.NewRecorder()
		http.HandlerFunc(controller.GetMarketplaceByID).ServeHTTP(rr, req)
		return rr
	}

	t.Run("visible product is returned", func(t *testing.T) {
		rr := serve("p1")
		assert.Equal(t, http.StatusOK, rr.Code)

		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		data, ok := body["data"].(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, "Ruana de lana", data["name"])
	})

	t.Run("unknown product is a 404", func(t *testing.T) {
		rr := serve("missing")
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}
