package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"marketplace/internal/feed"
	"marketplace/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockShopRepository is a mock implementation of repository.ShopRepository.
type MockShopRepository struct {
	mock.Mock
}

func (m *MockShopRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Shop, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Shop), args.Error(1)
}

func (m *MockShopRepository) GetOrCreate(ctx context.Context, supplierID uuid.UUID, name string) (*model.Shop, error) {
	args := m.Called(ctx, supplierID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Shop), args.Error(1)
}

func (m *MockShopRepository) UpsertCategory(ctx context.Context, externalID int, name string) (*model.Category, error) {
	args := m.Called(ctx, externalID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Category), args.Error(1)
}

func (m *MockShopRepository) GetCategoryByExternalID(ctx context.Context, externalID int) (*model.Category, error) {
	args := m.Called(ctx, externalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Category), args.Error(1)
}

func (m *MockShopRepository) ListCategories(ctx context.Context, shopID uuid.UUID) ([]model.Category, error) {
	args := m.Called(ctx, shopID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Category), args.Error(1)
}

// MockProductRepository is a mock implementation of repository.ProductRepository.
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) List(ctx context.Context, filter model.ProductFilter) ([]model.Product, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *MockProductRepository) ListByShop(ctx context.Context, shopID uuid.UUID) ([]model.Product, error) {
	args := m.Called(ctx, shopID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *MockProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockProductRepository) DecrementStock(ctx context.Context, tx pgx.Tx, productID uuid.UUID, qty int) error {
	args := m.Called(ctx, tx, productID, qty)
	return args.Error(0)
}

func (m *MockProductRepository) Upsert(ctx context.Context, product *model.Product) (bool, error) {
	args := m.Called(ctx, product)
	return args.Bool(0), args.Error(1)
}

const sampleFeedYAML = `shop: Svyaznoy
categories:
  - id: 224
    name: Smartphones
goods:
  - id: 4216292
    category_id: 224
    model: apple/iphone/xs-max
    name: Smartphone Apple iPhone XS Max 512GB (golden)
    price: 110000
    price_rrc: 116990
    quantity: 14
    parameters:
      Colour: golden
`

func newShopHandlerForTest() (*ShopHandler, *MockShopRepository, *MockProductRepository) {
	logger := zerolog.Nop()
	shopRepo := new(MockShopRepository)
	productRepo := new(MockProductRepository)

	importer := feed.NewImporter(shopRepo, productRepo, logger)
	exporter := feed.NewExporter(shopRepo, productRepo, logger)
	loader := feed.NewFileLoader(logger)

	return NewShopHandler(importer, exporter, loader, shopRepo, logger), shopRepo, productRepo
}

func TestShopHandler_Import_InlineYAML(t *testing.T) {
	supplier := model.User{ID: uuid.New(), IsSupplier: true}
	h, shopRepo, productRepo := newShopHandlerForTest()

	shopID := uuid.New()
	categoryID := uuid.New()

	shopRepo.On("GetOrCreate", mock.Anything, supplier.ID, "Svyaznoy").
		Return(&model.Shop{ID: shopID, SupplierID: supplier.ID, Name: "Svyaznoy"}, nil)
	shopRepo.On("GetCategoryByExternalID", mock.Anything, 224).Return(nil, nil)
	shopRepo.On("UpsertCategory", mock.Anything, 224, "Smartphones").
		Return(&model.Category{ID: categoryID, ExternalID: 224, Name: "Smartphones"}, nil)
	productRepo.On("Upsert", mock.Anything, mock.MatchedBy(func(p *model.Product) bool {
		return p.ExternalID == 4216292 && p.ShopID == shopID && p.Quantity == 14
	})).Return(true, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/shops/import",
		bytes.NewReader([]byte(sampleFeedYAML)))
	req.Header.Set("Content-Type", "application/x-yaml")
	rec := httptest.NewRecorder()

	h.Import(rec, authed(req, supplier))

	assert.Equal(t, http.StatusOK, rec.Code)

	var result feed.Result
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&result))
	assert.Equal(t, "Svyaznoy", result.Shop)
	assert.Equal(t, 1, result.CreatedCategories)
	assert.Equal(t, 1, result.CreatedProducts)

	shopRepo.AssertExpectations(t)
	productRepo.AssertExpectations(t)
}

func TestShopHandler_Import_CustomerForbidden(t *testing.T) {
	customer := model.User{ID: uuid.New()}
	h, shopRepo, _ := newShopHandlerForTest()

	req := httptest.NewRequest(http.MethodPost, "/api/shops/import",
		bytes.NewReader([]byte(sampleFeedYAML)))
	rec := httptest.NewRecorder()

	h.Import(rec, authed(req, customer))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	shopRepo.AssertNotCalled(t, "GetOrCreate", mock.Anything, mock.Anything, mock.Anything)
}

func TestShopHandler_Import_UnreadableFeed(t *testing.T) {
	supplier := model.User{ID: uuid.New(), IsSupplier: true}
	h, _, _ := newShopHandlerForTest()

	req := httptest.NewRequest(http.MethodPost, "/api/shops/import",
		bytes.NewReader([]byte("shop: [unclosed")))
	rec := httptest.NewRecorder()

	h.Import(rec, authed(req, supplier))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestShopHandler_Import_JSONSourceMissing(t *testing.T) {
	supplier := model.User{ID: uuid.New(), IsSupplier: true}
	h, _, _ := newShopHandlerForTest()

	req := httptest.NewRequest(http.MethodPost, "/api/shops/import",
		bytes.NewReader([]byte(`{"source":""}`)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	h.Import(rec, authed(req, supplier))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestShopHandler_Export(t *testing.T) {
	supplier := model.User{ID: uuid.New(), IsSupplier: true}
	h, shopRepo, productRepo := newShopHandlerForTest()

	shopID := uuid.New()
	shopRepo.On("GetByID", mock.Anything, shopID).
		Return(&model.Shop{ID: shopID, SupplierID: supplier.ID, Name: "Svyaznoy"}, nil)
	shopRepo.On("ListCategories", mock.Anything, shopID).
		Return([]model.Category{{ID: uuid.New(), ExternalID: 224, Name: "Smartphones"}}, nil)
	productRepo.On("ListByShop", mock.Anything, shopID).Return([]model.Product{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/shops/"+shopID.String()+"/export", nil)
	req.SetPathValue("id", shopID.String())
	rec := httptest.NewRecorder()

	h.Export(rec, authed(req, supplier))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "yaml")
	assert.Contains(t, rec.Body.String(), "shop: Svyaznoy")
}

func TestShopHandler_Export_OtherSuppliersShop(t *testing.T) {
	supplier := model.User{ID: uuid.New(), IsSupplier: true}
	h, shopRepo, _ := newShopHandlerForTest()

	shopID := uuid.New()
	shopRepo.On("GetByID", mock.Anything, shopID).
		Return(&model.Shop{ID: shopID, SupplierID: uuid.New(), Name: "Other"}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/shops/"+shopID.String()+"/export", nil)
	req.SetPathValue("id", shopID.String())
	rec := httptest.NewRecorder()

	h.Export(rec, authed(req, supplier))

	assert.Equal(t, http.StatusForbidden, rec.Code)
}
