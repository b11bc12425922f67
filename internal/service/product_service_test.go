package service

import (
	"context"
	"errors"
	"testing"

	"marketplace/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductService_List_ClampsPagination(t *testing.T) {
	ctx := context.Background()
	productRepo := new(MockProductRepository)
	svc := NewProductService(productRepo, zerolog.Nop())

	tests := []struct {
		name     string
		in       model.ProductFilter
		expected model.ProductFilter
	}{
		{
			name:     "defaults applied",
			in:       model.ProductFilter{},
			expected: model.ProductFilter{Limit: defaultListLimit},
		},
		{
			name:     "limit capped",
			in:       model.ProductFilter{Limit: 5000},
			expected: model.ProductFilter{Limit: maxListLimit},
		},
		{
			name:     "negative offset reset",
			in:       model.ProductFilter{Limit: 10, Offset: -3},
			expected: model.ProductFilter{Limit: 10},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			productRepo.On("List", ctx, tt.expected).Return([]model.Product{}, nil).Once()

			_, err := svc.List(ctx, tt.in)
			require.NoError(t, err)
		})
	}

	productRepo.AssertExpectations(t)
}

func TestProductService_List_FilterPassedThrough(t *testing.T) {
	ctx := context.Background()
	productRepo := new(MockProductRepository)
	svc := NewProductService(productRepo, zerolog.Nop())

	shopID := uuid.New()
	categoryID := uuid.New()
	filter := model.ProductFilter{ShopID: &shopID, CategoryID: &categoryID, Limit: 20, Offset: 40}

	expected := []model.Product{
		{ID: uuid.New(), Name: "Widget", Price: decimal.RequireFromString("10.00"), Quantity: 3},
	}
	productRepo.On("List", ctx, filter).Return(expected, nil)

	products, err := svc.List(ctx, filter)

	require.NoError(t, err)
	assert.Equal(t, expected, products)
}

func TestProductService_GetByID_NotFound(t *testing.T) {
	ctx := context.Background()
	productRepo := new(MockProductRepository)
	svc := NewProductService(productRepo, zerolog.Nop())

	id := uuid.New()
	productRepo.On("GetByID", ctx, id).Return(nil, nil)

	product, err := svc.GetByID(ctx, id)

	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrProductNotFound)
	assert.Nil(t, product)
}

func TestProductService_GetByID_RepositoryError(t *testing.T) {
	ctx := context.Background()
	productRepo := new(MockProductRepository)
	svc := NewProductService(productRepo, zerolog.Nop())

	id := uuid.New()
	productRepo.On("GetByID", ctx, id).Return(nil, errors.New("connection refused"))

	product, err := svc.GetByID(ctx, id)

	require.Error(t, err)
	assert.NotErrorIs(t, err, model.ErrProductNotFound)
	assert.Nil(t, product)
}
