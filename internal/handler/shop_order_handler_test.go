package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"marketplace/internal/model"
	"marketplace/internal/status"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestShopOrderHandler_Process(t *testing.T) {
	logger := zerolog.Nop()
	supplier := model.User{ID: uuid.New(), IsSupplier: true}
	shopOrderID := uuid.New()

	tests := []struct {
		name           string
		body           string
		mockReturn     *model.ShopOrder
		mockError      error
		expectedStatus int
		expectedCode   string
		expectService  bool
	}{
		{
			name:           "Success",
			body:           `{"status":"shipped"}`,
			mockReturn:     &model.ShopOrder{ID: shopOrderID, Status: status.Shipped},
			expectedStatus: http.StatusOK,
			expectService:  true,
		},
		{
			name:           "Illegal transition",
			body:           `{"status":"new"}`,
			mockError:      model.ErrIllegalTransition,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   model.ErrCodeIllegalTransition,
			expectService:  true,
		},
		{
			name:           "Not the shop's supplier",
			body:           `{"status":"shipped"}`,
			mockError:      model.ErrForbidden,
			expectedStatus: http.StatusForbidden,
			expectedCode:   model.ErrCodeForbidden,
			expectService:  true,
		},
		{
			name:           "Parent order closed",
			body:           `{"status":"shipped"}`,
			mockError:      model.ErrOrderClosed,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   model.ErrCodeIllegalTransition,
			expectService:  true,
		},
		{
			name:           "Malformed body",
			body:           `{`,
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockOrderService)
			h := NewShopOrderHandler(mockService, logger)

			if tt.expectService {
				var raw model.ProcessShopOrderRequest
				require.NoError(t, json.Unmarshal([]byte(tt.body), &raw))
				if tt.mockReturn != nil {
					mockService.On("ProcessShopOrder", mock.Anything, supplier, shopOrderID, raw.Status).
						Return(tt.mockReturn, nil)
				} else {
					mockService.On("ProcessShopOrder", mock.Anything, supplier, shopOrderID, raw.Status).
						Return(nil, tt.mockError)
				}
			}

			req := httptest.NewRequest(http.MethodPatch, "/api/shop-orders/"+shopOrderID.String()+"/process",
				bytes.NewReader([]byte(tt.body)))
			req.SetPathValue("id", shopOrderID.String())
			rec := httptest.NewRecorder()

			h.Process(rec, authed(req, supplier))

			assert.Equal(t, tt.expectedStatus, rec.Code)
			if tt.expectedCode != "" {
				var resp model.ErrorResponse
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
				assert.Equal(t, tt.expectedCode, resp.Error)
			}
			mockService.AssertExpectations(t)
		})
	}
}

func TestShopOrderHandler_List(t *testing.T) {
	supplier := model.User{ID: uuid.New(), IsSupplier: true}
	mockService := new(MockOrderService)
	h := NewShopOrderHandler(mockService, zerolog.Nop())

	shopOrders := []model.ShopOrder{{ID: uuid.New(), Status: status.New}}
	mockService.On("ListShopOrders", mock.Anything, supplier).Return(shopOrders, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/shop-orders", nil)
	rec := httptest.NewRecorder()

	h.List(rec, authed(req, supplier))

	assert.Equal(t, http.StatusOK, rec.Code)

	var got []model.ShopOrder
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Len(t, got, 1)
}
