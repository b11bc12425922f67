package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"marketplace/internal/middleware"
	"marketplace/internal/model"
	"marketplace/internal/status"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// authed wraps the request with an authenticated actor, the way the
// token middleware would.
func authed(r *http.Request, actor model.User) *http.Request {
	return r.WithContext(middleware.WithUser(r.Context(), actor))
}

func TestOrderHandler_Confirm(t *testing.T) {
	logger := zerolog.Nop()
	actor := model.User{ID: uuid.New()}
	orderID := uuid.New()

	okView := &model.OrderView{Order: model.Order{ID: orderID, Status: status.New}}

	tests := []struct {
		name           string
		mockReturn     *model.OrderView
		mockError      error
		expectedStatus int
		expectedCode   string
	}{
		{
			name:           "Success",
			mockReturn:     okView,
			mockError:      nil,
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "Empty cart",
			mockError:      model.ErrEmptyCart,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   model.ErrCodeEmptyCart,
		},
		{
			name:           "Stock ran out",
			mockError:      model.ErrInsufficientStock,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   model.ErrCodeInsufficientStock,
		},
		{
			name:           "Contact not found",
			mockError:      model.ErrContactNotFound,
			expectedStatus: http.StatusNotFound,
			expectedCode:   model.ErrCodeNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockOrderService)
			h := NewOrderHandler(mockService, logger)

			reqBody := model.ConfirmOrderRequest{CartID: uuid.New(), ContactID: uuid.New()}
			if tt.mockReturn != nil {
				mockService.On("Confirm", mock.Anything, actor, &reqBody).Return(tt.mockReturn, nil)
			} else {
				mockService.On("Confirm", mock.Anything, actor, &reqBody).Return(nil, tt.mockError)
			}

			body, err := json.Marshal(reqBody)
			require.NoError(t, err)

			req := httptest.NewRequest(http.MethodPost, "/api/orders/confirm", bytes.NewReader(body))
			rec := httptest.NewRecorder()

			h.Confirm(rec, authed(req, actor))

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

func TestOrderHandler_Confirm_InvalidBody(t *testing.T) {
	mockService := new(MockOrderService)
	h := NewOrderHandler(mockService, zerolog.Nop())

	req := httptest.NewRequest(http.MethodPost, "/api/orders/confirm", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()

	h.Confirm(rec, authed(req, model.User{ID: uuid.New()}))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	mockService.AssertNotCalled(t, "Confirm", mock.Anything, mock.Anything, mock.Anything)
}

func TestOrderHandler_Confirm_Unauthenticated(t *testing.T) {
	mockService := new(MockOrderService)
	h := NewOrderHandler(mockService, zerolog.Nop())

	req := httptest.NewRequest(http.MethodPost, "/api/orders/confirm", bytes.NewReader([]byte("{}")))
	rec := httptest.NewRecorder()

	h.Confirm(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	mockService.AssertNotCalled(t, "Confirm", mock.Anything, mock.Anything, mock.Anything)
}

func TestOrderHandler_GetByID(t *testing.T) {
	logger := zerolog.Nop()
	actor := model.User{ID: uuid.New()}
	orderID := uuid.New()

	tests := []struct {
		name           string
		pathID         string
		mockReturn     *model.OrderView
		mockError      error
		expectedStatus int
		expectService  bool
	}{
		{
			name:           "Success",
			pathID:         orderID.String(),
			mockReturn:     &model.OrderView{Order: model.Order{ID: orderID}},
			expectedStatus: http.StatusOK,
			expectService:  true,
		},
		{
			name:           "Not found",
			pathID:         orderID.String(),
			mockError:      model.ErrOrderNotFound,
			expectedStatus: http.StatusNotFound,
			expectService:  true,
		},
		{
			name:           "Malformed ID",
			pathID:         "not-a-uuid",
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockOrderService)
			h := NewOrderHandler(mockService, logger)

			if tt.expectService {
				if tt.mockReturn != nil {
					mockService.On("GetByID", mock.Anything, actor, orderID).Return(tt.mockReturn, nil)
				} else {
					mockService.On("GetByID", mock.Anything, actor, orderID).Return(nil, tt.mockError)
				}
			}

			req := httptest.NewRequest(http.MethodGet, "/api/orders/"+tt.pathID, nil)
			req.SetPathValue("id", tt.pathID)
			rec := httptest.NewRecorder()

			h.GetByID(rec, authed(req, actor))

			assert.Equal(t, tt.expectedStatus, rec.Code)
			mockService.AssertExpectations(t)
		})
	}
}

func TestOrderHandler_Cancel(t *testing.T) {
	logger := zerolog.Nop()
	actor := model.User{ID: uuid.New()}
	orderID := uuid.New()

	tests := []struct {
		name           string
		mockReturn     *model.OrderView
		mockError      error
		expectedStatus int
		expectedCode   string
	}{
		{
			name:           "Success",
			mockReturn:     &model.OrderView{Order: model.Order{ID: orderID, Status: status.Cancelled}},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Already closed",
			mockError:      model.ErrIllegalTransition,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   model.ErrCodeIllegalTransition,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockOrderService)
			h := NewOrderHandler(mockService, logger)

			if tt.mockReturn != nil {
				mockService.On("Cancel", mock.Anything, actor, orderID).Return(tt.mockReturn, nil)
			} else {
				mockService.On("Cancel", mock.Anything, actor, orderID).Return(nil, tt.mockError)
			}

			req := httptest.NewRequest(http.MethodPost, "/api/orders/"+orderID.String()+"/cancel", nil)
			req.SetPathValue("id", orderID.String())
			rec := httptest.NewRecorder()

			h.Cancel(rec, authed(req, actor))

			assert.Equal(t, tt.expectedStatus, rec.Code)
			if tt.expectedCode != "" {
				var resp model.ErrorResponse
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
				assert.Equal(t, tt.expectedCode, resp.Error)
			}
		})
	}
}

func TestOrderHandler_List(t *testing.T) {
	actor := model.User{ID: uuid.New()}
	mockService := new(MockOrderService)
	h := NewOrderHandler(mockService, zerolog.Nop())

	orders := []model.Order{{ID: uuid.New(), Status: status.New}}
	mockService.On("List", mock.Anything, actor).Return(orders, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
	rec := httptest.NewRecorder()

	h.List(rec, authed(req, actor))

	assert.Equal(t, http.StatusOK, rec.Code)

	var got []model.Order
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Len(t, got, 1)
}
