package model

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// Standard error codes for API responses
const (
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeInsufficientStock  = "INSUFFICIENT_STOCK"
	ErrCodeEmptyCart          = "EMPTY_CART"
	ErrCodeIllegalTransition  = "ILLEGAL_TRANSITION"
	ErrCodeForbidden          = "FORBIDDEN"
	ErrCodeValidation         = "VALIDATION_ERROR"
	ErrCodeContactProtected   = "CONTACT_PROTECTED"
	ErrCodeUnauthorised       = "UNAUTHORIZED"
	ErrCodeInvalidJSON        = "INVALID_JSON"
	ErrCodeInternalError      = "INTERNAL_ERROR"
)

// DomainError is a business-rule violation that handlers translate
// into a structured failure response. Infrastructure failures are
// never wrapped in a DomainError.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound          = NewDomainError(ErrCodeNotFound, "Requested resource not found")
	ErrProductNotFound   = NewDomainError(ErrCodeNotFound, "Product not found")
	ErrCartNotFound      = NewDomainError(ErrCodeNotFound, "Cart not found")
	ErrCartItemNotFound  = NewDomainError(ErrCodeNotFound, "Item is not in the cart")
	ErrOrderNotFound     = NewDomainError(ErrCodeNotFound, "Order not found")
	ErrShopOrderNotFound = NewDomainError(ErrCodeNotFound, "Shop order not found")
	ErrContactNotFound   = NewDomainError(ErrCodeNotFound, "Delivery contact not found")
	ErrShopNotFound      = NewDomainError(ErrCodeNotFound, "Shop not found")

	ErrInsufficientStock = NewDomainError(ErrCodeInsufficientStock, "Requested quantity exceeds available stock")
	ErrEmptyCart         = NewDomainError(ErrCodeEmptyCart, "Cart is empty")
	ErrIllegalTransition = NewDomainError(ErrCodeIllegalTransition, "Status change not permitted from current state")
	ErrOrderClosed       = NewDomainError(ErrCodeIllegalTransition, "Order is already completed or cancelled")
	ErrForbidden         = NewDomainError(ErrCodeForbidden, "Insufficient permissions for this operation")
	ErrInvalidQuantity   = NewDomainError(ErrCodeValidation, "Quantity must be greater than zero")
	ErrContactProtected  = NewDomainError(ErrCodeContactProtected, "Contact is referenced by an order and cannot be deleted")
)
