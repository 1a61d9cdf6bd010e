package shared

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
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
	ErrUnauthorized    = NewDomainError("UNAUTHORIZED", "Invalid or missing credentials")
	ErrInvalidInput    = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrUpstreamFailure = NewDomainError("UPSTREAM_FAILURE", "Upstream commerce API call failed")
	ErrDeliveryFailure = NewDomainError("DELIVERY_FAILURE", "Document delivery failed")
	ErrInvalidData     = NewDomainError("INVALID_DATA", "Order data cannot be exported")
)
