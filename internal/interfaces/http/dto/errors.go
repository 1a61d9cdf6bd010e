package dto

import "net/http"

// Error codes returned in the JSON envelope.
const (
	ErrCodeValidation      = "VALIDATION_ERROR"
	ErrCodeUnauthorized    = "UNAUTHORIZED"
	ErrCodeNotFound        = "NOT_FOUND"
	ErrCodeUpstreamFailure = "UPSTREAM_FAILURE"
	ErrCodeDeliveryFailure = "DELIVERY_FAILURE"
	ErrCodeInternal        = "INTERNAL_ERROR"
)

var errorStatusCodes = map[string]int{
	ErrCodeValidation:      http.StatusBadRequest,
	ErrCodeUnauthorized:    http.StatusForbidden,
	ErrCodeNotFound:        http.StatusNotFound,
	ErrCodeUpstreamFailure: http.StatusBadGateway,
	ErrCodeDeliveryFailure: http.StatusBadGateway,
	ErrCodeInternal:        http.StatusInternalServerError,
}

// GetHTTPStatus maps an error code to its HTTP status, defaulting to 500.
func GetHTTPStatus(code string) int {
	if status, ok := errorStatusCodes[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
