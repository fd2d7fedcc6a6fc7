package errors

import "net/http"

// Stable API error codes shared with the mobile clients.
const (
	CodeAlertNotFound         = "ALERT_NOT_FOUND"
	CodeAlertStateNotFound    = "ALERT_STATE_NOT_FOUND"
	CodeAlertTypeNotFound     = "ALERT_TYPE_NOT_FOUND"
	CodeCustomerNotAllowed    = "CUSTOMER_NOT_ALLOWED"
	CodeAuthorizationRequired = "AUTHORIZATION_REQUIRED"
	CodeValidation            = "VALIDATION_ERROR"
	CodeUnknown               = "UNKNOWN_ERROR"
)

// Code to HTTP status mapping for the authenticated paths.
var codeStatusMap = map[string]int{
	CodeAlertNotFound:         http.StatusNotFound,
	CodeAlertStateNotFound:    http.StatusNotFound,
	CodeAlertTypeNotFound:     http.StatusNotFound,
	CodeCustomerNotAllowed:    http.StatusUnprocessableEntity,
	CodeAuthorizationRequired: http.StatusUnauthorized,
	CodeValidation:            http.StatusBadRequest,
	CodeUnknown:               http.StatusInternalServerError,
}

func StatusOf(code string) int {
	if s, ok := codeStatusMap[code]; ok {
		return s
	}
	return http.StatusInternalServerError
}
