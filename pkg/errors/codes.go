package errors

import (
	"net/http"
	"strings"
)

// ErrorCode is a string representation of a specific error condition.
// Codes are prefixed with their module: COMMON, REF, AUX.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common Error Codes
const (
	ErrCodeInternal      ErrorCode = "COMMON_001"
	ErrCodeBadRequest    ErrorCode = "COMMON_002"
	ErrCodeNotFound      ErrorCode = "COMMON_005"
	ErrCodeTimeout       ErrorCode = "COMMON_009"
	ErrCodeValidation    ErrorCode = "COMMON_010"
	ErrCodeDatabaseError ErrorCode = "COMMON_012"
)

// Reference data Error Codes
const (
	ErrCodeRefDataMissing ErrorCode = "REF_001"
	ErrCodeRefDataInvalid ErrorCode = "REF_002"
)

// Auxiliary table filler Error Codes
const (
	ErrCodeUnknownField  ErrorCode = "AUX_001"
	ErrCodeInvalidYear   ErrorCode = "AUX_002"
	ErrCodeBatchAborted  ErrorCode = "AUX_003"
	ErrCodeConfigInvalid ErrorCode = "AUX_004"
)

// Short aliases used at call sites.
const (
	CodeOK             = ErrorCode("OK")
	CodeUnknown        = ErrorCode("UNKNOWN")
	CodeInternal       = ErrCodeInternal
	CodeInvalidParam   = ErrCodeBadRequest
	CodeNotFound       = ErrCodeNotFound
	CodeDatabaseError  = ErrCodeDatabaseError
	CodeRefDataMissing = ErrCodeRefDataMissing
	CodeRefDataInvalid = ErrCodeRefDataInvalid
	CodeUnknownField   = ErrCodeUnknownField
	CodeInvalidYear    = ErrCodeInvalidYear
	CodeBatchAborted   = ErrCodeBatchAborted
	CodeConfigInvalid  = ErrCodeConfigInvalid
)

// ErrorCodeHTTPStatus maps ErrorCodes to HTTP status codes.
var ErrorCodeHTTPStatus = map[ErrorCode]int{
	ErrCodeInternal:      http.StatusInternalServerError,
	ErrCodeBadRequest:    http.StatusBadRequest,
	ErrCodeNotFound:      http.StatusNotFound,
	ErrCodeTimeout:       http.StatusGatewayTimeout,
	ErrCodeValidation:    http.StatusUnprocessableEntity,
	ErrCodeDatabaseError: http.StatusInternalServerError,

	ErrCodeRefDataMissing: http.StatusServiceUnavailable,
	ErrCodeRefDataInvalid: http.StatusServiceUnavailable,

	ErrCodeUnknownField:  http.StatusBadRequest,
	ErrCodeInvalidYear:   http.StatusBadRequest,
	ErrCodeBatchAborted:  http.StatusInternalServerError,
	ErrCodeConfigInvalid: http.StatusInternalServerError,
}

// ErrorCodeMessage maps ErrorCodes to default messages.
var ErrorCodeMessage = map[ErrorCode]string{
	ErrCodeInternal:      "internal server error",
	ErrCodeBadRequest:    "bad request",
	ErrCodeNotFound:      "resource not found",
	ErrCodeTimeout:       "request timeout",
	ErrCodeValidation:    "validation failed",
	ErrCodeDatabaseError: "database error",

	ErrCodeRefDataMissing: "reference data file missing",
	ErrCodeRefDataInvalid: "reference data file malformed",

	ErrCodeUnknownField:  "unknown field name",
	ErrCodeInvalidYear:   "invalid application year",
	ErrCodeBatchAborted:  "batch run aborted",
	ErrCodeConfigInvalid: "invalid configuration",
}

// HTTPStatusForCode returns the HTTP status code for an ErrorCode.
func HTTPStatusForCode(code ErrorCode) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DefaultMessageForCode returns the default message for an ErrorCode.
func DefaultMessageForCode(code ErrorCode) string {
	if msg, ok := ErrorCodeMessage[code]; ok {
		return msg
	}
	return "unknown error"
}

// ModuleForCode returns the module prefix of an ErrorCode.
func ModuleForCode(code ErrorCode) string {
	parts := strings.Split(string(code), "_")
	if len(parts) > 0 && parts[0] != "" {
		return parts[0]
	}
	return "UNKNOWN"
}

//Personal.AI order the ending
