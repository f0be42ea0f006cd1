package errors

import (
	"net/http"
	"strings"
)

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common error codes
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeNotFound           ErrorCode = "COMMON_003"
	ErrCodeConflict           ErrorCode = "COMMON_004"
	ErrCodeTimeout            ErrorCode = "COMMON_005"
	ErrCodeValidation         ErrorCode = "COMMON_006"
	ErrCodeSerialization      ErrorCode = "COMMON_007"
	ErrCodeDatabaseError      ErrorCode = "COMMON_008"
	ErrCodeCacheError         ErrorCode = "COMMON_009"
	ErrCodeExternalService    ErrorCode = "COMMON_010"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_011"
	ErrCodeStorageError       ErrorCode = "COMMON_012"
	ErrCodeMessageQueueError  ErrorCode = "COMMON_013"
)

// Sentinel codes used by chain-inspection helpers.
const (
	CodeOK      = ErrorCode("OK")
	CodeUnknown = ErrorCode("UNKNOWN")
)

// Trademark extraction module error codes
const (
	ErrCodeExtractionFailed ErrorCode = "TM_001"
	ErrCodeNoRecordsFound   ErrorCode = "TM_002"
	ErrCodeRecordNotFound   ErrorCode = "TM_003"
	ErrCodeRecordInvalid    ErrorCode = "TM_004"
	ErrCodeDocumentNotFound ErrorCode = "TM_005"
	ErrCodeDocumentTooLarge ErrorCode = "TM_006"
	ErrCodeDocumentEmpty    ErrorCode = "TM_007"
	ErrCodeIndexingFailed   ErrorCode = "TM_008"
)

// Similarity module error codes
const (
	ErrCodeSimilaritySearchFailed ErrorCode = "SIM_001"
	ErrCodeThresholdInvalid       ErrorCode = "SIM_002"
	ErrCodeEmbeddingFailed        ErrorCode = "SIM_003"
	ErrCodeDimensionMismatch      ErrorCode = "SIM_004"
	ErrCodeAnalysisTimeout        ErrorCode = "SIM_005"
	ErrCodeEmptyQuery             ErrorCode = "SIM_006"
	ErrCodeReportFailed           ErrorCode = "SIM_007"
)

// ErrorCodeHTTPStatus maps ErrorCodes to HTTP status codes.
var ErrorCodeHTTPStatus = map[ErrorCode]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeConflict:           http.StatusConflict,
	ErrCodeTimeout:            http.StatusGatewayTimeout,
	ErrCodeValidation:         http.StatusUnprocessableEntity,
	ErrCodeSerialization:      http.StatusInternalServerError,
	ErrCodeDatabaseError:      http.StatusInternalServerError,
	ErrCodeCacheError:         http.StatusInternalServerError,
	ErrCodeExternalService:    http.StatusBadGateway,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeStorageError:       http.StatusInternalServerError,
	ErrCodeMessageQueueError:  http.StatusInternalServerError,

	ErrCodeExtractionFailed: http.StatusUnprocessableEntity,
	ErrCodeNoRecordsFound:   http.StatusUnprocessableEntity,
	ErrCodeRecordNotFound:   http.StatusNotFound,
	ErrCodeRecordInvalid:    http.StatusUnprocessableEntity,
	ErrCodeDocumentNotFound: http.StatusNotFound,
	ErrCodeDocumentTooLarge: http.StatusRequestEntityTooLarge,
	ErrCodeDocumentEmpty:    http.StatusBadRequest,
	ErrCodeIndexingFailed:   http.StatusInternalServerError,

	ErrCodeSimilaritySearchFailed: http.StatusInternalServerError,
	ErrCodeThresholdInvalid:       http.StatusBadRequest,
	ErrCodeEmbeddingFailed:        http.StatusBadGateway,
	ErrCodeDimensionMismatch:      http.StatusInternalServerError,
	ErrCodeAnalysisTimeout:        http.StatusGatewayTimeout,
	ErrCodeEmptyQuery:             http.StatusBadRequest,
	ErrCodeReportFailed:           http.StatusInternalServerError,
}

// ErrorCodeMessage maps ErrorCodes to default messages.
var ErrorCodeMessage = map[ErrorCode]string{
	ErrCodeInternal:           "internal server error",
	ErrCodeBadRequest:         "bad request",
	ErrCodeNotFound:           "resource not found",
	ErrCodeConflict:           "resource conflict",
	ErrCodeTimeout:            "request timeout",
	ErrCodeValidation:         "validation failed",
	ErrCodeSerialization:      "serialization failed",
	ErrCodeDatabaseError:      "database error",
	ErrCodeCacheError:         "cache error",
	ErrCodeExternalService:    "external service error",
	ErrCodeServiceUnavailable: "service unavailable",
	ErrCodeStorageError:       "object storage error",
	ErrCodeMessageQueueError:  "message queue error",

	ErrCodeExtractionFailed: "failed to extract trademark records",
	ErrCodeNoRecordsFound:   "no valid trademark records found in document",
	ErrCodeRecordNotFound:   "trademark record not found",
	ErrCodeRecordInvalid:    "trademark record failed validation",
	ErrCodeDocumentNotFound: "document not found",
	ErrCodeDocumentTooLarge: "document exceeds size limit",
	ErrCodeDocumentEmpty:    "document contains no extractable text",
	ErrCodeIndexingFailed:   "failed to index document chunks",

	ErrCodeSimilaritySearchFailed: "similarity search failed",
	ErrCodeThresholdInvalid:       "invalid similarity threshold",
	ErrCodeEmbeddingFailed:        "embedding generation failed",
	ErrCodeDimensionMismatch:      "embedding dimension mismatch",
	ErrCodeAnalysisTimeout:        "similarity analysis timed out",
	ErrCodeEmptyQuery:             "query trademark name must not be empty",
	ErrCodeReportFailed:           "failed to generate similarity report",
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

// IsClientError returns true if the ErrorCode corresponds to a 4xx HTTP status.
func IsClientError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 400 && status < 500
}

// IsServerError returns true if the ErrorCode corresponds to a 5xx HTTP status.
func IsServerError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 500 && status < 600
}

// ModuleForCode returns the module prefix of an ErrorCode, e.g. "TM" or "SIM".
func ModuleForCode(code ErrorCode) string {
	parts := strings.Split(string(code), "_")
	if len(parts) > 0 && parts[0] != "" {
		return parts[0]
	}
	return "UNKNOWN"
}
