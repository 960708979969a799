package models

import "fmt"

// Error codes used in API responses and internal error handling.
const (
	ErrCodeMissingURL   = "MISSING_URL"
	ErrCodeInvalidURL   = "INVALID_URL"
	ErrCodeInvalidBody  = "INVALID_REQUEST"
	ErrCodeExtraction   = "EXTRACTION_FAILED"
	ErrCodeRateLimited  = "RATE_LIMITED"
	ErrCodeUnauthorized = "UNAUTHORIZED"

	// Session-level codes. The /api/extract handler folds all of these into
	// ErrCodeExtraction; they survive in logs and in development details.
	ErrCodeNavTimeout    = "NAVIGATION_TIMEOUT"
	ErrCodeNavigation    = "NAVIGATION_FAILED"
	ErrCodeBrowserLaunch = "BROWSER_LAUNCH_FAILED"
	ErrCodeInspection    = "INSPECTION_FAILED"
	ErrCodeFetch         = "FETCH_FAILED"
	ErrCodeCanceled      = "REQUEST_CANCELED"
)

// ErrorDetail is the structured error in API responses.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// ExtractError is the internal error type carrying an error code.
// It implements the error interface and supports error wrapping via Unwrap.
type ExtractError struct {
	Code    string
	Message string
	Err     error // wrapped original error
}

func (e *ExtractError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ExtractError) Unwrap() error {
	return e.Err
}

// NewExtractError creates a new ExtractError.
func NewExtractError(code, message string, err error) *ExtractError {
	return &ExtractError{Code: code, Message: message, Err: err}
}

// ToDetail converts an internal error to an API-facing ErrorDetail.
func (e *ExtractError) ToDetail() *ErrorDetail {
	return &ErrorDetail{Code: e.Code, Message: e.Message}
}
