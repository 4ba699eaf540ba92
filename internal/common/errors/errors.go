// Package errors provides the standardized error taxonomy shared by the
// intake service and the remote gateway.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

// User errors
const (
	ErrCodeEmptyPayload      ErrorCode = "EMPTY_PAYLOAD"
	ErrCodeInvalidPayload    ErrorCode = "INVALID_PAYLOAD"
	ErrCodeTrackUndetermined ErrorCode = "TRACK_UNDETERMINED"
)

// Upstream errors
const (
	ErrCodeTokenExchangeFailed ErrorCode = "TOKEN_EXCHANGE_FAILED"
	ErrCodeRecordCreateFailed  ErrorCode = "RECORD_CREATE_FAILED"
	ErrCodeFileUploadFailed    ErrorCode = "FILE_UPLOAD_FAILED"
	ErrCodeMissingRecordID     ErrorCode = "MISSING_RECORD_ID"
	ErrCodeFieldListFailed     ErrorCode = "FIELD_LIST_FAILED"
)

const ErrCodeInternal ErrorCode = "INTERNAL_ERROR"

// Error categories
const (
	CategoryUser     = "USER"
	CategoryUpstream = "UPSTREAM"
	CategoryInternal = "INTERNAL"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	cause     error
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.PublicMessage())
}

// Unwrap exposes the transport error, if any.
func (e *StandardError) Unwrap() error {
	return e.cause
}

// PublicMessage is the text returned to callers: the message, followed by
// the details when present.
func (e *StandardError) PublicMessage() string {
	if e.Details == "" {
		return e.Message
	}
	return e.Message + ": " + e.Details
}

// ==========================
// 2. Error Constructors
// ==========================

// NewEmptyPayloadError is returned when a submission carries no fields.
func NewEmptyPayloadError() *StandardError {
	return &StandardError{
		Code:      ErrCodeEmptyPayload,
		Message:   "Empty payload",
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidPayloadError is returned when the body cannot be decoded.
func NewInvalidPayloadError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidPayload,
		Message:   "Invalid payload",
		Details:   err.Error(),
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewTrackUndeterminedError is returned when no track can be inferred.
func NewTrackUndeterminedError() *StandardError {
	return &StandardError{
		Code:      ErrCodeTrackUndetermined,
		Message:   "Unable to determine track (Visionary or Mentor)",
		Timestamp: time.Now().UTC(),
	}
}

// NewTokenExchangeFailedError wraps a failed tenant credential exchange.
func NewTokenExchangeFailedError(status int, body string) *StandardError {
	return newUpstreamError(ErrCodeTokenExchangeFailed, "Failed to get tenant_access_token", status, body)
}

// NewRecordCreateFailedError wraps a rejected record creation.
func NewRecordCreateFailedError(status int, body string) *StandardError {
	return newUpstreamError(ErrCodeRecordCreateFailed, "Create record failed", status, body)
}

// NewFileUploadFailedError wraps a rejected or unparseable upload.
func NewFileUploadFailedError(status int, body string) *StandardError {
	return newUpstreamError(ErrCodeFileUploadFailed, "Upload file failed", status, body)
}

// NewFieldListFailedError wraps a failed table field listing.
func NewFieldListFailedError(status int, body string) *StandardError {
	return newUpstreamError(ErrCodeFieldListFailed, "List fields failed", status, body)
}

// NewMissingRecordIDError flags an Application write that reported success
// without issuing a record id.
func NewMissingRecordIDError(tableID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeMissingRecordID,
		Message:   "Missing record_id from Applications create",
		Details:   fmt.Sprintf("tableId: %s", tableID),
		Timestamp: time.Now().UTC(),
	}
}

// NewTransportError wraps a failure to reach the remote service at all.
func NewTransportError(code ErrorCode, operation string, err error) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   fmt.Sprintf("%s request failed", operation),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func newUpstreamError(code ErrorCode, message string, status int, body string) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   fmt.Sprintf("http=%d body=%s", status, body),
		Retryable: status >= http.StatusInternalServerError || status == http.StatusTooManyRequests,
		Metadata:  map[string]interface{}{"httpStatus": status},
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. Classification
// ==========================

// Normalize ensures we always have a StandardError.
func Normalize(err error) *StandardError {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   err.Error(),
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// HasCode reports whether err is a StandardError carrying code.
func HasCode(err error, code ErrorCode) bool {
	var stdErr *StandardError
	return stderrors.As(err, &stdErr) && stdErr.Code == code
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	switch code {
	case ErrCodeEmptyPayload, ErrCodeInvalidPayload, ErrCodeTrackUndetermined:
		return CategoryUser
	case ErrCodeTokenExchangeFailed,
		ErrCodeRecordCreateFailed,
		ErrCodeFileUploadFailed,
		ErrCodeMissingRecordID,
		ErrCodeFieldListFailed:
		return CategoryUpstream
	default:
		return CategoryInternal
	}
}

// HTTPStatus maps an error code to the response status.
func HTTPStatus(code ErrorCode) int {
	if GetErrorCategory(code) == CategoryUser {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
