package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		code     ErrorCode
		status   int
		category string
	}{
		{ErrCodeEmptyPayload, http.StatusBadRequest, CategoryUser},
		{ErrCodeInvalidPayload, http.StatusBadRequest, CategoryUser},
		{ErrCodeTrackUndetermined, http.StatusBadRequest, CategoryUser},
		{ErrCodeTokenExchangeFailed, http.StatusInternalServerError, CategoryUpstream},
		{ErrCodeRecordCreateFailed, http.StatusInternalServerError, CategoryUpstream},
		{ErrCodeFileUploadFailed, http.StatusInternalServerError, CategoryUpstream},
		{ErrCodeMissingRecordID, http.StatusInternalServerError, CategoryUpstream},
		{ErrCodeInternal, http.StatusInternalServerError, CategoryInternal},
		{"SOMETHING_ELSE", http.StatusInternalServerError, CategoryInternal},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.status, HTTPStatus(tt.code))
			assert.Equal(t, tt.category, GetErrorCategory(tt.code))
		})
	}
}

func TestUpstreamError_EmbedsStatusAndBody(t *testing.T) {
	err := NewRecordCreateFailedError(http.StatusOK, `{"code":1254045,"msg":"FieldNameNotFound"}`)

	assert.Equal(t, ErrCodeRecordCreateFailed, err.Code)
	assert.Equal(t, `Create record failed: http=200 body={"code":1254045,"msg":"FieldNameNotFound"}`, err.PublicMessage())
	assert.False(t, err.Retryable)

	assert.True(t, NewTokenExchangeFailedError(http.StatusBadGateway, "").Retryable)
}

func TestNormalize(t *testing.T) {
	std := NewEmptyPayloadError()
	wrapped := fmt.Errorf("submit: %w", std)

	assert.Same(t, std, Normalize(wrapped))
	assert.True(t, HasCode(wrapped, ErrCodeEmptyPayload))
	assert.Equal(t, "Empty payload", Normalize(wrapped).PublicMessage())

	plain := Normalize(fmt.Errorf("boom"))
	require.NotNil(t, plain)
	assert.Equal(t, ErrCodeInternal, plain.Code)
	assert.Equal(t, "boom", plain.PublicMessage())
}

func TestTransportError_Unwraps(t *testing.T) {
	cause := fmt.Errorf("dial tcp: connection refused")
	err := NewTransportError(ErrCodeTokenExchangeFailed, "tenant_access_token", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "TOKEN_EXCHANGE_FAILED")
}
