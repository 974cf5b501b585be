package platformerrors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAsErrorPreservesType(t *testing.T) {
	ctx := context.Background()

	inner := NewError(ctx, LayerRepository, ErrorTypeNotFound, "conversation not found", nil)
	wrapped := AsError(ctx, LayerDomain, inner, "get conversation")

	assert.Equal(t, ErrorTypeNotFound, wrapped.GetErrorType())
	assert.True(t, IsErrorType(wrapped, ErrorTypeNotFound))
	assert.True(t, errors.Is(wrapped, inner))
}

func TestAsErrorDefaultsToInternal(t *testing.T) {
	wrapped := AsError(context.Background(), LayerDomain, errors.New("socket closed"), "append turns")
	assert.Equal(t, ErrorTypeInternal, wrapped.GetErrorType())
}

func TestAsErrorNil(t *testing.T) {
	assert.Nil(t, AsError(context.Background(), LayerDomain, nil, "noop"))
}

func TestAsErrorThroughFmtWrap(t *testing.T) {
	ctx := context.Background()
	inner := NewError(ctx, LayerRepository, ErrorTypeDatabaseError, "write failed", nil)
	chained := fmt.Errorf("start conversation: %w", inner)

	assert.True(t, IsErrorType(chained, ErrorTypeDatabaseError))
	wrapped := AsError(ctx, LayerDomain, chained, "start conversation")
	assert.Equal(t, ErrorTypeDatabaseError, wrapped.GetErrorType())
}

func TestErrorTypeToHTTPStatus(t *testing.T) {
	tests := []struct {
		errorType ErrorType
		want      int
	}{
		{ErrorTypeNotFound, http.StatusNotFound},
		{ErrorTypeValidation, http.StatusBadRequest},
		{ErrorTypeUnauthorized, http.StatusUnauthorized},
		{ErrorTypeExternal, http.StatusBadGateway},
		{ErrorTypeDatabaseError, http.StatusInternalServerError},
		{ErrorTypeInternal, http.StatusInternalServerError},
		{ErrorType("UNKNOWN"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ErrorTypeToHTTPStatus(tt.errorType), string(tt.errorType))
	}
}

func TestRequestIDPropagation(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-123")
	err := NewError(ctx, LayerHandler, ErrorTypeValidation, "text is required", nil)
	assert.Equal(t, "req-123", err.GetRequestID())
}
