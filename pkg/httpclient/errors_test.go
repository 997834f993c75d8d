package httpclient

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/LQT2201/Book-UIT/pkg/errors"
)

func makeResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func TestParseResponseError_Mapping(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		sentinel error
	}{
		{"not found", http.StatusNotFound, "Order not found", apperrors.ErrNotFound},
		{"bad request", http.StatusBadRequest, "invalid order status", apperrors.ErrInvalidInput},
		{"unauthorized", http.StatusUnauthorized, "token expired", apperrors.ErrUnauthorized},
		{"forbidden", http.StatusForbidden, "admin only", apperrors.ErrForbidden},
		{"conflict", http.StatusConflict, "duplicate order", apperrors.ErrConflict},
		{"payment failed", http.StatusUnprocessableEntity, "payment declined", apperrors.ErrPaymentFailed},
		{"server error", http.StatusInternalServerError, "Error updating order: boom", apperrors.ErrBackendUnavail},
		{"bad gateway", http.StatusBadGateway, "", apperrors.ErrBackendUnavail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ParseResponseError(makeResponse(tt.status, tt.body), "fetch order")
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.sentinel)
		})
	}
}

func TestParseResponseError_KeepsBodyDetail(t *testing.T) {
	err := ParseResponseError(makeResponse(http.StatusInternalServerError, "Error fetching orders: timeout"), "list orders")

	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Contains(t, appErr.Message, "Error fetching orders: timeout")
	assert.Contains(t, appErr.Message, "list orders")
}

func TestParseResponseError_EmptyBodyUsesStatusText(t *testing.T) {
	err := ParseResponseError(makeResponse(http.StatusBadGateway, ""), "sync cart")

	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Contains(t, appErr.Message, "Bad Gateway")
}

func TestParseResponseError_UnmappedStatus(t *testing.T) {
	err := ParseResponseError(makeResponse(http.StatusTeapot, "short and stout"), "fetch book")

	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "BACKEND_ERROR", appErr.Code)
	assert.Equal(t, http.StatusTeapot, appErr.Status)
}
