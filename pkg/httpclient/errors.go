package httpclient

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	apperrors "github.com/LQT2201/Book-UIT/pkg/errors"
)

// ParseResponseError reads the body of a non-2xx backend response and
// translates it into an AppError. The bookstore backend reports errors as
// plain-text bodies ("Order not found", "Error updating order: ..."), so the
// status code drives the mapping and the body is kept as detail.
//
// The caller should only invoke this for non-2xx responses. The response body
// is fully consumed and closed.
func ParseResponseError(resp *http.Response, operation string) error {
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // 1 MB limit
	if err != nil {
		return fmt.Errorf("%s: backend returned status %d (failed to read body: %w)", operation, resp.StatusCode, err)
	}

	detail := strings.TrimSpace(string(body))
	if detail == "" {
		detail = http.StatusText(resp.StatusCode)
	}
	message := fmt.Sprintf("%s: %s", operation, detail)

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return &apperrors.AppError{
			Code:    "NOT_FOUND",
			Message: message,
			Status:  http.StatusNotFound,
			Err:     apperrors.ErrNotFound,
		}
	case resp.StatusCode == http.StatusBadRequest:
		return apperrors.InvalidInput(message)
	case resp.StatusCode == http.StatusUnauthorized:
		return apperrors.Unauthorized(message)
	case resp.StatusCode == http.StatusForbidden:
		return apperrors.Forbidden(message)
	case resp.StatusCode == http.StatusConflict:
		return apperrors.Conflict(message)
	case resp.StatusCode == http.StatusUnprocessableEntity:
		return apperrors.PaymentFailed(message)
	case resp.StatusCode >= 500:
		return apperrors.BackendUnavailable(message)
	default:
		return &apperrors.AppError{
			Code:    "BACKEND_ERROR",
			Message: message,
			Status:  resp.StatusCode,
		}
	}
}
