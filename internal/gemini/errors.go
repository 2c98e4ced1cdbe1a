package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/api/googleapi"
	"google.golang.org/genai"

	"github.com/accountant-ai/backend/internal/common"
)

// classifyError translates an SDK/transport error into the service taxonomy.
// Anything the status code does not identify is treated as unavailability,
// which is retryable.
func classifyError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %w", common.ErrUnavailable, err)
	}

	if code, ok := statusCode(err); ok {
		switch {
		case code == http.StatusTooManyRequests:
			return fmt.Errorf("%w: %w", common.ErrRateLimited, err)
		case code == http.StatusUnauthorized || code == http.StatusForbidden:
			return fmt.Errorf("%w: %w", common.ErrUnauthorized, err)
		case code >= 500:
			return fmt.Errorf("%w: %w", common.ErrUnavailable, err)
		case code >= 400:
			return fmt.Errorf("%w: upstream rejected request: %w", common.ErrInvalidResponse, err)
		}
	}

	return fmt.Errorf("%w: %w", common.ErrUnavailable, err)
}

// statusCode digs the HTTP status out of the two error shapes the SDK
// produces.
func statusCode(err error) (int, bool) {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code, true
	}
	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		return gErr.Code, true
	}
	return 0, false
}
