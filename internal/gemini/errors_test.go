package gemini

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
	"google.golang.org/genai"

	"github.com/accountant-ai/backend/internal/common"
)

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"rate limited", genai.APIError{Code: 429, Message: "quota"}, common.ErrRateLimited},
		{"unauthorized", genai.APIError{Code: 401, Message: "bad key"}, common.ErrUnauthorized},
		{"forbidden", genai.APIError{Code: 403, Message: "denied"}, common.ErrUnauthorized},
		{"server error", genai.APIError{Code: 500, Message: "boom"}, common.ErrUnavailable},
		{"bad gateway", genai.APIError{Code: 502, Message: "upstream"}, common.ErrUnavailable},
		{"bad request", genai.APIError{Code: 400, Message: "invalid"}, common.ErrInvalidResponse},
		{"googleapi rate limited", &googleapi.Error{Code: 429}, common.ErrRateLimited},
		{"deadline", context.DeadlineExceeded, common.ErrUnavailable},
		{"canceled", context.Canceled, common.ErrUnavailable},
		{"wrapped deadline", fmt.Errorf("call: %w", context.DeadlineExceeded), common.ErrUnavailable},
		{"unknown", errors.New("connection reset"), common.ErrUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifyError(tt.err)
			require.Error(t, got)
			assert.ErrorIs(t, got, tt.want)
		})
	}
}

func TestClassifyErrorNil(t *testing.T) {
	assert.NoError(t, classifyError(nil))
}

// Unauthorized and invalid-response outcomes must never be retried;
// rate limits and unavailability must be.
func TestClassifiedErrorsRetryability(t *testing.T) {
	assert.False(t, common.IsRetryable(classifyError(genai.APIError{Code: 401})))
	assert.False(t, common.IsRetryable(classifyError(genai.APIError{Code: 400})))
	assert.True(t, common.IsRetryable(classifyError(genai.APIError{Code: 429})))
	assert.True(t, common.IsRetryable(classifyError(genai.APIError{Code: 503})))
}
