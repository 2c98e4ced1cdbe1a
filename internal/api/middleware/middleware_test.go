package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/accountant-ai/backend/internal/common"
)

func TestStatusFromError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", common.ErrValidation, http.StatusBadRequest},
		{"not found", common.ErrNotFound, http.StatusNotFound},
		{"rate limited", common.ErrRateLimited, http.StatusTooManyRequests},
		{"extraction incomplete", common.ErrExtractionIncomplete, http.StatusUnprocessableEntity},
		{"unauthorized upstream", common.ErrUnauthorized, http.StatusBadGateway},
		{"unavailable", common.ErrUnavailable, http.StatusBadGateway},
		{"invalid response", common.ErrInvalidResponse, http.StatusBadGateway},
		{"wrapped", fmt.Errorf("handler: %w", common.ErrRateLimited), http.StatusTooManyRequests},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusFromError(tt.err))
		})
	}
}

// Internal errors must not leak their details to the client.
func TestWriteTaxonomyErrorHidesInternals(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteTaxonomyError(rec, errors.New("pq: connection refused on 10.0.0.3"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "10.0.0.3")
}

func TestWriteTaxonomyErrorPassesThroughClientErrors(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteTaxonomyError(rec, common.Validationf("user_id is required"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "user_id is required")
}

func TestRecoveryConvertsPanic(t *testing.T) {
	handler := Recovery(zerolog.Nop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRequestIDAssigned(t *testing.T) {
	var got string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = w.Header().Get("X-Request-ID")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.NotEmpty(t, got)
	assert.Equal(t, got, rec.Header().Get("X-Request-ID"))
}

func TestCORSPreflight(t *testing.T) {
	handler := CORS(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("preflight must not reach the next handler")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/chat", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
