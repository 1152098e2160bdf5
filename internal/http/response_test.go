package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	inErrors "github.com/Alturino/eats/internal/errors"
)

func TestStatusCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{name: "given missing restaurant should be not found", err: inErrors.ErrRestaurantNotFound, expected: http.StatusNotFound},
		{name: "given missing menu item should be not found", err: inErrors.ErrMenuItemNotFound, expected: http.StatusNotFound},
		{name: "given empty cart should be bad request", err: inErrors.ErrEmptyCart, expected: http.StatusBadRequest},
		{name: "given unloaded restaurant should be conflict", err: inErrors.ErrRestaurantNotLoaded, expected: http.StatusConflict},
		{name: "given stale response should be conflict", err: inErrors.ErrStaleResponse, expected: http.StatusConflict},
		{name: "given open breaker should be unavailable", err: gobreaker.ErrOpenState, expected: http.StatusServiceUnavailable},
		{name: "given empty redirect should be bad gateway", err: inErrors.ErrEmptyRedirect, expected: http.StatusBadGateway},
		{
			name:     "given wrapped upstream error should be bad gateway",
			err:      fmt.Errorf("failed fetching with error=%w", inErrors.ErrUpstream),
			expected: http.StatusBadGateway,
		},
		{name: "given unknown error should be internal", err: errors.New("boom"), expected: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, StatusCode(tt.err))
		})
	}
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(context.Background(), rec, inErrors.ErrEmptyCart)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := map[string]interface{}{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "failed", body["status"])
	assert.EqualValues(t, http.StatusBadRequest, body["statusCode"])
	assert.Equal(t, inErrors.ErrEmptyCart.Error(), body["message"])
}
