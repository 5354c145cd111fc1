package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fkhayef/giftlist/internal/domain"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var resp APIResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestFromError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"not found", fmt.Errorf("item: %w", domain.ErrNotFound), http.StatusNotFound, "NOT_FOUND"},
		{"conflict", fmt.Errorf("self claim: %w", domain.ErrConflict), http.StatusConflict, "CONFLICT"},
		{"forbidden", domain.ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
		{"unauthorized", domain.ErrUnauthorized, http.StatusForbidden, "FORBIDDEN"},
		{"validation", domain.NewValidationError("name", "required"), http.StatusBadRequest, "VALIDATION_ERROR"},
		{"other", errors.New("pq: connection refused"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			FromError(rec, tt.err, "Something failed")

			assert.Equal(t, tt.status, rec.Code)
			resp := decode(t, rec)
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
		})
	}
}

func TestFromError_HidesInternalMessage(t *testing.T) {
	rec := httptest.NewRecorder()
	FromError(rec, errors.New("pq: password authentication failed"), "Failed to load wishlist")

	resp := decode(t, rec)
	assert.Equal(t, "Failed to load wishlist", resp.Error.Message)
}

func TestFromError_ValidationFields(t *testing.T) {
	rec := httptest.NewRecorder()
	FromError(rec, domain.NewValidationError("privacy", "unknown mode"), "x")

	resp := decode(t, rec)
	require.Len(t, resp.Error.Fields, 1)
	assert.Equal(t, "privacy", resp.Error.Fields[0].Field)
}

func TestJSONWithMeta(t *testing.T) {
	rec := httptest.NewRecorder()
	JSONWithMeta(rec, http.StatusOK, []int{1, 2}, NewMeta(2, 20, 41))

	resp := decode(t, rec)
	assert.True(t, resp.Success)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, 3, resp.Meta.TotalPages)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}
