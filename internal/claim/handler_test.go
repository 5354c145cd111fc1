package claim

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fkhayef/giftlist/pkg/middleware"
)

func serve(h http.Handler, method, path string, userID int64) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	req.Header.Set(middleware.TestUserHeader, strconv.FormatInt(userID, 10))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHandler(t *testing.T) {
	svc, _, _ := setup(false)
	r := chi.NewRouter()
	r.Use(middleware.Auth(nil, true))
	r.Mount("/items", NewHandler(svc).Routes())

	path := "/items/" + strconv.FormatInt(itemID, 10) + "/claims"

	rec := serve(r, http.MethodPost, path, friendA)
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Data ClaimsResponse `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.True(t, body.Data.ClaimedByMe)
	assert.Equal(t, []int64{friendA}, body.Data.ClaimantIDs)

	rec = serve(r, http.MethodGet, path, owner)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"data":{"item_id":100,"claimant_ids":[],"claimed_by_me":false}}`, rec.Body.String())

	assert.Equal(t, http.StatusConflict, serve(r, http.MethodPost, path, owner).Code)
	assert.Equal(t, http.StatusForbidden, serve(r, http.MethodGet, path, stranger).Code)
	assert.Equal(t, http.StatusNotFound, serve(r, http.MethodPost, "/items/999/claims", friendA).Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodDelete, path, friendA).Code)
}
