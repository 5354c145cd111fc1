package wishlist

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fkhayef/giftlist/internal/claim"
	"github.com/fkhayef/giftlist/pkg/middleware"
)

func newTestServer(f *fixture) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Auth(nil, true))
	r.Mount("/wishlists", NewHandler(f.svc).Routes())
	return r
}

func do(h http.Handler, method, path string, userID int64, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(middleware.TestUserHeader, strconv.FormatInt(userID, 10))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHandlerCreateAndGet(t *testing.T) {
	f := newFixture()
	srv := newTestServer(f)

	rec := do(srv, http.MethodPost, "/wishlists", owner, map[string]string{"name": "Winter", "privacy": "public"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var created struct {
		Data WishlistResponse `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&created))
	assert.Equal(t, "friends", string(created.Data.Privacy))
	assert.Equal(t, []int64{}, created.Data.Collaborators)

	path := "/wishlists/" + strconv.FormatInt(created.Data.ID, 10)
	rec = do(srv, http.MethodPost, path+"/items", owner, map[string]string{"name": "Scarf"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var item struct {
		Data Item `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&item))
	f.claims.flags[item.Data.ID] = claim.Claimants{friendA}

	rec = do(srv, http.MethodGet, path, owner, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "claim")
	assert.Contains(t, rec.Body.String(), `"selected_viewers":[]`)

	rec = do(srv, http.MethodGet, path, friendA, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var viewed struct {
		Data struct {
			Items []struct {
				Name        string  `json:"name"`
				ClaimedByMe bool    `json:"claimed_by_me"`
				ClaimantIDs []int64 `json:"claimant_ids"`
			} `json:"items"`
			SelectedViewers []int64 `json:"selected_viewers"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&viewed))
	require.Len(t, viewed.Data.Items, 1)
	assert.Equal(t, "Scarf", viewed.Data.Items[0].Name)
	assert.True(t, viewed.Data.Items[0].ClaimedByMe)
	assert.Equal(t, []int64{friendA}, viewed.Data.Items[0].ClaimantIDs)
	assert.Nil(t, viewed.Data.SelectedViewers)

	assert.Equal(t, http.StatusForbidden, do(srv, http.MethodGet, path, stranger, nil).Code)
	assert.Equal(t, http.StatusNotFound, do(srv, http.MethodGet, "/wishlists/999", owner, nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(srv, http.MethodGet, "/wishlists/abc", owner, nil).Code)
}

func TestHandlerValidationAndPermissions(t *testing.T) {
	f := newFixture()
	srv := newTestServer(f)
	w, _ := f.wishlist(t, "friends")
	path := "/wishlists/" + strconv.FormatInt(w.ID, 10)

	rec := do(srv, http.MethodPost, "/wishlists", owner, map[string]string{"name": "x", "privacy": "everyone"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Equal(t, http.StatusForbidden, do(srv, http.MethodPut, path, friendA, map[string]string{"name": "Mine"}).Code)
	assert.Equal(t, http.StatusForbidden, do(srv, http.MethodPost, path+"/items", friendA, map[string]string{"name": "Socks"}).Code)

	assert.Equal(t, http.StatusBadRequest, do(srv, http.MethodPost, path+"/viewers", owner, map[string]int64{"user_id": stranger}).Code)
	assert.Equal(t, http.StatusBadRequest, do(srv, http.MethodPost, path+"/viewers", owner, map[string]int64{}).Code)

	rec = do(srv, http.MethodPost, path+"/collaborators", owner, map[string]int64{"user_id": collab})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"collaborators":[5]`)

	rec = do(srv, http.MethodDelete, path+"/collaborators/"+strconv.FormatInt(collab, 10), owner, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"collaborators":[]`)

	assert.Equal(t, http.StatusOK, do(srv, http.MethodDelete, path, owner, nil).Code)
	assert.Equal(t, http.StatusNotFound, do(srv, http.MethodGet, path, owner, nil).Code)
}

func TestHandlerListVisible(t *testing.T) {
	f := newFixture()
	srv := newTestServer(f)
	f.wishlist(t, "private")
	f.wishlist(t, "friends")

	var body struct {
		Data []WishlistResponse `json:"data"`
	}
	rec := do(srv, http.MethodGet, "/wishlists?owner_id=1", friendA, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Len(t, body.Data, 1)

	rec = do(srv, http.MethodGet, "/wishlists", owner, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Len(t, body.Data, 2)

	assert.Equal(t, http.StatusBadRequest, do(srv, http.MethodGet, "/wishlists?owner_id=x", owner, nil).Code)
}
