package notification

import (
	"context"
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

func newTestServer(t *testing.T) (*Service, http.Handler) {
	t.Helper()
	svc, _ := newTestService()
	r := chi.NewRouter()
	r.Use(middleware.Auth(nil, true))
	r.Mount("/notifications", NewHandler(svc).Routes())
	return svc, r
}

func do(h http.Handler, method, path string, userID int64) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if userID > 0 {
		req.Header.Set(middleware.TestUserHeader, strconv.FormatInt(userID, 10))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHandlerList(t *testing.T) {
	svc, h := newTestServer(t)
	_, err := svc.Create(context.Background(), 1, TypeBirthdayReminder, BirthdayReminderMetadata{DaysUntil: DaysOf(0), FriendName: "Maya"})
	require.NoError(t, err)

	rec := do(h, http.MethodGet, "/notifications", 1)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Success bool       `json:"success"`
		Data    []Rendered `json:"data"`
		Meta    struct {
			Total int `json:"total"`
		} `json:"meta"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.True(t, body.Success)
	assert.Equal(t, 1, body.Meta.Total)
	require.Len(t, body.Data, 1)
	assert.Equal(t, BadgeToday, body.Data[0].View.Badge)
	assert.Equal(t, "Maya's birthday is today. Check their wishlist!", body.Data[0].Message)

	assert.Equal(t, http.StatusUnauthorized, do(h, http.MethodGet, "/notifications", 0).Code)
}

func TestHandlerMarkAsRead(t *testing.T) {
	svc, h := newTestServer(t)
	n, err := svc.Create(context.Background(), 1, TypeFriendRequest, FriendRequestMetadata{RequesterID: 2})
	require.NoError(t, err)
	path := "/notifications/" + strconv.FormatInt(n.ID, 10) + "/read"

	assert.Equal(t, http.StatusForbidden, do(h, http.MethodPost, path, 2).Code)
	assert.Equal(t, http.StatusNotFound, do(h, http.MethodPost, "/notifications/404/read", 1).Code)
	assert.Equal(t, http.StatusBadRequest, do(h, http.MethodPost, "/notifications/abc/read", 1).Code)
	assert.Equal(t, http.StatusOK, do(h, http.MethodPost, path, 1).Code)

	rec := do(h, http.MethodGet, "/notifications/unread-count", 1)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"data":{"unread_count":0}}`, rec.Body.String())
}

func TestHandlerListTypes(t *testing.T) {
	_, h := newTestServer(t)

	rec := do(h, http.MethodGet, "/notifications/types", 1)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"birthday_reminder"`)
	assert.Contains(t, rec.Body.String(), `"ownership_flag"`)
}
