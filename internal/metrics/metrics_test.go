package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPMiddleware_UsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(HTTPMiddleware)
	r.Get("/wishlists/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodGet, "/wishlists/{id}", "404"))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/wishlists/42", nil))

	after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodGet, "/wishlists/{id}", "404"))
	assert.Equal(t, before+1, after)
}

func TestIncNotificationRendered(t *testing.T) {
	before := testutil.ToFloat64(notificationsRenderedTotal.WithLabelValues("legacy_x", "fallback"))
	IncNotificationRendered("legacy_x", true)
	assert.Equal(t, before+1, testutil.ToFloat64(notificationsRenderedTotal.WithLabelValues("legacy_x", "fallback")))
}

func TestHandler_Exposes(t *testing.T) {
	IncOwnershipFlag("flag", "created")

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "giftlist_ownership_flag_operations_total"))
}
