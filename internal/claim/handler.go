package claim

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/fkhayef/giftlist/pkg/middleware"
	"github.com/fkhayef/giftlist/pkg/response"
)

// Handler handles HTTP requests for item claims
type Handler struct {
	service *Service
}

// NewHandler creates a new claim handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for claim endpoints, mounted under /items
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/{id}/claims", h.Query)
	r.Post("/{id}/claims", h.Flag)
	r.Delete("/{id}/claims", h.Unflag)

	return r
}

// ClaimsResponse is what a viewer learns about an item's claims
type ClaimsResponse struct {
	ItemID      int64   `json:"item_id"`
	ClaimantIDs []int64 `json:"claimant_ids"`
	ClaimedByMe bool    `json:"claimed_by_me"`
}

// Query handles GET /items/{id}/claims
// @Summary      List claims on an item
// @Description  Owners and collaborators of the item's wishlist always get an empty list
// @Tags         claims
// @Produce      json
// @Param        id path int true "Item ID"
// @Success      200 {object} response.APIResponse{data=ClaimsResponse}
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /items/{id}/claims [get]
func (h *Handler) Query(w http.ResponseWriter, r *http.Request) {
	itemID, userID, ok := params(w, r)
	if !ok {
		return
	}

	claimants, err := h.service.QueryFlags(r.Context(), itemID, userID)
	if err != nil {
		response.FromError(w, err, "Failed to get claims")
		return
	}

	response.JSON(w, http.StatusOK, toResponse(itemID, userID, claimants))
}

// Flag handles POST /items/{id}/claims
// @Summary      Claim an item
// @Description  Marks that you intend to gift the item. Claiming twice is a no-op.
// @Tags         claims
// @Produce      json
// @Param        id path int true "Item ID"
// @Success      200 {object} response.APIResponse{data=ClaimsResponse}
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Router       /items/{id}/claims [post]
func (h *Handler) Flag(w http.ResponseWriter, r *http.Request) {
	itemID, userID, ok := params(w, r)
	if !ok {
		return
	}

	if err := h.service.Flag(r.Context(), itemID, userID); err != nil {
		response.FromError(w, err, "Failed to claim item")
		return
	}

	claimants, err := h.service.QueryFlags(r.Context(), itemID, userID)
	if err != nil {
		response.FromError(w, err, "Failed to get claims")
		return
	}

	response.JSON(w, http.StatusOK, toResponse(itemID, userID, claimants))
}

// Unflag handles DELETE /items/{id}/claims
// @Summary      Withdraw a claim
// @Tags         claims
// @Produce      json
// @Param        id path int true "Item ID"
// @Success      200 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /items/{id}/claims [delete]
func (h *Handler) Unflag(w http.ResponseWriter, r *http.Request) {
	itemID, userID, ok := params(w, r)
	if !ok {
		return
	}

	if err := h.service.Unflag(r.Context(), itemID, userID); err != nil {
		response.FromError(w, err, "Failed to withdraw claim")
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{"message": "Claim withdrawn"})
}

func params(w http.ResponseWriter, r *http.Request) (itemID, userID int64, ok bool) {
	itemID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid item ID")
		return 0, 0, false
	}

	userID, ok = middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return 0, 0, false
	}
	return itemID, userID, true
}

func toResponse(itemID, userID int64, claimants Claimants) *ClaimsResponse {
	ids := []int64(claimants)
	if ids == nil {
		ids = []int64{}
	}
	return &ClaimsResponse{
		ItemID:      itemID,
		ClaimantIDs: ids,
		ClaimedByMe: claimants.Contains(userID),
	}
}
