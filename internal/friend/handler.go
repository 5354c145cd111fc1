package friend

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/fkhayef/giftlist/pkg/middleware"
	"github.com/fkhayef/giftlist/pkg/response"
)

// Handler handles HTTP requests for friend operations
type Handler struct {
	service *Service
}

// NewHandler creates a new friend handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for friend endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)
	r.Delete("/{userId}", h.Remove)

	r.Get("/requests", h.ListPending)
	r.Post("/requests", h.SendRequest)
	r.Post("/requests/{id}/accept", h.Accept)
	r.Delete("/requests/{id}", h.Decline)

	return r
}

// List handles GET /friends
// @Summary      List my friends
// @Tags         friends
// @Produce      json
// @Success      200 {object} response.APIResponse{data=[]FriendResponse}
// @Router       /friends [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	friends, err := h.service.ListFriends(r.Context(), userID)
	if err != nil {
		response.InternalError(w, "Failed to list friends")
		return
	}

	resp := make([]*FriendResponse, len(friends))
	for i, f := range friends {
		resp[i] = f.ToResponse()
	}

	response.JSON(w, http.StatusOK, resp)
}

// Remove handles DELETE /friends/{userId}
// @Summary      Remove a friend
// @Description  Ends the friendship and removes both users from each other's selected viewers
// @Tags         friends
// @Produce      json
// @Param        userId path int true "Friend's user ID"
// @Success      200 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /friends/{userId} [delete]
func (h *Handler) Remove(w http.ResponseWriter, r *http.Request) {
	friendID, err := strconv.ParseInt(chi.URLParam(r, "userId"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid user ID")
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	if err := h.service.Remove(r.Context(), userID, friendID); err != nil {
		response.FromError(w, err, "Failed to remove friend")
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{"message": "Friend removed"})
}

// ListPending handles GET /friends/requests
// @Summary      List incoming friend requests
// @Tags         friends
// @Produce      json
// @Success      200 {object} response.APIResponse{data=[]FriendshipResponse}
// @Router       /friends/requests [get]
func (h *Handler) ListPending(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	requests, err := h.service.ListPending(r.Context(), userID)
	if err != nil {
		response.InternalError(w, "Failed to list friend requests")
		return
	}

	resp := make([]*FriendshipResponse, len(requests))
	for i, f := range requests {
		resp[i] = f.ToResponse()
	}

	response.JSON(w, http.StatusOK, resp)
}

// SendRequest handles POST /friends/requests
// @Summary      Send a friend request
// @Tags         friends
// @Accept       json
// @Produce      json
// @Param        request body SendRequestRequest true "Addressee"
// @Success      201 {object} response.APIResponse{data=FriendshipResponse}
// @Failure      404 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Router       /friends/requests [post]
func (h *Handler) SendRequest(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	var req SendRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID <= 0 {
		response.BadRequest(w, "Invalid request body")
		return
	}

	f, err := h.service.SendRequest(r.Context(), userID, req.UserID)
	if err != nil {
		response.FromError(w, err, "Failed to send friend request")
		return
	}

	response.JSON(w, http.StatusCreated, f.ToResponse())
}

// Accept handles POST /friends/requests/{id}/accept
// @Summary      Accept a friend request
// @Tags         friends
// @Produce      json
// @Param        id path int true "Request ID"
// @Success      200 {object} response.APIResponse{data=FriendshipResponse}
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /friends/requests/{id}/accept [post]
func (h *Handler) Accept(w http.ResponseWriter, r *http.Request) {
	requestID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid request ID")
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	f, err := h.service.Accept(r.Context(), userID, requestID)
	if err != nil {
		response.FromError(w, err, "Failed to accept friend request")
		return
	}

	response.JSON(w, http.StatusOK, f.ToResponse())
}

// Decline handles DELETE /friends/requests/{id}
func (h *Handler) Decline(w http.ResponseWriter, r *http.Request) {
	requestID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid request ID")
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	if err := h.service.Decline(r.Context(), userID, requestID); err != nil {
		response.FromError(w, err, "Failed to decline friend request")
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{"message": "Friend request removed"})
}
