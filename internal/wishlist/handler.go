package wishlist

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/fkhayef/giftlist/pkg/middleware"
	"github.com/fkhayef/giftlist/pkg/response"
)

// Handler handles HTTP requests for wishlist operations
type Handler struct {
	service *Service
}

// NewHandler creates a new wishlist handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for wishlist endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{id}", h.GetByID)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)

	// Joint ownership and selected friends
	r.Post("/{id}/collaborators", h.AddCollaborator)
	r.Delete("/{id}/collaborators/{userId}", h.RemoveCollaborator)
	r.Post("/{id}/viewers", h.SelectViewer)
	r.Delete("/{id}/viewers/{userId}", h.UnselectViewer)

	// Items
	r.Post("/{id}/items", h.AddItem)
	r.Put("/{id}/items/{itemId}", h.UpdateItem)
	r.Delete("/{id}/items/{itemId}", h.DeleteItem)

	return r
}

// Create handles POST /wishlists
// @Summary      Create a wishlist
// @Description  Privacy defaults to friends; the legacy value public is stored as friends
// @Tags         wishlists
// @Accept       json
// @Produce      json
// @Param        request body CreateWishlistRequest true "Wishlist creation request"
// @Success      201 {object} response.APIResponse{data=WishlistResponse}
// @Failure      400 {object} response.APIResponse
// @Router       /wishlists [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	var req CreateWishlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	wl, err := h.service.Create(r.Context(), userID, &req)
	if err != nil {
		response.FromError(w, err, "Failed to create wishlist")
		return
	}

	response.JSON(w, http.StatusCreated, wl.ToResponse())
}

// List handles GET /wishlists
// @Summary      List wishlists
// @Description  Without owner_id: wishlists you own or collaborate on. With owner_id: that user's wishlists you may see.
// @Tags         wishlists
// @Produce      json
// @Param        owner_id query int false "Owner user ID"
// @Success      200 {object} response.APIResponse{data=[]WishlistResponse}
// @Router       /wishlists [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	var (
		lists []*Wishlist
		err   error
	)
	if ownerStr := r.URL.Query().Get("owner_id"); ownerStr != "" {
		ownerID, perr := strconv.ParseInt(ownerStr, 10, 64)
		if perr != nil {
			response.BadRequest(w, "Invalid owner ID")
			return
		}
		lists, err = h.service.ListVisible(r.Context(), userID, ownerID)
	} else {
		lists, err = h.service.ListMine(r.Context(), userID)
	}
	if err != nil {
		response.InternalError(w, "Failed to list wishlists")
		return
	}

	resp := make([]*WishlistResponse, len(lists))
	for i, wl := range lists {
		resp[i] = wl.ToResponse()
	}

	response.JSON(w, http.StatusOK, resp)
}

// GetByID handles GET /wishlists/{id}
// @Summary      Get a wishlist with items
// @Description  Owners and collaborators get items without claimant identity; friends get claimants
// @Tags         wishlists
// @Produce      json
// @Param        id path int true "Wishlist ID"
// @Success      200 {object} response.APIResponse{data=ViewerWishlistResponse}
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /wishlists/{id} [get]
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, userID, ok := params(w, r, "id")
	if !ok {
		return
	}

	detail, err := h.service.Get(r.Context(), userID, id)
	if err != nil {
		response.FromError(w, err, "Failed to get wishlist")
		return
	}

	response.JSON(w, http.StatusOK, detail.ToResponse())
}

// Update handles PUT /wishlists/{id}
// @Summary      Update a wishlist
// @Tags         wishlists
// @Accept       json
// @Produce      json
// @Param        id path int true "Wishlist ID"
// @Param        request body UpdateWishlistRequest true "Wishlist update request"
// @Success      200 {object} response.APIResponse{data=WishlistResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Router       /wishlists/{id} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, userID, ok := params(w, r, "id")
	if !ok {
		return
	}

	var req UpdateWishlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	wl, err := h.service.Update(r.Context(), userID, id, &req)
	if err != nil {
		response.FromError(w, err, "Failed to update wishlist")
		return
	}

	response.JSON(w, http.StatusOK, wl.ToResponse())
}

// Delete handles DELETE /wishlists/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, userID, ok := params(w, r, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), userID, id); err != nil {
		response.FromError(w, err, "Failed to delete wishlist")
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{"message": "Wishlist deleted successfully"})
}

// AddCollaborator handles POST /wishlists/{id}/collaborators
// @Summary      Add a collaborator
// @Tags         wishlists
// @Accept       json
// @Produce      json
// @Param        id path int true "Wishlist ID"
// @Param        request body UserRequest true "Friend to add"
// @Success      200 {object} response.APIResponse{data=WishlistResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Router       /wishlists/{id}/collaborators [post]
func (h *Handler) AddCollaborator(w http.ResponseWriter, r *http.Request) {
	h.member(w, r, h.service.AddCollaborator)
}

// RemoveCollaborator handles DELETE /wishlists/{id}/collaborators/{userId}
func (h *Handler) RemoveCollaborator(w http.ResponseWriter, r *http.Request) {
	h.memberByPath(w, r, h.service.RemoveCollaborator)
}

// SelectViewer handles POST /wishlists/{id}/viewers
// @Summary      Select a friend for a selected_friends wishlist
// @Tags         wishlists
// @Accept       json
// @Produce      json
// @Param        id path int true "Wishlist ID"
// @Param        request body UserRequest true "Friend to select"
// @Success      200 {object} response.APIResponse{data=WishlistResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Router       /wishlists/{id}/viewers [post]
func (h *Handler) SelectViewer(w http.ResponseWriter, r *http.Request) {
	h.member(w, r, h.service.SelectViewer)
}

// UnselectViewer handles DELETE /wishlists/{id}/viewers/{userId}
func (h *Handler) UnselectViewer(w http.ResponseWriter, r *http.Request) {
	h.memberByPath(w, r, h.service.UnselectViewer)
}

type memberOp func(ctx context.Context, userID, id, memberID int64) (*Wishlist, error)

func (h *Handler) member(w http.ResponseWriter, r *http.Request, op memberOp) {
	id, userID, ok := params(w, r, "id")
	if !ok {
		return
	}

	var req UserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID <= 0 {
		response.BadRequest(w, "Invalid request body")
		return
	}

	h.runMemberOp(w, r, op, userID, id, req.UserID)
}

func (h *Handler) memberByPath(w http.ResponseWriter, r *http.Request, op memberOp) {
	id, userID, ok := params(w, r, "id")
	if !ok {
		return
	}

	memberID, err := strconv.ParseInt(chi.URLParam(r, "userId"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid user ID")
		return
	}

	h.runMemberOp(w, r, op, userID, id, memberID)
}

func (h *Handler) runMemberOp(w http.ResponseWriter, r *http.Request, op memberOp, userID, id, memberID int64) {
	wl, err := op(r.Context(), userID, id, memberID)
	if err != nil {
		response.FromError(w, err, "Failed to update wishlist members")
		return
	}
	if wl == nil {
		response.NotFound(w, ErrWishlistNotFound.Error())
		return
	}

	response.JSON(w, http.StatusOK, wl.ToResponse())
}

// AddItem handles POST /wishlists/{id}/items
// @Summary      Add an item
// @Tags         items
// @Accept       json
// @Produce      json
// @Param        id path int true "Wishlist ID"
// @Param        request body CreateItemRequest true "Item"
// @Success      201 {object} response.APIResponse{data=Item}
// @Failure      400 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Router       /wishlists/{id}/items [post]
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	id, userID, ok := params(w, r, "id")
	if !ok {
		return
	}

	var req CreateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	item, err := h.service.AddItem(r.Context(), userID, id, &req)
	if err != nil {
		response.FromError(w, err, "Failed to add item")
		return
	}

	response.JSON(w, http.StatusCreated, item)
}

// UpdateItem handles PUT /wishlists/{id}/items/{itemId}
// @Summary      Update an item
// @Tags         items
// @Accept       json
// @Produce      json
// @Param        id path int true "Wishlist ID"
// @Param        itemId path int true "Item ID"
// @Param        request body UpdateItemRequest true "Item update"
// @Success      200 {object} response.APIResponse{data=Item}
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /wishlists/{id}/items/{itemId} [put]
func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id, userID, ok := params(w, r, "id")
	if !ok {
		return
	}
	itemID, err := strconv.ParseInt(chi.URLParam(r, "itemId"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid item ID")
		return
	}

	var req UpdateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	item, err := h.service.UpdateItem(r.Context(), userID, id, itemID, &req)
	if err != nil {
		response.FromError(w, err, "Failed to update item")
		return
	}

	response.JSON(w, http.StatusOK, item)
}

// DeleteItem handles DELETE /wishlists/{id}/items/{itemId}
func (h *Handler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	id, userID, ok := params(w, r, "id")
	if !ok {
		return
	}
	itemID, err := strconv.ParseInt(chi.URLParam(r, "itemId"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid item ID")
		return
	}

	if err := h.service.DeleteItem(r.Context(), userID, id, itemID); err != nil {
		response.FromError(w, err, "Failed to delete item")
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{"message": "Item deleted successfully"})
}

func params(w http.ResponseWriter, r *http.Request, key string) (id, userID int64, ok bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, key), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid wishlist ID")
		return 0, 0, false
	}

	userID, ok = middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return 0, 0, false
	}
	return id, userID, true
}
