package wishlist

import (
	"fmt"
	"strings"

	"github.com/fkhayef/giftlist/internal/domain"
	"github.com/fkhayef/giftlist/internal/privacy"
)

// CreateWishlistRequest represents the request to create a wishlist
type CreateWishlistRequest struct {
	Name    string `json:"name" validate:"required,min=1,max=100"`
	Privacy string `json:"privacy,omitempty" enums:"private,friends,selected_friends,public"`
}

// UpdateWishlistRequest represents the request to update a wishlist
type UpdateWishlistRequest struct {
	Name    *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Privacy *string `json:"privacy,omitempty" enums:"private,friends,selected_friends,public"`
}

// UserRequest names another user: a collaborator or a selected viewer
type UserRequest struct {
	UserID int64 `json:"user_id" validate:"required"`
}

// CreateItemRequest represents the request to add an item
type CreateItemRequest struct {
	Name  string  `json:"name" validate:"required,min=1,max=200"`
	Link  *string `json:"link,omitempty"`
	Price *string `json:"price,omitempty"`
	Notes *string `json:"notes,omitempty"`
}

// UpdateItemRequest represents the request to update an item
type UpdateItemRequest struct {
	Name     *string `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Link     *string `json:"link,omitempty"`
	Price    *string `json:"price,omitempty"`
	Notes    *string `json:"notes,omitempty"`
	Position *int    `json:"position,omitempty"`
}

func validateName(field, name string, max int) *domain.FieldError {
	if n := len(strings.TrimSpace(name)); n < 1 || n > max {
		return &domain.FieldError{Field: field, Message: fmt.Sprintf("must be 1-%d characters", max)}
	}
	return nil
}

// parsePrivacy maps an optional submitted mode to the value that is stored.
// Empty means friends.
func parsePrivacy(s string) (privacy.Mode, *domain.FieldError) {
	if s == "" {
		return privacy.ModeFriends, nil
	}
	m, err := privacy.ParseMode(s)
	if err != nil {
		return "", &domain.FieldError{Field: "privacy", Message: "must be one of private, friends, selected_friends"}
	}
	return m.Normalize(), nil
}

func fieldErrors(errs ...*domain.FieldError) error {
	var out []domain.FieldError
	for _, e := range errs {
		if e != nil {
			out = append(out, *e)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return &domain.ValidationError{Errors: out}
}

// WishlistResponse is the part of a wishlist everybody who can see it gets
type WishlistResponse struct {
	ID            int64        `json:"id"`
	OwnerID       int64        `json:"owner_id"`
	Name          string       `json:"name"`
	Privacy       privacy.Mode `json:"privacy"`
	Collaborators []int64      `json:"collaborators"`
	CreatedAt     string       `json:"created_at"`
	UpdatedAt     string       `json:"updated_at"`
}

// OwnerWishlistResponse is a wishlist as its owner or a collaborator sees it
type OwnerWishlistResponse struct {
	WishlistResponse
	SelectedViewers []int64          `json:"selected_viewers"`
	Items           []*OwnerItemView `json:"items"`
}

// ViewerWishlistResponse is a wishlist as a friend sees it
type ViewerWishlistResponse struct {
	WishlistResponse
	Items []*ViewerItemView `json:"items"`
}

// ToResponse converts a Wishlist model to a WishlistResponse DTO
func (w *Wishlist) ToResponse() *WishlistResponse {
	collaborators := w.Collaborators
	if collaborators == nil {
		collaborators = []int64{}
	}
	return &WishlistResponse{
		ID:            w.ID,
		OwnerID:       w.OwnerID,
		Name:          w.Name,
		Privacy:       w.Privacy,
		Collaborators: collaborators,
		CreatedAt:     w.CreatedAt.Format("2006-01-02T15:04:05Z"),
		UpdatedAt:     w.UpdatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

// ToResponse picks the response shape for the viewer
func (d *Detail) ToResponse() any {
	if d.IsOwnerView() {
		selected := d.Wishlist.SelectedViewers
		if selected == nil {
			selected = []int64{}
		}
		return &OwnerWishlistResponse{
			WishlistResponse: *d.Wishlist.ToResponse(),
			SelectedViewers:  selected,
			Items:            d.OwnerItems,
		}
	}
	return &ViewerWishlistResponse{
		WishlistResponse: *d.Wishlist.ToResponse(),
		Items:            d.ViewerItems,
	}
}
