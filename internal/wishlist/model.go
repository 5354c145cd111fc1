package wishlist

import (
	"time"

	"github.com/fkhayef/giftlist/internal/privacy"
)

// Wishlist represents a wishlist in the system
type Wishlist struct {
	ID              int64        `json:"id"`
	OwnerID         int64        `json:"owner_id"`
	Name            string       `json:"name"`
	Privacy         privacy.Mode `json:"privacy"`
	Collaborators   []int64      `json:"collaborators"`
	SelectedViewers []int64      `json:"-"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}

// Subject returns the access-relevant part of the wishlist
func (w *Wishlist) Subject() privacy.Subject {
	return privacy.Subject{
		OwnerID:         w.OwnerID,
		Collaborators:   w.Collaborators,
		Mode:            w.Privacy,
		SelectedViewers: w.SelectedViewers,
	}
}

// Item represents a wished-for gift. Link and price are opaque strings.
type Item struct {
	ID         int64     `json:"id"`
	WishlistID int64     `json:"wishlist_id"`
	Name       string    `json:"name"`
	Link       *string   `json:"link,omitempty"`
	Price      *string   `json:"price,omitempty"`
	Notes      *string   `json:"notes,omitempty"`
	Position   int       `json:"position"`
	CreatedAt  time.Time `json:"created_at"`
}

// OwnerItemView is an item as its owner or a collaborator sees it. Claimed
// is only set when owners are shown claim status; there is no claimant.
type OwnerItemView struct {
	*Item
	Claimed *bool `json:"claimed,omitempty"`
}

// ViewerItemView is an item as a friend sees it
type ViewerItemView struct {
	*Item
	Claimed     bool    `json:"claimed"`
	ClaimedByMe bool    `json:"claimed_by_me"`
	ClaimantIDs []int64 `json:"claimant_ids"`
}

// Detail is a wishlist with items, as seen by one viewer. Exactly one of
// OwnerItems and ViewerItems is non-nil.
type Detail struct {
	Wishlist    *Wishlist
	OwnerItems  []*OwnerItemView
	ViewerItems []*ViewerItemView
}

// IsOwnerView reports whether the viewer owns or co-owns the wishlist
func (d *Detail) IsOwnerView() bool {
	return d.OwnerItems != nil
}
