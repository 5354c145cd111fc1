package claim

import (
	"slices"

	"github.com/fkhayef/giftlist/internal/privacy"
)

// Claimants are the users who flagged an item. Owner-facing reads always get
// an empty value.
type Claimants []int64

// Contains reports whether userID flagged the item
func (c Claimants) Contains(userID int64) bool {
	return slices.Contains(c, userID)
}

// OwnerItemStatus is all an owner or collaborator may learn about claims on
// their own item. It has no room for an identity.
type OwnerItemStatus struct {
	Claimed bool `json:"claimed"`
}

// ItemContext is an item together with the access-relevant part of its
// wishlist
type ItemContext struct {
	ItemID       int64
	ItemName     string
	WishlistID   int64
	WishlistName string
	Subject      privacy.Subject
}
