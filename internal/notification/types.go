package notification

import (
	"fmt"
	"sync"
)

const (
	TypeBirthdayReminder  Type = "birthday_reminder"
	TypeOwnershipFlag     Type = "ownership_flag"
	TypeFriendRequest     Type = "friend_request"
	TypeFriendAccepted    Type = "friend_accepted"
	TypeWishlistShared    Type = "wishlist_shared"
	TypeCollaboratorAdded Type = "collaborator_added"
)

// BirthdayReminderMetadata is the payload of a birthday_reminder
type BirthdayReminderMetadata struct {
	DaysUntil  Days   `json:"days_until"`
	FriendID   int64  `json:"friend_id,omitempty"`
	FriendName string `json:"friend_name,omitempty"`
	Date       string `json:"date,omitempty"`
}

// OwnershipFlagMetadata is the payload of an ownership_flag notification.
// The claimant fields are optional: recipients who own or co-own the
// wishlist must receive Anonymous() metadata.
type OwnershipFlagMetadata struct {
	ItemID       int64   `json:"item_id"`
	ItemName     string  `json:"item_name"`
	WishlistID   int64   `json:"wishlist_id"`
	WishlistName string  `json:"wishlist_name"`
	ClaimantID   *int64  `json:"claimant_id,omitempty"`
	ClaimantName *string `json:"claimant_name,omitempty"`
}

// Anonymous returns a copy with the claimant's identity removed
func (m OwnershipFlagMetadata) Anonymous() OwnershipFlagMetadata {
	m.ClaimantID = nil
	m.ClaimantName = nil
	return m
}

// FriendRequestMetadata is the payload of a friend_request notification
type FriendRequestMetadata struct {
	RequesterID   int64  `json:"requester_id"`
	RequesterName string `json:"requester_name"`
}

// FriendAcceptedMetadata is the payload of a friend_accepted notification
type FriendAcceptedMetadata struct {
	FriendID   int64  `json:"friend_id"`
	FriendName string `json:"friend_name"`
}

// WishlistMetadata is the payload of wishlist_shared and collaborator_added
type WishlistMetadata struct {
	WishlistID   int64  `json:"wishlist_id"`
	WishlistName string `json:"wishlist_name"`
	OwnerID      int64  `json:"owner_id"`
	OwnerName    string `json:"owner_name"`
}

var (
	defaultRegistryOnce sync.Once
	defaultRegistry     *Registry
)

// DefaultRegistry returns the registry of built-in notification types
func DefaultRegistry() *Registry {
	defaultRegistryOnce.Do(func() {
		defaultRegistry = MustNewRegistry(BuiltinEntries()...)
	})
	return defaultRegistry
}

// BuiltinEntries returns a fresh copy of the built-in entries, for callers
// that compose their own registry
func BuiltinEntries() []Entry {
	return []Entry{
		Define(TypeBirthdayReminder, birthdayTitle, birthdayMessage, birthdayView),
		Define(TypeOwnershipFlag, ownershipFlagTitle, ownershipFlagMessage, ownershipFlagView),
		Define(TypeFriendRequest,
			func(m FriendRequestMetadata) string { return "New friend request" },
			func(m FriendRequestMetadata) string {
				return fmt.Sprintf("%s wants to be your friend", nameOr(m.RequesterName, "Someone"))
			},
			func(m FriendRequestMetadata) View {
				return View{Kind: ViewFriend, Icon: "user-plus", Href: "/friends/requests"}
			},
		),
		Define(TypeFriendAccepted,
			func(m FriendAcceptedMetadata) string { return "Friend request accepted" },
			func(m FriendAcceptedMetadata) string {
				return fmt.Sprintf("You and %s are now friends", nameOr(m.FriendName, "a new friend"))
			},
			func(m FriendAcceptedMetadata) View {
				return View{Kind: ViewFriend, Icon: "users", Href: userHref(m.FriendID)}
			},
		),
		Define(TypeWishlistShared,
			func(m WishlistMetadata) string { return "A wishlist was shared with you" },
			func(m WishlistMetadata) string {
				return fmt.Sprintf("%s shared %q with you", nameOr(m.OwnerName, "A friend"), m.WishlistName)
			},
			wishlistView,
		),
		Define(TypeCollaboratorAdded,
			func(m WishlistMetadata) string { return "You were added as a collaborator" },
			func(m WishlistMetadata) string {
				return fmt.Sprintf("%s added you to %q", nameOr(m.OwnerName, "A friend"), m.WishlistName)
			},
			wishlistView,
		),
	}
}

func birthdayTitle(m BirthdayReminderMetadata) string {
	if m.FriendName == "" {
		return "Birthday reminder"
	}
	return m.FriendName + "'s birthday"
}

func birthdayMessage(m BirthdayReminderMetadata) string {
	who := nameOr(m.FriendName, "A friend")
	switch {
	case !m.DaysUntil.Known():
		return who + "'s birthday is coming up"
	case m.DaysUntil.Is(0):
		return who + "'s birthday is today. Check their wishlist!"
	case m.DaysUntil.Is(1):
		return who + "'s birthday is tomorrow"
	default:
		return fmt.Sprintf("%s's birthday is in %s days", who, m.DaysUntil)
	}
}

func birthdayView(m BirthdayReminderMetadata) View {
	v := View{Kind: ViewBirthday, Icon: "cake"}
	if m.FriendID != 0 {
		v.Href = userHref(m.FriendID)
	}
	switch {
	case m.DaysUntil.Is(0):
		v.Badge = BadgeToday
	case m.DaysUntil.Is(1):
		v.Badge = BadgeTomorrow
	}
	return v
}

func ownershipFlagTitle(m OwnershipFlagMetadata) string {
	return "Gift claimed"
}

func ownershipFlagMessage(m OwnershipFlagMetadata) string {
	who := "Someone"
	if m.ClaimantName != nil && *m.ClaimantName != "" {
		who = *m.ClaimantName
	}
	return fmt.Sprintf("%s claimed %q on %q", who, m.ItemName, m.WishlistName)
}

func ownershipFlagView(m OwnershipFlagMetadata) View {
	return View{Kind: ViewOwnershipFlag, Icon: "gift", Href: wishlistHref(m.WishlistID)}
}

func wishlistView(m WishlistMetadata) View {
	return View{Kind: ViewWishlist, Icon: "list", Href: wishlistHref(m.WishlistID)}
}

func nameOr(name, fallback string) string {
	if name == "" {
		return fallback
	}
	return name
}

func userHref(id int64) string {
	return fmt.Sprintf("/users/%d", id)
}

func wishlistHref(id int64) string {
	return fmt.Sprintf("/wishlists/%d", id)
}
