// Package privacy decides who may see a wishlist.
//
// Everything here is pure: callers load the wishlist, its collaborators, its
// selected viewers and the owner's friends, then ask CanView. Item and claim
// data must not be fetched before CanView has returned true.
package privacy

import (
	"fmt"
	"slices"
)

// Mode is the privacy setting of a wishlist.
type Mode string

const (
	ModePrivate         Mode = "private"
	ModeFriends         Mode = "friends"
	ModeSelectedFriends Mode = "selected_friends"

	// ModePublic is the legacy name for ModeFriends. It is accepted on input
	// and on read but never written.
	ModePublic Mode = "public"
)

// ParseMode validates a stored or submitted privacy value. The legacy
// "public" value comes back as ModeFriends.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModePrivate, ModeFriends, ModeSelectedFriends:
		return m, nil
	case ModePublic:
		return ModeFriends, nil
	default:
		return "", fmt.Errorf("unknown privacy mode %q", s)
	}
}

// Normalize returns the value that may be persisted for m.
func (m Mode) Normalize() Mode {
	if m == ModePublic {
		return ModeFriends
	}
	return m
}

// Valid reports whether m is one of the four known values.
func (m Mode) Valid() bool {
	_, err := ParseMode(string(m))
	return err == nil
}

// Subject is the access-relevant part of a wishlist.
type Subject struct {
	OwnerID         int64
	Collaborators   []int64
	Mode            Mode
	SelectedViewers []int64
}

// FriendGraph answers whether two users are friends.
type FriendGraph interface {
	AreFriends(a, b int64) bool
}

// IsOwner reports whether userID owns the wishlist or collaborates on it.
// Owners and collaborators share the same visibility and the same claim
// masking.
func IsOwner(userID int64, s Subject) bool {
	if userID == 0 {
		return false
	}
	return userID == s.OwnerID || slices.Contains(s.Collaborators, userID)
}

// CanView is the single visibility gate for a wishlist. Viewer 0 is an
// anonymous requester and is always denied.
func CanView(viewer int64, s Subject, friends FriendGraph) bool {
	if viewer == 0 {
		return false
	}
	if IsOwner(viewer, s) {
		return true
	}

	switch s.Mode.Normalize() {
	case ModeFriends:
		return isFriend(viewer, s.OwnerID, friends)
	case ModeSelectedFriends:
		return isFriend(viewer, s.OwnerID, friends) && slices.Contains(s.SelectedViewers, viewer)
	default:
		// private and anything unrecognised
		return false
	}
}

func isFriend(viewer, owner int64, friends FriendGraph) bool {
	if friends == nil {
		return false
	}
	return friends.AreFriends(viewer, owner)
}
