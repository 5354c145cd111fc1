package privacy

// FriendSet is a FriendGraph over one user's friends. The wishlist service
// builds one from the owner's friend ids before calling CanView.
type FriendSet struct {
	userID  int64
	friends map[int64]struct{}
}

// NewFriendSet creates a FriendSet for userID.
func NewFriendSet(userID int64, friendIDs []int64) *FriendSet {
	set := make(map[int64]struct{}, len(friendIDs))
	for _, id := range friendIDs {
		if id != userID {
			set[id] = struct{}{}
		}
	}
	return &FriendSet{userID: userID, friends: set}
}

// AreFriends is symmetric. Pairs that do not involve the set's user are not
// known and report false.
func (f *FriendSet) AreFriends(a, b int64) bool {
	switch f.userID {
	case a:
		_, ok := f.friends[b]
		return ok
	case b:
		_, ok := f.friends[a]
		return ok
	default:
		return false
	}
}
