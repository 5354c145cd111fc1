package friend

import "time"

// Status represents the state of a friendship edge
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusAccepted Status = "ACCEPTED"
)

// Friendship is an undirected edge between two users. RequesterID sent the
// request; the edge is symmetric once accepted.
type Friendship struct {
	ID          int64      `json:"id"`
	RequesterID int64      `json:"requester_id"`
	AddresseeID int64      `json:"addressee_id"`
	Status      Status     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	AcceptedAt  *time.Time `json:"accepted_at,omitempty"`

	// Populated from JOIN
	RequesterUsername string `json:"requester_username,omitempty"`
}

// Other returns the user on the other end of the edge
func (f *Friendship) Other(userID int64) int64 {
	if f.RequesterID == userID {
		return f.AddresseeID
	}
	return f.RequesterID
}

// Involves reports whether userID is one end of the edge
func (f *Friendship) Involves(userID int64) bool {
	return f.RequesterID == userID || f.AddresseeID == userID
}

// Friend is one entry of a user's friend list
type Friend struct {
	UserID      int64      `json:"user_id"`
	Username    string     `json:"username"`
	DisplayName *string    `json:"display_name,omitempty"`
	Birthday    *time.Time `json:"-"`
	Since       time.Time  `json:"since"`
}
