package friend

// SendRequestRequest represents the request to befriend another user
type SendRequestRequest struct {
	UserID int64 `json:"user_id" validate:"required"`
}

// FriendshipResponse represents a friendship or pending request
type FriendshipResponse struct {
	ID                int64  `json:"id"`
	RequesterID       int64  `json:"requester_id"`
	RequesterUsername string `json:"requester_username,omitempty"`
	AddresseeID       int64  `json:"addressee_id"`
	Status            Status `json:"status"`
	CreatedAt         string `json:"created_at"`
	AcceptedAt        string `json:"accepted_at,omitempty"`
}

// FriendResponse represents an entry of the friend list
type FriendResponse struct {
	UserID      int64   `json:"user_id"`
	Username    string  `json:"username"`
	DisplayName *string `json:"display_name,omitempty"`
	Birthday    string  `json:"birthday,omitempty"`
	Since       string  `json:"since"`
}

// ToResponse converts a Friendship model to a FriendshipResponse DTO
func (f *Friendship) ToResponse() *FriendshipResponse {
	resp := &FriendshipResponse{
		ID:                f.ID,
		RequesterID:       f.RequesterID,
		RequesterUsername: f.RequesterUsername,
		AddresseeID:       f.AddresseeID,
		Status:            f.Status,
		CreatedAt:         f.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
	if f.AcceptedAt != nil {
		resp.AcceptedAt = f.AcceptedAt.Format("2006-01-02T15:04:05Z")
	}
	return resp
}

// ToResponse converts a Friend model to a FriendResponse DTO
func (f *Friend) ToResponse() *FriendResponse {
	resp := &FriendResponse{
		UserID:      f.UserID,
		Username:    f.Username,
		DisplayName: f.DisplayName,
		Since:       f.Since.Format("2006-01-02T15:04:05Z"),
	}
	if f.Birthday != nil {
		resp.Birthday = f.Birthday.Format("2006-01-02")
	}
	return resp
}
