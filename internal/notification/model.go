package notification

import (
	"encoding/json"
	"time"
)

// Type is the discriminant of a notification. Every stored type must have an
// entry in the Registry; rows with unknown types still render, as a fallback.
type Type string

// Notification represents a notification in the system. Metadata is the only
// input to rendering and is fixed when the notification is created.
type Notification struct {
	ID          int64           `json:"id"`
	RecipientID int64           `json:"recipient_id"`
	Type        Type            `json:"type"`
	Metadata    json.RawMessage `json:"metadata"`
	DedupeKey   *string         `json:"-"`
	ReadAt      *time.Time      `json:"read_at,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// IsRead reports whether the notification left the Unread state
func (n *Notification) IsRead() bool {
	return n.ReadAt != nil
}
