package notification

import "time"

// ViewKind selects how the host presentation layer draws a notification
type ViewKind string

const (
	ViewGeneric       ViewKind = "generic"
	ViewBirthday      ViewKind = "birthday"
	ViewOwnershipFlag ViewKind = "ownership_flag"
	ViewFriend        ViewKind = "friend"
	ViewWishlist      ViewKind = "wishlist"
)

// Badge is a short indicator shown next to the title
type Badge string

const (
	BadgeToday    Badge = "Today!"
	BadgeTomorrow Badge = "Tomorrow"
)

// View is the display-ready visual part of a rendered notification
type View struct {
	Kind   ViewKind `json:"kind"`
	Icon   string   `json:"icon,omitempty"`
	Badge  Badge    `json:"badge,omitempty"`
	Href   string   `json:"href,omitempty"`
	Unread bool     `json:"unread"`
}

// Rendered is what the presentation layer displays without further logic
type Rendered struct {
	ID        int64     `json:"id"`
	Type      Type      `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	View      View      `json:"view"`
	Fallback  bool      `json:"fallback"`
	CreatedAt time.Time `json:"created_at"`
}

// Renderer dispatches notifications to their registry entries. It holds no
// state besides the immutable registry and is safe for concurrent use.
type Renderer struct {
	registry *Registry
}

// NewRenderer creates a renderer over registry
func NewRenderer(registry *Registry) *Renderer {
	return &Renderer{registry: registry}
}

// Render produces the display form of n. Unknown types and metadata that does
// not decode produce a generic fallback carrying only the raw type string.
func (r *Renderer) Render(n *Notification) Rendered {
	out := Rendered{
		ID:        n.ID,
		Type:      n.Type,
		CreatedAt: n.CreatedAt,
	}

	title, message, view, err := r.generate(n)
	if err != nil {
		out.Title = string(n.Type)
		out.View = View{Kind: ViewGeneric}
		out.Fallback = true
	} else {
		out.Title = title
		out.Message = message
		out.View = view
	}
	out.View.Unread = !n.IsRead()

	return out
}

func (r *Renderer) generate(n *Notification) (string, string, View, error) {
	entry, err := r.registry.Lookup(n.Type)
	if err != nil {
		return "", "", View{}, err
	}
	title, err := entry.Title(n.Metadata)
	if err != nil {
		return "", "", View{}, err
	}
	message, err := entry.Message(n.Metadata)
	if err != nil {
		return "", "", View{}, err
	}
	view, err := entry.View(n.Metadata)
	if err != nil {
		return "", "", View{}, err
	}
	return title, message, view, nil
}
