package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fkhayef/giftlist/internal/domain"
	"github.com/fkhayef/giftlist/internal/metrics"
)

// Common errors
var (
	ErrNotificationNotFound = fmt.Errorf("notification %w", domain.ErrNotFound)
	ErrNotRecipient         = fmt.Errorf("not the recipient of this notification: %w", domain.ErrForbidden)
)

type notificationRepo interface {
	Create(ctx context.Context, n *Notification) (*Notification, error)
	GetByID(ctx context.Context, id int64) (*Notification, error)
	ListByRecipientID(ctx context.Context, recipientID int64, limit, offset int, unreadOnly bool) ([]*Notification, int, error)
	MarkAsRead(ctx context.Context, id int64, at time.Time) error
	MarkAllAsRead(ctx context.Context, recipientID int64, at time.Time) error
	GetUnreadCount(ctx context.Context, recipientID int64) (int, error)
}

// Service handles notification business logic
type Service struct {
	repo     notificationRepo
	registry *Registry
	renderer *Renderer
	log      *logrus.Entry
	now      func() time.Time
}

// NewService creates a new notification service
func NewService(repo notificationRepo, registry *Registry, log *logrus.Logger) *Service {
	return &Service{
		repo:     repo,
		registry: registry,
		renderer: NewRenderer(registry),
		log:      log.WithField("service", "notification"),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Create persists a notification for recipientID. Only registered types can
// be created. The caller is responsible for metadata: anything that must not
// reach the recipient must already be stripped.
func (s *Service) Create(ctx context.Context, recipientID int64, t Type, metadata any) (*Notification, error) {
	n, _, err := s.create(ctx, recipientID, t, metadata, nil)
	return n, err
}

// CreateOnce is like Create but skips the insert when a notification with the
// same dedupe key already exists for the recipient. created reports whether a
// row was written.
func (s *Service) CreateOnce(ctx context.Context, recipientID int64, t Type, metadata any, dedupeKey string) (n *Notification, created bool, err error) {
	if dedupeKey == "" {
		return nil, false, domain.NewValidationError("dedupe_key", "required")
	}
	return s.create(ctx, recipientID, t, metadata, &dedupeKey)
}

func (s *Service) create(ctx context.Context, recipientID int64, t Type, metadata any, dedupeKey *string) (*Notification, bool, error) {
	if recipientID <= 0 {
		return nil, false, domain.NewValidationError("recipient_id", "required")
	}
	if !s.registry.Has(t) {
		return nil, false, fmt.Errorf("%w: %q", ErrUnknownType, t)
	}

	raw, err := json.Marshal(metadata)
	if err != nil {
		return nil, false, fmt.Errorf("encode %s metadata: %w", t, err)
	}

	n, err := s.repo.Create(ctx, &Notification{
		RecipientID: recipientID,
		Type:        t,
		Metadata:    raw,
		DedupeKey:   dedupeKey,
	})
	if err != nil {
		return nil, false, err
	}
	if n == nil {
		return nil, false, nil
	}

	metrics.IncNotificationCreated(string(t))
	s.log.WithFields(logrus.Fields{
		"notification_id": n.ID,
		"recipient_id":    recipientID,
		"type":            t,
	}).Debug("notification created")

	return n, true, nil
}

// Render renders a single notification
func (s *Service) Render(n *Notification) Rendered {
	out := s.renderer.Render(n)
	metrics.IncNotificationRendered(s.metricType(n.Type), out.Fallback)
	if out.Fallback {
		s.log.WithFields(logrus.Fields{
			"notification_id": n.ID,
			"type":            n.Type,
		}).Warn("notification rendered with fallback view")
	}
	return out
}

// metricType bounds the type label: stored types outside the registry all
// count as "unknown"
func (s *Service) metricType(t Type) string {
	if !s.registry.Has(t) {
		return "unknown"
	}
	return string(t)
}

// ListByRecipientID returns a page of rendered notifications for a user
func (s *Service) ListByRecipientID(ctx context.Context, recipientID int64, page, perPage int, unreadOnly bool) ([]Rendered, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	offset := (page - 1) * perPage
	notifications, total, err := s.repo.ListByRecipientID(ctx, recipientID, perPage, offset, unreadOnly)
	if err != nil {
		return nil, 0, err
	}

	rendered := make([]Rendered, len(notifications))
	for i, n := range notifications {
		rendered[i] = s.Render(n)
	}
	return rendered, total, nil
}

// GetByID retrieves a notification owned by userID
func (s *Service) GetByID(ctx context.Context, id, userID int64) (*Notification, error) {
	n, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, ErrNotificationNotFound
	}
	if n.RecipientID != userID {
		return nil, ErrNotRecipient
	}
	return n, nil
}

// MarkAsRead moves a notification from Unread to Read. Read is terminal:
// marking it again is a no-op that keeps the first read_at.
func (s *Service) MarkAsRead(ctx context.Context, id, userID int64) error {
	n, err := s.GetByID(ctx, id, userID)
	if err != nil {
		return err
	}
	if n.IsRead() {
		return nil
	}
	return s.repo.MarkAsRead(ctx, id, s.now())
}

// MarkAllAsRead marks all notifications as read for a user
func (s *Service) MarkAllAsRead(ctx context.Context, userID int64) error {
	return s.repo.MarkAllAsRead(ctx, userID, s.now())
}

// GetUnreadCount returns the count of unread notifications
func (s *Service) GetUnreadCount(ctx context.Context, userID int64) (int, error) {
	return s.repo.GetUnreadCount(ctx, userID)
}

// Types lists the registered notification types
func (s *Service) Types() []Type {
	return s.registry.Types()
}

// IsUnknownType reports whether err comes from an unregistered type
func IsUnknownType(err error) bool {
	return errors.Is(err, ErrUnknownType)
}
