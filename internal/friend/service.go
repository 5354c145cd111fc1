package friend

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fkhayef/giftlist/internal/database"
	"github.com/fkhayef/giftlist/internal/domain"
	"github.com/fkhayef/giftlist/internal/notification"
	"github.com/fkhayef/giftlist/internal/privacy"
	"github.com/fkhayef/giftlist/internal/user"
)

// Common errors
var (
	ErrRequestNotFound = fmt.Errorf("friend request %w", domain.ErrNotFound)
	ErrNotFriends      = fmt.Errorf("friendship %w", domain.ErrNotFound)
	ErrSelfRequest     = fmt.Errorf("cannot befriend yourself: %w", domain.ErrConflict)
	ErrAlreadyExists   = fmt.Errorf("friendship or request already exists: %w", domain.ErrConflict)
	ErrNotAddressee    = fmt.Errorf("only the addressee can answer this request: %w", domain.ErrForbidden)
)

type friendRepo interface {
	Create(ctx context.Context, requesterID, addresseeID int64) (*Friendship, error)
	GetByID(ctx context.Context, id int64) (*Friendship, error)
	GetBetween(ctx context.Context, a, b int64) (*Friendship, error)
	Accept(ctx context.Context, id int64, at time.Time) (*Friendship, error)
	Delete(ctx context.Context, f *Friendship) error
	ListFriends(ctx context.Context, userID int64) ([]*Friend, error)
	ListPending(ctx context.Context, userID int64) ([]*Friendship, error)
	FriendIDs(ctx context.Context, userID int64) ([]int64, error)
}

type userLookup interface {
	GetByID(ctx context.Context, id int64) (*user.User, error)
}

type notifier interface {
	Create(ctx context.Context, recipientID int64, t notification.Type, metadata any) (*notification.Notification, error)
}

// Service handles the friend graph
type Service struct {
	repo     friendRepo
	users    userLookup
	notifier notifier
	log      *logrus.Entry
	now      func() time.Time
}

// NewService creates a new friend service
func NewService(repo friendRepo, users userLookup, notifier notifier, log *logrus.Logger) *Service {
	return &Service{
		repo:     repo,
		users:    users,
		notifier: notifier,
		log:      log.WithField("service", "friend"),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// SendRequest creates a pending request from requesterID to addresseeID
func (s *Service) SendRequest(ctx context.Context, requesterID, addresseeID int64) (*Friendship, error) {
	if requesterID == addresseeID {
		return nil, ErrSelfRequest
	}

	requester, err := s.users.GetByID(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	if _, err := s.users.GetByID(ctx, addresseeID); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetBetween(ctx, requesterID, addresseeID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrAlreadyExists
	}

	f, err := s.repo.Create(ctx, requesterID, addresseeID)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, ErrAlreadyExists
		}
		return nil, err
	}

	s.notify(ctx, addresseeID, notification.TypeFriendRequest, notification.FriendRequestMetadata{
		RequesterID:   requesterID,
		RequesterName: requester.Name(),
	})

	return f, nil
}

// Accept accepts a pending request addressed to userID
func (s *Service) Accept(ctx context.Context, userID, requestID int64) (*Friendship, error) {
	f, err := s.pendingFor(ctx, userID, requestID)
	if err != nil {
		return nil, err
	}

	accepted, err := s.repo.Accept(ctx, f.ID, s.now())
	if err != nil {
		return nil, err
	}
	if accepted == nil {
		// answered concurrently
		return nil, ErrRequestNotFound
	}

	if addressee, err := s.users.GetByID(ctx, userID); err == nil {
		s.notify(ctx, f.RequesterID, notification.TypeFriendAccepted, notification.FriendAcceptedMetadata{
			FriendID:   userID,
			FriendName: addressee.Name(),
		})
	}

	return accepted, nil
}

// Decline removes a pending request. The addressee declines it; the
// requester may also withdraw it.
func (s *Service) Decline(ctx context.Context, userID, requestID int64) error {
	f, err := s.repo.GetByID(ctx, requestID)
	if err != nil {
		return err
	}
	if f == nil || f.Status != StatusPending || !f.Involves(userID) {
		return ErrRequestNotFound
	}
	return s.repo.Delete(ctx, f)
}

// Remove ends the friendship between userID and friendID
func (s *Service) Remove(ctx context.Context, userID, friendID int64) error {
	f, err := s.repo.GetBetween(ctx, userID, friendID)
	if err != nil {
		return err
	}
	if f == nil || f.Status != StatusAccepted {
		return ErrNotFriends
	}

	if err := s.repo.Delete(ctx, f); err != nil {
		return err
	}

	s.log.WithFields(logrus.Fields{"user_id": userID, "friend_id": friendID}).Info("friendship removed")
	return nil
}

// ListFriends retrieves the accepted friends of a user
func (s *Service) ListFriends(ctx context.Context, userID int64) ([]*Friend, error) {
	return s.repo.ListFriends(ctx, userID)
}

// ListPending retrieves the requests waiting for userID
func (s *Service) ListPending(ctx context.Context, userID int64) ([]*Friendship, error) {
	return s.repo.ListPending(ctx, userID)
}

// AreFriends reports whether an accepted edge exists between a and b
func (s *Service) AreFriends(ctx context.Context, a, b int64) (bool, error) {
	f, err := s.repo.GetBetween(ctx, a, b)
	if err != nil {
		return false, err
	}
	return f != nil && f.Status == StatusAccepted, nil
}

// FriendIDs retrieves the IDs of the accepted friends of a user
func (s *Service) FriendIDs(ctx context.Context, userID int64) ([]int64, error) {
	return s.repo.FriendIDs(ctx, userID)
}

// Graph loads userID's friends as a privacy.FriendGraph
func (s *Service) Graph(ctx context.Context, userID int64) (privacy.FriendGraph, error) {
	ids, err := s.repo.FriendIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	return privacy.NewFriendSet(userID, ids), nil
}

func (s *Service) pendingFor(ctx context.Context, userID, requestID int64) (*Friendship, error) {
	f, err := s.repo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if f == nil || f.Status != StatusPending || !f.Involves(userID) {
		return nil, ErrRequestNotFound
	}
	if f.AddresseeID != userID {
		return nil, ErrNotAddressee
	}
	return f, nil
}

// notify never fails the calling operation; the friend graph change has
// already been committed
func (s *Service) notify(ctx context.Context, recipientID int64, t notification.Type, metadata any) {
	if s.notifier == nil {
		return
	}
	if _, err := s.notifier.Create(ctx, recipientID, t, metadata); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"recipient_id": recipientID,
			"type":         t,
		}).Error("failed to create notification")
	}
}
