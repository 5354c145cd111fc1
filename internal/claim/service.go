// Package claim is the ownership flag store. A flag records that a friend
// intends to gift an item. Owners and collaborators of the item's wishlist
// must never learn who flagged it; every read path here enforces that itself
// instead of trusting callers to filter.
package claim

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/fkhayef/giftlist/internal/domain"
	"github.com/fkhayef/giftlist/internal/metrics"
	"github.com/fkhayef/giftlist/internal/notification"
	"github.com/fkhayef/giftlist/internal/privacy"
)

// Common errors
var (
	ErrItemNotFound     = fmt.Errorf("item %w", domain.ErrNotFound)
	ErrWishlistNotFound = fmt.Errorf("wishlist %w", domain.ErrNotFound)
	ErrSelfClaim        = fmt.Errorf("owners and collaborators cannot claim their own items: %w", domain.ErrConflict)
	ErrNotVisible       = fmt.Errorf("wishlist is not visible to you: %w", domain.ErrUnauthorized)
)

type claimRepo interface {
	GetItemContext(ctx context.Context, itemID int64) (*ItemContext, error)
	Insert(ctx context.Context, itemID, claimantID int64) (bool, error)
	Delete(ctx context.Context, itemID, claimantID int64) (bool, error)
	ListClaimants(ctx context.Context, itemID int64) ([]int64, error)
	GetWishlistSubject(ctx context.Context, wishlistID int64) (*privacy.Subject, error)
	ClaimantsByWishlist(ctx context.Context, wishlistID int64) (map[int64][]int64, error)
	FlaggedItems(ctx context.Context, itemIDs []int64) (map[int64]bool, error)
}

type friendGraphs interface {
	Graph(ctx context.Context, userID int64) (privacy.FriendGraph, error)
}

type nameLookup interface {
	Names(ctx context.Context, ids []int64) (map[int64]string, error)
}

type notifier interface {
	Create(ctx context.Context, recipientID int64, t notification.Type, metadata any) (*notification.Notification, error)
}

// Service handles ownership flags
type Service struct {
	repo          claimRepo
	friends       friendGraphs
	names         nameLookup
	notifier      notifier
	revealToOwner bool
	log           *logrus.Entry
}

// NewService creates a new claim service. With revealToOwner, owners get a
// bare claimed/unclaimed status for their items.
func NewService(repo claimRepo, friends friendGraphs, names nameLookup, notifier notifier, revealToOwner bool, log *logrus.Logger) *Service {
	return &Service{
		repo:          repo,
		friends:       friends,
		names:         names,
		notifier:      notifier,
		revealToOwner: revealToOwner,
		log:           log.WithField("service", "claim"),
	}
}

// Flag records that claimantID intends to gift itemID. Flagging twice is a
// no-op. Other claimants of the item are told about a new flag.
func (s *Service) Flag(ctx context.Context, itemID, claimantID int64) error {
	ic, err := s.item(ctx, itemID)
	if err != nil {
		return err
	}
	if privacy.IsOwner(claimantID, ic.Subject) {
		metrics.IncOwnershipFlag("flag", "self")
		return ErrSelfClaim
	}
	if err := s.gate(ctx, claimantID, ic.Subject); err != nil {
		metrics.IncOwnershipFlag("flag", "denied")
		return err
	}

	created, err := s.repo.Insert(ctx, itemID, claimantID)
	if err != nil {
		return err
	}
	if !created {
		metrics.IncOwnershipFlag("flag", "noop")
		return nil
	}

	metrics.IncOwnershipFlag("flag", "created")
	s.log.WithFields(logrus.Fields{"item_id": itemID, "claimant_id": claimantID}).Debug("item flagged")
	s.notifyCoClaimants(ctx, ic, claimantID)

	return nil
}

// Unflag removes claimantID's flag. Removing an absent flag succeeds.
func (s *Service) Unflag(ctx context.Context, itemID, claimantID int64) error {
	if _, err := s.item(ctx, itemID); err != nil {
		return err
	}

	removed, err := s.repo.Delete(ctx, itemID, claimantID)
	if err != nil {
		return err
	}
	if removed {
		metrics.IncOwnershipFlag("unflag", "removed")
	} else {
		metrics.IncOwnershipFlag("unflag", "noop")
	}
	return nil
}

// QueryFlags returns who flagged itemID. Owners and collaborators always get
// an empty result and their request never reads the flags.
func (s *Service) QueryFlags(ctx context.Context, itemID, requesterID int64) (Claimants, error) {
	ic, err := s.item(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if privacy.IsOwner(requesterID, ic.Subject) {
		return Claimants{}, nil
	}
	if err := s.gate(ctx, requesterID, ic.Subject); err != nil {
		return nil, err
	}

	ids, err := s.repo.ListClaimants(ctx, itemID)
	if err != nil {
		return nil, err
	}
	return Claimants(ids), nil
}

// ClaimsForViewer returns claimants per item of one wishlist. The wishlist's
// privacy is loaded and checked here: owners and collaborators get an empty
// map without a flag read, viewers failing privacy.CanView get ErrNotVisible.
func (s *Service) ClaimsForViewer(ctx context.Context, wishlistID, viewerID int64) (map[int64]Claimants, error) {
	subject, err := s.repo.GetWishlistSubject(ctx, wishlistID)
	if err != nil {
		return nil, err
	}
	if subject == nil {
		return nil, ErrWishlistNotFound
	}

	out := make(map[int64]Claimants)
	if privacy.IsOwner(viewerID, *subject) {
		return out, nil
	}
	if err := s.gate(ctx, viewerID, *subject); err != nil {
		return nil, err
	}

	byItem, err := s.repo.ClaimantsByWishlist(ctx, wishlistID)
	if err != nil {
		return nil, err
	}
	for id, claimants := range byItem {
		out[id] = Claimants(claimants)
	}
	return out, nil
}

// OwnerSummary returns the identity-free status of one item, for owner views
func (s *Service) OwnerSummary(ctx context.Context, itemID int64) (OwnerItemStatus, error) {
	flagged, err := s.isFlaggedByAnyone(ctx, []int64{itemID})
	if err != nil {
		return OwnerItemStatus{}, err
	}
	return OwnerItemStatus{Claimed: flagged[itemID]}, nil
}

// OwnerSummaries returns identity-free statuses for owner views. It returns
// nil when owners are not shown claim status at all.
func (s *Service) OwnerSummaries(ctx context.Context, itemIDs []int64) (map[int64]OwnerItemStatus, error) {
	if !s.revealToOwner {
		return nil, nil
	}

	flagged, err := s.isFlaggedByAnyone(ctx, itemIDs)
	if err != nil {
		return nil, err
	}
	out := make(map[int64]OwnerItemStatus, len(itemIDs))
	for _, id := range itemIDs {
		out[id] = OwnerItemStatus{Claimed: flagged[id]}
	}
	return out, nil
}

// RevealsToOwner reports whether owners see claimed/unclaimed status
func (s *Service) RevealsToOwner() bool {
	return s.revealToOwner
}

func (s *Service) isFlaggedByAnyone(ctx context.Context, itemIDs []int64) (map[int64]bool, error) {
	return s.repo.FlaggedItems(ctx, itemIDs)
}

func (s *Service) item(ctx context.Context, itemID int64) (*ItemContext, error) {
	ic, err := s.repo.GetItemContext(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if ic == nil {
		return nil, ErrItemNotFound
	}
	return ic, nil
}

func (s *Service) gate(ctx context.Context, viewerID int64, subject privacy.Subject) error {
	if viewerID == 0 {
		metrics.IncWishlistAccessDenied()
		return ErrNotVisible
	}
	graph, err := s.friends.Graph(ctx, subject.OwnerID)
	if err != nil {
		return err
	}
	if !privacy.CanView(viewerID, subject, graph) {
		metrics.IncWishlistAccessDenied()
		return ErrNotVisible
	}
	return nil
}

// notifyCoClaimants tells the item's other claimants about a new flag.
// A recipient who has since become an owner or collaborator gets the
// anonymous form.
func (s *Service) notifyCoClaimants(ctx context.Context, ic *ItemContext, claimantID int64) {
	if s.notifier == nil {
		return
	}

	claimants, err := s.repo.ListClaimants(ctx, ic.ItemID)
	if err != nil {
		s.log.WithError(err).WithField("item_id", ic.ItemID).Error("failed to load co-claimants")
		return
	}

	var recipients []int64
	for _, id := range claimants {
		if id != claimantID {
			recipients = append(recipients, id)
		}
	}
	if len(recipients) == 0 {
		return
	}

	base := notification.OwnershipFlagMetadata{
		ItemID:       ic.ItemID,
		ItemName:     ic.ItemName,
		WishlistID:   ic.WishlistID,
		WishlistName: ic.WishlistName,
	}
	named := base
	named.ClaimantID = &claimantID
	if names, err := s.names.Names(ctx, []int64{claimantID}); err == nil {
		if name, ok := names[claimantID]; ok {
			named.ClaimantName = &name
		}
	}

	for _, recipient := range recipients {
		metadata := named
		if privacy.IsOwner(recipient, ic.Subject) {
			metadata = base.Anonymous()
		}
		if _, err := s.notifier.Create(ctx, recipient, notification.TypeOwnershipFlag, metadata); err != nil {
			s.log.WithError(err).WithField("recipient_id", recipient).Error("failed to create notification")
		}
	}
}
