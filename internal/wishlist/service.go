package wishlist

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/fkhayef/giftlist/internal/claim"
	"github.com/fkhayef/giftlist/internal/domain"
	"github.com/fkhayef/giftlist/internal/metrics"
	"github.com/fkhayef/giftlist/internal/notification"
	"github.com/fkhayef/giftlist/internal/privacy"
)

// Common errors
var (
	ErrWishlistNotFound = fmt.Errorf("wishlist %w", domain.ErrNotFound)
	ErrItemNotFound     = fmt.Errorf("item %w", domain.ErrNotFound)
	ErrNotVisible       = fmt.Errorf("wishlist is not visible to you: %w", domain.ErrUnauthorized)
	ErrNotOwner         = fmt.Errorf("only the wishlist owner can do this: %w", domain.ErrForbidden)
	ErrNotEditor        = fmt.Errorf("only the owner or a collaborator can edit items: %w", domain.ErrForbidden)
)

type wishlistRepo interface {
	Create(ctx context.Context, ownerID int64, name string, mode privacy.Mode) (*Wishlist, error)
	GetByID(ctx context.Context, id int64) (*Wishlist, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]*Wishlist, error)
	ListForUser(ctx context.Context, userID int64) ([]*Wishlist, error)
	Update(ctx context.Context, id int64, name *string, mode *privacy.Mode) (*Wishlist, error)
	Delete(ctx context.Context, id int64) error
	AddCollaborator(ctx context.Context, wishlistID, userID int64) (bool, error)
	RemoveCollaborator(ctx context.Context, wishlistID, userID int64) (bool, error)
	AddSelectedViewer(ctx context.Context, wishlistID, userID int64) (bool, error)
	RemoveSelectedViewer(ctx context.Context, wishlistID, userID int64) (bool, error)
	CreateItem(ctx context.Context, wishlistID int64, req *CreateItemRequest) (*Item, error)
	GetItem(ctx context.Context, id int64) (*Item, error)
	ListItems(ctx context.Context, wishlistID int64) ([]*Item, error)
	UpdateItem(ctx context.Context, id int64, req *UpdateItemRequest) (*Item, error)
	DeleteItem(ctx context.Context, id int64) error
}

type claimReader interface {
	ClaimsForViewer(ctx context.Context, wishlistID, viewerID int64) (map[int64]claim.Claimants, error)
	OwnerSummaries(ctx context.Context, itemIDs []int64) (map[int64]claim.OwnerItemStatus, error)
}

type friendGraph interface {
	Graph(ctx context.Context, userID int64) (privacy.FriendGraph, error)
	AreFriends(ctx context.Context, a, b int64) (bool, error)
}

type nameLookup interface {
	Names(ctx context.Context, ids []int64) (map[int64]string, error)
}

type notifier interface {
	Create(ctx context.Context, recipientID int64, t notification.Type, metadata any) (*notification.Notification, error)
}

// Service handles wishlists and their items. Every read goes through
// privacy.CanView before items or claims are loaded.
type Service struct {
	repo     wishlistRepo
	claims   claimReader
	friends  friendGraph
	names    nameLookup
	notifier notifier
	log      *logrus.Entry
}

// NewService creates a new wishlist service
func NewService(repo wishlistRepo, claims claimReader, friends friendGraph, names nameLookup, notifier notifier, log *logrus.Logger) *Service {
	return &Service{
		repo:     repo,
		claims:   claims,
		friends:  friends,
		names:    names,
		notifier: notifier,
		log:      log.WithField("service", "wishlist"),
	}
}

// Create creates a wishlist owned by ownerID
func (s *Service) Create(ctx context.Context, ownerID int64, req *CreateWishlistRequest) (*Wishlist, error) {
	mode, modeErr := parsePrivacy(req.Privacy)
	if err := fieldErrors(validateName("name", req.Name, 100), modeErr); err != nil {
		return nil, err
	}

	w, err := s.repo.Create(ctx, ownerID, req.Name, mode)
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"wishlist_id": w.ID, "owner_id": ownerID}).Info("wishlist created")
	return w, nil
}

// Get returns a wishlist with its items as viewerID may see them
func (s *Service) Get(ctx context.Context, viewerID, id int64) (*Detail, error) {
	w, err := s.visible(ctx, viewerID, id)
	if err != nil {
		return nil, err
	}

	items, err := s.repo.ListItems(ctx, w.ID)
	if err != nil {
		return nil, err
	}
	itemIDs := make([]int64, len(items))
	for i, item := range items {
		itemIDs[i] = item.ID
	}

	if privacy.IsOwner(viewerID, w.Subject()) {
		summaries, err := s.claims.OwnerSummaries(ctx, itemIDs)
		if err != nil {
			return nil, err
		}
		views := make([]*OwnerItemView, len(items))
		for i, item := range items {
			views[i] = &OwnerItemView{Item: item}
			if summaries != nil {
				claimed := summaries[item.ID].Claimed
				views[i].Claimed = &claimed
			}
		}
		return &Detail{Wishlist: w, OwnerItems: views}, nil
	}

	claims, err := s.claims.ClaimsForViewer(ctx, w.ID, viewerID)
	if err != nil {
		return nil, err
	}
	views := make([]*ViewerItemView, len(items))
	for i, item := range items {
		claimants := claims[item.ID]
		ids := []int64(claimants)
		if ids == nil {
			ids = []int64{}
		}
		views[i] = &ViewerItemView{
			Item:        item,
			Claimed:     len(claimants) > 0,
			ClaimedByMe: claimants.Contains(viewerID),
			ClaimantIDs: ids,
		}
	}
	return &Detail{Wishlist: w, ViewerItems: views}, nil
}

// ListMine returns the wishlists userID owns or collaborates on
func (s *Service) ListMine(ctx context.Context, userID int64) ([]*Wishlist, error) {
	return s.repo.ListForUser(ctx, userID)
}

// ListVisible returns ownerID's wishlists that viewerID may see
func (s *Service) ListVisible(ctx context.Context, viewerID, ownerID int64) ([]*Wishlist, error) {
	lists, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if len(lists) == 0 {
		return lists, nil
	}

	graph, err := s.friends.Graph(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	visible := make([]*Wishlist, 0, len(lists))
	for _, w := range lists {
		if privacy.CanView(viewerID, w.Subject(), graph) {
			visible = append(visible, w)
		}
	}
	return visible, nil
}

// Update renames a wishlist or changes its privacy
func (s *Service) Update(ctx context.Context, userID, id int64, req *UpdateWishlistRequest) (*Wishlist, error) {
	if _, err := s.owned(ctx, userID, id); err != nil {
		return nil, err
	}

	var nameErr, modeErr *domain.FieldError
	var mode *privacy.Mode
	if req.Name != nil {
		nameErr = validateName("name", *req.Name, 100)
	}
	if req.Privacy != nil {
		m, e := parsePrivacy(*req.Privacy)
		mode, modeErr = &m, e
	}
	if err := fieldErrors(nameErr, modeErr); err != nil {
		return nil, err
	}

	w, err := s.repo.Update(ctx, id, req.Name, mode)
	if err != nil {
		return nil, err
	}
	if w == nil {
		return nil, ErrWishlistNotFound
	}
	return w, nil
}

// Delete removes a wishlist
func (s *Service) Delete(ctx context.Context, userID, id int64) error {
	if _, err := s.owned(ctx, userID, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// AddCollaborator makes one of the owner's friends a co-owner. Collaborators
// share the owner's claim masking.
func (s *Service) AddCollaborator(ctx context.Context, userID, id, collaboratorID int64) (*Wishlist, error) {
	w, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := s.requireFriend(ctx, w.OwnerID, collaboratorID); err != nil {
		return nil, err
	}

	added, err := s.repo.AddCollaborator(ctx, id, collaboratorID)
	if err != nil {
		return nil, err
	}
	if added {
		s.notifyWishlist(ctx, w, collaboratorID, notification.TypeCollaboratorAdded)
	}
	return s.repo.GetByID(ctx, id)
}

// RemoveCollaborator drops a collaborator. Removing an absent one succeeds.
func (s *Service) RemoveCollaborator(ctx context.Context, userID, id, collaboratorID int64) (*Wishlist, error) {
	if _, err := s.owned(ctx, userID, id); err != nil {
		return nil, err
	}
	if _, err := s.repo.RemoveCollaborator(ctx, id, collaboratorID); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

// SelectViewer adds one of the owner's friends to the wishlist's selected set
func (s *Service) SelectViewer(ctx context.Context, userID, id, viewerID int64) (*Wishlist, error) {
	w, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := s.requireFriend(ctx, w.OwnerID, viewerID); err != nil {
		return nil, err
	}

	added, err := s.repo.AddSelectedViewer(ctx, id, viewerID)
	if err != nil {
		return nil, err
	}
	if added {
		s.notifyWishlist(ctx, w, viewerID, notification.TypeWishlistShared)
	}
	return s.repo.GetByID(ctx, id)
}

// UnselectViewer removes a user from the wishlist's selected set
func (s *Service) UnselectViewer(ctx context.Context, userID, id, viewerID int64) (*Wishlist, error) {
	if _, err := s.owned(ctx, userID, id); err != nil {
		return nil, err
	}
	if _, err := s.repo.RemoveSelectedViewer(ctx, id, viewerID); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

// AddItem appends an item; owner or collaborator only
func (s *Service) AddItem(ctx context.Context, userID, wishlistID int64, req *CreateItemRequest) (*Item, error) {
	if err := fieldErrors(validateName("name", req.Name, 200)); err != nil {
		return nil, err
	}
	if _, err := s.editable(ctx, userID, wishlistID); err != nil {
		return nil, err
	}
	return s.repo.CreateItem(ctx, wishlistID, req)
}

// UpdateItem modifies an item; owner or collaborator only
func (s *Service) UpdateItem(ctx context.Context, userID, wishlistID, itemID int64, req *UpdateItemRequest) (*Item, error) {
	if req.Name != nil {
		if err := fieldErrors(validateName("name", *req.Name, 200)); err != nil {
			return nil, err
		}
	}

	item, err := s.editableItem(ctx, userID, wishlistID, itemID)
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.UpdateItem(ctx, item.ID, req)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, ErrItemNotFound
	}
	return updated, nil
}

// DeleteItem removes an item together with its claims
func (s *Service) DeleteItem(ctx context.Context, userID, wishlistID, itemID int64) error {
	item, err := s.editableItem(ctx, userID, wishlistID, itemID)
	if err != nil {
		return err
	}
	return s.repo.DeleteItem(ctx, item.ID)
}

func (s *Service) load(ctx context.Context, id int64) (*Wishlist, error) {
	w, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if w == nil {
		return nil, ErrWishlistNotFound
	}
	return w, nil
}

// visible is the read gate: it loads the wishlist and checks CanView
func (s *Service) visible(ctx context.Context, viewerID, id int64) (*Wishlist, error) {
	w, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	subject := w.Subject()
	if privacy.IsOwner(viewerID, subject) {
		return w, nil
	}
	if viewerID == 0 {
		metrics.IncWishlistAccessDenied()
		return nil, ErrNotVisible
	}

	graph, err := s.friends.Graph(ctx, w.OwnerID)
	if err != nil {
		return nil, err
	}
	if !privacy.CanView(viewerID, subject, graph) {
		metrics.IncWishlistAccessDenied()
		s.log.WithFields(logrus.Fields{"wishlist_id": id, "viewer_id": viewerID}).Debug("wishlist access denied")
		return nil, ErrNotVisible
	}
	return w, nil
}

func (s *Service) owned(ctx context.Context, userID, id int64) (*Wishlist, error) {
	w, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if w.OwnerID != userID {
		return nil, ErrNotOwner
	}
	return w, nil
}

func (s *Service) editable(ctx context.Context, userID, id int64) (*Wishlist, error) {
	w, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !privacy.IsOwner(userID, w.Subject()) {
		return nil, ErrNotEditor
	}
	return w, nil
}

func (s *Service) editableItem(ctx context.Context, userID, wishlistID, itemID int64) (*Item, error) {
	item, err := s.repo.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil || item.WishlistID != wishlistID {
		return nil, ErrItemNotFound
	}
	if _, err := s.editable(ctx, userID, item.WishlistID); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *Service) requireFriend(ctx context.Context, ownerID, userID int64) error {
	if userID == ownerID {
		return domain.NewValidationError("user_id", "must not be the owner")
	}
	ok, err := s.friends.AreFriends(ctx, ownerID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return domain.NewValidationError("user_id", "must be a friend of the owner")
	}
	return nil
}

func (s *Service) notifyWishlist(ctx context.Context, w *Wishlist, recipientID int64, t notification.Type) {
	if s.notifier == nil {
		return
	}

	metadata := notification.WishlistMetadata{
		WishlistID:   w.ID,
		WishlistName: w.Name,
		OwnerID:      w.OwnerID,
	}
	if names, err := s.names.Names(ctx, []int64{w.OwnerID}); err == nil {
		metadata.OwnerName = names[w.OwnerID]
	}

	if _, err := s.notifier.Create(ctx, recipientID, t, metadata); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"recipient_id": recipientID,
			"type":         t,
		}).Error("failed to create notification")
	}
}
