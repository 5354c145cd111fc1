package wishlist

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fkhayef/giftlist/internal/claim"
	"github.com/fkhayef/giftlist/internal/domain"
	"github.com/fkhayef/giftlist/internal/notification"
	"github.com/fkhayef/giftlist/internal/privacy"
	"github.com/fkhayef/giftlist/pkg/logger"
)

const (
	owner    int64 = 1
	friendA  int64 = 2
	friendB  int64 = 3
	stranger int64 = 4
	collab   int64 = 5
)

type memRepo struct {
	nextID    int64
	lists     map[int64]*Wishlist
	items     map[int64]*Item
	itemReads int
}

func newMemRepo() *memRepo {
	return &memRepo{lists: map[int64]*Wishlist{}, items: map[int64]*Item{}}
}

func (m *memRepo) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *memRepo) copyOf(w *Wishlist) *Wishlist {
	cp := *w
	cp.Collaborators = append([]int64(nil), w.Collaborators...)
	cp.SelectedViewers = append([]int64(nil), w.SelectedViewers...)
	return &cp
}

func (m *memRepo) Create(ctx context.Context, ownerID int64, name string, mode privacy.Mode) (*Wishlist, error) {
	w := &Wishlist{ID: m.id(), OwnerID: ownerID, Name: name, Privacy: mode}
	m.lists[w.ID] = w
	return m.copyOf(w), nil
}

func (m *memRepo) GetByID(ctx context.Context, id int64) (*Wishlist, error) {
	w, ok := m.lists[id]
	if !ok {
		return nil, nil
	}
	return m.copyOf(w), nil
}

func (m *memRepo) ListByOwner(ctx context.Context, ownerID int64) ([]*Wishlist, error) {
	var out []*Wishlist
	for id := int64(1); id <= m.nextID; id++ {
		if w, ok := m.lists[id]; ok && w.OwnerID == ownerID {
			out = append(out, m.copyOf(w))
		}
	}
	return out, nil
}

func (m *memRepo) ListForUser(ctx context.Context, userID int64) ([]*Wishlist, error) {
	var out []*Wishlist
	for id := int64(1); id <= m.nextID; id++ {
		if w, ok := m.lists[id]; ok && privacy.IsOwner(userID, w.Subject()) {
			out = append(out, m.copyOf(w))
		}
	}
	return out, nil
}

func (m *memRepo) Update(ctx context.Context, id int64, name *string, mode *privacy.Mode) (*Wishlist, error) {
	w, ok := m.lists[id]
	if !ok {
		return nil, nil
	}
	if name != nil {
		w.Name = *name
	}
	if mode != nil {
		w.Privacy = mode.Normalize()
	}
	return m.copyOf(w), nil
}

func (m *memRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := m.lists[id]; !ok {
		return ErrWishlistNotFound
	}
	delete(m.lists, id)
	return nil
}

func addTo(set *[]int64, id int64) bool {
	for _, v := range *set {
		if v == id {
			return false
		}
	}
	*set = append(*set, id)
	return true
}

func removeFrom(set *[]int64, id int64) bool {
	for i, v := range *set {
		if v == id {
			*set = append((*set)[:i], (*set)[i+1:]...)
			return true
		}
	}
	return false
}

func (m *memRepo) AddCollaborator(ctx context.Context, wishlistID, userID int64) (bool, error) {
	return addTo(&m.lists[wishlistID].Collaborators, userID), nil
}

func (m *memRepo) RemoveCollaborator(ctx context.Context, wishlistID, userID int64) (bool, error) {
	return removeFrom(&m.lists[wishlistID].Collaborators, userID), nil
}

func (m *memRepo) AddSelectedViewer(ctx context.Context, wishlistID, userID int64) (bool, error) {
	return addTo(&m.lists[wishlistID].SelectedViewers, userID), nil
}

func (m *memRepo) RemoveSelectedViewer(ctx context.Context, wishlistID, userID int64) (bool, error) {
	return removeFrom(&m.lists[wishlistID].SelectedViewers, userID), nil
}

func (m *memRepo) CreateItem(ctx context.Context, wishlistID int64, req *CreateItemRequest) (*Item, error) {
	item := &Item{ID: m.id(), WishlistID: wishlistID, Name: req.Name, Link: req.Link, Price: req.Price}
	m.items[item.ID] = item
	cp := *item
	return &cp, nil
}

func (m *memRepo) GetItem(ctx context.Context, id int64) (*Item, error) {
	item, ok := m.items[id]
	if !ok {
		return nil, nil
	}
	cp := *item
	return &cp, nil
}

func (m *memRepo) ListItems(ctx context.Context, wishlistID int64) ([]*Item, error) {
	m.itemReads++
	var out []*Item
	for id := int64(1); id <= m.nextID; id++ {
		if item, ok := m.items[id]; ok && item.WishlistID == wishlistID {
			cp := *item
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memRepo) UpdateItem(ctx context.Context, id int64, req *UpdateItemRequest) (*Item, error) {
	item, ok := m.items[id]
	if !ok {
		return nil, nil
	}
	if req.Name != nil {
		item.Name = *req.Name
	}
	cp := *item
	return &cp, nil
}

func (m *memRepo) DeleteItem(ctx context.Context, id int64) error {
	if _, ok := m.items[id]; !ok {
		return ErrItemNotFound
	}
	delete(m.items, id)
	return nil
}

// claimStub serves flags straight from a map and records who asked
type claimStub struct {
	flags       map[int64]claim.Claimants
	reveal      bool
	viewerCalls []int64
}

func (c *claimStub) ClaimsForViewer(ctx context.Context, wishlistID, viewerID int64) (map[int64]claim.Claimants, error) {
	c.viewerCalls = append(c.viewerCalls, viewerID)
	out := map[int64]claim.Claimants{}
	for id, f := range c.flags {
		out[id] = f
	}
	return out, nil
}

func (c *claimStub) OwnerSummaries(ctx context.Context, itemIDs []int64) (map[int64]claim.OwnerItemStatus, error) {
	if !c.reveal {
		return nil, nil
	}
	out := map[int64]claim.OwnerItemStatus{}
	for _, id := range itemIDs {
		out[id] = claim.OwnerItemStatus{Claimed: len(c.flags[id]) > 0}
	}
	return out, nil
}

type friendStub map[int64][]int64

func (f friendStub) Graph(ctx context.Context, userID int64) (privacy.FriendGraph, error) {
	return privacy.NewFriendSet(userID, f[userID]), nil
}

func (f friendStub) AreFriends(ctx context.Context, a, b int64) (bool, error) {
	return privacy.NewFriendSet(a, f[a]).AreFriends(a, b), nil
}

type nameStub map[int64]string

func (n nameStub) Names(ctx context.Context, ids []int64) (map[int64]string, error) {
	out := map[int64]string{}
	for _, id := range ids {
		out[id] = n[id]
	}
	return out, nil
}

type sent struct {
	recipient int64
	typ       notification.Type
	metadata  any
}

type recorder struct {
	sent []sent
}

func (r *recorder) Create(ctx context.Context, recipientID int64, t notification.Type, metadata any) (*notification.Notification, error) {
	r.sent = append(r.sent, sent{recipientID, t, metadata})
	return &notification.Notification{}, nil
}

type fixture struct {
	svc    *Service
	repo   *memRepo
	claims *claimStub
	rec    *recorder
}

func newFixture() *fixture {
	repo := newMemRepo()
	claims := &claimStub{flags: map[int64]claim.Claimants{}}
	friends := friendStub{
		owner:   {friendA, friendB, collab},
		friendA: {owner},
		friendB: {owner},
		collab:  {owner},
	}
	rec := &recorder{}
	svc := NewService(repo, claims, friends, nameStub{owner: "Olive"}, rec, logger.Discard())
	return &fixture{svc: svc, repo: repo, claims: claims, rec: rec}
}

func (f *fixture) wishlist(t *testing.T, mode string) (*Wishlist, *Item) {
	t.Helper()
	ctx := context.Background()
	w, err := f.svc.Create(ctx, owner, &CreateWishlistRequest{Name: "Birthday", Privacy: mode})
	require.NoError(t, err)
	item, err := f.svc.AddItem(ctx, owner, w.ID, &CreateItemRequest{Name: "Record player"})
	require.NoError(t, err)
	return w, item
}

func TestCreateNormalizesPrivacy(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	w, err := f.svc.Create(ctx, owner, &CreateWishlistRequest{Name: "Old", Privacy: "public"})
	require.NoError(t, err)
	assert.Equal(t, privacy.ModeFriends, w.Privacy)

	w, err = f.svc.Create(ctx, owner, &CreateWishlistRequest{Name: "Default"})
	require.NoError(t, err)
	assert.Equal(t, privacy.ModeFriends, w.Privacy)

	_, err = f.svc.Create(ctx, owner, &CreateWishlistRequest{Name: "", Privacy: "everyone"})
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Len(t, ve.Errors, 2)
}

func TestGetAsOwnerHidesClaims(t *testing.T) {
	f := newFixture()
	w, item := f.wishlist(t, "friends")
	f.claims.flags[item.ID] = claim.Claimants{friendA, friendB}

	detail, err := f.svc.Get(context.Background(), owner, w.ID)
	require.NoError(t, err)
	require.True(t, detail.IsOwnerView())
	require.Len(t, detail.OwnerItems, 1)
	assert.Nil(t, detail.OwnerItems[0].Claimed)
	assert.Empty(t, f.claims.viewerCalls, "owner path never asks for claimants")

	raw, err := json.Marshal(detail.ToResponse())
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "claim")
}

func TestGetAsOwnerWithReveal(t *testing.T) {
	f := newFixture()
	f.claims.reveal = true
	w, item := f.wishlist(t, "friends")
	f.claims.flags[item.ID] = claim.Claimants{friendA}

	_, err := f.repo.AddCollaborator(context.Background(), w.ID, collab)
	require.NoError(t, err)

	for _, viewer := range []int64{owner, collab} {
		detail, err := f.svc.Get(context.Background(), viewer, w.ID)
		require.NoError(t, err)
		require.True(t, detail.IsOwnerView())
		require.NotNil(t, detail.OwnerItems[0].Claimed)
		assert.True(t, *detail.OwnerItems[0].Claimed)

		raw, err := json.Marshal(detail.ToResponse())
		require.NoError(t, err)
		assert.NotContains(t, string(raw), "claimant")
	}
	assert.Empty(t, f.claims.viewerCalls)
}

func TestGetAsFriendShowsClaims(t *testing.T) {
	f := newFixture()
	w, item := f.wishlist(t, "friends")
	f.claims.flags[item.ID] = claim.Claimants{friendA}

	detail, err := f.svc.Get(context.Background(), friendA, w.ID)
	require.NoError(t, err)
	require.False(t, detail.IsOwnerView())
	require.Len(t, detail.ViewerItems, 1)
	assert.True(t, detail.ViewerItems[0].Claimed)
	assert.True(t, detail.ViewerItems[0].ClaimedByMe)

	detail, err = f.svc.Get(context.Background(), friendB, w.ID)
	require.NoError(t, err)
	assert.True(t, detail.ViewerItems[0].Claimed)
	assert.False(t, detail.ViewerItems[0].ClaimedByMe)
	assert.Equal(t, []int64{friendA}, detail.ViewerItems[0].ClaimantIDs)
}

func TestSelectedFriendsScenario(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	w, _ := f.wishlist(t, "selected_friends")

	_, err := f.svc.SelectViewer(ctx, owner, w.ID, friendA)
	require.NoError(t, err)
	reads := f.repo.itemReads

	_, err = f.svc.Get(ctx, friendA, w.ID)
	assert.NoError(t, err)

	_, err = f.svc.Get(ctx, friendB, w.ID)
	assert.ErrorIs(t, err, ErrNotVisible)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = f.svc.Get(ctx, owner, w.ID)
	assert.NoError(t, err)

	assert.Equal(t, reads+2, f.repo.itemReads, "denied viewer loads no items")

	require.Len(t, f.rec.sent, 1)
	assert.Equal(t, friendA, f.rec.sent[0].recipient)
	assert.Equal(t, notification.TypeWishlistShared, f.rec.sent[0].typ)
	assert.Equal(t, notification.WishlistMetadata{
		WishlistID: w.ID, WishlistName: "Birthday", OwnerID: owner, OwnerName: "Olive",
	}, f.rec.sent[0].metadata)
}

func TestDeniedViewers(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	private, _ := f.wishlist(t, "private")
	friends, _ := f.wishlist(t, "friends")

	_, err := f.svc.Get(ctx, friendA, private.ID)
	assert.ErrorIs(t, err, ErrNotVisible)
	_, err = f.svc.Get(ctx, stranger, friends.ID)
	assert.ErrorIs(t, err, ErrNotVisible)
	_, err = f.svc.Get(ctx, 0, friends.ID)
	assert.ErrorIs(t, err, ErrNotVisible)
	_, err = f.svc.Get(ctx, friendA, 999)
	assert.ErrorIs(t, err, ErrWishlistNotFound)

	visible, err := f.svc.ListVisible(ctx, friendA, owner)
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, friends.ID, visible[0].ID)

	visible, err = f.svc.ListVisible(ctx, stranger, owner)
	require.NoError(t, err)
	assert.Empty(t, visible)
}

func TestCollaborators(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	w, item := f.wishlist(t, "private")

	_, err := f.svc.AddCollaborator(ctx, friendA, w.ID, friendB)
	assert.ErrorIs(t, err, ErrNotOwner)

	_, err = f.svc.AddCollaborator(ctx, owner, w.ID, stranger)
	assert.ErrorIs(t, err, domain.ErrValidation)

	updated, err := f.svc.AddCollaborator(ctx, owner, w.ID, collab)
	require.NoError(t, err)
	assert.Equal(t, []int64{collab}, updated.Collaborators)
	require.Len(t, f.rec.sent, 1)
	assert.Equal(t, notification.TypeCollaboratorAdded, f.rec.sent[0].typ)

	_, err = f.svc.AddCollaborator(ctx, owner, w.ID, collab)
	require.NoError(t, err)
	assert.Len(t, f.rec.sent, 1, "adding twice notifies once")

	// collaborators see a private list and may edit items
	_, err = f.svc.Get(ctx, collab, w.ID)
	require.NoError(t, err)
	_, err = f.svc.UpdateItem(ctx, collab, w.ID, item.ID, &UpdateItemRequest{Name: strPtr("Turntable")})
	require.NoError(t, err)

	updated, err = f.svc.RemoveCollaborator(ctx, owner, w.ID, collab)
	require.NoError(t, err)
	assert.Empty(t, updated.Collaborators)
	_, err = f.svc.Get(ctx, collab, w.ID)
	assert.ErrorIs(t, err, ErrNotVisible)
}

func TestItemEditing(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	w, item := f.wishlist(t, "friends")
	other, _ := f.wishlist(t, "friends")

	_, err := f.svc.AddItem(ctx, friendA, w.ID, &CreateItemRequest{Name: "Socks"})
	assert.ErrorIs(t, err, ErrNotEditor)

	_, err = f.svc.AddItem(ctx, owner, w.ID, &CreateItemRequest{Name: " "})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.svc.UpdateItem(ctx, owner, other.ID, item.ID, &UpdateItemRequest{})
	assert.ErrorIs(t, err, ErrItemNotFound, "item belongs to another wishlist")

	assert.ErrorIs(t, f.svc.DeleteItem(ctx, friendA, w.ID, item.ID), domain.ErrForbidden)
	require.NoError(t, f.svc.DeleteItem(ctx, owner, w.ID, item.ID))
	assert.ErrorIs(t, f.svc.DeleteItem(ctx, owner, w.ID, item.ID), domain.ErrNotFound)
}

func TestUpdate(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	w, _ := f.wishlist(t, "friends")

	_, err := f.svc.Update(ctx, friendA, w.ID, &UpdateWishlistRequest{Name: strPtr("Mine now")})
	assert.ErrorIs(t, err, ErrNotOwner)

	updated, err := f.svc.Update(ctx, owner, w.ID, &UpdateWishlistRequest{Privacy: strPtr("public")})
	require.NoError(t, err)
	assert.Equal(t, privacy.ModeFriends, updated.Privacy)

	_, err = f.svc.Update(ctx, owner, w.ID, &UpdateWishlistRequest{Privacy: strPtr("nobody")})
	assert.ErrorIs(t, err, domain.ErrValidation)

	assert.ErrorIs(t, f.svc.Delete(ctx, friendA, w.ID), ErrNotOwner)
	require.NoError(t, f.svc.Delete(ctx, owner, w.ID))
}

func strPtr(s string) *string { return &s }
