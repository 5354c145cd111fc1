package friend

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fkhayef/giftlist/internal/domain"
	"github.com/fkhayef/giftlist/internal/notification"
	"github.com/fkhayef/giftlist/internal/user"
	"github.com/fkhayef/giftlist/pkg/logger"
)

type memRepo struct {
	nextID int64
	edges  map[int64]*Friendship
	// selected[owner] holds the owner's selected viewers across all wishlists
	selected map[int64]map[int64]bool
}

func newMemRepo() *memRepo {
	return &memRepo{edges: map[int64]*Friendship{}, selected: map[int64]map[int64]bool{}}
}

func (m *memRepo) Create(ctx context.Context, requesterID, addresseeID int64) (*Friendship, error) {
	m.nextID++
	f := &Friendship{ID: m.nextID, RequesterID: requesterID, AddresseeID: addresseeID, Status: StatusPending}
	m.edges[f.ID] = f
	cp := *f
	return &cp, nil
}

func (m *memRepo) GetByID(ctx context.Context, id int64) (*Friendship, error) {
	f, ok := m.edges[id]
	if !ok {
		return nil, nil
	}
	cp := *f
	return &cp, nil
}

func (m *memRepo) GetBetween(ctx context.Context, a, b int64) (*Friendship, error) {
	for _, f := range m.edges {
		if f.Involves(a) && f.Involves(b) {
			cp := *f
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memRepo) Accept(ctx context.Context, id int64, at time.Time) (*Friendship, error) {
	f, ok := m.edges[id]
	if !ok || f.Status != StatusPending {
		return nil, nil
	}
	f.Status = StatusAccepted
	f.AcceptedAt = &at
	cp := *f
	return &cp, nil
}

func (m *memRepo) Delete(ctx context.Context, f *Friendship) error {
	delete(m.edges, f.ID)
	delete(m.selected[f.RequesterID], f.AddresseeID)
	delete(m.selected[f.AddresseeID], f.RequesterID)
	return nil
}

func (m *memRepo) ListFriends(ctx context.Context, userID int64) ([]*Friend, error) {
	var out []*Friend
	for _, f := range m.edges {
		if f.Status == StatusAccepted && f.Involves(userID) {
			out = append(out, &Friend{UserID: f.Other(userID)})
		}
	}
	return out, nil
}

func (m *memRepo) ListPending(ctx context.Context, userID int64) ([]*Friendship, error) {
	var out []*Friendship
	for _, f := range m.edges {
		if f.Status == StatusPending && f.AddresseeID == userID {
			out = append(out, f)
		}
	}
	return out, nil
}

func (m *memRepo) FriendIDs(ctx context.Context, userID int64) ([]int64, error) {
	var ids []int64
	for _, f := range m.edges {
		if f.Status == StatusAccepted && f.Involves(userID) {
			ids = append(ids, f.Other(userID))
		}
	}
	return ids, nil
}

type memUsers map[int64]*user.User

func (m memUsers) GetByID(ctx context.Context, id int64) (*user.User, error) {
	u, ok := m[id]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	return u, nil
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
	return &notification.Notification{RecipientID: recipientID, Type: t}, nil
}

func setup() (*Service, *memRepo, *recorder) {
	repo := newMemRepo()
	users := memUsers{
		1: {ID: 1, Username: "ana"},
		2: {ID: 2, Username: "ben"},
		3: {ID: 3, Username: "cy"},
	}
	rec := &recorder{}
	return NewService(repo, users, rec, logger.Discard()), repo, rec
}

func TestSendRequest(t *testing.T) {
	ctx := context.Background()

	t.Run("notifies the addressee", func(t *testing.T) {
		svc, _, rec := setup()
		f, err := svc.SendRequest(ctx, 1, 2)
		require.NoError(t, err)
		assert.Equal(t, StatusPending, f.Status)

		require.Len(t, rec.sent, 1)
		assert.Equal(t, int64(2), rec.sent[0].recipient)
		assert.Equal(t, notification.TypeFriendRequest, rec.sent[0].typ)
		assert.Equal(t, notification.FriendRequestMetadata{RequesterID: 1, RequesterName: "ana"}, rec.sent[0].metadata)
	})

	t.Run("self", func(t *testing.T) {
		svc, _, _ := setup()
		_, err := svc.SendRequest(ctx, 1, 1)
		assert.ErrorIs(t, err, domain.ErrConflict)
	})

	t.Run("unknown user", func(t *testing.T) {
		svc, _, _ := setup()
		_, err := svc.SendRequest(ctx, 1, 99)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("existing edge in either direction", func(t *testing.T) {
		svc, _, _ := setup()
		_, err := svc.SendRequest(ctx, 1, 2)
		require.NoError(t, err)

		_, err = svc.SendRequest(ctx, 2, 1)
		assert.ErrorIs(t, err, ErrAlreadyExists)
	})
}

func TestAccept(t *testing.T) {
	ctx := context.Background()
	svc, _, rec := setup()

	f, err := svc.SendRequest(ctx, 1, 2)
	require.NoError(t, err)

	_, err = svc.Accept(ctx, 1, f.ID)
	assert.ErrorIs(t, err, ErrNotAddressee)

	_, err = svc.Accept(ctx, 3, f.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	accepted, err := svc.Accept(ctx, 2, f.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusAccepted, accepted.Status)
	assert.NotNil(t, accepted.AcceptedAt)

	last := rec.sent[len(rec.sent)-1]
	assert.Equal(t, int64(1), last.recipient)
	assert.Equal(t, notification.TypeFriendAccepted, last.typ)
	assert.Equal(t, notification.FriendAcceptedMetadata{FriendID: 2, FriendName: "ben"}, last.metadata)

	ok, err := svc.AreFriends(ctx, 2, 1)
	require.NoError(t, err)
	assert.True(t, ok)

	graph, err := svc.Graph(ctx, 1)
	require.NoError(t, err)
	assert.True(t, graph.AreFriends(2, 1))
	assert.False(t, graph.AreFriends(3, 1))

	_, err = svc.Accept(ctx, 2, f.ID)
	assert.ErrorIs(t, err, ErrRequestNotFound, "accepting twice")
}

func TestDeclineAndRemove(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := setup()

	pending, err := svc.SendRequest(ctx, 1, 3)
	require.NoError(t, err)
	assert.ErrorIs(t, svc.Remove(ctx, 1, 3), ErrNotFriends, "pending is not a friendship")
	assert.ErrorIs(t, svc.Decline(ctx, 2, pending.ID), ErrRequestNotFound)
	require.NoError(t, svc.Decline(ctx, 3, pending.ID))

	f, err := svc.SendRequest(ctx, 1, 2)
	require.NoError(t, err)
	_, err = svc.Accept(ctx, 2, f.ID)
	require.NoError(t, err)
	repo.selected[1] = map[int64]bool{2: true, 3: true}

	require.NoError(t, svc.Remove(ctx, 2, 1))
	assert.False(t, repo.selected[1][2], "ex-friend dropped from selected viewers")
	assert.True(t, repo.selected[1][3])

	ok, err := svc.AreFriends(ctx, 1, 2)
	require.NoError(t, err)
	assert.False(t, ok)
}
