package friend

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

const friendshipColumns = `f.id, f.requester_id, f.addressee_id, f.status, f.created_at, f.accepted_at`

// Repository handles friendship persistence
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new friend repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func scanFriendship(row interface{ Scan(...any) error }, extra ...any) (*Friendship, error) {
	f := &Friendship{}
	dest := append([]any{
		&f.ID,
		&f.RequesterID,
		&f.AddresseeID,
		&f.Status,
		&f.CreatedAt,
		&f.AcceptedAt,
	}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return f, nil
}

// Create inserts a pending friend request
func (r *Repository) Create(ctx context.Context, requesterID, addresseeID int64) (*Friendship, error) {
	query := `
		INSERT INTO friendships AS f (requester_id, addressee_id, status)
		VALUES ($1, $2, $3)
		RETURNING ` + friendshipColumns

	f, err := scanFriendship(r.db.QueryRowContext(ctx, query, requesterID, addresseeID, StatusPending))
	if err != nil {
		return nil, fmt.Errorf("failed to create friend request: %w", err)
	}
	return f, nil
}

// GetByID retrieves a friendship by its ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*Friendship, error) {
	query := `SELECT ` + friendshipColumns + ` FROM friendships f WHERE f.id = $1`

	f, err := scanFriendship(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get friendship: %w", err)
	}
	return f, nil
}

// GetBetween retrieves the edge between two users in either direction
func (r *Repository) GetBetween(ctx context.Context, a, b int64) (*Friendship, error) {
	query := `
		SELECT ` + friendshipColumns + `
		FROM friendships f
		WHERE (f.requester_id = $1 AND f.addressee_id = $2)
		   OR (f.requester_id = $2 AND f.addressee_id = $1)
	`

	f, err := scanFriendship(r.db.QueryRowContext(ctx, query, a, b))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get friendship: %w", err)
	}
	return f, nil
}

// Accept moves a pending request to ACCEPTED
func (r *Repository) Accept(ctx context.Context, id int64, at time.Time) (*Friendship, error) {
	query := `
		UPDATE friendships AS f
		SET status = $2, accepted_at = $3
		WHERE f.id = $1 AND f.status = $4
		RETURNING ` + friendshipColumns

	f, err := scanFriendship(r.db.QueryRowContext(ctx, query, id, StatusAccepted, at, StatusPending))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to accept friend request: %w", err)
	}
	return f, nil
}

// Delete removes an edge. Both users are also dropped from each other's
// selected viewer sets so a later re-friend does not silently restore access.
func (r *Repository) Delete(ctx context.Context, f *Friendship) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM friendships WHERE id = $1`, f.ID); err != nil {
		return fmt.Errorf("failed to delete friendship: %w", err)
	}

	query := `
		DELETE FROM wishlist_selected_viewers sv
		USING wishlists w
		WHERE sv.wishlist_id = w.id
		  AND ((w.owner_id = $1 AND sv.user_id = $2) OR (w.owner_id = $2 AND sv.user_id = $1))
	`
	if _, err := tx.ExecContext(ctx, query, f.RequesterID, f.AddresseeID); err != nil {
		return fmt.Errorf("failed to clear selected viewers: %w", err)
	}

	return tx.Commit()
}

// ListFriends retrieves the accepted friends of a user
func (r *Repository) ListFriends(ctx context.Context, userID int64) ([]*Friend, error) {
	query := `
		SELECT u.id, u.username, u.display_name, u.birthday, f.accepted_at
		FROM friendships f
		JOIN users u ON u.id = CASE WHEN f.requester_id = $1 THEN f.addressee_id ELSE f.requester_id END
		WHERE (f.requester_id = $1 OR f.addressee_id = $1) AND f.status = $2
		ORDER BY u.username
	`

	rows, err := r.db.QueryContext(ctx, query, userID, StatusAccepted)
	if err != nil {
		return nil, fmt.Errorf("failed to list friends: %w", err)
	}
	defer rows.Close()

	var friends []*Friend
	for rows.Next() {
		fr := &Friend{}
		var birthday sql.NullTime
		var since sql.NullTime
		if err := rows.Scan(&fr.UserID, &fr.Username, &fr.DisplayName, &birthday, &since); err != nil {
			return nil, fmt.Errorf("failed to scan friend: %w", err)
		}
		if birthday.Valid {
			b := birthday.Time.UTC()
			fr.Birthday = &b
		}
		fr.Since = since.Time
		friends = append(friends, fr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate friends: %w", err)
	}

	return friends, nil
}

// ListPending retrieves the requests waiting for userID to answer
func (r *Repository) ListPending(ctx context.Context, userID int64) ([]*Friendship, error) {
	query := `
		SELECT ` + friendshipColumns + `, u.username
		FROM friendships f
		JOIN users u ON u.id = f.requester_id
		WHERE f.addressee_id = $1 AND f.status = $2
		ORDER BY f.created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID, StatusPending)
	if err != nil {
		return nil, fmt.Errorf("failed to list friend requests: %w", err)
	}
	defer rows.Close()

	var requests []*Friendship
	for rows.Next() {
		var username string
		f, err := scanFriendship(rows, &username)
		if err != nil {
			return nil, fmt.Errorf("failed to scan friend request: %w", err)
		}
		f.RequesterUsername = username
		requests = append(requests, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate friend requests: %w", err)
	}

	return requests, nil
}

// FriendIDs retrieves the IDs of the accepted friends of a user
func (r *Repository) FriendIDs(ctx context.Context, userID int64) ([]int64, error) {
	query := `
		SELECT CASE WHEN requester_id = $1 THEN addressee_id ELSE requester_id END
		FROM friendships
		WHERE (requester_id = $1 OR addressee_id = $1) AND status = $2
	`

	rows, err := r.db.QueryContext(ctx, query, userID, StatusAccepted)
	if err != nil {
		return nil, fmt.Errorf("failed to list friend ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan friend id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
