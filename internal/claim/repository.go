package claim

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/fkhayef/giftlist/internal/privacy"
)

// Repository persists ownership flags
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new claim repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// GetItemContext loads an item with its wishlist's owner, privacy,
// collaborators and selected viewers
func (r *Repository) GetItemContext(ctx context.Context, itemID int64) (*ItemContext, error) {
	query := `
		SELECT i.id, i.name, w.id, w.name, w.owner_id, w.privacy,
		       ARRAY(SELECT c.user_id FROM wishlist_collaborators c WHERE c.wishlist_id = w.id ORDER BY c.added_at),
		       ARRAY(SELECT s.user_id FROM wishlist_selected_viewers s WHERE s.wishlist_id = w.id)
		FROM items i
		JOIN wishlists w ON w.id = i.wishlist_id
		WHERE i.id = $1
	`

	ic := &ItemContext{}
	var mode string
	err := r.db.QueryRowContext(ctx, query, itemID).Scan(
		&ic.ItemID,
		&ic.ItemName,
		&ic.WishlistID,
		&ic.WishlistName,
		&ic.Subject.OwnerID,
		&mode,
		pq.Array(&ic.Subject.Collaborators),
		pq.Array(&ic.Subject.SelectedViewers),
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get item: %w", err)
	}

	ic.Subject.Mode, err = privacy.ParseMode(mode)
	if err != nil {
		// the CHECK constraint makes this unreachable; deny rather than guess
		ic.Subject.Mode = privacy.ModePrivate
	}

	return ic, nil
}

// Insert records a flag. created is false when the pair already existed.
func (r *Repository) Insert(ctx context.Context, itemID, claimantID int64) (created bool, err error) {
	query := `
		INSERT INTO ownership_flags (item_id, claimant_id)
		VALUES ($1, $2)
		ON CONFLICT (item_id, claimant_id) DO NOTHING
	`

	result, err := r.db.ExecContext(ctx, query, itemID, claimantID)
	if err != nil {
		return false, fmt.Errorf("failed to flag item: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n == 1, nil
}

// Delete removes a flag. removed is false when there was none.
func (r *Repository) Delete(ctx context.Context, itemID, claimantID int64) (removed bool, err error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM ownership_flags WHERE item_id = $1 AND claimant_id = $2`, itemID, claimantID)
	if err != nil {
		return false, fmt.Errorf("failed to unflag item: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n > 0, nil
}

// ListClaimants retrieves the claimants of one item, oldest first
func (r *Repository) ListClaimants(ctx context.Context, itemID int64) ([]int64, error) {
	query := `SELECT claimant_id FROM ownership_flags WHERE item_id = $1 ORDER BY created_at, claimant_id`

	rows, err := r.db.QueryContext(ctx, query, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to list claimants: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan claimant: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// GetWishlistSubject loads the owner, privacy, collaborators and selected
// viewers of one wishlist
func (r *Repository) GetWishlistSubject(ctx context.Context, wishlistID int64) (*privacy.Subject, error) {
	query := `
		SELECT w.owner_id, w.privacy,
		       ARRAY(SELECT c.user_id FROM wishlist_collaborators c WHERE c.wishlist_id = w.id ORDER BY c.added_at),
		       ARRAY(SELECT s.user_id FROM wishlist_selected_viewers s WHERE s.wishlist_id = w.id)
		FROM wishlists w
		WHERE w.id = $1
	`

	subject := &privacy.Subject{}
	var mode string
	err := r.db.QueryRowContext(ctx, query, wishlistID).Scan(
		&subject.OwnerID,
		&mode,
		pq.Array(&subject.Collaborators),
		pq.Array(&subject.SelectedViewers),
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get wishlist: %w", err)
	}

	subject.Mode, err = privacy.ParseMode(mode)
	if err != nil {
		subject.Mode = privacy.ModePrivate
	}
	return subject, nil
}

// ClaimantsByWishlist retrieves the claimants of every item of one wishlist
func (r *Repository) ClaimantsByWishlist(ctx context.Context, wishlistID int64) (map[int64][]int64, error) {
	query := `
		SELECT f.item_id, f.claimant_id
		FROM ownership_flags f
		JOIN items i ON i.id = f.item_id
		WHERE i.wishlist_id = $1
		ORDER BY f.created_at, f.claimant_id
	`

	rows, err := r.db.QueryContext(ctx, query, wishlistID)
	if err != nil {
		return nil, fmt.Errorf("failed to list claimants: %w", err)
	}
	defer rows.Close()

	out := make(map[int64][]int64)
	for rows.Next() {
		var itemID, claimantID int64
		if err := rows.Scan(&itemID, &claimantID); err != nil {
			return nil, fmt.Errorf("failed to scan claimant: %w", err)
		}
		out[itemID] = append(out[itemID], claimantID)
	}
	return out, rows.Err()
}

// FlaggedItems reports which of itemIDs have at least one flag
func (r *Repository) FlaggedItems(ctx context.Context, itemIDs []int64) (map[int64]bool, error) {
	out := make(map[int64]bool)
	if len(itemIDs) == 0 {
		return out, nil
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT item_id FROM ownership_flags WHERE item_id = ANY($1)`, pq.Array(itemIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to check flags: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan flagged item: %w", err)
		}
		out[id] = true
	}
	return out, rows.Err()
}
