package wishlist

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/fkhayef/giftlist/internal/privacy"
)

const wishlistColumns = `
	w.id, w.owner_id, w.name, w.privacy, w.created_at, w.updated_at,
	ARRAY(SELECT c.user_id FROM wishlist_collaborators c WHERE c.wishlist_id = w.id ORDER BY c.added_at),
	ARRAY(SELECT s.user_id FROM wishlist_selected_viewers s WHERE s.wishlist_id = w.id ORDER BY s.user_id)`

const itemColumns = `id, wishlist_id, name, link, price, notes, position, created_at`

// Repository handles wishlist and item persistence
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new wishlist repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWishlist(row rowScanner) (*Wishlist, error) {
	w := &Wishlist{}
	var mode string
	if err := row.Scan(
		&w.ID,
		&w.OwnerID,
		&w.Name,
		&mode,
		&w.CreatedAt,
		&w.UpdatedAt,
		pq.Array(&w.Collaborators),
		pq.Array(&w.SelectedViewers),
	); err != nil {
		return nil, err
	}

	// legacy "public" rows read back as friends
	m, err := privacy.ParseMode(mode)
	if err != nil {
		m = privacy.ModePrivate
	}
	w.Privacy = m

	return w, nil
}

func scanItem(row rowScanner) (*Item, error) {
	item := &Item{}
	if err := row.Scan(
		&item.ID,
		&item.WishlistID,
		&item.Name,
		&item.Link,
		&item.Price,
		&item.Notes,
		&item.Position,
		&item.CreatedAt,
	); err != nil {
		return nil, err
	}
	return item, nil
}

// Create inserts a new wishlist
func (r *Repository) Create(ctx context.Context, ownerID int64, name string, mode privacy.Mode) (*Wishlist, error) {
	query := `
		WITH w AS (
			INSERT INTO wishlists (owner_id, name, privacy)
			VALUES ($1, $2, $3)
			RETURNING *
		)
		SELECT w.id, w.owner_id, w.name, w.privacy, w.created_at, w.updated_at,
		       ARRAY[]::BIGINT[], ARRAY[]::BIGINT[]
		FROM w
	`

	w, err := scanWishlist(r.db.QueryRowContext(ctx, query, ownerID, name, mode.Normalize()))
	if err != nil {
		return nil, fmt.Errorf("failed to create wishlist: %w", err)
	}
	return w, nil
}

// GetByID retrieves a wishlist with its collaborators and selected viewers
func (r *Repository) GetByID(ctx context.Context, id int64) (*Wishlist, error) {
	query := `SELECT ` + wishlistColumns + ` FROM wishlists w WHERE w.id = $1`

	w, err := scanWishlist(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get wishlist: %w", err)
	}
	return w, nil
}

// ListByOwner retrieves the wishlists owned by ownerID
func (r *Repository) ListByOwner(ctx context.Context, ownerID int64) ([]*Wishlist, error) {
	query := `
		SELECT ` + wishlistColumns + `
		FROM wishlists w
		WHERE w.owner_id = $1
		ORDER BY w.created_at DESC
	`
	return r.queryWishlists(ctx, query, ownerID)
}

// ListForUser retrieves the wishlists userID owns or collaborates on
func (r *Repository) ListForUser(ctx context.Context, userID int64) ([]*Wishlist, error) {
	query := `
		SELECT ` + wishlistColumns + `
		FROM wishlists w
		WHERE w.owner_id = $1
		   OR EXISTS (SELECT 1 FROM wishlist_collaborators c WHERE c.wishlist_id = w.id AND c.user_id = $1)
		ORDER BY w.created_at DESC
	`
	return r.queryWishlists(ctx, query, userID)
}

func (r *Repository) queryWishlists(ctx context.Context, query string, args ...any) ([]*Wishlist, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list wishlists: %w", err)
	}
	defer rows.Close()

	var lists []*Wishlist
	for rows.Next() {
		w, err := scanWishlist(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan wishlist: %w", err)
		}
		lists = append(lists, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate wishlists: %w", err)
	}
	return lists, nil
}

// Update modifies name and privacy. The mode, when given, must already be
// normalized.
func (r *Repository) Update(ctx context.Context, id int64, name *string, mode *privacy.Mode) (*Wishlist, error) {
	query := `
		UPDATE wishlists
		SET name = COALESCE($2, name),
		    privacy = COALESCE($3, privacy),
		    updated_at = NOW()
		WHERE id = $1
	`

	var modeArg *string
	if mode != nil {
		s := string(mode.Normalize())
		modeArg = &s
	}

	result, err := r.db.ExecContext(ctx, query, id, name, modeArg)
	if err != nil {
		return nil, fmt.Errorf("failed to update wishlist: %w", err)
	}
	if n, err := result.RowsAffected(); err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	} else if n == 0 {
		return nil, nil
	}

	return r.GetByID(ctx, id)
}

// Delete removes a wishlist with its items and flags
func (r *Repository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM wishlists WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete wishlist: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrWishlistNotFound
	}
	return nil
}

// AddCollaborator adds userID to the wishlist. added is false if already there.
func (r *Repository) AddCollaborator(ctx context.Context, wishlistID, userID int64) (bool, error) {
	return r.execAffected(ctx, "add collaborator", `
		INSERT INTO wishlist_collaborators (wishlist_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`, wishlistID, userID)
}

// RemoveCollaborator removes userID from the wishlist
func (r *Repository) RemoveCollaborator(ctx context.Context, wishlistID, userID int64) (bool, error) {
	return r.execAffected(ctx, "remove collaborator",
		`DELETE FROM wishlist_collaborators WHERE wishlist_id = $1 AND user_id = $2`, wishlistID, userID)
}

// AddSelectedViewer marks userID as selected for the wishlist
func (r *Repository) AddSelectedViewer(ctx context.Context, wishlistID, userID int64) (bool, error) {
	return r.execAffected(ctx, "select viewer", `
		INSERT INTO wishlist_selected_viewers (wishlist_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`, wishlistID, userID)
}

// RemoveSelectedViewer unmarks userID for the wishlist
func (r *Repository) RemoveSelectedViewer(ctx context.Context, wishlistID, userID int64) (bool, error) {
	return r.execAffected(ctx, "unselect viewer",
		`DELETE FROM wishlist_selected_viewers WHERE wishlist_id = $1 AND user_id = $2`, wishlistID, userID)
}

func (r *Repository) execAffected(ctx context.Context, op, query string, args ...any) (bool, error) {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to %s: %w", op, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n > 0, nil
}

// CreateItem appends an item to the wishlist
func (r *Repository) CreateItem(ctx context.Context, wishlistID int64, req *CreateItemRequest) (*Item, error) {
	query := `
		INSERT INTO items (wishlist_id, name, link, price, notes, position)
		VALUES ($1, $2, $3, $4, $5,
		        (SELECT COALESCE(MAX(position), -1) + 1 FROM items WHERE wishlist_id = $1))
		RETURNING ` + itemColumns

	item, err := scanItem(r.db.QueryRowContext(ctx, query, wishlistID, req.Name, req.Link, req.Price, req.Notes))
	if err != nil {
		return nil, fmt.Errorf("failed to create item: %w", err)
	}
	return item, nil
}

// GetItem retrieves an item by its ID
func (r *Repository) GetItem(ctx context.Context, id int64) (*Item, error) {
	item, err := scanItem(r.db.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM items WHERE id = $1`, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	return item, nil
}

// ListItems retrieves the items of a wishlist in display order
func (r *Repository) ListItems(ctx context.Context, wishlistID int64) ([]*Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE wishlist_id = $1 ORDER BY position, id`

	rows, err := r.db.QueryContext(ctx, query, wishlistID)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	defer rows.Close()

	var items []*Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate items: %w", err)
	}
	return items, nil
}

// UpdateItem modifies an item
func (r *Repository) UpdateItem(ctx context.Context, id int64, req *UpdateItemRequest) (*Item, error) {
	query := `
		UPDATE items
		SET name = COALESCE($2, name),
		    link = COALESCE($3, link),
		    price = COALESCE($4, price),
		    notes = COALESCE($5, notes),
		    position = COALESCE($6, position)
		WHERE id = $1
		RETURNING ` + itemColumns

	item, err := scanItem(r.db.QueryRowContext(ctx, query, id, req.Name, req.Link, req.Price, req.Notes, req.Position))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update item: %w", err)
	}
	return item, nil
}

// DeleteItem removes an item and its flags
func (r *Repository) DeleteItem(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrItemNotFound
	}
	return nil
}
