package user

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fkhayef/giftlist/internal/database"
	"github.com/fkhayef/giftlist/internal/domain"
)

// Common errors
var (
	ErrUserNotFound      = fmt.Errorf("user %w", domain.ErrNotFound)
	ErrEmailAlreadyInUse = fmt.Errorf("email already in use: %w", domain.ErrConflict)
	ErrNotSelf           = fmt.Errorf("can only modify your own account: %w", domain.ErrForbidden)
)

type userRepo interface {
	Create(ctx context.Context, req *CreateUserRequest) (*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByIDs(ctx context.Context, ids []int64) ([]*User, error)
	List(ctx context.Context, limit, offset int) ([]*User, int, error)
	ListWithBirthday(ctx context.Context) ([]*User, error)
	Update(ctx context.Context, id int64, req *UpdateUserRequest) (*User, error)
	Delete(ctx context.Context, id int64) error
}

// Service handles user business logic
type Service struct {
	repo userRepo
	log  *logrus.Entry
}

// NewService creates a new user service with repository dependency injected
func NewService(repo userRepo, log *logrus.Logger) *Service {
	return &Service{repo: repo, log: log.WithField("service", "user")}
}

// Create creates a new user
func (s *Service) Create(ctx context.Context, req *CreateUserRequest) (*User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailAlreadyInUse
	}

	user, err := s.repo.Create(ctx, req)
	if err != nil {
		// lost a race with a concurrent signup
		if database.IsUniqueViolation(err) {
			return nil, ErrEmailAlreadyInUse
		}
		return nil, err
	}

	s.log.WithField("user_id", user.ID).Info("user created")
	return user, nil
}

// GetByID retrieves a user by their ID
func (s *Service) GetByID(ctx context.Context, id int64) (*User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// Names returns display names keyed by user ID. Unknown IDs are left out.
func (s *Service) Names(ctx context.Context, ids []int64) (map[int64]string, error) {
	users, err := s.repo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	names := make(map[int64]string, len(users))
	for _, u := range users {
		names[u.ID] = u.Name()
	}
	return names, nil
}

// List retrieves all users with pagination
func (s *Service) List(ctx context.Context, page, perPage int) ([]*User, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	offset := (page - 1) * perPage
	return s.repo.List(ctx, perPage, offset)
}

// ListBirthdaysBetween returns the users whose next birthday, counted from
// from's calendar day, falls on or before to
func (s *Service) ListBirthdaysBetween(ctx context.Context, from, to time.Time) ([]*User, error) {
	users, err := s.repo.ListWithBirthday(ctx)
	if err != nil {
		return nil, err
	}

	var upcoming []*User
	for _, u := range users {
		next, ok := u.NextBirthday(from)
		if ok && DaysBetween(next, to) >= 0 {
			upcoming = append(upcoming, u)
		}
	}
	return upcoming, nil
}

// Update modifies the caller's own account
func (s *Service) Update(ctx context.Context, callerID, id int64, req *UpdateUserRequest) (*User, error) {
	if callerID != id {
		return nil, ErrNotSelf
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	user, err := s.repo.Update(ctx, id, req)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// Delete removes the caller's own account
func (s *Service) Delete(ctx context.Context, callerID, id int64) error {
	if callerID != id {
		return ErrNotSelf
	}
	return s.repo.Delete(ctx, id)
}
