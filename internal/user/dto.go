package user

import (
	"net/mail"
	"strings"
	"time"

	"github.com/fkhayef/giftlist/internal/domain"
)

// CreateUserRequest represents the request body for creating a user
type CreateUserRequest struct {
	Username    string  `json:"username" validate:"required,min=3,max=50"`
	Email       string  `json:"email" validate:"required,email"`
	DisplayName *string `json:"display_name,omitempty" validate:"omitempty,max=100"`
	Birthday    *string `json:"birthday,omitempty" example:"1990-04-12"`
	AvatarURL   *string `json:"avatar_url,omitempty"`
}

// UpdateUserRequest represents the request body for updating a user
type UpdateUserRequest struct {
	Username    *string `json:"username,omitempty" validate:"omitempty,min=3,max=50"`
	DisplayName *string `json:"display_name,omitempty" validate:"omitempty,max=100"`
	Birthday    *string `json:"birthday,omitempty" example:"1990-04-12"`
	AvatarURL   *string `json:"avatar_url,omitempty"`
}

// Validate checks the request and returns a *domain.ValidationError
func (r *CreateUserRequest) Validate() error {
	var errs []domain.FieldError
	if n := len(strings.TrimSpace(r.Username)); n < 3 || n > 50 {
		errs = append(errs, domain.FieldError{Field: "username", Message: "must be 3-50 characters"})
	}
	if _, err := mail.ParseAddress(r.Email); err != nil {
		errs = append(errs, domain.FieldError{Field: "email", Message: "must be a valid email address"})
	}
	errs = append(errs, validateOptional(r.DisplayName, r.Birthday)...)
	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

// Validate checks the request and returns a *domain.ValidationError
func (r *UpdateUserRequest) Validate() error {
	var errs []domain.FieldError
	if r.Username != nil {
		if n := len(strings.TrimSpace(*r.Username)); n < 3 || n > 50 {
			errs = append(errs, domain.FieldError{Field: "username", Message: "must be 3-50 characters"})
		}
	}
	errs = append(errs, validateOptional(r.DisplayName, r.Birthday)...)
	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

func validateOptional(displayName, birthday *string) []domain.FieldError {
	var errs []domain.FieldError
	if displayName != nil && len(*displayName) > 100 {
		errs = append(errs, domain.FieldError{Field: "display_name", Message: "must be at most 100 characters"})
	}
	if birthday != nil {
		if _, err := time.Parse(DateLayout, *birthday); err != nil {
			errs = append(errs, domain.FieldError{Field: "birthday", Message: "must be a date formatted YYYY-MM-DD"})
		}
	}
	return errs
}

// parseBirthday converts the wire form; call after Validate
func parseBirthday(s *string) *time.Time {
	if s == nil {
		return nil
	}
	t, err := time.Parse(DateLayout, *s)
	if err != nil {
		return nil
	}
	return &t
}

// UserResponse represents the response for a single user
type UserResponse struct {
	ID          int64   `json:"id"`
	Username    string  `json:"username"`
	Email       string  `json:"email"`
	DisplayName *string `json:"display_name,omitempty"`
	Birthday    *string `json:"birthday,omitempty"`
	AvatarURL   *string `json:"avatar_url,omitempty"`
	CreatedAt   string  `json:"created_at"`
}

// ToResponse converts a User model to a UserResponse DTO
func (u *User) ToResponse() *UserResponse {
	resp := &UserResponse{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		AvatarURL:   u.AvatarURL,
		CreatedAt:   u.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
	if u.Birthday != nil {
		b := u.Birthday.Format(DateLayout)
		resp.Birthday = &b
	}
	return resp
}
