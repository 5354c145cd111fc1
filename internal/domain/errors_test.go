package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationError_UnwrapsToErrValidation(t *testing.T) {
	err := fmt.Errorf("create wishlist: %w", NewValidationError("name", "required"))

	assert.True(t, errors.Is(err, ErrValidation))

	var ve *ValidationError
	assert.True(t, errors.As(err, &ve))
	assert.Equal(t, "name", ve.Errors[0].Field)
}

func TestValidationError_Message(t *testing.T) {
	single := NewValidationError("name", "required")
	assert.Equal(t, "validation: name: required", single.Error())

	multi := &ValidationError{Errors: []FieldError{
		{Field: "name", Message: "required"},
		{Field: "privacy", Message: "unknown mode"},
	}}
	assert.Equal(t, "validation: name: required; privacy: unknown mode", multi.Error())
}
