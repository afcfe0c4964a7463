package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"min=8"`
}

func TestRequestValidator_FieldErrors(t *testing.T) {
	v := New()

	err := v.Validate(&sample{Email: "nope", Password: "short"})
	require.Error(t, err)

	fields := FieldErrors(err)
	assert.Equal(t, "must be a valid email", fields["email"])
	assert.Equal(t, "must be at least 8", fields["password"])

	assert.NoError(t, v.Validate(&sample{Email: "a@example.com", Password: "long enough"}))
	assert.Nil(t, FieldErrors(assert.AnError))
}
