package validation

import (
	"testing"
	"time"

	"bookshelf/backend/app/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signup struct {
	Username string `json:"username" validate:"required,min=3,max=50,alphanum"`
	Email    string `json:"email" validate:"required,email"`
	Year     *int   `json:"published_year" validate:"omitempty,pubyear"`
	Title    string `json:"title,omitempty" validate:"notblank"`
}

func TestValidate_OK(t *testing.T) {
	y := 1965
	err := New().Validate(signup{Username: "alice", Email: "a@example.com", Year: &y, Title: "Dune"})
	assert.NoError(t, err)
}

func TestValidate_CollectsFields(t *testing.T) {
	y := 999
	err := New().Validate(signup{Username: "al", Email: "nope", Year: &y, Title: "   "})
	require.Error(t, err)

	e, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindValidation, e.Kind)

	byField := map[string]string{}
	for _, f := range e.Fields {
		byField[f.Field] = f.Message
	}
	assert.Equal(t, "username must be at least 3 characters", byField["username"])
	assert.Equal(t, "email must be a valid email address", byField["email"])
	assert.Contains(t, byField["published_year"], "between 1000")
	assert.Equal(t, "title is required", byField["title"])
}

func TestValidYear(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	assert.True(t, ValidYear(1000, now))
	assert.True(t, ValidYear(2026, now))
	assert.False(t, ValidYear(999, now))
	assert.False(t, ValidYear(2027, now))
}

func TestVar(t *testing.T) {
	v := New()
	assert.Nil(t, v.Var("genre", "Noir", "max=100"))

	fe := v.Var("genre", string(make([]byte, 101)), "max=100")
	require.NotNil(t, fe)
	assert.Equal(t, "genre", fe.Field)
	assert.Equal(t, "genre must not exceed 100 characters", fe.Message)
}
