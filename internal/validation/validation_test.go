package validation

import (
	"strings"
	"testing"

	"gamestore/backend/internal/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signup struct {
	Username string   `json:"username" validate:"required,min=4,max=20,username"`
	FullName string   `json:"fullName" validate:"required,min=3,max=50,fullname"`
	Email    string   `json:"email" validate:"required,email"`
	Password string   `json:"password" validate:"required,min=8,max=72,strongpassword"`
	Price    *float64 `json:"price" validate:"required,min=0,max=9999.99,decimal2"`
	Title    *string  `json:"title" validate:"omitempty,min=3,max=100,gamename"`
}

func ptr[T any](v T) *T { return &v }

func valid() signup {
	return signup{
		Username: "good_user1",
		FullName: "Good User",
		Email:    "good@example.com",
		Password: "Secret@123",
		Price:    ptr(19.99),
	}
}

func TestStruct(t *testing.T) {
	v := New()
	require.NoError(t, v.Struct(valid()))

	tests := []struct {
		name    string
		mutate  func(s *signup)
		message string
	}{
		{"missing username", func(s *signup) { s.Username = "" }, `"username" is required`},
		{"short username", func(s *signup) { s.Username = "abc" }, `"username" length must be at least 4 characters long`},
		{"long username", func(s *signup) { s.Username = "abcdefghijklmnopqrstu" }, `"username" length must be less than or equal to 20 characters long`},
		{"username charset", func(s *signup) { s.Username = "bad-user" }, `"username" with value "bad-user" fails to match the required pattern`},
		{"full name digits", func(s *signup) { s.FullName = "User 2" }, `"fullName" with value "User 2" fails to match the required pattern`},
		{"bad email", func(s *signup) { s.Email = "nope" }, `"email" must be a valid email`},
		{"weak password", func(s *signup) { s.Password = "password123" }, `"password" must contain upper and lower case letters`},
		{"long password", func(s *signup) { s.Password = strings.Repeat("Aa1@", 19) }, `"password" length must be less than or equal to 72 characters long`},
		{"missing price", func(s *signup) { s.Price = nil }, `"price" is required`},
		{"negative price", func(s *signup) { s.Price = ptr(-1.0) }, `"price" must be greater than or equal to 0`},
		{"too expensive", func(s *signup) { s.Price = ptr(10000.0) }, `"price" must be less than or equal to 9999.99`},
		{"three decimals", func(s *signup) { s.Price = ptr(1.999) }, `"price" must have no more than 2 decimal places`},
		{"bad title", func(s *signup) { s.Title = ptr("Game!") }, `"title" with value "Game!" fails to match the required pattern`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid()
			tt.mutate(&s)
			err := v.Struct(s)
			require.Error(t, err)
			appErr, ok := apperror.As(err)
			require.True(t, ok)
			assert.Equal(t, apperror.Validation, appErr.Kind)
			assert.Contains(t, appErr.Message, tt.message)
		})
	}

	t.Run("zero price is allowed", func(t *testing.T) {
		s := valid()
		s.Price = ptr(0.0)
		assert.NoError(t, v.Struct(s))
	})

	t.Run("optional title accepts punctuation it allows", func(t *testing.T) {
		s := valid()
		s.Title = ptr("Half-Life 2: Episode 'One'")
		assert.NoError(t, v.Struct(s))
	})
}

func TestIsStrongPassword(t *testing.T) {
	assert.True(t, IsStrongPassword("Secret@123"))
	assert.True(t, IsStrongPassword("aB3_"))
	assert.False(t, IsStrongPassword("secret@123"))
	assert.False(t, IsStrongPassword("SECRET@123"))
	assert.False(t, IsStrongPassword("Secret@abc"))
	assert.False(t, IsStrongPassword("Secret1234"))
	assert.False(t, IsStrongPassword("Secret@123#"))
	assert.False(t, IsStrongPassword("Sécret@123"))
	assert.False(t, IsStrongPassword(""))
}

func TestHasAtMostTwoDecimals(t *testing.T) {
	assert.True(t, HasAtMostTwoDecimals(0))
	assert.True(t, HasAtMostTwoDecimals(9999.99))
	assert.True(t, HasAtMostTwoDecimals(4.5))
	assert.True(t, HasAtMostTwoDecimals(0.1+0.2))
	assert.False(t, HasAtMostTwoDecimals(4.555))
	assert.False(t, HasAtMostTwoDecimals(0.001))
}
