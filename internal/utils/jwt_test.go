package utils

import (
	"testing"

	"sari_back_end/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateJWT(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret-de-test")

	user := models.User{
		ID:    "8d9f7c3a-1111-2222-3333-444455556666",
		Email: "juan@example.com",
	}

	tokenString, err := GenerateJWT(user)
	require.NoError(t, err)

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return []byte("secret-de-test"), nil
	})
	require.NoError(t, err)
	require.True(t, token.Valid)

	claims, ok := token.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.Equal(t, user.ID, claims["user_id"])
	assert.Equal(t, user.Email, claims["email"])
	assert.NotZero(t, claims["exp"])
	assert.NotEmpty(t, claims["jti"])
}

func TestGenerateJWTUniqueID(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret-de-test")

	user := models.User{ID: "8d9f7c3a-1111-2222-3333-444455556666", Email: "juan@example.com"}

	jtis := make(map[string]bool)
	for i := 0; i < 3; i++ {
		tokenString, err := GenerateJWT(user)
		require.NoError(t, err)

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			return []byte("secret-de-test"), nil
		})
		require.NoError(t, err)

		jti, _ := token.Claims.(jwt.MapClaims)["jti"].(string)
		require.NotEmpty(t, jti)
		assert.False(t, jtis[jti])
		jtis[jti] = true
	}
}
