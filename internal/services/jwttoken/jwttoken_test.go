package jwttoken

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_GenerateParse(t *testing.T) {
	manager := NewManager("secret", time.Hour)

	token, err := manager.Generate(Claims{UserID: "u1", Role: "driver", DriverID: "d1"})
	require.NoError(t, err)

	claims, err := manager.Parse(token)
	require.NoError(t, err)

	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "driver", claims.Role)
	assert.Equal(t, "d1", claims.DriverID)
	assert.Empty(t, claims.RestaurantID)
}

func TestManager_Parse(t *testing.T) {
	manager := NewManager("secret", time.Hour)

	t.Run("foreign secret", func(t *testing.T) {
		token, err := NewManager("other", time.Hour).Generate(Claims{UserID: "u1", Role: "customer"})
		require.NoError(t, err)

		_, err = manager.Parse(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		expired := NewManager("secret", time.Hour)
		expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

		token, err := expired.Generate(Claims{UserID: "u1", Role: "customer"})
		require.NoError(t, err)

		_, err = manager.Parse(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("missing role", func(t *testing.T) {
		token, err := manager.Generate(Claims{UserID: "u1"})
		require.NoError(t, err)

		_, err = manager.Parse(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("unsigned", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: "u1", Role: "admin"}).
			SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = manager.Parse(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := manager.Parse("not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
