package utils

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	token, err := GenerateJWT(42, "worker", "secret")
	require.NoError(t, err)

	claims, err := ParseJWT(token, "secret")
	require.NoError(t, err)
	assert.EqualValues(t, 42, claims.UserID)
	assert.Equal(t, "worker", claims.Role)

	assert.Equal(t, TokenIssuer, claims.Issuer)
	assert.Equal(t, "42", claims.Subject)

	_, err = ParseJWT(token, "other-secret")
	assert.Error(t, err)
}

func TestParseJWTRejectsForeignIssuer(t *testing.T) {
	claims := Claims{
		UserID: 1,
		Role:   "worker",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "someone-else",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = ParseJWT(token, "secret")
	assert.Error(t, err)
}

func TestParseJWTRejectsExpired(t *testing.T) {
	claims := Claims{
		UserID: 1,
		Role:   "worker",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    TokenIssuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = ParseJWT(token, "secret")
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestCacheHelpersWithoutRedis(t *testing.T) {
	ctx := context.Background()
	var dest map[string]string

	found, err := GetCache(ctx, nil, "k", &dest)
	assert.NoError(t, err)
	assert.False(t, found)
	assert.NoError(t, SetCache(ctx, nil, "k", map[string]string{"a": "b"}, 0))
	assert.NoError(t, DeleteCachePrefix(ctx, nil, "k"))

	ok, err := AcquireLock(ctx, nil, "lock", 0)
	assert.NoError(t, err)
	assert.True(t, ok)
}

func TestCacheKeys(t *testing.T) {
	assert.Equal(t, "wallets:user:7", WalletsCacheKey(7))
	assert.Equal(t, "wallettx:3:limit:20:offset:40", TransactionsCacheKey(3, 20, 40))
}
