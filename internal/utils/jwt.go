package utils

import (
	"errors"  // Sentinel for rejected tokens
	"strconv" // Subject encoding
	"time"    // Token lifetime

	"github.com/golang-jwt/jwt/v5" // JWT library
)

// TokenIssuer is stamped on and required from every TaskInn token
const TokenIssuer = "taskinn"

// TokenTTL is how long a session token stays valid
const TokenTTL = 24 * time.Hour

// ErrInvalidToken is returned for tokens that parse but fail validation
var ErrInvalidToken = errors.New("invalid token")

// Claims carried by a session token
type Claims struct {
	UserID uint   `json:"user_id"` // 0 for the platform admin
	Role   string `json:"role"`    // worker, employer or admin
	jwt.RegisteredClaims
}

// GenerateJWT signs an HS256 session token for userID acting as role
func GenerateJWT(userID uint, role, secret string) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    TokenIssuer,
			Subject:   strconv.FormatUint(uint64(userID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// ParseJWT validates signature, algorithm, issuer and expiry and returns the claims
func ParseJWT(tokenStr, secret string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(*jwt.Token) (any, error) {
		return []byte(secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(TokenIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.Role == "" {
		return nil, ErrInvalidToken // A role is required for route authorization
	}
	return claims, nil
}
