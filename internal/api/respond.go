package api

import (
	"strconv" // Query parsing

	"taskinn/internal/apperr"     // Error taxonomy
	"taskinn/internal/domain"     // Role constants
	"taskinn/internal/middleware" // Context keys

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
)

var (
	errInvalidRequest   = apperr.Validation("invalid_request", "Invalid request")
	errUnauthorized     = apperr.Authentication("unauthenticated", "Unauthorized")
	errOtherUser        = apperr.Authorization("forbidden", "Cannot act on another user's account")
	errUserIDRequired   = apperr.Validation("missing_user_id", "userId is required")
	errWalletIDRequired = apperr.Validation("missing_wallet_id", "walletId is required")
)

// respondError writes the {"error", "code"} envelope for err
func respondError(c *gin.Context, err error) {
	e := apperr.From(err) // Classify, unknown errors become internal
	if e.Kind == apperr.KindInternal || e.Kind == apperr.KindUpstream {
		logrus.WithFields(logrus.Fields{
			"path":  c.FullPath(), // Route
			"code":  e.Code,       // Stable error code
			"error": err.Error(),  // Full cause, never sent to the client for internal errors
		}).Error("Request failed")
	}
	c.AbortWithStatusJSON(e.Kind.Status(), gin.H{"error": e.Message, "code": e.Code})
}

// currentUser returns the authenticated subject and role
func currentUser(c *gin.Context) (uint, string, bool) {
	rawID, ok := c.Get(middleware.ContextUserID) // Set by JWTAuthMiddleware
	if !ok {
		return 0, "", false
	}
	userID, ok := rawID.(uint)
	if !ok {
		return 0, "", false
	}
	role, _ := c.Get(middleware.ContextRole)
	roleStr, _ := role.(string)
	return userID, roleStr, true
}

// resolveUserID decides which user a request acts on. Users may only name
// themselves (or omit the id); admins must name the user explicitly.
func resolveUserID(c *gin.Context, requested uint) (uint, error) {
	userID, role, ok := currentUser(c)
	if !ok {
		return 0, errUnauthorized
	}
	if role == domain.RoleAdmin {
		if requested == 0 {
			return 0, errUserIDRequired
		}
		return requested, nil
	}
	if requested != 0 && requested != userID {
		return 0, errOtherUser
	}
	return userID, nil
}

// queryUint reads an optional unsigned query parameter
func queryUint(c *gin.Context, key string) (uint, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, apperr.Validation("invalid_"+key, "Invalid "+key)
	}
	return uint(v), nil
}

// queryInt reads an optional integer query parameter with a fallback
func queryInt(c *gin.Context, key string, fallback int) int {
	if v, err := strconv.Atoi(c.Query(key)); err == nil {
		return v
	}
	return fallback
}
