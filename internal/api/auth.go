package api

import (
	"errors"   // Error inspection
	"net/http" // HTTP status codes
	"regexp"   // Regular expressions
	"strings"  // String manipulation

	"taskinn/internal/apperr" // Error taxonomy
	"taskinn/internal/domain" // Importing domain models
	"taskinn/internal/utils"  // Utility functions

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
	"golang.org/x/crypto/bcrypt" // Password hashing
	"gorm.io/gorm"               // GORM ORM library
)

// CredentialsRequest is the body of register and login calls
type CredentialsRequest struct {
	Username string `json:"username" binding:"required"` // Username must be provided
	Password string `json:"password" binding:"required"` // Password must be provided
	Role     string `json:"role"`                        // worker (default) or employer, register only
}

// AuthResponse carries a signed JWT
type AuthResponse struct {
	Token string `json:"token"` // JWT token
	Role  string `json:"role"`  // Role embedded in the token
}

var (
	usernamePattern       = regexp.MustCompile(`^[a-z0-9_]{3,32}$`)
	errInvalidUsername    = apperr.Validation("invalid_username", "Username must be 3-32 letters, digits or underscores")
	errInvalidPassword    = apperr.Validation("invalid_password", "Password must be 8-64 characters")
	errInvalidRole        = apperr.Validation("invalid_role", "Role must be worker or employer")
	errUsernameTaken      = apperr.Conflict("username_taken", "Username already exists")
	errInvalidCredentials = apperr.Authentication("invalid_credentials", "Invalid credentials")
)

// RegisterHandler creates a worker or employer account
func RegisterHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CredentialsRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, errInvalidRequest) // Missing fields
			return
		}
		username := strings.ToLower(strings.TrimSpace(req.Username)) // Usernames are case-insensitive
		if !usernamePattern.MatchString(username) {
			respondError(c, errInvalidUsername)
			return
		}
		if len(req.Password) < 8 || len(req.Password) > 64 {
			respondError(c, errInvalidPassword)
			return
		}
		role := req.Role
		if role == "" {
			role = domain.RoleWorker // Everyone starts as a worker unless they post tasks
		}
		if role != domain.RoleWorker && role != domain.RoleEmployer {
			respondError(c, errInvalidRole) // Admin is never self-assigned
			return
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			respondError(c, err)
			return
		}
		user := domain.User{Username: username, Password: string(hash), Role: role}
		if err := db.Create(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				respondError(c, errUsernameTaken)
				return
			}
			respondError(c, err)
			return
		}
		logrus.WithFields(logrus.Fields{"user_id": user.ID, "role": role}).Info("User registered")
		c.JSON(http.StatusCreated, gin.H{"message": "User registered successfully", "user": user})
	}
}

// LoginHandler authenticates a user and returns a JWT token
func LoginHandler(db *gorm.DB, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CredentialsRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, errInvalidRequest)
			return
		}
		var user domain.User // Fetch user from database
		if err := db.Where("username = ?", strings.ToLower(strings.TrimSpace(req.Username))).First(&user).Error; err != nil {
			respondError(c, errInvalidCredentials) // Same answer for unknown users and bad passwords
			return
		}
		if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
			respondError(c, errInvalidCredentials)
			return
		}
		token, err := utils.GenerateJWT(user.ID, user.Role, jwtSecret) // Sign token with the stored role
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, AuthResponse{Token: token, Role: user.Role})
	}
}

// AdminLoginHandler authenticates the platform operator against the admin settings row
func AdminLoginHandler(db *gorm.DB, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CredentialsRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, errInvalidRequest)
			return
		}
		var settings domain.AdminSettings // Singleton row holding the operator credentials
		if err := db.First(&settings, domain.AdminSettingsID).Error; err != nil {
			respondError(c, errInvalidCredentials) // Not seeded yet
			return
		}
		if req.Username != settings.AdminUsername ||
			bcrypt.CompareHashAndPassword([]byte(settings.AdminPasswordHash), []byte(req.Password)) != nil {
			logrus.WithField("username", req.Username).Warn("Failed admin login")
			respondError(c, errInvalidCredentials)
			return
		}
		token, err := utils.GenerateJWT(0, domain.RoleAdmin, jwtSecret) // The operator is not a user row
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, AuthResponse{Token: token, Role: domain.RoleAdmin})
	}
}
