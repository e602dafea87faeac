package api

import (
	"errors"
	"net/http"
	"regexp"
	"strings"
	"unicode"

	"bakeshop/internal/domain"
	"bakeshop/internal/middleware"
	"bakeshop/internal/session"
	"bakeshop/internal/validate"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// RegisterRequest is the registration payload
type RegisterRequest struct {
	Name     string      `json:"name" binding:"required"`     // Display name
	Email    string      `json:"email" binding:"required"`    // Login identity
	Password string      `json:"password" binding:"required"` // Plaintext, hashed before storing
	Role     domain.Role `json:"role" binding:"required"`     // Must be a known role
}

// LoginRequest is the login payload
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// isValidPassword requires at least 8 characters with an upper-case letter,
// a lower-case letter and a special character.
func isValidPassword(password string) bool {
	if len(password) < 8 {
		return false
	}
	var upper, lower, special bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case !unicode.IsLetter(r) && !unicode.IsDigit(r):
			special = true
		}
	}
	return upper && lower && special
}

// RegisterHandler creates a user together with their wallet.
func RegisterHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		// Sanitize free text before validating it.
		name := strings.TrimSpace(validate.StripTags(req.Name))
		email := strings.TrimSpace(validate.StripTags(req.Email))
		if err := validate.Name(name); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if !emailPattern.MatchString(email) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid email"})
			return
		}
		if !isValidPassword(strings.TrimSpace(req.Password)) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Password needs at least 8 characters, an upper-case letter, a lower-case letter and a special character"})
			return
		}
		if !req.Role.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid role"})
			return
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(strings.TrimSpace(req.Password)), bcrypt.DefaultCost)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
			return
		}
		// User and wallet are created together; GORM saves the association
		// in the same transaction as the user row.
		user := domain.User{
			Name:     name,
			Email:    strings.ToLower(email),
			Password: string(hash),
			Role:     req.Role,
			Wallet:   domain.Wallet{Balance: decimal.Zero},
		}
		if err := db.Create(&user).Error; err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Email already registered"})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"message": "User registered successfully"})
	}
}

// reloginAllowed decides whether login may proceed for a user whose
// active-session flag is set: yes when no live server-side record backs the
// flag, and yes when the caller's own cookie identifies that same user.
// claims is nil when the request carries no verifiable session cookie.
func reloginAllowed(live bool, claims *session.Claims, userID uint) bool {
	if !live {
		return true // Flag is stale; the record expired without a logout
	}
	return claims != nil && claims.UserID == userID
}

// LoginHandler authenticates a user, enforces the one-session rule and sets
// the session cookie.
func LoginHandler(db *gorm.DB, sessions *session.Manager, secureCookie bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		if !emailPattern.MatchString(req.Email) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid email"})
			return
		}
		var user domain.User
		if err := db.Where("email = ?", strings.ToLower(req.Email)).First(&user).Error; err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}
		if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}
		// One live session per user. The flag alone is not enough to
		// refuse: it goes stale when the Redis record expires without a
		// logout, and the caller may be the device holding the current
		// session. Both of those may log in again.
		if user.SessionActive {
			live, err := sessions.HasLive(c.Request.Context(), user.ID)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Login failed"})
				return
			}
			var claims *session.Claims
			if tokenStr, cookieErr := c.Cookie(session.CookieName); cookieErr == nil && tokenStr != "" {
				claims, _ = sessions.Verify(c.Request.Context(), tokenStr)
			}
			if !reloginAllowed(live, claims, user.ID) {
				c.JSON(http.StatusForbidden, gin.H{"error": "You already have a session on another device"})
				return
			}
		}
		token, err := sessions.Issue(c.Request.Context(), user.ID, user.Role)
		if err != nil {
			logrus.WithFields(logrus.Fields{"user_id": user.ID, "error": err.Error()}).Error("Failed to issue session")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Login failed"})
			return
		}
		if err := db.Model(&user).Update("session_active", true).Error; err != nil {
			_ = sessions.Revoke(c.Request.Context(), user.ID)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Login failed"})
			return
		}
		c.SetCookie(session.CookieName, token, int(sessions.TTL().Seconds()), "/", "", secureCookie, true)
		c.JSON(http.StatusOK, gin.H{"message": "Logged in successfully", "role": user.Role})
	}
}

// LogoutHandler revokes the session and clears the active-session flag.
func LogoutHandler(db *gorm.DB, sessions *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.MustGet(middleware.CtxUserID).(uint)
		if err := db.Model(&domain.User{}).Where("id = ?", userID).Update("session_active", false).Error; err != nil {
			logrus.WithFields(logrus.Fields{"user_id": userID, "error": err.Error()}).Error("Failed to clear session flag")
		}
		if err := sessions.Revoke(c.Request.Context(), userID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Logout failed"})
			return
		}
		c.SetCookie(session.CookieName, "", -1, "/", "", false, true) // Expire the cookie
		c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
	}
}

// SessionCheckHandler reports whether the caller still holds a live session,
// double-checking the database flag in case it was closed elsewhere.
func SessionCheckHandler(db *gorm.DB, sessions *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, err := c.Cookie(session.CookieName)
		if err != nil || tokenStr == "" {
			c.JSON(http.StatusOK, gin.H{"logged_in": false})
			return
		}
		claims, err := sessions.Verify(c.Request.Context(), tokenStr)
		if err != nil {
			c.JSON(http.StatusOK, gin.H{"logged_in": false})
			return
		}
		var user domain.User
		if err := db.First(&user, claims.UserID).Error; err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				logrus.WithFields(logrus.Fields{"user_id": claims.UserID, "error": err.Error()}).Error("Session check failed")
			}
			c.JSON(http.StatusOK, gin.H{"logged_in": false})
			return
		}
		if !user.SessionActive {
			c.JSON(http.StatusOK, gin.H{"logged_in": false})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"logged_in": true,
			"id":        user.ID,
			"name":      user.Name,
			"role":      user.Role,
		})
	}
}
