package api

import (
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"bakeshop/internal/domain"
	"bakeshop/internal/middleware"
	"bakeshop/internal/validate"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// GetProfileHandler returns the caller's profile.
func GetProfileHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.MustGet(middleware.CtxUserID).(uint)
		var user domain.User
		if err := db.First(&user, userID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"name":  user.Name,
			"email": user.Email,
			"role":  user.Role,
		})
	}
}

// UpdateProfileHandler edits the caller's name and optionally password and
// profile photo (multipart form).
func UpdateProfileHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.MustGet(middleware.CtxUserID).(uint)

		name := strings.TrimSpace(validate.StripTags(c.PostForm("name")))
		if err := validate.Name(name); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		updates := map[string]any{"name": name}

		if password := strings.TrimSpace(c.PostForm("password")); password != "" {
			if !isValidPassword(password) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Password needs at least 8 characters, an upper-case letter, a lower-case letter and a special character"})
				return
			}
			hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
				return
			}
			updates["password"] = string(hash)
		}

		if file, err := c.FormFile("photo"); err == nil {
			photo, err := readUpload(file.Open())
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Could not read photo"})
				return
			}
			updates["photo"] = photo
		}

		if err := db.Model(&domain.User{}).Where("id = ?", userID).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Profile updated"})
	}
}

// ProfilePhotoHandler serves the caller's profile photo.
func ProfilePhotoHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.MustGet(middleware.CtxUserID).(uint)
		var user domain.User
		if err := db.Select("photo").First(&user, userID).Error; err != nil || len(user.Photo) == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "No photo"})
			return
		}
		c.Data(http.StatusOK, "image/jpeg", user.Photo)
	}
}

// readUpload drains an opened multipart file into memory.
func readUpload(f multipart.File, err error) ([]byte, error) {
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
