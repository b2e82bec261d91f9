package middleware

import (
	"errors"
	"net/http"
	"threadline/internal/models"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const (
	CheckUserKey   = "user"
	SessionUserKey = "user_id"
)

// CurrentUser returns the actor loaded by LoadUser, or nil for anonymous requests.
func CurrentUser(c *gin.Context) *models.User {
	if v, ok := c.Get(CheckUserKey); ok {
		if u, ok := v.(*models.User); ok {
			return u
		}
	}
	return nil
}

// AuthRequired rejects anonymous requests with 401.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "authentication required",
				"code":  "UNAUTHENTICATED",
			})
			return
		}
		c.Next()
	}
}

// LoadUser retrieves the user from the session and sets it on the context.
// A session pointing at a deleted user is cleared; on any other lookup
// error the request runs anonymously and the session is kept.
func LoadUser(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		userID := session.Get(SessionUserKey)

		if userID != nil {
			var user models.User
			err := db.WithContext(c.Request.Context()).First(&user, userID).Error
			switch {
			case err == nil:
				c.Set(CheckUserKey, &user)
			case errors.Is(err, gorm.ErrRecordNotFound):
				session.Delete(SessionUserKey)
				_ = session.Save()
			}
		}
		c.Next()
	}
}
