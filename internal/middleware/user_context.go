package middleware

import (
	"casebook/internal/models"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const (
	CurrentUserKey = "CurrentUser"

	SessionUserIDKey = "user_id"
	SessionRoleKey   = "role"
)

// InjectUser кладёт пользователя из сессии в контекст запроса.
func InjectUser(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := sessions.Default(c)

		if uidRaw := sess.Get(SessionUserIDKey); uidRaw != nil {
			if uid, ok := uidRaw.(uint); ok && uid > 0 {
				var user models.User
				if err := db.WithContext(c.Request.Context()).First(&user, uid).Error; err == nil {
					c.Set(CurrentUserKey, user)
				}
			}
		}

		c.Next()
	}
}

func CurrentUser(c *gin.Context) (models.User, bool) {
	v, ok := c.Get(CurrentUserKey)
	if !ok {
		return models.User{}, false
	}
	switch u := v.(type) {
	case models.User:
		return u, true
	case *models.User:
		if u != nil {
			return *u, true
		}
	}
	return models.User{}, false
}
