package handlers

import (
	"errors"
	"net/http"
	"strings"

	"casebook/internal/middleware"
	"casebook/internal/models"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthHandler struct {
	db *gorm.DB
}

func NewAuthHandler(db *gorm.DB) *AuthHandler {
	return &AuthHandler{db: db}
}

type loginForm struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

const badCredentials = "invalid email or password"

func (h *AuthHandler) Login(c *gin.Context) {
	var form loginForm
	if !bindJSON(c, &form) {
		return
	}

	email := strings.ToLower(strings.TrimSpace(form.Email))
	if email == "" || form.Password == "" {
		c.String(http.StatusBadRequest, "email and password are required")
		return
	}

	var user models.User
	if err := h.db.WithContext(c.Request.Context()).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.String(http.StatusUnauthorized, badCredentials)
			return
		}
		respondError(c, err)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(form.Password)); err != nil {
		c.String(http.StatusUnauthorized, badCredentials)
		return
	}

	sess := sessions.Default(c)
	sess.Set(middleware.SessionUserIDKey, user.ID)
	sess.Set(middleware.SessionRoleKey, string(user.Role))
	if err := sess.Save(); err != nil {
		respondError(c, err)
		return
	}

	// журнал действий должен увидеть вошедшего пользователя уже в этом запросе
	c.Set(middleware.CurrentUserKey, user)
	log.Info().Uint("user_id", user.ID).Msg("user logged in")

	c.JSON(http.StatusOK, user)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	sess := sessions.Default(c)
	sess.Clear()
	sess.Options(sessions.Options{Path: "/", MaxAge: -1})
	_ = sess.Save()
	c.Status(http.StatusNoContent)
}

func (h *AuthHandler) Me(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.String(http.StatusUnauthorized, "not logged in")
		return
	}
	c.JSON(http.StatusOK, user)
}
