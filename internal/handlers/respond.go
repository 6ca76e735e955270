package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"casebook/internal/activity"
	"casebook/internal/query"
	"casebook/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// statusClientClosed — ответ, когда клиент ушёл, не дождавшись результата.
const statusClientClosed = 499

// respondError переводит ошибку сервиса в HTTP-ответ. Текст ошибок валидации уходит клиенту как есть.
func respondError(c *gin.Context, err error) {
	var ve *services.ValidationError
	var pe *query.ParamError

	switch {
	case errors.As(err, &ve):
		c.String(http.StatusBadRequest, ve.Msg)
	case errors.As(err, &pe):
		c.String(http.StatusBadRequest, pe.Error())
	case errors.Is(err, services.ErrNotFound):
		c.String(http.StatusNotFound, err.Error())
	default:
		_ = c.Error(err)
		log.Error().Err(err).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Msg("request failed")
		c.String(http.StatusInternalServerError, "internal server error")
	}
}

func idParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.String(http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return uint(id), true
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.String(http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return false
	}
	return true
}

// created отвечает 201 с Location на новый ресурс.
func created(c *gin.Context, id uint, body any) {
	c.Set(activity.ObjectIDKey, id)
	c.Header("Location", c.Request.URL.Path+"/"+strconv.FormatUint(uint64(id), 10))
	c.JSON(http.StatusCreated, body)
}
