package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"casebook/internal/enrichment"

	"github.com/gin-gonic/gin"
)

type PartySuggester interface {
	Suggest(ctx context.Context, query string, limit int) ([]enrichment.Party, error)
	FindByID(ctx context.Context, inn string, limit int) ([]enrichment.Party, error)
}

// SuggestionHandler — подсказки по организациям. Всегда 200 и массив, кроме отмены запроса клиентом.
type SuggestionHandler struct {
	parties PartySuggester
}

func NewSuggestionHandler(parties PartySuggester) *SuggestionHandler {
	return &SuggestionHandler{parties: parties}
}

func (h *SuggestionHandler) Party(c *gin.Context) {
	res, err := h.parties.Suggest(c.Request.Context(), c.Query("query"), limitParam(c))
	h.respond(c, res, err)
}

func (h *SuggestionHandler) PartyByINN(c *gin.Context) {
	res, err := h.parties.FindByID(c.Request.Context(), c.Param("inn"), limitParam(c))
	h.respond(c, res, err)
}

func (h *SuggestionHandler) respond(c *gin.Context, res []enrichment.Party, err error) {
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			c.AbortWithStatus(statusClientClosed)
			return
		}
		_ = c.Error(err)
		res = nil
	}
	if res == nil {
		res = []enrichment.Party{}
	}
	c.JSON(http.StatusOK, res)
}

// неразборчивый limit даёт значение по умолчанию
func limitParam(c *gin.Context) int {
	n, err := strconv.Atoi(c.Query("limit"))
	if err != nil {
		return 0
	}
	return enrichment.ClampLimit(n)
}
