package handlers

import (
	"net/http"

	"casebook/internal/models"
	"casebook/internal/query"
	"casebook/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type CaseHandler struct {
	db  *gorm.DB
	svc *services.CaseService
}

func NewCaseHandler(db *gorm.DB) *CaseHandler {
	return &CaseHandler{db: db, svc: services.NewCaseService(db)}
}

func (h *CaseHandler) List(c *gin.Context) {
	listAll[models.ClientCase](c, h.db, query.Cases)
}

func (h *CaseHandler) ListPaged(c *gin.Context) {
	listPaged[models.ClientCase](c, h.db, query.Cases)
}

// Get — карточка дела с клиентом и платежами.
func (h *CaseHandler) Get(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	cs, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cs)
}

func (h *CaseHandler) Create(c *gin.Context) {
	var in services.CaseInput
	if !bindJSON(c, &in) {
		return
	}
	cs, err := h.svc.Create(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	created(c, cs.ID, cs)
}

func (h *CaseHandler) Update(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var in services.CaseInput
	if !bindJSON(c, &in) {
		return
	}
	cs, err := h.svc.Update(c.Request.Context(), id, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cs)
}

// Delete удаляет дело, платежи остаются без ссылки на него.
func (h *CaseHandler) Delete(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
