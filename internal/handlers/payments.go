package handlers

import (
	"net/http"

	"casebook/internal/models"
	"casebook/internal/query"
	"casebook/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type PaymentHandler struct {
	db  *gorm.DB
	svc *services.PaymentService
}

func NewPaymentHandler(db *gorm.DB) *PaymentHandler {
	return &PaymentHandler{db: db, svc: services.NewPaymentService(db)}
}

func (h *PaymentHandler) List(c *gin.Context) {
	listAll[models.Payment](c, h.db, query.Payments)
}

func (h *PaymentHandler) ListPaged(c *gin.Context) {
	listPaged[models.Payment](c, h.db, query.Payments)
}

func (h *PaymentHandler) Get(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	p, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *PaymentHandler) Create(c *gin.Context) {
	var in services.PaymentInput
	if !bindJSON(c, &in) {
		return
	}
	p, err := h.svc.Create(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	created(c, p.ID, p)
}

func (h *PaymentHandler) Update(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var in services.PaymentInput
	if !bindJSON(c, &in) {
		return
	}
	p, err := h.svc.Update(c.Request.Context(), id, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *PaymentHandler) Delete(c *gin.Context) {
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
