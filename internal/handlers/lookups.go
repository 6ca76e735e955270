package handlers

import (
	"net/http"

	"casebook/internal/activity"
	"casebook/internal/models"
	"casebook/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// LookupHandler — справочники для форм платежей.
type LookupHandler struct {
	svc *services.LookupService
}

func NewLookupHandler(db *gorm.DB) *LookupHandler {
	return &LookupHandler{svc: services.NewLookupService(db)}
}

func listLookup[T any](h *LookupHandler, c *gin.Context) {
	items := []T{}
	if err := h.svc.List(c.Request.Context(), &items); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func createLookup[T any](c *gin.Context, create func(*gin.Context, services.LookupInput) (*T, uint, error)) {
	var in services.LookupInput
	if !bindJSON(c, &in) {
		return
	}
	v, id, err := create(c, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Set(activity.ObjectIDKey, id)
	c.JSON(http.StatusCreated, v)
}

func (h *LookupHandler) ListIncomeTypes(c *gin.Context) { listLookup[models.IncomeType](h, c) }

func (h *LookupHandler) ListDealTypes(c *gin.Context) { listLookup[models.DealType](h, c) }

func (h *LookupHandler) ListPaymentSources(c *gin.Context) { listLookup[models.PaymentSource](h, c) }

func (h *LookupHandler) ListPaymentStatuses(c *gin.Context) { listLookup[models.PaymentStatus](h, c) }

func (h *LookupHandler) CreateIncomeType(c *gin.Context) {
	createLookup(c, func(c *gin.Context, in services.LookupInput) (*models.IncomeType, uint, error) {
		v, err := h.svc.CreateIncomeType(c.Request.Context(), in)
		if err != nil {
			return nil, 0, err
		}
		return v, v.ID, nil
	})
}

func (h *LookupHandler) CreateDealType(c *gin.Context) {
	createLookup(c, func(c *gin.Context, in services.LookupInput) (*models.DealType, uint, error) {
		v, err := h.svc.CreateDealType(c.Request.Context(), in)
		if err != nil {
			return nil, 0, err
		}
		return v, v.ID, nil
	})
}

func (h *LookupHandler) CreatePaymentSource(c *gin.Context) {
	createLookup(c, func(c *gin.Context, in services.LookupInput) (*models.PaymentSource, uint, error) {
		v, err := h.svc.CreatePaymentSource(c.Request.Context(), in)
		if err != nil {
			return nil, 0, err
		}
		return v, v.ID, nil
	})
}

func (h *LookupHandler) CreatePaymentStatus(c *gin.Context) {
	createLookup(c, func(c *gin.Context, in services.LookupInput) (*models.PaymentStatus, uint, error) {
		v, err := h.svc.CreatePaymentStatus(c.Request.Context(), in)
		if err != nil {
			return nil, 0, err
		}
		return v, v.ID, nil
	})
}
