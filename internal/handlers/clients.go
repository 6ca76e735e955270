package handlers

import (
	"net/http"

	"casebook/internal/models"
	"casebook/internal/query"
	"casebook/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ClientHandler struct {
	db  *gorm.DB
	svc *services.ClientService
}

func NewClientHandler(db *gorm.DB) *ClientHandler {
	return &ClientHandler{db: db, svc: services.NewClientService(db)}
}

func (h *ClientHandler) List(c *gin.Context) {
	listAll[models.Client](c, h.db, query.Clients)
}

func (h *ClientHandler) ListPaged(c *gin.Context) {
	listPaged[models.Client](c, h.db, query.Clients)
}

// Get — карточка клиента с делами и платежами.
func (h *ClientHandler) Get(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	cl, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cl)
}

func (h *ClientHandler) Create(c *gin.Context) {
	var in services.ClientInput
	if !bindJSON(c, &in) {
		return
	}
	cl, err := h.svc.Create(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	created(c, cl.ID, cl)
}

func (h *ClientHandler) Update(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var in services.ClientInput
	if !bindJSON(c, &in) {
		return
	}
	cl, err := h.svc.Update(c.Request.Context(), id, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cl)
}

// Delete удаляет клиента. Дела и платежи отвязываются, но не удаляются.
func (h *ClientHandler) Delete(c *gin.Context) {
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
