package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"casebook/internal/activity"
	"casebook/internal/database"
	"casebook/internal/middleware"
	"casebook/internal/models"
	"casebook/internal/query"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
)

// ActivityHandler — чтение журнала и приём событий от фронтенда.
// Сами эти запросы в журнал не попадают.
type ActivityHandler struct {
	store  *database.ActivityStore
	writer *activity.Logger
}

func NewActivityHandler(store *database.ActivityStore, writer *activity.Logger) *ActivityHandler {
	return &ActivityHandler{store: store, writer: writer}
}

func (h *ActivityHandler) List(c *gin.Context) {
	v := c.Request.URL.Query()
	p, err := query.Parse(v)
	if err != nil {
		respondError(c, err)
		return
	}

	f := database.ActivityFilter{
		Section: strings.TrimSpace(v.Get("section")),
		Status:  models.ActivityStatus(p.Status),
		From:    p.From,
		To:      p.To,
	}
	if f.Status != "" && !f.Status.Valid() {
		c.String(http.StatusBadRequest, "invalid status: expected info, success, warning or failure")
		return
	}
	if p.To != nil && p.ToInclusive {
		to := p.To.Add(time.Nanosecond)
		f.To = &to
	}
	if s := strings.TrimSpace(v.Get("userId")); s != "" {
		id, err := strconv.ParseUint(s, 10, 64)
		if err != nil || id == 0 {
			c.String(http.StatusBadRequest, "invalid userId: expected a positive integer")
			return
		}
		uid := uint(id)
		f.UserID = &uid
	}

	entries, total, err := h.store.List(c.Request.Context(), f, p.PageSize, p.Offset())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, query.Page[models.ActivityLogEntry]{
		Items:    entries,
		Total:    total,
		Page:     p.Page,
		PageSize: p.PageSize,
	})
}

type clientEvent struct {
	Category    string                `json:"category"`
	Action      string                `json:"action"`
	Section     string                `json:"section"`
	ObjectType  string                `json:"objectType"`
	ObjectID    string                `json:"objectId"`
	Description string                `json:"description"`
	Status      models.ActivityStatus `json:"status"`
	DurationMs  int64                 `json:"durationMs"`
	Metadata    map[string]any        `json:"metadata"`
}

// Create записывает событие фронтенда (например, открытие страницы). Статус по умолчанию — info.
func (h *ActivityHandler) Create(c *gin.Context) {
	var ev clientEvent
	if !bindJSON(c, &ev) {
		return
	}

	ev.Action = strings.TrimSpace(ev.Action)
	if ev.Action == "" {
		c.String(http.StatusBadRequest, "action is required")
		return
	}
	if ev.Status == "" {
		ev.Status = models.ActivityInfo
	}
	if !ev.Status.Valid() {
		c.String(http.StatusBadRequest, "invalid status: expected info, success, warning or failure")
		return
	}
	if ev.Category = strings.TrimSpace(ev.Category); ev.Category == "" {
		ev.Category = "client"
	}

	entry := &models.ActivityLogEntry{
		CreatedAt:   time.Now().UTC(),
		RequestID:   c.GetString(middleware.RequestIDKey),
		Category:    activity.Truncate(ev.Category),
		Action:      activity.Truncate(ev.Action),
		Section:     activity.Truncate(strings.TrimSpace(ev.Section)),
		ObjectType:  activity.Truncate(strings.TrimSpace(ev.ObjectType)),
		ObjectID:    activity.Truncate(strings.TrimSpace(ev.ObjectID)),
		Description: activity.Truncate(ev.Description),
		Status:      ev.Status,
		DurationMs:  ev.DurationMs,
		Method:      c.Request.Method,
		Path:        c.Request.URL.Path,
		IPAddress:   c.ClientIP(),
		UserAgent:   activity.Truncate(c.Request.UserAgent()),
	}
	if m, ok := activity.Snapshot(ev.Metadata).(map[string]any); ok {
		entry.Metadata = datatypes.JSONMap(m)
	}
	if u, ok := middleware.CurrentUser(c); ok {
		id := u.ID
		entry.UserID = &id
		entry.UserEmail = u.Email
		entry.UserName = u.Name
	}

	if err := h.writer.Write(c.Request.Context(), entry); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}
