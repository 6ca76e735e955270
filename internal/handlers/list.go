package handlers

import (
	"net/http"

	"casebook/internal/query"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// listAll — список v1: фильтры и сортировка без пагинации, ответ — массив.
func listAll[T any](c *gin.Context, db *gorm.DB, e query.Entity) {
	p, err := query.Parse(c.Request.URL.Query())
	if err != nil {
		respondError(c, err)
		return
	}
	items, err := query.All[T](db.WithContext(c.Request.Context()), e, p)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// listPaged — список v2: {items, total, page, pageSize}.
func listPaged[T any](c *gin.Context, db *gorm.DB, e query.Entity) {
	p, err := query.Parse(c.Request.URL.Query())
	if err != nil {
		respondError(c, err)
		return
	}
	page, err := query.Paged[T](db.WithContext(c.Request.Context()), e, p)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}
