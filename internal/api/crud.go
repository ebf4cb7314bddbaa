package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"crew-ops-backend/internal/apperr"
)

// registerCRUD wires the generic list/get/create/update/delete routes
// for a reference entity. prep validates a bound record and fills its
// id before a write; entity names the changed set for cache flushing.
func registerCRUD[T any](h *Handler, rg *gin.RouterGroup, path, entity string, cached gin.HandlerFunc, prep func(*T) error) {
	db := h.store.DB()

	rg.GET(path, cached, func(c *gin.Context) {
		var rows []T
		if err := db.WithContext(c.Request.Context()).Find(&rows).Error; err != nil {
			writeError(c, apperr.DB("list "+entity+" failed", err))
			return
		}
		c.JSON(http.StatusOK, rows)
	})

	rg.GET(path+"/:id", cached, func(c *gin.Context) {
		var row T
		err := db.WithContext(c.Request.Context()).First(&row, "id = ?", c.Param("id")).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeError(c, apperr.NotFound("record not found", err))
			return
		}
		if err != nil {
			writeError(c, apperr.DB("get "+entity+" failed", err))
			return
		}
		c.JSON(http.StatusOK, row)
	})

	rg.POST(path, func(c *gin.Context) {
		var row T
		if err := c.ShouldBindJSON(&row); err != nil {
			writeError(c, apperr.Validation("body", "invalid request body"))
			return
		}
		if err := prep(&row); err != nil {
			writeError(c, err)
			return
		}
		if err := db.WithContext(c.Request.Context()).Create(&row).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				writeError(c, apperr.Conflict("a record with that name already exists", err))
				return
			}
			writeError(c, apperr.DB("create "+entity+" failed", err))
			return
		}
		h.cache.Invalidate(entity)
		c.JSON(http.StatusCreated, row)
	})

	rg.PUT(path+"/:id", func(c *gin.Context) {
		var row T
		if err := c.ShouldBindJSON(&row); err != nil {
			writeError(c, apperr.Validation("body", "invalid request body"))
			return
		}
		res := db.WithContext(c.Request.Context()).Model(new(T)).
			Where("id = ?", c.Param("id")).Updates(&row)
		if res.Error != nil {
			writeError(c, apperr.DB("update "+entity+" failed", res.Error))
			return
		}
		if res.RowsAffected == 0 {
			writeError(c, apperr.NotFound("record not found", gorm.ErrRecordNotFound))
			return
		}

		var stored T
		if err := db.WithContext(c.Request.Context()).First(&stored, "id = ?", c.Param("id")).Error; err != nil {
			writeError(c, apperr.DB("reload "+entity+" failed", err))
			return
		}
		h.cache.Invalidate(entity)
		c.JSON(http.StatusOK, stored)
	})

	rg.DELETE(path+"/:id", func(c *gin.Context) {
		// Deletion is restricted to the admin account; other sessions
		// may only read and edit.
		if actor(c) != h.cfg.Auth.AdminUser {
			writeError(c, apperr.Forbidden("only the admin account may delete records"))
			return
		}
		res := db.WithContext(c.Request.Context()).Delete(new(T), "id = ?", c.Param("id"))
		if res.Error != nil {
			writeError(c, apperr.DB("delete "+entity+" failed", res.Error))
			return
		}
		if res.RowsAffected == 0 {
			writeError(c, apperr.NotFound("record not found", gorm.ErrRecordNotFound))
			return
		}
		h.cache.Invalidate(entity)
		c.Status(http.StatusNoContent)
	})
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
