package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"brewpos/internal/infra"
)

type HealthHandler struct {
	db  *gorm.DB
	rdb *redis.Client
	cb  *infra.CircuitBreaker
}

func NewHealthHandler(db *gorm.DB, rdb *redis.Client, cb *infra.CircuitBreaker) *HealthHandler {
	return &HealthHandler{db: db, rdb: rdb, cb: cb}
}

// Check godoc
// @Summary      Service health
// @Description  Reports connectivity to Postgres and Redis plus the persistence breaker state.
// @Tags         health
// @Produce      json
// @Success      200 {object} map[string]interface{}
// @Failure      503 {object} map[string]interface{}
// @Router       /health [get]
func (h *HealthHandler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	dbStatus := "ok"
	if sqlDB, err := h.db.DB(); err != nil {
		dbStatus = "error"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "error"
	}
	redisStatus := "ok"
	if err := h.rdb.Ping(ctx).Err(); err != nil {
		redisStatus = "error"
	}
	if dbStatus != "ok" || redisStatus != "ok" {
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, gin.H{
		"status":              statusWord(status),
		"database":            dbStatus,
		"redis":               redisStatus,
		"persistence_breaker": h.cb.State().String(),
	})
}

func statusWord(status int) string {
	if status == http.StatusOK {
		return "ok"
	}
	return "degraded"
}
