package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/xiebiao/relatorio/pkg/response"
)

// HealthHandler 健康检查
type HealthHandler struct {
	ping func(ctx context.Context) error
}

// NewHealthHandler 创建健康检查处理器，ping为数据库连通性检查
func NewHealthHandler(ping func(ctx context.Context) error) *HealthHandler {
	return &HealthHandler{ping: ping}
}

// Ping 健康检查
// @Summary      健康检查
// @Description  同时检查数据库连通性
// @Tags         系统
// @Produce      json
// @Success      200 {object} map[string]string
// @Failure      500 {object} response.ErrorBody
// @Router       /ping [get]
func (h *HealthHandler) Ping(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.ping(ctx); err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "pong",
		"status":  "healthy",
	})
}
