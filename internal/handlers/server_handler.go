package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Gopher0727/GuildForge/internal/models"
	"github.com/Gopher0727/GuildForge/internal/services"
)

type ServerHandler struct {
	CreationService *services.CreationService
}

func NewServerHandler(creationService *services.CreationService) *ServerHandler {
	return &ServerHandler{CreationService: creationService}
}

// CreateServer 同步等待创建结果；失败结果同样以 200 返回，由 success 字段区分
func (h *ServerHandler) CreateServer(c *gin.Context) {
	var req models.CreationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求参数格式错误: template_id 和 server_name 为必填项"})
		return
	}

	result, err := h.CreationService.CreateServer(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, services.ErrInvalidServerName) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		writeLookupError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *ServerHandler) ListCreatedServers(c *gin.Context) {
	logs, err := h.CreationService.ListCreated(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, logs)
}
