package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Gopher0727/GuildForge/internal/models"
	"github.com/Gopher0727/GuildForge/internal/services"
)

type StatusHandler struct {
	StatusService *services.StatusService
}

func NewStatusHandler(statusService *services.StatusService) *StatusHandler {
	return &StatusHandler{StatusService: statusService}
}

func (h *StatusHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, h.StatusService.Probe())
}

func (h *StatusHandler) CreateStatusCheck(c *gin.Context) {
	var req models.StatusCheckCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求参数格式错误: client_name 为必填项"})
		return
	}

	check, err := h.StatusService.RecordCheck(c.Request.Context(), req.ClientName)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, check)
}

func (h *StatusHandler) ListStatusChecks(c *gin.Context) {
	checks, err := h.StatusService.ListChecks(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, checks)
}
