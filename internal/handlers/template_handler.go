package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Gopher0727/GuildForge/internal/services"
)

// 上传文件的大小上限
const maxTemplateSize = 1 << 20

type TemplateHandler struct {
	TemplateService *services.TemplateService
}

func NewTemplateHandler(templateService *services.TemplateService) *TemplateHandler {
	return &TemplateHandler{TemplateService: templateService}
}

// UploadTemplate 解析 multipart 表单中的 file 字段并保存为模板
func (h *TemplateHandler) UploadTemplate(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	if header.Size > maxTemplateSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is too large"})
		return
	}

	file, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read uploaded file"})
		return
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, maxTemplateSize))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read uploaded file"})
		return
	}

	template, err := h.TemplateService.Upload(c.Request.Context(), header.Filename, content)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotJSONFile), errors.Is(err, services.ErrInvalidJSON):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			// 结构不符合模板定义时返回 500
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"message":       "Template uploaded successfully",
		"template_id":   template.ID,
		"template_name": template.Name,
	})
}

func (h *TemplateHandler) ListTemplates(c *gin.Context) {
	templates, err := h.TemplateService.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, templates)
}

func (h *TemplateHandler) GetTemplate(c *gin.Context) {
	template, err := h.TemplateService.Get(c.Request.Context(), c.Param("template_id"))
	if err != nil {
		writeLookupError(c, err)
		return
	}
	c.JSON(http.StatusOK, template)
}

func (h *TemplateHandler) DeleteTemplate(c *gin.Context) {
	if err := h.TemplateService.Delete(c.Request.Context(), c.Param("template_id")); err != nil {
		writeLookupError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Template deleted successfully"})
}

// writeLookupError 未找到模板返回 404，其余返回 500
func writeLookupError(c *gin.Context, err error) {
	if errors.Is(err, services.ErrTemplateNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Template not found"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
