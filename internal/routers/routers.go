package routers

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/Gopher0727/GuildForge/internal/handlers"
	"github.com/Gopher0727/GuildForge/internal/middlewares"
	logger "github.com/Gopher0727/GuildForge/middleware/log"
	"github.com/Gopher0727/GuildForge/utils/ratelimit"
)

// SetupRoutes 设置所有路由
// limiter 为 nil 时不对创建接口限流（未启用 Redis）
func SetupRoutes(r *gin.Engine, log *logger.Logger,
	limiter ratelimit.Limiter, createRule ratelimit.Rule,
	templateHandler *handlers.TemplateHandler,
	serverHandler *handlers.ServerHandler,
	statusHandler *handlers.StatusHandler,
) {
	r.Use(middlewares.Recovery(log))
	r.Use(middlewares.RequestLogger(log))

	config := cors.DefaultConfig()
	config.AllowAllOrigins = true
	config.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", middlewares.RequestIDHeader}
	config.ExposeHeaders = []string{middlewares.RequestIDHeader}
	r.Use(cors.New(config))

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"Status": "OK",
		})
	})

	api := r.Group("/api")
	RegisterStatusRoutes(api, statusHandler)
	RegisterTemplateRoutes(api, templateHandler)
	RegisterServerRoutes(api, serverHandler, middlewares.RateLimitMiddleware(limiter, "create_server", createRule))
}

func RegisterStatusRoutes(api *gin.RouterGroup, statusHandler *handlers.StatusHandler) {
	api.GET("/", statusHandler.Root)                     // 状态探针
	api.POST("/status", statusHandler.CreateStatusCheck) // 上报连通性检查
	api.GET("/status", statusHandler.ListStatusChecks)   // 检查记录列表
}

func RegisterTemplateRoutes(api *gin.RouterGroup, templateHandler *handlers.TemplateHandler) {
	templateGroup := api.Group("/templates")
	{
		templateGroup.POST("/upload", templateHandler.UploadTemplate)         // 上传模板
		templateGroup.GET("", templateHandler.ListTemplates)                  // 模板列表
		templateGroup.GET("/:template_id", templateHandler.GetTemplate)       // 模板详情
		templateGroup.DELETE("/:template_id", templateHandler.DeleteTemplate) // 删除模板
	}
}

func RegisterServerRoutes(api *gin.RouterGroup, serverHandler *handlers.ServerHandler, createLimit gin.HandlerFunc) {
	serverGroup := api.Group("/servers")
	{
		serverGroup.POST("/create", createLimit, serverHandler.CreateServer) // 按模板创建服务器
		serverGroup.GET("/created", serverHandler.ListCreatedServers)        // 已创建的服务器
	}
}
