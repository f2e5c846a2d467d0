// Package router 提供 HTTP 路由配置
package router

import (
	"readrecall-api/internal/interfaces/http/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterV1Routes 注册 v1 版本路由
// 认证端点公开，其余路由要求 AccessToken。
func RegisterV1Routes(v1 *gin.RouterGroup, authCfg middleware.AuthConfig, rateLimit gin.HandlerFunc, h *Handlers) {
	// 认证管理
	auth := v1.Group("/auth")
	{
		auth.POST("/register", h.Auth.Register)
		auth.POST("/login", h.Auth.Login)
		auth.POST("/refresh", h.Auth.RefreshToken)
		auth.POST("/logout", h.Auth.Logout)
	}

	protected := v1.Group("")
	protected.Use(middleware.Auth(authCfg), rateLimit)

	// 图书管理
	books := protected.Group("/books")
	{
		books.POST("", h.Book.Upload)
		books.GET("", h.Book.List)
		books.GET("/:bid", h.Book.Get)
		books.DELETE("/:bid", h.Book.Delete)
		books.POST("/:bid/process", h.Book.Process)
		books.GET("/:bid/sections", h.Book.Sections)

		// 检查点生成
		books.POST("/:bid/generate", h.Job.Generate)
		books.GET("/:bid/jobs", h.Job.ListBookJobs)

		// 读路径
		books.GET("/:bid/content", h.Reading.Content)
		books.GET("/:bid/checkpoints", h.Reading.Checkpoints)
		books.GET("/:bid/reading-state", h.Reading.GetState)
		books.PUT("/:bid/reading-state", h.Reading.PutState)

		// 生成内容检索
		books.POST("/:bid/search", h.Search.Search)
	}

	// 任务管理
	jobs := protected.Group("/jobs")
	{
		jobs.GET("/:jid", h.Job.GetJob)
		jobs.DELETE("/:jid", h.Job.CancelJob)
	}
}
