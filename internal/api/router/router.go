package router

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"github.com/Abdullah-Asgher/JobMatchAI/internal/api/handler"
	"github.com/Abdullah-Asgher/JobMatchAI/internal/constants"
)

// RegisterRoutes 注册 API 路由
func RegisterRoutes(
	h *server.Hertz,
	resumeHandler *handler.ResumeHandler,
	searchHandler *handler.JobSearchHandler,
	applicationHandler *handler.ApplicationHandler,
) {
	api := h.Group("/api/v1")

	// 简历
	api.POST("/resume/upload", resumeHandler.HandleResumeUpload)
	api.GET("/resume/:resume_id/analysis", resumeHandler.HandleResumeAnalysis)

	// 聚合搜索
	api.POST("/jobs/search", searchHandler.HandleJobSearch)

	// 申请跟踪
	api.POST("/applications", applicationHandler.HandleTrack)
	api.GET("/applications", applicationHandler.HandleList)
	api.GET("/applications/check", applicationHandler.HandleCheck)
	api.GET("/applications/stats", applicationHandler.HandleStats)
	api.PUT("/applications/:posting_id/status", applicationHandler.HandleUpdateStatus)

	// 健康检查
	api.GET("/health", func(c context.Context, ctx *app.RequestContext) {
		ctx.JSON(consts.StatusOK, utils.H{
			"status":  "ok",
			"service": constants.AppName,
			"version": constants.AppVersion,
		})
	})
}
