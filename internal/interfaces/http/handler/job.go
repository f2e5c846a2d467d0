// Package handler 提供 HTTP 请求处理器
package handler

import (
	"readrecall-api/internal/application/book"
	"readrecall-api/internal/application/checkpoint"
	"readrecall-api/internal/domain/entity"
	"readrecall-api/internal/domain/repository"
	"readrecall-api/internal/interfaces/http/dto"

	"github.com/gin-gonic/gin"
)

// JobHandler 生成任务处理器
type JobHandler struct {
	jobService  *checkpoint.JobService
	bookService *book.Service
}

// NewJobHandler 创建生成任务处理器
func NewJobHandler(jobService *checkpoint.JobService, bookService *book.Service) *JobHandler {
	return &JobHandler{
		jobService:  jobService,
		bookService: bookService,
	}
}

// Generate 触发检查点生成
// @Summary 触发检查点生成
// @Description 创建并投递生成任务，已有未结束任务时复用该任务
// @Tags Jobs
// @Accept json
// @Produce json
// @Param bid path string true "图书 ID"
// @Param body body dto.GenerateRequest true "生成参数"
// @Success 202 {object} dto.Response[dto.JobResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse "图书尚未完成文本抽取"
// @Router /v1/books/{bid}/generate [post]
func (h *JobHandler) Generate(c *gin.Context) {
	ctx := c.Request.Context()
	userID := currentUserID(c)
	bookID := dto.BindBookID(c)

	var req dto.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	kind, err := entity.ParseArtifactKind(req.Kind)
	if err != nil {
		dto.BadRequest(c, err.Error())
		return
	}

	// 归属校验
	if _, err := h.bookService.Get(ctx, userID, bookID); err != nil {
		respondError(c, err, "failed to get book")
		return
	}

	job, err := h.jobService.Enqueue(ctx, bookID, userID, kind)
	if err != nil {
		respondError(c, err, "failed to enqueue generation job")
		return
	}

	dto.Accepted(c, dto.ToJobResponse(job))
}

// ListBookJobs 获取图书任务列表
// @Summary 获取图书任务列表
// @Tags Jobs
// @Produce json
// @Param bid path string true "图书 ID"
// @Param status query string false "状态过滤"
// @Param kind query string false "类型过滤"
// @Success 200 {object} dto.Response[dto.JobListResponse]
// @Router /v1/books/{bid}/jobs [get]
func (h *JobHandler) ListBookJobs(c *gin.Context) {
	ctx := c.Request.Context()
	userID := currentUserID(c)
	bookID := dto.BindBookID(c)
	pageReq := dto.BindPage(c)

	if _, err := h.bookService.Get(ctx, userID, bookID); err != nil {
		respondError(c, err, "failed to get book")
		return
	}

	var filter *repository.JobFilter
	status := c.Query("status")
	kind := c.Query("kind")
	if status != "" || kind != "" {
		filter = &repository.JobFilter{
			Status: entity.JobStatus(status),
			Kind:   entity.ArtifactKind(kind),
		}
	}

	result, err := h.jobService.List(ctx, bookID, filter, repository.NewPagination(pageReq.Page, pageReq.PageSize))
	if err != nil {
		respondError(c, err, "failed to list jobs")
		return
	}

	resp := dto.ToJobListResponse(result.Items)
	meta := dto.NewPageMeta(pageReq.Page, pageReq.PageSize, int(result.Total))
	dto.SuccessWithPage(c, resp, meta)
}

// GetJob 获取任务详情
// @Summary 获取任务详情
// @Description 获取指定任务的详细信息、进度和结果
// @Tags Jobs
// @Produce json
// @Param jid path string true "任务 ID"
// @Success 200 {object} dto.Response[dto.JobResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/jobs/{jid} [get]
func (h *JobHandler) GetJob(c *gin.Context) {
	ctx := c.Request.Context()
	jobID := dto.BindJobID(c)

	job, err := h.jobService.Get(ctx, jobID)
	if err != nil {
		respondError(c, err, "failed to get job")
		return
	}

	dto.Success(c, dto.ToJobResponse(job))
}

// CancelJob 取消任务
// @Summary 取消任务
// @Description 请求取消任务，worker 在检查点边界停止，已生成的产物保留
// @Tags Jobs
// @Produce json
// @Param jid path string true "任务 ID"
// @Success 200 {object} dto.Response[dto.CancelJobResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse "任务已结束"
// @Router /v1/jobs/{jid} [delete]
func (h *JobHandler) CancelJob(c *gin.Context) {
	ctx := c.Request.Context()
	jobID := dto.BindJobID(c)

	job, err := h.jobService.Cancel(ctx, jobID)
	if err != nil {
		respondError(c, err, "failed to cancel job")
		return
	}

	dto.Success(c, &dto.CancelJobResponse{
		ID:        job.ID,
		Cancelled: true,
	})
}
