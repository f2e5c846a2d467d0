// Package handler 提供 HTTP 请求处理器
package handler

import (
	"readrecall-api/internal/application/book"
	"readrecall-api/internal/application/reading"
	"readrecall-api/internal/domain/entity"
	"readrecall-api/internal/interfaces/http/dto"

	"github.com/gin-gonic/gin"
)

// ReadingHandler 阅读进度与读路径处理器
type ReadingHandler struct {
	readingService *reading.Service
	bookService    *book.Service
}

// NewReadingHandler 创建阅读处理器
func NewReadingHandler(readingService *reading.Service, bookService *book.Service) *ReadingHandler {
	return &ReadingHandler{
		readingService: readingService,
		bookService:    bookService,
	}
}

// Content 按进度取内容
// @Summary 按进度取内容
// @Description 取 progress <= P 中最大检查点的产物；没有命中时返回 available=false
// @Tags Reading
// @Produce json
// @Param bid path string true "图书 ID"
// @Param progress query int false "阅读进度 0-100，缺省取已保存的进度"
// @Param kind query string false "内容类型，缺省 summary"
// @Success 200 {object} dto.Response[dto.ProgressContentResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/books/{bid}/content [get]
func (h *ReadingHandler) Content(c *gin.Context) {
	ctx := c.Request.Context()
	userID := currentUserID(c)
	bookID := dto.BindBookID(c)

	if _, err := h.bookService.Get(ctx, userID, bookID); err != nil {
		respondError(c, err, "failed to get book")
		return
	}

	kind := entity.ArtifactKind(c.DefaultQuery("kind", string(entity.ArtifactKindSummary)))
	if _, err := entity.ParseArtifactKind(string(kind)); err != nil {
		dto.BadRequest(c, err.Error())
		return
	}

	progress := dto.BindQueryInt(c, "progress", -1)
	if progress < 0 {
		// 未显式给出进度时取已保存的阅读进度
		state, err := h.readingService.State(ctx, userID, bookID)
		if err != nil {
			respondError(c, err, "failed to get reading state")
			return
		}
		if state != nil {
			progress = state.CurrentPercentage
		} else {
			progress = 0
		}
	}

	content, err := h.readingService.ContentAtProgress(ctx, bookID, progress, kind)
	if err != nil {
		respondError(c, err, "failed to get content")
		return
	}

	dto.Success(c, dto.ToProgressContentResponse(content))
}

// Checkpoints 列出图书全部检查点产物
// @Summary 列出检查点产物
// @Tags Reading
// @Produce json
// @Param bid path string true "图书 ID"
// @Param kind query string false "内容类型过滤"
// @Success 200 {object} dto.Response[dto.ArtifactListResponse]
// @Router /v1/books/{bid}/checkpoints [get]
func (h *ReadingHandler) Checkpoints(c *gin.Context) {
	ctx := c.Request.Context()
	userID := currentUserID(c)
	bookID := dto.BindBookID(c)

	if _, err := h.bookService.Get(ctx, userID, bookID); err != nil {
		respondError(c, err, "failed to get book")
		return
	}

	kind := entity.ArtifactKind(c.Query("kind"))
	if kind != "" {
		if _, err := entity.ParseArtifactKind(string(kind)); err != nil {
			dto.BadRequest(c, err.Error())
			return
		}
	}

	artifacts, err := h.readingService.ListCheckpoints(ctx, bookID, kind)
	if err != nil {
		respondError(c, err, "failed to list checkpoints")
		return
	}

	dto.Success(c, dto.ToArtifactListResponse(artifacts))
}

// GetState 获取阅读进度
// @Summary 获取阅读进度
// @Tags Reading
// @Produce json
// @Param bid path string true "图书 ID"
// @Success 200 {object} dto.Response[dto.ReadingStateResponse]
// @Router /v1/books/{bid}/reading-state [get]
func (h *ReadingHandler) GetState(c *gin.Context) {
	ctx := c.Request.Context()
	userID := currentUserID(c)
	bookID := dto.BindBookID(c)

	if _, err := h.bookService.Get(ctx, userID, bookID); err != nil {
		respondError(c, err, "failed to get book")
		return
	}

	state, err := h.readingService.State(ctx, userID, bookID)
	if err != nil {
		respondError(c, err, "failed to get reading state")
		return
	}

	dto.Success(c, dto.ToReadingStateResponse(bookID, state))
}

// PutState 更新阅读进度
// @Summary 更新阅读进度
// @Description 整条覆盖写入，(user, book) 唯一
// @Tags Reading
// @Accept json
// @Produce json
// @Param bid path string true "图书 ID"
// @Param body body dto.UpdateReadingStateRequest true "阅读进度"
// @Success 200 {object} dto.Response[dto.ReadingStateResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/books/{bid}/reading-state [put]
func (h *ReadingHandler) PutState(c *gin.Context) {
	ctx := c.Request.Context()
	userID := currentUserID(c)
	bookID := dto.BindBookID(c)

	var req dto.UpdateReadingStateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	if _, err := h.bookService.Get(ctx, userID, bookID); err != nil {
		respondError(c, err, "failed to get book")
		return
	}

	state, err := h.readingService.UpsertState(ctx, userID, bookID, req.Position, req.Percentage)
	if err != nil {
		respondError(c, err, "failed to update reading state")
		return
	}

	dto.Success(c, dto.ToReadingStateResponse(bookID, state))
}
