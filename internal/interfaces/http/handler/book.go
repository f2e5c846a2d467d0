// Package handler 提供 HTTP 请求处理器
package handler

import (
	"readrecall-api/internal/application/book"
	"readrecall-api/internal/domain/repository"
	"readrecall-api/internal/interfaces/http/dto"
	"readrecall-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

// BookHandler 图书处理器
type BookHandler struct {
	bookService *book.Service
}

// NewBookHandler 创建图书处理器
func NewBookHandler(bookService *book.Service) *BookHandler {
	return &BookHandler{
		bookService: bookService,
	}
}

// Upload 上传图书
// @Summary 上传图书
// @Description 上传 EPUB 或 TXT 文件并登记图书，文本抽取异步执行
// @Tags Books
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "图书文件"
// @Param title formData string false "书名，缺省取文件名"
// @Success 201 {object} dto.Response[dto.BookResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Router /v1/books [post]
func (h *BookHandler) Upload(c *gin.Context) {
	ctx := c.Request.Context()
	userID := currentUserID(c)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		dto.BadRequest(c, "file is required")
		return
	}
	title := c.PostForm("title")

	src, err := fileHeader.Open()
	if err != nil {
		logger.Error(ctx, "failed to open uploaded file", err)
		dto.InternalError(c, "failed to read upload")
		return
	}
	defer src.Close()

	b, err := h.bookService.Upload(ctx, userID, fileHeader.Filename, title, fileHeader.Size, src)
	if err != nil {
		respondError(c, err, "failed to upload book")
		return
	}

	dto.Created(c, dto.ToBookResponse(b))
}

// List 获取图书列表
// @Summary 获取图书列表
// @Description 分页获取当前用户的图书
// @Tags Books
// @Produce json
// @Success 200 {object} dto.Response[dto.BookListResponse]
// @Router /v1/books [get]
func (h *BookHandler) List(c *gin.Context) {
	ctx := c.Request.Context()
	userID := currentUserID(c)
	pageReq := dto.BindPage(c)

	result, err := h.bookService.List(ctx, userID, repository.NewPagination(pageReq.Page, pageReq.PageSize))
	if err != nil {
		respondError(c, err, "failed to list books")
		return
	}

	resp := dto.ToBookListResponse(result.Items)
	meta := dto.NewPageMeta(pageReq.Page, pageReq.PageSize, int(result.Total))
	dto.SuccessWithPage(c, resp, meta)
}

// Get 获取图书详情
// @Summary 获取图书详情
// @Tags Books
// @Produce json
// @Param bid path string true "图书 ID"
// @Success 200 {object} dto.Response[dto.BookResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/books/{bid} [get]
func (h *BookHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()
	userID := currentUserID(c)
	bookID := dto.BindBookID(c)

	b, err := h.bookService.Get(ctx, userID, bookID)
	if err != nil {
		respondError(c, err, "failed to get book")
		return
	}

	dto.Success(c, dto.ToBookResponse(b))
}

// Sections 获取图书章节列表
// @Summary 获取章节列表
// @Tags Books
// @Produce json
// @Param bid path string true "图书 ID"
// @Success 200 {object} dto.Response[dto.SectionListResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/books/{bid}/sections [get]
func (h *BookHandler) Sections(c *gin.Context) {
	ctx := c.Request.Context()
	userID := currentUserID(c)
	bookID := dto.BindBookID(c)

	sections, err := h.bookService.Sections(ctx, userID, bookID)
	if err != nil {
		respondError(c, err, "failed to list sections")
		return
	}

	dto.Success(c, dto.ToSectionListResponse(sections))
}

// Process 同步触发文本抽取
// @Summary 触发文本抽取
// @Description 队列不可用或需要重建章节时的手动入口
// @Tags Books
// @Produce json
// @Param bid path string true "图书 ID"
// @Success 200 {object} dto.Response[dto.BookResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/books/{bid}/process [post]
func (h *BookHandler) Process(c *gin.Context) {
	ctx := c.Request.Context()
	userID := currentUserID(c)
	bookID := dto.BindBookID(c)

	b, err := h.bookService.Process(ctx, userID, bookID)
	if err != nil {
		respondError(c, err, "failed to process book")
		return
	}

	dto.Success(c, dto.ToBookResponse(b))
}

// Delete 删除图书
// @Summary 删除图书
// @Description 删除图书及全部派生数据
// @Tags Books
// @Produce json
// @Param bid path string true "图书 ID"
// @Success 204
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/books/{bid} [delete]
func (h *BookHandler) Delete(c *gin.Context) {
	ctx := c.Request.Context()
	userID := currentUserID(c)
	bookID := dto.BindBookID(c)

	if err := h.bookService.Delete(ctx, userID, bookID); err != nil {
		respondError(c, err, "failed to delete book")
		return
	}

	dto.NoContent(c)
}
