// Package handler 提供 HTTP 请求处理器
package handler

import (
	"readrecall-api/internal/application/book"
	"readrecall-api/internal/application/search"
	"readrecall-api/internal/interfaces/http/dto"

	"github.com/gin-gonic/gin"
)

// SearchHandler 生成内容检索处理器
type SearchHandler struct {
	searchService *search.Service
	bookService   *book.Service
}

// NewSearchHandler 创建检索处理器
func NewSearchHandler(searchService *search.Service, bookService *book.Service) *SearchHandler {
	return &SearchHandler{
		searchService: searchService,
		bookService:   bookService,
	}
}

// Search 在图书的生成内容中检索
// @Summary 检索生成内容
// @Description 向量检索图书的检查点产物，max_progress 限制检索范围不超过当前进度
// @Tags Search
// @Accept json
// @Produce json
// @Param bid path string true "图书 ID"
// @Param body body dto.SearchRequest true "检索参数"
// @Success 200 {object} dto.Response[dto.SearchResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse "索引后端未配置"
// @Router /v1/books/{bid}/search [post]
func (h *SearchHandler) Search(c *gin.Context) {
	ctx := c.Request.Context()
	userID := currentUserID(c)
	bookID := dto.BindBookID(c)

	var req dto.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	if _, err := h.bookService.Get(ctx, userID, bookID); err != nil {
		respondError(c, err, "failed to get book")
		return
	}

	results, err := h.searchService.Search(ctx, req.ToSearchParams(bookID))
	if err != nil {
		respondError(c, err, "search failed")
		return
	}

	dto.Success(c, dto.ToSearchResponse(results))
}
