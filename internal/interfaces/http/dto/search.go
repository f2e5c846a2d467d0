// Package dto 提供 HTTP 层数据传输对象
package dto

import (
	"readrecall-api/internal/application/search"
	"readrecall-api/internal/domain/entity"
)

// SearchRequest 生成内容检索请求
type SearchRequest struct {
	Query       string   `json:"query" binding:"required"`
	MaxProgress int      `json:"max_progress" binding:"omitempty,min=1,max=100"`
	Kinds       []string `json:"kinds" binding:"omitempty,dive,oneof=summary character_list"`
	TopK        int      `json:"top_k" binding:"omitempty,min=1,max=50"`
}

// SearchResultDTO 单条检索命中
type SearchResultDTO struct {
	ArtifactID string  `json:"artifact_id"`
	Kind       string  `json:"kind"`
	Progress   int     `json:"progress"`
	Content    string  `json:"content"`
	Score      float32 `json:"score"`
}

// SearchResponse 检索响应
type SearchResponse struct {
	Results []*SearchResultDTO `json:"results"`
}

// ToSearchParams 将请求转换为检索参数
func (r *SearchRequest) ToSearchParams(bookID string) *search.SearchParams {
	kinds := make([]entity.ArtifactKind, 0, len(r.Kinds))
	for _, k := range r.Kinds {
		kinds = append(kinds, entity.ArtifactKind(k))
	}
	return &search.SearchParams{
		BookID:      bookID,
		Query:       r.Query,
		MaxProgress: r.MaxProgress,
		Kinds:       kinds,
		TopK:        r.TopK,
	}
}

// ToSearchResponse 将检索结果转换为响应 DTO
func ToSearchResponse(results []*search.SearchResult) *SearchResponse {
	resp := &SearchResponse{
		Results: make([]*SearchResultDTO, 0, len(results)),
	}
	for _, r := range results {
		resp.Results = append(resp.Results, &SearchResultDTO{
			ArtifactID: r.ArtifactID,
			Kind:       string(r.Kind),
			Progress:   r.Progress,
			Content:    r.Content,
			Score:      r.Score,
		})
	}
	return resp
}
