// Package dto 提供 HTTP 层数据传输对象
package dto

import (
	"time"

	"readrecall-api/internal/domain/entity"
)

// UpdateReadingStateRequest 更新阅读进度请求
type UpdateReadingStateRequest struct {
	Position   int `json:"position" binding:"min=0"`
	Percentage int `json:"percentage" binding:"min=0,max=100"`
}

// ReadingStateResponse 阅读进度响应
type ReadingStateResponse struct {
	BookID            string    `json:"book_id"`
	Position          int       `json:"position"`
	CurrentPercentage int       `json:"current_percentage"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// ToReadingStateResponse 将领域实体转换为响应 DTO
// 未读过的图书返回零值进度。
func ToReadingStateResponse(bookID string, s *entity.ReadingState) *ReadingStateResponse {
	if s == nil {
		return &ReadingStateResponse{BookID: bookID}
	}
	return &ReadingStateResponse{
		BookID:            s.BookID,
		Position:          s.Position,
		CurrentPercentage: s.CurrentPercentage,
		UpdatedAt:         s.UpdatedAt,
	}
}
