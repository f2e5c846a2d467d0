// Package dto 提供 HTTP 层数据传输对象
package dto

import (
	"time"

	"readrecall-api/internal/domain/entity"
)

// BookResponse 图书响应
type BookResponse struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Author           string    `json:"author,omitempty"`
	Format           string    `json:"format"`
	ProcessingStatus string    `json:"processing_status"`
	FullTextLength   int       `json:"full_text_length"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// BookListResponse 图书列表响应
type BookListResponse struct {
	Books []*BookResponse `json:"books"`
}

// SectionResponse 章节响应
type SectionResponse struct {
	ID            string `json:"id"`
	Title         string `json:"title,omitempty"`
	OrderIndex    int    `json:"order_index"`
	StartPosition int    `json:"start_position"`
	EndPosition   int    `json:"end_position"`
}

// SectionListResponse 章节列表响应
type SectionListResponse struct {
	Sections []*SectionResponse `json:"sections"`
}

// ToBookResponse 将领域实体转换为响应 DTO
func ToBookResponse(b *entity.Book) *BookResponse {
	if b == nil {
		return nil
	}
	return &BookResponse{
		ID:               b.ID,
		Title:            b.Title,
		Author:           b.Author,
		Format:           string(b.Format),
		ProcessingStatus: string(b.ProcessingStatus),
		FullTextLength:   b.FullTextLength,
		CreatedAt:        b.CreatedAt,
		UpdatedAt:        b.UpdatedAt,
	}
}

// ToBookListResponse 将领域实体列表转换为响应 DTO
func ToBookListResponse(books []*entity.Book) *BookListResponse {
	resp := &BookListResponse{
		Books: make([]*BookResponse, 0, len(books)),
	}
	for _, b := range books {
		resp.Books = append(resp.Books, ToBookResponse(b))
	}
	return resp
}

// ToSectionListResponse 将章节列表转换为响应 DTO
// 章节正文不随列表返回。
func ToSectionListResponse(sections []entity.BookSection) *SectionListResponse {
	resp := &SectionListResponse{
		Sections: make([]*SectionResponse, 0, len(sections)),
	}
	for i := range sections {
		s := &sections[i]
		resp.Sections = append(resp.Sections, &SectionResponse{
			ID:            s.ID,
			Title:         s.Title,
			OrderIndex:    s.OrderIndex,
			StartPosition: s.StartPosition,
			EndPosition:   s.EndPosition,
		})
	}
	return resp
}
