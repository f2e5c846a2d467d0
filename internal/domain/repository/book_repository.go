// Package repository 定义数据访问层接口
package repository

import (
	"context"

	"readrecall-api/internal/domain/entity"
)

// BookRepository 图书仓储接口
type BookRepository interface {
	// Create 创建图书
	Create(ctx context.Context, book *entity.Book) error

	// GetByID 根据 ID 获取图书，未找到返回 (nil, nil)
	GetByID(ctx context.Context, id string) (*entity.Book, error)

	// Update 更新图书
	Update(ctx context.Context, book *entity.Book) error

	// Delete 删除图书（级联删除章节与产物）
	Delete(ctx context.Context, id string) error

	// ListByUser 获取用户图书列表
	ListByUser(ctx context.Context, userID string, pagination Pagination) (*PagedResult[*entity.Book], error)

	// ReplaceSections 原子替换图书章节（重新处理时先清空旧章节）
	ReplaceSections(ctx context.Context, bookID string, sections []entity.BookSection) error

	// ListSections 按 order_index 升序获取图书章节
	ListSections(ctx context.Context, bookID string) ([]entity.BookSection, error)
}
