// Package repository 定义数据访问层接口
package repository

import (
	"context"

	"readrecall-api/internal/domain/entity"
)

// ReadingStateRepository 阅读进度仓储接口
type ReadingStateRepository interface {
	// Upsert 写入阅读进度，(user_id, book_id) 冲突时覆盖
	Upsert(ctx context.Context, state *entity.ReadingState) error

	// Get 获取阅读进度，未找到返回 (nil, nil)
	Get(ctx context.Context, userID, bookID string) (*entity.ReadingState, error)

	// DeleteByBook 删除图书的全部阅读进度
	DeleteByBook(ctx context.Context, bookID string) error
}
