// Package repository 定义数据访问层接口
package repository

import (
	"context"

	"readrecall-api/internal/domain/entity"
)

// ArtifactRepository 检查点产物仓储接口
type ArtifactRepository interface {
	// CreateIfAbsent 条件插入，(book_id, progress, kind) 唯一。
	// 已存在时返回 created=false 且不修改既有记录。
	CreateIfAbsent(ctx context.Context, artifact *entity.GeneratedArtifact) (created bool, err error)

	// GetByCheckpoint 按检查点精确查找，未找到返回 (nil, nil)
	GetByCheckpoint(ctx context.Context, bookID string, progress int, kind entity.ArtifactKind) (*entity.GeneratedArtifact, error)

	// GetByID 根据 ID 获取产物，未找到返回 (nil, nil)
	GetByID(ctx context.Context, id string) (*entity.GeneratedArtifact, error)

	// LatestAtOrBefore 取 progress <= maxProgress 中最大者，没有则返回 (nil, nil)
	LatestAtOrBefore(ctx context.Context, bookID string, maxProgress int, kind entity.ArtifactKind) (*entity.GeneratedArtifact, error)

	// ListByBook 按 progress 升序列出图书的全部产物
	ListByBook(ctx context.Context, bookID string, kind entity.ArtifactKind) ([]*entity.GeneratedArtifact, error)

	// DeleteByBook 删除图书的全部产物（随图书级联清理）
	DeleteByBook(ctx context.Context, bookID string) error
}
