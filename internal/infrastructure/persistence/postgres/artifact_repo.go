// Package postgres 提供 PostgreSQL Repository 实现
package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"readrecall-api/internal/domain/entity"
)

// ArtifactRepository 检查点产物仓储实现
type ArtifactRepository struct {
	client *Client
}

// NewArtifactRepository 创建检查点产物仓储
func NewArtifactRepository(client *Client) *ArtifactRepository {
	return &ArtifactRepository{client: client}
}

// CreateIfAbsent 条件插入检查点产物
// 依赖 (book_id, progress, kind) 唯一索引，冲突时 DO NOTHING，
// 通过 RowsAffected 区分新建与已存在。
func (r *ArtifactRepository) CreateIfAbsent(ctx context.Context, artifact *entity.GeneratedArtifact) (bool, error) {
	ctx, span := tracer.Start(ctx, "postgres.ArtifactRepository.CreateIfAbsent")
	defer span.End()

	db := getDB(ctx, r.client.db)
	result := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "book_id"},
			{Name: "progress"},
			{Name: "kind"},
		},
		DoNothing: true,
	}).Create(artifact)
	if result.Error != nil {
		span.RecordError(result.Error)
		return false, fmt.Errorf("failed to create artifact: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// GetByCheckpoint 按检查点精确查找产物
func (r *ArtifactRepository) GetByCheckpoint(ctx context.Context, bookID string, progress int, kind entity.ArtifactKind) (*entity.GeneratedArtifact, error) {
	ctx, span := tracer.Start(ctx, "postgres.ArtifactRepository.GetByCheckpoint")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var art entity.GeneratedArtifact
	if err := db.First(&art, "book_id = ? AND progress = ? AND kind = ?", bookID, progress, kind).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get artifact by checkpoint: %w", err)
	}
	return &art, nil
}

// GetByID 根据 ID 获取产物
func (r *ArtifactRepository) GetByID(ctx context.Context, id string) (*entity.GeneratedArtifact, error) {
	ctx, span := tracer.Start(ctx, "postgres.ArtifactRepository.GetByID")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var art entity.GeneratedArtifact
	if err := db.First(&art, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get artifact: %w", err)
	}
	return &art, nil
}

// LatestAtOrBefore 取 progress <= maxProgress 中最大的产物
func (r *ArtifactRepository) LatestAtOrBefore(ctx context.Context, bookID string, maxProgress int, kind entity.ArtifactKind) (*entity.GeneratedArtifact, error) {
	ctx, span := tracer.Start(ctx, "postgres.ArtifactRepository.LatestAtOrBefore")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var art entity.GeneratedArtifact
	if err := db.Where("book_id = ? AND kind = ? AND progress <= ?", bookID, kind, maxProgress).
		Order("progress DESC").
		First(&art).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get latest artifact at or before progress: %w", err)
	}
	return &art, nil
}

// ListByBook 按进度升序列出图书产物
// kind 为空串时不过滤内容类型。
func (r *ArtifactRepository) ListByBook(ctx context.Context, bookID string, kind entity.ArtifactKind) ([]*entity.GeneratedArtifact, error) {
	ctx, span := tracer.Start(ctx, "postgres.ArtifactRepository.ListByBook")
	defer span.End()

	db := getDB(ctx, r.client.db)
	query := db.Where("book_id = ?", bookID)
	if kind != "" {
		query = query.Where("kind = ?", kind)
	}

	var arts []*entity.GeneratedArtifact
	if err := query.Order("progress ASC").Find(&arts).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list artifacts: %w", err)
	}
	return arts, nil
}

// DeleteByBook 删除图书的全部产物
func (r *ArtifactRepository) DeleteByBook(ctx context.Context, bookID string) error {
	ctx, span := tracer.Start(ctx, "postgres.ArtifactRepository.DeleteByBook")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Delete(&entity.GeneratedArtifact{}, "book_id = ?", bookID).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to delete artifacts by book: %w", err)
	}
	return nil
}
