// Package postgres 提供 PostgreSQL Repository 实现
package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"readrecall-api/internal/domain/entity"
)

// ReadingStateRepository 阅读进度仓储实现
type ReadingStateRepository struct {
	client *Client
}

// NewReadingStateRepository 创建阅读进度仓储
func NewReadingStateRepository(client *Client) *ReadingStateRepository {
	return &ReadingStateRepository{client: client}
}

// Upsert 写入阅读进度，(user_id, book_id) 冲突时覆盖
func (r *ReadingStateRepository) Upsert(ctx context.Context, state *entity.ReadingState) error {
	ctx, span := tracer.Start(ctx, "postgres.ReadingStateRepository.Upsert")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "user_id"},
			{Name: "book_id"},
		},
		DoUpdates: clause.AssignmentColumns([]string{"position", "current_percentage", "updated_at"}),
	}).Create(state).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to upsert reading state: %w", err)
	}
	return nil
}

// Get 获取阅读进度
func (r *ReadingStateRepository) Get(ctx context.Context, userID, bookID string) (*entity.ReadingState, error) {
	ctx, span := tracer.Start(ctx, "postgres.ReadingStateRepository.Get")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var state entity.ReadingState
	if err := db.First(&state, "user_id = ? AND book_id = ?", userID, bookID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get reading state: %w", err)
	}
	return &state, nil
}

// DeleteByBook 删除图书的全部阅读进度
func (r *ReadingStateRepository) DeleteByBook(ctx context.Context, bookID string) error {
	ctx, span := tracer.Start(ctx, "postgres.ReadingStateRepository.DeleteByBook")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Delete(&entity.ReadingState{}, "book_id = ?", bookID).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to delete reading states by book: %w", err)
	}
	return nil
}
