// Package postgres 提供 PostgreSQL 数据库访问层实现
package postgres

import (
	"context"
	"fmt"

	"readrecall-api/internal/domain/entity"
)

// AutoMigrate 同步数据库表结构
// gen_random_uuid() 依赖 pgcrypto，先确保扩展存在。
func (c *Client) AutoMigrate(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "postgres.AutoMigrate")
	defer span.End()

	db := c.db.WithContext(ctx)
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS pgcrypto").Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to enable pgcrypto: %w", err)
	}

	if err := db.AutoMigrate(
		&entity.User{},
		&entity.Book{},
		&entity.BookSection{},
		&entity.GeneratedArtifact{},
		&entity.ReadingState{},
		&entity.GenerationJob{},
	); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to auto migrate: %w", err)
	}
	return nil
}
