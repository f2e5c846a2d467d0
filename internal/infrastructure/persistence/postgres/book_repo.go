// Package postgres 提供 PostgreSQL Repository 实现
package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"readrecall-api/internal/domain/entity"
	"readrecall-api/internal/domain/repository"
)

// BookRepository 图书仓储实现
type BookRepository struct {
	client *Client
}

// NewBookRepository 创建图书仓储
func NewBookRepository(client *Client) *BookRepository {
	return &BookRepository{client: client}
}

// Create 创建图书
func (r *BookRepository) Create(ctx context.Context, book *entity.Book) error {
	ctx, span := tracer.Start(ctx, "postgres.BookRepository.Create")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Create(book).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create book: %w", err)
	}
	return nil
}

// GetByID 根据 ID 获取图书
func (r *BookRepository) GetByID(ctx context.Context, id string) (*entity.Book, error) {
	ctx, span := tracer.Start(ctx, "postgres.BookRepository.GetByID")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var book entity.Book
	if err := db.First(&book, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get book: %w", err)
	}
	return &book, nil
}

// Update 更新图书
func (r *BookRepository) Update(ctx context.Context, book *entity.Book) error {
	ctx, span := tracer.Start(ctx, "postgres.BookRepository.Update")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Omit("Sections").Save(book).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to update book: %w", err)
	}
	return nil
}

// Delete 删除图书，章节与产物随外键级联清理
func (r *BookRepository) Delete(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "postgres.BookRepository.Delete")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Delete(&entity.Book{}, "id = ?", id).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to delete book: %w", err)
	}
	return nil
}

// ListByUser 获取用户图书列表
func (r *BookRepository) ListByUser(ctx context.Context, userID string, pagination repository.Pagination) (*repository.PagedResult[*entity.Book], error) {
	ctx, span := tracer.Start(ctx, "postgres.BookRepository.ListByUser")
	defer span.End()

	db := getDB(ctx, r.client.db)
	query := db.Model(&entity.Book{}).Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to count books: %w", err)
	}

	var books []*entity.Book
	if err := query.Order("created_at DESC").
		Offset(pagination.Offset()).
		Limit(pagination.Limit()).
		Find(&books).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list books: %w", err)
	}

	return repository.NewPagedResult(books, total, pagination), nil
}

// ReplaceSections 原子替换图书章节
// 重新处理图书时先清空旧章节再批量写入，整体在一个事务中。
func (r *BookRepository) ReplaceSections(ctx context.Context, bookID string, sections []entity.BookSection) error {
	ctx, span := tracer.Start(ctx, "postgres.BookRepository.ReplaceSections")
	defer span.End()

	db := getDB(ctx, r.client.db)
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&entity.BookSection{}, "book_id = ?", bookID).Error; err != nil {
			return err
		}
		if len(sections) == 0 {
			return nil
		}
		for i := range sections {
			sections[i].BookID = bookID
		}
		return tx.CreateInBatches(sections, 100).Error
	})
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to replace book sections: %w", err)
	}
	return nil
}

// ListSections 按 order_index 升序获取图书章节
func (r *BookRepository) ListSections(ctx context.Context, bookID string) ([]entity.BookSection, error) {
	ctx, span := tracer.Start(ctx, "postgres.BookRepository.ListSections")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var sections []entity.BookSection
	if err := db.Where("book_id = ?", bookID).Order("order_index ASC").Find(&sections).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list book sections: %w", err)
	}
	return sections, nil
}
