// Package book 实现图书上传与生命周期管理
package book

import (
	"context"
	"io"
	"strings"

	"readrecall-api/internal/application/extract"
	"readrecall-api/internal/application/search"
	"readrecall-api/internal/domain/entity"
	"readrecall-api/internal/domain/repository"
	"readrecall-api/internal/infrastructure/persistence/redis"
	apperrors "readrecall-api/pkg/errors"
	"readrecall-api/pkg/logger"
	"readrecall-api/pkg/tracer"
)

// FileStore 上传文件存储 port
type FileStore interface {
	Save(ctx context.Context, src io.Reader, originalName string) (string, error)
	Remove(ctx context.Context, path string) error
}

// ProcessQueue 图书处理任务投递 port
type ProcessQueue interface {
	EnqueueBookProcess(ctx context.Context, bookID, userID string) error
}

// Service 图书服务
type Service struct {
	books         repository.BookRepository
	artifacts     repository.ArtifactRepository
	states        repository.ReadingStateRepository
	jobs          repository.JobRepository
	txm           repository.Transactor
	store         FileStore
	queue         ProcessQueue         // 可为 nil，降级为仅同步处理
	index         search.ArtifactIndex // 可为 nil
	cache         *redis.Cache         // 可为 nil
	extractor     *extract.Service
	maxUploadSize int64
}

// NewService 创建图书服务
func NewService(
	books repository.BookRepository,
	artifacts repository.ArtifactRepository,
	states repository.ReadingStateRepository,
	jobs repository.JobRepository,
	txm repository.Transactor,
	store FileStore,
	queue ProcessQueue,
	index search.ArtifactIndex,
	cache *redis.Cache,
	extractor *extract.Service,
	maxUploadSize int64,
) *Service {
	return &Service{
		books:         books,
		artifacts:     artifacts,
		states:        states,
		jobs:          jobs,
		txm:           txm,
		store:         store,
		queue:         queue,
		index:         index,
		cache:         cache,
		extractor:     extractor,
		maxUploadSize: maxUploadSize,
	}
}

// Upload 保存上传文件并登记图书
// 文本抽取异步执行；队列不可用时图书停留在 uploaded 状态，可通过
// Process 手动触发。
func (s *Service) Upload(ctx context.Context, userID, filename, title string, size int64, src io.Reader) (*entity.Book, error) {
	ctx, span := tracer.Start(ctx, "book.Service.Upload")
	defer span.End()

	if s.maxUploadSize > 0 && size > s.maxUploadSize {
		return nil, apperrors.New(apperrors.CodeValidationFailed, "file too large")
	}

	format, err := extract.DetectFormat(filename)
	if err != nil {
		return nil, err
	}

	path, err := s.store.Save(ctx, src, filename)
	if err != nil {
		return nil, err
	}

	if title == "" {
		title = strings.TrimSuffix(filename, "."+string(format))
	}

	book := &entity.Book{
		UserID:           userID,
		Title:            title,
		FilePath:         path,
		Format:           format,
		ProcessingStatus: entity.ProcessingStatusUploaded,
	}
	if err := s.books.Create(ctx, book); err != nil {
		if removeErr := s.store.Remove(ctx, path); removeErr != nil {
			logger.Warn(ctx, "failed to remove orphan upload", "path", path, "error", removeErr.Error())
		}
		return nil, err
	}

	if s.queue != nil {
		if err := s.queue.EnqueueBookProcess(ctx, book.ID, userID); err != nil {
			// 入队失败不回滚上传，图书可手动触发处理
			logger.Warn(ctx, "failed to enqueue book processing",
				"book_id", book.ID, "error", err.Error())
		}
	}

	logger.Info(ctx, "book uploaded",
		"book_id", book.ID, "format", string(format), "size", size)
	return book, nil
}

// Get 获取图书详情，校验归属
func (s *Service) Get(ctx context.Context, userID, bookID string) (*entity.Book, error) {
	book, err := s.books.GetByID(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if book == nil {
		return nil, apperrors.ErrBookNotFound
	}
	if book.UserID != userID {
		return nil, apperrors.ErrForbidden
	}
	return book, nil
}

// List 获取用户图书列表
func (s *Service) List(ctx context.Context, userID string, pagination repository.Pagination) (*repository.PagedResult[*entity.Book], error) {
	return s.books.ListByUser(ctx, userID, pagination)
}

// Sections 获取图书章节列表
func (s *Service) Sections(ctx context.Context, userID, bookID string) ([]entity.BookSection, error) {
	if _, err := s.Get(ctx, userID, bookID); err != nil {
		return nil, err
	}
	return s.books.ListSections(ctx, bookID)
}

// Process 同步执行文本抽取
// 重复调用基于当前文件重建章节。
func (s *Service) Process(ctx context.Context, userID, bookID string) (*entity.Book, error) {
	ctx, span := tracer.Start(ctx, "book.Service.Process")
	defer span.End()

	if _, err := s.Get(ctx, userID, bookID); err != nil {
		return nil, err
	}
	book, err := s.extractor.Process(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.InvalidateBook(ctx, bookID); err != nil {
			logger.Warn(ctx, "failed to invalidate book cache", "book_id", bookID, "error", err.Error())
		}
	}
	return book, nil
}

// Delete 删除图书与全部派生数据
// 索引与文件清理失败只记录日志，主存储删除成功即视为删除成功。
func (s *Service) Delete(ctx context.Context, userID, bookID string) error {
	ctx, span := tracer.Start(ctx, "book.Service.Delete")
	defer span.End()

	book, err := s.Get(ctx, userID, bookID)
	if err != nil {
		return err
	}

	// 主存储内的派生数据与图书本体在同一事务中删除
	err = s.txm.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.artifacts.DeleteByBook(txCtx, bookID); err != nil {
			return err
		}
		if err := s.states.DeleteByBook(txCtx, bookID); err != nil {
			return err
		}
		return s.books.Delete(txCtx, bookID)
	})
	if err != nil {
		return err
	}

	if s.index != nil {
		if err := s.index.DeleteByBook(ctx, bookID); err != nil {
			logger.Warn(ctx, "failed to delete book from index", "book_id", bookID, "error", err.Error())
		}
	}
	if err := s.store.Remove(ctx, book.FilePath); err != nil {
		logger.Warn(ctx, "failed to remove book file", "book_id", bookID, "error", err.Error())
	}
	if s.cache != nil {
		if err := s.cache.InvalidateBook(ctx, bookID); err != nil {
			logger.Warn(ctx, "failed to invalidate book cache", "book_id", bookID, "error", err.Error())
		}
	}

	logger.Info(ctx, "book deleted", "book_id", bookID)
	return nil
}
