package search

import (
	"context"
	"strings"
	"time"

	"readrecall-api/internal/domain/entity"
	"readrecall-api/internal/domain/repository"
	apperrors "readrecall-api/pkg/errors"
	"readrecall-api/pkg/metrics"
	"readrecall-api/pkg/tracer"
)

const (
	defaultTopK = 10
	maxTopK     = 50
)

// Service 生成内容检索服务
type Service struct {
	index ArtifactIndex
	books repository.BookRepository
}

// NewService 创建检索服务
func NewService(index ArtifactIndex, books repository.BookRepository) *Service {
	return &Service{
		index: index,
		books: books,
	}
}

// Enabled 索引后端是否可用
func (s *Service) Enabled() bool {
	return s != nil && s.index != nil
}

// Search 在图书的生成内容中检索
// MaxProgress 限制检索范围不超过读者当前进度。
func (s *Service) Search(ctx context.Context, params *SearchParams) ([]*SearchResult, error) {
	ctx, span := tracer.Start(ctx, "search.Service.Search")
	defer span.End()

	if !s.Enabled() {
		return nil, apperrors.New(apperrors.CodeServiceUnavailable, "search index not configured")
	}
	if params == nil || strings.TrimSpace(params.Query) == "" {
		return nil, apperrors.New(apperrors.CodeInvalidParam, "query is required")
	}
	if params.MaxProgress <= 0 || params.MaxProgress > 100 {
		params.MaxProgress = 100
	}
	if params.TopK <= 0 {
		params.TopK = defaultTopK
	}
	if params.TopK > maxTopK {
		params.TopK = maxTopK
	}

	book, err := s.books.GetByID(ctx, params.BookID)
	if err != nil {
		return nil, err
	}
	if book == nil {
		return nil, apperrors.ErrBookNotFound
	}

	start := time.Now()
	results, err := s.index.Search(ctx, params)
	metrics.IndexSearchDuration.WithLabelValues("artifacts").Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeIndexError, "artifact search failed")
	}
	return results, nil
}

// Reindex 把一条已落库产物重新提交到索引
// 用于修复"已落库但索引缺失"的不一致，按产物 ID 幂等。
func (s *Service) Reindex(ctx context.Context, artifact *entity.GeneratedArtifact) error {
	if !s.Enabled() {
		return apperrors.New(apperrors.CodeServiceUnavailable, "search index not configured")
	}
	if artifact == nil || artifact.ID == "" {
		return apperrors.New(apperrors.CodeInvalidParam, "artifact with id is required")
	}
	return s.index.IndexArtifact(ctx, artifact)
}
