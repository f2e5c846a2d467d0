// Package reading 实现阅读进度与按进度取内容的读路径
package reading

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"readrecall-api/internal/domain/entity"
	"readrecall-api/internal/domain/repository"
	"readrecall-api/internal/infrastructure/persistence/redis"
	apperrors "readrecall-api/pkg/errors"
	"readrecall-api/pkg/tracer"
)

// ProgressContent 按进度取内容的结果
// Available 为 false 表示该进度之前尚无任何检查点产物，这是正常
// 状态而非错误。
type ProgressContent struct {
	Available bool                      `json:"available"`
	Artifact  *entity.GeneratedArtifact `json:"artifact,omitempty"`
}

const defaultCacheTTL = 5 * time.Minute

// Service 读路径服务
type Service struct {
	artifacts repository.ArtifactRepository
	states    repository.ReadingStateRepository
	books     repository.BookRepository
	cache     *redis.Cache // 可为 nil，降级为直查
	cacheTTL  time.Duration
}

// NewService 创建读路径服务
func NewService(artifacts repository.ArtifactRepository, states repository.ReadingStateRepository, books repository.BookRepository, cache *redis.Cache) *Service {
	return &Service{
		artifacts: artifacts,
		states:    states,
		books:     books,
		cache:     cache,
		cacheTTL:  defaultCacheTTL,
	}
}

// ContentAtProgress 取进度 P 处应展示的内容
// 选择 progress <= P 中最大的产物；没有命中时返回 Available=false
// 的哨兵结果。
func (s *Service) ContentAtProgress(ctx context.Context, bookID string, progress int, kind entity.ArtifactKind) (*ProgressContent, error) {
	ctx, span := tracer.Start(ctx, "reading.Service.ContentAtProgress")
	defer span.End()

	if progress < 0 || progress > 100 {
		return nil, apperrors.New(apperrors.CodeInvalidParam, "progress must be in [0,100]")
	}

	book, err := s.books.GetByID(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if book == nil {
		return nil, apperrors.ErrBookNotFound
	}

	if s.cache == nil {
		return s.loadContent(ctx, bookID, progress, kind)
	}

	key := fmt.Sprintf("artifact:%s:%s:%d", bookID, kind, progress)
	raw, err := s.cache.GetOrLoadSafe(ctx, key, s.cacheTTL, func() (interface{}, error) {
		return s.loadContent(ctx, bookID, progress, kind)
	})
	if err != nil {
		return nil, err
	}

	var result ProgressContent
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeCacheError, "corrupt cached content")
	}
	return &result, nil
}

func (s *Service) loadContent(ctx context.Context, bookID string, progress int, kind entity.ArtifactKind) (*ProgressContent, error) {
	artifact, err := s.artifacts.LatestAtOrBefore(ctx, bookID, progress, kind)
	if err != nil {
		return nil, err
	}
	if artifact == nil {
		return &ProgressContent{Available: false}, nil
	}
	return &ProgressContent{Available: true, Artifact: artifact}, nil
}

// ListCheckpoints 按进度升序列出图书的全部产物
func (s *Service) ListCheckpoints(ctx context.Context, bookID string, kind entity.ArtifactKind) ([]*entity.GeneratedArtifact, error) {
	return s.artifacts.ListByBook(ctx, bookID, kind)
}

// UpsertState 写入阅读进度，(user, book) 唯一
func (s *Service) UpsertState(ctx context.Context, userID, bookID string, position, percentage int) (*entity.ReadingState, error) {
	ctx, span := tracer.Start(ctx, "reading.Service.UpsertState")
	defer span.End()

	book, err := s.books.GetByID(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if book == nil {
		return nil, apperrors.ErrBookNotFound
	}

	state := &entity.ReadingState{
		UserID: userID,
		BookID: bookID,
	}
	state.SetProgress(position, percentage)
	if err := s.states.Upsert(ctx, state); err != nil {
		return nil, err
	}
	return state, nil
}

// State 获取阅读进度，未读过返回 (nil, nil)
func (s *Service) State(ctx context.Context, userID, bookID string) (*entity.ReadingState, error) {
	return s.states.Get(ctx, userID, bookID)
}
