// Package search 定义生成内容的检索服务与索引 port
package search

import (
	"context"

	"readrecall-api/internal/domain/entity"
)

// ArtifactIndex 应用层对"搜索索引"的最小依赖（port）。
// 由基础设施层提供具体实现（例如 Milvus）。IndexArtifact 必须按
// 产物 ID 幂等：同一产物重复提交时覆盖而非累积。
type ArtifactIndex interface {
	EnsureCollection(ctx context.Context) error
	IndexArtifact(ctx context.Context, artifact *entity.GeneratedArtifact) error
	DeleteByBook(ctx context.Context, bookID string) error
	Search(ctx context.Context, params *SearchParams) ([]*SearchResult, error)
}

// SearchParams 检索参数
type SearchParams struct {
	BookID string
	Query  string
	// MaxProgress 只检索 progress <= MaxProgress 的产物，避免剧透
	MaxProgress int
	// Kinds 为空表示不过滤内容类型
	Kinds []entity.ArtifactKind
	TopK  int
}

// SearchResult 单条检索命中
type SearchResult struct {
	ArtifactID string              `json:"artifact_id"`
	BookID     string              `json:"book_id"`
	Kind       entity.ArtifactKind `json:"kind"`
	Progress   int                 `json:"progress"`
	Content    string              `json:"content"`
	Score      float32             `json:"score"`
}
