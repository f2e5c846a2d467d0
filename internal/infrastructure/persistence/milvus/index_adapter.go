package milvus

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/embedding"

	domainentity "readrecall-api/internal/domain/entity"

	"readrecall-api/internal/application/search"
)

// ArtifactIndexAdapter 把向量仓储适配为应用层的 ArtifactIndex port
// 内容向量化在此完成，应用层只传产物和查询文本。
type ArtifactIndexAdapter struct {
	repo     *Repository
	embedder embedding.Embedder
}

// NewArtifactIndexAdapter 创建产物索引适配器
func NewArtifactIndexAdapter(repo *Repository, embedder embedding.Embedder) *ArtifactIndexAdapter {
	return &ArtifactIndexAdapter{
		repo:     repo,
		embedder: embedder,
	}
}

var _ search.ArtifactIndex = (*ArtifactIndexAdapter)(nil)

// EnsureCollection 确保产物集合可用
func (a *ArtifactIndexAdapter) EnsureCollection(ctx context.Context) error {
	if a == nil || a.repo == nil {
		return fmt.Errorf("artifact index not configured")
	}
	return a.repo.EnsureArtifactsCollection(ctx)
}

// IndexArtifact 向索引写入一条产物，按产物 ID 幂等
func (a *ArtifactIndexAdapter) IndexArtifact(ctx context.Context, artifact *domainentity.GeneratedArtifact) error {
	if a == nil || a.repo == nil || a.embedder == nil {
		return fmt.Errorf("artifact index not configured")
	}
	if artifact == nil || artifact.ID == "" {
		return fmt.Errorf("artifact with id is required")
	}

	vector, err := a.embed(ctx, artifact.Content)
	if err != nil {
		return err
	}

	return a.repo.UpsertArtifacts(ctx, []*ArtifactVector{
		{
			ID:       artifact.ID,
			Vector:   vector,
			BookID:   artifact.BookID,
			Kind:     string(artifact.Kind),
			Progress: int64(artifact.Progress),
			Content:  artifact.Content,
		},
	})
}

// DeleteByBook 删除图书的全部产物向量
func (a *ArtifactIndexAdapter) DeleteByBook(ctx context.Context, bookID string) error {
	if a == nil || a.repo == nil {
		return fmt.Errorf("artifact index not configured")
	}
	return a.repo.DeleteByBook(ctx, bookID)
}

// Search 语义检索产物
func (a *ArtifactIndexAdapter) Search(ctx context.Context, params *search.SearchParams) ([]*search.SearchResult, error) {
	if a == nil || a.repo == nil || a.embedder == nil {
		return nil, fmt.Errorf("artifact index not configured")
	}

	queryVector, err := a.embed(ctx, params.Query)
	if err != nil {
		return nil, err
	}

	kinds := make([]string, 0, len(params.Kinds))
	for _, k := range params.Kinds {
		kinds = append(kinds, string(k))
	}

	out, err := a.repo.SearchArtifacts(ctx, &SearchParams{
		BookID:      params.BookID,
		QueryVector: queryVector,
		MaxProgress: int64(params.MaxProgress),
		Kinds:       kinds,
		TopK:        params.TopK,
	})
	if err != nil {
		return nil, err
	}

	results := make([]*search.SearchResult, 0, len(out))
	for _, v := range out {
		if v == nil {
			continue
		}
		results = append(results, &search.SearchResult{
			ArtifactID: v.ID,
			BookID:     v.BookID,
			Kind:       domainentity.ArtifactKind(v.Kind),
			Progress:   int(v.Progress),
			Content:    v.Content,
			Score:      v.Score,
		})
	}
	return results, nil
}

// embed 向量化单条文本并转为 float32
func (a *ArtifactIndexAdapter) embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := a.embedder.EmbedStrings(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("failed to embed text: %w", err)
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("embedder returned no vectors")
	}

	vector := make([]float32, len(vectors[0]))
	for i, v := range vectors[0] {
		vector[i] = float32(v)
	}
	return vector, nil
}
