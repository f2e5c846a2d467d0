// Package milvus 提供 Milvus 向量数据库访问层实现
package milvus

import (
	"context"
	"fmt"
	"strings"

	"github.com/milvus-io/milvus-sdk-go/v2/entity"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Repository 向量检索仓储
type Repository struct {
	client *Client
}

// NewRepository 创建向量检索仓储
func NewRepository(client *Client) *Repository {
	return &Repository{client: client}
}

// SearchParams 检索参数
type SearchParams struct {
	BookID      string
	QueryVector []float32
	// MaxProgress 只命中 progress <= MaxProgress 的产物
	MaxProgress int64
	Kinds       []string
	TopK        int
}

// SearchResult 检索结果
type SearchResult struct {
	ID       string
	Score    float32
	BookID   string
	Kind     string
	Progress int64
	Content  string
}

// CreateCollection 创建集合
func (r *Repository) CreateCollection(ctx context.Context, schema *entity.Schema) error {
	if r == nil || r.client == nil || r.client.milvus == nil {
		return fmt.Errorf("milvus client not configured")
	}
	ctx, span := tracer.Start(ctx, "milvus.CreateCollection",
		trace.WithAttributes(attribute.String("collection", schema.CollectionName)))
	defer span.End()

	collName := r.client.CollectionName(schema.CollectionName)
	schema.CollectionName = collName

	err := r.client.milvus.CreateCollection(ctx, schema, entity.DefaultShardNumber)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create collection: %w", err)
	}

	return nil
}

// CreateIndex 创建 HNSW 索引
func (r *Repository) CreateIndex(ctx context.Context, collection string) error {
	if r == nil || r.client == nil || r.client.milvus == nil {
		return fmt.Errorf("milvus client not configured")
	}
	ctx, span := tracer.Start(ctx, "milvus.CreateIndex",
		trace.WithAttributes(attribute.String("collection", collection)))
	defer span.End()

	collName := r.client.CollectionName(collection)

	idx, err := entity.NewIndexHNSW(
		entity.COSINE,
		r.client.config.HNSWM,
		r.client.config.HNSWEfConstruction,
	)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create index: %w", err)
	}

	err = r.client.milvus.CreateIndex(ctx, collName, "vector", idx, false)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create index: %w", err)
	}

	return nil
}

// EnsureArtifactsCollection 确保 artifacts 集合与索引可用（不存在则创建）。
// 约束：不会做 drop/rebuild 等破坏性操作。
func (r *Repository) EnsureArtifactsCollection(ctx context.Context) error {
	if r == nil || r.client == nil || r.client.milvus == nil {
		return fmt.Errorf("milvus client not configured")
	}

	exists, err := r.client.HasCollection(ctx, CollectionArtifacts)
	if err != nil {
		return err
	}
	if !exists {
		if err := r.CreateCollection(ctx, ArtifactsSchema()); err != nil {
			return err
		}
		// 新建集合时创建索引；若失败，允许后续由运维介入。
		_ = r.CreateIndex(ctx, CollectionArtifacts)
	}

	return r.client.LoadCollection(ctx, CollectionArtifacts)
}

// UpsertArtifacts 写入产物向量
// 先按 ID 删除旧记录再插入，保证同一产物重复提交幂等。
func (r *Repository) UpsertArtifacts(ctx context.Context, artifacts []*ArtifactVector) error {
	if r == nil || r.client == nil || r.client.milvus == nil {
		return fmt.Errorf("milvus client not configured")
	}
	ctx, span := tracer.Start(ctx, "milvus.UpsertArtifacts",
		trace.WithAttributes(attribute.Int("count", len(artifacts))))
	defer span.End()

	if len(artifacts) == 0 {
		return nil
	}

	collName := r.client.CollectionName(CollectionArtifacts)

	var quoted []string
	for _, art := range artifacts {
		quoted = append(quoted, fmt.Sprintf(`"%s"`, art.ID))
	}
	filter := fmt.Sprintf(`id in [%s]`, strings.Join(quoted, ", "))
	if err := r.client.milvus.Delete(ctx, collName, "", filter); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to delete stale artifact vectors: %w", err)
	}

	// 准备数据
	ids := make([]string, len(artifacts))
	vectors := make([][]float32, len(artifacts))
	bookIDs := make([]string, len(artifacts))
	kinds := make([]string, len(artifacts))
	progresses := make([]int64, len(artifacts))
	contents := make([]string, len(artifacts))

	for i, art := range artifacts {
		ids[i] = art.ID
		vectors[i] = art.Vector
		bookIDs[i] = art.BookID
		kinds[i] = art.Kind
		progresses[i] = art.Progress
		contents[i] = art.Content
	}

	// 构建列
	idCol := entity.NewColumnVarChar("id", ids)
	vectorCol := entity.NewColumnFloatVector("vector", VectorDimension, vectors)
	bookCol := entity.NewColumnVarChar("book_id", bookIDs)
	kindCol := entity.NewColumnVarChar("kind", kinds)
	progressCol := entity.NewColumnInt64("progress", progresses)
	contentCol := entity.NewColumnVarChar("content", contents)

	// 插入
	_, err := r.client.milvus.Insert(ctx, collName, "",
		idCol, vectorCol, bookCol, kindCol, progressCol, contentCol)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to insert artifact vectors: %w", err)
	}

	return nil
}

// DeleteByBook 删除图书的全部产物向量
func (r *Repository) DeleteByBook(ctx context.Context, bookID string) error {
	if r == nil || r.client == nil || r.client.milvus == nil {
		return fmt.Errorf("milvus client not configured")
	}
	ctx, span := tracer.Start(ctx, "milvus.DeleteByBook",
		trace.WithAttributes(attribute.String("book_id", bookID)))
	defer span.End()

	collName := r.client.CollectionName(CollectionArtifacts)
	filter := fmt.Sprintf(`book_id == "%s"`, bookID)

	if err := r.client.milvus.Delete(ctx, collName, "", filter); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to delete artifact vectors: %w", err)
	}
	return nil
}

// SearchArtifacts 检索产物向量
func (r *Repository) SearchArtifacts(ctx context.Context, params *SearchParams) ([]*SearchResult, error) {
	if r == nil || r.client == nil || r.client.milvus == nil {
		return nil, fmt.Errorf("milvus client not configured")
	}
	ctx, span := tracer.Start(ctx, "milvus.SearchArtifacts",
		trace.WithAttributes(
			attribute.String("book_id", params.BookID),
			attribute.Int("top_k", params.TopK),
		))
	defer span.End()

	collName := r.client.CollectionName(CollectionArtifacts)

	// 构建过滤表达式
	filter := fmt.Sprintf(`book_id == "%s"`, params.BookID)

	// 进度过滤（不越过读者当前进度）
	if params.MaxProgress > 0 {
		filter += fmt.Sprintf(` && progress <= %d`, params.MaxProgress)
	}

	// 类型过滤（使用 OR 条件构建，避免依赖 IN 语法差异）
	if len(params.Kinds) > 0 {
		var parts []string
		for _, k := range params.Kinds {
			k = strings.TrimSpace(k)
			if k == "" {
				continue
			}
			parts = append(parts, fmt.Sprintf(`kind == "%s"`, k))
		}
		if len(parts) > 0 {
			filter += " && (" + strings.Join(parts, " || ") + ")"
		}
	}

	// 搜索参数
	sp, err := entity.NewIndexHNSWSearchParam(128)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to create search param: %w", err)
	}

	// 执行搜索
	results, err := r.client.milvus.Search(ctx,
		collName,
		nil,
		filter,
		[]string{"id", "book_id", "kind", "progress", "content"},
		[]entity.Vector{entity.FloatVector(params.QueryVector)},
		"vector",
		entity.COSINE,
		params.TopK,
		sp,
	)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to search: %w", err)
	}

	// 解析结果
	var searchResults []*SearchResult
	for _, result := range results {
		for i := 0; i < result.ResultCount; i++ {
			sr := &SearchResult{
				Score: result.Scores[i],
			}

			// 提取字段值
			if idCol, ok := result.Fields.GetColumn("id").(*entity.ColumnVarChar); ok {
				sr.ID = idCol.Data()[i]
			}
			if bookCol, ok := result.Fields.GetColumn("book_id").(*entity.ColumnVarChar); ok {
				sr.BookID = bookCol.Data()[i]
			}
			if kindCol, ok := result.Fields.GetColumn("kind").(*entity.ColumnVarChar); ok {
				sr.Kind = kindCol.Data()[i]
			}
			if progressCol, ok := result.Fields.GetColumn("progress").(*entity.ColumnInt64); ok {
				sr.Progress = progressCol.Data()[i]
			}
			if contentCol, ok := result.Fields.GetColumn("content").(*entity.ColumnVarChar); ok {
				sr.Content = contentCol.Data()[i]
			}

			searchResults = append(searchResults, sr)
		}
	}

	span.SetAttributes(attribute.Int("result_count", len(searchResults)))
	return searchResults, nil
}
