// Package milvus 提供 Milvus 向量数据库访问层实现
package milvus

import (
	"github.com/milvus-io/milvus-sdk-go/v2/entity"
)

const (
	// CollectionArtifacts 检查点产物集合
	CollectionArtifacts = "artifacts"

	// VectorDimension 向量维度
	VectorDimension = 1536
)

// ArtifactsSchema 检查点产物 Collection Schema
func ArtifactsSchema() *entity.Schema {
	return &entity.Schema{
		CollectionName: CollectionArtifacts,
		Description:    "Generated checkpoint artifacts for semantic search",
		Fields: []*entity.Field{
			{
				Name:       "id",
				DataType:   entity.FieldTypeVarChar,
				PrimaryKey: true,
				AutoID:     false,
				TypeParams: map[string]string{
					"max_length": "64",
				},
			},
			{
				Name:     "vector",
				DataType: entity.FieldTypeFloatVector,
				TypeParams: map[string]string{
					"dim": "1536",
				},
			},
			{
				Name:     "book_id",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "64",
				},
			},
			{
				Name:     "kind",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "32",
				},
			},
			{
				Name:     "progress",
				DataType: entity.FieldTypeInt64,
			},
			{
				Name:     "content",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "65535",
				},
			},
		},
	}
}

// ArtifactVector 检查点产物向量数据结构
type ArtifactVector struct {
	ID       string    `json:"id"`
	Vector   []float32 `json:"vector"`
	BookID   string    `json:"book_id"`
	Kind     string    `json:"kind"`
	Progress int64     `json:"progress"`
	Content  string    `json:"content"`
}
