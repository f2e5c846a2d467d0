// Package entity 定义领域实体
package entity

import (
	"fmt"
	"time"
)

// ArtifactKind 生成内容类型
type ArtifactKind string

const (
	ArtifactKindSummary       ArtifactKind = "summary"
	ArtifactKindCharacterList ArtifactKind = "character_list"
)

// ArtifactProvenance 内容来源标记
type ArtifactProvenance string

const (
	// ProvenanceGenerated 模型生成的内容
	ProvenanceGenerated ArtifactProvenance = "generated"
	// ProvenanceFallback 重试耗尽后的截断降级内容
	ProvenanceFallback ArtifactProvenance = "fallback"
)

// GeneratedArtifact 检查点生成产物
// 同一 (book_id, progress, kind) 只存在一条记录，创建后不再修改，
// 随所属图书级联删除。
type GeneratedArtifact struct {
	ID         string             `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	BookID     string             `json:"book_id" gorm:"type:uuid;not null;uniqueIndex:idx_artifacts_checkpoint,priority:1;index"`
	UserID     *string            `json:"user_id,omitempty" gorm:"type:uuid"`
	Kind       ArtifactKind       `json:"kind" gorm:"type:varchar(32);not null;uniqueIndex:idx_artifacts_checkpoint,priority:3"`
	Progress   int                `json:"progress" gorm:"not null;uniqueIndex:idx_artifacts_checkpoint,priority:2"`
	Content    string             `json:"content" gorm:"type:text;not null"`
	Provenance ArtifactProvenance `json:"provenance" gorm:"type:varchar(16);not null;default:generated"`
	CreatedAt  time.Time          `json:"created_at" gorm:"autoCreateTime"`
}

func (GeneratedArtifact) TableName() string {
	return "generated_artifacts"
}

// NewGeneratedArtifact 创建检查点产物
func NewGeneratedArtifact(bookID string, userID *string, kind ArtifactKind, progress int, content string, provenance ArtifactProvenance) *GeneratedArtifact {
	return &GeneratedArtifact{
		BookID:     bookID,
		UserID:     userID,
		Kind:       kind,
		Progress:   progress,
		Content:    content,
		Provenance: provenance,
	}
}

// ParseArtifactKind 解析内容类型字符串
func ParseArtifactKind(s string) (ArtifactKind, error) {
	switch ArtifactKind(s) {
	case ArtifactKindSummary:
		return ArtifactKindSummary, nil
	case ArtifactKindCharacterList:
		return ArtifactKindCharacterList, nil
	default:
		return "", fmt.Errorf("invalid artifact kind: %s", s)
	}
}
