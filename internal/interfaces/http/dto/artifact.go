// Package dto 提供 HTTP 层数据传输对象
package dto

import (
	"time"

	"readrecall-api/internal/application/reading"
	"readrecall-api/internal/domain/entity"
)

// ArtifactResponse 检查点产物响应
type ArtifactResponse struct {
	ID         string    `json:"id"`
	BookID     string    `json:"book_id"`
	Kind       string    `json:"kind"`
	Progress   int       `json:"progress"`
	Content    string    `json:"content"`
	Provenance string    `json:"provenance"`
	CreatedAt  time.Time `json:"created_at"`
}

// ArtifactListResponse 检查点产物列表响应
type ArtifactListResponse struct {
	Artifacts []*ArtifactResponse `json:"artifacts"`
}

// ProgressContentResponse 按进度取内容响应
// Available 为 false 表示该进度之前尚无任何检查点产物。
type ProgressContentResponse struct {
	Available bool              `json:"available"`
	Artifact  *ArtifactResponse `json:"artifact,omitempty"`
}

// ToArtifactResponse 将领域实体转换为响应 DTO
func ToArtifactResponse(a *entity.GeneratedArtifact) *ArtifactResponse {
	if a == nil {
		return nil
	}
	return &ArtifactResponse{
		ID:         a.ID,
		BookID:     a.BookID,
		Kind:       string(a.Kind),
		Progress:   a.Progress,
		Content:    a.Content,
		Provenance: string(a.Provenance),
		CreatedAt:  a.CreatedAt,
	}
}

// ToArtifactListResponse 将领域实体列表转换为响应 DTO
func ToArtifactListResponse(artifacts []*entity.GeneratedArtifact) *ArtifactListResponse {
	resp := &ArtifactListResponse{
		Artifacts: make([]*ArtifactResponse, 0, len(artifacts)),
	}
	for _, a := range artifacts {
		resp.Artifacts = append(resp.Artifacts, ToArtifactResponse(a))
	}
	return resp
}

// ToProgressContentResponse 将读路径结果转换为响应 DTO
func ToProgressContentResponse(pc *reading.ProgressContent) *ProgressContentResponse {
	if pc == nil {
		return &ProgressContentResponse{Available: false}
	}
	return &ProgressContentResponse{
		Available: pc.Available,
		Artifact:  ToArtifactResponse(pc.Artifact),
	}
}
