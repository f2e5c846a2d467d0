// Package entity 定义领域实体
package entity

import (
	"encoding/json"
	"time"
)

// JobStatus 任务状态
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusCancelled JobStatus = "cancelled"
)

// GenerationJob 检查点生成任务
// 请求路径只负责入队并返回任务 ID，worker 在检查点之间
// 回读状态以响应取消。
type GenerationJob struct {
	ID           string          `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	BookID       string          `json:"book_id" gorm:"type:uuid;index;not null"`
	UserID       string          `json:"user_id,omitempty" gorm:"type:uuid"`
	Kind         ArtifactKind    `json:"kind" gorm:"type:varchar(32);not null"`
	Status       JobStatus       `json:"status" gorm:"type:varchar(16);not null;index;default:pending"`
	OutputResult json.RawMessage `json:"output_result,omitempty" gorm:"type:jsonb"`
	ErrorMessage string          `json:"error_message,omitempty" gorm:"type:text"`
	RetryCount   int             `json:"retry_count" gorm:"not null;default:0"`
	Progress     int             `json:"progress" gorm:"not null;default:0"` // 任务进度 (0-100)
	CreatedAt    time.Time       `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time       `json:"updated_at" gorm:"autoUpdateTime"`
	StartedAt    *time.Time      `json:"started_at,omitempty"`
	CompletedAt  *time.Time      `json:"completed_at,omitempty"`
}

func (GenerationJob) TableName() string {
	return "generation_jobs"
}

// NewGenerationJob 创建新任务
func NewGenerationJob(bookID, userID string, kind ArtifactKind) *GenerationJob {
	return &GenerationJob{
		BookID:     bookID,
		UserID:     userID,
		Kind:       kind,
		Status:     JobStatusPending,
		RetryCount: 0,
		CreatedAt:  time.Now(),
	}
}

// Start 开始执行任务
func (j *GenerationJob) Start() {
	now := time.Now()
	j.Status = JobStatusRunning
	j.StartedAt = &now
}

// Complete 完成任务
func (j *GenerationJob) Complete(result json.RawMessage) {
	now := time.Now()
	j.Status = JobStatusCompleted
	j.OutputResult = result
	j.CompletedAt = &now
}

// Fail 任务失败
func (j *GenerationJob) Fail(errMsg string) {
	now := time.Now()
	j.Status = JobStatusFailed
	j.ErrorMessage = errMsg
	j.CompletedAt = &now
}

// Cancel 取消任务
func (j *GenerationJob) Cancel() {
	now := time.Now()
	j.Status = JobStatusCancelled
	j.CompletedAt = &now
}

// Retry 重试任务
func (j *GenerationJob) Retry() {
	j.RetryCount++
	j.Status = JobStatusPending
	j.StartedAt = nil
	j.CompletedAt = nil
	j.ErrorMessage = ""
}

// CanRetry 检查是否可以重试
func (j *GenerationJob) CanRetry(maxRetries int) bool {
	return j.RetryCount < maxRetries && j.Status == JobStatusFailed
}

// IsFinished 检查任务是否已进入终态
func (j *GenerationJob) IsFinished() bool {
	return j.Status == JobStatusCompleted || j.Status == JobStatusFailed || j.Status == JobStatusCancelled
}

// UpdateProgress 更新任务进度
func (j *GenerationJob) UpdateProgress(progress int) {
	if progress < 0 {
		progress = 0
	}
	if progress > 100 {
		progress = 100
	}
	j.Progress = progress
}
