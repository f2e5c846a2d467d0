// Package repository 定义数据访问层接口
package repository

import (
	"context"

	"readrecall-api/internal/domain/entity"
)

// JobFilter 任务过滤条件
type JobFilter struct {
	Kind   entity.ArtifactKind
	Status entity.JobStatus
}

// JobRepository 生成任务仓储接口
type JobRepository interface {
	// Create 创建任务
	Create(ctx context.Context, job *entity.GenerationJob) error

	// GetByID 根据 ID 获取任务，未找到返回 (nil, nil)
	GetByID(ctx context.Context, id string) (*entity.GenerationJob, error)

	// Update 更新任务
	Update(ctx context.Context, job *entity.GenerationJob) error

	// ListByBook 获取图书任务列表
	ListByBook(ctx context.Context, bookID string, filter *JobFilter, pagination Pagination) (*PagedResult[*entity.GenerationJob], error)

	// UpdateStatus 更新任务状态
	UpdateStatus(ctx context.Context, id string, status entity.JobStatus) error

	// MarkRunning 标记任务为运行中并记录开始时间
	MarkRunning(ctx context.Context, id string) error

	// UpdateProgress 更新任务进度（0-100）
	UpdateProgress(ctx context.Context, id string, progress int) error

	// SetResult 写入任务结果或错误并进入终态
	SetResult(ctx context.Context, id string, result []byte, errMsg string) error

	// GetStatus 只读取任务状态，worker 在检查点之间轮询取消用
	GetStatus(ctx context.Context, id string) (entity.JobStatus, error)

	// GetActiveByBook 获取图书上未结束的同类任务，未找到返回 (nil, nil)
	GetActiveByBook(ctx context.Context, bookID string, kind entity.ArtifactKind) (*entity.GenerationJob, error)
}
