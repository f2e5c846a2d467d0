package checkpoint

import (
	"context"

	"readrecall-api/internal/domain/entity"
	"readrecall-api/internal/domain/repository"
	apperrors "readrecall-api/pkg/errors"
	"readrecall-api/pkg/logger"
	"readrecall-api/pkg/tracer"
)

// JobQueue 任务投递 port，由消息队列实现
type JobQueue interface {
	EnqueueCheckpointJob(ctx context.Context, job *entity.GenerationJob) error
}

// JobService 生成任务服务
// 请求路径只负责校验、落任务、入队并立即返回任务 ID，真正的
// 生成在 worker 中异步执行。
type JobService struct {
	jobs  repository.JobRepository
	books repository.BookRepository
	queue JobQueue
}

// NewJobService 创建生成任务服务
func NewJobService(jobs repository.JobRepository, books repository.BookRepository, queue JobQueue) *JobService {
	return &JobService{
		jobs:  jobs,
		books: books,
		queue: queue,
	}
}

// Enqueue 创建并投递一个生成任务
// 同一 (book, kind) 已有未结束任务时直接返回该任务，避免重复生成。
func (s *JobService) Enqueue(ctx context.Context, bookID, userID string, kind entity.ArtifactKind) (*entity.GenerationJob, error) {
	ctx, span := tracer.Start(ctx, "checkpoint.JobService.Enqueue")
	defer span.End()

	book, err := s.books.GetByID(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if book == nil {
		return nil, apperrors.ErrBookNotFound
	}
	if !book.IsProcessed() {
		return nil, apperrors.ErrBookNotProcessed
	}

	if active, err := s.jobs.GetActiveByBook(ctx, bookID, kind); err != nil {
		return nil, err
	} else if active != nil {
		return active, nil
	}

	job := entity.NewGenerationJob(bookID, userID, kind)
	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, err
	}

	if err := s.queue.EnqueueCheckpointJob(ctx, job); err != nil {
		// 入队失败的任务立即置为失败，避免永远 pending
		job.Fail("failed to enqueue job")
		if updateErr := s.jobs.Update(ctx, job); updateErr != nil {
			logger.Error(ctx, "failed to mark unenqueued job failed", updateErr, "job_id", job.ID)
		}
		return nil, apperrors.Wrap(err, apperrors.CodeInternalError, "failed to enqueue generation job")
	}

	logger.Info(ctx, "generation job enqueued",
		"job_id", job.ID, "book_id", bookID, "kind", string(kind))
	return job, nil
}

// Get 获取任务详情
func (s *JobService) Get(ctx context.Context, jobID string) (*entity.GenerationJob, error) {
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, apperrors.ErrJobNotFound
	}
	return job, nil
}

// List 获取图书任务列表
func (s *JobService) List(ctx context.Context, bookID string, filter *repository.JobFilter, pagination repository.Pagination) (*repository.PagedResult[*entity.GenerationJob], error) {
	return s.jobs.ListByBook(ctx, bookID, filter, pagination)
}

// Cancel 请求取消任务
// 状态立即置为 cancelled；worker 在检查点之间回读状态后停止，
// 已写入的产物保留。
func (s *JobService) Cancel(ctx context.Context, jobID string) (*entity.GenerationJob, error) {
	ctx, span := tracer.Start(ctx, "checkpoint.JobService.Cancel")
	defer span.End()

	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, apperrors.ErrJobNotFound
	}
	if job.IsFinished() {
		return nil, apperrors.New(apperrors.CodeConflict, "job already finished")
	}

	job.Cancel()
	if err := s.jobs.Update(ctx, job); err != nil {
		return nil, err
	}

	logger.Info(ctx, "generation job cancelled", "job_id", jobID)
	return job, nil
}
