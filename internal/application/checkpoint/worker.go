package checkpoint

import (
	"context"
	"encoding/json"

	"readrecall-api/internal/application/extract"
	"readrecall-api/internal/domain/entity"
	"readrecall-api/internal/domain/repository"
	"readrecall-api/internal/infrastructure/persistence/redis"
	"readrecall-api/pkg/logger"
	"readrecall-api/pkg/metrics"
	"readrecall-api/pkg/tracer"
)

// Worker 生成任务执行器
// 消费队列中的任务，驱动管道生成检查点产物，并把进度与结果写回
// 任务记录。取消通过回读任务状态实现，粒度为单个检查点。
type Worker struct {
	jobs     repository.JobRepository
	books    repository.BookRepository
	extract  *extract.Service
	pipeline *Pipeline
	cache    *redis.Cache // 可为 nil
}

// NewWorker 创建任务执行器
func NewWorker(jobs repository.JobRepository, books repository.BookRepository, extractSvc *extract.Service, pipeline *Pipeline, cache *redis.Cache) *Worker {
	return &Worker{
		jobs:     jobs,
		books:    books,
		extract:  extractSvc,
		pipeline: pipeline,
		cache:    cache,
	}
}

// HandleJob 执行一个生成任务
// 对重复投递幂等：已结束的任务直接确认。返回非 nil 错误时消息
// 会按退避策略重试。
func (w *Worker) HandleJob(ctx context.Context, jobID string) error {
	ctx, span := tracer.Start(ctx, "checkpoint.Worker.HandleJob")
	defer span.End()

	job, err := w.jobs.GetByID(ctx, jobID)
	if err != nil {
		return err
	}
	if job == nil {
		logger.Warn(ctx, "job not found, dropping message", "job_id", jobID)
		return nil
	}
	if job.IsFinished() {
		logger.Info(ctx, "job already finished, skipping", "job_id", jobID, "status", string(job.Status))
		return nil
	}

	if err := w.jobs.MarkRunning(ctx, jobID); err != nil {
		return err
	}

	metrics.ActiveGenerationJobs.Inc()
	defer metrics.ActiveGenerationJobs.Dec()

	book, err := w.books.GetByID(ctx, job.BookID)
	if err != nil {
		return err
	}
	if book == nil || !book.IsProcessed() {
		return w.jobs.SetResult(ctx, jobID, nil, "book missing or not processed")
	}

	fullText, err := w.extract.FullText(ctx, job.BookID)
	if err != nil {
		return err
	}

	hooks := &RunHooks{
		OnProgress: func(ctx context.Context, done, total int) {
			if total <= 0 {
				return
			}
			if err := w.jobs.UpdateProgress(ctx, jobID, done*100/total); err != nil {
				logger.Warn(ctx, "failed to update job progress", "job_id", jobID, "error", err.Error())
			}
		},
		Cancelled: func(ctx context.Context) bool {
			status, err := w.jobs.GetStatus(ctx, jobID)
			if err != nil {
				logger.Warn(ctx, "failed to read job status", "job_id", jobID, "error", err.Error())
				return false
			}
			return status == entity.JobStatusCancelled
		},
	}

	report, err := w.pipeline.Run(ctx, job.Kind, job.BookID, job.UserID, fullText, hooks)
	if err != nil {
		// 进程退出或上下文取消，保留 running 状态交给重试
		return err
	}

	data, marshalErr := json.Marshal(report)
	if marshalErr != nil {
		return marshalErr
	}

	if report.Created > 0 && w.cache != nil {
		if err := w.cache.InvalidateBook(ctx, job.BookID); err != nil {
			logger.Warn(ctx, "failed to invalidate book cache", "book_id", job.BookID, "error", err.Error())
		}
	}

	if report.Cancelled {
		// 状态已是 cancelled，只回读补写部分结果
		fresh, err := w.jobs.GetByID(ctx, jobID)
		if err == nil && fresh != nil {
			fresh.OutputResult = data
			if err := w.jobs.Update(ctx, fresh); err != nil {
				logger.Warn(ctx, "failed to store cancelled job report", "job_id", jobID, "error", err.Error())
			}
		}
		return nil
	}

	return w.jobs.SetResult(ctx, jobID, data, "")
}
