// Package messaging 提供消息队列实现
package messaging

import (
	"context"

	"readrecall-api/internal/application/book"
	"readrecall-api/internal/application/checkpoint"
	"readrecall-api/internal/domain/entity"
	"readrecall-api/pkg/logger"
)

// JobQueueAdapter 把 Producer 适配为应用层的任务投递 port
type JobQueueAdapter struct {
	producer *Producer
}

// NewJobQueueAdapter 创建任务投递适配器
func NewJobQueueAdapter(producer *Producer) *JobQueueAdapter {
	return &JobQueueAdapter{producer: producer}
}

var _ checkpoint.JobQueue = (*JobQueueAdapter)(nil)
var _ book.ProcessQueue = (*JobQueueAdapter)(nil)

// EnqueueCheckpointJob 投递检查点生成任务
func (a *JobQueueAdapter) EnqueueCheckpointJob(ctx context.Context, job *entity.GenerationJob) error {
	_, err := a.producer.PublishCheckpointJob(ctx, &CheckpointJobMessage{
		JobID:  job.ID,
		BookID: job.BookID,
		UserID: job.UserID,
		Kind:   string(job.Kind),
	})
	return err
}

// EnqueueBookProcess 投递图书文本抽取任务
func (a *JobQueueAdapter) EnqueueBookProcess(ctx context.Context, bookID, userID string) error {
	_, err := a.producer.PublishBookProcess(ctx, &BookProcessMessage{
		BookID: bookID,
		UserID: userID,
	})
	return err
}

// NewCheckpointGenHandler 构造检查点生成消息处理器
// 载荷损坏的消息直接确认丢弃，不进入重试。
func NewCheckpointGenHandler(worker *checkpoint.Worker) MessageHandler {
	return func(ctx context.Context, msg *Message) error {
		var payload CheckpointJobMessage
		if err := msg.UnmarshalPayload(&payload); err != nil {
			logger.Error(ctx, "invalid checkpoint job payload", err, "message_id", msg.ID)
			return nil
		}
		if payload.JobID == "" {
			logger.Warn(ctx, "checkpoint job message without job_id", "message_id", msg.ID)
			return nil
		}
		return worker.HandleJob(ctx, payload.JobID)
	}
}

// NewBookProcessHandler 构造图书文本抽取消息处理器
func NewBookProcessHandler(process func(ctx context.Context, bookID string) error) MessageHandler {
	return func(ctx context.Context, msg *Message) error {
		var payload BookProcessMessage
		if err := msg.UnmarshalPayload(&payload); err != nil {
			logger.Error(ctx, "invalid book process payload", err, "message_id", msg.ID)
			return nil
		}
		if payload.BookID == "" {
			logger.Warn(ctx, "book process message without book_id", "message_id", msg.ID)
			return nil
		}
		return process(ctx, payload.BookID)
	}
}
