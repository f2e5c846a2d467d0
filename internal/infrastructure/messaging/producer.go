// Package messaging 提供消息队列实现
package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("messaging")

// Producer 消息生产者
type Producer struct {
	client *redis.Client
	maxLen int64
}

// NewProducer 创建消息生产者
func NewProducer(client *redis.Client, maxLen int64) *Producer {
	if maxLen <= 0 {
		maxLen = 100000
	}
	return &Producer{
		client: client,
		maxLen: maxLen,
	}
}

// Publish 发布消息到指定流
func (p *Producer) Publish(ctx context.Context, stream Stream, msg *Message) (string, error) {
	ctx, span := tracer.Start(ctx, "producer.Publish",
		trace.WithAttributes(
			attribute.String("stream", string(stream)),
			attribute.String("message.id", msg.ID),
			attribute.String("message.type", msg.Type),
		))
	defer span.End()

	data, err := json.Marshal(msg)
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("failed to marshal message: %w", err)
	}

	result, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: string(stream),
		MaxLen: p.maxLen,
		Approx: true,
		Values: map[string]interface{}{
			"data": string(data),
		},
	}).Result()

	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("failed to publish message: %w", err)
	}

	span.SetAttributes(attribute.String("stream.message_id", result))
	return result, nil
}

// PublishCheckpointJob 发布检查点生成任务
func (p *Producer) PublishCheckpointJob(ctx context.Context, job *CheckpointJobMessage) (string, error) {
	msg, err := NewMessage(job.JobID, MsgTypeCheckpointGen, job.BookID, job.UserID, job)
	if err != nil {
		return "", err
	}

	msg.SetMetadata("kind", job.Kind)
	return p.Publish(ctx, StreamCheckpointGen, msg)
}

// PublishBookProcess 发布图书文本抽取任务
func (p *Producer) PublishBookProcess(ctx context.Context, task *BookProcessMessage) (string, error) {
	msg, err := NewMessage(task.BookID, MsgTypeBookProcess, task.BookID, task.UserID, task)
	if err != nil {
		return "", err
	}

	return p.Publish(ctx, StreamBookProcess, msg)
}

// CheckpointJobMessage 检查点生成任务消息
type CheckpointJobMessage struct {
	JobID  string `json:"job_id"`
	BookID string `json:"book_id"`
	UserID string `json:"user_id,omitempty"`
	Kind   string `json:"kind"`
}

// BookProcessMessage 图书文本抽取任务消息
type BookProcessMessage struct {
	BookID string `json:"book_id"`
	UserID string `json:"user_id,omitempty"`
}
