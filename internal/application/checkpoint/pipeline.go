package checkpoint

import (
	"context"
	"time"

	"readrecall-api/internal/domain/entity"
	"readrecall-api/internal/domain/repository"
	apperrors "readrecall-api/pkg/errors"
	"readrecall-api/pkg/logger"
	"readrecall-api/pkg/metrics"
	"readrecall-api/pkg/tracer"
)

// ArtifactIndexer 管道对搜索索引的最小依赖（port）。
// 索引写入必须按产物 ID 幂等，允许对已落库产物重复提交。
type ArtifactIndexer interface {
	IndexArtifact(ctx context.Context, artifact *entity.GeneratedArtifact) error
}

// PipelineConfig 管道配置
type PipelineConfig struct {
	// Step 检查点步长百分比
	Step int
	// FallbackRunes 降级内容保留的最大字符数
	FallbackRunes int
}

const defaultStep = 5

// Report 一次生成运行的聚合结果
// Created 只统计本次新建的产物；已存在与失败的检查点分别体现在
// Skipped 与 Failed 中，部分成功对调用方完全可见。
type Report struct {
	Created   int   `json:"created"`
	Skipped   int   `json:"skipped"`
	Failed    []int `json:"failed_percentages,omitempty"`
	Cancelled bool  `json:"cancelled,omitempty"`
}

// RunHooks 运行期回调，worker 用于进度上报与取消检测
type RunHooks struct {
	// OnProgress 每个检查点处理完成后调用
	OnProgress func(ctx context.Context, done, total int)
	// Cancelled 返回 true 时管道在下一个检查点前停止
	Cancelled func(ctx context.Context) bool
}

// Pipeline 检查点生成管道
// 驱动 Planner 与 Generator 处理一本书的全部检查点，逐条落库并
// 提交索引。单个检查点失败不会中断后续检查点。
type Pipeline struct {
	gen       Generator
	artifacts repository.ArtifactRepository
	index     ArtifactIndexer
	cfg       PipelineConfig
}

// NewPipeline 创建生成管道
func NewPipeline(gen Generator, artifacts repository.ArtifactRepository, index ArtifactIndexer, cfg PipelineConfig) *Pipeline {
	if cfg.Step <= 0 {
		cfg.Step = defaultStep
	}
	if cfg.FallbackRunes <= 0 {
		cfg.FallbackRunes = defaultFallbackRunes
	}
	return &Pipeline{
		gen:       gen,
		artifacts: artifacts,
		index:     index,
		cfg:       cfg,
	}
}

// Run 为一本书生成全部缺失的检查点产物
// 空全文是合法的"无事可做"：返回零值报告且无错误。落库使用
// (book_id, progress, kind) 上的条件插入，并发运行同一本书时
// 后写者自动跳过。
func (p *Pipeline) Run(ctx context.Context, kind entity.ArtifactKind, bookID, userID, fullText string, hooks *RunHooks) (*Report, error) {
	ctx, span := tracer.Start(ctx, "checkpoint.Pipeline.Run")
	defer span.End()

	start := time.Now()
	defer func() {
		metrics.CheckpointRunDuration.WithLabelValues(string(kind)).Observe(time.Since(start).Seconds())
	}()

	report := &Report{}
	if fullText == "" {
		return report, nil
	}

	runes := []rune(fullText)
	plan, err := Plan(len(runes), p.cfg.Step)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeValidationFailed, "invalid checkpoint plan")
	}

	total := len(plan)
	var artifactUser *string
	if userID != "" {
		artifactUser = &userID
	}

	for i, cp := range plan {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if hooks != nil && hooks.Cancelled != nil && hooks.Cancelled(ctx) {
			report.Cancelled = true
			logger.Info(ctx, "generation cancelled between checkpoints",
				"book_id", bookID, "kind", string(kind), "percent", cp.Percent)
			return report, nil
		}

		if p.runCheckpoint(ctx, kind, bookID, artifactUser, runes, cp, report) {
			report.Failed = append(report.Failed, cp.Percent)
		}

		if hooks != nil && hooks.OnProgress != nil {
			hooks.OnProgress(ctx, i+1, total)
		}
	}

	logger.Info(ctx, "generation run finished",
		"book_id", bookID,
		"kind", string(kind),
		"created", report.Created,
		"skipped", report.Skipped,
		"failed", len(report.Failed))
	return report, nil
}

// runCheckpoint 处理单个检查点，返回该检查点是否失败
func (p *Pipeline) runCheckpoint(ctx context.Context, kind entity.ArtifactKind, bookID string, userID *string, runes []rune, cp Checkpoint, report *Report) (failed bool) {
	// 先读避免无谓的模型调用；真正的防重在条件插入上
	existing, err := p.artifacts.GetByCheckpoint(ctx, bookID, cp.Percent, kind)
	if err != nil {
		logger.Error(ctx, "checkpoint lookup failed", err, "book_id", bookID, "percent", cp.Percent)
		return true
	}
	if existing != nil {
		report.Skipped++
		metrics.CheckpointGenerationTotal.WithLabelValues(string(kind), "skipped").Inc()
		return false
	}

	slice := string(runes[:cp.EndOffset])
	provenance := entity.ProvenanceGenerated

	content, err := p.gen.Generate(ctx, kind, slice)
	if err != nil {
		if !apperrors.IsCode(err, apperrors.CodeRateLimitExceeded) {
			logger.Error(ctx, "checkpoint generation failed", err,
				"book_id", bookID, "kind", string(kind), "percent", cp.Percent)
			metrics.CheckpointGenerationTotal.WithLabelValues(string(kind), "failed").Inc()
			return true
		}
		// 限流重试耗尽：落确定性的截断降级内容
		content = FallbackContent(slice, p.cfg.FallbackRunes)
		provenance = entity.ProvenanceFallback
		logger.Warn(ctx, "falling back to truncated content",
			"book_id", bookID, "kind", string(kind), "percent", cp.Percent)
		metrics.CheckpointGenerationTotal.WithLabelValues(string(kind), "fallback").Inc()
	}

	artifact := entity.NewGeneratedArtifact(bookID, userID, kind, cp.Percent, content, provenance)
	created, err := p.artifacts.CreateIfAbsent(ctx, artifact)
	if err != nil {
		logger.Error(ctx, "checkpoint persist failed", err,
			"book_id", bookID, "kind", string(kind), "percent", cp.Percent)
		return true
	}
	if !created {
		// 并发运行的另一次生成抢先写入
		report.Skipped++
		metrics.CheckpointGenerationTotal.WithLabelValues(string(kind), "skipped").Inc()
		return false
	}

	report.Created++
	if provenance == entity.ProvenanceGenerated {
		metrics.CheckpointGenerationTotal.WithLabelValues(string(kind), "created").Inc()
	}

	// 索引是派生视图：写入失败不回滚已落库的产物，可由
	// 后续对账按产物 ID 幂等重建
	if p.index != nil {
		if err := p.index.IndexArtifact(ctx, artifact); err != nil {
			logger.Warn(ctx, "artifact index write failed",
				"artifact_id", artifact.ID, "book_id", bookID, "percent", cp.Percent,
				"error", err.Error())
			metrics.IndexWriteTotal.WithLabelValues("failed").Inc()
		} else {
			metrics.IndexWriteTotal.WithLabelValues("ok").Inc()
		}
	}
	return false
}
