package checkpoint

import (
	"context"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"readrecall-api/internal/domain/entity"
	"readrecall-api/internal/infrastructure/llm"
	apperrors "readrecall-api/pkg/errors"
	"readrecall-api/pkg/logger"
	"readrecall-api/pkg/metrics"
)

// Generator 外部生成能力的抽象，管道与 worker 依赖此接口
type Generator interface {
	// Generate 为给定前缀切片生成内容；空响应是合法结果，不重试
	Generate(ctx context.Context, kind entity.ArtifactKind, textSlice string) (string, error)
}

// GeneratorConfig 生成器配置
type GeneratorConfig struct {
	// Provider 为空时使用 LLM 配置的默认提供商
	Provider string
	Model    string
	// MaxAttempts 限流重试的最大尝试次数
	MaxAttempts int
	// RetryBase 指数退避基准：第 n 次失败后等待 RetryBase * 2^n
	RetryBase time.Duration
	// AttemptTimeout 单次调用超时，与退避等待相互独立
	AttemptTimeout time.Duration
}

const (
	defaultMaxAttempts = 5
	defaultRetryBase   = 2 * time.Second
)

// LLMGenerator 基于 Eino ChatModel 的生成器实现
type LLMGenerator struct {
	factory *llm.EinoFactory
	cfg     GeneratorConfig

	// sleep 可注入，测试时替换以消除真实等待
	sleep func(ctx context.Context, d time.Duration) error
}

// NewLLMGenerator 创建 LLM 生成器
func NewLLMGenerator(factory *llm.EinoFactory, cfg GeneratorConfig) *LLMGenerator {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaultMaxAttempts
	}
	if cfg.RetryBase <= 0 {
		cfg.RetryBase = defaultRetryBase
	}
	return &LLMGenerator{
		factory: factory,
		cfg:     cfg,
		sleep:   sleepContext,
	}
}

// Generate 调用外部模型生成内容
// 只有限流/配额类失败才重试；其余错误立即向上返回。重试耗尽后
// 返回 CodeRateLimitExceeded，调用方可据此降级为截断内容。
func (g *LLMGenerator) Generate(ctx context.Context, kind entity.ArtifactKind, textSlice string) (string, error) {
	msgs, err := buildMessages(kind, textSlice)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.CodeInvalidParam, "invalid generation request")
	}

	chatModel, err := g.factory.Get(ctx, g.cfg.Provider)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.CodeLLMProviderError, "llm provider unavailable")
	}

	var lastErr error
	for attempt := 0; attempt < g.cfg.MaxAttempts; attempt++ {
		content, err := g.call(ctx, chatModel, msgs)
		if err == nil {
			return content, nil
		}

		if !isRateLimited(err) {
			// 认证失败、请求格式错误等致命错误不重试
			metrics.LLMCallTotal.WithLabelValues(g.cfg.Provider, g.cfg.Model, "error").Inc()
			return "", apperrors.Wrap(err, apperrors.CodeLLMProviderError, "llm call failed")
		}

		lastErr = err
		wait := g.cfg.RetryBase << attempt
		logger.Warn(ctx, "llm rate limited, backing off",
			"attempt", attempt,
			"wait", wait.String(),
			"kind", string(kind))
		metrics.LLMRetryTotal.WithLabelValues(g.cfg.Provider, g.cfg.Model).Inc()

		if err := g.sleep(ctx, wait); err != nil {
			return "", err
		}
	}

	metrics.LLMCallTotal.WithLabelValues(g.cfg.Provider, g.cfg.Model, "rate_limited").Inc()
	return "", apperrors.Wrap(lastErr, apperrors.CodeRateLimitExceeded, "generation rate limit exceeded")
}

// call 执行一次模型调用，带独立的单次超时
func (g *LLMGenerator) call(ctx context.Context, chatModel model.BaseChatModel, msgs []*schema.Message) (string, error) {
	callCtx := ctx
	if g.cfg.AttemptTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, g.cfg.AttemptTimeout)
		defer cancel()
	}

	start := time.Now()
	outMsg, err := chatModel.Generate(callCtx, msgs, buildModelOptions(g.cfg)...)
	metrics.LLMCallDuration.WithLabelValues(g.cfg.Provider, g.cfg.Model).Observe(time.Since(start).Seconds())
	if err != nil {
		return "", err
	}
	if outMsg == nil {
		// 无消息与空内容同样按“合法的空结果”处理
		return "", nil
	}

	metrics.LLMCallTotal.WithLabelValues(g.cfg.Provider, g.cfg.Model, "success").Inc()
	return strings.TrimSpace(outMsg.Content), nil
}

func buildModelOptions(cfg GeneratorConfig) []model.Option {
	opts := make([]model.Option, 0, 1)
	if strings.TrimSpace(cfg.Model) != "" {
		opts = append(opts, model.WithModel(strings.TrimSpace(cfg.Model)))
	}
	return opts
}

// isRateLimited 判断是否为限流/配额类失败
func isRateLimited(err error) bool {
	if err == nil {
		return false
	}
	if apperrors.IsCode(err, apperrors.CodeRateLimitExceeded) || apperrors.IsCode(err, apperrors.CodeTooManyRequests) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "quota") ||
		strings.Contains(msg, "rate limit") ||
		strings.Contains(msg, "resource_exhausted") ||
		strings.Contains(msg, "resource exhausted")
}

// sleepContext 可被 context 取消的等待
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
