package checkpoint

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"readrecall-api/internal/config"
	"readrecall-api/internal/domain/entity"
	"readrecall-api/internal/infrastructure/llm"
	apperrors "readrecall-api/pkg/errors"
)

// stubChatModel 按预置响应序列应答的 ChatModel
type stubChatModel struct {
	responses []stubResponse
	calls     int
}

type stubResponse struct {
	content string
	err     error
}

func (s *stubChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	idx := s.calls
	s.calls++
	if idx >= len(s.responses) {
		idx = len(s.responses) - 1
	}
	r := s.responses[idx]
	if r.err != nil {
		return nil, r.err
	}
	return schema.AssistantMessage(r.content, nil), nil
}

func (s *stubChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("stream not supported")
}

func newTestGenerator(t *testing.T, stub *stubChatModel, maxAttempts int) (*LLMGenerator, *[]time.Duration) {
	t.Helper()

	cfg := &config.Config{}
	cfg.LLM.DefaultProvider = "stub"
	factory := llm.NewEinoFactory(cfg)
	factory.Register("stub", stub)

	gen := NewLLMGenerator(factory, GeneratorConfig{
		Provider:    "stub",
		MaxAttempts: maxAttempts,
		RetryBase:   2 * time.Second,
	})

	// 替换 sleep 记录退避时长，不做真实等待
	waits := &[]time.Duration{}
	gen.sleep = func(ctx context.Context, d time.Duration) error {
		*waits = append(*waits, d)
		return nil
	}
	return gen, waits
}

func TestLLMGeneratorGenerate(t *testing.T) {
	ctx := context.Background()

	t.Run("success on first attempt", func(t *testing.T) {
		stub := &stubChatModel{responses: []stubResponse{{content: "  a summary  "}}}
		gen, waits := newTestGenerator(t, stub, 5)

		content, err := gen.Generate(ctx, entity.ArtifactKindSummary, "some text")
		require.NoError(t, err)
		assert.Equal(t, "a summary", content)
		assert.Equal(t, 1, stub.calls)
		assert.Empty(t, *waits)
	})

	t.Run("empty response is a valid result", func(t *testing.T) {
		stub := &stubChatModel{responses: []stubResponse{{content: ""}}}
		gen, _ := newTestGenerator(t, stub, 5)

		content, err := gen.Generate(ctx, entity.ArtifactKindCharacterList, "prologue only")
		require.NoError(t, err)
		assert.Empty(t, content)
		assert.Equal(t, 1, stub.calls)
	})

	t.Run("rate limit retries with exponential backoff", func(t *testing.T) {
		stub := &stubChatModel{responses: []stubResponse{{err: errors.New("429 too many requests")}}}
		gen, waits := newTestGenerator(t, stub, 5)

		_, err := gen.Generate(ctx, entity.ArtifactKindSummary, "text")
		require.Error(t, err)
		assert.True(t, apperrors.IsCode(err, apperrors.CodeRateLimitExceeded))

		assert.Equal(t, 5, stub.calls)
		require.Len(t, *waits, 5)
		base := 2 * time.Second
		for i, w := range *waits {
			assert.Equal(t, base<<i, w, "wait after attempt %d", i)
		}
	})

	t.Run("recovers after transient rate limit", func(t *testing.T) {
		stub := &stubChatModel{responses: []stubResponse{
			{err: errors.New("rate limit exceeded")},
			{content: "recovered"},
		}}
		gen, waits := newTestGenerator(t, stub, 5)

		content, err := gen.Generate(ctx, entity.ArtifactKindSummary, "text")
		require.NoError(t, err)
		assert.Equal(t, "recovered", content)
		assert.Equal(t, 2, stub.calls)
		assert.Len(t, *waits, 1)
	})

	t.Run("quota exhaustion counts as rate limit", func(t *testing.T) {
		stub := &stubChatModel{responses: []stubResponse{{err: errors.New("RESOURCE_EXHAUSTED: quota exceeded")}}}
		gen, _ := newTestGenerator(t, stub, 2)

		_, err := gen.Generate(ctx, entity.ArtifactKindSummary, "text")
		require.Error(t, err)
		assert.True(t, apperrors.IsCode(err, apperrors.CodeRateLimitExceeded))
		assert.Equal(t, 2, stub.calls)
	})

	t.Run("fatal error fails fast", func(t *testing.T) {
		stub := &stubChatModel{responses: []stubResponse{{err: errors.New("401 invalid api key")}}}
		gen, waits := newTestGenerator(t, stub, 5)

		_, err := gen.Generate(ctx, entity.ArtifactKindSummary, "text")
		require.Error(t, err)
		assert.True(t, apperrors.IsCode(err, apperrors.CodeLLMProviderError))
		assert.Equal(t, 1, stub.calls)
		assert.Empty(t, *waits)
	})

	t.Run("unknown provider", func(t *testing.T) {
		cfg := &config.Config{}
		factory := llm.NewEinoFactory(cfg)
		gen := NewLLMGenerator(factory, GeneratorConfig{Provider: "missing"})

		_, err := gen.Generate(ctx, entity.ArtifactKindSummary, "text")
		require.Error(t, err)
		assert.True(t, apperrors.IsCode(err, apperrors.CodeLLMProviderError))
	})
}

func TestIsRateLimited(t *testing.T) {
	assert.False(t, isRateLimited(nil))
	assert.False(t, isRateLimited(errors.New("connection refused")))
	assert.True(t, isRateLimited(errors.New("HTTP 429")))
	assert.True(t, isRateLimited(errors.New("insufficient quota")))
	assert.True(t, isRateLimited(apperrors.New(apperrors.CodeTooManyRequests, "slow down")))
	assert.True(t, isRateLimited(apperrors.New(apperrors.CodeRateLimitExceeded, "exhausted")))
}
