package checkpoint

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"readrecall-api/internal/domain/entity"
	apperrors "readrecall-api/pkg/errors"
)

// fakeArtifactRepo 内存版产物仓储，(book_id, progress, kind) 唯一
type fakeArtifactRepo struct {
	mu    sync.Mutex
	store map[string]*entity.GeneratedArtifact

	lookupErr error
	createErr error
	// forceExisting 让 CreateIfAbsent 返回 created=false，模拟并发抢写
	forceExisting bool
}

func newFakeArtifactRepo() *fakeArtifactRepo {
	return &fakeArtifactRepo{store: make(map[string]*entity.GeneratedArtifact)}
}

func artifactKey(bookID string, progress int, kind entity.ArtifactKind) string {
	return fmt.Sprintf("%s/%d/%s", bookID, progress, kind)
}

func (f *fakeArtifactRepo) CreateIfAbsent(ctx context.Context, a *entity.GeneratedArtifact) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return false, f.createErr
	}
	if f.forceExisting {
		return false, nil
	}
	key := artifactKey(a.BookID, a.Progress, a.Kind)
	if _, ok := f.store[key]; ok {
		return false, nil
	}
	a.ID = key
	f.store[key] = a
	return true, nil
}

func (f *fakeArtifactRepo) GetByCheckpoint(ctx context.Context, bookID string, progress int, kind entity.ArtifactKind) (*entity.GeneratedArtifact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	return f.store[artifactKey(bookID, progress, kind)], nil
}

func (f *fakeArtifactRepo) GetByID(ctx context.Context, id string) (*entity.GeneratedArtifact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.store[id], nil
}

func (f *fakeArtifactRepo) LatestAtOrBefore(ctx context.Context, bookID string, maxProgress int, kind entity.ArtifactKind) (*entity.GeneratedArtifact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var best *entity.GeneratedArtifact
	for _, a := range f.store {
		if a.BookID != bookID || a.Kind != kind || a.Progress > maxProgress {
			continue
		}
		if best == nil || a.Progress > best.Progress {
			best = a
		}
	}
	return best, nil
}

func (f *fakeArtifactRepo) ListByBook(ctx context.Context, bookID string, kind entity.ArtifactKind) ([]*entity.GeneratedArtifact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entity.GeneratedArtifact
	for _, a := range f.store {
		if a.BookID == bookID && (kind == "" || a.Kind == kind) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeArtifactRepo) DeleteByBook(ctx context.Context, bookID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for k, a := range f.store {
		if a.BookID == bookID {
			delete(f.store, k)
		}
	}
	return nil
}

// fakeGenerator 按百分比返回预置结果
type fakeGenerator struct {
	fn    func(kind entity.ArtifactKind, slice string) (string, error)
	calls int
}

func (f *fakeGenerator) Generate(ctx context.Context, kind entity.ArtifactKind, slice string) (string, error) {
	f.calls++
	return f.fn(kind, slice)
}

// fakeIndexer 记录索引写入
type fakeIndexer struct {
	indexed []*entity.GeneratedArtifact
	err     error
}

func (f *fakeIndexer) IndexArtifact(ctx context.Context, a *entity.GeneratedArtifact) error {
	if f.err != nil {
		return f.err
	}
	f.indexed = append(f.indexed, a)
	return nil
}

func TestPipelineRun(t *testing.T) {
	ctx := context.Background()
	fullText := strings.Repeat("a", 100)

	echoGen := func() *fakeGenerator {
		return &fakeGenerator{fn: func(kind entity.ArtifactKind, slice string) (string, error) {
			return fmt.Sprintf("recap of %d runes", len([]rune(slice))), nil
		}}
	}

	t.Run("empty text is a no-op", func(t *testing.T) {
		repo := newFakeArtifactRepo()
		p := NewPipeline(echoGen(), repo, nil, PipelineConfig{Step: 25})

		report, err := p.Run(ctx, entity.ArtifactKindSummary, "book-1", "user-1", "", nil)
		require.NoError(t, err)
		assert.Equal(t, &Report{}, report)
	})

	t.Run("fresh run creates every checkpoint", func(t *testing.T) {
		repo := newFakeArtifactRepo()
		idx := &fakeIndexer{}
		gen := echoGen()
		p := NewPipeline(gen, repo, idx, PipelineConfig{Step: 25})

		report, err := p.Run(ctx, entity.ArtifactKindSummary, "book-1", "user-1", fullText, nil)
		require.NoError(t, err)
		assert.Equal(t, 4, report.Created)
		assert.Zero(t, report.Skipped)
		assert.Empty(t, report.Failed)
		assert.Equal(t, 4, gen.calls)
		assert.Len(t, idx.indexed, 4)

		// 每个产物是对应前缀长度的生成结果
		a, err := repo.GetByCheckpoint(ctx, "book-1", 50, entity.ArtifactKindSummary)
		require.NoError(t, err)
		require.NotNil(t, a)
		assert.Equal(t, "recap of 50 runes", a.Content)
		assert.Equal(t, entity.ProvenanceGenerated, a.Provenance)
		require.NotNil(t, a.UserID)
		assert.Equal(t, "user-1", *a.UserID)
	})

	t.Run("rerun skips existing checkpoints", func(t *testing.T) {
		repo := newFakeArtifactRepo()
		gen := echoGen()
		p := NewPipeline(gen, repo, nil, PipelineConfig{Step: 25})

		_, err := p.Run(ctx, entity.ArtifactKindSummary, "book-1", "", fullText, nil)
		require.NoError(t, err)

		report, err := p.Run(ctx, entity.ArtifactKindSummary, "book-1", "", fullText, nil)
		require.NoError(t, err)
		assert.Zero(t, report.Created)
		assert.Equal(t, 4, report.Skipped)
		// 已存在的检查点不再调用模型
		assert.Equal(t, 4, gen.calls)
	})

	t.Run("kinds are independent", func(t *testing.T) {
		repo := newFakeArtifactRepo()
		p := NewPipeline(echoGen(), repo, nil, PipelineConfig{Step: 25})

		_, err := p.Run(ctx, entity.ArtifactKindSummary, "book-1", "", fullText, nil)
		require.NoError(t, err)

		report, err := p.Run(ctx, entity.ArtifactKindCharacterList, "book-1", "", fullText, nil)
		require.NoError(t, err)
		assert.Equal(t, 4, report.Created)
	})

	t.Run("single checkpoint failure does not stop the run", func(t *testing.T) {
		repo := newFakeArtifactRepo()
		gen := &fakeGenerator{fn: func(kind entity.ArtifactKind, slice string) (string, error) {
			if len([]rune(slice)) == 50 {
				return "", errors.New("model returned garbage")
			}
			return "ok", nil
		}}
		p := NewPipeline(gen, repo, nil, PipelineConfig{Step: 25})

		report, err := p.Run(ctx, entity.ArtifactKindSummary, "book-1", "", fullText, nil)
		require.NoError(t, err)
		assert.Equal(t, 3, report.Created)
		assert.Equal(t, []int{50}, report.Failed)
	})

	t.Run("rate limit exhaustion falls back to truncated content", func(t *testing.T) {
		repo := newFakeArtifactRepo()
		gen := &fakeGenerator{fn: func(kind entity.ArtifactKind, slice string) (string, error) {
			return "", apperrors.New(apperrors.CodeRateLimitExceeded, "retries exhausted")
		}}
		p := NewPipeline(gen, repo, nil, PipelineConfig{Step: 50, FallbackRunes: 10})

		report, err := p.Run(ctx, entity.ArtifactKindSummary, "book-1", "", fullText, nil)
		require.NoError(t, err)
		assert.Equal(t, 2, report.Created)
		assert.Empty(t, report.Failed)

		a, err := repo.GetByCheckpoint(ctx, "book-1", 50, entity.ArtifactKindSummary)
		require.NoError(t, err)
		require.NotNil(t, a)
		assert.Equal(t, entity.ProvenanceFallback, a.Provenance)
		assert.Equal(t, strings.Repeat("a", 10)+truncationMarker, a.Content)
	})

	t.Run("concurrent writer wins", func(t *testing.T) {
		repo := newFakeArtifactRepo()
		repo.forceExisting = true
		p := NewPipeline(echoGen(), repo, nil, PipelineConfig{Step: 50})

		report, err := p.Run(ctx, entity.ArtifactKindSummary, "book-1", "", fullText, nil)
		require.NoError(t, err)
		assert.Zero(t, report.Created)
		assert.Equal(t, 2, report.Skipped)
	})

	t.Run("cancellation stops before next checkpoint", func(t *testing.T) {
		repo := newFakeArtifactRepo()
		gen := echoGen()
		done := 0
		hooks := &RunHooks{
			OnProgress: func(ctx context.Context, d, total int) { done = d },
			Cancelled: func(ctx context.Context) bool {
				return done >= 2
			},
		}
		p := NewPipeline(gen, repo, nil, PipelineConfig{Step: 25})

		report, err := p.Run(ctx, entity.ArtifactKindSummary, "book-1", "", fullText, hooks)
		require.NoError(t, err)
		assert.True(t, report.Cancelled)
		assert.Equal(t, 2, report.Created)
		assert.Equal(t, 2, gen.calls)
	})

	t.Run("index failure does not fail the checkpoint", func(t *testing.T) {
		repo := newFakeArtifactRepo()
		idx := &fakeIndexer{err: errors.New("milvus down")}
		p := NewPipeline(echoGen(), repo, idx, PipelineConfig{Step: 50})

		report, err := p.Run(ctx, entity.ArtifactKindSummary, "book-1", "", fullText, nil)
		require.NoError(t, err)
		assert.Equal(t, 2, report.Created)
		assert.Empty(t, report.Failed)
	})

	t.Run("lookup failure marks checkpoint failed", func(t *testing.T) {
		repo := newFakeArtifactRepo()
		repo.lookupErr = errors.New("db down")
		p := NewPipeline(echoGen(), repo, nil, PipelineConfig{Step: 50})

		report, err := p.Run(ctx, entity.ArtifactKindSummary, "book-1", "", fullText, nil)
		require.NoError(t, err)
		assert.Zero(t, report.Created)
		assert.Equal(t, []int{50, 100}, report.Failed)
	})
}
