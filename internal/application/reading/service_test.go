package reading

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"readrecall-api/internal/domain/entity"
	"readrecall-api/internal/domain/repository"
	apperrors "readrecall-api/pkg/errors"
)

type fakeBookRepo struct {
	books map[string]*entity.Book
}

func (f *fakeBookRepo) Create(ctx context.Context, b *entity.Book) error { return nil }
func (f *fakeBookRepo) GetByID(ctx context.Context, id string) (*entity.Book, error) {
	return f.books[id], nil
}
func (f *fakeBookRepo) Update(ctx context.Context, b *entity.Book) error { return nil }
func (f *fakeBookRepo) Delete(ctx context.Context, id string) error      { return nil }
func (f *fakeBookRepo) ListByUser(ctx context.Context, userID string, p repository.Pagination) (*repository.PagedResult[*entity.Book], error) {
	return repository.NewPagedResult[*entity.Book](nil, 0, p), nil
}
func (f *fakeBookRepo) ReplaceSections(ctx context.Context, bookID string, sections []entity.BookSection) error {
	return nil
}
func (f *fakeBookRepo) ListSections(ctx context.Context, bookID string) ([]entity.BookSection, error) {
	return nil, nil
}

type fakeArtifactRepo struct {
	artifacts []*entity.GeneratedArtifact
}

func (f *fakeArtifactRepo) CreateIfAbsent(ctx context.Context, a *entity.GeneratedArtifact) (bool, error) {
	f.artifacts = append(f.artifacts, a)
	return true, nil
}
func (f *fakeArtifactRepo) GetByCheckpoint(ctx context.Context, bookID string, progress int, kind entity.ArtifactKind) (*entity.GeneratedArtifact, error) {
	return nil, nil
}
func (f *fakeArtifactRepo) GetByID(ctx context.Context, id string) (*entity.GeneratedArtifact, error) {
	return nil, nil
}
func (f *fakeArtifactRepo) LatestAtOrBefore(ctx context.Context, bookID string, maxProgress int, kind entity.ArtifactKind) (*entity.GeneratedArtifact, error) {
	var best *entity.GeneratedArtifact
	for _, a := range f.artifacts {
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
	var out []*entity.GeneratedArtifact
	for _, a := range f.artifacts {
		if a.BookID == bookID && (kind == "" || a.Kind == kind) {
			out = append(out, a)
		}
	}
	return out, nil
}
func (f *fakeArtifactRepo) DeleteByBook(ctx context.Context, bookID string) error { return nil }

type fakeStateRepo struct {
	states map[string]*entity.ReadingState
}

func stateKey(userID, bookID string) string { return userID + "/" + bookID }

func (f *fakeStateRepo) Upsert(ctx context.Context, s *entity.ReadingState) error {
	if f.states == nil {
		f.states = make(map[string]*entity.ReadingState)
	}
	f.states[stateKey(s.UserID, s.BookID)] = s
	return nil
}
func (f *fakeStateRepo) Get(ctx context.Context, userID, bookID string) (*entity.ReadingState, error) {
	return f.states[stateKey(userID, bookID)], nil
}
func (f *fakeStateRepo) DeleteByBook(ctx context.Context, bookID string) error { return nil }

func newTestService(artifacts *fakeArtifactRepo) (*Service, *fakeStateRepo) {
	books := &fakeBookRepo{books: map[string]*entity.Book{
		"book-1": {ID: "book-1", UserID: "user-1", Title: "Dune"},
	}}
	states := &fakeStateRepo{}
	return NewService(artifacts, states, books, nil), states
}

func summaryAt(progress int) *entity.GeneratedArtifact {
	return &entity.GeneratedArtifact{
		ID:         fmt.Sprintf("a-%d", progress),
		BookID:     "book-1",
		Kind:       entity.ArtifactKindSummary,
		Progress:   progress,
		Content:    fmt.Sprintf("summary at %d%%", progress),
		Provenance: entity.ProvenanceGenerated,
	}
}

func TestContentAtProgress(t *testing.T) {
	ctx := context.Background()

	t.Run("picks largest checkpoint at or before progress", func(t *testing.T) {
		repo := &fakeArtifactRepo{artifacts: []*entity.GeneratedArtifact{
			summaryAt(25), summaryAt(50), summaryAt(75),
		}}
		svc, _ := newTestService(repo)

		got, err := svc.ContentAtProgress(ctx, "book-1", 60, entity.ArtifactKindSummary)
		require.NoError(t, err)
		require.True(t, got.Available)
		assert.Equal(t, 50, got.Artifact.Progress)
	})

	t.Run("exact hit", func(t *testing.T) {
		repo := &fakeArtifactRepo{artifacts: []*entity.GeneratedArtifact{summaryAt(25), summaryAt(50)}}
		svc, _ := newTestService(repo)

		got, err := svc.ContentAtProgress(ctx, "book-1", 50, entity.ArtifactKindSummary)
		require.NoError(t, err)
		require.True(t, got.Available)
		assert.Equal(t, 50, got.Artifact.Progress)
	})

	t.Run("before first checkpoint returns sentinel", func(t *testing.T) {
		repo := &fakeArtifactRepo{artifacts: []*entity.GeneratedArtifact{summaryAt(25)}}
		svc, _ := newTestService(repo)

		got, err := svc.ContentAtProgress(ctx, "book-1", 10, entity.ArtifactKindSummary)
		require.NoError(t, err)
		assert.False(t, got.Available)
		assert.Nil(t, got.Artifact)
	})

	t.Run("kind filter applies", func(t *testing.T) {
		repo := &fakeArtifactRepo{artifacts: []*entity.GeneratedArtifact{summaryAt(50)}}
		svc, _ := newTestService(repo)

		got, err := svc.ContentAtProgress(ctx, "book-1", 80, entity.ArtifactKindCharacterList)
		require.NoError(t, err)
		assert.False(t, got.Available)
	})

	t.Run("progress out of range", func(t *testing.T) {
		svc, _ := newTestService(&fakeArtifactRepo{})

		_, err := svc.ContentAtProgress(ctx, "book-1", 101, entity.ArtifactKindSummary)
		require.Error(t, err)
		assert.True(t, apperrors.IsCode(err, apperrors.CodeInvalidParam))

		_, err = svc.ContentAtProgress(ctx, "book-1", -1, entity.ArtifactKindSummary)
		require.Error(t, err)
	})

	t.Run("unknown book", func(t *testing.T) {
		svc, _ := newTestService(&fakeArtifactRepo{})

		_, err := svc.ContentAtProgress(ctx, "missing", 50, entity.ArtifactKindSummary)
		require.Error(t, err)
		assert.True(t, apperrors.IsCode(err, apperrors.CodeBookNotFound))
	})
}

func TestUpsertState(t *testing.T) {
	ctx := context.Background()

	t.Run("creates then overwrites", func(t *testing.T) {
		svc, states := newTestService(&fakeArtifactRepo{})

		first, err := svc.UpsertState(ctx, "user-1", "book-1", 1200, 30)
		require.NoError(t, err)
		assert.Equal(t, 30, first.CurrentPercentage)

		second, err := svc.UpsertState(ctx, "user-1", "book-1", 4000, 72)
		require.NoError(t, err)
		assert.Equal(t, 72, second.CurrentPercentage)

		stored, err := states.Get(ctx, "user-1", "book-1")
		require.NoError(t, err)
		assert.Equal(t, 4000, stored.Position)
		assert.Equal(t, 72, stored.CurrentPercentage)
	})

	t.Run("percentage is clamped", func(t *testing.T) {
		svc, _ := newTestService(&fakeArtifactRepo{})

		state, err := svc.UpsertState(ctx, "user-1", "book-1", 10, 150)
		require.NoError(t, err)
		assert.Equal(t, 100, state.CurrentPercentage)
	})

	t.Run("unknown book", func(t *testing.T) {
		svc, _ := newTestService(&fakeArtifactRepo{})

		_, err := svc.UpsertState(ctx, "user-1", "missing", 0, 0)
		require.Error(t, err)
		assert.True(t, apperrors.IsCode(err, apperrors.CodeBookNotFound))
	})
}

func TestState(t *testing.T) {
	svc, _ := newTestService(&fakeArtifactRepo{})

	state, err := svc.State(context.Background(), "user-1", "book-1")
	require.NoError(t, err)
	assert.Nil(t, state)
}
