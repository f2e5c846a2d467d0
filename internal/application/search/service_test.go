package search

import (
	"context"
	"errors"
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

type fakeIndex struct {
	lastParams *SearchParams
	results    []*SearchResult
	searchErr  error
	indexed    []*entity.GeneratedArtifact
}

func (f *fakeIndex) EnsureCollection(ctx context.Context) error { return nil }
func (f *fakeIndex) IndexArtifact(ctx context.Context, a *entity.GeneratedArtifact) error {
	f.indexed = append(f.indexed, a)
	return nil
}
func (f *fakeIndex) DeleteByBook(ctx context.Context, bookID string) error { return nil }
func (f *fakeIndex) Search(ctx context.Context, params *SearchParams) ([]*SearchResult, error) {
	f.lastParams = params
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.results, nil
}

func newTestService(idx ArtifactIndex) *Service {
	books := &fakeBookRepo{books: map[string]*entity.Book{
		"book-1": {ID: "book-1", UserID: "user-1"},
	}}
	return NewService(idx, books)
}

func TestSearch(t *testing.T) {
	ctx := context.Background()

	t.Run("passes normalized params to index", func(t *testing.T) {
		idx := &fakeIndex{results: []*SearchResult{{ArtifactID: "a-1", Score: 0.9}}}
		svc := newTestService(idx)

		results, err := svc.Search(ctx, &SearchParams{
			BookID: "book-1",
			Query:  "who is the baron",
		})
		require.NoError(t, err)
		require.Len(t, results, 1)

		assert.Equal(t, 100, idx.lastParams.MaxProgress)
		assert.Equal(t, defaultTopK, idx.lastParams.TopK)
	})

	t.Run("top k is capped", func(t *testing.T) {
		idx := &fakeIndex{}
		svc := newTestService(idx)

		_, err := svc.Search(ctx, &SearchParams{BookID: "book-1", Query: "q", TopK: 500})
		require.NoError(t, err)
		assert.Equal(t, maxTopK, idx.lastParams.TopK)
	})

	t.Run("progress bound is preserved", func(t *testing.T) {
		idx := &fakeIndex{}
		svc := newTestService(idx)

		_, err := svc.Search(ctx, &SearchParams{BookID: "book-1", Query: "q", MaxProgress: 40})
		require.NoError(t, err)
		assert.Equal(t, 40, idx.lastParams.MaxProgress)
	})

	t.Run("blank query rejected", func(t *testing.T) {
		svc := newTestService(&fakeIndex{})

		_, err := svc.Search(ctx, &SearchParams{BookID: "book-1", Query: "   "})
		require.Error(t, err)
		assert.True(t, apperrors.IsCode(err, apperrors.CodeInvalidParam))
	})

	t.Run("unknown book", func(t *testing.T) {
		svc := newTestService(&fakeIndex{})

		_, err := svc.Search(ctx, &SearchParams{BookID: "missing", Query: "q"})
		require.Error(t, err)
		assert.True(t, apperrors.IsCode(err, apperrors.CodeBookNotFound))
	})

	t.Run("index disabled", func(t *testing.T) {
		svc := newTestService(nil)

		_, err := svc.Search(ctx, &SearchParams{BookID: "book-1", Query: "q"})
		require.Error(t, err)
		assert.True(t, apperrors.IsCode(err, apperrors.CodeServiceUnavailable))
	})

	t.Run("index failure wrapped", func(t *testing.T) {
		svc := newTestService(&fakeIndex{searchErr: errors.New("collection not loaded")})

		_, err := svc.Search(ctx, &SearchParams{BookID: "book-1", Query: "q"})
		require.Error(t, err)
		assert.True(t, apperrors.IsCode(err, apperrors.CodeIndexError))
	})
}

func TestReindex(t *testing.T) {
	ctx := context.Background()

	t.Run("resubmits artifact", func(t *testing.T) {
		idx := &fakeIndex{}
		svc := newTestService(idx)

		artifact := &entity.GeneratedArtifact{ID: "a-1", BookID: "book-1"}
		require.NoError(t, svc.Reindex(ctx, artifact))
		assert.Len(t, idx.indexed, 1)
	})

	t.Run("requires persisted artifact", func(t *testing.T) {
		svc := newTestService(&fakeIndex{})

		err := svc.Reindex(ctx, &entity.GeneratedArtifact{})
		require.Error(t, err)
		assert.True(t, apperrors.IsCode(err, apperrors.CodeInvalidParam))
	})
}
