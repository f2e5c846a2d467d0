package checkpoint

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"readrecall-api/internal/domain/entity"
	"readrecall-api/internal/domain/repository"
	apperrors "readrecall-api/pkg/errors"
)

type fakeBookRepo struct {
	books    map[string]*entity.Book
	sections map[string][]entity.BookSection
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
	return f.sections[bookID], nil
}

type fakeJobRepo struct {
	mu   sync.Mutex
	jobs map[string]*entity.GenerationJob
	seq  int
}

func newFakeJobRepo() *fakeJobRepo {
	return &fakeJobRepo{jobs: make(map[string]*entity.GenerationJob)}
}

func (f *fakeJobRepo) Create(ctx context.Context, job *entity.GenerationJob) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	job.ID = fmt.Sprintf("job-%d", f.seq)
	f.jobs[job.ID] = job
	return nil
}

func (f *fakeJobRepo) GetByID(ctx context.Context, id string) (*entity.GenerationJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.jobs[id], nil
}

func (f *fakeJobRepo) Update(ctx context.Context, job *entity.GenerationJob) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.jobs[job.ID] = job
	return nil
}

func (f *fakeJobRepo) ListByBook(ctx context.Context, bookID string, filter *repository.JobFilter, p repository.Pagination) (*repository.PagedResult[*entity.GenerationJob], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var items []*entity.GenerationJob
	for _, j := range f.jobs {
		if j.BookID == bookID {
			items = append(items, j)
		}
	}
	return repository.NewPagedResult(items, int64(len(items)), p), nil
}

func (f *fakeJobRepo) UpdateStatus(ctx context.Context, id string, status entity.JobStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if j, ok := f.jobs[id]; ok {
		j.Status = status
	}
	return nil
}

func (f *fakeJobRepo) MarkRunning(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if j, ok := f.jobs[id]; ok {
		j.Start()
	}
	return nil
}

func (f *fakeJobRepo) UpdateProgress(ctx context.Context, id string, progress int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if j, ok := f.jobs[id]; ok {
		j.UpdateProgress(progress)
	}
	return nil
}

func (f *fakeJobRepo) SetResult(ctx context.Context, id string, result []byte, errMsg string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	j, ok := f.jobs[id]
	if !ok {
		return errors.New("job not found")
	}
	if errMsg != "" {
		j.Fail(errMsg)
	} else {
		j.Complete(result)
	}
	return nil
}

func (f *fakeJobRepo) GetStatus(ctx context.Context, id string) (entity.JobStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if j, ok := f.jobs[id]; ok {
		return j.Status, nil
	}
	return "", errors.New("job not found")
}

func (f *fakeJobRepo) GetActiveByBook(ctx context.Context, bookID string, kind entity.ArtifactKind) (*entity.GenerationJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, j := range f.jobs {
		if j.BookID == bookID && j.Kind == kind && !j.IsFinished() {
			return j, nil
		}
	}
	return nil, nil
}

type fakeQueue struct {
	enqueued []*entity.GenerationJob
	err      error
}

func (f *fakeQueue) EnqueueCheckpointJob(ctx context.Context, job *entity.GenerationJob) error {
	if f.err != nil {
		return f.err
	}
	f.enqueued = append(f.enqueued, job)
	return nil
}

func processedBook(id string) *entity.Book {
	return &entity.Book{
		ID:               id,
		UserID:           "user-1",
		Format:           entity.BookFormatEPUB,
		ProcessingStatus: entity.ProcessingStatusProcessed,
		FullTextLength:   1000,
	}
}

func TestJobServiceEnqueue(t *testing.T) {
	ctx := context.Background()

	t.Run("creates and enqueues", func(t *testing.T) {
		jobs := newFakeJobRepo()
		queue := &fakeQueue{}
		books := &fakeBookRepo{books: map[string]*entity.Book{"book-1": processedBook("book-1")}}
		svc := NewJobService(jobs, books, queue)

		job, err := svc.Enqueue(ctx, "book-1", "user-1", entity.ArtifactKindSummary)
		require.NoError(t, err)
		assert.Equal(t, entity.JobStatusPending, job.Status)
		require.Len(t, queue.enqueued, 1)
		assert.Equal(t, job.ID, queue.enqueued[0].ID)
	})

	t.Run("active job is returned instead of a duplicate", func(t *testing.T) {
		jobs := newFakeJobRepo()
		queue := &fakeQueue{}
		books := &fakeBookRepo{books: map[string]*entity.Book{"book-1": processedBook("book-1")}}
		svc := NewJobService(jobs, books, queue)

		first, err := svc.Enqueue(ctx, "book-1", "user-1", entity.ArtifactKindSummary)
		require.NoError(t, err)

		second, err := svc.Enqueue(ctx, "book-1", "user-1", entity.ArtifactKindSummary)
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)
		assert.Len(t, queue.enqueued, 1)
	})

	t.Run("other kind gets its own job", func(t *testing.T) {
		jobs := newFakeJobRepo()
		queue := &fakeQueue{}
		books := &fakeBookRepo{books: map[string]*entity.Book{"book-1": processedBook("book-1")}}
		svc := NewJobService(jobs, books, queue)

		first, err := svc.Enqueue(ctx, "book-1", "user-1", entity.ArtifactKindSummary)
		require.NoError(t, err)
		second, err := svc.Enqueue(ctx, "book-1", "user-1", entity.ArtifactKindCharacterList)
		require.NoError(t, err)
		assert.NotEqual(t, first.ID, second.ID)
	})

	t.Run("unprocessed book is rejected", func(t *testing.T) {
		book := processedBook("book-1")
		book.ProcessingStatus = entity.ProcessingStatusUploaded
		svc := NewJobService(newFakeJobRepo(), &fakeBookRepo{books: map[string]*entity.Book{"book-1": book}}, &fakeQueue{})

		_, err := svc.Enqueue(ctx, "book-1", "user-1", entity.ArtifactKindSummary)
		require.Error(t, err)
		assert.True(t, apperrors.IsCode(err, apperrors.CodeBookNotProcessed))
	})

	t.Run("unknown book", func(t *testing.T) {
		svc := NewJobService(newFakeJobRepo(), &fakeBookRepo{books: map[string]*entity.Book{}}, &fakeQueue{})

		_, err := svc.Enqueue(ctx, "missing", "user-1", entity.ArtifactKindSummary)
		require.Error(t, err)
		assert.True(t, apperrors.IsCode(err, apperrors.CodeBookNotFound))
	})

	t.Run("enqueue failure marks job failed", func(t *testing.T) {
		jobs := newFakeJobRepo()
		queue := &fakeQueue{err: errors.New("redis down")}
		books := &fakeBookRepo{books: map[string]*entity.Book{"book-1": processedBook("book-1")}}
		svc := NewJobService(jobs, books, queue)

		_, err := svc.Enqueue(ctx, "book-1", "user-1", entity.ArtifactKindSummary)
		require.Error(t, err)

		stored, err := jobs.GetByID(ctx, "job-1")
		require.NoError(t, err)
		require.NotNil(t, stored)
		assert.Equal(t, entity.JobStatusFailed, stored.Status)
	})
}

func TestJobServiceCancel(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*JobService, *fakeJobRepo, *entity.GenerationJob) {
		t.Helper()
		jobs := newFakeJobRepo()
		books := &fakeBookRepo{books: map[string]*entity.Book{"book-1": processedBook("book-1")}}
		svc := NewJobService(jobs, books, &fakeQueue{})
		job, err := svc.Enqueue(ctx, "book-1", "user-1", entity.ArtifactKindSummary)
		require.NoError(t, err)
		return svc, jobs, job
	}

	t.Run("pending job is cancellable", func(t *testing.T) {
		svc, _, job := setup(t)

		cancelled, err := svc.Cancel(ctx, job.ID)
		require.NoError(t, err)
		assert.Equal(t, entity.JobStatusCancelled, cancelled.Status)
	})

	t.Run("finished job conflicts", func(t *testing.T) {
		svc, jobs, job := setup(t)
		require.NoError(t, jobs.SetResult(ctx, job.ID, []byte(`{}`), ""))

		_, err := svc.Cancel(ctx, job.ID)
		require.Error(t, err)
		assert.True(t, apperrors.IsCode(err, apperrors.CodeConflict))
	})

	t.Run("unknown job", func(t *testing.T) {
		svc, _, _ := setup(t)

		_, err := svc.Cancel(ctx, "missing")
		require.Error(t, err)
		assert.True(t, apperrors.IsCode(err, apperrors.CodeJobNotFound))
	})
}
