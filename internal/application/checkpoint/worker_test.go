package checkpoint

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"readrecall-api/internal/application/extract"
	"readrecall-api/internal/domain/entity"
)

func newWorkerFixture(t *testing.T, gen Generator) (*Worker, *fakeJobRepo, *fakeArtifactRepo) {
	t.Helper()

	fullText := strings.Repeat("a", 100)
	books := &fakeBookRepo{
		books: map[string]*entity.Book{"book-1": processedBook("book-1")},
		sections: map[string][]entity.BookSection{
			"book-1": {{BookID: "book-1", Content: fullText, StartPosition: 0, EndPosition: 100}},
		},
	}
	artifacts := newFakeArtifactRepo()
	jobs := newFakeJobRepo()
	pipeline := NewPipeline(gen, artifacts, nil, PipelineConfig{Step: 25})
	extractSvc := extract.NewService(books, nil)

	return NewWorker(jobs, books, extractSvc, pipeline, nil), jobs, artifacts
}

func TestWorkerHandleJob(t *testing.T) {
	ctx := context.Background()

	okGen := &fakeGenerator{fn: func(kind entity.ArtifactKind, slice string) (string, error) {
		return "generated", nil
	}}

	t.Run("completes job with report", func(t *testing.T) {
		worker, jobs, artifacts := newWorkerFixture(t, okGen)
		job := entity.NewGenerationJob("book-1", "user-1", entity.ArtifactKindSummary)
		require.NoError(t, jobs.Create(ctx, job))

		require.NoError(t, worker.HandleJob(ctx, job.ID))

		stored, err := jobs.GetByID(ctx, job.ID)
		require.NoError(t, err)
		assert.Equal(t, entity.JobStatusCompleted, stored.Status)
		assert.Equal(t, 100, stored.Progress)

		var report Report
		require.NoError(t, json.Unmarshal(stored.OutputResult, &report))
		assert.Equal(t, 4, report.Created)

		list, err := artifacts.ListByBook(ctx, "book-1", entity.ArtifactKindSummary)
		require.NoError(t, err)
		assert.Len(t, list, 4)
	})

	t.Run("redelivery of finished job is a no-op", func(t *testing.T) {
		worker, jobs, _ := newWorkerFixture(t, okGen)
		job := entity.NewGenerationJob("book-1", "user-1", entity.ArtifactKindSummary)
		require.NoError(t, jobs.Create(ctx, job))
		require.NoError(t, jobs.SetResult(ctx, job.ID, []byte(`{}`), ""))

		require.NoError(t, worker.HandleJob(ctx, job.ID))
	})

	t.Run("missing job message is dropped", func(t *testing.T) {
		worker, _, _ := newWorkerFixture(t, okGen)
		require.NoError(t, worker.HandleJob(ctx, "ghost"))
	})

	t.Run("cancellation mid-run keeps partial artifacts", func(t *testing.T) {
		var jobs *fakeJobRepo
		var jobID string
		calls := 0
		gen := &fakeGenerator{fn: func(kind entity.ArtifactKind, slice string) (string, error) {
			calls++
			if calls == 2 {
				// 第二个检查点生成期间到达取消请求
				_ = jobs.UpdateStatus(context.Background(), jobID, entity.JobStatusCancelled)
			}
			return "generated", nil
		}}

		worker, jobRepo, artifacts := newWorkerFixture(t, gen)
		jobs = jobRepo
		job := entity.NewGenerationJob("book-1", "user-1", entity.ArtifactKindSummary)
		require.NoError(t, jobs.Create(ctx, job))
		jobID = job.ID

		require.NoError(t, worker.HandleJob(ctx, jobID))

		stored, err := jobs.GetByID(ctx, jobID)
		require.NoError(t, err)
		assert.Equal(t, entity.JobStatusCancelled, stored.Status)

		var report Report
		require.NoError(t, json.Unmarshal(stored.OutputResult, &report))
		assert.True(t, report.Cancelled)
		assert.Equal(t, 2, report.Created)

		// 已生成的产物保留
		list, err := artifacts.ListByBook(ctx, "book-1", entity.ArtifactKindSummary)
		require.NoError(t, err)
		assert.Len(t, list, 2)
	})

	t.Run("unprocessed book finishes with error message", func(t *testing.T) {
		worker, jobs, _ := newWorkerFixture(t, okGen)
		worker.books.(*fakeBookRepo).books["book-1"].ProcessingStatus = entity.ProcessingStatusUploaded

		job := entity.NewGenerationJob("book-1", "user-1", entity.ArtifactKindSummary)
		require.NoError(t, jobs.Create(ctx, job))

		require.NoError(t, worker.HandleJob(ctx, job.ID))

		stored, err := jobs.GetByID(ctx, job.ID)
		require.NoError(t, err)
		assert.Equal(t, entity.JobStatusFailed, stored.Status)
	})
}
