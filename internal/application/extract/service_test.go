package extract

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
	books    map[string]*entity.Book
	sections map[string][]entity.BookSection
}

func newFakeBookRepo(books ...*entity.Book) *fakeBookRepo {
	r := &fakeBookRepo{
		books:    make(map[string]*entity.Book),
		sections: make(map[string][]entity.BookSection),
	}
	for _, b := range books {
		r.books[b.ID] = b
	}
	return r
}

func (f *fakeBookRepo) Create(ctx context.Context, b *entity.Book) error { f.books[b.ID] = b; return nil }
func (f *fakeBookRepo) GetByID(ctx context.Context, id string) (*entity.Book, error) {
	return f.books[id], nil
}
func (f *fakeBookRepo) Update(ctx context.Context, b *entity.Book) error { f.books[b.ID] = b; return nil }
func (f *fakeBookRepo) Delete(ctx context.Context, id string) error      { delete(f.books, id); return nil }
func (f *fakeBookRepo) ListByUser(ctx context.Context, userID string, p repository.Pagination) (*repository.PagedResult[*entity.Book], error) {
	return repository.NewPagedResult[*entity.Book](nil, 0, p), nil
}
func (f *fakeBookRepo) ReplaceSections(ctx context.Context, bookID string, sections []entity.BookSection) error {
	f.sections[bookID] = sections
	return nil
}
func (f *fakeBookRepo) ListSections(ctx context.Context, bookID string) ([]entity.BookSection, error) {
	return f.sections[bookID], nil
}

type fakeExtractor struct {
	doc *Document
	err error
}

func (f *fakeExtractor) Extract(ctx context.Context, filePath string) (*Document, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.doc, nil
}

func paragraph(text string) Block { return Block{Type: "paragraph", Text: text} }

func TestBuildSections(t *testing.T) {
	t.Run("contiguous rune intervals", func(t *testing.T) {
		doc := &Document{Chapters: []Chapter{
			{Title: "One", Blocks: []Block{paragraph("abc"), paragraph("def")}},
			{Title: "Two", Blocks: []Block{paragraph("汉字文本")}},
			{Title: "Three", Blocks: []Block{paragraph("xyz")}},
		}}

		sections, total := BuildSections("book-1", doc)
		require.Len(t, sections, 3)

		// 第一章 "abc\n\ndef" = 8 个字符
		assert.Equal(t, 0, sections[0].StartPosition)
		assert.Equal(t, 8, sections[0].EndPosition)
		assert.Equal(t, 0, sections[0].OrderIndex)

		// 中文章节按 rune 计 4 个字符
		assert.Equal(t, 8, sections[1].StartPosition)
		assert.Equal(t, 12, sections[1].EndPosition)

		assert.Equal(t, 12, sections[2].StartPosition)
		assert.Equal(t, 15, sections[2].EndPosition)
		assert.Equal(t, 15, total)

		for i := 1; i < len(sections); i++ {
			assert.Equal(t, sections[i-1].EndPosition, sections[i].StartPosition)
		}
	})

	t.Run("empty chapters are skipped", func(t *testing.T) {
		doc := &Document{Chapters: []Chapter{
			{Title: "Empty", Blocks: []Block{paragraph("   ")}},
			{Title: "Real", Blocks: []Block{paragraph("content")}},
		}}

		sections, total := BuildSections("book-1", doc)
		require.Len(t, sections, 1)
		assert.Equal(t, "Real", sections[0].Title)
		assert.Equal(t, 0, sections[0].OrderIndex)
		assert.Equal(t, 7, total)
	})

	t.Run("no chapters", func(t *testing.T) {
		sections, total := BuildSections("book-1", &Document{})
		assert.Empty(t, sections)
		assert.Zero(t, total)
	})
}

func TestServiceProcess(t *testing.T) {
	ctx := context.Background()

	newBook := func() *entity.Book {
		return &entity.Book{
			ID:       "book-1",
			UserID:   "user-1",
			Title:    "upload.epub",
			Format:   entity.BookFormatEPUB,
			FilePath: "/tmp/upload.epub",
		}
	}

	t.Run("marks book processed and stores sections", func(t *testing.T) {
		repo := newFakeBookRepo(newBook())
		svc := NewService(repo, map[entity.BookFormat]TextExtractor{
			entity.BookFormatEPUB: &fakeExtractor{doc: &Document{
				Title:  "Dune",
				Author: "Frank Herbert",
				Chapters: []Chapter{
					{Title: "One", Blocks: []Block{paragraph("first chapter")}},
					{Title: "Two", Blocks: []Block{paragraph("second chapter")}},
				},
			}},
		})

		book, err := svc.Process(ctx, "book-1")
		require.NoError(t, err)
		assert.Equal(t, "Dune", book.Title)
		assert.Equal(t, "Frank Herbert", book.Author)
		assert.Equal(t, entity.ProcessingStatusProcessed, book.ProcessingStatus)
		assert.Equal(t, 27, book.FullTextLength)

		sections, err := repo.ListSections(ctx, "book-1")
		require.NoError(t, err)
		assert.Len(t, sections, 2)
	})

	t.Run("reprocess rebuilds sections", func(t *testing.T) {
		repo := newFakeBookRepo(newBook())
		ext := &fakeExtractor{doc: &Document{Chapters: []Chapter{
			{Title: "One", Blocks: []Block{paragraph("v1")}},
		}}}
		svc := NewService(repo, map[entity.BookFormat]TextExtractor{entity.BookFormatEPUB: ext})

		_, err := svc.Process(ctx, "book-1")
		require.NoError(t, err)

		ext.doc = &Document{Chapters: []Chapter{
			{Title: "One", Blocks: []Block{paragraph("version two")}},
			{Title: "Two", Blocks: []Block{paragraph("appendix")}},
		}}
		book, err := svc.Process(ctx, "book-1")
		require.NoError(t, err)

		sections, _ := repo.ListSections(ctx, "book-1")
		assert.Len(t, sections, 2)
		assert.Equal(t, 19, book.FullTextLength)
	})

	t.Run("unknown book", func(t *testing.T) {
		svc := NewService(newFakeBookRepo(), nil)

		_, err := svc.Process(ctx, "missing")
		require.Error(t, err)
		assert.True(t, apperrors.IsCode(err, apperrors.CodeBookNotFound))
	})

	t.Run("missing extractor", func(t *testing.T) {
		repo := newFakeBookRepo(newBook())
		svc := NewService(repo, map[entity.BookFormat]TextExtractor{})

		_, err := svc.Process(ctx, "book-1")
		require.Error(t, err)
		assert.True(t, apperrors.IsCode(err, apperrors.CodeUnsupportedFormat))
	})

	t.Run("extraction failure", func(t *testing.T) {
		repo := newFakeBookRepo(newBook())
		svc := NewService(repo, map[entity.BookFormat]TextExtractor{
			entity.BookFormatEPUB: &fakeExtractor{err: errors.New("corrupt archive")},
		})

		_, err := svc.Process(ctx, "book-1")
		require.Error(t, err)
		assert.True(t, apperrors.IsCode(err, apperrors.CodeExtractionFailed))
	})
}

func TestFullText(t *testing.T) {
	repo := newFakeBookRepo()
	repo.sections["book-1"] = []entity.BookSection{
		{Content: "part one "},
		{Content: "part two"},
	}
	svc := NewService(repo, nil)

	text, err := svc.FullText(context.Background(), "book-1")
	require.NoError(t, err)
	assert.Equal(t, "part one part two", text)
}

func TestDetectFormat(t *testing.T) {
	format, err := DetectFormat("book.EPUB")
	require.NoError(t, err)
	assert.Equal(t, entity.BookFormatEPUB, format)

	format, err = DetectFormat("paper.pdf")
	require.NoError(t, err)
	assert.Equal(t, entity.BookFormatPDF, format)

	format, err = DetectFormat("notes.txt")
	require.NoError(t, err)
	assert.Equal(t, entity.BookFormatTXT, format)

	_, err = DetectFormat("book.mobi")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeUnsupportedFormat))
}
