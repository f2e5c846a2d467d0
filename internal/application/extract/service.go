package extract

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"readrecall-api/internal/domain/entity"
	"readrecall-api/internal/domain/repository"
	apperrors "readrecall-api/pkg/errors"
	"readrecall-api/pkg/logger"
	"readrecall-api/pkg/metrics"
	"readrecall-api/pkg/tracer"
)

// Service 图书处理服务
// 驱动抽取器把上传文件转成有序章节，并维护章节在拼接全文中的
// 连续字符区间。
type Service struct {
	books      repository.BookRepository
	extractors map[entity.BookFormat]TextExtractor
}

// NewService 创建图书处理服务
func NewService(books repository.BookRepository, extractors map[entity.BookFormat]TextExtractor) *Service {
	return &Service{
		books:      books,
		extractors: extractors,
	}
}

// Process 对已上传图书执行文本抽取
// 抽取成功后原子替换章节并把图书标记为 processed；重复调用会
// 基于当前文件重建章节。
func (s *Service) Process(ctx context.Context, bookID string) (*entity.Book, error) {
	ctx, span := tracer.Start(ctx, "extract.Service.Process")
	defer span.End()

	book, err := s.books.GetByID(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if book == nil {
		return nil, apperrors.ErrBookNotFound
	}

	extractor, ok := s.extractors[book.Format]
	if !ok {
		return nil, apperrors.New(apperrors.CodeUnsupportedFormat, "no extractor for format").WithDetail(string(book.Format))
	}

	start := time.Now()
	doc, err := extractor.Extract(ctx, book.FilePath)
	if err != nil {
		metrics.BookProcessTotal.WithLabelValues(string(book.Format), "failed").Inc()
		if apperrors.IsAppError(err) {
			return nil, err
		}
		return nil, apperrors.Wrap(err, apperrors.CodeExtractionFailed, "text extraction failed")
	}
	metrics.BookProcessDuration.WithLabelValues(string(book.Format)).Observe(time.Since(start).Seconds())

	sections, totalLength := BuildSections(bookID, doc)
	if err := s.books.ReplaceSections(ctx, bookID, sections); err != nil {
		metrics.BookProcessTotal.WithLabelValues(string(book.Format), "failed").Inc()
		return nil, err
	}

	if doc.Title != "" {
		book.Title = doc.Title
	}
	if doc.Author != "" {
		book.Author = doc.Author
	}
	book.MarkProcessed(totalLength)
	if err := s.books.Update(ctx, book); err != nil {
		return nil, err
	}

	metrics.BookProcessTotal.WithLabelValues(string(book.Format), "ok").Inc()
	logger.Info(ctx, "book processed",
		"book_id", bookID,
		"sections", len(sections),
		"full_text_length", totalLength)
	return book, nil
}

// FullText 按章节顺序拼接图书全文
func (s *Service) FullText(ctx context.Context, bookID string) (string, error) {
	sections, err := s.books.ListSections(ctx, bookID)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	for _, sec := range sections {
		sb.WriteString(sec.Content)
	}
	return sb.String(), nil
}

// BuildSections 把抽取结果转成章节记录
// 区间按 rune 计且保持连续：第 i 章的 end_position 即第 i+1 章的
// start_position。返回章节与全文总长度。
func BuildSections(bookID string, doc *Document) ([]entity.BookSection, int) {
	sections := make([]entity.BookSection, 0, len(doc.Chapters))
	pos := 0
	order := 0
	for _, ch := range doc.Chapters {
		content := ch.ChapterText()
		if content == "" {
			continue
		}
		length := utf8.RuneCountInString(content)
		sections = append(sections, entity.BookSection{
			BookID:        bookID,
			Title:         strings.TrimSpace(ch.Title),
			Content:       content,
			OrderIndex:    order,
			StartPosition: pos,
			EndPosition:   pos + length,
		})
		pos += length
		order++
	}
	return sections, pos
}
