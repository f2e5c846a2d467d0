package extractor

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"readrecall-api/internal/application/extract"
	apperrors "readrecall-api/pkg/errors"
)

// PDFExtractor PDF 文本抽取器
// 只取文本层，扫描件（无文本层的 PDF）视为抽取失败。
type PDFExtractor struct{}

// NewPDFExtractor 创建 PDF 抽取器
func NewPDFExtractor() *PDFExtractor {
	return &PDFExtractor{}
}

// Extract 逐页提取文本，整本书作为单章节、每页一个文本块
func (e *PDFExtractor) Extract(ctx context.Context, filePath string) (*extract.Document, error) {
	f, reader, err := pdf.Open(filePath)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeExtractionFailed, "failed to open pdf file")
	}
	defer f.Close()

	title := strings.TrimSuffix(filepath.Base(filePath), filepath.Ext(filePath))
	chapter := extract.Chapter{Title: title}

	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// 个别页面损坏不终止整本书
			continue
		}
		if t := strings.TrimSpace(text); t != "" {
			chapter.Blocks = append(chapter.Blocks, extract.Block{Type: "paragraph", Text: t})
		}
	}

	if len(chapter.Blocks) == 0 {
		return nil, apperrors.New(apperrors.CodeExtractionFailed, "no extractable text in pdf")
	}

	return &extract.Document{
		Title:    title,
		Chapters: []extract.Chapter{chapter},
	}, nil
}
