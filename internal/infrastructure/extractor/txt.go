package extractor

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"readrecall-api/internal/application/extract"
	apperrors "readrecall-api/pkg/errors"
)

// TXTExtractor 纯文本抽取器：整个文件作为单章节，按空行分段
type TXTExtractor struct{}

// NewTXTExtractor 创建纯文本抽取器
func NewTXTExtractor() *TXTExtractor {
	return &TXTExtractor{}
}

var paragraphSplit = regexp.MustCompile(`\n\s*\n`)

// Extract 读取文本文件为单章节结构
func (e *TXTExtractor) Extract(ctx context.Context, filePath string) (*extract.Document, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeExtractionFailed, "failed to read text file")
	}

	content := strings.TrimSpace(string(data))
	if content == "" {
		return nil, apperrors.New(apperrors.CodeExtractionFailed, "text file is empty")
	}

	title := strings.TrimSuffix(filepath.Base(filePath), filepath.Ext(filePath))
	chapter := extract.Chapter{Title: title}
	for _, para := range paragraphSplit.Split(content, -1) {
		if p := strings.TrimSpace(para); p != "" {
			chapter.Blocks = append(chapter.Blocks, extract.Block{Type: "paragraph", Text: p})
		}
	}

	return &extract.Document{
		Title:    title,
		Chapters: []extract.Chapter{chapter},
	}, nil
}
