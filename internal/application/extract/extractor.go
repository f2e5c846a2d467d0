// Package extract 定义文本抽取能力与图书处理服务
package extract

import (
	"context"
	"path/filepath"
	"strings"

	"readrecall-api/internal/domain/entity"
	apperrors "readrecall-api/pkg/errors"
)

// Block 章节内的文本块
type Block struct {
	// Type 块类型：paragraph 或 heading
	Type string `json:"type"`
	Text string `json:"text"`
}

// Chapter 抽取出的章节
type Chapter struct {
	Title  string  `json:"title"`
	Blocks []Block `json:"blocks"`
}

// Document 抽取结果：有序章节结构
type Document struct {
	Title    string    `json:"title"`
	Author   string    `json:"author"`
	Chapters []Chapter `json:"chapters"`
}

// TextExtractor 文件格式解析能力的抽象（port）。
// 由基础设施层按格式提供实现，解析库对应用层完全不可见。
type TextExtractor interface {
	// Extract 解析文件为章节结构；文件损坏或不可读时返回
	// CodeExtractionFailed 类错误
	Extract(ctx context.Context, filePath string) (*Document, error)
}

// DetectFormat 根据文件扩展名识别图书格式
// 不认识的扩展名返回 CodeUnsupportedFormat，与"文件损坏"显式区分。
func DetectFormat(filename string) (entity.BookFormat, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".epub":
		return entity.BookFormatEPUB, nil
	case ".pdf":
		return entity.BookFormatPDF, nil
	case ".txt":
		return entity.BookFormatTXT, nil
	default:
		return "", apperrors.New(apperrors.CodeUnsupportedFormat, "unsupported file format").WithDetail(ext)
	}
}

// ChapterText 拼接章节全部文本块
func (c Chapter) ChapterText() string {
	parts := make([]string, 0, len(c.Blocks))
	for _, b := range c.Blocks {
		if t := strings.TrimSpace(b.Text); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, "\n\n")
}
