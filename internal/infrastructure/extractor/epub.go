// Package extractor 提供各图书格式的文本抽取实现
package extractor

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/taylorskalyo/goreader/epub"
	"golang.org/x/net/html"

	"readrecall-api/internal/application/extract"
	apperrors "readrecall-api/pkg/errors"
)

// EPUBExtractor 基于 goreader 的 EPUB 抽取器
type EPUBExtractor struct{}

// NewEPUBExtractor 创建 EPUB 抽取器
func NewEPUBExtractor() *EPUBExtractor {
	return &EPUBExtractor{}
}

// Extract 按 spine 顺序解析 EPUB 为章节结构
func (e *EPUBExtractor) Extract(ctx context.Context, filePath string) (*extract.Document, error) {
	rc, err := epub.OpenReader(filePath)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeExtractionFailed, "failed to open epub")
	}
	defer rc.Close()

	if len(rc.Rootfiles) == 0 {
		return nil, apperrors.New(apperrors.CodeExtractionFailed, "no rootfiles found in epub")
	}
	book := rc.Rootfiles[0]

	doc := &extract.Document{
		Title:  strings.TrimSpace(book.Title),
		Author: strings.TrimSpace(book.Creator),
	}

	for i, ref := range book.Spine.Itemrefs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if ref.Item == nil {
			continue
		}
		r, err := ref.Item.Open()
		if err != nil {
			continue
		}
		data, err := io.ReadAll(r)
		r.Close()
		if err != nil {
			continue
		}

		blocks := htmlToBlocks(string(data))
		if len(blocks) == 0 {
			continue
		}

		title := spineItemTitle(ref.Item.HREF, i)
		doc.Chapters = append(doc.Chapters, extract.Chapter{
			Title:  title,
			Blocks: blocks,
		})
	}

	if len(doc.Chapters) == 0 {
		return nil, apperrors.New(apperrors.CodeExtractionFailed, "epub contains no readable text")
	}
	return doc, nil
}

// spineItemTitle 从 spine 项推导章节标题
func spineItemTitle(href string, index int) string {
	base := path.Base(href)
	if idx := strings.IndexByte(base, '#'); idx != -1 {
		base = base[:idx]
	}
	if ext := path.Ext(base); ext != "" {
		base = strings.TrimSuffix(base, ext)
	}
	base = strings.TrimSpace(strings.ReplaceAll(base, "_", " "))
	if base == "" {
		return fmt.Sprintf("Section %d", index+1)
	}
	return base
}

// 块级标签：遇到即切分新文本块
var blockTags = map[string]string{
	"p": "paragraph", "div": "paragraph", "li": "paragraph",
	"blockquote": "paragraph", "td": "paragraph",
	"h1": "heading", "h2": "heading", "h3": "heading",
	"h4": "heading", "h5": "heading", "h6": "heading",
}

// htmlToBlocks 把 XHTML 正文拆成文本块
func htmlToBlocks(s string) []extract.Block {
	doc, err := html.Parse(strings.NewReader(s))
	if err != nil {
		return nil
	}

	var blocks []extract.Block
	var current strings.Builder
	currentType := "paragraph"

	flush := func() {
		if t := strings.TrimSpace(current.String()); t != "" {
			blocks = append(blocks, extract.Block{Type: currentType, Text: t})
		}
		current.Reset()
		currentType = "paragraph"
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "head":
				return
			}
			if bt, ok := blockTags[n.Data]; ok {
				flush()
				currentType = bt
			}
		}
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				if current.Len() > 0 {
					current.WriteString(" ")
				}
				current.WriteString(t)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	flush()
	return blocks
}
