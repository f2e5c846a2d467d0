// Package entity 定义领域实体
package entity

import (
	"time"
)

// ProcessingStatus 图书处理状态
type ProcessingStatus string

const (
	// ProcessingStatusUploaded 文件已上传，尚未抽取文本
	ProcessingStatusUploaded ProcessingStatus = "uploaded"
	// ProcessingStatusProcessed 文本已抽取并切分为章节
	ProcessingStatusProcessed ProcessingStatus = "processed"
)

// BookFormat 图书文件格式
type BookFormat string

const (
	BookFormatEPUB BookFormat = "epub"
	BookFormatPDF  BookFormat = "pdf"
	BookFormatTXT  BookFormat = "txt"
)

// Book 图书实体
// 拥有全部章节与生成产物，删除时级联清理。
type Book struct {
	ID               string           `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID           string           `json:"user_id" gorm:"type:uuid;index;not null"`
	Title            string           `json:"title" gorm:"type:varchar(512);not null"`
	Author           string           `json:"author,omitempty" gorm:"type:varchar(256)"`
	FilePath         string           `json:"-" gorm:"type:varchar(1024);not null"`
	Format           BookFormat       `json:"format" gorm:"type:varchar(16);not null"`
	ProcessingStatus ProcessingStatus `json:"processing_status" gorm:"type:varchar(32);not null;default:uploaded"`
	FullTextLength   int              `json:"full_text_length" gorm:"not null;default:0"`
	CreatedAt        time.Time        `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt        time.Time        `json:"updated_at" gorm:"autoUpdateTime"`

	Sections []BookSection `json:"sections,omitempty" gorm:"foreignKey:BookID;constraint:OnDelete:CASCADE"`
}

func (Book) TableName() string {
	return "books"
}

// BookSection 图书章节
// 各章节在拼接全文中的字符区间 [start_position, end_position) 连续不重叠：
// 第 i 章的 end_position 等于第 i+1 章的 start_position。
type BookSection struct {
	ID            string    `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	BookID        string    `json:"book_id" gorm:"type:uuid;index;not null"`
	Title         string    `json:"title" gorm:"type:varchar(512)"`
	Content       string    `json:"content" gorm:"type:text;not null"`
	OrderIndex    int       `json:"order_index" gorm:"not null"`
	StartPosition int       `json:"start_position" gorm:"not null"`
	EndPosition   int       `json:"end_position" gorm:"not null"`
	CreatedAt     time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (BookSection) TableName() string {
	return "book_sections"
}

// IsProcessed 检查图书是否已完成文本抽取
func (b *Book) IsProcessed() bool {
	return b.ProcessingStatus == ProcessingStatusProcessed
}

// MarkProcessed 标记图书处理完成
func (b *Book) MarkProcessed(fullTextLength int) {
	b.ProcessingStatus = ProcessingStatusProcessed
	b.FullTextLength = fullTextLength
}
