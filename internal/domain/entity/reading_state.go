// Package entity 定义领域实体
package entity

import (
	"time"
)

// ReadingState 阅读进度
// 每个 (user_id, book_id) 只保留一条，更新时整条覆盖。
type ReadingState struct {
	ID                string    `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID            string    `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_reading_states_user_book,priority:1"`
	BookID            string    `json:"book_id" gorm:"type:uuid;not null;uniqueIndex:idx_reading_states_user_book,priority:2"`
	Position          int       `json:"position" gorm:"not null;default:0"`
	CurrentPercentage int       `json:"current_percentage" gorm:"not null;default:0"`
	UpdatedAt         time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (ReadingState) TableName() string {
	return "reading_states"
}

// SetProgress 更新阅读位置与百分比
func (s *ReadingState) SetProgress(position, percentage int) {
	if percentage < 0 {
		percentage = 0
	}
	if percentage > 100 {
		percentage = 100
	}
	s.Position = position
	s.CurrentPercentage = percentage
}
