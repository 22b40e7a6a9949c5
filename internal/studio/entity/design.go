package entity

import (
	"encoding/json"
	"time"
)

// Design 标牌设计实体:场景序列化为JSON整体存储,命名设计按用户隔离
type Design struct {
	ID         string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OwnerID    string          `json:"owner_id" gorm:"type:varchar(36);index;not null"`
	Name       string          `json:"name" gorm:"type:varchar(200);not null"`
	SizeID     string          `json:"size_id" gorm:"type:varchar(20);not null"`
	Width      int             `json:"width" gorm:"not null"`
	Height     int             `json:"height" gorm:"not null"`
	Scene      json.RawMessage `json:"scene" gorm:"type:jsonb"`
	PreviewURL string          `json:"preview_url" gorm:"type:text"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// TableName 指定表名
func (Design) TableName() string {
	return "designs"
}
