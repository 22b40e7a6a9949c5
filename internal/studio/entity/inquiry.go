package entity

import "time"

// 询价表单选项
var (
	QuantityOptions    = []string{"1", "2-5", "6-10", "11-25", "25+"}
	TimelineOptions    = []string{"asap", "1-2-weeks", "2-4-weeks", "1-month-plus", "flexible"}
	ContactPreferences = []string{"email", "phone", "either"}
)

// TimelineLabels 时间选项的展示文案,用于通知内容
var TimelineLabels = map[string]string{
	"asap":         "As soon as possible",
	"1-2-weeks":    "1-2 weeks",
	"2-4-weeks":    "2-4 weeks",
	"1-month-plus": "1 month or more",
	"flexible":     "Flexible / No rush",
}

// Inquiry 报价询问实体:用户提交的设计报价请求
type Inquiry struct {
	ID                string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID            string    `json:"user_id" gorm:"type:varchar(36);index;not null"`
	DesignID          string    `json:"design_id" gorm:"type:varchar(36);index"`
	SizeID            string    `json:"size_id" gorm:"type:varchar(20);not null"`
	Quantity          string    `json:"quantity" gorm:"type:varchar(20);not null"`
	Timeline          string    `json:"timeline" gorm:"type:varchar(20);not null"`
	ContactPreference string    `json:"contact_preference" gorm:"type:varchar(20);not null;default:email"`
	Notes             string    `json:"notes" gorm:"type:text"`
	PreviewURL        string    `json:"preview_url" gorm:"type:text"`
	Status            string    `json:"status" gorm:"type:varchar(20);not null;default:pending"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// TableName 指定表名
func (Inquiry) TableName() string {
	return "inquiries"
}

// ValidOption 检查取值是否在选项集中
func ValidOption(value string, options []string) bool {
	for _, o := range options {
		if o == value {
			return true
		}
	}
	return false
}
