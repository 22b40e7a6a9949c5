// Package repository 数据访问层
package repository

import (
	"errors"

	"gorm.io/gorm"
)

// ErrNotFound 记录不存在
var ErrNotFound = errors.New("record not found")

// Repositories 聚合所有仓储
type Repositories struct {
	User    *UserRepository
	Design  *DesignRepository
	Inquiry *InquiryRepository
}

// NewRepositories 创建仓储聚合
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:    NewUserRepository(db),
		Design:  NewDesignRepository(db),
		Inquiry: NewInquiryRepository(db),
	}
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
