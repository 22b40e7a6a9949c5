package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/rick-johnn/TruckSigns.com/internal/studio/entity"
)

// InquiryRepository 询价仓储
type InquiryRepository struct {
	db *gorm.DB
}

// NewInquiryRepository 创建询价仓储
func NewInquiryRepository(db *gorm.DB) *InquiryRepository {
	return &InquiryRepository{db: db}
}

// Create 创建询价记录
func (r *InquiryRepository) Create(ctx context.Context, inquiry *entity.Inquiry) error {
	return r.db.WithContext(ctx).Create(inquiry).Error
}

// FindByID 按ID查询
func (r *InquiryRepository) FindByID(ctx context.Context, id string) (*entity.Inquiry, error) {
	var inquiry entity.Inquiry
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&inquiry).Error; err != nil {
		return nil, translate(err)
	}
	return &inquiry, nil
}

// ListByUser 按用户列出询价记录,最近创建在前
func (r *InquiryRepository) ListByUser(ctx context.Context, userID string) ([]entity.Inquiry, error) {
	var inquiries []entity.Inquiry
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&inquiries).Error
	return inquiries, err
}

// UpdateStatus 更新处理状态
func (r *InquiryRepository) UpdateStatus(ctx context.Context, id, status string) error {
	result := r.db.WithContext(ctx).Model(&entity.Inquiry{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
