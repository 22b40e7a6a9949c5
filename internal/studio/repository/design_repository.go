package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/rick-johnn/TruckSigns.com/internal/studio/entity"
)

// DesignRepository 设计仓储
type DesignRepository struct {
	db *gorm.DB
}

// NewDesignRepository 创建设计仓储
func NewDesignRepository(db *gorm.DB) *DesignRepository {
	return &DesignRepository{db: db}
}

// Save 按ID整体写入:不存在时创建,存在时覆盖并刷新updated_at
// 同名并发保存为后写覆盖,created_at保留首次创建时间
func (r *DesignRepository) Save(ctx context.Context, design *entity.Design) error {
	now := time.Now()
	var existing entity.Design
	err := r.db.WithContext(ctx).Where("id = ?", design.ID).First(&existing).Error
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			return err
		}
		design.CreatedAt = now
		design.UpdatedAt = now
		return r.db.WithContext(ctx).Create(design).Error
	}
	design.CreatedAt = existing.CreatedAt
	design.UpdatedAt = now
	return r.db.WithContext(ctx).Save(design).Error
}

// FindByID 按ID查询
func (r *DesignRepository) FindByID(ctx context.Context, id string) (*entity.Design, error) {
	var design entity.Design
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&design).Error; err != nil {
		return nil, translate(err)
	}
	return &design, nil
}

// ListByOwner 按用户列出设计,最近更新在前
func (r *DesignRepository) ListByOwner(ctx context.Context, ownerID string) ([]entity.Design, error) {
	var designs []entity.Design
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("updated_at DESC").
		Find(&designs).Error
	return designs, err
}

// Delete 按ID删除,记录不存在时静默成功
func (r *DesignRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.Design{}).Error
}
