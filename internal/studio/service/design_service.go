package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"

	"github.com/rick-johnn/TruckSigns.com/internal/studio/entity"
	"github.com/rick-johnn/TruckSigns.com/internal/studio/repository"
	"github.com/rick-johnn/TruckSigns.com/internal/studio/scene"
)

// DesignService 设计服务:命名设计的保存、加载、列表与删除
type DesignService struct {
	repo        *repository.DesignRepository
	minioClient *minio.Client
	bucket      string
	logger      *zap.Logger
}

// NewDesignService 创建设计服务
func NewDesignService(repo *repository.DesignRepository, minioClient *minio.Client, bucket string, logger *zap.Logger) *DesignService {
	return &DesignService{
		repo:        repo,
		minioClient: minioClient,
		bucket:      bucket,
		logger:      logger,
	}
}

// SaveRequest 保存设计请求
type SaveRequest struct {
	ID         string       // 空表示新设计
	Name       string
	SizeID     string
	Scene      *scene.Scene
	PreviewPNG []byte
}

// Save 保存设计:场景整体序列化,预览图传MinIO,失败时降级为内联data URI
// 同ID重复保存为整体覆盖
func (s *DesignService) Save(ctx context.Context, ownerID string, req *SaveRequest) (*entity.Design, error) {
	id := req.ID
	if id == "" {
		id = uuid.New().String()
	}

	sceneJSON, err := json.Marshal(req.Scene)
	if err != nil {
		return nil, fmt.Errorf("encode scene: %w", err)
	}

	previewURL := s.storePreview(ctx, id, req.PreviewPNG)

	design := &entity.Design{
		ID:         id,
		OwnerID:    ownerID,
		Name:       req.Name,
		SizeID:     req.SizeID,
		Width:      req.Scene.Width,
		Height:     req.Scene.Height,
		Scene:      sceneJSON,
		PreviewURL: previewURL,
	}

	if req.ID != "" {
		existing, err := s.repo.FindByID(ctx, req.ID)
		if err == nil && existing.OwnerID != ownerID {
			return nil, ErrForbidden
		}
	}

	if err := s.repo.Save(ctx, design); err != nil {
		return nil, fmt.Errorf("save design: %w", err)
	}
	return design, nil
}

// storePreview 保存PNG预览:优先MinIO,不可用时内联为data URI
func (s *DesignService) storePreview(ctx context.Context, designID string, png []byte) string {
	if len(png) == 0 {
		return ""
	}
	if s.minioClient != nil {
		objectName := fmt.Sprintf("previews/%s/%s.png", time.Now().Format("2006/01/02"), designID)
		_, err := s.minioClient.PutObject(ctx, s.bucket, objectName,
			bytes.NewReader(png), int64(len(png)),
			minio.PutObjectOptions{ContentType: "image/png"})
		if err == nil {
			return objectName
		}
		s.logger.Warn("Preview upload failed, falling back to inline data URI",
			zap.String("design_id", designID), zap.Error(err))
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)
}

// Get 按ID获取设计,校验归属
func (s *DesignService) Get(ctx context.Context, ownerID, designID string) (*entity.Design, error) {
	design, err := s.repo.FindByID(ctx, designID)
	if err != nil {
		return nil, err
	}
	if design.OwnerID != ownerID {
		return nil, ErrForbidden
	}
	return design, nil
}

// GetScene 按ID加载设计并反序列化场景
func (s *DesignService) GetScene(ctx context.Context, ownerID, designID string) (*entity.Design, *scene.Scene, error) {
	design, err := s.Get(ctx, ownerID, designID)
	if err != nil {
		return nil, nil, err
	}
	var sc scene.Scene
	if err := json.Unmarshal(design.Scene, &sc); err != nil {
		return nil, nil, fmt.Errorf("decode scene: %w", err)
	}
	return design, &sc, nil
}

// List 列出用户的全部设计
func (s *DesignService) List(ctx context.Context, ownerID string) ([]entity.Design, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

// Delete 删除设计,校验归属;记录不存在视为成功
func (s *DesignService) Delete(ctx context.Context, ownerID, designID string) error {
	design, err := s.repo.FindByID(ctx, designID)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil
		}
		return err
	}
	if design.OwnerID != ownerID {
		return ErrForbidden
	}
	return s.repo.Delete(ctx, designID)
}
