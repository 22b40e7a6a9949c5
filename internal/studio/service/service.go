// Package service 业务服务层
package service

import (
	"errors"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/rick-johnn/TruckSigns.com/internal/config"
	"github.com/rick-johnn/TruckSigns.com/internal/studio/canvas"
	"github.com/rick-johnn/TruckSigns.com/internal/studio/notify"
	"github.com/rick-johnn/TruckSigns.com/internal/studio/repository"
	"github.com/rick-johnn/TruckSigns.com/internal/studio/sse"
)

// 服务层错误
var (
	ErrForbidden       = errors.New("access denied")
	ErrSessionNotFound = errors.New("session not found")
)

// Services 服务集合
type Services struct {
	Auth    *AuthService
	Design  *DesignService
	Session *SessionService
	Inquiry *InquiryService
}

// NewServices 创建服务集合
func NewServices(repos *repository.Repositories, rdb *redis.Client, engine canvas.Engine, hub *sse.Hub, cfg *config.Config, logger *zap.Logger) *Services {
	// 初始化MinIO客户端
	var minioClient *minio.Client
	if cfg.MinIO.Endpoint != "" {
		var err error
		minioClient, err = minio.New(cfg.MinIO.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.MinIO.AccessKey, cfg.MinIO.SecretKey, ""),
			Secure: cfg.MinIO.UseSSL,
		})
		if err != nil {
			logger.Warn("MinIO unavailable, previews fall back to inline data URIs", zap.Error(err))
			minioClient = nil
		}
	}

	webhook := notify.NewWebhookClient(cfg.Inquiry.WebhookURL, cfg.Inquiry.ToEmail, logger)
	designSvc := NewDesignService(repos.Design, minioClient, cfg.MinIO.Bucket, logger)
	sessionSvc := NewSessionService(designSvc, engine, hub, cfg, logger)

	return &Services{
		Auth:    NewAuthService(repos.User, rdb, cfg),
		Design:  designSvc,
		Session: sessionSvc,
		Inquiry: NewInquiryService(repos.Inquiry, repos.User, webhook, logger),
	}
}
