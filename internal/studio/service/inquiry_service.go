package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rick-johnn/TruckSigns.com/internal/studio/entity"
	"github.com/rick-johnn/TruckSigns.com/internal/studio/notify"
	"github.com/rick-johnn/TruckSigns.com/internal/studio/repository"
)

// ErrInvalidInquiryOption 询价表单取值不在选项集内
var ErrInvalidInquiryOption = errors.New("invalid inquiry option")

// InquiryService 询价服务
type InquiryService struct {
	repo     *repository.InquiryRepository
	userRepo *repository.UserRepository
	webhook  *notify.WebhookClient
	logger   *zap.Logger
}

// NewInquiryService 创建询价服务
func NewInquiryService(repo *repository.InquiryRepository, userRepo *repository.UserRepository, webhook *notify.WebhookClient, logger *zap.Logger) *InquiryService {
	return &InquiryService{
		repo:     repo,
		userRepo: userRepo,
		webhook:  webhook,
		logger:   logger,
	}
}

// SubmitRequest 提交询价请求
type SubmitRequest struct {
	DesignID          string `json:"design_id"`
	SizeID            string `json:"size_id" binding:"required"`
	Quantity          string `json:"quantity" binding:"required"`
	Timeline          string `json:"timeline" binding:"required"`
	ContactPreference string `json:"contact_preference"`
	Notes             string `json:"notes"`
	PreviewURL        string `json:"preview_url"`
}

// Submit 提交询价:先落库,再投递通知;通知失败不影响询价记录
func (s *InquiryService) Submit(ctx context.Context, userID string, req *SubmitRequest) (*entity.Inquiry, error) {
	if !entity.ValidOption(req.Quantity, entity.QuantityOptions) {
		return nil, fmt.Errorf("%w: quantity %q", ErrInvalidInquiryOption, req.Quantity)
	}
	if !entity.ValidOption(req.Timeline, entity.TimelineOptions) {
		return nil, fmt.Errorf("%w: timeline %q", ErrInvalidInquiryOption, req.Timeline)
	}
	contactPref := req.ContactPreference
	if contactPref == "" {
		contactPref = "email"
	}
	if !entity.ValidOption(contactPref, entity.ContactPreferences) {
		return nil, fmt.Errorf("%w: contact preference %q", ErrInvalidInquiryOption, contactPref)
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	inquiry := &entity.Inquiry{
		ID:                uuid.New().String(),
		UserID:            userID,
		DesignID:          req.DesignID,
		SizeID:            req.SizeID,
		Quantity:          req.Quantity,
		Timeline:          req.Timeline,
		ContactPreference: contactPref,
		Notes:             req.Notes,
		PreviewURL:        req.PreviewURL,
		Status:            "pending",
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.repo.Create(ctx, inquiry); err != nil {
		return nil, fmt.Errorf("create inquiry: %w", err)
	}

	if err := s.webhook.SendInquiry(ctx, inquiry, user); err != nil {
		s.logger.Error("Inquiry notification delivery failed",
			zap.String("inquiry_id", inquiry.ID), zap.Error(err))
		if updateErr := s.repo.UpdateStatus(ctx, inquiry.ID, "notify_failed"); updateErr != nil {
			s.logger.Error("Failed to mark inquiry notify_failed",
				zap.String("inquiry_id", inquiry.ID), zap.Error(updateErr))
		}
	} else {
		if updateErr := s.repo.UpdateStatus(ctx, inquiry.ID, "sent"); updateErr != nil {
			s.logger.Error("Failed to mark inquiry sent",
				zap.String("inquiry_id", inquiry.ID), zap.Error(updateErr))
		}
	}

	return inquiry, nil
}

// List 列出用户的询价记录
func (s *InquiryService) List(ctx context.Context, userID string) ([]entity.Inquiry, error) {
	return s.repo.ListByUser(ctx, userID)
}
