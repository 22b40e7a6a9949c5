// Package notify 询价通知:通过Webhook把新询价投递给销售侧
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/rick-johnn/TruckSigns.com/internal/studio/entity"
)

// WebhookClient 询价Webhook客户端
type WebhookClient struct {
	url        string
	toEmail    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewWebhookClient 创建Webhook客户端,url为空时投递变为日志记录
func NewWebhookClient(url, toEmail string, logger *zap.Logger) *WebhookClient {
	return &WebhookClient{
		url:     url,
		toEmail: toEmail,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

// inquiryPayload 投递的通知内容
type inquiryPayload struct {
	ToEmail           string `json:"to_email"`
	InquiryID         string `json:"inquiry_id"`
	UserName          string `json:"user_name"`
	UserEmail         string `json:"user_email"`
	SignSize          string `json:"sign_size"`
	Quantity          string `json:"quantity"`
	Timeline          string `json:"timeline"`
	ContactPreference string `json:"contact_preference"`
	Notes             string `json:"notes"`
	PreviewURL        string `json:"preview_url"`
}

// SendInquiry 投递询价通知
// 投递失败不影响询价记录本身,由调用方决定是否降级为仅日志
func (c *WebhookClient) SendInquiry(ctx context.Context, inquiry *entity.Inquiry, user *entity.User) error {
	timeline := inquiry.Timeline
	if label, ok := entity.TimelineLabels[timeline]; ok {
		timeline = label
	}
	payload := inquiryPayload{
		ToEmail:           c.toEmail,
		InquiryID:         inquiry.ID,
		UserName:          user.Name,
		UserEmail:         user.Email,
		SignSize:          inquiry.SizeID,
		Quantity:          inquiry.Quantity,
		Timeline:          timeline,
		ContactPreference: inquiry.ContactPreference,
		Notes:             inquiry.Notes,
		PreviewURL:        inquiry.PreviewURL,
	}

	if c.url == "" {
		c.logger.Info("Inquiry webhook not configured, logging inquiry instead",
			zap.String("inquiry_id", inquiry.ID),
			zap.String("user_email", user.Email))
		return nil
	}

	bodyBytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode inquiry payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(bodyBytes))
	if err != nil {
		return fmt.Errorf("create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("deliver inquiry webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("inquiry webhook returned %d: %s", resp.StatusCode, string(body))
	}
	return nil
}
