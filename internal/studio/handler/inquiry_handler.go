package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/rick-johnn/TruckSigns.com/internal/studio/service"
)

// InquiryHandler 询价处理器
type InquiryHandler struct {
	svc *service.InquiryService
}

// NewInquiryHandler 创建询价处理器
func NewInquiryHandler(svc *service.InquiryService) *InquiryHandler {
	return &InquiryHandler{svc: svc}
}

// Submit 提交询价
// POST /api/v1/inquiries
func (h *InquiryHandler) Submit(c *gin.Context) {
	var req service.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	inquiry, err := h.svc.Submit(c.Request.Context(), GetUserID(c), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidInquiryOption) {
			BadRequest(c, "表单取值无效: "+err.Error())
			return
		}
		InternalError(c, "提交询价失败: "+err.Error())
		return
	}

	Created(c, gin.H{"inquiry": inquiry})
}

// List 列出当前用户的询价记录
// GET /api/v1/inquiries
func (h *InquiryHandler) List(c *gin.Context) {
	inquiries, err := h.svc.List(c.Request.Context(), GetUserID(c))
	if err != nil {
		InternalError(c, "获取询价列表失败: "+err.Error())
		return
	}
	Success(c, gin.H{"items": inquiries})
}
