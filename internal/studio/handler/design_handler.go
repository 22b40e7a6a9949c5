package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/rick-johnn/TruckSigns.com/internal/studio/repository"
	"github.com/rick-johnn/TruckSigns.com/internal/studio/service"
)

// DesignHandler 设计处理器
type DesignHandler struct {
	svc *service.DesignService
}

// NewDesignHandler 创建设计处理器
func NewDesignHandler(svc *service.DesignService) *DesignHandler {
	return &DesignHandler{svc: svc}
}

// List 列出当前用户的所有设计
// GET /api/v1/designs
func (h *DesignHandler) List(c *gin.Context) {
	designs, err := h.svc.List(c.Request.Context(), GetUserID(c))
	if err != nil {
		InternalError(c, "获取设计列表失败: "+err.Error())
		return
	}
	Success(c, gin.H{"items": designs})
}

// Get 获取设计详情
// GET /api/v1/designs/:id
func (h *DesignHandler) Get(c *gin.Context) {
	design, err := h.svc.Get(c.Request.Context(), GetUserID(c), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "设计不存在")
			return
		}
		if errors.Is(err, service.ErrForbidden) {
			Forbidden(c, "无权访问该设计")
			return
		}
		InternalError(c, "获取设计失败: "+err.Error())
		return
	}
	Success(c, gin.H{"design": design})
}

// Delete 删除设计
// DELETE /api/v1/designs/:id
func (h *DesignHandler) Delete(c *gin.Context) {
	err := h.svc.Delete(c.Request.Context(), GetUserID(c), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrForbidden) {
			Forbidden(c, "无权删除该设计")
			return
		}
		InternalError(c, "删除设计失败: "+err.Error())
		return
	}
	Success(c, gin.H{"message": "设计已删除"})
}
