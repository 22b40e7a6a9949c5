package handler

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"

	"github.com/rick-johnn/TruckSigns.com/internal/studio/catalog"
	"github.com/rick-johnn/TruckSigns.com/internal/studio/service"
	"github.com/rick-johnn/TruckSigns.com/internal/studio/session"
	"github.com/rick-johnn/TruckSigns.com/internal/studio/template"
)

// SessionHandler 编辑会话处理器
type SessionHandler struct {
	svc *service.SessionService
}

// NewSessionHandler 创建会话处理器
func NewSessionHandler(svc *service.SessionService) *SessionHandler {
	return &SessionHandler{svc: svc}
}

// StartRequest 开启会话请求
type StartRequest struct {
	SizeID         string `json:"size_id"`
	DesignID       string `json:"design_id"`
	ContainerWidth int    `json:"container_width"`
}

// sessionState 会话状态响应
func sessionState(sess *session.Session) gin.H {
	designID, designName := sess.Design()
	return gin.H{
		"session_id":  sess.ID,
		"size":        sess.Size(),
		"scene":       sess.Scene(),
		"selection":   sess.Selection(),
		"design_id":   designID,
		"design_name": designName,
	}
}

// Start 开启编辑会话:空白画布或从已保存设计恢复
// POST /api/v1/sessions
func (h *SessionHandler) Start(c *gin.Context) {
	var req StartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "请求参数错误: "+err.Error())
		return
	}
	if req.ContainerWidth <= 0 {
		req.ContainerWidth = 900
	}
	if req.SizeID == "" {
		req.SizeID = catalog.Default().ID
	}

	var (
		sess *session.Session
		err  error
	)
	if req.DesignID != "" {
		sess, err = h.svc.StartFromDesign(c.Request.Context(), GetUserID(c), req.DesignID, req.ContainerWidth)
	} else {
		sess, err = h.svc.Start(GetUserID(c), req.SizeID, req.ContainerWidth)
	}
	if err != nil {
		if errors.Is(err, catalog.ErrSizeNotFound) {
			BadRequest(c, "尺寸不存在: "+req.SizeID)
			return
		}
		if errors.Is(err, service.ErrForbidden) {
			Forbidden(c, "无权访问该设计")
			return
		}
		InternalError(c, "开启会话失败: "+err.Error())
		return
	}

	Created(c, sessionState(sess))
}

// Get 获取会话当前状态
// GET /api/v1/sessions/:id
func (h *SessionHandler) Get(c *gin.Context) {
	sess, err := h.svc.Get(c.Param("id"), GetUserID(c))
	if err != nil {
		NotFound(c, "会话不存在")
		return
	}
	Success(c, sessionState(sess))
}

// End 结束会话
// DELETE /api/v1/sessions/:id
func (h *SessionHandler) End(c *gin.Context) {
	if err := h.svc.End(c.Param("id"), GetUserID(c)); err != nil {
		NotFound(c, "会话不存在")
		return
	}
	Success(c, gin.H{"message": "会话已结束"})
}

// lookup 取会话,失败时写响应并返回nil
func (h *SessionHandler) lookup(c *gin.Context) *session.Session {
	sess, err := h.svc.Get(c.Param("id"), GetUserID(c))
	if err != nil {
		NotFound(c, "会话不存在")
		return nil
	}
	return sess
}

// SelectRequest 选中请求
type SelectRequest struct {
	ElementID string `json:"element_id"`
}

// Select 更新选中元素,element_id为空表示清除选中
// PUT /api/v1/sessions/:id/selection
func (h *SessionHandler) Select(c *gin.Context) {
	sess := h.lookup(c)
	if sess == nil {
		return
	}
	var req SelectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "请求参数错误: "+err.Error())
		return
	}
	if err := sess.Select(req.ElementID); err != nil {
		if errors.Is(err, session.ErrInvalidReference) {
			NotFound(c, "元素不存在: "+req.ElementID)
			return
		}
		InternalError(c, "选中失败: "+err.Error())
		return
	}
	Success(c, gin.H{"selection": sess.Selection()})
}

// AddText 插入默认文本框
// POST /api/v1/sessions/:id/elements/text
func (h *SessionHandler) AddText(c *gin.Context) {
	sess := h.lookup(c)
	if sess == nil {
		return
	}
	el, err := sess.AddText()
	if err != nil {
		InternalError(c, "添加文本失败: "+err.Error())
		return
	}
	Created(c, gin.H{"element": el})
}

// AddShapeRequest 插入形状请求
type AddShapeRequest struct {
	Kind string `json:"kind" binding:"required"`
}

// AddShape 插入默认形状
// POST /api/v1/sessions/:id/elements/shape
func (h *SessionHandler) AddShape(c *gin.Context) {
	sess := h.lookup(c)
	if sess == nil {
		return
	}
	var req AddShapeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "请求参数错误: "+err.Error())
		return
	}
	el, err := sess.AddShape(req.Kind)
	if err != nil {
		if errors.Is(err, session.ErrUnknownShapeKind) {
			BadRequest(c, "不支持的形状类型: "+req.Kind)
			return
		}
		InternalError(c, "添加形状失败: "+err.Error())
		return
	}
	Created(c, gin.H{"element": el})
}

// AddImage 上传位图并插入为图片元素
// POST /api/v1/sessions/:id/elements/image (multipart, field "file")
func (h *SessionHandler) AddImage(c *gin.Context) {
	sess := h.lookup(c)
	if sess == nil {
		return
	}

	file, _, err := c.Request.FormFile("file")
	if err != nil {
		BadRequest(c, "缺少上传文件: "+err.Error())
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		InternalError(c, "读取上传文件失败: "+err.Error())
		return
	}

	el, err := sess.AddImage(data)
	if err != nil {
		if errors.Is(err, session.ErrBitmapDecode) {
			BadRequest(c, "图片无法解析或超出大小限制")
			return
		}
		InternalError(c, "添加图片失败: "+err.Error())
		return
	}
	Created(c, gin.H{"element": el})
}

// UpdateSelected 合并属性到选中元素
// PATCH /api/v1/sessions/:id/selection
func (h *SessionHandler) UpdateSelected(c *gin.Context) {
	sess := h.lookup(c)
	if sess == nil {
		return
	}
	var attrs map[string]any
	if err := c.ShouldBindJSON(&attrs); err != nil {
		BadRequest(c, "请求参数错误: "+err.Error())
		return
	}
	if err := sess.UpdateSelected(attrs); err != nil {
		BadRequest(c, "更新元素失败: "+err.Error())
		return
	}
	Success(c, sessionState(sess))
}

// DeleteSelected 删除选中元素
// DELETE /api/v1/sessions/:id/selection
func (h *SessionHandler) DeleteSelected(c *gin.Context) {
	sess := h.lookup(c)
	if sess == nil {
		return
	}
	if err := sess.DeleteSelected(); err != nil {
		InternalError(c, "删除元素失败: "+err.Error())
		return
	}
	Success(c, sessionState(sess))
}

// ActionRequest 选中元素动作请求
type ActionRequest struct {
	Action string `json:"action" binding:"required"`
}

// Action 对选中元素执行动作:复制/翻转/层级调整
// POST /api/v1/sessions/:id/selection/actions
func (h *SessionHandler) Action(c *gin.Context) {
	sess := h.lookup(c)
	if sess == nil {
		return
	}
	var req ActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	var err error
	switch req.Action {
	case "duplicate":
		_, err = sess.DuplicateSelected()
	case "flip_horizontal":
		err = sess.FlipSelectedHorizontal()
	case "flip_vertical":
		err = sess.FlipSelectedVertical()
	case "bring_forward":
		err = sess.BringSelectedForward()
	case "send_backward":
		err = sess.SendSelectedBackward()
	default:
		BadRequest(c, "不支持的动作: "+req.Action)
		return
	}
	if err != nil {
		InternalError(c, "执行动作失败: "+err.Error())
		return
	}
	Success(c, sessionState(sess))
}

// ApplyTemplateRequest 应用模板请求
type ApplyTemplateRequest struct {
	TemplateID string `json:"template_id" binding:"required"`
}

// ApplyTemplate 应用模板整体替换场景
// POST /api/v1/sessions/:id/template
func (h *SessionHandler) ApplyTemplate(c *gin.Context) {
	sess := h.lookup(c)
	if sess == nil {
		return
	}
	var req ApplyTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "请求参数错误: "+err.Error())
		return
	}
	if err := sess.ApplyTemplate(req.TemplateID); err != nil {
		if errors.Is(err, template.ErrUnknownTemplate) {
			NotFound(c, "模板不存在: "+req.TemplateID)
			return
		}
		InternalError(c, "应用模板失败: "+err.Error())
		return
	}
	Success(c, sessionState(sess))
}

// ChangeSizeRequest 变更尺寸请求
type ChangeSizeRequest struct {
	SizeID         string `json:"size_id" binding:"required"`
	ContainerWidth int    `json:"container_width"`
}

// ChangeSize 变更标牌尺寸
// PUT /api/v1/sessions/:id/size
func (h *SessionHandler) ChangeSize(c *gin.Context) {
	sess := h.lookup(c)
	if sess == nil {
		return
	}
	var req ChangeSizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "请求参数错误: "+err.Error())
		return
	}
	if req.ContainerWidth <= 0 {
		req.ContainerWidth = 900
	}
	size, err := catalog.SizeFor(req.SizeID)
	if err != nil {
		BadRequest(c, "尺寸不存在: "+req.SizeID)
		return
	}
	if err := sess.ChangeSize(size, req.ContainerWidth); err != nil {
		InternalError(c, "变更尺寸失败: "+err.Error())
		return
	}
	Success(c, gin.H{"size": size})
}

// ResetRequest 重置画布请求
type ResetRequest struct {
	Confirm bool `json:"confirm"`
}

// Reset 清空画布,需显式确认
// POST /api/v1/sessions/:id/reset
func (h *SessionHandler) Reset(c *gin.Context) {
	sess := h.lookup(c)
	if sess == nil {
		return
	}
	var req ResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "请求参数错误: "+err.Error())
		return
	}
	if err := sess.ResetCanvas(req.Confirm); err != nil {
		if errors.Is(err, session.ErrConfirmationRequired) {
			BadRequest(c, "清空画布需要显式确认")
			return
		}
		InternalError(c, "清空画布失败: "+err.Error())
		return
	}
	Success(c, sessionState(sess))
}

// Export 导出当前画布PNG快照
// GET /api/v1/sessions/:id/export
func (h *SessionHandler) Export(c *gin.Context) {
	sess := h.lookup(c)
	if sess == nil {
		return
	}
	png, err := sess.ExportPNG()
	if err != nil {
		InternalError(c, "导出失败: "+err.Error())
		return
	}
	c.Header("Content-Disposition", `attachment; filename="truck-sign-design.png"`)
	c.Data(200, "image/png", png)
}

// SaveDesignRequest 保存设计请求
type SaveDesignRequest struct {
	Name string `json:"name"`
}

// Save 把当前会话保存为命名设计
// POST /api/v1/sessions/:id/save
func (h *SessionHandler) Save(c *gin.Context) {
	var req SaveDesignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	design, err := h.svc.SaveDesign(c.Request.Context(), c.Param("id"), GetUserID(c), req.Name)
	if err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			NotFound(c, "会话不存在")
			return
		}
		InternalError(c, "保存设计失败: "+err.Error())
		return
	}
	Success(c, gin.H{"design": design})
}
