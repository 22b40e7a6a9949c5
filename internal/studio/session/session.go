// Package session 编辑会话:单个用户对单个设计的活动编辑状态机
package session

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rick-johnn/TruckSigns.com/internal/studio/canvas"
	"github.com/rick-johnn/TruckSigns.com/internal/studio/catalog"
	"github.com/rick-johnn/TruckSigns.com/internal/studio/scene"
	"github.com/rick-johnn/TruckSigns.com/internal/studio/sse"
	"github.com/rick-johnn/TruckSigns.com/internal/studio/template"
)

// 错误定义
var (
	ErrNotEditing           = errors.New("session is not in editing state")
	ErrInvalidReference     = errors.New("selection references a missing element")
	ErrBitmapDecode         = errors.New("bitmap decode failed")
	ErrUnknownShapeKind     = errors.New("unknown shape kind")
	ErrConfirmationRequired = errors.New("reset requires explicit confirmation")
)

// State 会话状态
type State int

const (
	StateEmpty State = iota
	StateEditing
)

// 新增元素的默认属性,与设计工具前端一致
const (
	defaultTextContent = "Your Text Here"
	defaultTextFont    = "Arial, sans-serif"
	defaultTextSize    = 32
	defaultTextFill    = "#000000"
	textLineHeight     = 1.16

	defaultRectW    = 150
	defaultRectH    = 100
	defaultRectFill = "#1e3a5f"

	defaultCircleRadius = 50
	defaultCircleFill   = "#b91c1c"

	defaultLineLength = 150
	defaultLineWidth  = 3
	defaultStroke     = "#000000"
)

// 插入图片的包围盒约束:表面宽的50%,高的80%,且不放大
const (
	imageMaxWidthRatio  = 0.5
	imageMaxHeightRatio = 0.8
)

// Config 会话配置
type Config struct {
	MaxUploadBytes int64         // 上传位图大小上限
	ResizeDebounce time.Duration // 尺寸变更防抖间隔,0为立即生效
}

// DefaultConfig 默认会话配置
func DefaultConfig() Config {
	return Config{
		MaxUploadBytes: 100 << 20, // 100MB
		ResizeDebounce: 150 * time.Millisecond,
	}
}

// Session 编辑会话状态机: Empty <-> Editing(scene, selection)
// 所有变更操作串行执行,每次变更结束于一次渲染;渲染进行中到达的
// 渲染请求只保留最近一次(合并冗余渲染)
type Session struct {
	mu sync.Mutex

	ID        string
	AccountID string

	state          State
	size           catalog.SignSize
	containerWidth int
	scene          *scene.Scene
	selection      string // 元素ID,空串表示无选中
	surface        canvas.Surface

	designID   string
	designName string

	engine canvas.Engine
	hub    *sse.Hub
	logger *zap.Logger
	cfg    Config

	rendering    bool
	renderQueued bool
	resizeTimer  *time.Timer
}

// New 创建空状态会话
func New(accountID string, engine canvas.Engine, hub *sse.Hub, logger *zap.Logger, cfg Config) *Session {
	return &Session{
		ID:        uuid.New().String(),
		AccountID: accountID,
		engine:    engine,
		hub:       hub,
		logger:    logger,
		cfg:       cfg,
	}
}

// Start Empty -> Editing:创建渲染表面并装入空场景或既有场景
// 既有场景按其保存时的像素尺寸恢复,保证渲染结果与保存时一致
func (s *Session) Start(size catalog.SignSize, containerWidth int, existing *scene.Scene) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateEmpty {
		return errors.New("session already started")
	}

	w, h, err := catalog.DeriveDimensions(containerWidth, size)
	if err != nil {
		return err
	}
	if existing != nil && existing.Width > 0 && existing.Height > 0 {
		w, h = existing.Width, existing.Height
	}

	surface, err := s.engine.CreateSurface(w, h)
	if err != nil {
		return fmt.Errorf("create surface: %w", err)
	}

	s.surface = surface
	s.size = size
	s.containerWidth = containerWidth
	s.selection = ""
	if existing != nil {
		s.scene = existing.Clone()
	} else {
		s.scene = scene.New(w, h)
	}
	s.state = StateEditing

	if err := s.renderLocked(); err != nil {
		surface.Close()
		s.surface = nil
		s.state = StateEmpty
		return err
	}
	s.publish("surface_ready", map[string]any{"width": w, "height": h})
	return nil
}

// End Editing -> Empty:释放渲染表面,丢弃未保存的变更
func (s *Session) End() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateEditing {
		return nil
	}
	if s.resizeTimer != nil {
		s.resizeTimer.Stop()
		s.resizeTimer = nil
	}
	err := s.surface.Close()
	s.surface = nil
	s.scene = nil
	s.selection = ""
	s.state = StateEmpty
	s.publish("session_ended", nil)
	return err
}

// State 当前状态
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Scene 当前场景的深拷贝
func (s *Session) Scene() *scene.Scene {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.scene == nil {
		return nil
	}
	return s.scene.Clone()
}

// Selection 当前选中的元素ID,空串表示无选中
func (s *Session) Selection() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selection
}

// Size 当前标牌尺寸
func (s *Session) Size() catalog.SignSize {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.size
}

// SetDesign 绑定已加载的设计
func (s *Session) SetDesign(id, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.designID = id
	s.designName = name
}

// Design 返回绑定的设计ID与名称
func (s *Session) Design() (id, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.designID, s.designName
}

// Select 更新选中元素;引用过期时清除选中并返回ErrInvalidReference
func (s *Session) Select(elementID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateEditing {
		return ErrNotEditing
	}
	if elementID == "" {
		s.selection = ""
		s.publish("selection_changed", map[string]any{"element_id": nil})
		return nil
	}
	if s.scene.Find(elementID) == nil {
		s.selection = ""
		s.publish("selection_changed", map[string]any{"element_id": nil})
		return fmt.Errorf("%w: %s", ErrInvalidReference, elementID)
	}
	s.selection = elementID
	s.publish("selection_changed", map[string]any{"element_id": elementID})
	return nil
}

// AddImage 校验并插入上传位图:缩放至不超过表面宽50%/高80%且不放大,
// 居中放置,加入场景并选中
func (s *Session) AddImage(data []byte) (scene.Element, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateEditing {
		return nil, ErrNotEditing
	}
	if s.cfg.MaxUploadBytes > 0 && int64(len(data)) > s.cfg.MaxUploadBytes {
		return nil, fmt.Errorf("%w: image exceeds %d byte limit", ErrBitmapDecode, s.cfg.MaxUploadBytes)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBitmapDecode, err)
	}
	bounds := img.Bounds()
	imgW := float64(bounds.Dx())
	imgH := float64(bounds.Dy())
	if imgW <= 0 || imgH <= 0 {
		return nil, fmt.Errorf("%w: empty bitmap", ErrBitmapDecode)
	}

	surfaceW := float64(s.scene.Width)
	surfaceH := float64(s.scene.Height)
	scale := minf(minf(surfaceW*imageMaxWidthRatio/imgW, surfaceH*imageMaxHeightRatio/imgH), 1)

	mime := http.DetectContentType(data)
	src := "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)

	el := &scene.Image{
		Base:   s.centeredBase(imgW*scale, imgH*scale),
		Src:    src,
		Width:  imgW,
		Height: imgH,
		Scale:  scale,
	}
	return s.insertLocked(el)
}

// AddText 插入默认文本框,居中并选中
func (s *Session) AddText() (scene.Element, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateEditing {
		return nil, ErrNotEditing
	}

	boxW := float64(s.scene.Width) * 0.4
	boxH := float64(defaultTextSize) * textLineHeight
	el := &scene.Text{
		Base:       s.centeredBase(boxW, boxH),
		Content:    defaultTextContent,
		FontFamily: defaultTextFont,
		FontSize:   defaultTextSize,
		Fill:       defaultTextFill,
		Align:      scene.AlignCenter,
		Width:      boxW,
	}
	return s.insertLocked(el)
}

// AddShape 插入默认形状(rect/circle/line),居中并选中
func (s *Session) AddShape(kind string) (scene.Element, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateEditing {
		return nil, ErrNotEditing
	}

	var el scene.Element
	switch kind {
	case "rect":
		el = &scene.Rect{
			Base:   s.centeredBase(defaultRectW, defaultRectH),
			Width:  defaultRectW,
			Height: defaultRectH,
			Fill:   defaultRectFill,
			Stroke: defaultStroke,
		}
	case "circle":
		el = &scene.Ellipse{
			Base:    s.centeredBase(defaultCircleRadius*2, defaultCircleRadius*2),
			RadiusX: defaultCircleRadius,
			RadiusY: defaultCircleRadius,
			Fill:    defaultCircleFill,
			Stroke:  defaultStroke,
		}
	case "line":
		el = &scene.Line{
			Base:        s.centeredBase(defaultLineLength, 0),
			X2:          defaultLineLength,
			Stroke:      defaultStroke,
			StrokeWidth: defaultLineWidth,
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownShapeKind, kind)
	}
	return s.insertLocked(el)
}

// UpdateSelected 合并部分属性到选中元素
func (s *Session) UpdateSelected(attrs map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateEditing {
		return ErrNotEditing
	}
	if s.selection == "" {
		return nil
	}
	if err := s.scene.Update(s.selection, attrs); err != nil {
		return err
	}
	return s.renderLocked()
}

// DeleteSelected 删除选中元素并清除选中,无选中时无操作
func (s *Session) DeleteSelected() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateEditing {
		return ErrNotEditing
	}
	if s.selection == "" {
		return nil
	}
	s.scene.Remove(s.selection)
	s.selection = ""
	s.publish("selection_changed", map[string]any{"element_id": nil})
	return s.renderLocked()
}

// DuplicateSelected 复制选中元素并选中副本,无选中时无操作
func (s *Session) DuplicateSelected() (scene.Element, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateEditing {
		return nil, ErrNotEditing
	}
	if s.selection == "" {
		return nil, nil
	}
	copied, err := s.scene.Duplicate(s.selection, uuid.New().String())
	if err != nil {
		return nil, err
	}
	s.selection = copied.Common().ID
	s.publish("selection_changed", map[string]any{"element_id": s.selection})
	return copied, s.renderLocked()
}

// FlipSelectedHorizontal 水平翻转选中元素,无选中时无操作
func (s *Session) FlipSelectedHorizontal() error {
	return s.mutateSelected(func(e scene.Element) {
		e.Common().FlipX = !e.Common().FlipX
	})
}

// FlipSelectedVertical 垂直翻转选中元素,无选中时无操作
func (s *Session) FlipSelectedVertical() error {
	return s.mutateSelected(func(e scene.Element) {
		e.Common().FlipY = !e.Common().FlipY
	})
}

func (s *Session) mutateSelected(mutate func(scene.Element)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateEditing {
		return ErrNotEditing
	}
	if s.selection == "" {
		return nil
	}
	el := s.scene.Find(s.selection)
	if el == nil {
		id := s.selection
		s.selection = ""
		return fmt.Errorf("%w: %s", ErrInvalidReference, id)
	}
	mutate(el)
	return s.renderLocked()
}

// BringSelectedForward 选中元素上移一层,无选中时无操作
func (s *Session) BringSelectedForward() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateEditing {
		return ErrNotEditing
	}
	if s.selection == "" {
		return nil
	}
	if err := s.scene.MoveForward(s.selection); err != nil {
		return err
	}
	return s.renderLocked()
}

// SendSelectedBackward 选中元素下移一层,无选中时无操作
func (s *Session) SendSelectedBackward() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateEditing {
		return ErrNotEditing
	}
	if s.selection == "" {
		return nil
	}
	if err := s.scene.MoveBackward(s.selection); err != nil {
		return err
	}
	return s.renderLocked()
}

// ApplyTemplate 以模板整体替换场景(原子操作)并清除选中
// 未知模板失败,场景保持原状
func (s *Session) ApplyTemplate(templateID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateEditing {
		return ErrNotEditing
	}
	elements, err := template.Instantiate(templateID, s.scene.Width, s.scene.Height)
	if err != nil {
		return err
	}
	s.scene.Replace(elements)
	s.selection = ""
	s.publish("selection_changed", map[string]any{"element_id": nil})
	return s.renderLocked()
}

// ChangeSize 按新标牌尺寸重算表面像素尺寸并缩放表面边界
// 元素坐标保持不变,可能视觉上溢出新边界;连续变更防抖到最终尺寸
func (s *Session) ChangeSize(size catalog.SignSize, containerWidth int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateEditing {
		return ErrNotEditing
	}
	if _, _, err := catalog.DeriveDimensions(containerWidth, size); err != nil {
		return err
	}
	s.size = size
	s.containerWidth = containerWidth

	if s.cfg.ResizeDebounce <= 0 {
		return s.applyResizeLocked()
	}
	if s.resizeTimer != nil {
		s.resizeTimer.Stop()
	}
	s.resizeTimer = time.AfterFunc(s.cfg.ResizeDebounce, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.state != StateEditing {
			return
		}
		if err := s.applyResizeLocked(); err != nil {
			s.logger.Error("Failed to apply debounced resize",
				zap.String("session_id", s.ID), zap.Error(err))
		}
	})
	return nil
}

func (s *Session) applyResizeLocked() error {
	w, h, err := catalog.DeriveDimensions(s.containerWidth, s.size)
	if err != nil {
		return err
	}
	if err := s.surface.Resize(w, h); err != nil {
		return fmt.Errorf("resize surface: %w", err)
	}
	s.scene.Width = w
	s.scene.Height = h
	return s.renderLocked()
}

// ResetCanvas 清空场景,不可撤销,必须显式确认
func (s *Session) ResetCanvas(confirm bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateEditing {
		return ErrNotEditing
	}
	if !confirm {
		return ErrConfirmationRequired
	}
	s.scene.Clear()
	s.selection = ""
	s.publish("selection_changed", map[string]any{"element_id": nil})
	return s.renderLocked()
}

// ExportPNG 导出当前表面像素快照,保存和询价预览共用
func (s *Session) ExportPNG() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateEditing {
		return nil, ErrNotEditing
	}
	return s.surface.ExportPNG()
}

func (s *Session) centeredBase(w, h float64) scene.Base {
	return scene.Base{
		ID:      uuid.New().String(),
		Left:    float64(s.scene.Width)/2 - w/2,
		Top:     float64(s.scene.Height)/2 - h/2,
		Opacity: 1,
	}
}

func (s *Session) insertLocked(el scene.Element) (scene.Element, error) {
	s.scene.Add(el)
	s.selection = el.Common().ID
	if err := s.renderLocked(); err != nil {
		// 渲染失败时回滚插入,保持场景与表面一致
		s.scene.Remove(el.Common().ID)
		s.selection = ""
		return nil, err
	}
	s.publish("selection_changed", map[string]any{"element_id": s.selection})
	return el, nil
}

// renderLocked 渲染一次当前场景;渲染期间的后续请求合并为一次补渲染
func (s *Session) renderLocked() error {
	if s.rendering {
		s.renderQueued = true
		return nil
	}
	s.rendering = true
	err := s.surface.ApplyScene(s.scene)
	for err == nil && s.renderQueued {
		s.renderQueued = false
		err = s.surface.ApplyScene(s.scene)
	}
	s.rendering = false
	if err != nil {
		return fmt.Errorf("apply scene: %w", err)
	}
	s.publish("scene_applied", map[string]any{"elements": len(s.scene.Elements)})
	return nil
}

func (s *Session) publish(eventType string, payload map[string]any) {
	if s.hub == nil {
		return
	}
	s.hub.PublishSessionEvent(s.AccountID, s.ID, eventType, payload)
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
