package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/rick-johnn/TruckSigns.com/internal/config"
	"github.com/rick-johnn/TruckSigns.com/internal/studio/canvas"
	"github.com/rick-johnn/TruckSigns.com/internal/studio/catalog"
	"github.com/rick-johnn/TruckSigns.com/internal/studio/entity"
	"github.com/rick-johnn/TruckSigns.com/internal/studio/session"
	"github.com/rick-johnn/TruckSigns.com/internal/studio/sse"
)

// SessionService 会话服务:编辑会话的注册表与生命周期管理
type SessionService struct {
	mu       sync.RWMutex
	sessions map[string]*session.Session

	designSvc *DesignService
	engine    canvas.Engine
	hub       *sse.Hub
	cfg       session.Config
	logger    *zap.Logger
}

// NewSessionService 创建会话服务
func NewSessionService(designSvc *DesignService, engine canvas.Engine, hub *sse.Hub, cfg *config.Config, logger *zap.Logger) *SessionService {
	sessCfg := session.DefaultConfig()
	if cfg.Canvas.MaxUploadMB > 0 {
		sessCfg.MaxUploadBytes = int64(cfg.Canvas.MaxUploadMB) << 20
	}
	if cfg.Canvas.ResizeDebounce > 0 {
		sessCfg.ResizeDebounce = cfg.Canvas.ResizeDebounce
	}
	return &SessionService{
		sessions:  make(map[string]*session.Session),
		designSvc: designSvc,
		engine:    engine,
		hub:       hub,
		cfg:       sessCfg,
		logger:    logger,
	}
}

// Start 开启新的空白编辑会话
func (s *SessionService) Start(accountID, sizeID string, containerWidth int) (*session.Session, error) {
	size, err := catalog.SizeFor(sizeID)
	if err != nil {
		return nil, err
	}

	sess := session.New(accountID, s.engine, s.hub, s.logger, s.cfg)
	if err := sess.Start(size, containerWidth, nil); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	s.logger.Info("Editing session started",
		zap.String("session_id", sess.ID),
		zap.String("account_id", accountID),
		zap.String("size", sizeID))
	return sess, nil
}

// StartFromDesign 从已保存的设计开启编辑会话
func (s *SessionService) StartFromDesign(ctx context.Context, accountID, designID string, containerWidth int) (*session.Session, error) {
	design, sc, err := s.designSvc.GetScene(ctx, accountID, designID)
	if err != nil {
		return nil, err
	}
	size, err := catalog.SizeFor(design.SizeID)
	if err != nil {
		// 旧数据中的未知尺寸退回默认
		size = catalog.Default()
	}

	sess := session.New(accountID, s.engine, s.hub, s.logger, s.cfg)
	if err := sess.Start(size, containerWidth, sc); err != nil {
		return nil, err
	}
	sess.SetDesign(design.ID, design.Name)

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	s.logger.Info("Editing session resumed from design",
		zap.String("session_id", sess.ID),
		zap.String("design_id", designID))
	return sess, nil
}

// Get 按ID获取会话,校验归属
func (s *SessionService) Get(sessionID, accountID string) (*session.Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if !ok || sess.AccountID != accountID {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// End 结束会话并从注册表移除
func (s *SessionService) End(sessionID, accountID string) error {
	sess, err := s.Get(sessionID, accountID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()

	return sess.End()
}

// SaveDesign 导出当前快照并保存为命名设计
// 保存同步等待导出完成,场景取保存时刻的快照
func (s *SessionService) SaveDesign(ctx context.Context, sessionID, accountID, name string) (*entity.Design, error) {
	sess, err := s.Get(sessionID, accountID)
	if err != nil {
		return nil, err
	}

	png, err := sess.ExportPNG()
	if err != nil {
		return nil, fmt.Errorf("export preview: %w", err)
	}

	designID, designName := sess.Design()
	if name != "" {
		designName = name
	}
	if designName == "" {
		designName = "Untitled Design " + time.Now().Format("2006-01-02 15:04")
	}

	design, err := s.designSvc.Save(ctx, accountID, &SaveRequest{
		ID:         designID,
		Name:       designName,
		SizeID:     sess.Size().ID,
		Scene:      sess.Scene(),
		PreviewPNG: png,
	})
	if err != nil {
		return nil, err
	}
	sess.SetDesign(design.ID, design.Name)
	return design, nil
}
