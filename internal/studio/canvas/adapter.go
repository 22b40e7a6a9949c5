// Package canvas 场景模型与2D渲染引擎之间的边界
package canvas

import (
	"errors"

	"github.com/rick-johnn/TruckSigns.com/internal/studio/scene"
)

// 错误定义
var (
	ErrUnsupportedElementKind = errors.New("unsupported element kind")
	ErrSurfaceClosed          = errors.New("surface is closed")
)

// Surface 渲染表面,由一个编辑会话独占
// ApplyScene按列表顺序绘制(越靠后越上层);Resize只改变表面边界,
// 不缩放元素坐标;ExportPNG反映最后一次ApplyScene的精确状态
type Surface interface {
	ApplyScene(s *scene.Scene) error
	Resize(width, height int) error
	ExportPNG() ([]byte, error)
	Bounds() (width, height int)
	Close() error
}

// Engine 渲染引擎,可替换实现
type Engine interface {
	CreateSurface(width, height int) (Surface, error)
}
