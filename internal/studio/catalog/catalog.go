// Package catalog 固定的标牌尺寸目录与画布像素尺寸推导
package catalog

import (
	"errors"
	"fmt"
)

// 错误定义
var (
	ErrSizeNotFound = errors.New("sign size not found")
)

// SignSize 标牌物理尺寸,按美国皮卡货箱标准尺寸
type SignSize struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	TruckBed    string `json:"truck_bed"`
	WidthUnits  int    `json:"width"`  // 英寸
	HeightUnits int    `json:"height"` // 英寸
	WidthLabel  string `json:"width_label"`
	HeightLabel string `json:"height_label"`
	Description string `json:"description"`
	Recommended bool   `json:"recommended"`
}

// Ratio 宽高比
func (s SignSize) Ratio() float64 {
	return float64(s.WidthUnits) / float64(s.HeightUnits)
}

// Label 展示用标签,如 66" x 24" (5.5 ft)
func (s SignSize) Label() string {
	return fmt.Sprintf("%s x %s (%s)", s.WidthLabel, s.HeightLabel, s.TruckBed)
}

var signSizes = []SignSize{
	{
		ID:          "small",
		Name:        "Short Bed",
		TruckBed:    "5.5 ft",
		WidthUnits:  66,
		HeightUnits: 24,
		WidthLabel:  `66"`,
		HeightLabel: `24"`,
		Description: "Perfect for compact and mid-size trucks like Ford F-150, RAM 1500, Chevy Silverado 1500",
	},
	{
		ID:          "medium",
		Name:        "Standard Bed",
		TruckBed:    "6.5 ft",
		WidthUnits:  78,
		HeightUnits: 24,
		WidthLabel:  `78"`,
		HeightLabel: `24"`,
		Description: "Our most popular size - fits most full-size trucks including Ford F-150, RAM 1500, GMC Sierra",
		Recommended: true,
	},
	{
		ID:          "large",
		Name:        "Long Bed",
		TruckBed:    "8 ft",
		WidthUnits:  96,
		HeightUnits: 24,
		WidthLabel:  `96"`,
		HeightLabel: `24"`,
		Description: "Maximum visibility for heavy-duty trucks like Ford F-250/350, RAM 2500/3500, Chevy Silverado HD",
	},
}

// All 返回全部支持的尺寸
func All() []SignSize {
	out := make([]SignSize, len(signSizes))
	copy(out, signSizes)
	return out
}

// SizeFor 按ID查找尺寸
func SizeFor(id string) (SignSize, error) {
	for _, s := range signSizes {
		if s.ID == id {
			return s, nil
		}
	}
	return SignSize{}, fmt.Errorf("%w: %s", ErrSizeNotFound, id)
}

// Default 默认推荐尺寸
func Default() SignSize {
	for _, s := range signSizes {
		if s.Recommended {
			return s
		}
	}
	return signSizes[0]
}

const (
	// 画布容器两侧留白
	chromePadding = 48
	// 渲染表面最大像素高度
	maxSurfaceHeight = 400
)

// DeriveDimensions 由容器宽度和标牌宽高比推导渲染表面像素尺寸
// w = W-48, h = w/ratio; 高度超过上限400时以高度为准反推宽度; 最后同时向下取整
// 同样输入必然得到同样输出,且绝不产生非正值
func DeriveDimensions(containerWidth int, size SignSize) (width, height int, err error) {
	ratio := size.Ratio()
	w := float64(containerWidth - chromePadding)
	h := w / ratio
	if h > maxSurfaceHeight {
		h = maxSurfaceHeight
		w = h * ratio
	}
	width = int(w)
	height = int(h)
	if width <= 0 || height <= 0 {
		return 0, 0, fmt.Errorf("container width %d too small for size %s", containerWidth, size.ID)
	}
	return width, height, nil
}

// Font 设计工具可用字体
type Font struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Fonts 可用字体列表
func Fonts() []Font {
	return []Font{
		{Name: "Arial", Value: "Arial, sans-serif"},
		{Name: "Helvetica", Value: "Helvetica, Arial, sans-serif"},
		{Name: "Georgia", Value: "Georgia, serif"},
		{Name: "Times New Roman", Value: `"Times New Roman", Times, serif`},
		{Name: "Verdana", Value: "Verdana, Geneva, sans-serif"},
		{Name: "Impact", Value: "Impact, Charcoal, sans-serif"},
		{Name: "Comic Sans MS", Value: `"Comic Sans MS", cursive`},
		{Name: "Trebuchet MS", Value: `"Trebuchet MS", Helvetica, sans-serif`},
		{Name: "Courier New", Value: `"Courier New", Courier, monospace`},
	}
}

// PresetColors 设计工具预设颜色
func PresetColors() []string {
	return []string{
		"#000000", // Black
		"#FFFFFF", // White
		"#1e3a5f", // Navy
		"#b91c1c", // Red
		"#f59e0b", // Amber
		"#10b981", // Emerald
		"#3b82f6", // Blue
		"#8b5cf6", // Violet
		"#ec4899", // Pink
		"#6b7280", // Gray
	}
}
