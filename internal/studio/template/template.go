// Package template 预设模板:按目标画布像素尺寸生成初始元素列表
package template

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/rick-johnn/TruckSigns.com/internal/studio/scene"
)

// 错误定义
var (
	ErrUnknownTemplate = errors.New("unknown template")
)

// Template 模板元数据,build为(宽,高)的纯函数,元素位置按宽高比例计算
type Template struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`

	build func(w, h float64) []scene.Element
}

var templates = []Template{
	{
		ID:          "blank",
		Name:        "Blank Canvas",
		Description: "Start from scratch",
		build:       func(w, h float64) []scene.Element { return []scene.Element{} },
	},
	{
		ID:          "business-card",
		Name:        "Business Card",
		Description: "Logo + contact info layout",
		build:       buildBusinessCard,
	},
	{
		ID:          "bold-text",
		Name:        "Bold Text",
		Description: "Large company name",
		build:       buildBoldText,
	},
	{
		ID:          "image-focused",
		Name:        "Image Focused",
		Description: "Large image area",
		build:       buildImageFocused,
	},
	{
		ID:          "split-layout",
		Name:        "Split Layout",
		Description: "Image left, text right",
		build:       buildSplitLayout,
	},
}

// List 返回模板元数据列表
func List() []Template {
	out := make([]Template, len(templates))
	copy(out, templates)
	return out
}

// Instantiate 按模板ID和画布像素尺寸生成元素列表
// 未知模板返回ErrUnknownTemplate,不产生任何部分结果
func Instantiate(id string, widthPx, heightPx int) ([]scene.Element, error) {
	for _, t := range templates {
		if t.ID == id {
			return t.build(float64(widthPx), float64(heightPx)), nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownTemplate, id)
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func base(left, top float64) scene.Base {
	return scene.Base{
		ID:      uuid.New().String(),
		Left:    left,
		Top:     top,
		Opacity: 1,
	}
}

func textbox(left, top, width, fontSize float64, content, family, fill string, bold bool, align scene.Align) *scene.Text {
	return &scene.Text{
		Base:       base(left, top),
		Content:    content,
		FontFamily: family,
		FontSize:   fontSize,
		Fill:       fill,
		Bold:       bold,
		Align:      align,
		Width:      width,
	}
}

func buildBusinessCard(w, h float64) []scene.Element {
	logoBox := &scene.Rect{
		Base:         base(w*0.65, h*0.1),
		Width:        w * 0.3,
		Height:       h * 0.8,
		Fill:         "#f3f4f6",
		Stroke:       "#d1d5db",
		StrokeWidth:  1,
		CornerRadius: 5,
	}
	return []scene.Element{
		textbox(w*0.05, h*0.15, w*0.5, minf(h*0.25, 48), "YOUR COMPANY", "Arial", "#1e3a5f", true, scene.AlignLeft),
		textbox(w*0.05, h*0.55, w*0.4, minf(h*0.15, 24), "(555) 123-4567", "Arial", "#333333", false, scene.AlignLeft),
		textbox(w*0.05, h*0.75, w*0.4, minf(h*0.12, 20), "www.yoursite.com", "Arial", "#666666", false, scene.AlignLeft),
		logoBox,
		textbox(w*0.7, h*0.35, w*0.2, minf(h*0.12, 18), "LOGO\nHERE", "Arial", "#9ca3af", false, scene.AlignCenter),
	}
}

func buildBoldText(w, h float64) []scene.Element {
	background := &scene.Rect{
		Base:   base(0, 0),
		Width:  w,
		Height: h,
		Fill:   "#1e3a5f",
	}
	return []scene.Element{
		background,
		textbox(w*0.05, h*0.25, w*0.9, minf(h*0.35, 60), "YOUR COMPANY NAME", "Impact", "#ffffff", true, scene.AlignCenter),
		textbox(w*0.05, h*0.7, w*0.9, minf(h*0.15, 28), "CALL: (555) 123-4567", "Arial", "#fbbf24", false, scene.AlignCenter),
	}
}

func buildImageFocused(w, h float64) []scene.Element {
	imageArea := &scene.Rect{
		Base:         base(w*0.02, h*0.05),
		Width:        w * 0.6,
		Height:       h * 0.9,
		Fill:         "#f3f4f6",
		Stroke:       "#d1d5db",
		StrokeWidth:  2,
		CornerRadius: 5,
	}
	return []scene.Element{
		imageArea,
		textbox(w*0.15, h*0.3, w*0.35, minf(h*0.15, 24), "DROP\nIMAGE\nHERE", "Arial", "#9ca3af", false, scene.AlignCenter),
		textbox(w*0.65, h*0.15, w*0.32, minf(h*0.18, 28), "Your Business", "Arial", "#1e3a5f", true, scene.AlignLeft),
		textbox(w*0.65, h*0.4, w*0.32, minf(h*0.1, 16), "Quality Service Since 2020", "Arial", "#666666", false, scene.AlignLeft),
		textbox(w*0.65, h*0.65, w*0.32, minf(h*0.12, 20), "(555) 123-4567", "Arial", "#b91c1c", true, scene.AlignLeft),
	}
}

func buildSplitLayout(w, h float64) []scene.Element {
	leftPanel := &scene.Rect{
		Base:   base(0, 0),
		Width:  w * 0.5,
		Height: h,
		Fill:   "#b91c1c",
	}
	services := textbox(w*0.55, h*0.45, w*0.4, minf(h*0.1, 16),
		"Professional Services\nFree Estimates\nLicensed & Insured", "Arial", "#666666", false, scene.AlignLeft)
	services.LineHeight = 1.4
	return []scene.Element{
		leftPanel,
		textbox(w*0.1, h*0.25, w*0.3, minf(h*0.15, 24), "ADD\nYOUR\nLOGO", "Arial", "#ffffff", true, scene.AlignCenter),
		textbox(w*0.55, h*0.15, w*0.4, minf(h*0.2, 32), "YOUR COMPANY", "Arial", "#1e3a5f", true, scene.AlignLeft),
		services,
		textbox(w*0.55, h*0.8, w*0.4, minf(h*0.12, 20), "(555) 123-4567", "Arial", "#b91c1c", true, scene.AlignLeft),
	}
}
