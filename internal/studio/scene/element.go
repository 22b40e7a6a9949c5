package scene

// Kind 元素类型
type Kind string

const (
	KindImage   Kind = "image"
	KindText    Kind = "text"
	KindRect    Kind = "rect"
	KindEllipse Kind = "ellipse"
	KindLine    Kind = "line"
)

// Align 文本水平对齐方式
type Align string

const (
	AlignLeft   Align = "left"
	AlignCenter Align = "center"
	AlignRight  Align = "right"
)

// Base 所有元素的公共属性
type Base struct {
	ID       string  `json:"id"`
	Left     float64 `json:"left"`
	Top      float64 `json:"top"`
	Rotation float64 `json:"rotation"` // 角度
	FlipX    bool    `json:"flipX"`
	FlipY    bool    `json:"flipY"`
	Opacity  float64 `json:"opacity"` // 0-1
}

// Common 返回公共属性,供Element接口使用
func (b *Base) Common() *Base {
	return b
}

// Element 场景元素,封闭的变体集合: Image/Text/Rect/Ellipse/Line
// 列表顺序即堆叠顺序,末尾为最上层
type Element interface {
	Kind() Kind
	Common() *Base
	Clone() Element
}

// Image 图片元素,源位图以data URI形式内嵌
type Image struct {
	Base
	Src    string  `json:"src"`
	Width  float64 `json:"width"`  // 原始像素宽
	Height float64 `json:"height"` // 原始像素高
	Scale  float64 `json:"scale"`
}

func (e *Image) Kind() Kind { return KindImage }

func (e *Image) Clone() Element {
	c := *e
	return &c
}

// Text 文本框元素
type Text struct {
	Base
	Content    string  `json:"text"`
	FontFamily string  `json:"fontFamily"`
	FontSize   float64 `json:"fontSize"` // px
	Fill       string  `json:"fill"`
	Bold       bool    `json:"bold"`
	Italic     bool    `json:"italic"`
	Underline  bool    `json:"underline"`
	Align      Align   `json:"align"`
	Width      float64 `json:"width"`      // 换行盒宽度
	LineHeight float64 `json:"lineHeight"` // 行高倍数,0取默认
}

func (e *Text) Kind() Kind { return KindText }

func (e *Text) Clone() Element {
	c := *e
	return &c
}

// Rect 矩形元素
type Rect struct {
	Base
	Width        float64 `json:"width"`
	Height       float64 `json:"height"`
	Fill         string  `json:"fill"` // 颜色或"transparent"
	Stroke       string  `json:"stroke"`
	StrokeWidth  float64 `json:"strokeWidth"`
	CornerRadius float64 `json:"cornerRadius"`
}

func (e *Rect) Kind() Kind { return KindRect }

func (e *Rect) Clone() Element {
	c := *e
	return &c
}

// Ellipse 椭圆元素,rx==ry时为圆
type Ellipse struct {
	Base
	RadiusX     float64 `json:"rx"`
	RadiusY     float64 `json:"ry"`
	Fill        string  `json:"fill"`
	Stroke      string  `json:"stroke"`
	StrokeWidth float64 `json:"strokeWidth"`
}

func (e *Ellipse) Kind() Kind { return KindEllipse }

func (e *Ellipse) Clone() Element {
	c := *e
	return &c
}

// Line 线段元素,端点相对于(Left,Top)
type Line struct {
	Base
	X1          float64 `json:"x1"`
	Y1          float64 `json:"y1"`
	X2          float64 `json:"x2"`
	Y2          float64 `json:"y2"`
	Stroke      string  `json:"stroke"`
	StrokeWidth float64 `json:"strokeWidth"`
}

func (e *Line) Kind() Kind { return KindLine }

func (e *Line) Clone() Element {
	c := *e
	return &c
}
