package canvas

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/gogpu/gg"
	"go.uber.org/zap"

	"github.com/rick-johnn/TruckSigns.com/internal/studio/scene"
)

// 文本默认行高倍数,与fabric.js的Textbox一致
const defaultLineHeight = 1.16

// GGEngine 基于gogpu/gg软件光栅化的渲染引擎
type GGEngine struct {
	fonts  *FontLibrary
	logger *zap.Logger
}

// NewGGEngine 创建渲染引擎
func NewGGEngine(fonts *FontLibrary, logger *zap.Logger) *GGEngine {
	return &GGEngine{fonts: fonts, logger: logger}
}

// CreateSurface 创建渲染表面
func (e *GGEngine) CreateSurface(width, height int) (Surface, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid surface dimensions %dx%d", width, height)
	}
	return &ggSurface{
		dc:     gg.NewContext(width, height),
		fonts:  e.fonts,
		logger: e.logger,
		images: make(map[string]*decodedImage),
	}, nil
}

// decodedImage 按元素ID缓存解码后的位图,src变化时重新解码
type decodedImage struct {
	src string
	buf *gg.ImageBuf
}

type ggSurface struct {
	mu     sync.Mutex
	dc     *gg.Context
	fonts  *FontLibrary
	logger *zap.Logger
	images map[string]*decodedImage
	closed bool
}

// ApplyScene 清空表面并按列表顺序重绘全部元素
func (s *ggSurface) ApplyScene(sc *scene.Scene) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSurfaceClosed
	}

	dc := s.dc
	dc.Identity()
	dc.ClearPath()

	// 背景
	if sc.Background == "" || sc.Background == "transparent" {
		dc.ClearWithColor(gg.RGBA{})
	} else {
		r, g, b, err := parseHexColor(sc.Background)
		if err != nil {
			return fmt.Errorf("scene background: %w", err)
		}
		dc.ClearWithColor(gg.RGB(r, g, b))
	}

	for _, el := range sc.Elements {
		if err := s.drawElement(el); err != nil {
			return err
		}
	}
	return nil
}

func (s *ggSurface) drawElement(el scene.Element) error {
	switch v := el.(type) {
	case *scene.Image:
		return s.drawImage(v)
	case *scene.Text:
		return s.drawText(v)
	case *scene.Rect:
		return s.drawRect(v)
	case *scene.Ellipse:
		return s.drawEllipse(v)
	case *scene.Line:
		return s.drawLine(v)
	default:
		return fmt.Errorf("%w: %T", ErrUnsupportedElementKind, el)
	}
}

// pushTransform 以元素包围盒中心为基准应用旋转与翻转,与Pop配对
func (s *ggSurface) pushTransform(b *scene.Base, w, h float64) {
	dc := s.dc
	dc.Push()
	cx := b.Left + w/2
	cy := b.Top + h/2
	if b.Rotation != 0 {
		dc.RotateAbout(b.Rotation*math.Pi/180, cx, cy)
	}
	if b.FlipX || b.FlipY {
		sx, sy := 1.0, 1.0
		if b.FlipX {
			sx = -1
		}
		if b.FlipY {
			sy = -1
		}
		dc.Translate(cx, cy)
		dc.Scale(sx, sy)
		dc.Translate(-cx, -cy)
	}
}

func (s *ggSurface) drawImage(el *scene.Image) error {
	buf, err := s.imageBuf(el)
	if err != nil {
		return err
	}
	w := el.Width * el.Scale
	h := el.Height * el.Scale
	s.pushTransform(&el.Base, w, h)
	s.dc.DrawImageEx(buf, gg.DrawImageOptions{
		X:             el.Base.Left,
		Y:             el.Base.Top,
		DstWidth:      w,
		DstHeight:     h,
		Interpolation: gg.InterpBilinear,
		Opacity:       el.Opacity,
	})
	s.dc.Pop()
	return nil
}

func (s *ggSurface) imageBuf(el *scene.Image) (*gg.ImageBuf, error) {
	if cached, ok := s.images[el.ID]; ok && cached.src == el.Src {
		return cached.buf, nil
	}
	img, err := decodeDataURI(el.Src)
	if err != nil {
		return nil, fmt.Errorf("element %s: %w", el.ID, err)
	}
	buf := gg.ImageBufFromImage(img)
	s.images[el.ID] = &decodedImage{src: el.Src, buf: buf}
	return buf, nil
}

func (s *ggSurface) drawText(el *scene.Text) error {
	dc := s.dc
	face := s.fonts.Face(el.FontFamily, el.Bold, el.Italic, el.FontSize)
	dc.SetFont(face)

	spacing := el.LineHeight
	if spacing <= 0 {
		spacing = defaultLineHeight
	}
	lines := dc.WordWrap(el.Content, el.Width)
	_, lineH := dc.MeasureString("M")
	boxH := float64(len(lines)) * lineH * spacing

	if err := s.setColor(el.Fill, el.Opacity); err != nil {
		return fmt.Errorf("element %s fill: %w", el.ID, err)
	}

	s.pushTransform(&el.Base, el.Width, boxH)

	var align gg.Align
	switch el.Align {
	case scene.AlignCenter:
		align = gg.AlignCenter
	case scene.AlignRight:
		align = gg.AlignRight
	default:
		align = gg.AlignLeft
	}
	dc.DrawStringWrapped(el.Content, el.Base.Left, el.Base.Top, 0, 0, el.Width, spacing, align)

	if el.Underline {
		dc.SetLineWidth(math.Max(1, el.FontSize/15))
		for i, line := range lines {
			lineW, _ := dc.MeasureString(line)
			x := el.Base.Left
			switch el.Align {
			case scene.AlignCenter:
				x += (el.Width - lineW) / 2
			case scene.AlignRight:
				x += el.Width - lineW
			}
			y := el.Base.Top + float64(i)*lineH*spacing + lineH*0.92
			dc.DrawLine(x, y, x+lineW, y)
			if err := dc.Stroke(); err != nil {
				s.dc.Pop()
				return fmt.Errorf("element %s underline: %w", el.ID, err)
			}
		}
	}

	dc.Pop()
	return nil
}

func (s *ggSurface) drawRect(el *scene.Rect) error {
	s.pushTransform(&el.Base, el.Width, el.Height)
	if el.CornerRadius > 0 {
		s.dc.DrawRoundedRectangle(el.Base.Left, el.Base.Top, el.Width, el.Height, el.CornerRadius)
	} else {
		s.dc.DrawRectangle(el.Base.Left, el.Base.Top, el.Width, el.Height)
	}
	err := s.paintShape(el.Fill, el.Stroke, el.StrokeWidth, el.Opacity)
	s.dc.Pop()
	if err != nil {
		return fmt.Errorf("element %s: %w", el.ID, err)
	}
	return nil
}

func (s *ggSurface) drawEllipse(el *scene.Ellipse) error {
	w := el.RadiusX * 2
	h := el.RadiusY * 2
	s.pushTransform(&el.Base, w, h)
	s.dc.DrawEllipse(el.Base.Left+el.RadiusX, el.Base.Top+el.RadiusY, el.RadiusX, el.RadiusY)
	err := s.paintShape(el.Fill, el.Stroke, el.StrokeWidth, el.Opacity)
	s.dc.Pop()
	if err != nil {
		return fmt.Errorf("element %s: %w", el.ID, err)
	}
	return nil
}

func (s *ggSurface) drawLine(el *scene.Line) error {
	minX := math.Min(el.X1, el.X2)
	maxX := math.Max(el.X1, el.X2)
	minY := math.Min(el.Y1, el.Y2)
	maxY := math.Max(el.Y1, el.Y2)
	s.pushTransform(&el.Base, maxX-minX, maxY-minY)

	var err error
	if el.StrokeWidth > 0 {
		if err = s.setColor(el.Stroke, el.Opacity); err == nil {
			s.dc.SetLineWidth(el.StrokeWidth)
			s.dc.DrawLine(el.Base.Left+el.X1, el.Base.Top+el.Y1, el.Base.Left+el.X2, el.Base.Top+el.Y2)
			err = s.dc.Stroke()
		}
	}
	s.dc.Pop()
	if err != nil {
		return fmt.Errorf("element %s: %w", el.ID, err)
	}
	return nil
}

// paintShape 先填充后描边,当前路径已就绪
func (s *ggSurface) paintShape(fill, stroke string, strokeWidth, opacity float64) error {
	dc := s.dc
	hasFill := fill != "" && fill != "transparent"
	hasStroke := strokeWidth > 0 && stroke != "" && stroke != "transparent"

	if hasFill {
		if err := s.setColor(fill, opacity); err != nil {
			return err
		}
		if hasStroke {
			if err := dc.FillPreserve(); err != nil {
				return err
			}
		} else {
			return dc.Fill()
		}
	}
	if hasStroke {
		if err := s.setColor(stroke, opacity); err != nil {
			return err
		}
		dc.SetLineWidth(strokeWidth)
		return dc.Stroke()
	}
	dc.ClearPath()
	return nil
}

func (s *ggSurface) setColor(hex string, opacity float64) error {
	r, g, b, err := parseHexColor(hex)
	if err != nil {
		return err
	}
	if opacity <= 0 || opacity > 1 {
		opacity = 1
	}
	s.dc.SetRGBA(r, g, b, opacity)
	return nil
}

// Resize 只重建表面边界,元素坐标不变,调用方负责随后重绘
func (s *ggSurface) Resize(width, height int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSurfaceClosed
	}
	return s.dc.Resize(width, height)
}

// ExportPNG 同步导出当前像素快照
func (s *ggSurface) ExportPNG() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrSurfaceClosed
	}
	var buf bytes.Buffer
	if err := s.dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// Bounds 当前表面像素尺寸
func (s *ggSurface) Bounds() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dc.Width(), s.dc.Height()
}

// Close 释放渲染资源,之后所有操作返回ErrSurfaceClosed
func (s *ggSurface) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.images = nil
	return s.dc.Close()
}

// decodeDataURI 解码data URI内嵌位图
func decodeDataURI(src string) (image.Image, error) {
	payload := src
	if strings.HasPrefix(src, "data:") {
		i := strings.IndexByte(src, ',')
		if i < 0 {
			return nil, fmt.Errorf("malformed data uri")
		}
		payload = src[i+1:]
	}
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("decode data uri: %w", err)
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode bitmap: %w", err)
	}
	return img, nil
}

// parseHexColor 解析 #rgb / #rrggbb / #rrggbbaa,返回0-1分量(忽略aa,透明度单独处理)
func parseHexColor(hex string) (r, g, b float64, err error) {
	h := strings.TrimPrefix(strings.TrimSpace(hex), "#")
	switch len(h) {
	case 3:
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	case 6, 8:
	default:
		return 0, 0, 0, fmt.Errorf("invalid color %q", hex)
	}
	v, perr := strconv.ParseUint(h[:6], 16, 32)
	if perr != nil {
		return 0, 0, 0, fmt.Errorf("invalid color %q", hex)
	}
	r = float64(v>>16&0xff) / 255
	g = float64(v>>8&0xff) / 255
	b = float64(v&0xff) / 255
	return r, g, b, nil
}
