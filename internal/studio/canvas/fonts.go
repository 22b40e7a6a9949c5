package canvas

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gogpu/gg/text"
	"go.uber.org/zap"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"
)

// FontLibrary 字体库:内置Go字体兜底,可选从目录加载TTF
// 目录中文件名(去扩展名)即字体族名,如 Impact.ttf -> "Impact"
type FontLibrary struct {
	regular    *text.FontSource
	bold       *text.FontSource
	italic     *text.FontSource
	boldItalic *text.FontSource
	families   map[string]*text.FontSource
}

// NewFontLibrary 创建字体库,dir为空时只使用内置字体
func NewFontLibrary(dir string, logger *zap.Logger) (*FontLibrary, error) {
	regular, err := text.NewFontSource(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("load builtin regular font: %w", err)
	}
	bold, err := text.NewFontSource(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("load builtin bold font: %w", err)
	}
	italic, err := text.NewFontSource(goitalic.TTF)
	if err != nil {
		return nil, fmt.Errorf("load builtin italic font: %w", err)
	}
	boldItalic, err := text.NewFontSource(gobolditalic.TTF)
	if err != nil {
		return nil, fmt.Errorf("load builtin bold italic font: %w", err)
	}

	lib := &FontLibrary{
		regular:    regular,
		bold:       bold,
		italic:     italic,
		boldItalic: boldItalic,
		families:   make(map[string]*text.FontSource),
	}

	if dir != "" {
		entries, err := os.ReadDir(dir)
		if err != nil {
			logger.Warn("Font directory not readable, using builtin fonts only",
				zap.String("dir", dir), zap.Error(err))
			return lib, nil
		}
		for _, entry := range entries {
			ext := strings.ToLower(filepath.Ext(entry.Name()))
			if entry.IsDir() || (ext != ".ttf" && ext != ".otf") {
				continue
			}
			source, err := text.NewFontSourceFromFile(filepath.Join(dir, entry.Name()))
			if err != nil {
				logger.Warn("Failed to load font file",
					zap.String("file", entry.Name()), zap.Error(err))
				continue
			}
			family := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
			lib.families[normalizeFamily(family)] = source
			logger.Info("Loaded font", zap.String("family", family))
		}
	}

	return lib, nil
}

// Face 按字体族与粗斜体标志取字形,未知字体族回退到内置字体
func (l *FontLibrary) Face(family string, bold, italic bool, size float64) text.Face {
	if src, ok := l.families[normalizeFamily(family)]; ok {
		return src.Face(size)
	}
	switch {
	case bold && italic:
		return l.boldItalic.Face(size)
	case bold:
		return l.bold.Face(size)
	case italic:
		return l.italic.Face(size)
	default:
		return l.regular.Face(size)
	}
}

// normalizeFamily CSS风格的字体栈只取第一项,忽略大小写和引号
func normalizeFamily(family string) string {
	first := family
	if i := strings.IndexByte(family, ','); i >= 0 {
		first = family[:i]
	}
	first = strings.Trim(strings.TrimSpace(first), `"'`)
	return strings.ToLower(first)
}
