package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/rick-johnn/TruckSigns.com/internal/studio/catalog"
	"github.com/rick-johnn/TruckSigns.com/internal/studio/template"
)

// CatalogHandler 目录处理器:尺寸、字体、颜色、模板等静态目录
type CatalogHandler struct{}

// NewCatalogHandler 创建目录处理器
func NewCatalogHandler() *CatalogHandler {
	return &CatalogHandler{}
}

// ListSizes 列出全部标牌尺寸
// GET /api/v1/catalog/sizes
func (h *CatalogHandler) ListSizes(c *gin.Context) {
	Success(c, gin.H{"sizes": catalog.All()})
}

// DeriveDimensions 由容器宽度推导画布像素尺寸
// GET /api/v1/catalog/sizes/:id/dimensions?container_width=900
func (h *CatalogHandler) DeriveDimensions(c *gin.Context) {
	size, err := catalog.SizeFor(c.Param("id"))
	if err != nil {
		NotFound(c, "尺寸不存在: "+c.Param("id"))
		return
	}

	containerWidth, err := strconv.Atoi(c.DefaultQuery("container_width", "900"))
	if err != nil {
		BadRequest(c, "container_width 必须为整数")
		return
	}

	w, height, err := catalog.DeriveDimensions(containerWidth, size)
	if err != nil {
		BadRequest(c, err.Error())
		return
	}

	Success(c, gin.H{
		"width":  w,
		"height": height,
		"size":   size,
	})
}

// ListFonts 列出可用字体
// GET /api/v1/catalog/fonts
func (h *CatalogHandler) ListFonts(c *gin.Context) {
	Success(c, gin.H{"fonts": catalog.Fonts()})
}

// ListColors 列出预设颜色
// GET /api/v1/catalog/colors
func (h *CatalogHandler) ListColors(c *gin.Context) {
	Success(c, gin.H{"colors": catalog.PresetColors()})
}

// ListTemplates 列出可用模板
// GET /api/v1/catalog/templates
func (h *CatalogHandler) ListTemplates(c *gin.Context) {
	Success(c, gin.H{"templates": template.List()})
}

// PreviewTemplate 按指定画布尺寸实例化模板(不改变任何会话)
// GET /api/v1/catalog/templates/:id/preview?width=852&height=262
func (h *CatalogHandler) PreviewTemplate(c *gin.Context) {
	width, errW := strconv.Atoi(c.DefaultQuery("width", "852"))
	height, errH := strconv.Atoi(c.DefaultQuery("height", "262"))
	if errW != nil || errH != nil || width <= 0 || height <= 0 {
		BadRequest(c, "width/height 必须为正整数")
		return
	}

	elements, err := template.Instantiate(c.Param("id"), width, height)
	if err != nil {
		if errors.Is(err, template.ErrUnknownTemplate) {
			NotFound(c, "模板不存在: "+c.Param("id"))
			return
		}
		InternalError(c, "实例化模板失败: "+err.Error())
		return
	}

	Success(c, gin.H{"elements": elements})
}
