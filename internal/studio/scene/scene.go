package scene

import (
	"errors"
)

// 错误定义
var (
	ErrNotFound = errors.New("element not found")
)

// 默认背景色
const DefaultBackground = "#ffffff"

// 复制元素时的位置偏移
const duplicateOffset = 20

// Scene 画布场景:有序元素列表 + 背景色 + 最后一次编辑时的画布像素尺寸
// 元素ID在场景内唯一,列表顺序是绘制/堆叠顺序的唯一来源
type Scene struct {
	Background string    `json:"background"`
	Width      int       `json:"width"`
	Height     int       `json:"height"`
	Elements   []Element `json:"elements"`
}

// New 创建空场景,背景为白色
func New(width, height int) *Scene {
	return &Scene{
		Background: DefaultBackground,
		Width:      width,
		Height:     height,
		Elements:   []Element{},
	}
}

// Add 追加元素到列表末尾(最上层)
func (s *Scene) Add(e Element) {
	s.Elements = append(s.Elements, e)
}

// Find 按ID查找元素,不存在返回nil
func (s *Scene) Find(id string) Element {
	if i := s.indexOf(id); i >= 0 {
		return s.Elements[i]
	}
	return nil
}

func (s *Scene) indexOf(id string) int {
	for i, e := range s.Elements {
		if e.Common().ID == id {
			return i
		}
	}
	return -1
}

// Remove 按ID删除元素,不存在时静默无操作
func (s *Scene) Remove(id string) {
	i := s.indexOf(id)
	if i < 0 {
		return
	}
	s.Elements = append(s.Elements[:i], s.Elements[i+1:]...)
}

// MoveForward 与上层相邻元素交换位置,已在最上层时无操作
func (s *Scene) MoveForward(id string) error {
	i := s.indexOf(id)
	if i < 0 {
		return ErrNotFound
	}
	if i == len(s.Elements)-1 {
		return nil
	}
	s.Elements[i], s.Elements[i+1] = s.Elements[i+1], s.Elements[i]
	return nil
}

// MoveBackward 与下层相邻元素交换位置,已在最下层时无操作
func (s *Scene) MoveBackward(id string) error {
	i := s.indexOf(id)
	if i < 0 {
		return ErrNotFound
	}
	if i == 0 {
		return nil
	}
	s.Elements[i], s.Elements[i-1] = s.Elements[i-1], s.Elements[i]
	return nil
}

// Duplicate 复制元素:新ID,位置偏移(+20,+20),插入到原元素的上一层
func (s *Scene) Duplicate(id, newID string) (Element, error) {
	i := s.indexOf(id)
	if i < 0 {
		return nil, ErrNotFound
	}
	copied := s.Elements[i].Clone()
	b := copied.Common()
	b.ID = newID
	b.Left += duplicateOffset
	b.Top += duplicateOffset

	s.Elements = append(s.Elements, nil)
	copy(s.Elements[i+2:], s.Elements[i+1:])
	s.Elements[i+1] = copied
	return copied, nil
}

// Clear 清空元素列表并重置背景为白色
func (s *Scene) Clear() {
	s.Elements = []Element{}
	s.Background = DefaultBackground
}

// Replace 以新元素列表整体替换当前列表并重置背景,模板应用使用(原子操作)
func (s *Scene) Replace(elements []Element) {
	if elements == nil {
		elements = []Element{}
	}
	s.Elements = elements
	s.Background = DefaultBackground
}

// Clone 深拷贝场景
func (s *Scene) Clone() *Scene {
	c := &Scene{
		Background: s.Background,
		Width:      s.Width,
		Height:     s.Height,
		Elements:   make([]Element, len(s.Elements)),
	}
	for i, e := range s.Elements {
		c.Elements[i] = e.Clone()
	}
	return c
}
