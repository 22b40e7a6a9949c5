package scene

import (
	"encoding/json"
	"fmt"
)

// 序列化形状: {id, kind, left, top, rotation, flipX, flipY, opacity, ...变体字段}
// 反序列化必须严格还原元素顺序和全部属性

// MarshalJSON 输出带kind标签的扁平JSON
func (e *Image) MarshalJSON() ([]byte, error) {
	type alias Image
	return json.Marshal(struct {
		Kind Kind `json:"kind"`
		*alias
	}{KindImage, (*alias)(e)})
}

// MarshalJSON 输出带kind标签的扁平JSON
func (e *Text) MarshalJSON() ([]byte, error) {
	type alias Text
	return json.Marshal(struct {
		Kind Kind `json:"kind"`
		*alias
	}{KindText, (*alias)(e)})
}

// MarshalJSON 输出带kind标签的扁平JSON
func (e *Rect) MarshalJSON() ([]byte, error) {
	type alias Rect
	return json.Marshal(struct {
		Kind Kind `json:"kind"`
		*alias
	}{KindRect, (*alias)(e)})
}

// MarshalJSON 输出带kind标签的扁平JSON
func (e *Ellipse) MarshalJSON() ([]byte, error) {
	type alias Ellipse
	return json.Marshal(struct {
		Kind Kind `json:"kind"`
		*alias
	}{KindEllipse, (*alias)(e)})
}

// MarshalJSON 输出带kind标签的扁平JSON
func (e *Line) MarshalJSON() ([]byte, error) {
	type alias Line
	return json.Marshal(struct {
		Kind Kind `json:"kind"`
		*alias
	}{KindLine, (*alias)(e)})
}

// UnmarshalElement 按kind标签解码单个元素
func UnmarshalElement(data []byte) (Element, error) {
	var probe struct {
		Kind Kind `json:"kind"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("decode element: %w", err)
	}

	var (
		e   Element
		err error
	)
	switch probe.Kind {
	case KindImage:
		v := &Image{}
		err = json.Unmarshal(data, v)
		e = v
	case KindText:
		v := &Text{}
		err = json.Unmarshal(data, v)
		e = v
	case KindRect:
		v := &Rect{}
		err = json.Unmarshal(data, v)
		e = v
	case KindEllipse:
		v := &Ellipse{}
		err = json.Unmarshal(data, v)
		e = v
	case KindLine:
		v := &Line{}
		err = json.Unmarshal(data, v)
		e = v
	default:
		return nil, fmt.Errorf("decode element: unknown kind %q", probe.Kind)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s element: %w", probe.Kind, err)
	}
	return e, nil
}

// UnmarshalJSON 解码场景,逐元素按kind分发
func (s *Scene) UnmarshalJSON(data []byte) error {
	var raw struct {
		Background string            `json:"background"`
		Width      int               `json:"width"`
		Height     int               `json:"height"`
		Elements   []json.RawMessage `json:"elements"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode scene: %w", err)
	}

	s.Background = raw.Background
	if s.Background == "" {
		s.Background = DefaultBackground
	}
	s.Width = raw.Width
	s.Height = raw.Height
	s.Elements = make([]Element, 0, len(raw.Elements))
	for _, r := range raw.Elements {
		e, err := UnmarshalElement(r)
		if err != nil {
			return err
		}
		s.Elements = append(s.Elements, e)
	}
	return nil
}

// Update 将部分属性合并到指定元素,id与kind不可变更,元素不存在返回ErrNotFound
// 失败时场景保持原状
func (s *Scene) Update(id string, attrs map[string]any) error {
	i := s.indexOf(id)
	if i < 0 {
		return ErrNotFound
	}

	current, err := json.Marshal(s.Elements[i])
	if err != nil {
		return fmt.Errorf("encode element: %w", err)
	}
	var merged map[string]any
	if err := json.Unmarshal(current, &merged); err != nil {
		return fmt.Errorf("decode element: %w", err)
	}
	for k, v := range attrs {
		if k == "id" || k == "kind" {
			continue
		}
		merged[k] = v
	}

	data, err := json.Marshal(merged)
	if err != nil {
		return fmt.Errorf("encode element: %w", err)
	}
	updated, err := UnmarshalElement(data)
	if err != nil {
		return err
	}
	s.Elements[i] = updated
	return nil
}
