package annotation

import "fmt"

// Snapshot 一次标注会话的完整状态，持久化到设备配置后
// 重新加载必须逐点还原（无有损取整）
type Snapshot struct {
	Entry       Boundary
	Crossing    Boundary
	Orientation Orientation
}

// NewSnapshot 空边界 + 默认方向
func NewSnapshot() *Snapshot {
	return &Snapshot{
		Entry:       Boundary{},
		Crossing:    Boundary{},
		Orientation: OrientationPrimary,
	}
}

// FromLines 从持久化的 lines_config 还原标注快照
func FromLines(lc LinesConfig) *Snapshot {
	s := Snapshot{
		Entry:       append(Boundary{}, lc.Entrant...),
		Crossing:    append(Boundary{}, lc.Passerby...),
		Orientation: OrientationFromInSide(lc.InSide),
	}
	return &s
}

// Lines 序列化为 lines_config
func (s *Snapshot) Lines() LinesConfig {
	return LinesConfig{
		Entrant:  append([]Point{}, s.Entry...),
		Passerby: append([]Point{}, s.Crossing...),
		InSide:   s.Orientation.InSide(),
	}
}

func (s *Snapshot) boundary(name BoundaryName) (*Boundary, error) {
	switch name {
	case BoundaryEntry:
		return &s.Entry, nil
	case BoundaryCrossing:
		return &s.Crossing, nil
	default:
		return nil, fmt.Errorf("annotation: unknown boundary %q", name)
	}
}

// Append 向具名边界线追加一个点，除线名外不做任何校验
func (s *Snapshot) Append(name BoundaryName, p Point) error {
	b, err := s.boundary(name)
	if err != nil {
		return err
	}
	*b = append(*b, p)
	return nil
}

// Clear 清空具名边界线
func (s *Snapshot) Clear(name BoundaryName) error {
	b, err := s.boundary(name)
	if err != nil {
		return err
	}
	*b = Boundary{}
	return nil
}

// ToggleOrientation 翻转 IN/OUT 方向
func (s *Snapshot) ToggleOrientation() {
	s.Orientation = s.Orientation.Toggle()
}

// IsSubmittable 两条线都可用才允许提交处理
func (s *Snapshot) IsSubmittable() bool {
	return s.Entry.Usable() && s.Crossing.Usable()
}

// Clone 深拷贝，避免异步续体共享可变点序列
func (s *Snapshot) Clone() *Snapshot {
	return &Snapshot{
		Entry:       append(Boundary{}, s.Entry...),
		Crossing:    append(Boundary{}, s.Crossing...),
		Orientation: s.Orientation,
	}
}
