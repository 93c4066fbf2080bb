package annotation

import (
	"fmt"
	"math"
)

// labelProbeOffset IN/OUT 标签离线段中点的偏移像素，仅用于摆放标签
const labelProbeOffset = 40.0

// SideLabels 入口线两侧标签的锚点，仅展示用，
// 计数逻辑在远端按 in_side 执行同样的约定
type SideLabels struct {
	In     Point `json:"in"`     // IN 标签锚点
	Out    Point `json:"out"`    // OUT 标签锚点
	Normal Point `json:"normal"` // 单位法向量（+n 方向）
}

// ComputeSideLabels 取折线中段计算法向量并得出两侧标签位置
// 中段取下标 floor(n/2)-1 与 floor(n/2)，前者越界时退回 0
func (s *Snapshot) ComputeSideLabels() (*SideLabels, error) {
	pts := s.Entry
	if !pts.Usable() {
		return nil, fmt.Errorf("annotation: entry boundary not usable, got %d points", len(pts))
	}

	mid := len(pts) / 2
	i1 := mid - 1
	if i1 < 0 {
		i1 = 0
	}
	p1, p2 := pts[i1], pts[mid]

	dx, dy := p2.X-p1.X, p2.Y-p1.Y
	length := math.Hypot(-dy, dx)
	if length == 0 {
		length = 1
	}
	// 单位法向量取 (-dy, dx)，图像坐标系 y 轴向下
	n := Point{X: -dy / length, Y: dx / length}

	mx, my := (p1.X+p2.X)/2, (p1.Y+p2.Y)/2
	plus := Point{X: mx + n.X*labelProbeOffset, Y: my + n.Y*labelProbeOffset}
	minus := Point{X: mx - n.X*labelProbeOffset, Y: my - n.Y*labelProbeOffset}

	out := SideLabels{Normal: n}
	if s.Orientation == OrientationInverted {
		out.In, out.Out = minus, plus
	} else {
		out.In, out.Out = plus, minus
	}
	return &out, nil
}
