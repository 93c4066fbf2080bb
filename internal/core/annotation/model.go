package annotation

// Point 参考帧原始分辨率下的像素坐标（注意不是显示坐标）
// 一旦加入边界线即不可变，按值比较
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Orientation 入口线方向标记，决定法向量哪一侧记为 IN
type Orientation string

const (
	// OrientationPrimary +n 一侧为 IN
	OrientationPrimary Orientation = "primary"
	// OrientationInverted -n 一侧为 IN
	OrientationInverted Orientation = "inverted"
)

// in_side 线序约定，客户端与远端计数服务必须一致
// 此处是唯一的映射出处，禁止在别处重新推导
const (
	InSidePrimary  = "right"
	InSideInverted = "left"
)

// Toggle 翻转方向标记，与点数据无关
func (o Orientation) Toggle() Orientation {
	if o == OrientationInverted {
		return OrientationPrimary
	}
	return OrientationInverted
}

// InSide 序列化为远端约定的 in_side 值
func (o Orientation) InSide() string {
	if o == OrientationInverted {
		return InSideInverted
	}
	return InSidePrimary
}

// OrientationFromInSide 从持久化的 in_side 还原方向标记
func OrientationFromInSide(s string) Orientation {
	if s == InSideInverted {
		return OrientationInverted
	}
	return OrientationPrimary
}

// BoundaryName 具名边界线
type BoundaryName string

const (
	// BoundaryEntry 入口线，区分 IN/OUT
	BoundaryEntry BoundaryName = "entry"
	// BoundaryCrossing 过路线，无 IN/OUT 语义
	BoundaryCrossing BoundaryName = "crossing"
)

// Boundary 有序折线，插入顺序决定方向（用于法向量计算）
type Boundary []Point

// Usable 至少两个点才构成可用折线
func (b Boundary) Usable() bool { return len(b) >= 2 }

// Empty 无任何点
func (b Boundary) Empty() bool { return len(b) == 0 }

// LinesConfig 持久化与传输格式，坐标均为参考帧原始分辨率像素
type LinesConfig struct {
	Entrant  []Point `json:"entrant"`  // 入口线点序列
	Passerby []Point `json:"passerby"` // 过路线点序列
	InSide   string  `json:"in_side"`  // IN 侧约定 right/left
}
