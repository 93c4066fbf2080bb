package annotation

import "fmt"

// DisplayRect 图片元素在屏幕上的包围盒，容器可能随时回流，
// 每次取点都要重新传入，不允许缓存
type DisplayRect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Resolution 参考帧原始分辨率
type Resolution struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Valid 图片加载完成后分辨率才已知
func (r Resolution) Valid() bool { return r.Width > 0 && r.Height > 0 }

// MapToNative 把指针事件的屏幕坐标换算到原始分辨率像素空间
// scale = native / displayed，逐轴计算
func MapToNative(rect DisplayRect, native Resolution, clientX, clientY float64) (Point, error) {
	if !native.Valid() {
		return Point{}, fmt.Errorf("annotation: native resolution unknown, image not loaded")
	}
	if rect.Width <= 0 || rect.Height <= 0 {
		return Point{}, fmt.Errorf("annotation: invalid display rect %+v", rect)
	}
	sx := native.Width / rect.Width
	sy := native.Height / rect.Height
	return Point{
		X: (clientX - rect.Left) * sx,
		Y: (clientY - rect.Top) * sy,
	}, nil
}

// MapToDisplay MapToNative 的逆变换，用于回显
func MapToDisplay(rect DisplayRect, native Resolution, p Point) (x, y float64, err error) {
	if !native.Valid() {
		return 0, 0, fmt.Errorf("annotation: native resolution unknown, image not loaded")
	}
	if rect.Width <= 0 || rect.Height <= 0 {
		return 0, 0, fmt.Errorf("annotation: invalid display rect %+v", rect)
	}
	x = p.X*(rect.Width/native.Width) + rect.Left
	y = p.Y*(rect.Height/native.Height) + rect.Top
	return x, y, nil
}
