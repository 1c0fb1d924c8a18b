package input

import "math"

// Size は変換先の整数座標空間（出力の解像度など）
type Size struct {
	Width  uint32
	Height uint32
}

// Position はデバイス固有の座標を (x, y) で返す
func Position(p Positioned) (x, y float64) {
	return p.X(), p.Y()
}

// PositionTransformed は各軸を独立に変換した座標を返す
func PositionTransformed(p Positioned, space Size) (x, y uint32) {
	return p.XTransformed(space.Width), p.YTransformed(space.Height)
}

// Delta は相対移動量を (dx, dy) で返す
func Delta(e PointerMotionEvent) (dx, dy uint32) {
	return e.DeltaX(), e.DeltaY()
}

// SignedDelta は2の補数で格納された移動量を符号付きとして返す
func SignedDelta(e PointerMotionEvent) (dx, dy int32) {
	return int32(e.DeltaX()), int32(e.DeltaY())
}

// ScaleAxis は [min, max) の値を [0, target) の整数座標に単調に写像する。
// 範囲外の値は端に丸められる。target が 0 や範囲が空の場合は 0 を返す。
func ScaleAxis(value, min, max float64, target uint32) uint32 {
	if target == 0 || !(max > min) {
		return 0
	}
	f := (value - min) / (max - min)
	if math.IsNaN(f) || f <= 0 {
		return 0
	}
	scaled := f * float64(target)
	if scaled >= float64(target) {
		return target - 1
	}
	return uint32(scaled)
}
