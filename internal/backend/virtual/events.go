package virtual

import "github.com/char5742/inputcore/internal/input"

// KeyboardKeyEvent は仮想デバイスのキーイベント
type KeyboardKeyEvent struct {
	time  uint32
	code  uint32
	state input.KeyState
	count uint32
}

func (e KeyboardKeyEvent) Time() uint32          { return e.time }
func (e KeyboardKeyEvent) KeyCode() uint32       { return e.code }
func (e KeyboardKeyEvent) State() input.KeyState { return e.state }
func (e KeyboardKeyEvent) Count() uint32         { return e.count }

// PointerButtonEvent は仮想デバイスのボタンイベント
type PointerButtonEvent struct {
	time   uint32
	button input.MouseButton
	state  input.MouseButtonState
}

func (e PointerButtonEvent) Time() uint32                  { return e.time }
func (e PointerButtonEvent) Button() input.MouseButton     { return e.button }
func (e PointerButtonEvent) State() input.MouseButtonState { return e.state }

// PointerAxisEvent は仮想デバイスのスクロールイベント
type PointerAxisEvent struct {
	time   uint32
	axis   input.Axis
	source input.AxisSource
	amount float64
}

func (e PointerAxisEvent) Time() uint32             { return e.time }
func (e PointerAxisEvent) Axis() input.Axis         { return e.axis }
func (e PointerAxisEvent) Source() input.AxisSource { return e.source }
func (e PointerAxisEvent) Amount() float64          { return e.amount }

// PointerMotionEvent は仮想デバイスの相対移動
type PointerMotionEvent struct {
	time   uint32
	dx, dy uint32
}

func (e PointerMotionEvent) Time() uint32   { return e.time }
func (e PointerMotionEvent) DeltaX() uint32 { return e.dx }
func (e PointerMotionEvent) DeltaY() uint32 { return e.dy }

// point は座標と、イベント作成時点の座標空間の大きさを保持する
type point struct {
	x, y          float64
	width, height float64
}

func (p point) X() float64 { return p.x }
func (p point) Y() float64 { return p.y }

func (p point) XTransformed(width uint32) uint32 {
	return input.ScaleAxis(p.x, 0, p.width, width)
}

func (p point) YTransformed(height uint32) uint32 {
	return input.ScaleAxis(p.y, 0, p.height, height)
}

// PointerMotionAbsoluteEvent は仮想デバイスの絶対移動。
// 座標は Config の Width/Height で表される空間の値。
type PointerMotionAbsoluteEvent struct {
	point
	time uint32
}

func (e PointerMotionAbsoluteEvent) Time() uint32 { return e.time }

type slotted struct {
	slot    input.TouchSlot
	hasSlot bool
}

func (s slotted) Slot() (input.TouchSlot, bool) { return s.slot, s.hasSlot }

// TouchDownEvent は仮想デバイスのタッチ開始
type TouchDownEvent struct {
	point
	slotted
	time uint32
}

func (e TouchDownEvent) Time() uint32 { return e.time }

// TouchMotionEvent は仮想デバイスのタッチ移動
type TouchMotionEvent struct {
	point
	slotted
	time uint32
}

func (e TouchMotionEvent) Time() uint32 { return e.time }

// TouchUpEvent は仮想デバイスのタッチ終了
type TouchUpEvent struct {
	slotted
	time uint32
}

func (e TouchUpEvent) Time() uint32 { return e.time }

// TouchCancelEvent は仮想デバイスのタッチ取り消し
type TouchCancelEvent struct {
	slotted
	time uint32
}

func (e TouchCancelEvent) Time() uint32 { return e.time }

// TouchFrameEvent は仮想デバイスのタッチフレーム
type TouchFrameEvent struct {
	time uint32
}

func (e TouchFrameEvent) Time() uint32 { return e.time }
