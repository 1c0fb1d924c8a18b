package remote

import "github.com/char5742/inputcore/internal/input"

// KeyboardKeyEvent はリモートのキーイベント
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

// PointerButtonEvent はリモートのボタンイベント
type PointerButtonEvent struct {
	time   uint32
	button input.MouseButton
	state  input.MouseButtonState
}

func (e PointerButtonEvent) Time() uint32                  { return e.time }
func (e PointerButtonEvent) Button() input.MouseButton     { return e.button }
func (e PointerButtonEvent) State() input.MouseButtonState { return e.state }

// PointerAxisEvent はリモートのスクロールイベント
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

// PointerMotionEvent はリモートの相対移動
type PointerMotionEvent struct {
	time   uint32
	dx, dy uint32
}

func (e PointerMotionEvent) Time() uint32   { return e.time }
func (e PointerMotionEvent) DeltaX() uint32 { return e.dx }
func (e PointerMotionEvent) DeltaY() uint32 { return e.dy }

// surfacePoint は送信側の面の上の座標。面の大きさは受信時の Config から取る。
type surfacePoint struct {
	x, y          float64
	width, height float64
}

func (p surfacePoint) X() float64 { return p.x }
func (p surfacePoint) Y() float64 { return p.y }

func (p surfacePoint) XTransformed(width uint32) uint32 {
	return input.ScaleAxis(p.x, 0, p.width, width)
}

func (p surfacePoint) YTransformed(height uint32) uint32 {
	return input.ScaleAxis(p.y, 0, p.height, height)
}

// PointerMotionAbsoluteEvent はリモートの絶対移動
type PointerMotionAbsoluteEvent struct {
	surfacePoint
	time uint32
}

func (e PointerMotionAbsoluteEvent) Time() uint32 { return e.time }

type slotted struct {
	slot    input.TouchSlot
	hasSlot bool
}

func (s slotted) Slot() (input.TouchSlot, bool) { return s.slot, s.hasSlot }

// TouchDownEvent はリモートのタッチ開始
type TouchDownEvent struct {
	surfacePoint
	slotted
	time uint32
}

func (e TouchDownEvent) Time() uint32 { return e.time }

// TouchMotionEvent はリモートのタッチ移動
type TouchMotionEvent struct {
	surfacePoint
	slotted
	time uint32
}

func (e TouchMotionEvent) Time() uint32 { return e.time }

// TouchUpEvent はリモートのタッチ終了
type TouchUpEvent struct {
	slotted
	time uint32
}

func (e TouchUpEvent) Time() uint32 { return e.time }

// TouchCancelEvent はリモートのタッチ取り消し
type TouchCancelEvent struct {
	slotted
	time uint32
}

func (e TouchCancelEvent) Time() uint32 { return e.time }

// TouchFrameEvent はリモートのタッチフレーム
type TouchFrameEvent struct {
	time uint32
}

func (e TouchFrameEvent) Time() uint32 { return e.time }
