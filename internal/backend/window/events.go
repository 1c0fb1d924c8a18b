package window

import "github.com/char5742/inputcore/internal/input"

// KeyboardKeyEvent はウィンドウのキーイベント
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

// PointerButtonEvent はウィンドウのボタンイベント
type PointerButtonEvent struct {
	time   uint32
	button input.MouseButton
	state  input.MouseButtonState
}

func (e PointerButtonEvent) Time() uint32                  { return e.time }
func (e PointerButtonEvent) Button() input.MouseButton     { return e.button }
func (e PointerButtonEvent) State() input.MouseButtonState { return e.state }

// PointerAxisEvent はウィンドウのスクロールイベント
type PointerAxisEvent struct {
	time   uint32
	axis   input.Axis
	amount float64
}

func (e PointerAxisEvent) Time() uint32     { return e.time }
func (e PointerAxisEvent) Axis() input.Axis { return e.axis }
func (e PointerAxisEvent) Amount() float64  { return e.amount }

// Source は常に Continuous。ウィンドウシステムはホイールとトラックパッドを区別しない。
func (e PointerAxisEvent) Source() input.AxisSource { return input.AxisSourceContinuous }

// PointerMotionEvent は相対移動。ウィンドウバックエンドは絶対座標しか報告しないので作られない。
type PointerMotionEvent struct {
	time   uint32
	dx, dy uint32
}

func (e PointerMotionEvent) Time() uint32   { return e.time }
func (e PointerMotionEvent) DeltaX() uint32 { return e.dx }
func (e PointerMotionEvent) DeltaY() uint32 { return e.dy }

// windowPoint はウィンドウ座標。大きさはスナップショットを取った時点のもの。
type windowPoint struct {
	x, y          float64
	width, height float64
}

func (p windowPoint) X() float64 { return p.x }
func (p windowPoint) Y() float64 { return p.y }

func (p windowPoint) XTransformed(width uint32) uint32 {
	return input.ScaleAxis(p.x, 0, p.width, width)
}

func (p windowPoint) YTransformed(height uint32) uint32 {
	return input.ScaleAxis(p.y, 0, p.height, height)
}

// PointerMotionAbsoluteEvent はカーソルの移動
type PointerMotionAbsoluteEvent struct {
	windowPoint
	time uint32
}

func (e PointerMotionAbsoluteEvent) Time() uint32 { return e.time }

type slotted struct {
	slot input.TouchSlot
}

// Slot はウィンドウのタッチには常にスロットがある
func (s slotted) Slot() (input.TouchSlot, bool) { return s.slot, true }

// TouchDownEvent はタッチの開始
type TouchDownEvent struct {
	windowPoint
	slotted
	time uint32
}

func (e TouchDownEvent) Time() uint32 { return e.time }

// TouchMotionEvent はタッチの移動
type TouchMotionEvent struct {
	windowPoint
	slotted
	time uint32
}

func (e TouchMotionEvent) Time() uint32 { return e.time }

// TouchUpEvent はタッチの終了
type TouchUpEvent struct {
	slotted
	time uint32
}

func (e TouchUpEvent) Time() uint32 { return e.time }

// TouchCancelEvent はタッチの取り消し（バックエンドを閉じたとき）
type TouchCancelEvent struct {
	slotted
	time uint32
}

func (e TouchCancelEvent) Time() uint32 { return e.time }

// TouchFrameEvent はタッチフレーム
type TouchFrameEvent struct {
	time uint32
}

func (e TouchFrameEvent) Time() uint32 { return e.time }
