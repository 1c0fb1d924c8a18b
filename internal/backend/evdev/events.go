package evdev

import "github.com/char5742/inputcore/internal/input"

// axisRange は絶対座標軸の範囲（EVIOCGABS で取得）
type axisRange struct {
	min, max float64
}

func (r axisRange) normalize(v float64) float64 {
	if !(r.max > r.min) {
		return 0
	}
	return (v - r.min) / (r.max - r.min)
}

// sample はデバイスが報告した生の座標と、変換に必要な情報
type sample struct {
	x, y   float64
	xr, yr axisRange
	calib  []float64
}

// X はデバイスが報告した生の x 座標
func (s sample) X() float64 { return s.x }

// Y はデバイスが報告した生の y 座標
func (s sample) Y() float64 { return s.y }

func (s sample) transformed() (float64, float64) {
	return DeviceSettings{Calibration: s.calib}.calibrate(s.xr.normalize(s.x), s.yr.normalize(s.y))
}

func (s sample) XTransformed(width uint32) uint32 {
	x, _ := s.transformed()
	return input.ScaleAxis(x, 0, 1, width)
}

func (s sample) YTransformed(height uint32) uint32 {
	_, y := s.transformed()
	return input.ScaleAxis(y, 0, 1, height)
}

type slotted struct {
	slot    input.TouchSlot
	hasSlot bool
}

func (s slotted) Slot() (input.TouchSlot, bool) { return s.slot, s.hasSlot }

// KeyboardKeyEvent はキーイベント
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

// PointerButtonEvent はボタンイベント
type PointerButtonEvent struct {
	time   uint32
	button input.MouseButton
	state  input.MouseButtonState
}

func (e PointerButtonEvent) Time() uint32                  { return e.time }
func (e PointerButtonEvent) Button() input.MouseButton     { return e.button }
func (e PointerButtonEvent) State() input.MouseButtonState { return e.state }

// PointerAxisEvent はスクロールイベント。ホイールの量は1段あたり15。
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

// PointerMotionEvent は相対移動
type PointerMotionEvent struct {
	time   uint32
	dx, dy uint32
}

func (e PointerMotionEvent) Time() uint32   { return e.time }
func (e PointerMotionEvent) DeltaX() uint32 { return e.dx }
func (e PointerMotionEvent) DeltaY() uint32 { return e.dy }

// PointerMotionAbsoluteEvent は絶対座標デバイス（タブレットなど）の移動
type PointerMotionAbsoluteEvent struct {
	sample
	time uint32
}

func (e PointerMotionAbsoluteEvent) Time() uint32 { return e.time }

// TouchDownEvent はタッチ開始
type TouchDownEvent struct {
	sample
	slotted
	time uint32
}

func (e TouchDownEvent) Time() uint32 { return e.time }

// TouchMotionEvent はタッチ移動
type TouchMotionEvent struct {
	sample
	slotted
	time uint32
}

func (e TouchMotionEvent) Time() uint32 { return e.time }

// TouchUpEvent はタッチ終了
type TouchUpEvent struct {
	slotted
	time uint32
}

func (e TouchUpEvent) Time() uint32 { return e.time }

// TouchCancelEvent はタッチの取り消し（SYN_DROPPED やデバイスの取り外し）
type TouchCancelEvent struct {
	slotted
	time uint32
}

func (e TouchCancelEvent) Time() uint32 { return e.time }

// TouchFrameEvent はひとつの SYN_REPORT に含まれるタッチイベントの終わり
type TouchFrameEvent struct {
	time uint32
}

func (e TouchFrameEvent) Time() uint32 { return e.time }
