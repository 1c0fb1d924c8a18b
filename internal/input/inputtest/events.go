package inputtest

import "github.com/char5742/inputcore/internal/input"

// Key は値をそのまま返すキーボードイベント
type Key struct {
	T     uint32
	Code  uint32
	S     input.KeyState
	Total uint32
}

func (e Key) Time() uint32          { return e.T }
func (e Key) KeyCode() uint32       { return e.Code }
func (e Key) State() input.KeyState { return e.S }
func (e Key) Count() uint32         { return e.Total }

// Button は値をそのまま返すボタンイベント
type Button struct {
	T uint32
	B input.MouseButton
	S input.MouseButtonState
}

func (e Button) Time() uint32                  { return e.T }
func (e Button) Button() input.MouseButton     { return e.B }
func (e Button) State() input.MouseButtonState { return e.S }

// Scroll は値をそのまま返すスクロールイベント
type Scroll struct {
	T   uint32
	A   input.Axis
	Src input.AxisSource
	Amt float64
}

func (e Scroll) Time() uint32             { return e.T }
func (e Scroll) Axis() input.Axis         { return e.A }
func (e Scroll) Source() input.AxisSource { return e.Src }
func (e Scroll) Amount() float64          { return e.Amt }

// Motion は値をそのまま返す相対移動イベント
type Motion struct {
	T      uint32
	DX, DY uint32
}

func (e Motion) Time() uint32   { return e.T }
func (e Motion) DeltaX() uint32 { return e.DX }
func (e Motion) DeltaY() uint32 { return e.DY }

// Point は [0, W) x [0, H) の座標空間を持つ座標付きイベント。
// 絶対移動、タッチ down、タッチ motion として使える。
type Point struct {
	T       uint32
	PX, PY  float64
	W, H    float64
	S       input.TouchSlot
	HasSlot bool
}

func (e Point) Time() uint32                      { return e.T }
func (e Point) X() float64                        { return e.PX }
func (e Point) Y() float64                        { return e.PY }
func (e Point) Slot() (input.TouchSlot, bool)     { return e.S, e.HasSlot }
func (e Point) XTransformed(width uint32) uint32  { return input.ScaleAxis(e.PX, 0, e.W, width) }
func (e Point) YTransformed(height uint32) uint32 { return input.ScaleAxis(e.PY, 0, e.H, height) }

// Lift はタッチ up/cancel として使えるイベント
type Lift struct {
	T       uint32
	S       input.TouchSlot
	HasSlot bool
}

func (e Lift) Time() uint32                  { return e.T }
func (e Lift) Slot() (input.TouchSlot, bool) { return e.S, e.HasSlot }

// Frame はタッチ frame イベント
type Frame struct {
	T uint32
}

func (e Frame) Time() uint32 { return e.T }
