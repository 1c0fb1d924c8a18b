// Package inputtest はバックエンドとハンドラのテストで使う補助を提供する。
// 実際のデータ経路で使ってはならない。
package inputtest

import "github.com/char5742/inputcore/internal/input"

const unimplemented = "inputtest: unimplemented event accessor called"

// UnimplementedKey は呼ばれると panic するキーボードイベント。
// 型だけが必要な場面（ジェネリックなテストや既定値）で使う。
type UnimplementedKey struct{}

func (UnimplementedKey) Time() uint32 { panic(unimplemented) }

func (UnimplementedKey) KeyCode() uint32 { panic(unimplemented) }

func (UnimplementedKey) State() input.KeyState { panic(unimplemented) }

func (UnimplementedKey) Count() uint32 { panic(unimplemented) }

// UnimplementedButton は呼ばれると panic するボタンイベント
type UnimplementedButton struct{}

func (UnimplementedButton) Time() uint32 { panic(unimplemented) }

func (UnimplementedButton) Button() input.MouseButton { panic(unimplemented) }

func (UnimplementedButton) State() input.MouseButtonState { panic(unimplemented) }

// UnimplementedAxis は呼ばれると panic するスクロールイベント
type UnimplementedAxis struct{}

func (UnimplementedAxis) Time() uint32 { panic(unimplemented) }

func (UnimplementedAxis) Axis() input.Axis { panic(unimplemented) }

func (UnimplementedAxis) Source() input.AxisSource { panic(unimplemented) }

func (UnimplementedAxis) Amount() float64 { panic(unimplemented) }

// UnimplementedMotion は呼ばれると panic する相対移動イベント
type UnimplementedMotion struct{}

func (UnimplementedMotion) Time() uint32 { panic(unimplemented) }

func (UnimplementedMotion) DeltaX() uint32 { panic(unimplemented) }

func (UnimplementedMotion) DeltaY() uint32 { panic(unimplemented) }

// UnimplementedPosition は呼ばれると panic する座標付きイベント。
// 絶対移動、タッチ down、タッチ motion のいずれとしても使える。
type UnimplementedPosition struct{}

func (UnimplementedPosition) Time() uint32 { panic(unimplemented) }

func (UnimplementedPosition) Slot() (input.TouchSlot, bool) { panic(unimplemented) }

func (UnimplementedPosition) X() float64 { panic(unimplemented) }

func (UnimplementedPosition) Y() float64 { panic(unimplemented) }

func (UnimplementedPosition) XTransformed(uint32) uint32 { panic(unimplemented) }

func (UnimplementedPosition) YTransformed(uint32) uint32 { panic(unimplemented) }

// UnimplementedSlot は呼ばれると panic するタッチ up/cancel イベント
type UnimplementedSlot struct{}

func (UnimplementedSlot) Time() uint32 { panic(unimplemented) }

func (UnimplementedSlot) Slot() (input.TouchSlot, bool) { panic(unimplemented) }

// UnimplementedFrame は呼ばれると panic するタッチ frame イベント
type UnimplementedFrame struct{}

func (UnimplementedFrame) Time() uint32 { panic(unimplemented) }

var (
	_ input.KeyboardKeyEvent           = UnimplementedKey{}
	_ input.PointerButtonEvent         = UnimplementedButton{}
	_ input.PointerAxisEvent           = UnimplementedAxis{}
	_ input.PointerMotionEvent         = UnimplementedMotion{}
	_ input.PointerMotionAbsoluteEvent = UnimplementedPosition{}
	_ input.TouchDownEvent             = UnimplementedPosition{}
	_ input.TouchMotionEvent           = UnimplementedPosition{}
	_ input.TouchUpEvent               = UnimplementedSlot{}
	_ input.TouchCancelEvent           = UnimplementedSlot{}
	_ input.TouchFrameEvent            = UnimplementedFrame{}
)
