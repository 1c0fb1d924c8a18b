package input

import "strconv"

// Event はすべての入力イベントが備える共通のメソッド
type Event interface {
	// Time は単調に増加するカウンタを返す。
	// 単位は決まっておらず、経過時間ではなくイベントの順序付けにのみ使える。
	Time() uint32
}

// KeyState はキーの状態
type KeyState uint8

const (
	KeyReleased KeyState = iota // 離された
	KeyPressed                  // 押された
)

func (s KeyState) String() string {
	switch s {
	case KeyReleased:
		return "released"
	case KeyPressed:
		return "pressed"
	}
	return "KeyState(" + strconv.Itoa(int(s)) + ")"
}

// KeyboardKeyEvent はキーボードのキーイベント
type KeyboardKeyEvent interface {
	Event
	// KeyCode は linux/input-event-codes.h に従うキーコードを返す
	KeyCode() uint32
	// State はキーの状態を返す
	State() KeyState
	// Count はシート上のすべてのデバイスで押されているキーの総数を返す
	Count() uint32
}

// ButtonKind はマウスボタンの種類
type ButtonKind uint8

const (
	ButtonKindLeft ButtonKind = iota
	ButtonKindMiddle
	ButtonKindRight
	ButtonKindOther
)

// MouseButton はマウスボタンを表す。Other の場合のみ Index が意味を持つ。
type MouseButton struct {
	Kind  ButtonKind
	Index uint8
}

// ButtonLeft は左ボタンを返す
func ButtonLeft() MouseButton { return MouseButton{Kind: ButtonKindLeft} }

// ButtonMiddle は中ボタンを返す
func ButtonMiddle() MouseButton { return MouseButton{Kind: ButtonKindMiddle} }

// ButtonRight は右ボタンを返す
func ButtonRight() MouseButton { return MouseButton{Kind: ButtonKindRight} }

// ButtonOther はインデックス付きのその他のボタンを返す
func ButtonOther(index uint8) MouseButton {
	return MouseButton{Kind: ButtonKindOther, Index: index}
}

func (b MouseButton) String() string {
	switch b.Kind {
	case ButtonKindLeft:
		return "left"
	case ButtonKindMiddle:
		return "middle"
	case ButtonKindRight:
		return "right"
	case ButtonKindOther:
		return "other(" + strconv.Itoa(int(b.Index)) + ")"
	}
	return "MouseButton(" + strconv.Itoa(int(b.Kind)) + ")"
}

// MouseButtonState はボタンの状態
type MouseButtonState uint8

const (
	ButtonReleased MouseButtonState = iota
	ButtonPressed
)

func (s MouseButtonState) String() string {
	switch s {
	case ButtonReleased:
		return "released"
	case ButtonPressed:
		return "pressed"
	}
	return "MouseButtonState(" + strconv.Itoa(int(s)) + ")"
}

// PointerButtonEvent はボタンの押下・解放イベント
type PointerButtonEvent interface {
	Event
	Button() MouseButton
	State() MouseButtonState
}

// Axis はスクロールの軸
type Axis uint8

const (
	AxisVertical Axis = iota
	AxisHorizontal
)

func (a Axis) String() string {
	switch a {
	case AxisVertical:
		return "vertical"
	case AxisHorizontal:
		return "horizontal"
	}
	return "Axis(" + strconv.Itoa(int(a)) + ")"
}

// AxisSource はスクロールを発生させた物理的な仕組み
type AxisSource uint8

const (
	// AxisSourceFinger はトラックパッドなどの指によるスクロール。
	// スクロールの終わりに必ず量 0 のイベントが届く。
	// 値 1 はポインター移動量 1 と同じ座標系。
	AxisSourceFinger AxisSource = iota
	// AxisSourceContinuous は連続的なスクロールデバイス。
	// 終了イベントは届くこともあるが保証されない。
	AxisSourceContinuous
	// AxisSourceWheel はスクロールホイール。離散的なステップで届き、終了イベントは保証されない。
	AxisSourceWheel
	// AxisSourceWheelTilt はホイールの傾きによるスクロール。終了イベントは保証されない。
	AxisSourceWheelTilt
)

// GuaranteesTermination は量 0 の終了イベントが保証されるソースかどうかを返す
func (s AxisSource) GuaranteesTermination() bool {
	return s == AxisSourceFinger
}

func (s AxisSource) String() string {
	switch s {
	case AxisSourceFinger:
		return "finger"
	case AxisSourceContinuous:
		return "continuous"
	case AxisSourceWheel:
		return "wheel"
	case AxisSourceWheelTilt:
		return "wheel-tilt"
	}
	return "AxisSource(" + strconv.Itoa(int(s)) + ")"
}

// PointerAxisEvent はスクロールイベント
type PointerAxisEvent interface {
	Event
	Axis() Axis
	// Source は Amount の解釈に必要
	Source() AxisSource
	Amount() float64
}

// PointerMotionEvent は相対的なポインター移動。
// 差分はピクセル単位として解釈する。
type PointerMotionEvent interface {
	Event
	DeltaX() uint32
	DeltaY() uint32
}

// Positioned はデバイス固有の座標と、任意の整数座標空間への変換を提供する。
// 2つの見方は同じサンプルから導かれ、個別に変更されることはない。
type Positioned interface {
	// X はデバイス固有の座標系での x 座標。形式はバックエンドが決める。
	X() float64
	// Y はデバイス固有の座標系での y 座標
	Y() float64
	// XTransformed は幅 width の座標空間に変換した x 座標。[0, width) に収まる。
	XTransformed(width uint32) uint32
	// YTransformed は高さ height の座標空間に変換した y 座標。[0, height) に収まる。
	YTransformed(height uint32) uint32
}

// PointerMotionAbsoluteEvent は絶対座標によるポインター移動
type PointerMotionAbsoluteEvent interface {
	Event
	Positioned
}

// TouchDownEvent は接触の開始
type TouchDownEvent interface {
	Event
	// Slot はマルチタッチ対応デバイスの場合のみスロットを返す
	Slot() (TouchSlot, bool)
	Positioned
}

// TouchMotionEvent は接触点の移動
type TouchMotionEvent interface {
	Event
	Slot() (TouchSlot, bool)
	Positioned
}

// TouchUpEvent は接触の終了
type TouchUpEvent interface {
	Event
	Slot() (TouchSlot, bool)
}

// TouchCancelEvent は接触の取り消し
type TouchCancelEvent interface {
	Event
	Slot() (TouchSlot, bool)
}

// TouchFrameEvent は同じ物理的な更新で届いたタッチイベントのまとまりの終わりを示す
type TouchFrameEvent interface {
	Event
}
