package input

// SeatHandler はシートのライフサイクル通知を受け取る
type SeatHandler interface {
	// OnSeatCreated は新しいシートが認識されたときに呼ばれる
	OnSeatCreated(seat Seat)
	// OnSeatDestroyed はシートのデバイスがすべて取り外されたときに呼ばれる
	OnSeatDestroyed(seat Seat)
	// OnSeatChanged はシートの能力に影響しうる変化があったときに呼ばれる。
	// 実際に前回から変化していることは保証されない。
	OnSeatChanged(seat Seat)
}

// Handler はバックエンドからのイベントを受け取るためにアプリケーションが実装する。
//
// 型パラメータはバックエンドが生成する具体的な型で、順に
// 設定、キーボード、スクロール、ボタン、相対移動、絶対移動、
// タッチ down、up、motion、cancel、frame に対応する。
type Handler[
	C any,
	KK KeyboardKeyEvent,
	PA PointerAxisEvent,
	PB PointerButtonEvent,
	PM PointerMotionEvent,
	PMA PointerMotionAbsoluteEvent,
	TD TouchDownEvent,
	TU TouchUpEvent,
	TM TouchMotionEvent,
	TC TouchCancelEvent,
	TF TouchFrameEvent,
] interface {
	SeatHandler

	OnKeyboardKey(seat Seat, event KK)
	OnPointerMove(seat Seat, event PM)
	OnPointerMoveAbsolute(seat Seat, event PMA)
	OnPointerButton(seat Seat, event PB)
	OnPointerAxis(seat Seat, event PA)

	OnTouchDown(seat Seat, event TD)
	OnTouchMotion(seat Seat, event TM)
	OnTouchUp(seat Seat, event TU)
	OnTouchCancel(seat Seat, event TC)
	OnTouchFrame(seat Seat, event TF)

	// OnInputConfigChanged は外部の要因で設定が変わったときに呼ばれる。
	// どのような要因で呼ばれるかはバックエンド次第（デバイスの接続など）。
	OnInputConfigChanged(config *C)
}

// AnyHandler はイベントをインターフェース型のまま受け取るハンドラ。
// Adapt で任意のバックエンドのハンドラに変換できる。
type AnyHandler[C any] interface {
	Handler[C,
		KeyboardKeyEvent,
		PointerAxisEvent,
		PointerButtonEvent,
		PointerMotionEvent,
		PointerMotionAbsoluteEvent,
		TouchDownEvent,
		TouchUpEvent,
		TouchMotionEvent,
		TouchCancelEvent,
		TouchFrameEvent]
}

// Adapt は AnyHandler を具体的なイベント型を受け取る Handler に変換する。
// すべての呼び出しはそのまま転送される。
func Adapt[
	C any,
	KK KeyboardKeyEvent,
	PA PointerAxisEvent,
	PB PointerButtonEvent,
	PM PointerMotionEvent,
	PMA PointerMotionAbsoluteEvent,
	TD TouchDownEvent,
	TU TouchUpEvent,
	TM TouchMotionEvent,
	TC TouchCancelEvent,
	TF TouchFrameEvent,
](h AnyHandler[C]) Handler[C, KK, PA, PB, PM, PMA, TD, TU, TM, TC, TF] {
	return &adapter[C, KK, PA, PB, PM, PMA, TD, TU, TM, TC, TF]{h: h}
}

type adapter[
	C any,
	KK KeyboardKeyEvent,
	PA PointerAxisEvent,
	PB PointerButtonEvent,
	PM PointerMotionEvent,
	PMA PointerMotionAbsoluteEvent,
	TD TouchDownEvent,
	TU TouchUpEvent,
	TM TouchMotionEvent,
	TC TouchCancelEvent,
	TF TouchFrameEvent,
] struct {
	h AnyHandler[C]
}

func (a *adapter[C, KK, PA, PB, PM, PMA, TD, TU, TM, TC, TF]) OnSeatCreated(seat Seat) {
	a.h.OnSeatCreated(seat)
}

func (a *adapter[C, KK, PA, PB, PM, PMA, TD, TU, TM, TC, TF]) OnSeatDestroyed(seat Seat) {
	a.h.OnSeatDestroyed(seat)
}

func (a *adapter[C, KK, PA, PB, PM, PMA, TD, TU, TM, TC, TF]) OnSeatChanged(seat Seat) {
	a.h.OnSeatChanged(seat)
}

func (a *adapter[C, KK, PA, PB, PM, PMA, TD, TU, TM, TC, TF]) OnKeyboardKey(seat Seat, event KK) {
	a.h.OnKeyboardKey(seat, event)
}

func (a *adapter[C, KK, PA, PB, PM, PMA, TD, TU, TM, TC, TF]) OnPointerMove(seat Seat, event PM) {
	a.h.OnPointerMove(seat, event)
}

func (a *adapter[C, KK, PA, PB, PM, PMA, TD, TU, TM, TC, TF]) OnPointerMoveAbsolute(seat Seat, event PMA) {
	a.h.OnPointerMoveAbsolute(seat, event)
}

func (a *adapter[C, KK, PA, PB, PM, PMA, TD, TU, TM, TC, TF]) OnPointerButton(seat Seat, event PB) {
	a.h.OnPointerButton(seat, event)
}

func (a *adapter[C, KK, PA, PB, PM, PMA, TD, TU, TM, TC, TF]) OnPointerAxis(seat Seat, event PA) {
	a.h.OnPointerAxis(seat, event)
}

func (a *adapter[C, KK, PA, PB, PM, PMA, TD, TU, TM, TC, TF]) OnTouchDown(seat Seat, event TD) {
	a.h.OnTouchDown(seat, event)
}

func (a *adapter[C, KK, PA, PB, PM, PMA, TD, TU, TM, TC, TF]) OnTouchMotion(seat Seat, event TM) {
	a.h.OnTouchMotion(seat, event)
}

func (a *adapter[C, KK, PA, PB, PM, PMA, TD, TU, TM, TC, TF]) OnTouchUp(seat Seat, event TU) {
	a.h.OnTouchUp(seat, event)
}

func (a *adapter[C, KK, PA, PB, PM, PMA, TD, TU, TM, TC, TF]) OnTouchCancel(seat Seat, event TC) {
	a.h.OnTouchCancel(seat, event)
}

func (a *adapter[C, KK, PA, PB, PM, PMA, TD, TU, TM, TC, TF]) OnTouchFrame(seat Seat, event TF) {
	a.h.OnTouchFrame(seat, event)
}

func (a *adapter[C, KK, PA, PB, PM, PMA, TD, TU, TM, TC, TF]) OnInputConfigChanged(config *C) {
	a.h.OnInputConfigChanged(config)
}
