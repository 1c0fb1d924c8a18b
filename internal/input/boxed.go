package input

// BoxedHandler は別のハンドラへの参照を保持し、すべての呼び出しを変更せずに転送する。
// バックエンドは具体的な型を知らないまま保存でき、中身は Swap で差し替えられる。
type BoxedHandler[
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
	inner Handler[C, KK, PA, PB, PM, PMA, TD, TU, TM, TC, TF]
}

// Box は h を包んだ BoxedHandler を返す
func Box[
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
](h Handler[C, KK, PA, PB, PM, PMA, TD, TU, TM, TC, TF]) *BoxedHandler[C, KK, PA, PB, PM, PMA, TD, TU, TM, TC, TF] {
	if h == nil {
		panic("input: Box called with nil handler")
	}
	return &BoxedHandler[C, KK, PA, PB, PM, PMA, TD, TU, TM, TC, TF]{inner: h}
}

// Unwrap は包まれているハンドラを返す
func (b *BoxedHandler[C, KK, PA, PB, PM, PMA, TD, TU, TM, TC, TF]) Unwrap() Handler[C, KK, PA, PB, PM, PMA, TD, TU, TM, TC, TF] {
	return b.inner
}

// Swap は中身を h に差し替え、以前のハンドラを返す
func (b *BoxedHandler[C, KK, PA, PB, PM, PMA, TD, TU, TM, TC, TF]) Swap(h Handler[C, KK, PA, PB, PM, PMA, TD, TU, TM, TC, TF]) Handler[C, KK, PA, PB, PM, PMA, TD, TU, TM, TC, TF] {
	if h == nil {
		panic("input: Swap called with nil handler")
	}
	prev := b.inner
	b.inner = h
	return prev
}

func (b *BoxedHandler[C, KK, PA, PB, PM, PMA, TD, TU, TM, TC, TF]) OnSeatCreated(seat Seat) {
	b.inner.OnSeatCreated(seat)
}

func (b *BoxedHandler[C, KK, PA, PB, PM, PMA, TD, TU, TM, TC, TF]) OnSeatDestroyed(seat Seat) {
	b.inner.OnSeatDestroyed(seat)
}

func (b *BoxedHandler[C, KK, PA, PB, PM, PMA, TD, TU, TM, TC, TF]) OnSeatChanged(seat Seat) {
	b.inner.OnSeatChanged(seat)
}

func (b *BoxedHandler[C, KK, PA, PB, PM, PMA, TD, TU, TM, TC, TF]) OnKeyboardKey(seat Seat, event KK) {
	b.inner.OnKeyboardKey(seat, event)
}

func (b *BoxedHandler[C, KK, PA, PB, PM, PMA, TD, TU, TM, TC, TF]) OnPointerMove(seat Seat, event PM) {
	b.inner.OnPointerMove(seat, event)
}

func (b *BoxedHandler[C, KK, PA, PB, PM, PMA, TD, TU, TM, TC, TF]) OnPointerMoveAbsolute(seat Seat, event PMA) {
	b.inner.OnPointerMoveAbsolute(seat, event)
}

func (b *BoxedHandler[C, KK, PA, PB, PM, PMA, TD, TU, TM, TC, TF]) OnPointerButton(seat Seat, event PB) {
	b.inner.OnPointerButton(seat, event)
}

func (b *BoxedHandler[C, KK, PA, PB, PM, PMA, TD, TU, TM, TC, TF]) OnPointerAxis(seat Seat, event PA) {
	b.inner.OnPointerAxis(seat, event)
}

func (b *BoxedHandler[C, KK, PA, PB, PM, PMA, TD, TU, TM, TC, TF]) OnTouchDown(seat Seat, event TD) {
	b.inner.OnTouchDown(seat, event)
}

func (b *BoxedHandler[C, KK, PA, PB, PM, PMA, TD, TU, TM, TC, TF]) OnTouchMotion(seat Seat, event TM) {
	b.inner.OnTouchMotion(seat, event)
}

func (b *BoxedHandler[C, KK, PA, PB, PM, PMA, TD, TU, TM, TC, TF]) OnTouchUp(seat Seat, event TU) {
	b.inner.OnTouchUp(seat, event)
}

func (b *BoxedHandler[C, KK, PA, PB, PM, PMA, TD, TU, TM, TC, TF]) OnTouchCancel(seat Seat, event TC) {
	b.inner.OnTouchCancel(seat, event)
}

func (b *BoxedHandler[C, KK, PA, PB, PM, PMA, TD, TU, TM, TC, TF]) OnTouchFrame(seat Seat, event TF) {
	b.inner.OnTouchFrame(seat, event)
}

func (b *BoxedHandler[C, KK, PA, PB, PM, PMA, TD, TU, TM, TC, TF]) OnInputConfigChanged(config *C) {
	b.inner.OnInputConfigChanged(config)
}
