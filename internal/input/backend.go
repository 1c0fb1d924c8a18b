package input

// Backend は入力イベントの発生源。すべてのバックエンドが実装し、同じ保証を提供する。
//
// 型パラメータで設定とイベントの具体的な型を宣言する（Handler と同じ順序）。
// DispatchNewEvents が返すエラーの具体的な型はバックエンドごとに定義され、
// errors.As で取り出せる。
type Backend[
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
	// SetHandler は h を唯一の受け取り先として設定し、以前のハンドラを返す。
	// 返されたハンドラはバックエンドからもう参照されない。
	SetHandler(h Handler[C, KK, PA, PB, PM, PMA, TD, TU, TM, TC, TF]) Handler[C, KK, PA, PB, PM, PMA, TD, TU, TM, TC, TF]
	// Handler は設定中のハンドラを返す。所有権は移らない。
	Handler() (Handler[C, KK, PA, PB, PM, PMA, TD, TU, TM, TC, TF], bool)
	// ClearHandler はハンドラを外す。以降のイベントは新しいハンドラが設定されるまで配送されない。
	ClearHandler()
	// InputConfig は変更可能な設定を返す。変更は DispatchNewEvents の呼び出しの合間にのみ行うこと。
	InputConfig() *C
	// DispatchNewEvents は保留中のデバイスの動きを読み取り、対応するコールバックを同期的に呼ぶ。
	// 読み取りに失敗した場合はそこで中断し、それまでに配送したイベントは取り消されない。
	DispatchNewEvents() error
}

// HandlerSlot は Backend のハンドラ管理部分の共通実装。バックエンドに埋め込んで使う。
type HandlerSlot[
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
	handler Handler[C, KK, PA, PB, PM, PMA, TD, TU, TM, TC, TF]
}

// SetHandler は h を設定し、以前のハンドラを返す。nil を渡すと ClearHandler と同じ。
func (s *HandlerSlot[C, KK, PA, PB, PM, PMA, TD, TU, TM, TC, TF]) SetHandler(h Handler[C, KK, PA, PB, PM, PMA, TD, TU, TM, TC, TF]) Handler[C, KK, PA, PB, PM, PMA, TD, TU, TM, TC, TF] {
	prev := s.handler
	s.handler = h
	return prev
}

// Handler は設定中のハンドラを返す
func (s *HandlerSlot[C, KK, PA, PB, PM, PMA, TD, TU, TM, TC, TF]) Handler() (Handler[C, KK, PA, PB, PM, PMA, TD, TU, TM, TC, TF], bool) {
	return s.handler, s.handler != nil
}

// ClearHandler はハンドラを外す
func (s *HandlerSlot[C, KK, PA, PB, PM, PMA, TD, TU, TM, TC, TF]) ClearHandler() {
	s.handler = nil
}

// SeatHandler は SeatTracker に渡すためのシート通知先を返す。ハンドラがなければ nil。
func (s *HandlerSlot[C, KK, PA, PB, PM, PMA, TD, TU, TM, TC, TF]) SeatHandler() SeatHandler {
	if s.handler == nil {
		return nil
	}
	return s.handler
}

// DispatchGuard はコールバックの中からの DispatchNewEvents の再入を検出する。
// 再入は契約違反なので panic する。
type DispatchGuard struct {
	active bool
}

// Enter はディスパッチの開始を記録する
func (g *DispatchGuard) Enter() {
	if g.active {
		panic("input: DispatchNewEvents re-entered from a handler callback")
	}
	g.active = true
}

// Exit はディスパッチの終了を記録する
func (g *DispatchGuard) Exit() {
	g.active = false
}
