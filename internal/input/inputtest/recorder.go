package inputtest

import "github.com/char5742/inputcore/internal/input"

// Kind は記録されたコールバックの種類
type Kind string

const (
	SeatCreated         Kind = "seat_created"
	SeatDestroyed       Kind = "seat_destroyed"
	SeatChanged         Kind = "seat_changed"
	KeyboardKey         Kind = "keyboard_key"
	PointerMove         Kind = "pointer_move"
	PointerMoveAbsolute Kind = "pointer_move_absolute"
	PointerButton       Kind = "pointer_button"
	PointerAxis         Kind = "pointer_axis"
	TouchDown           Kind = "touch_down"
	TouchMotion         Kind = "touch_motion"
	TouchUp             Kind = "touch_up"
	TouchCancel         Kind = "touch_cancel"
	TouchFrame          Kind = "touch_frame"
	InputConfigChanged  Kind = "input_config_changed"
)

// Call は1回のコールバック呼び出し
type Call struct {
	Kind  Kind
	Seat  input.Seat
	Event input.Event // シート通知と設定変更では nil
}

// Recorder はすべてのコールバックを順番に記録するハンドラ
type Recorder[C any] struct {
	calls   []Call
	configs []*C
}

var _ input.AnyHandler[struct{}] = (*Recorder[struct{}])(nil)

// NewRecorder は空の Recorder を返す
func NewRecorder[C any]() *Recorder[C] {
	return &Recorder[C]{}
}

// Calls は記録された呼び出しを返す
func (r *Recorder[C]) Calls() []Call {
	return append([]Call(nil), r.calls...)
}

// Kinds は記録された呼び出しの種類だけを返す
func (r *Recorder[C]) Kinds() []Kind {
	out := make([]Kind, len(r.calls))
	for i, c := range r.calls {
		out[i] = c.Kind
	}
	return out
}

// Filter は指定した種類の呼び出しだけを返す
func (r *Recorder[C]) Filter(kinds ...Kind) []Call {
	var out []Call
	for _, c := range r.calls {
		for _, k := range kinds {
			if c.Kind == k {
				out = append(out, c)
				break
			}
		}
	}
	return out
}

// Configs は OnInputConfigChanged に渡された設定を返す
func (r *Recorder[C]) Configs() []*C {
	return append([]*C(nil), r.configs...)
}

// Reset は記録を消去する
func (r *Recorder[C]) Reset() {
	r.calls = nil
	r.configs = nil
}

func (r *Recorder[C]) record(kind Kind, seat input.Seat, ev input.Event) {
	r.calls = append(r.calls, Call{Kind: kind, Seat: seat, Event: ev})
}

func (r *Recorder[C]) OnSeatCreated(seat input.Seat) { r.record(SeatCreated, seat, nil) }

func (r *Recorder[C]) OnSeatDestroyed(seat input.Seat) { r.record(SeatDestroyed, seat, nil) }

func (r *Recorder[C]) OnSeatChanged(seat input.Seat) { r.record(SeatChanged, seat, nil) }

func (r *Recorder[C]) OnKeyboardKey(seat input.Seat, ev input.KeyboardKeyEvent) {
	r.record(KeyboardKey, seat, ev)
}

func (r *Recorder[C]) OnPointerMove(seat input.Seat, ev input.PointerMotionEvent) {
	r.record(PointerMove, seat, ev)
}

func (r *Recorder[C]) OnPointerMoveAbsolute(seat input.Seat, ev input.PointerMotionAbsoluteEvent) {
	r.record(PointerMoveAbsolute, seat, ev)
}

func (r *Recorder[C]) OnPointerButton(seat input.Seat, ev input.PointerButtonEvent) {
	r.record(PointerButton, seat, ev)
}

func (r *Recorder[C]) OnPointerAxis(seat input.Seat, ev input.PointerAxisEvent) {
	r.record(PointerAxis, seat, ev)
}

func (r *Recorder[C]) OnTouchDown(seat input.Seat, ev input.TouchDownEvent) {
	r.record(TouchDown, seat, ev)
}

func (r *Recorder[C]) OnTouchMotion(seat input.Seat, ev input.TouchMotionEvent) {
	r.record(TouchMotion, seat, ev)
}

func (r *Recorder[C]) OnTouchUp(seat input.Seat, ev input.TouchUpEvent) {
	r.record(TouchUp, seat, ev)
}

func (r *Recorder[C]) OnTouchCancel(seat input.Seat, ev input.TouchCancelEvent) {
	r.record(TouchCancel, seat, ev)
}

func (r *Recorder[C]) OnTouchFrame(seat input.Seat, ev input.TouchFrameEvent) {
	r.record(TouchFrame, seat, ev)
}

func (r *Recorder[C]) OnInputConfigChanged(config *C) {
	r.calls = append(r.calls, Call{Kind: InputConfigChanged})
	r.configs = append(r.configs, config)
}
