package main

import (
	"github.com/char5742/inputcore/internal/config"
	"github.com/char5742/inputcore/internal/input"
	"github.com/char5742/inputcore/internal/logging"
	"github.com/char5742/inputcore/internal/wire"
)

// printer は受け取ったイベントを wire のメッセージとしてログに出力する
type printer[C any] struct {
	logger logging.Logger
	space  input.Size
}

// eventSpace は座標を持つイベントをログや API に出すときの座標空間
var eventSpace = input.Size{Width: 1920, Height: 1080}

func newPrinter[C any](logger logging.Logger, space input.Size) *printer[C] {
	return &printer[C]{logger: logger, space: space}
}

func (p *printer[C]) print(msg wire.Message) {
	p.logger.Infow(string(msg.Kind), "message", msg)
}

func (p *printer[C]) OnSeatCreated(seat input.Seat) {
	p.print(wire.SeatMessage(wire.KindSeatCreated, seat))
}

func (p *printer[C]) OnSeatDestroyed(seat input.Seat) {
	p.print(wire.SeatMessage(wire.KindSeatDestroyed, seat))
}

func (p *printer[C]) OnSeatChanged(seat input.Seat) {
	p.print(wire.SeatMessage(wire.KindSeatChanged, seat))
}

func (p *printer[C]) OnInputConfigChanged(cfg *C) {
	p.logger.Infow("input_config_changed", "config", cfg)
}

func (p *printer[C]) OnKeyboardKey(seat input.Seat, ev input.KeyboardKeyEvent) {
	p.print(wire.KeyMessage(seat, ev))
}

func (p *printer[C]) OnPointerMove(seat input.Seat, ev input.PointerMotionEvent) {
	p.print(wire.MotionMessage(seat, ev))
}

func (p *printer[C]) OnPointerMoveAbsolute(seat input.Seat, ev input.PointerMotionAbsoluteEvent) {
	p.print(wire.MotionAbsoluteMessage(seat, ev, p.space))
}

func (p *printer[C]) OnPointerButton(seat input.Seat, ev input.PointerButtonEvent) {
	p.print(wire.ButtonMessage(seat, ev))
}

func (p *printer[C]) OnPointerAxis(seat input.Seat, ev input.PointerAxisEvent) {
	p.print(wire.AxisMessage(seat, ev))
}

func (p *printer[C]) OnTouchDown(seat input.Seat, ev input.TouchDownEvent) {
	p.print(wire.TouchDownMessage(seat, ev, p.space))
}

func (p *printer[C]) OnTouchMotion(seat input.Seat, ev input.TouchMotionEvent) {
	p.print(wire.TouchMotionMessage(seat, ev, p.space))
}

func (p *printer[C]) OnTouchUp(seat input.Seat, ev input.TouchUpEvent) {
	p.print(wire.TouchUpMessage(seat, ev))
}

func (p *printer[C]) OnTouchCancel(seat input.Seat, ev input.TouchCancelEvent) {
	p.print(wire.TouchCancelMessage(seat, ev))
}

func (p *printer[C]) OnTouchFrame(seat input.Seat, ev input.TouchFrameEvent) {
	p.print(wire.TouchFrameMessage(seat, ev))
}

// fanout はすべての呼び出しを登録順に複数のハンドラへ渡す
type fanout[C any] []input.AnyHandler[C]

func (f fanout[C]) OnSeatCreated(seat input.Seat) {
	for _, h := range f {
		h.OnSeatCreated(seat)
	}
}

func (f fanout[C]) OnSeatDestroyed(seat input.Seat) {
	for _, h := range f {
		h.OnSeatDestroyed(seat)
	}
}

func (f fanout[C]) OnSeatChanged(seat input.Seat) {
	for _, h := range f {
		h.OnSeatChanged(seat)
	}
}

func (f fanout[C]) OnInputConfigChanged(cfg *C) {
	for _, h := range f {
		h.OnInputConfigChanged(cfg)
	}
}

func (f fanout[C]) OnKeyboardKey(seat input.Seat, ev input.KeyboardKeyEvent) {
	for _, h := range f {
		h.OnKeyboardKey(seat, ev)
	}
}

func (f fanout[C]) OnPointerMove(seat input.Seat, ev input.PointerMotionEvent) {
	for _, h := range f {
		h.OnPointerMove(seat, ev)
	}
}

func (f fanout[C]) OnPointerMoveAbsolute(seat input.Seat, ev input.PointerMotionAbsoluteEvent) {
	for _, h := range f {
		h.OnPointerMoveAbsolute(seat, ev)
	}
}

func (f fanout[C]) OnPointerButton(seat input.Seat, ev input.PointerButtonEvent) {
	for _, h := range f {
		h.OnPointerButton(seat, ev)
	}
}

func (f fanout[C]) OnPointerAxis(seat input.Seat, ev input.PointerAxisEvent) {
	for _, h := range f {
		h.OnPointerAxis(seat, ev)
	}
}

func (f fanout[C]) OnTouchDown(seat input.Seat, ev input.TouchDownEvent) {
	for _, h := range f {
		h.OnTouchDown(seat, ev)
	}
}

func (f fanout[C]) OnTouchMotion(seat input.Seat, ev input.TouchMotionEvent) {
	for _, h := range f {
		h.OnTouchMotion(seat, ev)
	}
}

func (f fanout[C]) OnTouchUp(seat input.Seat, ev input.TouchUpEvent) {
	for _, h := range f {
		h.OnTouchUp(seat, ev)
	}
}

func (f fanout[C]) OnTouchCancel(seat input.Seat, ev input.TouchCancelEvent) {
	for _, h := range f {
		h.OnTouchCancel(seat, ev)
	}
}

func (f fanout[C]) OnTouchFrame(seat input.Seat, ev input.TouchFrameEvent) {
	for _, h := range f {
		h.OnTouchFrame(seat, ev)
	}
}

// handlersFor は設定に応じたハンドラを組み立てる。
// モニターには常に渡し、ログレベルが debug ならイベントもログに出す。
func handlersFor[C any](cfg *config.Config, monitor input.AnyHandler[C], logger logging.Logger, space input.Size) input.AnyHandler[C] {
	hs := fanout[C]{monitor}
	if cfg.Log.Level == "debug" {
		hs = append(hs, newPrinter[C](logger, space))
	}
	return hs
}
