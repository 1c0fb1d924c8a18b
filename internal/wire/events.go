package wire

import "github.com/char5742/inputcore/internal/input"

// SeatMessage はシートの通知を表すメッセージを作る
func SeatMessage(kind Kind, seat input.Seat) Message {
	caps := seat.Capabilities()
	return Message{Kind: kind, Seat: seat.ID(), Capabilities: &caps}
}

// ConfigChangedMessage は設定の変更を表すメッセージを作る
func ConfigChangedMessage() Message {
	return Message{Kind: KindConfigChanged}
}

func KeyMessage(seat input.Seat, ev input.KeyboardKeyEvent) Message {
	return Message{
		Kind:  KindKey,
		Seat:  seat.ID(),
		Time:  ev.Time(),
		Key:   ev.KeyCode(),
		State: ev.State().String(),
		Count: ev.Count(),
	}
}

func MotionMessage(seat input.Seat, ev input.PointerMotionEvent) Message {
	dx, dy := input.SignedDelta(ev)
	return Message{Kind: KindMotion, Seat: seat.ID(), Time: ev.Time(), DX: dx, DY: dy}
}

func MotionAbsoluteMessage(seat input.Seat, ev input.PointerMotionAbsoluteEvent, space input.Size) Message {
	m := Message{Kind: KindMotionAbsolute, Seat: seat.ID(), Time: ev.Time()}
	m.setPosition(ev, space)
	return m
}

func ButtonMessage(seat input.Seat, ev input.PointerButtonEvent) Message {
	name, index := ButtonName(ev.Button())
	return Message{
		Kind:        KindButton,
		Seat:        seat.ID(),
		Time:        ev.Time(),
		Button:      name,
		ButtonIndex: index,
		State:       ev.State().String(),
	}
}

func AxisMessage(seat input.Seat, ev input.PointerAxisEvent) Message {
	return Message{
		Kind:   KindAxis,
		Seat:   seat.ID(),
		Time:   ev.Time(),
		Axis:   ev.Axis().String(),
		Source: ev.Source().String(),
		Amount: ev.Amount(),
	}
}

func TouchDownMessage(seat input.Seat, ev input.TouchDownEvent, space input.Size) Message {
	m := Message{Kind: KindTouchDown, Seat: seat.ID(), Time: ev.Time()}
	m.setSlot(ev.Slot())
	m.setPosition(ev, space)
	return m
}

func TouchMotionMessage(seat input.Seat, ev input.TouchMotionEvent, space input.Size) Message {
	m := Message{Kind: KindTouchMotion, Seat: seat.ID(), Time: ev.Time()}
	m.setSlot(ev.Slot())
	m.setPosition(ev, space)
	return m
}

func TouchUpMessage(seat input.Seat, ev input.TouchUpEvent) Message {
	m := Message{Kind: KindTouchUp, Seat: seat.ID(), Time: ev.Time()}
	m.setSlot(ev.Slot())
	return m
}

func TouchCancelMessage(seat input.Seat, ev input.TouchCancelEvent) Message {
	m := Message{Kind: KindTouchCancel, Seat: seat.ID(), Time: ev.Time()}
	m.setSlot(ev.Slot())
	return m
}

func TouchFrameMessage(seat input.Seat, ev input.TouchFrameEvent) Message {
	return Message{Kind: KindTouchFrame, Seat: seat.ID(), Time: ev.Time()}
}

func (m *Message) setSlot(slot input.TouchSlot, ok bool) {
	if ok {
		m.Slot = Ptr(slot.ID())
	}
}

// setPosition はデバイス固有の座標と、space が空でなければ変換後の座標を設定する
func (m *Message) setPosition(p input.Positioned, space input.Size) {
	m.X, m.Y = input.Position(p)
	if space.Width == 0 || space.Height == 0 {
		return
	}
	tx, ty := input.PositionTransformed(p, space)
	m.TX, m.TY = Ptr(tx), Ptr(ty)
}
