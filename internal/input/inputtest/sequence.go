package inputtest

import (
	"github.com/pkg/errors"

	"github.com/char5742/inputcore/internal/input"
)

type slotted interface {
	Slot() (input.TouchSlot, bool)
}

// CheckTouchSequences はタッチの接触ごとに同じスロットが使われていることを確認する。
// down から motion を経て up/cancel まで同じスロット（または一貫してスロットなし）で
// なければならない。シートごとにひとつのタッチデバイスを前提とする。
func CheckTouchSequences(calls []Call) error {
	type seatState struct {
		mode      int // 0: 未定, 1: スロットあり, 2: スロットなし
		live      map[uint64]bool
		unslotted bool
	}
	seats := make(map[uint64]*seatState)

	for i, c := range calls {
		switch c.Kind {
		case TouchDown, TouchMotion, TouchUp, TouchCancel:
		default:
			continue
		}
		st := seats[c.Seat.ID()]
		if st == nil {
			st = &seatState{live: make(map[uint64]bool)}
			seats[c.Seat.ID()] = st
		}
		s, ok := c.Event.(slotted)
		if !ok {
			return errors.Errorf("call %d: %s event has no slot accessor", i, c.Kind)
		}
		slot, has := s.Slot()
		mode := 2
		if has {
			mode = 1
		}
		if st.mode != 0 && st.mode != mode {
			return errors.Errorf("call %d: slot presence changed within the event stream of %s", i, c.Seat)
		}
		st.mode = mode

		if !has {
			switch c.Kind {
			case TouchDown:
				if st.unslotted {
					return errors.Errorf("call %d: touch down while a slot-less contact is live", i)
				}
				st.unslotted = true
			case TouchMotion:
				if !st.unslotted {
					return errors.Errorf("call %d: touch motion without a live contact", i)
				}
			case TouchUp, TouchCancel:
				if !st.unslotted {
					return errors.Errorf("call %d: %s without a live contact", i, c.Kind)
				}
				st.unslotted = false
			}
			continue
		}

		id := slot.ID()
		switch c.Kind {
		case TouchDown:
			if st.live[id] {
				return errors.Errorf("call %d: %s reused while live", i, slot)
			}
			st.live[id] = true
		case TouchMotion:
			if !st.live[id] {
				return errors.Errorf("call %d: touch motion on %s which is not live", i, slot)
			}
		case TouchUp, TouchCancel:
			if !st.live[id] {
				return errors.Errorf("call %d: %s on %s which is not live", i, c.Kind, slot)
			}
			delete(st.live, id)
		}
	}
	return nil
}

// CheckFingerTermination は Finger ソースのスクロールがすべて量 0 のイベントで終わっていることを確認する
func CheckFingerTermination(calls []Call) error {
	type key struct {
		seat uint64
		axis input.Axis
	}
	open := make(map[key]int)
	for i, c := range calls {
		if c.Kind != PointerAxis {
			continue
		}
		ev := c.Event.(input.PointerAxisEvent)
		if ev.Source() != input.AxisSourceFinger {
			continue
		}
		k := key{c.Seat.ID(), ev.Axis()}
		if ev.Amount() == 0 {
			delete(open, k)
			continue
		}
		if _, ok := open[k]; !ok {
			open[k] = i
		}
	}
	for k, start := range open {
		return errors.Errorf("finger scroll on seat %d axis %s starting at call %d was never terminated", k.seat, k.axis, start)
	}
	return nil
}
