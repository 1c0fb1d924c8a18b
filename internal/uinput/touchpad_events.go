package uinput

import "github.com/char5742/inputcore/internal/evcode"

// MaxSlots は仮想タッチパッドが同時に扱える接触の数
const MaxSlots = 10

func abs(code uint16, value int32) evcode.Event {
	return evcode.Event{Type: evcode.Abs, Code: code, Value: value}
}

// touchDownEvents は接触開始のイベント列。first は最初の接触のときに true。
func touchDownEvents(slot, trackingID int, x, y int32, first bool) []evcode.Event {
	events := []evcode.Event{
		abs(evcode.AbsMtSlot, int32(slot)),
		abs(evcode.AbsMtTrackingID, int32(trackingID)),
		abs(evcode.AbsMtPositionX, x),
		abs(evcode.AbsMtPositionY, y),
		abs(evcode.AbsMtTouchMajor, 50),
		abs(evcode.AbsMtPressure, 30),
	}
	if first {
		events = append(events,
			evcode.Event{Type: evcode.Key, Code: evcode.BtnTouch, Value: 1},
			evcode.Event{Type: evcode.Key, Code: evcode.BtnToolFinger, Value: 1},
			abs(evcode.AbsX, x),
			abs(evcode.AbsY, y),
		)
	}
	return append(events, syn())
}

// touchMoveEvents はタッチ位置の更新
func touchMoveEvents(slot int, x, y int32) []evcode.Event {
	return []evcode.Event{
		abs(evcode.AbsMtSlot, int32(slot)),
		abs(evcode.AbsMtPositionX, x),
		abs(evcode.AbsMtPositionY, y),
		abs(evcode.AbsMtTouchMajor, 50),
		syn(),
	}
}

// touchUpEvents は接触終了のイベント列。last は最後の接触が離れるときに true。
func touchUpEvents(slot int, last bool) []evcode.Event {
	events := []evcode.Event{
		abs(evcode.AbsMtSlot, int32(slot)),
		abs(evcode.AbsMtTrackingID, -1),
		abs(evcode.AbsMtTouchMajor, 0),
	}
	if last {
		events = append(events,
			evcode.Event{Type: evcode.Key, Code: evcode.BtnTouch, Value: 0},
			evcode.Event{Type: evcode.Key, Code: evcode.BtnToolFinger, Value: 0},
		)
	}
	return append(events, syn())
}
