package uinput

import (
	"encoding/binary"
	"testing"
	"unsafe"

	"go.viam.com/test"

	"github.com/char5742/inputcore/internal/evcode"
)

func TestUserDevLayout(t *testing.T) {
	// struct uinput_user_dev と同じ大きさでなければカーネルに拒否される
	test.That(t, binary.Size(UserDev{}), test.ShouldEqual, 80+8+4+4*64*4)
}

func TestToUinputName(t *testing.T) {
	name := toUinputName("inputcore keyboard")
	test.That(t, string(name[:18]), test.ShouldEqual, "inputcore keyboard")
	test.That(t, name[18], test.ShouldEqual, byte(0))

	long := make([]byte, 200)
	for i := range long {
		long[i] = 'x'
	}
	name = toUinputName(string(long))
	test.That(t, name[MaxNameSize-2], test.ShouldEqual, byte('x'))
	test.That(t, name[MaxNameSize-1], test.ShouldEqual, byte(0))
}

func TestEncodeEvents(t *testing.T) {
	data, err := encodeEvents(keyEvents(evcode.KeyA, true))
	test.That(t, err, test.ShouldBeNil)
	size := int(unsafe.Sizeof(evcode.Event{}))
	test.That(t, data, test.ShouldHaveLength, 2*size)

	// type, code, value は時刻の直後に並ぶ
	off := size - 8
	test.That(t, binary.LittleEndian.Uint16(data[off:]), test.ShouldEqual, uint16(evcode.Key))
	test.That(t, binary.LittleEndian.Uint16(data[off+2:]), test.ShouldEqual, uint16(evcode.KeyA))
	test.That(t, int32(binary.LittleEndian.Uint32(data[off+4:])), test.ShouldEqual, int32(1))
	test.That(t, binary.LittleEndian.Uint16(data[size+off:]), test.ShouldEqual, uint16(evcode.Syn))
}

func TestTouchEvents(t *testing.T) {
	down := touchDownEvents(1, 42, 100, 200, true)
	test.That(t, down[0], test.ShouldResemble, abs(evcode.AbsMtSlot, 1))
	test.That(t, down[1], test.ShouldResemble, abs(evcode.AbsMtTrackingID, 42))
	test.That(t, contains(down, evcode.Event{Type: evcode.Key, Code: evcode.BtnTouch, Value: 1}), test.ShouldBeTrue)
	test.That(t, down[len(down)-1], test.ShouldResemble, syn())

	second := touchDownEvents(2, 43, 0, 0, false)
	test.That(t, contains(second, evcode.Event{Type: evcode.Key, Code: evcode.BtnTouch, Value: 1}), test.ShouldBeFalse)

	up := touchUpEvents(1, false)
	test.That(t, up[1], test.ShouldResemble, abs(evcode.AbsMtTrackingID, -1))
	test.That(t, contains(up, evcode.Event{Type: evcode.Key, Code: evcode.BtnTouch, Value: 0}), test.ShouldBeFalse)
	test.That(t, contains(touchUpEvents(2, true), evcode.Event{Type: evcode.Key, Code: evcode.BtnTouch, Value: 0}), test.ShouldBeTrue)

	move := touchMoveEvents(0, 5, 6)
	test.That(t, move, test.ShouldHaveLength, 5)
}

func contains(events []evcode.Event, want evcode.Event) bool {
	for _, ev := range events {
		if ev == want {
			return true
		}
	}
	return false
}
