package wire_test

import (
	"testing"

	"go.viam.com/test"

	"github.com/char5742/inputcore/internal/input"
	"github.com/char5742/inputcore/internal/input/inputtest"
	"github.com/char5742/inputcore/internal/wire"
)

func TestDecode(t *testing.T) {
	m, err := wire.Decode([]byte(`{"kind":"touch_down","device":"tablet","time":12,"x":10.5,"y":20,"slot":3}`))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, m.Kind, test.ShouldEqual, wire.KindTouchDown)
	test.That(t, m.Device, test.ShouldEqual, "tablet")
	test.That(t, m.Time, test.ShouldEqual, uint32(12))
	test.That(t, m.X, test.ShouldEqual, 10.5)
	test.That(t, m.HasSlot(), test.ShouldBeTrue)
	test.That(t, m.SlotID(), test.ShouldEqual, uint64(3))

	m, err = wire.Decode([]byte(`{"kind":"touch_up","device":"tablet"}`))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, m.HasSlot(), test.ShouldBeFalse)
	test.That(t, m.SlotID(), test.ShouldEqual, uint64(0))

	for _, bad := range []string{`{`, `{"device":"x"}`, `{"kind":"teleport"}`, `[]`} {
		_, err := wire.Decode([]byte(bad))
		test.That(t, err, test.ShouldNotBeNil)
	}
}

func TestEncodeOmitsEmpty(t *testing.T) {
	data, err := wire.Message{Kind: wire.KindTouchFrame, Seat: 2}.Encode()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, string(data), test.ShouldEqual, `{"kind":"touch_frame","seat":2}`)
}

func TestParse(t *testing.T) {
	ks, err := wire.ParseKeyState("pressed")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, ks, test.ShouldEqual, input.KeyPressed)
	_, err = wire.ParseKeyState("down")
	test.That(t, err, test.ShouldNotBeNil)

	bs, err := wire.ParseButtonState("released")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, bs, test.ShouldEqual, input.ButtonReleased)

	for _, b := range []input.MouseButton{input.ButtonLeft(), input.ButtonMiddle(), input.ButtonRight(), input.ButtonOther(4)} {
		name, index := wire.ButtonName(b)
		parsed, err := wire.ParseButton(name, index)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, parsed, test.ShouldResemble, b)
	}
	b, err := wire.ParseButton("other(7)", 0)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, b, test.ShouldResemble, input.ButtonOther(7))
	_, err = wire.ParseButton("thumb", 0)
	test.That(t, err, test.ShouldNotBeNil)

	for _, a := range []input.Axis{input.AxisVertical, input.AxisHorizontal} {
		parsed, err := wire.ParseAxis(a.String())
		test.That(t, err, test.ShouldBeNil)
		test.That(t, parsed, test.ShouldEqual, a)
	}
	for _, s := range []input.AxisSource{input.AxisSourceFinger, input.AxisSourceContinuous, input.AxisSourceWheel, input.AxisSourceWheelTilt} {
		parsed, err := wire.ParseAxisSource(s.String())
		test.That(t, err, test.ShouldBeNil)
		test.That(t, parsed, test.ShouldEqual, s)
	}
	_, err = wire.ParseAxisSource("trackpoint")
	test.That(t, err, test.ShouldNotBeNil)
}

func TestEventMessages(t *testing.T) {
	seat := input.NewSeat(5, input.SeatCapabilities{Pointer: true, Touch: true})
	space := input.Size{Width: 1920, Height: 1080}

	t.Run("seat", func(t *testing.T) {
		m := wire.SeatMessage(wire.KindSeatChanged, seat)
		test.That(t, m.Seat, test.ShouldEqual, uint64(5))
		test.That(t, *m.Capabilities, test.ShouldResemble, seat.Capabilities())
	})

	t.Run("key", func(t *testing.T) {
		m := wire.KeyMessage(seat, inputtest.Key{T: 1, Code: 30, S: input.KeyPressed, Total: 2})
		test.That(t, m, test.ShouldResemble, wire.Message{Kind: wire.KindKey, Seat: 5, Time: 1, Key: 30, State: "pressed", Count: 2})
	})

	t.Run("motion is signed", func(t *testing.T) {
		m := wire.MotionMessage(seat, inputtest.Motion{T: 2, DX: 3, DY: 0xFFFFFFFC})
		test.That(t, m.DX, test.ShouldEqual, int32(3))
		test.That(t, m.DY, test.ShouldEqual, int32(-4))
	})

	t.Run("button", func(t *testing.T) {
		m := wire.ButtonMessage(seat, inputtest.Button{T: 3, B: input.ButtonOther(2), S: input.ButtonPressed})
		test.That(t, m.Button, test.ShouldEqual, "other")
		test.That(t, m.ButtonIndex, test.ShouldEqual, uint8(2))
		test.That(t, m.State, test.ShouldEqual, "pressed")
	})

	t.Run("axis", func(t *testing.T) {
		m := wire.AxisMessage(seat, inputtest.Scroll{T: 4, A: input.AxisHorizontal, Src: input.AxisSourceWheelTilt, Amt: -15})
		test.That(t, m.Axis, test.ShouldEqual, "horizontal")
		test.That(t, m.Source, test.ShouldEqual, "wheel-tilt")
		test.That(t, m.Amount, test.ShouldEqual, -15.0)
	})

	t.Run("touch positions are transformed", func(t *testing.T) {
		ev := inputtest.Point{T: 5, PX: 25, PY: 75, W: 100, H: 100, S: input.NewTouchSlot(1), HasSlot: true}
		m := wire.TouchDownMessage(seat, ev, space)
		test.That(t, m.X, test.ShouldEqual, 25.0)
		test.That(t, *m.TX, test.ShouldEqual, uint32(480))
		test.That(t, *m.TY, test.ShouldEqual, uint32(810))
		test.That(t, m.SlotID(), test.ShouldEqual, uint64(1))

		m = wire.TouchMotionMessage(seat, ev, input.Size{})
		test.That(t, m.TX, test.ShouldBeNil)
		test.That(t, m.Kind, test.ShouldEqual, wire.KindTouchMotion)

		m = wire.MotionAbsoluteMessage(seat, ev, space)
		test.That(t, m.HasSlot(), test.ShouldBeFalse)
	})

	t.Run("slot-less touch", func(t *testing.T) {
		m := wire.TouchUpMessage(seat, inputtest.Lift{T: 6})
		test.That(t, m.HasSlot(), test.ShouldBeFalse)
		m = wire.TouchCancelMessage(seat, inputtest.Lift{T: 7, S: input.NewTouchSlot(0), HasSlot: true})
		test.That(t, m.HasSlot(), test.ShouldBeTrue)
		test.That(t, wire.TouchFrameMessage(seat, inputtest.Frame{T: 8}).Time, test.ShouldEqual, uint32(8))
	})
}
