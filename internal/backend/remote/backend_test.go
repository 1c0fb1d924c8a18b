package remote_test

import (
	"errors"
	"io"
	"testing"

	"go.viam.com/test"

	"github.com/char5742/inputcore/internal/backend/remote"
	"github.com/char5742/inputcore/internal/input"
	"github.com/char5742/inputcore/internal/input/inputtest"
	"github.com/char5742/inputcore/internal/logging"
	"github.com/char5742/inputcore/internal/wire"
)

// fakeTransport は呼び出し側のゴルーチンで同期的にメッセージを渡す
type fakeTransport struct {
	onInput func([]byte)
	onClose func(error)
	closed  bool
}

func (f *fakeTransport) OnInput(cb func([]byte)) { f.onInput = cb }
func (f *fakeTransport) OnClose(cb func(error))  { f.onClose = cb }

func (f *fakeTransport) Close() error {
	if !f.closed {
		f.closed = true
		f.onClose(nil)
	}
	return nil
}

func (f *fakeTransport) send(t *testing.T, msgs ...wire.Message) {
	t.Helper()
	for _, m := range msgs {
		data, err := m.Encode()
		test.That(t, err, test.ShouldBeNil)
		f.onInput(data)
	}
}

func (f *fakeTransport) raw(data string) {
	f.onInput([]byte(data))
}

func newBackend(t *testing.T) (*remote.Backend, *fakeTransport, *inputtest.Recorder[remote.Config]) {
	t.Helper()
	tr := &fakeTransport{}
	b := remote.New(tr, remote.Config{Width: 100, Height: 100}, remote.Options{Logger: logging.NewTestLogger(t)})
	rec := inputtest.NewRecorder[remote.Config]()
	b.SetHandler(remote.Adapt(rec))
	return b, tr, rec
}

func attach(device string, seat uint64, caps input.SeatCapabilities, multiTouch bool) wire.Message {
	return wire.Message{Kind: wire.KindAttach, Device: device, Seat: seat, Capabilities: &caps, MultiTouch: multiTouch}
}

func TestKeyboard(t *testing.T) {
	b, tr, rec := newBackend(t)
	tr.send(t,
		attach("kbd", 7, input.SeatCapabilities{Keyboard: true}, false),
		wire.Message{Kind: wire.KindKey, Device: "kbd", Time: 1, Key: 30, State: "pressed"},
		wire.Message{Kind: wire.KindKey, Device: "kbd", Time: 2, Key: 30, State: "released"},
	)
	test.That(t, b.Pending(), test.ShouldEqual, 3)
	test.That(t, b.DispatchNewEvents(), test.ShouldBeNil)
	test.That(t, b.Pending(), test.ShouldEqual, 0)

	test.That(t, rec.Kinds(), test.ShouldResemble, []inputtest.Kind{
		inputtest.SeatCreated,
		inputtest.KeyboardKey,
		inputtest.KeyboardKey,
	})
	calls := rec.Calls()
	test.That(t, calls[0].Seat.ID(), test.ShouldEqual, uint64(7))
	test.That(t, calls[1].Event.(input.KeyboardKeyEvent).Count(), test.ShouldEqual, uint32(1))
	test.That(t, calls[2].Event.(input.KeyboardKeyEvent).Count(), test.ShouldEqual, uint32(0))
	test.That(t, calls[2].Event.Time(), test.ShouldEqual, uint32(2))
}

func TestPointer(t *testing.T) {
	b, tr, rec := newBackend(t)
	tr.send(t,
		attach("mouse", 0, input.SeatCapabilities{Pointer: true}, false),
		wire.Message{Kind: wire.KindMotion, Device: "mouse", DX: -3, DY: 4},
		wire.Message{Kind: wire.KindMotionAbsolute, Device: "mouse", X: 50, Y: 25},
		wire.Message{Kind: wire.KindButton, Device: "mouse", Button: "right", State: "pressed"},
		wire.Message{Kind: wire.KindAxis, Device: "mouse", Axis: "vertical", Source: "wheel", Amount: 15},
	)
	test.That(t, b.DispatchNewEvents(), test.ShouldBeNil)

	calls := rec.Calls()
	test.That(t, calls, test.ShouldHaveLength, 5)

	dx, dy := input.SignedDelta(calls[1].Event.(input.PointerMotionEvent))
	test.That(t, dx, test.ShouldEqual, int32(-3))
	test.That(t, dy, test.ShouldEqual, int32(4))

	x, y := input.PositionTransformed(calls[2].Event.(input.PointerMotionAbsoluteEvent), input.Size{Width: 1920, Height: 1080})
	test.That(t, x, test.ShouldEqual, uint32(960))
	test.That(t, y, test.ShouldEqual, uint32(270))

	test.That(t, calls[3].Event.(input.PointerButtonEvent).Button(), test.ShouldResemble, input.ButtonRight())
	axis := calls[4].Event.(input.PointerAxisEvent)
	test.That(t, axis.Source(), test.ShouldEqual, input.AxisSourceWheel)
	test.That(t, axis.Amount(), test.ShouldEqual, 15.0)
}

func TestConfigure(t *testing.T) {
	b, tr, rec := newBackend(t)
	tr.send(t,
		wire.Message{Kind: wire.KindConfigure, Width: 640, Height: 480},
		attach("tablet", 0, input.SeatCapabilities{Pointer: true}, false),
		wire.Message{Kind: wire.KindMotionAbsolute, Device: "tablet", X: 320, Y: 240},
	)
	test.That(t, b.DispatchNewEvents(), test.ShouldBeNil)
	test.That(t, *b.InputConfig(), test.ShouldResemble, remote.Config{Width: 640, Height: 480})
	test.That(t, rec.Configs(), test.ShouldHaveLength, 1)
	test.That(t, rec.Configs()[0], test.ShouldEqual, b.InputConfig())

	abs := rec.Filter(inputtest.PointerMoveAbsolute)[0].Event.(input.PointerMotionAbsoluteEvent)
	test.That(t, abs.XTransformed(64), test.ShouldEqual, uint32(32))

	tr.send(t, wire.Message{Kind: wire.KindConfigure, Width: 0, Height: 10})
	var perr *remote.ProtocolError
	test.That(t, errors.As(b.DispatchNewEvents(), &perr), test.ShouldBeTrue)
}

func TestTouchSlots(t *testing.T) {
	b, tr, rec := newBackend(t)
	tr.send(t,
		attach("screen", 1, input.SeatCapabilities{Touch: true}, true),
		wire.Message{Kind: wire.KindTouchDown, Device: "screen", Slot: wire.Ptr[uint64](100), X: 10, Y: 10},
		wire.Message{Kind: wire.KindTouchDown, Device: "screen", Slot: wire.Ptr[uint64](200), X: 20, Y: 20},
		wire.Message{Kind: wire.KindTouchFrame, Device: "screen"},
		wire.Message{Kind: wire.KindTouchMotion, Device: "screen", Slot: wire.Ptr[uint64](100), X: 11, Y: 10},
		wire.Message{Kind: wire.KindTouchUp, Device: "screen", Slot: wire.Ptr[uint64](100)},
		wire.Message{Kind: wire.KindTouchFrame, Device: "screen"},
		wire.Message{Kind: wire.KindTouchDown, Device: "screen", Slot: wire.Ptr[uint64](300), X: 30, Y: 30},
		wire.Message{Kind: wire.KindTouchFrame, Device: "screen"},
	)
	test.That(t, b.DispatchNewEvents(), test.ShouldBeNil)
	test.That(t, inputtest.CheckTouchSequences(rec.Calls()), test.ShouldBeNil)

	downs := rec.Filter(inputtest.TouchDown)
	slot := func(c inputtest.Call) uint64 {
		s, ok := c.Event.(input.TouchDownEvent).Slot()
		test.That(t, ok, test.ShouldBeTrue)
		return s.ID()
	}
	test.That(t, slot(downs[0]), test.ShouldEqual, uint64(0))
	test.That(t, slot(downs[1]), test.ShouldEqual, uint64(1))
	// 解放されたスロット 0 が再利用される
	test.That(t, slot(downs[2]), test.ShouldEqual, uint64(0))
}

func TestProtocolErrors(t *testing.T) {
	for _, tc := range []struct {
		name string
		msg  string
		want error
	}{
		{"malformed", `{"kind":`, nil},
		{"unknown kind", `{"kind":"warp","device":"screen"}`, nil},
		{"unknown device", `{"kind":"touch_frame","device":"ghost"}`, remote.ErrUnknownDevice},
		{"slot mismatch", `{"kind":"touch_down","device":"screen","x":1,"y":1}`, remote.ErrSlotMismatch},
		{"unknown contact", `{"kind":"touch_up","device":"screen","slot":9}`, remote.ErrUnknownContact},
		{"capability", `{"kind":"key","device":"screen","key":30,"state":"pressed"}`, remote.ErrCapability},
		{"api only kind", `{"kind":"seat_created","device":"screen"}`, nil},
		{"bad state", `{"kind":"button","device":"pad","button":"left","state":"half"}`, nil},
	} {
		t.Run(tc.name, func(t *testing.T) {
			b, tr, rec := newBackend(t)
			tr.send(t,
				attach("screen", 0, input.SeatCapabilities{Touch: true}, true),
				attach("pad", 0, input.SeatCapabilities{Pointer: true}, false),
			)
			test.That(t, b.DispatchNewEvents(), test.ShouldBeNil)
			rec.Reset()

			tr.raw(tc.msg)
			tr.send(t, wire.Message{Kind: wire.KindMotion, Device: "pad", DX: 1})

			err := b.DispatchNewEvents()
			var perr *remote.ProtocolError
			test.That(t, errors.As(err, &perr), test.ShouldBeTrue)
			test.That(t, perr.Temporary(), test.ShouldBeTrue)
			if tc.want != nil {
				test.That(t, errors.Is(err, tc.want), test.ShouldBeTrue)
			}
			test.That(t, rec.Calls(), test.ShouldBeEmpty)

			// 後続のメッセージは次の呼び出しで処理される
			test.That(t, b.Pending(), test.ShouldEqual, 1)
			test.That(t, b.DispatchNewEvents(), test.ShouldBeNil)
			test.That(t, rec.Kinds(), test.ShouldResemble, []inputtest.Kind{inputtest.PointerMove})
		})
	}
}

func TestDisconnect(t *testing.T) {
	b, tr, rec := newBackend(t)
	tr.send(t,
		attach("pad", 3, input.SeatCapabilities{Pointer: true, Touch: true}, true),
		attach("kbd", 4, input.SeatCapabilities{Keyboard: true}, false),
		wire.Message{Kind: wire.KindAxis, Device: "pad", Time: 5, Axis: "vertical", Source: "finger", Amount: 2},
		wire.Message{Kind: wire.KindAxis, Device: "pad", Time: 6, Axis: "horizontal", Source: "finger", Amount: 1},
		wire.Message{Kind: wire.KindAxis, Device: "pad", Time: 7, Axis: "horizontal", Source: "finger", Amount: 0},
		wire.Message{Kind: wire.KindTouchDown, Device: "pad", Time: 8, Slot: wire.Ptr[uint64](1)},
		wire.Message{Kind: wire.KindTouchFrame, Device: "pad", Time: 8},
	)
	test.That(t, b.DispatchNewEvents(), test.ShouldBeNil)
	test.That(t, inputtest.CheckFingerTermination(rec.Calls()), test.ShouldNotBeNil)
	rec.Reset()

	cause := io.ErrUnexpectedEOF
	tr.onClose(cause)
	tr.send(t, wire.Message{Kind: wire.KindMotion, Device: "pad", DX: 1})

	err := b.DispatchNewEvents()
	var terr *remote.TransportError
	test.That(t, errors.As(err, &terr), test.ShouldBeTrue)
	test.That(t, errors.Is(err, cause), test.ShouldBeTrue)
	test.That(t, terr.Temporary(), test.ShouldBeFalse)
	test.That(t, b.Disconnected(), test.ShouldBeTrue)

	test.That(t, rec.Kinds(), test.ShouldResemble, []inputtest.Kind{
		inputtest.SeatDestroyed, // kbd
		inputtest.PointerAxis,
		inputtest.TouchCancel,
		inputtest.TouchFrame,
		inputtest.SeatDestroyed, // pad
	})
	calls := rec.Calls()
	test.That(t, calls[0].Seat.ID(), test.ShouldEqual, uint64(4))
	axis := calls[1].Event.(input.PointerAxisEvent)
	test.That(t, axis.Axis(), test.ShouldEqual, input.AxisVertical)
	test.That(t, axis.Amount(), test.ShouldEqual, 0.0)
	test.That(t, calls[2].Event.Time(), test.ShouldEqual, uint32(8))

	test.That(t, b.Seats(), test.ShouldBeEmpty)

	// 以降は何も配送されない
	rec.Reset()
	test.That(t, b.DispatchNewEvents(), test.ShouldBeNil)
	test.That(t, rec.Calls(), test.ShouldBeEmpty)
}

func TestDetachCancelsTouches(t *testing.T) {
	b, tr, rec := newBackend(t)
	tr.send(t,
		attach("screen", 0, input.SeatCapabilities{Touch: true}, false),
		wire.Message{Kind: wire.KindTouchDown, Device: "screen", X: 1, Y: 1},
		wire.Message{Kind: wire.KindDetach, Device: "screen", Time: 9},
	)
	test.That(t, b.DispatchNewEvents(), test.ShouldBeNil)
	test.That(t, rec.Kinds(), test.ShouldResemble, []inputtest.Kind{
		inputtest.SeatCreated,
		inputtest.TouchDown,
		inputtest.TouchCancel,
		inputtest.TouchFrame,
		inputtest.SeatDestroyed,
	})
	test.That(t, inputtest.CheckTouchSequences(rec.Calls()), test.ShouldBeNil)
}

func TestSharedSeat(t *testing.T) {
	b, tr, rec := newBackend(t)
	tr.send(t,
		attach("kbd", 2, input.SeatCapabilities{Keyboard: true}, false),
		attach("mouse", 2, input.SeatCapabilities{Pointer: true}, false),
		wire.Message{Kind: wire.KindDetach, Device: "kbd"},
	)
	test.That(t, b.DispatchNewEvents(), test.ShouldBeNil)
	test.That(t, rec.Kinds(), test.ShouldResemble, []inputtest.Kind{
		inputtest.SeatCreated,
		inputtest.SeatChanged,
		inputtest.SeatChanged,
	})
	calls := rec.Calls()
	test.That(t, calls[1].Seat.Capabilities(), test.ShouldResemble, input.SeatCapabilities{Keyboard: true, Pointer: true})
	test.That(t, calls[2].Seat.Capabilities(), test.ShouldResemble, input.SeatCapabilities{Pointer: true})
}

func TestNoHandlerKeepsState(t *testing.T) {
	b, tr, rec := newBackend(t)
	b.ClearHandler()
	tr.send(t,
		attach("kbd", 0, input.SeatCapabilities{Keyboard: true}, false),
		wire.Message{Kind: wire.KindKey, Device: "kbd", Key: 42, State: "pressed"},
	)
	test.That(t, b.DispatchNewEvents(), test.ShouldBeNil)
	test.That(t, b.Seats(), test.ShouldHaveLength, 1)

	b.SetHandler(remote.Adapt(rec))
	tr.send(t, wire.Message{Kind: wire.KindKey, Device: "kbd", Key: 30, State: "pressed"})
	test.That(t, b.DispatchNewEvents(), test.ShouldBeNil)
	test.That(t, rec.Calls()[0].Event.(input.KeyboardKeyEvent).Count(), test.ShouldEqual, uint32(2))
}

func TestClose(t *testing.T) {
	b, tr, _ := newBackend(t)
	test.That(t, b.Close(), test.ShouldBeNil)
	test.That(t, tr.closed, test.ShouldBeTrue)

	var terr *remote.TransportError
	test.That(t, errors.As(b.DispatchNewEvents(), &terr), test.ShouldBeTrue)
	test.That(t, terr.Err, test.ShouldBeNil)
}

func TestTimeNeverGoesBackwards(t *testing.T) {
	b, tr, rec := newBackend(t)
	tr.send(t,
		attach("kbd", 0, input.SeatCapabilities{Keyboard: true}, false),
		attach("screen", 0, input.SeatCapabilities{Touch: true}, true),
		wire.Message{Kind: wire.KindKey, Device: "kbd", Time: 100, Key: 30, State: "pressed"},
		wire.Message{Kind: wire.KindKey, Device: "kbd", Time: 50, Key: 30, State: "released"},
		wire.Message{Kind: wire.KindTouchDown, Device: "screen", Time: 120, Slot: wire.Ptr[uint64](4)},
		wire.Message{Kind: wire.KindTouchFrame, Device: "screen", Time: 110},
		wire.Message{Kind: wire.KindDetach, Device: "screen", Time: 60},
		wire.Message{Kind: wire.KindKey, Device: "kbd", Time: 130, Key: 31, State: "pressed"},
	)
	test.That(t, b.DispatchNewEvents(), test.ShouldBeNil)

	var times []uint32
	for _, c := range rec.Calls() {
		if c.Event != nil {
			times = append(times, c.Event.Time())
		}
	}
	test.That(t, times, test.ShouldResemble, []uint32{100, 100, 120, 120, 120, 120, 130})
}

// cancelSwapper は接触の取り消しを受け取るとハンドラを next に差し替える
type cancelSwapper struct {
	*inputtest.Recorder[remote.Config]
	backend *remote.Backend
	next    remote.Handler
}

func (s cancelSwapper) OnTouchCancel(seat input.Seat, e input.TouchCancelEvent) {
	s.Recorder.OnTouchCancel(seat, e)
	s.backend.SetHandler(s.next)
}

func TestDisconnectFollowsHandlerSwap(t *testing.T) {
	b, tr, _ := newBackend(t)
	tr.send(t,
		attach("pad", 1, input.SeatCapabilities{Touch: true}, true),
		wire.Message{Kind: wire.KindTouchDown, Device: "pad", Time: 1, Slot: wire.Ptr[uint64](1)},
		wire.Message{Kind: wire.KindTouchDown, Device: "pad", Time: 1, Slot: wire.Ptr[uint64](2)},
		wire.Message{Kind: wire.KindTouchFrame, Device: "pad", Time: 1},
	)
	test.That(t, b.DispatchNewEvents(), test.ShouldBeNil)

	first := inputtest.NewRecorder[remote.Config]()
	second := inputtest.NewRecorder[remote.Config]()
	b.SetHandler(remote.Adapt(cancelSwapper{Recorder: first, backend: b, next: remote.Adapt(second)}))
	tr.onClose(io.EOF)

	var terr *remote.TransportError
	test.That(t, errors.As(b.DispatchNewEvents(), &terr), test.ShouldBeTrue)
	test.That(t, first.Kinds(), test.ShouldResemble, []inputtest.Kind{inputtest.TouchCancel})
	test.That(t, second.Kinds(), test.ShouldResemble, []inputtest.Kind{
		inputtest.TouchCancel,
		inputtest.TouchFrame,
		inputtest.SeatDestroyed,
	})
}
