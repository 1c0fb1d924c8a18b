package input_test

import (
	"testing"

	"go.viam.com/test"

	"github.com/char5742/inputcore/internal/input"
	"github.com/char5742/inputcore/internal/input/inputtest"
)

type testHandler = input.Handler[
	testConfig,
	inputtest.Key,
	inputtest.Scroll,
	inputtest.Button,
	inputtest.Motion,
	inputtest.Point,
	inputtest.Point,
	inputtest.Lift,
	inputtest.Point,
	inputtest.Lift,
	inputtest.Frame,
]

func adapt(r *inputtest.Recorder[testConfig]) testHandler {
	return input.Adapt[
		testConfig,
		inputtest.Key,
		inputtest.Scroll,
		inputtest.Button,
		inputtest.Motion,
		inputtest.Point,
		inputtest.Point,
		inputtest.Lift,
		inputtest.Point,
		inputtest.Lift,
		inputtest.Frame,
	](r)
}

// callAll はすべてのコールバックを1回ずつ呼ぶ
func callAll(h testHandler, seat input.Seat, cfg *testConfig) {
	slot := input.NewTouchSlot(2)
	h.OnSeatCreated(seat)
	h.OnSeatChanged(seat)
	h.OnKeyboardKey(seat, inputtest.Key{T: 1, Code: 30, S: input.KeyPressed, Total: 1})
	h.OnPointerMove(seat, inputtest.Motion{T: 2, DX: 1, DY: 2})
	h.OnPointerMoveAbsolute(seat, inputtest.Point{T: 3, PX: 1, PY: 1, W: 10, H: 10})
	h.OnPointerButton(seat, inputtest.Button{T: 4, B: input.ButtonLeft(), S: input.ButtonPressed})
	h.OnPointerAxis(seat, inputtest.Scroll{T: 5, A: input.AxisVertical, Src: input.AxisSourceWheel, Amt: 1})
	h.OnTouchDown(seat, inputtest.Point{T: 6, S: slot, HasSlot: true, W: 10, H: 10})
	h.OnTouchMotion(seat, inputtest.Point{T: 7, S: slot, HasSlot: true, PX: 2, W: 10, H: 10})
	h.OnTouchUp(seat, inputtest.Lift{T: 8, S: slot, HasSlot: true})
	h.OnTouchCancel(seat, inputtest.Lift{T: 9})
	h.OnTouchFrame(seat, inputtest.Frame{T: 10})
	h.OnInputConfigChanged(cfg)
	h.OnSeatDestroyed(seat)
}

var allKinds = []inputtest.Kind{
	inputtest.SeatCreated,
	inputtest.SeatChanged,
	inputtest.KeyboardKey,
	inputtest.PointerMove,
	inputtest.PointerMoveAbsolute,
	inputtest.PointerButton,
	inputtest.PointerAxis,
	inputtest.TouchDown,
	inputtest.TouchMotion,
	inputtest.TouchUp,
	inputtest.TouchCancel,
	inputtest.TouchFrame,
	inputtest.InputConfigChanged,
	inputtest.SeatDestroyed,
}

func TestAdapt(t *testing.T) {
	rec := inputtest.NewRecorder[testConfig]()
	seat := input.NewSeat(4, input.SeatCapabilities{Keyboard: true})
	cfg := &testConfig{Width: 10, Height: 10}

	callAll(adapt(rec), seat, cfg)

	test.That(t, rec.Kinds(), test.ShouldResemble, allKinds)
	test.That(t, rec.Configs(), test.ShouldResemble, []*testConfig{cfg})
	key := rec.Filter(inputtest.KeyboardKey)[0]
	test.That(t, key.Seat.Equal(seat), test.ShouldBeTrue)
	test.That(t, key.Event, test.ShouldResemble, inputtest.Key{T: 1, Code: 30, S: input.KeyPressed, Total: 1})
}

func TestBoxedHandler(t *testing.T) {
	seat := input.NewSeat(1, input.SeatCapabilities{})
	cfg := &testConfig{}

	t.Run("すべての呼び出しを転送する", func(t *testing.T) {
		rec := inputtest.NewRecorder[testConfig]()
		direct := inputtest.NewRecorder[testConfig]()

		callAll(input.Box(adapt(rec)), seat, cfg)
		callAll(adapt(direct), seat, cfg)

		test.That(t, rec.Calls(), test.ShouldResemble, direct.Calls())
		test.That(t, rec.Configs()[0], test.ShouldEqual, cfg)
	})

	t.Run("Swap", func(t *testing.T) {
		first := inputtest.NewRecorder[testConfig]()
		second := inputtest.NewRecorder[testConfig]()
		firstHandler := adapt(first)

		boxed := input.Box(firstHandler)
		test.That(t, boxed.Unwrap(), test.ShouldEqual, firstHandler)
		boxed.OnSeatCreated(seat)

		prev := boxed.Swap(adapt(second))
		test.That(t, prev, test.ShouldEqual, firstHandler)
		boxed.OnSeatDestroyed(seat)

		test.That(t, first.Kinds(), test.ShouldResemble, []inputtest.Kind{inputtest.SeatCreated})
		test.That(t, second.Kinds(), test.ShouldResemble, []inputtest.Kind{inputtest.SeatDestroyed})
	})

	t.Run("nil は受け付けない", func(t *testing.T) {
		test.That(t, func() { input.Box[testConfig, inputtest.Key, inputtest.Scroll, inputtest.Button, inputtest.Motion, inputtest.Point, inputtest.Point, inputtest.Lift, inputtest.Point, inputtest.Lift, inputtest.Frame](nil) }, test.ShouldPanic)
		boxed := input.Box(adapt(inputtest.NewRecorder[testConfig]()))
		test.That(t, func() { boxed.Swap(nil) }, test.ShouldPanic)
	})
}

func TestHandlerSlot(t *testing.T) {
	var slot input.HandlerSlot[
		testConfig,
		inputtest.Key,
		inputtest.Scroll,
		inputtest.Button,
		inputtest.Motion,
		inputtest.Point,
		inputtest.Point,
		inputtest.Lift,
		inputtest.Point,
		inputtest.Lift,
		inputtest.Frame,
	]

	_, ok := slot.Handler()
	test.That(t, ok, test.ShouldBeFalse)
	test.That(t, slot.SeatHandler(), test.ShouldBeNil)

	a := adapt(inputtest.NewRecorder[testConfig]())
	b := adapt(inputtest.NewRecorder[testConfig]())

	test.That(t, slot.SetHandler(a), test.ShouldBeNil)
	h, ok := slot.Handler()
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, h, test.ShouldEqual, a)
	test.That(t, slot.SeatHandler(), test.ShouldNotBeNil)

	test.That(t, slot.SetHandler(b), test.ShouldEqual, a)

	slot.ClearHandler()
	_, ok = slot.Handler()
	test.That(t, ok, test.ShouldBeFalse)
}

func TestDispatchGuard(t *testing.T) {
	var g input.DispatchGuard
	g.Enter()
	test.That(t, g.Enter, test.ShouldPanic)
	g.Exit()
	g.Enter()
	g.Exit()
}
