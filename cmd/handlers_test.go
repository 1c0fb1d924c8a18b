package main

import (
	"testing"

	"go.viam.com/test"

	"github.com/char5742/inputcore/internal/config"
	"github.com/char5742/inputcore/internal/input"
	"github.com/char5742/inputcore/internal/input/inputtest"
	"github.com/char5742/inputcore/internal/logging"
	"github.com/char5742/inputcore/internal/wire"
)

type testConfig struct{ N int }

func TestFanout(t *testing.T) {
	a := inputtest.NewRecorder[testConfig]()
	b := inputtest.NewRecorder[testConfig]()
	f := fanout[testConfig]{a, b}

	seat := input.NewSeat(1, input.SeatCapabilities{Keyboard: true, Touch: true})
	f.OnSeatCreated(seat)
	f.OnKeyboardKey(seat, inputtest.Key{T: 1, Code: 30, S: input.KeyPressed, Total: 1})
	f.OnTouchFrame(seat, inputtest.Frame{T: 2})
	f.OnInputConfigChanged(&testConfig{N: 3})

	want := []inputtest.Kind{
		inputtest.SeatCreated,
		inputtest.KeyboardKey,
		inputtest.TouchFrame,
		inputtest.InputConfigChanged,
	}
	test.That(t, a.Kinds(), test.ShouldResemble, want)
	test.That(t, b.Kinds(), test.ShouldResemble, want)
}

func TestPrinter(t *testing.T) {
	logger, logs := logging.NewObservedTestLogger(t)
	p := newPrinter[testConfig](logger, eventSpace)

	seat := input.NewSeat(4, input.SeatCapabilities{Keyboard: true})
	p.OnSeatCreated(seat)
	p.OnKeyboardKey(seat, inputtest.Key{T: 9, Code: 30, S: input.KeyPressed, Total: 1})

	entries := logs.All()
	test.That(t, entries, test.ShouldHaveLength, 2)
	test.That(t, entries[0].Message, test.ShouldEqual, string(wire.KindSeatCreated))
	test.That(t, entries[1].Message, test.ShouldEqual, string(wire.KindKey))
	msg, ok := entries[1].ContextMap()["message"].(wire.Message)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, msg.Seat, test.ShouldEqual, uint64(4))
	test.That(t, msg.Key, test.ShouldEqual, uint32(30))
}

func TestHandlersFor(t *testing.T) {
	rec := inputtest.NewRecorder[testConfig]()
	cfg := config.DefaultConfig()

	hs := handlersFor[testConfig](cfg, rec, logging.NewTestLogger(t), eventSpace)
	test.That(t, hs.(fanout[testConfig]), test.ShouldHaveLength, 1)

	cfg.Log.Level = "debug"
	hs = handlersFor[testConfig](cfg, rec, logging.NewTestLogger(t), eventSpace)
	test.That(t, hs.(fanout[testConfig]), test.ShouldHaveLength, 2)
}

func TestVirtualSelftest(t *testing.T) {
	test.That(t, virtualSelftest(logging.NewTestLogger(t)), test.ShouldBeNil)
}
