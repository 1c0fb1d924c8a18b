package input_test

import (
	"testing"

	"go.viam.com/test"

	"github.com/char5742/inputcore/internal/input"
)

func TestSeatIdentity(t *testing.T) {
	a := input.NewSeat(7, input.SeatCapabilities{Keyboard: true})
	b := input.NewSeat(7, input.SeatCapabilities{Pointer: true, Touch: true})
	c := input.NewSeat(8, input.SeatCapabilities{Keyboard: true})

	t.Run("能力が違っても同じIDなら等しい", func(t *testing.T) {
		test.That(t, a.Equal(b), test.ShouldBeTrue)
		test.That(t, a.Hash(), test.ShouldEqual, b.Hash())
	})

	t.Run("IDが違えば等しくない", func(t *testing.T) {
		test.That(t, a.Equal(c), test.ShouldBeFalse)
		test.That(t, a.Hash(), test.ShouldNotEqual, c.Hash())
	})

	t.Run("能力の読み出し", func(t *testing.T) {
		test.That(t, a.ID(), test.ShouldEqual, uint64(7))
		test.That(t, a.Capabilities(), test.ShouldResemble, input.SeatCapabilities{Keyboard: true})
	})
}

func TestSeatCapabilitiesMut(t *testing.T) {
	seat := input.NewSeat(1, input.SeatCapabilities{})
	before := seat
	seat.CapabilitiesMut().Touch = true

	test.That(t, seat.Capabilities().Touch, test.ShouldBeTrue)
	test.That(t, before.Capabilities().Touch, test.ShouldBeFalse)
	test.That(t, seat.Equal(before), test.ShouldBeTrue)
}

func TestSeatCapabilitiesUnion(t *testing.T) {
	kb := input.SeatCapabilities{Keyboard: true}
	touch := input.SeatCapabilities{Touch: true}

	test.That(t, kb.Union(touch), test.ShouldResemble, input.SeatCapabilities{Keyboard: true, Touch: true})
	test.That(t, input.SeatCapabilities{}.IsEmpty(), test.ShouldBeTrue)
	test.That(t, kb.IsEmpty(), test.ShouldBeFalse)
	test.That(t, input.NewSeat(3, kb).String(), test.ShouldContainSubstring, "seat#3")
}
