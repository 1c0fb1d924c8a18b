package input_test

import (
	"testing"

	"go.viam.com/test"

	"github.com/char5742/inputcore/internal/input"
)

func TestSlotAllocator(t *testing.T) {
	a := input.NewSlotAllocator()

	s0, fresh := a.Acquire(100)
	test.That(t, fresh, test.ShouldBeTrue)
	test.That(t, s0.ID(), test.ShouldEqual, uint64(0))

	s1, fresh := a.Acquire(200)
	test.That(t, fresh, test.ShouldBeTrue)
	test.That(t, s1.ID(), test.ShouldEqual, uint64(1))

	again, fresh := a.Acquire(100)
	test.That(t, fresh, test.ShouldBeFalse)
	test.That(t, again, test.ShouldResemble, s0)

	got, ok := a.Lookup(200)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, got, test.ShouldResemble, s1)
	test.That(t, a.Len(), test.ShouldEqual, 2)

	released, ok := a.Release(100)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, released, test.ShouldResemble, s0)
	_, ok = a.Release(100)
	test.That(t, ok, test.ShouldBeFalse)

	// 解放されたスロットは次の接触で再利用される
	s2, _ := a.Acquire(300)
	test.That(t, s2.ID(), test.ShouldEqual, uint64(0))
	test.That(t, a.Live(), test.ShouldResemble, map[uint64]input.TouchSlot{200: s1, 300: s2})
}
