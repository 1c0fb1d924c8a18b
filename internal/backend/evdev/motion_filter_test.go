package evdev_test

import (
	"testing"

	"go.viam.com/test"

	"github.com/char5742/inputcore/internal/backend/evdev"
)

func TestMotionFilter(t *testing.T) {
	t.Run("warm up passes values through", func(t *testing.T) {
		mf := evdev.NewMotionFilter(0.5, 2)
		dx, dy := mf.Filter(10, -10)
		test.That(t, dx, test.ShouldEqual, int32(10))
		test.That(t, dy, test.ShouldEqual, int32(-10))
		dx, dy = mf.Filter(0, 0)
		test.That(t, dx, test.ShouldEqual, int32(0))
		test.That(t, dy, test.ShouldEqual, int32(0))
	})

	t.Run("smoothing", func(t *testing.T) {
		mf := evdev.NewMotionFilter(0.5, 0)
		mf.Filter(10, -10)
		dx, dy := mf.Filter(0, 0)
		test.That(t, dx, test.ShouldEqual, int32(5))
		test.That(t, dy, test.ShouldEqual, int32(-5))
		dx, dy = mf.Filter(0, 0)
		test.That(t, dx, test.ShouldEqual, int32(3))
		test.That(t, dy, test.ShouldEqual, int32(-3))
	})

	t.Run("zero factor is identity", func(t *testing.T) {
		mf := evdev.NewMotionFilter(0, 0)
		for _, v := range []int32{3, -7, 0, 100} {
			dx, dy := mf.Filter(v, -v)
			test.That(t, dx, test.ShouldEqual, v)
			test.That(t, dy, test.ShouldEqual, -v)
		}
	})

	t.Run("reset", func(t *testing.T) {
		mf := evdev.NewMotionFilter(0.5, 0)
		mf.Filter(100, 100)
		mf.Reset()
		dx, _ := mf.Filter(2, 0)
		test.That(t, dx, test.ShouldEqual, int32(2))
	})

	t.Run("set params resets only on change", func(t *testing.T) {
		mf := evdev.NewMotionFilter(0.5, 0)
		mf.Filter(10, 0)
		mf.SetParams(0.5, 0)
		dx, _ := mf.Filter(0, 0)
		test.That(t, dx, test.ShouldEqual, int32(5))

		mf.SetParams(0.8, 0)
		dx, _ = mf.Filter(4, 0)
		test.That(t, dx, test.ShouldEqual, int32(4))
	})
}
