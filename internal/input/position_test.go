package input_test

import (
	"math"
	"testing"

	"go.viam.com/test"

	"github.com/char5742/inputcore/internal/input"
	"github.com/char5742/inputcore/internal/input/inputtest"
)

func TestScaleAxis(t *testing.T) {
	t.Run("範囲の端", func(t *testing.T) {
		test.That(t, input.ScaleAxis(0, 0, 100, 1920), test.ShouldEqual, uint32(0))
		test.That(t, input.ScaleAxis(50, 0, 100, 1920), test.ShouldEqual, uint32(960))
		test.That(t, input.ScaleAxis(100, 0, 100, 1920), test.ShouldEqual, uint32(1919))
	})

	t.Run("範囲外は丸められる", func(t *testing.T) {
		test.That(t, input.ScaleAxis(-10, 0, 100, 1920), test.ShouldEqual, uint32(0))
		test.That(t, input.ScaleAxis(1e9, 0, 100, 1920), test.ShouldEqual, uint32(1919))
		test.That(t, input.ScaleAxis(math.Inf(1), 0, 100, 1920), test.ShouldEqual, uint32(1919))
		test.That(t, input.ScaleAxis(math.NaN(), 0, 100, 1920), test.ShouldEqual, uint32(0))
	})

	t.Run("空の範囲や大きさ0", func(t *testing.T) {
		test.That(t, input.ScaleAxis(5, 0, 100, 0), test.ShouldEqual, uint32(0))
		test.That(t, input.ScaleAxis(5, 10, 10, 100), test.ShouldEqual, uint32(0))
		test.That(t, input.ScaleAxis(5, 10, 0, 100), test.ShouldEqual, uint32(0))
	})

	t.Run("単調", func(t *testing.T) {
		prev := uint32(0)
		for v := -5.0; v <= 105; v += 0.25 {
			got := input.ScaleAxis(v, 0, 100, 7)
			test.That(t, got, test.ShouldBeGreaterThanOrEqualTo, prev)
			test.That(t, got, test.ShouldBeLessThan, uint32(7))
			prev = got
		}
	})
}

func TestPositionAccessors(t *testing.T) {
	p := inputtest.Point{PX: 25, PY: 75, W: 100, H: 100}

	x, y := input.Position(p)
	test.That(t, x, test.ShouldEqual, 25.0)
	test.That(t, y, test.ShouldEqual, 75.0)

	tx, ty := input.PositionTransformed(p, input.Size{Width: 1920, Height: 1080})
	test.That(t, tx, test.ShouldEqual, p.XTransformed(1920))
	test.That(t, ty, test.ShouldEqual, p.YTransformed(1080))
	test.That(t, tx, test.ShouldEqual, uint32(480))
	test.That(t, ty, test.ShouldEqual, uint32(810))

	// 出力空間の大きさが変わっても常に範囲内に収まる
	for _, size := range []uint32{1, 2, 3, 640, 4096} {
		tx, ty := input.PositionTransformed(inputtest.Point{PX: 100, PY: 100, W: 100, H: 100}, input.Size{Width: size, Height: size})
		test.That(t, tx, test.ShouldBeLessThan, size)
		test.That(t, ty, test.ShouldBeLessThan, size)
	}
}

func TestDelta(t *testing.T) {
	m := inputtest.Motion{DX: 3, DY: 0xFFFFFFFC}

	dx, dy := input.Delta(m)
	test.That(t, dx, test.ShouldEqual, uint32(3))
	test.That(t, dy, test.ShouldEqual, uint32(0xFFFFFFFC))

	sx, sy := input.SignedDelta(m)
	test.That(t, sx, test.ShouldEqual, int32(3))
	test.That(t, sy, test.ShouldEqual, int32(-4))
}
