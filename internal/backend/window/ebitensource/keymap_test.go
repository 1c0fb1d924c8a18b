package ebitensource

import (
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
	"go.viam.com/test"

	"github.com/char5742/inputcore/internal/evcode"
)

func TestLinuxKeyCode(t *testing.T) {
	for _, tc := range []struct {
		key  ebiten.Key
		want uint32
	}{
		{ebiten.KeyA, evcode.KeyA},
		{ebiten.KeyDigit0, evcode.Key0},
		{ebiten.KeyShiftRight, evcode.KeyRightShift},
		{ebiten.KeyArrowUp, evcode.KeyUp},
		{ebiten.KeyMetaLeft, evcode.KeyLeftMeta},
	} {
		code, ok := LinuxKeyCode(tc.key)
		test.That(t, ok, test.ShouldBeTrue)
		test.That(t, code, test.ShouldEqual, tc.want)
	}

	_, ok := LinuxKeyCode(ebiten.KeyNumLock)
	test.That(t, ok, test.ShouldBeFalse)
}

func TestKeymapIsInjective(t *testing.T) {
	seen := make(map[uint32]bool)
	for _, code := range keymap {
		test.That(t, seen[code], test.ShouldBeFalse)
		seen[code] = true
		test.That(t, code, test.ShouldBeLessThanOrEqualTo, uint32(evcode.KeyMax))
	}
}

func TestSnapshotDrainsWheel(t *testing.T) {
	s := New()
	s.Layout(640, 480)
	s.wheelY = 2

	snap := s.Snapshot()
	test.That(t, snap.Width, test.ShouldEqual, 640)
	test.That(t, snap.WheelY, test.ShouldEqual, 2.0)
	test.That(t, s.Snapshot().WheelY, test.ShouldEqual, 0.0)
}
