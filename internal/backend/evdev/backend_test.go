//go:build linux

package evdev

import (
	"reflect"
	"testing"

	evdev "github.com/gvalkov/golang-evdev"
	"github.com/pkg/errors"
	"go.viam.com/test"
	"golang.org/x/sys/unix"

	"github.com/char5742/inputcore/internal/input"
	"github.com/char5742/inputcore/internal/input/inputtest"
)

// fakeNode はパイプで読み取り可能を知らせるデバイスノード
type fakeNode struct {
	r, w    int
	batches [][]evdev.InputEvent
	err     error
	keys    []uint32
	grabbed bool
	closed  bool
}

func newFakeNode(t *testing.T) *fakeNode {
	t.Helper()
	var p [2]int
	test.That(t, unix.Pipe2(p[:], unix.O_NONBLOCK|unix.O_CLOEXEC), test.ShouldBeNil)
	n := &fakeNode{r: p[0], w: p[1]}
	t.Cleanup(func() {
		_ = n.Close()
		n.hangUp()
	})
	return n
}

// wake は読み取り可能にする。イベントがなければ Read は EAGAIN を返す。
func (n *fakeNode) wake() {
	_, _ = unix.Write(n.w, []byte{0})
}

// push はイベントをひとまとまりとして読み取れるようにする
func (n *fakeNode) push(events ...evdev.InputEvent) {
	n.batches = append(n.batches, events)
	n.wake()
}

// fail は次の Read を err で失敗させる
func (n *fakeNode) fail(err error) {
	n.err = err
	n.wake()
}

// hangUp は書き込み側を閉じて POLLHUP を発生させる
func (n *fakeNode) hangUp() {
	if n.w >= 0 {
		_ = unix.Close(n.w)
		n.w = -1
	}
}

func (n *fakeNode) Read() ([]evdev.InputEvent, error) {
	var buf [1]byte
	_, _ = unix.Read(n.r, buf[:])
	if n.err != nil {
		return nil, n.err
	}
	if len(n.batches) == 0 {
		return nil, unix.EAGAIN
	}
	events := n.batches[0]
	n.batches = n.batches[1:]
	return events, nil
}

func (n *fakeNode) Grab() error    { n.grabbed = true; return nil }
func (n *fakeNode) Release() error { n.grabbed = false; return nil }
func (n *fakeNode) Fd() int32      { return int32(n.r) }

func (n *fakeNode) PressedKeys() ([]uint32, error) {
	return n.keys, nil
}

func (n *fakeNode) Close() error {
	if !n.closed {
		n.closed = true
		return unix.Close(n.r)
	}
	return nil
}

func fakeDevice(t *testing.T, path, name string, info deviceInfo) (*device, *fakeNode) {
	n := newFakeNode(t)
	return &device{path: path, name: name, dev: n, info: info, decoder: newDecoder(info, DeviceSettings{})}, n
}

// newTestBackend は ev のタイムスタンプ (1.5秒) が 500 になる epoch のバックエンドを返す
func newTestBackend(t *testing.T) (*Backend, *inputtest.Recorder[Config]) {
	t.Helper()
	cfg := DefaultConfig()
	cfg.PollTimeout = Duration{}
	b, err := New(cfg, Options{})
	test.That(t, err, test.ShouldBeNil)
	b.epoch = 1000
	t.Cleanup(func() { _ = b.Close() })

	rec := inputtest.NewRecorder[Config]()
	b.SetHandler(Adapt(rec))
	return b, rec
}

func settingsFor(cfg *Config, path string) *DeviceSettings {
	for _, s := range cfg.Devices {
		if s != nil && s.Path == path {
			return s
		}
	}
	return nil
}

func TestCloneConfigKeepsEquality(t *testing.T) {
	cfg := DefaultConfig()
	test.That(t, reflect.DeepEqual(cloneConfig(cfg), cfg), test.ShouldBeTrue)

	cfg.Globs = []string{}
	cfg.Defaults.Calibration = []float64{1, 0, 0, 0, 1, 0}
	cfg.Devices = []*DeviceSettings{nil, {Path: "/dev/input/event0", Calibration: []float64{}}, {Name: "kbd"}}
	clone := cloneConfig(cfg)
	test.That(t, reflect.DeepEqual(clone, cfg), test.ShouldBeTrue)

	// 複製は元の設定と共有しない
	clone.Devices[1].Grab = true
	clone.Defaults.Calibration[0] = 2
	test.That(t, cfg.Devices[1].Grab, test.ShouldBeFalse)
	test.That(t, cfg.Defaults.Calibration[0], test.ShouldEqual, 1.0)
}

func TestAttachSyncsPressedKeys(t *testing.T) {
	b, rec := newTestBackend(t)

	d, n := fakeDevice(t, "/dev/input/event0", "kbd", deviceInfo{keyboard: true})
	n.keys = []uint32{evdev.KEY_LEFTSHIFT}
	b.attach(d)

	test.That(t, rec.Kinds(), test.ShouldResemble, []inputtest.Kind{inputtest.SeatCreated, inputtest.InputConfigChanged})
	test.That(t, b.tracker.PressedCount(d.seatID), test.ShouldEqual, uint32(1))
	test.That(t, settingsFor(b.InputConfig(), "/dev/input/event0").Name, test.ShouldEqual, "kbd")

	// 接続で追加された設定項目はそのまま再走査の要因にならない
	b.rescan = false
	b.applyConfig()
	test.That(t, b.rescan, test.ShouldBeFalse)
}

func TestDeliverCountsKeysAcrossSeat(t *testing.T) {
	b, rec := newTestBackend(t)

	kbd, kbdNode := fakeDevice(t, "/dev/input/event0", "kbd", deviceInfo{keyboard: true})
	pad, padNode := fakeDevice(t, "/dev/input/event1", "keypad", deviceInfo{keyboard: true})
	padNode.keys = []uint32{evdev.KEY_LEFTSHIFT}
	b.attach(kbd)
	b.attach(pad)
	rec.Reset()

	kbdNode.push(ev(evdev.EV_KEY, evdev.KEY_A, 1), syn())
	padNode.push(ev(evdev.EV_KEY, evdev.KEY_1, 1), syn())
	test.That(t, b.read(), test.ShouldBeNil)
	kbdNode.push(ev(evdev.EV_KEY, evdev.KEY_A, 0), syn())
	test.That(t, b.read(), test.ShouldBeNil)

	keys := rec.Filter(inputtest.KeyboardKey)
	test.That(t, keys, test.ShouldHaveLength, 3)
	counts := make([]uint32, len(keys))
	for i, c := range keys {
		counts[i] = c.Event.(input.KeyboardKeyEvent).Count()
		test.That(t, c.Seat.ID(), test.ShouldEqual, kbd.seatID)
	}
	test.That(t, counts, test.ShouldResemble, []uint32{2, 3, 2})
	test.That(t, keys[0].Event.Time(), test.ShouldEqual, uint32(500))

	// ハンドラがなくても数は追跡される
	b.ClearHandler()
	padNode.push(ev(evdev.EV_KEY, evdev.KEY_1, 0), syn())
	test.That(t, b.read(), test.ShouldBeNil)
	test.That(t, b.tracker.PressedCount(kbd.seatID), test.ShouldEqual, uint32(1))
}

// swapper はキーとシートの破棄を受け取るとハンドラを next に差し替える
type swapper struct {
	*inputtest.Recorder[Config]
	backend *Backend
	next    Handler
}

func (s swapper) OnKeyboardKey(seat input.Seat, e input.KeyboardKeyEvent) {
	s.Recorder.OnKeyboardKey(seat, e)
	s.backend.SetHandler(s.next)
}

func (s swapper) OnSeatDestroyed(seat input.Seat) {
	s.Recorder.OnSeatDestroyed(seat)
	s.backend.SetHandler(s.next)
}

func TestDeliverFollowsHandlerSwap(t *testing.T) {
	b, _ := newTestBackend(t)
	d, n := fakeDevice(t, "/dev/input/event0", "kbd", deviceInfo{keyboard: true})
	b.attach(d)

	first := inputtest.NewRecorder[Config]()
	second := inputtest.NewRecorder[Config]()
	b.SetHandler(Adapt(swapper{Recorder: first, backend: b, next: Adapt(second)}))

	n.push(ev(evdev.EV_KEY, evdev.KEY_A, 1), ev(evdev.EV_KEY, evdev.KEY_B, 1), syn())
	test.That(t, b.read(), test.ShouldBeNil)

	test.That(t, first.Kinds(), test.ShouldResemble, []inputtest.Kind{inputtest.KeyboardKey})
	test.That(t, second.Kinds(), test.ShouldResemble, []inputtest.Kind{inputtest.KeyboardKey})
	test.That(t, second.Calls()[0].Event.(input.KeyboardKeyEvent).KeyCode(), test.ShouldEqual, uint32(evdev.KEY_B))

	// 取り外しの途中で差し替えられた場合も、残りの通知は新しいハンドラに届く
	first.Reset()
	second.Reset()
	b.SetHandler(Adapt(swapper{Recorder: first, backend: b, next: Adapt(second)}))
	b.removeDevice(d.path, 9)
	test.That(t, first.Kinds(), test.ShouldResemble, []inputtest.Kind{inputtest.SeatDestroyed})
	test.That(t, second.Kinds(), test.ShouldResemble, []inputtest.Kind{inputtest.InputConfigChanged})
}

func TestRemoveDeviceCancelsTouches(t *testing.T) {
	b, rec := newTestBackend(t)

	screen, screenNode := fakeDevice(t, "/dev/input/event0", "screen", touchscreen())
	kbd, kbdNode := fakeDevice(t, "/dev/input/event1", "kbd", deviceInfo{keyboard: true})
	b.attach(screen)
	b.attach(kbd)

	screenNode.push(
		ev(evdev.EV_ABS, evdev.ABS_MT_SLOT, 0),
		ev(evdev.EV_ABS, evdev.ABS_MT_TRACKING_ID, 10),
		ev(evdev.EV_ABS, evdev.ABS_MT_POSITION_X, 100),
		ev(evdev.EV_ABS, evdev.ABS_MT_POSITION_Y, 200),
		syn(),
	)
	test.That(t, b.read(), test.ShouldBeNil)
	rec.Reset()

	b.removeDevice(screen.path, 42)
	test.That(t, rec.Kinds(), test.ShouldResemble, []inputtest.Kind{
		inputtest.TouchCancel,
		inputtest.TouchFrame,
		inputtest.SeatChanged,
		inputtest.InputConfigChanged,
	})
	calls := rec.Calls()
	test.That(t, calls[0].Event.Time(), test.ShouldEqual, uint32(42))
	test.That(t, calls[0].Seat.Capabilities().Touch, test.ShouldBeTrue)
	test.That(t, calls[2].Seat.Capabilities(), test.ShouldResemble, input.SeatCapabilities{Keyboard: true})
	test.That(t, screenNode.closed, test.ShouldBeTrue)

	rec.Reset()
	b.removeDevice(kbd.path, 43)
	test.That(t, rec.Kinds(), test.ShouldResemble, []inputtest.Kind{inputtest.SeatDestroyed, inputtest.InputConfigChanged})
	test.That(t, kbdNode.closed, test.ShouldBeTrue)
	test.That(t, b.Seats(), test.ShouldBeEmpty)
	test.That(t, b.Devices(), test.ShouldBeEmpty)
}

func TestApplyConfigDisableAndGrab(t *testing.T) {
	b, rec := newTestBackend(t)

	kbd, kbdNode := fakeDevice(t, "/dev/input/event0", "kbd", deviceInfo{keyboard: true})
	mouse, mouseNode := fakeDevice(t, "/dev/input/event1", "mouse", deviceInfo{pointer: true})
	b.attach(kbd)
	b.attach(mouse)
	rec.Reset()
	b.rescan = false

	cfg := b.InputConfig()
	settingsFor(cfg, kbd.path).Grab = true
	settingsFor(cfg, mouse.path).Disabled = true
	b.applyConfig()

	test.That(t, kbdNode.grabbed, test.ShouldBeTrue)
	test.That(t, mouseNode.closed, test.ShouldBeTrue)
	test.That(t, b.Devices(), test.ShouldHaveLength, 1)
	test.That(t, b.Devices()[0].Grabbed, test.ShouldBeTrue)
	test.That(t, rec.Kinds(), test.ShouldResemble, []inputtest.Kind{inputtest.SeatChanged, inputtest.InputConfigChanged})
	test.That(t, b.Seats()[0].Capabilities(), test.ShouldResemble, input.SeatCapabilities{Keyboard: true})
	// 設定が変わったので次の呼び出しで走査し直す
	test.That(t, b.rescan, test.ShouldBeTrue)

	b.rescan = false
	settingsFor(cfg, kbd.path).Grab = false
	b.applyConfig()
	test.That(t, kbdNode.grabbed, test.ShouldBeFalse)
	test.That(t, b.rescan, test.ShouldBeTrue)

	b.rescan = false
	b.applyConfig()
	test.That(t, b.rescan, test.ShouldBeFalse)
}

func TestReadHangUp(t *testing.T) {
	b, rec := newTestBackend(t)
	d, n := fakeDevice(t, "/dev/input/event0", "kbd", deviceInfo{keyboard: true})
	b.attach(d)
	rec.Reset()

	n.hangUp()
	err := b.read()
	var de *DeviceError
	test.That(t, errors.As(err, &de), test.ShouldBeTrue)
	test.That(t, de.Path, test.ShouldEqual, d.path)
	test.That(t, errors.Is(err, unix.ENODEV), test.ShouldBeTrue)
	test.That(t, de.Temporary(), test.ShouldBeTrue)

	test.That(t, n.closed, test.ShouldBeTrue)
	test.That(t, b.Devices(), test.ShouldBeEmpty)
	test.That(t, rec.Kinds(), test.ShouldResemble, []inputtest.Kind{inputtest.SeatDestroyed, inputtest.InputConfigChanged})
}

func TestReadDeviceGone(t *testing.T) {
	b, rec := newTestBackend(t)
	kbd, kbdNode := fakeDevice(t, "/dev/input/event0", "kbd", deviceInfo{keyboard: true})
	mouse, mouseNode := fakeDevice(t, "/dev/input/event1", "mouse", deviceInfo{pointer: true})
	b.attach(kbd)
	b.attach(mouse)
	rec.Reset()

	// 読み取れるものがなければ何もしない
	kbdNode.wake()
	test.That(t, b.read(), test.ShouldBeNil)
	test.That(t, b.Devices(), test.ShouldHaveLength, 2)

	mouseNode.fail(unix.ENODEV)
	err := b.read()
	var de *DeviceError
	test.That(t, errors.As(err, &de), test.ShouldBeTrue)
	test.That(t, de.Path, test.ShouldEqual, mouse.path)
	test.That(t, de.Op, test.ShouldEqual, "read")
	test.That(t, errors.Is(err, unix.ENODEV), test.ShouldBeTrue)

	test.That(t, mouseNode.closed, test.ShouldBeTrue)
	test.That(t, b.Devices(), test.ShouldHaveLength, 1)
	test.That(t, rec.Kinds(), test.ShouldResemble, []inputtest.Kind{inputtest.SeatChanged, inputtest.InputConfigChanged})

	// 残ったデバイスは読み続けられる
	kbdNode.push(ev(evdev.EV_KEY, evdev.KEY_A, 1), syn())
	test.That(t, b.read(), test.ShouldBeNil)
	test.That(t, rec.Filter(inputtest.KeyboardKey), test.ShouldHaveLength, 1)
}
