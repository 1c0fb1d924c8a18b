// Package virtual はスクリプトで操作する仮想入力バックエンドを提供する。
// テストやセルフテストで、実デバイスなしにハンドラの動作を確かめるために使う。
package virtual

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/char5742/inputcore/internal/input"
	"github.com/char5742/inputcore/internal/logging"
)

// Config は仮想デバイスの座標空間の大きさ
type Config struct {
	Width  float64 `toml:"width" json:"width"`
	Height float64 `toml:"height" json:"height"`
}

// DefaultConfig は既定の設定を返す
func DefaultConfig() Config {
	return Config{Width: 1920, Height: 1080}
}

// DeviceOptions は仮想デバイスの属性
type DeviceOptions struct {
	// MultiTouch が true ならタッチイベントにスロットが付く
	MultiTouch bool
}

// Handler は仮想バックエンドのハンドラ
type Handler = input.Handler[
	Config,
	KeyboardKeyEvent,
	PointerAxisEvent,
	PointerButtonEvent,
	PointerMotionEvent,
	PointerMotionAbsoluteEvent,
	TouchDownEvent,
	TouchUpEvent,
	TouchMotionEvent,
	TouchCancelEvent,
	TouchFrameEvent,
]

// Adapt は AnyHandler を仮想バックエンドのハンドラに変換する
func Adapt(h input.AnyHandler[Config]) Handler {
	return input.Adapt[
		Config,
		KeyboardKeyEvent,
		PointerAxisEvent,
		PointerButtonEvent,
		PointerMotionEvent,
		PointerMotionAbsoluteEvent,
		TouchDownEvent,
		TouchUpEvent,
		TouchMotionEvent,
		TouchCancelEvent,
		TouchFrameEvent,
	](h)
}

var _ input.Backend[
	Config,
	KeyboardKeyEvent,
	PointerAxisEvent,
	PointerButtonEvent,
	PointerMotionEvent,
	PointerMotionAbsoluteEvent,
	TouchDownEvent,
	TouchUpEvent,
	TouchMotionEvent,
	TouchCancelEvent,
	TouchFrameEvent,
] = (*Backend)(nil)

// ErrUnknownDevice は接続されていないデバイスへの操作
var ErrUnknownDevice = errors.New("デバイスが接続されていません")

// ErrUnknownContact は存在しない接触への操作
var ErrUnknownContact = errors.New("接触が存在しません")

// InjectedError は仮想バックエンドの DispatchNewEvents が返すエラー
type InjectedError struct {
	Op     string
	Device string
	Err    error
	// Temp は Temporary の戻り値
	Temp bool
}

func (e *InjectedError) Error() string {
	if e.Device == "" {
		return "virtual: " + e.Op + ": " + e.Err.Error()
	}
	return "virtual: " + e.Op + " " + e.Device + ": " + e.Err.Error()
}

func (e *InjectedError) Unwrap() error { return e.Err }

// Temporary は再試行で回復しうるエラーかどうかを返す
func (e *InjectedError) Temporary() bool { return e.Temp }

type device struct {
	name       string
	seatID     uint64
	caps       input.SeatCapabilities
	multiTouch bool
	slots      *input.SlotAllocator
	single     bool // スロットなしの接触が続いているか
}

// activity は保留中のデバイスの動き
type activity struct {
	op     string
	device string
	time   uint32
	run    func(b *Backend, dev *device, time uint32) error
}

// Backend はスクリプトで注入された動きをイベントとして配送するバックエンド。
// 注入は DispatchNewEvents の呼び出しの合間に行い、次の呼び出しで順に配送される。
type Backend struct {
	input.HandlerSlot[
		Config,
		KeyboardKeyEvent,
		PointerAxisEvent,
		PointerButtonEvent,
		PointerMotionEvent,
		PointerMotionAbsoluteEvent,
		TouchDownEvent,
		TouchUpEvent,
		TouchMotionEvent,
		TouchCancelEvent,
		TouchFrameEvent,
	]

	config  Config
	logger  logging.Logger
	guard   input.DispatchGuard
	tracker *input.SeatTracker
	devices map[string]*device
	pending []activity
	clock   uint32
}

// New は仮想バックエンドを作成する。logger が nil の場合はログを出力しない。
func New(config Config, logger logging.Logger) *Backend {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Backend{
		config:  config,
		logger:  logger,
		tracker: input.NewSeatTracker(),
		devices: make(map[string]*device),
	}
}

// InputConfig は座標空間の設定を返す
func (b *Backend) InputConfig() *Config {
	return &b.config
}

// Seats は現在のシートを返す
func (b *Backend) Seats() []input.Seat {
	return b.tracker.Seats()
}

// Pending は配送待ちの動きの数を返す
func (b *Backend) Pending() int {
	return len(b.pending)
}

// Close は保留中の動きを捨て、すべてのデバイスを名前順に取り外す
func (b *Backend) Close() error {
	b.pending = nil
	names := make([]string, 0, len(b.devices))
	for name := range b.devices {
		names = append(names, name)
	}
	sort.Strings(names)
	b.clock++
	for _, name := range names {
		b.detach(name, b.clock)
	}
	return nil
}

func (b *Backend) push(op, dev string, run func(b *Backend, dev *device, time uint32) error) {
	b.clock++
	b.pending = append(b.pending, activity{op: op, device: dev, time: b.clock, run: run})
}

// DispatchNewEvents は保留中の動きを注入された順に配送する。
// 失敗した動きで中断し、残りは次の呼び出しまで保留される。
func (b *Backend) DispatchNewEvents() error {
	b.guard.Enter()
	defer b.guard.Exit()

	for len(b.pending) > 0 {
		act := b.pending[0]
		b.pending = b.pending[1:]

		var dev *device
		if act.device != "" {
			dev = b.devices[act.device]
			if dev == nil && act.op != "attach" {
				return &InjectedError{Op: act.op, Device: act.device, Err: ErrUnknownDevice}
			}
		}
		if err := act.run(b, dev, act.time); err != nil {
			var injected *InjectedError
			if errors.As(err, &injected) {
				return err
			}
			return &InjectedError{Op: act.op, Device: act.device, Err: err}
		}
	}
	return nil
}

// AttachDevice はデバイスをシートに接続する
func (b *Backend) AttachDevice(seatID uint64, name string, caps input.SeatCapabilities, opts DeviceOptions) {
	b.push("attach", name, func(b *Backend, _ *device, time uint32) error {
		if _, ok := b.devices[name]; ok {
			b.detach(name, time)
		}
		b.devices[name] = &device{
			name:       name,
			seatID:     seatID,
			caps:       caps,
			multiTouch: opts.MultiTouch,
			slots:      input.NewSlotAllocator(),
		}
		seat := b.tracker.Attach(b.SeatHandler(), seatID, name, caps)
		b.logger.Debugw("デバイスを接続しました", "device", name, "seat", seat)
		return nil
	})
}

// DetachDevice はデバイスを取り外す。続いている接触は取り消される。
func (b *Backend) DetachDevice(name string) {
	b.push("detach", name, func(b *Backend, _ *device, time uint32) error {
		b.detach(name, time)
		return nil
	})
}

// detach は接触を取り消してからデバイスを外す。
// 取り消しのコールバックでハンドラが差し替えられても残りは新しいハンドラに届くよう、通知のたびにハンドラを取り直す。
func (b *Backend) detach(name string, time uint32) {
	dev := b.devices[name]
	seat, _ := b.tracker.DeviceSeat(name)

	live := dev.slots.Live()
	contacts := make([]uint64, 0, len(live))
	for contact := range live {
		contacts = append(contacts, contact)
	}
	sort.Slice(contacts, func(i, j int) bool { return live[contacts[i]].ID() < live[contacts[j]].ID() })

	cancelled := false
	for _, contact := range contacts {
		slot, _ := dev.slots.Release(contact)
		if h, ok := b.Handler(); ok {
			h.OnTouchCancel(seat, TouchCancelEvent{slotted: slotted{slot: slot, hasSlot: true}, time: time})
		}
		cancelled = true
	}
	if dev.single {
		dev.single = false
		if h, ok := b.Handler(); ok {
			h.OnTouchCancel(seat, TouchCancelEvent{time: time})
		}
		cancelled = true
	}
	if h, ok := b.Handler(); ok && cancelled {
		h.OnTouchFrame(seat, TouchFrameEvent{time: time})
	}

	delete(b.devices, name)
	b.tracker.Detach(b.SeatHandler(), name)
	b.logger.Debugw("デバイスを取り外しました", "device", name)
}

// Key はキーの押下・解放を注入する
func (b *Backend) Key(name string, code uint32, state input.KeyState) {
	b.push("key", name, func(b *Backend, dev *device, time uint32) error {
		count, _ := b.tracker.Key(name, code, state)
		if h, ok := b.Handler(); ok {
			seat, _ := b.tracker.Seat(dev.seatID)
			h.OnKeyboardKey(seat, KeyboardKeyEvent{time: time, code: code, state: state, count: count})
		}
		return nil
	})
}

// PointerMotion は相対移動を注入する
func (b *Backend) PointerMotion(name string, dx, dy int32) {
	b.push("motion", name, func(b *Backend, dev *device, time uint32) error {
		if h, ok := b.Handler(); ok {
			seat, _ := b.tracker.Seat(dev.seatID)
			h.OnPointerMove(seat, PointerMotionEvent{time: time, dx: uint32(dx), dy: uint32(dy)})
		}
		return nil
	})
}

// PointerMotionAbsolute は絶対移動を注入する
func (b *Backend) PointerMotionAbsolute(name string, x, y float64) {
	b.push("motion_absolute", name, func(b *Backend, dev *device, time uint32) error {
		if h, ok := b.Handler(); ok {
			seat, _ := b.tracker.Seat(dev.seatID)
			h.OnPointerMoveAbsolute(seat, PointerMotionAbsoluteEvent{point: b.point(x, y), time: time})
		}
		return nil
	})
}

// PointerButton はボタンの押下・解放を注入する
func (b *Backend) PointerButton(name string, button input.MouseButton, state input.MouseButtonState) {
	b.push("button", name, func(b *Backend, dev *device, time uint32) error {
		if h, ok := b.Handler(); ok {
			seat, _ := b.tracker.Seat(dev.seatID)
			h.OnPointerButton(seat, PointerButtonEvent{time: time, button: button, state: state})
		}
		return nil
	})
}

// PointerAxis はスクロールを注入する
func (b *Backend) PointerAxis(name string, axis input.Axis, source input.AxisSource, amount float64) {
	b.push("axis", name, func(b *Backend, dev *device, time uint32) error {
		if h, ok := b.Handler(); ok {
			seat, _ := b.tracker.Seat(dev.seatID)
			h.OnPointerAxis(seat, PointerAxisEvent{time: time, axis: axis, source: source, amount: amount})
		}
		return nil
	})
}

// TouchDown は接触 contact の開始を注入する
func (b *Backend) TouchDown(name string, contact uint64, x, y float64) {
	b.push("touch_down", name, func(b *Backend, dev *device, time uint32) error {
		s, err := dev.begin(contact)
		if err != nil {
			return err
		}
		if h, ok := b.Handler(); ok {
			seat, _ := b.tracker.Seat(dev.seatID)
			h.OnTouchDown(seat, TouchDownEvent{point: b.point(x, y), slotted: s, time: time})
		}
		return nil
	})
}

// TouchMotion は接触 contact の移動を注入する
func (b *Backend) TouchMotion(name string, contact uint64, x, y float64) {
	b.push("touch_motion", name, func(b *Backend, dev *device, time uint32) error {
		s, err := dev.lookup(contact)
		if err != nil {
			return err
		}
		if h, ok := b.Handler(); ok {
			seat, _ := b.tracker.Seat(dev.seatID)
			h.OnTouchMotion(seat, TouchMotionEvent{point: b.point(x, y), slotted: s, time: time})
		}
		return nil
	})
}

// TouchUp は接触 contact の終了を注入する
func (b *Backend) TouchUp(name string, contact uint64) {
	b.push("touch_up", name, func(b *Backend, dev *device, time uint32) error {
		s, err := dev.end(contact)
		if err != nil {
			return err
		}
		if h, ok := b.Handler(); ok {
			seat, _ := b.tracker.Seat(dev.seatID)
			h.OnTouchUp(seat, TouchUpEvent{slotted: s, time: time})
		}
		return nil
	})
}

// TouchCancel は接触 contact の取り消しを注入する
func (b *Backend) TouchCancel(name string, contact uint64) {
	b.push("touch_cancel", name, func(b *Backend, dev *device, time uint32) error {
		s, err := dev.end(contact)
		if err != nil {
			return err
		}
		if h, ok := b.Handler(); ok {
			seat, _ := b.tracker.Seat(dev.seatID)
			h.OnTouchCancel(seat, TouchCancelEvent{slotted: s, time: time})
		}
		return nil
	})
}

// TouchFrame はタッチフレームを注入する
func (b *Backend) TouchFrame(name string) {
	b.push("touch_frame", name, func(b *Backend, dev *device, time uint32) error {
		if h, ok := b.Handler(); ok {
			seat, _ := b.tracker.Seat(dev.seatID)
			h.OnTouchFrame(seat, TouchFrameEvent{time: time})
		}
		return nil
	})
}

// Fail は読み取りの失敗を注入する。DispatchNewEvents はここで中断して err を返す。
func (b *Backend) Fail(err error, temporary bool) {
	b.push("read", "", func(*Backend, *device, uint32) error {
		return &InjectedError{Op: "read", Err: err, Temp: temporary}
	})
}

// ChangeConfig は外部からの設定変更を注入する。適用後に OnInputConfigChanged が呼ばれる。
func (b *Backend) ChangeConfig(fn func(*Config)) {
	b.push("config", "", func(b *Backend, _ *device, _ uint32) error {
		fn(&b.config)
		if h, ok := b.Handler(); ok {
			h.OnInputConfigChanged(&b.config)
		}
		return nil
	})
}

func (b *Backend) point(x, y float64) point {
	return point{x: x, y: y, width: b.config.Width, height: b.config.Height}
}

func (d *device) begin(contact uint64) (slotted, error) {
	if !d.multiTouch {
		if d.single {
			return slotted{}, errors.Errorf("スロットなしのデバイスで接触 %d を重ねて開始できません", contact)
		}
		d.single = true
		return slotted{}, nil
	}
	slot, fresh := d.slots.Acquire(contact)
	if !fresh {
		return slotted{}, errors.Errorf("接触 %d はすでに開始されています", contact)
	}
	return slotted{slot: slot, hasSlot: true}, nil
}

func (d *device) lookup(contact uint64) (slotted, error) {
	if !d.multiTouch {
		if !d.single {
			return slotted{}, ErrUnknownContact
		}
		return slotted{}, nil
	}
	slot, ok := d.slots.Lookup(contact)
	if !ok {
		return slotted{}, ErrUnknownContact
	}
	return slotted{slot: slot, hasSlot: true}, nil
}

func (d *device) end(contact uint64) (slotted, error) {
	if !d.multiTouch {
		if !d.single {
			return slotted{}, ErrUnknownContact
		}
		d.single = false
		return slotted{}, nil
	}
	slot, ok := d.slots.Release(contact)
	if !ok {
		return slotted{}, ErrUnknownContact
	}
	return slotted{slot: slot, hasSlot: true}, nil
}
