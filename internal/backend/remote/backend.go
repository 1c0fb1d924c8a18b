// Package remote はネットワーク越しに届く JSON メッセージを入力イベントとして配送するバックエンドを提供する。
// メッセージの形式は wire パッケージで定義される。
package remote

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/char5742/inputcore/internal/input"
	"github.com/char5742/inputcore/internal/logging"
	"github.com/char5742/inputcore/internal/wire"
)

// Config は送信側の座標空間の大きさ。configure メッセージで更新される。
type Config struct {
	Width  float64 `toml:"width" json:"width"`
	Height float64 `toml:"height" json:"height"`
}

// DefaultConfig は既定の設定を返す
func DefaultConfig() Config {
	return Config{Width: 1920, Height: 1080}
}

// DefaultQueueSize は受信キューの既定の長さ
const DefaultQueueSize = 1024

// Options はバックエンドの作成時にのみ指定できる設定
type Options struct {
	Logger    logging.Logger
	QueueSize int
}

// Handler はリモートバックエンドのハンドラ
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

// Adapt は AnyHandler をリモートバックエンドのハンドラに変換する
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

// ProtocolError は不正なメッセージを受け取ったことを表す。
// そのメッセージは捨てられ、後続のメッセージは次の呼び出しで処理される。
type ProtocolError struct {
	Kind   wire.Kind
	Device string
	Err    error
}

func (e *ProtocolError) Error() string {
	msg := "remote: protocol error"
	if e.Kind != "" {
		msg += " in " + string(e.Kind)
	}
	if e.Device != "" {
		msg += " from " + e.Device
	}
	return msg + ": " + e.Err.Error()
}

func (e *ProtocolError) Unwrap() error { return e.Err }

// Temporary は常に true を返す。次の呼び出しで後続のメッセージを処理できる。
func (e *ProtocolError) Temporary() bool { return true }

// TransportError は経路が閉じたことを表す。以降イベントは届かない。
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	if e.Err == nil {
		return "remote: transport closed"
	}
	return "remote: transport closed: " + e.Err.Error()
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Temporary() bool { return false }

var (
	// ErrUnknownDevice は接続されていないデバイスからのメッセージ
	ErrUnknownDevice = errors.New("デバイスが接続されていません")
	// ErrSlotMismatch はデバイスのマルチタッチ属性とスロットの有無が一致しないメッセージ
	ErrSlotMismatch = errors.New("スロットの有無がデバイスと一致しません")
	// ErrUnknownContact は存在しない接触へのメッセージ
	ErrUnknownContact = errors.New("接触が存在しません")
	// ErrContactLive は続いている接触の再開始
	ErrContactLive = errors.New("接触はすでに始まっています")
	// ErrCapability はデバイスが持たない能力のイベント
	ErrCapability = errors.New("デバイスはこの種類のイベントを送れません")
)

type device struct {
	name       string
	seatID     uint64
	caps       input.SeatCapabilities
	multiTouch bool
	slots      *input.SlotAllocator
	single     bool                // スロットなしの接触が続いているか
	scrolls    map[input.Axis]bool // 終わっていない Finger スクロール
}

// Backend はトランスポートから受け取ったメッセージを配送するバックエンド
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

	config    Config
	logger    logging.Logger
	transport Transport
	queue     *queue

	guard        input.DispatchGuard
	tracker      *input.SeatTracker
	devices      map[string]*device
	lastTime     uint32
	disconnected bool
}

// New はトランスポートからの受信を始める
func New(transport Transport, config Config, opts Options) *Backend {
	if opts.Logger == nil {
		opts.Logger = logging.NewNopLogger()
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = DefaultQueueSize
	}
	b := &Backend{
		config:    config,
		logger:    opts.Logger,
		transport: transport,
		queue:     newQueue(opts.QueueSize),
		tracker:   input.NewSeatTracker(),
		devices:   make(map[string]*device),
	}
	transport.OnClose(b.queue.close)
	transport.OnInput(b.queue.push)
	return b
}

// InputConfig は送信側の座標空間の設定を返す
func (b *Backend) InputConfig() *Config {
	return &b.config
}

// Seats は現在のシートを返す
func (b *Backend) Seats() []input.Seat {
	return b.tracker.Seats()
}

// Pending は配送待ちのメッセージの数を返す
func (b *Backend) Pending() int {
	return b.queue.len()
}

// Disconnected は経路が閉じたことを配送済みかどうかを返す
func (b *Backend) Disconnected() bool {
	return b.disconnected
}

// Close はトランスポートを閉じる。閉じたことはトランスポートから通知され、
// 次の DispatchNewEvents で配送される。
func (b *Backend) Close() error {
	return b.transport.Close()
}

// DispatchNewEvents は届いているメッセージを待たずに処理する。
// 不正なメッセージでは *ProtocolError、経路が閉じた場合は *TransportError を返す。
func (b *Backend) DispatchNewEvents() error {
	b.guard.Enter()
	defer b.guard.Exit()

	for !b.disconnected {
		it, ok := b.queue.pop()
		if !ok {
			return nil
		}
		if it.closed {
			return b.disconnect(it.err)
		}
		if err := b.handle(it.data); err != nil {
			b.logger.Warnw("不正なメッセージを破棄しました", "error", err)
			return err
		}
	}
	return nil
}

// disconnect はリモートのシートをすべて破棄する。
// 終わっていない Finger スクロールは量 0 で終わらせ、続いている接触は取り消す。
func (b *Backend) disconnect(cause error) error {
	b.disconnected = true
	b.queue.stop()
	for _, name := range b.sortedDevices() {
		b.removeDevice(b.devices[name], b.lastTime)
	}
	b.logger.Infow("リモートとの接続が切れました", "error", cause)
	return &TransportError{Err: cause}
}

func (b *Backend) sortedDevices() []string {
	names := make([]string, 0, len(b.devices))
	for n := range b.devices {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (b *Backend) handle(data []byte) error {
	m, err := wire.Decode(data)
	if err != nil {
		return &ProtocolError{Err: err}
	}
	// 時刻は戻さない。前のメッセージより古い時刻はそれまでの最新の時刻として扱う。
	if m.Time < b.lastTime {
		b.logger.Debugw("時刻が戻ったメッセージを受信しました", "kind", m.Kind, "time", m.Time, "last", b.lastTime)
		m.Time = b.lastTime
	}
	b.lastTime = m.Time
	fail := func(err error) error {
		return &ProtocolError{Kind: m.Kind, Device: m.Device, Err: err}
	}

	switch m.Kind {
	case wire.KindConfigure:
		if !(m.Width > 0 && m.Height > 0) {
			return fail(errors.Errorf("不正な大きさ %gx%g", m.Width, m.Height))
		}
		b.config = Config{Width: m.Width, Height: m.Height}
		if h, ok := b.Handler(); ok {
			h.OnInputConfigChanged(&b.config)
		}
		return nil
	case wire.KindAttach:
		return b.attach(m, fail)
	}

	dev := b.devices[m.Device]
	if dev == nil {
		return fail(ErrUnknownDevice)
	}
	if m.Kind == wire.KindDetach {
		b.removeDevice(dev, m.Time)
		return nil
	}

	seat, _ := b.tracker.Seat(dev.seatID)
	h, hasHandler := b.Handler()

	switch m.Kind {
	case wire.KindKey:
		if !dev.caps.Keyboard {
			return fail(ErrCapability)
		}
		state, err := wire.ParseKeyState(m.State)
		if err != nil {
			return fail(err)
		}
		count, _ := b.tracker.Key(dev.name, m.Key, state)
		if hasHandler {
			h.OnKeyboardKey(seat, KeyboardKeyEvent{time: m.Time, code: m.Key, state: state, count: count})
		}

	case wire.KindMotion:
		if !dev.caps.Pointer {
			return fail(ErrCapability)
		}
		if hasHandler {
			h.OnPointerMove(seat, PointerMotionEvent{time: m.Time, dx: uint32(m.DX), dy: uint32(m.DY)})
		}

	case wire.KindMotionAbsolute:
		if !dev.caps.Pointer {
			return fail(ErrCapability)
		}
		if hasHandler {
			h.OnPointerMoveAbsolute(seat, PointerMotionAbsoluteEvent{surfacePoint: b.point(m), time: m.Time})
		}

	case wire.KindButton:
		if !dev.caps.Pointer {
			return fail(ErrCapability)
		}
		button, err := wire.ParseButton(m.Button, m.ButtonIndex)
		if err != nil {
			return fail(err)
		}
		state, err := wire.ParseButtonState(m.State)
		if err != nil {
			return fail(err)
		}
		if hasHandler {
			h.OnPointerButton(seat, PointerButtonEvent{time: m.Time, button: button, state: state})
		}

	case wire.KindAxis:
		if !dev.caps.Pointer {
			return fail(ErrCapability)
		}
		axis, err := wire.ParseAxis(m.Axis)
		if err != nil {
			return fail(err)
		}
		source, err := wire.ParseAxisSource(m.Source)
		if err != nil {
			return fail(err)
		}
		if source == input.AxisSourceFinger {
			if m.Amount == 0 {
				delete(dev.scrolls, axis)
			} else {
				dev.scrolls[axis] = true
			}
		}
		if hasHandler {
			h.OnPointerAxis(seat, PointerAxisEvent{time: m.Time, axis: axis, source: source, amount: m.Amount})
		}

	case wire.KindTouchDown, wire.KindTouchMotion, wire.KindTouchUp, wire.KindTouchCancel:
		if !dev.caps.Touch {
			return fail(ErrCapability)
		}
		if m.HasSlot() != dev.multiTouch {
			return fail(ErrSlotMismatch)
		}
		slot, err := b.contact(dev, m)
		if err != nil {
			return fail(err)
		}
		if !hasHandler {
			return nil
		}
		switch m.Kind {
		case wire.KindTouchDown:
			h.OnTouchDown(seat, TouchDownEvent{surfacePoint: b.point(m), slotted: slot, time: m.Time})
		case wire.KindTouchMotion:
			h.OnTouchMotion(seat, TouchMotionEvent{surfacePoint: b.point(m), slotted: slot, time: m.Time})
		case wire.KindTouchUp:
			h.OnTouchUp(seat, TouchUpEvent{slotted: slot, time: m.Time})
		case wire.KindTouchCancel:
			h.OnTouchCancel(seat, TouchCancelEvent{slotted: slot, time: m.Time})
		}

	case wire.KindTouchFrame:
		if !dev.caps.Touch {
			return fail(ErrCapability)
		}
		if hasHandler {
			h.OnTouchFrame(seat, TouchFrameEvent{time: m.Time})
		}

	default:
		return fail(errors.Errorf("%s は送信できないメッセージです", m.Kind))
	}
	return nil
}

func (b *Backend) attach(m wire.Message, fail func(error) error) error {
	if m.Device == "" {
		return fail(errors.New("device がありません"))
	}
	if m.Capabilities == nil || m.Capabilities.IsEmpty() {
		return fail(errors.New("capabilities がありません"))
	}
	if old := b.devices[m.Device]; old != nil {
		if old.seatID != m.Seat || old.multiTouch != m.MultiTouch {
			b.removeDevice(old, m.Time)
		}
	}
	dev := b.devices[m.Device]
	if dev == nil {
		dev = &device{
			name:    m.Device,
			slots:   input.NewSlotAllocator(),
			scrolls: make(map[input.Axis]bool),
		}
		b.devices[m.Device] = dev
	}
	dev.seatID = m.Seat
	dev.caps = *m.Capabilities
	dev.multiTouch = m.MultiTouch
	seat := b.tracker.Attach(b.SeatHandler(), m.Seat, m.Device, dev.caps)
	b.logger.Infow("リモートデバイスが接続されました", "device", m.Device, "seat", seat, "multi_touch", m.MultiTouch)
	return nil
}

// contact は接触IDをスロットに対応付け、接触の状態を更新する
func (b *Backend) contact(dev *device, m wire.Message) (slotted, error) {
	if !dev.multiTouch {
		switch m.Kind {
		case wire.KindTouchDown:
			if dev.single {
				return slotted{}, ErrContactLive
			}
			dev.single = true
		case wire.KindTouchMotion:
			if !dev.single {
				return slotted{}, ErrUnknownContact
			}
		default:
			if !dev.single {
				return slotted{}, ErrUnknownContact
			}
			dev.single = false
		}
		return slotted{}, nil
	}

	id := m.SlotID()
	var (
		slot input.TouchSlot
		ok   bool
	)
	switch m.Kind {
	case wire.KindTouchDown:
		slot, ok = dev.slots.Acquire(id)
		if !ok {
			return slotted{}, ErrContactLive
		}
	case wire.KindTouchMotion:
		slot, ok = dev.slots.Lookup(id)
	default:
		slot, ok = dev.slots.Release(id)
	}
	if !ok {
		return slotted{}, ErrUnknownContact
	}
	return slotted{slot: slot, hasSlot: true}, nil
}

func (b *Backend) point(m wire.Message) surfacePoint {
	return surfacePoint{x: m.X, y: m.Y, width: b.config.Width, height: b.config.Height}
}

// removeDevice はデバイスをシートから外す。
// 終わっていない Finger スクロールは量 0 で終わらせ、続いている接触は取り消す。
// 通知のたびにハンドラを取り直すので、途中で差し替えられた場合も残りは新しいハンドラに届く。
func (b *Backend) removeDevice(dev *device, time uint32) {
	seat, _ := b.tracker.Seat(dev.seatID)
	emit := func(f func(h Handler)) {
		if h, ok := b.Handler(); ok {
			f(h)
		}
	}

	for _, axis := range []input.Axis{input.AxisVertical, input.AxisHorizontal} {
		if dev.scrolls[axis] {
			ev := PointerAxisEvent{time: time, axis: axis, source: input.AxisSourceFinger}
			emit(func(h Handler) { h.OnPointerAxis(seat, ev) })
		}
	}

	live := dev.slots.Live()
	contacts := make([]uint64, 0, len(live))
	for c := range live {
		contacts = append(contacts, c)
	}
	sort.Slice(contacts, func(i, j int) bool { return live[contacts[i]].ID() < live[contacts[j]].ID() })
	for _, c := range contacts {
		ev := TouchCancelEvent{slotted: slotted{slot: live[c], hasSlot: true}, time: time}
		emit(func(h Handler) { h.OnTouchCancel(seat, ev) })
	}
	if dev.single {
		emit(func(h Handler) { h.OnTouchCancel(seat, TouchCancelEvent{time: time}) })
	}
	if len(contacts) > 0 || dev.single {
		emit(func(h Handler) { h.OnTouchFrame(seat, TouchFrameEvent{time: time}) })
	}

	delete(b.devices, dev.name)
	b.tracker.Detach(b.SeatHandler(), dev.name)
	b.logger.Infow("リモートデバイスが切断されました", "device", dev.name)
}
