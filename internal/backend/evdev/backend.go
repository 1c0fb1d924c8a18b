//go:build linux

// Package evdev は Linux の evdev デバイスノードを読む入力バックエンドを提供する
package evdev

import (
	"reflect"
	"slices"
	"sort"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"golang.org/x/sys/unix"

	"github.com/char5742/inputcore/internal/input"
	"github.com/char5742/inputcore/internal/logging"
)

// Handler は evdev バックエンドのハンドラ
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

// Adapt は AnyHandler を evdev バックエンドのハンドラに変換する
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

// DeviceError は evdev バックエンドの DispatchNewEvents が返すエラー
type DeviceError struct {
	Path string
	Op   string
	Err  error
}

func (e *DeviceError) Error() string {
	if e.Path == "" {
		return "evdev: " + e.Op + ": " + e.Err.Error()
	}
	return "evdev: " + e.Op + " " + e.Path + ": " + e.Err.Error()
}

func (e *DeviceError) Unwrap() error { return e.Err }

// Temporary はデバイスの取り外しなど、次の呼び出しで回復しうるエラーかどうかを返す
func (e *DeviceError) Temporary() bool {
	return errors.Is(e.Err, unix.ENODEV) || errors.Is(e.Err, unix.EINTR) || errors.Is(e.Err, unix.EAGAIN)
}

// SeatResolver はデバイスが属するシートの名前を決める
type SeatResolver interface {
	SeatName(path string) (string, error)
}

// StaticSeat はすべてのデバイスを同じシートに割り当てる
type StaticSeat string

// SeatName は常に自身の名前を返す
func (s StaticSeat) SeatName(string) (string, error) {
	return string(s), nil
}

// Options はバックエンドの作成時にのみ指定できる設定
type Options struct {
	Logger logging.Logger
	// Seats が nil の場合はすべてのデバイスが seat0 になる
	Seats SeatResolver
	// WatchDir が空でなければ、そのディレクトリを監視してデバイスの抜き差しに追従する
	WatchDir string
}

// DeviceStatus は接続中のデバイスの状態
type DeviceStatus struct {
	Path         string                 `json:"path"`
	Name         string                 `json:"name"`
	Seat         uint64                 `json:"seat"`
	Capabilities input.SeatCapabilities `json:"capabilities"`
	MultiTouch   bool                   `json:"multi_touch"`
	Grabbed      bool                   `json:"grabbed"`
}

// Backend は evdev デバイスを読むバックエンド
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
	applied Config
	seats   SeatResolver
	logger  logging.Logger
	monitor *DeviceMonitor

	guard   input.DispatchGuard
	tracker *input.SeatTracker
	devices map[string]*device
	failed  map[string]bool // 開けなかったデバイス
	rescan  bool
	epoch   int64 // 時刻の起点 (Unix ミリ秒)
}

// New はバックエンドを作成する。デバイスは最初の DispatchNewEvents で開かれる。
func New(config Config, opts Options) (*Backend, error) {
	b := &Backend{
		config:  config,
		seats:   opts.Seats,
		logger:  opts.Logger,
		tracker: input.NewSeatTracker(),
		devices: make(map[string]*device),
		failed:  make(map[string]bool),
		rescan:  true,
		epoch:   time.Now().UnixMilli(),
	}
	if b.seats == nil {
		b.seats = StaticSeat("seat0")
	}
	if b.logger == nil {
		b.logger = logging.NewNopLogger()
	}
	if opts.WatchDir != "" {
		monitor, err := NewDeviceMonitor(opts.WatchDir, "event")
		if err != nil {
			return nil, err
		}
		b.monitor = monitor
	}
	return b, nil
}

// InputConfig は設定を返す。変更は次の DispatchNewEvents で適用される。
func (b *Backend) InputConfig() *Config {
	return &b.config
}

// Devices は接続中のデバイスをパス順に返す
func (b *Backend) Devices() []DeviceStatus {
	paths := make([]string, 0, len(b.devices))
	for p := range b.devices {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	out := make([]DeviceStatus, 0, len(paths))
	for _, p := range paths {
		d := b.devices[p]
		out = append(out, DeviceStatus{
			Path:         d.path,
			Name:         d.name,
			Seat:         d.seatID,
			Capabilities: d.capabilities(),
			MultiTouch:   d.info.multiTouch,
			Grabbed:      d.grabbed,
		})
	}
	return out
}

// Seats は現在のシートを返す
func (b *Backend) Seats() []input.Seat {
	return b.tracker.Seats()
}

// Close はすべてのデバイスと監視を閉じる。シートの通知は行わない。
func (b *Backend) Close() error {
	var err error
	for path, d := range b.devices {
		err = multierr.Append(err, d.close())
		delete(b.devices, path)
	}
	if b.monitor != nil {
		err = multierr.Append(err, b.monitor.Close())
	}
	return err
}

// DispatchNewEvents はデバイスの抜き差しと設定の変更を反映してから、
// 読み取れるイベントをすべて配送する。
// 複数のデバイスのイベントはパス順に処理され、同じデバイスのイベントの順序は保たれる。
func (b *Backend) DispatchNewEvents() error {
	b.guard.Enter()
	defer b.guard.Exit()

	if b.monitor != nil {
		events, err := b.monitor.Poll()
		for _, ev := range events {
			b.logger.Debugw("デバイスノードの変化", "type", ev.Type, "path", ev.Path)
			if ev.Type == DeviceRemoved {
				if _, ok := b.devices[ev.Path]; ok {
					b.removeDevice(ev.Path, b.lastTime())
				}
				delete(b.failed, ev.Path)
			}
			b.rescan = true
		}
		if err != nil {
			return &DeviceError{Op: "watch", Err: err}
		}
	}

	b.applyConfig()
	if b.rescan || len(b.failed) > 0 {
		if err := b.scan(); err != nil {
			return err
		}
	}
	return b.read()
}

// applyConfig は設定をデバイスに反映する
func (b *Backend) applyConfig() {
	if !reflect.DeepEqual(b.applied, b.config) {
		b.rescan = true
	}
	for _, path := range b.sortedPaths() {
		d := b.devices[path]
		s := b.config.Settings(d.path, d.name)
		if s.Disabled {
			b.logger.Infow("無効化されたデバイスを閉じます", "path", path)
			b.removeDevice(path, b.lastTime())
			continue
		}
		if err := d.setGrab(s.Grab); err != nil {
			b.logger.Warnw("デバイスの専有状態を変更できませんでした", "path", path, "grab", s.Grab, "error", err)
		}
		d.decoder.setSettings(s)
	}
	b.applied = cloneConfig(b.config)
}

// cloneConfig は比較用に設定を複製する。nil と空のスライスは区別したまま残す。
func cloneConfig(c Config) Config {
	out := c
	out.Globs = slices.Clone(c.Globs)
	out.Defaults.Calibration = slices.Clone(c.Defaults.Calibration)
	if c.Devices != nil {
		out.Devices = make([]*DeviceSettings, len(c.Devices))
		for i, s := range c.Devices {
			if s == nil {
				continue
			}
			cp := *s
			cp.Calibration = slices.Clone(s.Calibration)
			out.Devices[i] = &cp
		}
	}
	return out
}

// scan はパターンに一致するデバイスと開いているデバイスの差分を反映する
func (b *Backend) scan() error {
	b.rescan = false
	paths, err := globDevices(b.config.Globs)
	if err != nil {
		return &DeviceError{Op: "scan", Err: err}
	}

	present := make(map[string]bool, len(paths))
	for _, path := range paths {
		present[path] = true
		if _, ok := b.devices[path]; ok {
			continue
		}
		b.addDevice(path)
	}
	for _, path := range b.sortedPaths() {
		if !present[path] {
			b.removeDevice(path, b.lastTime())
		}
	}
	for path := range b.failed {
		if !present[path] {
			delete(b.failed, path)
		}
	}
	return nil
}

func (b *Backend) addDevice(path string) {
	if s := b.config.Settings(path, ""); s.Disabled {
		return
	}
	d, err := openDevice(path, b.config.Settings)
	if err != nil {
		if !b.failed[path] {
			b.logger.Debugw("デバイスを開けませんでした", "path", path, "error", err)
		}
		b.failed[path] = true
		return
	}
	delete(b.failed, path)
	b.attach(d)
}

// attach は開いたデバイスをシートに接続して読み取りの対象にする
func (b *Backend) attach(d *device) {
	path := d.path
	d.decoder.epoch = b.epoch
	settings := b.config.Settings(path, d.name)
	caps := d.capabilities()
	if settings.Disabled || caps.IsEmpty() {
		_ = d.close()
		return
	}

	seatName, err := b.seats.SeatName(path)
	if err != nil {
		b.logger.Warnw("シートを決定できませんでした", "path", path, "error", err)
		seatName = "seat0"
	}
	d.seatID = b.tracker.IDFor(seatName)
	if err := d.setGrab(settings.Grab); err != nil {
		b.logger.Warnw("デバイスを専有できませんでした", "path", path, "error", err)
	}

	b.devices[path] = d
	seat := b.tracker.Attach(b.SeatHandler(), d.seatID, path, caps)
	if caps.Keyboard {
		b.syncKeys(d)
	}
	b.logger.Infow("デバイスを接続しました", "path", path, "name", d.name, "seat", seat)

	b.config.ensure(path, d.name)
	b.applied = cloneConfig(b.config)
	if h, ok := b.Handler(); ok {
		h.OnInputConfigChanged(&b.config)
	}
}

// removeDevice はデバイスを閉じてシートから外す。続いている接触は取り消される。
func (b *Backend) removeDevice(path string, time uint32) {
	d := b.devices[path]
	d.decoder.cancelAll(time)
	b.deliver(d, d.decoder.take())

	delete(b.devices, path)
	if err := d.close(); err != nil {
		b.logger.Debugw("デバイスを閉じる際にエラーが発生しました", "path", path, "error", err)
	}
	b.tracker.Detach(b.SeatHandler(), path)
	b.logger.Infow("デバイスを取り外しました", "path", path, "name", d.name)

	if h, ok := b.Handler(); ok {
		h.OnInputConfigChanged(&b.config)
	}
}

// syncKeys はデバイスで押されているキーを読み直す
func (b *Backend) syncKeys(d *device) {
	keys, err := d.dev.PressedKeys()
	if err != nil {
		b.logger.Debugw("キーの状態を取得できませんでした", "path", d.path, "error", err)
		return
	}
	b.tracker.SetPressed(d.path, keys)
}

// lastTime は合成イベントに使う時刻を返す。evdev のイベントと同じく epoch からのミリ秒。
func (b *Backend) lastTime() uint32 {
	return uint32(time.Now().UnixMilli() - b.epoch)
}

func (b *Backend) sortedPaths() []string {
	paths := make([]string, 0, len(b.devices))
	for p := range b.devices {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

func (b *Backend) pollTimeout() int {
	d := b.config.PollTimeout.Duration
	if d < 0 {
		return -1
	}
	return int(d / time.Millisecond)
}

// 1回の呼び出しで読み取りを繰り返す最大回数
const maxReadRounds = 64

// read は読み取れるデバイスからイベントを読んで配送する
func (b *Backend) read() error {
	paths := b.sortedPaths()
	if len(paths) == 0 {
		if t := b.pollTimeout(); t > 0 {
			time.Sleep(time.Duration(t) * time.Millisecond)
		}
		return nil
	}

	timeout := b.pollTimeout()
	for round := 0; round < maxReadRounds; round++ {
		fds := make([]unix.PollFd, len(paths))
		for i, p := range paths {
			fds[i] = unix.PollFd{Fd: b.devices[p].fd(), Events: unix.POLLIN}
		}
		n, err := unix.Poll(fds, timeout)
		if err != nil {
			if errors.Is(err, unix.EINTR) {
				return nil
			}
			return &DeviceError{Op: "poll", Err: err}
		}
		if n == 0 {
			return nil
		}
		timeout = 0

		for i, p := range paths {
			re := fds[i].Revents
			if re == 0 {
				continue
			}
			d := b.devices[p]
			if re&(unix.POLLHUP|unix.POLLERR|unix.POLLNVAL) != 0 && re&unix.POLLIN == 0 {
				b.removeDevice(p, b.lastTime())
				return &DeviceError{Path: p, Op: "read", Err: unix.ENODEV}
			}
			events, err := d.dev.Read()
			if err != nil {
				if errors.Is(err, unix.EAGAIN) {
					continue
				}
				if errors.Is(err, unix.ENODEV) {
					b.removeDevice(p, b.lastTime())
				}
				return &DeviceError{Path: p, Op: "read", Err: err}
			}
			for _, ev := range events {
				d.decoder.feed(ev)
			}
			b.deliver(d, d.decoder.take())
			if d.decoder.takeResync() && d.info.keyboard {
				b.syncKeys(d)
			}
		}
		// 配送中に取り外されたデバイスがあれば一覧を作り直す
		if len(paths) != len(b.devices) {
			paths = b.sortedPaths()
			if len(paths) == 0 {
				return nil
			}
		}
	}
	return nil
}

// deliver はデコードされたイベントをシートと共にハンドラへ渡す。
// ハンドラがない場合もキーの状態は追跡される。
// コールバックの中でハンドラが差し替えられることがあるので、イベントごとにハンドラを取り直す。
func (b *Backend) deliver(d *device, events []input.Event) {
	if len(events) == 0 {
		return
	}
	seat, _ := b.tracker.Seat(d.seatID)
	for _, ev := range events {
		if e, ok := ev.(KeyboardKeyEvent); ok {
			e.count, _ = b.tracker.Key(d.path, e.code, e.state)
			ev = e
		}
		h, ok := b.Handler()
		if !ok {
			continue
		}
		switch e := ev.(type) {
		case KeyboardKeyEvent:
			h.OnKeyboardKey(seat, e)
		case PointerMotionEvent:
			h.OnPointerMove(seat, e)
		case PointerMotionAbsoluteEvent:
			h.OnPointerMoveAbsolute(seat, e)
		case PointerButtonEvent:
			h.OnPointerButton(seat, e)
		case PointerAxisEvent:
			h.OnPointerAxis(seat, e)
		case TouchDownEvent:
			h.OnTouchDown(seat, e)
		case TouchMotionEvent:
			h.OnTouchMotion(seat, e)
		case TouchUpEvent:
			h.OnTouchUp(seat, e)
		case TouchCancelEvent:
			h.OnTouchCancel(seat, e)
		case TouchFrameEvent:
			h.OnTouchFrame(seat, e)
		}
	}
}
