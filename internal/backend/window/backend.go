// Package window はウィンドウシステムの入力状態をフレームごとに比較してイベントを作るバックエンドを提供する。
// ウィンドウは1つのシートとして扱われる。
package window

import (
	"sort"

	"github.com/char5742/inputcore/internal/input"
	"github.com/char5742/inputcore/internal/logging"
)

const (
	pointerDevice = "window"
	touchDevice   = "window-touch"
)

// Config はウィンドウバックエンドの設定
type Config struct {
	// Width, Height は現在のウィンドウの大きさ。スナップショットから更新され、変化すると通知される。
	Width  float64 `toml:"-" json:"width"`
	Height float64 `toml:"-" json:"height"`
	// WheelStep はホイール1単位あたりのスクロール量
	WheelStep     float64 `toml:"wheel_step" json:"wheel_step"`
	NaturalScroll bool    `toml:"natural_scroll" json:"natural_scroll"`
}

// DefaultConfig は既定の設定を返す
func DefaultConfig() Config {
	return Config{WheelStep: 15}
}

// Options はバックエンドの作成時にのみ指定できる設定
type Options struct {
	Logger logging.Logger
	SeatID uint64
}

// Handler はウィンドウバックエンドのハンドラ
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

// Adapt は AnyHandler をウィンドウバックエンドのハンドラに変換する
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

// Backend はウィンドウの入力状態の差分を配送するバックエンド
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

	source Source
	config Config
	logger logging.Logger
	seatID uint64

	guard     input.DispatchGuard
	tracker   *input.SeatTracker
	slots     *input.SlotAllocator
	prev      Snapshot
	started   bool
	touchSeen bool
	closed    bool
}

// New はバックエンドを作成する。シートは最初の DispatchNewEvents で作られる。
func New(source Source, config Config, opts Options) *Backend {
	if opts.Logger == nil {
		opts.Logger = logging.NewNopLogger()
	}
	return &Backend{
		source:  source,
		config:  config,
		logger:  opts.Logger,
		seatID:  opts.SeatID,
		tracker: input.NewSeatTracker(),
		slots:   input.NewSlotAllocator(),
	}
}

// InputConfig は設定を返す
func (b *Backend) InputConfig() *Config {
	return &b.config
}

// Seats は現在のシートを返す
func (b *Backend) Seats() []input.Seat {
	return b.tracker.Seats()
}

// DispatchNewEvents は入力状態を取り出し、前回との差分を配送する
func (b *Backend) DispatchNewEvents() error {
	b.guard.Enter()
	defer b.guard.Exit()

	if b.closed {
		return nil
	}
	snap := b.source.Snapshot()

	if !b.started {
		b.started = true
		b.prev = Snapshot{CursorX: snap.CursorX, CursorY: snap.CursorY}
		b.tracker.Attach(b.SeatHandler(), b.seatID, pointerDevice, input.SeatCapabilities{Pointer: true, Keyboard: true})
	}

	if w, ht := float64(snap.Width), float64(snap.Height); w != b.config.Width || ht != b.config.Height {
		b.config.Width, b.config.Height = w, ht
		b.logger.Debugw("ウィンドウの大きさが変わりました", "width", w, "height", ht)
		b.emit(func(h Handler) { h.OnInputConfigChanged(&b.config) })
	}
	if len(snap.Touches) > 0 && !b.touchSeen {
		b.touchSeen = true
		b.tracker.Attach(b.SeatHandler(), b.seatID, touchDevice, input.SeatCapabilities{Touch: true})
	}

	seat, _ := b.tracker.Seat(b.seatID)
	t := snap.Time

	released, pressed := diffKeys(b.prev.Keys, snap.Keys)
	for _, code := range released {
		count, _ := b.tracker.Key(pointerDevice, code, input.KeyReleased)
		ev := KeyboardKeyEvent{time: t, code: code, state: input.KeyReleased, count: count}
		b.emit(func(h Handler) { h.OnKeyboardKey(seat, ev) })
	}
	for _, code := range pressed {
		count, _ := b.tracker.Key(pointerDevice, code, input.KeyPressed)
		ev := KeyboardKeyEvent{time: t, code: code, state: input.KeyPressed, count: count}
		b.emit(func(h Handler) { h.OnKeyboardKey(seat, ev) })
	}

	if snap.CursorX != b.prev.CursorX || snap.CursorY != b.prev.CursorY {
		ev := PointerMotionAbsoluteEvent{windowPoint: b.point(snap.CursorX, snap.CursorY), time: t}
		b.emit(func(h Handler) { h.OnPointerMoveAbsolute(seat, ev) })
	}

	for _, btn := range b.prev.Buttons {
		if !containsButton(snap.Buttons, btn) {
			ev := PointerButtonEvent{time: t, button: btn, state: input.ButtonReleased}
			b.emit(func(h Handler) { h.OnPointerButton(seat, ev) })
		}
	}
	for _, btn := range snap.Buttons {
		if !containsButton(b.prev.Buttons, btn) {
			ev := PointerButtonEvent{time: t, button: btn, state: input.ButtonPressed}
			b.emit(func(h Handler) { h.OnPointerButton(seat, ev) })
		}
	}

	step := b.config.WheelStep
	if b.config.NaturalScroll {
		step = -step
	}
	if snap.WheelY != 0 {
		// 下方向のスクロールを正にする
		ev := PointerAxisEvent{time: t, axis: input.AxisVertical, amount: -snap.WheelY * step}
		b.emit(func(h Handler) { h.OnPointerAxis(seat, ev) })
	}
	if snap.WheelX != 0 {
		ev := PointerAxisEvent{time: t, axis: input.AxisHorizontal, amount: snap.WheelX * step}
		b.emit(func(h Handler) { h.OnPointerAxis(seat, ev) })
	}

	b.touches(seat, snap)
	b.prev = snap
	return nil
}

// emit は現在のハンドラに f を渡す。ハンドラはコールバックの中で差し替えられることがあるので、毎回取り直す。
// ハンドラがない場合は何もせず false を返す。
func (b *Backend) emit(f func(h Handler)) bool {
	h, ok := b.Handler()
	if ok {
		f(h)
	}
	return ok
}

func (b *Backend) point(x, y float64) windowPoint {
	return windowPoint{x: x, y: y, width: b.config.Width, height: b.config.Height}
}

// touches は接触点の増減と移動を配送する。ハンドラがなくてもスロットの状態は更新する。
func (b *Backend) touches(seat input.Seat, snap Snapshot) {
	t := snap.Time
	current := make(map[int]Touch, len(snap.Touches))
	for _, tc := range snap.Touches {
		current[tc.ID] = tc
	}
	prev := make(map[int]Touch, len(b.prev.Touches))
	for _, tc := range b.prev.Touches {
		prev[tc.ID] = tc
	}

	changed := false
	for _, id := range sortedTouchIDs(b.prev.Touches) {
		if _, ok := current[id]; ok {
			continue
		}
		if slot, ok := b.slots.Release(uint64(id)); ok {
			ev := TouchUpEvent{slotted: slotted{slot}, time: t}
			changed = b.emit(func(h Handler) { h.OnTouchUp(seat, ev) }) || changed
		}
	}
	for _, id := range sortedTouchIDs(snap.Touches) {
		tc := current[id]
		old, existed := prev[id]
		if !existed {
			slot, _ := b.slots.Acquire(uint64(id))
			ev := TouchDownEvent{windowPoint: b.point(tc.X, tc.Y), slotted: slotted{slot}, time: t}
			changed = b.emit(func(h Handler) { h.OnTouchDown(seat, ev) }) || changed
			continue
		}
		if old.X != tc.X || old.Y != tc.Y {
			slot, _ := b.slots.Lookup(uint64(id))
			ev := TouchMotionEvent{windowPoint: b.point(tc.X, tc.Y), slotted: slotted{slot}, time: t}
			changed = b.emit(func(h Handler) { h.OnTouchMotion(seat, ev) }) || changed
		}
	}
	if changed {
		b.emit(func(h Handler) { h.OnTouchFrame(seat, TouchFrameEvent{time: t}) })
	}
}

// Close は続いている接触を取り消し、シートを破棄する
func (b *Backend) Close() error {
	if b.closed || !b.started {
		b.closed = true
		return nil
	}
	b.closed = true
	seat, _ := b.tracker.Seat(b.seatID)

	live := b.slots.Live()
	slots := make([]input.TouchSlot, 0, len(live))
	for _, s := range live {
		slots = append(slots, s)
	}
	sort.Slice(slots, func(i, j int) bool { return slots[i].ID() < slots[j].ID() })
	cancelled := false
	for _, s := range slots {
		ev := TouchCancelEvent{slotted: slotted{s}, time: b.prev.Time}
		cancelled = b.emit(func(h Handler) { h.OnTouchCancel(seat, ev) }) || cancelled
	}
	if cancelled {
		b.emit(func(h Handler) { h.OnTouchFrame(seat, TouchFrameEvent{time: b.prev.Time}) })
	}

	if b.touchSeen {
		b.tracker.Detach(b.SeatHandler(), touchDevice)
	}
	b.tracker.Detach(b.SeatHandler(), pointerDevice)
	return nil
}

func diffKeys(prev, cur []uint32) (released, pressed []uint32) {
	in := func(list []uint32, v uint32) bool {
		for _, x := range list {
			if x == v {
				return true
			}
		}
		return false
	}
	for _, k := range prev {
		if !in(cur, k) {
			released = append(released, k)
		}
	}
	for _, k := range cur {
		if !in(prev, k) {
			pressed = append(pressed, k)
		}
	}
	sort.Slice(released, func(i, j int) bool { return released[i] < released[j] })
	sort.Slice(pressed, func(i, j int) bool { return pressed[i] < pressed[j] })
	return released, pressed
}

func containsButton(list []input.MouseButton, b input.MouseButton) bool {
	for _, x := range list {
		if x == b {
			return true
		}
	}
	return false
}

func sortedTouchIDs(touches []Touch) []int {
	ids := make([]int, len(touches))
	for i, tc := range touches {
		ids[i] = tc.ID
	}
	sort.Ints(ids)
	return ids
}
