//go:build linux

package evdev

import (
	"sort"

	evdev "github.com/gvalkov/golang-evdev"

	"github.com/char5742/inputcore/internal/input"
)

// ホイール1段あたりのスクロール量
const wheelStep = 15.0

// deviceInfo はデバイスの能力から決まる静的な情報
type deviceInfo struct {
	keyboard        bool
	pointer         bool
	touch           bool
	multiTouch      bool
	absolutePointer bool

	x, y     axisRange // ABS_X, ABS_Y
	mtX, mtY axisRange // ABS_MT_POSITION_X, ABS_MT_POSITION_Y
}

func (i deviceInfo) capabilities() input.SeatCapabilities {
	return input.SeatCapabilities{Pointer: i.pointer, Keyboard: i.keyboard, Touch: i.touch}
}

// classify はイベント種別ごとのコード一覧からデバイスの種類を判定する
func classify(codes map[int][]int) deviceInfo {
	has := func(typ, code int) bool {
		for _, c := range codes[typ] {
			if c == code {
				return true
			}
		}
		return false
	}

	var info deviceInfo
	for _, c := range codes[evdev.EV_KEY] {
		if isKeyboardKey(c) {
			info.keyboard = true
			break
		}
	}
	info.multiTouch = has(evdev.EV_ABS, evdev.ABS_MT_SLOT) && has(evdev.EV_ABS, evdev.ABS_MT_POSITION_X)
	info.touch = info.multiTouch || (has(evdev.EV_KEY, evdev.BTN_TOUCH) && has(evdev.EV_ABS, evdev.ABS_X))
	info.absolutePointer = !info.touch && has(evdev.EV_ABS, evdev.ABS_X) && has(evdev.EV_ABS, evdev.ABS_Y)
	info.pointer = (has(evdev.EV_REL, evdev.REL_X) && has(evdev.EV_REL, evdev.REL_Y)) ||
		has(evdev.EV_KEY, evdev.BTN_LEFT) || info.absolutePointer
	return info
}

func isKeyboardKey(code int) bool {
	return (code > 0 && code < evdev.BTN_MISC) || code >= evdev.KEY_OK
}

func isButton(code int) bool {
	return code >= evdev.BTN_LEFT && code <= evdev.BTN_TASK
}

// eventTime は evdev のタイムスタンプを epoch (Unix ミリ秒) からのミリ秒に変換する
func eventTime(ev *evdev.InputEvent, epoch int64) uint32 {
	return uint32(int64(ev.Time.Sec)*1000 + int64(ev.Time.Usec)/1000 - epoch)
}

type mtSlot struct {
	active       bool // SlotAllocator に登録済み
	x, y         float64
	began, ended bool
	moved        bool
}

type singleTouch struct {
	touching bool // BTN_TOUCH の現在値
	active   bool // down を送信済み
	x, y     float64
	moved    bool
}

// decoder はひとつのデバイスの evdev イベント列を入力イベントに変換する。
// イベントは SYN_REPORT ごとにまとめて出力される（キーとボタンは届いた時点で出力する）。
type decoder struct {
	info     deviceInfo
	settings DeviceSettings
	epoch    int64
	filter   *MotionFilter
	slots    *input.SlotAllocator

	dropped bool
	resync  bool

	dx, dy        int32
	wheel, hwheel int32
	absX, absY    float64
	absMoved      bool

	current int
	mt      map[int]*mtSlot
	st      singleTouch

	out []input.Event
}

func newDecoder(info deviceInfo, settings DeviceSettings) *decoder {
	return &decoder{
		info:     info,
		settings: settings,
		filter:   NewMotionFilter(settings.Smoothing, settings.WarmUp),
		slots:    input.NewSlotAllocator(),
		mt:       make(map[int]*mtSlot),
	}
}

// setSettings は次のイベントから適用する設定を変更する
func (d *decoder) setSettings(s DeviceSettings) {
	d.settings = s
	d.filter.SetParams(s.Smoothing, s.WarmUp)
}

// take は出力されたイベントを取り出す
func (d *decoder) take() []input.Event {
	out := d.out
	d.out = nil
	return out
}

// takeResync は SYN_DROPPED からの復帰でキー状態の再取得が必要かを返す
func (d *decoder) takeResync() bool {
	r := d.resync
	d.resync = false
	return r
}

func (d *decoder) slot(n int) *mtSlot {
	s := d.mt[n]
	if s == nil {
		s = &mtSlot{}
		d.mt[n] = s
	}
	return s
}

// feed はひとつの evdev イベントを処理する
func (d *decoder) feed(ev evdev.InputEvent) {
	if ev.Type == evdev.EV_SYN {
		switch ev.Code {
		case evdev.SYN_REPORT:
			if d.dropped {
				d.dropped = false
				d.resync = true
				d.resetFrame()
				return
			}
			d.flush(eventTime(&ev, d.epoch))
		case evdev.SYN_DROPPED:
			d.drop(eventTime(&ev, d.epoch))
		}
		return
	}
	if d.dropped {
		return
	}

	switch ev.Type {
	case evdev.EV_KEY:
		d.key(ev)
	case evdev.EV_REL:
		switch ev.Code {
		case evdev.REL_X:
			d.dx += ev.Value
		case evdev.REL_Y:
			d.dy += ev.Value
		case evdev.REL_WHEEL:
			d.wheel += ev.Value
		case evdev.REL_HWHEEL:
			d.hwheel += ev.Value
		}
	case evdev.EV_ABS:
		d.abs(ev)
	}
}

func (d *decoder) key(ev evdev.InputEvent) {
	code := int(ev.Code)
	// 2 はオートリピート
	if ev.Value == 2 {
		return
	}
	switch {
	case code == evdev.BTN_TOUCH:
		if d.info.touch && !d.info.multiTouch {
			d.st.touching = ev.Value != 0
		}
	case isButton(code):
		state := input.ButtonReleased
		if ev.Value != 0 {
			state = input.ButtonPressed
		}
		d.out = append(d.out, PointerButtonEvent{time: eventTime(&ev, d.epoch), button: d.button(code), state: state})
	case isKeyboardKey(code):
		state := input.KeyReleased
		if ev.Value != 0 {
			state = input.KeyPressed
		}
		d.out = append(d.out, KeyboardKeyEvent{time: eventTime(&ev, d.epoch), code: uint32(code), state: state})
	}
}

func (d *decoder) button(code int) input.MouseButton {
	switch code {
	case evdev.BTN_LEFT:
		if d.settings.LeftHanded {
			return input.ButtonRight()
		}
		return input.ButtonLeft()
	case evdev.BTN_RIGHT:
		if d.settings.LeftHanded {
			return input.ButtonLeft()
		}
		return input.ButtonRight()
	case evdev.BTN_MIDDLE:
		return input.ButtonMiddle()
	}
	return input.ButtonOther(uint8(code - evdev.BTN_LEFT))
}

func (d *decoder) abs(ev evdev.InputEvent) {
	v := float64(ev.Value)
	if d.info.multiTouch {
		switch ev.Code {
		case evdev.ABS_MT_SLOT:
			d.current = int(ev.Value)
		case evdev.ABS_MT_TRACKING_ID:
			s := d.slot(d.current)
			if ev.Value < 0 {
				s.began = false
				if s.active {
					s.ended = true
				}
				return
			}
			// 解放を挟まずに ID が変わった場合は前の接触を終わらせる
			if s.active {
				s.ended = true
			}
			s.began = true
		case evdev.ABS_MT_POSITION_X:
			s := d.slot(d.current)
			s.x = v
			s.moved = true
		case evdev.ABS_MT_POSITION_Y:
			s := d.slot(d.current)
			s.y = v
			s.moved = true
		}
		return
	}

	switch ev.Code {
	case evdev.ABS_X:
		if d.info.touch {
			d.st.x = v
			d.st.moved = true
		} else {
			d.absX = v
			d.absMoved = true
		}
	case evdev.ABS_Y:
		if d.info.touch {
			d.st.y = v
			d.st.moved = true
		} else {
			d.absY = v
			d.absMoved = true
		}
	}
}

func (d *decoder) touchSample(x, y float64, mt bool) sample {
	s := sample{x: x, y: y, xr: d.info.x, yr: d.info.y, calib: d.settings.Calibration}
	if mt {
		s.xr, s.yr = d.info.mtX, d.info.mtY
	}
	return s
}

// flush は SYN_REPORT までに溜まった変化をイベントとして出力する
func (d *decoder) flush(time uint32) {
	if d.dx != 0 || d.dy != 0 {
		dx, dy := d.filter.Filter(d.dx, d.dy)
		d.out = append(d.out, PointerMotionEvent{time: time, dx: uint32(dx), dy: uint32(dy)})
	}

	factor := d.settings.scrollFactor() * wheelStep
	if d.settings.NaturalScroll {
		factor = -factor
	}
	if d.wheel != 0 {
		// REL_WHEEL は上方向が正
		d.out = append(d.out, PointerAxisEvent{
			time:   time,
			axis:   input.AxisVertical,
			source: input.AxisSourceWheel,
			amount: -float64(d.wheel) * factor,
		})
	}
	if d.hwheel != 0 {
		source := input.AxisSourceWheel
		if d.settings.TiltWheel {
			source = input.AxisSourceWheelTilt
		}
		d.out = append(d.out, PointerAxisEvent{
			time:   time,
			axis:   input.AxisHorizontal,
			source: source,
			amount: float64(d.hwheel) * factor,
		})
	}

	if d.absMoved && d.info.absolutePointer {
		d.out = append(d.out, PointerMotionAbsoluteEvent{
			sample: sample{x: d.absX, y: d.absY, xr: d.info.x, yr: d.info.y, calib: d.settings.Calibration},
			time:   time,
		})
	}

	touched := false
	if d.info.multiTouch {
		touched = d.flushMultiTouch(time)
	} else if d.info.touch {
		touched = d.flushSingleTouch(time)
	}
	if touched {
		d.out = append(d.out, TouchFrameEvent{time: time})
	}

	d.resetFrame()
}

func (d *decoder) sortedSlots() []int {
	keys := make([]int, 0, len(d.mt))
	for k := range d.mt {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

func (d *decoder) flushMultiTouch(time uint32) bool {
	touched := false
	for _, n := range d.sortedSlots() {
		s := d.mt[n]
		if s.ended && s.active {
			slot, _ := d.slots.Release(uint64(n))
			s.active = false
			d.out = append(d.out, TouchUpEvent{slotted: slotted{slot: slot, hasSlot: true}, time: time})
			touched = true
		}
		if s.began {
			slot, _ := d.slots.Acquire(uint64(n))
			s.active = true
			d.out = append(d.out, TouchDownEvent{
				sample:  d.touchSample(s.x, s.y, true),
				slotted: slotted{slot: slot, hasSlot: true},
				time:    time,
			})
			touched = true
		} else if s.moved && s.active {
			slot, _ := d.slots.Lookup(uint64(n))
			d.out = append(d.out, TouchMotionEvent{
				sample:  d.touchSample(s.x, s.y, true),
				slotted: slotted{slot: slot, hasSlot: true},
				time:    time,
			})
			touched = true
		}
		s.began, s.ended, s.moved = false, false, false
	}
	return touched
}

func (d *decoder) flushSingleTouch(time uint32) bool {
	st := &d.st
	defer func() { st.moved = false }()

	switch {
	case st.touching && !st.active:
		st.active = true
		d.out = append(d.out, TouchDownEvent{sample: d.touchSample(st.x, st.y, false), time: time})
		return true
	case !st.touching && st.active:
		st.active = false
		d.out = append(d.out, TouchUpEvent{time: time})
		return true
	case st.active && st.moved:
		d.out = append(d.out, TouchMotionEvent{sample: d.touchSample(st.x, st.y, false), time: time})
		return true
	}
	return false
}

// drop は SYN_DROPPED を処理する。続いている接触はすべて取り消され、
// 次の SYN_REPORT までのイベントは捨てられる。
func (d *decoder) drop(time uint32) {
	d.dropped = true
	d.cancelAll(time)
	d.resetFrame()
	d.filter.Reset()
}

// cancelAll は続いている接触をすべて取り消す
func (d *decoder) cancelAll(time uint32) {
	cancelled := false
	for _, n := range d.sortedSlots() {
		s := d.mt[n]
		if s.active {
			slot, _ := d.slots.Release(uint64(n))
			d.out = append(d.out, TouchCancelEvent{slotted: slotted{slot: slot, hasSlot: true}, time: time})
			cancelled = true
		}
		*s = mtSlot{x: s.x, y: s.y}
	}
	if d.st.active {
		d.st.active = false
		d.out = append(d.out, TouchCancelEvent{time: time})
		cancelled = true
	}
	d.st.touching = false
	if cancelled {
		d.out = append(d.out, TouchFrameEvent{time: time})
	}
}

func (d *decoder) resetFrame() {
	d.dx, d.dy = 0, 0
	d.wheel, d.hwheel = 0, 0
	d.absMoved = false
	d.st.moved = false
	for _, s := range d.mt {
		s.began, s.ended, s.moved = false, false, false
	}
}
