package api

import (
	"sort"
	"sync"

	"github.com/char5742/inputcore/internal/input"
	"github.com/char5742/inputcore/internal/wire"
)

// SeatStatus は API で返すシートの状態
type SeatStatus struct {
	ID           uint64                 `json:"id"`
	Capabilities input.SeatCapabilities `json:"capabilities"`
	PressedKeys  uint32                 `json:"pressed_keys"`
	Touches      int                    `json:"touches"`
	Events       uint64                 `json:"events"`
	LastEvent    wire.Kind              `json:"last_event,omitempty"`
	LastTime     uint32                 `json:"last_time"`
}

// Monitor はバックエンドから届いたシートの状態を記録し、イベントを購読者に配る。
// イベントはディスパッチ中のゴルーチンから届き、状態の読み出しは HTTP ハンドラから行われる。
type Monitor struct {
	mu     sync.RWMutex
	seats  map[uint64]*seatState
	space  input.Size
	subs   map[int]chan wire.Message
	nextID int
	buffer int
}

type seatState struct {
	status  SeatStatus
	touches map[uint64]struct{}
}

// NewMonitor は Monitor を作成する。
// space は座標を持つイベントを変換する座標空間、buffer は購読者ごとのバッファ長。
func NewMonitor(space input.Size, buffer int) *Monitor {
	if buffer <= 0 {
		buffer = 1
	}
	return &Monitor{
		seats:  make(map[uint64]*seatState),
		space:  space,
		subs:   make(map[int]chan wire.Message),
		buffer: buffer,
	}
}

// Seats は現在のシートの状態を ID 順に返す
func (m *Monitor) Seats() []SeatStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]SeatStatus, 0, len(m.seats))
	for _, s := range m.seats {
		st := s.status
		st.Touches = len(s.touches)
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Subscribe はメッセージを受け取るチャネルを返す。
// 受信が追いつかない場合、あふれたメッセージは捨てられる。cancel でチャネルが閉じられる。
func (m *Monitor) Subscribe() (<-chan wire.Message, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextID
	m.nextID++
	ch := make(chan wire.Message, m.buffer)
	m.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			delete(m.subs, id)
			close(ch)
		})
	}
}

// Subscribers は購読者の数を返す
func (m *Monitor) Subscribers() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.subs)
}

func (m *Monitor) publish(msg wire.Message) {
	for _, ch := range m.subs {
		select {
		case ch <- msg:
		default:
		}
	}
}

func (m *Monitor) seatCreated(seat input.Seat) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seats[seat.ID()] = &seatState{
		status:  SeatStatus{ID: seat.ID(), Capabilities: seat.Capabilities()},
		touches: make(map[uint64]struct{}),
	}
	m.publish(wire.SeatMessage(wire.KindSeatCreated, seat))
}

func (m *Monitor) seatDestroyed(seat input.Seat) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.seats, seat.ID())
	m.publish(wire.SeatMessage(wire.KindSeatDestroyed, seat))
}

func (m *Monitor) seatChanged(seat input.Seat) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.seats[seat.ID()]; ok {
		s.status.Capabilities = seat.Capabilities()
	}
	m.publish(wire.SeatMessage(wire.KindSeatChanged, seat))
}

func (m *Monitor) configChanged() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.publish(wire.ConfigChangedMessage())
}

// event はシートの統計を更新してメッセージを配る
func (m *Monitor) event(seat input.Seat, msg wire.Message, update func(*seatState)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.seats[seat.ID()]; ok {
		s.status.Events++
		s.status.LastEvent = msg.Kind
		s.status.LastTime = msg.Time
		if update != nil {
			update(s)
		}
	}
	m.publish(msg)
}

// touchSlot はシートの接触を区別するキーを返す。スロットのない接触は同時に1つしかない。
func touchSlot(ev input.TouchUpEvent) uint64 {
	if slot, ok := ev.Slot(); ok {
		return slot.ID()
	}
	return ^uint64(0)
}

// Watch は Monitor を任意の設定型のバックエンドに設定できるハンドラにする
func Watch[C any](m *Monitor) input.AnyHandler[C] {
	return &watcher[C]{m: m}
}

type watcher[C any] struct {
	m *Monitor
}

func (w *watcher[C]) OnSeatCreated(seat input.Seat)   { w.m.seatCreated(seat) }
func (w *watcher[C]) OnSeatDestroyed(seat input.Seat) { w.m.seatDestroyed(seat) }
func (w *watcher[C]) OnSeatChanged(seat input.Seat)   { w.m.seatChanged(seat) }
func (w *watcher[C]) OnInputConfigChanged(*C)         { w.m.configChanged() }

func (w *watcher[C]) OnKeyboardKey(seat input.Seat, ev input.KeyboardKeyEvent) {
	w.m.event(seat, wire.KeyMessage(seat, ev), func(s *seatState) {
		s.status.PressedKeys = ev.Count()
	})
}

func (w *watcher[C]) OnPointerMove(seat input.Seat, ev input.PointerMotionEvent) {
	w.m.event(seat, wire.MotionMessage(seat, ev), nil)
}

func (w *watcher[C]) OnPointerMoveAbsolute(seat input.Seat, ev input.PointerMotionAbsoluteEvent) {
	w.m.event(seat, wire.MotionAbsoluteMessage(seat, ev, w.m.space), nil)
}

func (w *watcher[C]) OnPointerButton(seat input.Seat, ev input.PointerButtonEvent) {
	w.m.event(seat, wire.ButtonMessage(seat, ev), nil)
}

func (w *watcher[C]) OnPointerAxis(seat input.Seat, ev input.PointerAxisEvent) {
	w.m.event(seat, wire.AxisMessage(seat, ev), nil)
}

func (w *watcher[C]) OnTouchDown(seat input.Seat, ev input.TouchDownEvent) {
	w.m.event(seat, wire.TouchDownMessage(seat, ev, w.m.space), func(s *seatState) {
		s.touches[touchSlot(ev)] = struct{}{}
	})
}

func (w *watcher[C]) OnTouchMotion(seat input.Seat, ev input.TouchMotionEvent) {
	w.m.event(seat, wire.TouchMotionMessage(seat, ev, w.m.space), nil)
}

func (w *watcher[C]) OnTouchUp(seat input.Seat, ev input.TouchUpEvent) {
	w.m.event(seat, wire.TouchUpMessage(seat, ev), func(s *seatState) {
		delete(s.touches, touchSlot(ev))
	})
}

func (w *watcher[C]) OnTouchCancel(seat input.Seat, ev input.TouchCancelEvent) {
	w.m.event(seat, wire.TouchCancelMessage(seat, ev), func(s *seatState) {
		delete(s.touches, touchSlot(ev))
	})
}

func (w *watcher[C]) OnTouchFrame(seat input.Seat, ev input.TouchFrameEvent) {
	w.m.event(seat, wire.TouchFrameMessage(seat, ev), nil)
}
