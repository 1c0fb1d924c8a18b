package input

import "sort"

// SeatTracker はバックエンドが保持するシートの正式な状態を管理する。
// デバイスの接続・切断に応じてシートを作成・更新・破棄し、SeatHandler に通知する。
// また、シート上のすべてのデバイスで押されているキーの数を数える。
type SeatTracker struct {
	nextID  uint64
	names   map[string]uint64       // シート名 -> ID
	seats   map[uint64]*trackedSeat // ID -> 状態
	devices map[string]uint64       // デバイス -> シートID
}

type trackedSeat struct {
	seat    Seat
	devices map[string]SeatCapabilities
	pressed map[string]map[uint32]struct{}
}

// NewSeatTracker は空のトラッカーを返す
func NewSeatTracker() *SeatTracker {
	return &SeatTracker{
		names:   make(map[string]uint64),
		seats:   make(map[uint64]*trackedSeat),
		devices: make(map[string]uint64),
	}
}

// IDFor はシート名に対応する ID を返す。初めての名前には新しい ID を割り当てる。
func (t *SeatTracker) IDFor(name string) uint64 {
	if id, ok := t.names[name]; ok {
		return id
	}
	id := t.nextID
	t.nextID++
	t.names[name] = id
	return id
}

// Attach はデバイスをシートに接続する。
// シートの最初のデバイスなら OnSeatCreated、そうでなければ OnSeatChanged を通知する。
// h が nil の場合は状態だけを更新する。
func (t *SeatTracker) Attach(h SeatHandler, seatID uint64, device string, caps SeatCapabilities) Seat {
	if current, ok := t.devices[device]; ok && current != seatID {
		t.Detach(h, device)
	}

	ts, ok := t.seats[seatID]
	if !ok {
		ts = &trackedSeat{
			seat:    NewSeat(seatID, caps),
			devices: map[string]SeatCapabilities{device: caps},
			pressed: make(map[string]map[uint32]struct{}),
		}
		t.seats[seatID] = ts
		t.devices[device] = seatID
		if h != nil {
			h.OnSeatCreated(ts.seat)
		}
		return ts.seat
	}

	ts.devices[device] = caps
	t.devices[device] = seatID
	ts.recompute()
	if h != nil {
		h.OnSeatChanged(ts.seat)
	}
	return ts.seat
}

// Detach はデバイスをシートから外す。
// 最後のデバイスならシートを破棄して OnSeatDestroyed、そうでなければ OnSeatChanged を通知する。
func (t *SeatTracker) Detach(h SeatHandler, device string) (Seat, bool) {
	seatID, ok := t.devices[device]
	if !ok {
		return Seat{}, false
	}
	delete(t.devices, device)

	ts := t.seats[seatID]
	delete(ts.devices, device)
	delete(ts.pressed, device)

	if len(ts.devices) == 0 {
		delete(t.seats, seatID)
		if h != nil {
			h.OnSeatDestroyed(ts.seat)
		}
		return ts.seat, true
	}

	ts.recompute()
	if h != nil {
		h.OnSeatChanged(ts.seat)
	}
	return ts.seat, true
}

// Seat は ID に対応する現在のシートを返す
func (t *SeatTracker) Seat(id uint64) (Seat, bool) {
	ts, ok := t.seats[id]
	if !ok {
		return Seat{}, false
	}
	return ts.seat, true
}

// DeviceSeat はデバイスが属するシートを返す
func (t *SeatTracker) DeviceSeat(device string) (Seat, bool) {
	id, ok := t.devices[device]
	if !ok {
		return Seat{}, false
	}
	return t.Seat(id)
}

// Seats は現在のシートを ID 順に返す
func (t *SeatTracker) Seats() []Seat {
	out := make([]Seat, 0, len(t.seats))
	for _, ts := range t.seats {
		out = append(out, ts.seat)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

// Devices はシートに接続されているデバイスを名前順に返す
func (t *SeatTracker) Devices(seatID uint64) []string {
	ts, ok := t.seats[seatID]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(ts.devices))
	for d := range ts.devices {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

// Key はキーの状態変化を記録し、シート全体で押されているキーの数を返す。
// 押されているキーの再押下や、押されていないキーの解放では changed は false になる。
func (t *SeatTracker) Key(device string, code uint32, state KeyState) (count uint32, changed bool) {
	seatID, ok := t.devices[device]
	if !ok {
		return 0, false
	}
	ts := t.seats[seatID]
	keys := ts.pressed[device]
	if keys == nil {
		keys = make(map[uint32]struct{})
		ts.pressed[device] = keys
	}

	_, held := keys[code]
	switch state {
	case KeyPressed:
		if !held {
			keys[code] = struct{}{}
			changed = true
		}
	case KeyReleased:
		if held {
			delete(keys, code)
			changed = true
		}
	}
	return ts.count(), changed
}

// SetPressed はデバイスで押されているキーをまとめて設定する（接続時の初期状態など）
func (t *SeatTracker) SetPressed(device string, codes []uint32) {
	seatID, ok := t.devices[device]
	if !ok {
		return
	}
	keys := make(map[uint32]struct{}, len(codes))
	for _, c := range codes {
		keys[c] = struct{}{}
	}
	t.seats[seatID].pressed[device] = keys
}

// PressedCount はシートで押されているキーの数を返す
func (t *SeatTracker) PressedCount(seatID uint64) uint32 {
	ts, ok := t.seats[seatID]
	if !ok {
		return 0
	}
	return ts.count()
}

func (ts *trackedSeat) recompute() {
	var caps SeatCapabilities
	for _, c := range ts.devices {
		caps = caps.Union(c)
	}
	*ts.seat.CapabilitiesMut() = caps
}

func (ts *trackedSeat) count() uint32 {
	var n uint32
	for _, keys := range ts.pressed {
		n += uint32(len(keys))
	}
	return n
}
