package input

import "strconv"

// TouchSlot はひとつの接触点（指など）を識別する。
// 同じ接触に属する down から up/cancel までのイベントは同じ TouchSlot を持つ。
type TouchSlot struct {
	id uint64
}

// NewTouchSlot は TouchSlot を作成する。バックエンド実装向け。
func NewTouchSlot(id uint64) TouchSlot {
	return TouchSlot{id: id}
}

// ID はスロットの識別子を返す
func (s TouchSlot) ID() uint64 {
	return s.id
}

func (s TouchSlot) String() string {
	return "slot#" + strconv.FormatUint(s.id, 10)
}

// SlotAllocator はデバイスごとの接触点にスロットを割り当てる。
// 接触が続いている間は同じスロットを再利用しない。
type SlotAllocator struct {
	live map[uint64]TouchSlot // 接触ID -> スロット
	used map[uint64]bool      // 使用中のスロットID
}

// NewSlotAllocator は空のアロケータを返す
func NewSlotAllocator() *SlotAllocator {
	return &SlotAllocator{
		live: make(map[uint64]TouchSlot),
		used: make(map[uint64]bool),
	}
}

// Acquire は新しい接触に最小の空きスロットを割り当てる。
// すでに割り当て済みの接触なら同じスロットを返し、fresh は false になる。
func (a *SlotAllocator) Acquire(contact uint64) (slot TouchSlot, fresh bool) {
	if s, ok := a.live[contact]; ok {
		return s, false
	}
	var id uint64
	for a.used[id] {
		id++
	}
	s := NewTouchSlot(id)
	a.used[id] = true
	a.live[contact] = s
	return s, true
}

// Lookup は接触中のスロットを返す
func (a *SlotAllocator) Lookup(contact uint64) (TouchSlot, bool) {
	s, ok := a.live[contact]
	return s, ok
}

// Release は up/cancel の後にスロットを解放する
func (a *SlotAllocator) Release(contact uint64) (TouchSlot, bool) {
	s, ok := a.live[contact]
	if !ok {
		return TouchSlot{}, false
	}
	delete(a.live, contact)
	delete(a.used, s.id)
	return s, true
}

// Live は接触中の接触IDとスロットの一覧を返す
func (a *SlotAllocator) Live() map[uint64]TouchSlot {
	out := make(map[uint64]TouchSlot, len(a.live))
	for c, s := range a.live {
		out[c] = s
	}
	return out
}

// Len は接触中の数を返す
func (a *SlotAllocator) Len() int {
	return len(a.live)
}
