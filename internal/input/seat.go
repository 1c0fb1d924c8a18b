package input

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"strconv"
)

// SeatCapabilities はシートが持つデバイスの種類を表す
type SeatCapabilities struct {
	Pointer  bool `json:"pointer" toml:"pointer"`   // ポインターを持つ
	Keyboard bool `json:"keyboard" toml:"keyboard"` // キーボードを持つ
	Touch    bool `json:"touch" toml:"touch"`       // タッチスクリーンを持つ
}

// Union は両方の能力を合わせた集合を返す
func (c SeatCapabilities) Union(other SeatCapabilities) SeatCapabilities {
	return SeatCapabilities{
		Pointer:  c.Pointer || other.Pointer,
		Keyboard: c.Keyboard || other.Keyboard,
		Touch:    c.Touch || other.Touch,
	}
}

// IsEmpty はどの能力も持たない場合に true を返す
func (c SeatCapabilities) IsEmpty() bool {
	return !c.Pointer && !c.Keyboard && !c.Touch
}

func (c SeatCapabilities) String() string {
	return fmt.Sprintf("pointer=%t keyboard=%t touch=%t", c.Pointer, c.Keyboard, c.Touch)
}

// Seat はひとまとまりの入力デバイス群を表す。
//
// Seat の値はある時点のスナップショットで、同一性は ID のみで決まる。
// 能力は時間とともに変化するので、最新の状態はコールバックに渡された Seat を参照すること。
// Go の == は能力まで比較するため、同一性の判定には Equal、マップのキーには ID か Hash を使う。
type Seat struct {
	id           uint64
	capabilities SeatCapabilities
}

// NewSeat は新しい Seat を作成する。バックエンド実装向け。
func NewSeat(id uint64, capabilities SeatCapabilities) Seat {
	return Seat{id: id, capabilities: capabilities}
}

// ID はバックエンドが割り当てた不透明な識別子を返す
func (s Seat) ID() uint64 {
	return s.id
}

// Capabilities は現在の能力を返す
func (s Seat) Capabilities() SeatCapabilities {
	return s.capabilities
}

// CapabilitiesMut は能力をその場で書き換えるためのポインタを返す。バックエンド実装向け。
func (s *Seat) CapabilitiesMut() *SeatCapabilities {
	return &s.capabilities
}

// Equal は ID が一致する場合に true を返す。能力の違いは無視される。
func (s Seat) Equal(other Seat) bool {
	return s.id == other.id
}

// Hash は ID のみから計算したハッシュ値を返す
func (s Seat) Hash() uint64 {
	h := fnv.New64a()
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], s.id)
	_, _ = h.Write(b[:])
	return h.Sum64()
}

func (s Seat) String() string {
	return "seat#" + strconv.FormatUint(s.id, 10) + " (" + s.capabilities.String() + ")"
}
