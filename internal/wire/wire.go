// Package wire は入力イベントの JSON 表現を定義する。
// リモートバックエンドの受信メッセージと API のイベント配信の両方で使う。
package wire

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/char5742/inputcore/internal/input"
)

// Kind はメッセージの種類
type Kind string

const (
	// デバイスの接続・切断と設定（リモート送信側から届く）
	KindAttach    Kind = "attach"
	KindDetach    Kind = "detach"
	KindConfigure Kind = "configure"

	// 入力イベント
	KindKey            Kind = "key"
	KindMotion         Kind = "motion"
	KindMotionAbsolute Kind = "motion_absolute"
	KindButton         Kind = "button"
	KindAxis           Kind = "axis"
	KindTouchDown      Kind = "touch_down"
	KindTouchMotion    Kind = "touch_motion"
	KindTouchUp        Kind = "touch_up"
	KindTouchCancel    Kind = "touch_cancel"
	KindTouchFrame     Kind = "touch_frame"

	// シートと設定の通知（API の配信のみ）
	KindSeatCreated   Kind = "seat_created"
	KindSeatDestroyed Kind = "seat_destroyed"
	KindSeatChanged   Kind = "seat_changed"
	KindConfigChanged Kind = "config_changed"
)

var knownKinds = map[Kind]bool{
	KindAttach: true, KindDetach: true, KindConfigure: true,
	KindKey: true, KindMotion: true, KindMotionAbsolute: true, KindButton: true, KindAxis: true,
	KindTouchDown: true, KindTouchMotion: true, KindTouchUp: true, KindTouchCancel: true, KindTouchFrame: true,
	KindSeatCreated: true, KindSeatDestroyed: true, KindSeatChanged: true, KindConfigChanged: true,
}

// Known は定義済みの種類かどうかを返す
func (k Kind) Known() bool {
	return knownKinds[k]
}

// Message は1つの入力イベントまたは通知
type Message struct {
	Kind   Kind   `json:"kind"`
	Device string `json:"device,omitempty"`
	Seat   uint64 `json:"seat"`
	Time   uint32 `json:"time,omitempty"`

	// attach
	Capabilities *input.SeatCapabilities `json:"capabilities,omitempty"`
	MultiTouch   bool                    `json:"multi_touch,omitempty"`

	// configure: 送信側の座標空間の大きさ
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`

	Key   uint32 `json:"key,omitempty"`
	State string `json:"state,omitempty"` // "pressed" / "released"
	Count uint32 `json:"count,omitempty"`

	Button      string `json:"button,omitempty"` // "left" / "middle" / "right" / "other"
	ButtonIndex uint8  `json:"button_index,omitempty"`

	Axis   string  `json:"axis,omitempty"`   // "vertical" / "horizontal"
	Source string  `json:"source,omitempty"` // "finger" / "continuous" / "wheel" / "wheel-tilt"
	Amount float64 `json:"amount,omitempty"`

	DX int32 `json:"dx,omitempty"`
	DY int32 `json:"dy,omitempty"`

	X float64 `json:"x,omitempty"`
	Y float64 `json:"y,omitempty"`
	// Slot は受信時には送信側の接触ID、配信時には TouchSlot の ID
	Slot *uint64 `json:"slot,omitempty"`

	// TX, TY は配信時に出力空間へ変換した座標
	TX *uint32 `json:"tx,omitempty"`
	TY *uint32 `json:"ty,omitempty"`
}

// Decode は JSON を Message に変換する。未知の種類はエラーになる。
func Decode(data []byte) (Message, error) {
	var m Message
	if err := json.Unmarshal(data, &m); err != nil {
		return Message{}, errors.Wrap(err, "メッセージを解析できません")
	}
	if m.Kind == "" {
		return Message{}, errors.New("メッセージに kind がありません")
	}
	if !m.Kind.Known() {
		return Message{}, errors.Errorf("未知のメッセージ種別 %q", m.Kind)
	}
	return m, nil
}

// Encode は Message を JSON に変換する
func (m Message) Encode() ([]byte, error) {
	return json.Marshal(m)
}

// HasSlot はスロット（接触ID）が指定されているかを返す
func (m Message) HasSlot() bool {
	return m.Slot != nil
}

// SlotID はスロットを返す。指定されていなければ 0。
func (m Message) SlotID() uint64 {
	if m.Slot == nil {
		return 0
	}
	return *m.Slot
}

// Ptr は値へのポインタを返す（Slot, TX, TY の指定用）
func Ptr[T any](v T) *T {
	return &v
}

// ParseKeyState はキーの状態を解析する
func ParseKeyState(s string) (input.KeyState, error) {
	switch s {
	case "pressed":
		return input.KeyPressed, nil
	case "released":
		return input.KeyReleased, nil
	}
	return 0, errors.Errorf("不正なキーの状態 %q", s)
}

// ParseButtonState はボタンの状態を解析する
func ParseButtonState(s string) (input.MouseButtonState, error) {
	switch s {
	case "pressed":
		return input.ButtonPressed, nil
	case "released":
		return input.ButtonReleased, nil
	}
	return 0, errors.Errorf("不正なボタンの状態 %q", s)
}

// ParseButton はボタン名を解析する。"other" の場合は index を使う。
func ParseButton(name string, index uint8) (input.MouseButton, error) {
	switch name {
	case "left":
		return input.ButtonLeft(), nil
	case "middle":
		return input.ButtonMiddle(), nil
	case "right":
		return input.ButtonRight(), nil
	case "other":
		return input.ButtonOther(index), nil
	}
	// "other(3)" の形式も受け付ける
	if rest, ok := strings.CutPrefix(name, "other("); ok {
		if n, err := strconv.ParseUint(strings.TrimSuffix(rest, ")"), 10, 8); err == nil {
			return input.ButtonOther(uint8(n)), nil
		}
	}
	return input.MouseButton{}, errors.Errorf("不正なボタン %q", name)
}

// ButtonName は ParseButton の逆変換
func ButtonName(b input.MouseButton) (string, uint8) {
	if b.Kind == input.ButtonKindOther {
		return "other", b.Index
	}
	return b.String(), 0
}

// ParseAxis は軸を解析する
func ParseAxis(s string) (input.Axis, error) {
	switch s {
	case "vertical":
		return input.AxisVertical, nil
	case "horizontal":
		return input.AxisHorizontal, nil
	}
	return 0, errors.Errorf("不正な軸 %q", s)
}

// ParseAxisSource はスクロールのソースを解析する
func ParseAxisSource(s string) (input.AxisSource, error) {
	switch s {
	case "finger":
		return input.AxisSourceFinger, nil
	case "continuous":
		return input.AxisSourceContinuous, nil
	case "wheel":
		return input.AxisSourceWheel, nil
	case "wheel-tilt":
		return input.AxisSourceWheelTilt, nil
	}
	return 0, errors.Errorf("不正なスクロールのソース %q", s)
}
