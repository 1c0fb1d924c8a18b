// Package uinput は Linux の uinput で仮想入力デバイス（キーボード、タッチパッド）を作る
package uinput

import (
	"bytes"
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/char5742/inputcore/internal/evcode"
)

// UIInput デバイスの定数（uinput.hから）
const (
	MaxNameSize = 80         // デバイス名の最大サイズ
	DevCreate   = 0x5501     // デバイス作成用のIOCTL
	DevDestroy  = 0x5502     // デバイス破棄用のIOCTL
	SetEvBit    = 0x40045564 // イベントビット設定用のIOCTL
	SetKeyBit   = 0x40045565 // キービット設定用のIOCTL
	SetRelBit   = 0x40045566 // 相対座標ビット設定用のIOCTL
	SetAbsBit   = 0x40045567 // 絶対座標ビット設定用のIOCTL
	SetPropBit  = 0x4004556a // プロパティビット設定用のIOCTL
	BusUsb      = 0x03       // USBバスタイプ
	BusVirtual  = 0x06
)

const (
	AbsSize       = 64   // 絶対座標の配列サイズ
	PropPointer   = 0x00 // ポインターデバイスプロパティ
	PropDirect    = 0x01 // タッチスクリーンのように画面に直接触れるデバイス
	PropButtonpad = 0x02 // ボタンパッドプロパティ
)

// InputID はデバイス識別子を表す構造体
type InputID struct {
	Bustype uint16 // バスタイプ
	Vendor  uint16 // ベンダーID
	Product uint16 // 製品ID
	Version uint16 // バージョン
}

// UserDev はuinputユーザーデバイスの設定を表す構造体
type UserDev struct {
	Name       [MaxNameSize]byte // デバイス名
	ID         InputID           // デバイス識別子
	EffectsMax uint32            // 最大エフェクト数
	Absmax     [AbsSize]int32    // 絶対座標の最大値
	Absmin     [AbsSize]int32    // 絶対座標の最小値
	Absfuzz    [AbsSize]int32    // 絶対座標のファジー値
	Absflat    [AbsSize]int32    // 絶対座標のフラット値
}

// toUinputName は名前をuinput用の固定長配列に変換する。長すぎる名前は切り詰められ、末尾は必ず NUL になる。
func toUinputName(name string) (fixed [MaxNameSize]byte) {
	copy(fixed[:MaxNameSize-1], name)
	return fixed
}

// encodeEvents は input_event の列をカーネルに書き込む形式にする
func encodeEvents(events []evcode.Event) ([]byte, error) {
	buf := new(bytes.Buffer)
	for _, ev := range events {
		if err := binary.Write(buf, binary.LittleEndian, ev); err != nil {
			return nil, errors.Wrap(err, "イベントをバッファに書き込むのに失敗しました")
		}
	}
	return buf.Bytes(), nil
}

// syn は SYN_REPORT イベントを返す
func syn() evcode.Event {
	return evcode.Event{Type: evcode.Syn, Code: evcode.SynReport}
}
