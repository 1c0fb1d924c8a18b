//go:build linux

package uinput

import (
	"github.com/pkg/errors"

	"github.com/char5742/inputcore/internal/evcode"
)

// TouchPadOptions は仮想タッチパッドの座標範囲
type TouchPadOptions struct {
	MinX, MaxX int32
	MinY, MaxY int32
	// Direct はタッチスクリーンとして作る (INPUT_PROP_DIRECT)。false ならタッチパッド。
	Direct bool
}

// DefaultTouchPadOptions は既定の座標範囲を返す
func DefaultTouchPadOptions() TouchPadOptions {
	return TouchPadOptions{MaxX: 32767, MaxY: 32767}
}

// TouchPad はマルチタッチ（プロトコル B）の仮想デバイス
type TouchPad struct {
	*device
	live map[int]bool
}

// NewTouchPad は新しい仮想タッチパッドを作る
func NewTouchPad(path, name string, opts TouchPadOptions) (*TouchPad, error) {
	steps := evBits(evcode.Key)
	// キー入力の種類（マウスボタン、タッチ検出など）を登録する
	for _, code := range []uintptr{evcode.BtnLeft, evcode.BtnRight, evcode.BtnTouch, evcode.BtnToolFinger} {
		steps = append(steps, setupStep{cmd: SetKeyBit, arg: code, what: "キー入力種別"})
	}
	steps = append(steps, evBits(evcode.Abs)...)
	if opts.Direct {
		steps = append(steps, setupStep{cmd: SetPropBit, arg: PropDirect, what: "タッチスクリーンプロパティ"})
	} else {
		steps = append(steps,
			setupStep{cmd: SetPropBit, arg: PropPointer, what: "ポインターデバイスプロパティ"},
			setupStep{cmd: SetPropBit, arg: PropButtonpad, what: "ボタンパッドプロパティ"},
		)
	}
	for _, code := range []uintptr{
		evcode.AbsX,
		evcode.AbsY,
		evcode.AbsMtSlot,
		evcode.AbsMtPositionX,
		evcode.AbsMtPositionY,
		evcode.AbsMtTrackingID,
		evcode.AbsMtTouchMajor,
		evcode.AbsMtPressure,
	} {
		steps = append(steps, setupStep{cmd: SetAbsBit, arg: code, what: "座標軸"})
	}

	var absMin, absMax [AbsSize]int32
	absMin[evcode.AbsX], absMax[evcode.AbsX] = opts.MinX, opts.MaxX
	absMin[evcode.AbsY], absMax[evcode.AbsY] = opts.MinY, opts.MaxY
	absMax[evcode.AbsMtSlot] = MaxSlots - 1
	absMin[evcode.AbsMtPositionX], absMax[evcode.AbsMtPositionX] = opts.MinX, opts.MaxX
	absMin[evcode.AbsMtPositionY], absMax[evcode.AbsMtPositionY] = opts.MinY, opts.MaxY
	absMax[evcode.AbsMtTrackingID] = 65535
	absMax[evcode.AbsMtTouchMajor] = 255
	absMax[evcode.AbsMtPressure] = 255

	dev, err := createDevice(path, UserDev{
		Name:   toUinputName(name),
		ID:     InputID{Bustype: BusUsb, Vendor: 0x4711, Product: 0x0817, Version: 1},
		Absmin: absMin,
		Absmax: absMax,
	}, steps)
	if err != nil {
		return nil, err
	}
	return &TouchPad{device: dev, live: make(map[int]bool)}, nil
}

// MultiTouchDown はタッチイベントを開始する
func (tp *TouchPad) MultiTouchDown(slot, trackingID int, x, y int32) error {
	if slot < 0 || slot >= MaxSlots {
		return errors.Errorf("スロット %d は範囲外です", slot)
	}
	if tp.live[slot] {
		return errors.Errorf("スロット %d は接触中です", slot)
	}
	first := len(tp.live) == 0
	if err := tp.write(touchDownEvents(slot, trackingID, x, y, first)...); err != nil {
		return err
	}
	tp.live[slot] = true
	return nil
}

// MultiTouchMove はタッチ位置を更新する
func (tp *TouchPad) MultiTouchMove(slot int, x, y int32) error {
	if !tp.live[slot] {
		return errors.Errorf("スロット %d は接触していません", slot)
	}
	return tp.write(touchMoveEvents(slot, x, y)...)
}

// MultiTouchUp はタッチイベントを終了する
func (tp *TouchPad) MultiTouchUp(slot int) error {
	if !tp.live[slot] {
		return errors.Errorf("スロット %d は接触していません", slot)
	}
	delete(tp.live, slot)
	return tp.write(touchUpEvents(slot, len(tp.live) == 0)...)
}
