//go:build linux

package uinput

import (
	"github.com/char5742/inputcore/internal/evcode"
)

// Keyboard は仮想キーボード
type Keyboard struct {
	*device
}

// NewKeyboard は KEY_ESC から KEY_RIGHTMETA までのキーを持つ仮想キーボードを作る
func NewKeyboard(path, name string) (*Keyboard, error) {
	steps := evBits(evcode.Key)
	for code := evcode.KeyEsc; code <= evcode.KeyRightMeta; code++ {
		steps = append(steps, setupStep{cmd: SetKeyBit, arg: uintptr(code), what: "キー"})
	}
	dev, err := createDevice(path, UserDev{
		Name: toUinputName(name),
		ID:   InputID{Bustype: BusVirtual, Vendor: 0x4711, Product: 0x0816, Version: 1},
	}, steps)
	if err != nil {
		return nil, err
	}
	return &Keyboard{device: dev}, nil
}

// Key はキーの押下 (pressed=true) または解放を送る
func (k *Keyboard) Key(code uint16, pressed bool) error {
	return k.write(keyEvents(code, pressed)...)
}

// Tap はキーを押してすぐ離す
func (k *Keyboard) Tap(code uint16) error {
	events := append(keyEvents(code, true), keyEvents(code, false)...)
	return k.write(events...)
}
