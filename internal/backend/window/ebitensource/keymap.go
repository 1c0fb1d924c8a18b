package ebitensource

import (
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/char5742/inputcore/internal/evcode"
)

var keymap = map[ebiten.Key]uint32{
	ebiten.KeyEscape:       evcode.KeyEsc,
	ebiten.KeyDigit1:       evcode.Key1,
	ebiten.KeyDigit2:       evcode.Key2,
	ebiten.KeyDigit3:       evcode.Key3,
	ebiten.KeyDigit4:       evcode.Key4,
	ebiten.KeyDigit5:       evcode.Key5,
	ebiten.KeyDigit6:       evcode.Key6,
	ebiten.KeyDigit7:       evcode.Key7,
	ebiten.KeyDigit8:       evcode.Key8,
	ebiten.KeyDigit9:       evcode.Key9,
	ebiten.KeyDigit0:       evcode.Key0,
	ebiten.KeyMinus:        evcode.KeyMinus,
	ebiten.KeyEqual:        evcode.KeyEqual,
	ebiten.KeyBackspace:    evcode.KeyBackspace,
	ebiten.KeyTab:          evcode.KeyTab,
	ebiten.KeyQ:            evcode.KeyQ,
	ebiten.KeyW:            evcode.KeyW,
	ebiten.KeyE:            evcode.KeyE,
	ebiten.KeyR:            evcode.KeyR,
	ebiten.KeyT:            evcode.KeyT,
	ebiten.KeyY:            evcode.KeyY,
	ebiten.KeyU:            evcode.KeyU,
	ebiten.KeyI:            evcode.KeyI,
	ebiten.KeyO:            evcode.KeyO,
	ebiten.KeyP:            evcode.KeyP,
	ebiten.KeyBracketLeft:  evcode.KeyLeftBrace,
	ebiten.KeyBracketRight: evcode.KeyRightBrace,
	ebiten.KeyEnter:        evcode.KeyEnter,
	ebiten.KeyControlLeft:  evcode.KeyLeftCtrl,
	ebiten.KeyA:            evcode.KeyA,
	ebiten.KeyS:            evcode.KeyS,
	ebiten.KeyD:            evcode.KeyD,
	ebiten.KeyF:            evcode.KeyF,
	ebiten.KeyG:            evcode.KeyG,
	ebiten.KeyH:            evcode.KeyH,
	ebiten.KeyJ:            evcode.KeyJ,
	ebiten.KeyK:            evcode.KeyK,
	ebiten.KeyL:            evcode.KeyL,
	ebiten.KeySemicolon:    evcode.KeySemicolon,
	ebiten.KeyQuote:        evcode.KeyApostrophe,
	ebiten.KeyBackquote:    evcode.KeyGrave,
	ebiten.KeyShiftLeft:    evcode.KeyLeftShift,
	ebiten.KeyBackslash:    evcode.KeyBackslash,
	ebiten.KeyZ:            evcode.KeyZ,
	ebiten.KeyX:            evcode.KeyX,
	ebiten.KeyC:            evcode.KeyC,
	ebiten.KeyV:            evcode.KeyV,
	ebiten.KeyB:            evcode.KeyB,
	ebiten.KeyN:            evcode.KeyN,
	ebiten.KeyM:            evcode.KeyM,
	ebiten.KeyComma:        evcode.KeyComma,
	ebiten.KeyPeriod:       evcode.KeyDot,
	ebiten.KeySlash:        evcode.KeySlash,
	ebiten.KeyShiftRight:   evcode.KeyRightShift,
	ebiten.KeyAltLeft:      evcode.KeyLeftAlt,
	ebiten.KeySpace:        evcode.KeySpace,
	ebiten.KeyCapsLock:     evcode.KeyCapsLock,
	ebiten.KeyF1:           evcode.KeyF1,
	ebiten.KeyF2:           evcode.KeyF2,
	ebiten.KeyF3:           evcode.KeyF3,
	ebiten.KeyF4:           evcode.KeyF4,
	ebiten.KeyF5:           evcode.KeyF5,
	ebiten.KeyF6:           evcode.KeyF6,
	ebiten.KeyF7:           evcode.KeyF7,
	ebiten.KeyF8:           evcode.KeyF8,
	ebiten.KeyF9:           evcode.KeyF9,
	ebiten.KeyF10:          evcode.KeyF10,
	ebiten.KeyF11:          evcode.KeyF11,
	ebiten.KeyF12:          evcode.KeyF12,
	ebiten.KeyControlRight: evcode.KeyRightCtrl,
	ebiten.KeyAltRight:     evcode.KeyRightAlt,
	ebiten.KeyHome:         evcode.KeyHome,
	ebiten.KeyArrowUp:      evcode.KeyUp,
	ebiten.KeyPageUp:       evcode.KeyPageUp,
	ebiten.KeyArrowLeft:    evcode.KeyLeft,
	ebiten.KeyArrowRight:   evcode.KeyRight,
	ebiten.KeyEnd:          evcode.KeyEnd,
	ebiten.KeyArrowDown:    evcode.KeyDown,
	ebiten.KeyPageDown:     evcode.KeyPageDown,
	ebiten.KeyInsert:       evcode.KeyInsert,
	ebiten.KeyDelete:       evcode.KeyDelete,
	ebiten.KeyMetaLeft:     evcode.KeyLeftMeta,
	ebiten.KeyMetaRight:    evcode.KeyRightMeta,
}

// LinuxKeyCode は Ebitengine のキーを linux のキーコードに変換する。対応のないキーは false。
func LinuxKeyCode(k ebiten.Key) (uint32, bool) {
	code, ok := keymap[k]
	return code, ok
}
