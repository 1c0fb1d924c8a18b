package uinput

import "github.com/char5742/inputcore/internal/evcode"

func keyEvents(code uint16, pressed bool) []evcode.Event {
	var value int32
	if pressed {
		value = 1
	}
	return []evcode.Event{
		{Type: evcode.Key, Code: code, Value: value},
		syn(),
	}
}
