package window

import "github.com/char5742/inputcore/internal/input"

// Touch はウィンドウ上の1つの接触点
type Touch struct {
	ID   int
	X, Y float64
}

// Snapshot はある時点のウィンドウの入力状態。バックエンドは前回との差分をイベントにする。
type Snapshot struct {
	Time          uint32
	Width, Height int

	CursorX, CursorY float64
	Buttons          []input.MouseButton
	// Keys は押されているキーの linux キーコード
	Keys []uint32
	// WheelX, WheelY は前回からのホイールの移動量。上と右が正。
	WheelX, WheelY float64
	Touches        []Touch
}

// Source はウィンドウシステムから入力状態を取り出す
type Source interface {
	Snapshot() Snapshot
}

// SourceFunc は関数を Source として使う
type SourceFunc func() Snapshot

func (f SourceFunc) Snapshot() Snapshot { return f() }
