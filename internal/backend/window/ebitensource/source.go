// Package ebitensource は Ebitengine のウィンドウから入力状態を取り出す window.Source を提供する。
package ebitensource

import (
	"sync"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/char5742/inputcore/internal/backend/window"
	"github.com/char5742/inputcore/internal/input"
)

var mouseButtons = []struct {
	eb  ebiten.MouseButton
	btn input.MouseButton
}{
	{ebiten.MouseButtonLeft, input.ButtonLeft()},
	{ebiten.MouseButtonRight, input.ButtonRight()},
	{ebiten.MouseButtonMiddle, input.ButtonMiddle()},
	{ebiten.MouseButton3, input.ButtonOther(3)},
	{ebiten.MouseButton4, input.ButtonOther(4)},
}

// Source は Update ごとに Ebitengine の入力状態を記録する。
// Capture はゲームループから、Snapshot は任意のゴルーチンから呼べる。
type Source struct {
	mu     sync.Mutex
	start  time.Time
	state  window.Snapshot
	keys   []ebiten.Key
	ids    []ebiten.TouchID
	wheelX float64
	wheelY float64
}

var _ window.Source = (*Source)(nil)

// New は Source を作成する
func New() *Source {
	return &Source{start: time.Now()}
}

// Capture は現在の入力状態を記録する。ebiten.Game の Update から呼ぶこと。
func (s *Source) Capture() {
	cx, cy := ebiten.CursorPosition()
	wx, wy := ebiten.Wheel()
	s.keys = inpututil.AppendPressedKeys(s.keys[:0])
	s.ids = ebiten.AppendTouchIDs(s.ids[:0])

	var buttons []input.MouseButton
	for _, b := range mouseButtons {
		if ebiten.IsMouseButtonPressed(b.eb) {
			buttons = append(buttons, b.btn)
		}
	}
	var keys []uint32
	for _, k := range s.keys {
		if code, ok := LinuxKeyCode(k); ok {
			keys = append(keys, code)
		}
	}
	touches := make([]window.Touch, 0, len(s.ids))
	for _, id := range s.ids {
		x, y := ebiten.TouchPosition(id)
		touches = append(touches, window.Touch{ID: int(id), X: float64(x), Y: float64(y)})
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.CursorX, s.state.CursorY = float64(cx), float64(cy)
	s.state.Buttons = buttons
	s.state.Keys = keys
	s.state.Touches = touches
	s.wheelX += wx
	s.wheelY += wy
}

// Layout はウィンドウの大きさを記録し、そのまま論理画面の大きさとして返す
func (s *Source) Layout(outsideWidth, outsideHeight int) (int, int) {
	s.mu.Lock()
	s.state.Width, s.state.Height = outsideWidth, outsideHeight
	s.mu.Unlock()
	return outsideWidth, outsideHeight
}

// Snapshot は記録された状態を返す。ホイールの移動量は前回の Snapshot からの累積。
func (s *Source) Snapshot() window.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.state
	snap.Time = uint32(time.Since(s.start).Milliseconds())
	snap.WheelX, snap.WheelY = s.wheelX, s.wheelY
	s.wheelX, s.wheelY = 0, 0
	return snap
}

// Game は Source を ebiten.Game として動かす。
// OnUpdate は Capture の直後に同じゴルーチンで呼ばれるので、バックエンドの DispatchNewEvents をここで呼べる。
type Game struct {
	Source   *Source
	OnUpdate func() error
	OnDraw   func(screen *ebiten.Image)
}

var _ ebiten.Game = (*Game)(nil)

func (g *Game) Update() error {
	g.Source.Capture()
	if g.OnUpdate != nil {
		return g.OnUpdate()
	}
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	if g.OnDraw != nil {
		g.OnDraw(screen)
	}
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.Source.Layout(outsideWidth, outsideHeight)
}

// Run はウィンドウを開いてゲームループを実行する。メインゴルーチンから呼ぶこと。
func Run(title string, width, height int, g *Game) error {
	ebiten.SetWindowSize(width, height)
	ebiten.SetWindowTitle(title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	return ebiten.RunGame(g)
}
