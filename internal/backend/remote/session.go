package remote

import (
	"net/http"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/char5742/inputcore/internal/input"
	"github.com/char5742/inputcore/internal/logging"
)

// ErrBusy は接続中の送信側がいるため新しい接続を受け付けられないことを表す
var ErrBusy = errors.New("別の送信側が接続中です")

var _ input.Backend[
	Config,
	KeyboardKeyEvent,
	PointerAxisEvent,
	PointerButtonEvent,
	PointerMotionEvent,
	PointerMotionAbsoluteEvent,
	TouchDownEvent,
	TouchUpEvent,
	TouchMotionEvent,
	TouchCancelEvent,
	TouchFrameEvent,
] = (*Session)(nil)

// Session は1度に1つの送信側を受け付け、接続ごとに Backend を作り直す。
// 切断は Backend と同じ手順で配送されるが、エラーにはならず次の接続を待つ。
type Session struct {
	input.HandlerSlot[
		Config,
		KeyboardKeyEvent,
		PointerAxisEvent,
		PointerButtonEvent,
		PointerMotionEvent,
		PointerMotionAbsoluteEvent,
		TouchDownEvent,
		TouchUpEvent,
		TouchMotionEvent,
		TouchCancelEvent,
		TouchFrameEvent,
	]

	config  Config
	opts    Options
	logger  logging.Logger
	guard   input.DispatchGuard
	current *Backend

	mu       sync.Mutex
	incoming Transport
	busy     bool // incoming か current がある
	closed   bool
}

// NewSession は接続を待つセッションを作る。config は接続ごとの初期設定。
func NewSession(config Config, opts Options) *Session {
	if opts.Logger == nil {
		opts.Logger = logging.NewNopLogger()
	}
	return &Session{config: config, opts: opts, logger: opts.Logger}
}

// Offer は新しい接続を渡す。次の DispatchNewEvents で受け付けられる。
// どのゴルーチンからでも呼べる。
func (s *Session) Offer(t Transport) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errors.New("セッションは閉じられています")
	}
	if s.busy {
		return ErrBusy
	}
	s.incoming = t
	s.busy = true
	return nil
}

// ServeHTTP は WebSocket の接続を受け付けて Offer する
func (s *Session) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if s.Busy() {
		http.Error(w, ErrBusy.Error(), http.StatusConflict)
		return
	}
	t, err := Accept(w, r)
	if err != nil {
		s.logger.Debugw("接続を受け付けられませんでした", "error", err)
		return
	}
	if err := s.Offer(t); err != nil {
		s.logger.Infow("接続を拒否しました", "remote", r.RemoteAddr, "error", err)
		_ = t.Close()
		return
	}
	s.logger.Infow("送信側が接続しました", "remote", r.RemoteAddr)
}

// Busy は送信側が接続中か、受け付け待ちの接続があるかを返す
func (s *Session) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

// InputConfig は接続中の送信側の設定、なければ初期設定を返す
func (s *Session) InputConfig() *Config {
	if s.current != nil {
		return s.current.InputConfig()
	}
	return &s.config
}

// Connected は送信側が接続中かどうかを返す
func (s *Session) Connected() bool {
	return s.current != nil
}

// Seats は現在のシートを返す
func (s *Session) Seats() []input.Seat {
	if s.current == nil {
		return nil
	}
	return s.current.Seats()
}

// DispatchNewEvents は新しい接続を受け付け、届いているメッセージを配送する。
// 不正なメッセージでは *ProtocolError を返す。切断は配送だけ行い nil を返す。
func (s *Session) DispatchNewEvents() error {
	s.guard.Enter()
	defer s.guard.Exit()

	if s.current == nil {
		s.mu.Lock()
		t := s.incoming
		s.incoming = nil
		s.mu.Unlock()
		if t == nil {
			return nil
		}
		s.current = New(t, s.config, s.opts)
	}

	if h, ok := s.Handler(); ok {
		s.current.SetHandler(h)
	} else {
		s.current.ClearHandler()
	}

	err := s.current.DispatchNewEvents()
	var terr *TransportError
	if errors.As(err, &terr) {
		s.logger.Infow("次の接続を待ちます", "error", terr.Err)
		s.current = nil
		s.mu.Lock()
		s.busy = false
		s.mu.Unlock()
		return nil
	}
	return err
}

// Close は新しい接続の受け付けをやめ、接続中の経路を閉じる。
// 切断の配送は次の DispatchNewEvents で行われる。
func (s *Session) Close() error {
	s.mu.Lock()
	s.closed = true
	pending := s.incoming
	s.incoming = nil
	s.mu.Unlock()

	var err error
	if pending != nil {
		err = multierr.Append(err, pending.Close())
	}
	if s.current != nil {
		err = multierr.Append(err, s.current.Close())
	}
	return err
}
