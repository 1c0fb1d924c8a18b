package remote

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
)

const (
	pingInterval = 25 * time.Second
	writeWait    = 5 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// WebsocketTransport は WebSocket の1本の接続でメッセージを送受信する。
// 受信したテキスト/バイナリメッセージはそれぞれ1つの入力メッセージとして扱う。
type WebsocketTransport struct {
	conn *websocket.Conn

	writeMu sync.Mutex
	cbMu    sync.Mutex
	onInput func(data []byte)
	onClose func(err error)

	start     sync.Once
	closeOnce sync.Once
	done      chan struct{}
}

// NewWebsocketTransport は確立済みの接続を包む
func NewWebsocketTransport(conn *websocket.Conn) *WebsocketTransport {
	return &WebsocketTransport{
		conn: conn,
		done: make(chan struct{}),
	}
}

// Accept は HTTP リクエストを WebSocket にアップグレードする（受信側）
func Accept(w http.ResponseWriter, r *http.Request) (*WebsocketTransport, error) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, errors.Wrap(err, "websocket upgrade")
	}
	return NewWebsocketTransport(conn), nil
}

// Dial はサーバーに接続する（送信側）
func Dial(url string) (*WebsocketTransport, error) {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "websocket dial")
	}
	t := NewWebsocketTransport(conn)
	// 送信側でも相手の切断を検出するために読み続ける
	t.OnInput(func([]byte) {})
	return t, nil
}

// OnInput はコールバックを設定し、最初の呼び出しで受信を始める
func (t *WebsocketTransport) OnInput(callback func(data []byte)) {
	t.cbMu.Lock()
	t.onInput = callback
	t.cbMu.Unlock()
	t.start.Do(func() {
		go t.readLoop()
		go t.pingLoop()
	})
}

func (t *WebsocketTransport) OnClose(callback func(err error)) {
	t.cbMu.Lock()
	defer t.cbMu.Unlock()
	t.onClose = callback
}

// SendInput はメッセージを1つ送る
func (t *WebsocketTransport) SendInput(data []byte) error {
	t.writeMu.Lock()
	defer t.writeMu.Unlock()
	_ = t.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return t.conn.WriteMessage(websocket.TextMessage, data)
}

// Close は相手に終了を通知して接続を閉じる
func (t *WebsocketTransport) Close() error {
	var err error
	t.closeOnce.Do(func() {
		close(t.done)
		t.writeMu.Lock()
		_ = t.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
		t.writeMu.Unlock()
		err = t.conn.Close()
	})
	return err
}

func (t *WebsocketTransport) readLoop() {
	var cause error
	for {
		_, data, err := t.conn.ReadMessage()
		if err != nil {
			select {
			case <-t.done:
			default:
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					cause = err
				}
			}
			break
		}
		t.cbMu.Lock()
		cb := t.onInput
		t.cbMu.Unlock()
		if cb != nil {
			cb(data)
		}
	}

	t.closeOnce.Do(func() {
		close(t.done)
		_ = t.conn.Close()
	})
	t.cbMu.Lock()
	cb := t.onClose
	t.cbMu.Unlock()
	if cb != nil {
		cb(cause)
	}
}

func (t *WebsocketTransport) pingLoop() {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-t.done:
			return
		case <-ticker.C:
			t.writeMu.Lock()
			_ = t.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
			t.writeMu.Unlock()
		}
	}
}
