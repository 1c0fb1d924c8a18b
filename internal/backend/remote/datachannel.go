package remote

import (
	"sync"

	"github.com/pion/webrtc/v4"
	"github.com/pkg/errors"
)

// DataChannelTransport は WebRTC の DataChannel でメッセージを送受信する。
// OnInput が設定されるまでに届いたメッセージと切断は保持され、設定時に渡される。
type DataChannelTransport struct {
	dc *webrtc.DataChannel

	mu       sync.Mutex
	onInput  func(data []byte)
	onClose  func(err error)
	pending  [][]byte
	lastErr  error
	closed   bool // 切断を受け取った
	reported bool // 切断を onClose に渡した
}

// NewDataChannelTransport は DataChannel を包む
func NewDataChannelTransport(dc *webrtc.DataChannel) *DataChannelTransport {
	t := &DataChannelTransport{dc: dc}
	dc.OnMessage(func(msg webrtc.DataChannelMessage) {
		t.mu.Lock()
		cb := t.onInput
		if cb == nil {
			t.pending = append(t.pending, msg.Data)
		}
		t.mu.Unlock()
		if cb != nil {
			cb(msg.Data)
		}
	})
	dc.OnError(func(err error) {
		t.mu.Lock()
		t.lastErr = err
		t.mu.Unlock()
	})
	dc.OnClose(func() {
		t.mu.Lock()
		if t.closed {
			t.mu.Unlock()
			return
		}
		t.closed = true
		t.mu.Unlock()
		t.reportClose()
	})
	return t
}

// reportClose は受信側に渡せる状態になっていれば切断を一度だけ通知する。
// 保留中のメッセージより先には通知しない。
func (t *DataChannelTransport) reportClose() {
	t.mu.Lock()
	if !t.closed || t.reported || t.onClose == nil || t.onInput == nil {
		t.mu.Unlock()
		return
	}
	t.reported = true
	cb, err := t.onClose, t.lastErr
	t.mu.Unlock()
	cb(err)
}

// OnInput はコールバックを設定し、保留中のメッセージを順に渡す
func (t *DataChannelTransport) OnInput(callback func(data []byte)) {
	t.mu.Lock()
	pending := t.pending
	t.pending = nil
	t.mu.Unlock()
	for _, data := range pending {
		callback(data)
	}
	t.mu.Lock()
	// 渡している間に届いたものも順に渡す
	for len(t.pending) > 0 {
		more := t.pending
		t.pending = nil
		t.mu.Unlock()
		for _, data := range more {
			callback(data)
		}
		t.mu.Lock()
	}
	t.onInput = callback
	t.mu.Unlock()
	t.reportClose()
}

func (t *DataChannelTransport) OnClose(callback func(err error)) {
	t.mu.Lock()
	t.onClose = callback
	t.mu.Unlock()
	t.reportClose()
}

// SendInput はメッセージを1つ送る
func (t *DataChannelTransport) SendInput(data []byte) error {
	if t.dc.ReadyState() != webrtc.DataChannelStateOpen {
		return errors.New("data channel is not open")
	}
	return t.dc.Send(data)
}

func (t *DataChannelTransport) Close() error {
	return t.dc.Close()
}
