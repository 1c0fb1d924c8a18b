package remote

import (
	"sync"
)

// Transport はシリアライズされた入力メッセージを受け取る経路。
// コールバックはトランスポートのゴルーチンから呼ばれる。
type Transport interface {
	// OnInput はメッセージを受け取るたびに呼ばれる関数を設定する
	OnInput(callback func(data []byte))
	// OnClose は経路が閉じたときに一度だけ呼ばれる関数を設定する。
	// OnInput より先に設定すること。
	OnClose(callback func(err error))
	Close() error
}

// InputSender は送信側で使う経路
type InputSender interface {
	SendInput(data []byte) error
}

type item struct {
	data   []byte
	closed bool
	err    error
}

// queue はトランスポートからディスパッチへメッセージを渡す有界のキュー。
// 満杯の場合、送信側は空きができるかキューが停止されるまで待つ。
type queue struct {
	ch       chan item
	done     chan struct{}
	stopOnce sync.Once
	mu       sync.Mutex
	closed   bool // 終端の item を入れた後
}

func newQueue(size int) *queue {
	return &queue{
		ch:   make(chan item, size),
		done: make(chan struct{}),
	}
}

// push はメッセージを入れる。停止済みなら捨てる。
func (q *queue) push(data []byte) {
	q.mu.Lock()
	closed := q.closed
	q.mu.Unlock()
	if closed {
		return
	}
	select {
	case q.ch <- item{data: data}:
	case <-q.done:
	}
}

// close は経路の終了を入れる。以降のメッセージは捨てられる。
func (q *queue) close(err error) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	q.mu.Unlock()
	select {
	case q.ch <- item{closed: true, err: err}:
	case <-q.done:
	}
}

// pop は待たずに次の item を取り出す
func (q *queue) pop() (item, bool) {
	select {
	case it := <-q.ch:
		return it, true
	default:
		return item{}, false
	}
}

// stop は待っている送信側を解放する
func (q *queue) stop() {
	q.stopOnce.Do(func() { close(q.done) })
}

func (q *queue) len() int {
	return len(q.ch)
}
