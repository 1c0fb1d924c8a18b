package api

import (
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/char5742/inputcore/internal/config"
	"github.com/char5742/inputcore/internal/logging"
)

// Pump はサービスが動かすバックエンド
type Pump interface {
	DispatchNewEvents() error
	Close() error
}

// Opener はサービスの開始時にバックエンドを開く。
// apply は設定が更新されたときにディスパッチと同じゴルーチンで呼ばれ、バックエンドの設定に反映する。
type Opener func(cfg *config.Config) (pump Pump, apply func(*config.Config), err error)

// temporary はディスパッチを続けてよいエラーを表す
type temporary interface {
	Temporary() bool
}

// InputService はバックエンドを専用のゴルーチンで動かし続ける
type InputService struct {
	cfg          *config.Config
	open         Opener
	logger       logging.Logger
	idle         time.Duration
	stopChan     chan struct{}
	done         chan struct{}
	running      bool
	lastErr      error
	statusMutex  sync.RWMutex
	updateConfig chan *config.Config
}

// NewInputService は新しいサービスを作成する。
// idle は DispatchNewEvents の呼び出しの間隔で、待たずに戻るバックエンドで CPU を使い切らないためのもの。
func NewInputService(cfg *config.Config, open Opener, idle time.Duration, logger logging.Logger) *InputService {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &InputService{
		cfg:          cfg,
		open:         open,
		logger:       logger,
		idle:         idle,
		updateConfig: make(chan *config.Config, 1),
	}
}

// Start はバックエンドを開いてディスパッチを開始する
func (s *InputService) Start() error {
	s.statusMutex.Lock()
	defer s.statusMutex.Unlock()

	if s.running {
		return errors.New("サービスは既に実行中です")
	}

	pump, apply, err := s.open(s.cfg)
	if err != nil {
		return errors.Wrap(err, "バックエンドの作成に失敗しました")
	}

	s.stopChan = make(chan struct{})
	s.done = make(chan struct{})
	s.running = true
	s.lastErr = nil

	go s.runLoop(pump, apply, s.stopChan, s.done)
	return nil
}

// Stop はディスパッチを止め、バックエンドが閉じられるまで待つ
func (s *InputService) Stop() error {
	s.statusMutex.Lock()
	if !s.running {
		s.statusMutex.Unlock()
		return errors.New("サービスは実行されていません")
	}
	close(s.stopChan)
	done := s.done
	s.statusMutex.Unlock()

	<-done
	return nil
}

// UpdateConfig は設定を更新する。反映は次のディスパッチの前に行われる。
func (s *InputService) UpdateConfig(cfg *config.Config) {
	s.statusMutex.Lock()
	s.cfg = cfg
	s.statusMutex.Unlock()

	select {
	case s.updateConfig <- cfg:
	default:
		// 反映前の古い設定は捨てる
		select {
		case <-s.updateConfig:
		default:
		}
		s.updateConfig <- cfg
	}
}

// IsRunning はサービスが実行中かどうかを返す
func (s *InputService) IsRunning() bool {
	s.statusMutex.RLock()
	defer s.statusMutex.RUnlock()
	return s.running
}

// LastError はディスパッチを止めたエラーを返す
func (s *InputService) LastError() error {
	s.statusMutex.RLock()
	defer s.statusMutex.RUnlock()
	return s.lastErr
}

func (s *InputService) runLoop(pump Pump, apply func(*config.Config), stop <-chan struct{}, done chan<- struct{}) {
	var loopErr error
	defer func() {
		if err := pump.Close(); err != nil {
			s.logger.Warnw("バックエンドを閉じられませんでした", "error", err)
		}
		s.statusMutex.Lock()
		s.running = false
		s.lastErr = loopErr
		s.statusMutex.Unlock()
		close(done)
		s.logger.Info("入力サービスを停止しました")
	}()

	s.logger.Info("入力サービスを開始しました")
	for {
		select {
		case <-stop:
			return
		case cfg := <-s.updateConfig:
			if apply != nil {
				apply(cfg)
			}
			s.logger.Info("設定を更新しました")
		default:
		}

		if err := pump.DispatchNewEvents(); err != nil {
			var t temporary
			if errors.As(err, &t) && t.Temporary() {
				s.logger.Warnw("入力の読み取りに失敗しました", "error", err)
			} else {
				s.logger.Errorw("入力の読み取りを中止します", "error", err)
				loopErr = err
				return
			}
		}
		if s.idle > 0 {
			time.Sleep(s.idle)
		}
	}
}
