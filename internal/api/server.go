package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/char5742/inputcore/internal/config"
	"github.com/char5742/inputcore/internal/logging"
)

// DeviceLister はデバイス一覧を返す。結果はそのまま JSON で返される。
type DeviceLister func() (interface{}, error)

// Options は Server の依存先
type Options struct {
	Logger  logging.Logger
	Monitor *Monitor
	Service *InputService
	Devices DeviceLister
	// ConfigPath は保存先を指定しない /api/config/save で使うパス
	ConfigPath string
}

// Server はAPIサーバーを表す構造体
type Server struct {
	server   *http.Server
	cfg      *config.Config
	mutex    sync.RWMutex
	port     int
	opts     Options
	logger   logging.Logger
	upgrader websocket.Upgrader
}

// NewServer は新しいAPIサーバーを作成する
func NewServer(cfg *config.Config, port int, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = logging.NewNopLogger()
	}
	if opts.Monitor == nil {
		opts.Monitor = NewMonitor(defaultSpace, cfg.API.EventBuffer)
	}
	return &Server{
		cfg:    cfg,
		port:   port,
		opts:   opts,
		logger: opts.Logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Handler はルーティング済みの http.Handler を返す
func (s *Server) Handler() http.Handler {
	router := http.NewServeMux()
	s.setupRoutes(router)
	return router
}

// Start はAPIサーバーを開始する。Stop されるまで戻らない。
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", s.port))
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Serve は ln で API を提供する
func (s *Server) Serve(ln net.Listener) error {
	s.mutex.Lock()
	s.server = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	srv := s.server
	s.mutex.Unlock()

	s.logger.Infof("APIサーバーを開始します: http://%s", ln.Addr())
	if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop はAPIサーバーを停止する
func (s *Server) Stop(ctx context.Context) error {
	s.mutex.RLock()
	srv := s.server
	s.mutex.RUnlock()
	if srv == nil {
		return nil
	}
	s.logger.Info("APIサーバーを停止します...")
	return srv.Shutdown(ctx)
}

// GetConfig は現在の設定を返す
func (s *Server) GetConfig() *config.Config {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.cfg
}

// UpdateConfig は設定を更新し、実行中のサービスに伝える
func (s *Server) UpdateConfig(cfg *config.Config) {
	s.mutex.Lock()
	s.cfg = cfg
	s.mutex.Unlock()
	if s.opts.Service != nil {
		s.opts.Service.UpdateConfig(cfg)
	}
}

// writeJSON はJSONレスポンスを書き込む
func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			s.logger.Warnw("JSONエンコードエラー", "error", err)
		}
	}
}

// writeError はエラーレスポンスを書き込む
func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
