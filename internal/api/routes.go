package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/char5742/inputcore/internal/config"
	"github.com/char5742/inputcore/internal/input"
)

// defaultSpace は座標を変換して配信するときの座標空間
var defaultSpace = input.Size{Width: 1920, Height: 1080}

const eventWriteTimeout = 5 * time.Second

// ルートの設定
func (s *Server) setupRoutes(router *http.ServeMux) {
	// 設定関連のエンドポイント
	router.HandleFunc("GET /api/config", s.handleGetConfig)
	router.HandleFunc("PUT /api/config", s.handleUpdateConfig)
	router.HandleFunc("POST /api/config/save", s.handleSaveConfig)

	// 入力の状態
	router.HandleFunc("GET /api/seats", s.handleGetSeats)
	router.HandleFunc("GET /api/devices", s.handleGetDevices)
	router.HandleFunc("GET /api/events", s.handleEvents)

	// サービス関連のエンドポイント
	router.HandleFunc("POST /api/service/start", s.handleStartService)
	router.HandleFunc("POST /api/service/stop", s.handleStopService)
	router.HandleFunc("GET /api/service/status", s.handleServiceStatus)

	// ヘルスチェック用エンドポイント
	router.HandleFunc("GET /api/health", s.handleHealthCheck)
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.GetConfig())
}

// 設定更新ハンドラ。書かれていない項目は現在の値のまま。
func (s *Server) handleUpdateConfig(w http.ResponseWriter, r *http.Request) {
	// 実行中の設定とスライスを共有しないよう、JSON を経由して複製してから上書きする
	current, err := json.Marshal(s.GetConfig())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "設定の複製に失敗しました")
		return
	}
	newConfig := &config.Config{}
	if err := json.Unmarshal(current, newConfig); err != nil {
		s.writeError(w, http.StatusInternalServerError, "設定の複製に失敗しました")
		return
	}

	if err := json.NewDecoder(r.Body).Decode(newConfig); err != nil {
		s.writeError(w, http.StatusBadRequest, "設定の解析に失敗しました")
		return
	}

	s.UpdateConfig(newConfig)
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

// 設定保存ハンドラ
func (s *Server) handleSaveConfig(w http.ResponseWriter, r *http.Request) {
	var saveRequest struct {
		Path string `json:"path"`
	}

	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&saveRequest); err != nil {
			s.writeError(w, http.StatusBadRequest, "リクエストの解析に失敗しました")
			return
		}
	}

	configPath := saveRequest.Path
	if configPath == "" {
		configPath = s.opts.ConfigPath
	}
	if configPath == "" {
		path, err := config.DefaultConfigPath()
		if err != nil {
			s.writeError(w, http.StatusInternalServerError, "デフォルト設定ディレクトリの取得に失敗しました")
			return
		}
		configPath = path
	}

	if err := config.SaveConfig(configPath, s.GetConfig()); err != nil {
		s.writeError(w, http.StatusInternalServerError, "設定の保存に失敗しました: "+err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]string{
		"status": "success",
		"path":   configPath,
	})
}

func (s *Server) handleGetSeats(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.opts.Monitor.Seats())
}

// デバイス一覧取得ハンドラ
func (s *Server) handleGetDevices(w http.ResponseWriter, r *http.Request) {
	if s.opts.Devices == nil {
		s.writeError(w, http.StatusNotImplemented, "このバックエンドはデバイス一覧を提供しません")
		return
	}
	devices, err := s.opts.Devices()
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "デバイス一覧の取得に失敗しました: "+err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, devices)
}

// handleEvents は入力イベントを websocket で配信する
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Debugw("websocket へのアップグレードに失敗しました", "error", err)
		return
	}
	defer conn.Close()

	events, cancel := s.opts.Monitor.Subscribe()
	defer cancel()

	// クライアントからのメッセージは読み捨て、切断だけを検出する
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-closed:
			return
		case <-r.Context().Done():
			return
		case msg, ok := <-events:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(eventWriteTimeout))
			if err := conn.WriteJSON(msg); err != nil {
				s.logger.Debugw("イベントの送信に失敗しました", "error", err)
				return
			}
		}
	}
}

// サービス起動ハンドラ
func (s *Server) handleStartService(w http.ResponseWriter, r *http.Request) {
	service := s.opts.Service
	if service == nil {
		s.writeError(w, http.StatusNotImplemented, "サービスが設定されていません")
		return
	}
	if service.IsRunning() {
		s.writeJSON(w, http.StatusOK, map[string]string{"status": "already_running"})
		return
	}
	if err := service.Start(); err != nil {
		s.writeError(w, http.StatusInternalServerError, fmt.Sprintf("サービスの起動に失敗しました: %v", err))
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "started"})
}

// サービス停止ハンドラ
func (s *Server) handleStopService(w http.ResponseWriter, r *http.Request) {
	service := s.opts.Service
	if service == nil || !service.IsRunning() {
		s.writeJSON(w, http.StatusOK, map[string]string{"status": "not_running"})
		return
	}
	if err := service.Stop(); err != nil {
		s.writeError(w, http.StatusInternalServerError, fmt.Sprintf("サービスの停止に失敗しました: %v", err))
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "stopped"})
}

// サービス状態取得ハンドラ
func (s *Server) handleServiceStatus(w http.ResponseWriter, r *http.Request) {
	status := map[string]string{"status": "stopped"}
	if s.opts.Service != nil {
		if s.opts.Service.IsRunning() {
			status["status"] = "running"
		}
		if err := s.opts.Service.LastError(); err != nil {
			status["error"] = err.Error()
		}
	}
	s.writeJSON(w, http.StatusOK, status)
}

// ヘルスチェックハンドラ
func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
