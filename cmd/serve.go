package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/pion/webrtc/v4"
	"github.com/pkg/browser"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"

	"github.com/char5742/inputcore/internal/api"
	"github.com/char5742/inputcore/internal/backend/remote"
	"github.com/char5742/inputcore/internal/config"
	"github.com/char5742/inputcore/internal/input"
	"github.com/char5742/inputcore/internal/logging"
)

const (
	backendEvdev  = "evdev"
	backendRemote = "remote"
)

func serveCommand(e *env) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "バックエンドを動かし、HTTP API でシートの状態とイベントを提供する",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "backend",
				Value: backendEvdev,
				Usage: "使うバックエンド (evdev, remote)",
			},
			&cli.IntFlag{
				Name:  "port",
				Usage: "APIサーバーのポート番号 (指定しない場合は設定ファイルの値)",
			},
			&cli.BoolFlag{
				Name:  "open",
				Usage: "起動後にブラウザでAPIを開く",
			},
		},
		Action: func(c *cli.Context) error {
			port := e.cfg.API.Port
			if c.IsSet("port") {
				port = c.Int("port")
			}
			return e.serve(c.Context, c.String("backend"), port, c.Bool("open"))
		},
	}
}

func (e *env) serve(parent context.Context, backend string, port int, open bool) error {
	ctx, stop := signalContext(parent)
	defer stop()

	monitor := api.NewMonitor(eventSpace, e.cfg.API.EventBuffer)
	var (
		opener api.Opener
		idle   time.Duration
	)
	switch backend {
	case backendEvdev:
		opener = evdevOpener(e, monitor)
	case backendRemote:
		opener = remoteOpener(e, monitor)
		idle = 5 * time.Millisecond
	default:
		return errors.Errorf("不明なバックエンド %q", backend)
	}

	service := api.NewInputService(e.cfg, opener, idle, e.logger.Named("service"))
	var server *api.Server
	server = api.NewServer(e.cfg, port, api.Options{
		Logger:     e.logger.Named("api"),
		Monitor:    monitor,
		Service:    service,
		Devices:    deviceLister(func() *config.Config { return server.GetConfig() }),
		ConfigPath: e.cfgPath,
	})

	if err := service.Start(); err != nil {
		return err
	}
	defer func() {
		if service.IsRunning() {
			_ = service.Stop()
		}
	}()

	if e.cfgPath != "" {
		watcher, err := config.NewWatcher(e.cfgPath)
		if err != nil {
			e.logger.Warnw("設定ファイルを監視できません", "path", e.cfgPath, "error", err)
		} else {
			defer watcher.Close()
			go watchConfig(ctx, watcher, server, e.logger)
		}
	}

	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return errors.Wrapf(err, "ポート %d で待ち受けられません", port)
	}
	errCh := make(chan error, 1)
	go func() { errCh <- server.Serve(ln) }()

	if open {
		url := fmt.Sprintf("http://localhost:%d/api/seats", port)
		if err := browser.OpenURL(url); err != nil {
			e.logger.Warnw("ブラウザを開けませんでした", "url", url, "error", err)
		}
	}

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return err
	}
	e.logger.Info("シャットダウンします...")
	shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Stop(shutdown)
}

// watchConfig はファイルの変更を API サーバーとサービスに伝える
func watchConfig(ctx context.Context, w *config.Watcher, server *api.Server, logger logging.Logger) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		cfg, err := w.Poll()
		if err != nil {
			logger.Warnw("設定ファイルを読み直せませんでした", "path", w.Path(), "error", err)
			continue
		}
		if cfg != nil {
			logger.Infow("設定ファイルの変更を反映します", "path", w.Path())
			server.UpdateConfig(cfg)
		}
	}
}

// remotePump は Session と、送信側の接続を受け付ける HTTP サーバーをまとめたもの
type remotePump struct {
	*remote.Session
	srv *http.Server
}

func (p *remotePump) Close() error {
	return multierr.Combine(p.srv.Close(), p.Session.Close())
}

// listenRemote は WebSocket と WebRTC のシグナリングを待ち受けるセッションを開く
func listenRemote(cfg *config.Config, logger logging.Logger) (*remotePump, error) {
	session := remote.NewSession(cfg.Remote.Surface, remote.Options{Logger: logger, QueueSize: cfg.Remote.QueueSize})
	mux := http.NewServeMux()
	mux.Handle(cfg.Remote.Path, session)
	mux.Handle(cfg.Remote.Path+"/webrtc", remote.NewSignaler(session, nil, webrtc.Configuration{}, logger))

	ln, err := net.Listen("tcp", cfg.Remote.Listen)
	if err != nil {
		return nil, errors.Wrapf(err, "%s で待ち受けられません", cfg.Remote.Listen)
	}
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			logger.Errorw("受け付けを終了しました", "error", err)
		}
	}()
	logger.Infow("送信側の接続を待ちます", "listen", ln.Addr().String(), "path", cfg.Remote.Path)
	return &remotePump{Session: session, srv: srv}, nil
}

func remoteOpener(e *env, monitor *api.Monitor) api.Opener {
	return func(cfg *config.Config) (api.Pump, func(*config.Config), error) {
		logger := e.logger.Named("remote")
		p, err := listenRemote(cfg, logger)
		if err != nil {
			return nil, nil, err
		}
		box := input.Box(remote.Adapt(handlersFor(cfg, api.Watch[remote.Config](monitor), logger, eventSpace)))
		p.SetHandler(box)
		apply := func(cfg *config.Config) {
			box.Swap(remote.Adapt(handlersFor(cfg, api.Watch[remote.Config](monitor), logger, eventSpace)))
		}
		return p, apply, nil
	}
}
