package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/char5742/inputcore/internal/config"
	"github.com/char5742/inputcore/internal/logging"
)

const (
	flagConfig   = "config"
	flagLogLevel = "log-level"
)

// env はすべてのコマンドが共有する設定とロガー
type env struct {
	cfgPath string
	cfg     *config.Config
	logger  logging.Logger
}

func main() {
	e := &env{}
	app := &cli.App{
		Name:  "inputcore",
		Usage: "入力デバイスのイベントを読み取り、シートごとに配送する",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    flagConfig,
				Aliases: []string{"c"},
				Usage:   "設定ファイルのパス (指定しない場合はデフォルトパスを使用)",
			},
			&cli.StringFlag{
				Name:  flagLogLevel,
				Usage: "ログレベル (debug, info, warn, error)。設定ファイルより優先される",
			},
		},
		Before: e.load,
		After: func(*cli.Context) error {
			if e.logger != nil {
				_ = e.logger.Sync()
			}
			return nil
		},
		Commands: []*cli.Command{
			dumpCommand(e),
			devicesCommand(e),
			serveCommand(e),
			remoteCommand(e),
			windowCommand(e),
			selftestCommand(e),
		},
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// load は設定ファイルを読み込み、ロガーを作成する
func (e *env) load(c *cli.Context) error {
	// デフォルト設定ファイルパスの設定
	e.cfgPath = c.String(flagConfig)
	if e.cfgPath == "" {
		if p, err := config.DefaultConfigPath(); err == nil {
			e.cfgPath = p
		}
	}

	// 設定ファイルの読み込み
	var loadErr error
	if e.cfgPath != "" {
		e.cfg, loadErr = config.LoadConfig(e.cfgPath)
	}
	if e.cfg == nil {
		e.cfg = config.DefaultConfig()
	}

	level := e.cfg.Log.Level
	if c.IsSet(flagLogLevel) {
		level = c.String(flagLogLevel)
	}
	logger, err := logging.NewLogger("inputcore", level)
	if err != nil {
		return err
	}
	e.logger = logger

	if loadErr != nil {
		e.logger.Warnw("設定ファイルの読み込みに失敗しました。デフォルト設定を使用します", "path", e.cfgPath, "error", loadErr)
	} else if e.cfgPath != "" {
		e.logger.Debugw("設定ファイルを読み込みました", "path", e.cfgPath)
	}
	return nil
}

// signalContext は SIGINT か SIGTERM で終わるコンテキストを返す
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// pump はコンテキストが終わるまで DispatchNewEvents を呼び続ける。
// Temporary なエラーはログに出して続ける。
func (e *env) pump(ctx context.Context, b interface{ DispatchNewEvents() error }, idle time.Duration) error {
	for ctx.Err() == nil {
		if err := b.DispatchNewEvents(); err != nil {
			var t interface{ Temporary() bool }
			if !errors.As(err, &t) || !t.Temporary() {
				return err
			}
			e.logger.Warnw("イベントの読み取りに失敗しました", "error", err)
		}
		if idle > 0 {
			time.Sleep(idle)
		}
	}
	return nil
}
