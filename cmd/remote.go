package main

import (
	"time"

	"github.com/urfave/cli/v2"

	"github.com/char5742/inputcore/internal/backend/remote"
)

func remoteCommand(e *env) *cli.Command {
	return &cli.Command{
		Name:  "remote",
		Usage: "ネットワーク越しの送信側を受け付け、イベントをログに出力する",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "listen",
				Usage: "待ち受けるアドレス (指定しない場合は設定ファイルの値)",
			},
		},
		Action: func(c *cli.Context) error {
			cfg := *e.cfg
			if c.IsSet("listen") {
				cfg.Remote.Listen = c.String("listen")
			}
			ctx, stop := signalContext(c.Context)
			defer stop()

			logger := e.logger.Named("remote")
			p, err := listenRemote(&cfg, logger)
			if err != nil {
				return err
			}
			defer p.Close()
			p.SetHandler(remote.Adapt(newPrinter[remote.Config](e.logger.Named("event"), eventSpace)))
			return e.pump(ctx, p, 5*time.Millisecond)
		},
	}
}
