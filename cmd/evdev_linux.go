//go:build linux

package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/char5742/inputcore/internal/api"
	"github.com/char5742/inputcore/internal/backend/evdev"
	"github.com/char5742/inputcore/internal/backend/evdev/udevseat"
	"github.com/char5742/inputcore/internal/config"
	"github.com/char5742/inputcore/internal/input"
)

// inputDir はデバイスの抜き差しを監視するディレクトリ
const inputDir = "/dev/input"

func openEvdev(e *env, cfg evdev.Config) (*evdev.Backend, error) {
	return evdev.New(cfg, evdev.Options{
		Logger:   e.logger.Named("evdev"),
		Seats:    udevseat.New(),
		WatchDir: inputDir,
	})
}

func evdevOpener(e *env, monitor *api.Monitor) api.Opener {
	return func(cfg *config.Config) (api.Pump, func(*config.Config), error) {
		b, err := openEvdev(e, cfg.Evdev)
		if err != nil {
			return nil, nil, err
		}
		logger := e.logger.Named("evdev")
		box := input.Box(evdev.Adapt(handlersFor(cfg, api.Watch[evdev.Config](monitor), logger, eventSpace)))
		b.SetHandler(box)
		apply := func(cfg *config.Config) {
			*b.InputConfig() = cfg.Evdev
			box.Swap(evdev.Adapt(handlersFor(cfg, api.Watch[evdev.Config](monitor), logger, eventSpace)))
		}
		return b, apply, nil
	}
}

// deviceReport は devices コマンドと API で返すデバイスの情報
type deviceReport struct {
	evdev.DeviceDescription
	Seat  string   `json:"seat,omitempty"`
	Kinds []string `json:"kinds,omitempty"`
}

func scanDevices(globs []string) ([]deviceReport, error) {
	found, err := evdev.ScanDevices(globs)
	if err != nil {
		return nil, err
	}
	resolver := udevseat.New()
	out := make([]deviceReport, 0, len(found))
	for _, d := range found {
		r := deviceReport{DeviceDescription: d}
		// udev が使えない環境ではスキャンの結果だけを返す
		if props, err := resolver.Properties(d.Path); err == nil {
			r.Seat = udevseat.SeatFromProperties(props)
			r.Kinds = udevseat.Kinds(props)
		}
		out = append(out, r)
	}
	return out, nil
}

func deviceLister(current func() *config.Config) api.DeviceLister {
	return func() (interface{}, error) {
		return scanDevices(current().Evdev.Globs)
	}
}

func devicesCommand(e *env) *cli.Command {
	return &cli.Command{
		Name:  "devices",
		Usage: "入力デバイスを一覧表示する",
		Action: func(c *cli.Context) error {
			devices, err := scanDevices(e.cfg.Evdev.Globs)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(devices)
		},
	}
}

func dumpCommand(e *env) *cli.Command {
	return &cli.Command{
		Name:  "dump",
		Usage: "evdev デバイスのイベントをログに出力する",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:  "device",
				Usage: "開くデバイスノードのパターン (指定しない場合は設定ファイルの値)",
			},
			&cli.BoolFlag{
				Name:  "grab",
				Usage: "デバイスを占有して他のプログラムに入力を渡さない",
			},
		},
		Action: func(c *cli.Context) error {
			cfg := e.cfg.Evdev
			if c.IsSet("device") {
				cfg.Globs = c.StringSlice("device")
			}
			if c.Bool("grab") {
				cfg.Defaults.Grab = true
			}
			ctx, stop := signalContext(c.Context)
			defer stop()
			return e.dump(ctx, cfg)
		},
	}
}

func (e *env) dump(ctx context.Context, cfg evdev.Config) error {
	b, err := openEvdev(e, cfg)
	if err != nil {
		return err
	}
	defer b.Close()
	b.SetHandler(evdev.Adapt(newPrinter[evdev.Config](e.logger.Named("event"), eventSpace)))
	return e.pump(ctx, b, 0)
}
