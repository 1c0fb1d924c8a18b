//go:build !linux

package main

import (
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/char5742/inputcore/internal/api"
	"github.com/char5742/inputcore/internal/config"
)

var errNoEvdev = errors.New("evdev バックエンドは Linux でのみ使えます")

func evdevOpener(*env, *api.Monitor) api.Opener {
	return func(*config.Config) (api.Pump, func(*config.Config), error) {
		return nil, nil, errNoEvdev
	}
}

// deviceLister は nil を返し、API は一覧を提供しない
func deviceLister(func() *config.Config) api.DeviceLister {
	return nil
}

func devicesCommand(*env) *cli.Command {
	return &cli.Command{
		Name:   "devices",
		Usage:  "入力デバイスを一覧表示する (Linux のみ)",
		Action: func(*cli.Context) error { return errNoEvdev },
	}
}

func dumpCommand(*env) *cli.Command {
	return &cli.Command{
		Name:   "dump",
		Usage:  "evdev デバイスのイベントをログに出力する (Linux のみ)",
		Action: func(*cli.Context) error { return errNoEvdev },
	}
}
