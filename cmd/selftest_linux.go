//go:build linux

package main

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/char5742/inputcore/internal/backend/evdev"
	"github.com/char5742/inputcore/internal/evcode"
	"github.com/char5742/inputcore/internal/input/inputtest"
	"github.com/char5742/inputcore/internal/uinput"
)

const (
	selftestKeyboard = "inputcore selftest keyboard"
	selftestTouch    = "inputcore selftest touchscreen"
)

// uinputSelftest は仮想のキーボードとタッチスクリーンを作り、
// 送ったイベントが evdev バックエンドから届くことを確認する
func uinputSelftest(ctx context.Context, e *env) (err error) {
	logger := e.logger.Named("selftest")
	kbd, err := uinput.NewKeyboard(uinput.DefaultPath, selftestKeyboard)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, kbd.Close()) }()
	opts := uinput.DefaultTouchPadOptions()
	opts.Direct = true
	touch, err := uinput.NewTouchPad(uinput.DefaultPath, selftestTouch, opts)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, touch.Close()) }()

	paths, err := waitForNodes(ctx, e.cfg.Evdev.Globs, selftestKeyboard, selftestTouch)
	if err != nil {
		return err
	}
	logger.Debugw("仮想デバイスを見つけました", "paths", paths)

	cfg := evdev.DefaultConfig()
	cfg.Globs = paths
	cfg.PollTimeout = evdev.Duration{Duration: 50 * time.Millisecond}
	b, err := evdev.New(cfg, evdev.Options{Logger: e.logger.Named("evdev"), Seats: evdev.StaticSeat("selftest")})
	if err != nil {
		return err
	}
	defer b.Close()
	rec := inputtest.NewRecorder[evdev.Config]()
	b.SetHandler(evdev.Adapt(rec))

	// デバイスが開かれてからイベントを送る
	if err := dispatchUntil(ctx, b, func() bool { return len(b.Devices()) == len(paths) }); err != nil {
		return errors.Wrap(err, "仮想デバイスを開けませんでした")
	}
	if err := kbd.Tap(evcode.KeyA); err != nil {
		return err
	}
	if err := touch.MultiTouchDown(0, 1, 1000, 2000); err != nil {
		return err
	}
	if err := touch.MultiTouchMove(0, 1500, 2500); err != nil {
		return err
	}
	if err := touch.MultiTouchUp(0); err != nil {
		return err
	}

	done := func() bool {
		return len(rec.Filter(inputtest.KeyboardKey)) >= 2 && len(rec.Filter(inputtest.TouchUp)) >= 1
	}
	if err := dispatchUntil(ctx, b, done); err != nil {
		return errors.Wrapf(err, "イベントが届きませんでした: %v", rec.Kinds())
	}
	return inputtest.CheckTouchSequences(rec.Calls())
}

// waitForNodes は名前の一致するデバイスノードが現れるまで待つ
func waitForNodes(ctx context.Context, globs []string, names ...string) ([]string, error) {
	for {
		found, err := evdev.ScanDevices(globs)
		if err != nil {
			return nil, err
		}
		var paths []string
		for _, name := range names {
			for _, d := range found {
				if d.Name == name && d.Error == "" {
					paths = append(paths, d.Path)
					break
				}
			}
		}
		if len(paths) == len(names) {
			return paths, nil
		}
		select {
		case <-ctx.Done():
			return nil, errors.Wrap(ctx.Err(), "仮想デバイスのノードが見つかりません")
		case <-time.After(50 * time.Millisecond):
		}
	}
}

func dispatchUntil(ctx context.Context, b *evdev.Backend, done func() bool) error {
	for !done() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := b.DispatchNewEvents(); err != nil {
			return err
		}
	}
	return nil
}
