package main

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"

	"github.com/char5742/inputcore/internal/backend/virtual"
	"github.com/char5742/inputcore/internal/evcode"
	"github.com/char5742/inputcore/internal/input"
	"github.com/char5742/inputcore/internal/input/inputtest"
	"github.com/char5742/inputcore/internal/logging"
)

func selftestCommand(e *env) *cli.Command {
	return &cli.Command{
		Name:  "selftest",
		Usage: "仮想デバイスでイベントの配送を確認する",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "uinput",
				Usage: "uinput で作った仮想デバイスを evdev バックエンドで読めるかも確認する (Linux, 要権限)",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Value: 5 * time.Second,
				Usage: "uinput のイベントを待つ時間",
			},
		},
		Action: func(c *cli.Context) error {
			logger := e.logger.Named("selftest")
			if err := virtualSelftest(logger); err != nil {
				return err
			}
			logger.Info("仮想バックエンド: OK")
			if !c.Bool("uinput") {
				return nil
			}
			ctx, cancel := context.WithTimeout(c.Context, c.Duration("timeout"))
			defer cancel()
			if err := uinputSelftest(ctx, e); err != nil {
				return err
			}
			logger.Info("uinput と evdev バックエンド: OK")
			return nil
		},
	}
}

// virtualSelftest はキーボードとマルチタッチのデバイスを持つシートで一連の操作を配送し、結果を確認する
func virtualSelftest(logger logging.Logger) error {
	b := virtual.New(virtual.DefaultConfig(), logger)
	rec := inputtest.NewRecorder[virtual.Config]()
	b.SetHandler(virtual.Adapt(rec))

	b.AttachDevice(0, "keyboard", input.SeatCapabilities{Keyboard: true}, virtual.DeviceOptions{})
	b.AttachDevice(0, "touch", input.SeatCapabilities{Touch: true}, virtual.DeviceOptions{MultiTouch: true})
	b.Key("keyboard", evcode.KeyLeftShift, input.KeyPressed)
	b.Key("keyboard", evcode.KeyA, input.KeyPressed)
	b.TouchDown("touch", 1, 0.25, 0.5)
	b.TouchDown("touch", 2, 0.75, 0.5)
	b.TouchFrame("touch")
	b.TouchMotion("touch", 2, 0.8, 0.5)
	b.TouchUp("touch", 1)
	b.TouchFrame("touch")
	b.Key("keyboard", evcode.KeyA, input.KeyReleased)
	b.DetachDevice("touch")
	b.DetachDevice("keyboard")
	if err := b.DispatchNewEvents(); err != nil {
		return err
	}

	var err error
	err = multierr.Append(err, inputtest.CheckTouchSequences(rec.Calls()))

	var counts []uint32
	for _, c := range rec.Filter(inputtest.KeyboardKey) {
		counts = append(counts, c.Event.(input.KeyboardKeyEvent).Count())
	}
	if !equalCounts(counts, []uint32{1, 2, 1}) {
		err = multierr.Append(err, errors.Errorf("押されているキーの数が %v です", counts))
	}

	// 2本目の接触は取り外しで取り消される
	if n := len(rec.Filter(inputtest.TouchCancel)); n != 1 {
		err = multierr.Append(err, errors.Errorf("TouchCancel が %d 回です", n))
	}
	if n := len(rec.Filter(inputtest.SeatCreated)); n != 1 {
		err = multierr.Append(err, errors.Errorf("SeatCreated が %d 回です", n))
	}
	kinds := rec.Kinds()
	if len(kinds) == 0 || kinds[len(kinds)-1] != inputtest.SeatDestroyed {
		err = multierr.Append(err, errors.New("最後のデバイスを外してもシートが破棄されませんでした"))
	}
	return errors.Wrap(err, "仮想バックエンド")
}

func equalCounts(a, b []uint32) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
