package main

import (
	"fmt"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/urfave/cli/v2"

	"github.com/char5742/inputcore/internal/backend/window"
	"github.com/char5742/inputcore/internal/backend/window/ebitensource"
)

func windowCommand(e *env) *cli.Command {
	return &cli.Command{
		Name:  "window",
		Usage: "ウィンドウを開き、ウィンドウへの入力をログに出力する",
		Action: func(c *cli.Context) error {
			wc := e.cfg.Window
			source := ebitensource.New()
			b := window.New(source, wc.Input, window.Options{
				Logger: e.logger.Named("window"),
				SeatID: wc.SeatID,
			})
			defer b.Close()
			b.SetHandler(window.Adapt(newPrinter[window.Config](e.logger.Named("event"), eventSpace)))

			game := &ebitensource.Game{
				Source:   source,
				OnUpdate: b.DispatchNewEvents,
				OnDraw: func(screen *ebiten.Image) {
					ebitenutil.DebugPrint(screen, describeWindow(b))
				},
			}
			return ebitensource.Run(wc.Title, wc.Width, wc.Height, game)
		},
	}
}

func describeWindow(b *window.Backend) string {
	var sb strings.Builder
	cfg := b.InputConfig()
	fmt.Fprintf(&sb, "%.0fx%.0f\n", cfg.Width, cfg.Height)
	for _, seat := range b.Seats() {
		caps := seat.Capabilities()
		fmt.Fprintf(&sb, "seat %d pointer=%t keyboard=%t touch=%t\n", seat.ID(), caps.Pointer, caps.Keyboard, caps.Touch)
	}
	return sb.String()
}
