//go:build linux

package uinput

import (
	"bytes"
	"encoding/binary"
	"os"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"golang.org/x/sys/unix"

	"github.com/char5742/inputcore/internal/evcode"
	"github.com/char5742/inputcore/internal/utils"
)

// DefaultPath は uinput のデバイスファイル
const DefaultPath = "/dev/uinput"

// device は作成済みの仮想デバイス
type device struct {
	name string
	file *os.File
}

// setupStep はデバイス作成前に発行する ioctl
type setupStep struct {
	cmd  uintptr
	arg  uintptr
	what string
}

// createDevice は uinput を開き、steps を発行してからデバイスを作成する
func createDevice(path string, dev UserDev, steps []setupStep) (*device, error) {
	file, err := os.OpenFile(path, unix.O_WRONLY|unix.O_NONBLOCK, 0o660)
	if err != nil {
		return nil, errors.Wrapf(err, "デバイスファイル %s を開くのに失敗しました", path)
	}

	for _, step := range steps {
		if err := utils.IOCtl(file, step.cmd, step.arg); err != nil {
			_ = file.Close()
			return nil, errors.Wrapf(err, "%s の登録に失敗しました (%#x)", step.what, step.arg)
		}
	}

	buf := new(bytes.Buffer)
	if err := binary.Write(buf, binary.LittleEndian, dev); err != nil {
		_ = file.Close()
		return nil, errors.Wrap(err, "ユーザーデバイスバッファの書き込みに失敗しました")
	}
	if _, err := file.Write(buf.Bytes()); err != nil {
		_ = file.Close()
		return nil, errors.Wrap(err, "デバイス構造体をデバイスファイルに書き込むのに失敗しました")
	}
	if err := utils.IOCtl(file, DevCreate, 0); err != nil {
		_ = file.Close()
		return nil, errors.Wrap(err, "デバイスの作成に失敗しました")
	}
	return &device{name: string(bytes.TrimRight(dev.Name[:], "\x00")), file: file}, nil
}

func (d *device) write(events ...evcode.Event) error {
	data, err := encodeEvents(events)
	if err != nil {
		return err
	}
	if _, err := d.file.Write(data); err != nil {
		return errors.Wrap(err, "イベントの書き込みに失敗しました")
	}
	return nil
}

// Name は作成時に指定したデバイス名を返す
func (d *device) Name() string {
	return d.name
}

// Close はデバイスを破棄する
func (d *device) Close() error {
	return multierr.Combine(
		utils.IOCtl(d.file, DevDestroy, 0),
		d.file.Close(),
	)
}

func evBits(types ...uintptr) []setupStep {
	steps := make([]setupStep, len(types))
	for i, t := range types {
		steps[i] = setupStep{cmd: SetEvBit, arg: t, what: "イベントタイプ"}
	}
	return steps
}
