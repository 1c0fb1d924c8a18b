//go:build linux

package evdev

import (
	"os"
	"unsafe"

	evdev "github.com/gvalkov/golang-evdev"
	"github.com/pkg/errors"

	"github.com/char5742/inputcore/internal/input"
	"github.com/char5742/inputcore/internal/utils"
)

const keyMax = 0x2ff

// absInfo は struct input_absinfo
type absInfo struct {
	Value      int32
	Min        int32
	Max        int32
	Fuzz       int32
	Flat       int32
	Resolution int32
}

// EVIOCGABS(abs) = _IOR('E', 0x40 + abs, struct input_absinfo)
func eviocgabs(code int) uintptr {
	return utils.IOC(utils.IOCRead, 'E', uint32(0x40+code), uint32(unsafe.Sizeof(absInfo{})))
}

// EVIOCGKEY(len) = _IOC(_IOC_READ, 'E', 0x18, len)
func eviocgkey(size int) uintptr {
	return utils.IOC(utils.IOCRead, 'E', 0x18, uint32(size))
}

// getAxisRange は絶対座標軸の範囲を取得する
func getAxisRange(f *os.File, code int) (axisRange, error) {
	var info absInfo
	if err := utils.IOCtlPtr(f, eviocgabs(code), unsafe.Pointer(&info)); err != nil {
		return axisRange{}, err
	}
	return axisRange{min: float64(info.Min), max: float64(info.Max)}, nil
}

// getPressedKeys は現在押されているキーの一覧を取得する
func getPressedKeys(f *os.File) ([]uint32, error) {
	keyBits := make([]byte, keyMax/8+1)
	if err := utils.IOCtlPtr(f, eviocgkey(len(keyBits)), unsafe.Pointer(&keyBits[0])); err != nil {
		return nil, err
	}

	var pressed []uint32
	for keyCode := 0; keyCode < keyMax; keyCode++ {
		if !isKeyboardKey(keyCode) {
			continue
		}
		if keyBits[keyCode/8]&(1<<(keyCode%8)) != 0 {
			pressed = append(pressed, uint32(keyCode))
		}
	}
	return pressed, nil
}

// capabilityCodes は golang-evdev の能力表をイベント種別ごとのコード一覧に変換する
func capabilityCodes(dev *evdev.InputDevice) map[int][]int {
	codes := make(map[int][]int, len(dev.Capabilities))
	for typ, list := range dev.Capabilities {
		for _, c := range list {
			codes[typ.Type] = append(codes[typ.Type], c.Code)
		}
	}
	return codes
}

// node はデバイスノードに対する操作
type node interface {
	Read() ([]evdev.InputEvent, error)
	Grab() error
	Release() error
	Fd() int32
	PressedKeys() ([]uint32, error)
	Close() error
}

// evdevNode は golang-evdev で開いたデバイスノード
type evdevNode struct {
	*evdev.InputDevice
}

func (n evdevNode) Fd() int32 {
	return int32(n.File.Fd())
}

func (n evdevNode) PressedKeys() ([]uint32, error) {
	return getPressedKeys(n.File)
}

func (n evdevNode) Close() error {
	return n.File.Close()
}

// device は開いている evdev デバイス
type device struct {
	path    string
	name    string
	dev     node
	info    deviceInfo
	decoder *decoder
	seatID  uint64
	grabbed bool
}

// openDevice はデバイスノードを開き、種類と座標の範囲を調べる
func openDevice(path string, settings func(path, name string) DeviceSettings) (*device, error) {
	dev, err := evdev.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "デバイス %s を開けません", path)
	}

	info := classify(capabilityCodes(dev))
	if info.touch || info.absolutePointer {
		info.x, _ = getAxisRange(dev.File, evdev.ABS_X)
		info.y, _ = getAxisRange(dev.File, evdev.ABS_Y)
	}
	if info.multiTouch {
		info.mtX, _ = getAxisRange(dev.File, evdev.ABS_MT_POSITION_X)
		info.mtY, _ = getAxisRange(dev.File, evdev.ABS_MT_POSITION_Y)
	}

	return &device{
		path:    path,
		name:    dev.Name,
		dev:     evdevNode{dev},
		info:    info,
		decoder: newDecoder(info, settings(path, dev.Name)),
	}, nil
}

func (d *device) capabilities() input.SeatCapabilities {
	return d.info.capabilities()
}

func (d *device) fd() int32 {
	return d.dev.Fd()
}

// setGrab はデバイスの専有状態を切り替える
func (d *device) setGrab(grab bool) error {
	if grab == d.grabbed {
		return nil
	}
	var err error
	if grab {
		err = d.dev.Grab()
	} else {
		err = d.dev.Release()
	}
	if err != nil {
		return err
	}
	d.grabbed = grab
	return nil
}

func (d *device) close() error {
	if d.grabbed {
		_ = d.dev.Release()
		d.grabbed = false
	}
	return d.dev.Close()
}
