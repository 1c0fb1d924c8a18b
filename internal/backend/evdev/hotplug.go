package evdev

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
)

// DeviceEventType はデバイスイベントの種類を表す
type DeviceEventType int

const (
	DeviceAdded DeviceEventType = iota
	DeviceRemoved
	DeviceChanged // 権限の変更など。開けなかったデバイスを再試行する契機になる
)

func (t DeviceEventType) String() string {
	switch t {
	case DeviceAdded:
		return "added"
	case DeviceRemoved:
		return "removed"
	case DeviceChanged:
		return "changed"
	}
	return "unknown"
}

// DeviceEvent はデバイスノードの変化を表す
type DeviceEvent struct {
	Type DeviceEventType
	Path string
}

// DeviceMonitor はデバイスディレクトリを監視し、デバイスノードの追加と削除を報告する。
// 変化は内部でためられ、Poll でブロックせずに取り出せる。
type DeviceMonitor struct {
	watcher *fsnotify.Watcher
	dir     string
	prefix  string
}

// NewDeviceMonitor は dir 以下の prefix で始まるノードを監視する
func NewDeviceMonitor(dir, prefix string) (*DeviceMonitor, error) {
	if _, err := os.Stat(dir); err != nil {
		return nil, errors.Wrapf(err, "ディレクトリ %s を監視できません", dir)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "ファイル監視の作成に失敗しました")
	}
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return nil, errors.Wrapf(err, "ディレクトリの監視に失敗しました: %s", dir)
	}
	return &DeviceMonitor{watcher: watcher, dir: dir, prefix: prefix}, nil
}

// Poll はこれまでに届いた変化を返す。変化がなければすぐに戻る。
func (dm *DeviceMonitor) Poll() ([]DeviceEvent, error) {
	var events []DeviceEvent
	for {
		select {
		case ev, ok := <-dm.watcher.Events:
			if !ok {
				return events, errors.New("イベントチャネルが閉じられました")
			}
			if de, ok := dm.translate(ev); ok {
				events = append(events, de)
			}
		case err, ok := <-dm.watcher.Errors:
			if !ok {
				return events, errors.New("エラーチャネルが閉じられました")
			}
			return events, errors.Wrap(err, "ファイルシステム監視エラー")
		default:
			return events, nil
		}
	}
}

func (dm *DeviceMonitor) translate(ev fsnotify.Event) (DeviceEvent, bool) {
	if !strings.HasPrefix(filepath.Base(ev.Name), dm.prefix) {
		return DeviceEvent{}, false
	}
	switch {
	case ev.Has(fsnotify.Create):
		return DeviceEvent{Type: DeviceAdded, Path: ev.Name}, true
	case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
		return DeviceEvent{Type: DeviceRemoved, Path: ev.Name}, true
	case ev.Has(fsnotify.Chmod), ev.Has(fsnotify.Write):
		return DeviceEvent{Type: DeviceChanged, Path: ev.Name}, true
	}
	return DeviceEvent{}, false
}

// Close は監視を停止する
func (dm *DeviceMonitor) Close() error {
	return dm.watcher.Close()
}
