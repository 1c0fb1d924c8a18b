//go:build linux

package evdev

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/char5742/inputcore/internal/input"
)

// DeviceDescription はスキャンで見つかったデバイスの説明
type DeviceDescription struct {
	Path         string                 `json:"path"`
	Name         string                 `json:"name"`
	IDs          []string               `json:"ids,omitempty"` // /dev/input/by-id のリンク名
	Capabilities input.SeatCapabilities `json:"capabilities"`
	MultiTouch   bool                   `json:"multi_touch"`
	Error        string                 `json:"error,omitempty"`
}

// globDevices はパターンに一致するデバイスノードを重複なく名前順に返す
func globDevices(globs []string) ([]string, error) {
	seen := make(map[string]bool)
	var paths []string
	for _, g := range globs {
		matches, err := filepath.Glob(g)
		if err != nil {
			return nil, errors.Wrapf(err, "パターン %q が不正です", g)
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				paths = append(paths, m)
			}
		}
	}
	sort.Strings(paths)
	return paths, nil
}

// byIDLinks は by-id ディレクトリのリンクを実際のデバイスノードごとにまとめる
func byIDLinks(dir string) map[string][]string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	links := make(map[string][]string)
	for _, entry := range entries {
		// eventが含まれない場合はスキップ
		if !strings.Contains(entry.Name(), "event") {
			continue
		}
		realPath, err := os.Readlink(filepath.Join(dir, entry.Name()))
		if err != nil {
			continue
		}
		absPath := realPath
		if !strings.HasPrefix(realPath, "/") {
			absPath = filepath.Join(filepath.Dir(dir), filepath.Base(realPath))
		}
		links[absPath] = append(links[absPath], entry.Name())
	}
	return links
}

// ScanDevices はパターンに一致するデバイスを開いて種類を調べる。
// 開けなかったデバイスも Error を付けて返す。
func ScanDevices(globs []string) ([]DeviceDescription, error) {
	paths, err := globDevices(globs)
	if err != nil {
		return nil, err
	}
	links := byIDLinks("/dev/input/by-id")

	out := make([]DeviceDescription, 0, len(paths))
	for _, path := range paths {
		desc := DeviceDescription{Path: path, IDs: links[path]}
		dev, err := openDevice(path, func(string, string) DeviceSettings { return DeviceSettings{} })
		if err != nil {
			desc.Error = err.Error()
			out = append(out, desc)
			continue
		}
		desc.Name = dev.name
		desc.Capabilities = dev.capabilities()
		desc.MultiTouch = dev.info.multiTouch
		_ = dev.close()
		out = append(out, desc)
	}
	return out, nil
}
