package config

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
)

// Watcher は設定ファイルの変更を監視する。
// エディタによる置き換えも拾えるよう、ファイルではなく親ディレクトリを監視する。
type Watcher struct {
	watcher *fsnotify.Watcher
	path    string
}

// NewWatcher は configPath の監視を開始する
func NewWatcher(configPath string) (*Watcher, error) {
	path, err := filepath.Abs(configPath)
	if err != nil {
		return nil, errors.Wrap(err, "設定ファイルのパスを解決できません")
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "ファイル監視の作成に失敗しました")
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		_ = watcher.Close()
		return nil, errors.Wrapf(err, "設定ディレクトリの監視に失敗しました: %s", filepath.Dir(path))
	}
	return &Watcher{watcher: watcher, path: path}, nil
}

// Poll は前回から設定ファイルが変更されていれば読み直した設定を返す。
// 変更がなければすぐに (nil, nil) を返す。
func (w *Watcher) Poll() (*Config, error) {
	changed := false
	for {
		select {
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return nil, errors.New("イベントチャネルが閉じられました")
			}
			if filepath.Clean(ev.Name) == w.path && (ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)) {
				changed = true
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil, errors.New("エラーチャネルが閉じられました")
			}
			return nil, errors.Wrap(err, "ファイルシステム監視エラー")
		default:
			if !changed {
				return nil, nil
			}
			return LoadConfig(w.path)
		}
	}
}

// Path は監視している設定ファイルのパスを返す
func (w *Watcher) Path() string {
	return w.path
}

// Close は監視を停止する
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
