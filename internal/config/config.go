package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"

	"github.com/char5742/inputcore/internal/backend/evdev"
	"github.com/char5742/inputcore/internal/backend/remote"
	"github.com/char5742/inputcore/internal/backend/window"
)

// FileName は既定の設定ファイル名
const FileName = "config.toml"

// Config はアプリケーション全体の設定を表す構造体
type Config struct {
	Log    LogConfig    `toml:"log" json:"log"`
	Evdev  evdev.Config `toml:"evdev" json:"evdev"`
	Remote RemoteConfig `toml:"remote" json:"remote"`
	Window WindowConfig `toml:"window" json:"window"`
	API    APIConfig    `toml:"api" json:"api"`
}

// LogConfig はログ出力の設定
type LogConfig struct {
	Level string `toml:"level" json:"level"` // debug, info, warn, error
}

// RemoteConfig はリモートバックエンドの設定
type RemoteConfig struct {
	Listen    string        `toml:"listen" json:"listen"` // websocket を待ち受けるアドレス
	Path      string        `toml:"path" json:"path"`
	QueueSize int           `toml:"queue_size" json:"queue_size"`
	Surface   remote.Config `toml:"surface" json:"surface"` // 接続直後に使う座標空間
}

// WindowConfig はウィンドウバックエンドの設定
type WindowConfig struct {
	Title  string        `toml:"title" json:"title"`
	Width  int           `toml:"width" json:"width"`
	Height int           `toml:"height" json:"height"`
	SeatID uint64        `toml:"seat_id" json:"seat_id"`
	Input  window.Config `toml:"input" json:"input"`
}

// APIConfig は HTTP API の設定
type APIConfig struct {
	Port int `toml:"port" json:"port"`
	// EventBuffer はイベントストリームの購読者ごとのバッファ長。あふれたメッセージは捨てられる。
	EventBuffer int `toml:"event_buffer" json:"event_buffer"`
}

// DefaultConfig はデフォルト設定を返す
func DefaultConfig() *Config {
	return &Config{
		Log: LogConfig{
			Level: "info",
		},
		Evdev: evdev.DefaultConfig(),
		Remote: RemoteConfig{
			Listen:    ":9090",
			Path:      "/input",
			QueueSize: remote.DefaultQueueSize,
			Surface:   remote.DefaultConfig(),
		},
		Window: WindowConfig{
			Title:  "inputcore",
			Width:  1280,
			Height: 720,
			Input:  window.DefaultConfig(),
		},
		API: APIConfig{
			Port:        8080,
			EventBuffer: 256,
		},
	}
}

// GetDefaultConfigDir は設定ファイルを置くディレクトリを返す
func GetDefaultConfigDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", errors.Wrap(err, "ユーザー設定ディレクトリの取得に失敗しました")
	}
	return filepath.Join(dir, "inputcore"), nil
}

// DefaultConfigPath は既定の設定ファイルのパスを返す
func DefaultConfigPath() (string, error) {
	dir, err := GetDefaultConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, FileName), nil
}

// LoadConfig は設定ファイルから設定を読み込む。
// ファイルが存在しない場合はデフォルト設定を保存して返す。
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := SaveConfig(configPath, config); err != nil {
			return config, err
		}
		return config, nil
	}

	if _, err := toml.DecodeFile(configPath, config); err != nil {
		return config, errors.Wrapf(err, "設定ファイル %s の解析に失敗しました", configPath)
	}
	return config, nil
}

// SaveConfig は設定をTOMLファイルに保存する
func SaveConfig(configPath string, config *Config) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return errors.Wrap(err, "設定ディレクトリの作成に失敗しました")
	}

	// 書き込み途中のファイルを Watcher に読ませないよう、一時ファイルから置き換える
	tmp, err := os.CreateTemp(filepath.Dir(configPath), "."+filepath.Base(configPath)+".*")
	if err != nil {
		return errors.Wrap(err, "一時ファイルの作成に失敗しました")
	}
	defer os.Remove(tmp.Name())

	if err := toml.NewEncoder(tmp).Encode(config); err != nil {
		_ = tmp.Close()
		return errors.Wrap(err, "設定のエンコードに失敗しました")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "設定の書き込みに失敗しました")
	}
	return errors.Wrap(os.Rename(tmp.Name(), configPath), "設定ファイルの置き換えに失敗しました")
}
