package evdev

import (
	"path/filepath"
	"time"
)

// Config は evdev バックエンドの設定
type Config struct {
	// PollTimeout は DispatchNewEvents がデバイスを待つ時間。0 なら待たず、負なら無期限に待つ。
	PollTimeout Duration `toml:"poll_timeout" json:"poll_timeout"`
	// Globs は開くデバイスノードのパターン
	Globs []string `toml:"globs" json:"globs"`
	// Defaults は個別の設定がないデバイスに使う設定
	Defaults DeviceSettings `toml:"defaults" json:"defaults"`
	// Devices はデバイスごとの設定。デバイスが接続されると項目が追加される。
	Devices []*DeviceSettings `toml:"devices" json:"devices"`
}

// Duration は TOML で "100ms" のように書ける時間
type Duration struct {
	time.Duration
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// DeviceSettings はひとつのデバイスの設定
type DeviceSettings struct {
	// Path と Name はデバイスとの照合に使う。空の項目は照合しない。
	Path string `toml:"path,omitempty" json:"path,omitempty"`
	Name string `toml:"name,omitempty" json:"name,omitempty"`

	Disabled      bool    `toml:"disabled" json:"disabled"`             // 開かない
	Grab          bool    `toml:"grab" json:"grab"`                     // 他のプログラムに入力を渡さない
	LeftHanded    bool    `toml:"left_handed" json:"left_handed"`       // 左右のボタンを入れ替える
	NaturalScroll bool    `toml:"natural_scroll" json:"natural_scroll"` // スクロールの向きを反転する
	ScrollFactor  float64 `toml:"scroll_factor" json:"scroll_factor"`   // スクロール量の倍率。0 なら 1
	TiltWheel     bool    `toml:"tilt_wheel" json:"tilt_wheel"`         // 横ホイールを傾きとして扱う
	Smoothing     float64 `toml:"smoothing" json:"smoothing"`           // 相対移動の平滑化係数 (0.0-1.0)
	WarmUp        int     `toml:"warm_up" json:"warm_up"`               // 平滑化を始めるまでのイベント数
	// Calibration は正規化した座標 (0-1) に掛ける 2x3 の行列。空なら単位行列。
	Calibration []float64 `toml:"calibration,omitempty" json:"calibration,omitempty"`
}

// DefaultConfig はデフォルト設定を返す
func DefaultConfig() Config {
	return Config{
		PollTimeout: Duration{100 * time.Millisecond},
		Globs:       []string{"/dev/input/event*"},
		Defaults: DeviceSettings{
			ScrollFactor: 1,
		},
	}
}

// matches は設定の項目がデバイスに該当するかを返す
func (s *DeviceSettings) matches(path, name string) bool {
	if s.Path == "" && s.Name == "" {
		return false
	}
	if s.Path != "" {
		if ok, _ := filepath.Match(s.Path, path); !ok {
			return false
		}
	}
	return s.Name == "" || s.Name == name
}

// Settings はデバイスに適用される設定を返す
func (c *Config) Settings(path, name string) DeviceSettings {
	for _, s := range c.Devices {
		if s != nil && s.matches(path, name) {
			return *s
		}
	}
	return c.Defaults
}

// ensure はデバイスの設定項目がなければ既定値から作成する。作成した場合は true を返す。
func (c *Config) ensure(path, name string) bool {
	for _, s := range c.Devices {
		if s != nil && s.matches(path, name) {
			return false
		}
	}
	s := c.Defaults
	s.Path = path
	s.Name = name
	if c.Defaults.Calibration != nil {
		s.Calibration = append([]float64(nil), c.Defaults.Calibration...)
	}
	c.Devices = append(c.Devices, &s)
	return true
}

func (s DeviceSettings) scrollFactor() float64 {
	if s.ScrollFactor == 0 {
		return 1
	}
	return s.ScrollFactor
}

// calibrate は正規化された座標に校正行列を適用する
func (s DeviceSettings) calibrate(nx, ny float64) (float64, float64) {
	m := s.Calibration
	if len(m) != 6 {
		return nx, ny
	}
	return m[0]*nx + m[1]*ny + m[2], m[3]*nx + m[4]*ny + m[5]
}
