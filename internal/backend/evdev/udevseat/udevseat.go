//go:build linux

// Package udevseat は udev のプロパティからデバイスのシートを決める
package udevseat

import (
	"strings"

	"github.com/jochenvg/go-udev"
	"github.com/pkg/errors"
)

// DefaultSeat は ID_SEAT が設定されていないデバイスのシート
const DefaultSeat = "seat0"

// Resolver は udev データベースを引いてシート名を返す。
// evdev.SeatResolver として使える。
type Resolver struct {
	u udev.Udev
}

// New は Resolver を作成する
func New() *Resolver {
	return &Resolver{}
}

// SeatName はデバイスノードに対応する udev デバイスの ID_SEAT を返す
func (r *Resolver) SeatName(path string) (string, error) {
	props, err := r.Properties(path)
	if err != nil {
		return "", err
	}
	return SeatFromProperties(props), nil
}

// Properties はデバイスノードに対応する udev デバイスのプロパティを返す
func (r *Resolver) Properties(path string) (map[string]string, error) {
	e := r.u.NewEnumerate()
	if err := e.AddMatchSubsystem("input"); err != nil {
		return nil, errors.Wrap(err, "udev の列挙条件を設定できません")
	}
	if err := e.AddMatchIsInitialized(); err != nil {
		return nil, errors.Wrap(err, "udev の列挙条件を設定できません")
	}
	devices, err := e.Devices()
	if err != nil {
		return nil, errors.Wrap(err, "udev デバイスを列挙できません")
	}
	for _, d := range devices {
		if d.Devnode() == path {
			return d.Properties(), nil
		}
	}
	return nil, errors.Errorf("udev にデバイス %s が見つかりません", path)
}

// SeatFromProperties はプロパティからシート名を決める
func SeatFromProperties(props map[string]string) string {
	if seat := props["ID_SEAT"]; seat != "" {
		return seat
	}
	return DefaultSeat
}

// Kinds は ID_INPUT_* プロパティからデバイスの種類を返す（"keyboard", "mouse" など）
func Kinds(props map[string]string) []string {
	var kinds []string
	for _, k := range []string{"keyboard", "key", "mouse", "touchpad", "touchscreen", "tablet", "joystick", "pointingstick", "trackball"} {
		if props["ID_INPUT_"+strings.ToUpper(k)] == "1" {
			kinds = append(kinds, k)
		}
	}
	return kinds
}
