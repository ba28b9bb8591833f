// Package config defines the configuration data for the face panel:
// global device settings and face color themes. All structs use fixed-size
// binary layouts suitable for flash storage and zero-allocation decoding.
package config

import (
	"encoding/binary"
	"errors"

	"github.com/ferretbit/tinygo-deskpet/pkg/face"
)

// CurrentVersion is the config format version.
// Bump this when making breaking changes to the config format.
// When firmware boots and finds a different version in flash, configs are wiped.
const CurrentVersion uint16 = 1

// Boot modes for the face panel.
const (
	BootModeFace  uint8 = iota // start in animated face mode
	BootModeBlank              // start with a black screen, wait for commands
)

// DeviceConfigSize is the binary size of DeviceConfig.
const DeviceConfigSize = 16

// DeviceConfig holds global panel settings.
// Layout (16 bytes):
//
//	[0-1]:   Version (uint16)
//	[2-5]:   Flags (uint32)
//	[6]:     Brightness (uint8)
//	[7]:     BootMode (uint8)
//	[8]:     ActiveTheme (uint8)
//	[9]:     Reserved1 (uint8)
//	[10-11]: TouchCooldownMs (uint16)
//	[12-15]: Reserved2 (uint32)
type DeviceConfig struct {
	Version         uint16 // Config format version
	Flags           uint32 // Global feature flags
	Brightness      uint8  // Backlight brightness 0-255
	BootMode        uint8  // Display mode on boot
	ActiveTheme     uint8  // Theme slot applied on boot
	Reserved1       uint8  // Padding
	TouchCooldownMs uint16 // Touch event debounce window
	Reserved2       uint32 // Reserved for future use
}

// ThemeSize is the binary size of Theme.
const ThemeSize = 28

// Theme is one face color palette, slot-addressed in storage.
// Layout (28 bytes):
//
//	[0-1]:   Version (uint16)
//	[2-17]:  Eight RGB565 colors (uint16 each)
//	[18-25]: Name ([8]byte, null-terminated if shorter)
//	[26-27]: Reserved (uint16)
type Theme struct {
	Version    uint16
	Background uint16
	EyeWhite   uint16
	Pupil      uint16
	Highlight  uint16
	Mouth      uint16
	MouthDark  uint16
	HeartA     uint16
	HeartB     uint16
	Name       [8]byte
	Reserved   uint16
}

var (
	ErrInvalidSize = errors.New("invalid config size")
)

// DefaultDeviceConfig returns the settings a factory-fresh panel boots with.
func DefaultDeviceConfig() DeviceConfig {
	return DeviceConfig{
		Version:         CurrentVersion,
		Brightness:      255,
		BootMode:        BootModeFace,
		TouchCooldownMs: 500,
	}
}

// MarshalBinary implements encoding.BinaryMarshaler for DeviceConfig.
func (d *DeviceConfig) MarshalBinary() ([]byte, error) {
	buf := make([]byte, DeviceConfigSize)
	binary.LittleEndian.PutUint16(buf[0:], d.Version)
	binary.LittleEndian.PutUint32(buf[2:], d.Flags)
	buf[6] = d.Brightness
	buf[7] = d.BootMode
	buf[8] = d.ActiveTheme
	buf[9] = d.Reserved1
	binary.LittleEndian.PutUint16(buf[10:], d.TouchCooldownMs)
	binary.LittleEndian.PutUint32(buf[12:], d.Reserved2)
	return buf, nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler for DeviceConfig.
func (d *DeviceConfig) UnmarshalBinary(data []byte) error {
	if len(data) < DeviceConfigSize {
		return ErrInvalidSize
	}
	d.Version = binary.LittleEndian.Uint16(data[0:])
	d.Flags = binary.LittleEndian.Uint32(data[2:])
	d.Brightness = data[6]
	d.BootMode = data[7]
	d.ActiveTheme = data[8]
	d.Reserved1 = data[9]
	d.TouchCooldownMs = binary.LittleEndian.Uint16(data[10:])
	d.Reserved2 = binary.LittleEndian.Uint32(data[12:])
	return nil
}

// MarshalBinary implements encoding.BinaryMarshaler for Theme.
func (t *Theme) MarshalBinary() ([]byte, error) {
	buf := make([]byte, ThemeSize)
	binary.LittleEndian.PutUint16(buf[0:], t.Version)
	colors := [8]uint16{
		t.Background, t.EyeWhite, t.Pupil, t.Highlight,
		t.Mouth, t.MouthDark, t.HeartA, t.HeartB,
	}
	for i, c := range colors {
		binary.LittleEndian.PutUint16(buf[2+i*2:], c)
	}
	copy(buf[18:26], t.Name[:])
	binary.LittleEndian.PutUint16(buf[26:], t.Reserved)
	return buf, nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler for Theme.
func (t *Theme) UnmarshalBinary(data []byte) error {
	if len(data) < ThemeSize {
		return ErrInvalidSize
	}
	t.Version = binary.LittleEndian.Uint16(data[0:])
	t.Background = binary.LittleEndian.Uint16(data[2:])
	t.EyeWhite = binary.LittleEndian.Uint16(data[4:])
	t.Pupil = binary.LittleEndian.Uint16(data[6:])
	t.Highlight = binary.LittleEndian.Uint16(data[8:])
	t.Mouth = binary.LittleEndian.Uint16(data[10:])
	t.MouthDark = binary.LittleEndian.Uint16(data[12:])
	t.HeartA = binary.LittleEndian.Uint16(data[14:])
	t.HeartB = binary.LittleEndian.Uint16(data[16:])
	copy(t.Name[:], data[18:26])
	t.Reserved = binary.LittleEndian.Uint16(data[26:])
	return nil
}

// Palette converts the theme to the renderer's palette type.
func (t *Theme) Palette() face.Palette {
	return face.Palette{
		Background: t.Background,
		EyeWhite:   t.EyeWhite,
		Pupil:      t.Pupil,
		Highlight:  t.Highlight,
		Mouth:      t.Mouth,
		MouthDark:  t.MouthDark,
		HeartA:     t.HeartA,
		HeartB:     t.HeartB,
	}
}

// ThemeFromPalette builds a storable theme from a live palette.
func ThemeFromPalette(p face.Palette, name string) Theme {
	t := Theme{
		Version:    CurrentVersion,
		Background: p.Background,
		EyeWhite:   p.EyeWhite,
		Pupil:      p.Pupil,
		Highlight:  p.Highlight,
		Mouth:      p.Mouth,
		MouthDark:  p.MouthDark,
		HeartA:     p.HeartA,
		HeartB:     p.HeartB,
	}
	t.SetName(name)
	return t
}

// GetName returns the theme name as a string (up to null terminator).
func (t *Theme) GetName() string {
	for i, b := range t.Name {
		if b == 0 {
			return string(t.Name[:i])
		}
	}
	return string(t.Name[:])
}

// SetName sets the theme name from a string.
// If the name is longer than 7 bytes, it is truncated.
// The name is always null-terminated, and the bytes past it are zeroed
// so equal names marshal to equal bytes regardless of history.
func (t *Theme) SetName(name string) {
	t.Name = [8]byte{}
	b := []byte(name)
	if len(b) > 7 {
		b = b[:7]
	}
	copy(t.Name[:], b)
}
