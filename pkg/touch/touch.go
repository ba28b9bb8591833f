// Package touch reads the panel's capacitive touch controller. Boards in
// the field carry either an FT6336U or a CST816S, so the driver probes
// both at init and adapts its register map to whichever answers.
package touch

import (
	"errors"

	"tinygo.org/x/drivers"
)

// I2C addresses of the known controllers.
const (
	ft6336Addr    = 0x38
	cst816Addr    = 0x15
	cst816AddrAlt = 0x14
)

// First register of the 5-byte point block (count, xH, xL, yH, yL).
const (
	ft6336PointReg = 0x02
	cst816PointReg = 0x03
)

var ErrNoController = errors.New("no touch controller found")

// Kind identifies the detected controller.
type Kind uint8

const (
	KindNone Kind = iota
	KindFT6336
	KindCST816
)

func (k Kind) String() string {
	switch k {
	case KindFT6336:
		return "FT6336U"
	case KindCST816:
		return "CST816S"
	}
	return "none"
}

// Point is one touch sample.
type Point struct {
	X, Y    int16
	Touched bool
}

// Device is the detected touch controller.
type Device struct {
	bus      drivers.I2C
	address  uint16
	kind     Kind
	pointReg uint8
}

// Probe detects which touch controller is present on the bus.
// FT6336U is checked first, then both CST816S addresses.
func Probe(bus drivers.I2C) (*Device, error) {
	candidates := []struct {
		addr uint16
		kind Kind
		reg  uint8
	}{
		{ft6336Addr, KindFT6336, ft6336PointReg},
		{cst816Addr, KindCST816, cst816PointReg},
		{cst816AddrAlt, KindCST816, cst816PointReg},
	}

	for _, c := range candidates {
		// An empty write acts as an address probe
		if err := bus.Tx(c.addr, []byte{0x00}, nil); err == nil {
			return &Device{
				bus:      bus,
				address:  c.addr,
				kind:     c.kind,
				pointReg: c.reg,
			}, nil
		}
	}
	return nil, ErrNoController
}

// Kind reports which controller was detected.
func (d *Device) Kind() Kind {
	return d.kind
}

// Read samples the current touch state. A read error or an implausible
// touch count reads as "not touched".
func (d *Device) Read() Point {
	buf := make([]byte, 5)
	if err := d.bus.Tx(d.address, []byte{d.pointReg}, buf); err != nil {
		return Point{}
	}

	numTouches := buf[0] & 0x0F
	if numTouches == 0 || numTouches > 2 {
		return Point{}
	}

	return Point{
		X:       int16(buf[1]&0x0F)<<8 | int16(buf[2]),
		Y:       int16(buf[3]&0x0F)<<8 | int16(buf[4]),
		Touched: true,
	}
}

// Debouncer turns raw touch samples into rising-edge events with a
// cooldown, so one finger press produces one event.
type Debouncer struct {
	cooldownMS int64
	lastDown   bool
	lastFireMS int64
}

func NewDebouncer(cooldownMS int64) *Debouncer {
	return &Debouncer{cooldownMS: cooldownMS}
}

// Feed consumes one sample and reports whether it is a new touch event.
func (db *Debouncer) Feed(p Point, nowMS int64) bool {
	wasDown := db.lastDown
	db.lastDown = p.Touched

	if !p.Touched || wasDown {
		return false
	}
	if nowMS-db.lastFireMS < db.cooldownMS {
		return false
	}
	db.lastFireMS = nowMS
	return true
}
