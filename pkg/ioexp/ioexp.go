// Package ioexp drives the TCA9535 16-bit I2C I/O expander. On the face
// panel it owns the display control lines (SPI chip select, reset) and the
// touch controller reset, which are not wired to MCU pins directly.
package ioexp

import (
	"errors"

	"tinygo.org/x/drivers"
)

// DefaultAddress is the TCA9535 address with all address pins low.
const DefaultAddress = 0x20

// TCA9535 register map.
const (
	regInputPort0  = 0x00
	regInputPort1  = 0x01
	regOutputPort0 = 0x02
	regOutputPort1 = 0x03
	regConfigPort0 = 0x06
	regConfigPort1 = 0x07
)

var ErrBadPin = errors.New("pin out of range")

// Device is a connected TCA9535.
type Device struct {
	bus     drivers.I2C
	address uint16
	output  [2]uint8 // shadow of the output port registers
	config  [2]uint8 // shadow of the direction registers, 1 = input
}

// New creates a Device handle. Call Configure before use.
func New(bus drivers.I2C, address uint16) *Device {
	return &Device{
		bus:     bus,
		address: address,
		config:  [2]uint8{0xFF, 0xFF}, // power-on default: all inputs
	}
}

// Configure makes all 16 pins outputs driven low. The panel has no
// expander inputs, so this is the only mode we set up.
func (d *Device) Configure() error {
	d.output = [2]uint8{0x00, 0x00}
	if err := d.writeReg(regOutputPort0, d.output[0]); err != nil {
		return err
	}
	if err := d.writeReg(regOutputPort1, d.output[1]); err != nil {
		return err
	}
	d.config = [2]uint8{0x00, 0x00}
	if err := d.writeReg(regConfigPort0, d.config[0]); err != nil {
		return err
	}
	return d.writeReg(regConfigPort1, d.config[1])
}

// SetPin drives one expander pin (0-15) high or low.
func (d *Device) SetPin(pin uint8, high bool) error {
	if pin > 15 {
		return ErrBadPin
	}
	port := pin / 8
	mask := uint8(1) << (pin % 8)

	prev := d.output[port]
	if high {
		d.output[port] |= mask
	} else {
		d.output[port] &^= mask
	}
	if d.output[port] == prev {
		return nil
	}

	reg := uint8(regOutputPort0)
	if port == 1 {
		reg = regOutputPort1
	}
	return d.writeReg(reg, d.output[port])
}

// GetPin reads back the shadowed output state of a pin.
func (d *Device) GetPin(pin uint8) (bool, error) {
	if pin > 15 {
		return false, ErrBadPin
	}
	return d.output[pin/8]&(1<<(pin%8)) != 0, nil
}

// ReadInputs returns the raw state of both input port registers.
func (d *Device) ReadInputs() (uint16, error) {
	buf := make([]byte, 2)
	if err := d.bus.Tx(d.address, []byte{regInputPort0}, buf); err != nil {
		return 0, err
	}
	return uint16(buf[0]) | uint16(buf[1])<<8, nil
}

func (d *Device) writeReg(reg, value uint8) error {
	return d.bus.Tx(d.address, []byte{reg, value}, nil)
}

// Pin returns an OutputPin bound to one expander pin. It satisfies the
// pin interface the display driver bit-bangs through.
func (d *Device) Pin(pin uint8) OutputPin {
	return OutputPin{dev: d, pin: pin}
}

// OutputPin is a single expander output with a Set method matching
// machine.Pin's signature.
type OutputPin struct {
	dev *Device
	pin uint8
}

func (p OutputPin) Set(high bool) {
	p.dev.SetPin(p.pin, high)
}
