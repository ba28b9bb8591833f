// Package display drives the panel's ST7701S LCD controller. Configuration
// happens over a bit-banged 3-wire 9-bit SPI bus: clock and data are MCU
// pins, chip select and reset live on the I/O expander. Pixel data itself
// flows over the separate 16-bit RGB parallel bus.
package display

import (
	"errors"
)

// Pin is a single output line. machine.Pin and ioexp.OutputPin both
// satisfy it.
type Pin interface {
	Set(high bool)
}

// Geometry of the round panel.
const (
	Width  = 480
	Height = 480
)

var ErrFrameSize = errors.New("frame size mismatch")

// Controller owns the ST7701S configuration interface.
type Controller struct {
	clk     Pin
	mosi    Pin
	cs      Pin
	rst     Pin
	delayUS func(us int)
}

// NewController wires up the control pins. delayUS paces the bit-banged
// bus; pass nil on the host where pacing is irrelevant.
func NewController(clk, mosi, cs, rst Pin, delayUS func(us int)) *Controller {
	if delayUS == nil {
		delayUS = func(int) {}
	}
	return &Controller{clk: clk, mosi: mosi, cs: cs, rst: rst, delayUS: delayUS}
}

// initOp is one step of the init sequence: a command, its parameters,
// and an optional settle delay afterwards.
type initOp struct {
	cmd     uint8
	data    []uint8
	delayMS int
}

// ST7701S init sequence for the 480x480 round RGB panel. Mostly opaque
// vendor gamma and GIP tables; the meaningful entries are the line count
// (0xC0), pixel format (0x3A), sleep out (0x11) and display on (0x29).
var initSequence = []initOp{
	// Command2 BK0
	{0xFF, []uint8{0x77, 0x01, 0x00, 0x00, 0x10}, 0},
	{0xC0, []uint8{0x3B, 0x00}, 0}, // 480 lines
	{0xC1, []uint8{0x0D, 0x02}, 0}, // porch
	{0xC2, []uint8{0x31, 0x05}, 0}, // inversion & frame rate
	{0xC7, []uint8{0x04}, 0},
	{0xCD, []uint8{0x08}, 0},
	{0xB0, []uint8{0x00, 0x11, 0x18, 0x0E, 0x11, 0x06, 0x07, 0x08, 0x07, 0x22, 0x04, 0x12, 0x0F, 0xAA, 0x31, 0x18}, 0}, // positive gamma
	{0xB1, []uint8{0x00, 0x11, 0x19, 0x0E, 0x12, 0x07, 0x08, 0x08, 0x08, 0x22, 0x04, 0x11, 0x11, 0xA9, 0x32, 0x18}, 0}, // negative gamma

	// Command2 BK1
	{0xFF, []uint8{0x77, 0x01, 0x00, 0x00, 0x11}, 0},
	{0xB0, []uint8{0x60}, 0}, // Vop
	{0xB1, []uint8{0x32}, 0}, // VCOM
	{0xB2, []uint8{0x07}, 0}, // VGH
	{0xB3, []uint8{0x80}, 0},
	{0xB5, []uint8{0x49}, 0}, // VGL
	{0xB7, []uint8{0x85}, 0},
	{0xB8, []uint8{0x21}, 0},
	{0xC1, []uint8{0x78}, 0},
	{0xC2, []uint8{0x78}, 20},

	// GIP
	{0xE0, []uint8{0x00, 0x1B, 0x02}, 0},
	{0xE1, []uint8{0x08, 0xA0, 0x00, 0x00, 0x07, 0xA0, 0x00, 0x00, 0x00, 0x44, 0x44}, 0},
	{0xE2, []uint8{0x11, 0x11, 0x44, 0x44, 0xED, 0xA0, 0x00, 0x00, 0xEC, 0xA0, 0x00, 0x00}, 0},
	{0xE3, []uint8{0x00, 0x00, 0x11, 0x11}, 0},
	{0xE4, []uint8{0x44, 0x44}, 0},
	{0xE5, []uint8{0x0A, 0xE9, 0xD8, 0xA0, 0x0C, 0xEB, 0xD8, 0xA0, 0x0E, 0xED, 0xD8, 0xA0, 0x10, 0xEF, 0xD8, 0xA0}, 0},
	{0xE6, []uint8{0x00, 0x00, 0x11, 0x11}, 0},
	{0xE7, []uint8{0x44, 0x44}, 0},
	{0xE8, []uint8{0x09, 0xE8, 0xD8, 0xA0, 0x0B, 0xEA, 0xD8, 0xA0, 0x0D, 0xEC, 0xD8, 0xA0, 0x0F, 0xEE, 0xD8, 0xA0}, 0},
	{0xEB, []uint8{0x02, 0x00, 0xE4, 0xE4, 0x88, 0x00, 0x40}, 0},
	{0xEC, []uint8{0x3C, 0x00}, 0},
	{0xED, []uint8{0xAB, 0x89, 0x76, 0x54, 0x02, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0x20, 0x45, 0x67, 0x98, 0xBA}, 0},

	{0x36, []uint8{0x10}, 0}, // MADCTL: flip horizontal

	// Command2 BK3
	{0xFF, []uint8{0x77, 0x01, 0x00, 0x00, 0x13}, 0},
	{0xE5, []uint8{0xE4}, 0},

	// Exit Command2
	{0xFF, []uint8{0x77, 0x01, 0x00, 0x00, 0x00}, 0},

	{0x3A, []uint8{0x60}, 0},   // pixel format RGB666 on the 16-bit bus
	{0x21, nil, 0},             // display inversion on
	{0x11, nil, 120},           // sleep out
	{0x29, nil, 120},           // display on
}

// Reset pulses the panel reset line.
func (c *Controller) Reset(delayMS func(ms int)) {
	c.rst.Set(false)
	delayMS(10)
	c.rst.Set(true)
	delayMS(120)
}

// Init runs the full ST7701S register setup. delayMS provides the
// inter-step settle waits.
func (c *Controller) Init(delayMS func(ms int)) {
	// idle bus state
	c.cs.Set(true)
	c.clk.Set(false)
	c.mosi.Set(false)

	for _, op := range initSequence {
		c.writeCommand(op.cmd)
		for _, d := range op.data {
			c.writeData(d)
		}
		if op.delayMS > 0 {
			delayMS(op.delayMS)
		}
	}

	// leave lines high
	c.cs.Set(true)
	c.clk.Set(true)
	c.mosi.Set(true)
}

// writeCommand sends a command byte with the DC bit clear.
func (c *Controller) writeCommand(cmd uint8) {
	c.send9(uint16(cmd))
}

// writeData sends a parameter byte with the DC bit set.
func (c *Controller) writeData(d uint8) {
	c.send9(0x0100 | uint16(d))
}

// send9 clocks out 9 bits MSB first: bit 8 is DC, bits 7..0 are the byte.
// Data is sampled by the panel on the rising clock edge.
func (c *Controller) send9(word uint16) {
	c.cs.Set(false)
	c.clk.Set(false)
	c.delayUS(10)

	for n := 0; n < 9; n++ {
		c.mosi.Set(word&0x0100 != 0)
		word <<= 1
		c.clk.Set(true)
		c.delayUS(10)
		c.clk.Set(false)
		c.delayUS(10)
	}

	c.cs.Set(true)
	c.delayUS(10)
}
