//go:build tinygo

package main

import (
	"machine"

	"github.com/ferretbit/tinygo-deskpet/pkg/display"
)

// RGB parallel bus pins: DATA0..15 carry B[4:0] G[5:0] R[4:0].
var rgbDataPins = [16]machine.Pin{
	machine.GPIO15, machine.GPIO14, machine.GPIO13, machine.GPIO12,
	machine.GPIO11, machine.GPIO10, machine.GPIO9, machine.GPIO8,
	machine.GPIO7, machine.GPIO6, machine.GPIO5, machine.GPIO4,
	machine.GPIO3, machine.GPIO2, machine.GPIO1, machine.GPIO0,
}

const (
	pinVsync = machine.GPIO17
	pinHsync = machine.GPIO16
	pinDE    = machine.GPIO18
	pinPclk  = machine.GPIO21
)

// rgbBus drives the panel's 16-bit RGB interface. The ST7701S in RGB mode
// has no framebuffer of its own, so a scanout goroutine re-sends the
// front buffer continuously while WriteFrame swaps in new content.
type rgbBus struct {
	front []uint16
}

func newRGBBus() *rgbBus {
	for _, p := range rgbDataPins {
		p.Configure(machine.PinConfig{Mode: machine.PinOutput})
	}
	pinVsync.Configure(machine.PinConfig{Mode: machine.PinOutput})
	pinHsync.Configure(machine.PinConfig{Mode: machine.PinOutput})
	pinDE.Configure(machine.PinConfig{Mode: machine.PinOutput})
	pinPclk.Configure(machine.PinConfig{Mode: machine.PinOutput})

	b := &rgbBus{
		front: make([]uint16, display.Width*display.Height),
	}
	go b.scanout()
	return b
}

// WriteFrame replaces the front buffer. The scanout goroutine picks the
// new content up on its next pass.
func (b *rgbBus) WriteFrame(pix []uint16, width, height int) error {
	if width != display.Width || height != display.Height {
		return display.ErrFrameSize
	}
	copy(b.front, pix)
	return nil
}

func (b *rgbBus) scanout() {
	for {
		b.sendFrame()
	}
}

func (b *rgbBus) sendFrame() {
	pinVsync.Low()
	pinVsync.High()

	idx := 0
	for y := 0; y < display.Height; y++ {
		pinHsync.Low()
		pinHsync.High()
		pinDE.High()
		for x := 0; x < display.Width; x++ {
			putPixel(b.front[idx])
			idx++
		}
		pinDE.Low()
	}
}

func putPixel(v uint16) {
	for bit, p := range rgbDataPins {
		p.Set(v&(1<<bit) != 0)
	}
	pinPclk.High()
	pinPclk.Low()
}
