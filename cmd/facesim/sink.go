package main

import (
	"github.com/gdamore/tcell/v2"
)

// termSink renders RGB565 frames into a terminal. Each cell shows two
// vertically stacked samples using the upper-half-block glyph: the
// foreground colors the top half, the background the bottom.
type termSink struct {
	screen tcell.Screen
}

func (s *termSink) PushFrame(pix []uint16, width, height int) {
	cols, rows := s.screen.Size()
	if cols == 0 || rows == 0 {
		return
	}

	for cy := 0; cy < rows; cy++ {
		topY := (cy * 2) * height / (rows * 2)
		botY := (cy*2 + 1) * height / (rows * 2)
		for cx := 0; cx < cols; cx++ {
			x := cx * width / cols
			top := colorOf(pix[topY*width+x])
			bot := colorOf(pix[botY*width+x])
			style := tcell.StyleDefault.Foreground(top).Background(bot)
			s.screen.SetContent(cx, cy, '▀', nil, style)
		}
	}
	s.screen.Show()
}

// colorOf expands an RGB565 pixel to a 24-bit tcell color.
func colorOf(v uint16) tcell.Color {
	r5 := int32(v>>11) & 0x1F
	g6 := int32(v>>5) & 0x3F
	b5 := int32(v) & 0x1F

	// Replicate high bits into the low bits so full-scale maps to 255
	r := r5<<3 | r5>>2
	g := g6<<2 | g6>>4
	b := b5<<3 | b5>>2

	return tcell.NewRGBColor(r, g, b)
}
