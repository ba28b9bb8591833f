package face

import (
	"errors"
	"math"
)

var (
	// ErrBadSize is returned when a framebuffer cannot be created with the
	// requested dimensions. The caller may keep running with the engine
	// disabled instead of treating this as fatal.
	ErrBadSize = errors.New("framebuffer dimensions must be positive")
)

// RGB565 packs an 8-bit RGB color into the panel's native 16-bit format.
func RGB565(r, g, b uint8) uint16 {
	return uint16(r>>3)<<11 | uint16(g>>2)<<5 | uint16(b>>3)
}

// Framebuffer is a fixed-size RGB565 pixel grid. It is exclusively owned by
// the render engine and always rewritten in full before being handed to the
// display sink, so readers never observe a partial frame.
type Framebuffer struct {
	Pix []uint16
	W   int
	H   int
}

// NewFramebuffer allocates a w×h framebuffer.
func NewFramebuffer(w, h int) (*Framebuffer, error) {
	if w <= 0 || h <= 0 {
		return nil, ErrBadSize
	}
	return &Framebuffer{
		Pix: make([]uint16, w*h),
		W:   w,
		H:   h,
	}, nil
}

// Fill overwrites every pixel with c.
func (fb *Framebuffer) Fill(c uint16) {
	for i := range fb.Pix {
		fb.Pix[i] = c
	}
}

// SetPixel writes one pixel, silently dropping out-of-bounds coordinates.
func (fb *Framebuffer) SetPixel(x, y int, c uint16) {
	if uint(x) < uint(fb.W) && uint(y) < uint(fb.H) {
		fb.Pix[y*fb.W+x] = c
	}
}

// At returns the pixel at (x, y), or 0 when out of bounds.
func (fb *Framebuffer) At(x, y int) uint16 {
	if uint(x) < uint(fb.W) && uint(y) < uint(fb.H) {
		return fb.Pix[y*fb.W+x]
	}
	return 0
}

// HLine fills the horizontal span [x1..x2] on row y, clipped to the buffer.
func (fb *Framebuffer) HLine(x1, x2, y int, c uint16) {
	if y < 0 || y >= fb.H {
		return
	}
	if x1 > x2 {
		x1, x2 = x2, x1
	}
	if x1 < 0 {
		x1 = 0
	}
	if x2 >= fb.W {
		x2 = fb.W - 1
	}
	row := fb.Pix[y*fb.W : y*fb.W+fb.W]
	for x := x1; x <= x2; x++ {
		row[x] = c
	}
}

// FillEllipse rasterizes a filled ellipse by horizontal scanlines.
// Degenerate radii draw nothing.
func (fb *Framebuffer) FillEllipse(cx, cy, rx, ry int, c uint16) {
	if rx <= 0 || ry <= 0 {
		return
	}
	invRy2 := 1.0 / (float64(ry) * float64(ry))
	for dy := -ry; dy <= ry; dy++ {
		ratio := 1.0 - float64(dy*dy)*invRy2
		if ratio <= 0 {
			continue
		}
		dx := int(float64(rx) * math.Sqrt(ratio))
		fb.HLine(cx-dx, cx+dx, cy+dy, c)
	}
}

// FillCircle rasterizes a filled circle of radius r.
func (fb *Framebuffer) FillCircle(cx, cy, r int, c uint16) {
	fb.FillEllipse(cx, cy, r, r, c)
}

// FillHeart rasterizes a filled heart from the implicit inequality
// (x²+y²−1)³ − x²y³ ≤ 0, evaluated per pixel in a normalized frame centered
// on (cx, cy) and scaled by size. The vertical axis is flipped so the point
// of the heart faces down in screen coordinates.
func (fb *Framebuffer) FillHeart(cx, cy int, size float64, c uint16) {
	if size <= 0 {
		return
	}
	sz := int(size + 0.5)
	invSz := 1.0 / size
	for dy := -sz; dy <= sz; dy++ {
		ny := -float64(dy) * invSz
		y2 := ny * ny
		for dx := -sz; dx <= sz; dx++ {
			nx := float64(dx) * invSz
			x2 := nx * nx
			inner := x2 + y2 - 1.0
			if inner*inner*inner-x2*y2*ny <= 0 {
				fb.SetPixel(cx+dx, cy+dy, c)
			}
		}
	}
}
