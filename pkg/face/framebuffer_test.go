package face

import "testing"

const testColor uint16 = 0xF800

func TestRGB565Packing(t *testing.T) {
	tests := []struct {
		name    string
		r, g, b uint8
		want    uint16
	}{
		{"black", 0, 0, 0, 0x0000},
		{"white", 255, 255, 255, 0xFFFF},
		{"red", 255, 0, 0, 0xF800},
		{"green", 0, 255, 0, 0x07E0},
		{"blue", 0, 0, 255, 0x001F},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RGB565(tt.r, tt.g, tt.b); got != tt.want {
				t.Errorf("expected 0x%04X, got 0x%04X", tt.want, got)
			}
		})
	}
}

func TestSetPixelBounds(t *testing.T) {
	fb, err := NewFramebuffer(8, 8)
	if err != nil {
		t.Fatalf("NewFramebuffer failed: %v", err)
	}

	// Out-of-bounds writes must be silently dropped.
	for _, p := range [][2]int{{-1, 0}, {0, -1}, {8, 0}, {0, 8}, {-100, -100}} {
		fb.SetPixel(p[0], p[1], testColor)
	}
	for _, v := range fb.Pix {
		if v != 0 {
			t.Fatal("out-of-bounds SetPixel modified the buffer")
		}
	}

	fb.SetPixel(3, 4, testColor)
	if fb.At(3, 4) != testColor {
		t.Error("in-bounds SetPixel did not stick")
	}
	if fb.At(-1, 0) != 0 || fb.At(8, 8) != 0 {
		t.Error("out-of-bounds At should return 0")
	}
}

func TestHLineClipping(t *testing.T) {
	fb, _ := NewFramebuffer(10, 4)

	tests := []struct {
		name       string
		x1, x2, y  int
		wantPixels int
	}{
		{"fully inside", 2, 7, 1, 6},
		{"swapped endpoints", 7, 2, 1, 6},
		{"clipped left", -5, 3, 2, 4},
		{"clipped right", 6, 50, 2, 4},
		{"spanning", -10, 100, 0, 10},
		{"above", 0, 9, -1, 0},
		{"below", 0, 9, 4, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fb.Fill(0)
			fb.HLine(tt.x1, tt.x2, tt.y, testColor)
			got := 0
			for _, v := range fb.Pix {
				if v == testColor {
					got++
				}
			}
			if got != tt.wantPixels {
				t.Errorf("expected %d pixels, got %d", tt.wantPixels, got)
			}
		})
	}
}

func TestDegenerateShapesDrawNothing(t *testing.T) {
	fb, _ := NewFramebuffer(16, 16)

	fb.FillEllipse(8, 8, 0, 5, testColor)
	fb.FillEllipse(8, 8, 5, 0, testColor)
	fb.FillEllipse(8, 8, -3, -3, testColor)
	fb.FillCircle(8, 8, 0, testColor)
	fb.FillCircle(8, 8, -1, testColor)
	fb.FillHeart(8, 8, 0, testColor)
	fb.FillHeart(8, 8, -2, testColor)

	for _, v := range fb.Pix {
		if v != 0 {
			t.Fatal("degenerate shape modified the buffer")
		}
	}
}

func TestFillEllipseCoversCenterAndClips(t *testing.T) {
	fb, _ := NewFramebuffer(20, 20)

	// Ellipse partially off every edge must not fault and must fill the
	// center.
	fb.FillEllipse(0, 0, 30, 30, testColor)
	if fb.At(0, 0) != testColor {
		t.Error("ellipse center not filled")
	}

	fb.Fill(0)
	fb.FillEllipse(10, 10, 4, 6, testColor)
	if fb.At(10, 10) != testColor {
		t.Error("center not filled")
	}
	if fb.At(10, 4) != 0 || fb.At(10, 16) != 0 {
		t.Error("pixels beyond vertical radius filled")
	}
	if fb.At(5, 10) != 0 || fb.At(15, 10) != 0 {
		t.Error("pixels beyond horizontal radius filled")
	}
}

func TestFillHeartShape(t *testing.T) {
	fb, _ := NewFramebuffer(64, 64)
	fb.FillHeart(32, 32, 16, testColor)

	if fb.At(32, 32) != testColor {
		t.Error("heart center not filled")
	}
	// The two lobes sit above center, left and right.
	if fb.At(32-7, 32-8) != testColor || fb.At(32+7, 32-8) != testColor {
		t.Error("heart lobes not filled")
	}
	// The point faces down in screen coordinates: the shape is wider in
	// the lobes above center than at the mirrored row below.
	if fb.At(32+12, 32-8) != testColor {
		t.Error("upper lobe row not filled at dx=12")
	}
	if fb.At(32+12, 32+8) == testColor {
		t.Error("lower row should have narrowed at dx=12")
	}
	if fb.At(32, 32+13) != testColor {
		t.Error("heart point not filled below center")
	}
	// Horizontal symmetry.
	for dy := -16; dy <= 16; dy++ {
		for dx := 1; dx <= 16; dx++ {
			if fb.At(32-dx, 32+dy) != fb.At(32+dx, 32+dy) {
				t.Fatalf("asymmetry at dx=%d dy=%d", dx, dy)
			}
		}
	}
}
