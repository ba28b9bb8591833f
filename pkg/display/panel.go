package display

// FrameWriter pushes a full RGB565 frame out the parallel bus. On the
// device this is backed by the RGB peripheral's DMA buffer; the simulator
// backs it with a terminal renderer.
type FrameWriter interface {
	WriteFrame(pix []uint16, width, height int) error
}

// Panel is the complete display: controller, backlight, and frame output.
// It satisfies face.Sink.
type Panel struct {
	ctrl      *Controller
	backlight Pin
	out       FrameWriter
	blOn      bool
	scratch   []uint16
}

func NewPanel(ctrl *Controller, backlight Pin, out FrameWriter) *Panel {
	return &Panel{ctrl: ctrl, backlight: backlight, out: out}
}

// Startup resets and initializes the controller, then turns the
// backlight on.
func (p *Panel) Startup(delayMS func(ms int)) {
	p.ctrl.Reset(delayMS)
	p.ctrl.Init(delayMS)
	p.SetBacklight(true)
}

// SetBacklight switches the backlight enable line.
func (p *Panel) SetBacklight(on bool) {
	p.blOn = on
	p.backlight.Set(on)
}

// Backlight reports the current backlight state.
func (p *Panel) Backlight() bool {
	return p.blOn
}

// PushFrame sends a rendered frame to the panel. Frames of the wrong
// size are dropped rather than smeared across the bus.
func (p *Panel) PushFrame(pix []uint16, width, height int) {
	if len(pix) != width*height {
		return
	}
	p.out.WriteFrame(pix, width, height)
}

// Fill writes a solid color frame. Used for the clear command and the
// blank boot mode. The scratch buffer is reused across calls to keep the
// render path allocation-free after the first fill.
func (p *Panel) Fill(color uint16) {
	buf := p.scratchFrame()
	for i := range buf {
		buf[i] = color
	}
	p.out.WriteFrame(buf, Width, Height)
}

// ShowImage paints a decoded image letterboxed on black. Images larger
// than the panel are cropped to the centered Width×Height window.
func (p *Panel) ShowImage(pix []uint16, width, height int) {
	if len(pix) != width*height || width <= 0 || height <= 0 {
		return
	}
	buf := p.scratchFrame()
	for i := range buf {
		buf[i] = 0x0000
	}

	// Centered copy window, clipped on both sides.
	dx := (Width - width) / 2
	dy := (Height - height) / 2
	for sy := 0; sy < height; sy++ {
		y := sy + dy
		if y < 0 || y >= Height {
			continue
		}
		for sx := 0; sx < width; sx++ {
			x := sx + dx
			if x < 0 || x >= Width {
				continue
			}
			buf[y*Width+x] = pix[sy*width+sx]
		}
	}
	p.out.WriteFrame(buf, Width, Height)
}

func (p *Panel) scratchFrame() []uint16 {
	if p.scratch == nil {
		p.scratch = make([]uint16, Width*Height)
	}
	return p.scratch
}
