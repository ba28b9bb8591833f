// Package face implements the animated face renderer: a procedural 2D
// animation engine that synthesizes a full-screen RGB565 frame from
// parametric primitives (eyes, mouth, floating hearts) at a fixed frame
// budget. Control inputs (mouth openness for lip sync, love level, blink
// triggers) arrive asynchronously from the command dispatcher; the engine
// samples them once per tick.
//
// The engine is single-threaded and cooperative: Update either renders a
// complete frame synchronously or is a no-op via the internal rate limiter.
// No partial frame is ever visible outside the engine.
package face

import (
	"math"
	"math/rand"
	"time"
)

const (
	frameIntervalMS = 25  // ~40 fps
	blinkDurationMS = 250 // full blink cycle

	// mouthOpenThreshold selects between the smile arc and the open
	// ellipse. Values just above zero still read as "closed" so tiny
	// lip-sync noise does not flicker the mouth open.
	mouthOpenThreshold = 0.12

	pupilVisibleRadius = 10 // no pupil below this compressed eye radius
	pupilMinRadius     = 4
	minEyeRadius       = 2
)

// Palette holds the face colors in RGB565. Swappable at runtime via themes.
type Palette struct {
	Background uint16
	EyeWhite   uint16
	Pupil      uint16
	Highlight  uint16
	Mouth      uint16
	MouthDark  uint16
	HeartA     uint16
	HeartB     uint16
}

// DefaultPalette is the reference look: dark navy background, white eyes,
// coral mouth, vibrant pink hearts.
func DefaultPalette() Palette {
	return Palette{
		Background: RGB565(18, 18, 40),
		EyeWhite:   RGB565(255, 255, 255),
		Pupil:      RGB565(8, 8, 18),
		Highlight:  RGB565(255, 255, 255),
		Mouth:      RGB565(230, 100, 120),
		MouthDark:  RGB565(80, 25, 40),
		HeartA:     RGB565(255, 70, 110),
		HeartB:     RGB565(255, 120, 155),
	}
}

// Config holds the cosmetic layout of the face. The behavioral thresholds
// (mouth mode boundary, pupil visibility, blink timing) are fixed constants
// and deliberately not configurable.
type Config struct {
	Width  int
	Height int

	Palette Palette

	LeftEyeX        int
	LeftEyeY        int
	RightEyeX       int
	RightEyeY       int
	EyeRadiusX      int
	EyeRadiusY      int
	PupilRadius     int
	HighlightRadius int

	MouthX             int
	MouthY             int
	MouthRadiusX       int
	MouthClosedRadiusY int
	MouthOpenRadiusY   int
	SmileDepth         int

	HeartSize      float64 // base heart radius in pixels
	FloatAmplitude float64 // max bobbing amplitude in pixels
}

// DefaultConfig matches the 480x480 reference panel layout.
func DefaultConfig() Config {
	return Config{
		Width:   480,
		Height:  480,
		Palette: DefaultPalette(),

		LeftEyeX:        165,
		LeftEyeY:        195,
		RightEyeX:       315,
		RightEyeY:       195,
		EyeRadiusX:      32,
		EyeRadiusY:      40,
		PupilRadius:     14,
		HighlightRadius: 5,

		MouthX:             240,
		MouthY:             310,
		MouthRadiusX:       48,
		MouthClosedRadiusY: 4,
		MouthOpenRadiusY:   34,
		SmileDepth:         10,

		HeartSize:      18,
		FloatAmplitude: 5,
	}
}

// Sink receives completed frames. PushFrame is assumed to transfer the
// whole frame synchronously (panel DMA or equivalent) and always return.
type Sink interface {
	PushFrame(pix []uint16, width, height int)
}

// Engine owns the framebuffer and all animation state. It must only be
// used from a single goroutine; the command dispatcher and the render loop
// share one logical thread, so no locking is done here.
type Engine struct {
	cfg  Config
	fb   *Framebuffer
	sink Sink
	now  func() int64
	rng  *rand.Rand

	enabled   bool
	mouthOpen float64
	loveLevel float64

	startMS     int64
	lastFrameMS int64

	blinking     bool
	blinkStartMS int64
	nextBlinkMS  int64

	hearts [maxHearts]heart
}

// New creates an engine rendering into sink. now is a monotonic millisecond
// clock and rng the jitter source; both may be nil to use wall-clock time
// and a time-seeded generator. Returns ErrBadSize for degenerate dimensions.
func New(cfg Config, sink Sink, now func() int64, rng *rand.Rand) (*Engine, error) {
	fb, err := NewFramebuffer(cfg.Width, cfg.Height)
	if err != nil {
		return nil, err
	}
	if now == nil {
		epoch := time.Now()
		now = func() int64 { return time.Since(epoch).Milliseconds() }
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	e := &Engine{
		cfg:  cfg,
		fb:   fb,
		sink: sink,
		now:  now,
		rng:  rng,
	}
	e.startMS = now()
	e.nextBlinkMS = e.startMS + 3000 + int64(rng.Intn(4000))
	return e, nil
}

// SetEnabled turns rendering on or off. Enabling resets the animation time
// origin and schedules a fresh blink; disabling cedes the display to
// whatever external content is shown (image mode, solid fill).
func (e *Engine) SetEnabled(on bool) {
	e.enabled = on
	if on {
		now := e.now()
		e.startMS = now
		e.lastFrameMS = 0
		e.nextBlinkMS = now + 2000 + int64(e.rng.Intn(3000))
	}
}

// Enabled reports whether the engine renders on Update.
func (e *Engine) Enabled() bool { return e.enabled }

// SetMouthOpen sets mouth openness, clamped to [0,1].
// 0 is a closed smile, 1 fully open.
func (e *Engine) SetMouthOpen(v float64) { e.mouthOpen = clamp01(v) }

// MouthOpen returns the current mouth openness.
func (e *Engine) MouthOpen() float64 { return e.mouthOpen }

// SetLoveLevel sets the love level, clamped to [0,1]. It drives the target
// count of floating hearts.
func (e *Engine) SetLoveLevel(v float64) { e.loveLevel = clamp01(v) }

// LoveLevel returns the current love level.
func (e *Engine) LoveLevel() float64 { return e.loveLevel }

// SetPalette swaps the face colors, taking effect on the next frame.
func (e *Engine) SetPalette(p Palette) { e.cfg.Palette = p }

// Palette returns the active face colors.
func (e *Engine) Palette() Palette { return e.cfg.Palette }

// TriggerBlink starts a blink immediately. Calling it again while a blink
// is in progress has no effect, so one request yields exactly one blink.
func (e *Engine) TriggerBlink() {
	if !e.blinking {
		e.blinking = true
		e.blinkStartMS = e.now()
	}
}

// Update renders one frame if the engine is enabled and the frame interval
// has elapsed. Calls arriving faster than the frame budget are no-ops, so
// it is safe to invoke on every main-loop iteration.
func (e *Engine) Update() {
	if !e.enabled || e.fb == nil {
		return
	}
	now := e.now()
	if now-e.lastFrameMS < frameIntervalMS {
		return
	}
	e.lastFrameMS = now

	t := float64(now-e.startMS) / 1000.0
	bf := e.advanceBlink(now)

	e.fb.Fill(e.cfg.Palette.Background)

	// Each element bobs independently; distinct frequencies and phases
	// keep the combined motion from looking periodic.
	lex, ley := floatOffset(t, 0.71, 0.53, 0, 0.5, e.cfg.FloatAmplitude)
	rex, rey := floatOffset(t, 0.71, 0.53, 1.05, 1.55, e.cfg.FloatAmplitude)
	mx, my := floatOffset(t, 0.62, 0.41, 2.1, 2.6, e.cfg.FloatAmplitude*0.7)

	e.drawEye(e.cfg.LeftEyeX, e.cfg.LeftEyeY, lex, ley, bf, t)
	e.drawEye(e.cfg.RightEyeX, e.cfg.RightEyeY, rex, rey, bf, t)
	e.drawMouth(mx, my)

	e.updateHearts(t)
	e.drawHearts(now)

	e.sink.PushFrame(e.fb.Pix, e.fb.W, e.fb.H)
}

// advanceBlink steps the blink state machine and returns the blink factor
// for this frame: 0 fully open, 1 fully shut.
func (e *Engine) advanceBlink(now int64) float64 {
	if e.blinking {
		bt := float64(now-e.blinkStartMS) / blinkDurationMS
		if bt >= 1 {
			e.blinking = false
			e.nextBlinkMS = now + 2500 + int64(e.rng.Intn(4500))
			return 0
		}
		return blinkCurve(bt)
	}
	if now >= e.nextBlinkMS {
		e.blinking = true
		e.blinkStartMS = now
		return 0
	}
	return 0
}

// blinkCurve maps normalized blink progress to the blink factor.
// Closing takes the first quarter, the lids hold shut until 0.45, then
// reopen over the remaining fraction. Opening slower than closing is what
// makes the motion read as a blink rather than a flicker.
func blinkCurve(bt float64) float64 {
	switch {
	case bt <= 0 || bt >= 1:
		return 0
	case bt < 0.25:
		return bt / 0.25
	case bt < 0.45:
		return 1
	default:
		return 1 - (bt-0.45)/0.55
	}
}

// floatOffset layers two sinusoids per axis to produce a gentle organic
// sway bounded by amp pixels.
func floatOffset(t, freqX, freqY, phaseX, phaseY, amp float64) (x, y float64) {
	x = math.Sin(t*freqX+phaseX)*amp + math.Sin(t*freqX*1.7+phaseX*2.3)*amp*0.3
	y = math.Sin(t*freqY+phaseY)*amp + math.Cos(t*freqY*1.3+phaseY*1.7)*amp*0.3
	return x, y
}

func (e *Engine) drawEye(baseX, baseY int, fx, fy, blink, t float64) {
	cx := baseX + int(fx)
	cy := baseY + int(fy)

	// Blink squishes the eye vertically, never below a sliver.
	ry := int(float64(e.cfg.EyeRadiusY) * (1 - blink*0.93))
	if ry < minEyeRadius {
		ry = minEyeRadius
	}

	e.fb.FillEllipse(cx, cy, e.cfg.EyeRadiusX, ry, e.cfg.Palette.EyeWhite)

	// A nearly-closed eye shows no pupil.
	if ry > pupilVisibleRadius {
		// Slow lissajous drift makes the eyes look around idly.
		lookX := math.Sin(t*0.3) * 3
		lookY := math.Cos(t*0.22) * 2
		pr := int(float64(e.cfg.PupilRadius) * float64(ry) / float64(e.cfg.EyeRadiusY))
		if pr < pupilMinRadius {
			pr = pupilMinRadius
		}
		if pr > e.cfg.PupilRadius {
			pr = e.cfg.PupilRadius
		}
		e.fb.FillCircle(cx+int(lookX), cy+2+int(lookY), pr, e.cfg.Palette.Pupil)
		e.fb.FillCircle(cx-7, cy-8, e.cfg.HighlightRadius, e.cfg.Palette.Highlight)
	}
}

func (e *Engine) drawMouth(fx, fy float64) {
	cx := e.cfg.MouthX + int(fx)
	cy := e.cfg.MouthY + int(fy)
	rx := e.cfg.MouthRadiusX

	if e.mouthOpen < mouthOpenThreshold {
		// Smile: a multi-row-thick downward arc across the mouth width.
		const thickness = 3
		for dx := -rx; dx <= rx; dx++ {
			frac := float64(dx) / float64(rx)
			curve := math.Sqrt(math.Max(0, 1-frac*frac))
			dy := int(curve * float64(e.cfg.SmileDepth))
			for i := 0; i < thickness; i++ {
				e.fb.SetPixel(cx+dx, cy+dy+i, e.cfg.Palette.Mouth)
			}
		}
		return
	}

	// Open mouth: vertical radius interpolates with openness.
	ry := e.cfg.MouthClosedRadiusY +
		int(float64(e.cfg.MouthOpenRadiusY-e.cfg.MouthClosedRadiusY)*e.mouthOpen)
	if ry < 4 {
		ry = 4
	}
	e.fb.FillEllipse(cx, cy, rx, ry, e.cfg.Palette.Mouth)
	if ry > 8 {
		e.fb.FillEllipse(cx, cy, rx-5, ry-5, e.cfg.Palette.MouthDark)
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
