// Package command implements the panel's line-oriented control protocol.
// Every request is one JSON object per line:
//
//	{"cmd":"face","on":true}          animated face on/off
//	{"cmd":"mouth","open":0.4}        mouth openness (lip sync)
//	{"cmd":"love","value":0.8}        love level, drives floating hearts
//	{"cmd":"blink"}                   trigger a manual blink
//	{"cmd":"clear","color":"#RRGGBB"} fill screen with a color
//	{"cmd":"bl","on":false}           backlight control
//	{"cmd":"image","len":N}           raw JPEG follows, N bytes
//	{"cmd":"tone","freq":F,"dur":D}   forward a tone to the buzzer board
//	{"cmd":"melody","notes":"..."}    forward a melody
//	{"cmd":"stop"}                    stop the buzzer
//	{"cmd":"theme","slot":N}          apply a stored color theme
//	{"cmd":"theme","slot":N,"save":true}  store the current colors
//	{"cmd":"wifi"}                    report network status
//
// Every request gets exactly one JSON status line back. Touch and button
// events are pushed as unsolicited lines with an "event" key.
package command

import (
	"bytes"
	"encoding/json"
	"errors"
	"image"
	"image/jpeg"
	"io"
	"strconv"

	"github.com/ferretbit/tinygo-deskpet/pkg/config"
	"github.com/ferretbit/tinygo-deskpet/pkg/face"
)

// MaxImageSize bounds the JPEG payload of an image command.
const MaxImageSize = 100 * 1024

// FaceControl is the slice of the animation engine the dispatcher drives.
type FaceControl interface {
	SetEnabled(on bool)
	SetMouthOpen(v float64)
	SetLoveLevel(v float64)
	TriggerBlink()
	SetPalette(p face.Palette)
	Palette() face.Palette
}

// DisplayControl is the slice of the display the dispatcher drives.
type DisplayControl interface {
	Fill(color uint16)
	SetBacklight(on bool)
	ShowImage(pix []uint16, width, height int)
}

// BuzzerLink forwards audio requests to the buzzer board.
type BuzzerLink interface {
	Tone(freqHz, durationMs int) error
	Melody(notes string) error
	Stop() error
}

// NetworkInfo reports the state of the TCP command transport.
type NetworkInfo interface {
	IP() (addr string, connected bool)
	Port() int
}

// ThemeStore loads and saves stored color themes by slot.
type ThemeStore interface {
	LoadTheme(slot uint8, theme *config.Theme) error
	SaveTheme(slot uint8, theme *config.Theme) error
}

// Dispatcher routes parsed commands to the panel subsystems. Any nil
// collaborator turns its commands into error replies instead of panics.
type Dispatcher struct {
	Face    FaceControl
	Display DisplayControl
	Buzzer  BuzzerLink
	Net     NetworkInfo
	Themes  ThemeStore
	Out     io.Writer
}

// request is the union of all command fields. Pointers distinguish
// "absent" from zero so defaults match the documented behavior.
type request struct {
	Cmd   string   `json:"cmd"`
	On    *bool    `json:"on,omitempty"`
	Open  *float64 `json:"open,omitempty"`
	Value *float64 `json:"value,omitempty"`
	Color string   `json:"color,omitempty"`
	Freq  *int     `json:"freq,omitempty"`
	Dur   *int     `json:"dur,omitempty"`
	Notes string   `json:"notes,omitempty"`
	Len   int      `json:"len,omitempty"`
	Slot  *int     `json:"slot,omitempty"`
	Save  bool     `json:"save,omitempty"`
	Name  string   `json:"name,omitempty"`
}

type response struct {
	Status string `json:"status"`
	Msg    string `json:"msg,omitempty"`
	IP     string `json:"ip,omitempty"`
	Port   int    `json:"port,omitempty"`
}

// HandleLine parses and executes one command line. src is the transport
// the line arrived on; the image command reads its binary payload from
// there. Replies go to Out.
func (d *Dispatcher) HandleLine(line string, src io.Reader) {
	var req request
	if err := json.Unmarshal([]byte(line), &req); err != nil {
		d.replyError("bad json")
		return
	}
	if req.Cmd == "" {
		d.replyError("no cmd")
		return
	}

	switch req.Cmd {
	case "face":
		if d.Face == nil || d.Display == nil {
			d.replyError("not available")
			return
		}
		on := false
		if req.On != nil {
			on = *req.On
		}
		d.Face.SetEnabled(on)
		if !on {
			d.Display.Fill(0x0000)
		}
		d.replyOK()

	case "mouth":
		if d.Face == nil {
			d.replyError("not available")
			return
		}
		open := 0.0
		if req.Open != nil {
			open = *req.Open
		}
		d.Face.SetMouthOpen(open)
		d.replyOK()

	case "love":
		if d.Face == nil {
			d.replyError("not available")
			return
		}
		value := 0.0
		if req.Value != nil {
			value = *req.Value
		}
		d.Face.SetLoveLevel(value)
		d.replyOK()

	case "blink":
		if d.Face == nil {
			d.replyError("not available")
			return
		}
		d.Face.TriggerBlink()
		d.replyOK()

	case "clear":
		if d.Display == nil {
			d.replyError("not available")
			return
		}
		color := req.Color
		if color == "" {
			color = "#000000"
		}
		rgb, err := ParseHexColor(color)
		if err != nil {
			d.replyError("bad color")
			return
		}
		if d.Face != nil {
			d.Face.SetEnabled(false)
		}
		d.Display.Fill(rgb)
		d.replyOK()

	case "bl":
		if d.Display == nil {
			d.replyError("not available")
			return
		}
		on := true
		if req.On != nil {
			on = *req.On
		}
		d.Display.SetBacklight(on)
		d.replyOK()

	case "image":
		d.handleImage(req.Len, src)

	case "tone":
		if d.Buzzer == nil {
			d.replyError("no buzzer")
			return
		}
		freq, dur := 1000, 200
		if req.Freq != nil {
			freq = *req.Freq
		}
		if req.Dur != nil {
			dur = *req.Dur
		}
		if err := d.Buzzer.Tone(freq, dur); err != nil {
			d.replyError("buzzer write failed")
			return
		}
		d.replyOK()

	case "melody":
		if d.Buzzer == nil {
			d.replyError("no buzzer")
			return
		}
		if err := d.Buzzer.Melody(req.Notes); err != nil {
			d.replyError("buzzer write failed")
			return
		}
		d.replyOK()

	case "stop":
		if d.Buzzer == nil {
			d.replyError("no buzzer")
			return
		}
		if err := d.Buzzer.Stop(); err != nil {
			d.replyError("buzzer write failed")
			return
		}
		d.replyOK()

	case "theme":
		d.handleTheme(&req)

	case "wifi":
		if d.Net == nil {
			d.reply(response{Status: "ok", IP: "none", Msg: "wifi not connected"})
			return
		}
		if addr, connected := d.Net.IP(); connected {
			d.reply(response{Status: "ok", IP: addr, Port: d.Net.Port()})
		} else {
			d.reply(response{Status: "ok", IP: "none", Msg: "wifi not connected"})
		}

	default:
		d.replyError("unknown cmd")
	}
}

// handleImage receives a raw JPEG payload and paints it. The face is
// disabled first so the render loop stops fighting over the panel.
func (d *Dispatcher) handleImage(length int, src io.Reader) {
	if d.Display == nil {
		d.replyError("not available")
		return
	}
	if length <= 0 || length > MaxImageSize {
		d.replyError("bad len " + strconv.Itoa(length))
		return
	}
	if d.Face != nil {
		d.Face.SetEnabled(false)
	}

	// Tell the sender to start streaming the payload
	d.reply(response{Status: "ready"})

	buf := make([]byte, length)
	n, err := io.ReadFull(src, buf)
	if err != nil {
		d.replyError("got " + strconv.Itoa(n) + "/" + strconv.Itoa(length))
		return
	}

	img, err := jpeg.Decode(bytes.NewReader(buf))
	if err != nil {
		d.replyError("jpeg decode fail")
		return
	}

	pix, w, h := imageToRGB565(img)
	d.Display.ShowImage(pix, w, h)
	d.replyOK()
}

func (d *Dispatcher) handleTheme(req *request) {
	if d.Themes == nil || d.Face == nil {
		d.replyError("not available")
		return
	}
	if req.Slot == nil || *req.Slot < 0 || *req.Slot > 255 {
		d.replyError("bad slot")
		return
	}
	slot := uint8(*req.Slot)
	if req.Save {
		name := req.Name
		if name == "" {
			name = "slot " + strconv.Itoa(int(slot))
		}
		theme := config.ThemeFromPalette(d.Face.Palette(), name)
		if err := d.Themes.SaveTheme(slot, &theme); err != nil {
			d.replyError("theme save failed")
			return
		}
		d.replyOK()
		return
	}
	var theme config.Theme
	if err := d.Themes.LoadTheme(slot, &theme); err != nil {
		d.replyError("theme not found")
		return
	}
	d.Face.SetPalette(theme.Palette())
	d.replyOK()
}

// EmitTouch pushes an unsolicited touch event line.
func (d *Dispatcher) EmitTouch(x, y int16) {
	d.writeLine(struct {
		Event string `json:"event"`
		X     int16  `json:"x"`
		Y     int16  `json:"y"`
	}{"touch", x, y})
}

// EmitButton pushes an unsolicited button event line.
func (d *Dispatcher) EmitButton(pressed bool) {
	d.writeLine(struct {
		Event   string `json:"event"`
		Pressed bool   `json:"pressed"`
	}{"button", pressed})
}

func (d *Dispatcher) replyOK() {
	d.reply(response{Status: "ok"})
}

func (d *Dispatcher) replyError(msg string) {
	d.reply(response{Status: "error", Msg: msg})
}

func (d *Dispatcher) reply(r response) {
	d.writeLine(r)
}

func (d *Dispatcher) writeLine(v interface{}) {
	if d.Out == nil {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	d.Out.Write(append(data, '\n'))
}

var errBadColor = errors.New("bad hex color")

// ParseHexColor converts "#RRGGBB" (or "RRGGBB") to RGB565.
func ParseHexColor(s string) (uint16, error) {
	if len(s) > 0 && s[0] == '#' {
		s = s[1:]
	}
	if len(s) != 6 {
		return 0, errBadColor
	}
	rgb, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, errBadColor
	}
	return face.RGB565(uint8(rgb>>16), uint8(rgb>>8), uint8(rgb)), nil
}

// imageToRGB565 converts a decoded image to an RGB565 pixel slice.
func imageToRGB565(img image.Image) ([]uint16, int, int) {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	pix := make([]uint16, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			pix[y*w+x] = face.RGB565(uint8(r>>8), uint8(g>>8), uint8(b>>8))
		}
	}
	return pix, w, h
}
