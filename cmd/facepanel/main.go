//go:build tinygo

// facepanel is the firmware for the round-display module: it renders the
// animated face, executes JSON commands arriving over USB serial, and
// forwards audio requests to the buzzer board over the internal UART.
package main

import (
	"machine"
	"math/rand"
	"time"

	"github.com/ferretbit/tinygo-deskpet/pkg/command"
	"github.com/ferretbit/tinygo-deskpet/pkg/config"
	"github.com/ferretbit/tinygo-deskpet/pkg/display"
	"github.com/ferretbit/tinygo-deskpet/pkg/face"
	"github.com/ferretbit/tinygo-deskpet/pkg/ioexp"
	"github.com/ferretbit/tinygo-deskpet/pkg/lineio"
	"github.com/ferretbit/tinygo-deskpet/pkg/storage"
	"github.com/ferretbit/tinygo-deskpet/pkg/tone"
	"github.com/ferretbit/tinygo-deskpet/pkg/touch"
)

// Board wiring.
const (
	pinSDA     = machine.GPIO39
	pinSCL     = machine.GPIO40
	pinLCDClk  = machine.GPIO41
	pinLCDMosi = machine.GPIO48
	pinLCDBl   = machine.GPIO45
	pinUartTX  = machine.GPIO19
	pinUartRX  = machine.GPIO20
	pinButton  = machine.GPIO38
)

// Expander pin assignments.
const (
	expLCDCS    = 4
	expLCDRst   = 5
	expTouchRst = 7
)

func main() {
	time.Sleep(200 * time.Millisecond) // let USB enumerate

	// I2C bus shared by the expander and the touch controller
	i2c := machine.I2C0
	i2c.Configure(machine.I2CConfig{SDA: pinSDA, SCL: pinSCL, Frequency: 400_000})

	exp := ioexp.New(i2c, ioexp.DefaultAddress)
	exp.Configure()

	// Release the touch controller from reset before probing it
	exp.SetPin(expTouchRst, false)
	time.Sleep(10 * time.Millisecond)
	exp.SetPin(expTouchRst, true)

	// Display control lines: CLK/MOSI are direct GPIOs, CS/RST sit on
	// the expander
	pinLCDClk.Configure(machine.PinConfig{Mode: machine.PinOutput})
	pinLCDMosi.Configure(machine.PinConfig{Mode: machine.PinOutput})
	pinLCDBl.Configure(machine.PinConfig{Mode: machine.PinOutput})

	ctrl := display.NewController(
		pinLCDClk, pinLCDMosi,
		exp.Pin(expLCDCS), exp.Pin(expLCDRst),
		func(us int) { time.Sleep(time.Duration(us) * time.Microsecond) },
	)
	panel := display.NewPanel(ctrl, pinLCDBl, newRGBBus())
	panel.Startup(func(ms int) { time.Sleep(time.Duration(ms) * time.Millisecond) })

	// Persistent settings in on-chip flash
	deviceCfg := config.DefaultDeviceConfig()
	store, err := storage.New(machine.Flash, true)
	if err == nil {
		var saved config.DeviceConfig
		if store.LoadDevice(&saved) == nil {
			deviceCfg = saved
		}
	}

	// Face engine pushes frames straight into the panel
	engine, err := face.New(face.DefaultConfig(), panel, nil, rand.New(rand.NewSource(time.Now().UnixNano())))
	if err != nil {
		panic(err)
	}
	if store != nil {
		var theme config.Theme
		if store.LoadTheme(deviceCfg.ActiveTheme, &theme) == nil {
			engine.SetPalette(theme.Palette())
		}
	}
	var themes command.ThemeStore
	if store != nil {
		themes = store
	}
	engine.SetEnabled(deviceCfg.BootMode == config.BootModeFace)
	if deviceCfg.Brightness == 0 {
		panel.SetBacklight(false)
	}

	// UART link to the buzzer board
	uart := machine.UART1
	uart.Configure(machine.UARTConfig{TX: pinUartTX, RX: pinUartRX, BaudRate: 115200})
	buzzer := &buzzerLink{link: lineio.NewReader(uart)}

	// Command channel over USB serial
	serial := machine.Serial
	reader := lineio.NewReader(serial)
	dispatcher := &command.Dispatcher{
		Face:    engine,
		Display: panel,
		Buzzer:  buzzer,
		Themes:  themes,
		Out:     serial,
	}

	// Touch input, best effort; boards without a working controller fall
	// back to the physical button
	var touchDev *touch.Device
	if dev, err := touch.Probe(i2c); err == nil {
		touchDev = dev
	}
	debounce := touch.NewDebouncer(int64(deviceCfg.TouchCooldownMs))

	pinButton.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
	buttonDown := false

	nowMS := func() int64 { return time.Now().UnixMilli() }
	lastTouchPoll := int64(0)

	// Bulk payload reads (the image command) give up on stalled senders
	// instead of wedging the main loop
	payload := lineio.NewStreamReader(serial, 2*time.Second)

	for {
		if line, ok := reader.Poll(); ok {
			dispatcher.HandleLine(line, payload)
		}

		now := nowMS()
		if touchDev != nil && now-lastTouchPoll >= 20 {
			lastTouchPoll = now
			p := touchDev.Read()
			if debounce.Feed(p, now) {
				dispatcher.EmitTouch(p.X, p.Y)
			}
		}

		if pressed := !pinButton.Get(); pressed != buttonDown {
			buttonDown = pressed
			dispatcher.EmitButton(pressed)
		}

		engine.Update()
	}
}

// buzzerLink frames tone requests onto the internal UART.
type buzzerLink struct {
	link *lineio.Reader
}

func (b *buzzerLink) Tone(freqHz, durationMs int) error {
	return b.link.WriteLine(tone.FormatTone(freqHz, durationMs))
}

func (b *buzzerLink) Melody(notes string) error {
	return b.link.WriteLine("MELODY " + notes)
}

func (b *buzzerLink) Stop() error {
	return b.link.WriteLine("STOP")
}
