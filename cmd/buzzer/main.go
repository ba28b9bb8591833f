//go:build tinygo

// buzzer is the firmware for the companion's second MCU. It listens for
// tone commands on the internal UART from the face panel (and on USB
// serial for bench testing) and drives the piezo with PWM.
package main

import (
	"machine"

	"github.com/ferretbit/tinygo-deskpet/pkg/lineio"
	"github.com/ferretbit/tinygo-deskpet/pkg/tone"
)

const (
	pinBuzzer = machine.GPIO19
	pinUartTX = machine.GPIO20
	pinUartRX = machine.GPIO21
)

func main() {
	uart := machine.UART1
	uart.Configure(machine.UARTConfig{TX: pinUartTX, RX: pinUartRX, BaudRate: 115200})

	buz, err := newPWMBuzzer(pinBuzzer)
	if err != nil {
		panic(err)
	}

	requests := make(chan tone.Request, 4)
	go playLoop(buz, requests)

	// Startup chirp signals the panel we are alive
	requests <- tone.Request{Kind: tone.KindMelody, Notes: []tone.Note{
		{FreqHz: 1000, DurationMs: 100},
		{FreqHz: 0, DurationMs: 50},
		{FreqHz: 1500, DurationMs: 100},
	}}

	uartReader := lineio.NewReader(uart)
	usbReader := lineio.NewReader(machine.Serial)

	uartReader.WriteLine("READY")

	for {
		if line, ok := uartReader.Poll(); ok {
			dispatch(line, requests)
		}
		if line, ok := usbReader.Poll(); ok {
			dispatch(line, requests)
		}
	}
}

func dispatch(line string, requests chan tone.Request) {
	req, err := tone.Parse(line)
	if err != nil {
		return // garbage on the wire is dropped silently
	}
	select {
	case requests <- req:
	default:
		// Queue full; drop rather than block the serial loop
	}
}

// pwm is the slice of the machine PWM peripheral the buzzer uses. The
// concrete type is unexported in the machine package.
type pwm interface {
	Configure(machine.PWMConfig) error
	Channel(machine.Pin) (uint8, error)
	SetPeriod(uint64) error
	Set(channel uint8, value uint32)
	Top() uint32
}

// pwmBuzzer drives the piezo with a 50% duty square wave.
type pwmBuzzer struct {
	pwm     pwm
	channel uint8
}

func newPWMBuzzer(pin machine.Pin) (*pwmBuzzer, error) {
	pin.Configure(machine.PinConfig{Mode: machine.PinPWM})

	var group pwm = machine.PWM1 // GPIO19 sits on PWM slice 1
	if err := group.Configure(machine.PWMConfig{Period: 1e9 / 1000}); err != nil {
		return nil, err
	}
	ch, err := group.Channel(pin)
	if err != nil {
		return nil, err
	}

	b := &pwmBuzzer{pwm: group, channel: ch}
	b.Silence()
	return b, nil
}

func (b *pwmBuzzer) Play(freqHz int) {
	b.pwm.SetPeriod(uint64(1e9 / freqHz))
	b.pwm.Set(b.channel, b.pwm.Top()/2)
}

func (b *pwmBuzzer) Silence() {
	b.pwm.Set(b.channel, 0)
}
