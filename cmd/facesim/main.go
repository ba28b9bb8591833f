// facesim previews the face animation in a terminal, no hardware needed.
// It runs the same engine as the firmware against a tcell renderer.
//
// Keys:
//
//	b        trigger a blink
//	m / M    mouth more closed / more open
//	l / L    love level down / up
//	f        toggle the face on/off
//	q / Esc  quit
package main

import (
	"log"
	"math/rand"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/ferretbit/tinygo-deskpet/pkg/face"
)

func main() {
	screen, err := tcell.NewScreen()
	if err != nil {
		log.Fatal(err)
	}
	if err := screen.Init(); err != nil {
		log.Fatal(err)
	}
	defer screen.Fini()

	engine, err := face.New(
		face.DefaultConfig(),
		&termSink{screen: screen},
		nil,
		rand.New(rand.NewSource(time.Now().UnixNano())),
	)
	if err != nil {
		log.Fatal(err)
	}
	engine.SetEnabled(true)

	events := make(chan tcell.Event, 8)
	go func() {
		for {
			events <- screen.PollEvent()
		}
	}()

	mouth, love := 0.0, 0.0
	ticker := time.NewTicker(25 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			engine.Update()

		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventResize:
				screen.Sync()
			case *tcell.EventKey:
				if ev.Key() == tcell.KeyEscape || ev.Rune() == 'q' {
					return
				}
				switch ev.Rune() {
				case 'b':
					engine.TriggerBlink()
				case 'm':
					mouth = clamp(mouth - 0.1)
					engine.SetMouthOpen(mouth)
				case 'M':
					mouth = clamp(mouth + 0.1)
					engine.SetMouthOpen(mouth)
				case 'l':
					love = clamp(love - 0.15)
					engine.SetLoveLevel(love)
				case 'L':
					love = clamp(love + 0.15)
					engine.SetLoveLevel(love)
				case 'f':
					engine.SetEnabled(!engine.Enabled())
				}
			}
		}
	}
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
