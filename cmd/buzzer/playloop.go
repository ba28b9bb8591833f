package main

import (
	"time"

	"github.com/ferretbit/tinygo-deskpet/pkg/tone"
)

// sounder is the output the play loop drives. The firmware backs it with
// the PWM peripheral.
type sounder interface {
	Play(freqHz int)
	Silence()
}

// playLoop executes requests one at a time. A STOP request cancels the
// melody in progress; any other request preempts it.
func playLoop(buz sounder, requests chan tone.Request) {
	var pending tone.Request
	hasPending := false
	for {
		var req tone.Request
		if hasPending {
			req, hasPending = pending, false
		} else {
			req = <-requests
		}
		if req.Kind == tone.KindStop {
			buz.Silence()
			continue
		}
	notes:
		for _, note := range req.Notes {
			if note.FreqHz > 0 {
				buz.Play(note.FreqHz)
			} else {
				buz.Silence()
			}

			deadline := time.Now().Add(time.Duration(note.DurationMs) * time.Millisecond)
			for time.Now().Before(deadline) {
				select {
				case next := <-requests:
					if next.Kind == tone.KindStop {
						buz.Silence()
						break notes
					}
					// The preempting request is held locally; sending
					// it back into the queue blocks forever if the
					// serial loop has refilled the freed slot.
					pending, hasPending = next, true
					break notes
				case <-time.After(5 * time.Millisecond):
				}
			}
			buz.Silence()
			if req.Kind == tone.KindMelody {
				time.Sleep(20 * time.Millisecond) // gap between notes
			}
		}
		buz.Silence()
	}
}
