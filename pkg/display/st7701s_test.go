package display

import (
	"testing"
)

// pinEvent is one level change on one line.
type pinEvent struct {
	name string
	high bool
}

// recorder collects pin events from all fake pins in order.
type recorder struct {
	events []pinEvent
}

type fakePin struct {
	rec  *recorder
	name string
}

func (p fakePin) Set(high bool) {
	p.rec.events = append(p.rec.events, pinEvent{p.name, high})
}

func newTestController() (*Controller, *recorder) {
	rec := &recorder{}
	ctrl := NewController(
		fakePin{rec, "clk"},
		fakePin{rec, "mosi"},
		fakePin{rec, "cs"},
		fakePin{rec, "rst"},
		nil,
	)
	return ctrl, rec
}

// decode replays the event log as the panel would see it: sample MOSI on
// each rising clock edge while CS is low, 9 bits per CS window. Returns
// the decoded words (bit 8 = DC).
func decode(t *testing.T, events []pinEvent) []uint16 {
	t.Helper()

	var words []uint16
	cs, clk, mosi := true, false, false
	var bits int
	var word uint16

	for _, ev := range events {
		switch ev.name {
		case "cs":
			if cs && !ev.high {
				bits, word = 0, 0
			}
			if !cs && ev.high {
				if bits != 9 {
					t.Fatalf("CS raised after %d bits, expected 9", bits)
				}
				words = append(words, word)
			}
			cs = ev.high
		case "clk":
			if !clk && ev.high && !cs {
				word = word<<1 | boolBit(mosi)
				bits++
			}
			clk = ev.high
		case "mosi":
			mosi = ev.high
		}
	}
	return words
}

func boolBit(b bool) uint16 {
	if b {
		return 1
	}
	return 0
}

func TestInitFirstCommandSelectsBK0(t *testing.T) {
	ctrl, rec := newTestController()
	ctrl.Init(func(int) {})

	words := decode(t, rec.events)
	if len(words) == 0 {
		t.Fatal("No SPI traffic decoded")
	}

	// First word is the Command2 bank select: command byte 0xFF with DC=0,
	// then five data bytes with DC=1.
	want := []uint16{0x0FF, 0x177, 0x101, 0x100, 0x100, 0x110}
	for i, w := range want {
		if words[i] != w {
			t.Errorf("Word %d: expected 0x%03x, got 0x%03x", i, w, words[i])
		}
	}
}

func TestInitEndsWithDisplayOn(t *testing.T) {
	ctrl, rec := newTestController()
	ctrl.Init(func(int) {})

	words := decode(t, rec.events)
	if len(words) < 2 {
		t.Fatal("Not enough SPI traffic")
	}

	// Last two commands are sleep out then display on, no parameters
	if words[len(words)-2] != 0x011 {
		t.Errorf("Expected sleep out (0x011), got 0x%03x", words[len(words)-2])
	}
	if words[len(words)-1] != 0x029 {
		t.Errorf("Expected display on (0x029), got 0x%03x", words[len(words)-1])
	}
}

func TestInitWordCount(t *testing.T) {
	ctrl, rec := newTestController()
	ctrl.Init(func(int) {})

	var want int
	for _, op := range initSequence {
		want += 1 + len(op.data)
	}

	words := decode(t, rec.events)
	if len(words) != want {
		t.Errorf("Expected %d words on the bus, got %d", want, len(words))
	}
}

func TestInitDelays(t *testing.T) {
	ctrl, _ := newTestController()

	var delays []int
	ctrl.Init(func(ms int) { delays = append(delays, ms) })

	// Settle delays: 20ms after BK1 power setup, 120ms after sleep out,
	// 120ms after display on.
	want := []int{20, 120, 120}
	if len(delays) != len(want) {
		t.Fatalf("Expected %d delays, got %d: %v", len(want), len(delays), delays)
	}
	for i, d := range want {
		if delays[i] != d {
			t.Errorf("Delay %d: expected %dms, got %dms", i, d, delays[i])
		}
	}
}

func TestResetPulse(t *testing.T) {
	ctrl, rec := newTestController()

	var delays []int
	ctrl.Reset(func(ms int) { delays = append(delays, ms) })

	var rstEvents []bool
	for _, ev := range rec.events {
		if ev.name == "rst" {
			rstEvents = append(rstEvents, ev.high)
		}
	}
	if len(rstEvents) != 2 || rstEvents[0] || !rstEvents[1] {
		t.Errorf("Expected reset pulse low then high, got %v", rstEvents)
	}
	if len(delays) != 2 {
		t.Errorf("Expected hold delays around the pulse, got %v", delays)
	}
}
