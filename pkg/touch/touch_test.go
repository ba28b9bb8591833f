package touch

import (
	"errors"
	"testing"
)

// fakeI2C answers probes only for the configured address and serves
// scripted point reads.
type fakeI2C struct {
	present  map[uint16]bool
	point    []byte
	failRead bool
	lastReg  byte
}

func (f *fakeI2C) Tx(addr uint16, w, r []byte) error {
	if !f.present[addr] {
		return errors.New("nack")
	}
	if len(w) > 0 {
		f.lastReg = w[0]
	}
	if len(r) > 0 {
		if f.failRead {
			return errors.New("read error")
		}
		copy(r, f.point)
	}
	return nil
}

func TestProbeFindsFT6336First(t *testing.T) {
	bus := &fakeI2C{present: map[uint16]bool{ft6336Addr: true, cst816Addr: true}}

	dev, err := Probe(bus)
	if err != nil {
		t.Fatalf("Probe failed: %v", err)
	}
	if dev.Kind() != KindFT6336 {
		t.Errorf("Expected FT6336U to win the probe, got %v", dev.Kind())
	}
}

func TestProbeFallsBackToCST816(t *testing.T) {
	bus := &fakeI2C{present: map[uint16]bool{cst816Addr: true}}

	dev, err := Probe(bus)
	if err != nil {
		t.Fatalf("Probe failed: %v", err)
	}
	if dev.Kind() != KindCST816 {
		t.Errorf("Expected CST816S, got %v", dev.Kind())
	}
}

func TestProbeAltAddress(t *testing.T) {
	bus := &fakeI2C{present: map[uint16]bool{cst816AddrAlt: true}}

	dev, err := Probe(bus)
	if err != nil {
		t.Fatalf("Probe failed: %v", err)
	}
	if dev.Kind() != KindCST816 {
		t.Errorf("Expected CST816S at alt address, got %v", dev.Kind())
	}
}

func TestProbeNothingPresent(t *testing.T) {
	bus := &fakeI2C{present: map[uint16]bool{}}

	if _, err := Probe(bus); err != ErrNoController {
		t.Errorf("Expected ErrNoController, got %v", err)
	}
}

func TestReadDecodesPoint(t *testing.T) {
	bus := &fakeI2C{
		present: map[uint16]bool{ft6336Addr: true},
		// 1 touch at (0x123, 0x0B4)
		point: []byte{0x01, 0x01, 0x23, 0x00, 0xB4},
	}
	dev, _ := Probe(bus)

	p := dev.Read()
	if !p.Touched {
		t.Fatal("Expected a touch")
	}
	if p.X != 0x123 || p.Y != 0x0B4 {
		t.Errorf("Expected (0x123, 0x0B4), got (0x%x, 0x%x)", p.X, p.Y)
	}
	if bus.lastReg != ft6336PointReg {
		t.Errorf("FT6336U read should start at 0x%02x, got 0x%02x", ft6336PointReg, bus.lastReg)
	}
}

func TestReadUsesCST816Register(t *testing.T) {
	bus := &fakeI2C{
		present: map[uint16]bool{cst816Addr: true},
		point:   []byte{0x01, 0x00, 0x10, 0x00, 0x20},
	}
	dev, _ := Probe(bus)

	dev.Read()
	if bus.lastReg != cst816PointReg {
		t.Errorf("CST816S read should start at 0x%02x, got 0x%02x", cst816PointReg, bus.lastReg)
	}
}

func TestReadNoTouch(t *testing.T) {
	bus := &fakeI2C{
		present: map[uint16]bool{ft6336Addr: true},
		point:   []byte{0x00, 0x01, 0x23, 0x00, 0xB4},
	}
	dev, _ := Probe(bus)

	if p := dev.Read(); p.Touched {
		t.Error("Zero touch count should read as not touched")
	}
}

func TestReadImplausibleCount(t *testing.T) {
	bus := &fakeI2C{
		present: map[uint16]bool{ft6336Addr: true},
		point:   []byte{0x05, 0x01, 0x23, 0x00, 0xB4},
	}
	dev, _ := Probe(bus)

	if p := dev.Read(); p.Touched {
		t.Error("Touch count > 2 should read as not touched")
	}
}

func TestReadBusError(t *testing.T) {
	bus := &fakeI2C{
		present:  map[uint16]bool{ft6336Addr: true},
		point:    []byte{0x01, 0x00, 0x10, 0x00, 0x20},
		failRead: true,
	}
	dev, _ := Probe(bus)

	if p := dev.Read(); p.Touched {
		t.Error("Bus error should read as not touched")
	}
}

func TestDebouncerRisingEdgeOnly(t *testing.T) {
	db := NewDebouncer(500)

	down := Point{X: 10, Y: 10, Touched: true}
	up := Point{}

	if !db.Feed(down, 1000) {
		t.Error("First touch should fire")
	}
	if db.Feed(down, 1025) {
		t.Error("Held touch should not fire again")
	}
	if db.Feed(up, 1050) {
		t.Error("Release should not fire")
	}
}

func TestDebouncerCooldown(t *testing.T) {
	db := NewDebouncer(500)

	down := Point{Touched: true}
	up := Point{}

	db.Feed(down, 1000)
	db.Feed(up, 1100)

	// New tap inside the cooldown window is swallowed
	if db.Feed(down, 1200) {
		t.Error("Tap inside cooldown should not fire")
	}
	db.Feed(up, 1300)

	// After the cooldown it fires again
	if !db.Feed(down, 1600) {
		t.Error("Tap after cooldown should fire")
	}
}
