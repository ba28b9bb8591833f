package face

import "testing"

// settle runs enough frames for the heart pool to reach steady state for
// the current love level (spawn, rise, exit, respawn cycles).
func settle(e *Engine, clock *fakeClock, frames int) {
	for i := 0; i < frames; i++ {
		tick(e, clock)
	}
}

func TestHeartPopulationTracksLoveLevel(t *testing.T) {
	for k := 0; k <= maxHearts; k++ {
		e, _, clock := newTestEngine(t, int64(10+k))
		e.SetEnabled(true)
		e.SetLoveLevel(float64(k) / maxHearts)

		settle(e, clock, 400) // ~10 seconds

		if got := e.ActiveHearts(); got != k {
			t.Errorf("loveLevel=%d/%d: expected %d active hearts, got %d",
				k, maxHearts, k, got)
		}
	}
}

func TestHeartsSurviveLoveDecrease(t *testing.T) {
	e, _, clock := newTestEngine(t, 20)
	e.SetEnabled(true)
	e.SetLoveLevel(1)
	settle(e, clock, 200)

	if got := e.ActiveHearts(); got != maxHearts {
		t.Fatalf("expected full pool, got %d", got)
	}

	// Dropping the love level must not cull particles instantly; they keep
	// their trajectory until exiting above the top edge.
	e.SetLoveLevel(0)
	tick(e, clock)
	if got := e.ActiveHearts(); got == 0 {
		t.Fatal("hearts vanished instantly on love decrease")
	}

	// The slowest particle (0.7 px/frame) crosses the tallest possible
	// path (screen + spawn overshoot + exit margin) in well under 1000
	// frames, after which the pool must be empty.
	settle(e, clock, 1000)
	if got := e.ActiveHearts(); got != 0 {
		t.Errorf("expected empty pool after drain, got %d", got)
	}
}

func TestHeartRespawnStaysInPool(t *testing.T) {
	e, _, clock := newTestEngine(t, 21)
	e.SetEnabled(true)
	e.SetLoveLevel(0.5) // 3 hearts

	// Long enough for several full rise/respawn cycles.
	settle(e, clock, 2000)

	if got := e.ActiveHearts(); got != 3 {
		t.Errorf("expected 3 hearts across respawn cycles, got %d", got)
	}
	for i := range e.hearts {
		h := &e.hearts[i]
		if !h.active {
			continue
		}
		if h.y < heartExitY {
			t.Errorf("slot %d: active heart above exit threshold (y=%v)", i, h.y)
		}
		if h.speed < 0.7 || h.speed >= 1.2 {
			t.Errorf("slot %d: speed %v outside spawn range", i, h.speed)
		}
		if h.size < e.cfg.HeartSize-3 || h.size >= e.cfg.HeartSize+4 {
			t.Errorf("slot %d: size %v outside spawn range", i, h.size)
		}
	}
}

func TestWantedHeartsRounding(t *testing.T) {
	e, _, _ := newTestEngine(t, 22)

	tests := []struct {
		love float64
		want int
	}{
		{0, 0},
		{0.07, 0},   // 0.42 rounds down
		{0.084, 1},  // 0.504 rounds up
		{0.5, 3},
		{0.99, 6},
		{1, 6},
	}

	for _, tt := range tests {
		e.SetLoveLevel(tt.love)
		if got := e.wantedHearts(); got != tt.want {
			t.Errorf("love=%v: expected %d, got %d", tt.love, tt.want, got)
		}
	}
}
