package face

import "math"

const (
	maxHearts = 6

	// A heart is retired only after it fully clears the top edge, and is
	// skipped while outside the visible window plus a small margin.
	heartExitY      = -40.0
	heartDrawMargin = 35.0
)

// heart is one pool slot. Slots are reused in place by respawning; nothing
// is allocated inside the render path.
type heart struct {
	baseX  float64 // reference X the sway oscillates around
	x, y   float64
	phase  float64
	speed  float64 // pixels per frame, upward
	size   float64
	active bool
}

// spawnHeart resets a slot to a fresh particle at the bottom of the screen
// with randomized position, speed, sway phase and size.
func (e *Engine) spawnHeart(h *heart, t float64) {
	h.baseX = 50 + float64(e.rng.Intn(e.cfg.Width-100))
	h.y = float64(e.cfg.Height) + float64(e.rng.Intn(60))
	h.phase = t + float64(e.rng.Intn(628))/100.0
	h.speed = 0.7 + float64(e.rng.Intn(50))/100.0
	h.size = e.cfg.HeartSize - 3 + float64(e.rng.Intn(7))
	h.x = h.baseX
	h.active = true
}

// wantedHearts converts the love level into a target particle count.
func (e *Engine) wantedHearts() int {
	n := int(e.loveLevel*maxHearts + 0.5)
	if n > maxHearts {
		n = maxHearts
	}
	return n
}

// updateHearts advances every pool slot one frame. Slots within the wanted
// count respawn at the bottom after exiting the top; slots beyond it keep
// their trajectory until they exit, then deactivate. Hearts therefore fade
// out by floating away rather than vanishing when the love level drops.
func (e *Engine) updateHearts(t float64) {
	wanted := e.wantedHearts()
	for i := range e.hearts {
		h := &e.hearts[i]
		if i < wanted {
			if !h.active {
				e.spawnHeart(h, t)
			}
			h.y -= h.speed
			h.x = h.baseX + math.Sin(t*0.8+h.phase)*22.0
			if h.y < heartExitY {
				e.spawnHeart(h, t)
			}
		} else if h.active {
			h.y -= h.speed
			h.x = h.baseX + math.Sin(t*0.8+h.phase)*22.0
			if h.y < heartExitY {
				h.active = false
			}
		}
	}
}

// drawHearts renders the active pool on top of the face, with a gentle
// size pulse and alternating shades by slot parity.
func (e *Engine) drawHearts(now int64) {
	for i := range e.hearts {
		h := &e.hearts[i]
		if !h.active {
			continue
		}
		if h.y < -heartDrawMargin || h.y > float64(e.cfg.Height)+heartDrawMargin {
			continue
		}
		pulse := 1.0 + math.Sin(float64(now)/500.0+h.phase)*0.08
		col := e.cfg.Palette.HeartA
		if i%2 == 1 {
			col = e.cfg.Palette.HeartB
		}
		e.fb.FillHeart(int(h.x), int(h.y), h.size*pulse, col)
	}
}

// ActiveHearts counts particles currently alive in the pool.
func (e *Engine) ActiveHearts() int {
	n := 0
	for i := range e.hearts {
		if e.hearts[i].active {
			n++
		}
	}
	return n
}
