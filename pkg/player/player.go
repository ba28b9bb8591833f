// Package player plays audio clips and synthesized tones on the host
// machine's speaker. It backs the speaker daemon: one clip at a time,
// a shared mixer, and a volume control applied to everything.
package player

import (
	"errors"
	"io"
	"math"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/mp3"
	"github.com/gopxl/beep/speaker"
	"github.com/gopxl/beep/wav"
)

const sampleRate = beep.SampleRate(48000)

var (
	ErrNotInitialized = errors.New("audio not initialized")
	ErrUnknownFormat  = errors.New("unsupported audio format")
)

// Player owns the speaker and the playback state.
type Player struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	current     *beep.Ctrl
	volume      float64 // linear 0..1
	nowPlaying  string
	initialized bool
}

func New() *Player {
	return &Player{
		mixer:  &beep.Mixer{},
		volume: 1.0,
	}
}

// Initialize opens the audio device. Safe to call more than once.
func (p *Player) Initialize() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.initialized {
		return nil
	}
	if err := speaker.Init(sampleRate, sampleRate.N(time.Millisecond*100)); err != nil {
		return err
	}
	speaker.Play(p.mixer)
	p.initialized = true
	return nil
}

// Play decodes the clip and starts it, replacing whatever was playing.
// The format is picked from the name's extension (.mp3 or .wav).
func (p *Player) Play(name string, r io.ReadCloser) error {
	streamer, format, err := Decode(name, r)
	if err != nil {
		r.Close()
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.initialized {
		streamer.Close()
		return ErrNotInitialized
	}

	speaker.Lock()
	p.stopLocked()

	resampled := beep.Resample(4, format.SampleRate, sampleRate, streamer)
	vol := &effects.Volume{
		Streamer: resampled,
		Base:     2,
		Volume:   volumeToDB(p.volume),
		Silent:   p.volume <= 0,
	}
	ctrl := &beep.Ctrl{Streamer: vol}
	p.current = ctrl
	p.nowPlaying = name

	p.mixer.Add(beep.Seq(ctrl, beep.Callback(func() {
		// Runs on the speaker's streaming goroutine with the speaker
		// mutex held. Taking p.mu here would deadlock against
		// Play/Stop/SetVolume, which hold p.mu while waiting for the
		// speaker lock, so the state reset is handed off.
		streamer.Close()
		go p.clipDone(ctrl)
	})))
	speaker.Unlock()

	return nil
}

// clipDone clears the playback state after a clip finishes, unless a
// newer clip has already replaced it.
func (p *Player) clipDone(ctrl *beep.Ctrl) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == ctrl {
		p.current = nil
		p.nowPlaying = ""
	}
}

// PlayTone synthesizes a sine tone. Used for quick acknowledgement beeps
// without shipping a clip over the wire.
func (p *Player) PlayTone(freqHz float64, duration time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.initialized {
		return ErrNotInitialized
	}

	speaker.Lock()
	tone := NewTone(freqHz, duration, sampleRate)
	vol := &effects.Volume{
		Streamer: tone,
		Base:     2,
		Volume:   volumeToDB(p.volume),
		Silent:   p.volume <= 0,
	}
	p.mixer.Add(vol)
	speaker.Unlock()
	return nil
}

// Stop halts the current clip.
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.initialized {
		return
	}
	speaker.Lock()
	p.stopLocked()
	speaker.Unlock()
}

func (p *Player) stopLocked() {
	if p.current != nil {
		p.current.Streamer = nil
		p.current = nil
		p.nowPlaying = ""
	}
}

// SetVolume sets the linear output volume, clamped to [0, 1]. It applies
// to the currently playing clip as well as future ones.
func (p *Player) SetVolume(v float64) {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.volume = v

	if p.initialized && p.current != nil {
		speaker.Lock()
		if vol, ok := p.current.Streamer.(*effects.Volume); ok {
			vol.Volume = volumeToDB(v)
			vol.Silent = v <= 0
		}
		speaker.Unlock()
	}
}

// Status reports the current clip name ("" when idle) and volume.
func (p *Player) Status() (nowPlaying string, volume float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.nowPlaying, p.volume
}

// volumeToDB maps linear volume to the log scale effects.Volume expects.
// With Base 2, a Volume of log2(v) gives linear gain v.
func volumeToDB(v float64) float64 {
	if v <= 0 {
		return 0 // Silent flag handles muting
	}
	return math.Log2(v)
}

// Decode picks a decoder by file extension.
func Decode(name string, r io.ReadCloser) (beep.StreamSeekCloser, beep.Format, error) {
	switch strings.ToLower(path.Ext(name)) {
	case ".mp3":
		return mp3.Decode(r)
	case ".wav":
		return wav.Decode(r)
	}
	return nil, beep.Format{}, ErrUnknownFormat
}

// Tone is a fixed-length sine streamer.
type Tone struct {
	freq     float64
	phase    float64
	rate     beep.SampleRate
	position int
	duration int
}

func NewTone(freqHz float64, duration time.Duration, rate beep.SampleRate) *Tone {
	return &Tone{
		freq:     freqHz,
		rate:     rate,
		duration: rate.N(duration),
	}
}

func (t *Tone) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if t.position >= t.duration {
			return i, i > 0
		}

		// Short attack/release ramps avoid clicks at the edges
		env := 1.0
		ramp := t.rate.N(5 * time.Millisecond)
		if t.position < ramp {
			env = float64(t.position) / float64(ramp)
		} else if rem := t.duration - t.position; rem < ramp {
			env = float64(rem) / float64(ramp)
		}

		val := 0.4 * env * math.Sin(2*math.Pi*t.phase)
		samples[i][0] = val
		samples[i][1] = val

		t.phase += t.freq / float64(t.rate)
		t.phase -= math.Floor(t.phase)
		t.position++
	}
	return len(samples), true
}

func (t *Tone) Err() error { return nil }
