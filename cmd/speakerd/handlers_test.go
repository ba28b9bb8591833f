package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

type fakeController struct {
	played     string
	playedData []byte
	playErr    error
	tones      []float64
	stopped    bool
	volume     float64
	volumeSet  bool
	status     string
}

func (f *fakeController) Play(name string, r io.ReadCloser) error {
	if f.playErr != nil {
		r.Close()
		return f.playErr
	}
	f.played = name
	f.playedData, _ = io.ReadAll(r)
	r.Close()
	return nil
}

func (f *fakeController) PlayTone(freq float64, _ time.Duration) error {
	f.tones = append(f.tones, freq)
	return nil
}

func (f *fakeController) Stop() { f.stopped = true }
func (f *fakeController) SetVolume(v float64) {
	f.volume = v
	f.volumeSet = true
}
func (f *fakeController) Status() (string, float64) { return f.status, f.volume }

func doRequest(t *testing.T, ctrl Controller, method, target string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	rec := httptest.NewRecorder()
	newRouter(ctrl).ServeHTTP(rec, req)
	return rec
}

func TestPlay(t *testing.T) {
	ctrl := &fakeController{}
	rec := doRequest(t, ctrl, "POST", "/play?name=hello.mp3", bytes.NewReader([]byte("mp3data")))

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ctrl.played != "hello.mp3" {
		t.Errorf("Expected hello.mp3, got %q", ctrl.played)
	}
	if string(ctrl.playedData) != "mp3data" {
		t.Errorf("Body not forwarded: %q", ctrl.playedData)
	}
}

func TestPlayMissingName(t *testing.T) {
	rec := doRequest(t, &fakeController{}, "POST", "/play", strings.NewReader("data"))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", rec.Code)
	}
}

func TestPlayDecodeError(t *testing.T) {
	ctrl := &fakeController{playErr: errors.New("unsupported audio format")}
	rec := doRequest(t, ctrl, "POST", "/play?name=clip.ogg", strings.NewReader("data"))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("Expected 422, got %d", rec.Code)
	}
}

func TestTone(t *testing.T) {
	ctrl := &fakeController{}
	rec := doRequest(t, ctrl, "POST", "/tone", strings.NewReader(`{"freq":880,"dur":200}`))

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(ctrl.tones) != 1 || ctrl.tones[0] != 880 {
		t.Errorf("Expected tone 880, got %v", ctrl.tones)
	}
}

func TestToneValidation(t *testing.T) {
	cases := []string{
		`{"freq":0,"dur":200}`,
		`{"freq":440,"dur":0}`,
		`{"freq":50000,"dur":200}`,
		`{"freq":440,"dur":99999}`,
		`not json`,
	}
	for _, body := range cases {
		ctrl := &fakeController{}
		rec := doRequest(t, ctrl, "POST", "/tone", strings.NewReader(body))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("Body %q: expected 400, got %d", body, rec.Code)
		}
		if len(ctrl.tones) != 0 {
			t.Errorf("Body %q: tone should not fire", body)
		}
	}
}

func TestStop(t *testing.T) {
	ctrl := &fakeController{}
	rec := doRequest(t, ctrl, "POST", "/stop", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if !ctrl.stopped {
		t.Error("Stop not forwarded")
	}
}

func TestVolume(t *testing.T) {
	ctrl := &fakeController{}
	rec := doRequest(t, ctrl, "POST", "/volume", strings.NewReader(`{"volume":0.3}`))

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !ctrl.volumeSet || ctrl.volume != 0.3 {
		t.Errorf("Expected volume 0.3, got %v", ctrl.volume)
	}
}

func TestVolumeValidation(t *testing.T) {
	cases := []string{
		`{"volume":1.5}`,
		`{"volume":-0.1}`,
		`{}`,
		`bad`,
	}
	for _, body := range cases {
		ctrl := &fakeController{}
		rec := doRequest(t, ctrl, "POST", "/volume", strings.NewReader(body))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("Body %q: expected 400, got %d", body, rec.Code)
		}
		if ctrl.volumeSet {
			t.Errorf("Body %q: volume should not change", body)
		}
	}
}

func TestStatus(t *testing.T) {
	ctrl := &fakeController{status: "song.mp3", volume: 0.7}
	rec := doRequest(t, ctrl, "GET", "/status", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var got map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("Status reply not JSON: %v", err)
	}
	if got["playing"] != "song.mp3" || got["volume"] != 0.7 {
		t.Errorf("Unexpected status: %v", got)
	}
}
