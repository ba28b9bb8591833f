package main

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// maxClipBytes bounds an uploaded clip. Big enough for a few minutes of
// mp3, small enough to not care about abuse on a LAN service.
const maxClipBytes = 16 << 20

// Controller is the slice of the player the HTTP layer needs.
type Controller interface {
	Play(name string, r io.ReadCloser) error
	PlayTone(freqHz float64, duration time.Duration) error
	Stop()
	SetVolume(v float64)
	Status() (nowPlaying string, volume float64)
}

func newRouter(ctrl Controller) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Post("/play", handlePlay(ctrl))
	r.Post("/tone", handleTone(ctrl))
	r.Post("/stop", handleStop(ctrl))
	r.Post("/volume", handleVolume(ctrl))
	r.Get("/status", handleStatus(ctrl))

	return r
}

// handlePlay accepts the clip bytes as the request body. The name query
// parameter carries the filename; its extension selects the decoder.
func handlePlay(ctrl Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := r.URL.Query().Get("name")
		if name == "" {
			writeError(w, http.StatusBadRequest, "missing name parameter")
			return
		}

		body := http.MaxBytesReader(w, r.Body, maxClipBytes)
		if err := ctrl.Play(name, body); err != nil {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		writeOK(w)
	}
}

func handleTone(ctrl Controller) http.HandlerFunc {
	type toneRequest struct {
		Freq float64 `json:"freq"`
		Dur  int     `json:"dur"` // milliseconds
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req toneRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad json")
			return
		}
		if req.Freq <= 0 || req.Freq > 20000 || req.Dur <= 0 || req.Dur > 10000 {
			writeError(w, http.StatusBadRequest, "freq or dur out of range")
			return
		}
		if err := ctrl.PlayTone(req.Freq, time.Duration(req.Dur)*time.Millisecond); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeOK(w)
	}
}

func handleStop(ctrl Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctrl.Stop()
		writeOK(w)
	}
}

func handleVolume(ctrl Controller) http.HandlerFunc {
	type volumeRequest struct {
		Volume *float64 `json:"volume"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req volumeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Volume == nil {
			writeError(w, http.StatusBadRequest, "missing volume")
			return
		}
		if *req.Volume < 0 || *req.Volume > 1 {
			writeError(w, http.StatusBadRequest, "volume out of range")
			return
		}
		ctrl.SetVolume(*req.Volume)
		writeOK(w)
	}
}

func handleStatus(ctrl Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		nowPlaying, volume := ctrl.Status()
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"playing": nowPlaying,
			"volume":  volume,
		})
	}
}

func writeOK(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"status": "error", "msg": msg})
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}
