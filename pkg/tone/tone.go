// Package tone parses the buzzer wire protocol. The face panel forwards
// audio requests to the buzzer board as text lines:
//
//	TONE <freqHz> <durationMs>
//	MELODY <freq>:<dur>,<freq>:<dur>,...
//	STOP
//
// A melody note with frequency 0 is a rest.
package tone

import (
	"errors"
	"strconv"
	"strings"

	"github.com/google/shlex"
)

// Limits keep a corrupt line from wedging the buzzer for minutes.
const (
	MaxFreqHz     = 20000
	MaxDurationMs = 10000
	MaxNotes      = 64
)

var (
	ErrEmptyLine   = errors.New("empty line")
	ErrUnknownWord = errors.New("unknown command word")
	ErrBadArgs     = errors.New("malformed arguments")
	ErrOutOfRange  = errors.New("value out of range")
)

// Note is one step of a melody. FreqHz == 0 means silence.
type Note struct {
	FreqHz     int
	DurationMs int
}

// Request is a parsed buzzer command.
type Request struct {
	Kind  Kind
	Notes []Note // one element for TONE, n for MELODY, nil for STOP
}

type Kind uint8

const (
	KindTone Kind = iota
	KindMelody
	KindStop
)

// Parse decodes one protocol line into a Request.
func Parse(line string) (Request, error) {
	words, err := shlex.Split(line)
	if err != nil {
		return Request{}, ErrBadArgs
	}
	if len(words) == 0 {
		return Request{}, ErrEmptyLine
	}

	switch strings.ToUpper(words[0]) {
	case "TONE":
		if len(words) != 3 {
			return Request{}, ErrBadArgs
		}
		note, err := parseNote(words[1], words[2])
		if err != nil {
			return Request{}, err
		}
		return Request{Kind: KindTone, Notes: []Note{note}}, nil

	case "MELODY":
		if len(words) != 2 {
			return Request{}, ErrBadArgs
		}
		notes, err := parseMelody(words[1])
		if err != nil {
			return Request{}, err
		}
		return Request{Kind: KindMelody, Notes: notes}, nil

	case "STOP":
		if len(words) != 1 {
			return Request{}, ErrBadArgs
		}
		return Request{Kind: KindStop}, nil
	}

	return Request{}, ErrUnknownWord
}

func parseMelody(arg string) ([]Note, error) {
	parts := strings.Split(arg, ",")
	if len(parts) > MaxNotes {
		return nil, ErrOutOfRange
	}

	notes := make([]Note, 0, len(parts))
	for _, part := range parts {
		freq, dur, ok := strings.Cut(part, ":")
		if !ok {
			return nil, ErrBadArgs
		}
		note, err := parseNote(freq, dur)
		if err != nil {
			return nil, err
		}
		notes = append(notes, note)
	}
	return notes, nil
}

func parseNote(freqStr, durStr string) (Note, error) {
	freq, err := strconv.Atoi(freqStr)
	if err != nil {
		return Note{}, ErrBadArgs
	}
	dur, err := strconv.Atoi(durStr)
	if err != nil {
		return Note{}, ErrBadArgs
	}
	if freq < 0 || freq > MaxFreqHz {
		return Note{}, ErrOutOfRange
	}
	if dur <= 0 || dur > MaxDurationMs {
		return Note{}, ErrOutOfRange
	}
	return Note{FreqHz: freq, DurationMs: dur}, nil
}

// FormatTone renders a single tone request as a protocol line.
func FormatTone(freqHz, durationMs int) string {
	return "TONE " + strconv.Itoa(freqHz) + " " + strconv.Itoa(durationMs)
}

// FormatMelody renders a melody request as a protocol line.
func FormatMelody(notes []Note) string {
	var b strings.Builder
	b.WriteString("MELODY ")
	for i, n := range notes {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(n.FreqHz))
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(n.DurationMs))
	}
	return b.String()
}
