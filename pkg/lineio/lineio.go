// Package lineio frames newline-delimited messages over a byte stream.
// It is the transport between the host controller and the panel firmware:
// one command or event per line, LF terminated, CR tolerated.
package lineio

import (
	"errors"
	"time"
)

// ByteStream is the minimal serial-port-shaped interface the reader needs.
// machine.Serialer satisfies it on hardware; test fakes satisfy it on the host.
type ByteStream interface {
	ReadByte() (byte, error)
	Write(p []byte) (n int, err error)
}

const maxLineLen = 512

// Reader accumulates bytes from a stream and yields complete lines.
type Reader struct {
	stream  ByteStream
	inIndex int
	inBuf   [maxLineLen]byte
	dropped bool
}

func NewReader(stream ByteStream) *Reader {
	return &Reader{stream: stream}
}

// Poll reads at most one byte from the stream. It returns a complete line
// (without the terminator) and true when a newline arrives, otherwise
// "" and false. Call it from the main loop; it never blocks longer than
// one ReadByte.
func (r *Reader) Poll() (string, bool) {
	b, err := r.stream.ReadByte()
	if err != nil {
		return "", false
	}

	if b == '\n' {
		end := r.inIndex
		// Tolerate CRLF senders
		if end > 0 && r.inBuf[end-1] == '\r' {
			end--
		}
		line := string(r.inBuf[:end])
		r.inIndex = 0

		if r.dropped {
			// The line overflowed the buffer earlier; its tail is garbage.
			r.dropped = false
			return "", false
		}
		return line, true
	}

	if r.inIndex == maxLineLen {
		// Oversized line. Discard everything until the next newline.
		r.inIndex = 0
		r.dropped = true
	}

	r.inBuf[r.inIndex] = b
	r.inIndex++

	return "", false
}

// WriteLine writes a line to the stream with an LF terminator.
func (r *Reader) WriteLine(out string) error {
	if _, err := r.stream.Write([]byte(out)); err != nil {
		return err
	}
	_, err := r.stream.Write([]byte{'\n'})
	return err
}

// ErrStalled is returned by StreamReader when the sender stops mid-payload.
var ErrStalled = errors.New("stream stalled")

// StreamReader adapts a ByteStream to io.Reader for bulk binary payloads
// (the image command). A transfer that stalls longer than the timeout
// errors out, so callers looping on io.ReadFull cannot block forever on a
// sender that died mid-payload.
type StreamReader struct {
	stream  ByteStream
	timeout time.Duration
}

func NewStreamReader(stream ByteStream, timeout time.Duration) *StreamReader {
	return &StreamReader{stream: stream, timeout: timeout}
}

// Read fills p from the stream, returning early with what it has when the
// stream runs briefly dry. The stall timeout restarts on every call, so a
// slow sender stays alive as long as bytes keep trickling in.
func (r *StreamReader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	deadline := time.Now().Add(r.timeout)
	n := 0
	for n < len(p) {
		b, err := r.stream.ReadByte()
		if err != nil {
			if n > 0 {
				return n, nil
			}
			if time.Now().After(deadline) {
				return 0, ErrStalled
			}
			time.Sleep(time.Millisecond)
			continue
		}
		p[n] = b
		n++
	}
	return n, nil
}
